package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/vedaro/shopdesk/internal/catalog"
	"github.com/vedaro/shopdesk/internal/shared"
)

// RawCartLine is one cart row as the backend returns it. Numeric fields are
// tolerant of string encoding, same as product payloads.
type RawCartLine struct {
	CartID         int64          `json:"cart_id"`
	ProductID      catalog.Text   `json:"product_id"`
	VariantID      *int64         `json:"variant_id"`
	Name           catalog.Text   `json:"name"`
	Image          catalog.Text   `json:"image"`
	Size           catalog.Text   `json:"size"`
	Quantity       catalog.Number `json:"quantity"`
	Total          catalog.Number `json:"total"`
	Price          *catalog.Number `json:"price"`
	AvailableStock *catalog.Number `json:"available_stock"`
}

// CartList fetches the authoritative cart contents.
func (c *Client) CartList(ctx context.Context) ([]RawCartLine, error) {
	env, err := c.do(ctx, http.MethodGet, "/staff/cart", nil, callOpts{})
	if err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, fmt.Errorf("backend: cart list: %w", shared.ErrBackend)
	}
	var lines []RawCartLine
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &lines); err != nil {
			return nil, fmt.Errorf("backend: decode cart: %w", shared.ErrBackend)
		}
	}
	return lines, nil
}

// CartAdd inserts a product into the cart with the given quantity.
func (c *Client) CartAdd(ctx context.Context, identifier string, qty int) error {
	body := map[string]int{"qty": qty}
	env, err := c.do(ctx, http.MethodPost, "/staff/cart/add/"+url.PathEscape(identifier), body, callOpts{})
	if err != nil {
		return err
	}
	if !env.Success {
		return fmt.Errorf("backend: cart add %q: %s: %w", identifier, env.Message, shared.ErrBackend)
	}
	return nil
}

// CartIncrease increments the quantity of a cart line by one.
func (c *Client) CartIncrease(ctx context.Context, cartID int64) error {
	env, err := c.do(ctx, http.MethodPost, "/cart/increase/"+strconv.FormatInt(cartID, 10), nil, callOpts{})
	if err != nil {
		return err
	}
	if !env.Success {
		return fmt.Errorf("backend: cart increase %d: %s: %w", cartID, env.Message, shared.ErrBackend)
	}
	return nil
}

// CartDecrease decrements the quantity of a cart line by one; the backend
// deletes the line when the quantity reaches zero.
func (c *Client) CartDecrease(ctx context.Context, cartID int64) error {
	env, err := c.do(ctx, http.MethodPost, "/cart/decrease/"+strconv.FormatInt(cartID, 10), nil, callOpts{})
	if err != nil {
		return err
	}
	if !env.Success {
		return fmt.Errorf("backend: cart decrease %d: %s: %w", cartID, env.Message, shared.ErrBackend)
	}
	return nil
}
