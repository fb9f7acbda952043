package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/vedaro/shopdesk/internal/catalog"
	"github.com/vedaro/shopdesk/internal/shared"
)

// InvoiceItemsHistory lists previously invoiced items. Rows reuse the raw
// product shape (invoice line-item variant of it).
func (c *Client) InvoiceItemsHistory(ctx context.Context) ([]catalog.RawProduct, error) {
	env, err := c.do(ctx, http.MethodGet, "/invoice-items/history", nil, callOpts{})
	if err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, fmt.Errorf("backend: invoice history: %w", shared.ErrBackend)
	}
	var items []catalog.RawProduct
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &items); err != nil {
			return nil, fmt.Errorf("backend: decode history: %w", shared.ErrBackend)
		}
	}
	return items, nil
}
