package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/vedaro/shopdesk/internal/catalog"
	"github.com/vedaro/shopdesk/internal/shared"
)

// RawSummaryLine is one checkout row. The backend supplies the tax-inclusive
// line total and the base unit price; it never exposes a tax rate.
type RawSummaryLine struct {
	ProductID    catalog.Text   `json:"product_id"`
	Name         catalog.Text   `json:"name"`
	Image        catalog.Text   `json:"image"`
	Quantity     catalog.Number `json:"quantity"`
	Price        catalog.Number `json:"price"`
	TotalWithTax catalog.Number `json:"total_with_tax"`
}

// RawSummary is the checkout aggregate computed server side.
type RawSummary struct {
	Items      []RawSummaryLine `json:"items"`
	Subtotal   catalog.Number   `json:"subtotal"`
	TotalTax   catalog.Number   `json:"total_tax"`
	GrandTotal catalog.Number   `json:"grand_total"`
}

// RawCustomer is a customer record resolved by phone lookup.
type RawCustomer struct {
	Name        catalog.Text `json:"name"`
	DateOfBirth catalog.Text `json:"date_of_birth"`
}

// PendingInvoiceRequest creates a walk-in pending invoice from the cart.
type PendingInvoiceRequest struct {
	CustomerName  string  `json:"customer_name"`
	CustomerPhone string  `json:"customer_phone"`
	CustomerDOB   *string `json:"customer_dob"`
}

// CheckoutSummary fetches the server-computed checkout summary for the
// current cart.
func (c *Client) CheckoutSummary(ctx context.Context) (RawSummary, error) {
	env, err := c.do(ctx, http.MethodPost, "/staff/checkout", nil, callOpts{})
	if err != nil {
		return RawSummary{}, err
	}
	if !env.Success || len(env.Summary) == 0 {
		// Empty cart yields no summary, not an error.
		return RawSummary{}, nil
	}
	var summary RawSummary
	if err := json.Unmarshal(env.Summary, &summary); err != nil {
		return RawSummary{}, fmt.Errorf("backend: decode summary: %w", shared.ErrBackend)
	}
	return summary, nil
}

// CustomerByPhone resolves an existing customer; a miss is shared.ErrNotFound.
func (c *Client) CustomerByPhone(ctx context.Context, phone string) (RawCustomer, error) {
	env, err := c.do(ctx, http.MethodPost, "/checkout/customer/"+url.PathEscape(phone), nil, callOpts{})
	if err != nil {
		return RawCustomer{}, err
	}
	if !env.Success || len(env.Data) == 0 {
		return RawCustomer{}, fmt.Errorf("backend: customer %s: %w", phone, shared.ErrNotFound)
	}
	var customer RawCustomer
	if err := json.Unmarshal(env.Data, &customer); err != nil {
		return RawCustomer{}, fmt.Errorf("backend: decode customer: %w", shared.ErrBackend)
	}
	return customer, nil
}

// CreatePendingInvoice submits the cart as a pending invoice for the given
// customer draft.
func (c *Client) CreatePendingInvoice(ctx context.Context, req PendingInvoiceRequest) error {
	env, err := c.do(ctx, http.MethodPost, "/pending-invoices", req, callOpts{})
	if err != nil {
		return err
	}
	if !env.Success {
		return fmt.Errorf("backend: create pending invoice: %s: %w", env.Message, shared.ErrBackend)
	}
	return nil
}
