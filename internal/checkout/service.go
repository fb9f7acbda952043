package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/vedaro/shopdesk/internal/backend"
	"github.com/vedaro/shopdesk/internal/shared"
)

// ErrExistingCustomer signals the soft-confirm gate: a resolved customer is
// about to be invoiced again and the caller has not confirmed.
var ErrExistingCustomer = errors.New("checkout: existing customer, confirmation required")

// SummaryGateway fetches the server-computed checkout summary.
type SummaryGateway interface {
	CheckoutSummary(ctx context.Context) (backend.RawSummary, error)
}

// CustomerGateway resolves customers by phone.
type CustomerGateway interface {
	CustomerByPhone(ctx context.Context, phone string) (backend.RawCustomer, error)
}

// InvoiceGateway creates pending invoices from the current cart.
type InvoiceGateway interface {
	CreatePendingInvoice(ctx context.Context, req backend.PendingInvoiceRequest) error
}

// Service derives checkout totals and validates customer identity before
// invoice creation.
type Service struct {
	summaries SummaryGateway
	customers CustomerGateway
	invoices  InvoiceGateway
	logger    *slog.Logger
	validate  *validator.Validate
}

// NewService builds a Service.
func NewService(summaries SummaryGateway, customers CustomerGateway, invoices InvoiceGateway, logger *slog.Logger) *Service {
	return &Service{
		summaries: summaries,
		customers: customers,
		invoices:  invoices,
		logger:    logger,
		validate:  validator.New(),
	}
}

// Summary rebuilds the checkout read model from the authoritative fetch.
// Per-line tax is back-computed as totalWithTax - unitPrice*quantity.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	raw, err := s.summaries.CheckoutSummary(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("fetch checkout summary: %w", err)
	}

	summary := Summary{
		Lines:      make([]SummaryLine, 0, len(raw.Items)),
		Subtotal:   float64(raw.Subtotal),
		TotalTax:   float64(raw.TotalTax),
		GrandTotal: float64(raw.GrandTotal),
	}
	for _, item := range raw.Items {
		qty := int(item.Quantity)
		unit := float64(item.Price)
		withTax := float64(item.TotalWithTax)
		summary.Lines = append(summary.Lines, SummaryLine{
			ProductID:    item.ProductID.String(),
			Name:         item.Name.String(),
			ImageRef:     item.Image.String(),
			Quantity:     qty,
			UnitPrice:    unit,
			TotalWithTax: withTax,
			DerivedTax:   withTax - unit*float64(qty),
		})
	}
	return summary, nil
}

// ResolveCustomer looks up an existing customer once the phone reaches
// exactly ten digits. A hit pre-fills the draft and marks it resolved; a miss
// leaves the draft editable.
func (s *Service) ResolveCustomer(ctx context.Context, phone string) (CustomerDraft, error) {
	draft := CustomerDraft{Phone: phone}
	if len(phone) != 10 {
		return draft, fmt.Errorf("%w: lookup requires a 10-digit phone", shared.ErrValidation)
	}

	customer, err := s.customers.CustomerByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return draft, nil
		}
		return draft, fmt.Errorf("resolve customer: %w", err)
	}

	draft.Name = customer.Name.String()
	draft.DateOfBirth = DOBFromISO(customer.DateOfBirth.String())
	draft.Resolved = true
	return draft, nil
}

// Submit validates the draft and creates a pending invoice from the current
// cart. A resolved customer needs confirmExisting; malformed input never
// reaches the network.
func (s *Service) Submit(ctx context.Context, draft CustomerDraft, confirmExisting bool) error {
	if err := s.validate.Struct(draft); err != nil {
		return fmt.Errorf("%w: enter a valid 10-digit mobile number", shared.ErrValidation)
	}
	iso, err := DOBToISO(draft.DateOfBirth)
	if err != nil {
		return err
	}
	if draft.Resolved && !confirmExisting {
		return ErrExistingCustomer
	}

	req := backend.PendingInvoiceRequest{
		CustomerName:  draft.Name,
		CustomerPhone: draft.Phone,
	}
	if iso != "" {
		req.CustomerDOB = &iso
	}
	if err := s.invoices.CreatePendingInvoice(ctx, req); err != nil {
		return fmt.Errorf("create pending invoice: %w", err)
	}
	s.logger.Info("pending invoice created", slog.String("phone", draft.Phone))
	return nil
}
