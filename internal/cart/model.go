package cart

import (
	"github.com/vedaro/shopdesk/internal/backend"
)

// Line is one cart row reconciled from the latest authoritative fetch.
// Quantity and stock are snapshots subordinate to the backend.
type Line struct {
	CartLineID int64   `json:"cart_line_id"`
	ProductID  string  `json:"product_id"`
	VariantID  *int64  `json:"variant_id,omitempty"`
	Name       string  `json:"name"`
	ImageRef   string  `json:"image"`
	Size       string  `json:"size"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	LineTotal  float64 `json:"line_total"`
	Stock      int     `json:"stock"`
}

// LineView decorates a Line with its in-flight mutation state for the UI.
type LineView struct {
	Line
	Mutating bool `json:"mutating"`
}

// normalizeLine maps a raw backend cart row onto a Line. Unit price falls
// back to total/quantity when the backend omits it.
func normalizeLine(raw backend.RawCartLine) Line {
	qty := int(raw.Quantity)
	if qty < 0 {
		qty = 0
	}
	total := float64(raw.Total)
	price := 0.0
	if raw.Price != nil {
		price = float64(*raw.Price)
	} else if qty > 0 {
		price = total / float64(qty)
	}
	stock := 0
	if raw.AvailableStock != nil && *raw.AvailableStock > 0 {
		stock = int(*raw.AvailableStock)
	}
	return Line{
		CartLineID: raw.CartID,
		ProductID:  raw.ProductID.String(),
		VariantID:  raw.VariantID,
		Name:       raw.Name.String(),
		ImageRef:   raw.Image.String(),
		Size:       raw.Size.String(),
		Quantity:   qty,
		UnitPrice:  price,
		LineTotal:  total,
		Stock:      stock,
	}
}
