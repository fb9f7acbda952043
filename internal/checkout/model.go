package checkout

// SummaryLine joins one cart line with its derived tax. The backend supplies
// the tax-inclusive total and the base unit price only; the displayed tax is
// the difference, never a rate.
type SummaryLine struct {
	ProductID    string  `json:"product_id"`
	Name         string  `json:"name"`
	ImageRef     string  `json:"image"`
	Quantity     int     `json:"quantity"`
	UnitPrice    float64 `json:"unit_price"`
	TotalWithTax float64 `json:"total_with_tax"`
	DerivedTax   float64 `json:"derived_tax"`
}

// Summary is the checkout read model rebuilt from the authoritative cart
// fetch on every view entry; aggregates are never accumulated incrementally.
type Summary struct {
	Lines      []SummaryLine `json:"lines"`
	Subtotal   float64       `json:"subtotal"`
	TotalTax   float64       `json:"total_tax"`
	GrandTotal float64       `json:"grand_total"`
}

// CustomerDraft is the walk-in customer being keyed in. Ephemeral, lives only
// for the duration of checkout entry.
type CustomerDraft struct {
	Phone       string `json:"phone" validate:"required,len=10,numeric"`
	Name        string `json:"name"`
	DateOfBirth string `json:"date_of_birth"` // masked DD/MM/YYYY
	Resolved    bool   `json:"resolved"`
}
