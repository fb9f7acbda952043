// Package catalog normalizes heterogeneous backend product payloads into one
// canonical Product shape. The backend interchangeably nests variant data or
// flattens it; every consumer goes through Normalize instead of reaching into
// raw fields.
package catalog

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Defaults applied when a payload omits an attribute. Sentinel values rather
// than empty so downstream display logic never branches on null.
const (
	DefaultName        = "Unnamed Product"
	DefaultWeight      = "N/A"
	DefaultSize        = "Free Size"
	DefaultCategory    = "N/A"
	DefaultProductType = "Simple"
)

// Product is the canonical record built by Normalize. Immutable for the
// lifetime of a scan/display cycle; re-fetched, never patched.
type Product struct {
	Identifier  string  `json:"identifier"`
	Name        string  `json:"name"`
	ImageRef    string  `json:"image"`
	Price       float64 `json:"price"`
	ListPrice   float64 `json:"list_price"`
	Stock       int     `json:"stock"`
	Weight      string  `json:"weight"`
	Size        string  `json:"size"`
	Category    string  `json:"category"`
	ProductType string  `json:"product_type"`
	VariantID   *int64  `json:"variant_id,omitempty"`
}

// Number tolerates JSON numbers, numeric strings, and null. Backend payloads
// serialize prices and stock either way depending on the source table.
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Garbage degrades to zero, Normalize must stay total.
		return nil
	}
	*n = Number(v)
	return nil
}

// Text tolerates JSON strings, numbers, and null. Variant weights arrive as
// either "250" or 250.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = Text(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		*t = Text(num.String())
		return nil
	}
	return nil
}

// String returns the trimmed string value.
func (t Text) String() string {
	return strings.TrimSpace(string(t))
}

// RawVariant is a specific purchasable configuration nested inside a product
// payload. When present it overrides the corresponding product attributes.
type RawVariant struct {
	ID            *int64  `json:"id"`
	Price         *Number `json:"price"`
	DiscountPrice *Number `json:"discount_price"`
	Stock         *Number `json:"stock"`
	Image         Text    `json:"image"`
	Weight        Text    `json:"weight"`
	Size          Text    `json:"size"`
	Category      Text    `json:"category"`
	ProductType   Text    `json:"product_type"`
}

// RawProduct covers every product-bearing payload the backend emits: flat
// products, product+variant, and invoice line items.
type RawProduct struct {
	Identifier    Text        `json:"identifier"`
	Name          Text        `json:"name"`
	ProductName   Text        `json:"product_name"`
	Price         *Number     `json:"price"`
	DiscountPrice *Number     `json:"discount_price"`
	Stock         *Number     `json:"stock"`
	AvailableStock *Number    `json:"available_stock"`
	CurrentStock  *Number     `json:"current_stock"`
	TotalStock    *Number     `json:"total_stock"`
	Quantity      *Number     `json:"quantity"`
	Image         Text        `json:"image"`
	Weight        Text        `json:"weight"`
	Size          Text        `json:"size"`
	Category      Text        `json:"category"`
	ProductType   Text        `json:"product_type"`
	VariantID     *int64      `json:"variant_id"`
	Variant       *RawVariant `json:"variant"`
}
