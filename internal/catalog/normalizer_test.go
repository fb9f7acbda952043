package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func num(v float64) *Number {
	n := Number(v)
	return &n
}

func TestNormalizeFlatProduct(t *testing.T) {
	raw := RawProduct{
		Identifier:  "VP-100",
		ProductName: "Organic Green Tea",
		Price:       num(249),
		Stock:       num(12),
		Image:       "products/tea.jpg",
		Weight:      "250",
		Size:        "M",
		Category:    "Beverages",
	}

	p := Normalize(raw)
	require.Equal(t, "VP-100", p.Identifier)
	require.Equal(t, "Organic Green Tea", p.Name)
	require.Equal(t, 249.0, p.Price)
	require.Equal(t, 249.0, p.ListPrice)
	require.Equal(t, 12, p.Stock)
	require.Equal(t, "250", p.Weight)
	require.Equal(t, "M", p.Size)
	require.Equal(t, "Beverages", p.Category)
	require.Equal(t, DefaultProductType, p.ProductType)
	require.Nil(t, p.VariantID)
}

func TestNormalizeVariantOverridesProduct(t *testing.T) {
	variantID := int64(7)
	raw := RawProduct{
		Identifier: "VP-200",
		Name:       "Honey",
		Price:      num(500),
		Stock:      num(100),
		Weight:     "1000",
		Size:       "L",
		Image:      "products/honey-large.jpg",
		Variant: &RawVariant{
			ID:            &variantID,
			Price:         num(300),
			DiscountPrice: num(270),
			Stock:         num(4),
			Weight:        "500",
			Size:          "S",
			Image:         "variants/honey-small.jpg",
		},
	}

	p := Normalize(raw)
	require.Equal(t, 270.0, p.Price, "variant discount price wins")
	require.Equal(t, 300.0, p.ListPrice, "variant list price wins")
	require.Equal(t, 4, p.Stock, "variant stock wins")
	require.Equal(t, "500", p.Weight)
	require.Equal(t, "S", p.Size)
	require.Equal(t, "variants/honey-small.jpg", p.ImageRef)
	require.NotNil(t, p.VariantID)
	require.Equal(t, variantID, *p.VariantID)
}

func TestNormalizeVariantWithoutDiscountFallsBackToVariantPrice(t *testing.T) {
	raw := RawProduct{
		Identifier: "VP-201",
		Name:       "Almond Pack",
		Price:      num(600),
		Variant:    &RawVariant{Price: num(499)},
	}

	p := Normalize(raw)
	require.Equal(t, 499.0, p.Price)
	require.Equal(t, 499.0, p.ListPrice)
}

func TestNormalizeStockFallbackChain(t *testing.T) {
	cases := []struct {
		name string
		raw  RawProduct
		want int
	}{
		{"available stock", RawProduct{AvailableStock: num(8)}, 8},
		{"current stock", RawProduct{CurrentStock: num(5)}, 5},
		{"total stock", RawProduct{TotalStock: num(3)}, 3},
		{"quantity", RawProduct{Quantity: num(2)}, 2},
		{"nothing", RawProduct{}, 0},
		{"negative clamps to zero", RawProduct{Stock: num(-4)}, 0},
		{"stock beats available", RawProduct{Stock: num(6), AvailableStock: num(9)}, 6},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Normalize(tc.raw).Stock)
		})
	}
}

func TestNormalizeDefaults(t *testing.T) {
	p := Normalize(RawProduct{Identifier: "VP-300"})
	require.Equal(t, DefaultName, p.Name)
	require.Equal(t, DefaultWeight, p.Weight)
	require.Equal(t, DefaultSize, p.Size)
	require.Equal(t, DefaultCategory, p.Category)
	require.Equal(t, DefaultProductType, p.ProductType)
	require.Zero(t, p.Price)
	require.Zero(t, p.Stock)
}

func TestNormalizeListPriceNeverBelowPrice(t *testing.T) {
	// A payload where the discounted price exceeds the list price still
	// yields list >= price.
	raw := RawProduct{
		Identifier:    "VP-301",
		Price:         num(100),
		DiscountPrice: num(150),
	}
	p := Normalize(raw)
	require.Equal(t, 150.0, p.Price)
	require.GreaterOrEqual(t, p.ListPrice, p.Price)
}

func TestNormalizeToleratesMessyJSON(t *testing.T) {
	payload := []byte(`{
		"identifier": "VP-400",
		"product_name": "Dry Fruit Mix",
		"price": "399.50",
		"stock": "7",
		"weight": 250,
		"variant": {"discount_price": "349", "stock": null}
	}`)

	var raw RawProduct
	require.NoError(t, json.Unmarshal(payload, &raw))

	p := Normalize(raw)
	require.Equal(t, 349.0, p.Price)
	require.Equal(t, 7, p.Stock, "null variant stock falls through to product stock")
	require.Equal(t, "250", p.Weight)
}

func TestNormalizeInvoiceLineItemShape(t *testing.T) {
	variantID := int64(12)
	raw := RawProduct{
		Identifier:  "VP-500",
		ProductName: "Natural Honey Bottle",
		Price:       num(199),
		Quantity:    num(2),
		VariantID:   &variantID,
	}

	p := Normalize(raw)
	require.Equal(t, "Natural Honey Bottle", p.Name)
	require.Equal(t, 2, p.Stock, "invoice rows carry quantity only")
	require.Equal(t, variantID, *p.VariantID)
}
