package catalog

// Normalize maps a raw backend payload into the canonical Product. It is a
// total function: missing or malformed fields degrade to documented defaults
// and it never fails. Variant attributes, when present, win over product-level
// attributes for every overlapping field.
func Normalize(raw RawProduct) Product {
	v := raw.Variant

	p := Product{
		Identifier:  raw.Identifier.String(),
		Name:        firstText(DefaultName, raw.ProductName, raw.Name),
		Price:       price(raw),
		ListPrice:   listPrice(raw),
		Stock:       stock(raw),
		Weight:      DefaultWeight,
		Size:        DefaultSize,
		Category:    DefaultCategory,
		ProductType: DefaultProductType,
		VariantID:   raw.VariantID,
	}

	p.ImageRef = firstText("", raw.Image)
	p.Weight = firstText(DefaultWeight, raw.Weight)
	p.Size = firstText(DefaultSize, raw.Size)
	p.Category = firstText(DefaultCategory, raw.Category)
	p.ProductType = firstText(DefaultProductType, raw.ProductType)

	if v != nil {
		if s := v.Image.String(); s != "" {
			p.ImageRef = s
		}
		if s := v.Weight.String(); s != "" {
			p.Weight = s
		}
		if s := v.Size.String(); s != "" {
			p.Size = s
		}
		if s := v.Category.String(); s != "" {
			p.Category = s
		}
		if s := v.ProductType.String(); s != "" {
			p.ProductType = s
		}
		if v.ID != nil {
			p.VariantID = v.ID
		}
	}

	if p.Price < 0 {
		p.Price = 0
	}
	if p.ListPrice < p.Price {
		p.ListPrice = p.Price
	}
	return p
}

// price resolves the effective (discounted) price:
// variant.discount_price > variant.price > discount_price > price > 0.
func price(raw RawProduct) float64 {
	if v := raw.Variant; v != nil {
		if n := numberOf(v.DiscountPrice); n != nil {
			return *n
		}
		if n := numberOf(v.Price); n != nil {
			return *n
		}
	}
	if n := numberOf(raw.DiscountPrice); n != nil {
		return *n
	}
	if n := numberOf(raw.Price); n != nil {
		return *n
	}
	return 0
}

// listPrice resolves the pre-discount price: variant.price > price > 0.
func listPrice(raw RawProduct) float64 {
	if v := raw.Variant; v != nil {
		if n := numberOf(v.Price); n != nil {
			return *n
		}
	}
	if n := numberOf(raw.Price); n != nil {
		return *n
	}
	return 0
}

// stock resolves available stock:
// variant.stock > stock > available_stock > current_stock > total_stock > quantity > 0.
func stock(raw RawProduct) int {
	chain := []*Number{raw.Stock, raw.AvailableStock, raw.CurrentStock, raw.TotalStock, raw.Quantity}
	if v := raw.Variant; v != nil {
		chain = append([]*Number{v.Stock}, chain...)
	}
	for _, n := range chain {
		if f := numberOf(n); f != nil {
			if *f < 0 {
				return 0
			}
			return int(*f)
		}
	}
	return 0
}

func numberOf(n *Number) *float64 {
	if n == nil {
		return nil
	}
	f := float64(*n)
	return &f
}

func firstText(fallback string, candidates ...Text) string {
	for _, c := range candidates {
		if s := c.String(); s != "" {
			return s
		}
	}
	return fallback
}
