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

// ScanProduct looks up a product by its scanned QR code. A miss surfaces as
// shared.ErrNotFound with session state untouched by the caller.
func (c *Client) ScanProduct(ctx context.Context, code string) (catalog.RawProduct, error) {
	env, err := c.do(ctx, http.MethodPost, "/scan-product/"+url.PathEscape(code), nil, callOpts{})
	if err != nil {
		return catalog.RawProduct{}, err
	}
	if !env.Success || len(env.Product) == 0 {
		return catalog.RawProduct{}, fmt.Errorf("backend: scan %q: %w", code, shared.ErrNotFound)
	}
	var raw catalog.RawProduct
	if err := json.Unmarshal(env.Product, &raw); err != nil {
		return catalog.RawProduct{}, fmt.Errorf("backend: decode product: %w", shared.ErrBackend)
	}
	return raw, nil
}
