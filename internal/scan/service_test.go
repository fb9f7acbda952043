package scan

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vedaro/shopdesk/internal/cart"
	"github.com/vedaro/shopdesk/internal/catalog"
	"github.com/vedaro/shopdesk/internal/shared"
)

type fakeCatalog struct {
	lookups  int
	products map[string]catalog.RawProduct
}

func (f *fakeCatalog) ScanProduct(ctx context.Context, code string) (catalog.RawProduct, error) {
	f.lookups++
	raw, ok := f.products[code]
	if !ok {
		return catalog.RawProduct{}, fmt.Errorf("scan %q: %w", code, shared.ErrNotFound)
	}
	return raw, nil
}

type fakeCart struct {
	added []string
	qty   map[string]int
}

func (f *fakeCart) AddOrIncrease(ctx context.Context, identifier string) (cart.View, error) {
	if f.qty == nil {
		f.qty = make(map[string]int)
	}
	f.added = append(f.added, identifier)
	f.qty[identifier]++
	view := cart.View{}
	for id, q := range f.qty {
		view.Lines = append(view.Lines, cart.LineView{Line: cart.Line{ProductID: id, Quantity: q}})
	}
	return view, nil
}

func rawProduct(identifier string) catalog.RawProduct {
	price := catalog.Number(100)
	return catalog.RawProduct{
		Identifier: catalog.Text(identifier),
		Name:       catalog.Text("Product " + identifier),
		Price:      &price,
	}
}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestService(products ...string) (*Service, *fakeCatalog, *fakeCart, *testClock) {
	cat := &fakeCatalog{products: make(map[string]catalog.RawProduct)}
	for _, p := range products {
		cat.products[p] = rawProduct(p)
	}
	crt := &fakeCart{}
	svc := NewService(cat, crt, slog.New(slog.DiscardHandler), Config{})
	clock := &testClock{now: time.Date(2025, 11, 12, 16, 30, 0, 0, time.UTC)}
	svc.clock = clock.Now
	return svc, cat, crt, clock
}

const key = "terminal-1"

func TestScanAccepted(t *testing.T) {
	svc, cat, _, _ := newTestService("A")
	svc.Open(key)

	res, err := svc.Scan(context.Background(), key, "A")
	require.NoError(t, err)
	require.Equal(t, OutcomeAccepted, res.Outcome)
	require.Len(t, res.View.Items, 1)
	require.Equal(t, ModeGrid, res.View.Mode)
	require.Equal(t, 1, cat.lookups)
}

func TestDebounceIgnoresBurstRepeat(t *testing.T) {
	svc, cat, _, clock := newTestService("A")
	svc.Open(key)

	res, err := svc.Scan(context.Background(), key, "A")
	require.NoError(t, err)
	require.Equal(t, OutcomeAccepted, res.Outcome)

	// Same code within the debounce window: ignored, no catalog call.
	clock.Advance(200 * time.Millisecond)
	res, err = svc.Scan(context.Background(), key, "A")
	require.NoError(t, err)
	require.Equal(t, OutcomeIgnored, res.Outcome)
	require.Len(t, res.View.Items, 1, "exactly one accepted item, not two")
	require.Equal(t, 1, cat.lookups)
}

func TestDuplicateAfterDebounceWindow(t *testing.T) {
	svc, cat, _, clock := newTestService("A")
	svc.Open(key)

	_, err := svc.Scan(context.Background(), key, "A")
	require.NoError(t, err)

	clock.Advance(2 * time.Second)
	res, err := svc.Scan(context.Background(), key, "A")
	require.NoError(t, err)
	require.Equal(t, OutcomeDuplicate, res.Outcome)
	require.Equal(t, "Already scanned", res.View.DuplicateNotice)
	require.Equal(t, 1, cat.lookups, "duplicates never reach the catalog")

	// The notice is transient and self-clears.
	clock.Advance(1500 * time.Millisecond)
	view, err := svc.Get(key)
	require.NoError(t, err)
	require.Empty(t, view.DuplicateNotice)
}

func TestModeSwitchesToTableAtTwoItems(t *testing.T) {
	svc, _, _, clock := newTestService("A", "B", "C")
	svc.Open(key)

	res, _ := svc.Scan(context.Background(), key, "A")
	require.Equal(t, ModeGrid, res.View.Mode)

	clock.Advance(2 * time.Second)
	res, err := svc.Scan(context.Background(), key, "B")
	require.NoError(t, err)
	require.Equal(t, ModeTable, res.View.Mode)

	// Removal below two items reverts to grid.
	view, err := svc.Remove(key, "B")
	require.NoError(t, err)
	require.Equal(t, ModeGrid, view.Mode)
}

func TestFourthDistinctScanRejected(t *testing.T) {
	svc, _, _, clock := newTestService("A", "B", "C", "D")
	svc.Open(key)

	for _, code := range []string{"A", "B", "C"} {
		_, err := svc.Scan(context.Background(), key, code)
		require.NoError(t, err)
		clock.Advance(2 * time.Second)
	}

	_, err := svc.Scan(context.Background(), key, "D")
	require.ErrorIs(t, err, ErrScanLimit)

	view, err := svc.Get(key)
	require.NoError(t, err)
	require.Len(t, view.Items, MaxItems, "items never grow past the cap")
}

func TestScanMissKeepsSessionUnchanged(t *testing.T) {
	svc, _, _, _ := newTestService()
	svc.Open(key)

	_, err := svc.Scan(context.Background(), key, "UNKNOWN")
	require.ErrorIs(t, err, shared.ErrNotFound)

	view, err := svc.Get(key)
	require.NoError(t, err)
	require.Empty(t, view.Items)
}

func TestOpenResetsSession(t *testing.T) {
	svc, _, _, _ := newTestService("A")
	svc.Open(key)
	_, err := svc.Scan(context.Background(), key, "A")
	require.NoError(t, err)

	view := svc.Open(key)
	require.Empty(t, view.Items)
	require.Equal(t, ModeGrid, view.Mode)
}

func TestScanWithoutSession(t *testing.T) {
	svc, _, _, _ := newTestService("A")
	_, err := svc.Scan(context.Background(), key, "A")
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestAddAllGoesThroughMergeCheck(t *testing.T) {
	svc, _, crt, clock := newTestService("A", "B")
	svc.Open(key)

	_, err := svc.Scan(context.Background(), key, "A")
	require.NoError(t, err)
	clock.Advance(2 * time.Second)
	_, err = svc.Scan(context.Background(), key, "B")
	require.NoError(t, err)

	// "A" is already in the cart via the direct flow; bulk add must merge.
	_, err = crt.AddOrIncrease(context.Background(), "A")
	require.NoError(t, err)

	view, err := svc.AddAll(context.Background(), key)
	require.NoError(t, err)
	require.Equal(t, []string{"A", "A", "B"}, crt.added)
	require.Len(t, view.Lines, 2, "one line per product, no duplicates")
	require.Equal(t, 2, crt.qty["A"])
	require.Equal(t, 1, crt.qty["B"])
}

func TestSweepDropsIdleSessions(t *testing.T) {
	svc, _, _, clock := newTestService("A")
	svc.Open(key)
	svc.Open("terminal-2")

	clock.Advance(31 * time.Minute)
	require.Equal(t, 2, svc.Sweep())
	_, err := svc.Get(key)
	require.ErrorIs(t, err, ErrSessionNotFound)
}
