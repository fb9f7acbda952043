package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vedaro/shopdesk/internal/backend"
	"github.com/vedaro/shopdesk/internal/catalog"
	"github.com/vedaro/shopdesk/internal/shared"
)

type fakeLine struct {
	id       int64
	product  string
	qty      int
	price    float64
	stock    int
}

// fakeGateway mimics the backend cart semantics: increase/decrease by one,
// decrease at quantity one deletes the line.
type fakeGateway struct {
	mu        sync.Mutex
	lines     []*fakeLine
	nextID    int64
	listCalls int
	incCalls  int
	decCalls  int
	addCalls  int

	incErr  error
	incGate chan struct{}
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{}
}

func (g *fakeGateway) seed(product string, qty int, price float64, stock int) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextID++
	g.lines = append(g.lines, &fakeLine{id: g.nextID, product: product, qty: qty, price: price, stock: stock})
	return g.nextID
}

func (g *fakeGateway) CartList(ctx context.Context) ([]backend.RawCartLine, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listCalls++
	out := make([]backend.RawCartLine, 0, len(g.lines))
	for _, l := range g.lines {
		price := catalog.Number(l.price)
		stock := catalog.Number(l.stock)
		out = append(out, backend.RawCartLine{
			CartID:         l.id,
			ProductID:      catalog.Text(l.product),
			Name:           catalog.Text("Product " + l.product),
			Quantity:       catalog.Number(l.qty),
			Total:          catalog.Number(l.price * float64(l.qty)),
			Price:          &price,
			AvailableStock: &stock,
		})
	}
	return out, nil
}

func (g *fakeGateway) CartAdd(ctx context.Context, identifier string, qty int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.addCalls++
	for _, l := range g.lines {
		if l.product == identifier {
			return fmt.Errorf("%w: item already in cart", shared.ErrBackend)
		}
	}
	g.nextID++
	g.lines = append(g.lines, &fakeLine{id: g.nextID, product: identifier, qty: qty, price: 100, stock: 10})
	return nil
}

func (g *fakeGateway) CartIncrease(ctx context.Context, cartID int64) error {
	if g.incGate != nil {
		<-g.incGate
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.incCalls++
	if g.incErr != nil {
		return g.incErr
	}
	for _, l := range g.lines {
		if l.id == cartID {
			l.qty++
			return nil
		}
	}
	return shared.ErrNotFound
}

func (g *fakeGateway) CartDecrease(ctx context.Context, cartID int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.decCalls++
	for i, l := range g.lines {
		if l.id == cartID {
			l.qty--
			if l.qty <= 0 {
				g.lines = append(g.lines[:i], g.lines[i+1:]...)
			}
			return nil
		}
	}
	return shared.ErrNotFound
}

func testContext() context.Context {
	return shared.ContextWithToken(context.Background(), "staff-token")
}

func newTestService(g *fakeGateway) *Service {
	return NewService(g, slog.New(slog.DiscardHandler))
}

func TestFetchComputesGrandTotalFromLines(t *testing.T) {
	g := newFakeGateway()
	g.seed("P1", 2, 50, 5)
	g.seed("P2", 1, 199, 3)
	svc := newTestService(g)

	view, err := svc.Fetch(testContext())
	require.NoError(t, err)
	require.Len(t, view.Lines, 2)
	require.Equal(t, 100.0+199.0, view.GrandTotal)
}

func TestIncreaseRejectedAtStockLimitWithoutNetworkCall(t *testing.T) {
	g := newFakeGateway()
	id := g.seed("P1", 2, 50, 2)
	svc := newTestService(g)

	_, err := svc.Fetch(testContext())
	require.NoError(t, err)

	_, err = svc.Increase(testContext(), id)
	require.ErrorIs(t, err, ErrStockLimit)
	require.Zero(t, g.incCalls, "stock guard must not reach the gateway")

	view, err := svc.Fetch(testContext())
	require.NoError(t, err)
	require.Equal(t, 2, view.Lines[0].Quantity)
}

func TestIncreaseRefetchesAfterMutation(t *testing.T) {
	g := newFakeGateway()
	id := g.seed("P1", 1, 50, 5)
	svc := newTestService(g)

	view, err := svc.Increase(testContext(), id)
	require.NoError(t, err)
	require.Equal(t, 1, g.incCalls)
	require.Equal(t, 2, view.Lines[0].Quantity)
	require.Equal(t, 100.0, view.GrandTotal, "total comes from the refetch, not local arithmetic")
}

func TestDecreaseScenario(t *testing.T) {
	g := newFakeGateway()
	id := g.seed("P1", 2, 50, 2)
	svc := newTestService(g)

	// Increase at the stock ceiling is rejected, quantity stays 2.
	_, err := svc.Fetch(testContext())
	require.NoError(t, err)
	_, err = svc.Increase(testContext(), id)
	require.ErrorIs(t, err, ErrStockLimit)

	// First decrease needs no confirmation.
	view, err := svc.Decrease(testContext(), id, false)
	require.NoError(t, err)
	require.Equal(t, 1, view.Lines[0].Quantity)

	// Second decrease without confirmation leaves the line untouched.
	_, err = svc.Decrease(testContext(), id, false)
	require.ErrorIs(t, err, ErrRemovalConfirmationRequired)
	view, err = svc.Fetch(testContext())
	require.NoError(t, err)
	require.Equal(t, 1, view.Lines[0].Quantity)

	// With confirmation the line is removed and the cart is empty.
	view, err = svc.Decrease(testContext(), id, true)
	require.NoError(t, err)
	require.Empty(t, view.Lines)
	require.Zero(t, view.GrandTotal)
}

func TestAddOrIncreaseMergesExistingLine(t *testing.T) {
	g := newFakeGateway()
	g.seed("P1", 1, 100, 10)
	svc := newTestService(g)

	view, err := svc.AddOrIncrease(testContext(), "P1")
	require.NoError(t, err)
	require.Len(t, view.Lines, 1, "merge check must not create a duplicate line")
	require.Equal(t, 2, view.Lines[0].Quantity)
	require.Equal(t, 1, g.incCalls)
	require.Zero(t, g.addCalls)
}

func TestAddOrIncreaseInsertsNewLine(t *testing.T) {
	g := newFakeGateway()
	svc := newTestService(g)

	view, err := svc.AddOrIncrease(testContext(), "P9")
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	require.Equal(t, 1, view.Lines[0].Quantity)
	require.Equal(t, 1, g.addCalls)
}

func TestSecondMutationForSameLineRejectedWhileInFlight(t *testing.T) {
	g := newFakeGateway()
	id := g.seed("P1", 1, 50, 5)
	g.incGate = make(chan struct{})
	svc := newTestService(g)

	_, err := svc.Fetch(testContext())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Increase(testContext(), id)
		done <- err
	}()

	// Wait for the first mutation to be marked in flight.
	require.Eventually(t, func() bool {
		view := svc.view("staff-token")
		return len(view.Lines) == 1 && view.Lines[0].Mutating
	}, time.Second, 5*time.Millisecond)

	_, err = svc.Increase(testContext(), id)
	require.ErrorIs(t, err, ErrMutationInFlight)

	close(g.incGate)
	require.NoError(t, <-done)

	view, err := svc.Fetch(testContext())
	require.NoError(t, err)
	require.Equal(t, 2, view.Lines[0].Quantity, "only one increase landed")
	require.False(t, view.Lines[0].Mutating)
}

func TestFailedMutationLeavesLastFetchedState(t *testing.T) {
	g := newFakeGateway()
	id := g.seed("P1", 2, 50, 5)
	svc := newTestService(g)

	before, err := svc.Fetch(testContext())
	require.NoError(t, err)

	g.incErr = errors.New("boom")
	_, err = svc.Increase(testContext(), id)
	require.Error(t, err)
	g.incErr = nil

	after, err := svc.Fetch(testContext())
	require.NoError(t, err)
	require.Equal(t, before.Lines[0].Quantity, after.Lines[0].Quantity)
	require.Equal(t, before.GrandTotal, after.GrandTotal)
}

func TestFetchRequiresToken(t *testing.T) {
	svc := newTestService(newFakeGateway())
	_, err := svc.Fetch(context.Background())
	require.ErrorIs(t, err, shared.ErrUnauthenticated)
}
