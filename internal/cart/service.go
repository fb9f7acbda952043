package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/vedaro/shopdesk/internal/backend"
	"github.com/vedaro/shopdesk/internal/shared"
)

var (
	// ErrStockLimit rejects an increase locally when quantity has reached
	// the stock snapshot. No network call is made.
	ErrStockLimit = errors.New("cart: stock limit reached")
	// ErrRemovalConfirmationRequired means a decrease would delete the line
	// and the caller has not confirmed removal. The line is untouched.
	ErrRemovalConfirmationRequired = errors.New("cart: removal confirmation required")
	// ErrMutationInFlight rejects a second mutation for a line while one is
	// still pending.
	ErrMutationInFlight = errors.New("cart: mutation already in flight for line")
	// ErrLineNotFound means the line is absent from the latest fetch.
	ErrLineNotFound = errors.New("cart: line not found")
)

// Gateway abstracts the backend cart endpoints for the reconciler.
type Gateway interface {
	CartList(ctx context.Context) ([]backend.RawCartLine, error)
	CartAdd(ctx context.Context, identifier string, qty int) error
	CartIncrease(ctx context.Context, cartID int64) error
	CartDecrease(ctx context.Context, cartID int64) error
}

// cartState is the per-staff snapshot of the last successful fetch plus the
// set of lines with a mutation in flight.
type cartState struct {
	order    []int64
	lines    map[int64]Line
	inflight map[int64]struct{}
}

// Service reconciles the persisted cart against the backend. Every mutation
// is followed by a full refetch; the service never does local quantity
// arithmetic. State is keyed by the staff token so terminals don't share
// snapshots.
type Service struct {
	gateway Gateway
	logger  *slog.Logger

	group singleflight.Group

	mu    sync.Mutex
	state map[string]*cartState
}

// NewService builds a Service.
func NewService(gateway Gateway, logger *slog.Logger) *Service {
	return &Service{
		gateway: gateway,
		logger:  logger,
		state:   make(map[string]*cartState),
	}
}

// View is the read model exposed to the UI: lines with mutation flags and the
// grand total recomputed from the latest fetch.
type View struct {
	Lines      []LineView `json:"lines"`
	GrandTotal float64    `json:"grand_total"`
}

// Fetch returns the authoritative cart state. Concurrent fetches for the same
// staff token are deduplicated.
func (s *Service) Fetch(ctx context.Context) (View, error) {
	token := shared.TokenFromContext(ctx)
	if token == "" {
		return View{}, shared.ErrUnauthenticated
	}
	_, err, _ := s.group.Do(token, func() (any, error) {
		return nil, s.refresh(ctx, token)
	})
	if err != nil {
		return View{}, err
	}
	return s.view(token), nil
}

// Increase increments a line by one. Rejected locally, without a network
// call, when the snapshot quantity has reached stock.
func (s *Service) Increase(ctx context.Context, lineID int64) (View, error) {
	token := shared.TokenFromContext(ctx)
	if token == "" {
		return View{}, shared.ErrUnauthenticated
	}
	line, err := s.snapshotLine(ctx, token, lineID)
	if err != nil {
		return View{}, err
	}
	if line.Quantity >= line.Stock {
		return View{}, fmt.Errorf("%w: line %d at %d of %d", ErrStockLimit, lineID, line.Quantity, line.Stock)
	}

	if err := s.beginMutation(token, lineID); err != nil {
		return View{}, err
	}
	defer s.endMutation(token, lineID)

	if err := s.gateway.CartIncrease(ctx, lineID); err != nil {
		return View{}, fmt.Errorf("increase line %d: %w", lineID, err)
	}
	return s.refetch(ctx, token)
}

// Decrease decrements a line by one. At quantity one the decrement becomes a
// deletion and requires explicit confirmation; without it the cart is left
// untouched.
func (s *Service) Decrease(ctx context.Context, lineID int64, confirmed bool) (View, error) {
	token := shared.TokenFromContext(ctx)
	if token == "" {
		return View{}, shared.ErrUnauthenticated
	}
	line, err := s.snapshotLine(ctx, token, lineID)
	if err != nil {
		return View{}, err
	}
	if line.Quantity <= 1 && !confirmed {
		return View{}, fmt.Errorf("%w: line %d", ErrRemovalConfirmationRequired, lineID)
	}

	if err := s.beginMutation(token, lineID); err != nil {
		return View{}, err
	}
	defer s.endMutation(token, lineID)

	if err := s.gateway.CartDecrease(ctx, lineID); err != nil {
		return View{}, fmt.Errorf("decrease line %d: %w", lineID, err)
	}
	return s.refetch(ctx, token)
}

// AddOrIncrease inserts a product, merging with an existing line first. The
// merge check against the live cart is mandatory: it is what keeps a product
// scanned via two different flows on a single line.
func (s *Service) AddOrIncrease(ctx context.Context, identifier string) (View, error) {
	token := shared.TokenFromContext(ctx)
	if token == "" {
		return View{}, shared.ErrUnauthenticated
	}
	if err := s.refresh(ctx, token); err != nil {
		return View{}, err
	}

	if existing, ok := s.findByProduct(token, identifier); ok {
		return s.Increase(ctx, existing.CartLineID)
	}

	if err := s.gateway.CartAdd(ctx, identifier, 1); err != nil {
		return View{}, fmt.Errorf("add product %q: %w", identifier, err)
	}
	return s.refetch(ctx, token)
}

// refetch is the authoritative refresh that follows every mutation.
func (s *Service) refetch(ctx context.Context, token string) (View, error) {
	if err := s.refresh(ctx, token); err != nil {
		s.logger.Warn("cart refetch after mutation failed", slog.Any("error", err))
		return View{}, err
	}
	return s.view(token), nil
}

func (s *Service) refresh(ctx context.Context, token string) error {
	raw, err := s.gateway.CartList(ctx)
	if err != nil {
		return fmt.Errorf("fetch cart: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stateLocked(token)
	st.order = st.order[:0]
	st.lines = make(map[int64]Line, len(raw))
	for _, r := range raw {
		line := normalizeLine(r)
		st.order = append(st.order, line.CartLineID)
		st.lines[line.CartLineID] = line
	}
	return nil
}

// snapshotLine resolves a line from the latest fetch, refreshing once when
// the line is unknown (e.g. first call after process start).
func (s *Service) snapshotLine(ctx context.Context, token string, lineID int64) (Line, error) {
	s.mu.Lock()
	st := s.stateLocked(token)
	line, ok := st.lines[lineID]
	s.mu.Unlock()
	if ok {
		return line, nil
	}

	if err := s.refresh(ctx, token); err != nil {
		return Line{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	line, ok = s.stateLocked(token).lines[lineID]
	if !ok {
		return Line{}, fmt.Errorf("%w: %d", ErrLineNotFound, lineID)
	}
	return line, nil
}

func (s *Service) findByProduct(token, identifier string) (Line, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stateLocked(token)
	for _, id := range st.order {
		if st.lines[id].ProductID == identifier {
			return st.lines[id], true
		}
	}
	return Line{}, false
}

func (s *Service) beginMutation(token string, lineID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stateLocked(token)
	if _, busy := st.inflight[lineID]; busy {
		return fmt.Errorf("%w: %d", ErrMutationInFlight, lineID)
	}
	st.inflight[lineID] = struct{}{}
	return nil
}

func (s *Service) endMutation(token string, lineID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.stateLocked(token).inflight, lineID)
}

func (s *Service) view(token string) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stateLocked(token)
	v := View{Lines: make([]LineView, 0, len(st.order))}
	for _, id := range st.order {
		line := st.lines[id]
		_, mutating := st.inflight[id]
		v.Lines = append(v.Lines, LineView{Line: line, Mutating: mutating})
		v.GrandTotal += line.LineTotal
	}
	return v
}

// stateLocked returns the per-token state; callers must hold s.mu.
func (s *Service) stateLocked(token string) *cartState {
	st, ok := s.state[token]
	if !ok {
		st = &cartState{lines: make(map[int64]Line), inflight: make(map[int64]struct{})}
		s.state[token] = st
	}
	return st
}
