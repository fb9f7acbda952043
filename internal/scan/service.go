package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vedaro/shopdesk/internal/cart"
	"github.com/vedaro/shopdesk/internal/catalog"
)

var (
	// ErrScanLimit rejects a scan once the session holds MaxItems products.
	ErrScanLimit = errors.New("scan: session item limit reached")
	// ErrSessionNotFound means no session is open for the staff key.
	ErrSessionNotFound = errors.New("scan: session not open")
	// ErrItemNotFound means the identifier is not held by the session.
	ErrItemNotFound = errors.New("scan: item not in session")
)

const duplicateNotice = "Already scanned"

// CatalogGateway looks up a product by its scanned code.
type CatalogGateway interface {
	ScanProduct(ctx context.Context, code string) (catalog.RawProduct, error)
}

// CartPort is the slice of the cart reconciler the scan flow needs. Every
// insertion goes through the merge check, never a blind add.
type CartPort interface {
	AddOrIncrease(ctx context.Context, identifier string) (cart.View, error)
}

// Config groups the session timing knobs.
type Config struct {
	// Debounce ignores a repeat of the immediately preceding code within
	// this window (camera frame bursts).
	Debounce time.Duration
	// NoticeTTL is how long the duplicate notice stays visible.
	NoticeTTL time.Duration
	// IdleTTL is how long an untouched session survives before the sweep
	// discards it.
	IdleTTL time.Duration
}

func (c Config) withDefaults() Config {
	if c.Debounce <= 0 {
		c.Debounce = time.Second
	}
	if c.NoticeTTL <= 0 {
		c.NoticeTTL = 1200 * time.Millisecond
	}
	if c.IdleTTL <= 0 {
		c.IdleTTL = 30 * time.Minute
	}
	return c
}

// Service owns the live scan sessions, keyed by staff session ID. Scan intake
// per session is serialized by the registry lock plus the debounce rule.
type Service struct {
	catalog CatalogGateway
	cart    CartPort
	logger  *slog.Logger
	cfg     Config
	clock   func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

// NewService builds a Service.
func NewService(catalogGw CatalogGateway, cartPort CartPort, logger *slog.Logger, cfg Config) *Service {
	return &Service{
		catalog:  catalogGw,
		cart:     cartPort,
		logger:   logger,
		cfg:      cfg.withDefaults(),
		clock:    time.Now,
		sessions: make(map[string]*session),
	}
}

// Open creates or resets the session for the given staff key. Entering or
// re-entering the compare view always starts from empty.
func (s *Service) Open(key string) View {
	now := s.clock()
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := &session{touchedAt: now}
	s.sessions[key] = sess
	return sess.view(now)
}

// Close destroys the session for the given staff key.
func (s *Service) Close(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, key)
}

// Get returns the current session view.
func (s *Service) Get(key string) (View, error) {
	now := s.clock()
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[key]
	if !ok {
		return View{}, ErrSessionNotFound
	}
	sess.touchedAt = now
	return sess.view(now), nil
}

// Outcome labels what a scan event produced.
type Outcome string

const (
	OutcomeAccepted  Outcome = "accepted"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeIgnored   Outcome = "ignored"
)

// Result is the scan event response: the outcome plus the refreshed view.
type Result struct {
	Outcome Outcome `json:"outcome"`
	View    View    `json:"view"`
}

// Scan processes one raw scan event. Debounced repeats are ignored without a
// network call; duplicates of a held item surface a transient notice, also
// without a network call; a full session rejects with ErrScanLimit. Otherwise
// the catalog is consulted and the normalized product appended.
func (s *Service) Scan(ctx context.Context, key, code string) (Result, error) {
	now := s.clock()

	s.mu.Lock()
	sess, ok := s.sessions[key]
	if !ok {
		s.mu.Unlock()
		return Result{}, ErrSessionNotFound
	}
	sess.touchedAt = now

	// Debounce: the same physical code read twice in one camera burst.
	if code == sess.lastCode && now.Sub(sess.lastScanAt) < s.cfg.Debounce {
		view := sess.view(now)
		s.mu.Unlock()
		return Result{Outcome: OutcomeIgnored, View: view}, nil
	}
	sess.lastCode = code
	sess.lastScanAt = now

	if sess.holds(code) {
		sess.notice = duplicateNotice
		sess.noticeUntil = now.Add(s.cfg.NoticeTTL)
		view := sess.view(now)
		s.mu.Unlock()
		return Result{Outcome: OutcomeDuplicate, View: view}, nil
	}

	if len(sess.items) >= MaxItems {
		s.mu.Unlock()
		return Result{}, fmt.Errorf("%w: max %d items", ErrScanLimit, MaxItems)
	}
	s.mu.Unlock()

	raw, err := s.catalog.ScanProduct(ctx, code)
	if err != nil {
		return Result{}, fmt.Errorf("scan %q: %w", code, err)
	}
	product := catalog.Normalize(raw)

	now = s.clock()
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok = s.sessions[key]
	if !ok {
		// Session reset while the lookup was in flight; discard the result.
		return Result{}, ErrSessionNotFound
	}
	if sess.holds(product.Identifier) {
		sess.notice = duplicateNotice
		sess.noticeUntil = now.Add(s.cfg.NoticeTTL)
		return Result{Outcome: OutcomeDuplicate, View: sess.view(now)}, nil
	}
	if len(sess.items) >= MaxItems {
		return Result{}, fmt.Errorf("%w: max %d items", ErrScanLimit, MaxItems)
	}
	sess.items = append(sess.items, product)
	return Result{Outcome: OutcomeAccepted, View: sess.view(now)}, nil
}

// Remove drops an item from the session; the mode is re-evaluated by View.
func (s *Service) Remove(key, identifier string) (View, error) {
	now := s.clock()
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[key]
	if !ok {
		return View{}, ErrSessionNotFound
	}
	sess.touchedAt = now
	if !sess.remove(identifier) {
		return View{}, fmt.Errorf("%w: %s", ErrItemNotFound, identifier)
	}
	return sess.view(now), nil
}

// AddOne inserts a single held item into the cart through the merge check.
func (s *Service) AddOne(ctx context.Context, key, identifier string) (cart.View, error) {
	s.mu.Lock()
	sess, ok := s.sessions[key]
	if !ok {
		s.mu.Unlock()
		return cart.View{}, ErrSessionNotFound
	}
	if !sess.holds(identifier) {
		s.mu.Unlock()
		return cart.View{}, fmt.Errorf("%w: %s", ErrItemNotFound, identifier)
	}
	s.mu.Unlock()

	return s.cart.AddOrIncrease(ctx, identifier)
}

// AddAll inserts every held item into the cart, merging with existing lines
// one by one. The first failure stops the loop; items already inserted stay
// inserted (the cart refetch reflects them).
func (s *Service) AddAll(ctx context.Context, key string) (cart.View, error) {
	s.mu.Lock()
	sess, ok := s.sessions[key]
	if !ok {
		s.mu.Unlock()
		return cart.View{}, ErrSessionNotFound
	}
	identifiers := make([]string, 0, len(sess.items))
	for _, p := range sess.items {
		identifiers = append(identifiers, p.Identifier)
	}
	s.mu.Unlock()

	var view cart.View
	var err error
	for _, id := range identifiers {
		view, err = s.cart.AddOrIncrease(ctx, id)
		if err != nil {
			return cart.View{}, fmt.Errorf("bulk add %q: %w", id, err)
		}
	}
	return view, nil
}

// Sweep discards sessions idle beyond the configured TTL and returns how many
// were dropped.
func (s *Service) Sweep() int {
	now := s.clock()
	s.mu.Lock()
	defer s.mu.Unlock()
	dropped := 0
	for key, sess := range s.sessions {
		if now.Sub(sess.touchedAt) > s.cfg.IdleTTL {
			delete(s.sessions, key)
			dropped++
		}
	}
	if dropped > 0 {
		s.logger.Info("swept idle scan sessions", slog.Int("count", dropped))
	}
	return dropped
}
