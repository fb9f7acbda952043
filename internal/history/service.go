// Package history exposes previously invoiced items as a read model, cached
// in Redis per staff member.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vedaro/shopdesk/internal/catalog"
)

// Gateway fetches invoiced items from the backend.
type Gateway interface {
	InvoiceItemsHistory(ctx context.Context) ([]catalog.RawProduct, error)
}

// Service serves the invoice-items history, normalized and cached.
type Service struct {
	gateway Gateway
	cache   *redis.Client
	ttl     time.Duration
	logger  *slog.Logger
}

// NewService builds a Service.
func NewService(gateway Gateway, cache *redis.Client, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{gateway: gateway, cache: cache, ttl: ttl, logger: logger}
}

func cacheKey(staffID string) string {
	return "history:items:" + staffID
}

// Items returns the invoiced-item history for a staff member, from cache when
// fresh. A cache failure degrades to a backend fetch, never to an error.
func (s *Service) Items(ctx context.Context, staffID string) ([]catalog.Product, error) {
	if s.cache != nil && staffID != "" {
		data, err := s.cache.Get(ctx, cacheKey(staffID)).Bytes()
		if err == nil {
			var items []catalog.Product
			if err := json.Unmarshal(data, &items); err == nil {
				return items, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn("history cache read", slog.Any("error", err))
		}
	}
	return s.Warm(ctx, staffID)
}

// Warm fetches the history from the backend, normalizes it, and refreshes the
// cache. Used both on cache miss and by the worker warmup job.
func (s *Service) Warm(ctx context.Context, staffID string) ([]catalog.Product, error) {
	raw, err := s.gateway.InvoiceItemsHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch invoice history: %w", err)
	}
	items := make([]catalog.Product, 0, len(raw))
	for _, r := range raw {
		items = append(items, catalog.Normalize(r))
	}

	if s.cache != nil && staffID != "" {
		data, err := json.Marshal(items)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey(staffID), data, s.ttl).Err(); err != nil {
				s.logger.Warn("history cache write", slog.Any("error", err))
			}
		}
	}
	return items, nil
}
