// Package service implements the storefront's use cases on top of the
// catalog gateway and the per-session stores.
package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/DonatHalimi/OmniShop/pkg/logger"

	"github.com/DonatHalimi/OmniShop/internal/catalog"
	"github.com/DonatHalimi/OmniShop/internal/domain"
	"github.com/DonatHalimi/OmniShop/internal/session"
	"github.com/DonatHalimi/OmniShop/internal/store"
)

// EventPublisher announces cart and wishlist changes. *event.Producer
// satisfies it.
type EventPublisher interface {
	PublishCartUpdated(ctx context.Context, sessionID string, change store.Change, itemCount int, total decimal.Decimal) error
	PublishWishlistUpdated(ctx context.Context, sessionID string, change store.Change, entryCount int) error
}

// Storefront implements the storefront operations.
type Storefront struct {
	catalog  catalog.Gateway
	sessions *session.Registry
	events   EventPublisher
	logger   *slog.Logger

	mu       sync.RWMutex
	snapshot *domain.Catalog
}

// NewStorefront creates a new storefront service.
func NewStorefront(gw catalog.Gateway, sessions *session.Registry, events EventPublisher, logger *slog.Logger) *Storefront {
	return &Storefront{
		catalog:  gw,
		sessions: sessions,
		events:   events,
		logger:   logger,
	}
}

func (s *Storefront) log(ctx context.Context) *slog.Logger {
	return logger.WithContext(ctx, s.logger)
}

// Snapshot returns the most recent full catalog listing, or nil if none
// has been fetched yet.
func (s *Storefront) Snapshot() *domain.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

func (s *Storefront) setSnapshot(products []domain.Product) {
	c := domain.NewCatalog(products)
	s.mu.Lock()
	s.snapshot = c
	s.mu.Unlock()
}

// fetchAll lists every product and records the result as the snapshot.
func (s *Storefront) fetchAll(ctx context.Context) ([]domain.Product, error) {
	products, err := s.catalog.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	s.setSnapshot(products)
	return products, nil
}

// prices returns the snapshot used for totals, loading it if needed. A
// failed load is logged and yields an empty snapshot so totals degrade to
// zero-priced lines instead of failing the request.
func (s *Storefront) prices(ctx context.Context) *domain.Catalog {
	if c := s.Snapshot(); c != nil {
		return c
	}
	if _, err := s.fetchAll(ctx); err != nil {
		s.log(ctx).WarnContext(ctx, "catalog snapshot unavailable, totals use known prices only",
			slog.String("error", err.Error()),
		)
		return nil
	}
	return s.Snapshot()
}
