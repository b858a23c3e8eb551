// Package cache decorates a catalog.Gateway with a Redis response cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"github.com/DonatHalimi/OmniShop/internal/catalog"
	"github.com/DonatHalimi/OmniShop/internal/domain"
)

const keyPrefix = "catalog:"

var lookups = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "catalog_cache_lookups_total",
		Help: "Catalog cache lookups by result (hit, miss, error)",
	},
	[]string{"result"},
)

// Gateway serves catalog reads from Redis when possible and falls back to
// the wrapped gateway. Redis failures never fail a read.
type Gateway struct {
	next   catalog.Gateway
	client redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

var _ catalog.Gateway = (*Gateway)(nil)

// New wraps next with a cache whose entries expire after ttl.
func New(next catalog.Gateway, client redis.UniversalClient, ttl time.Duration, logger *slog.Logger) *Gateway {
	return &Gateway{next: next, client: client, ttl: ttl, logger: logger}
}

// ListProducts implements catalog.Gateway.
func (g *Gateway) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return load(ctx, g, "/products", g.next.ListProducts)
}

// GetProduct implements catalog.Gateway.
func (g *Gateway) GetProduct(ctx context.Context, id int) (*domain.Product, error) {
	return load(ctx, g, "/products/"+strconv.Itoa(id), func(ctx context.Context) (*domain.Product, error) {
		return g.next.GetProduct(ctx, id)
	})
}

// ListByCategory implements catalog.Gateway.
func (g *Gateway) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	return load(ctx, g, "/products/category/"+url.PathEscape(category), func(ctx context.Context) ([]domain.Product, error) {
		return g.next.ListByCategory(ctx, category)
	})
}

// ListCategories implements catalog.Gateway.
func (g *Gateway) ListCategories(ctx context.Context) ([]string, error) {
	return load(ctx, g, "/products/categories", g.next.ListCategories)
}

// Invalidate drops every cached catalog response and reports how many
// entries were removed.
func (g *Gateway) Invalidate(ctx context.Context) (int, error) {
	iter := g.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("redis scan catalog keys: %w", err)
	}
	if len(keys) == 0 {
		return 0, nil
	}
	removed, err := g.client.Del(ctx, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("redis del catalog keys: %w", err)
	}
	g.logger.InfoContext(ctx, "catalog cache invalidated", slog.Int64("removed", removed))
	return int(removed), nil
}

func load[T any](ctx context.Context, g *Gateway, path string, fetch func(context.Context) (T, error)) (T, error) {
	key := keyPrefix + path

	data, err := g.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached T
		if uerr := json.Unmarshal(data, &cached); uerr == nil {
			lookups.WithLabelValues("hit").Inc()
			return cached, nil
		}
		lookups.WithLabelValues("error").Inc()
		g.logger.WarnContext(ctx, "discarding undecodable cache entry", slog.String("key", key))
	case errors.Is(err, redis.Nil):
		lookups.WithLabelValues("miss").Inc()
	default:
		lookups.WithLabelValues("error").Inc()
		g.logger.WarnContext(ctx, "catalog cache read failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}

	value, err := fetch(ctx)
	if err != nil {
		return value, err
	}

	data, err = json.Marshal(value)
	if err != nil {
		g.logger.WarnContext(ctx, "catalog cache encode failed", slog.String("key", key), slog.String("error", err.Error()))
		return value, nil
	}
	if err := g.client.Set(ctx, key, data, g.ttl).Err(); err != nil {
		g.logger.WarnContext(ctx, "catalog cache write failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
	return value, nil
}
