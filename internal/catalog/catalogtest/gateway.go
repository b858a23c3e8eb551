// Package catalogtest provides a testify mock of catalog.Gateway.
package catalogtest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/DonatHalimi/OmniShop/internal/catalog"
	"github.com/DonatHalimi/OmniShop/internal/domain"
)

// Gateway is a mock catalog.Gateway.
type Gateway struct {
	mock.Mock
}

var _ catalog.Gateway = (*Gateway)(nil)

func (m *Gateway) ListProducts(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *Gateway) GetProduct(ctx context.Context, id int) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *Gateway) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *Gateway) ListCategories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
