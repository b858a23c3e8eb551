// Package catalog defines the read-only product catalog the storefront
// browses.
package catalog

import (
	"context"

	"github.com/DonatHalimi/OmniShop/internal/domain"
)

// Gateway reads products from the remote catalog.
type Gateway interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int) (*domain.Product, error)
	ListByCategory(ctx context.Context, category string) ([]domain.Product, error)
	ListCategories(ctx context.Context) ([]string, error)
}

// Checker returns a readiness probe that asks gw for its categories.
func Checker(gw Gateway) func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := gw.ListCategories(ctx)
		return err
	}
}
