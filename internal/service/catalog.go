package service

import (
	"context"
	"log/slog"
	"strings"

	apperrors "github.com/DonatHalimi/OmniShop/pkg/errors"

	"github.com/DonatHalimi/OmniShop/internal/domain"
	"github.com/DonatHalimi/OmniShop/internal/listing"
	"github.com/DonatHalimi/OmniShop/internal/session"
)

// Suggestion limits.
const (
	DefaultSuggestLimit = 5
	MaxSuggestLimit     = 20
)

// Listing is a product list as shown by one of the session's list views.
type Listing struct {
	State    listing.State    `json:"state"`
	Sort     listing.SortKey  `json:"sort"`
	Param    string           `json:"param,omitempty"`
	Products []domain.Product `json:"products"`
	Count    int              `json:"count"`
	// Stale is set when a newer request for the same view finished first;
	// Products still answers this request but is not what the view shows.
	Stale bool `json:"stale,omitempty"`
}

func newListing(snap listing.Snapshot) Listing {
	return Listing{
		State:    snap.State,
		Sort:     snap.Sort,
		Param:    snap.Param,
		Products: snap.Products,
		Count:    len(snap.Products),
		Stale:    snap.Superseded,
	}
}

// ListProducts loads the full catalog into the session's "all" view and
// returns it ordered by sortKey.
func (s *Storefront) ListProducts(ctx context.Context, sessionID, sortKey string) (Listing, error) {
	return s.loadView(ctx, sessionID, session.ViewAll, "", sortKey, s.fetchAll)
}

// ListByCategory loads one category into the session's "category" view.
func (s *Storefront) ListByCategory(ctx context.Context, sessionID, category, sortKey string) (Listing, error) {
	if strings.TrimSpace(category) == "" {
		return Listing{}, apperrors.InvalidInput("category is required")
	}
	return s.loadView(ctx, sessionID, session.ViewCategory, category, sortKey, func(ctx context.Context) ([]domain.Product, error) {
		return s.catalog.ListByCategory(ctx, category)
	})
}

// Search loads the products whose title contains query into the session's
// "search" view. A blank query is rejected.
func (s *Storefront) Search(ctx context.Context, sessionID, query, sortKey string) (Listing, error) {
	if strings.TrimSpace(query) == "" {
		return Listing{}, apperrors.InvalidInput("please enter a search query")
	}
	return s.loadView(ctx, sessionID, session.ViewSearch, query, sortKey, func(ctx context.Context) ([]domain.Product, error) {
		products, err := s.fetchAll(ctx)
		if err != nil {
			return nil, err
		}
		return listing.Filter(products, query), nil
	})
}

// Suggest returns up to limit products matching query for a search-as-you-type
// dropdown. A blank query yields no suggestions.
func (s *Storefront) Suggest(ctx context.Context, query string, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}
	if limit > MaxSuggestLimit {
		limit = MaxSuggestLimit
	}
	if strings.TrimSpace(query) == "" {
		return []domain.Product{}, nil
	}

	var products []domain.Product
	if snap := s.Snapshot(); snap != nil {
		products = snap.Products()
	} else {
		var err error
		if products, err = s.fetchAll(ctx); err != nil {
			s.log(ctx).ErrorContext(ctx, "failed to load catalog for suggestions", slog.String("error", err.Error()))
			return nil, err
		}
	}
	return listing.Suggest(products, query, limit), nil
}

// GetProduct returns one product.
func (s *Storefront) GetProduct(ctx context.Context, id int) (*domain.Product, error) {
	if id <= 0 {
		return nil, apperrors.InvalidInput("product id must be a positive integer")
	}
	p, err := s.catalog.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListCategories returns the catalog's category names.
func (s *Storefront) ListCategories(ctx context.Context) ([]string, error) {
	categories, err := s.catalog.ListCategories(ctx)
	if err != nil {
		s.log(ctx).ErrorContext(ctx, "failed to list categories", slog.String("error", err.Error()))
		return nil, err
	}
	return categories, nil
}

func (s *Storefront) loadView(
	ctx context.Context,
	sessionID, viewName, param, sortKey string,
	fetch func(context.Context) ([]domain.Product, error),
) (Listing, error) {
	key, err := listing.ParseSortKey(sortKey)
	if err != nil {
		return Listing{}, err
	}

	view := s.sessions.GetOrCreate(sessionID).View(viewName)
	snap, err := view.Load(ctx, param, fetch)
	if err != nil {
		s.log(ctx).ErrorContext(ctx, "failed to load product list",
			slog.String("view", viewName),
			slog.String("param", param),
			slog.String("error", err.Error()),
		)
		return Listing{}, err
	}

	if key == listing.Relevance {
		return newListing(snap), nil
	}
	if snap.Superseded {
		snap.Products = listing.Sort(snap.Products, key)
		snap.Sort = key
		return newListing(snap), nil
	}

	sorted, err := view.SelectSort(ctx, key)
	if err != nil {
		return Listing{}, err
	}
	return newListing(sorted), nil
}
