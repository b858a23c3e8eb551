// Package listing derives display lists from a catalog snapshot: sorting,
// text filtering, search suggestions and the per-screen list view state.
package listing

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	apperrors "github.com/DonatHalimi/OmniShop/pkg/errors"

	"github.com/DonatHalimi/OmniShop/internal/domain"
)

// SortKey selects a display order.
type SortKey string

const (
	Relevance SortKey = "relevance"
	TitleAsc  SortKey = "titleAsc"
	TitleDesc SortKey = "titleDesc"
	PriceAsc  SortKey = "priceAsc"
	PriceDesc SortKey = "priceDesc"
)

// SortKeys lists every supported key.
var SortKeys = []SortKey{Relevance, TitleAsc, TitleDesc, PriceAsc, PriceDesc}

// ParseSortKey maps a query value to a SortKey. The empty string selects
// Relevance.
func ParseSortKey(s string) (SortKey, error) {
	if s == "" {
		return Relevance, nil
	}
	for _, k := range SortKeys {
		if string(k) == s {
			return k, nil
		}
	}
	return "", apperrors.InvalidInput("unknown sort key: " + s)
}

// Sort returns a sorted copy of list; list itself is never modified.
// Relevance keeps fetch order. Titles compare with English collation and
// ties keep their relative fetch order. Unknown keys behave as Relevance.
func Sort(list []domain.Product, key SortKey) []domain.Product {
	out := make([]domain.Product, len(list))
	copy(out, list)

	switch key {
	case TitleAsc, TitleDesc:
		// Collators carry scratch buffers and must not be shared across goroutines.
		col := collate.New(language.English)
		sort.SliceStable(out, func(i, j int) bool {
			c := col.CompareString(out[i].Title, out[j].Title)
			if key == TitleDesc {
				return c > 0
			}
			return c < 0
		})
	case PriceAsc:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Price.LessThan(out[j].Price)
		})
	case PriceDesc:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Price.GreaterThan(out[j].Price)
		})
	}
	return out
}

// Filter returns the products whose title contains query, ignoring case,
// in list order. A blank query matches nothing.
func Filter(list []domain.Product, query string) []domain.Product {
	out := []domain.Product{}
	if strings.TrimSpace(query) == "" {
		return out
	}
	needle := strings.ToLower(query)
	for _, p := range list {
		if strings.Contains(strings.ToLower(p.Title), needle) {
			out = append(out, p)
		}
	}
	return out
}

// Suggest returns at most limit matches of Filter for a search-as-you-type
// dropdown. A non-positive limit yields no suggestions.
func Suggest(list []domain.Product, query string, limit int) []domain.Product {
	if limit <= 0 {
		return []domain.Product{}
	}
	matches := Filter(list, query)
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}
