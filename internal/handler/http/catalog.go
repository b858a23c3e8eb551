package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/DonatHalimi/OmniShop/pkg/errors"
	"github.com/DonatHalimi/OmniShop/pkg/httputil"
	"github.com/DonatHalimi/OmniShop/pkg/middleware"
	"github.com/DonatHalimi/OmniShop/pkg/validator"

	"github.com/DonatHalimi/OmniShop/internal/service"
)

// CatalogHandler handles product browsing and search endpoints.
type CatalogHandler struct {
	service *service.Storefront
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog HTTP handler.
func NewCatalogHandler(svc *service.Storefront, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{service: svc, logger: logger}
}

var errInvalidLimit = apperrors.InvalidInput("limit must be an integer")

// --- Query DTOs ---

type listQuery struct {
	Sort string `validate:"omitempty,oneof=relevance titleAsc titleDesc priceAsc priceDesc"`
}

type searchQuery struct {
	Query string `validate:"max=200"`
	Sort  string `validate:"omitempty,oneof=relevance titleAsc titleDesc priceAsc priceDesc"`
}

type suggestQuery struct {
	Query string `validate:"max=200"`
	Limit int    `validate:"gte=0,lte=20"`
}

func fillList(v url.Values, q *listQuery) error {
	q.Sort = v.Get("sort")
	return nil
}

func fillSearch(v url.Values, q *searchQuery) error {
	q.Query = v.Get("q")
	q.Sort = v.Get("sort")
	return nil
}

func fillSuggest(v url.Values, q *suggestQuery) error {
	q.Query = v.Get("q")
	if raw := v.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return errInvalidLimit
		}
		q.Limit = n
	}
	return nil
}

// --- Handlers ---

// ListProducts handles GET /api/v1/products
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q, err := validator.DecodeQuery(r.URL.Query(), fillList)
	if err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	result, err := h.service.ListProducts(r.Context(), middleware.SessionIDFromContext(r.Context()), q.Sort)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, result)
}

// ListByCategory handles GET /api/v1/products/category/{name}
func (h *CatalogHandler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	q, err := validator.DecodeQuery(r.URL.Query(), fillList)
	if err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	category := chi.URLParam(r, "name")
	if unescaped, err := url.PathUnescape(category); err == nil {
		category = unescaped
	}

	result, err := h.service.ListByCategory(r.Context(), middleware.SessionIDFromContext(r.Context()), category, q.Sort)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, result)
}

// Search handles GET /api/v1/search
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	q, err := validator.DecodeQuery(r.URL.Query(), fillSearch)
	if err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	result, err := h.service.Search(r.Context(), middleware.SessionIDFromContext(r.Context()), q.Query, q.Sort)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, result)
}

// Suggest handles GET /api/v1/search/suggestions
func (h *CatalogHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	q, err := validator.DecodeQuery(r.URL.Query(), fillSuggest)
	if err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	products, err := h.service.Suggest(r.Context(), q.Query, q.Limit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, products)
}

// GetProduct handles GET /api/v1/products/{id}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseProductID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, product)
}

// ListCategories handles GET /api/v1/products/categories
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, categories)
}
