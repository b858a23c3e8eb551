package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/DonatHalimi/OmniShop/pkg/errors"
	"github.com/DonatHalimi/OmniShop/pkg/health"
	"github.com/DonatHalimi/OmniShop/pkg/middleware"

	"github.com/DonatHalimi/OmniShop/internal/catalog/catalogtest"
	"github.com/DonatHalimi/OmniShop/internal/domain"
	"github.com/DonatHalimi/OmniShop/internal/event"
	"github.com/DonatHalimi/OmniShop/internal/service"
	"github.com/DonatHalimi/OmniShop/internal/session"
)

// ============================================================================
// Test helpers
// ============================================================================

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

type listingBody struct {
	State    string           `json:"state"`
	Sort     string           `json:"sort"`
	Param    string           `json:"param"`
	Products []domain.Product `json:"products"`
	Count    int              `json:"count"`
}

type cartBody struct {
	SessionID string `json:"session_id"`
	Lines     []struct {
		ProductID int             `json:"product_id"`
		Quantity  int             `json:"quantity"`
		Subtotal  decimal.Decimal `json:"subtotal"`
	} `json:"lines"`
	ItemCount int             `json:"item_count"`
	Total     decimal.Decimal `json:"total"`
}

type wishlistBody struct {
	Entries []struct {
		ProductID int `json:"product_id"`
		InCart    int `json:"in_cart"`
	} `json:"entries"`
	Count int `json:"count"`
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func products() []domain.Product {
	return []domain.Product{
		{ID: 1, Title: "Fjallraven Backpack", Price: decimal.RequireFromString("109.95"), Category: "men's clothing"},
		{ID: 2, Title: "Mens Casual T-Shirt", Price: decimal.RequireFromString("22.3"), Category: "men's clothing"},
		{ID: 3, Title: "Gold Ring", Price: decimal.RequireFromString("9.99"), Category: "jewelery"},
	}
}

func newTestRouter(t *testing.T) (http.Handler, *catalogtest.Gateway) {
	t.Helper()
	logger := testLogger()
	gw := &catalogtest.Gateway{}
	registry := session.NewRegistry(session.Options{}, logger)
	svc := service.NewStorefront(gw, registry, event.NewProducer(nil, logger), logger)
	router := NewRouter(svc, health.NewHandler(), middleware.NewRateLimiter(0, 0, logger), logger, DefaultRouterConfig())
	return router, gw
}

func do(t *testing.T, h http.Handler, method, target, sessionID string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if sessionID != "" {
		req.Header.Set(middleware.SessionHeader, sessionID)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func decodeData(t *testing.T, env envelope, dst any) {
	t.Helper()
	require.Nil(t, env.Error)
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

// ============================================================================
// Catalog
// ============================================================================

func TestListProducts_SortedAndSessionMinted(t *testing.T) {
	h, gw := newTestRouter(t)
	gw.On("ListProducts", mock.Anything).Return(products(), nil)

	rec, env := do(t, h, http.MethodGet, "/api/v1/products?sort=priceDesc", "")
	require.Equal(t, http.StatusOK, rec.Code)

	minted := rec.Header().Get(middleware.SessionHeader)
	_, err := uuid.Parse(minted)
	assert.NoError(t, err)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	var body listingBody
	decodeData(t, env, &body)
	assert.Equal(t, "ready", body.State)
	assert.Equal(t, "priceDesc", body.Sort)
	assert.Equal(t, 3, body.Count)
	assert.Equal(t, 1, body.Products[0].ID)
	assert.Equal(t, 3, body.Products[2].ID)
}

func TestListProducts_InvalidSort(t *testing.T) {
	h, _ := newTestRouter(t)

	rec, env := do(t, h, http.MethodGet, "/api/v1/products?sort=cheapest", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Fields["Sort"], "must be one of")
}

func TestListProducts_CatalogUnavailable(t *testing.T) {
	h, gw := newTestRouter(t)
	gw.On("ListProducts", mock.Anything).Return(nil, apperrors.Unavailable("catalog is unavailable", nil))

	rec, env := do(t, h, http.MethodGet, "/api/v1/products", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "SERVICE_UNAVAILABLE", env.Error.Code)
}

func TestListByCategory(t *testing.T) {
	h, gw := newTestRouter(t)
	gw.On("ListByCategory", mock.Anything, "jewelery").Return(products()[2:], nil)

	rec, env := do(t, h, http.MethodGet, "/api/v1/products/category/jewelery", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body listingBody
	decodeData(t, env, &body)
	assert.Equal(t, "jewelery", body.Param)
	require.Len(t, body.Products, 1)
	assert.Equal(t, "Gold Ring", body.Products[0].Title)
}

func TestGetProduct(t *testing.T) {
	h, gw := newTestRouter(t)
	p := products()[1]
	gw.On("GetProduct", mock.Anything, 2).Return(&p, nil)
	gw.On("GetProduct", mock.Anything, 77).Return(nil, apperrors.NotFound("product", "77"))

	rec, env := do(t, h, http.MethodGet, "/api/v1/products/2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=60", rec.Header().Get("Cache-Control"))
	assert.Empty(t, rec.Header().Get(middleware.SessionHeader))

	var got domain.Product
	decodeData(t, env, &got)
	assert.Equal(t, "Mens Casual T-Shirt", got.Title)
	assert.True(t, decimal.RequireFromString("22.3").Equal(got.Price))

	rec, env = do(t, h, http.MethodGet, "/api/v1/products/77", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	rec, env = do(t, h, http.MethodGet, "/api/v1/products/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_PARAMETER", env.Error.Code)
}

func TestListCategories(t *testing.T) {
	h, gw := newTestRouter(t)
	gw.On("ListCategories", mock.Anything).Return([]string{"electronics", "jewelery"}, nil)

	rec, env := do(t, h, http.MethodGet, "/api/v1/products/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []string
	decodeData(t, env, &got)
	assert.Equal(t, []string{"electronics", "jewelery"}, got)
}

func TestSearch(t *testing.T) {
	h, gw := newTestRouter(t)
	gw.On("ListProducts", mock.Anything).Return(products(), nil)

	rec, env := do(t, h, http.MethodGet, "/api/v1/search?q=mens&sort=titleAsc", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body listingBody
	decodeData(t, env, &body)
	assert.Equal(t, "mens", body.Param)
	require.Len(t, body.Products, 1)
	assert.Equal(t, 2, body.Products[0].ID)
}

func TestSearch_EmptyQuery(t *testing.T) {
	h, _ := newTestRouter(t)

	rec, env := do(t, h, http.MethodGet, "/api/v1/search?q=", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_INPUT", env.Error.Code)
	assert.Equal(t, "please enter a search query", env.Error.Message)
}

func TestSuggest(t *testing.T) {
	h, gw := newTestRouter(t)
	gw.On("ListProducts", mock.Anything).Return(products(), nil)

	rec, env := do(t, h, http.MethodGet, "/api/v1/search/suggestions?q=a&limit=1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []domain.Product
	decodeData(t, env, &got)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].ID)

	rec, env = do(t, h, http.MethodGet, "/api/v1/search/suggestions?q=a&limit=x", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", env.Error.Code)

	rec, env = do(t, h, http.MethodGet, "/api/v1/search/suggestions?q=a&limit=50", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

// ============================================================================
// Cart and wishlist
// ============================================================================

func TestCartFlow(t *testing.T) {
	h, gw := newTestRouter(t)
	gw.On("ListProducts", mock.Anything).Return(products(), nil)
	sid := uuid.NewString()

	do(t, h, http.MethodPost, "/api/v1/cart/items/1", sid)
	do(t, h, http.MethodPost, "/api/v1/cart/items/2", sid)
	rec, env := do(t, h, http.MethodPost, "/api/v1/cart/items/2", sid)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, sid, rec.Header().Get(middleware.SessionHeader))

	var cart cartBody
	decodeData(t, env, &cart)
	assert.Equal(t, sid, cart.SessionID)
	require.Len(t, cart.Lines, 2)
	assert.Equal(t, 2, cart.Lines[1].Quantity)
	assert.Equal(t, 3, cart.ItemCount)
	assert.True(t, decimal.RequireFromString("154.55").Equal(cart.Total))

	_, env = do(t, h, http.MethodPost, "/api/v1/cart/items/2/decrement", sid)
	decodeData(t, env, &cart)
	assert.Equal(t, 1, cart.Lines[1].Quantity)

	_, env = do(t, h, http.MethodDelete, "/api/v1/cart/items/1", sid)
	decodeData(t, env, &cart)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 2, cart.Lines[0].ProductID)

	rec, env = do(t, h, http.MethodGet, "/api/v1/cart", sid)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, env, &cart)
	assert.True(t, decimal.RequireFromString("22.3").Equal(cart.Total))
}

func TestCart_SessionsAreIsolated(t *testing.T) {
	h, gw := newTestRouter(t)
	gw.On("ListProducts", mock.Anything).Return(products(), nil)

	do(t, h, http.MethodPost, "/api/v1/cart/items/1", uuid.NewString())

	_, env := do(t, h, http.MethodGet, "/api/v1/cart", uuid.NewString())
	var cart cartBody
	decodeData(t, env, &cart)
	assert.Empty(t, cart.Lines)
}

func TestCart_InvalidProductID(t *testing.T) {
	h, _ := newTestRouter(t)

	for _, target := range []string{"/api/v1/cart/items/0", "/api/v1/cart/items/-2", "/api/v1/cart/items/x"} {
		rec, env := do(t, h, http.MethodPost, target, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Equal(t, "INVALID_PARAMETER", env.Error.Code, target)
	}
}

func TestWishlistFlow(t *testing.T) {
	h, gw := newTestRouter(t)
	gw.On("ListProducts", mock.Anything).Return(products(), nil)
	sid := uuid.NewString()

	do(t, h, http.MethodPut, "/api/v1/wishlist/items/3", sid)
	rec, env := do(t, h, http.MethodPut, "/api/v1/wishlist/items/3", sid)
	require.Equal(t, http.StatusOK, rec.Code)

	var wl wishlistBody
	decodeData(t, env, &wl)
	assert.Equal(t, 1, wl.Count)

	rec, env = do(t, h, http.MethodPost, "/api/v1/wishlist/items/3/cart", sid)
	require.Equal(t, http.StatusOK, rec.Code)
	var cart cartBody
	decodeData(t, env, &cart)
	assert.Equal(t, 1, cart.ItemCount)

	_, env = do(t, h, http.MethodGet, "/api/v1/wishlist", sid)
	decodeData(t, env, &wl)
	require.Len(t, wl.Entries, 1)
	assert.Equal(t, 1, wl.Entries[0].InCart)

	_, env = do(t, h, http.MethodDelete, "/api/v1/wishlist/items/3", sid)
	decodeData(t, env, &wl)
	assert.Empty(t, wl.Entries)

	rec, env = do(t, h, http.MethodPost, "/api/v1/wishlist/items/3/cart", sid)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

// ============================================================================
// Ops
// ============================================================================

func TestHealthAndMetrics(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestCORSPreflight(t *testing.T) {
	h, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/cart", nil)
	req.Header.Set("Origin", "https://shop.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), middleware.SessionHeader)
}
