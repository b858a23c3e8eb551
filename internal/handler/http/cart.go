package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/DonatHalimi/OmniShop/pkg/httputil"
	"github.com/DonatHalimi/OmniShop/pkg/middleware"

	"github.com/DonatHalimi/OmniShop/internal/service"
)

// CartHandler handles HTTP requests for cart endpoints.
type CartHandler struct {
	service *service.Storefront
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(svc *service.Storefront, logger *slog.Logger) *CartHandler {
	return &CartHandler{service: svc, logger: logger}
}

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, h.service.GetCart(r.Context(), middleware.SessionIDFromContext(r.Context())))
}

// AddItem handles POST /api/v1/cart/items/{productId}
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.service.AddToCart)
}

// RemoveOne handles POST /api/v1/cart/items/{productId}/decrement
func (h *CartHandler) RemoveOne(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.service.RemoveOneFromCart)
}

// DeleteItem handles DELETE /api/v1/cart/items/{productId}
func (h *CartHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.service.DeleteFromCart)
}

type cartMutation func(ctx context.Context, sessionID string, productID int) (service.CartView, error)

func (h *CartHandler) mutate(w http.ResponseWriter, r *http.Request, op cartMutation) {
	productID, ok := httputil.ParseProductID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	cart, err := op(r.Context(), middleware.SessionIDFromContext(r.Context()), productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, cart)
}
