package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/DonatHalimi/OmniShop/pkg/httputil"
	"github.com/DonatHalimi/OmniShop/pkg/middleware"

	"github.com/DonatHalimi/OmniShop/internal/service"
)

// WishlistHandler handles HTTP requests for wishlist endpoints.
type WishlistHandler struct {
	service *service.Storefront
	logger  *slog.Logger
}

// NewWishlistHandler creates a new wishlist HTTP handler.
func NewWishlistHandler(svc *service.Storefront, logger *slog.Logger) *WishlistHandler {
	return &WishlistHandler{service: svc, logger: logger}
}

// GetWishlist handles GET /api/v1/wishlist
func (h *WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, h.service.GetWishlist(r.Context(), middleware.SessionIDFromContext(r.Context())))
}

// AddItem handles PUT /api/v1/wishlist/items/{productId}
func (h *WishlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseProductID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	wishlist, err := h.service.AddToWishlist(r.Context(), middleware.SessionIDFromContext(r.Context()), productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, wishlist)
}

// RemoveItem handles DELETE /api/v1/wishlist/items/{productId}
func (h *WishlistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseProductID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	wishlist, err := h.service.RemoveFromWishlist(r.Context(), middleware.SessionIDFromContext(r.Context()), productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, wishlist)
}

// AddToCart handles POST /api/v1/wishlist/items/{productId}/cart
func (h *WishlistHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseProductID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	cart, err := h.service.MoveWishlistItemToCart(r.Context(), middleware.SessionIDFromContext(r.Context()), productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, cart)
}
