package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/DonatHalimi/OmniShop/pkg/health"
	"github.com/DonatHalimi/OmniShop/pkg/middleware"

	"github.com/DonatHalimi/OmniShop/internal/service"
)

// RouterConfig holds the HTTP surface settings.
type RouterConfig struct {
	RequestTimeout time.Duration
	CatalogMaxAge  int
	PprofCIDRs     []string
	CORS           middleware.CORSConfig
}

// DefaultRouterConfig returns the settings used when none are configured.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		RequestTimeout: 30 * time.Second,
		CatalogMaxAge:  60,
		CORS:           middleware.DefaultCORSConfig(),
	}
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(
	storefront *service.Storefront,
	healthHandler *health.Handler,
	limiter *middleware.RateLimiter,
	logger *slog.Logger,
	cfg RouterConfig,
) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRouterConfig().RequestTimeout
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(cfg.RequestTimeout))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(middleware.Tracing("storefront"))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORS))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	catalog := NewCatalogHandler(storefront, logger)
	cart := NewCartHandler(storefront, logger)
	wishlist := NewWishlistHandler(storefront, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(limiter.Handler)

		// Session-independent catalog reads.
		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(cfg.CatalogMaxAge))

			r.Get("/products/categories", catalog.ListCategories)
			r.Get("/products/{id}", catalog.GetProduct)
			r.Get("/search/suggestions", catalog.Suggest)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Session)
			r.Use(middleware.NoStore)

			r.Get("/products", catalog.ListProducts)
			r.Get("/products/category/{name}", catalog.ListByCategory)
			r.Get("/search", catalog.Search)

			r.Get("/cart", cart.GetCart)
			r.Post("/cart/items/{productId}", cart.AddItem)
			r.Post("/cart/items/{productId}/decrement", cart.RemoveOne)
			r.Delete("/cart/items/{productId}", cart.DeleteItem)

			r.Get("/wishlist", wishlist.GetWishlist)
			r.Put("/wishlist/items/{productId}", wishlist.AddItem)
			r.Delete("/wishlist/items/{productId}", wishlist.RemoveItem)
			r.Post("/wishlist/items/{productId}/cart", wishlist.AddToCart)
		})
	})

	return r
}
