package middleware

import (
	"log/slog"
	"net/http"

	"github.com/DonatHalimi/OmniShop/pkg/logger"
)

// RequestLogger stores a request-scoped logger in context, enriched with
// correlation_id, session_id, trace_id and span_id. Mount it after
// RequestLogging, Tracing and Session.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
