package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/DonatHalimi/OmniShop/pkg/logger"
)

// SessionHeader identifies an anonymous storefront session.
const SessionHeader = "X-Session-ID"

type sessionKeyType struct{}

var sessionKey sessionKeyType

// Session reads the session ID from SessionHeader, minting a new UUID when
// the header is missing or malformed, and echoes it on the response. Any
// spelling uuid.Parse accepts is reduced to the canonical lowercase form.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		if u, err := uuid.Parse(r.Header.Get(SessionHeader)); err == nil {
			id = u.String()
		}
		w.Header().Set(SessionHeader, id)

		ctx := context.WithValue(r.Context(), sessionKey, id)
		ctx = logger.WithSessionID(ctx, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionIDFromContext returns the session ID set by Session.
func SessionIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(sessionKey).(string); ok {
		return id
	}
	return ""
}

// WithSessionID stores id as if Session had run. Useful in tests.
func WithSessionID(ctx context.Context, id string) context.Context {
	return logger.WithSessionID(context.WithValue(ctx, sessionKey, id), id)
}
