package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/martinmiralles/mar-pokemart/pkg/logger"
)

// RequestLogger stores a logger enriched with correlation_id, trace_id and
// span_id in the request context. Mount it after RequestLogging and Tracing.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BindUser records the authenticated user id in ctx and adds it to the
// request-scoped logger. Authentication middleware calls it once the
// principal is known.
func BindUser(ctx context.Context, userID string) context.Context {
	ctx = logger.WithUserID(ctx, userID)
	return logger.NewContext(ctx, logger.FromContext(ctx).With(slog.String("user_id", userID)))
}
