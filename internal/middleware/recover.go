package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/dvalin/aurum/internal/domain"
)

// Recovery converts handler panics into 500 responses instead of killing the
// connection. Place it first in the chain.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered",
						slog.Any("panic", rec),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
						slog.String("stack", string(debug.Stack())),
					)
					respondError(w, r, domain.Internal(nil, "", ""))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
