package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/dvalin/aurum/internal/domain"
)

const customerIDContextKey contextKey = "customer_id"

// AdminAuth guards admin routes with a bearer token compared in constant
// time. An empty configured token disables the routes entirely.
func AdminAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				respondError(w, r, domain.Errorf(domain.EFORBIDDEN, "", "Admin access is not configured"))
				return
			}

			presented := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if presented == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
				respondError(w, r, domain.Unauthorized("", "Authentication required"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// WithCustomer resolves the shopper's identity from the X-Customer-ID header
// set by the identity proxy. Absence is fine; those requests check out as
// guests.
func WithCustomer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		customerID := r.Header.Get("X-Customer-ID")
		if customerID == "" {
			next.ServeHTTP(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), customerIDContextKey, customerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetCustomerID returns the authenticated customer id, or "" for guests.
func GetCustomerID(ctx context.Context) string {
	if id, ok := ctx.Value(customerIDContextKey).(string); ok {
		return id
	}
	return ""
}
