// Package policy holds the customer-facing eligibility rules for order
// cancellation and modification. Both the HTTP layer (to render what a
// customer may do) and the order service (to enforce it) consult these
// predicates, so the rules live in exactly one place. The service always
// re-checks against server time; a client's idea of "now" is never trusted.
package policy

import (
	"time"

	"github.com/dvalin/aurum/internal/domain"
)

// ModificationWindow is how long after order creation a customer may request
// changes to an order.
const ModificationWindow = 12 * time.Hour

// CancellableStatuses lists the statuses eligible for customer-initiated
// cancellation or modification.
var CancellableStatuses = []domain.OrderStatus{
	domain.OrderStatusPending,
	domain.OrderStatusProcessing,
}

// IsCancellable reports whether an order in the given status may be
// cancelled by the customer.
func IsCancellable(status domain.OrderStatus) bool {
	for _, s := range CancellableStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// IsModifiable reports whether a modification request is still allowed:
// the order must be cancellable and the modification window, measured from
// createdAt against the supplied clock, must not have elapsed.
func IsModifiable(status domain.OrderStatus, createdAt, now time.Time) bool {
	if !IsCancellable(status) {
		return false
	}
	return now.Sub(createdAt) < ModificationWindow
}
