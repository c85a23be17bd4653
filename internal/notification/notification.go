// Package notification dispatches customer-facing messages for order
// lifecycle events. Dispatch is best effort and must never influence order
// state: a failed send is logged and dropped, not retried into the order
// flow.
package notification

import (
	"context"

	"github.com/dvalin/aurum/internal/domain"
)

// Dispatcher sends a customer message for an order lifecycle event.
// Implementations must be safe for concurrent use; callers typically invoke
// them from short-lived goroutines after the order transition commits.
type Dispatcher interface {
	OrderConfirmed(ctx context.Context, order *domain.Order) error
	OrderShipped(ctx context.Context, order *domain.Order) error
	OrderCancelled(ctx context.Context, order *domain.Order) error
}

// Nop is a Dispatcher that sends nothing.
type Nop struct{}

var _ Dispatcher = Nop{}

func (Nop) OrderConfirmed(context.Context, *domain.Order) error { return nil }
func (Nop) OrderShipped(context.Context, *domain.Order) error   { return nil }
func (Nop) OrderCancelled(context.Context, *domain.Order) error { return nil }
