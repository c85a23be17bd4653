// Package store defines the persistence interfaces the services depend on,
// plus in-memory implementations used in tests and single-process setups.
// The postgres package provides the production implementations.
package store

import (
	"context"
	"time"

	"github.com/dvalin/aurum/internal/domain"
	"github.com/google/uuid"
)

var (
	// ErrNotFound means no row matched the lookup.
	ErrNotFound = domain.Errorf(domain.ENOTFOUND, "", "Record not found")

	// ErrConflict means a guarded write found the row in a different state
	// than the caller expected.
	ErrConflict = domain.Errorf(domain.ECONFLICT, "", "Record was modified concurrently")

	// ErrDuplicate means a uniqueness constraint rejected the write.
	ErrDuplicate = domain.Errorf(domain.ECONFLICT, "", "Record already exists")
)

// ProductStore persists catalog entries.
type ProductStore interface {
	Create(ctx context.Context, product *domain.Product) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	Update(ctx context.Context, product *domain.Product) error
	List(ctx context.Context, filters []Filter, limit, offset int) ([]domain.Product, error)
}

// CartStore persists shopping carts.
type CartStore interface {
	Create(ctx context.Context, cart *domain.Cart) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Cart, error)

	// GetByOwner returns the cart keyed by session or customer id, or
	// ErrNotFound.
	GetByOwner(ctx context.Context, ownerKey string) (*domain.Cart, error)

	// Mutate loads the cart, applies fn to it under an exclusive hold, and
	// persists the result atomically. Concurrent Mutate calls on the same
	// cart serialize; fn must be safe to re-run if the implementation
	// retries. Returning an error from fn aborts without persisting.
	Mutate(ctx context.Context, id uuid.UUID, fn func(cart *domain.Cart) error) (*domain.Cart, error)

	Delete(ctx context.Context, id uuid.UUID) error
}

// OrderUpdate carries the optional column updates applied together with a
// status transition. Nil fields are left untouched.
type OrderUpdate struct {
	PaymentID          *string
	ConfirmationNumber *string
	TrackingNumber     *string
	EstimatedDelivery  *time.Time
}

// OrderStore persists orders.
type OrderStore interface {
	Create(ctx context.Context, order *domain.Order) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetByConfirmationNumber(ctx context.Context, number string) (*domain.Order, error)

	// GetByPaymentOrderID resolves the order holding a gateway order
	// reference. Used by the payment result path.
	GetByPaymentOrderID(ctx context.Context, paymentOrderID string) (*domain.Order, error)

	ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]domain.Order, error)
	List(ctx context.Context, filters []Filter, limit, offset int) ([]domain.Order, error)

	// Transition moves the order from one status to another as a single
	// guarded write: it succeeds only if the row still holds the from
	// status, applying update in the same write. Returns ErrConflict when
	// the row moved on, ErrNotFound when no such order exists.
	Transition(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus, update OrderUpdate) error

	// UpdateShippingAddress replaces the shipping address snapshot. The
	// service enforces the modification window before calling this.
	UpdateShippingAddress(ctx context.Context, id uuid.UUID, address domain.Address) error

	// ConfirmationNumberExists reports whether a confirmation number is
	// already assigned to any order.
	ConfirmationNumberExists(ctx context.Context, number string) (bool, error)
}
