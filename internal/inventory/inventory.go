// Package inventory tracks physical stock and reservations per product.
// A reservation is a temporary hold placed when an order is submitted;
// confirming spends the hold against physical stock once payment clears,
// releasing returns it to the available pool.
package inventory

import (
	"context"

	"github.com/dvalin/aurum/internal/domain"
	"github.com/google/uuid"
)

// Ledger is the stock bookkeeping interface. Implementations must serialize
// Reserve/Confirm/Release per product: two concurrent reservations for the
// last unit of a product must not both succeed.
type Ledger interface {
	// Reserve places a hold of qty units iff available stock covers it.
	// Returns ErrInsufficientStock otherwise, with no partial effect.
	Reserve(ctx context.Context, productID uuid.UUID, qty int64) error

	// Confirm spends a reservation: both stock and reserved quantities drop
	// by qty. Returns ErrReservationMismatch if the product does not hold a
	// reservation of at least qty; quantities never go negative.
	Confirm(ctx context.Context, productID uuid.UUID, qty int64) error

	// Release returns a hold to the pool without touching physical stock.
	// A release that would drive the reserved quantity negative clamps at
	// zero; the caller's order record remains the canonical history.
	Release(ctx context.Context, productID uuid.UUID, qty int64) error

	// Restock adds qty units of physical stock. Used for admin adjustments
	// and as the compensating action when an order is cancelled after its
	// inventory was already confirmed.
	Restock(ctx context.Context, productID uuid.UUID, qty int64) error

	// Get returns the current record for a product, or ErrNotTracked.
	Get(ctx context.Context, productID uuid.UUID) (domain.InventoryRecord, error)

	// Put creates or replaces the record for a product with the given
	// physical stock and zero reservations.
	Put(ctx context.Context, productID uuid.UUID, stock int64) error
}
