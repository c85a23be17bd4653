package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product is a catalog entry. Once a product is referenced by an order line
// its price is snapshotted onto the line; the catalog row may change freely
// afterwards without touching order history.
type Product struct {
	ID          uuid.UUID
	Name        string
	Description string
	Category    string
	PricePaise  int64
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// InventoryRecord tracks physical and reserved stock for one product (1:1).
// availableQuantity is always derived, never stored on its own.
type InventoryRecord struct {
	ProductID        uuid.UUID
	StockQuantity    int64
	ReservedQuantity int64
	UpdatedAt        time.Time
}

// Available returns stock not currently held by a reservation.
func (r InventoryRecord) Available() int64 {
	return r.StockQuantity - r.ReservedQuantity
}
