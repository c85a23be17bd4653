package domain

import (
	"time"

	"github.com/google/uuid"
)

// Totals is the monetary breakdown of a cart or order, in paise.
// For carts these are estimates recomputed on every mutation; for orders they
// are frozen at creation and never recomputed from live prices.
type Totals struct {
	SubtotalPaise int64
	TaxPaise      int64
	ShippingPaise int64
	DiscountPaise int64
	TotalPaise    int64
}

// Cart holds a shopper's pending selection. OwnerKey is the session id for
// guests or the customer id for authenticated shoppers.
type Cart struct {
	ID        uuid.UUID
	OwnerKey  string
	Items     []CartItem
	Totals    Totals
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CartItem is one line of a cart. UnitPricePaise is a snapshot taken when the
// item was added and refreshed from the catalog on quantity updates.
type CartItem struct {
	ProductID       uuid.UUID
	ProductName     string
	Quantity        int64
	UnitPricePaise  int64
	TotalPricePaise int64
}

// Item returns a pointer to the line for productID, or nil.
func (c *Cart) Item(productID uuid.UUID) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Expired reports whether the cart has passed its expiry timestamp.
func (c *Cart) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}
