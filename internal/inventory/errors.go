package inventory

import "github.com/dvalin/aurum/internal/domain"

var (
	// ErrInsufficientStock means available stock cannot cover the requested
	// reservation. This is an expected business outcome, not an incident.
	ErrInsufficientStock = domain.Errorf(domain.ECONFLICT, "", "Insufficient stock for one or more items")

	// ErrReservationMismatch means a confirm was attempted for more units
	// than are currently reserved. It indicates a pairing bug upstream and
	// is guarded against so quantities never go negative.
	ErrReservationMismatch = domain.Errorf(domain.ECONFLICT, "", "Reserved quantity does not cover confirmation")

	// ErrNotTracked means no inventory record exists for the product.
	ErrNotTracked = domain.Errorf(domain.ENOTFOUND, "", "Product is not tracked in inventory")

	// ErrInvalidQuantity rejects non-positive quantities.
	ErrInvalidQuantity = domain.Errorf(domain.EINVALID, "", "Quantity must be greater than 0")
)
