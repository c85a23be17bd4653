package service

import "github.com/dvalin/aurum/internal/domain"

var (
	// ErrCartEmpty rejects checkout of a cart with no lines.
	ErrCartEmpty = domain.Errorf(domain.EINVALID, "", "Cart is empty")

	// ErrCartExpired rejects mutations and checkout of an expired cart.
	ErrCartExpired = domain.Errorf(domain.EINVALID, "", "Cart has expired")

	// ErrProductUnavailable rejects adding a product that is missing or
	// deactivated.
	ErrProductUnavailable = domain.Errorf(domain.ENOTFOUND, "", "Product is not available")

	// ErrPaymentVerificationFailed is surfaced when a payment result's
	// signature does not verify. The order is cancelled and its inventory
	// released as a side effect.
	ErrPaymentVerificationFailed = domain.Errorf(domain.EPAYMENT, "", "Payment could not be verified")

	// ErrOrderNotCancellable rejects cancellation outside the eligible
	// statuses.
	ErrOrderNotCancellable = domain.Errorf(domain.ECONFLICT, "", "Order can no longer be cancelled")

	// ErrModificationWindowClosed rejects modification requests past the
	// window or outside the eligible statuses.
	ErrModificationWindowClosed = domain.Errorf(domain.ECONFLICT, "", "Order can no longer be modified")

	// ErrTrackingNumberRequired rejects marking an order shipped without a
	// tracking number.
	ErrTrackingNumberRequired = domain.Errorf(domain.EINVALID, "", "Tracking number is required")
)
