// Package payment adapts the external payment gateway. The gateway owns the
// actual money movement; this package creates gateway-side orders ahead of
// client checkout and verifies the signatures the gateway attaches to
// payment results.
package payment

import (
	"context"
	"time"
)

// Provider is the gateway interface the order service depends on.
type Provider interface {
	// CreateOrder registers an order with the gateway for the given amount
	// and returns the gateway's order handle. The client completes payment
	// against that handle.
	CreateOrder(ctx context.Context, params CreateOrderParams) (*GatewayOrder, error)

	// VerifySignature reports whether signature is a valid authentication
	// of the (gateway order ID, payment ID) pair. It must run in constant
	// time with respect to the signature bytes.
	VerifySignature(gatewayOrderID, paymentID, signature string) bool
}

// CreateOrderParams describes the order to register with the gateway.
type CreateOrderParams struct {
	// AmountPaise is the amount to collect in the currency's smallest unit.
	AmountPaise int64

	// Currency is the ISO 4217 code, e.g. "INR".
	Currency string

	// Receipt is our internal reference for reconciliation.
	Receipt string

	// Notes are free-form key/value pairs echoed back by the gateway.
	Notes map[string]string
}

// GatewayOrder is the gateway's handle for a registered order.
type GatewayOrder struct {
	ID          string
	AmountPaise int64
	Currency    string
	Receipt     string
	Status      string
	CreatedAt   time.Time
}
