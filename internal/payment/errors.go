package payment

import "github.com/dvalin/aurum/internal/domain"

var (
	// ErrGatewayCredentials means the gateway rejected our API credentials.
	// This is an operator configuration problem, not a customer one.
	ErrGatewayCredentials = domain.Errorf(domain.EINTERNAL, "", "Payment gateway rejected credentials")

	// ErrGatewayRejected means the gateway refused the order request itself,
	// e.g. an unsupported currency or amount below the gateway minimum.
	ErrGatewayRejected = domain.Errorf(domain.EPAYMENT, "", "Payment gateway rejected the order")

	// ErrGatewayUnavailable covers transport failures and 5xx responses.
	// Checkout treats this as retryable.
	ErrGatewayUnavailable = domain.Errorf(domain.EPAYMENT, "", "Payment gateway is unavailable")
)
