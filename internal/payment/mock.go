package payment

import (
	"context"
	"sync"
)

// MockProvider is a configurable Provider for tests.
type MockProvider struct {
	CreateOrderFunc     func(ctx context.Context, params CreateOrderParams) (*GatewayOrder, error)
	VerifySignatureFunc func(gatewayOrderID, paymentID, signature string) bool

	mu               sync.Mutex
	CreateOrderCalls []CreateOrderParams
}

var _ Provider = (*MockProvider)(nil)

func (m *MockProvider) CreateOrder(ctx context.Context, params CreateOrderParams) (*GatewayOrder, error) {
	m.mu.Lock()
	m.CreateOrderCalls = append(m.CreateOrderCalls, params)
	m.mu.Unlock()
	if m.CreateOrderFunc != nil {
		return m.CreateOrderFunc(ctx, params)
	}
	return &GatewayOrder{
		ID:          "order_mock",
		AmountPaise: params.AmountPaise,
		Currency:    params.Currency,
		Receipt:     params.Receipt,
		Status:      "created",
	}, nil
}

func (m *MockProvider) VerifySignature(gatewayOrderID, paymentID, signature string) bool {
	if m.VerifySignatureFunc != nil {
		return m.VerifySignatureFunc(gatewayOrderID, paymentID, signature)
	}
	return true
}
