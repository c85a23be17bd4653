package notification

import (
	"context"
	"sync"

	"github.com/dvalin/aurum/internal/domain"
)

// MockDispatcher records dispatched events for tests.
type MockDispatcher struct {
	mu     sync.Mutex
	events []MockEvent

	// Err, when set, is returned from every dispatch call.
	Err error
}

// MockEvent is one recorded dispatch.
type MockEvent struct {
	Kind               string // confirmed, shipped, cancelled
	ConfirmationNumber string
}

var _ Dispatcher = (*MockDispatcher)(nil)

func (m *MockDispatcher) OrderConfirmed(ctx context.Context, order *domain.Order) error {
	return m.record("confirmed", order)
}

func (m *MockDispatcher) OrderShipped(ctx context.Context, order *domain.Order) error {
	return m.record("shipped", order)
}

func (m *MockDispatcher) OrderCancelled(ctx context.Context, order *domain.Order) error {
	return m.record("cancelled", order)
}

func (m *MockDispatcher) record(kind string, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.events = append(m.events, MockEvent{
		Kind:               kind,
		ConfirmationNumber: order.ConfirmationNumber,
	})
	return nil
}

// Events returns a copy of the recorded dispatches.
func (m *MockDispatcher) Events() []MockEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockEvent, len(m.events))
	copy(out, m.events)
	return out
}
