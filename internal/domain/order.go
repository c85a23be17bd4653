package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// orderTransitions encodes the full status machine. Terminal states
// (delivered, cancelled) have no outgoing edges.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
}

// CanTransitionTo reports whether the status machine permits moving from s
// to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether s is an absorbing state.
func (s OrderStatus) Terminal() bool {
	return len(orderTransitions[s]) == 0
}

// Valid reports whether s is a known status value.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// PaymentMethod selects how an order is paid.
type PaymentMethod string

const (
	PaymentMethodGateway        PaymentMethod = "gateway"
	PaymentMethodCashOnDelivery PaymentMethod = "cod"
)

// Address is a value snapshot of a shipping or billing address. Orders store
// copies, never references, so later address edits cannot rewrite history.
type Address struct {
	FullName   string `json:"full_name" validate:"required"`
	Line1      string `json:"line1" validate:"required"`
	Line2      string `json:"line2"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state" validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
	Country    string `json:"country" validate:"required"`
	Phone      string `json:"phone"`
}

// Order is created once, from a cart, at checkout submission. Item and
// address snapshots plus totals are frozen at that point.
type Order struct {
	ID                 uuid.UUID
	CustomerID         string
	CustomerEmail      string
	CustomerPhone      string
	ConfirmationNumber string // empty until payment is confirmed
	PaymentOrderID     string // gateway-side order reference
	PaymentID          string // gateway-side payment reference, set on verification
	PaymentMethod      PaymentMethod
	Status             OrderStatus
	Items              []OrderItem
	Totals             Totals
	ShippingAddress    Address
	BillingAddress     Address
	TrackingNumber     string
	EstimatedDelivery  time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// OrderItem is a frozen snapshot of one purchased line, decoupled from the
// live Product so later price or name changes don't corrupt history.
type OrderItem struct {
	ProductID       uuid.UUID
	ProductName     string
	Quantity        int64
	UnitPricePaise  int64
	TotalPricePaise int64
}
