package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/dvalin/aurum/internal/domain"
	"github.com/dvalin/aurum/internal/inventory"
	"github.com/dvalin/aurum/internal/notification"
	"github.com/dvalin/aurum/internal/payment"
	"github.com/dvalin/aurum/internal/policy"
	"github.com/dvalin/aurum/internal/pricing"
	"github.com/dvalin/aurum/internal/store"
	"github.com/dvalin/aurum/internal/telemetry"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// CheckoutInput is everything a checkout submission carries.
type CheckoutInput struct {
	CartID uuid.UUID `validate:"required"`

	// CustomerID is set for authenticated shoppers. When empty, a stable
	// guest identity is derived from email and phone.
	CustomerID string

	Email string `validate:"required,email"`
	Phone string `validate:"required"`

	PaymentMethod domain.PaymentMethod `validate:"required,oneof=gateway cod"`

	ShippingAddress domain.Address `validate:"required"`

	// BillingAddress defaults to the shipping address when nil.
	BillingAddress *domain.Address

	DiscountPaise int64 `validate:"gte=0"`
}

// PaymentResult is the gateway's payment confirmation payload.
type PaymentResult struct {
	// OrderID addresses the order directly. When zero, the order is
	// resolved through GatewayOrderID.
	OrderID uuid.UUID

	GatewayOrderID string `validate:"required"`
	PaymentID      string `validate:"required"`
	Signature      string `validate:"required"`
}

// OrderService owns the order lifecycle: materializing carts into orders,
// verifying payment results, and driving the status machine with its
// inventory side effects.
type OrderService interface {
	// SubmitCheckout turns a cart into a pending order: totals are frozen,
	// a gateway order is created for gateway payments, and stock is
	// reserved for every line all-or-nothing.
	SubmitCheckout(ctx context.Context, input CheckoutInput) (*domain.Order, error)

	// ProcessPaymentResult handles the gateway's payment confirmation.
	// A repeat call for an order already past pending is a no-op success.
	// An invalid signature cancels the order and releases its stock.
	ProcessPaymentResult(ctx context.Context, result PaymentResult) (*domain.Order, error)

	// MarkShipped moves a processing order to shipped. A tracking number
	// is required; estimatedDelivery may be zero.
	MarkShipped(ctx context.Context, orderID uuid.UUID, trackingNumber string, estimatedDelivery time.Time) (*domain.Order, error)

	// MarkDelivered moves a shipped order to its terminal state.
	MarkDelivered(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)

	// Cancel cancels a pending or processing order, releasing or
	// restocking its inventory depending on how far it got.
	Cancel(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)

	// UpdateShippingAddress replaces the shipping snapshot while the order
	// is still inside the modification window.
	UpdateShippingAddress(ctx context.Context, orderID uuid.UUID, address domain.Address) (*domain.Order, error)

	GetOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)
	GetOrderByConfirmationNumber(ctx context.Context, number string) (*domain.Order, error)
	ListCustomerOrders(ctx context.Context, customerID string, limit, offset int) ([]domain.Order, error)

	// ListOrders is the admin view over all orders.
	ListOrders(ctx context.Context, filters []store.Filter, limit, offset int) ([]domain.Order, error)
}

type orderService struct {
	orders   store.OrderStore
	carts    store.CartStore
	ledger   inventory.Ledger
	gateway  payment.Provider
	pricer   *pricing.Calculator
	notifier notification.Dispatcher
	metrics  *telemetry.BusinessMetrics
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time
}

// NewOrderService creates an OrderService.
func NewOrderService(
	orders store.OrderStore,
	carts store.CartStore,
	ledger inventory.Ledger,
	gateway payment.Provider,
	pricer *pricing.Calculator,
	notifier notification.Dispatcher,
	metrics *telemetry.BusinessMetrics,
	logger *slog.Logger,
) OrderService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = telemetry.NewNopBusinessMetrics()
	}
	if notifier == nil {
		notifier = notification.Nop{}
	}
	return &orderService{
		orders:   orders,
		carts:    carts,
		ledger:   ledger,
		gateway:  gateway,
		pricer:   pricer,
		notifier: notifier,
		metrics:  metrics,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
		now:      time.Now,
	}
}

func (s *orderService) SubmitCheckout(ctx context.Context, input CheckoutInput) (*domain.Order, error) {
	if err := s.validate.Struct(input); err != nil {
		s.metrics.CheckoutsRejected.WithLabelValues("validation").Inc()
		return nil, domain.WrapError(err, domain.EINVALID, "order.checkout", "Checkout details are incomplete or invalid")
	}

	cart, err := s.carts.Get(ctx, input.CartID)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		s.metrics.CheckoutsRejected.WithLabelValues("empty_cart").Inc()
		return nil, ErrCartEmpty
	}
	if cart.Expired(s.now()) {
		s.metrics.CheckoutsRejected.WithLabelValues("expired_cart").Inc()
		return nil, ErrCartExpired
	}

	customerID := input.CustomerID
	if customerID == "" {
		customerID = domain.GuestCustomerID(input.Email, input.Phone)
	}

	billing := input.ShippingAddress
	if input.BillingAddress != nil {
		billing = *input.BillingAddress
	}

	// Totals and line snapshots freeze here. Later catalog changes must
	// not move this order's numbers.
	totals := s.pricer.QuoteCart(cart, input.DiscountPaise)
	items := make([]domain.OrderItem, len(cart.Items))
	for i, line := range cart.Items {
		items[i] = domain.OrderItem{
			ProductID:       line.ProductID,
			ProductName:     line.ProductName,
			Quantity:        line.Quantity,
			UnitPricePaise:  line.UnitPricePaise,
			TotalPricePaise: line.TotalPricePaise,
		}
	}

	order := &domain.Order{
		ID:              uuid.New(),
		CustomerID:      customerID,
		CustomerEmail:   input.Email,
		CustomerPhone:   input.Phone,
		PaymentMethod:   input.PaymentMethod,
		Status:          domain.OrderStatusPending,
		Items:           items,
		Totals:          totals,
		ShippingAddress: input.ShippingAddress,
		BillingAddress:  billing,
	}

	if input.PaymentMethod == domain.PaymentMethodGateway {
		gatewayOrder, err := s.gateway.CreateOrder(ctx, payment.CreateOrderParams{
			AmountPaise: totals.TotalPaise,
			Currency:    "INR",
			Receipt:     order.ID.String(),
			Notes:       map[string]string{"customer_id": customerID},
		})
		if err != nil {
			s.metrics.CheckoutsRejected.WithLabelValues("gateway").Inc()
			return nil, err
		}
		order.PaymentOrderID = gatewayOrder.ID
	}

	if err := s.reserveAll(ctx, items); err != nil {
		if errors.Is(err, inventory.ErrInsufficientStock) {
			s.metrics.ReservationConflicts.Inc()
			s.metrics.CheckoutsRejected.WithLabelValues("stock").Inc()
		}
		return nil, err
	}

	if err := s.orders.Create(ctx, order); err != nil {
		// The holds must not outlive the failed checkout.
		s.releaseAll(ctx, order.Items)
		return nil, domain.Internal(err, "order.checkout", "Could not create the order")
	}

	if _, err := s.carts.Mutate(ctx, cart.ID, func(c *domain.Cart) error {
		c.Items = nil
		c.Totals = domain.Totals{}
		return nil
	}); err != nil {
		// The order exists; an uncleared cart is an annoyance, not a
		// failure.
		s.logger.Warn("clearing cart after checkout failed",
			"cart_id", cart.ID, "order_id", order.ID, "error", err)
	}

	s.metrics.CheckoutsSubmitted.Inc()
	s.logger.Info("checkout submitted",
		"order_id", order.ID,
		"customer_id", customerID,
		"payment_method", order.PaymentMethod,
		"total_paise", totals.TotalPaise,
	)

	// Cash on delivery has no payment callback: the order is finalized
	// immediately and collected at the door.
	if input.PaymentMethod == domain.PaymentMethodCashOnDelivery {
		return s.finalize(ctx, order, "")
	}
	return order, nil
}

func (s *orderService) ProcessPaymentResult(ctx context.Context, result PaymentResult) (*domain.Order, error) {
	if err := s.validate.Struct(result); err != nil {
		return nil, domain.WrapError(err, domain.EINVALID, "order.payment_result", "Payment result is incomplete")
	}

	var (
		order *domain.Order
		err   error
	)
	if result.OrderID != uuid.Nil {
		order, err = s.orders.Get(ctx, result.OrderID)
	} else {
		order, err = s.orders.GetByPaymentOrderID(ctx, result.GatewayOrderID)
	}
	if err != nil {
		return nil, err
	}

	// A retried callback for an order already past pending succeeds
	// without side effects.
	if order.Status != domain.OrderStatusPending {
		return order, nil
	}

	if order.PaymentOrderID != result.GatewayOrderID {
		return nil, domain.Errorf(domain.EPAYMENT, "order.payment_result",
			"Payment result does not match this order")
	}

	if !s.gateway.VerifySignature(result.GatewayOrderID, result.PaymentID, result.Signature) {
		return nil, s.rejectPayment(ctx, order)
	}

	s.metrics.PaymentsVerified.Inc()
	return s.finalize(ctx, order, result.PaymentID)
}

// rejectPayment cancels a pending order whose payment result failed
// verification and returns the holds to the pool.
func (s *orderService) rejectPayment(ctx context.Context, order *domain.Order) error {
	s.metrics.PaymentsFailed.Inc()
	s.logger.Warn("payment verification failed",
		"order_id", order.ID, "payment_order_id", order.PaymentOrderID)

	err := s.orders.Transition(ctx, order.ID,
		domain.OrderStatusPending, domain.OrderStatusCancelled, store.OrderUpdate{})
	if errors.Is(err, store.ErrConflict) {
		// Someone else moved the order first; their path owns the
		// inventory side effects.
		return ErrPaymentVerificationFailed
	}
	if err != nil {
		return domain.Internal(err, "order.payment_result", "Could not cancel the order")
	}

	s.releaseAll(ctx, order.Items)

	order.Status = domain.OrderStatusCancelled
	s.dispatch(ctx, "cancelled", order, s.notifier.OrderCancelled)
	return ErrPaymentVerificationFailed
}

// finalize moves a pending order to processing: it wins the status race
// first, then spends the reservations and notifies the customer. The
// compare-and-set is the idempotency gate; a losing concurrent caller never
// touches inventory.
func (s *orderService) finalize(ctx context.Context, order *domain.Order, paymentID string) (*domain.Order, error) {
	number, err := s.confirmationNumber(ctx)
	if err != nil {
		return nil, domain.Internal(err, "order.finalize", "Could not assign a confirmation number")
	}

	update := store.OrderUpdate{ConfirmationNumber: &number}
	if paymentID != "" {
		update.PaymentID = &paymentID
	}

	err = s.orders.Transition(ctx, order.ID,
		domain.OrderStatusPending, domain.OrderStatusProcessing, update)
	if errors.Is(err, store.ErrConflict) {
		fresh, loadErr := s.orders.Get(ctx, order.ID)
		if loadErr != nil {
			return nil, loadErr
		}
		if fresh.Status == domain.OrderStatusProcessing || fresh.Status == domain.OrderStatusShipped ||
			fresh.Status == domain.OrderStatusDelivered {
			return fresh, nil
		}
		return nil, domain.Conflict("order.finalize", "Order was cancelled before payment completed")
	}
	if err != nil {
		return nil, domain.Internal(err, "order.finalize", "Could not update the order")
	}

	for _, item := range order.Items {
		if err := s.ledger.Confirm(ctx, item.ProductID, item.Quantity); err != nil {
			// The reservation placed at checkout guarantees this
			// succeeds; a miss means the ledger was touched out of band.
			s.logger.Error("confirming reserved stock failed",
				"order_id", order.ID, "product_id", item.ProductID, "error", err)
		}
	}

	fresh, err := s.orders.Get(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("order confirmed",
		"order_id", fresh.ID,
		"confirmation_number", fresh.ConfirmationNumber,
		"payment_method", fresh.PaymentMethod,
	)
	s.dispatch(ctx, "confirmed", fresh, s.notifier.OrderConfirmed)
	return fresh, nil
}

func (s *orderService) MarkShipped(ctx context.Context, orderID uuid.UUID, trackingNumber string, estimatedDelivery time.Time) (*domain.Order, error) {
	if trackingNumber == "" {
		return nil, ErrTrackingNumberRequired
	}

	update := store.OrderUpdate{TrackingNumber: &trackingNumber}
	if !estimatedDelivery.IsZero() {
		update.EstimatedDelivery = &estimatedDelivery
	}

	err := s.orders.Transition(ctx, orderID,
		domain.OrderStatusProcessing, domain.OrderStatusShipped, update)
	if errors.Is(err, store.ErrConflict) {
		return nil, domain.Conflict("order.ship", "Only processing orders can be shipped")
	}
	if err != nil {
		return nil, err
	}

	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	s.dispatch(ctx, "shipped", order, s.notifier.OrderShipped)
	return order, nil
}

func (s *orderService) MarkDelivered(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	err := s.orders.Transition(ctx, orderID,
		domain.OrderStatusShipped, domain.OrderStatusDelivered, store.OrderUpdate{})
	if errors.Is(err, store.ErrConflict) {
		return nil, domain.Conflict("order.deliver", "Only shipped orders can be delivered")
	}
	if err != nil {
		return nil, err
	}
	return s.orders.Get(ctx, orderID)
}

func (s *orderService) Cancel(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !policy.IsCancellable(order.Status) {
		return nil, ErrOrderNotCancellable
	}

	from := order.Status
	err = s.orders.Transition(ctx, orderID, from, domain.OrderStatusCancelled, store.OrderUpdate{})
	if errors.Is(err, store.ErrConflict) {
		fresh, loadErr := s.orders.Get(ctx, orderID)
		if loadErr != nil {
			return nil, loadErr
		}
		if fresh.Status == domain.OrderStatusCancelled {
			return fresh, nil
		}
		return nil, ErrOrderNotCancellable
	}
	if err != nil {
		return nil, err
	}

	// Inventory compensation depends on how far the order got. Pending
	// orders still hold reservations; processing orders already spent
	// them, so the stock itself comes back.
	switch from {
	case domain.OrderStatusPending:
		s.releaseAll(ctx, order.Items)
	case domain.OrderStatusProcessing:
		for _, item := range order.Items {
			if err := s.ledger.Restock(ctx, item.ProductID, item.Quantity); err != nil {
				s.logger.Error("restocking cancelled order failed",
					"order_id", orderID, "product_id", item.ProductID, "error", err)
			}
		}
	}

	s.metrics.OrdersCancelled.WithLabelValues(string(from)).Inc()
	s.logger.Info("order cancelled", "order_id", orderID, "from_status", from)

	fresh, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.dispatch(ctx, "cancelled", fresh, s.notifier.OrderCancelled)
	return fresh, nil
}

func (s *orderService) UpdateShippingAddress(ctx context.Context, orderID uuid.UUID, address domain.Address) (*domain.Order, error) {
	if err := s.validate.Struct(address); err != nil {
		return nil, domain.WrapError(err, domain.EINVALID, "order.modify", "Address is incomplete or invalid")
	}

	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !policy.IsModifiable(order.Status, order.CreatedAt, s.now()) {
		return nil, ErrModificationWindowClosed
	}

	if err := s.orders.UpdateShippingAddress(ctx, orderID, address); err != nil {
		return nil, err
	}
	return s.orders.Get(ctx, orderID)
}

func (s *orderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	return s.orders.Get(ctx, orderID)
}

func (s *orderService) GetOrderByConfirmationNumber(ctx context.Context, number string) (*domain.Order, error) {
	return s.orders.GetByConfirmationNumber(ctx, number)
}

func (s *orderService) ListCustomerOrders(ctx context.Context, customerID string, limit, offset int) ([]domain.Order, error) {
	return s.orders.ListByCustomer(ctx, customerID, limit, offset)
}

func (s *orderService) ListOrders(ctx context.Context, filters []store.Filter, limit, offset int) ([]domain.Order, error) {
	return s.orders.List(ctx, filters, limit, offset)
}

// reserveAll places holds for every line, all-or-nothing: the first failure
// releases every hold placed in this attempt before returning.
func (s *orderService) reserveAll(ctx context.Context, items []domain.OrderItem) error {
	for i, item := range items {
		if err := s.ledger.Reserve(ctx, item.ProductID, item.Quantity); err != nil {
			s.releaseAll(ctx, items[:i])
			return err
		}
	}
	return nil
}

// releaseAll returns every hold in items to the pool. Failures are logged;
// the ledger's clamp keeps repeated releases harmless.
func (s *orderService) releaseAll(ctx context.Context, items []domain.OrderItem) {
	for _, item := range items {
		if err := s.ledger.Release(ctx, item.ProductID, item.Quantity); err != nil {
			s.logger.Error("releasing reserved stock failed",
				"product_id", item.ProductID, "quantity", item.Quantity, "error", err)
		}
	}
}

// confirmationNumber builds an ORD-YYYYMMDD-HHMMSS-RRRR identifier, checking
// the random suffix against existing orders so a same-second collision
// cannot assign one number twice.
func (s *orderService) confirmationNumber(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		number := fmt.Sprintf("ORD-%s-%04d",
			s.now().UTC().Format("20060102-150405"), rand.IntN(10000))

		exists, err := s.orders.ConfirmationNumberExists(ctx, number)
		if err != nil {
			return "", err
		}
		if !exists {
			return number, nil
		}
	}
	return "", fmt.Errorf("exhausted confirmation number attempts")
}

// dispatch fires a notification without blocking or failing the transition
// that triggered it. The detached context survives the request ending.
func (s *orderService) dispatch(ctx context.Context, kind string, order *domain.Order, send func(context.Context, *domain.Order) error) {
	if s.notifier == nil {
		return
	}
	detached := context.WithoutCancel(ctx)
	go func() {
		sendCtx, cancel := context.WithTimeout(detached, 30*time.Second)
		defer cancel()
		if err := send(sendCtx, order); err != nil {
			s.metrics.NotificationFailures.WithLabelValues(kind).Inc()
			s.logger.Error("notification dispatch failed",
				"kind", kind,
				"order_id", order.ID,
				"confirmation_number", order.ConfirmationNumber,
				"error", err,
			)
		}
	}()
}
