package service_test

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/dvalin/aurum/internal/domain"
	"github.com/dvalin/aurum/internal/inventory"
	"github.com/dvalin/aurum/internal/notification"
	"github.com/dvalin/aurum/internal/payment"
	"github.com/dvalin/aurum/internal/pricing"
	"github.com/dvalin/aurum/internal/service"
	"github.com/dvalin/aurum/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var confirmationNumberPattern = regexp.MustCompile(`^ORD-\d{8}-\d{6}-\d{4}$`)

type orderFixture struct {
	orders   *store.MemoryOrderStore
	carts    *store.MemoryCartStore
	products *store.MemoryProductStore
	ledger   *inventory.MemoryLedger
	gateway  *payment.MockProvider
	notifier *notification.MockDispatcher
	svc      service.OrderService
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	f := &orderFixture{
		orders:   store.NewMemoryOrderStore(),
		carts:    store.NewMemoryCartStore(),
		products: store.NewMemoryProductStore(),
		ledger:   inventory.NewMemoryLedger(nil),
		gateway:  &payment.MockProvider{},
		notifier: &notification.MockDispatcher{},
	}
	f.svc = service.NewOrderService(
		f.orders, f.carts, f.ledger, f.gateway,
		pricing.NewCalculator(pricing.DefaultConfig()),
		f.notifier, nil, nil,
	)
	return f
}

// seedProduct creates a catalog entry with stock and returns it.
func (f *orderFixture) seedProduct(t *testing.T, name string, pricePaise, stock int64) *domain.Product {
	t.Helper()
	ctx := context.Background()
	p := &domain.Product{ID: uuid.New(), Name: name, Category: "rings", PricePaise: pricePaise, IsActive: true}
	require.NoError(t, f.products.Create(ctx, p))
	require.NoError(t, f.ledger.Put(ctx, p.ID, stock))
	return p
}

// seedCart creates a cart holding quantity of each product.
func (f *orderFixture) seedCart(t *testing.T, owner string, lines map[*domain.Product]int64) *domain.Cart {
	t.Helper()
	cart := &domain.Cart{
		ID:        uuid.New(),
		OwnerKey:  owner,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	var subtotal int64
	for p, qty := range lines {
		cart.Items = append(cart.Items, domain.CartItem{
			ProductID:       p.ID,
			ProductName:     p.Name,
			Quantity:        qty,
			UnitPricePaise:  p.PricePaise,
			TotalPricePaise: qty * p.PricePaise,
		})
		subtotal += qty * p.PricePaise
	}
	cart.Totals.SubtotalPaise = subtotal
	require.NoError(t, f.carts.Create(context.Background(), cart))
	return cart
}

func testAddress() domain.Address {
	return domain.Address{
		FullName:   "Priya Sharma",
		Line1:      "14 MG Road",
		City:       "Bengaluru",
		State:      "Karnataka",
		PostalCode: "560001",
		Country:    "IN",
	}
}

func checkoutInput(cartID uuid.UUID, method domain.PaymentMethod) service.CheckoutInput {
	return service.CheckoutInput{
		CartID:          cartID,
		Email:           "priya@example.com",
		Phone:           "+919876543210",
		PaymentMethod:   method,
		ShippingAddress: testAddress(),
	}
}

func (f *orderFixture) eventKinds() []string {
	events := f.notifier.Events()
	kinds := make([]string, len(events))
	for i, e := range events {
		kinds[i] = e.Kind
	}
	return kinds
}

func TestSubmitCheckout_Gateway(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	product := f.seedProduct(t, "Gold Ring", 100000, 5)
	cart := f.seedCart(t, "session-1", map[*domain.Product]int64{product: 2})

	order, err := f.svc.SubmitCheckout(ctx, checkoutInput(cart.ID, domain.PaymentMethodGateway))
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, "order_mock", order.PaymentOrderID)
	assert.Empty(t, order.ConfirmationNumber, "no confirmation number before payment")
	assert.Equal(t, int64(236000), order.Totals.TotalPaise)

	require.Len(t, f.gateway.CreateOrderCalls, 1)
	assert.Equal(t, int64(236000), f.gateway.CreateOrderCalls[0].AmountPaise)
	assert.Equal(t, "INR", f.gateway.CreateOrderCalls[0].Currency)

	rec, err := f.ledger.Get(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), rec.ReservedQuantity, "checkout holds the stock")
	assert.Equal(t, int64(5), rec.StockQuantity, "physical stock untouched until payment")

	fresh, err := f.carts.Get(ctx, cart.ID)
	require.NoError(t, err)
	assert.True(t, fresh.IsEmpty(), "cart clears after checkout")
}

func TestSubmitCheckout_EmptyCart(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	cart := f.seedCart(t, "session-1", nil)

	_, err := f.svc.SubmitCheckout(ctx, checkoutInput(cart.ID, domain.PaymentMethodGateway))
	assert.ErrorIs(t, err, service.ErrCartEmpty)
}

func TestSubmitCheckout_ValidationRejectsBeforeSideEffects(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	product := f.seedProduct(t, "Gold Ring", 100000, 5)
	cart := f.seedCart(t, "session-1", map[*domain.Product]int64{product: 1})

	input := checkoutInput(cart.ID, domain.PaymentMethodGateway)
	input.Email = "not-an-email"

	_, err := f.svc.SubmitCheckout(ctx, input)
	assert.True(t, domain.IsCode(err, domain.EINVALID))

	assert.Empty(t, f.gateway.CreateOrderCalls, "no gateway call for invalid input")
	rec, _ := f.ledger.Get(ctx, product.ID)
	assert.Zero(t, rec.ReservedQuantity, "no reservation for invalid input")
}

func TestSubmitCheckout_AllOrNothingReservation(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	inStock := f.seedProduct(t, "Gold Ring", 100000, 5)
	outOfStock := f.seedProduct(t, "Rare Diamond Ring", 500000, 0)
	cart := f.seedCart(t, "session-1", map[*domain.Product]int64{inStock: 2, outOfStock: 1})

	_, err := f.svc.SubmitCheckout(ctx, checkoutInput(cart.ID, domain.PaymentMethodGateway))
	assert.ErrorIs(t, err, inventory.ErrInsufficientStock)

	rec, _ := f.ledger.Get(ctx, inStock.ID)
	assert.Zero(t, rec.ReservedQuantity, "partial reservation rolls back")

	fresh, err := f.carts.Get(ctx, cart.ID)
	require.NoError(t, err)
	assert.False(t, fresh.IsEmpty(), "cart survives a failed checkout")
}

func TestSubmitCheckout_GuestIdentityIsStable(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	product := f.seedProduct(t, "Gold Ring", 100000, 10)

	first := f.seedCart(t, "session-1", map[*domain.Product]int64{product: 1})
	second := f.seedCart(t, "session-2", map[*domain.Product]int64{product: 1})

	orderA, err := f.svc.SubmitCheckout(ctx, checkoutInput(first.ID, domain.PaymentMethodGateway))
	require.NoError(t, err)
	orderB, err := f.svc.SubmitCheckout(ctx, checkoutInput(second.ID, domain.PaymentMethodGateway))
	require.NoError(t, err)

	assert.Contains(t, orderA.CustomerID, "guest-")
	assert.Equal(t, orderA.CustomerID, orderB.CustomerID,
		"same guest contact resolves to one identity across sessions")
}

func TestSubmitCheckout_CashOnDelivery(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	product := f.seedProduct(t, "Gold Ring", 100000, 5)
	cart := f.seedCart(t, "session-1", map[*domain.Product]int64{product: 2})

	order, err := f.svc.SubmitCheckout(ctx, checkoutInput(cart.ID, domain.PaymentMethodCashOnDelivery))
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusProcessing, order.Status, "no payment callback for COD")
	assert.Regexp(t, confirmationNumberPattern, order.ConfirmationNumber)
	assert.Empty(t, f.gateway.CreateOrderCalls, "no gateway order for COD")

	rec, _ := f.ledger.Get(ctx, product.ID)
	assert.Equal(t, int64(3), rec.StockQuantity, "stock spent immediately")
	assert.Zero(t, rec.ReservedQuantity)

	assert.Eventually(t, func() bool {
		return len(f.notifier.Events()) == 1 && f.notifier.Events()[0].Kind == "confirmed"
	}, 2*time.Second, 10*time.Millisecond)
}

// submitAndPay drives a gateway checkout through a valid payment result.
func (f *orderFixture) submitAndPay(t *testing.T, cartID uuid.UUID) *domain.Order {
	t.Helper()
	ctx := context.Background()

	order, err := f.svc.SubmitCheckout(ctx, checkoutInput(cartID, domain.PaymentMethodGateway))
	require.NoError(t, err)

	paid, err := f.svc.ProcessPaymentResult(ctx, service.PaymentResult{
		OrderID:        order.ID,
		GatewayOrderID: order.PaymentOrderID,
		PaymentID:      "pay_123",
		Signature:      "valid",
	})
	require.NoError(t, err)
	return paid
}

func TestProcessPaymentResult_Success(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	product := f.seedProduct(t, "Gold Ring", 100000, 5)
	cart := f.seedCart(t, "session-1", map[*domain.Product]int64{product: 2})

	order := f.submitAndPay(t, cart.ID)

	assert.Equal(t, domain.OrderStatusProcessing, order.Status)
	assert.Equal(t, "pay_123", order.PaymentID)
	assert.Regexp(t, confirmationNumberPattern, order.ConfirmationNumber)

	rec, err := f.ledger.Get(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), rec.StockQuantity, "confirmed inventory leaves the shelf")
	assert.Zero(t, rec.ReservedQuantity)

	assert.Eventually(t, func() bool {
		kinds := f.eventKinds()
		return len(kinds) == 1 && kinds[0] == "confirmed"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestProcessPaymentResult_Idempotent(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	product := f.seedProduct(t, "Gold Ring", 100000, 5)
	cart := f.seedCart(t, "session-1", map[*domain.Product]int64{product: 2})

	first := f.submitAndPay(t, cart.ID)

	second, err := f.svc.ProcessPaymentResult(ctx, service.PaymentResult{
		OrderID:        first.ID,
		GatewayOrderID: first.PaymentOrderID,
		PaymentID:      "pay_123",
		Signature:      "valid",
	})
	require.NoError(t, err, "repeat callback succeeds without side effects")

	assert.Equal(t, first.ConfirmationNumber, second.ConfirmationNumber,
		"confirmation number never regenerates")

	rec, err := f.ledger.Get(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), rec.StockQuantity, "inventory never double-confirms")
}

func TestProcessPaymentResult_InvalidSignature(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	f.gateway.VerifySignatureFunc = func(gatewayOrderID, paymentID, signature string) bool {
		return false
	}
	product := f.seedProduct(t, "Gold Ring", 100000, 5)
	cart := f.seedCart(t, "session-1", map[*domain.Product]int64{product: 2})

	order, err := f.svc.SubmitCheckout(ctx, checkoutInput(cart.ID, domain.PaymentMethodGateway))
	require.NoError(t, err)

	_, err = f.svc.ProcessPaymentResult(ctx, service.PaymentResult{
		OrderID:        order.ID,
		GatewayOrderID: order.PaymentOrderID,
		PaymentID:      "pay_123",
		Signature:      "forged",
	})
	assert.ErrorIs(t, err, service.ErrPaymentVerificationFailed)

	fresh, err := f.svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, fresh.Status)
	assert.Empty(t, fresh.ConfirmationNumber)

	rec, _ := f.ledger.Get(ctx, product.ID)
	assert.Zero(t, rec.ReservedQuantity, "holds return to the pool")
	assert.Equal(t, int64(5), rec.StockQuantity, "physical stock untouched")
}

func TestProcessPaymentResult_GatewayOrderMismatch(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	product := f.seedProduct(t, "Gold Ring", 100000, 5)
	cart := f.seedCart(t, "session-1", map[*domain.Product]int64{product: 2})

	order, err := f.svc.SubmitCheckout(ctx, checkoutInput(cart.ID, domain.PaymentMethodGateway))
	require.NoError(t, err)

	_, err = f.svc.ProcessPaymentResult(ctx, service.PaymentResult{
		OrderID:        order.ID,
		GatewayOrderID: "order_someone_elses",
		PaymentID:      "pay_123",
		Signature:      "valid",
	})
	assert.True(t, domain.IsCode(err, domain.EPAYMENT))

	fresh, err := f.svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, fresh.Status,
		"a mismatched callback does not cancel the order")
}

func TestProcessPaymentResult_AfterCancelIsNoOp(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	product := f.seedProduct(t, "Gold Ring", 100000, 5)
	cart := f.seedCart(t, "session-1", map[*domain.Product]int64{product: 2})

	order, err := f.svc.SubmitCheckout(ctx, checkoutInput(cart.ID, domain.PaymentMethodGateway))
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, order.ID)
	require.NoError(t, err)

	result, err := f.svc.ProcessPaymentResult(ctx, service.PaymentResult{
		OrderID:        order.ID,
		GatewayOrderID: order.PaymentOrderID,
		PaymentID:      "pay_123",
		Signature:      "valid",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, result.Status)

	rec, _ := f.ledger.Get(ctx, product.ID)
	assert.Equal(t, int64(5), rec.StockQuantity, "late callback confirms nothing")
	assert.Zero(t, rec.ReservedQuantity)
}

func TestCancel_PendingReleasesReservation(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	product := f.seedProduct(t, "Gold Ring", 100000, 5)
	cart := f.seedCart(t, "session-1", map[*domain.Product]int64{product: 2})

	order, err := f.svc.SubmitCheckout(ctx, checkoutInput(cart.ID, domain.PaymentMethodGateway))
	require.NoError(t, err)

	cancelled, err := f.svc.Cancel(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, cancelled.Status)

	rec, _ := f.ledger.Get(ctx, product.ID)
	assert.Equal(t, int64(5), rec.StockQuantity)
	assert.Zero(t, rec.ReservedQuantity, "pending cancel releases the hold")
}

func TestCancel_ProcessingRestocks(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	product := f.seedProduct(t, "Gold Ring", 100000, 5)
	cart := f.seedCart(t, "session-1", map[*domain.Product]int64{product: 2})

	order := f.submitAndPay(t, cart.ID)

	rec, _ := f.ledger.Get(ctx, product.ID)
	require.Equal(t, int64(3), rec.StockQuantity)

	cancelled, err := f.svc.Cancel(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, cancelled.Status)

	rec, _ = f.ledger.Get(ctx, product.ID)
	assert.Equal(t, int64(5), rec.StockQuantity,
		"cancelling after confirmation restocks rather than releases")
	assert.Zero(t, rec.ReservedQuantity)
}

func TestCancel_ShippedRejected(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	product := f.seedProduct(t, "Gold Ring", 100000, 5)
	cart := f.seedCart(t, "session-1", map[*domain.Product]int64{product: 1})

	order := f.submitAndPay(t, cart.ID)
	_, err := f.svc.MarkShipped(ctx, order.ID, "AWB123456", time.Time{})
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, order.ID)
	assert.ErrorIs(t, err, service.ErrOrderNotCancellable)
}

func TestMarkShipped(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	product := f.seedProduct(t, "Gold Ring", 100000, 5)
	cart := f.seedCart(t, "session-1", map[*domain.Product]int64{product: 1})

	order := f.submitAndPay(t, cart.ID)

	_, err := f.svc.MarkShipped(ctx, order.ID, "", time.Time{})
	assert.ErrorIs(t, err, service.ErrTrackingNumberRequired)

	eta := time.Now().Add(4 * 24 * time.Hour)
	shipped, err := f.svc.MarkShipped(ctx, order.ID, "AWB123456", eta)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusShipped, shipped.Status)
	assert.Equal(t, "AWB123456", shipped.TrackingNumber)

	// Dispatches are fire-and-forget, so the confirmed and shipped events
	// may land in either order.
	assert.Eventually(t, func() bool {
		kinds := f.eventKinds()
		if len(kinds) != 2 {
			return false
		}
		return kinds[0] == "shipped" || kinds[1] == "shipped"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestMarkShipped_PendingRejected(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	product := f.seedProduct(t, "Gold Ring", 100000, 5)
	cart := f.seedCart(t, "session-1", map[*domain.Product]int64{product: 1})

	order, err := f.svc.SubmitCheckout(ctx, checkoutInput(cart.ID, domain.PaymentMethodGateway))
	require.NoError(t, err)

	_, err = f.svc.MarkShipped(ctx, order.ID, "AWB123456", time.Time{})
	assert.True(t, domain.IsCode(err, domain.ECONFLICT))
}

func TestMarkDelivered(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	product := f.seedProduct(t, "Gold Ring", 100000, 5)
	cart := f.seedCart(t, "session-1", map[*domain.Product]int64{product: 1})

	order := f.submitAndPay(t, cart.ID)
	_, err := f.svc.MarkShipped(ctx, order.ID, "AWB123456", time.Time{})
	require.NoError(t, err)

	delivered, err := f.svc.MarkDelivered(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusDelivered, delivered.Status)

	_, err = f.svc.Cancel(ctx, order.ID)
	assert.ErrorIs(t, err, service.ErrOrderNotCancellable, "delivered is terminal")
}

func TestUpdateShippingAddress(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	product := f.seedProduct(t, "Gold Ring", 100000, 5)
	cart := f.seedCart(t, "session-1", map[*domain.Product]int64{product: 1})

	order := f.submitAndPay(t, cart.ID)

	updated := testAddress()
	updated.Line1 = "22 Brigade Road"

	fresh, err := f.svc.UpdateShippingAddress(ctx, order.ID, updated)
	require.NoError(t, err)
	assert.Equal(t, "22 Brigade Road", fresh.ShippingAddress.Line1)

	_, err = f.svc.MarkShipped(ctx, order.ID, "AWB123456", time.Time{})
	require.NoError(t, err)

	_, err = f.svc.UpdateShippingAddress(ctx, order.ID, updated)
	assert.ErrorIs(t, err, service.ErrModificationWindowClosed,
		"shipped orders are out of the modification window")
}

func TestSubmitCheckout_ConcurrentLastUnit(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	product := f.seedProduct(t, "One Of A Kind Necklace", 150000, 1)

	cartA := f.seedCart(t, "session-a", map[*domain.Product]int64{product: 1})
	cartB := f.seedCart(t, "session-b", map[*domain.Product]int64{product: 1})

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for _, cartID := range []uuid.UUID{cartA.ID, cartB.ID} {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			_, err := f.svc.SubmitCheckout(ctx, checkoutInput(id, domain.PaymentMethodGateway))
			results <- err
		}(cartID)
	}
	wg.Wait()
	close(results)

	var won, lost int
	for err := range results {
		if err == nil {
			won++
		} else {
			assert.ErrorIs(t, err, inventory.ErrInsufficientStock)
			lost++
		}
	}
	assert.Equal(t, 1, won, "exactly one checkout gets the last unit")
	assert.Equal(t, 1, lost)

	rec, _ := f.ledger.Get(ctx, product.ID)
	assert.Equal(t, int64(1), rec.ReservedQuantity)
}
