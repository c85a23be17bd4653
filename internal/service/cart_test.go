package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/dvalin/aurum/internal/domain"
	"github.com/dvalin/aurum/internal/pricing"
	"github.com/dvalin/aurum/internal/service"
	"github.com/dvalin/aurum/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cartFixture struct {
	carts    *store.MemoryCartStore
	products *store.MemoryProductStore
	svc      service.CartService
}

func newCartFixture(t *testing.T) *cartFixture {
	t.Helper()
	carts := store.NewMemoryCartStore()
	products := store.NewMemoryProductStore()
	return &cartFixture{
		carts:    carts,
		products: products,
		svc:      service.NewCartService(carts, products, pricing.NewCalculator(pricing.DefaultConfig())),
	}
}

func (f *cartFixture) addProduct(t *testing.T, name string, pricePaise int64, active bool) *domain.Product {
	t.Helper()
	p := &domain.Product{
		ID:         uuid.New(),
		Name:       name,
		Category:   "earrings",
		PricePaise: pricePaise,
		IsActive:   active,
	}
	require.NoError(t, f.products.Create(context.Background(), p))
	return p
}

func TestCartService_GetOrCreateCart(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t)

	first, err := f.svc.GetOrCreateCart(ctx, "session-1")
	require.NoError(t, err)
	assert.True(t, first.IsEmpty())

	second, err := f.svc.GetOrCreateCart(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "same owner gets the same cart back")

	other, err := f.svc.GetOrCreateCart(ctx, "session-2")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestCartService_AddItemRecomputesTotals(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t)
	product := f.addProduct(t, "Gold Hoop Earrings", 100000, true)

	cart, err := f.svc.GetOrCreateCart(ctx, "session-1")
	require.NoError(t, err)

	cart, err = f.svc.AddItem(ctx, cart.ID, product.ID, 2)
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, int64(2), cart.Items[0].Quantity)
	assert.Equal(t, int64(200000), cart.Items[0].TotalPricePaise)

	// 18% tax on 200000, free shipping at the threshold.
	assert.Equal(t, int64(200000), cart.Totals.SubtotalPaise)
	assert.Equal(t, int64(36000), cart.Totals.TaxPaise)
	assert.Zero(t, cart.Totals.ShippingPaise)
	assert.Equal(t, int64(236000), cart.Totals.TotalPaise)
}

func TestCartService_AddItemMergesLines(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t)
	product := f.addProduct(t, "Silver Pendant", 50000, true)

	cart, err := f.svc.GetOrCreateCart(ctx, "session-1")
	require.NoError(t, err)

	_, err = f.svc.AddItem(ctx, cart.ID, product.ID, 1)
	require.NoError(t, err)
	cart, err = f.svc.AddItem(ctx, cart.ID, product.ID, 2)
	require.NoError(t, err)

	require.Len(t, cart.Items, 1, "same product merges into one line")
	assert.Equal(t, int64(3), cart.Items[0].Quantity)
}

func TestCartService_AddInactiveProduct(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t)
	product := f.addProduct(t, "Retired Ring", 75000, false)

	cart, err := f.svc.GetOrCreateCart(ctx, "session-1")
	require.NoError(t, err)

	_, err = f.svc.AddItem(ctx, cart.ID, product.ID, 1)
	assert.ErrorIs(t, err, service.ErrProductUnavailable)
}

func TestCartService_UpdateQuantityRefreshesPrice(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t)
	product := f.addProduct(t, "Gold Bangle", 100000, true)

	cart, err := f.svc.GetOrCreateCart(ctx, "session-1")
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, cart.ID, product.ID, 1)
	require.NoError(t, err)

	// Catalog price changes while the item sits in the cart.
	product.PricePaise = 120000
	require.NoError(t, f.products.Update(ctx, product))

	cart, err = f.svc.UpdateItemQuantity(ctx, cart.ID, product.ID, 2)
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, int64(120000), cart.Items[0].UnitPricePaise, "quantity update picks up the current price")
	assert.Equal(t, int64(240000), cart.Totals.SubtotalPaise)
}

func TestCartService_UpdateQuantityToZeroRemovesLine(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t)
	product := f.addProduct(t, "Silver Anklet", 40000, true)

	cart, err := f.svc.GetOrCreateCart(ctx, "session-1")
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, cart.ID, product.ID, 2)
	require.NoError(t, err)

	cart, err = f.svc.UpdateItemQuantity(ctx, cart.ID, product.ID, 0)
	require.NoError(t, err)

	assert.True(t, cart.IsEmpty())
	assert.Zero(t, cart.Totals.TotalPaise)
}

func TestCartService_RemoveMissingItem(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t)

	cart, err := f.svc.GetOrCreateCart(ctx, "session-1")
	require.NoError(t, err)

	_, err = f.svc.RemoveItem(ctx, cart.ID, uuid.New())
	assert.True(t, domain.IsCode(err, domain.ENOTFOUND))
}

func TestCartService_ExpiredCartRejectsMutation(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t)
	product := f.addProduct(t, "Gold Chain", 90000, true)

	expired := &domain.Cart{
		ID:        uuid.New(),
		OwnerKey:  "session-1",
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, f.carts.Create(ctx, expired))

	_, err := f.svc.AddItem(ctx, expired.ID, product.ID, 1)
	assert.ErrorIs(t, err, service.ErrCartExpired)
}

func TestCartService_ExpiredCartIsReplacedOnAccess(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t)

	expired := &domain.Cart{
		ID:        uuid.New(),
		OwnerKey:  "session-1",
		Items:     []domain.CartItem{{ProductID: uuid.New(), Quantity: 1, UnitPricePaise: 1000, TotalPricePaise: 1000}},
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, f.carts.Create(ctx, expired))

	fresh, err := f.svc.GetOrCreateCart(ctx, "session-1")
	require.NoError(t, err)
	assert.NotEqual(t, expired.ID, fresh.ID)
	assert.True(t, fresh.IsEmpty())
}
