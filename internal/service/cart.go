package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dvalin/aurum/internal/domain"
	"github.com/dvalin/aurum/internal/pricing"
	"github.com/dvalin/aurum/internal/store"
	"github.com/google/uuid"
)

// cartTTL is how long a cart lives past its most recent mutation.
const cartTTL = 30 * 24 * time.Hour

// CartService provides business logic for shopping cart operations. Every
// mutation recomputes and persists the cart's estimated totals.
type CartService interface {
	// GetOrCreateCart returns the cart for ownerKey, creating an empty one
	// if none exists.
	GetOrCreateCart(ctx context.Context, ownerKey string) (*domain.Cart, error)

	GetCart(ctx context.Context, cartID uuid.UUID) (*domain.Cart, error)

	// AddItem adds quantity of a product, merging with an existing line.
	// The unit price is snapshotted from the catalog at add time.
	AddItem(ctx context.Context, cartID, productID uuid.UUID, quantity int64) (*domain.Cart, error)

	// UpdateItemQuantity sets a line's quantity, refreshing its unit price
	// from the catalog. A quantity of zero or less removes the line.
	UpdateItemQuantity(ctx context.Context, cartID, productID uuid.UUID, quantity int64) (*domain.Cart, error)

	RemoveItem(ctx context.Context, cartID, productID uuid.UUID) (*domain.Cart, error)

	// ClearCart removes every line. Called after a successful checkout.
	ClearCart(ctx context.Context, cartID uuid.UUID) (*domain.Cart, error)
}

type cartService struct {
	carts    store.CartStore
	products store.ProductStore
	pricer   *pricing.Calculator
	now      func() time.Time
}

// NewCartService creates a CartService.
func NewCartService(carts store.CartStore, products store.ProductStore, pricer *pricing.Calculator) CartService {
	return &cartService{
		carts:    carts,
		products: products,
		pricer:   pricer,
		now:      time.Now,
	}
}

func (s *cartService) GetOrCreateCart(ctx context.Context, ownerKey string) (*domain.Cart, error) {
	if ownerKey == "" {
		return nil, domain.Invalid("cart.get_or_create", "Owner key is required")
	}

	cart, err := s.carts.GetByOwner(ctx, ownerKey)
	if err == nil {
		if cart.Expired(s.now()) {
			return s.resetExpired(ctx, cart)
		}
		return cart, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("loading cart for owner: %w", err)
	}

	cart = &domain.Cart{
		ID:        uuid.New(),
		OwnerKey:  ownerKey,
		ExpiresAt: s.now().Add(cartTTL),
	}
	if err := s.carts.Create(ctx, cart); err != nil {
		// Two first requests for the same owner can race on create; the
		// loser picks up the winner's cart.
		if errors.Is(err, store.ErrDuplicate) {
			return s.carts.GetByOwner(ctx, ownerKey)
		}
		return nil, fmt.Errorf("creating cart: %w", err)
	}
	return cart, nil
}

func (s *cartService) GetCart(ctx context.Context, cartID uuid.UUID) (*domain.Cart, error) {
	return s.carts.Get(ctx, cartID)
}

func (s *cartService) AddItem(ctx context.Context, cartID, productID uuid.UUID, quantity int64) (*domain.Cart, error) {
	if quantity <= 0 {
		return nil, domain.Invalid("cart.add_item", "Quantity must be greater than 0")
	}

	product, err := s.products.Get(ctx, productID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProductUnavailable
		}
		return nil, fmt.Errorf("loading product: %w", err)
	}
	if !product.IsActive {
		return nil, ErrProductUnavailable
	}

	return s.mutate(ctx, cartID, func(cart *domain.Cart) error {
		if line := cart.Item(productID); line != nil {
			line.Quantity += quantity
			line.UnitPricePaise = product.PricePaise
			line.TotalPricePaise = line.Quantity * line.UnitPricePaise
			return nil
		}
		cart.Items = append(cart.Items, domain.CartItem{
			ProductID:       product.ID,
			ProductName:     product.Name,
			Quantity:        quantity,
			UnitPricePaise:  product.PricePaise,
			TotalPricePaise: quantity * product.PricePaise,
		})
		return nil
	})
}

func (s *cartService) UpdateItemQuantity(ctx context.Context, cartID, productID uuid.UUID, quantity int64) (*domain.Cart, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, cartID, productID)
	}

	product, err := s.products.Get(ctx, productID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProductUnavailable
		}
		return nil, fmt.Errorf("loading product: %w", err)
	}

	return s.mutate(ctx, cartID, func(cart *domain.Cart) error {
		line := cart.Item(productID)
		if line == nil {
			return domain.NotFound("cart.update_quantity", "cart item", productID.String())
		}
		line.Quantity = quantity
		line.UnitPricePaise = product.PricePaise
		line.TotalPricePaise = quantity * product.PricePaise
		return nil
	})
}

func (s *cartService) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) (*domain.Cart, error) {
	return s.mutate(ctx, cartID, func(cart *domain.Cart) error {
		for i := range cart.Items {
			if cart.Items[i].ProductID == productID {
				cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
				return nil
			}
		}
		return domain.NotFound("cart.remove_item", "cart item", productID.String())
	})
}

func (s *cartService) ClearCart(ctx context.Context, cartID uuid.UUID) (*domain.Cart, error) {
	return s.mutate(ctx, cartID, func(cart *domain.Cart) error {
		cart.Items = nil
		return nil
	})
}

// mutate wraps the store's transactional closure with the invariants every
// cart mutation shares: expired carts reject writes, and totals are
// recomputed from the surviving lines before the cart persists.
func (s *cartService) mutate(ctx context.Context, cartID uuid.UUID, fn func(cart *domain.Cart) error) (*domain.Cart, error) {
	return s.carts.Mutate(ctx, cartID, func(cart *domain.Cart) error {
		if cart.Expired(s.now()) {
			return ErrCartExpired
		}
		if err := fn(cart); err != nil {
			return err
		}
		cart.Totals = s.pricer.QuoteCart(cart, cart.Totals.DiscountPaise)
		cart.ExpiresAt = s.now().Add(cartTTL)
		return nil
	})
}

// resetExpired replaces an expired cart with a fresh empty one for the same
// owner.
func (s *cartService) resetExpired(ctx context.Context, expired *domain.Cart) (*domain.Cart, error) {
	if err := s.carts.Delete(ctx, expired.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("deleting expired cart: %w", err)
	}

	cart := &domain.Cart{
		ID:        uuid.New(),
		OwnerKey:  expired.OwnerKey,
		ExpiresAt: s.now().Add(cartTTL),
	}
	if err := s.carts.Create(ctx, cart); err != nil {
		return nil, fmt.Errorf("recreating cart: %w", err)
	}
	return cart, nil
}
