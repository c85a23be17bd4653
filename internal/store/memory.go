package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dvalin/aurum/internal/domain"
	"github.com/google/uuid"
)

// MemoryProductStore is a mutex-guarded ProductStore.
type MemoryProductStore struct {
	mu       sync.RWMutex
	products map[uuid.UUID]domain.Product
}

func NewMemoryProductStore() *MemoryProductStore {
	return &MemoryProductStore{products: make(map[uuid.UUID]domain.Product)}
}

var _ ProductStore = (*MemoryProductStore)(nil)

func (s *MemoryProductStore) Create(ctx context.Context, product *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if _, exists := s.products[product.ID]; exists {
		return ErrDuplicate
	}
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now
	s.products[product.ID] = *product
	return nil
}

func (s *MemoryProductStore) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *MemoryProductStore) Update(ctx context.Context, product *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[product.ID]; !ok {
		return ErrNotFound
	}
	product.UpdatedAt = time.Now()
	s.products[product.ID] = *product
	return nil
}

func (s *MemoryProductStore) List(ctx context.Context, filters []Filter, limit, offset int) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Product
	for _, p := range s.products {
		match, err := productMatches(p, filters)
		if err != nil {
			return nil, err
		}
		if match {
			out = append(out, p)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return paginate(out, limit, offset), nil
}

func productMatches(p domain.Product, filters []Filter) (bool, error) {
	for _, f := range filters {
		var ok bool
		switch f.Field {
		case "category":
			ok = compareString(p.Category, f)
		case "is_active":
			want, isBool := f.Value.(bool)
			ok = isBool && f.Op == OpEq && p.IsActive == want
		case "name":
			ok = compareString(p.Name, f)
		case "price_paise":
			ok = compareInt64(p.PricePaise, f)
		default:
			return false, domain.Errorf(domain.EINVALID, "", "Unknown product filter field %q", f.Field)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// MemoryCartStore is a mutex-guarded CartStore. Mutate holds the store lock
// for the duration of fn, which serializes concurrent mutations.
type MemoryCartStore struct {
	mu    sync.Mutex
	carts map[uuid.UUID]domain.Cart
}

func NewMemoryCartStore() *MemoryCartStore {
	return &MemoryCartStore{carts: make(map[uuid.UUID]domain.Cart)}
}

var _ CartStore = (*MemoryCartStore)(nil)

func (s *MemoryCartStore) Create(ctx context.Context, cart *domain.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cart.ID == uuid.Nil {
		cart.ID = uuid.New()
	}
	if _, exists := s.carts[cart.ID]; exists {
		return ErrDuplicate
	}
	now := time.Now()
	cart.CreatedAt = now
	cart.UpdatedAt = now
	s.carts[cart.ID] = copyCart(*cart)
	return nil
}

func (s *MemoryCartStore) Get(ctx context.Context, id uuid.UUID) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := copyCart(c)
	return &out, nil
}

func (s *MemoryCartStore) GetByOwner(ctx context.Context, ownerKey string) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.carts {
		if c.OwnerKey == ownerKey {
			out := copyCart(c)
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryCartStore) Mutate(ctx context.Context, id uuid.UUID, fn func(cart *domain.Cart) error) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[id]
	if !ok {
		return nil, ErrNotFound
	}

	working := copyCart(c)
	if err := fn(&working); err != nil {
		return nil, err
	}

	working.UpdatedAt = time.Now()
	s.carts[id] = copyCart(working)
	return &working, nil
}

func (s *MemoryCartStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.carts[id]; !ok {
		return ErrNotFound
	}
	delete(s.carts, id)
	return nil
}

func copyCart(c domain.Cart) domain.Cart {
	items := make([]domain.CartItem, len(c.Items))
	copy(items, c.Items)
	c.Items = items
	return c
}

// MemoryOrderStore is a mutex-guarded OrderStore. Transition performs its
// status check and write under the lock, matching the guarded UPDATE the
// postgres implementation issues.
type MemoryOrderStore struct {
	mu     sync.Mutex
	orders map[uuid.UUID]domain.Order
}

func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{orders: make(map[uuid.UUID]domain.Order)}
}

var _ OrderStore = (*MemoryOrderStore)(nil)

func (s *MemoryOrderStore) Create(ctx context.Context, order *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if _, exists := s.orders[order.ID]; exists {
		return ErrDuplicate
	}
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now
	s.orders[order.ID] = copyOrder(*order)
	return nil
}

func (s *MemoryOrderStore) Get(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := copyOrder(o)
	return &out, nil
}

func (s *MemoryOrderStore) GetByConfirmationNumber(ctx context.Context, number string) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range s.orders {
		if o.ConfirmationNumber != "" && o.ConfirmationNumber == number {
			out := copyOrder(o)
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryOrderStore) GetByPaymentOrderID(ctx context.Context, paymentOrderID string) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range s.orders {
		if o.PaymentOrderID != "" && o.PaymentOrderID == paymentOrderID {
			out := copyOrder(o)
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryOrderStore) ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]domain.Order, error) {
	return s.List(ctx, []Filter{Eq("customer_id", customerID)}, limit, offset)
}

func (s *MemoryOrderStore) List(ctx context.Context, filters []Filter, limit, offset int) ([]domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Order
	for _, o := range s.orders {
		match, err := orderMatches(o, filters)
		if err != nil {
			return nil, err
		}
		if match {
			out = append(out, copyOrder(o))
		}
	}

	// Newest first, the way order history is read.
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, limit, offset), nil
}

func orderMatches(o domain.Order, filters []Filter) (bool, error) {
	for _, f := range filters {
		var ok bool
		switch f.Field {
		case "status":
			ok = compareString(string(o.Status), f)
		case "customer_id":
			ok = compareString(o.CustomerID, f)
		case "payment_method":
			ok = compareString(string(o.PaymentMethod), f)
		case "created_at":
			want, isTime := f.Value.(time.Time)
			if !isTime {
				return false, domain.Errorf(domain.EINVALID, "", "created_at filter requires a time value")
			}
			switch f.Op {
			case OpGte:
				ok = !o.CreatedAt.Before(want)
			case OpLte:
				ok = !o.CreatedAt.After(want)
			}
		default:
			return false, domain.Errorf(domain.EINVALID, "", "Unknown order filter field %q", f.Field)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func (s *MemoryOrderStore) Transition(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus, update OrderUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return ErrNotFound
	}
	if o.Status != from {
		return ErrConflict
	}

	o.Status = to
	if update.PaymentID != nil {
		o.PaymentID = *update.PaymentID
	}
	if update.ConfirmationNumber != nil {
		o.ConfirmationNumber = *update.ConfirmationNumber
	}
	if update.TrackingNumber != nil {
		o.TrackingNumber = *update.TrackingNumber
	}
	if update.EstimatedDelivery != nil {
		o.EstimatedDelivery = *update.EstimatedDelivery
	}
	o.UpdatedAt = time.Now()
	s.orders[id] = o
	return nil
}

func (s *MemoryOrderStore) UpdateShippingAddress(ctx context.Context, id uuid.UUID, address domain.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.ShippingAddress = address
	o.UpdatedAt = time.Now()
	s.orders[id] = o
	return nil
}

func (s *MemoryOrderStore) ConfirmationNumberExists(ctx context.Context, number string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range s.orders {
		if o.ConfirmationNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func copyOrder(o domain.Order) domain.Order {
	items := make([]domain.OrderItem, len(o.Items))
	copy(items, o.Items)
	o.Items = items
	return o
}

func compareString(have string, f Filter) bool {
	want, ok := f.Value.(string)
	if !ok {
		// Status and method filters may arrive as their typed forms.
		want = fmt.Sprint(f.Value)
	}
	switch f.Op {
	case OpEq:
		return have == want
	case OpNeq:
		return have != want
	case OpLike:
		return strings.Contains(strings.ToLower(have), strings.ToLower(want))
	}
	return false
}

func compareInt64(have int64, f Filter) bool {
	var want int64
	switch v := f.Value.(type) {
	case int64:
		want = v
	case int:
		want = int64(v)
	default:
		return false
	}
	switch f.Op {
	case OpEq:
		return have == want
	case OpNeq:
		return have != want
	case OpGte:
		return have >= want
	case OpLte:
		return have <= want
	}
	return false
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
