package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dvalin/aurum/internal/cache"
	"github.com/dvalin/aurum/internal/domain"
	"github.com/dvalin/aurum/internal/middleware"
	"github.com/dvalin/aurum/internal/service"
	"github.com/dvalin/aurum/internal/store"
	"github.com/google/uuid"
)

// SessionHeader identifies a guest shopper's cart across requests.
const SessionHeader = "X-Session-ID"

// ProductHandler serves the public catalog. Reads go through a short TTL
// cache; writes from the admin surface invalidate it.
type ProductHandler struct {
	products  store.ProductStore
	listCache *cache.TTL[string, []domain.Product]
}

func NewProductHandler(products store.ProductStore, cacheTTL time.Duration) *ProductHandler {
	return &ProductHandler{
		products:  products,
		listCache: cache.New[string, []domain.Product](cacheTTL),
	}
}

// List handles GET /api/products?category=...
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	cacheKey := "category:" + category

	products, hit := h.listCache.Get(cacheKey)
	if !hit {
		filters := []store.Filter{store.Eq("is_active", true)}
		if category != "" {
			filters = append(filters, store.Eq("category", category))
		}

		var err error
		products, err = h.products.List(r.Context(), filters, 0, 0)
		if err != nil {
			Error(w, r, err)
			return
		}
		h.listCache.Set(cacheKey, products)
	}

	views := make([]ProductView, len(products))
	for i := range products {
		views[i] = productView(&products[i])
	}
	JSON(w, http.StatusOK, views)
}

// Get handles GET /api/products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		Error(w, r, domain.Invalid("", "Invalid product id"))
		return
	}

	product, err := h.products.Get(r.Context(), id)
	if err != nil {
		Error(w, r, err)
		return
	}
	if !product.IsActive {
		Error(w, r, store.ErrNotFound)
		return
	}
	JSON(w, http.StatusOK, productView(product))
}

// Invalidate drops the catalog cache. Called by admin writes.
func (h *ProductHandler) Invalidate() {
	h.listCache.Reset()
}

// CartHandler serves cart reads and mutations. The cart owner is the
// authenticated customer when present, otherwise the session header.
type CartHandler struct {
	carts service.CartService
}

func NewCartHandler(carts service.CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

func ownerKey(r *http.Request) (string, error) {
	if customerID := middleware.GetCustomerID(r.Context()); customerID != "" {
		return "customer:" + customerID, nil
	}
	if session := r.Header.Get(SessionHeader); session != "" {
		return "session:" + session, nil
	}
	return "", domain.Invalid("", "A session or customer identity is required")
}

// Get handles GET /api/cart
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerKey(r)
	if err != nil {
		Error(w, r, err)
		return
	}

	cart, err := h.carts.GetOrCreateCart(r.Context(), owner)
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, http.StatusOK, cartView(cart))
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

// AddItem handles POST /api/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerKey(r)
	if err != nil {
		Error(w, r, err)
		return
	}

	var req addItemRequest
	if err := decode(r, &req); err != nil {
		Error(w, r, err)
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		Error(w, r, domain.Invalid("", "Invalid product id"))
		return
	}

	cart, err := h.carts.GetOrCreateCart(r.Context(), owner)
	if err != nil {
		Error(w, r, err)
		return
	}

	cart, err = h.carts.AddItem(r.Context(), cart.ID, productID, req.Quantity)
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, http.StatusOK, cartView(cart))
}

type updateItemRequest struct {
	Quantity int64 `json:"quantity"`
}

// UpdateItem handles PUT /api/cart/items/{productID}
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerKey(r)
	if err != nil {
		Error(w, r, err)
		return
	}
	productID, err := uuid.Parse(r.PathValue("productID"))
	if err != nil {
		Error(w, r, domain.Invalid("", "Invalid product id"))
		return
	}

	var req updateItemRequest
	if err := decode(r, &req); err != nil {
		Error(w, r, err)
		return
	}

	cart, err := h.carts.GetOrCreateCart(r.Context(), owner)
	if err != nil {
		Error(w, r, err)
		return
	}

	cart, err = h.carts.UpdateItemQuantity(r.Context(), cart.ID, productID, req.Quantity)
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, http.StatusOK, cartView(cart))
}

// RemoveItem handles DELETE /api/cart/items/{productID}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerKey(r)
	if err != nil {
		Error(w, r, err)
		return
	}
	productID, err := uuid.Parse(r.PathValue("productID"))
	if err != nil {
		Error(w, r, domain.Invalid("", "Invalid product id"))
		return
	}

	cart, err := h.carts.GetOrCreateCart(r.Context(), owner)
	if err != nil {
		Error(w, r, err)
		return
	}

	cart, err = h.carts.RemoveItem(r.Context(), cart.ID, productID)
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, http.StatusOK, cartView(cart))
}

// OrderHandler serves checkout and the customer's own orders.
type OrderHandler struct {
	orders service.OrderService
	carts  service.CartService
}

func NewOrderHandler(orders service.OrderService, carts service.CartService) *OrderHandler {
	return &OrderHandler{orders: orders, carts: carts}
}

type checkoutRequest struct {
	Email           string          `json:"email"`
	Phone           string          `json:"phone"`
	PaymentMethod   string          `json:"payment_method"`
	ShippingAddress domain.Address  `json:"shipping_address"`
	BillingAddress  *domain.Address `json:"billing_address,omitempty"`
	DiscountPaise   int64           `json:"discount_paise"`
}

// Checkout handles POST /api/checkout
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerKey(r)
	if err != nil {
		Error(w, r, err)
		return
	}

	var req checkoutRequest
	if err := decode(r, &req); err != nil {
		Error(w, r, err)
		return
	}

	cart, err := h.carts.GetOrCreateCart(r.Context(), owner)
	if err != nil {
		Error(w, r, err)
		return
	}

	order, err := h.orders.SubmitCheckout(r.Context(), service.CheckoutInput{
		CartID:          cart.ID,
		CustomerID:      middleware.GetCustomerID(r.Context()),
		Email:           req.Email,
		Phone:           req.Phone,
		PaymentMethod:   domain.PaymentMethod(req.PaymentMethod),
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
		DiscountPaise:   req.DiscountPaise,
	})
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, http.StatusCreated, orderView(order))
}

// Get handles GET /api/orders/{confirmationNumber}
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.GetOrderByConfirmationNumber(r.Context(), r.PathValue("confirmationNumber"))
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, http.StatusOK, orderView(order))
}

// ListMine handles GET /api/orders for authenticated customers.
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	customerID := middleware.GetCustomerID(r.Context())
	if customerID == "" {
		Error(w, r, domain.Unauthorized("", "Sign in to view your orders"))
		return
	}

	limit, offset := pagination(r)
	orders, err := h.orders.ListCustomerOrders(r.Context(), customerID, limit, offset)
	if err != nil {
		Error(w, r, err)
		return
	}

	views := make([]OrderView, len(orders))
	for i := range orders {
		views[i] = orderView(&orders[i])
	}
	JSON(w, http.StatusOK, views)
}

// Cancel handles POST /api/orders/{id}/cancel
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		Error(w, r, domain.Invalid("", "Invalid order id"))
		return
	}

	order, err := h.orders.Cancel(r.Context(), id)
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, http.StatusOK, orderView(order))
}

type updateAddressRequest struct {
	ShippingAddress domain.Address `json:"shipping_address"`
}

// UpdateAddress handles PUT /api/orders/{id}/shipping-address
func (h *OrderHandler) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		Error(w, r, domain.Invalid("", "Invalid order id"))
		return
	}

	var req updateAddressRequest
	if err := decode(r, &req); err != nil {
		Error(w, r, err)
		return
	}

	order, err := h.orders.UpdateShippingAddress(r.Context(), id, req.ShippingAddress)
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, http.StatusOK, orderView(order))
}

func pagination(r *http.Request) (limit, offset int) {
	limit = 20
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}
