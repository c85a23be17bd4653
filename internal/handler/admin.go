package handler

import (
	"net/http"
	"time"

	"github.com/dvalin/aurum/internal/domain"
	"github.com/dvalin/aurum/internal/inventory"
	"github.com/dvalin/aurum/internal/service"
	"github.com/dvalin/aurum/internal/store"
	"github.com/google/uuid"
)

// AdminHandler serves catalog management, inventory adjustments and order
// fulfillment. Routes carrying it sit behind AdminAuth.
type AdminHandler struct {
	products   store.ProductStore
	orders     service.OrderService
	ledger     inventory.Ledger
	invalidate func()
}

// NewAdminHandler creates an AdminHandler. invalidate is called after any
// catalog write so cached storefront reads don't serve stale products; nil
// is allowed.
func NewAdminHandler(products store.ProductStore, orders service.OrderService, ledger inventory.Ledger, invalidate func()) *AdminHandler {
	if invalidate == nil {
		invalidate = func() {}
	}
	return &AdminHandler{
		products:   products,
		orders:     orders,
		ledger:     ledger,
		invalidate: invalidate,
	}
}

type productRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	PricePaise  int64  `json:"price_paise"`
	IsActive    bool   `json:"is_active"`
}

func (req *productRequest) validate() error {
	if req.Name == "" {
		return domain.Invalid("", "Product name is required")
	}
	if req.PricePaise <= 0 {
		return domain.Invalid("", "Price must be greater than 0")
	}
	return nil
}

// CreateProduct handles POST /admin/api/products
func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decode(r, &req); err != nil {
		Error(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		Error(w, r, err)
		return
	}

	product := &domain.Product{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		PricePaise:  req.PricePaise,
		IsActive:    req.IsActive,
	}
	if err := h.products.Create(r.Context(), product); err != nil {
		Error(w, r, err)
		return
	}

	// New products start untracked at zero stock until inventory is set.
	if err := h.ledger.Put(r.Context(), product.ID, 0); err != nil {
		Error(w, r, err)
		return
	}

	h.invalidate()
	JSON(w, http.StatusCreated, productView(product))
}

// UpdateProduct handles PUT /admin/api/products/{id}
func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		Error(w, r, domain.Invalid("", "Invalid product id"))
		return
	}

	var req productRequest
	if err := decode(r, &req); err != nil {
		Error(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		Error(w, r, err)
		return
	}

	product := &domain.Product{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		PricePaise:  req.PricePaise,
		IsActive:    req.IsActive,
	}
	if err := h.products.Update(r.Context(), product); err != nil {
		Error(w, r, err)
		return
	}

	h.invalidate()
	JSON(w, http.StatusOK, productView(product))
}

// GetInventory handles GET /admin/api/inventory/{productID}
func (h *AdminHandler) GetInventory(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(r.PathValue("productID"))
	if err != nil {
		Error(w, r, domain.Invalid("", "Invalid product id"))
		return
	}

	rec, err := h.ledger.Get(r.Context(), productID)
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, http.StatusOK, inventoryView(rec))
}

type setStockRequest struct {
	StockQuantity int64 `json:"stock_quantity"`
}

// SetStock handles PUT /admin/api/inventory/{productID}. It resets the
// record outright, clearing reservations; use Restock for additive changes
// while orders are in flight.
func (h *AdminHandler) SetStock(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(r.PathValue("productID"))
	if err != nil {
		Error(w, r, domain.Invalid("", "Invalid product id"))
		return
	}

	var req setStockRequest
	if err := decode(r, &req); err != nil {
		Error(w, r, err)
		return
	}

	if err := h.ledger.Put(r.Context(), productID, req.StockQuantity); err != nil {
		Error(w, r, err)
		return
	}

	rec, err := h.ledger.Get(r.Context(), productID)
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, http.StatusOK, inventoryView(rec))
}

type restockRequest struct {
	Quantity int64 `json:"quantity"`
}

// Restock handles POST /admin/api/inventory/{productID}/restock
func (h *AdminHandler) Restock(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(r.PathValue("productID"))
	if err != nil {
		Error(w, r, domain.Invalid("", "Invalid product id"))
		return
	}

	var req restockRequest
	if err := decode(r, &req); err != nil {
		Error(w, r, err)
		return
	}

	if err := h.ledger.Restock(r.Context(), productID, req.Quantity); err != nil {
		Error(w, r, err)
		return
	}

	rec, err := h.ledger.Get(r.Context(), productID)
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, http.StatusOK, inventoryView(rec))
}

// ListOrders handles GET /admin/api/orders?status=...
func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	var filters []store.Filter
	if status := r.URL.Query().Get("status"); status != "" {
		if !domain.OrderStatus(status).Valid() {
			Error(w, r, domain.Invalid("", "Unknown order status"))
			return
		}
		filters = append(filters, store.Eq("status", status))
	}

	limit, offset := pagination(r)
	orders, err := h.orders.ListOrders(r.Context(), filters, limit, offset)
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

// GetOrder handles GET /admin/api/orders/{id}
func (h *AdminHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		Error(w, r, domain.Invalid("", "Invalid order id"))
		return
	}

	order, err := h.orders.GetOrder(r.Context(), id)
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, http.StatusOK, orderView(order))
}

type shipOrderRequest struct {
	TrackingNumber    string     `json:"tracking_number"`
	EstimatedDelivery *time.Time `json:"estimated_delivery,omitempty"`
}

// ShipOrder handles POST /admin/api/orders/{id}/ship
func (h *AdminHandler) ShipOrder(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		Error(w, r, domain.Invalid("", "Invalid order id"))
		return
	}

	var req shipOrderRequest
	if err := decode(r, &req); err != nil {
		Error(w, r, err)
		return
	}

	var eta time.Time
	if req.EstimatedDelivery != nil {
		eta = *req.EstimatedDelivery
	}

	order, err := h.orders.MarkShipped(r.Context(), id, req.TrackingNumber, eta)
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, http.StatusOK, orderView(order))
}

// DeliverOrder handles POST /admin/api/orders/{id}/deliver
func (h *AdminHandler) DeliverOrder(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		Error(w, r, domain.Invalid("", "Invalid order id"))
		return
	}

	order, err := h.orders.MarkDelivered(r.Context(), id)
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, http.StatusOK, orderView(order))
}

// CancelOrder handles POST /admin/api/orders/{id}/cancel
func (h *AdminHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
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
