package handler

import (
	"time"

	"github.com/dvalin/aurum/internal/domain"
)

// View DTOs decouple the wire format from the domain structs.

type ProductView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category"`
	PricePaise  int64  `json:"price_paise"`
	IsActive    bool   `json:"is_active"`
}

type TotalsView struct {
	SubtotalPaise int64 `json:"subtotal_paise"`
	TaxPaise      int64 `json:"tax_paise"`
	ShippingPaise int64 `json:"shipping_paise"`
	DiscountPaise int64 `json:"discount_paise"`
	TotalPaise    int64 `json:"total_paise"`
}

type LineItemView struct {
	ProductID       string `json:"product_id"`
	ProductName     string `json:"product_name"`
	Quantity        int64  `json:"quantity"`
	UnitPricePaise  int64  `json:"unit_price_paise"`
	TotalPricePaise int64  `json:"total_price_paise"`
}

type CartView struct {
	ID     string         `json:"id"`
	Items  []LineItemView `json:"items"`
	Totals TotalsView     `json:"totals"`
}

type OrderView struct {
	ID                 string         `json:"id"`
	ConfirmationNumber string         `json:"confirmation_number,omitempty"`
	Status             string         `json:"status"`
	PaymentMethod      string         `json:"payment_method"`
	PaymentOrderID     string         `json:"payment_order_id,omitempty"`
	Items              []LineItemView `json:"items"`
	Totals             TotalsView     `json:"totals"`
	ShippingAddress    domain.Address `json:"shipping_address"`
	TrackingNumber     string         `json:"tracking_number,omitempty"`
	EstimatedDelivery  *time.Time     `json:"estimated_delivery,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
}

type InventoryView struct {
	ProductID         string `json:"product_id"`
	StockQuantity     int64  `json:"stock_quantity"`
	ReservedQuantity  int64  `json:"reserved_quantity"`
	AvailableQuantity int64  `json:"available_quantity"`
}

func productView(p *domain.Product) ProductView {
	return ProductView{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		PricePaise:  p.PricePaise,
		IsActive:    p.IsActive,
	}
}

func totalsView(t domain.Totals) TotalsView {
	return TotalsView{
		SubtotalPaise: t.SubtotalPaise,
		TaxPaise:      t.TaxPaise,
		ShippingPaise: t.ShippingPaise,
		DiscountPaise: t.DiscountPaise,
		TotalPaise:    t.TotalPaise,
	}
}

func cartView(c *domain.Cart) CartView {
	items := make([]LineItemView, len(c.Items))
	for i, it := range c.Items {
		items[i] = LineItemView{
			ProductID:       it.ProductID.String(),
			ProductName:     it.ProductName,
			Quantity:        it.Quantity,
			UnitPricePaise:  it.UnitPricePaise,
			TotalPricePaise: it.TotalPricePaise,
		}
	}
	return CartView{
		ID:     c.ID.String(),
		Items:  items,
		Totals: totalsView(c.Totals),
	}
}

func orderView(o *domain.Order) OrderView {
	items := make([]LineItemView, len(o.Items))
	for i, it := range o.Items {
		items[i] = LineItemView{
			ProductID:       it.ProductID.String(),
			ProductName:     it.ProductName,
			Quantity:        it.Quantity,
			UnitPricePaise:  it.UnitPricePaise,
			TotalPricePaise: it.TotalPricePaise,
		}
	}

	view := OrderView{
		ID:                 o.ID.String(),
		ConfirmationNumber: o.ConfirmationNumber,
		Status:             string(o.Status),
		PaymentMethod:      string(o.PaymentMethod),
		PaymentOrderID:     o.PaymentOrderID,
		Items:              items,
		Totals:             totalsView(o.Totals),
		ShippingAddress:    o.ShippingAddress,
		TrackingNumber:     o.TrackingNumber,
		CreatedAt:          o.CreatedAt,
	}
	if !o.EstimatedDelivery.IsZero() {
		eta := o.EstimatedDelivery
		view.EstimatedDelivery = &eta
	}
	return view
}

func inventoryView(rec domain.InventoryRecord) InventoryView {
	return InventoryView{
		ProductID:         rec.ProductID.String(),
		StockQuantity:     rec.StockQuantity,
		ReservedQuantity:  rec.ReservedQuantity,
		AvailableQuantity: rec.Available(),
	}
}
