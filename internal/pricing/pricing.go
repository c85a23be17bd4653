// Package pricing computes cart and order totals. Quote is pure and
// deterministic: the same line items and discount always produce the same
// breakdown, byte for byte, which is what lets cart estimates be reconciled
// against frozen order totals during audits.
package pricing

import (
	"github.com/dvalin/aurum/internal/domain"
	"github.com/shopspring/decimal"
)

// Line is one (quantity, unit price) pair to be totalled.
type Line struct {
	Quantity       int64
	UnitPricePaise int64
}

// Config carries the business rules the calculator applies.
type Config struct {
	// TaxRate is applied to the subtotal, e.g. 0.18 for 18% GST.
	TaxRate decimal.Decimal

	// FreeShippingThresholdPaise is the subtotal at or above which shipping
	// is free.
	FreeShippingThresholdPaise int64

	// FlatShippingPaise is charged below the threshold.
	FlatShippingPaise int64
}

// DefaultConfig returns the storefront's fixed rules: 18% tax, free shipping
// at a subtotal of ₹2000, flat ₹100 shipping below it.
func DefaultConfig() Config {
	return Config{
		TaxRate:                    decimal.NewFromFloat(0.18),
		FreeShippingThresholdPaise: 200_000,
		FlatShippingPaise:          10_000,
	}
}

// Calculator turns line items into a totals breakdown. It performs no I/O
// and holds no mutable state.
type Calculator struct {
	cfg Config
}

// NewCalculator creates a Calculator with the given rules.
func NewCalculator(cfg Config) *Calculator {
	return &Calculator{cfg: cfg}
}

// Quote computes subtotal, tax, shipping and total for the given lines.
// discountPaise is subtracted last and the total is clamped at zero.
// Tax is rounded half-up to the paisa via decimal arithmetic so repeated
// computation never drifts.
func (c *Calculator) Quote(lines []Line, discountPaise int64) domain.Totals {
	var subtotal int64
	for _, l := range lines {
		subtotal += l.Quantity * l.UnitPricePaise
	}

	tax := decimal.NewFromInt(subtotal).
		Mul(c.cfg.TaxRate).
		Round(0).
		IntPart()

	var shipping int64
	if subtotal > 0 && subtotal < c.cfg.FreeShippingThresholdPaise {
		shipping = c.cfg.FlatShippingPaise
	}

	total := subtotal + tax + shipping - discountPaise
	if total < 0 {
		total = 0
	}

	return domain.Totals{
		SubtotalPaise: subtotal,
		TaxPaise:      tax,
		ShippingPaise: shipping,
		DiscountPaise: discountPaise,
		TotalPaise:    total,
	}
}

// QuoteCart computes totals for a cart's current lines.
func (c *Calculator) QuoteCart(cart *domain.Cart, discountPaise int64) domain.Totals {
	lines := make([]Line, len(cart.Items))
	for i, item := range cart.Items {
		lines[i] = Line{Quantity: item.Quantity, UnitPricePaise: item.UnitPricePaise}
	}
	return c.Quote(lines, discountPaise)
}

// FreeShippingThresholdPaise exposes the threshold for storefront display
// ("add ₹X more for free shipping").
func (c *Calculator) FreeShippingThresholdPaise() int64 {
	return c.cfg.FreeShippingThresholdPaise
}
