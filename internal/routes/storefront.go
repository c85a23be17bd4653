package routes

import (
	"github.com/dvalin/aurum/internal/router"
)

// RegisterStorefrontRoutes registers the public shopping API. Guest requests
// identify their cart with the X-Session-ID header; authenticated requests
// carry X-Customer-ID from the identity proxy.
func RegisterStorefrontRoutes(r *router.Router, deps StorefrontDeps) {
	// Catalog
	r.Get("/api/products", deps.ProductHandler.List)
	r.Get("/api/products/{id}", deps.ProductHandler.Get)

	// Cart
	r.Get("/api/cart", deps.CartHandler.Get)
	r.Post("/api/cart/items", deps.CartHandler.AddItem)
	r.Put("/api/cart/items/{productID}", deps.CartHandler.UpdateItem)
	r.Delete("/api/cart/items/{productID}", deps.CartHandler.RemoveItem)

	// Checkout
	r.Post("/api/checkout", deps.OrderHandler.Checkout)

	// Order self-service
	r.Get("/api/orders", deps.OrderHandler.ListMine)
	r.Get("/api/orders/{confirmationNumber}", deps.OrderHandler.Get)
	r.Post("/api/orders/{id}/cancel", deps.OrderHandler.Cancel)
	r.Put("/api/orders/{id}/shipping-address", deps.OrderHandler.UpdateAddress)
}
