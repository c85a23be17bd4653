package routes

import (
	"github.com/dvalin/aurum/internal/middleware"
	"github.com/dvalin/aurum/internal/router"
)

// RegisterAdminRoutes registers the back-office API. Every route sits behind
// bearer token authentication.
func RegisterAdminRoutes(r *router.Router, deps AdminDeps) {
	admin := r.Group(middleware.AdminAuth(deps.Token))

	// Catalog management
	admin.Post("/admin/api/products", deps.AdminHandler.CreateProduct)
	admin.Put("/admin/api/products/{id}", deps.AdminHandler.UpdateProduct)

	// Inventory
	admin.Get("/admin/api/inventory/{productID}", deps.AdminHandler.GetInventory)
	admin.Put("/admin/api/inventory/{productID}", deps.AdminHandler.SetStock)
	admin.Post("/admin/api/inventory/{productID}/restock", deps.AdminHandler.Restock)

	// Order fulfillment
	admin.Get("/admin/api/orders", deps.AdminHandler.ListOrders)
	admin.Get("/admin/api/orders/{id}", deps.AdminHandler.GetOrder)
	admin.Post("/admin/api/orders/{id}/ship", deps.AdminHandler.ShipOrder)
	admin.Post("/admin/api/orders/{id}/deliver", deps.AdminHandler.DeliverOrder)
	admin.Post("/admin/api/orders/{id}/cancel", deps.AdminHandler.CancelOrder)
}
