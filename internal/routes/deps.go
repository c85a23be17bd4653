package routes

import (
	"github.com/dvalin/aurum/internal/handler"
)

// StorefrontDeps contains dependencies for public storefront routes.
type StorefrontDeps struct {
	// Catalog
	ProductHandler *handler.ProductHandler

	// Cart
	CartHandler *handler.CartHandler

	// Checkout and order self-service
	OrderHandler *handler.OrderHandler
}

// AdminDeps contains dependencies for admin API routes.
type AdminDeps struct {
	AdminHandler *handler.AdminHandler

	// Bearer token guarding the whole group.
	Token string
}

// WebhookDeps contains dependencies for gateway callback routes.
type WebhookDeps struct {
	WebhookHandler *handler.WebhookHandler
}
