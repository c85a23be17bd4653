package routes

import (
	"github.com/dvalin/aurum/internal/router"
)

// RegisterWebhookRoutes registers server-to-server callbacks from the payment
// gateway. These carry their own HMAC verification instead of session auth.
func RegisterWebhookRoutes(r *router.Router, deps WebhookDeps) {
	r.Post("/webhooks/payment", deps.WebhookHandler.PaymentResult)
}
