package handler

import (
	"net/http"

	"github.com/dvalin/aurum/internal/service"
)

// WebhookHandler receives the payment gateway's server-to-server callbacks.
type WebhookHandler struct {
	orders service.OrderService
}

func NewWebhookHandler(orders service.OrderService) *WebhookHandler {
	return &WebhookHandler{orders: orders}
}

type paymentCallbackRequest struct {
	GatewayOrderID string `json:"razorpay_order_id"`
	PaymentID      string `json:"razorpay_payment_id"`
	Signature      string `json:"razorpay_signature"`
}

// PaymentResult handles POST /webhooks/payment. The gateway retries until it
// sees a 2xx, so the response must distinguish "processed" and "rejected for
// good" from transient failures:
//   - verified or already processed: 200
//   - bad signature or unknown order: 4xx (retrying won't help)
//   - anything else: 5xx so the gateway retries
func (h *WebhookHandler) PaymentResult(w http.ResponseWriter, r *http.Request) {
	var req paymentCallbackRequest
	if err := decode(r, &req); err != nil {
		Error(w, r, err)
		return
	}

	order, err := h.orders.ProcessPaymentResult(r.Context(), service.PaymentResult{
		GatewayOrderID: req.GatewayOrderID,
		PaymentID:      req.PaymentID,
		Signature:      req.Signature,
	})
	if err != nil {
		// Error maps verification failures and unknown orders to 4xx and
		// everything unexpected to 5xx, which is exactly the retry
		// contract described above.
		Error(w, r, err)
		return
	}

	JSON(w, http.StatusOK, map[string]string{
		"status":              "ok",
		"order_id":            order.ID.String(),
		"confirmation_number": order.ConfirmationNumber,
	})
}
