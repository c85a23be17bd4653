package payment_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dvalin/aurum/internal/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signPair(secret, gatewayOrderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestRazorpayProvider_CreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "key_id", user)
		assert.Equal(t, "key_secret", pass)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.EqualValues(t, 236000, req["amount"])
		assert.Equal(t, "INR", req["currency"])

		json.NewEncoder(w).Encode(map[string]any{
			"id":         "order_N1234",
			"amount":     236000,
			"currency":   "INR",
			"receipt":    req["receipt"],
			"status":     "created",
			"created_at": 1710000000,
		})
	}))
	defer srv.Close()

	provider := payment.NewRazorpayProvider("key_id", "key_secret").WithBaseURL(srv.URL)

	order, err := provider.CreateOrder(context.Background(), payment.CreateOrderParams{
		AmountPaise: 236000,
		Currency:    "INR",
		Receipt:     "rcpt_1",
	})
	require.NoError(t, err)
	assert.Equal(t, "order_N1234", order.ID)
	assert.Equal(t, int64(236000), order.AmountPaise)
	assert.Equal(t, "created", order.Status)
}

func TestRazorpayProvider_CreateOrderErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{
			name:    "bad credentials",
			status:  http.StatusUnauthorized,
			body:    `{"error":{"code":"BAD_REQUEST_ERROR","description":"Authentication failed"}}`,
			wantErr: payment.ErrGatewayCredentials,
		},
		{
			name:    "rejected request",
			status:  http.StatusBadRequest,
			body:    `{"error":{"code":"BAD_REQUEST_ERROR","description":"Currency is not supported"}}`,
			wantErr: payment.ErrGatewayRejected,
		},
		{
			name:    "gateway down",
			status:  http.StatusBadGateway,
			body:    `oops`,
			wantErr: payment.ErrGatewayUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			provider := payment.NewRazorpayProvider("key_id", "key_secret").WithBaseURL(srv.URL)

			_, err := provider.CreateOrder(context.Background(), payment.CreateOrderParams{
				AmountPaise: 100,
				Currency:    "INR",
			})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRazorpayProvider_VerifySignature(t *testing.T) {
	const secret = "key_secret"
	provider := payment.NewRazorpayProvider("key_id", secret)

	valid := signPair(secret, "order_N1234", "pay_ABCD")

	tests := []struct {
		name           string
		gatewayOrderID string
		paymentID      string
		signature      string
		want           bool
	}{
		{"valid signature", "order_N1234", "pay_ABCD", valid, true},
		{"wrong payment id", "order_N1234", "pay_OTHER", valid, false},
		{"wrong order id", "order_OTHER", "pay_ABCD", valid, false},
		{"tampered signature", "order_N1234", "pay_ABCD", valid[:len(valid)-1] + "x", false},
		{"wrong secret", "order_N1234", "pay_ABCD", signPair("other_secret", "order_N1234", "pay_ABCD"), false},
		{"empty signature", "order_N1234", "pay_ABCD", "", false},
		{"empty ids", "", "", valid, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := provider.VerifySignature(tt.gatewayOrderID, tt.paymentID, tt.signature)
			assert.Equal(t, tt.want, got)
		})
	}
}
