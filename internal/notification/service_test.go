package notification_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dvalin/aurum/internal/domain"
	"github.com/dvalin/aurum/internal/notification"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingEmailSender struct {
	sent []*notification.Email
	err  error
}

func (r *recordingEmailSender) Send(ctx context.Context, email *notification.Email) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	r.sent = append(r.sent, email)
	return "msg-1", nil
}

type recordingSMSSender struct {
	sent []string
	err  error
}

func (r *recordingSMSSender) Send(ctx context.Context, phone, body string) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	r.sent = append(r.sent, body)
	return "sms-1", nil
}

func testOrder() *domain.Order {
	return &domain.Order{
		ID:                 uuid.New(),
		CustomerEmail:      "customer@example.com",
		CustomerPhone:      "+919876543210",
		ConfirmationNumber: "ORD-20250310-120000-4821",
		Status:             domain.OrderStatusProcessing,
		Items: []domain.OrderItem{
			{ProductName: "Gold Hoop Earrings", Quantity: 2, UnitPricePaise: 100000, TotalPricePaise: 200000},
		},
		Totals: domain.Totals{
			SubtotalPaise: 200000,
			TaxPaise:      36000,
			TotalPaise:    236000,
		},
	}
}

func TestService_OrderConfirmed(t *testing.T) {
	email := &recordingEmailSender{}
	sms := &recordingSMSSender{}
	svc := notification.NewService(email, sms, "orders@aurum.example", "Aurum", nil)

	require.NoError(t, svc.OrderConfirmed(context.Background(), testOrder()))

	require.Len(t, email.sent, 1)
	assert.Equal(t, []string{"customer@example.com"}, email.sent[0].To)
	assert.Contains(t, email.sent[0].Subject, "ORD-20250310-120000-4821")
	assert.Contains(t, email.sent[0].TextBody, "₹2360.00")
	assert.Contains(t, email.sent[0].TextBody, "2 items")

	require.Len(t, sms.sent, 1)
	assert.Contains(t, sms.sent[0], "ORD-20250310-120000-4821")
}

func TestService_OrderShippedIncludesTracking(t *testing.T) {
	email := &recordingEmailSender{}
	svc := notification.NewService(email, nil, "orders@aurum.example", "Aurum", nil)

	order := testOrder()
	order.Status = domain.OrderStatusShipped
	order.TrackingNumber = "AWB123456"
	order.EstimatedDelivery = time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	require.NoError(t, svc.OrderShipped(context.Background(), order))

	require.Len(t, email.sent, 1)
	assert.Contains(t, email.sent[0].TextBody, "AWB123456")
	assert.Contains(t, email.sent[0].TextBody, "15 March 2025")
}

func TestService_EmailFailureSurfaces(t *testing.T) {
	email := &recordingEmailSender{err: errors.New("smtp down")}
	svc := notification.NewService(email, nil, "orders@aurum.example", "Aurum", nil)

	err := svc.OrderCancelled(context.Background(), testOrder())
	assert.Error(t, err)
}

func TestService_SMSFailureIsSwallowed(t *testing.T) {
	email := &recordingEmailSender{}
	sms := &recordingSMSSender{err: errors.New("provider down")}
	svc := notification.NewService(email, sms, "orders@aurum.example", "Aurum", nil)

	require.NoError(t, svc.OrderConfirmed(context.Background(), testOrder()))
	assert.Len(t, email.sent, 1, "email still goes out when SMS fails")
}

func TestService_SkipsMissingChannels(t *testing.T) {
	email := &recordingEmailSender{}
	sms := &recordingSMSSender{}
	svc := notification.NewService(email, sms, "orders@aurum.example", "Aurum", nil)

	order := testOrder()
	order.CustomerEmail = ""
	order.CustomerPhone = ""

	require.NoError(t, svc.OrderConfirmed(context.Background(), order))
	assert.Empty(t, email.sent)
	assert.Empty(t, sms.sent)
}
