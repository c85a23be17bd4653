package notification

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"text/template"

	"github.com/dvalin/aurum/internal/domain"
	"github.com/shopspring/decimal"
)

// Service implements Dispatcher over an email sender and an optional SMS
// sender. Either sender may be nil, in which case that channel is skipped.
type Service struct {
	email     EmailSender
	sms       SMSSender
	from      string
	storeName string
	logger    *slog.Logger
	templates *template.Template
}

// NewService creates a notification service. from is the sender address for
// email, storeName appears in subjects and message bodies.
func NewService(email EmailSender, sms SMSSender, from, storeName string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		email:     email,
		sms:       sms,
		from:      from,
		storeName: storeName,
		logger:    logger,
		templates: template.Must(template.New("notifications").Parse(messageTemplates)),
	}
}

var _ Dispatcher = (*Service)(nil)

type messageData struct {
	StoreName          string
	ConfirmationNumber string
	Total              string
	ItemCount          int
	TrackingNumber     string
	EstimatedDelivery  string
}

func (s *Service) OrderConfirmed(ctx context.Context, order *domain.Order) error {
	data := s.dataFor(order)

	subject := fmt.Sprintf("%s: order %s confirmed", s.storeName, order.ConfirmationNumber)
	if err := s.sendEmail(ctx, order, "order_confirmed_email", subject, data); err != nil {
		return err
	}
	s.sendSMS(ctx, order, "order_confirmed_sms", data)
	return nil
}

func (s *Service) OrderShipped(ctx context.Context, order *domain.Order) error {
	data := s.dataFor(order)
	if !order.EstimatedDelivery.IsZero() {
		data.EstimatedDelivery = order.EstimatedDelivery.Format("2 January 2006")
	}

	subject := fmt.Sprintf("%s: order %s has shipped", s.storeName, order.ConfirmationNumber)
	if err := s.sendEmail(ctx, order, "order_shipped_email", subject, data); err != nil {
		return err
	}
	s.sendSMS(ctx, order, "order_shipped_sms", data)
	return nil
}

func (s *Service) OrderCancelled(ctx context.Context, order *domain.Order) error {
	data := s.dataFor(order)

	subject := fmt.Sprintf("%s: order %s cancelled", s.storeName, order.ConfirmationNumber)
	if err := s.sendEmail(ctx, order, "order_cancelled_email", subject, data); err != nil {
		return err
	}
	s.sendSMS(ctx, order, "order_cancelled_sms", data)
	return nil
}

func (s *Service) dataFor(order *domain.Order) messageData {
	var count int
	for _, item := range order.Items {
		count += int(item.Quantity)
	}
	return messageData{
		StoreName:          s.storeName,
		ConfirmationNumber: order.ConfirmationNumber,
		Total:              formatPaise(order.Totals.TotalPaise),
		ItemCount:          count,
		TrackingNumber:     order.TrackingNumber,
	}
}

func (s *Service) sendEmail(ctx context.Context, order *domain.Order, tmpl, subject string, data messageData) error {
	if s.email == nil || order.CustomerEmail == "" {
		return nil
	}

	body, err := s.render(tmpl, data)
	if err != nil {
		return fmt.Errorf("rendering %s: %w", tmpl, err)
	}

	_, err = s.email.Send(ctx, &Email{
		To:       []string{order.CustomerEmail},
		From:     s.from,
		Subject:  subject,
		TextBody: body,
	})
	if err != nil {
		return fmt.Errorf("sending %s: %w", tmpl, err)
	}
	return nil
}

// sendSMS is strictly best effort even within a dispatch: email is the
// channel of record, SMS failures are logged and dropped.
func (s *Service) sendSMS(ctx context.Context, order *domain.Order, tmpl string, data messageData) {
	if s.sms == nil || order.CustomerPhone == "" {
		return
	}

	body, err := s.render(tmpl, data)
	if err != nil {
		s.logger.Error("rendering SMS template", "template", tmpl, "error", err)
		return
	}

	if _, err := s.sms.Send(ctx, order.CustomerPhone, body); err != nil {
		s.logger.Error("sending SMS",
			"template", tmpl,
			"confirmation_number", order.ConfirmationNumber,
			"error", err,
		)
	}
}

func (s *Service) render(name string, data messageData) (string, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func formatPaise(paise int64) string {
	return "₹" + decimal.NewFromInt(paise).Div(decimal.NewFromInt(100)).StringFixed(2)
}

const messageTemplates = `
{{define "order_confirmed_email"}}Thank you for your order at {{.StoreName}}.

Your order {{.ConfirmationNumber}} ({{.ItemCount}} items, {{.Total}}) is confirmed and being prepared.

We will email you again when it ships.{{end}}

{{define "order_confirmed_sms"}}{{.StoreName}}: order {{.ConfirmationNumber}} confirmed, total {{.Total}}.{{end}}

{{define "order_shipped_email"}}Good news, your {{.StoreName}} order {{.ConfirmationNumber}} has shipped.
{{if .TrackingNumber}}
Tracking number: {{.TrackingNumber}}{{end}}{{if .EstimatedDelivery}}
Estimated delivery: {{.EstimatedDelivery}}{{end}}{{end}}

{{define "order_shipped_sms"}}{{.StoreName}}: order {{.ConfirmationNumber}} shipped.{{if .TrackingNumber}} Tracking: {{.TrackingNumber}}.{{end}}{{end}}

{{define "order_cancelled_email"}}Your {{.StoreName}} order {{.ConfirmationNumber}} has been cancelled.

If you were charged, the refund will be processed to your original payment method.{{end}}

{{define "order_cancelled_sms"}}{{.StoreName}}: order {{.ConfirmationNumber}} cancelled.{{end}}
`
