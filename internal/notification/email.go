package notification

import "context"

// Email is a message to be delivered to a customer mailbox.
type Email struct {
	To       []string
	From     string
	Subject  string
	TextBody string
	HTMLBody string
}

// EmailSender delivers email messages. Implementations can use SMTP,
// Postmark, SES, etc.
type EmailSender interface {
	// Send delivers the email and returns the provider's message ID when
	// one is available.
	Send(ctx context.Context, email *Email) (string, error)
}

// SMSSender delivers short text messages to a phone number.
type SMSSender interface {
	Send(ctx context.Context, phone, body string) (string, error)
}
