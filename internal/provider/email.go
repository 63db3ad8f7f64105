package provider

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/resend/resend-go/v2"
)

// EmailMessage is one outbound transactional email.
type EmailMessage struct {
	To      []string
	From    string
	Subject string
	HTML    string
	ReplyTo string
}

// EmailReceipt identifies a message accepted by the provider.
type EmailReceipt struct {
	MessageID string
	SentAt    time.Time
}

// EmailSender delivers transactional email.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) (EmailReceipt, error)
}

// ResendSender sends email through the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
	logger *slog.Logger
}

// NewResendSender creates a sender with a default from address.
func NewResendSender(apiKey, from string, logger *slog.Logger) *ResendSender {
	return &ResendSender{client: resend.NewClient(apiKey), from: from, logger: logger}
}

// Send implements EmailSender.
func (s *ResendSender) Send(ctx context.Context, msg EmailMessage) (EmailReceipt, error) {
	from := msg.From
	if from == "" {
		from = s.from
	}
	params := &resend.SendEmailRequest{
		From:    from,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
	}
	if msg.ReplyTo != "" {
		params.ReplyTo = msg.ReplyTo
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return EmailReceipt{}, fmt.Errorf("resend send: %w", err)
	}
	s.logger.Info("email sent", "message_id", sent.Id, "to", msg.To, "subject", msg.Subject)
	return EmailReceipt{MessageID: sent.Id, SentAt: time.Now()}, nil
}

// LogSender records messages in the log instead of delivering them. It
// stands in for Resend in development and keeps what it saw for tests.
type LogSender struct {
	logger *slog.Logger

	mu   sync.Mutex
	sent []EmailMessage
}

// NewLogSender creates a LogSender.
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send implements EmailSender.
func (s *LogSender) Send(_ context.Context, msg EmailMessage) (EmailReceipt, error) {
	s.mu.Lock()
	s.sent = append(s.sent, msg)
	n := len(s.sent)
	s.mu.Unlock()

	s.logger.Info("email not delivered (no provider configured)", "to", msg.To, "subject", msg.Subject)
	return EmailReceipt{MessageID: fmt.Sprintf("log-%d", n), SentAt: time.Now()}, nil
}

// Sent returns a copy of every message recorded so far.
func (s *LogSender) Sent() []EmailMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]EmailMessage(nil), s.sent...)
}
