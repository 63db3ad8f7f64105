// Package notify turns domain events into outbound notifications.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/rosterdesk/platform/internal/domain"
	"github.com/rosterdesk/platform/internal/format"
	"github.com/rosterdesk/platform/internal/guard"
	"github.com/rosterdesk/platform/internal/markdown"
	"github.com/rosterdesk/platform/internal/provider"
)

const (
	emailCircuit        = "email"
	breakerFailures     = 5
	breakerResetTimeout = time.Minute
	dedupeWindow        = 4096
)

// ErrEmailUnavailable is returned while the email circuit is open.
var ErrEmailUnavailable = errors.New("email delivery temporarily unavailable")

// Dispatcher sends the notifications attached to each event type. Events are
// delivered at least once, so it drops event IDs it has already handled.
type Dispatcher struct {
	sender  provider.EmailSender
	baseURL string
	breaker *guard.CircuitBreaker
	seen    *guard.IdempotencyGuard
	logger  *slog.Logger
}

// NewDispatcher creates a dispatcher. baseURL is the public web app origin
// used to build accept links.
func NewDispatcher(sender provider.EmailSender, baseURL string, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		sender:  sender,
		baseURL: strings.TrimRight(baseURL, "/"),
		breaker: guard.NewCircuitBreaker(breakerFailures, breakerResetTimeout),
		seen:    guard.NewIdempotencyGuard(dedupeWindow),
		logger:  logger,
	}
}

// Handle processes one event. Events without a notification are ignored.
func (d *Dispatcher) Handle(ctx context.Context, env domain.EventEnvelope) error {
	key := env.EventID.String()
	if res := d.seen.Check(ctx, key); !res.Allowed {
		d.logger.Debug("skip duplicate event", "event_id", key, "event", env.EventName)
		return nil
	}
	if err := d.handle(ctx, env); err != nil {
		d.seen.Remove(key)
		return err
	}
	return nil
}

func (d *Dispatcher) handle(ctx context.Context, env domain.EventEnvelope) error {
	switch env.EventName {
	case domain.EventInvitationCreated:
		var p domain.InvitationCreatedPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return fmt.Errorf("decode %s payload: %w", env.EventName, err)
		}
		msg, err := d.InvitationEmail(p)
		if err != nil {
			return err
		}
		if err := d.send(ctx, msg); err != nil {
			return fmt.Errorf("send invitation email: %w", err)
		}
		d.logger.Info("invitation email sent", "invitation_id", p.InvitationID, "org_id", p.OrgID)
		return nil
	default:
		d.logger.Debug("no notification for event", "event", env.EventName, "event_id", env.EventID)
		return nil
	}
}

func (d *Dispatcher) send(ctx context.Context, msg provider.EmailMessage) error {
	if res := d.breaker.Check(ctx, emailCircuit); !res.Allowed {
		d.logger.Warn("email circuit open", "reason", res.Reason)
		return ErrEmailUnavailable
	}
	if _, err := d.sender.Send(ctx, msg); err != nil {
		d.breaker.RecordFailure(emailCircuit)
		return err
	}
	d.breaker.RecordSuccess(emailCircuit)
	return nil
}

// InvitationEmail renders the email inviting p.Email into the organization.
func (d *Dispatcher) InvitationEmail(p domain.InvitationCreatedPayload) (provider.EmailMessage, error) {
	link := d.baseURL + "/invitations/" + url.PathEscape(p.Token)
	body := fmt.Sprintf(
		"You have been invited to join **%s** as %s.\n\n[Accept the invitation](%s)\n\nThis invitation expires on %s.",
		escapeMarkdown(p.OrgName), roleLabel(p.Role), link, format.Date(p.ExpiresAt),
	)
	html, err := markdown.ToHTML(body)
	if err != nil {
		return provider.EmailMessage{}, fmt.Errorf("render invitation email: %w", err)
	}
	return provider.EmailMessage{
		To:      []string{p.Email},
		Subject: fmt.Sprintf("You're invited to %s", p.OrgName),
		HTML:    html,
	}, nil
}

// escapeMarkdown backslash-escapes ASCII punctuation so user text renders literally.
func escapeMarkdown(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < 0x80 && (unicode.IsPunct(r) || unicode.IsSymbol(r)) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func roleLabel(r domain.Role) string {
	label := strings.ReplaceAll(string(r), "_", " ")
	if label == "" {
		return "a member"
	}
	switch label[0] {
	case 'a', 'e', 'i', 'o', 'u':
		return "an " + label
	}
	return "a " + label
}

// InlinePublisher hands events straight to a Dispatcher. It is used when no
// event bus is configured.
type InlinePublisher struct {
	Dispatcher *Dispatcher
}

// Publish dispatches every event and joins the failures.
func (p InlinePublisher) Publish(ctx context.Context, events ...domain.EventEnvelope) error {
	var errs []error
	for _, e := range events {
		if err := p.Dispatcher.Handle(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
