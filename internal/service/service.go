package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/rosterdesk/platform/internal/datastore"
	"github.com/rosterdesk/platform/internal/domain"
)

// EventPublisher delivers domain events to the event bus.
type EventPublisher interface {
	Publish(ctx context.Context, events ...domain.EventEnvelope) error
}

// DiscardPublisher drops every event.
type DiscardPublisher struct{}

// Publish implements EventPublisher.
func (DiscardPublisher) Publish(context.Context, ...domain.EventEnvelope) error { return nil }

// MembershipInvalidator forgets cached memberships after they change.
type MembershipInvalidator interface {
	Invalidate(userID string)
}

type nopInvalidator struct{}

func (nopInvalidator) Invalidate(string) {}

// storeErr maps a repository failure onto the API error taxonomy.
// Unique violations become conflicts; everything else is a storage error
// with the original failure kept as the cause.
func storeErr(op string, err error) error {
	if datastore.IsConflict(err) {
		return domain.ErrConflict(op + ": already exists")
	}
	if datastore.IsInvalidInput(err) {
		return domain.ErrValidation(op + ": invalid reference")
	}
	return domain.ErrStorage(op, err)
}

// publish sends events without failing the caller: the write already happened.
func publish(ctx context.Context, p EventPublisher, logger *slog.Logger, events ...domain.EventEnvelope) {
	if err := p.Publish(ctx, events...); err != nil {
		for _, e := range events {
			logger.Error("publish event", "error", err, "event", e.EventName, "aggregate_id", e.AggregateID)
		}
	}
}

func nowFunc(now func() time.Time) func() time.Time {
	if now == nil {
		return time.Now
	}
	return now
}
