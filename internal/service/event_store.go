package service

import (
	"context"
	"encoding/json"
	"time"
	"unicode/utf8"

	"github.com/beautyops/beautyops/internal/domain/billingevent"
	ierr "github.com/beautyops/beautyops/internal/errors"
	"github.com/beautyops/beautyops/internal/types"
)

// maxErrorMessageLength bounds what is stored in error_message
const maxErrorMessageLength = 2000

// EventStore is the idempotency ledger of inbound billing events
type EventStore interface {
	// Record inserts the event unless its id was seen before. Exactly one of
	// any number of concurrent calls for the same id observes RecordOutcomeInserted.
	Record(ctx context.Context, eventID string, eventType types.BillingEventType, payload json.RawMessage) (types.RecordOutcome, error)
	MarkProcessed(ctx context.Context, eventID string) error
	MarkFailed(ctx context.Context, eventID string, message string) error
}

type eventStore struct {
	ServiceParams
}

func NewEventStore(params ServiceParams) EventStore {
	return &eventStore{ServiceParams: params}
}

func (s *eventStore) Record(ctx context.Context, eventID string, eventType types.BillingEventType, payload json.RawMessage) (types.RecordOutcome, error) {
	event := billingevent.New(eventID, eventType, payload)
	if err := event.Validate(); err != nil {
		return "", err
	}

	outcome, err := s.BillingEventRepo.CreateIfAbsent(ctx, event)
	if err != nil {
		return "", err
	}

	if outcome == types.RecordOutcomeDuplicate {
		s.Logger.Infow("duplicate billing event ignored",
			"event_id", eventID,
			"event_type", eventType,
		)
	}
	return outcome, nil
}

func (s *eventStore) MarkProcessed(ctx context.Context, eventID string) error {
	if eventID == "" {
		return ierr.NewError("event id is required").
			WithHint("Event id is required").
			Mark(ierr.ErrValidation)
	}
	return s.BillingEventRepo.MarkProcessed(ctx, eventID, time.Now().UTC())
}

func (s *eventStore) MarkFailed(ctx context.Context, eventID string, message string) error {
	if eventID == "" {
		return ierr.NewError("event id is required").
			WithHint("Event id is required").
			Mark(ierr.ErrValidation)
	}
	if message == "" {
		message = "unknown error"
	}
	return s.BillingEventRepo.MarkFailed(ctx, eventID, truncateUTF8(message, maxErrorMessageLength))
}

// truncateUTF8 cuts s to at most max bytes without splitting a rune
func truncateUTF8(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
