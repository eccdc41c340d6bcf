package billingevent

import (
	"encoding/json"
	"time"

	ierr "github.com/beautyops/beautyops/internal/errors"
	"github.com/beautyops/beautyops/internal/types"
)

// BillingEvent is the write-ahead record of an inbound provider event.
// It is immutable except for the processing outcome and never deleted.
type BillingEvent struct {
	ID            string                 `db:"id" json:"id"`
	StripeEventID string                 `db:"stripe_event_id" json:"stripe_event_id"`
	EventType     types.BillingEventType `db:"event_type" json:"event_type"`
	Payload       json.RawMessage        `db:"payload" json:"payload"`
	Processed     bool                   `db:"processed" json:"processed"`
	ProcessedAt   *time.Time             `db:"processed_at" json:"processed_at,omitempty"`
	ErrorMessage  *string                `db:"error_message" json:"error_message,omitempty"`
	CreatedAt     time.Time              `db:"created_at" json:"created_at"`
}

// New builds an unprocessed event ready to be recorded
func New(eventID string, eventType types.BillingEventType, payload json.RawMessage) *BillingEvent {
	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}
	return &BillingEvent{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_BILLING_EVENT),
		StripeEventID: eventID,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     time.Now().UTC(),
	}
}

// IsFailed reports whether a handler error was recorded
func (e *BillingEvent) IsFailed() bool {
	return e.ErrorMessage != nil
}

// IsTerminal reports whether the event reached either final state
func (e *BillingEvent) IsTerminal() bool {
	return e.Processed || e.IsFailed()
}

func (e *BillingEvent) Validate() error {
	if e.StripeEventID == "" {
		return ierr.NewError("event id is required").
			WithHint("Billing event must carry the provider event id").
			Mark(ierr.ErrValidation)
	}
	if e.EventType == "" {
		return ierr.NewError("event type is required").
			WithHint("Billing event must carry an event type").
			WithReportableDetails(map[string]any{"event_id": e.StripeEventID}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
