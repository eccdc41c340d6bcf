package testutil

import (
	"context"
	"time"

	"github.com/beautyops/beautyops/internal/domain/billingevent"
	ierr "github.com/beautyops/beautyops/internal/errors"
	"github.com/beautyops/beautyops/internal/types"
)

// InMemoryBillingEventStore implements billingevent.Repository keyed by provider event id
type InMemoryBillingEventStore struct {
	*InMemoryStore[*billingevent.BillingEvent]
}

func NewInMemoryBillingEventStore() *InMemoryBillingEventStore {
	return &InMemoryBillingEventStore{
		InMemoryStore: NewInMemoryStore[*billingevent.BillingEvent](),
	}
}

func copyBillingEvent(e *billingevent.BillingEvent) *billingevent.BillingEvent {
	if e == nil {
		return nil
	}
	c := *e
	c.Payload = append([]byte(nil), e.Payload...)
	return &c
}

func (s *InMemoryBillingEventStore) CreateIfAbsent(ctx context.Context, e *billingevent.BillingEvent) (types.RecordOutcome, error) {
	if s.InMemoryStore.CreateIfAbsent(ctx, e.StripeEventID, copyBillingEvent(e)) {
		return types.RecordOutcomeInserted, nil
	}
	return types.RecordOutcomeDuplicate, nil
}

func (s *InMemoryBillingEventStore) Get(ctx context.Context, stripeEventID string) (*billingevent.BillingEvent, error) {
	e, err := s.InMemoryStore.Get(ctx, stripeEventID)
	if err != nil {
		return nil, err
	}
	return copyBillingEvent(e), nil
}

func (s *InMemoryBillingEventStore) MarkProcessed(ctx context.Context, stripeEventID string, at time.Time) error {
	return s.Mutate(ctx, stripeEventID, func(e *billingevent.BillingEvent) (*billingevent.BillingEvent, error) {
		if e.IsTerminal() {
			return nil, terminalTransitionError(stripeEventID)
		}
		c := copyBillingEvent(e)
		c.Processed = true
		c.ProcessedAt = &at
		return c, nil
	})
}

func (s *InMemoryBillingEventStore) MarkFailed(ctx context.Context, stripeEventID string, message string) error {
	return s.Mutate(ctx, stripeEventID, func(e *billingevent.BillingEvent) (*billingevent.BillingEvent, error) {
		if e.IsTerminal() {
			return nil, terminalTransitionError(stripeEventID)
		}
		c := copyBillingEvent(e)
		c.ErrorMessage = &message
		return c, nil
	})
}

func terminalTransitionError(stripeEventID string) error {
	return ierr.NewError("billing event already reached a final state").
		WithHint("Billing event outcome cannot change").
		WithReportableDetails(map[string]any{"event_id": stripeEventID}).
		Mark(ierr.ErrInvalidOperation)
}
