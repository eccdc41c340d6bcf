package supabase

import (
	"context"
	"time"

	"github.com/beautyops/beautyops/internal/domain/billingevent"
	ierr "github.com/beautyops/beautyops/internal/errors"
	"github.com/beautyops/beautyops/internal/logger"
	"github.com/beautyops/beautyops/internal/types"
	"github.com/nedpals/supabase-go"
)

type billingEventRepository struct {
	client *supabase.Client
	logger *logger.Logger
}

func NewBillingEventRepository(client *supabase.Client, logger *logger.Logger) billingevent.Repository {
	return &billingEventRepository{client: client, logger: logger}
}

func (r *billingEventRepository) CreateIfAbsent(ctx context.Context, e *billingevent.BillingEvent) (types.RecordOutcome, error) {
	var inserted []billingevent.BillingEvent
	err := r.client.DB.From(tableBillingEvents).
		Insert(e).
		ExecuteWithContext(ctx, &inserted)
	if err != nil {
		// the unique constraint on stripe_event_id decides which delivery wins
		if isUniqueViolation(err) {
			return types.RecordOutcomeDuplicate, nil
		}
		return "", wrapErr(err, "record", "billing event")
	}
	return types.RecordOutcomeInserted, nil
}

func (r *billingEventRepository) Get(ctx context.Context, stripeEventID string) (*billingevent.BillingEvent, error) {
	var rows []billingevent.BillingEvent
	err := r.client.DB.From(tableBillingEvents).
		Select("*").
		Eq("stripe_event_id", stripeEventID).
		ExecuteWithContext(ctx, &rows)
	if err != nil {
		return nil, wrapErr(err, "read", "billing event")
	}
	if len(rows) == 0 {
		return nil, notFound("Billing event", "event_id", stripeEventID)
	}
	return &rows[0], nil
}

// The REST API has no conditional update we can observe, so the terminal
// check is a read followed by a write.
func (r *billingEventRepository) pending(ctx context.Context, stripeEventID string) error {
	e, err := r.Get(ctx, stripeEventID)
	if err != nil {
		return err
	}
	if e.IsTerminal() {
		return ierr.NewError("billing event already in a terminal state").
			WithHint("Billing event was already processed or failed").
			WithReportableDetails(map[string]any{"event_id": stripeEventID}).
			Mark(ierr.ErrInvalidOperation)
	}
	return nil
}

func (r *billingEventRepository) MarkProcessed(ctx context.Context, stripeEventID string, at time.Time) error {
	if err := r.pending(ctx, stripeEventID); err != nil {
		return err
	}
	var updated []billingevent.BillingEvent
	err := r.client.DB.From(tableBillingEvents).
		Update(map[string]interface{}{
			"processed":    true,
			"processed_at": at.UTC(),
		}).
		Eq("stripe_event_id", stripeEventID).
		ExecuteWithContext(ctx, &updated)
	if err != nil {
		return wrapErr(err, "update", "billing event")
	}
	return nil
}

func (r *billingEventRepository) MarkFailed(ctx context.Context, stripeEventID string, message string) error {
	if err := r.pending(ctx, stripeEventID); err != nil {
		return err
	}
	var updated []billingevent.BillingEvent
	err := r.client.DB.From(tableBillingEvents).
		Update(map[string]interface{}{"error_message": message}).
		Eq("stripe_event_id", stripeEventID).
		ExecuteWithContext(ctx, &updated)
	if err != nil {
		return wrapErr(err, "update", "billing event")
	}
	return nil
}
