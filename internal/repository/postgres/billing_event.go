package postgres

import (
	"context"
	"time"

	"github.com/beautyops/beautyops/internal/domain/billingevent"
	ierr "github.com/beautyops/beautyops/internal/errors"
	"github.com/beautyops/beautyops/internal/logger"
	"github.com/beautyops/beautyops/internal/postgres"
	"github.com/beautyops/beautyops/internal/types"
)

type billingEventRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewBillingEventRepository(db *postgres.DB, logger *logger.Logger) billingevent.Repository {
	return &billingEventRepository{db: db, logger: logger}
}

const billingEventColumns = `id, stripe_event_id, event_type, payload, processed, processed_at, error_message, created_at`

func (r *billingEventRepository) CreateIfAbsent(ctx context.Context, e *billingevent.BillingEvent) (types.RecordOutcome, error) {
	query := `
		INSERT INTO stripe_webhook_events (
			id, stripe_event_id, event_type, payload, processed, created_at
		) VALUES ($1, $2, $3, $4::jsonb, FALSE, $5)
		ON CONFLICT (stripe_event_id) DO NOTHING
	`

	// payload goes over the wire as text; lib/pq would send []byte as bytea
	res, err := r.db.GetQuerier(ctx).ExecContext(ctx, query,
		e.ID, e.StripeEventID, e.EventType, string(e.Payload), e.CreatedAt)
	if err != nil {
		return "", wrapWriteErr(err, "billing event")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return "", wrapWriteErr(err, "billing event")
	}
	if n == 0 {
		return types.RecordOutcomeDuplicate, nil
	}
	return types.RecordOutcomeInserted, nil
}

func (r *billingEventRepository) Get(ctx context.Context, stripeEventID string) (*billingevent.BillingEvent, error) {
	query := `SELECT ` + billingEventColumns + ` FROM stripe_webhook_events WHERE stripe_event_id = $1`

	var e billingevent.BillingEvent
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &e, query, stripeEventID); err != nil {
		return nil, wrapQueryErr(err, "Billing event", "event_id", stripeEventID)
	}
	return &e, nil
}

// MarkProcessed and MarkFailed only move events that are still pending so the
// terminal transition is decided by the database, not by a prior read.
func (r *billingEventRepository) MarkProcessed(ctx context.Context, stripeEventID string, at time.Time) error {
	query := `
		UPDATE stripe_webhook_events
		SET processed = TRUE, processed_at = $2
		WHERE stripe_event_id = $1 AND processed = FALSE AND error_message IS NULL
	`
	return r.transition(ctx, query, stripeEventID, at)
}

func (r *billingEventRepository) MarkFailed(ctx context.Context, stripeEventID string, message string) error {
	query := `
		UPDATE stripe_webhook_events
		SET error_message = $2
		WHERE stripe_event_id = $1 AND processed = FALSE AND error_message IS NULL
	`
	return r.transition(ctx, query, stripeEventID, message)
}

func (r *billingEventRepository) transition(ctx context.Context, query string, stripeEventID string, arg interface{}) error {
	res, err := r.db.GetQuerier(ctx).ExecContext(ctx, query, stripeEventID, arg)
	if err != nil {
		return wrapWriteErr(err, "billing event")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrapWriteErr(err, "billing event")
	}
	if n > 0 {
		return nil
	}

	// nothing moved: either the event is unknown or already terminal
	if _, err := r.Get(ctx, stripeEventID); err != nil {
		return err
	}
	return ierr.NewError("billing event already in a terminal state").
		WithHint("Billing event was already processed or failed").
		WithReportableDetails(map[string]any{"event_id": stripeEventID}).
		Mark(ierr.ErrInvalidOperation)
}
