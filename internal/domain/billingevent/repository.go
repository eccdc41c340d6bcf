package billingevent

import (
	"context"
	"time"

	"github.com/beautyops/beautyops/internal/types"
)

// Repository persists billing events. CreateIfAbsent must be atomic: of two
// concurrent calls with the same StripeEventID exactly one observes
// RecordOutcomeInserted.
type Repository interface {
	CreateIfAbsent(ctx context.Context, event *BillingEvent) (types.RecordOutcome, error)
	Get(ctx context.Context, stripeEventID string) (*BillingEvent, error)
	MarkProcessed(ctx context.Context, stripeEventID string, at time.Time) error
	MarkFailed(ctx context.Context, stripeEventID string, message string) error
}
