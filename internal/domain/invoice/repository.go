package invoice

import (
	"context"

	"github.com/beautyops/beautyops/internal/types"
)

type Repository interface {
	// CreateIfAbsent inserts the invoice unless StripeInvoiceID already exists
	CreateIfAbsent(ctx context.Context, inv *Invoice) (types.RecordOutcome, error)
	// ListByUserID returns the newest invoices first
	ListByUserID(ctx context.Context, userID string, limit int) ([]*Invoice, error)
}
