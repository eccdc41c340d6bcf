package supabase

import (
	"context"
	"sort"

	"github.com/beautyops/beautyops/internal/domain/invoice"
	"github.com/beautyops/beautyops/internal/logger"
	"github.com/beautyops/beautyops/internal/types"
	"github.com/nedpals/supabase-go"
)

type invoiceRepository struct {
	client *supabase.Client
	logger *logger.Logger
}

func NewInvoiceRepository(client *supabase.Client, logger *logger.Logger) invoice.Repository {
	return &invoiceRepository{client: client, logger: logger}
}

func (r *invoiceRepository) CreateIfAbsent(ctx context.Context, inv *invoice.Invoice) (types.RecordOutcome, error) {
	var rows []invoice.Invoice
	if err := r.client.DB.From(tableInvoices).Insert(inv).ExecuteWithContext(ctx, &rows); err != nil {
		if isUniqueViolation(err) {
			return types.RecordOutcomeDuplicate, nil
		}
		return "", wrapErr(err, "write", "invoice")
	}
	return types.RecordOutcomeInserted, nil
}

func (r *invoiceRepository) ListByUserID(ctx context.Context, userID string, limit int) ([]*invoice.Invoice, error) {
	var rows []invoice.Invoice
	err := r.client.DB.From(tableInvoices).
		Select("*").
		Eq("user_id", userID).
		ExecuteWithContext(ctx, &rows)
	if err != nil {
		return nil, wrapErr(err, "read", "invoices")
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	result := make([]*invoice.Invoice, len(rows))
	for i := range rows {
		result[i] = &rows[i]
	}
	return result, nil
}
