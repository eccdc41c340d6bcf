package postgres

import (
	"context"

	"github.com/beautyops/beautyops/internal/domain/invoice"
	"github.com/beautyops/beautyops/internal/logger"
	"github.com/beautyops/beautyops/internal/postgres"
	"github.com/beautyops/beautyops/internal/types"
)

type invoiceRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewInvoiceRepository(db *postgres.DB, logger *logger.Logger) invoice.Repository {
	return &invoiceRepository{db: db, logger: logger}
}

func (r *invoiceRepository) CreateIfAbsent(ctx context.Context, inv *invoice.Invoice) (types.RecordOutcome, error) {
	query := `
		INSERT INTO invoices (
			id, user_id, stripe_invoice_id, stripe_customer_id, amount_paid, currency,
			status, invoice_pdf, period_start, period_end, paid_at, created_at
		) VALUES (
			:id, :user_id, :stripe_invoice_id, :stripe_customer_id, :amount_paid, :currency,
			:status, :invoice_pdf, :period_start, :period_end, :paid_at, :created_at
		)
		ON CONFLICT (stripe_invoice_id) DO NOTHING
	`

	res, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, inv)
	if err != nil {
		return "", wrapWriteErr(err, "invoice")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return "", wrapWriteErr(err, "invoice")
	}
	if n == 0 {
		return types.RecordOutcomeDuplicate, nil
	}
	return types.RecordOutcomeInserted, nil
}

func (r *invoiceRepository) ListByUserID(ctx context.Context, userID string, limit int) ([]*invoice.Invoice, error) {
	query := `
		SELECT
			id, user_id, stripe_invoice_id, stripe_customer_id, amount_paid, currency,
			status, invoice_pdf, period_start, period_end, paid_at, created_at
		FROM invoices
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	invoices := make([]*invoice.Invoice, 0)
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &invoices, query, userID, limit); err != nil {
		return nil, wrapQueryErr(err, "Invoices", "user_id", userID)
	}
	return invoices, nil
}
