package invoice

import (
	"time"

	"github.com/beautyops/beautyops/internal/types"
	"github.com/shopspring/decimal"
)

// Invoice is a paid provider invoice. It is immutable after creation.
type Invoice struct {
	ID               string              `db:"id" json:"id"`
	UserID           string              `db:"user_id" json:"user_id"`
	StripeInvoiceID  string              `db:"stripe_invoice_id" json:"stripe_invoice_id"`
	StripeCustomerID string              `db:"stripe_customer_id" json:"stripe_customer_id"`
	AmountPaid       int64               `db:"amount_paid" json:"amount_paid"`
	Currency         string              `db:"currency" json:"currency"`
	Status           types.InvoiceStatus `db:"status" json:"status"`
	InvoicePDF       *string             `db:"invoice_pdf" json:"invoice_pdf"`
	PeriodStart      *time.Time          `db:"period_start" json:"period_start"`
	PeriodEnd        *time.Time          `db:"period_end" json:"period_end"`
	PaidAt           *time.Time          `db:"paid_at" json:"paid_at"`
	CreatedAt        time.Time           `db:"created_at" json:"created_at"`
}

// Amount returns AmountPaid in the currency's major unit
func (i *Invoice) Amount() decimal.Decimal {
	return types.ToMajorUnits(i.AmountPaid, i.Currency)
}
