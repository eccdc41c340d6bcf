package dto

import (
	"github.com/beautyops/beautyops/internal/domain/invoice"
	"github.com/beautyops/beautyops/internal/domain/subscription"
	"github.com/beautyops/beautyops/internal/types"
	"github.com/beautyops/beautyops/internal/validator"
	"github.com/shopspring/decimal"
)

type CreateCheckoutSessionRequest struct {
	PriceID string `json:"price_id" validate:"required"`
	UserID  string `json:"user_id" validate:"required"`
	Email   string `json:"email" validate:"omitempty,email"`
}

func (r *CreateCheckoutSessionRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type CreatePortalSessionRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

func (r *CreatePortalSessionRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// SessionURLResponse carries the hosted Stripe page to redirect to
type SessionURLResponse struct {
	URL string `json:"url"`
}

// WebhookResponse acknowledges a verified billing webhook
type WebhookResponse struct {
	Status    types.WebhookResponseStatus `json:"status"`
	EventID   string                      `json:"event_id"`
	EventType string                      `json:"event_type"`
}

// SubscriptionResponse is null with status "none" when the user has no active subscription
type SubscriptionResponse struct {
	Subscription *subscription.Subscription `json:"subscription"`
	Status       types.SubscriptionStatus   `json:"status,omitempty"`
}

type InvoiceResponse struct {
	*invoice.Invoice
	// Amount is AmountPaid in major currency units
	Amount decimal.Decimal `json:"amount"`
}

func NewInvoiceResponse(inv *invoice.Invoice) *InvoiceResponse {
	return &InvoiceResponse{
		Invoice: inv,
		Amount:  inv.Amount(),
	}
}

type ListInvoicesResponse struct {
	Invoices []*InvoiceResponse `json:"invoices"`
}
