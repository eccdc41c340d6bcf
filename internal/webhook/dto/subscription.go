package dto

import (
	"encoding/json"
	"time"

	"github.com/beautyops/beautyops/internal/types"
)

// SubscriptionWebhookPayload is the body of subscription.* notifications
type SubscriptionWebhookPayload struct {
	UserID               string                   `json:"user_id"`
	StripeSubscriptionID string                   `json:"stripe_subscription_id"`
	StripeCustomerID     string                   `json:"stripe_customer_id"`
	Tier                 types.Tier               `json:"tier"`
	Status               types.SubscriptionStatus `json:"status"`
	BillingInterval      types.BillingInterval    `json:"billing_interval,omitempty"`
	CurrentPeriodEnd     *time.Time               `json:"current_period_end,omitempty"`
	CancelAtPeriodEnd    bool                     `json:"cancel_at_period_end"`
	CanceledAt           *time.Time               `json:"canceled_at,omitempty"`
}

// Envelope is what native delivery POSTs to the configured endpoint
type Envelope struct {
	ID        string          `json:"id"`
	EventType string          `json:"event_type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// NewEnvelope wraps a queued event for native delivery
func NewEnvelope(event *types.WebhookEvent) *Envelope {
	return &Envelope{
		ID:        event.ID,
		EventType: event.EventName,
		Timestamp: event.Timestamp,
		Data:      event.Payload,
	}
}
