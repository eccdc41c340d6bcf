package types

import (
	"encoding/json"
	"time"
)

// WebhookEvent represents an outbound notification to be delivered
type WebhookEvent struct {
	ID        string          `json:"id"`
	EventName string          `json:"event_name"`
	UserID    string          `json:"user_id"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// subscription event names
const (
	WebhookEventSubscriptionCreated  = "subscription.created"
	WebhookEventSubscriptionUpdated  = "subscription.updated"
	WebhookEventSubscriptionCanceled = "subscription.canceled"
)
