package types

// BillingEventType is the provider event type of an inbound billing webhook
type BillingEventType string

const (
	BillingEventSubscriptionCreated     BillingEventType = "customer.subscription.created"
	BillingEventSubscriptionUpdated     BillingEventType = "customer.subscription.updated"
	BillingEventSubscriptionDeleted     BillingEventType = "customer.subscription.deleted"
	BillingEventInvoicePaymentSucceeded BillingEventType = "invoice.payment_succeeded"
	BillingEventInvoicePaymentFailed    BillingEventType = "invoice.payment_failed"
)

func (t BillingEventType) String() string {
	return string(t)
}

// RecordOutcome is the result of recording an inbound billing event
type RecordOutcome string

const (
	// RecordOutcomeInserted means this delivery owns the event and must apply it
	RecordOutcomeInserted RecordOutcome = "inserted"
	// RecordOutcomeDuplicate means the event id was seen before and nothing was written
	RecordOutcomeDuplicate RecordOutcome = "duplicate"
)

// WebhookResponseStatus is the status reported back to the payment provider
type WebhookResponseStatus string

const (
	WebhookResponseStatusSuccess   WebhookResponseStatus = "success"
	WebhookResponseStatusDuplicate WebhookResponseStatus = "duplicate_event"
)
