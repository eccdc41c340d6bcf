package testutil

import (
	"encoding/json"
	"time"

	"github.com/stripe/stripe-go/v82/webhook"
)

// TestWebhookSecret signs payloads built by SignedWebhook
const TestWebhookSecret = "whsec_test_secret"

// SignedWebhook builds a Stripe event around object and signs it with secret.
// It returns the raw body and the Stripe-Signature header value.
func SignedWebhook(secret, eventID, eventType string, object any) ([]byte, string) {
	data, err := json.Marshal(object)
	if err != nil {
		panic(err)
	}
	payload, err := json.Marshal(map[string]any{
		"id":          eventID,
		"object":      "event",
		"type":        eventType,
		"created":     time.Now().Unix(),
		"api_version": "2024-06-20",
		"livemode":    false,
		"data":        map[string]json.RawMessage{"object": data},
	})
	if err != nil {
		panic(err)
	}

	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
	})
	return signed.Payload, signed.Header
}

// SubscriptionObject builds a subscription data.object with one item
func SubscriptionObject(id, userID, priceID, status, interval string) map[string]any {
	metadata := map[string]string{}
	if userID != "" {
		metadata["user_id"] = userID
	}
	return map[string]any{
		"id":                   id,
		"object":               "subscription",
		"customer":             "cus_" + id,
		"status":               status,
		"metadata":             metadata,
		"created":              1700000000,
		"current_period_start": 1700000000,
		"current_period_end":   1702592000,
		"trial_end":            nil,
		"cancel_at_period_end": false,
		"canceled_at":          nil,
		"items": map[string]any{
			"object": "list",
			"data": []map[string]any{
				{
					"id": "si_" + id,
					"price": map[string]any{
						"id":        priceID,
						"recurring": map[string]any{"interval": interval},
					},
				},
			},
		},
	}
}

// InvoiceObject builds a paid invoice data.object
func InvoiceObject(id, customerID string, amountPaid int64, currency string) map[string]any {
	return map[string]any{
		"id":           id,
		"object":       "invoice",
		"customer":     customerID,
		"subscription": "sub_for_" + id,
		"amount_paid":  amountPaid,
		"currency":     currency,
		"status":       "paid",
		"invoice_pdf":  "https://pay.stripe.test/" + id + ".pdf",
		"period_start": 1700000000,
		"period_end":   1702592000,
		"status_transitions": map[string]any{
			"paid_at": 1700000100,
		},
	}
}
