package stripe

import (
	"testing"
	"time"

	ierr "github.com/beautyops/beautyops/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82/webhook"
)

const testSecret = "whsec_unit"

func sign(t *testing.T, payload string, secret string) string {
	t.Helper()
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    secret,
		Timestamp: time.Now(),
	}).Header
}

func TestVerifyEvent(t *testing.T) {
	payload := `{"id":"evt_1","object":"event","type":"customer.subscription.created","created":1700000000,"api_version":"2020-08-27","data":{"object":{"id":"sub_1"}}}`

	event, err := VerifyEvent([]byte(payload), sign(t, payload, testSecret), testSecret)
	require.NoError(t, err)
	assert.Equal(t, "evt_1", event.ID)
	assert.Equal(t, "customer.subscription.created", event.Type)
	assert.Equal(t, int64(1700000000), event.Created.Unix())
	assert.JSONEq(t, `{"id":"sub_1"}`, string(event.Object))
}

func TestVerifyEventRejects(t *testing.T) {
	payload := `{"id":"evt_1","object":"event","type":"customer.subscription.created","data":{"object":{}}}`
	noID := `{"object":"event","type":"customer.subscription.created","data":{"object":{}}}`

	tests := []struct {
		name      string
		payload   string
		signature string
		hint      string
	}{
		{"missing signature", payload, "", "Missing Stripe-Signature header"},
		{"wrong secret", payload, sign(t, payload, "whsec_other"), "Invalid signature"},
		{"tampered body", payload + " ", sign(t, payload, testSecret), "Invalid signature"},
		{"missing id", noID, sign(t, noID, testSecret), "Invalid payload"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := VerifyEvent([]byte(tt.payload), tt.signature, testSecret)
			require.Error(t, err)
			assert.True(t, ierr.IsValidation(err))
			assert.Equal(t, tt.hint, ierr.DisplayMessage(err, ""))
		})
	}
}
