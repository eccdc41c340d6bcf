package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/beautyops/beautyops/internal/config"
	"github.com/beautyops/beautyops/internal/httpclient"
	"github.com/beautyops/beautyops/internal/logger"
	"github.com/beautyops/beautyops/internal/types"
	"github.com/beautyops/beautyops/internal/webhook/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSvix struct {
	enabled bool
	sent    []string
}

func (f *fakeSvix) IsEnabled() bool { return f.enabled }

func (f *fakeSvix) GetOrCreateApplication(context.Context) (string, error) {
	return "app_1", nil
}

func (f *fakeSvix) SendMessage(_ context.Context, appID, eventID, eventType string, _ json.RawMessage) error {
	f.sent = append(f.sent, appID+"/"+eventID+"/"+eventType)
	return nil
}

func newMessage(t *testing.T, event types.WebhookEvent) *message.Message {
	t.Helper()
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	return message.NewMessage(event.ID, payload)
}

func testEvent() types.WebhookEvent {
	return types.WebhookEvent{
		ID:        "webhook_1",
		EventName: types.WebhookEventSubscriptionCreated,
		UserID:    "u1",
		Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Payload:   json.RawMessage(`{"tier":"pro_ae"}`),
	}
}

func TestProcessDeliversToEndpoint(t *testing.T) {
	var got dto.Envelope
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		auth = r.Header.Get("X-Api-Key")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	log := logger.NewNopLogger()
	cfg := &config.Webhook{
		Topic:    "subscription_notifications",
		Endpoint: srv.URL,
		Headers:  map[string]string{"X-Api-Key": "secret"},
	}
	h := New(nil, cfg, httpclient.NewClient(httpclient.ClientConfig{Timeout: time.Second}, log), &fakeSvix{}, log)

	require.NoError(t, h.Process(newMessage(t, testEvent())))
	assert.Equal(t, "webhook_1", got.ID)
	assert.Equal(t, types.WebhookEventSubscriptionCreated, got.EventType)
	assert.JSONEq(t, `{"tier":"pro_ae"}`, string(got.Data))
	assert.Equal(t, "secret", auth)
}

func TestProcessEndpointFailureIsReturned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	log := logger.NewNopLogger()
	cfg := &config.Webhook{Endpoint: srv.URL}
	h := New(nil, cfg, httpclient.NewClient(httpclient.ClientConfig{Timeout: time.Second}, log), nil, log)

	err := h.Process(newMessage(t, testEvent()))
	httpErr, ok := httpclient.IsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
}

func TestProcessPrefersSvix(t *testing.T) {
	sender := &fakeSvix{enabled: true}
	cfg := &config.Webhook{Endpoint: "http://127.0.0.1:1"}
	h := New(nil, cfg, nil, sender, logger.NewNopLogger())

	require.NoError(t, h.Process(newMessage(t, testEvent())))
	assert.Equal(t, []string{"app_1/webhook_1/subscription.created"}, sender.sent)
}

func TestProcessSkipsExcludedAndMalformed(t *testing.T) {
	sender := &fakeSvix{enabled: true}
	cfg := &config.Webhook{ExcludedEvents: []string{types.WebhookEventSubscriptionCreated}}
	h := New(nil, cfg, nil, sender, logger.NewNopLogger())

	assert.NoError(t, h.Process(newMessage(t, testEvent())))
	assert.NoError(t, h.Process(message.NewMessage("bad", []byte("not json"))))
	assert.Empty(t, sender.sent)
}

func TestProcessWithoutDestinationAcks(t *testing.T) {
	h := New(nil, &config.Webhook{}, nil, nil, logger.NewNopLogger())
	assert.NoError(t, h.Process(newMessage(t, testEvent())))
}
