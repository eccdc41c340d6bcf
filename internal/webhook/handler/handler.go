package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/beautyops/beautyops/internal/config"
	"github.com/beautyops/beautyops/internal/httpclient"
	"github.com/beautyops/beautyops/internal/logger"
	"github.com/beautyops/beautyops/internal/pubsub"
	pubsubRouter "github.com/beautyops/beautyops/internal/pubsub/router"
	"github.com/beautyops/beautyops/internal/svix"
	"github.com/beautyops/beautyops/internal/types"
	"github.com/beautyops/beautyops/internal/webhook/dto"
	"github.com/samber/lo"
)

// Handler consumes queued notifications and delivers them
type Handler interface {
	RegisterHandler(router *pubsubRouter.Router)
	// Process delivers a single message. Exposed for tests.
	Process(msg *message.Message) error
}

// SvixSender is the part of the Svix client used for delivery
type SvixSender interface {
	IsEnabled() bool
	GetOrCreateApplication(ctx context.Context) (string, error)
	SendMessage(ctx context.Context, applicationID, eventID, eventType string, payload json.RawMessage) error
}

type handler struct {
	pubSub pubsub.PubSub
	config *config.Webhook
	client httpclient.Client
	svix   SvixSender
	logger *logger.Logger
}

// NewHandler creates the delivery handler
func NewHandler(
	pubSub pubsub.PubSub,
	cfg *config.Configuration,
	client httpclient.Client,
	svixClient *svix.Client,
	logger *logger.Logger,
) Handler {
	return New(pubSub, &cfg.Webhook, client, svixClient, logger)
}

// New creates the delivery handler with an arbitrary Svix sender
func New(
	pubSub pubsub.PubSub,
	cfg *config.Webhook,
	client httpclient.Client,
	svixSender SvixSender,
	logger *logger.Logger,
) Handler {
	return &handler{
		pubSub: pubSub,
		config: cfg,
		client: client,
		svix:   svixSender,
		logger: logger,
	}
}

func (h *handler) RegisterHandler(router *pubsubRouter.Router) {
	router.AddNoPublishHandler(
		"subscription_notification_handler",
		h.config.Topic,
		h.pubSub,
		h.Process,
	)
}

func (h *handler) Process(msg *message.Message) error {
	ctx := msg.Context()
	if requestID := msg.Metadata.Get("request_id"); requestID != "" {
		ctx = types.SetRequestID(ctx, requestID)
	}

	var event types.WebhookEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		h.logger.Errorw("failed to unmarshal webhook event",
			"error", err,
			"message_uuid", msg.UUID,
		)
		// retrying cannot fix a malformed message
		return nil
	}

	if lo.Contains(h.config.ExcludedEvents, event.EventName) {
		h.logger.Debugw("event excluded from delivery", "event_name", event.EventName)
		return nil
	}

	switch {
	case h.svix != nil && h.svix.IsEnabled():
		return h.deliverSvix(ctx, &event)
	case h.config.Endpoint != "":
		return h.deliverNative(ctx, &event)
	default:
		h.logger.Infow("no webhook destination configured, dropping event",
			"event_id", event.ID,
			"event_name", event.EventName,
			"user_id", event.UserID,
		)
		return nil
	}
}

func (h *handler) deliverSvix(ctx context.Context, event *types.WebhookEvent) error {
	appID, err := h.svix.GetOrCreateApplication(ctx)
	if err != nil {
		return err
	}

	if err := h.svix.SendMessage(ctx, appID, event.ID, event.EventName, event.Payload); err != nil {
		h.logger.Errorw("failed to send webhook via Svix",
			"error", err,
			"event_id", event.ID,
			"event_name", event.EventName,
		)
		return err
	}

	h.logger.Infow("webhook sent via Svix",
		"event_id", event.ID,
		"event_name", event.EventName,
		"user_id", event.UserID,
	)
	return nil
}

func (h *handler) deliverNative(ctx context.Context, event *types.WebhookEvent) error {
	body, err := json.Marshal(dto.NewEnvelope(event))
	if err != nil {
		return err
	}

	resp, err := h.client.Send(ctx, &httpclient.Request{
		Method:  http.MethodPost,
		URL:     h.config.Endpoint,
		Headers: h.config.Headers,
		Body:    body,
	})
	if err != nil {
		h.logger.Errorw("failed to send webhook",
			"error", err,
			"event_id", event.ID,
			"event_name", event.EventName,
		)
		return err
	}

	h.logger.Infow("webhook sent",
		"event_id", event.ID,
		"event_name", event.EventName,
		"user_id", event.UserID,
		"status_code", resp.StatusCode,
	)
	return nil
}
