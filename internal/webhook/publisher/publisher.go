package publisher

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/beautyops/beautyops/internal/config"
	"github.com/beautyops/beautyops/internal/logger"
	"github.com/beautyops/beautyops/internal/pubsub"
	"github.com/beautyops/beautyops/internal/types"
)

// WebhookPublisher queues outbound notifications for asynchronous delivery
type WebhookPublisher interface {
	PublishWebhook(ctx context.Context, event *types.WebhookEvent) error
	Close() error
}

type webhookPublisher struct {
	pubSub pubsub.PubSub
	config *config.Webhook
	logger *logger.Logger
}

// NewPublisher returns a publisher on the configured topic, or a no-op
// publisher when notifications are disabled
func NewPublisher(
	pubSub pubsub.PubSub,
	cfg *config.Configuration,
	logger *logger.Logger,
) WebhookPublisher {
	if !cfg.Webhook.Enabled {
		return &noopPublisher{logger: logger}
	}
	return &webhookPublisher{
		pubSub: pubSub,
		config: &cfg.Webhook,
		logger: logger,
	}
}

func (p *webhookPublisher) PublishWebhook(ctx context.Context, event *types.WebhookEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	messageID := event.ID
	if messageID == "" {
		messageID = watermill.NewUUID()
	}

	msg := message.NewMessage(messageID, payload)
	msg.Metadata.Set("user_id", event.UserID)
	msg.Metadata.Set("event_name", event.EventName)
	if requestID := types.GetRequestID(ctx); requestID != "" {
		msg.Metadata.Set("request_id", requestID)
	}

	if err := p.pubSub.Publish(ctx, p.config.Topic, msg); err != nil {
		p.logger.Errorw("failed to publish webhook event",
			"error", err,
			"event_id", event.ID,
			"event_name", event.EventName,
			"user_id", event.UserID,
		)
		return err
	}

	p.logger.Debugw("published webhook event",
		"event_id", event.ID,
		"event_name", event.EventName,
		"user_id", event.UserID,
		"topic", p.config.Topic,
	)
	return nil
}

func (p *webhookPublisher) Close() error {
	return p.pubSub.Close()
}

type noopPublisher struct {
	logger *logger.Logger
}

func (p *noopPublisher) PublishWebhook(_ context.Context, event *types.WebhookEvent) error {
	p.logger.Debugw("webhooks disabled, dropping event", "event_name", event.EventName, "user_id", event.UserID)
	return nil
}

func (p *noopPublisher) Close() error {
	return nil
}
