package webhook

import (
	"fmt"

	"github.com/beautyops/beautyops/internal/config"
	"github.com/beautyops/beautyops/internal/logger"
	pubsubRouter "github.com/beautyops/beautyops/internal/pubsub/router"
	"github.com/beautyops/beautyops/internal/webhook/handler"
	"github.com/beautyops/beautyops/internal/webhook/publisher"
)

// WebhookService owns the notification publisher and its delivery handler
type WebhookService struct {
	config    *config.Configuration
	publisher publisher.WebhookPublisher
	handler   handler.Handler
	logger    *logger.Logger
}

func NewWebhookService(
	cfg *config.Configuration,
	publisher publisher.WebhookPublisher,
	h handler.Handler,
	l *logger.Logger,
) *WebhookService {
	return &WebhookService{
		config:    cfg,
		publisher: publisher,
		handler:   h,
		logger:    l,
	}
}

// RegisterHandler attaches delivery to the router when notifications are enabled
func (s *WebhookService) RegisterHandler(router *pubsubRouter.Router) {
	if !s.config.Webhook.Enabled {
		s.logger.Info("webhook notifications disabled")
		return
	}
	s.handler.RegisterHandler(router)
	s.logger.Infow("webhook notifications enabled",
		"topic", s.config.Webhook.Topic,
		"svix", s.config.Webhook.Svix.Enabled,
		"endpoint_configured", s.config.Webhook.Endpoint != "",
	)
}

// Stop closes the publisher
func (s *WebhookService) Stop() error {
	if err := s.publisher.Close(); err != nil {
		s.logger.Errorw("failed to close webhook publisher", "error", err)
		return fmt.Errorf("failed to close webhook publisher: %w", err)
	}
	return nil
}
