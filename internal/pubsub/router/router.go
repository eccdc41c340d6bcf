package router

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/beautyops/beautyops/internal/config"
	"github.com/beautyops/beautyops/internal/logger"
	"github.com/beautyops/beautyops/internal/pubsub"
	"github.com/beautyops/beautyops/internal/sentry"
)

// PoisonTopic receives messages whose handler kept failing after all retries
const PoisonTopic = "subscription_notifications_dlq"

// Router manages all message routing
type Router struct {
	router *message.Router
	logger *logger.Logger
	sentry *sentry.Service
	dlq    *gochannel.GoChannel
}

// NewRouter creates a new message router
func NewRouter(cfg *config.Configuration, logger *logger.Logger, sentry *sentry.Service) (*Router, error) {
	wlog := pubsub.NewLoggerAdapter(logger)

	router, err := message.NewRouter(message.RouterConfig{}, wlog)
	if err != nil {
		return nil, err
	}

	// the dead letter queue is in memory and only inspected through logs
	dlq := gochannel.NewGoChannel(gochannel.Config{Persistent: false}, wlog)
	poisonQueue, err := middleware.PoisonQueue(dlq, PoisonTopic)
	if err != nil {
		return nil, err
	}

	router.AddMiddleware(
		poisonQueue,
		middleware.Recoverer,
		middleware.CorrelationID,
		middleware.Retry{
			MaxRetries:          cfg.Webhook.MaxRetries,
			InitialInterval:     cfg.Webhook.InitialInterval,
			MaxInterval:         cfg.Webhook.MaxInterval,
			Multiplier:          cfg.Webhook.Multiplier,
			MaxElapsedTime:      cfg.Webhook.MaxElapsedTime,
			RandomizationFactor: 0.5,
			Logger:              wlog,
			OnRetryHook: func(retryNum int, delay time.Duration) {
				logger.Infow("retrying message",
					"retry_number", retryNum,
					"max_retries", cfg.Webhook.MaxRetries,
					"delay", delay,
				)
			},
		}.Middleware,
	)

	return &Router{
		router: router,
		logger: logger,
		sentry: sentry,
		dlq:    dlq,
	}, nil
}

// AddNoPublishHandler adds a handler that doesn't publish messages.
// Errors that cannot succeed on retry are logged and the message is acked.
func (r *Router) AddNoPublishHandler(
	handlerName string,
	topicName string,
	subscriber message.Subscriber,
	handlerFunc func(msg *message.Message) error,
	middlewares ...message.HandlerMiddleware,
) {
	handler := r.router.AddNoPublisherHandler(
		handlerName,
		topicName,
		subscriber,
		func(msg *message.Message) error {
			err := handlerFunc(msg)
			if err == nil {
				return nil
			}

			r.logger.Errorw("handler failed",
				"handler", handlerName,
				"error", err,
				"correlation_id", middleware.MessageCorrelationID(msg),
				"message_uuid", msg.UUID,
			)
			if !shouldRetry(r.logger, err) {
				return nil
			}
			r.sentry.CaptureException(err)
			return err
		},
	)

	for _, m := range middlewares {
		handler.AddMiddleware(m)
	}
}

// Run blocks until the router is closed
func (r *Router) Run() error {
	r.logger.Info("starting message router")
	return r.router.Run(context.Background())
}

// Running is closed once all handlers are subscribed
func (r *Router) Running() chan struct{} {
	return r.router.Running()
}

// Close gracefully shuts down the router
func (r *Router) Close() error {
	r.logger.Info("closing message router")
	if err := r.router.Close(); err != nil {
		return err
	}
	return r.dlq.Close()
}
