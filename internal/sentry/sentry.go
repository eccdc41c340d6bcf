package sentry

import (
	"context"
	"fmt"
	"time"

	"github.com/beautyops/beautyops/internal/config"
	"github.com/beautyops/beautyops/internal/logger"
	"github.com/getsentry/sentry-go"
	"go.uber.org/fx"
)

type Service struct {
	cfg    *config.Configuration
	logger *logger.Logger
}

// Module provides fx options for Sentry
func Module() fx.Option {
	return fx.Options(
		fx.Provide(NewSentryService),
		fx.Invoke(RegisterHooks),
	)
}

// RegisterHooks initializes the Sentry SDK on start and flushes it on stop
func RegisterHooks(lc fx.Lifecycle, svc *Service) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if !svc.cfg.Sentry.Enabled {
				svc.logger.Info("Sentry is disabled")
				return nil
			}

			err := sentry.Init(sentry.ClientOptions{
				Dsn:              svc.cfg.Sentry.DSN,
				Environment:      svc.cfg.Sentry.Environment,
				EnableTracing:    true,
				TracesSampleRate: svc.cfg.Sentry.SampleRate,
				TracesSampler: sentry.TracesSampler(func(ctx sentry.SamplingContext) float64 {
					if ctx.Span.Name == "GET /health" || ctx.Span.Name == "GET /" {
						return 0.0
					}
					return svc.cfg.Sentry.SampleRate
				}),
			})
			if err != nil {
				svc.logger.Errorw("failed to initialize Sentry", "error", err)
				return err
			}
			svc.logger.Infow("Sentry initialized",
				"environment", svc.cfg.Sentry.Environment,
				"sample_rate", svc.cfg.Sentry.SampleRate,
			)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if svc.cfg.Sentry.Enabled {
				svc.logger.Info("flushing Sentry events before shutdown")
				sentry.Flush(2 * time.Second)
			}
			return nil
		},
	})
}

// NewSentryService creates a new Sentry service
func NewSentryService(cfg *config.Configuration, logger *logger.Logger) *Service {
	return &Service{
		cfg:    cfg,
		logger: logger,
	}
}

func (s *Service) enabled() bool {
	return s != nil && s.cfg != nil && s.cfg.Sentry.Enabled
}

// CaptureException captures an error in Sentry
func (s *Service) CaptureException(err error) {
	if !s.enabled() {
		return
	}
	sentry.CaptureException(err)
}

// CaptureWebhookFailure reports a billing event whose handler failed
func (s *Service) CaptureWebhookFailure(ctx context.Context, err error, eventID, eventType string) {
	if !s.enabled() {
		return
	}

	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub().Clone()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("billing.event_type", eventType)
		scope.SetTag("billing.event_id", eventID)
		hub.CaptureException(err)
	})
}

// AddBreadcrumb adds a breadcrumb to the current scope
func (s *Service) AddBreadcrumb(category, message string, data map[string]interface{}) {
	if !s.enabled() {
		return
	}
	sentry.AddBreadcrumb(&sentry.Breadcrumb{
		Category: category,
		Message:  message,
		Level:    sentry.LevelInfo,
		Data:     data,
	})
}

// StartDBSpan starts a new database span in the current transaction
func (s *Service) StartDBSpan(ctx context.Context, operation string, params map[string]interface{}) (*sentry.Span, context.Context) {
	if !s.enabled() {
		return nil, ctx
	}

	span := sentry.StartSpan(ctx, operation)
	span.Description = operation
	span.Op = "db.postgres"
	for k, v := range params {
		span.SetData(k, v)
	}

	return span, span.Context()
}

// MonitorWebhookProcessing tracks a billing event from provider creation to handling
func (s *Service) MonitorWebhookProcessing(ctx context.Context, eventType string, createdAt time.Time) (*sentry.Span, context.Context) {
	if !s.enabled() {
		return nil, ctx
	}

	span := sentry.StartSpan(ctx, "billing.webhook.process")
	span.Description = "Processing billing event"
	span.Op = "webhook.process"
	span.SetData("event_type", eventType)

	if !createdAt.IsZero() {
		lagMs := time.Since(createdAt).Milliseconds()
		span.SetData("lag_ms", lagMs)
		if tx := sentry.TransactionFromContext(ctx); tx != nil {
			tx.SetTag("billing.event.lag.ms", fmt.Sprintf("%d", lagMs))
		}
	}

	return span, span.Context()
}
