package postgres

import (
	"context"

	"github.com/beautyops/beautyops/internal/logger"
	sentryService "github.com/beautyops/beautyops/internal/sentry"
)

// IClient is the unit-of-work boundary used by services. Everything fn does
// through repositories that honour the context commits or rolls back together.
type IClient interface {
	WithTx(ctx context.Context, fn func(context.Context) error) error
}

// SentryClient wraps a client with Sentry span tracking
type SentryClient struct {
	client IClient
	sentry *sentryService.Service
	logger *logger.Logger
}

// NewSentryClient creates a new Sentry-instrumented client
func NewSentryClient(client IClient, sentry *sentryService.Service, logger *logger.Logger) IClient {
	return &SentryClient{
		client: client,
		sentry: sentry,
		logger: logger,
	}
}

// WithTx wraps the given function in a transaction with Sentry span tracking
func (c *SentryClient) WithTx(ctx context.Context, fn func(context.Context) error) error {
	span, spanCtx := c.sentry.StartDBSpan(ctx, "postgres.transaction", map[string]interface{}{
		"operation": "transaction",
	})
	if span != nil {
		defer span.Finish()
	}
	return c.client.WithTx(spanCtx, fn)
}

// NoopClient runs fn directly. It backs stores without multi-statement
// transactions such as the Supabase REST API.
type NoopClient struct{}

func NewNoopClient() IClient {
	return NoopClient{}
}

func (NoopClient) WithTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}
