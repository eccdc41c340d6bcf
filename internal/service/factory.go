package service

import (
	"github.com/beautyops/beautyops/internal/cache"
	"github.com/beautyops/beautyops/internal/config"
	"github.com/beautyops/beautyops/internal/domain/billingevent"
	"github.com/beautyops/beautyops/internal/domain/customer"
	"github.com/beautyops/beautyops/internal/domain/invoice"
	"github.com/beautyops/beautyops/internal/domain/profile"
	"github.com/beautyops/beautyops/internal/domain/subscription"
	"github.com/beautyops/beautyops/internal/domain/usage"
	"github.com/beautyops/beautyops/internal/integration/stripe"
	"github.com/beautyops/beautyops/internal/logger"
	"github.com/beautyops/beautyops/internal/postgres"
	"github.com/beautyops/beautyops/internal/sentry"
	webhookPublisher "github.com/beautyops/beautyops/internal/webhook/publisher"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient
	Cache  cache.Cache
	Sentry *sentry.Service

	// Repositories
	BillingEventRepo billingevent.Repository
	SubRepo          subscription.Repository
	ProfileRepo      profile.Repository
	InvoiceRepo      invoice.Repository
	CustomerRepo     customer.Repository
	UsageRepo        usage.Repository

	// Publishers
	WebhookPublisher webhookPublisher.WebhookPublisher

	// Payment provider
	Stripe stripe.Gateway
}

// Common service params
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db postgres.IClient,
	cache cache.Cache,
	sentry *sentry.Service,
	billingEventRepo billingevent.Repository,
	subRepo subscription.Repository,
	profileRepo profile.Repository,
	invoiceRepo invoice.Repository,
	customerRepo customer.Repository,
	usageRepo usage.Repository,
	webhookPublisher webhookPublisher.WebhookPublisher,
	stripeGateway stripe.Gateway,
) ServiceParams {
	return ServiceParams{
		Logger:           logger,
		Config:           config,
		DB:               db,
		Cache:            cache,
		Sentry:           sentry,
		BillingEventRepo: billingEventRepo,
		SubRepo:          subRepo,
		ProfileRepo:      profileRepo,
		InvoiceRepo:      invoiceRepo,
		CustomerRepo:     customerRepo,
		UsageRepo:        usageRepo,
		WebhookPublisher: webhookPublisher,
		Stripe:           stripeGateway,
	}
}
