package testutil

import (
	"context"
	"time"

	"github.com/beautyops/beautyops/internal/cache"
	"github.com/beautyops/beautyops/internal/config"
	"github.com/beautyops/beautyops/internal/domain/profile"
	"github.com/beautyops/beautyops/internal/logger"
	"github.com/beautyops/beautyops/internal/sentry"
	"github.com/beautyops/beautyops/internal/types"
	"github.com/stretchr/testify/suite"
)

// Stores holds the in-memory repositories backing a test
type Stores struct {
	BillingEventRepo *InMemoryBillingEventStore
	SubscriptionRepo *InMemorySubscriptionStore
	ProfileRepo      *InMemoryProfileStore
	InvoiceRepo      *InMemoryInvoiceStore
	CustomerRepo     *InMemoryCustomerStore
	UsageRepo        *InMemoryUsageStore
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx              context.Context
	stores           Stores
	webhookPublisher *InMemoryWebhookPublisher
	stripe           *MockStripeGateway
	db               *MockPostgresClient
	cache            cache.Cache
	sentry           *sentry.Service
	logger           *logger.Logger
	config           *config.Configuration
	now              time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	s.logger = logger.NewNopLogger()
	s.now = time.Now().UTC()
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.config = config.GetDefaultConfig()
	s.config.Stripe.WebhookSecret = TestWebhookSecret
	s.config.Billing.FrontendURL = "https://app.beautyops.test"

	s.setupContext()
	s.setupStores()
	s.webhookPublisher = NewInMemoryWebhookPublisher()
	s.stripe = NewMockStripeGateway()
	s.db = NewMockPostgresClient()
	s.cache = cache.NewInMemoryCache(time.Minute)
	s.sentry = sentry.NewSentryService(s.config, s.logger)
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupContext() {
	s.ctx = SetupContext()
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		BillingEventRepo: NewInMemoryBillingEventStore(),
		SubscriptionRepo: NewInMemorySubscriptionStore(),
		ProfileRepo:      NewInMemoryProfileStore(),
		InvoiceRepo:      NewInMemoryInvoiceStore(),
		CustomerRepo:     NewInMemoryCustomerStore(),
		UsageRepo:        NewInMemoryUsageStore(),
	}
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.BillingEventRepo.Clear()
	s.stores.SubscriptionRepo.Clear()
	s.stores.ProfileRepo.Clear()
	s.stores.InvoiceRepo.Clear()
	s.stores.CustomerRepo.Clear()
	s.stores.UsageRepo.Clear()
}

// ClearStores resets every store and the cache in front of them
func (s *BaseServiceTestSuite) ClearStores() {
	s.clearStores()
	s.cache.Flush(s.ctx)
}

// CreateProfile seeds a profile with the given tier and status
func (s *BaseServiceTestSuite) CreateProfile(userID string, tier types.Tier, status types.SubscriptionStatus) *profile.Profile {
	p := profile.New(userID)
	p.SubscriptionTier = tier
	p.SubscriptionStatus = status
	s.Require().NoError(s.stores.ProfileRepo.Upsert(s.ctx, p))
	return p
}

func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

func (s *BaseServiceTestSuite) GetWebhookPublisher() *InMemoryWebhookPublisher {
	return s.webhookPublisher
}

func (s *BaseServiceTestSuite) GetStripe() *MockStripeGateway {
	return s.stripe
}

func (s *BaseServiceTestSuite) GetDB() *MockPostgresClient {
	return s.db
}

func (s *BaseServiceTestSuite) GetCache() cache.Cache {
	return s.cache
}

func (s *BaseServiceTestSuite) GetSentry() *sentry.Service {
	return s.sentry
}

func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now
}

func (s *BaseServiceTestSuite) GetUUID() string {
	return types.GenerateUUID()
}
