package repository

import (
	"github.com/beautyops/beautyops/internal/config"
	"github.com/beautyops/beautyops/internal/domain/billingevent"
	"github.com/beautyops/beautyops/internal/domain/customer"
	"github.com/beautyops/beautyops/internal/domain/invoice"
	"github.com/beautyops/beautyops/internal/domain/profile"
	"github.com/beautyops/beautyops/internal/domain/subscription"
	"github.com/beautyops/beautyops/internal/domain/usage"
	ierr "github.com/beautyops/beautyops/internal/errors"
	"github.com/beautyops/beautyops/internal/logger"
	"github.com/beautyops/beautyops/internal/postgres"
	postgresRepo "github.com/beautyops/beautyops/internal/repository/postgres"
	supabaseRepo "github.com/beautyops/beautyops/internal/repository/supabase"
	sentryService "github.com/beautyops/beautyops/internal/sentry"
	"github.com/beautyops/beautyops/internal/types"
	"go.uber.org/fx"
)

// Stores groups every repository of the configured backend together with
// the transaction client that spans them
type Stores struct {
	BillingEvents billingevent.Repository
	Subscriptions subscription.Repository
	Profiles      profile.Repository
	Invoices      invoice.Repository
	Customers     customer.Repository
	Usage         usage.Repository
	Tx            postgres.IClient

	close func()
}

// Module provides the stores and each repository for fx injection
func Module() fx.Option {
	return fx.Options(
		fx.Provide(
			NewStores,
			func(s *Stores) billingevent.Repository { return s.BillingEvents },
			func(s *Stores) subscription.Repository { return s.Subscriptions },
			func(s *Stores) profile.Repository { return s.Profiles },
			func(s *Stores) invoice.Repository { return s.Invoices },
			func(s *Stores) customer.Repository { return s.Customers },
			func(s *Stores) usage.Repository { return s.Usage },
			func(s *Stores) postgres.IClient { return s.Tx },
		),
	)
}

// NewStores builds the repositories selected by store.type
func NewStores(cfg *config.Configuration, logger *logger.Logger, sentry *sentryService.Service) (*Stores, error) {
	switch cfg.Store.Type {
	case types.StoreTypePostgres:
		db, err := postgres.NewDB(cfg, logger)
		if err != nil {
			return nil, err
		}
		return NewPostgresStores(db, logger, sentry), nil

	case types.StoreTypeSupabase:
		client, err := supabaseRepo.NewClient(cfg)
		if err != nil {
			return nil, err
		}
		logger.Infow("using supabase data store", "url", cfg.Supabase.URL)
		return &Stores{
			BillingEvents: supabaseRepo.NewBillingEventRepository(client, logger),
			Subscriptions: supabaseRepo.NewSubscriptionRepository(client, logger),
			Profiles:      supabaseRepo.NewProfileRepository(client, logger),
			Invoices:      supabaseRepo.NewInvoiceRepository(client, logger),
			Customers:     supabaseRepo.NewCustomerRepository(client, logger),
			Usage:         supabaseRepo.NewUsageRepository(client, logger),
			Tx:            postgres.NewNoopClient(),
		}, nil

	default:
		return nil, ierr.NewErrorf("unsupported store type %q", cfg.Store.Type).
			WithHint("store.type must be postgres or supabase").
			Mark(ierr.ErrValidation)
	}
}

func NewPostgresStores(db *postgres.DB, logger *logger.Logger, sentry *sentryService.Service) *Stores {
	return &Stores{
		BillingEvents: postgresRepo.NewBillingEventRepository(db, logger),
		Subscriptions: postgresRepo.NewSubscriptionRepository(db, logger),
		Profiles:      postgresRepo.NewProfileRepository(db, logger),
		Invoices:      postgresRepo.NewInvoiceRepository(db, logger),
		Customers:     postgresRepo.NewCustomerRepository(db, logger),
		Usage:         postgresRepo.NewUsageRepository(db, logger),
		Tx:            postgres.NewSentryClient(db, sentry, logger),
		close:         db.Close,
	}
}

// Close releases the underlying connection pool, if any
func (s *Stores) Close() {
	if s.close != nil {
		s.close()
	}
}
