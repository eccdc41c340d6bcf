package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/beautyops/beautyops/internal/api"
	v1 "github.com/beautyops/beautyops/internal/api/v1"
	"github.com/beautyops/beautyops/internal/auth"
	"github.com/beautyops/beautyops/internal/cache"
	"github.com/beautyops/beautyops/internal/config"
	"github.com/beautyops/beautyops/internal/httpclient"
	"github.com/beautyops/beautyops/internal/integration/stripe"
	"github.com/beautyops/beautyops/internal/logger"
	pubsubRouter "github.com/beautyops/beautyops/internal/pubsub/router"
	"github.com/beautyops/beautyops/internal/pyroscope"
	"github.com/beautyops/beautyops/internal/repository"
	"github.com/beautyops/beautyops/internal/sentry"
	"github.com/beautyops/beautyops/internal/service"
	"github.com/beautyops/beautyops/internal/svix"
	"github.com/beautyops/beautyops/internal/types"
	"github.com/beautyops/beautyops/internal/validator"
	"github.com/beautyops/beautyops/internal/webhook"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

func init() {
	time.Local = time.UTC
}

func main() {
	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		fx.Provide(
			validator.NewValidator,
			config.NewConfig,
			logger.NewLogger,

			// Cache
			cache.NewCache,

			// HTTP and delivery clients
			httpclient.NewDefaultClient,
			svix.NewClient,

			// Billing provider and auth
			stripe.NewClient,
			auth.NewProvider,

			// PubSub
			pubsubRouter.NewRouter,
		),
		sentry.Module(),
		pyroscope.Module(),
		repository.Module(),
	)

	// Webhook module must be initialised before services
	opts = append(opts, webhook.Module)

	// Service layer
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,
			service.NewTierResolver,
			service.NewProfileService,
			service.NewEventStore,
			service.NewSubscriptionProjector,
			service.NewEventDispatcher,
			service.NewBillingService,
			service.NewUsageService,
		),
	)

	opts = append(opts,
		fx.Provide(
			provideHandlers,
			api.NewRouter,
		),
		fx.Invoke(
			closeStores,
			startServer,
		),
	)

	app := fx.New(opts...)
	app.Run()
}

func provideHandlers(
	logger *logger.Logger,
	billingService service.BillingService,
	usageService service.UsageService,
) api.Handlers {
	return api.Handlers{
		Health:  v1.NewHealthHandler(logger),
		Webhook: v1.NewWebhookHandler(billingService, logger),
		Billing: v1.NewBillingHandler(billingService, logger),
		Usage:   v1.NewUsageHandler(usageService, logger),
	}
}

func closeStores(lc fx.Lifecycle, stores *repository.Stores) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			stores.Close()
			return nil
		},
	})
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	webhookService *webhook.WebhookService,
	router *pubsubRouter.Router,
	log *logger.Logger,
) {
	mode := cfg.Deployment.Mode
	if mode == "" {
		mode = types.ModeLocal
	}

	switch mode {
	case types.ModeLocal, types.ModeAPI:
		startAPIServer(lc, r, cfg, log)
		startMessageRouter(lc, router, webhookService, log)
	case types.ModeAWSLambdaAPI:
		startMessageRouter(lc, router, webhookService, log)
		startAWSLambdaAPI(lc, r)
	default:
		log.Fatalf("Unknown deployment mode: %s", mode)
	}
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting API server", "address", cfg.Server.Address, "mode", cfg.Deployment.Mode)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down API server")
			return srv.Shutdown(ctx)
		},
	})
}

// startAWSLambdaAPI hands the gin engine to the Lambda runtime once the app
// has started; lambda.Start never returns
func startAWSLambdaAPI(lc fx.Lifecycle, r *gin.Engine) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ginLambda := ginadapter.New(r)
			go lambda.Start(ginLambda.ProxyWithContext)
			return nil
		},
	})
}

func startMessageRouter(
	lc fx.Lifecycle,
	router *pubsubRouter.Router,
	webhookService *webhook.WebhookService,
	logger *logger.Logger,
) {
	// handlers must be registered before the router runs
	webhookService.RegisterHandler(router)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("starting message router")
			go func() {
				if err := router.Run(); err != nil {
					logger.Errorw("message router failed", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping message router")
			if err := webhookService.Stop(); err != nil {
				logger.Errorw("failed to stop webhook service", "error", err)
			}
			return router.Close()
		},
	})
}
