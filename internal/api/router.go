package api

import (
	v1 "github.com/beautyops/beautyops/internal/api/v1"
	"github.com/beautyops/beautyops/internal/auth"
	"github.com/beautyops/beautyops/internal/config"
	"github.com/beautyops/beautyops/internal/logger"
	"github.com/beautyops/beautyops/internal/pyroscope"
	"github.com/beautyops/beautyops/internal/rest/middleware"
	"github.com/beautyops/beautyops/internal/types"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Health  *v1.HealthHandler
	Webhook *v1.WebhookHandler
	Billing *v1.BillingHandler
	Usage   *v1.UsageHandler
}

func NewRouter(
	handlers Handlers,
	cfg *config.Configuration,
	logger *logger.Logger,
	authProvider auth.Provider,
	profiler *pyroscope.Service,
) *gin.Engine {
	if cfg.Logging.Level != types.LogLevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.SentryMiddleware(cfg),
		middleware.PyroscopeMiddleware(profiler),
		middleware.RequestIDMiddleware,
		middleware.CORSMiddleware(cfg),
		middleware.RequestLogger(logger),
		middleware.ErrorHandler(logger),
	)

	router.GET("/", handlers.Health.Root)
	router.GET("/health", handlers.Health.Health)

	api := router.Group("/api")

	billing := api.Group("/billing")
	{
		// authenticated by its Stripe signature
		billing.POST("/webhook", handlers.Webhook.HandleStripeWebhook)

		private := billing.Group("", middleware.AuthenticateMiddleware(authProvider, logger), middleware.SentryUserMiddleware)

		sessions := private.Group("", middleware.RateLimitMiddleware(cfg.Server.RateLimit))
		sessions.POST("/create-checkout-session", handlers.Billing.CreateCheckoutSession)
		sessions.POST("/create-portal-session", handlers.Billing.CreatePortalSession)

		private.GET("/subscription/:user_id", handlers.Billing.GetSubscription)
		private.GET("/invoices/:user_id", handlers.Billing.ListInvoices)
	}

	usage := api.Group("/usage", middleware.AuthenticateMiddleware(authProvider, logger), middleware.SentryUserMiddleware)
	{
		usage.GET("/stats", handlers.Usage.GetStats)
		usage.GET("/access/:feature", handlers.Usage.CheckAccess)
		usage.POST("/record", handlers.Usage.RecordUsage)
	}

	return router
}
