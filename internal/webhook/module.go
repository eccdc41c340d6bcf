package webhook

import (
	"github.com/beautyops/beautyops/internal/config"
	"github.com/beautyops/beautyops/internal/logger"
	"github.com/beautyops/beautyops/internal/pubsub"
	"github.com/beautyops/beautyops/internal/pubsub/memory"
	"github.com/beautyops/beautyops/internal/webhook/handler"
	"github.com/beautyops/beautyops/internal/webhook/publisher"
	"go.uber.org/fx"
)

// Module provides all notification delivery dependencies
var Module = fx.Options(
	fx.Provide(
		providePubSub,
		publisher.NewPublisher,
		handler.NewHandler,
		NewWebhookService,
	),
)

func providePubSub(cfg *config.Configuration, logger *logger.Logger) pubsub.PubSub {
	// memory is the only transport; the config value is validated at load time
	return memory.NewPubSub(logger)
}
