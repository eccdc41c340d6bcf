package config

import (
	"time"

	"github.com/beautyops/beautyops/internal/types"
)

// Webhook represents the configuration for outbound subscription notifications
type Webhook struct {
	Enabled         bool              `mapstructure:"enabled"`
	Topic           string            `mapstructure:"topic" default:"subscription_notifications"`
	PubSub          types.PubSubType  `mapstructure:"pubsub" validate:"omitempty,oneof=memory"`
	Endpoint        string            `mapstructure:"endpoint"`
	Headers         map[string]string `mapstructure:"headers"`
	ExcludedEvents  []string          `mapstructure:"excluded_events"`
	MaxRetries      int               `mapstructure:"max_retries"`
	InitialInterval time.Duration     `mapstructure:"initial_interval"`
	MaxInterval     time.Duration     `mapstructure:"max_interval"`
	Multiplier      float64           `mapstructure:"multiplier"`
	MaxElapsedTime  time.Duration     `mapstructure:"max_elapsed_time"`
	Svix            SvixConfig        `mapstructure:"svix"`
}

// SvixConfig configures delivery through Svix instead of direct HTTP calls
type SvixConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	AuthToken      string `mapstructure:"auth_token"`
	BaseURL        string `mapstructure:"base_url"`
	ApplicationUID string `mapstructure:"application_uid"`
}
