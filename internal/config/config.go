package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/beautyops/beautyops/internal/types"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment DeploymentConfig `mapstructure:"deployment" validate:"required"`
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Logging    LoggingConfig    `mapstructure:"logging" validate:"required"`
	Store      StoreConfig      `mapstructure:"store" validate:"required"`
	Postgres   PostgresConfig   `mapstructure:"postgres"`
	Supabase   SupabaseConfig   `mapstructure:"supabase"`
	Auth       AuthConfig       `mapstructure:"auth" validate:"required"`
	Stripe     StripeConfig     `mapstructure:"stripe"`
	Billing    BillingConfig    `mapstructure:"billing" validate:"required"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Webhook    Webhook          `mapstructure:"webhook"`
	Sentry     SentryConfig     `mapstructure:"sentry"`
	Pyroscope  PyroscopeConfig  `mapstructure:"pyroscope"`
}

type DeploymentConfig struct {
	Mode types.RunMode `mapstructure:"mode" validate:"required"`
}

type ServerConfig struct {
	Address   string          `mapstructure:"address" validate:"required"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig bounds how often one user may open Stripe sessions
type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute" validate:"omitempty,min=1"`
	Burst             int  `mapstructure:"burst" validate:"omitempty,min=1"`
}

type LoggingConfig struct {
	Level types.LogLevel `mapstructure:"level" validate:"required"`
}

type StoreConfig struct {
	Type types.StoreType `mapstructure:"type" validate:"required,oneof=postgres supabase"`
}

type PostgresConfig struct {
	Host                   string `mapstructure:"host"`
	Port                   int    `mapstructure:"port"`
	User                   string `mapstructure:"user"`
	Password               string `mapstructure:"password"`
	DBName                 string `mapstructure:"dbname"`
	SSLMode                string `mapstructure:"sslmode"`
	MaxOpenConns           int    `mapstructure:"max_open_conns"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes"`
}

type SupabaseConfig struct {
	URL        string `mapstructure:"url"`
	ServiceKey string `mapstructure:"service_key"`
}

type AuthConfig struct {
	Provider types.AuthProvider `mapstructure:"provider" validate:"required"`
	Supabase SupabaseAuthConfig `mapstructure:"supabase"`
}

type SupabaseAuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Audience  string `mapstructure:"audience"`
}

type StripeConfig struct {
	SecretKey     string `mapstructure:"secret_key"`
	WebhookSecret string `mapstructure:"webhook_secret"`
}

type BillingConfig struct {
	FrontendURL     string            `mapstructure:"frontend_url" validate:"required"`
	TrialPeriodDays int64             `mapstructure:"trial_period_days"`
	PriceTiers      []PriceTierConfig `mapstructure:"price_tiers"`
}

// PriceTierConfig maps a Stripe price id to a subscription tier.
// It is a list rather than a map because viper lowercases map keys
// and Stripe price ids are case sensitive.
type PriceTierConfig struct {
	PriceID string     `mapstructure:"price_id"`
	Tier    types.Tier `mapstructure:"tier"`
}

type CacheConfig struct {
	Enabled bool            `mapstructure:"enabled"`
	Type    types.CacheType `mapstructure:"type"`
	TTL     time.Duration   `mapstructure:"ttl"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

type PyroscopeConfig struct {
	Enabled         bool     `mapstructure:"enabled"`
	ServerAddress   string   `mapstructure:"server_address"`
	ApplicationName string   `mapstructure:"application_name"`
	BasicAuthUser   string   `mapstructure:"basic_auth_user"`
	BasicAuthPass   string   `mapstructure:"basic_auth_password"`
	SampleRate      uint32   `mapstructure:"sample_rate"`
	DisableGCRuns   bool     `mapstructure:"disable_gc_runs"`
	ProfileTypes    []string `mapstructure:"profile_types"`
}

func NewConfig() (*Configuration, error) {
	// A missing .env is normal outside local development
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/beautyops")

	v.SetEnvPrefix("BEAUTYOPS")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Error reading config file: %v\n", err)
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults registers every key so AutomaticEnv can override it even
// when no config file is present
func setDefaults(v *viper.Viper) {
	defaults := GetDefaultConfig()

	v.SetDefault("deployment.mode", defaults.Deployment.Mode)
	v.SetDefault("server.address", defaults.Server.Address)
	v.SetDefault("server.rate_limit.enabled", defaults.Server.RateLimit.Enabled)
	v.SetDefault("server.rate_limit.requests_per_minute", defaults.Server.RateLimit.RequestsPerMinute)
	v.SetDefault("server.rate_limit.burst", defaults.Server.RateLimit.Burst)
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("store.type", defaults.Store.Type)

	v.SetDefault("postgres.host", defaults.Postgres.Host)
	v.SetDefault("postgres.port", defaults.Postgres.Port)
	v.SetDefault("postgres.user", defaults.Postgres.User)
	v.SetDefault("postgres.password", defaults.Postgres.Password)
	v.SetDefault("postgres.dbname", defaults.Postgres.DBName)
	v.SetDefault("postgres.sslmode", defaults.Postgres.SSLMode)
	v.SetDefault("postgres.max_open_conns", defaults.Postgres.MaxOpenConns)
	v.SetDefault("postgres.max_idle_conns", defaults.Postgres.MaxIdleConns)
	v.SetDefault("postgres.conn_max_lifetime_minutes", defaults.Postgres.ConnMaxLifetimeMinutes)

	v.SetDefault("supabase.url", "")
	v.SetDefault("supabase.service_key", "")

	v.SetDefault("auth.provider", defaults.Auth.Provider)
	v.SetDefault("auth.supabase.jwt_secret", "")
	v.SetDefault("auth.supabase.audience", defaults.Auth.Supabase.Audience)

	v.SetDefault("stripe.secret_key", "")
	v.SetDefault("stripe.webhook_secret", "")

	v.SetDefault("billing.frontend_url", defaults.Billing.FrontendURL)
	v.SetDefault("billing.trial_period_days", defaults.Billing.TrialPeriodDays)

	v.SetDefault("cache.enabled", defaults.Cache.Enabled)
	v.SetDefault("cache.type", defaults.Cache.Type)
	v.SetDefault("cache.ttl", defaults.Cache.TTL)

	v.SetDefault("redis.address", defaults.Redis.Address)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("webhook.enabled", defaults.Webhook.Enabled)
	v.SetDefault("webhook.topic", defaults.Webhook.Topic)
	v.SetDefault("webhook.pubsub", defaults.Webhook.PubSub)
	v.SetDefault("webhook.endpoint", "")
	v.SetDefault("webhook.max_retries", defaults.Webhook.MaxRetries)
	v.SetDefault("webhook.initial_interval", defaults.Webhook.InitialInterval)
	v.SetDefault("webhook.max_interval", defaults.Webhook.MaxInterval)
	v.SetDefault("webhook.multiplier", defaults.Webhook.Multiplier)
	v.SetDefault("webhook.max_elapsed_time", defaults.Webhook.MaxElapsedTime)
	v.SetDefault("webhook.svix.enabled", false)
	v.SetDefault("webhook.svix.base_url", defaults.Webhook.Svix.BaseURL)
	v.SetDefault("webhook.svix.auth_token", "")
	v.SetDefault("webhook.svix.application_uid", defaults.Webhook.Svix.ApplicationUID)

	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", defaults.Sentry.Environment)
	v.SetDefault("sentry.sample_rate", defaults.Sentry.SampleRate)

	v.SetDefault("pyroscope.enabled", false)
	v.SetDefault("pyroscope.server_address", defaults.Pyroscope.ServerAddress)
	v.SetDefault("pyroscope.application_name", defaults.Pyroscope.ApplicationName)
	v.SetDefault("pyroscope.sample_rate", defaults.Pyroscope.SampleRate)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// GetDefaultConfig returns a default configuration for local development
// This is useful for running scripts or other non-web applications
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server: ServerConfig{
			Address: ":8080",
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 10,
				Burst:             5,
			},
		},
		Logging: LoggingConfig{Level: types.LogLevelDebug},
		Store:   StoreConfig{Type: types.StoreTypePostgres},
		Postgres: PostgresConfig{
			Host:                   "localhost",
			Port:                   5432,
			User:                   "beautyops",
			Password:               "beautyops",
			DBName:                 "beautyops",
			SSLMode:                "disable",
			MaxOpenConns:           10,
			MaxIdleConns:           5,
			ConnMaxLifetimeMinutes: 60,
		},
		Auth: AuthConfig{
			Provider: types.AuthProviderSupabase,
			Supabase: SupabaseAuthConfig{Audience: "authenticated"},
		},
		Billing: BillingConfig{
			FrontendURL:     "http://localhost:3000",
			TrialPeriodDays: 14,
		},
		Cache: CacheConfig{
			Enabled: true,
			Type:    types.CacheTypeMemory,
			TTL:     5 * time.Minute,
		},
		Redis: RedisConfig{Address: "localhost:6379"},
		Webhook: Webhook{
			Enabled:         false,
			Topic:           "subscription_notifications",
			PubSub:          types.MemoryPubSub,
			MaxRetries:      3,
			InitialInterval: time.Second,
			MaxInterval:     10 * time.Second,
			Multiplier:      2,
			MaxElapsedTime:  2 * time.Minute,
			Svix: SvixConfig{
				BaseURL:        "https://api.svix.com",
				ApplicationUID: "beautyops",
			},
		},
		Sentry: SentryConfig{
			Environment: "local",
			SampleRate:  1.0,
		},
		Pyroscope: PyroscopeConfig{
			ServerAddress:   "http://localhost:4040",
			ApplicationName: "beautyops-api",
			SampleRate:      100,
		},
	}
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s host=%s port=%d sslmode=%s",
		c.User,
		c.Password,
		c.DBName,
		c.Host,
		c.Port,
		c.SSLMode,
	)
}

// GetURL returns the connection string in URL form, used by the migration tool
func (c PostgresConfig) GetURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.DBName,
		c.SSLMode,
	)
}
