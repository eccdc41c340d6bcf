package types

type RunMode string

const (
	// ModeLocal is the mode for running the API server and the message router locally
	ModeLocal RunMode = "local"
	// ModeAPI is the mode for running just the API server
	ModeAPI RunMode = "api"
	// ModeAWSLambdaAPI is the mode for running the API server in AWS Lambda
	ModeAWSLambdaAPI RunMode = "aws_lambda_api"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// StoreType selects the backend that persists billing state
type StoreType string

const (
	// StoreTypePostgres talks to Postgres directly through sqlx
	StoreTypePostgres StoreType = "postgres"
	// StoreTypeSupabase talks to the hosted Postgres through the PostgREST API
	StoreTypeSupabase StoreType = "supabase"
)

// CacheType selects the cache implementation
type CacheType string

const (
	CacheTypeMemory CacheType = "memory"
	CacheTypeRedis  CacheType = "redis"
)

// PubSubType defines the type of pubsub implementation
type PubSubType string

const (
	// MemoryPubSub uses in-memory implementation
	MemoryPubSub PubSubType = "memory"
)

// AuthProvider identifies the identity provider issuing bearer tokens
type AuthProvider string

const (
	AuthProviderSupabase AuthProvider = "supabase"
)
