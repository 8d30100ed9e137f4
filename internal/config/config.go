// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Quota backends accepted by QUOTA_BACKEND.
const (
	QuotaBackendPostgres = "postgres"
	QuotaBackendRedis    = "redis"
	QuotaBackendMemory   = "memory"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// GRPCAddr is the address the gRPC server listens on (e.g. :8080).
	GRPCAddr string `mapstructure:"GRPC_ADDR"`
	// HTTPAddr is the address of the HTTP/JSON facade used by the dashboards. Empty disables it.
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN holding officers, sessions, alerts, quota buckets and the AI audit log.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
	// LogLevel is the zerolog level name (debug, info, warn, error).
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// SessionTTL is the lifetime of a newly issued officer session (e.g. "24h").
	SessionTTL string `mapstructure:"SESSION_TTL"`

	// QuotaBackend selects the quota ledger: postgres, redis or memory.
	QuotaBackend string `mapstructure:"QUOTA_BACKEND"`
	// QuotaPerHour is the number of assistant queries an officer may make per hour bucket.
	QuotaPerHour int `mapstructure:"QUOTA_PER_HOUR"`
	// QuotaRetention is how long old hour buckets are kept before garbage collection (e.g. "48h").
	QuotaRetention string `mapstructure:"QUOTA_RETENTION"`

	// Redis connection for QUOTA_BACKEND=redis.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	// CompletionBaseURL is the OpenAI-compatible API base (default OpenRouter).
	CompletionBaseURL string `mapstructure:"COMPLETION_BASE_URL"`
	// CompletionAPIKey is the bearer key for the completion provider.
	CompletionAPIKey string `mapstructure:"COMPLETION_API_KEY"`
	// CompletionModel is the model requested from the provider.
	CompletionModel string `mapstructure:"COMPLETION_MODEL"`
	// CompletionMaxTokens caps the provider's output size.
	CompletionMaxTokens int `mapstructure:"COMPLETION_MAX_TOKENS"`
	// CompletionTimeout bounds a single upstream call (e.g. "30s").
	CompletionTimeout string `mapstructure:"COMPLETION_TIMEOUT"`
	// CompletionRPS is the client-side request rate towards the provider; 0 disables the limiter.
	CompletionRPS float64 `mapstructure:"COMPLETION_RPS"`

	// MaxContextRecords bounds how many alert ids a single query may reference.
	MaxContextRecords int `mapstructure:"MAX_CONTEXT_RECORDS"`

	// TrustProxyHeaders makes X-Forwarded-For and X-Real-IP authoritative for the client address.
	// Enable only behind a proxy that overwrites both headers.
	TrustProxyHeaders bool `mapstructure:"TRUST_PROXY_HEADERS"`

	// OTLPEndpoint is the OpenTelemetry collector endpoint; empty installs no-op providers.
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	// OTLPInsecure forces a plaintext connection to the collector.
	OTLPInsecure bool `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`

	// Telemetry (optional). When Kafka brokers are set, the gateway emits query events to Kafka.
	// TelemetryKafkaBrokers is a comma-separated list of Kafka broker addresses (e.g. "localhost:9092").
	TelemetryKafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// TelemetryKafkaTopic is the Kafka topic for gateway events.
	TelemetryKafkaTopic string `mapstructure:"TELEMETRY_KAFKA_TOPIC"`

	// Worker-only: Loki URL for the telemetry worker to push logs (e.g. http://localhost:3100).
	LokiURL string `mapstructure:"LOKI_URL"`
	// KafkaGroupID is the consumer group ID for the telemetry worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("GRPC_ADDR", ":8080")
	v.SetDefault("HTTP_ADDR", ":8081")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("APP_ENV", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("QUOTA_BACKEND", QuotaBackendPostgres)
	v.SetDefault("QUOTA_PER_HOUR", 50)
	v.SetDefault("QUOTA_RETENTION", "48h")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("COMPLETION_BASE_URL", "https://openrouter.ai/api/v1")
	v.SetDefault("COMPLETION_API_KEY", "")
	v.SetDefault("COMPLETION_MODEL", "openai/gpt-4-turbo")
	v.SetDefault("COMPLETION_MAX_TOKENS", 1000)
	v.SetDefault("COMPLETION_TIMEOUT", "30s")
	v.SetDefault("COMPLETION_RPS", 0)
	v.SetDefault("MAX_CONTEXT_RECORDS", 25)
	v.SetDefault("TRUST_PROXY_HEADERS", false)
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("TELEMETRY_KAFKA_TOPIC", "cognisecure-gateway-events")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("LOKI_URL", "")
	v.SetDefault("KAFKA_GROUP_ID", "cognisecure-telemetry-worker")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.GRPCAddr == "" {
		return nil, errors.New("config: GRPC_ADDR must be set")
	}

	cfg.QuotaBackend = strings.ToLower(strings.TrimSpace(cfg.QuotaBackend))
	switch cfg.QuotaBackend {
	case QuotaBackendPostgres, QuotaBackendRedis, QuotaBackendMemory:
	default:
		return nil, errors.New("config: QUOTA_BACKEND must be one of postgres, redis, memory")
	}
	if cfg.QuotaPerHour < 1 {
		return nil, errors.New("config: QUOTA_PER_HOUR must be at least 1")
	}
	if cfg.QuotaBackend == QuotaBackendRedis && cfg.RedisAddr == "" {
		return nil, errors.New("config: REDIS_ADDR must be set when QUOTA_BACKEND=redis")
	}

	if cfg.CompletionMaxTokens <= 0 {
		cfg.CompletionMaxTokens = 1000
	}
	if cfg.CompletionRPS < 0 {
		return nil, errors.New("config: COMPLETION_RPS must not be negative")
	}
	if cfg.MaxContextRecords <= 0 {
		cfg.MaxContextRecords = 25
	}

	if cfg.Env == "production" && cfg.QuotaBackend == QuotaBackendMemory {
		return nil, errors.New("config: QUOTA_BACKEND=memory is single-instance only and not allowed when APP_ENV=production")
	}

	return &cfg, nil
}

// SessionLifetime parses SessionTTL as a time.Duration. Returns 24h if unset or invalid.
func (c *Config) SessionLifetime() time.Duration {
	return parseDurationOr(c.SessionTTL, 24*time.Hour)
}

// QuotaRetentionWindow parses QuotaRetention. Returns 48h if unset, invalid, or shorter than one hour.
func (c *Config) QuotaRetentionWindow() time.Duration {
	d := parseDurationOr(c.QuotaRetention, 48*time.Hour)
	if d < time.Hour {
		return 48 * time.Hour
	}
	return d
}

// CompletionTimeoutDuration parses CompletionTimeout. Returns 30s if unset or invalid.
func (c *Config) CompletionTimeoutDuration() time.Duration {
	return parseDurationOr(c.CompletionTimeout, 30*time.Second)
}

// TelemetryKafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if telemetry is enabled (non-empty list) and to create the producer.
func (c *Config) TelemetryKafkaBrokersList() []string {
	if c == nil || c.TelemetryKafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.TelemetryKafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func parseDurationOr(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
