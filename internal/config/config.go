package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Slot backends.
const (
	BackendRedis  = "redis"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// Storage slot
	SlotBackend   string
	SlotKey       string
	SlotFile      string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SlotTimeout   time.Duration

	// Resilience
	MaxRetries     int
	InitialBackoff time.Duration
	MaxConcurrency int

	// Ledger
	ResyncInterval time.Duration
	IdempotencyTTL time.Duration
	MaxImportBytes int64
	SeedDefaults   bool

	// Observability
	TracingEnabled bool
	OTLPEndpoint   string
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		SlotBackend:   strings.ToLower(getEnv("SLOT_BACKEND", BackendMemory)),
		SlotKey:       getEnv("SLOT_KEY", "dailyBalancesData"),
		SlotFile:      getEnv("SLOT_FILE", "data/dailyBalancesData.json"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		SlotTimeout:   getEnvDuration("SLOT_TIMEOUT", 2*time.Second),

		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		InitialBackoff: getEnvDuration("INITIAL_BACKOFF", 100*time.Millisecond),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 4),

		ResyncInterval: getEnvDuration("RESYNC_INTERVAL", 30*time.Second),
		IdempotencyTTL: getEnvDuration("IDEMPOTENCY_TTL", 24*time.Hour),
		MaxImportBytes: int64(getEnvInt("MAX_IMPORT_BYTES", 5<<20)),
		SeedDefaults:   getEnvBool("SEED_DEFAULTS", false),

		TracingEnabled: getEnvBool("TRACING_ENABLED", false),
		OTLPEndpoint:   getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
