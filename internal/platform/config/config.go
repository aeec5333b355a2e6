package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL    string
	Port           string
	IsProduction   bool
	JWTSecret      string
	StorageDriver  string
	MigrationsPath string

	// PostingRulesFile is a YAML account mapping. Empty uses the embedded defaults.
	PostingRulesFile string

	QueueBatchSize         int
	QueueMaxAttempts       int
	QueueProcessingTimeout time.Duration
	// QueueSyncInterval of zero disables the in-process scheduler.
	QueueSyncInterval time.Duration

	EventRateLimit     string
	CORSAllowedOrigins []string
}

const defaultJWTSecret = "a-very-secret-key-should-be-longer-and-random"

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("STORAGE_DRIVER", DriverPostgres)
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("POSTING_RULES_FILE", "")
	v.SetDefault("QUEUE_BATCH_SIZE", 25)
	v.SetDefault("QUEUE_MAX_ATTEMPTS", 5)
	v.SetDefault("QUEUE_PROCESSING_TIMEOUT", "5m")
	v.SetDefault("QUEUE_SYNC_INTERVAL", "0s")
	v.SetDefault("EVENT_RATE_LIMIT", "100-S")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	v.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:      v.GetString("PGSQL_URL"),
		Port:             v.GetString("PORT"),
		IsProduction:     v.GetBool("IS_PRODUCTION"),
		JWTSecret:        v.GetString("JWT_SECRET"),
		StorageDriver:    strings.ToLower(v.GetString("STORAGE_DRIVER")),
		MigrationsPath:   v.GetString("MIGRATIONS_PATH"),
		PostingRulesFile: v.GetString("POSTING_RULES_FILE"),
		QueueBatchSize:   v.GetInt("QUEUE_BATCH_SIZE"),
		QueueMaxAttempts: v.GetInt("QUEUE_MAX_ATTEMPTS"),
		EventRateLimit:   v.GetString("EVENT_RATE_LIMIT"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	switch cfg.StorageDriver {
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			log.Println("Warning: PGSQL_URL environment variable not set.")
		}
	case DriverMemory:
		if cfg.IsProduction {
			return nil, fmt.Errorf("STORAGE_DRIVER=%s is not allowed in production", DriverMemory)
		}
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	if cfg.JWTSecret == defaultJWTSecret {
		if cfg.IsProduction {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	var err error
	if cfg.QueueProcessingTimeout, err = parseDuration(v, "QUEUE_PROCESSING_TIMEOUT"); err != nil {
		return nil, err
	}
	if cfg.QueueSyncInterval, err = parseDuration(v, "QUEUE_SYNC_INTERVAL"); err != nil {
		return nil, err
	}
	if cfg.QueueBatchSize <= 0 || cfg.QueueMaxAttempts <= 0 {
		return nil, fmt.Errorf("QUEUE_BATCH_SIZE and QUEUE_MAX_ATTEMPTS must be positive")
	}

	for _, origin := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s (%q): %w", key, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return d, nil
}
