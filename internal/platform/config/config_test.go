package config_test

import (
	"testing"
	"time"

	"github.com/SscSPs/autoledger/internal/platform/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, config.DriverMemory, cfg.StorageDriver)
	assert.Equal(t, "file://migrations", cfg.MigrationsPath)
	assert.Equal(t, 25, cfg.QueueBatchSize)
	assert.Equal(t, 5, cfg.QueueMaxAttempts)
	assert.Equal(t, 5*time.Minute, cfg.QueueProcessingTimeout)
	assert.Zero(t, cfg.QueueSyncInterval)
	assert.Equal(t, "100-S", cfg.EventRateLimit)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowedOrigins)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "MEMORY")
	t.Setenv("QUEUE_SYNC_INTERVAL", "30s")
	t.Setenv("QUEUE_MAX_ATTEMPTS", "3")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.QueueSyncInterval)
	assert.Equal(t, 3, cfg.QueueMaxAttempts)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestLoadConfig_ProductionWithSecret(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("IS_PRODUCTION", "true")
	t.Setenv("JWT_SECRET", "rotated-deploy-secret")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction)
	assert.Equal(t, "rotated-deploy-secret", cfg.JWTSecret)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown driver", map[string]string{"STORAGE_DRIVER": "sqlite"}},
		{"memory in production", map[string]string{"STORAGE_DRIVER": "memory", "IS_PRODUCTION": "true"}},
		{"bad duration", map[string]string{"STORAGE_DRIVER": "memory", "QUEUE_PROCESSING_TIMEOUT": "soon"}},
		{"negative interval", map[string]string{"STORAGE_DRIVER": "memory", "QUEUE_SYNC_INTERVAL": "-1s"}},
		{"zero attempts", map[string]string{"STORAGE_DRIVER": "memory", "QUEUE_MAX_ATTEMPTS": "0"}},
		{"default jwt secret in production", map[string]string{"STORAGE_DRIVER": "postgres", "IS_PRODUCTION": "true", "JWT_SECRET": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := config.LoadConfig()
			assert.Error(t, err)
		})
	}
}
