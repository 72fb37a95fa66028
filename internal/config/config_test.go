package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		validate func(t *testing.T, cfg *Config)
	}{
		{
			name:    "load default configuration",
			envVars: map[string]string{},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "0.0.0.0", cfg.ServerHost)
				assert.Equal(t, 8080, cfg.ServerPort)
				assert.Equal(t, "postgres", cfg.DBDriver)
				assert.Equal(t, 25, cfg.DBMaxOpenConnections)
				assert.Equal(t, 5, cfg.DBMaxIdleConnections)
				assert.Equal(t, 5*time.Minute, cfg.DBConnMaxLifetime)
				assert.Equal(t, "info", cfg.LogLevel)
				assert.Equal(t, 5*time.Minute, cfg.AccountKeyCacheTTL)
				assert.Equal(t, "moderate", cfg.APIKeyHashPolicy)
				assert.Equal(t, 3, cfg.APIKeyIssueMaxAttempts)
				assert.Equal(t, 1024, cfg.AuditQueueSize)
				assert.Equal(t, "aes-gcm", cfg.ContentAlgorithm)
				assert.True(t, cfg.MetricsEnabled)
				assert.Equal(t, "guardvault", cfg.MetricsNamespace)
			},
		},
		{
			name: "load custom server configuration",
			envVars: map[string]string{
				"SERVER_HOST": "localhost",
				"SERVER_PORT": "9090",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "localhost", cfg.ServerHost)
				assert.Equal(t, 9090, cfg.ServerPort)
			},
		},
		{
			name: "load custom database configuration",
			envVars: map[string]string{
				"DB_DRIVER":               "mysql",
				"DB_CONNECTION_STRING":    "user:password@tcp(localhost:3306)/testdb",
				"DB_MAX_OPEN_CONNECTIONS": "50",
				"DB_MAX_IDLE_CONNECTIONS": "10",
				"DB_CONN_MAX_LIFETIME":    "10",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "mysql", cfg.DBDriver)
				assert.Equal(t, "user:password@tcp(localhost:3306)/testdb", cfg.DBConnectionString)
				assert.Equal(t, 50, cfg.DBMaxOpenConnections)
				assert.Equal(t, 10, cfg.DBMaxIdleConnections)
				assert.Equal(t, 10*time.Minute, cfg.DBConnMaxLifetime)
			},
		},
		{
			name: "load custom crypto configuration",
			envVars: map[string]string{
				"ACCOUNT_KEY_CACHE_TTL_SECONDS": "60",
				"CONTENT_ALGORITHM":             "chacha20-poly1305",
				"API_KEY_HASH_POLICY":           "sensitive",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, time.Minute, cfg.AccountKeyCacheTTL)
				assert.Equal(t, "chacha20-poly1305", cfg.ContentAlgorithm)
				assert.Equal(t, "sensitive", cfg.APIKeyHashPolicy)
			},
		},
		{
			name: "load custom kms configuration",
			envVars: map[string]string{
				"KMS_PROVIDER": "hashivault",
				"KMS_KEY_URI":  "hashivault://mykey",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "hashivault", cfg.KMSProvider)
				assert.Equal(t, "hashivault://mykey", cfg.KMSKeyURI)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := Load()
			tt.validate(t, cfg)
		})
	}
}

func TestGetGinMode(t *testing.T) {
	tests := []struct {
		logLevel string
		want     string
	}{
		{"debug", "debug"},
		{"info", "release"},
		{"warn", "release"},
		{"error", "release"},
		{"unknown", "release"},
	}

	for _, tt := range tests {
		t.Run(tt.logLevel, func(t *testing.T) {
			cfg := &Config{LogLevel: tt.logLevel}
			assert.Equal(t, tt.want, cfg.GetGinMode())
		})
	}
}
