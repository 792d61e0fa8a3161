package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadProductionConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadProductionConfig()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "X-User-ID", cfg.Server.UserIDHeader)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Security.AllowedOrigins)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, 24*time.Hour, cfg.Cache.IdempotencyTTL)
	assert.False(t, cfg.Cache.Enabled)
}

func TestLoadProductionConfigFromEnvAndFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	content := "# local overrides\nDB_DRIVER=sqlite\nDB_SQLITE_PATH='data/numbers.db'\nSERVER_PORT=9090\nCORS_ALLOWED_ORIGINS=\"https://a.example,https://b.example\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600))

	for _, key := range []string{"DB_DRIVER", "DB_SQLITE_PATH", "CORS_ALLOWED_ORIGINS"} {
		unsetForTest(t, key)
	}

	// Variables already present in the environment win over the file
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("CACHE_IDEMPOTENCY_TTL", "2h")

	cfg, err := LoadProductionConfig()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "data/numbers.db", cfg.Database.SQLitePath)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Security.AllowedOrigins)
	assert.Equal(t, 2*time.Hour, cfg.Cache.IdempotencyTTL)
}

func TestValidateProductionConfig(t *testing.T) {
	t.Chdir(t.TempDir())

	base, err := LoadProductionConfig()
	require.NoError(t, err)
	base.Database.Password = "secret"

	tests := []struct {
		name     string
		mutate   func(cfg *ProductionConfig)
		expected []string
	}{
		{name: "valid", mutate: func(cfg *ProductionConfig) {}},
		{
			name:   "sqlite without password",
			mutate: func(cfg *ProductionConfig) { cfg.Database.Driver = "sqlite"; cfg.Database.Password = "" },
		},
		{
			name:     "unknown driver",
			mutate:   func(cfg *ProductionConfig) { cfg.Database.Driver = "mysql" },
			expected: []string{"DB_DRIVER must be one of"},
		},
		{
			name: "several problems reported together",
			mutate: func(cfg *ProductionConfig) {
				cfg.Server.Port = 0
				cfg.Logging.Level = "verbose"
				cfg.Cache.Enabled = true
				cfg.Cache.RedisURL = ""
			},
			expected: []string{"SERVER_PORT", "LOG_LEVEL", "CACHE_REDIS_URL"},
		},
		{
			name: "wildcard origin with credentials",
			mutate: func(cfg *ProductionConfig) {
				cfg.Security.AllowCredentials = true
				cfg.Security.AllowedOrigins = []string{"*"}
			},
			expected: []string{"CORS_ALLOWED_ORIGINS"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := *base
			tt.mutate(&cfg)
			err := ValidateProductionConfig(&cfg)
			if len(tt.expected) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, fragment := range tt.expected {
				assert.Contains(t, err.Error(), fragment)
			}
		})
	}
}

// unsetForTest removes key for the duration of the test and restores any previous value
func unsetForTest(t *testing.T, key string) {
	t.Helper()
	prev, had := os.LookupEnv(key)
	os.Unsetenv(key)
	t.Cleanup(func() {
		if had {
			os.Setenv(key, prev)
		} else {
			os.Unsetenv(key)
		}
	})
}
