package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("RETRY_DELAY", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreMemory, cfg.Store.Backend)
	assert.Equal(t, 3, cfg.Pipeline.RetryMaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.Pipeline.RetryDelay)
	assert.Equal(t, 3, cfg.Pipeline.BuildMaxAttempts)
	assert.Equal(t, 100, cfg.Pipeline.ListLimit)
	assert.Empty(t, cfg.LLM.APIKey)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
}

func TestLoad_GeminiKeyFallback(t *testing.T) {
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "gm-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "gm-key", cfg.LLM.APIKey)
}

func TestLoad_ParsesOverrides(t *testing.T) {
	t.Setenv("RETRY_DELAY", "150ms")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("BUILD_MAX_ATTEMPTS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 150*time.Millisecond, cfg.Pipeline.RetryDelay)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 3, cfg.Pipeline.BuildMaxAttempts)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: "8080"},
			Store:    StoreConfig{Backend: StoreMemory},
			Redis:    RedisConfig{Addr: "localhost:6379"},
			Pipeline: PipelineConfig{RetryMaxAttempts: 3, BuildMaxAttempts: 3, ListLimit: 100},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid memory config", mutate: func(c *Config) {}},
		{name: "postgres without dsn", mutate: func(c *Config) { c.Store.Backend = StorePostgres }, wantErr: "DB_DSN"},
		{name: "unknown backend", mutate: func(c *Config) { c.Store.Backend = "mongo" }, wantErr: "unknown STORE_BACKEND"},
		{name: "zero retry attempts", mutate: func(c *Config) { c.Pipeline.RetryMaxAttempts = 0 }, wantErr: "RETRY_MAX_ATTEMPTS"},
		{name: "zero build attempts", mutate: func(c *Config) { c.Pipeline.BuildMaxAttempts = 0 }, wantErr: "BUILD_MAX_ATTEMPTS"},
		{name: "build attempts above three", mutate: func(c *Config) { c.Pipeline.BuildMaxAttempts = 7 }, wantErr: "BUILD_MAX_ATTEMPTS"},
		{name: "missing port", mutate: func(c *Config) { c.Server.Port = "" }, wantErr: "PORT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
