package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:    AppConfig{Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Data:   DataConfig{BasePath: "/var/lib/bookduck"},
		Server: ServerConfig{Port: "8080", RateLimitRPS: 20, RateLimitBurst: 40},
		Auth:   AuthConfig{AccessTokenDuration: time.Hour},
		Catalog: CatalogConfig{
			BaseURL: "https://www.googleapis.com/books/v1",
			RPS:     5,
		},
		Cache: CacheConfig{Backend: CacheBackendBadger},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env
			if tt.valid {
				assert.NoError(t, cfg.Validate())
			} else {
				assert.Error(t, cfg.Validate())
			}
		})
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown log level", func(c *Config) { c.Logger.Level = "trace" }},
		{"empty data path", func(c *Config) { c.Data.BasePath = "" }},
		{"non-numeric port", func(c *Config) { c.Server.Port = "http" }},
		{"zero token duration", func(c *Config) { c.Auth.AccessTokenDuration = 0 }},
		{"missing catalog url", func(c *Config) { c.Catalog.BaseURL = "" }},
		{"unknown cache backend", func(c *Config) { c.Cache.Backend = "memcached" }},
		{"redis without address", func(c *Config) { c.Cache.Backend = CacheBackendRedis; c.Cache.RedisAddr = "" }},
		{"amqp without exchange", func(c *Config) { c.Events.AMQPURL = "amqp://localhost"; c.Events.Exchange = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfig([]string{"-data-path", dir, "-env-file", filepath.Join(dir, "missing.env")})
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 24*time.Hour, cfg.Auth.AccessTokenDuration)
	assert.Equal(t, 10*time.Second, cfg.Catalog.Timeout)
	assert.Equal(t, CacheBackendBadger, cfg.Cache.Backend)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, filepath.Join(dir, "bookduck.db"), cfg.Data.DatabasePath())
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadConfig_Precedence(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("LOG_LEVEL=debug\nSERVER_PORT=7000\nCACHE_TTL=1h\n"), 0o600))

	// Environment beats .env, flags beat environment.
	t.Setenv("SERVER_PORT", "7100")
	t.Cleanup(func() {
		_ = os.Unsetenv("LOG_LEVEL")
		_ = os.Unsetenv("CACHE_TTL")
	})

	cfg, err := LoadConfig([]string{"-data-path", dir, "-env-file", envFile, "-log-level", "warn"})
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Logger.Level)
	assert.Equal(t, "7100", cfg.Server.Port)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
}

func TestLoadConfig_InvalidDuration(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ACCESS_TOKEN_DURATION", "forever")

	_, err := LoadConfig([]string{"-data-path", dir, "-env-file", filepath.Join(dir, "none.env")})
	assert.ErrorContains(t, err, "ACCESS_TOKEN_DURATION")
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandPath("~/books", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "books"), got)

	got, err = expandPath("", "/fallback")
	require.NoError(t, err)
	assert.Equal(t, "/fallback", got)

	got, err = expandPath("relative/dir", "")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"http://a", "http://b"}, splitList(" http://a, ,http://b "))
	assert.Nil(t, splitList(""))
}
