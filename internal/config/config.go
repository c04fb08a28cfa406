// Package config loads server configuration from command-line flags,
// environment variables and a .env file.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	App         AppConfig
	Logger      LoggerConfig
	Data        DataConfig
	Server      ServerConfig
	Auth        AuthConfig
	Catalog     CatalogConfig
	Cache       CacheConfig
	Events      EventsConfig
	Progression ProgressionConfig
	Metrics     MetricsConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig locates on-disk state: the database, search index, cache and auth key.
type DataConfig struct {
	BasePath string
}

// DatabasePath returns the SQLite database file.
func (d DataConfig) DatabasePath() string { return filepath.Join(d.BasePath, "bookduck.db") }

// SearchPath returns the directory of the notes search index.
func (d DataConfig) SearchPath() string { return filepath.Join(d.BasePath, "search") }

// CachePath returns the directory of the embedded response cache.
func (d DataConfig) CachePath() string { return filepath.Join(d.BasePath, "cache") }

// KeyPath returns the file holding the token signing key.
func (d DataConfig) KeyPath() string { return filepath.Join(d.BasePath, "auth.key") }

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port           string        // default: 8080
	ReadTimeout    time.Duration // default: 15s
	WriteTimeout   time.Duration // default: 30s
	IdleTimeout    time.Duration // default: 60s
	AllowedOrigins []string      // CORS; default: *
	RateLimitRPS   float64       // per client IP; default: 20
	RateLimitBurst int           // default: 40
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	// PASETO v4 symmetric key, set by auth.LoadOrGenerateKey at startup.
	AccessTokenKey      []byte
	AccessTokenDuration time.Duration // default: 24h
}

// CatalogConfig configures the Google Books client.
type CatalogConfig struct {
	BaseURL   string
	APIKey    string // optional; anonymous quota without it
	Timeout   time.Duration
	RPS       float64
	Burst     int
	UserAgent string
}

// Cache backends.
const (
	CacheBackendBadger = "badger"
	CacheBackendRedis  = "redis"
	CacheBackendNone   = "none"
)

// CacheConfig configures the remote catalog response cache.
type CacheConfig struct {
	Backend   string // badger, redis or none
	RedisAddr string
	RedisDB   int
	TTL       time.Duration
}

// EventsConfig configures domain event publishing. Empty AMQPURL disables it.
type EventsConfig struct {
	AMQPURL  string
	Exchange string
}

// ProgressionConfig configures leveling and badges.
type ProgressionConfig struct {
	PolicyPath string // empty uses the built-in policy
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
}

// LoadConfig loads configuration with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig(args []string) (*Config, error) {
	fs := flag.NewFlagSet("bookduck", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := fs.String("data-path", "", "Directory for database, index and cache")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	port := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 30s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")

	accessTokenDuration := fs.String("access-token-duration", "", "Access token lifetime (default: 24h)")

	catalogURL := fs.String("google-books-url", "", "Google Books API base URL")
	cacheBackend := fs.String("cache-backend", "", "Catalog cache backend: badger, redis or none")
	redisAddr := fs.String("redis-addr", "", "Redis address for the redis cache backend")
	amqpURL := fs.String("amqp-url", "", "AMQP broker URL for domain events")
	policyPath := fs.String("progression-policy", "", "Path to a progression policy YAML file")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// Missing .env is fine. Variables already set in the environment win.
	_ = godotenv.Load(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			BasePath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Server: ServerConfig{
			Port:           getConfigValue(*port, "SERVER_PORT", "8080"),
			AllowedOrigins: splitList(getConfigValue("", "CORS_ALLOWED_ORIGINS", "*")),
			RateLimitRPS:   getFloatConfigValue("", "RATE_LIMIT_RPS", 20),
			RateLimitBurst: getIntConfigValue("", "RATE_LIMIT_BURST", 40),
		},
		Catalog: CatalogConfig{
			BaseURL:   getConfigValue(*catalogURL, "GOOGLE_BOOKS_BASE_URL", "https://www.googleapis.com/books/v1"),
			APIKey:    getConfigValue("", "GOOGLE_BOOKS_API_KEY", ""),
			RPS:       getFloatConfigValue("", "GOOGLE_BOOKS_RPS", 5),
			Burst:     getIntConfigValue("", "GOOGLE_BOOKS_BURST", 10),
			UserAgent: getConfigValue("", "GOOGLE_BOOKS_USER_AGENT", "bookduck-server/1.0"),
		},
		Cache: CacheConfig{
			Backend:   strings.ToLower(getConfigValue(*cacheBackend, "CACHE_BACKEND", CacheBackendBadger)),
			RedisAddr: getConfigValue(*redisAddr, "REDIS_ADDR", "localhost:6379"),
			RedisDB:   getIntConfigValue("", "REDIS_DB", 0),
		},
		Events: EventsConfig{
			AMQPURL:  getConfigValue(*amqpURL, "AMQP_URL", ""),
			Exchange: getConfigValue("", "AMQP_EXCHANGE", "bookduck.events"),
		},
		Progression: ProgressionConfig{
			PolicyPath: getConfigValue(*policyPath, "PROGRESSION_POLICY_PATH", ""),
		},
		Metrics: MetricsConfig{
			Enabled: getBoolConfigValue("", "METRICS_ENABLED", true),
		},
	}

	durations := []struct {
		dst      *time.Duration
		flag     string
		envKey   string
		fallback string
	}{
		{&cfg.Server.ReadTimeout, *readTimeout, "SERVER_READ_TIMEOUT", "15s"},
		{&cfg.Server.WriteTimeout, *writeTimeout, "SERVER_WRITE_TIMEOUT", "30s"},
		{&cfg.Server.IdleTimeout, *idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"},
		{&cfg.Auth.AccessTokenDuration, *accessTokenDuration, "ACCESS_TOKEN_DURATION", "24h"},
		{&cfg.Catalog.Timeout, "", "GOOGLE_BOOKS_TIMEOUT", "10s"},
		{&cfg.Cache.TTL, "", "CACHE_TTL", "6h"},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flag, d.envKey, d.fallback)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.envKey, raw, err)
		}
		*d.dst = parsed
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}
	if cfg.Progression.PolicyPath != "" {
		expanded, err := expandPath(cfg.Progression.PolicyPath, "")
		if err != nil {
			return nil, fmt.Errorf("invalid progression policy path: %w", err)
		}
		cfg.Progression.PolicyPath = expanded
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	switch c.App.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
	}

	switch strings.ToLower(c.Logger.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Data.BasePath == "" {
		return errors.New("data path cannot be empty after expansion")
	}

	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("invalid server port %q", c.Server.Port)
	}
	if c.Server.RateLimitRPS <= 0 || c.Server.RateLimitBurst <= 0 {
		return errors.New("rate limit rps and burst must be positive")
	}

	if c.Auth.AccessTokenDuration <= 0 {
		return errors.New("access token duration must be positive")
	}

	if c.Catalog.BaseURL == "" {
		return errors.New("google books base url is required")
	}
	if c.Catalog.RPS <= 0 {
		return errors.New("google books rps must be positive")
	}

	switch c.Cache.Backend {
	case CacheBackendBadger, CacheBackendNone:
	case CacheBackendRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New("REDIS_ADDR is required for the redis cache backend")
		}
	default:
		return fmt.Errorf("invalid cache backend %q (must be badger, redis, or none)", c.Cache.Backend)
	}

	if c.Events.AMQPURL != "" && c.Events.Exchange == "" {
		return errors.New("AMQP_EXCHANGE is required when AMQP_URL is set")
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty, defaultPath is returned unchanged.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	expanded, err := expandPath(c.Data.BasePath, filepath.Join(homeDir, ".bookduck"))
	if err != nil {
		return err
	}
	c.Data.BasePath = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue accepts "true", "1" and "yes" (case-insensitive) as true.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(strValue)
	if err != nil {
		return defaultValue
	}
	return result
}

func getFloatConfigValue(flagValue, envKey string, defaultValue float64) float64 {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.ParseFloat(strValue, 64)
	if err != nil {
		return defaultValue
	}
	return result
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
