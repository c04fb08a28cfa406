package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/do/v2"

	"github.com/seohyun-lee/bookduck-backend/internal/cache"
	"github.com/seohyun-lee/bookduck-backend/internal/catalog/googlebooks"
	"github.com/seohyun-lee/bookduck-backend/internal/config"
	"github.com/seohyun-lee/bookduck-backend/internal/logger"
	"github.com/seohyun-lee/bookduck-backend/internal/metrics"
)

// badgerGCInterval is how often the embedded cache compacts its value log.
const badgerGCInterval = 10 * time.Minute

// CacheHandle wraps the catalog response cache with shutdown capability.
type CacheHandle struct {
	cache.Cache
}

// Shutdown implements do.Shutdownable.
func (h *CacheHandle) Shutdown() error {
	return h.Close()
}

// ProvideCache provides the catalog response cache for the configured backend.
func ProvideCache(i do.Injector) (*CacheHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	m := do.MustInvoke[*metrics.Metrics](i)

	var (
		c   cache.Cache
		err error
	)
	switch cfg.Cache.Backend {
	case config.CacheBackendBadger:
		c, err = cache.OpenBadger(cache.BadgerConfig{
			Path:       cfg.Data.CachePath(),
			Logger:     log.Logger,
			GCInterval: badgerGCInterval,
		})
	case config.CacheBackendRedis:
		c, err = cache.NewRedis(context.Background(), cache.RedisConfig{
			Addr: cfg.Cache.RedisAddr,
			DB:   cfg.Cache.RedisDB,
		})
	case config.CacheBackendNone:
		c = cache.Noop{}
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s cache: %w", cfg.Cache.Backend, err)
	}

	log.Info("Catalog cache ready", "backend", cfg.Cache.Backend, "ttl", cfg.Cache.TTL)

	return &CacheHandle{Cache: cache.Observed(c, m.CacheLookup)}, nil
}

// GoogleBooksHandle wraps the remote catalog client with shutdown capability.
type GoogleBooksHandle struct {
	*googlebooks.Client
}

// Shutdown implements do.Shutdownable.
func (h *GoogleBooksHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideGoogleBooks provides the Google Books client.
func ProvideGoogleBooks(i do.Injector) (*GoogleBooksHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	cacheHandle := do.MustInvoke[*CacheHandle](i)

	client := googlebooks.New(googlebooks.Config{
		BaseURL:   cfg.Catalog.BaseURL,
		APIKey:    cfg.Catalog.APIKey,
		Timeout:   cfg.Catalog.Timeout,
		RPS:       cfg.Catalog.RPS,
		Burst:     cfg.Catalog.Burst,
		UserAgent: cfg.Catalog.UserAgent,
		CacheTTL:  cfg.Cache.TTL,
	}, cacheHandle, log.WithField("component", "googlebooks").Logger)

	log.Info("Google Books client initialized",
		"base_url", cfg.Catalog.BaseURL,
		"api_key_set", cfg.Catalog.APIKey != "",
		"rps", cfg.Catalog.RPS,
	)

	return &GoogleBooksHandle{Client: client}, nil
}

// ProvideMetrics provides the Prometheus metrics, or nil when disabled.
func ProvideMetrics(i do.Injector) (*metrics.Metrics, error) {
	cfg := do.MustInvoke[*config.Config](i)
	if !cfg.Metrics.Enabled {
		return nil, nil
	}
	return metrics.New(), nil
}
