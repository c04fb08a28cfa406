// Package di provides dependency injection configuration for the bookduck server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/seohyun-lee/bookduck-backend/internal/auth"
	"github.com/seohyun-lee/bookduck-backend/internal/config"
	"github.com/seohyun-lee/bookduck-backend/internal/di/providers"
	"github.com/seohyun-lee/bookduck-backend/internal/domain"
	"github.com/seohyun-lee/bookduck-backend/internal/logger"
	"github.com/seohyun-lee/bookduck-backend/internal/metrics"
	"github.com/seohyun-lee/bookduck-backend/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
// Services are built lazily on first invoke, so commands that need only
// the store never open the cache or connect to the broker.
func NewContainer(cfg *config.Config) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.ProvideValue(injector, cfg)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideMetrics)
	do.Provide(injector, providers.ProvideAuthKey)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideCache)

	// Outbound
	do.Provide(injector, providers.ProvideGoogleBooks)
	do.Provide(injector, providers.ProvidePublisher)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvidePolicy)
	do.Provide(injector, providers.ProvideProgressionService)
	do.Provide(injector, providers.ProvideCatalogService)
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideAccountService)
	do.Provide(injector, providers.ProvideLibraryService)
	do.Provide(injector, providers.ProvideOneLineService)
	do.Provide(injector, providers.ProvideArchiveService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and starts the HTTP server.
func Bootstrap(injector *do.RootScope) error {
	// Invoke core services to trigger initialization
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*metrics.Metrics](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.SearchIndexHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.CacheHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.PublisherHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*auth.TokenService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*domain.Policy](injector); err != nil {
		return err
	}

	// Business services
	if _, err := do.Invoke[*service.AuthService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.LibraryService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.ArchiveService](injector); err != nil {
		return err
	}

	// Server
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}

	providers.TriggerSearchReindexIfNeeded(injector)

	return nil
}
