package providers

import (
	"github.com/samber/do/v2"

	"github.com/seohyun-lee/bookduck-backend/internal/auth"
	"github.com/seohyun-lee/bookduck-backend/internal/config"
	"github.com/seohyun-lee/bookduck-backend/internal/domain"
	"github.com/seohyun-lee/bookduck-backend/internal/lock"
	"github.com/seohyun-lee/bookduck-backend/internal/logger"
	"github.com/seohyun-lee/bookduck-backend/internal/metrics"
	"github.com/seohyun-lee/bookduck-backend/internal/service"
)

// ProvidePolicy provides the progression policy: the configured file, or
// the built-in policy when none is set.
func ProvidePolicy(i do.Injector) (*domain.Policy, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Progression.PolicyPath == "" {
		return domain.DefaultPolicy(), nil
	}

	policy, err := domain.LoadPolicy(cfg.Progression.PolicyPath)
	if err != nil {
		return nil, err
	}
	log.Info("Progression policy loaded", "path", cfg.Progression.PolicyPath, "badges", len(policy.Catalog()))
	return policy, nil
}

// ProvideProgressionService provides the progression service.
func ProvideProgressionService(i do.Injector) (*service.ProgressionService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	policy := do.MustInvoke[*domain.Policy](i)
	pub := do.MustInvoke[*PublisherHandle](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewProgressionService(storeHandle.Store, policy, lock.New(), pub, m, log.Logger), nil
}

// ProvideCatalogService provides the catalog reconciliation service.
func ProvideCatalogService(i do.Injector) (*service.CatalogService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	books := do.MustInvoke[*GoogleBooksHandle](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCatalogService(storeHandle.Store, books.Client, m, log.Logger), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokens := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokens, log.Logger), nil
}

// ProvideAccountService provides the account service.
func ProvideAccountService(i do.Injector) (*service.AccountService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	progression := do.MustInvoke[*service.ProgressionService](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	pub := do.MustInvoke[*PublisherHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAccountService(storeHandle.Store, progression, indexHandle.SearchIndex, pub, log.Logger), nil
}

// ProvideLibraryService provides the collection and custom book service.
func ProvideLibraryService(i do.Injector) (*service.LibraryService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	catalog := do.MustInvoke[*service.CatalogService](i)
	progression := do.MustInvoke[*service.ProgressionService](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	pub := do.MustInvoke[*PublisherHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewLibraryService(storeHandle.Store, catalog, progression, indexHandle.SearchIndex, pub, log.Logger), nil
}

// ProvideOneLineService provides the one-line note service.
func ProvideOneLineService(i do.Injector) (*service.OneLineService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	progression := do.MustInvoke[*service.ProgressionService](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	pub := do.MustInvoke[*PublisherHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewOneLineService(storeHandle.Store, progression, indexHandle.SearchIndex, pub, log.Logger), nil
}

// ProvideArchiveService provides the excerpt and review service.
func ProvideArchiveService(i do.Injector) (*service.ArchiveService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	progression := do.MustInvoke[*service.ProgressionService](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	pub := do.MustInvoke[*PublisherHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewArchiveService(storeHandle.Store, progression, indexHandle.SearchIndex, pub, log.Logger), nil
}
