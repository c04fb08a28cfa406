package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/seohyun-lee/bookduck-backend/internal/config"
	"github.com/seohyun-lee/bookduck-backend/internal/logger"
	"github.com/seohyun-lee/bookduck-backend/internal/search"
	"github.com/seohyun-lee/bookduck-backend/internal/service"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.SearchIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve notes index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.NewSearchIndex(search.Options{
		DataPath: cfg.Data.SearchPath(),
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount, "created", index.Created())

	return &SearchIndexHandle{SearchIndex: index}, nil
}

// TriggerSearchReindexIfNeeded refills a freshly created index from the
// store in the background. Call it after all services are wired.
func TriggerSearchReindexIfNeeded(i do.Injector) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	if !indexHandle.Created() {
		return
	}
	archives := do.MustInvoke[*service.ArchiveService](i)
	log := do.MustInvoke[*logger.Logger](i)

	log.Info("Search index was created empty, reindexing notes from the store")

	go func() {
		count, err := archives.Reindex(context.Background())
		if err != nil {
			log.WithError(err).Error("Initial search reindex failed", "indexed", count)
			return
		}
		log.Info("Initial search reindex completed", "documents", count)
	}()
}
