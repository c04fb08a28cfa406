package search

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/seohyun-lee/bookduck-backend/internal/domain"
)

const (
	indexDir    = "notes.bleve"
	versionFile = "notes.version"

	// mappingVersion is bumped whenever the mapping changes. An index
	// stamped with another version is dropped on open and refilled by
	// the caller.
	mappingVersion = "1"

	batchSize = 500
)

// SearchIndex is the Bleve index of notes.
//
// All methods are safe for concurrent use. Rebuild takes the write lock.
type SearchIndex struct {
	mu          sync.RWMutex
	index       bleve.Index
	path        string
	versionPath string
	logger      *slog.Logger

	created bool
}

// Options configures the search index.
type Options struct {
	DataPath string       // Directory for index storage
	Logger   *slog.Logger // Uses a discard logger if nil
}

// NewSearchIndex opens the notes index under DataPath. A missing, stale or
// unreadable index is replaced by an empty one and Created reports true,
// telling the caller to reindex notes from the store.
func NewSearchIndex(opts Options) (*SearchIndex, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if err := os.MkdirAll(opts.DataPath, 0o750); err != nil {
		return nil, fmt.Errorf("create index directory: %w", err)
	}

	s := &SearchIndex{
		path:        filepath.Join(opts.DataPath, indexDir),
		versionPath: filepath.Join(opts.DataPath, versionFile),
		logger:      logger,
	}

	index, reason := s.openCurrent()
	if index != nil {
		logger.Info("opened notes index", "path", s.path)
		s.index = index
		return s, nil
	}

	if reason != "" {
		logger.Info("recreating notes index", "path", s.path, "reason", reason)
		if err := os.RemoveAll(s.path); err != nil {
			return nil, fmt.Errorf("remove stale index: %w", err)
		}
	}
	index, err := s.create()
	if err != nil {
		return nil, err
	}
	s.index = index
	s.created = true
	return s, nil
}

// openCurrent opens the on-disk index if it carries the current mapping
// version. Otherwise it returns nil and why; the reason is empty when no
// index exists yet.
func (s *SearchIndex) openCurrent() (bleve.Index, string) {
	if _, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) {
		return nil, ""
	}

	stamp, err := os.ReadFile(s.versionPath)
	if err != nil {
		return nil, "mapping version unknown"
	}
	if v := strings.TrimSpace(string(stamp)); v != mappingVersion {
		return nil, fmt.Sprintf("mapping version %s, want %s", v, mappingVersion)
	}

	index, err := bleve.Open(s.path)
	if err != nil {
		return nil, "open failed: " + err.Error()
	}
	return index, ""
}

// create builds an empty index at s.path and stamps the mapping version.
func (s *SearchIndex) create() (bleve.Index, error) {
	index, err := bleve.New(s.path, buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	if err := os.WriteFile(s.versionPath, []byte(mappingVersion), 0o644); err != nil {
		s.logger.Warn("failed to stamp notes index version", "error", err)
	}
	s.logger.Info("created notes index", "path", s.path, "mapping_version", mappingVersion)
	return index, nil
}

// Created reports whether the index was created empty when opened.
func (s *SearchIndex) Created() bool {
	return s.created
}

// Close closes the index and releases resources.
func (s *SearchIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexNotes writes or replaces the documents of the given notes.
func (s *SearchIndex) IndexNotes(views ...*domain.NoteView) error {
	docs := make([]*NoteDocument, len(views))
	for i, v := range views {
		docs[i] = newNoteDocument(v)
	}
	return s.put(docs)
}

// put indexes docs in batches.
func (s *SearchIndex) put(docs []*NoteDocument) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for chunk := range slices.Chunk(docs, batchSize) {
		batch := s.index.NewBatch()
		for _, doc := range chunk {
			if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
				return fmt.Errorf("index note %s: %w", doc.ID, err)
			}
		}
		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("commit %d notes: %w", len(chunk), err)
		}
	}
	return nil
}

// RemoveNotes deletes the documents of the given note IDs. Unknown IDs are
// ignored.
func (s *SearchIndex) RemoveNotes(ids []string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	batch := s.index.NewBatch()
	for _, id := range ids {
		batch.Delete(id)
	}
	return s.index.Batch(batch)
}

// DocumentCount returns the total number of indexed notes.
func (s *SearchIndex) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Rebuild drops every document by replacing the index with an empty one.
// It blocks every other operation until done.
func (s *SearchIndex) Rebuild() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}
	if err := os.RemoveAll(s.path); err != nil {
		return fmt.Errorf("remove index: %w", err)
	}
	index, err := s.create()
	if err != nil {
		return err
	}
	s.index = index
	return nil
}
