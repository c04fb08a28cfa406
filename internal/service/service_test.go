package service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/seohyun-lee/bookduck-backend/internal/auth"
	"github.com/seohyun-lee/bookduck-backend/internal/catalog/googlebooks"
	"github.com/seohyun-lee/bookduck-backend/internal/domain"
	domainerrors "github.com/seohyun-lee/bookduck-backend/internal/errors"
	"github.com/seohyun-lee/bookduck-backend/internal/events"
	"github.com/seohyun-lee/bookduck-backend/internal/lock"
	"github.com/seohyun-lee/bookduck-backend/internal/metrics"
	"github.com/seohyun-lee/bookduck-backend/internal/search"
	"github.com/seohyun-lee/bookduck-backend/internal/store/sqlite"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

// fakeProvider serves volume details for any ID unless told otherwise.
type fakeProvider struct {
	mu          sync.Mutex
	searchPage  *googlebooks.SearchPage
	searchErr   error
	volumeErr   error
	volumeCalls int
}

func (p *fakeProvider) Search(_ context.Context, _ string, _, _ int) (*googlebooks.SearchPage, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.searchErr != nil {
		return nil, p.searchErr
	}
	if p.searchPage == nil {
		return &googlebooks.SearchPage{}, nil
	}
	return p.searchPage, nil
}

func (p *fakeProvider) Volume(_ context.Context, providerID string) (*domain.VolumeDetail, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volumeCalls++
	if p.volumeErr != nil {
		return nil, p.volumeErr
	}
	return &domain.VolumeDetail{
		ProviderID: providerID,
		Title:      "Title of " + providerID,
		Authors:    domain.Some([]string{"Author of " + providerID}),
		Cover:      domain.None[string](),
		PageCount:  200,
		Categories: domain.Some([]string{"Fiction / General"}),
		Genre:      domain.GenreLiterature,
	}, nil
}

func (p *fakeProvider) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volumeCalls
}

type testEnv struct {
	store    *sqlite.Store
	index    *search.SearchIndex
	events   *events.Recorder
	metrics  *metrics.Metrics
	provider *fakeProvider

	progression *ProgressionService
	auth        *AuthService
	accounts    *AccountService
	catalog     *CatalogService
	library     *LibraryService
	onelines    *OneLineService
	archives    *ArchiveService
}

func setupServiceTest(t *testing.T) *testEnv {
	t.Helper()
	return setupServiceTestWith(t, &fakeProvider{})
}

func setupServiceTestWith(t *testing.T, provider CatalogProvider) *testEnv {
	t.Helper()
	dir := t.TempDir()
	logger := slog.New(slog.DiscardHandler)

	s, err := sqlite.Open(filepath.Join(dir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	index, err := search.NewSearchIndex(search.Options{DataPath: filepath.Join(dir, "search")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	key := make([]byte, 32)
	copy(key, "bookduck-test-key-0123456789abcd")
	tokens, err := auth.NewTokenService(key, time.Hour)
	require.NoError(t, err)

	rec := &events.Recorder{}
	m := metrics.New()
	progression := NewProgressionService(s, domain.DefaultPolicy(), lock.New(), rec, m, logger)
	progression.now = func() time.Time { return testNow }
	catalog := NewCatalogService(s, provider, m, logger)

	env := &testEnv{
		store:       s,
		index:       index,
		events:      rec,
		metrics:     m,
		progression: progression,
		auth:        NewAuthService(s, tokens, logger),
		accounts:    NewAccountService(s, progression, index, rec, logger),
		catalog:     catalog,
		library:     NewLibraryService(s, catalog, progression, index, rec, logger),
		onelines:    NewOneLineService(s, progression, index, rec, logger),
		archives:    NewArchiveService(s, progression, index, rec, logger),
	}
	if fp, ok := provider.(*fakeProvider); ok {
		env.provider = fp
	}
	env.auth.now = progression.now
	return env
}

var userSeq int

func (e *testEnv) register(t *testing.T, nickname string) *domain.User {
	t.Helper()
	userSeq++
	res, err := e.auth.Register(context.Background(), RegisterRequest{
		Email:    fmt.Sprintf("%s-%d@example.com", nickname, userSeq),
		Password: "correct horse battery",
		Nickname: nickname,
	})
	require.NoError(t, err)
	return res.User
}

func (e *testEnv) addVolume(t *testing.T, userID, providerID string) *domain.CollectionItem {
	t.Helper()
	item, err := e.library.AddVolume(context.Background(), userID, AddVolumeRequest{ProviderID: providerID})
	require.NoError(t, err)
	return item
}

func (e *testEnv) ledger(t *testing.T, userID string) *domain.Ledger {
	t.Helper()
	l, err := e.progression.Ledger(context.Background(), userID)
	require.NoError(t, err)
	return l
}

func requireCode(t *testing.T, err error, code domainerrors.Code) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, domainerrors.CodeOf(err), "error: %v", err)
}
