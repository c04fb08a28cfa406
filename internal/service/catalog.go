package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/seohyun-lee/bookduck-backend/internal/catalog/googlebooks"
	"github.com/seohyun-lee/bookduck-backend/internal/domain"
	domainerrors "github.com/seohyun-lee/bookduck-backend/internal/errors"
	"github.com/seohyun-lee/bookduck-backend/internal/metrics"
	"github.com/seohyun-lee/bookduck-backend/internal/store"
)

// additionalLimit is how many other readers' one-liners a volume shows.
const additionalLimit = 3

// CatalogProvider is the remote book catalog.
type CatalogProvider interface {
	Search(ctx context.Context, keyword string, page, size int) (*googlebooks.SearchPage, error)
	Volume(ctx context.Context, providerID string) (*domain.VolumeDetail, error)
}

// CatalogService joins remote catalog results with local state.
type CatalogService struct {
	store    store.Store
	provider CatalogProvider
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewCatalogService creates a catalog service.
func NewCatalogService(s store.Store, provider CatalogProvider, m *metrics.Metrics, logger *slog.Logger) *CatalogService {
	return &CatalogService{store: s, provider: provider, metrics: m, logger: logger}
}

// RemoteSearchResult is one page of reconciled remote results.
type RemoteSearchResult struct {
	TotalItems int                     `json:"total_items"`
	Books      []domain.ReconciledBook `json:"books"`
}

// SearchRemote searches the remote catalog and reconciles the page with
// the user's collection. page is zero-based.
func (s *CatalogService) SearchRemote(ctx context.Context, userID, keyword string, page, size int) (*RemoteSearchResult, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, domainerrors.InvalidArgument("keyword is required")
	}
	if page < 0 {
		return nil, domainerrors.InvalidArgument("page must not be negative")
	}

	start := time.Now()
	res, err := s.provider.Search(ctx, keyword, page, size)
	s.metrics.CatalogCall("search", outcome(err), time.Since(start))
	if err != nil {
		return nil, s.providerError("search", err)
	}

	books, err := s.Reconcile(ctx, userID, res.Candidates)
	if err != nil {
		return nil, err
	}
	return &RemoteSearchResult{TotalItems: res.TotalItems, Books: books}, nil
}

// Reconcile joins candidates with stored entries and the user's overlay.
//
// The output has one book per candidate in input order. A candidate with a
// stored entry gets its EntryID and, when the user has it in their
// collection, an overlay; otherwise the overlay is absent. Candidates with
// the same provider ID resolve to the same entry and overlay.
func (s *CatalogService) Reconcile(ctx context.Context, userID string, candidates []domain.Candidate) ([]domain.ReconciledBook, error) {
	out := make([]domain.ReconciledBook, len(candidates))
	if len(candidates) == 0 {
		return out, nil
	}

	providerIDs := make([]string, 0, len(candidates))
	seen := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		if c.ProviderID != "" && !seen[c.ProviderID] {
			seen[c.ProviderID] = true
			providerIDs = append(providerIDs, c.ProviderID)
		}
	}

	entries, err := s.store.GetEntriesByProviderIDs(ctx, providerIDs)
	if err != nil {
		return nil, fmt.Errorf("get entries: %w", err)
	}

	entryIDs := make([]string, 0, len(entries))
	for _, e := range entries {
		entryIDs = append(entryIDs, e.ID)
	}
	overlays, err := s.overlays(ctx, userID, entryIDs)
	if err != nil {
		return nil, err
	}

	for i, c := range candidates {
		out[i] = domain.ReconciledBook{Candidate: c, Overlay: domain.None[domain.Overlay]()}
		entry, ok := entries[c.ProviderID]
		if !ok {
			continue
		}
		out[i].EntryID = entry.ID
		if o, ok := overlays[entry.ID]; ok {
			out[i].Overlay = domain.Some(o)
		}
	}
	return out, nil
}

// overlays returns the user's overlay per entry ID, for entries in their
// collection only.
func (s *CatalogService) overlays(ctx context.Context, userID string, entryIDs []string) (map[string]domain.Overlay, error) {
	out := make(map[string]domain.Overlay)
	if len(entryIDs) == 0 || userID == "" {
		return out, nil
	}

	assocs, err := s.store.GetAssociationsByUserAndEntries(ctx, userID, entryIDs)
	if err != nil {
		return nil, fmt.Errorf("get associations: %w", err)
	}
	assocIDs := make([]string, 0, len(assocs))
	for _, a := range assocs {
		assocIDs = append(assocIDs, a.ID)
	}
	onelines, err := s.store.GetOneLinesByAssociations(ctx, assocIDs)
	if err != nil {
		return nil, fmt.Errorf("get one-line notes: %w", err)
	}

	for entryID, a := range assocs {
		o := domain.Overlay{
			AssociationID: a.ID,
			Rating:        a.RatingValue(),
			OneLine:       domain.None[string](),
			Status:        a.Status,
		}
		if n, ok := onelines[a.ID]; ok {
			o.OneLine = domain.Some(n.Content)
		}
		out[entryID] = o
	}
	return out, nil
}

// VolumeView is a remote volume with the local state around it.
type VolumeView struct {
	Detail        *domain.VolumeDetail            `json:"detail"`
	EntryID       string                          `json:"entry_id,omitempty"`
	Overlay       domain.Optional[domain.Overlay] `json:"overlay"`
	AverageRating domain.Optional[float64]        `json:"average_rating"`
}

// Volume returns the provider's detail for a volume merged with the local
// entry, the user's overlay and the average rating.
func (s *CatalogService) Volume(ctx context.Context, userID, providerID string) (*VolumeView, error) {
	detail, err := s.fetchVolume(ctx, providerID)
	if err != nil {
		return nil, err
	}

	view := &VolumeView{
		Detail:        detail,
		Overlay:       domain.None[domain.Overlay](),
		AverageRating: domain.None[float64](),
	}

	entry, err := s.store.GetEntryByProviderID(ctx, providerID)
	if errors.Is(err, store.ErrNotFound) {
		return view, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	view.EntryID = entry.ID

	overlays, err := s.overlays(ctx, userID, []string{entry.ID})
	if err != nil {
		return nil, err
	}
	if o, ok := overlays[entry.ID]; ok {
		view.Overlay = domain.Some(o)
	}

	ratings, err := s.store.ListRatingsByEntry(ctx, entry.ID)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	view.AverageRating = domain.AverageRating(ratings)
	return view, nil
}

func (s *CatalogService) fetchVolume(ctx context.Context, providerID string) (*domain.VolumeDetail, error) {
	providerID = strings.TrimSpace(providerID)
	if providerID == "" {
		return nil, domainerrors.InvalidArgument("volume id is required")
	}
	start := time.Now()
	detail, err := s.provider.Volume(ctx, providerID)
	s.metrics.CatalogCall("volume", outcome(err), time.Since(start))
	if err != nil {
		return nil, s.providerError("volume", err)
	}
	return detail, nil
}

// Additional returns up to three other users' shared one-line notes on a
// volume, highest rated first. A volume nobody has stored has none.
func (s *CatalogService) Additional(ctx context.Context, userID, providerID string) ([]domain.Card, error) {
	entry, err := s.store.GetEntryByProviderID(ctx, providerID)
	if errors.Is(err, store.ErrNotFound) {
		return []domain.Card{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}

	views, err := s.store.ListSharedOneLines(ctx, entry.ID, userID, additionalLimit)
	if err != nil {
		return nil, fmt.Errorf("list one-line notes: %w", err)
	}
	cards := make([]domain.Card, 0, len(views))
	for _, v := range views {
		cards = append(cards, domain.NewCard(v))
	}
	return cards, nil
}

// AverageRating returns the mean rating of an entry across all users.
// Unrated copies do not count; with no rated copies the result is absent.
func (s *CatalogService) AverageRating(ctx context.Context, entryID string) (domain.Optional[float64], error) {
	if _, err := s.store.GetEntry(ctx, entryID); err != nil {
		return domain.None[float64](), translate(err, "get entry", "book not found")
	}
	ratings, err := s.store.ListRatingsByEntry(ctx, entryID)
	if err != nil {
		return domain.None[float64](), fmt.Errorf("list ratings: %w", err)
	}
	return domain.AverageRating(ratings), nil
}

// lookupOrFetch returns the stored entry for a remote volume, or the
// provider's detail when it has never been stored.
func (s *CatalogService) lookupOrFetch(ctx context.Context, providerID string) (*domain.CatalogEntry, *domain.VolumeDetail, error) {
	entry, err := s.store.GetEntryByProviderID(ctx, providerID)
	if err == nil {
		return entry, nil, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, nil, fmt.Errorf("get entry: %w", err)
	}
	detail, err := s.fetchVolume(ctx, providerID)
	if err != nil {
		return nil, nil, err
	}
	return nil, detail, nil
}

// providerError maps a provider failure to its domain error. A malformed
// response is terminal; everything else that is not the caller's fault
// is reported as the upstream being unavailable.
func (s *CatalogService) providerError(op string, err error) error {
	switch {
	case errors.Is(err, googlebooks.ErrParse):
		s.logger.Error("catalog response could not be parsed", "op", op, "error", err)
		return domainerrors.UpstreamParseFailure("catalog response could not be parsed", err)
	case errors.Is(err, googlebooks.ErrNotFound):
		return domainerrors.NotFound("volume not found")
	case errors.Is(err, googlebooks.ErrBadRequest):
		return domainerrors.InvalidArgument("catalog rejected the request")
	default:
		s.logger.Warn("catalog unavailable", "op", op, "error", err)
		return domainerrors.UpstreamUnavailable("catalog is unavailable", err)
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, googlebooks.ErrParse):
		return "parse_error"
	case errors.Is(err, googlebooks.ErrNotFound):
		return "not_found"
	case errors.Is(err, googlebooks.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	default:
		return "unavailable"
	}
}
