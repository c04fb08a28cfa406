package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/seohyun-lee/bookduck-backend/internal/domain"
	domainerrors "github.com/seohyun-lee/bookduck-backend/internal/errors"
	"github.com/seohyun-lee/bookduck-backend/internal/events"
	"github.com/seohyun-lee/bookduck-backend/internal/id"
	"github.com/seohyun-lee/bookduck-backend/internal/store"
)

const (
	defaultCollectionLimit = 50
	maxCollectionLimit     = 200
)

// LibraryService manages a user's collection and their custom books.
type LibraryService struct {
	store       store.Store
	catalog     *CatalogService
	progression *ProgressionService
	notes       noteWriter
	logger      *slog.Logger
}

// NewLibraryService creates a library service.
func NewLibraryService(
	s store.Store,
	catalog *CatalogService,
	progression *ProgressionService,
	index NoteIndex,
	publisher events.Publisher,
	logger *slog.Logger,
) *LibraryService {
	return &LibraryService{
		store:       s,
		catalog:     catalog,
		progression: progression,
		notes:       newNoteWriter(s, progression, index, publisher, logger),
		logger:      logger,
	}
}

// AddVolumeRequest adds a remote volume to the collection.
type AddVolumeRequest struct {
	ProviderID string            `json:"provider_id" validate:"required"`
	Status     domain.ReadStatus `json:"status" validate:"omitempty,read_status"`
	Rating     float64           `json:"rating" validate:"omitempty,star_rating"`
}

// AddVolume stores a remote volume in the user's collection. The catalog
// entry is materialized from the provider on first use. Adding a book
// already in the collection is a conflict.
func (s *LibraryService) AddVolume(ctx context.Context, userID string, req AddVolumeRequest) (*domain.CollectionItem, error) {
	req.ProviderID = strings.TrimSpace(req.ProviderID)
	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	if req.Status == "" {
		req.Status = domain.StatusNotStarted
	}

	existing, detail, err := s.catalog.lookupOrFetch(ctx, req.ProviderID)
	if err != nil {
		return nil, err
	}

	unlock := s.progression.Lock(userID)
	defer unlock()

	now := s.progression.now()
	var (
		item     *domain.CollectionItem
		progress *Progress
	)
	err = s.store.WithTx(ctx, func(tx store.Store) error {
		entry := existing
		if entry == nil {
			var err error
			entry, err = materialize(ctx, tx, detail, now)
			if err != nil {
				return err
			}
		}

		a, err := newAssociation(userID, entry.ID, now)
		if err != nil {
			return err
		}
		a.Rating = req.Rating
		finished := a.SetStatus(req.Status, now)
		if err := tx.CreateAssociation(ctx, a); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return domainerrors.Conflict("book is already in your collection")
			}
			return fmt.Errorf("create association: %w", err)
		}
		item = &domain.CollectionItem{Association: a, Entry: entry}

		if finished {
			progress, err = s.progression.Award(ctx, tx, userID, now, domain.ActivityBookFinished)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.progression.Announce(ctx, progress)
	return item, nil
}

// materialize stores the entry for a volume, or returns the one a
// concurrent request stored first.
func materialize(ctx context.Context, tx store.Store, detail *domain.VolumeDetail, now time.Time) (*domain.CatalogEntry, error) {
	if e, err := tx.GetEntryByProviderID(ctx, detail.ProviderID); err == nil {
		return e, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("get entry: %w", err)
	}

	entryID, err := id.Generate(id.PrefixEntry)
	if err != nil {
		return nil, fmt.Errorf("generate entry ID: %w", err)
	}
	entry := detail.Entry()
	entry.ID = entryID
	entry.InitTimestamps(now)
	if err := tx.CreateEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("create entry: %w", err)
	}
	return entry, nil
}

func newAssociation(userID, entryID string, now time.Time) (*domain.Association, error) {
	assocID, err := id.Generate(id.PrefixAssociation)
	if err != nil {
		return nil, fmt.Errorf("generate association ID: %w", err)
	}
	a := &domain.Association{
		UserID:  userID,
		EntryID: entryID,
		Status:  domain.StatusNotStarted,
	}
	a.ID = assocID
	a.InitTimestamps(now)
	return a, nil
}

// ListCollectionRequest filters and orders a collection listing.
type ListCollectionRequest struct {
	Sort     string
	Statuses []domain.ReadStatus
	Limit    int
	Offset   int
}

// ListCollection lists the user's books. Unknown sort names list newest first.
func (s *LibraryService) ListCollection(ctx context.Context, userID string, req ListCollectionRequest) ([]*domain.CollectionItem, error) {
	for _, st := range req.Statuses {
		if !st.Valid() {
			return nil, domainerrors.InvalidArgumentf("unknown read status %q", st)
		}
	}
	limit, offset := clampPage(req.Limit, req.Offset, defaultCollectionLimit, maxCollectionLimit)

	items, err := s.store.ListAssociations(ctx, userID, store.AssociationFilter{
		Statuses: req.Statuses,
		Sort:     domain.ParseCollectionSort(req.Sort),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list collection: %w", err)
	}
	return items, nil
}

// ChangeStatus sets the read status of a book in the user's collection.
// The first time a book reaches FINISHED it earns experience.
func (s *LibraryService) ChangeStatus(ctx context.Context, userID, associationID string, status domain.ReadStatus) (*domain.Association, error) {
	if !status.Valid() {
		return nil, domainerrors.InvalidArgumentf("unknown read status %q", status)
	}

	unlock := s.progression.Lock(userID)
	defer unlock()

	now := s.progression.now()
	var (
		a        *domain.Association
		progress *Progress
	)
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		var err error
		a, err = ownedAssociation(ctx, tx, userID, associationID)
		if err != nil {
			return err
		}
		finished := a.SetStatus(status, now)
		if err := tx.UpdateAssociation(ctx, a); err != nil {
			return fmt.Errorf("update association: %w", err)
		}
		if finished {
			progress, err = s.progression.Award(ctx, tx, userID, now, domain.ActivityBookFinished)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.progression.Announce(ctx, progress)
	if progress != nil {
		publish(ctx, s.notes.publisher, s.logger, events.Event{
			Type:       events.TypeBookFinished,
			UserID:     userID,
			OccurredAt: now,
			Data:       map[string]string{"association_id": a.ID, "entry_id": a.EntryID},
		})
	}
	return a, nil
}

// SetRating rates a book in the user's collection, 0.5 to 5.0 in half steps.
func (s *LibraryService) SetRating(ctx context.Context, userID, associationID string, rating float64) (*domain.Association, error) {
	if !domain.ValidStarRating(rating) {
		return nil, domainerrors.InvalidArgument("rating must be between 0.5 and 5.0 in steps of 0.5")
	}
	return s.updateRating(ctx, userID, associationID, rating)
}

// DeleteRating clears the rating of a book in the user's collection.
func (s *LibraryService) DeleteRating(ctx context.Context, userID, associationID string) (*domain.Association, error) {
	return s.updateRating(ctx, userID, associationID, 0)
}

func (s *LibraryService) updateRating(ctx context.Context, userID, associationID string, rating float64) (*domain.Association, error) {
	var a *domain.Association
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		var err error
		a, err = ownedAssociation(ctx, tx, userID, associationID)
		if err != nil {
			return err
		}
		a.Rating = rating
		a.Touch(s.progression.now())
		if err := tx.UpdateAssociation(ctx, a); err != nil {
			return fmt.Errorf("update association: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Remove deletes a book from the user's collection together with every
// note written on it. Experience already earned is kept.
func (s *LibraryService) Remove(ctx context.Context, userID, associationID string) error {
	var noteIDs []string
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		if _, err := ownedAssociation(ctx, tx, userID, associationID); err != nil {
			return err
		}
		var err error
		noteIDs, err = tx.ListNoteIDsByAssociation(ctx, associationID)
		if err != nil {
			return fmt.Errorf("list notes: %w", err)
		}
		if _, err := tx.DeleteNotesByAssociation(ctx, associationID); err != nil {
			return fmt.Errorf("delete notes: %w", err)
		}
		if err := tx.DeleteAssociation(ctx, associationID); err != nil {
			return fmt.Errorf("delete association: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	unindex(s.notes.index, s.logger, noteIDs)
	s.logger.Info("book removed from collection", "user_id", userID, "association_id", associationID, "notes", len(noteIDs))
	return nil
}

// CustomBookRequest creates a book that is not in the remote catalog.
type CustomBookRequest struct {
	Title     string            `json:"title" validate:"required,max=200"`
	Author    string            `json:"author" validate:"max=200"`
	PageCount int               `json:"page_count" validate:"gte=0"`
	Publisher string            `json:"publisher" validate:"max=200"`
	CoverURL  string            `json:"cover_url" validate:"omitempty,max=2048"`
	Status    domain.ReadStatus `json:"status" validate:"omitempty,read_status"`
}

// UpdateCustomBookRequest changes a custom book. Absent fields are kept.
type UpdateCustomBookRequest struct {
	Title     *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Author    *string `json:"author,omitempty" validate:"omitempty,max=200"`
	PageCount *int    `json:"page_count,omitempty" validate:"omitempty,gte=0"`
	Publisher *string `json:"publisher,omitempty" validate:"omitempty,max=200"`
	CoverURL  *string `json:"cover_url,omitempty" validate:"omitempty,max=2048"`
}

// CreateCustomBook stores a custom entry and puts it in the creator's
// collection in one transaction.
func (s *LibraryService) CreateCustomBook(ctx context.Context, userID string, req CustomBookRequest) (*domain.CollectionItem, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Author = strings.TrimSpace(req.Author)
	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	if req.Status == "" {
		req.Status = domain.StatusNotStarted
	}

	entryID, err := id.Generate(id.PrefixEntry)
	if err != nil {
		return nil, fmt.Errorf("generate entry ID: %w", err)
	}
	now := s.progression.now()
	entry := &domain.CatalogEntry{
		CreatedUserID: userID,
		Title:         req.Title,
		Author:        req.Author,
		PageCount:     req.PageCount,
		Publisher:     req.Publisher,
		CoverURL:      req.CoverURL,
		Genre:         domain.GenreOthers,
	}
	entry.ID = entryID
	entry.InitTimestamps(now)

	unlock := s.progression.Lock(userID)
	defer unlock()

	var (
		item     *domain.CollectionItem
		progress *Progress
	)
	err = s.store.WithTx(ctx, func(tx store.Store) error {
		if err := tx.CreateEntry(ctx, entry); err != nil {
			return fmt.Errorf("create entry: %w", err)
		}
		a, err := newAssociation(userID, entry.ID, now)
		if err != nil {
			return err
		}
		finished := a.SetStatus(req.Status, now)
		if err := tx.CreateAssociation(ctx, a); err != nil {
			return fmt.Errorf("create association: %w", err)
		}
		item = &domain.CollectionItem{Association: a, Entry: entry}
		if finished {
			progress, err = s.progression.Award(ctx, tx, userID, now, domain.ActivityBookFinished)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.progression.Announce(ctx, progress)
	return item, nil
}

// customEntry loads an entry and checks that it is a custom book.
func customEntry(ctx context.Context, tx store.Store, entryID string) (*domain.CatalogEntry, error) {
	e, err := tx.GetEntry(ctx, entryID)
	if err != nil {
		return nil, translate(err, "get entry", "custom book not found")
	}
	if !e.IsCustom() {
		return nil, domainerrors.NotFound("custom book not found")
	}
	return e, nil
}

// GetCustomBook returns a custom book in the user's collection.
func (s *LibraryService) GetCustomBook(ctx context.Context, userID, entryID string) (*domain.CollectionItem, error) {
	e, err := customEntry(ctx, s.store, entryID)
	if err != nil {
		return nil, err
	}
	a, err := s.store.GetAssociationByUserAndEntry(ctx, userID, entryID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.Unauthorized("custom book is not in your collection")
	}
	if err != nil {
		return nil, fmt.Errorf("get association: %w", err)
	}
	return &domain.CollectionItem{Association: a, Entry: e}, nil
}

// UpdateCustomBook changes a custom book. Only its creator may.
func (s *LibraryService) UpdateCustomBook(ctx context.Context, userID, entryID string, req UpdateCustomBookRequest) (*domain.CatalogEntry, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	req.Title = trimmed(req.Title)
	req.Author = trimmed(req.Author)
	if req.Title != nil && *req.Title == "" {
		return nil, domainerrors.InvalidArgument("title must not be empty")
	}

	var (
		e       *domain.CatalogEntry
		changed bool
	)
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		var err error
		e, err = customEntry(ctx, tx, entryID)
		if err != nil {
			return err
		}
		if e.CreatedUserID != userID {
			return domainerrors.Unauthorized("only the creator can change a custom book")
		}

		changed = domain.CustomEntryPatch{
			Title:     req.Title,
			Author:    req.Author,
			PageCount: req.PageCount,
			Publisher: req.Publisher,
			CoverURL:  req.CoverURL,
		}.Apply(e)
		if !changed {
			return nil
		}
		e.Touch(s.progression.now())
		return translate(tx.UpdateEntry(ctx, e), "update entry", "custom book not found")
	})
	if err != nil {
		return nil, err
	}

	if changed {
		// Book title and author are part of every note document on it.
		a, err := s.store.GetAssociationByUserAndEntry(ctx, userID, entryID)
		if err == nil {
			if _, err := s.notes.reindexAssociation(ctx, a.ID); err != nil {
				s.logger.Warn("failed to reindex notes after book change", "entry_id", entryID, "error", err)
			}
		}
	}
	return e, nil
}

// SearchCustomBooks matches the keyword literally against the title and
// author of the user's custom books, newest first.
func (s *LibraryService) SearchCustomBooks(ctx context.Context, userID, keyword string, limit, offset int) ([]*domain.CatalogEntry, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, domainerrors.InvalidArgument("keyword is required")
	}
	limit, offset = clampPage(limit, offset, defaultSearchLimit, maxSearchLimit)
	entries, err := s.store.SearchCustomEntries(ctx, userID, keyword, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("search custom books: %w", err)
	}
	return entries, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
