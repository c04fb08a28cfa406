package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/seohyun-lee/bookduck-backend/internal/domain"
	domainerrors "github.com/seohyun-lee/bookduck-backend/internal/errors"
	"github.com/seohyun-lee/bookduck-backend/internal/events"
	"github.com/seohyun-lee/bookduck-backend/internal/search"
	"github.com/seohyun-lee/bookduck-backend/internal/store"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
	reindexBatch       = 500
)

var archiveKinds = []domain.NoteKind{domain.NoteKindExcerpt, domain.NoteKindReview}

// ArchiveService manages excerpts and reviews and searches notes.
type ArchiveService struct {
	notes noteWriter
}

// NewArchiveService creates an archive service.
func NewArchiveService(s store.Store, progression *ProgressionService, index NoteIndex, publisher events.Publisher, logger *slog.Logger) *ArchiveService {
	return &ArchiveService{notes: newNoteWriter(s, progression, index, publisher, logger)}
}

// ExcerptInput is the excerpt part of an archive request.
type ExcerptInput struct {
	Content    string            `json:"content" validate:"required,max=5000"`
	PageNumber *int              `json:"page_number,omitempty" validate:"omitempty,gte=0"`
	Visibility domain.Visibility `json:"visibility" validate:"omitempty,visibility"`
}

// ReviewInput is the review part of an archive request.
type ReviewInput struct {
	Title      string            `json:"title" validate:"max=100"`
	Content    string            `json:"content" validate:"required,max=5000"`
	Color      string            `json:"color" validate:"omitempty,hexcolor"`
	Visibility domain.Visibility `json:"visibility" validate:"omitempty,visibility"`
}

// CreateArchiveRequest adds an excerpt, a review or both to a book.
type CreateArchiveRequest struct {
	AssociationID string        `json:"association_id" validate:"required"`
	Excerpt       *ExcerptInput `json:"excerpt,omitempty"`
	Review        *ReviewInput  `json:"review,omitempty"`
}

// ArchiveResult is what an archive request created.
type ArchiveResult struct {
	Excerpt *domain.ExcerptCard `json:"excerpt,omitempty"`
	Review  *domain.ReviewCard  `json:"review,omitempty"`
}

// UpdateArchiveRequest changes an excerpt or review. Fields that do not
// apply to the note's kind are ignored.
type UpdateArchiveRequest struct {
	Content    *string            `json:"content,omitempty" validate:"omitempty,max=5000"`
	Visibility *domain.Visibility `json:"visibility,omitempty" validate:"omitempty,visibility"`
	Title      *string            `json:"title,omitempty" validate:"omitempty,max=100"`
	Color      *string            `json:"color,omitempty" validate:"omitempty,hexcolor"`
	PageNumber *int               `json:"page_number,omitempty" validate:"omitempty,gte=0"`
}

// Create stores the excerpt and review of a request in one transaction.
func (s *ArchiveService) Create(ctx context.Context, userID string, req CreateArchiveRequest) (*ArchiveResult, error) {
	if req.Excerpt == nil && req.Review == nil {
		return nil, domainerrors.InvalidArgument("an excerpt or a review is required")
	}
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	now := s.notes.progression.now()
	var notes []*domain.Note
	if in := req.Excerpt; in != nil {
		n, err := newNote(domain.NoteKindExcerpt, userID, req.AssociationID, in.Content, in.Visibility, now)
		if err != nil {
			return nil, err
		}
		if in.PageNumber != nil {
			page := *in.PageNumber
			n.PageNumber = &page
		}
		notes = append(notes, n)
	}
	if in := req.Review; in != nil {
		n, err := newNote(domain.NoteKindReview, userID, req.AssociationID, in.Content, in.Visibility, now)
		if err != nil {
			return nil, err
		}
		n.Title = in.Title
		if in.Color != "" {
			n.Color = in.Color
		}
		notes = append(notes, n)
	}

	views, _, err := s.notes.create(ctx, userID, req.AssociationID, notes...)
	if err != nil {
		return nil, err
	}

	result := &ArchiveResult{}
	for _, v := range views {
		switch c := domain.NewCard(v).(type) {
		case domain.ExcerptCard:
			result.Excerpt = &c
		case domain.ReviewCard:
			result.Review = &c
		}
	}
	return result, nil
}

// Get returns an excerpt or review. Another user's private note is
// reported as not found.
func (s *ArchiveService) Get(ctx context.Context, userID, noteID string) (domain.Card, error) {
	v, err := s.notes.store.GetNoteView(ctx, noteID)
	if err != nil {
		return nil, translate(err, "get note", "note not found")
	}
	if v.Note.Kind == domain.NoteKindOneLine || !v.Note.VisibleTo(userID) {
		return nil, domainerrors.NotFound("note not found")
	}
	return domain.NewCard(v), nil
}

// Update changes an excerpt or review the user wrote.
func (s *ArchiveService) Update(ctx context.Context, userID, noteID string, req UpdateArchiveRequest) (domain.Card, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	v, err := s.notes.update(ctx, userID, noteID, domain.NotePatch{
		Content:    req.Content,
		Visibility: req.Visibility,
		Title:      req.Title,
		Color:      req.Color,
		PageNumber: req.PageNumber,
	}, archiveKinds...)
	if err != nil {
		return nil, err
	}
	return domain.NewCard(v), nil
}

// Delete removes an excerpt or review the user wrote.
func (s *ArchiveService) Delete(ctx context.Context, userID, noteID string) error {
	return s.notes.delete(ctx, userID, noteID, archiveKinds...)
}

// SearchRequest is a note search.
type SearchRequest struct {
	Keyword string
	OrderBy string
	Limit   int
	Offset  int
}

// SearchResult is a page of note cards.
type SearchResult struct {
	Total uint64        `json:"total"`
	Cards []domain.Card `json:"cards"`
}

// Search finds notes matching the keyword among the user's own notes and
// other users' shared notes. Keyword syntax is taken literally.
//
// Hits are loaded from the store and checked against the visibility rule
// again, so a note made private or deleted since it was indexed is dropped.
func (s *ArchiveService) Search(ctx context.Context, userID string, req SearchRequest) (*SearchResult, error) {
	limit, offset := clampPage(req.Limit, req.Offset, defaultSearchLimit, maxSearchLimit)

	res, err := s.notes.index.Search(ctx, search.Params{
		Keyword:  req.Keyword,
		ViewerID: userID,
		Order:    search.ParseOrder(req.OrderBy),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return nil, fmt.Errorf("search notes: %w", err)
	}

	ids := make([]string, len(res.Hits))
	for i, h := range res.Hits {
		ids[i] = h.ID
	}
	views, err := s.notes.store.GetNoteViews(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get note views: %w", err)
	}

	cards := make([]domain.Card, 0, len(ids))
	var stale []string
	for _, noteID := range ids {
		v, ok := views[noteID]
		if !ok {
			stale = append(stale, noteID)
			continue
		}
		if !v.Note.VisibleTo(userID) {
			continue
		}
		cards = append(cards, domain.NewCard(v))
	}
	if len(stale) > 0 {
		s.notes.logger.Warn("search returned notes missing from the store", "count", len(stale))
		unindex(s.notes.index, s.notes.logger, stale)
	}

	return &SearchResult{Total: res.Total, Cards: cards}, nil
}

// Reindex writes every stored note to the index and returns how many were
// indexed.
func (s *ArchiveService) Reindex(ctx context.Context) (int, error) {
	var (
		total int
		after string
	)
	for {
		views, err := s.notes.store.ListNoteViewsAfter(ctx, after, reindexBatch)
		if err != nil {
			return total, fmt.Errorf("list notes: %w", err)
		}
		if len(views) == 0 {
			break
		}
		if err := s.notes.index.IndexNotes(views...); err != nil {
			return total, fmt.Errorf("index notes: %w", err)
		}
		total += len(views)
		after = views[len(views)-1].Note.ID

		if err := ctx.Err(); err != nil {
			return total, err
		}
	}
	s.notes.logger.Info("notes reindexed", "count", total)
	return total, nil
}
