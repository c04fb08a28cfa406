package service

import (
	"context"
	"log/slog"

	"github.com/seohyun-lee/bookduck-backend/internal/domain"
	"github.com/seohyun-lee/bookduck-backend/internal/events"
	"github.com/seohyun-lee/bookduck-backend/internal/store"
)

// OneLineService manages one-line notes: at most one per book in a
// user's collection.
type OneLineService struct {
	notes noteWriter
}

// NewOneLineService creates a one-line note service.
func NewOneLineService(s store.Store, progression *ProgressionService, index NoteIndex, publisher events.Publisher, logger *slog.Logger) *OneLineService {
	return &OneLineService{notes: newNoteWriter(s, progression, index, publisher, logger)}
}

// CreateOneLineRequest is a new one-line note.
type CreateOneLineRequest struct {
	AssociationID string            `json:"association_id" validate:"required"`
	Content       string            `json:"content" validate:"required,max=500"`
	Visibility    domain.Visibility `json:"visibility" validate:"omitempty,visibility"`
}

// UpdateOneLineRequest changes a one-line note. Absent fields are kept.
type UpdateOneLineRequest struct {
	Content    *string            `json:"content,omitempty" validate:"omitempty,max=500"`
	Visibility *domain.Visibility `json:"visibility,omitempty" validate:"omitempty,visibility"`
}

// Create writes the one-line note of a book in the user's collection.
// A second one-line note on the same book is a conflict.
func (s *OneLineService) Create(ctx context.Context, userID string, req CreateOneLineRequest) (domain.Card, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	n, err := newNote(domain.NoteKindOneLine, userID, req.AssociationID, req.Content, req.Visibility, s.notes.progression.now())
	if err != nil {
		return nil, err
	}
	views, _, err := s.notes.create(ctx, userID, req.AssociationID, n)
	if err != nil {
		return nil, err
	}
	return domain.NewCard(views[0]), nil
}

// Update changes a one-line note the user wrote.
func (s *OneLineService) Update(ctx context.Context, userID, noteID string, req UpdateOneLineRequest) (domain.Card, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	v, err := s.notes.update(ctx, userID, noteID, domain.NotePatch{
		Content:    req.Content,
		Visibility: req.Visibility,
	}, domain.NoteKindOneLine)
	if err != nil {
		return nil, err
	}
	return domain.NewCard(v), nil
}

// Delete removes a one-line note the user wrote.
func (s *OneLineService) Delete(ctx context.Context, userID, noteID string) error {
	return s.notes.delete(ctx, userID, noteID, domain.NoteKindOneLine)
}
