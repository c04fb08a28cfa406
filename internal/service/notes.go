package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/seohyun-lee/bookduck-backend/internal/domain"
	domainerrors "github.com/seohyun-lee/bookduck-backend/internal/errors"
	"github.com/seohyun-lee/bookduck-backend/internal/events"
	"github.com/seohyun-lee/bookduck-backend/internal/id"
	"github.com/seohyun-lee/bookduck-backend/internal/store"
)

// noteWriter holds what one-line notes and archives share: ownership
// checks, progression awards and keeping the index in step with commits.
type noteWriter struct {
	store       store.Store
	progression *ProgressionService
	index       NoteIndex
	publisher   events.Publisher
	logger      *slog.Logger
}

func newNoteWriter(s store.Store, progression *ProgressionService, index NoteIndex, publisher events.Publisher, logger *slog.Logger) noteWriter {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return noteWriter{
		store:       s,
		progression: progression,
		index:       index,
		publisher:   publisher,
		logger:      logger,
	}
}

// ownedAssociation loads an association and checks that userID owns it.
func ownedAssociation(ctx context.Context, tx store.Store, userID, associationID string) (*domain.Association, error) {
	a, err := tx.GetAssociation(ctx, associationID)
	if err != nil {
		return nil, translate(err, "get association", "book not found in collection")
	}
	if a.UserID != userID {
		return nil, domainerrors.Unauthorized("book is in another user's collection")
	}
	return a, nil
}

// ownedNote loads a note of one of kinds and checks that userID wrote it.
// A note of another kind does not exist as far as the caller is concerned.
func ownedNote(ctx context.Context, tx store.Store, userID, noteID string, kinds ...domain.NoteKind) (*domain.Note, error) {
	n, err := tx.GetNote(ctx, noteID)
	if err != nil {
		return nil, translate(err, "get note", "note not found")
	}
	if !slices.Contains(kinds, n.Kind) {
		return nil, domainerrors.NotFound("note not found")
	}
	if n.AuthorID != userID {
		return nil, domainerrors.Unauthorized("note belongs to another user")
	}
	return n, nil
}

func newNote(kind domain.NoteKind, userID, associationID, content string, visibility domain.Visibility, now time.Time) (*domain.Note, error) {
	noteID, err := id.Generate(id.PrefixNote)
	if err != nil {
		return nil, fmt.Errorf("generate note ID: %w", err)
	}
	n := &domain.Note{
		Kind:          kind,
		AuthorID:      userID,
		AssociationID: associationID,
		Content:       strings.TrimSpace(content),
		Visibility:    visibility,
	}
	n.ID = noteID
	n.InitTimestamps(now)
	n.ApplyDefaults()
	return n, nil
}

// create stores notes on one association in a single transaction and
// awards progression for them. A note earns experience only when it is
// the first of its kind on the association.
func (w *noteWriter) create(ctx context.Context, userID, associationID string, notes ...*domain.Note) ([]*domain.NoteView, *Progress, error) {
	unlock := w.progression.Lock(userID)
	defer unlock()

	now := w.progression.now()
	var progress *Progress
	err := w.store.WithTx(ctx, func(tx store.Store) error {
		if _, err := ownedAssociation(ctx, tx, userID, associationID); err != nil {
			return err
		}

		var activities []domain.Activity
		for _, n := range notes {
			prior, err := tx.CountNotes(ctx, associationID, n.Kind)
			if err != nil {
				return fmt.Errorf("count notes: %w", err)
			}
			if err := tx.CreateNote(ctx, n); err != nil {
				if errors.Is(err, store.ErrAlreadyExists) {
					return domainerrors.Conflict("a one-line note already exists for this book")
				}
				return fmt.Errorf("create note: %w", err)
			}
			if prior == 0 {
				activities = append(activities, domain.ActivityForNote(n.Kind))
			}
		}

		var err error
		progress, err = w.progression.Award(ctx, tx, userID, now, activities...)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	w.progression.Announce(ctx, progress)

	ids := make([]string, len(notes))
	evs := make([]events.Event, len(notes))
	for i, n := range notes {
		ids[i] = n.ID
		evs[i] = events.Event{
			Type:       events.TypeNoteCreated,
			UserID:     userID,
			OccurredAt: now,
			Data:       map[string]string{"note_id": n.ID, "kind": string(n.Kind)},
		}
	}
	publish(ctx, w.publisher, w.logger, evs...)

	views, err := w.reindex(ctx, ids...)
	if err != nil {
		return nil, nil, err
	}
	return views, progress, nil
}

// update applies a patch to a note the user wrote.
func (w *noteWriter) update(ctx context.Context, userID, noteID string, patch domain.NotePatch, kinds ...domain.NoteKind) (*domain.NoteView, error) {
	if patch.Content != nil {
		trimmed := strings.TrimSpace(*patch.Content)
		if trimmed == "" {
			return nil, domainerrors.InvalidArgument("content must not be empty")
		}
		patch.Content = &trimmed
	}

	err := w.store.WithTx(ctx, func(tx store.Store) error {
		n, err := ownedNote(ctx, tx, userID, noteID, kinds...)
		if err != nil {
			return err
		}
		patch.Apply(n)
		n.Touch(w.progression.now())
		return translate(tx.UpdateNote(ctx, n), "update note", "note not found")
	})
	if err != nil {
		return nil, err
	}

	views, err := w.reindex(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, domainerrors.NotFound("note not found")
	}
	return views[0], nil
}

// delete removes a note the user wrote. Experience already earned is kept.
func (w *noteWriter) delete(ctx context.Context, userID, noteID string, kinds ...domain.NoteKind) error {
	err := w.store.WithTx(ctx, func(tx store.Store) error {
		if _, err := ownedNote(ctx, tx, userID, noteID, kinds...); err != nil {
			return err
		}
		return translate(tx.DeleteNote(ctx, noteID), "delete note", "note not found")
	})
	if err != nil {
		return err
	}

	unindex(w.index, w.logger, []string{noteID})
	publish(ctx, w.publisher, w.logger, events.Event{
		Type:       events.TypeNoteDeleted,
		UserID:     userID,
		OccurredAt: w.progression.now(),
		Data:       map[string]string{"note_id": noteID},
	})
	return nil
}

// reindex loads the committed notes and writes them to the index. It
// returns the views in the order of ids. Index failures are logged; the
// store stays the source of truth and a reindex repairs the index.
func (w *noteWriter) reindex(ctx context.Context, ids ...string) ([]*domain.NoteView, error) {
	byID, err := w.store.GetNoteViews(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get note views: %w", err)
	}
	views := make([]*domain.NoteView, 0, len(ids))
	for _, noteID := range ids {
		v, ok := byID[noteID]
		if !ok {
			continue
		}
		views = append(views, v)
		if err := w.index.IndexNotes(v); err != nil {
			w.logger.Error("failed to index note", "note_id", noteID, "error", err)
		}
	}
	return views, nil
}

// reindexAssociation rewrites the index documents of every note on an
// association.
func (w *noteWriter) reindexAssociation(ctx context.Context, associationID string) (int, error) {
	ids, err := w.store.ListNoteIDsByAssociation(ctx, associationID)
	if err != nil {
		return 0, fmt.Errorf("list notes: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}
	views, err := w.reindex(ctx, ids...)
	return len(views), err
}
