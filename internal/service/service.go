// Package service implements the server's use cases on top of the store,
// the remote catalog and the notes index.
//
// Services return domain errors (internal/errors). Store sentinels are
// translated at this layer and never reach handlers.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/seohyun-lee/bookduck-backend/internal/domain"
	domainerrors "github.com/seohyun-lee/bookduck-backend/internal/errors"
	"github.com/seohyun-lee/bookduck-backend/internal/events"
	"github.com/seohyun-lee/bookduck-backend/internal/search"
	"github.com/seohyun-lee/bookduck-backend/internal/store"
	"github.com/seohyun-lee/bookduck-backend/internal/validation"
)

// validate is the shared request validator.
var validate = validation.New()

// NoteIndex is the full-text index of notes.
type NoteIndex interface {
	IndexNotes(views ...*domain.NoteView) error
	RemoveNotes(ids []string) error
	Search(ctx context.Context, p search.Params) (*search.Result, error)
}

// translate converts a store error into a domain error. Errors that are
// not store sentinels are wrapped with op.
func translate(err error, op, notFound string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return domainerrors.NotFound(notFound)
	case errors.Is(err, store.ErrAlreadyExists):
		return domainerrors.Conflict(notFound + " already exists")
	case errors.Is(err, store.ErrInvalidInput):
		return domainerrors.InvalidArgument(err.Error())
	}
	var de *domainerrors.Error
	if errors.As(err, &de) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}

// publish sends events, logging failures. Events describe committed
// changes, so a failed publish never fails the request.
func publish(ctx context.Context, p events.Publisher, logger *slog.Logger, evs ...events.Event) {
	if p == nil || len(evs) == 0 {
		return
	}
	if err := p.Publish(ctx, evs...); err != nil {
		logger.Warn("failed to publish events", "count", len(evs), "type", evs[0].Type, "error", err)
	}
}

// unindex removes notes from the index after their deletion committed.
func unindex(index NoteIndex, logger *slog.Logger, ids []string) {
	if len(ids) == 0 {
		return
	}
	if err := index.RemoveNotes(ids); err != nil {
		logger.Error("failed to remove notes from index", "count", len(ids), "error", err)
	}
}

func clampPage(limit, offset, def, maxLimit int) (int, int) {
	if limit <= 0 {
		limit = def
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

type clock func() time.Time
