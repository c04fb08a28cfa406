package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/seohyun-lee/bookduck-backend/internal/domain"
	"github.com/seohyun-lee/bookduck-backend/internal/store"
)

// CountActivity counts a user's activity of one kind within [since, until).
// Notes are dated by creation; finished books by their first finish.
func (s *Store) CountActivity(ctx context.Context, userID string, counter domain.Counter, since, until time.Time) (int64, error) {
	var (
		query string
		args  = []any{userID}
	)

	switch counter {
	case domain.CounterOneLines, domain.CounterReviews, domain.CounterExcerpts:
		query = `SELECT COUNT(*) FROM notes WHERE author_id = ? AND kind = ?`
		args = append(args, string(noteKindFor(counter)))
		query, args = withWindow(query, args, "created_at", since, until)
	case domain.CounterFinishedBooks:
		query = `SELECT COUNT(*) FROM associations WHERE user_id = ? AND finished_at IS NOT NULL`
		query, args = withWindow(query, args, "finished_at", since, until)
	default:
		return 0, store.ErrInvalidInput.WithMessage(fmt.Sprintf("unknown counter %q", counter))
	}

	var n int64
	if err := s.q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", counter, err)
	}
	return n, nil
}

func noteKindFor(counter domain.Counter) domain.NoteKind {
	switch counter {
	case domain.CounterReviews:
		return domain.NoteKindReview
	case domain.CounterExcerpts:
		return domain.NoteKindExcerpt
	default:
		return domain.NoteKindOneLine
	}
}

func withWindow(query string, args []any, column string, since, until time.Time) (string, []any) {
	if !since.IsZero() {
		query += " AND " + column + " >= ?"
		args = append(args, formatTime(since))
	}
	if !until.IsZero() {
		query += " AND " + column + " < ?"
		args = append(args, formatTime(until))
	}
	return query, args
}
