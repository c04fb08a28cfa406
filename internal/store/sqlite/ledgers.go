package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/seohyun-lee/bookduck-backend/internal/domain"
	"github.com/seohyun-lee/bookduck-backend/internal/store"
)

// CreateLedger inserts a user's ledger.
func (s *Store) CreateLedger(ctx context.Context, ledger *domain.Ledger) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO ledgers (user_id, level, exp, updated_at)
		VALUES (?, ?, ?, ?)`,
		ledger.UserID, ledger.Level, ledger.CumulativeExperience, formatTime(ledger.UpdatedAt),
	)
	return mapWriteError(err)
}

// GetLedger returns the ledger of a user.
func (s *Store) GetLedger(ctx context.Context, userID string) (*domain.Ledger, error) {
	var (
		l         domain.Ledger
		updatedAt string
	)
	err := s.q.QueryRowContext(ctx,
		`SELECT user_id, level, exp, updated_at FROM ledgers WHERE user_id = ?`, userID,
	).Scan(&l.UserID, &l.Level, &l.CumulativeExperience, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if l.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

// SaveLedger writes level and experience back. Experience can only grow:
// an update that would lower it matches no row and returns store.ErrInvalidInput.
func (s *Store) SaveLedger(ctx context.Context, ledger *domain.Ledger) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE ledgers SET level = ?, exp = ?, updated_at = ?
		WHERE user_id = ? AND exp <= ?`,
		ledger.Level, ledger.CumulativeExperience, formatTime(ledger.UpdatedAt),
		ledger.UserID, ledger.CumulativeExperience,
	)
	if err != nil {
		return err
	}
	if err := expectOne(res); err != nil {
		if _, getErr := s.GetLedger(ctx, ledger.UserID); getErr != nil {
			return getErr
		}
		return store.ErrInvalidInput.WithMessage("experience cannot decrease")
	}
	return nil
}

// DeleteLedger removes a user's ledger.
func (s *Store) DeleteLedger(ctx context.Context, userID string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM ledgers WHERE user_id = ?`, userID)
	if err != nil {
		return mapWriteError(err)
	}
	return expectOne(res)
}
