package sqlite

import (
	"context"

	"github.com/seohyun-lee/bookduck-backend/internal/domain"
)

// InsertUnlock stores a badge unlock unless the user already holds that
// badge for that period. It reports whether a row was created.
func (s *Store) InsertUnlock(ctx context.Context, unlock *domain.BadgeUnlock) (bool, error) {
	res, err := s.q.ExecContext(ctx, `
		INSERT INTO badge_unlocks (id, user_id, badge_id, period, unlocked_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, badge_id, period) DO NOTHING`,
		unlock.ID, unlock.UserID, unlock.BadgeID, unlock.Period, formatTime(unlock.UnlockedAt),
	)
	if err != nil {
		return false, mapWriteError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// HasUnlock reports whether the user holds a badge for a period.
func (s *Store) HasUnlock(ctx context.Context, userID, badgeID, period string) (bool, error) {
	var exists bool
	err := s.q.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM badge_unlocks WHERE user_id = ? AND badge_id = ? AND period = ?
		)`, userID, badgeID, period,
	).Scan(&exists)
	return exists, err
}

// ListUnlocks returns a user's unlocks, oldest first.
func (s *Store) ListUnlocks(ctx context.Context, userID string) ([]*domain.BadgeUnlock, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, user_id, badge_id, period, unlocked_at
		FROM badge_unlocks
		WHERE user_id = ?
		ORDER BY unlocked_at, badge_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var unlocks []*domain.BadgeUnlock
	for rows.Next() {
		var (
			u          domain.BadgeUnlock
			unlockedAt string
		)
		if err := rows.Scan(&u.ID, &u.UserID, &u.BadgeID, &u.Period, &unlockedAt); err != nil {
			return nil, err
		}
		if u.UnlockedAt, err = parseTime(unlockedAt); err != nil {
			return nil, err
		}
		unlocks = append(unlocks, &u)
	}
	return unlocks, rows.Err()
}

// DeleteUnlocksByUser removes all of a user's unlocks.
func (s *Store) DeleteUnlocksByUser(ctx context.Context, userID string) error {
	_, err := s.q.ExecContext(ctx, `DELETE FROM badge_unlocks WHERE user_id = ?`, userID)
	return err
}
