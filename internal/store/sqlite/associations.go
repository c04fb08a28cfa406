package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/seohyun-lee/bookduck-backend/internal/domain"
	"github.com/seohyun-lee/bookduck-backend/internal/store"
)

// associationColumns must match the scan order in scanAssociation.
const associationColumns = `id, created_at, updated_at, user_id, entry_id, rating, status, finished_at`

// associationRow holds the raw columns of one associations row.
type associationRow struct {
	a          domain.Association
	createdAt  string
	updatedAt  string
	finishedAt sql.NullString
}

func (r *associationRow) dest() []any {
	return []any{&r.a.ID, &r.createdAt, &r.updatedAt, &r.a.UserID, &r.a.EntryID, &r.a.Rating, &r.a.Status, &r.finishedAt}
}

func (r *associationRow) association() (*domain.Association, error) {
	a := r.a
	var err error
	if a.CreatedAt, err = parseTime(r.createdAt); err != nil {
		return nil, err
	}
	if a.UpdatedAt, err = parseTime(r.updatedAt); err != nil {
		return nil, err
	}
	if a.FinishedAt, err = parseNullableTime(r.finishedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func scanAssociation(scanner interface{ Scan(dest ...any) error }) (*domain.Association, error) {
	var r associationRow
	if err := scanner.Scan(r.dest()...); err != nil {
		return nil, err
	}
	return r.association()
}

// CreateAssociation adds an entry to a user's collection. Returns
// store.ErrAlreadyExists when the user already holds the entry.
func (s *Store) CreateAssociation(ctx context.Context, a *domain.Association) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO associations (`+associationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID,
		formatTime(a.CreatedAt),
		formatTime(a.UpdatedAt),
		a.UserID,
		a.EntryID,
		a.Rating,
		string(a.Status),
		nullTimeString(a.FinishedAt),
	)
	return mapWriteError(err)
}

// GetAssociation returns an association by ID.
func (s *Store) GetAssociation(ctx context.Context, id string) (*domain.Association, error) {
	a, err := scanAssociation(s.q.QueryRowContext(ctx,
		`SELECT `+associationColumns+` FROM associations WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return a, err
}

// GetAssociationByUserAndEntry returns the user's association with an entry.
func (s *Store) GetAssociationByUserAndEntry(ctx context.Context, userID, entryID string) (*domain.Association, error) {
	a, err := scanAssociation(s.q.QueryRowContext(ctx,
		`SELECT `+associationColumns+` FROM associations WHERE user_id = ? AND entry_id = ?`,
		userID, entryID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return a, err
}

// GetAssociationsByUserAndEntries loads the user's associations for many
// entries in batched queries.
func (s *Store) GetAssociationsByUserAndEntries(ctx context.Context, userID string, entryIDs []string) (map[string]*domain.Association, error) {
	result := make(map[string]*domain.Association, len(entryIDs))

	for _, batch := range chunk(entryIDs) {
		args := append([]any{userID}, stringArgs(batch)...)
		rows, err := s.q.QueryContext(ctx,
			`SELECT `+associationColumns+` FROM associations
			WHERE user_id = ? AND entry_id IN (`+placeholders(len(batch))+`)`,
			args...)
		if err != nil {
			return nil, err
		}

		for rows.Next() {
			a, err := scanAssociation(rows)
			if err != nil {
				rows.Close()
				return nil, err
			}
			result[a.EntryID] = a
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// UpdateAssociation writes rating, status and finish time back.
func (s *Store) UpdateAssociation(ctx context.Context, a *domain.Association) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE associations SET updated_at = ?, rating = ?, status = ?, finished_at = ?
		WHERE id = ?`,
		formatTime(a.UpdatedAt), a.Rating, string(a.Status), nullTimeString(a.FinishedAt), a.ID,
	)
	if err != nil {
		return mapWriteError(err)
	}
	return expectOne(res)
}

// DeleteAssociation removes an association. Returns store.ErrHasDependents
// while notes still reference it.
func (s *Store) DeleteAssociation(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM associations WHERE id = ?`, id)
	if err != nil {
		return mapWriteError(err)
	}
	return expectOne(res)
}

// DeleteAssociationsByUser removes every association of a user.
func (s *Store) DeleteAssociationsByUser(ctx context.Context, userID string) (int64, error) {
	res, err := s.q.ExecContext(ctx, `DELETE FROM associations WHERE user_id = ?`, userID)
	if err != nil {
		return 0, mapWriteError(err)
	}
	return res.RowsAffected()
}

var collectionOrder = map[domain.CollectionSort]string{
	domain.SortLatest: "a.created_at DESC, a.id DESC",
	domain.SortTitle:  "e.title COLLATE NOCASE ASC, a.id ASC",
	domain.SortRating: "a.rating DESC, a.created_at DESC, a.id DESC",
}

// ListAssociations lists a user's collection joined with the entries.
func (s *Store) ListAssociations(ctx context.Context, userID string, filter store.AssociationFilter) ([]*domain.CollectionItem, error) {
	var (
		where = []string{"a.user_id = ?"}
		args  = []any{userID}
	)

	if len(filter.Statuses) > 0 {
		where = append(where, "a.status IN ("+placeholders(len(filter.Statuses))+")")
		for _, st := range filter.Statuses {
			args = append(args, string(st))
		}
	}

	order, ok := collectionOrder[filter.Sort]
	if !ok {
		order = collectionOrder[domain.SortLatest]
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = -1
	}
	offset := max(filter.Offset, 0)
	args = append(args, limit, offset)

	rows, err := s.q.QueryContext(ctx, `
		SELECT `+prefixed(associationColumns, "a")+`, `+prefixed(entryColumns, "e")+`
		FROM associations a
		JOIN catalog_entries e ON e.id = a.entry_id
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY `+order+`
		LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*domain.CollectionItem
	for rows.Next() {
		item, err := scanCollectionItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// scanCollectionItem scans associationColumns followed by entryColumns.
func scanCollectionItem(scanner interface{ Scan(dest ...any) error }) (*domain.CollectionItem, error) {
	var (
		ar associationRow
		er entryRow
	)
	if err := scanner.Scan(append(ar.dest(), er.dest()...)...); err != nil {
		return nil, err
	}
	a, err := ar.association()
	if err != nil {
		return nil, err
	}
	e, err := er.entry()
	if err != nil {
		return nil, err
	}
	return &domain.CollectionItem{Association: a, Entry: e}, nil
}

// ListRatingsByEntry returns every user's rating of an entry, unrated
// associations included as zero.
func (s *Store) ListRatingsByEntry(ctx context.Context, entryID string) ([]float64, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT rating FROM associations WHERE entry_id = ?`, entryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ratings []float64
	for rows.Next() {
		var r float64
		if err := rows.Scan(&r); err != nil {
			return nil, err
		}
		ratings = append(ratings, r)
	}
	return ratings, rows.Err()
}

// prefixed qualifies every column in a column list with a table alias.
func prefixed(cols, alias string) string {
	parts := strings.Split(cols, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
