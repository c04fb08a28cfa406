package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/seohyun-lee/bookduck-backend/internal/domain"
	"github.com/seohyun-lee/bookduck-backend/internal/store"
)

// noteColumns must match the scan order in noteRow.dest.
const noteColumns = `id, created_at, updated_at, kind, author_id, association_id, content,
	visibility, title, color, page_number`

// noteViewJoin selects a note with its book, author nickname and author rating.
var noteViewJoin = `SELECT ` + prefixed(noteColumns, "n") + `,
		e.id, e.title, e.author, e.cover_url, u.nickname, a.rating
	FROM notes n
	JOIN associations a ON a.id = n.association_id
	JOIN catalog_entries e ON e.id = a.entry_id
	JOIN users u ON u.id = n.author_id`

type noteRow struct {
	n          domain.Note
	createdAt  string
	updatedAt  string
	title      sql.NullString
	color      sql.NullString
	pageNumber sql.NullInt64
}

func (r *noteRow) dest() []any {
	return []any{
		&r.n.ID, &r.createdAt, &r.updatedAt, &r.n.Kind, &r.n.AuthorID, &r.n.AssociationID,
		&r.n.Content, &r.n.Visibility, &r.title, &r.color, &r.pageNumber,
	}
}

func (r *noteRow) note() (*domain.Note, error) {
	n := r.n
	var err error
	if n.CreatedAt, err = parseTime(r.createdAt); err != nil {
		return nil, err
	}
	if n.UpdatedAt, err = parseTime(r.updatedAt); err != nil {
		return nil, err
	}
	n.Title = r.title.String
	n.Color = r.color.String
	if r.pageNumber.Valid {
		page := int(r.pageNumber.Int64)
		n.PageNumber = &page
	}
	return &n, nil
}

func scanNote(scanner interface{ Scan(dest ...any) error }) (*domain.Note, error) {
	var r noteRow
	if err := scanner.Scan(r.dest()...); err != nil {
		return nil, err
	}
	return r.note()
}

func scanNoteView(scanner interface{ Scan(dest ...any) error }) (*domain.NoteView, error) {
	var (
		r        noteRow
		v        domain.NoteView
		author   sql.NullString
		coverURL sql.NullString
	)
	dest := append(r.dest(), &v.Book.EntryID, &v.Book.Title, &author, &coverURL, &v.AuthorNickname, &v.AuthorRating)
	if err := scanner.Scan(dest...); err != nil {
		return nil, err
	}
	n, err := r.note()
	if err != nil {
		return nil, err
	}
	v.Note = n
	v.Book.Author = author.String
	v.Book.CoverURL = coverURL.String
	return &v, nil
}

func (s *Store) queryNoteViews(ctx context.Context, query string, args ...any) ([]*domain.NoteView, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []*domain.NoteView
	for rows.Next() {
		v, err := scanNoteView(rows)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

// CreateNote inserts a note. A second one-line note on the same association
// returns store.ErrAlreadyExists.
func (s *Store) CreateNote(ctx context.Context, note *domain.Note) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO notes (`+noteColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		note.ID,
		formatTime(note.CreatedAt),
		formatTime(note.UpdatedAt),
		string(note.Kind),
		note.AuthorID,
		note.AssociationID,
		note.Content,
		string(note.Visibility),
		nullString(note.Title),
		nullString(note.Color),
		nullInt(note.PageNumber),
	)
	return mapWriteError(err)
}

// GetNote returns a note by ID.
func (s *Store) GetNote(ctx context.Context, id string) (*domain.Note, error) {
	n, err := scanNote(s.q.QueryRowContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return n, err
}

// GetNoteView returns a note joined with its book and author.
func (s *Store) GetNoteView(ctx context.Context, id string) (*domain.NoteView, error) {
	v, err := scanNoteView(s.q.QueryRowContext(ctx, noteViewJoin+` WHERE n.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return v, err
}

// GetNoteViews loads many note views in batched queries.
func (s *Store) GetNoteViews(ctx context.Context, ids []string) (map[string]*domain.NoteView, error) {
	result := make(map[string]*domain.NoteView, len(ids))
	for _, batch := range chunk(ids) {
		views, err := s.queryNoteViews(ctx,
			noteViewJoin+` WHERE n.id IN (`+placeholders(len(batch))+`)`,
			stringArgs(batch)...)
		if err != nil {
			return nil, err
		}
		for _, v := range views {
			result[v.Note.ID] = v
		}
	}
	return result, nil
}

// UpdateNote writes the editable fields of a note back.
func (s *Store) UpdateNote(ctx context.Context, note *domain.Note) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE notes SET updated_at = ?, content = ?, visibility = ?, title = ?, color = ?, page_number = ?
		WHERE id = ?`,
		formatTime(note.UpdatedAt),
		note.Content,
		string(note.Visibility),
		nullString(note.Title),
		nullString(note.Color),
		nullInt(note.PageNumber),
		note.ID,
	)
	if err != nil {
		return mapWriteError(err)
	}
	return expectOne(res)
}

// DeleteNote removes a note.
func (s *Store) DeleteNote(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return mapWriteError(err)
	}
	return expectOne(res)
}

// CountNotes counts the notes of one kind attached to an association.
func (s *Store) CountNotes(ctx context.Context, associationID string, kind domain.NoteKind) (int64, error) {
	var n int64
	err := s.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notes WHERE association_id = ? AND kind = ?`,
		associationID, string(kind),
	).Scan(&n)
	return n, err
}

// GetOneLinesByAssociations loads one-line notes for many associations.
func (s *Store) GetOneLinesByAssociations(ctx context.Context, associationIDs []string) (map[string]*domain.Note, error) {
	result := make(map[string]*domain.Note, len(associationIDs))

	for _, batch := range chunk(associationIDs) {
		args := append([]any{string(domain.NoteKindOneLine)}, stringArgs(batch)...)
		rows, err := s.q.QueryContext(ctx,
			`SELECT `+noteColumns+` FROM notes
			WHERE kind = ? AND association_id IN (`+placeholders(len(batch))+`)`,
			args...)
		if err != nil {
			return nil, err
		}

		for rows.Next() {
			n, err := scanNote(rows)
			if err != nil {
				rows.Close()
				return nil, err
			}
			result[n.AssociationID] = n
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// ListSharedOneLines lists shared one-line notes other users wrote on an
// entry, ordered by the author's rating and then by recency.
func (s *Store) ListSharedOneLines(ctx context.Context, entryID, excludeUserID string, limit int) ([]*domain.NoteView, error) {
	if limit <= 0 {
		limit = 10
	}
	args := []any{entryID, string(domain.NoteKindOneLine), excludeUserID}
	for _, v := range domain.SharedVisibilities {
		args = append(args, string(v))
	}
	args = append(args, limit)

	return s.queryNoteViews(ctx, noteViewJoin+`
		WHERE a.entry_id = ? AND n.kind = ? AND n.author_id <> ?
			AND n.visibility IN (`+placeholders(len(domain.SharedVisibilities))+`)
		ORDER BY a.rating DESC, n.created_at DESC, n.id DESC
		LIMIT ?`, args...)
}

func (s *Store) listIDs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListNoteIDsByAssociation returns the IDs of an association's notes.
func (s *Store) ListNoteIDsByAssociation(ctx context.Context, associationID string) ([]string, error) {
	return s.listIDs(ctx, `SELECT id FROM notes WHERE association_id = ? ORDER BY id`, associationID)
}

// DeleteNotesByAssociation removes an association's notes.
func (s *Store) DeleteNotesByAssociation(ctx context.Context, associationID string) (int64, error) {
	res, err := s.q.ExecContext(ctx, `DELETE FROM notes WHERE association_id = ?`, associationID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListNoteIDsByAuthor returns the IDs of a user's notes.
func (s *Store) ListNoteIDsByAuthor(ctx context.Context, userID string) ([]string, error) {
	return s.listIDs(ctx, `SELECT id FROM notes WHERE author_id = ? ORDER BY id`, userID)
}

// DeleteNotesByAuthor removes a user's notes.
func (s *Store) DeleteNotesByAuthor(ctx context.Context, userID string) (int64, error) {
	res, err := s.q.ExecContext(ctx, `DELETE FROM notes WHERE author_id = ?`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListNoteViewsAfter returns up to limit note views with IDs greater than
// afterID, in ID order.
func (s *Store) ListNoteViewsAfter(ctx context.Context, afterID string, limit int) ([]*domain.NoteView, error) {
	if limit <= 0 {
		limit = 500
	}
	return s.queryNoteViews(ctx, noteViewJoin+` WHERE n.id > ? ORDER BY n.id LIMIT ?`, afterID, limit)
}
