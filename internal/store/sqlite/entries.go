package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/seohyun-lee/bookduck-backend/internal/domain"
	"github.com/seohyun-lee/bookduck-backend/internal/store"
)

// entryColumns must match the scan order in scanEntry.
const entryColumns = `id, created_at, updated_at, provider_id, created_user_id, title, author,
	cover_url, page_count, publisher, published_date, description, categories, genre, language`

// entryRow holds the raw columns of one catalog_entries row.
type entryRow struct {
	e             domain.CatalogEntry
	createdAt     string
	updatedAt     string
	providerID    sql.NullString
	createdUserID sql.NullString
	author        sql.NullString
	coverURL      sql.NullString
	publisher     sql.NullString
	publishedDate sql.NullString
	description   sql.NullString
	categories    sql.NullString
	language      sql.NullString
}

func (r *entryRow) dest() []any {
	return []any{
		&r.e.ID, &r.createdAt, &r.updatedAt, &r.providerID, &r.createdUserID, &r.e.Title, &r.author,
		&r.coverURL, &r.e.PageCount, &r.publisher, &r.publishedDate, &r.description, &r.categories,
		&r.e.Genre, &r.language,
	}
}

func (r *entryRow) entry() (*domain.CatalogEntry, error) {
	e := r.e
	var err error
	if e.CreatedAt, err = parseTime(r.createdAt); err != nil {
		return nil, err
	}
	if e.UpdatedAt, err = parseTime(r.updatedAt); err != nil {
		return nil, err
	}

	e.ProviderID = r.providerID.String
	e.CreatedUserID = r.createdUserID.String
	e.Author = r.author.String
	e.CoverURL = r.coverURL.String
	e.Publisher = r.publisher.String
	e.PublishedDate = r.publishedDate.String
	e.Description = r.description.String
	e.Language = r.language.String

	if r.categories.Valid && r.categories.String != "" {
		if err := json.Unmarshal([]byte(r.categories.String), &e.Categories); err != nil {
			return nil, fmt.Errorf("decode categories of %s: %w", e.ID, err)
		}
	}
	return &e, nil
}

func scanEntry(scanner interface{ Scan(dest ...any) error }) (*domain.CatalogEntry, error) {
	var r entryRow
	if err := scanner.Scan(r.dest()...); err != nil {
		return nil, err
	}
	return r.entry()
}

func entryArgs(e *domain.CatalogEntry) ([]any, error) {
	var categories sql.NullString
	if len(e.Categories) > 0 {
		b, err := json.Marshal(e.Categories)
		if err != nil {
			return nil, fmt.Errorf("encode categories: %w", err)
		}
		categories = sql.NullString{String: string(b), Valid: true}
	}
	genre := e.Genre
	if genre == "" {
		genre = domain.GenreOthers
	}
	return []any{
		e.ID,
		formatTime(e.CreatedAt),
		formatTime(e.UpdatedAt),
		nullString(e.ProviderID),
		nullString(e.CreatedUserID),
		e.Title,
		nullString(e.Author),
		nullString(e.CoverURL),
		e.PageCount,
		nullString(e.Publisher),
		nullString(e.PublishedDate),
		nullString(e.Description),
		categories,
		string(genre),
		nullString(e.Language),
	}, nil
}

// CreateEntry inserts a catalog entry. Returns store.ErrAlreadyExists when
// another entry already holds the provider ID.
func (s *Store) CreateEntry(ctx context.Context, entry *domain.CatalogEntry) error {
	args, err := entryArgs(entry)
	if err != nil {
		return err
	}
	_, err = s.q.ExecContext(ctx, `
		INSERT INTO catalog_entries (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	return mapWriteError(err)
}

// GetEntry returns an entry by ID.
func (s *Store) GetEntry(ctx context.Context, id string) (*domain.CatalogEntry, error) {
	e, err := scanEntry(s.q.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM catalog_entries WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return e, err
}

// GetEntryByProviderID returns the entry materialized from a provider volume.
func (s *Store) GetEntryByProviderID(ctx context.Context, providerID string) (*domain.CatalogEntry, error) {
	e, err := scanEntry(s.q.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM catalog_entries WHERE provider_id = ?`, providerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return e, err
}

// GetEntriesByProviderIDs loads many entries in batched queries.
func (s *Store) GetEntriesByProviderIDs(ctx context.Context, providerIDs []string) (map[string]*domain.CatalogEntry, error) {
	result := make(map[string]*domain.CatalogEntry, len(providerIDs))

	for _, batch := range chunk(providerIDs) {
		rows, err := s.q.QueryContext(ctx,
			`SELECT `+entryColumns+` FROM catalog_entries WHERE provider_id IN (`+placeholders(len(batch))+`)`,
			stringArgs(batch)...)
		if err != nil {
			return nil, err
		}

		for rows.Next() {
			e, err := scanEntry(rows)
			if err != nil {
				rows.Close()
				return nil, err
			}
			result[e.ProviderID] = e
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// UpdateEntry writes every mutable column of an entry back.
func (s *Store) UpdateEntry(ctx context.Context, entry *domain.CatalogEntry) error {
	args, err := entryArgs(entry)
	if err != nil {
		return err
	}
	// Drop id and created_at, then append id for the WHERE clause.
	args = append(args[2:], entry.ID)

	res, err := s.q.ExecContext(ctx, `
		UPDATE catalog_entries SET
			updated_at = ?, provider_id = ?, created_user_id = ?, title = ?, author = ?,
			cover_url = ?, page_count = ?, publisher = ?, published_date = ?, description = ?,
			categories = ?, genre = ?, language = ?
		WHERE id = ?`, args...)
	if err != nil {
		return mapWriteError(err)
	}
	return expectOne(res)
}

// likeEscaper makes a keyword match itself literally inside LIKE.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchCustomEntries lists the user's custom entries whose title or author
// contains keyword, newest first.
func (s *Store) SearchCustomEntries(ctx context.Context, userID, keyword string, limit, offset int) ([]*domain.CatalogEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	pattern := "%" + likeEscaper.Replace(strings.TrimSpace(keyword)) + "%"

	rows, err := s.q.QueryContext(ctx, `
		SELECT `+entryColumns+` FROM catalog_entries
		WHERE created_user_id = ?
			AND (title LIKE ? ESCAPE '\' OR author LIKE ? ESCAPE '\')
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`,
		userID, pattern, pattern, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.CatalogEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeleteCustomEntriesByCreator removes the user's custom entries. Entries
// that are still in a collection return store.ErrHasDependents.
func (s *Store) DeleteCustomEntriesByCreator(ctx context.Context, userID string) (int64, error) {
	res, err := s.q.ExecContext(ctx, `DELETE FROM catalog_entries WHERE created_user_id = ?`, userID)
	if err != nil {
		return 0, mapWriteError(err)
	}
	return res.RowsAffected()
}
