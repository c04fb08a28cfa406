// Package search is the full-text index over one-line notes, reviews and
// excerpts, queried with per-viewer visibility.
package search

import "github.com/seohyun-lee/bookduck-backend/internal/domain"

// NoteDocument is the indexed form of a note. Book fields are denormalized
// so a keyword can match the book a note is about.
type NoteDocument struct {
	ID         string
	Kind       domain.NoteKind
	AuthorID   string
	Visibility domain.Visibility
	Content    string
	Title      string
	BookTitle  string
	BookAuthor string
	CreatedAt  int64 // Unix millis
}

// newNoteDocument builds the document for a note view.
func newNoteDocument(v *domain.NoteView) *NoteDocument {
	return &NoteDocument{
		ID:         v.Note.ID,
		Kind:       v.Note.Kind,
		AuthorID:   v.Note.AuthorID,
		Visibility: v.Note.Visibility,
		Content:    v.Note.Content,
		Title:      v.Note.Title,
		BookTitle:  v.Book.Title,
		BookAuthor: v.Book.Author,
		CreatedAt:  v.Note.CreatedAt.UnixMilli(),
	}
}

// ToMap converts the document to a map keyed by the mapped field names.
func (d *NoteDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":         d.ID,
		"kind":       string(d.Kind),
		"author_id":  d.AuthorID,
		"visibility": string(d.Visibility),
		"content":    d.Content,
		"created_at": d.CreatedAt,
	}
	if d.Title != "" {
		m["title"] = d.Title
	}
	if d.BookTitle != "" {
		m["book_title"] = d.BookTitle
	}
	if d.BookAuthor != "" {
		m["book_author"] = d.BookAuthor
	}
	return m
}
