package search

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seohyun-lee/bookduck-backend/internal/domain"
)

// setupTestIndex creates a temporary search index for testing.
func setupTestIndex(t *testing.T) *SearchIndex {
	t.Helper()

	index, err := NewSearchIndex(Options{DataPath: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })
	return index
}

var base = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func doc(id, author string, vis domain.Visibility, content string, age time.Duration) *NoteDocument {
	return &NoteDocument{
		ID:         id,
		Kind:       domain.NoteKindReview,
		AuthorID:   author,
		Visibility: vis,
		Content:    content,
		BookTitle:  "Shared Shelf",
		CreatedAt:  base.Add(-age).UnixMilli(),
	}
}

func hitIDs(r *Result) []string {
	ids := make([]string, len(r.Hits))
	for i, h := range r.Hits {
		ids[i] = h.ID
	}
	return ids
}

func TestNewSearchIndex(t *testing.T) {
	index := setupTestIndex(t)
	assert.True(t, index.Created())

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestNewSearchIndex_ReopensExisting(t *testing.T) {
	dir := t.TempDir()
	index, err := NewSearchIndex(Options{DataPath: dir})
	require.NoError(t, err)
	require.NoError(t, index.put([]*NoteDocument{doc("note-1", "user-a", domain.VisibilityPublic, "hello", 0)}))
	require.NoError(t, index.Close())

	reopened, err := NewSearchIndex(Options{DataPath: dir})
	require.NoError(t, err)
	defer reopened.Close()

	assert.False(t, reopened.Created())
	count, err := reopened.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestNewSearchIndex_RecreatesStaleMapping(t *testing.T) {
	dir := t.TempDir()
	index, err := NewSearchIndex(Options{DataPath: dir})
	require.NoError(t, err)
	require.NoError(t, index.put([]*NoteDocument{doc("note-1", "user-a", domain.VisibilityPublic, "hello", 0)}))
	require.NoError(t, index.Close())
	require.NoError(t, os.WriteFile(filepath.Join(dir, versionFile), []byte("0"), 0o644))

	reopened, err := NewSearchIndex(Options{DataPath: dir})
	require.NoError(t, err)
	defer reopened.Close()

	assert.True(t, reopened.Created())
	count, err := reopened.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestIndexNotes(t *testing.T) {
	index := setupTestIndex(t)
	note := &domain.Note{
		Kind:       domain.NoteKindOneLine,
		AuthorID:   "user-a",
		Content:    "a lantern in the fog",
		Visibility: domain.VisibilityPublic,
	}
	note.ID = "note-1"
	note.CreatedAt = base
	require.NoError(t, index.IndexNotes(&domain.NoteView{
		Note: note,
		Book: domain.BookRef{EntryID: "book-1", Title: "Harbor Lights", Author: "Min Park"},
	}))

	for _, kw := range []string{"lantern", "harbor", "park"} {
		res, err := index.Search(context.Background(), Params{Keyword: kw, ViewerID: "user-b"})
		require.NoError(t, err)
		assert.Equal(t, []string{"note-1"}, hitIDs(res), "keyword %q", kw)
	}

	note.Content = "rewritten"
	require.NoError(t, index.IndexNotes(&domain.NoteView{Note: note}))
	res, err := index.Search(context.Background(), Params{Keyword: "lantern", ViewerID: "user-b"})
	require.NoError(t, err)
	assert.Empty(t, hitIDs(res))
}

func TestSearch_VisibilityScope(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.put([]*NoteDocument{
		doc("note-mine-private", "user-me", domain.VisibilityPrivate, "whale ocean", 0),
		doc("note-other-public", "user-other", domain.VisibilityPublic, "whale story", time.Hour),
		doc("note-other-friend", "user-other", domain.VisibilityFriendOnly, "whale song", 2*time.Hour),
		doc("note-other-private", "user-other", domain.VisibilityPrivate, "whale secret", 3*time.Hour),
	}))

	res, err := index.Search(context.Background(), Params{Keyword: "whale", ViewerID: "user-me"})
	require.NoError(t, err)

	ids := hitIDs(res)
	assert.ElementsMatch(t, []string{"note-mine-private", "note-other-public", "note-other-friend"}, ids)
	assert.NotContains(t, ids, "note-other-private")

	res, err = index.Search(context.Background(), Params{Keyword: "whale", ViewerID: "user-other"})
	require.NoError(t, err)
	assert.Contains(t, hitIDs(res), "note-other-private")
	assert.NotContains(t, hitIDs(res), "note-mine-private")
}

func TestSearch_MatchesBookFields(t *testing.T) {
	index := setupTestIndex(t)
	d := doc("note-1", "user-a", domain.VisibilityPublic, "unrelated words", 0)
	d.BookTitle = "Moby Dick"
	d.BookAuthor = "Herman Melville"
	require.NoError(t, index.put([]*NoteDocument{d}))

	res, err := index.Search(context.Background(), Params{Keyword: "melville", ViewerID: "user-b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"note-1"}, hitIDs(res))
}

func TestSearch_LatestOrder(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.put([]*NoteDocument{
		doc("note-old", "user-a", domain.VisibilityPublic, "river river river", 48*time.Hour),
		doc("note-new", "user-a", domain.VisibilityPublic, "river", 0),
		doc("note-mid", "user-a", domain.VisibilityPublic, "river bank", 24*time.Hour),
	}))

	res, err := index.Search(context.Background(), Params{Keyword: "river", ViewerID: "user-a", Order: OrderLatest})
	require.NoError(t, err)
	assert.Equal(t, []string{"note-new", "note-mid", "note-old"}, hitIDs(res))
}

func TestSearch_KeywordSyntaxIsLiteral(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.put([]*NoteDocument{
		doc("note-1", "user-a", domain.VisibilityPublic, "apples and pears", 0),
		doc("note-2", "user-b", domain.VisibilityPrivate, "apples in secret", 0),
	}))
	ctx := context.Background()

	// Unescaped, these would be a field query and a negation.
	for _, kw := range []string{"visibility:PRIVATE", "-apples", "apples +author_id:user-b", `"apples`, "(apples"} {
		res, err := index.Search(ctx, Params{Keyword: kw, ViewerID: "user-a"})
		require.NoError(t, err, "keyword %q", kw)
		assert.NotContains(t, hitIDs(res), "note-2", "keyword %q leaked a private note", kw)
	}
}

func TestSearch_WildcardsAreLiteral(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.put([]*NoteDocument{
		doc("note-1", "user-a", domain.VisibilityPublic, "hello world", 0),
		doc("note-2", "user-b", domain.VisibilityPublic, "C++ rocks", time.Minute),
		doc("note-3", "user-c", domain.VisibilityPublic, "한국어 독서 기록", 2*time.Minute),
	}))
	ctx := context.Background()

	for _, kw := range []string{"*", "?", "hel*", "h?llo", "wor?d", "*orld"} {
		res, err := index.Search(ctx, Params{Keyword: kw, ViewerID: "user-z"})
		require.NoError(t, err, "keyword %q", kw)
		assert.Empty(t, hitIDs(res), "keyword %q expanded as a wildcard", kw)
	}

	res, err := index.Search(ctx, Params{Keyword: "hello~2", ViewerID: "user-z"})
	require.NoError(t, err)
	assert.Equal(t, []string{"note-1"}, hitIDs(res))

	res, err = index.Search(ctx, Params{Keyword: "hello", ViewerID: "user-z"})
	require.NoError(t, err)
	assert.Equal(t, []string{"note-1"}, hitIDs(res))

	res, err = index.Search(ctx, Params{Keyword: "독서", ViewerID: "user-z"})
	require.NoError(t, err)
	assert.Equal(t, []string{"note-3"}, hitIDs(res))
}

func TestSearch_Pagination(t *testing.T) {
	index := setupTestIndex(t)
	var docs []*NoteDocument
	for i, id := range []string{"note-a", "note-b", "note-c", "note-d", "note-e"} {
		docs = append(docs, doc(id, "user-a", domain.VisibilityPublic, "tide", time.Duration(i)*time.Minute))
	}
	require.NoError(t, index.put(docs))

	res, err := index.Search(context.Background(), Params{Keyword: "tide", ViewerID: "user-a", Order: OrderLatest, Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, uint64(5), res.Total)
	assert.Equal(t, []string{"note-c", "note-d"}, hitIDs(res))
}

func TestRemoveNotes(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.put([]*NoteDocument{
		doc("note-1", "user-a", domain.VisibilityPublic, "x", 0),
		doc("note-2", "user-a", domain.VisibilityPublic, "y", 0),
	}))
	require.NoError(t, index.RemoveNotes([]string{"note-1", "note-2"}))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestRebuild(t *testing.T) {
	index := setupTestIndex(t)
	require.NoError(t, index.put([]*NoteDocument{doc("note-1", "user-a", domain.VisibilityPublic, "x", 0)}))
	require.NoError(t, index.Rebuild())

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestNormalizeKeyword(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"  padded  ", "padded"},
		{"two \t words", "two words"},
		{"a:b*", "a:b*"},
		{"\u1100\u1161", "\uAC00"}, // conjoining jamo compose to a precomposed syllable
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeKeyword(tt.in), "input %q", tt.in)
	}
}

func TestParseOrder(t *testing.T) {
	assert.Equal(t, OrderAccuracy, ParseOrder(""))
	assert.Equal(t, OrderAccuracy, ParseOrder("accuracy"))
	assert.Equal(t, OrderAccuracy, ParseOrder("popularity"))
	assert.Equal(t, OrderLatest, ParseOrder("latest"))
	assert.Equal(t, OrderLatest, ParseOrder("createdTime desc"))
	assert.Equal(t, OrderLatest, ParseOrder("createdTime,desc"))
	assert.Equal(t, OrderLatest, ParseOrder("LATEST"))
}
