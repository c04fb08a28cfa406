package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNote_ApplyDefaults(t *testing.T) {
	review := &Note{Kind: NoteKindReview}
	review.ApplyDefaults()
	assert.Equal(t, VisibilityPublic, review.Visibility)
	assert.Equal(t, DefaultReviewColor, review.Color)

	excerpt := &Note{Kind: NoteKindExcerpt, Visibility: VisibilityPrivate}
	excerpt.ApplyDefaults()
	assert.Equal(t, VisibilityPrivate, excerpt.Visibility)
	assert.Empty(t, excerpt.Color)
}

func TestNote_VisibleTo(t *testing.T) {
	for _, v := range []Visibility{VisibilityPrivate, VisibilityFriendOnly, VisibilityPublic} {
		n := &Note{AuthorID: "user-a", Visibility: v}
		assert.True(t, n.VisibleTo("user-a"), "author sees %s", v)
		assert.Equal(t, v != VisibilityPrivate, n.VisibleTo("user-b"), "other sees %s", v)
	}
}

func TestNotePatch_Apply(t *testing.T) {
	n := &Note{Kind: NoteKindExcerpt, Content: "old"}
	content := "new"
	title := "ignored for excerpts"
	page := 42

	NotePatch{Content: &content, Title: &title, PageNumber: &page}.Apply(n)

	assert.Equal(t, "new", n.Content)
	assert.Empty(t, n.Title)
	require.NotNil(t, n.PageNumber)
	assert.Equal(t, 42, *n.PageNumber)
}

func TestNewCard(t *testing.T) {
	base := NoteView{
		Book:           BookRef{EntryID: "book-1", Title: "Dune"},
		AuthorNickname: "duck",
		AuthorRating:   4.5,
	}

	tests := []struct {
		kind NoteKind
		want CardType
	}{
		{NoteKindOneLine, CardOneLine},
		{NoteKindReview, CardReview},
		{NoteKindExcerpt, CardExcerpt},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			v := base
			v.Note = &Note{Timestamps: Timestamps{ID: "note-1"}, Kind: tt.kind, Content: "text", Title: "t", Color: "#000000"}

			card := NewCard(&v)
			assert.Equal(t, tt.want, card.CardType())
			assert.Equal(t, "note-1", card.CardNoteID())

			data, err := json.Marshal(card)
			require.NoError(t, err)
			var m map[string]any
			require.NoError(t, json.Unmarshal(data, &m))
			assert.Equal(t, string(tt.want), m["type"])
		})
	}

	oneline, ok := NewCard(&NoteView{Note: &Note{Kind: NoteKindOneLine}}).(OneLineCard)
	require.True(t, ok)
	assert.False(t, oneline.Rating.Present())
}
