package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/seohyun-lee/bookduck-backend/internal/domain"
	"github.com/seohyun-lee/bookduck-backend/internal/store"
)

func TestNote_CreateGetUpdate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := makeTestUser(t, s, "note@example.com")
	e := makeTestEntry(t, s, "vol-1", "One")
	a := makeTestAssociation(t, s, u.ID, e.ID, 4, testNow)

	page := 42
	n := &domain.Note{Kind: domain.NoteKindExcerpt, AuthorID: u.ID, AssociationID: a.ID, Content: "a line", Visibility: domain.VisibilityPrivate, PageNumber: &page}
	n.ID = "note-1"
	n.InitTimestamps(testNow)
	if err := s.CreateNote(ctx, n); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.GetNote(ctx, "note-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.PageNumber == nil || *got.PageNumber != 42 {
		t.Errorf("page number: %v", got.PageNumber)
	}

	content := "edited"
	domain.NotePatch{Content: &content}.Apply(got)
	got.Touch(testNow.Add(time.Minute))
	if err := s.UpdateNote(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}

	view, err := s.GetNoteView(ctx, "note-1")
	if err != nil {
		t.Fatalf("get view: %v", err)
	}
	if view.Note.Content != "edited" {
		t.Errorf("content not updated: %q", view.Note.Content)
	}
	if view.Book.EntryID != e.ID || view.Book.Title != "One" || view.AuthorNickname != "duck" || view.AuthorRating != 4 {
		t.Errorf("unexpected view: %+v", view)
	}

	if err := s.DeleteNote(ctx, "note-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetNoteView(ctx, "note-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestNote_OneOneLinePerAssociation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := makeTestUser(t, s, "oneline@example.com")
	e := makeTestEntry(t, s, "vol-1", "One")
	a := makeTestAssociation(t, s, u.ID, e.ID, 0, testNow)
	makeTestNote(t, s, a, domain.NoteKindOneLine, domain.VisibilityPublic, testNow)

	second := &domain.Note{Kind: domain.NoteKindOneLine, AuthorID: u.ID, AssociationID: a.ID, Content: "again", Visibility: domain.VisibilityPublic}
	second.ID = "note-second"
	second.InitTimestamps(testNow)
	if err := s.CreateNote(ctx, second); !errors.Is(err, store.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	// Reviews are not limited.
	makeTestNote(t, s, a, domain.NoteKindReview, domain.VisibilityPublic, testNow)
	makeTestNote(t, s, a, domain.NoteKindReview, domain.VisibilityPublic, testNow)
	n, err := s.CountNotes(ctx, a.ID, domain.NoteKindReview)
	if err != nil || n != 2 {
		t.Errorf("count reviews: n=%d err=%v", n, err)
	}

	byAssoc, err := s.GetOneLinesByAssociations(ctx, []string{a.ID, "ub-none"})
	if err != nil {
		t.Fatalf("oneline batch: %v", err)
	}
	if len(byAssoc) != 1 || byAssoc[a.ID] == nil {
		t.Errorf("unexpected oneline map: %v", byAssoc)
	}
}

func TestListSharedOneLines(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	me := makeTestUser(t, s, "me@example.com")
	low := makeTestUser(t, s, "low@example.com")
	high := makeTestUser(t, s, "high@example.com")
	hidden := makeTestUser(t, s, "hidden@example.com")
	e := makeTestEntry(t, s, "vol-1", "One")

	makeTestNote(t, s, makeTestAssociation(t, s, me.ID, e.ID, 5, testNow), domain.NoteKindOneLine, domain.VisibilityPublic, testNow)
	lowNote := makeTestNote(t, s, makeTestAssociation(t, s, low.ID, e.ID, 1, testNow), domain.NoteKindOneLine, domain.VisibilityFriendOnly, testNow)
	highNote := makeTestNote(t, s, makeTestAssociation(t, s, high.ID, e.ID, 4.5, testNow), domain.NoteKindOneLine, domain.VisibilityPublic, testNow)
	makeTestNote(t, s, makeTestAssociation(t, s, hidden.ID, e.ID, 5, testNow), domain.NoteKindOneLine, domain.VisibilityPrivate, testNow)

	views, err := s.ListSharedOneLines(ctx, e.ID, me.ID, 10)
	if err != nil {
		t.Fatalf("list shared: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 shared onelines, got %d", len(views))
	}
	if views[0].Note.ID != highNote.ID || views[1].Note.ID != lowNote.ID {
		t.Errorf("expected highest rating first, got %s, %s", views[0].Note.ID, views[1].Note.ID)
	}
}

func TestListNoteViewsAfter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := makeTestUser(t, s, "page@example.com")
	e := makeTestEntry(t, s, "vol-1", "One")
	a := makeTestAssociation(t, s, u.ID, e.ID, 0, testNow)
	for range 5 {
		makeTestNote(t, s, a, domain.NoteKindExcerpt, domain.VisibilityPublic, testNow)
	}

	var (
		seen  int
		after string
	)
	for {
		page, err := s.ListNoteViewsAfter(ctx, after, 2)
		if err != nil {
			t.Fatalf("page: %v", err)
		}
		if len(page) == 0 {
			break
		}
		seen += len(page)
		after = page[len(page)-1].Note.ID
	}
	if seen != 5 {
		t.Errorf("expected to page through 5 notes, saw %d", seen)
	}

	ids, err := s.ListNoteIDsByAuthor(ctx, u.ID)
	if err != nil || len(ids) != 5 {
		t.Fatalf("ids by author: %v %v", ids, err)
	}
	views, err := s.GetNoteViews(ctx, ids[:3])
	if err != nil || len(views) != 3 {
		t.Fatalf("views: %d %v", len(views), err)
	}

	n, err := s.DeleteNotesByAuthor(ctx, u.ID)
	if err != nil || n != 5 {
		t.Errorf("delete by author: n=%d err=%v", n, err)
	}
}
