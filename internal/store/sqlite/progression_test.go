package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/seohyun-lee/bookduck-backend/internal/domain"
	"github.com/seohyun-lee/bookduck-backend/internal/store"
)

func TestLedger_SaveAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := makeTestUser(t, s, "ledger@example.com")

	l := domain.NewLedger(u.ID, testNow)
	if err := s.CreateLedger(ctx, l); err != nil {
		t.Fatalf("create ledger: %v", err)
	}
	if err := s.CreateLedger(ctx, l); !errors.Is(err, store.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	l.Level = 3
	l.CumulativeExperience = 320
	l.UpdatedAt = testNow.Add(time.Minute)
	if err := s.SaveLedger(ctx, l); err != nil {
		t.Fatalf("save ledger: %v", err)
	}

	got, err := s.GetLedger(ctx, u.ID)
	if err != nil {
		t.Fatalf("get ledger: %v", err)
	}
	if got.Level != 3 || got.CumulativeExperience != 320 {
		t.Errorf("unexpected ledger: %+v", got)
	}
}

func TestLedger_SaveRefusesDecrease(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := makeTestUser(t, s, "mono@example.com")

	l := domain.NewLedger(u.ID, testNow)
	l.CumulativeExperience = 100
	l.Level = 2
	if err := s.CreateLedger(ctx, l); err != nil {
		t.Fatalf("create ledger: %v", err)
	}

	l.CumulativeExperience = 50
	if err := s.SaveLedger(ctx, l); !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	missing := domain.NewLedger("user-missing", testNow)
	if err := s.SaveLedger(ctx, missing); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestInsertUnlock_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := makeTestUser(t, s, "badge@example.com")

	unlock := &domain.BadgeUnlock{ID: "unlock-1", UserID: u.ID, BadgeID: "oneline-1", UnlockedAt: testNow}
	created, err := s.InsertUnlock(ctx, unlock)
	if err != nil || !created {
		t.Fatalf("first insert: created=%v err=%v", created, err)
	}

	again := &domain.BadgeUnlock{ID: "unlock-2", UserID: u.ID, BadgeID: "oneline-1", UnlockedAt: testNow}
	created, err = s.InsertUnlock(ctx, again)
	if err != nil {
		t.Fatalf("second insert: %v", err)
	}
	if created {
		t.Error("duplicate unlock should not be created")
	}

	// Same badge in a different period is a separate unlock.
	yearly := &domain.BadgeUnlock{ID: "unlock-3", UserID: u.ID, BadgeID: "oneline-1", Period: "2025", UnlockedAt: testNow}
	if created, err = s.InsertUnlock(ctx, yearly); err != nil || !created {
		t.Fatalf("period insert: created=%v err=%v", created, err)
	}

	has, err := s.HasUnlock(ctx, u.ID, "oneline-1", "2025")
	if err != nil || !has {
		t.Errorf("HasUnlock: %v %v", has, err)
	}
	has, err = s.HasUnlock(ctx, u.ID, "oneline-10", "")
	if err != nil || has {
		t.Errorf("HasUnlock for missing badge: %v %v", has, err)
	}

	unlocks, err := s.ListUnlocks(ctx, u.ID)
	if err != nil {
		t.Fatalf("list unlocks: %v", err)
	}
	if len(unlocks) != 2 {
		t.Fatalf("expected 2 unlocks, got %d", len(unlocks))
	}

	if err := s.DeleteUnlocksByUser(ctx, u.ID); err != nil {
		t.Fatalf("delete unlocks: %v", err)
	}
	unlocks, _ = s.ListUnlocks(ctx, u.ID)
	if len(unlocks) != 0 {
		t.Errorf("expected no unlocks, got %d", len(unlocks))
	}
}

func TestCountActivity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := makeTestUser(t, s, "count@example.com")

	lastYear := time.Date(2024, 12, 31, 23, 59, 0, 0, time.UTC)
	e1 := makeTestEntry(t, s, "vol-1", "One")
	e2 := makeTestEntry(t, s, "vol-2", "Two")
	a1 := makeTestAssociation(t, s, u.ID, e1.ID, 0, lastYear)
	a2 := makeTestAssociation(t, s, u.ID, e2.ID, 0, testNow)

	makeTestNote(t, s, a1, domain.NoteKindOneLine, domain.VisibilityPublic, lastYear)
	makeTestNote(t, s, a2, domain.NoteKindOneLine, domain.VisibilityPublic, testNow)
	makeTestNote(t, s, a2, domain.NoteKindReview, domain.VisibilityPrivate, testNow)
	makeTestNote(t, s, a2, domain.NoteKindExcerpt, domain.VisibilityPublic, testNow)
	makeTestNote(t, s, a2, domain.NoteKindExcerpt, domain.VisibilityPublic, testNow)

	a1.SetStatus(domain.StatusFinished, lastYear)
	if err := s.UpdateAssociation(ctx, a1); err != nil {
		t.Fatalf("update association: %v", err)
	}

	start, end := domain.YearBounds(testNow)
	tests := []struct {
		counter      domain.Counter
		since, until time.Time
		want         int64
	}{
		{domain.CounterOneLines, time.Time{}, time.Time{}, 2},
		{domain.CounterOneLines, start, end, 1},
		{domain.CounterReviews, time.Time{}, time.Time{}, 1},
		{domain.CounterExcerpts, start, end, 2},
		{domain.CounterFinishedBooks, time.Time{}, time.Time{}, 1},
		{domain.CounterFinishedBooks, start, end, 0},
	}
	for _, tt := range tests {
		got, err := s.CountActivity(ctx, u.ID, tt.counter, tt.since, tt.until)
		if err != nil {
			t.Fatalf("count %s: %v", tt.counter, err)
		}
		if got != tt.want {
			t.Errorf("count %s [%v, %v): got %d, want %d", tt.counter, tt.since, tt.until, got, tt.want)
		}
	}

	if _, err := s.CountActivity(ctx, u.ID, "bogus", time.Time{}, time.Time{}); !errors.Is(err, store.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for unknown counter, got %v", err)
	}
}
