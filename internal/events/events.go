// Package events publishes domain events after their transaction commits.
// Publishing is best effort: a failure is reported to the caller, which
// logs it, and never undoes the committed change.
package events

import (
	"context"
	"sync"
	"time"
)

// Event types.
const (
	TypeLevelUp        = "progression.level_up"
	TypeBadgeUnlocked  = "progression.badge_unlocked"
	TypeNoteCreated    = "note.created"
	TypeNoteDeleted    = "note.deleted"
	TypeAccountDeleted = "account.deleted"
	TypeBookFinished   = "collection.book_finished"
)

// Event is one domain event.
type Event struct {
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data,omitempty"`
}

// LevelUp is the payload of TypeLevelUp.
type LevelUp struct {
	From       int   `json:"from"`
	To         int   `json:"to"`
	Experience int64 `json:"exp"`
}

// BadgeUnlocked is the payload of TypeBadgeUnlocked.
type BadgeUnlocked struct {
	BadgeID string `json:"badge_id"`
	Period  string `json:"period,omitempty"`
}

// Publisher sends events somewhere.
type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
	Close() error
}

// Noop drops every event.
type Noop struct{}

// Publish discards events.
func (Noop) Publish(context.Context, ...Event) error { return nil }

// Close does nothing.
func (Noop) Close() error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Publish appends events.
func (r *Recorder) Publish(_ context.Context, events ...Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
	return nil
}

// Close does nothing.
func (r *Recorder) Close() error { return nil }

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// OfType returns the recorded events of one type.
func (r *Recorder) OfType(t string) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
