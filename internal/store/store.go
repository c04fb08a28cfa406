// Package store defines the persistence interface of the server.
package store

import (
	"context"
	"time"

	"github.com/seohyun-lee/bookduck-backend/internal/domain"
)

// Store is every persistence operation the services use.
//
// Deletes never cascade: a record that is still referenced returns
// ErrHasDependents, and callers remove dependents explicitly inside one
// WithTx unit of work.
type Store interface {
	// WithTx runs fn in a single write transaction. fn receives a Store
	// bound to that transaction; returning an error rolls everything back.
	// Calling WithTx on a transaction-bound Store joins the outer transaction.
	WithTx(ctx context.Context, fn func(tx Store) error) error
	Close() error

	Users
	Ledgers
	Badges
	Counters
	Entries
	Associations
	Notes
}

// Users persists accounts.
type Users interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// Ledgers persists progression ledgers.
type Ledgers interface {
	CreateLedger(ctx context.Context, ledger *domain.Ledger) error
	GetLedger(ctx context.Context, userID string) (*domain.Ledger, error)
	SaveLedger(ctx context.Context, ledger *domain.Ledger) error
	DeleteLedger(ctx context.Context, userID string) error
}

// Badges persists badge unlocks.
type Badges interface {
	// InsertUnlock stores the unlock unless (user, badge, period) already
	// exists, and reports whether a row was created.
	InsertUnlock(ctx context.Context, unlock *domain.BadgeUnlock) (bool, error)
	HasUnlock(ctx context.Context, userID, badgeID, period string) (bool, error)
	ListUnlocks(ctx context.Context, userID string) ([]*domain.BadgeUnlock, error)
	DeleteUnlocksByUser(ctx context.Context, userID string) error
}

// Counters answers activity counts for badge rules.
type Counters interface {
	// CountActivity counts the user's activity of one kind in [since, until).
	// Zero times leave that side of the window open.
	CountActivity(ctx context.Context, userID string, counter domain.Counter, since, until time.Time) (int64, error)
}

// Entries persists catalog entries.
type Entries interface {
	CreateEntry(ctx context.Context, entry *domain.CatalogEntry) error
	GetEntry(ctx context.Context, id string) (*domain.CatalogEntry, error)
	GetEntryByProviderID(ctx context.Context, providerID string) (*domain.CatalogEntry, error)
	// GetEntriesByProviderIDs returns the stored entries keyed by provider ID.
	// Unknown IDs are absent from the map.
	GetEntriesByProviderIDs(ctx context.Context, providerIDs []string) (map[string]*domain.CatalogEntry, error)
	UpdateEntry(ctx context.Context, entry *domain.CatalogEntry) error
	// SearchCustomEntries matches keyword literally against title and author
	// of the user's custom entries.
	SearchCustomEntries(ctx context.Context, userID, keyword string, limit, offset int) ([]*domain.CatalogEntry, error)
	DeleteCustomEntriesByCreator(ctx context.Context, userID string) (int64, error)
}

// AssociationFilter narrows and orders a collection listing.
type AssociationFilter struct {
	Statuses []domain.ReadStatus
	Sort     domain.CollectionSort
	Limit    int
	Offset   int
}

// Associations persists user collections.
type Associations interface {
	CreateAssociation(ctx context.Context, a *domain.Association) error
	GetAssociation(ctx context.Context, id string) (*domain.Association, error)
	GetAssociationByUserAndEntry(ctx context.Context, userID, entryID string) (*domain.Association, error)
	// GetAssociationsByUserAndEntries returns the user's associations keyed by entry ID.
	GetAssociationsByUserAndEntries(ctx context.Context, userID string, entryIDs []string) (map[string]*domain.Association, error)
	UpdateAssociation(ctx context.Context, a *domain.Association) error
	DeleteAssociation(ctx context.Context, id string) error
	DeleteAssociationsByUser(ctx context.Context, userID string) (int64, error)
	ListAssociations(ctx context.Context, userID string, filter AssociationFilter) ([]*domain.CollectionItem, error)
	ListRatingsByEntry(ctx context.Context, entryID string) ([]float64, error)
}

// Notes persists one-line notes, reviews and excerpts.
type Notes interface {
	CreateNote(ctx context.Context, note *domain.Note) error
	GetNote(ctx context.Context, id string) (*domain.Note, error)
	GetNoteView(ctx context.Context, id string) (*domain.NoteView, error)
	// GetNoteViews returns the views that exist, keyed by note ID.
	GetNoteViews(ctx context.Context, ids []string) (map[string]*domain.NoteView, error)
	UpdateNote(ctx context.Context, note *domain.Note) error
	DeleteNote(ctx context.Context, id string) error
	CountNotes(ctx context.Context, associationID string, kind domain.NoteKind) (int64, error)
	// GetOneLinesByAssociations returns one-line notes keyed by association ID.
	GetOneLinesByAssociations(ctx context.Context, associationIDs []string) (map[string]*domain.Note, error)
	// ListSharedOneLines lists other users' shared one-line notes on an
	// entry, highest author rating first.
	ListSharedOneLines(ctx context.Context, entryID, excludeUserID string, limit int) ([]*domain.NoteView, error)
	ListNoteIDsByAssociation(ctx context.Context, associationID string) ([]string, error)
	DeleteNotesByAssociation(ctx context.Context, associationID string) (int64, error)
	ListNoteIDsByAuthor(ctx context.Context, userID string) ([]string, error)
	DeleteNotesByAuthor(ctx context.Context, userID string) (int64, error)
	// ListNoteViewsAfter pages through every note in ID order, for reindexing.
	ListNoteViewsAfter(ctx context.Context, afterID string, limit int) ([]*domain.NoteView, error)
}
