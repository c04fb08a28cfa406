package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/seohyun-lee/bookduck-backend/internal/domain"
	"github.com/seohyun-lee/bookduck-backend/internal/events"
	"github.com/seohyun-lee/bookduck-backend/internal/store"
)

// AccountService shows and deletes accounts.
type AccountService struct {
	store       store.Store
	progression *ProgressionService
	index       NoteIndex
	publisher   events.Publisher
	logger      *slog.Logger
}

// NewAccountService creates an account service.
func NewAccountService(s store.Store, progression *ProgressionService, index NoteIndex, publisher events.Publisher, logger *slog.Logger) *AccountService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &AccountService{
		store:       s,
		progression: progression,
		index:       index,
		publisher:   publisher,
		logger:      logger,
	}
}

// Profile returns the user with their ledger and unlocked badges.
func (s *AccountService) Profile(ctx context.Context, userID string) (*domain.Profile, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, translate(err, "get user", "user not found")
	}
	ledger, err := s.store.GetLedger(ctx, userID)
	if err != nil {
		return nil, translate(err, "get ledger", "ledger not found")
	}
	unlocks, err := s.store.ListUnlocks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list unlocks: %w", err)
	}
	return &domain.Profile{
		User:    user,
		Ledger:  ledger,
		Unlocks: unlocks,
		Next:    ledger.ExperienceToNextLevel(s.progression.Policy().Level),
	}, nil
}

// Delete removes the account and everything it owns in one transaction:
// notes, collection, custom entries, badge unlocks, ledger and user.
// The notes are removed from the index once the deletion commits.
func (s *AccountService) Delete(ctx context.Context, userID string) error {
	unlock := s.progression.Lock(userID)
	defer unlock()

	var noteIDs []string
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		if _, err := tx.GetUser(ctx, userID); err != nil {
			return translate(err, "get user", "user not found")
		}

		var err error
		noteIDs, err = tx.ListNoteIDsByAuthor(ctx, userID)
		if err != nil {
			return fmt.Errorf("list notes: %w", err)
		}
		if _, err := tx.DeleteNotesByAuthor(ctx, userID); err != nil {
			return fmt.Errorf("delete notes: %w", err)
		}
		if _, err := tx.DeleteAssociationsByUser(ctx, userID); err != nil {
			return fmt.Errorf("delete collection: %w", err)
		}
		if _, err := tx.DeleteCustomEntriesByCreator(ctx, userID); err != nil {
			return fmt.Errorf("delete custom entries: %w", err)
		}
		if err := tx.DeleteUnlocksByUser(ctx, userID); err != nil {
			return fmt.Errorf("delete unlocks: %w", err)
		}
		if err := tx.DeleteLedger(ctx, userID); err != nil {
			return translate(err, "delete ledger", "ledger not found")
		}
		if err := tx.DeleteUser(ctx, userID); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	unindex(s.index, s.logger, noteIDs)
	s.logger.Info("account deleted", "user_id", userID, "notes", len(noteIDs))
	publish(ctx, s.publisher, s.logger, events.Event{
		Type:       events.TypeAccountDeleted,
		UserID:     userID,
		OccurredAt: s.progression.now(),
	})
	return nil
}
