package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/seohyun-lee/bookduck-backend/internal/domain"
	"github.com/seohyun-lee/bookduck-backend/internal/events"
	"github.com/seohyun-lee/bookduck-backend/internal/lock"
	"github.com/seohyun-lee/bookduck-backend/internal/metrics"
	"github.com/seohyun-lee/bookduck-backend/internal/store"
)

// Progress is what one unit of work did to a user's progression. It is
// built inside the transaction and announced after it commits.
type Progress struct {
	UserID     string
	Activities []domain.Activity
	Gained     int64
	FromLevel  int
	ToLevel    int
	Experience int64
	Unlocks    []*domain.BadgeUnlock
	At         time.Time
}

// LeveledUp reports whether the level rose.
func (p *Progress) LeveledUp() bool {
	return p != nil && p.ToLevel > p.FromLevel
}

// ProgressionService awards experience and badges for user activity.
type ProgressionService struct {
	store     store.Store
	policy    *domain.Policy
	badges    *BadgeEvaluator
	locks     *lock.KeyedMutex
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       clock
}

// NewProgressionService creates a progression service. Services that
// mutate progression share its per-user locks.
func NewProgressionService(
	s store.Store,
	policy *domain.Policy,
	locks *lock.KeyedMutex,
	publisher events.Publisher,
	m *metrics.Metrics,
	logger *slog.Logger,
) *ProgressionService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &ProgressionService{
		store:     s,
		policy:    policy,
		badges:    NewBadgeEvaluator(policy, m, logger),
		locks:     locks,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

// Policy returns the active progression policy.
func (s *ProgressionService) Policy() *domain.Policy {
	return s.policy
}

// Lock serializes progression changes of one user. Callers hold it
// around the whole transaction that ends in Award.
func (s *ProgressionService) Lock(userID string) (unlock func()) {
	return s.locks.Lock(userID)
}

// Award applies the experience for the activities to the user's ledger
// and evaluates badges, inside the caller's transaction. If that
// transaction rolls back, the ledger and unlocks roll back with it.
func (s *ProgressionService) Award(ctx context.Context, tx store.Store, userID string, now time.Time, activities ...domain.Activity) (*Progress, error) {
	ledger, err := tx.GetLedger(ctx, userID)
	if err != nil {
		return nil, translate(err, "get ledger", "ledger not found")
	}

	p := &Progress{
		UserID:     userID,
		Activities: activities,
		FromLevel:  ledger.Level,
		At:         now,
	}
	for _, a := range activities {
		amount := s.policy.Award(a)
		if _, err := ledger.GainExperience(s.policy.Level, amount, now); err != nil {
			return nil, err
		}
		p.Gained += amount
	}
	if p.Gained > 0 {
		if err := tx.SaveLedger(ctx, ledger); err != nil {
			return nil, fmt.Errorf("save ledger: %w", err)
		}
	}
	p.ToLevel = ledger.Level
	p.Experience = ledger.CumulativeExperience

	p.Unlocks, err = s.badges.Evaluate(ctx, tx, userID, now)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Announce publishes the events of committed progress and records metrics.
func (s *ProgressionService) Announce(ctx context.Context, p *Progress) {
	if p == nil {
		return
	}
	for _, a := range p.Activities {
		s.metrics.ExperienceAwarded(string(a), s.policy.Award(a))
	}
	s.metrics.LevelUps(p.ToLevel - p.FromLevel)

	var evs []events.Event
	if p.LeveledUp() {
		s.logger.Info("level up", "user_id", p.UserID, "from", p.FromLevel, "to", p.ToLevel)
		evs = append(evs, events.Event{
			Type:       events.TypeLevelUp,
			UserID:     p.UserID,
			OccurredAt: p.At,
			Data:       events.LevelUp{From: p.FromLevel, To: p.ToLevel, Experience: p.Experience},
		})
	}
	for _, u := range p.Unlocks {
		s.metrics.BadgeUnlocked(u.BadgeID)
		s.logger.Info("badge unlocked", "user_id", p.UserID, "badge_id", u.BadgeID, "period", u.Period)
		evs = append(evs, events.Event{
			Type:       events.TypeBadgeUnlocked,
			UserID:     p.UserID,
			OccurredAt: u.UnlockedAt,
			Data:       events.BadgeUnlocked{BadgeID: u.BadgeID, Period: u.Period},
		})
	}
	publish(ctx, s.publisher, s.logger, evs...)
}

// EvaluateBadges re-runs badge evaluation for a user in its own
// transaction. It is idempotent.
func (s *ProgressionService) EvaluateBadges(ctx context.Context, userID string) ([]*domain.BadgeUnlock, error) {
	unlock := s.Lock(userID)
	defer unlock()

	var p *Progress
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		var err error
		p, err = s.Award(ctx, tx, userID, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Announce(ctx, p)
	return p.Unlocks, nil
}

// Ledger returns the user's ledger.
func (s *ProgressionService) Ledger(ctx context.Context, userID string) (*domain.Ledger, error) {
	l, err := s.store.GetLedger(ctx, userID)
	if err != nil {
		return nil, translate(err, "get ledger", "ledger not found")
	}
	return l, nil
}

// BadgeCatalog lists every badge of the policy.
func (s *ProgressionService) BadgeCatalog() []domain.Badge {
	return s.policy.Catalog()
}
