package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/seohyun-lee/bookduck-backend/internal/domain"
	"github.com/seohyun-lee/bookduck-backend/internal/id"
	"github.com/seohyun-lee/bookduck-backend/internal/metrics"
	"github.com/seohyun-lee/bookduck-backend/internal/store"
)

// BadgeEvaluator unlocks every badge tier a user has reached.
type BadgeEvaluator struct {
	policy  *domain.Policy
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewBadgeEvaluator creates an evaluator for the policy's badge rules.
func NewBadgeEvaluator(policy *domain.Policy, m *metrics.Metrics, logger *slog.Logger) *BadgeEvaluator {
	return &BadgeEvaluator{policy: policy, metrics: m, logger: logger}
}

// Evaluate checks each rule's pending tiers against the user's activity
// counters and records the ones reached. It returns only unlocks created
// by this call, so evaluating again without new activity returns none.
//
// A rule whose counter fails is logged and skipped; the other rules still
// run. Store failures while recording an unlock abort the evaluation.
func (e *BadgeEvaluator) Evaluate(ctx context.Context, tx store.Store, userID string, now time.Time) ([]*domain.BadgeUnlock, error) {
	var created []*domain.BadgeUnlock

	for _, rule := range e.policy.Badges {
		period := rule.Period(now)

		var pending []int64
		for _, tier := range rule.Tiers {
			has, err := tx.HasUnlock(ctx, userID, domain.BadgeID(rule.ID, tier), period)
			if err != nil {
				return nil, fmt.Errorf("check unlock %s: %w", rule.ID, err)
			}
			if !has {
				pending = append(pending, tier)
			}
		}
		if len(pending) == 0 {
			continue
		}

		since, until := rule.Window(now)
		count, err := tx.CountActivity(ctx, userID, rule.Counter, since, until)
		if err != nil {
			e.logger.Warn("badge counter failed, skipping rule",
				"rule_id", rule.ID,
				"user_id", userID,
				"error", err,
			)
			e.metrics.BadgeRuleFailed(rule.ID)
			continue
		}

		for _, tier := range pending {
			if count < tier {
				break
			}
			unlockID, err := id.Generate(id.PrefixUnlock)
			if err != nil {
				return nil, err
			}
			unlock := &domain.BadgeUnlock{
				ID:         unlockID,
				UserID:     userID,
				BadgeID:    domain.BadgeID(rule.ID, tier),
				Period:     period,
				UnlockedAt: now,
			}
			ok, err := tx.InsertUnlock(ctx, unlock)
			if err != nil {
				return nil, fmt.Errorf("insert unlock %s: %w", unlock.BadgeID, err)
			}
			if ok {
				created = append(created, unlock)
			}
		}
	}
	return created, nil
}
