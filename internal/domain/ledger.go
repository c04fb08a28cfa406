package domain

import (
	"time"

	domainerrors "github.com/seohyun-lee/bookduck-backend/internal/errors"
)

// DefaultLevelStep is the experience needed per level: reaching level n+1
// requires n*DefaultLevelStep cumulative experience.
const DefaultLevelStep = 100

// Ledger holds a user's level and cumulative experience.
//
// Level is at least 1 and CumulativeExperience never decreases. The ledger
// is only mutated through GainExperience.
type Ledger struct {
	UserID               string    `json:"user_id"`
	Level                int       `json:"level"`
	CumulativeExperience int64     `json:"exp"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// NewLedger returns the starting ledger for a new user.
func NewLedger(userID string, now time.Time) *Ledger {
	return &Ledger{UserID: userID, Level: 1, UpdatedAt: now}
}

// LevelPolicy decides how much experience each level costs.
type LevelPolicy struct {
	LevelStep int64 `yaml:"level_step" json:"level_step"`
}

// Threshold returns the cumulative experience at which level is left behind.
func (p LevelPolicy) Threshold(level int) int64 {
	step := p.LevelStep
	if step <= 0 {
		step = DefaultLevelStep
	}
	return step * int64(level)
}

// GainExperience adds amount to the ledger and applies every level-up it
// pays for. It reports whether the level rose.
//
// A negative amount is rejected and leaves the ledger untouched; zero is a
// no-op. Gains are additive: two calls with a and b end in the same state
// as one call with a+b.
func (l *Ledger) GainExperience(policy LevelPolicy, amount int64, now time.Time) (bool, error) {
	if amount < 0 {
		return false, domainerrors.InvalidArgumentf("experience amount must not be negative, got %d", amount)
	}
	if l.Level < 1 {
		l.Level = 1
	}

	previous := l.Level
	l.CumulativeExperience += amount
	for l.CumulativeExperience >= policy.Threshold(l.Level) {
		l.Level++
	}
	if amount > 0 {
		l.UpdatedAt = now
	}
	return l.Level > previous, nil
}

// ExperienceToNextLevel returns how much more experience the next level costs.
func (l *Ledger) ExperienceToNextLevel(policy LevelPolicy) int64 {
	return policy.Threshold(l.Level) - l.CumulativeExperience
}
