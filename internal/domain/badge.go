package domain

import (
	"strconv"
	"time"
)

// Counter names an activity count a badge rule is measured against.
type Counter string

// Counters known to the activity store.
const (
	CounterOneLines      Counter = "onelines"
	CounterReviews       Counter = "reviews"
	CounterExcerpts      Counter = "excerpts"
	CounterFinishedBooks Counter = "finished_books"
)

// Valid reports whether c is a known counter.
func (c Counter) Valid() bool {
	switch c {
	case CounterOneLines, CounterReviews, CounterExcerpts, CounterFinishedBooks:
		return true
	}
	return false
}

// BadgeScope selects the window a rule's counter is measured over.
type BadgeScope string

const (
	// ScopeTotal counts all activity ever.
	ScopeTotal BadgeScope = "TOTAL"
	// ScopeThisYear counts activity in the current calendar year.
	ScopeThisYear BadgeScope = "THIS_YEAR"
)

// BadgeRule is a tiered achievement: each tier threshold is its own badge.
type BadgeRule struct {
	ID       string     `yaml:"id" json:"id"`
	Category string     `yaml:"category" json:"category"`
	Name     string     `yaml:"name" json:"name"`
	Counter  Counter    `yaml:"counter" json:"counter"`
	Scope    BadgeScope `yaml:"scope" json:"scope"`
	Tiers    []int64    `yaml:"tiers" json:"tiers"`
}

// Badge is one tier of a rule.
type Badge struct {
	ID        string     `json:"id"`
	RuleID    string     `json:"rule_id"`
	Category  string     `json:"category"`
	Name      string     `json:"name"`
	Scope     BadgeScope `json:"scope"`
	Threshold int64      `json:"threshold"`
}

// BadgeID returns the identifier of a rule's tier, e.g. "review-10".
func BadgeID(ruleID string, threshold int64) string {
	return ruleID + "-" + strconv.FormatInt(threshold, 10)
}

// Badges expands the rule into one Badge per tier.
func (r BadgeRule) Badges() []Badge {
	badges := make([]Badge, 0, len(r.Tiers))
	for _, tier := range r.Tiers {
		badges = append(badges, Badge{
			ID:        BadgeID(r.ID, tier),
			RuleID:    r.ID,
			Category:  r.Category,
			Name:      r.Name,
			Scope:     r.Scope,
			Threshold: tier,
		})
	}
	return badges
}

// Period returns the unlock period key for the rule at now: "" for TOTAL
// rules and the four-digit year for THIS_YEAR rules. A yearly badge can be
// earned again each year.
func (r BadgeRule) Period(now time.Time) string {
	if r.Scope == ScopeThisYear {
		return strconv.Itoa(now.Year())
	}
	return ""
}

// Window returns the time range the rule's counter covers. Total rules
// return zero times, meaning unbounded.
func (r BadgeRule) Window(now time.Time) (since, until time.Time) {
	if r.Scope == ScopeThisYear {
		return YearBounds(now)
	}
	return time.Time{}, time.Time{}
}

// BadgeUnlock records that a user earned a badge. Unique per
// (UserID, BadgeID, Period).
type BadgeUnlock struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	BadgeID    string    `json:"badge_id"`
	Period     string    `json:"period,omitempty"`
	UnlockedAt time.Time `json:"unlocked_at"`
}
