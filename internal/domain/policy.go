package domain

import (
	_ "embed"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

//go:embed policy.yaml
var defaultPolicyYAML []byte

// Activity is something a user does that may earn experience.
type Activity string

// Activities that earn experience.
const (
	ActivityOneLineCreated Activity = "oneline_created"
	ActivityReviewCreated  Activity = "review_created"
	ActivityExcerptCreated Activity = "excerpt_created"
	ActivityBookFinished   Activity = "book_finished"
)

// ActivityForNote returns the creation activity of a note kind.
func ActivityForNote(kind NoteKind) Activity {
	switch kind {
	case NoteKindReview:
		return ActivityReviewCreated
	case NoteKindExcerpt:
		return ActivityExcerptCreated
	default:
		return ActivityOneLineCreated
	}
}

// Policy is the progression configuration: level costs, awards and badges.
type Policy struct {
	Level  LevelPolicy        `yaml:"level" json:"level"`
	Awards map[Activity]int64 `yaml:"awards" json:"awards"`
	Badges []BadgeRule        `yaml:"badges" json:"badges"`
}

// Award returns the experience granted for an activity.
func (p *Policy) Award(a Activity) int64 {
	return p.Awards[a]
}

// Rule looks up a badge rule by ID.
func (p *Policy) Rule(id string) (BadgeRule, bool) {
	for _, r := range p.Badges {
		if r.ID == id {
			return r, true
		}
	}
	return BadgeRule{}, false
}

// Catalog returns every badge of every rule, in rule order.
func (p *Policy) Catalog() []Badge {
	var out []Badge
	for _, r := range p.Badges {
		out = append(out, r.Badges()...)
	}
	return out
}

// DefaultPolicy returns the built-in policy.
func DefaultPolicy() *Policy {
	p, err := ParsePolicy(defaultPolicyYAML)
	if err != nil {
		panic(fmt.Sprintf("built-in progression policy is invalid: %v", err))
	}
	return p
}

// LoadPolicy reads a policy file, or returns the built-in policy when path is empty.
func LoadPolicy(path string) (*Policy, error) {
	if path == "" {
		return DefaultPolicy(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read progression policy: %w", err)
	}
	p, err := ParsePolicy(data)
	if err != nil {
		return nil, fmt.Errorf("progression policy %s: %w", path, err)
	}
	return p, nil
}

// ParsePolicy decodes and validates a YAML policy document.
func ParsePolicy(data []byte) (*Policy, error) {
	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode policy: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks the policy for values the engine cannot work with.
func (p *Policy) Validate() error {
	if p.Level.LevelStep <= 0 {
		return fmt.Errorf("level.level_step must be positive, got %d", p.Level.LevelStep)
	}
	for activity, xp := range p.Awards {
		if xp < 0 {
			return fmt.Errorf("award %q must not be negative", activity)
		}
	}

	seen := make(map[string]bool, len(p.Badges))
	for _, r := range p.Badges {
		if r.ID == "" {
			return fmt.Errorf("badge rule without id")
		}
		if seen[r.ID] {
			return fmt.Errorf("duplicate badge rule %q", r.ID)
		}
		seen[r.ID] = true

		if !r.Counter.Valid() {
			return fmt.Errorf("badge rule %q: unknown counter %q", r.ID, r.Counter)
		}
		if r.Scope != ScopeTotal && r.Scope != ScopeThisYear {
			return fmt.Errorf("badge rule %q: unknown scope %q", r.ID, r.Scope)
		}
		if len(r.Tiers) == 0 {
			return fmt.Errorf("badge rule %q: no tiers", r.ID)
		}
		if r.Tiers[0] <= 0 || !slices.IsSorted(r.Tiers) || len(slices.Compact(slices.Clone(r.Tiers))) != len(r.Tiers) {
			return fmt.Errorf("badge rule %q: tiers must be positive and strictly ascending", r.ID)
		}
	}
	return nil
}
