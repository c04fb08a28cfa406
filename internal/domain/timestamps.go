package domain

import "time"

// Timestamps provides the common identity and time fields of persisted records.
type Timestamps struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InitTimestamps sets both CreatedAt and UpdatedAt to now.
func (t *Timestamps) InitTimestamps(now time.Time) {
	t.CreatedAt = now
	t.UpdatedAt = now
}

// Touch updates UpdatedAt. Call it whenever the record changes.
func (t *Timestamps) Touch(now time.Time) {
	t.UpdatedAt = now
}

// YearBounds returns [start of year, start of next year) for the calendar
// year containing now, in now's location.
func YearBounds(now time.Time) (start, end time.Time) {
	start = time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
	return start, start.AddDate(1, 0, 0)
}
