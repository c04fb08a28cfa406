package domain

import "time"

// ReadStatus is where a user is with a book.
type ReadStatus string

// Read statuses.
const (
	StatusNotStarted ReadStatus = "NOT_STARTED"
	StatusReading    ReadStatus = "READING"
	StatusFinished   ReadStatus = "FINISHED"
	StatusStopped    ReadStatus = "STOPPED"
)

// Valid reports whether s is a known status.
func (s ReadStatus) Valid() bool {
	switch s {
	case StatusNotStarted, StatusReading, StatusFinished, StatusStopped:
		return true
	}
	return false
}

// Association links a user to a catalog entry: their copy in the collection.
// A Rating of 0 means not rated.
type Association struct {
	Timestamps
	UserID     string     `json:"user_id"`
	EntryID    string     `json:"entry_id"`
	Rating     float64    `json:"rating"`
	Status     ReadStatus `json:"status"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// SetStatus changes the read status and reports whether this is the first
// time the association reached FINISHED.
func (a *Association) SetStatus(status ReadStatus, now time.Time) (firstFinish bool) {
	if status == StatusFinished && a.FinishedAt == nil {
		t := now
		a.FinishedAt = &t
		firstFinish = true
	}
	a.Status = status
	a.Touch(now)
	return firstFinish
}

// RatingValue returns the rating, absent when unrated.
func (a *Association) RatingValue() Optional[float64] {
	if a.Rating == 0 {
		return None[float64]()
	}
	return Some(a.Rating)
}

// CollectionSort orders a user's collection listing.
type CollectionSort string

// Collection orderings.
const (
	SortLatest CollectionSort = "latest"
	SortTitle  CollectionSort = "title"
	SortRating CollectionSort = "rating"
)

// ParseCollectionSort returns the ordering named by s, defaulting to latest.
func ParseCollectionSort(s string) CollectionSort {
	switch CollectionSort(s) {
	case SortTitle, SortRating:
		return CollectionSort(s)
	default:
		return SortLatest
	}
}

// CollectionItem is an association with its entry, as listed.
type CollectionItem struct {
	Association *Association  `json:"association"`
	Entry       *CatalogEntry `json:"entry"`
}
