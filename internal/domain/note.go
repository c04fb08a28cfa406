package domain

// NoteKind distinguishes the notes a user writes about a book.
type NoteKind string

// Note kinds.
const (
	NoteKindOneLine NoteKind = "ONELINE"
	NoteKindReview  NoteKind = "REVIEW"
	NoteKindExcerpt NoteKind = "EXCERPT"
)

// Valid reports whether k is a known kind.
func (k NoteKind) Valid() bool {
	switch k {
	case NoteKindOneLine, NoteKindReview, NoteKindExcerpt:
		return true
	}
	return false
}

// Visibility controls who can see a note.
type Visibility string

// Visibility levels. FRIEND_ONLY notes are shown to every other signed-in
// user; there is no friend graph to narrow it further.
const (
	VisibilityPrivate    Visibility = "PRIVATE"
	VisibilityFriendOnly Visibility = "FRIEND_ONLY"
	VisibilityPublic     Visibility = "PUBLIC"
)

// SharedVisibilities are the levels another user's note may have and still
// be shown.
var SharedVisibilities = []Visibility{VisibilityPublic, VisibilityFriendOnly}

// Valid reports whether v is a known visibility.
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPrivate, VisibilityFriendOnly, VisibilityPublic:
		return true
	}
	return false
}

// DefaultReviewColor is the card color of a review that does not set one.
const DefaultReviewColor = "#FFFFFF"

// Note is a one-line note, review or excerpt attached to an association.
// Title and Color apply to reviews and PageNumber to excerpts.
type Note struct {
	Timestamps
	Kind          NoteKind   `json:"kind"`
	AuthorID      string     `json:"author_id"`
	AssociationID string     `json:"association_id"`
	Content       string     `json:"content"`
	Visibility    Visibility `json:"visibility"`
	Title         string     `json:"title,omitempty"`
	Color         string     `json:"color,omitempty"`
	PageNumber    *int       `json:"page_number,omitempty"`
}

// ApplyDefaults fills in the defaults for fields left empty.
func (n *Note) ApplyDefaults() {
	if n.Visibility == "" {
		n.Visibility = VisibilityPublic
	}
	if n.Kind == NoteKindReview && n.Color == "" {
		n.Color = DefaultReviewColor
	}
}

// VisibleTo reports whether viewerID may see the note: authors see all of
// their own notes, everyone else sees only shared ones.
func (n *Note) VisibleTo(viewerID string) bool {
	return n.AuthorID == viewerID || n.Visibility != VisibilityPrivate
}

// NotePatch is a partial update of a note. Nil fields are left unchanged.
type NotePatch struct {
	Content    *string
	Visibility *Visibility
	Title      *string
	Color      *string
	PageNumber *int
}

// Apply writes the set fields onto n.
func (p NotePatch) Apply(n *Note) {
	if p.Content != nil {
		n.Content = *p.Content
	}
	if p.Visibility != nil {
		n.Visibility = *p.Visibility
	}
	if n.Kind == NoteKindReview {
		if p.Title != nil {
			n.Title = *p.Title
		}
		if p.Color != nil {
			n.Color = *p.Color
		}
	}
	if n.Kind == NoteKindExcerpt && p.PageNumber != nil {
		page := *p.PageNumber
		n.PageNumber = &page
	}
}

// BookRef is the part of a catalog entry shown alongside a note.
type BookRef struct {
	EntryID  string `json:"entry_id"`
	Title    string `json:"title"`
	Author   string `json:"author,omitempty"`
	CoverURL string `json:"cover_url,omitempty"`
}

// NoteView is a note joined with its book, its author's nickname and the
// author's rating of the book.
type NoteView struct {
	Note           *Note   `json:"note"`
	Book           BookRef `json:"book"`
	AuthorNickname string  `json:"author_nickname"`
	AuthorRating   float64 `json:"author_rating"`
}
