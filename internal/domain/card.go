package domain

import "time"

// CardType is the discriminator written as "type" in every card.
type CardType string

// Card types.
const (
	CardOneLine CardType = "ONELINE"
	CardReview  CardType = "REVIEW"
	CardExcerpt CardType = "EXCERPT"
)

// Card is one result shape of a note listing: exactly one of OneLineCard,
// ReviewCard or ExcerptCard. The set is closed.
type Card interface {
	CardType() CardType
	CardNoteID() string
	isCard()
}

// CardBase holds the fields every card carries.
type CardBase struct {
	Type           CardType   `json:"type"`
	NoteID         string     `json:"note_id"`
	AuthorID       string     `json:"author_id"`
	AuthorNickname string     `json:"author_nickname"`
	Content        string     `json:"content"`
	Visibility     Visibility `json:"visibility"`
	Book           BookRef    `json:"book"`
	CreatedAt      time.Time  `json:"created_at"`
}

// CardType implements Card.
func (b CardBase) CardType() CardType { return b.Type }

// CardNoteID implements Card.
func (b CardBase) CardNoteID() string { return b.NoteID }

func (CardBase) isCard() {}

// OneLineCard shows a one-line note with its author's rating.
type OneLineCard struct {
	CardBase
	Rating Optional[float64] `json:"rating"`
}

// ReviewCard shows a review.
type ReviewCard struct {
	CardBase
	Title string `json:"title"`
	Color string `json:"color"`
}

// ExcerptCard shows an excerpt.
type ExcerptCard struct {
	CardBase
	PageNumber *int `json:"page_number,omitempty"`
}

// NewCard builds the card matching the note's kind.
func NewCard(v *NoteView) Card {
	n := v.Note
	base := CardBase{
		NoteID:         n.ID,
		AuthorID:       n.AuthorID,
		AuthorNickname: v.AuthorNickname,
		Content:        n.Content,
		Visibility:     n.Visibility,
		Book:           v.Book,
		CreatedAt:      n.CreatedAt,
	}

	switch n.Kind {
	case NoteKindReview:
		base.Type = CardReview
		return ReviewCard{CardBase: base, Title: n.Title, Color: n.Color}
	case NoteKindExcerpt:
		base.Type = CardExcerpt
		return ExcerptCard{CardBase: base, PageNumber: n.PageNumber}
	default:
		base.Type = CardOneLine
		rating := None[float64]()
		if v.AuthorRating != 0 {
			rating = Some(v.AuthorRating)
		}
		return OneLineCard{CardBase: base, Rating: rating}
	}
}
