package domain

// CatalogEntry is a locally stored book. It is either external (ProviderID
// set, materialized from the remote catalog) or custom (CreatedUserID set,
// entered by a user), never both.
type CatalogEntry struct {
	Timestamps
	ProviderID    string   `json:"provider_id,omitempty"`
	CreatedUserID string   `json:"created_user_id,omitempty"`
	Title         string   `json:"title"`
	Author        string   `json:"author,omitempty"`
	CoverURL      string   `json:"cover_url,omitempty"`
	PageCount     int      `json:"page_count"`
	Publisher     string   `json:"publisher,omitempty"`
	PublishedDate string   `json:"published_date,omitempty"`
	Description   string   `json:"description,omitempty"`
	Categories    []string `json:"categories,omitempty"`
	Genre         Genre    `json:"genre"`
	Language      string   `json:"language,omitempty"`
}

// IsCustom reports whether the entry was created by a user.
func (e *CatalogEntry) IsCustom() bool {
	return e.CreatedUserID != ""
}

// Candidate is one remote search result as the provider returned it.
type Candidate struct {
	ProviderID string             `json:"provider_id"`
	Title      string             `json:"title"`
	Authors    Optional[[]string] `json:"authors"`
	Cover      Optional[string]   `json:"cover"`
}

// Overlay is the acting user's view of an entry in their collection.
type Overlay struct {
	AssociationID string            `json:"association_id"`
	Rating        Optional[float64] `json:"rating"`
	OneLine       Optional[string]  `json:"oneline"`
	Status        ReadStatus        `json:"status"`
}

// ReconciledBook is a remote result joined with local state. EntryID is
// empty when the book has never been stored locally; Overlay is absent when
// it is stored but not in the acting user's collection.
type ReconciledBook struct {
	Candidate
	EntryID string            `json:"entry_id,omitempty"`
	Overlay Optional[Overlay] `json:"overlay"`
}

// VolumeDetail is the provider's detail record for one volume.
type VolumeDetail struct {
	ProviderID    string             `json:"provider_id"`
	Title         string             `json:"title"`
	Authors       Optional[[]string] `json:"authors"`
	Cover         Optional[string]   `json:"cover"`
	Publisher     string             `json:"publisher,omitempty"`
	PublishedDate string             `json:"published_date,omitempty"`
	Description   string             `json:"description,omitempty"`
	PageCount     int                `json:"page_count"`
	Categories    Optional[[]string] `json:"categories"`
	Genre         Genre              `json:"genre"`
	Language      string             `json:"language,omitempty"`
}

// Entry converts the detail into a catalog entry to be materialized.
func (d *VolumeDetail) Entry() *CatalogEntry {
	authors, _ := d.Authors.Get()
	var author string
	if len(authors) > 0 {
		author = authors[0]
	}
	categories, _ := d.Categories.Get()
	return &CatalogEntry{
		ProviderID:    d.ProviderID,
		Title:         d.Title,
		Author:        author,
		CoverURL:      d.Cover.OrElse(""),
		PageCount:     d.PageCount,
		Publisher:     d.Publisher,
		PublishedDate: d.PublishedDate,
		Description:   d.Description,
		Categories:    categories,
		Genre:         d.Genre,
		Language:      d.Language,
	}
}

// CustomEntryPatch is a partial update of a custom entry. Nil fields are
// left unchanged.
type CustomEntryPatch struct {
	Title     *string
	Author    *string
	PageCount *int
	Publisher *string
	CoverURL  *string
}

// Apply writes the set fields onto e and reports whether anything changed.
func (p CustomEntryPatch) Apply(e *CatalogEntry) bool {
	changed := false
	if p.Title != nil && *p.Title != e.Title {
		e.Title, changed = *p.Title, true
	}
	if p.Author != nil && *p.Author != e.Author {
		e.Author, changed = *p.Author, true
	}
	if p.PageCount != nil && *p.PageCount != e.PageCount {
		e.PageCount, changed = *p.PageCount, true
	}
	if p.Publisher != nil && *p.Publisher != e.Publisher {
		e.Publisher, changed = *p.Publisher, true
	}
	if p.CoverURL != nil && *p.CoverURL != e.CoverURL {
		e.CoverURL, changed = *p.CoverURL, true
	}
	return changed
}

// Genre is the coarse shelf a book is filed under.
type Genre string

// Genres.
const (
	GenreLiterature    Genre = "LITERATURE"
	GenreHumanities    Genre = "HUMANITIES"
	GenreSocialScience Genre = "SOCIAL_SCIENCE"
	GenreScience       Genre = "SCIENCE"
	GenreTechnology    Genre = "TECHNOLOGY"
	GenreBusiness      Genre = "BUSINESS"
	GenreSelfHelp      Genre = "SELF_HELP"
	GenreArt           Genre = "ART"
	GenreComics        Genre = "COMICS"
	GenreChildren      Genre = "CHILDREN"
	GenreOthers        Genre = "OTHERS"
)
