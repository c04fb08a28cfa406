package googlebooks

// Raw API response types.

type rawVolumeList struct {
	TotalItems int          `json:"totalItems"`
	Items      []*rawVolume `json:"items"`
}

type rawVolume struct {
	ID         string         `json:"id"`
	VolumeInfo *rawVolumeInfo `json:"volumeInfo"`
}

type rawVolumeInfo struct {
	Title         string         `json:"title"`
	Authors       []string       `json:"authors"`
	Publisher     string         `json:"publisher"`
	PublishedDate string         `json:"publishedDate"`
	Description   string         `json:"description"`
	PageCount     *int           `json:"pageCount"`
	Categories    []string       `json:"categories"`
	Language      string         `json:"language"`
	ImageLinks    *rawImageLinks `json:"imageLinks"`
}

type rawImageLinks struct {
	SmallThumbnail string `json:"smallThumbnail"`
	Thumbnail      string `json:"thumbnail"`
}

// cover prefers the larger thumbnail.
func (l *rawImageLinks) cover() string {
	if l == nil {
		return ""
	}
	if l.Thumbnail != "" {
		return l.Thumbnail
	}
	return l.SmallThumbnail
}
