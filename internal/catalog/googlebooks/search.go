package googlebooks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/seohyun-lee/bookduck-backend/internal/domain"
)

// SearchPage is one page of remote results.
type SearchPage struct {
	TotalItems int
	Candidates []domain.Candidate
}

// Search finds volumes matching keyword. page is zero-based.
func (c *Client) Search(ctx context.Context, keyword string, page, size int) (*SearchPage, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, wrapError("search", keyword, ErrBadRequest)
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	if page < 0 {
		page = 0
	}

	query := url.Values{}
	query.Set("q", keyword)
	query.Set("startIndex", strconv.Itoa(page*size))
	query.Set("maxResults", strconv.Itoa(size))
	query.Set("printType", "books")

	result, err := fetch(ctx, c, "/volumes", query, decodeSearch)
	if err != nil {
		return nil, wrapError("search", keyword, err)
	}
	return result, nil
}

func decodeSearch(body []byte) (*SearchPage, error) {
	var raw rawVolumeList
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	page := &SearchPage{
		TotalItems: raw.TotalItems,
		Candidates: make([]domain.Candidate, 0, len(raw.Items)),
	}
	for i, item := range raw.Items {
		if item == nil || item.ID == "" || item.VolumeInfo == nil {
			return nil, fmt.Errorf("%w: item %d lacks id or volumeInfo", ErrParse, i)
		}
		page.Candidates = append(page.Candidates, candidateFrom(item))
	}
	return page, nil
}

func candidateFrom(v *rawVolume) domain.Candidate {
	c := domain.Candidate{
		ProviderID: v.ID,
		Title:      v.VolumeInfo.Title,
	}
	if len(v.VolumeInfo.Authors) > 0 {
		c.Authors = domain.Some(v.VolumeInfo.Authors)
	}
	if cover := v.VolumeInfo.ImageLinks.cover(); cover != "" {
		c.Cover = domain.Some(cover)
	}
	return c
}
