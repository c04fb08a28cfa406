package googlebooks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/seohyun-lee/bookduck-backend/internal/domain"
	"github.com/seohyun-lee/bookduck-backend/internal/genre"
)

// Volume returns the detail record of one volume.
func (c *Client) Volume(ctx context.Context, providerID string) (*domain.VolumeDetail, error) {
	providerID = strings.TrimSpace(providerID)
	if providerID == "" || strings.ContainsAny(providerID, "/?#") {
		return nil, wrapError("volume", providerID, ErrBadRequest)
	}

	detail, err := fetch(ctx, c, "/volumes/"+url.PathEscape(providerID), url.Values{}, decodeVolume)
	if err != nil {
		return nil, wrapError("volume", providerID, err)
	}
	return detail, nil
}

func decodeVolume(body []byte) (*domain.VolumeDetail, error) {
	var raw rawVolume
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if raw.ID == "" || raw.VolumeInfo == nil {
		return nil, fmt.Errorf("%w: volume lacks id or volumeInfo", ErrParse)
	}

	info := raw.VolumeInfo
	d := &domain.VolumeDetail{
		ProviderID:    raw.ID,
		Title:         info.Title,
		Publisher:     info.Publisher,
		PublishedDate: info.PublishedDate,
		Description:   htmlToMarkdown(info.Description),
		Language:      info.Language,
		Genre:         genre.Match(info.Categories),
	}
	if len(info.Authors) > 0 {
		d.Authors = domain.Some(info.Authors)
	}
	if cover := info.ImageLinks.cover(); cover != "" {
		d.Cover = domain.Some(cover)
	}
	if info.PageCount != nil {
		d.PageCount = *info.PageCount
	}
	if len(info.Categories) > 0 {
		d.Categories = domain.Some(info.Categories)
	}
	return d, nil
}

// htmlTagPattern detects descriptions that carry markup.
var htmlTagPattern = regexp.MustCompile(`<(p|br|div|span|b|i|strong|em|a|ul|ol|li|h[1-6]|blockquote)[\s>/]`)

// htmlToMarkdown converts an HTML description to Markdown. Plain text and
// input the converter rejects are returned unchanged.
func htmlToMarkdown(s string) string {
	if s == "" || !htmlTagPattern.MatchString(strings.ToLower(s)) {
		return s
	}
	markdown, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return s
	}
	return strings.TrimSpace(markdown)
}
