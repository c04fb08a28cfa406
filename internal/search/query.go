package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/seohyun-lee/bookduck-backend/internal/domain"
)

// Order ranks search hits.
type Order string

// Orders.
const (
	// OrderAccuracy ranks by relevance score, newest first among ties.
	OrderAccuracy Order = "accuracy"
	// OrderLatest ranks newest first.
	OrderLatest Order = "latest"
)

// ParseOrder accepts "accuracy", "latest", and the "createdTime desc" /
// "createdTime,desc" forms clients send. Anything else is accuracy.
func ParseOrder(s string) Order {
	normalized := strings.ToLower(strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' '
	}), " "))

	switch normalized {
	case "latest", "createdtime desc", "createdtime", "created_at desc":
		return OrderLatest
	default:
		return OrderAccuracy
	}
}

// Params configures a note search.
type Params struct {
	Keyword  string
	ViewerID string
	Order    Order
	Limit    int
	Offset   int
}

// Hit is one matching note.
type Hit struct {
	ID    string
	Score float64
}

// Result is a page of hits.
type Result struct {
	Total uint64
	Hits  []Hit
}

// Search finds notes matching the keyword that the viewer may see: their
// own notes at any visibility and other users' shared notes.
func (s *SearchIndex) Search(ctx context.Context, p Params) (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Offset < 0 {
		p.Offset = 0
	}

	req := bleve.NewSearchRequestOptions(buildNoteQuery(p), p.Limit, p.Offset, false)
	switch p.Order {
	case OrderLatest:
		req.SortBy([]string{"-created_at", "-_score", "_id"})
	default:
		req.SortBy([]string{"-_score", "-created_at", "_id"})
	}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	out := &Result{Total: res.Total, Hits: make([]Hit, 0, len(res.Hits))}
	for _, h := range res.Hits {
		out.Hits = append(out.Hits, Hit{ID: h.ID, Score: h.Score})
	}
	return out, nil
}

// buildNoteQuery is text match AND visibility scope.
func buildNoteQuery(p Params) query.Query {
	var text query.Query
	if keyword := NormalizeKeyword(p.Keyword); keyword != "" {
		text = keywordQuery(keyword)
	} else {
		text = bleve.NewMatchAllQuery()
	}

	return bleve.NewConjunctionQuery(text, visibilityScope(p.ViewerID))
}

func visibilityScope(viewerID string) query.Query {
	own := bleve.NewTermQuery(viewerID)
	own.SetField("author_id")

	scopes := []query.Query{own}
	for _, v := range domain.SharedVisibilities {
		tq := bleve.NewTermQuery(string(v))
		tq.SetField("visibility")
		scopes = append(scopes, tq)
	}
	return bleve.NewDisjunctionQuery(scopes...)
}
