package search

import (
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
	"golang.org/x/text/unicode/norm"
)

// textFields are the analyzed fields a keyword is matched against.
var textFields = []string{"content", "title", "book_title", "book_author"}

// NormalizeKeyword NFC-normalizes a user keyword, trims it and collapses
// whitespace runs to a single space.
func NormalizeKeyword(keyword string) string {
	return strings.Join(strings.Fields(norm.NFC.String(keyword)), " ")
}

// keywordQuery matches the keyword against every text field. The keyword
// only ever reaches the field analyzers, never a query parser, so
// operators, field prefixes and wildcards in it are plain characters.
// A keyword that analyzes to no terms matches nothing.
func keywordQuery(keyword string) query.Query {
	fields := make([]query.Query, 0, len(textFields))
	for _, field := range textFields {
		mq := bleve.NewMatchQuery(keyword)
		mq.SetField(field)
		fields = append(fields, mq)
	}
	return bleve.NewDisjunctionQuery(fields...)
}
