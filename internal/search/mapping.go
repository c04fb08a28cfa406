package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the mapping for note documents.
//
// Text fields are matched by keyword search. Keyword fields are exact-match
// filters and stay out of _all.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = standard.Name

	docMapping := bleve.NewDocumentMapping()

	// --- Text fields ---

	contentFieldMapping := bleve.NewTextFieldMapping()
	contentFieldMapping.Analyzer = standard.Name
	contentFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("content", contentFieldMapping)

	titleFieldMapping := bleve.NewTextFieldMapping()
	titleFieldMapping.Analyzer = standard.Name
	titleFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("title", titleFieldMapping)

	bookTitleFieldMapping := bleve.NewTextFieldMapping()
	bookTitleFieldMapping.Analyzer = standard.Name
	bookTitleFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("book_title", bookTitleFieldMapping)

	bookAuthorFieldMapping := bleve.NewTextFieldMapping()
	bookAuthorFieldMapping.Analyzer = standard.Name
	bookAuthorFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("book_author", bookAuthorFieldMapping)

	// --- Keyword fields (exact match filters) ---

	for _, field := range []string{"id", "kind", "author_id", "visibility"} {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = keyword.Name
		fm.IncludeInAll = false
		fm.Store = field == "kind"
		docMapping.AddFieldMappingsAt(field, fm)
	}

	// --- Numeric fields ---

	createdAtFieldMapping := bleve.NewNumericFieldMapping()
	createdAtFieldMapping.Store = true
	createdAtFieldMapping.IncludeInAll = false
	docMapping.AddFieldMappingsAt("created_at", createdAtFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
