// Package genre files books under a shelf genre from provider categories.
package genre

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Slugify converts a category label to a slug.
// "Comics & Graphic Novels" -> "comics-graphic-novels".
// "Children's Books" -> "children-s-books".
// "Littérature" -> "litterature".
func Slugify(s string) string {
	// Decompose so accents become separate combining marks.
	s = norm.NFKD.String(s)

	var b strings.Builder
	b.Grow(len(s))
	hyphen := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		case r >= 'A' && r <= 'Z':
			r = unicode.ToLower(r)
		case unicode.Is(unicode.Mn, r):
			continue
		default:
			hyphen = b.Len() > 0
			continue
		}
		if hyphen {
			b.WriteByte('-')
			hyphen = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Segments splits a BISAC-style category path ("Fiction / Science Fiction /
// General") into slugs, top level first. Empty and "general" segments are
// dropped.
func Segments(category string) []string {
	parts := strings.Split(category, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		slug := Slugify(p)
		if slug == "" || slug == "general" {
			continue
		}
		out = append(out, slug)
	}
	return out
}
