package genre

import "github.com/seohyun-lee/bookduck-backend/internal/domain"

// Aliases maps a whole category segment slug to its genre. Keys are the
// top-level BISAC subjects Google Books reports plus common short forms.
var Aliases = map[string]domain.Genre{
	// Literature
	"fiction":              domain.GenreLiterature,
	"literature":           domain.GenreLiterature,
	"literary-criticism":   domain.GenreLiterature,
	"literary-collections": domain.GenreLiterature,
	"literary-fiction":     domain.GenreLiterature,
	"poetry":               domain.GenreLiterature,
	"drama":                domain.GenreLiterature,
	"essays":               domain.GenreLiterature,
	"science-fiction":      domain.GenreLiterature,
	"fantasy":              domain.GenreLiterature,
	"novel":                domain.GenreLiterature,

	// Children and young adult
	"juvenile-fiction":       domain.GenreChildren,
	"juvenile-nonfiction":    domain.GenreChildren,
	"young-adult-fiction":    domain.GenreChildren,
	"young-adult-nonfiction": domain.GenreChildren,
	"children":               domain.GenreChildren,
	"children-s-books":       domain.GenreChildren,

	// Comics
	"comics-graphic-novels": domain.GenreComics,
	"comics":                domain.GenreComics,
	"graphic-novels":        domain.GenreComics,
	"manga":                 domain.GenreComics,

	// Self-help
	"self-help":            domain.GenreSelfHelp,
	"selfhelp":             domain.GenreSelfHelp,
	"psychology":           domain.GenreSelfHelp,
	"body-mind-spirit":     domain.GenreSelfHelp,
	"family-relationships": domain.GenreSelfHelp,
	"personal-development": domain.GenreSelfHelp,
	"health-fitness":       domain.GenreSelfHelp,

	// Business
	"business-economics": domain.GenreBusiness,
	"business":           domain.GenreBusiness,
	"economics":          domain.GenreBusiness,
	"finance":            domain.GenreBusiness,

	// Technology
	"computers":              domain.GenreTechnology,
	"technology-engineering": domain.GenreTechnology,
	"technology":             domain.GenreTechnology,
	"engineering":            domain.GenreTechnology,

	// Social science
	"social-science":    domain.GenreSocialScience,
	"political-science": domain.GenreSocialScience,
	"law":               domain.GenreSocialScience,
	"education":         domain.GenreSocialScience,
	"true-crime":        domain.GenreSocialScience,

	// Science
	"science":     domain.GenreScience,
	"mathematics": domain.GenreScience,
	"nature":      domain.GenreScience,
	"medical":     domain.GenreScience,

	// Art
	"art":                   domain.GenreArt,
	"music":                 domain.GenreArt,
	"photography":           domain.GenreArt,
	"design":                domain.GenreArt,
	"architecture":          domain.GenreArt,
	"performing-arts":       domain.GenreArt,
	"antiques-collectibles": domain.GenreArt,

	// Humanities
	"history":                   domain.GenreHumanities,
	"philosophy":                domain.GenreHumanities,
	"religion":                  domain.GenreHumanities,
	"biography-autobiography":   domain.GenreHumanities,
	"language-arts-disciplines": domain.GenreHumanities,
	"foreign-language-study":    domain.GenreHumanities,
}

// Match files a book under the genre of its first recognized category
// segment. Segments are tried top level first, so "Fiction / Science
// Fiction" is literature. Unknown or missing categories land in OTHERS.
func Match(categories []string) domain.Genre {
	for _, c := range categories {
		for _, slug := range Segments(c) {
			if g, ok := Aliases[slug]; ok {
				return g
			}
		}
	}
	return domain.GenreOthers
}
