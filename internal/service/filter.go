package service

import (
	"strings"

	"github.com/dtroode/themekeeper/internal/model"
)

// FilterResult is what a renderer draws for a query.
type FilterResult struct {
	Query  string
	Themes []model.Theme
	// Loaded is false until the first snapshot has been applied.
	Loaded bool
	// NoResults is set when the cache is loaded but nothing matched.
	NoResults bool
}

// NormalizeQuery trims and lower-cases a search query.
func NormalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// FilterThemes returns the themes whose title contains the query as a
// case-insensitive substring, keeping the input order. An empty query
// returns every theme. Themes without a title never match a non-empty
// query.
func FilterThemes(themes []model.Theme, query string) []model.Theme {
	query = NormalizeQuery(query)

	result := make([]model.Theme, 0, len(themes))
	if query == "" {
		return append(result, themes...)
	}

	for _, theme := range themes {
		if theme.Title == nil {
			continue
		}
		if strings.Contains(strings.ToLower(*theme.Title), query) {
			result = append(result, theme)
		}
	}
	return result
}

func buildFilterResult(themes []model.Theme, loaded bool, query string) FilterResult {
	matched := FilterThemes(themes, query)
	return FilterResult{
		Query:     NormalizeQuery(query),
		Themes:    matched,
		Loaded:    loaded,
		NoResults: loaded && len(matched) == 0,
	}
}
