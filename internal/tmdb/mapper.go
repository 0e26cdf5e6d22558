package tmdb

import (
	"strings"
	"time"

	"github.com/mmcdole/cinelist/internal/domain"
)

// MapMovie converts a movie payload to a domain detail
func MapMovie(r *MovieResponse) *domain.MovieDetail {
	d := &domain.MovieDetail{
		ID:                  r.ID,
		Title:               r.Title,
		Popularity:          r.Popularity,
		Budget:              r.Budget,
		ReleaseDate:         parseDate(r.ReleaseDate),
		PosterPath:          deref(r.PosterPath),
		ProductionCountries: make([]string, 0, len(r.ProductionCountries)),
		Genres:              make([]string, 0, len(r.Genres)),
		SpokenLanguages:     make([]string, 0, len(r.SpokenLanguages)),
	}
	if r.Runtime != nil {
		d.Runtime = *r.Runtime
	}
	if d.Title == "" {
		d.Title = r.OriginalTitle
	}

	for _, c := range r.ProductionCountries {
		d.ProductionCountries = append(d.ProductionCountries, c.Name)
	}
	for _, g := range r.Genres {
		d.Genres = append(d.Genres, g.Name)
	}
	for _, l := range r.SpokenLanguages {
		name := l.EnglishName
		if name == "" {
			name = l.Name
		}
		d.SpokenLanguages = append(d.SpokenLanguages, name)
	}
	return d
}

// MapSearchResults converts search hits to list stubs, skipping entries
// without an identifier
func MapSearchResults(results []SearchResult) []domain.MovieStub {
	stubs := make([]domain.MovieStub, 0, len(results))
	for _, r := range results {
		if r.ID <= 0 {
			continue
		}
		stubs = append(stubs, domain.MovieStub{
			ID:          r.ID,
			Title:       r.Title,
			ReleaseDate: r.ReleaseDate,
			PosterPath:  deref(r.PosterPath),
			Overview:    strings.TrimSpace(r.Overview),
		})
	}
	return stubs
}

// parseDate parses a YYYY-MM-DD date; empty or malformed input yields the zero time
func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
