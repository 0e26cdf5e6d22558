package collection

import (
	"time"

	"github.com/mmcdole/cinelist/internal/domain"
)

// Aggregate computes summary statistics and top picks over the resolved
// details. It is pure and total: an empty input yields zero statistics and
// nil top picks.
func Aggregate(details []*domain.MovieDetail) (domain.SummaryStatistics, domain.TopPicks) {
	summary := domain.SummaryStatistics{
		Countries: []string{},
		Genres:    []string{},
		Languages: []string{},
	}
	countries := newNameSet()
	genres := newNameSet()
	languages := newNameSet()

	for _, m := range details {
		summary.TotalRuntime += m.Runtime
		countries.add(m.ProductionCountries...)
		genres.add(m.Genres...)
		languages.add(m.SpokenLanguages...)
	}
	summary.Countries = append(summary.Countries, countries.items...)
	summary.Genres = append(summary.Genres, genres.items...)
	summary.Languages = append(summary.Languages, languages.items...)

	picks := domain.TopPicks{
		MostPopular: pick(details, func(c, inc *domain.MovieDetail) bool { return c.Popularity > inc.Popularity }),
		MostRuntime: pick(details, func(c, inc *domain.MovieDetail) bool { return c.Runtime > inc.Runtime }),
		MostBudget:  pick(details, func(c, inc *domain.MovieDetail) bool { return c.Budget > inc.Budget }),
		Oldest:      pick(details, func(c, inc *domain.MovieDetail) bool { return earlier(c.ReleaseDate, inc.ReleaseDate) }),
		Newest:      pick(details, func(c, inc *domain.MovieDetail) bool { return later(c.ReleaseDate, inc.ReleaseDate) }),
	}
	return summary, picks
}

// pick scans left to right and replaces the incumbent only when the
// candidate strictly beats it, so ties keep the earliest movie.
func pick(details []*domain.MovieDetail, beats func(candidate, incumbent *domain.MovieDetail) bool) *domain.MovieDetail {
	var best *domain.MovieDetail
	for _, m := range details {
		if best == nil || beats(m, best) {
			best = m
		}
	}
	return best
}

// earlier orders release dates chronologically. Unknown (zero) dates never
// win against a known date and never displace one.
func earlier(a, b time.Time) bool {
	switch {
	case a.IsZero():
		return false
	case b.IsZero():
		return true
	default:
		return a.Before(b)
	}
}

// later is the mirror of earlier
func later(a, b time.Time) bool {
	switch {
	case a.IsZero():
		return false
	case b.IsZero():
		return true
	default:
		return a.After(b)
	}
}

// nameSet collects distinct names in first-seen order
type nameSet struct {
	seen  map[string]bool
	items []string
}

func newNameSet() *nameSet {
	return &nameSet{seen: make(map[string]bool)}
}

func (s *nameSet) add(names ...string) {
	for _, name := range names {
		if name == "" || s.seen[name] {
			continue
		}
		s.seen[name] = true
		s.items = append(s.items, name)
	}
}
