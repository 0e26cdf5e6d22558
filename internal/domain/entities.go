package domain

import (
	"fmt"
	"strconv"
	"time"
)

// MovieStub is the minimal movie reference stored inside a list.
// Identity is the ID; the remaining fields exist for display only.
type MovieStub struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	ReleaseDate string `json:"release_date,omitempty"` // YYYY-MM-DD as reported by the catalog
	PosterPath  string `json:"poster_path,omitempty"`
	Overview    string `json:"overview,omitempty"`
}

// GetID returns the movie identifier as a string (for fuzzy indexes and logging)
func (s MovieStub) GetID() string {
	return strconv.Itoa(s.ID)
}

// GetYear returns the release year (0 if unknown)
func (s MovieStub) GetYear() int {
	if len(s.ReleaseDate) < 4 {
		return 0
	}
	year, err := strconv.Atoi(s.ReleaseDate[:4])
	if err != nil {
		return 0
	}
	return year
}

// GetDescription returns secondary info for display (e.g., "1999")
func (s MovieStub) GetDescription() string {
	if year := s.GetYear(); year > 0 {
		return strconv.Itoa(year)
	}
	return ""
}

// MovieDetail is the fully resolved record for one movie identifier.
// Values are replaced wholesale on each resolution pass and never mutated in place.
type MovieDetail struct {
	ID                  int       `json:"id"`
	Title               string    `json:"title"`
	Runtime             int       `json:"runtime"` // minutes
	Popularity          float64   `json:"popularity"`
	Budget              int64     `json:"budget"`
	ReleaseDate         time.Time `json:"release_date"` // zero when the catalog has no date
	ProductionCountries []string  `json:"production_countries"`
	Genres              []string  `json:"genres"`
	SpokenLanguages     []string  `json:"spoken_languages"`
	PosterPath          string    `json:"poster_path,omitempty"`
}

// Stub returns the list reference for this detail
func (m MovieDetail) Stub() MovieStub {
	stub := MovieStub{ID: m.ID, Title: m.Title, PosterPath: m.PosterPath}
	if !m.ReleaseDate.IsZero() {
		stub.ReleaseDate = m.ReleaseDate.Format(DateLayout)
	}
	return stub
}

// FormattedRuntime returns the runtime in a human-readable format
func (m MovieDetail) FormattedRuntime() string {
	return FormatMinutes(m.Runtime)
}

// DateLayout is the calendar date format used by the catalog
const DateLayout = "2006-01-02"

// FormatMinutes renders a minute count as "Xd Yh Zm", "Yh Zm" or "Zm"
func FormatMinutes(minutes int) string {
	if minutes <= 0 {
		return "0m"
	}
	days := minutes / (24 * 60)
	h := (minutes / 60) % 24
	mins := minutes % 60
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, h, mins)
	case h > 0:
		return fmt.Sprintf("%dh %dm", h, mins)
	default:
		return fmt.Sprintf("%dm", mins)
	}
}

// Collection is an immutable view of the list-name sequence and the mapping
// from list name to its ordered movie stubs.
type Collection struct {
	Names []string
	Lists map[string][]MovieStub
}

// SummaryStatistics aggregates over the resolved detail set.
type SummaryStatistics struct {
	TotalRuntime int      // minutes
	Countries    []string // distinct, in first-seen order
	Genres       []string
	Languages    []string
}

// TopPicks holds the five superlative records. A nil field means the
// resolved set was empty.
type TopPicks struct {
	MostPopular *MovieDetail
	MostRuntime *MovieDetail
	MostBudget  *MovieDetail
	Oldest      *MovieDetail
	Newest      *MovieDetail
}
