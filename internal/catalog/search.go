package catalog

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mmcdole/cinelist/internal/domain"
)

// SearchService runs catalog searches and ranks the hits against the query
type SearchService struct {
	repo   domain.SearchRepository
	logger *slog.Logger
}

// NewSearchService creates a new search service
func NewSearchService(repo domain.SearchRepository, logger *slog.Logger) *SearchService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchService{repo: repo, logger: logger}
}

// Search queries the catalog and returns the hits best match first
func (s *SearchService) Search(ctx context.Context, query string) ([]domain.MovieStub, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	s.logger.Debug("searching", "query", query)

	results, err := s.repo.SearchMovies(ctx, query)
	if err != nil {
		s.logger.Warn("catalog search failed", "query", query, "error", err)
		return nil, err
	}

	ranked := rankResults(results, query)
	s.logger.Debug("search complete", "query", query, "results", len(ranked))
	return ranked, nil
}

// rankResults orders stubs by match score. Equal scores keep catalog order.
func rankResults(stubs []domain.MovieStub, query string) []domain.MovieStub {
	if len(stubs) == 0 {
		return stubs
	}

	query = strings.ToLower(query)

	type rankedStub struct {
		stub  domain.MovieStub
		score int
	}

	ranked := make([]rankedStub, 0, len(stubs))
	for _, stub := range stubs {
		ranked = append(ranked, rankedStub{stub: stub, score: matchScore(strings.ToLower(stub.Title), query)})
	}

	// Lower is better
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score < ranked[j].score
	})

	results := make([]domain.MovieStub, len(ranked))
	for i, r := range ranked {
		results[i] = r.stub
	}
	return results
}

// matchScore scores a lowercased title against a lowercased query.
// Lower score = better match
func matchScore(title, query string) int {
	switch {
	case title == query:
		return 0
	case strings.HasPrefix(title, query):
		return 10
	case strings.Contains(title, query):
		return 50
	}
	return 100 + fuzzy.LevenshteinDistance(query, title)
}
