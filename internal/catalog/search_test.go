package catalog

import (
	"context"
	"testing"

	"github.com/mmcdole/cinelist/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSearchRepo struct {
	results []domain.MovieStub
	err     error
	queries []string
}

func (r *stubSearchRepo) SearchMovies(ctx context.Context, query string) ([]domain.MovieStub, error) {
	r.queries = append(r.queries, query)
	return r.results, r.err
}

func titles(stubs []domain.MovieStub) []string {
	out := make([]string, len(stubs))
	for i, s := range stubs {
		out[i] = s.Title
	}
	return out
}

func TestSearchService_RanksResults(t *testing.T) {
	repo := &stubSearchRepo{results: []domain.MovieStub{
		{ID: 1, Title: "Enter the Matrix Documentary"},
		{ID: 2, Title: "Matrices"},
		{ID: 3, Title: "The Matrix Reloaded"},
		{ID: 4, Title: "The Matrix"},
		{ID: 5, Title: "The Matrix Revolutions"},
	}}
	svc := NewSearchService(repo, nil)

	got, err := svc.Search(context.Background(), "The Matrix")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"The Matrix",             // exact
		"The Matrix Reloaded",    // prefix, catalog order kept
		"The Matrix Revolutions", // prefix
		"Enter the Matrix Documentary",
		"Matrices",
	}, titles(got))
}

func TestSearchService_EmptyQuerySkipsCatalog(t *testing.T) {
	repo := &stubSearchRepo{}
	svc := NewSearchService(repo, nil)

	got, err := svc.Search(context.Background(), "  ")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Empty(t, repo.queries)
}

func TestSearchService_PropagatesErrors(t *testing.T) {
	svc := NewSearchService(&stubSearchRepo{err: domain.ErrAuthFailed}, nil)

	_, err := svc.Search(context.Background(), "alien")
	assert.ErrorIs(t, err, domain.ErrAuthFailed)
}

func TestMatchScore(t *testing.T) {
	tests := []struct {
		title, query string
		want         int
	}{
		{"alien", "alien", 0},
		{"aliens", "alien", 10},
		{"the alien", "alien", 50},
		{"alan", "alien", 102},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, matchScore(tt.title, tt.query))
		})
	}
}
