package domain

import (
	"context"
)

// MetadataRepository resolves a movie identifier to its full detail record.
// Lookups are idempotent and read-only; memoization is the caller's concern.
type MetadataRepository interface {
	// GetMovieDetails returns the detail record for a movie
	GetMovieDetails(ctx context.Context, id int) (*MovieDetail, error)
}

// SearchRepository provides title search against the remote catalog
type SearchRepository interface {
	// SearchMovies returns stubs for movies matching the query
	SearchMovies(ctx context.Context, query string) ([]MovieStub, error)
}

// CatalogRepository combines lookups and search, as offered by a metadata provider
type CatalogRepository interface {
	MetadataRepository
	SearchRepository
}
