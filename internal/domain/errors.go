package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrMovieNotFound indicates the catalog has no movie with the requested ID
	ErrMovieNotFound = errors.New("movie not found")

	// ErrServerOffline indicates the metadata catalog is unreachable
	ErrServerOffline = errors.New("metadata catalog is unreachable")

	// ErrAuthFailed indicates the catalog rejected the API key
	ErrAuthFailed = errors.New("api key is invalid")

	// ErrRateLimited indicates the catalog throttled the request
	ErrRateLimited = errors.New("rate limited by catalog")

	// ErrListNotFound indicates the requested list does not exist
	ErrListNotFound = errors.New("list not found")

	// ErrInvalidListName indicates an empty or malformed list name
	ErrInvalidListName = errors.New("invalid list name")

	// ErrInvalidMovieID indicates a non-positive movie identifier
	ErrInvalidMovieID = errors.New("invalid movie id")

	// ErrMovieNotInList indicates the movie is not part of the list
	ErrMovieNotInList = errors.New("movie is not in list")

	// ErrMovieAlreadyListed indicates the movie is already part of the list
	ErrMovieAlreadyListed = errors.New("movie is already in list")

	// ErrLastMovieInList guards removal of the only movie in a list.
	// The message is shown to the user as-is.
	ErrLastMovieInList = errors.New("this action will delete the list: remove the list instead")
)
