package tmdb

import "fmt"

// Error wraps an underlying error with operation context.
type Error struct {
	Op      string // "getMovie", "search", "verify"
	MovieID int    // If applicable
	Err     error
}

func (e *Error) Error() string {
	if e.MovieID != 0 {
		return fmt.Sprintf("tmdb %s [%d]: %v", e.Op, e.MovieID, e.Err)
	}
	return fmt.Sprintf("tmdb %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrapError(op string, movieID int, err error) error {
	return &Error{Op: op, MovieID: movieID, Err: err}
}
