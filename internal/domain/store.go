package domain

import "time"

// CollectionStore persists the list-name sequence and the list mapping.
// Every mutation is written through before returning, so reopening the
// store reconstructs identical state. Not safe for concurrent writers.
type CollectionStore interface {
	// ListNames returns the ordered list-name sequence
	ListNames() []string

	// GetList returns the stubs of a list (empty if absent)
	GetList(name string) []MovieStub

	// HasList reports whether the list exists (possibly empty)
	HasList(name string) bool

	// SetList replaces a list's stubs, appending the name to the sequence if new
	SetList(name string, stubs []MovieStub) error

	// RemoveList drops the name from the sequence and the mapping
	RemoveList(name string) error

	// Collection returns a copy of the full state
	Collection() Collection

	Close() error
}

// DetailCache stores resolved movie details with the time they were fetched.
type DetailCache interface {
	GetDetail(id int) (*MovieDetail, time.Time, bool)
	SaveDetail(detail *MovieDetail, fetchedAt time.Time) error
	InvalidateDetails()
}
