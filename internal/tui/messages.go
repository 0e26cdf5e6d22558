package tui

import (
	"github.com/mmcdole/cinelist/internal/collection"
	"github.com/mmcdole/cinelist/internal/domain"
)

// Message types for the TUI

// PassCompletedMsg carries the outcome of a resolution pass back to the
// update loop, where the engine decides whether it is still current
type PassCompletedMsg struct {
	Result collection.PassResult
}

// SearchResultsMsg signals that catalog search results are ready
type SearchResultsMsg struct {
	Query   string
	Results []domain.MovieStub
	Err     error
}

// OpenedMsg signals that a browser launch finished
type OpenedMsg struct {
	URL string
	Err error
}

// StatusMsg shows a transient status line
type StatusMsg struct {
	Message string
	IsError bool
}

// ClearStatusMsg clears the status line
type ClearStatusMsg struct{}
