package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/cinelist/internal/catalog"
	"github.com/mmcdole/cinelist/internal/collection"
)

// Command factories for async operations

// ResolvePassCmd runs a resolution pass off the update loop. A nil pass
// yields no command.
func ResolvePassCmd(pass *collection.Pass) tea.Cmd {
	if pass == nil {
		return nil
	}
	return func() tea.Msg {
		return PassCompletedMsg{Result: pass.Run(context.Background())}
	}
}

// SearchCmd searches the catalog
func SearchCmd(svc *catalog.SearchService, query string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		results, err := svc.Search(ctx, query)
		return SearchResultsMsg{Query: query, Results: results, Err: err}
	}
}

// OpenURLCmd opens a page in the browser
func OpenURLCmd(l Launcher, url string) tea.Cmd {
	return func() tea.Msg {
		return OpenedMsg{URL: url, Err: l.Open(url)}
	}
}

// ClearStatusCmd returns a command that clears status after a delay
func ClearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
