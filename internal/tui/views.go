package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/cinelist/internal/tui/components"
	"github.com/mmcdole/cinelist/internal/tui/styles"
)

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	switch {
	case m.State == StateHelp:
		return m.renderHelp()
	case m.State == StateConfirmDeleteList:
		return m.renderDeleteConfirmation()
	case m.Omnibar.IsVisible():
		return m.Omnibar.View()
	case m.InputModal.IsVisible():
		return lipgloss.Place(m.Width, m.Height,
			lipgloss.Center, lipgloss.Center,
			m.InputModal.View())
	}

	content := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.ListsPane.View(),
		m.MoviesPane.View(),
		m.Summary.View(),
	)
	return lipgloss.JoinVertical(lipgloss.Left, content, m.renderFooter())
}

// renderFooter renders the status line, or key hints when there is no status
func (m Model) renderFooter() string {
	if m.StatusMsg != "" {
		style := styles.SuccessStyle
		if m.StatusIsErr {
			style = styles.ErrorStyle
		}
		return style.Render(styles.Truncate(m.StatusMsg, m.Width))
	}

	bindings := []key.Binding{Keys.NewList, Keys.AddMovie}
	if m.Focus == FocusMovies {
		bindings = append(bindings, components.MoviePaneKeys.Remove, components.MoviePaneKeys.Open)
	}
	bindings = append(bindings, Keys.DeleteList, Keys.Filter, Keys.Reload, Keys.Help, Keys.Quit)

	parts := make([]string, len(bindings))
	for i, b := range bindings {
		h := b.Help()
		parts[i] = styles.HelpKeyStyle.Render(h.Key) + " " + styles.HelpDescStyle.Render(h.Desc)
	}
	return strings.Join(parts, "  ")
}

// renderHelp renders the help screen
func (m Model) renderHelp() string {
	help := `
NAVIGATION                      LISTS
  j/k        Up/down               n      New list
  h/l        Lists/movies          D      Delete list
  tab        Switch pane           a      Add movie (search TMDB)
  g/G        First/last item       d      Remove movie from list
  Ctrl+u/d   Scroll half page
  PgUp/PgDn  Scroll page

OTHER
  /          Filter lists and movies
  o          Open movie on themoviedb.org
  r          Reload movie details
  R          Refetch details, bypassing the cache
  ?          This help
  q          Quit

Press esc to return...
`

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(help))
}

// renderDeleteConfirmation renders the list deletion prompt
func (m Model) renderDeleteConfirmation() string {
	var b strings.Builder
	b.WriteString(styles.ModalTitleStyle.Render("Delete list " + m.pendingList + "?"))
	b.WriteString("\n")
	b.WriteString("Movies only in this list leave the summary.\n\n")
	b.WriteString("      [Y] Yes      [N] No")

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(b.String()))
}
