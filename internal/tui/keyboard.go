package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/cinelist/internal/tmdb"
	"github.com/mmcdole/cinelist/internal/tui/components"
)

// handleKeyMsg handles keyboard input
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle state-specific keys
	switch m.State {
	case StateHelp:
		if key.Matches(msg, Keys.Escape, Keys.Help, Keys.Quit) {
			m.State = StateBrowsing
		}
		return m, nil

	case StateConfirmDeleteList:
		switch {
		case key.Matches(msg, Keys.Confirm):
			m.State = StateBrowsing
			name := m.pendingList
			m.pendingList = ""
			pass, err := m.Engine.DeleteList(name)
			cmd := m.schedule(pass, err, fmt.Sprintf("Deleted list %q", name))
			m.syncPanes()
			return m, cmd
		case key.Matches(msg, Keys.Deny):
			m.State = StateBrowsing
			m.pendingList = ""
		}
		return m, nil
	}

	// Route to active modal if any
	if m.Omnibar.IsVisible() {
		return m.updateOmnibar(msg)
	}
	if m.InputModal.IsVisible() {
		return m.updateInputModal(msg)
	}

	// Global keys
	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		m.State = StateHelp
		return m, nil

	case key.Matches(msg, Keys.Filter):
		m.Omnibar.ShowFilter()
		return m, nil

	case key.Matches(msg, Keys.NewList):
		m.InputModal.Show("New list", "List name...")
		return m, nil

	case key.Matches(msg, Keys.AddMovie):
		list, ok := m.selectedList()
		if !ok {
			return m, m.setStatus("Create a list first", true)
		}
		m.addTarget = list
		m.Omnibar.ShowSearch(fmt.Sprintf("Add movie to %s", list))
		return m, nil

	case key.Matches(msg, Keys.DeleteList):
		if list, ok := m.selectedList(); ok {
			m.pendingList = list
			m.State = StateConfirmDeleteList
		}
		return m, nil

	case key.Matches(msg, components.MoviePaneKeys.Remove):
		if m.Focus != FocusMovies {
			return m, nil
		}
		list, _ := m.selectedList()
		id, ok := m.selectedMovieID()
		if !ok {
			return m, nil
		}
		pass, err := m.Engine.DeleteMovie(list, id)
		cmd := m.schedule(pass, err, "Removed movie")
		m.syncPanes()
		return m, cmd

	case key.Matches(msg, Keys.Reload):
		cmd := m.schedule(m.Engine.Reload(), nil, "Reloading movie details")
		m.syncPanes()
		return m, cmd

	case key.Matches(msg, Keys.Refetch):
		if m.Cache != nil {
			m.Cache.Invalidate()
		}
		cmd := m.schedule(m.Engine.Reload(), nil, "Refetching movie details")
		m.syncPanes()
		return m, cmd

	case key.Matches(msg, components.MoviePaneKeys.Open):
		if m.Focus != FocusMovies || m.Launcher == nil {
			return m, nil
		}
		if id, ok := m.selectedMovieID(); ok {
			return m, OpenURLCmd(m.Launcher, tmdb.MovieURL(id))
		}
		return m, nil

	case key.Matches(msg, Keys.Tab):
		if m.Focus == FocusLists {
			m.setFocus(FocusMovies)
		} else {
			m.setFocus(FocusLists)
		}
		m.syncPanes()
		return m, nil

	case key.Matches(msg, Keys.Right, Keys.Enter):
		if m.Focus == FocusLists && m.MoviesPane.Len() > 0 {
			m.setFocus(FocusMovies)
			m.syncPanes()
		}
		return m, nil

	case key.Matches(msg, Keys.Left, Keys.Escape):
		m.setFocus(FocusLists)
		m.syncPanes()
		return m, nil
	}

	// Pane navigation
	pane := m.ListsPane
	if m.Focus == FocusMovies {
		pane = m.MoviesPane
	}
	if pane.Update(msg) {
		m.syncPanes()
	}
	return m, nil
}

// updateOmnibar routes keys to the search/filter modal
func (m Model) updateOmnibar(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var event components.OmnibarEvent
	m.Omnibar, cmd, event = m.Omnibar.Update(msg)

	switch event {
	case components.OmnibarSubmit:
		if m.SearchSvc == nil {
			return m, m.setStatus("Search is not available", true)
		}
		m.Omnibar.SetLoading(true)
		return m, tea.Batch(cmd, SearchCmd(m.SearchSvc, m.Omnibar.Query()))

	case components.OmnibarSelect:
		if m.Omnibar.IsFilterMode() {
			match, _ := m.Omnibar.SelectedMatch()
			m.Omnibar.Hide()
			movieKey := ""
			if match.Stub != nil {
				movieKey = strconv.Itoa(match.Stub.ID)
			}
			m.jumpTo(match.List, match.Stub != nil, movieKey)
			return m, cmd
		}

		stub, _ := m.Omnibar.SelectedResult()
		pass, err := m.Engine.AddMovie(m.addTarget, stub)
		if err != nil {
			return m, m.setStatus(err.Error(), true)
		}
		m.Omnibar.Hide()
		statusCmd := m.schedule(pass, nil, fmt.Sprintf("Added %s to %s", stub.Title, m.addTarget))
		m.jumpTo(m.addTarget, true, strconv.Itoa(stub.ID))
		return m, tea.Batch(cmd, statusCmd)

	case components.OmnibarClosed:
		m.addTarget = ""
		return m, cmd
	}

	if m.Omnibar.IsFilterMode() && m.Omnibar.QueryChanged() {
		m.Omnibar.SetMatches(m.Engine.Filter(m.Omnibar.Query()))
	}
	return m, cmd
}

// updateInputModal routes keys to the new-list prompt
func (m Model) updateInputModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var submitted bool
	m.InputModal, cmd, submitted = m.InputModal.Update(msg)
	if !submitted {
		return m, cmd
	}

	name := strings.TrimSpace(m.InputModal.Value())
	pass, err := m.Engine.CreateList(name)
	if err != nil {
		m.InputModal.SetError(err.Error())
		return m, cmd
	}
	m.InputModal.Hide()
	statusCmd := m.schedule(pass, nil, fmt.Sprintf("Created list %q", name))
	m.jumpTo(name, false, "")
	return m, tea.Batch(cmd, statusCmd)
}

// jumpTo selects a list and optionally a movie in it
func (m *Model) jumpTo(list string, movie bool, movieKey string) {
	m.syncPanes()
	m.ListsPane.SelectKey(list)
	m.syncPanes()
	if movie {
		m.setFocus(FocusMovies)
		m.MoviesPane.SelectKey(movieKey)
	} else {
		m.setFocus(FocusLists)
	}
	m.syncPanes()
}
