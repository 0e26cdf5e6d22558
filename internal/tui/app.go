package tui

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/cinelist/internal/catalog"
	"github.com/mmcdole/cinelist/internal/collection"
	"github.com/mmcdole/cinelist/internal/tui/components"
	"github.com/mmcdole/cinelist/internal/tui/styles"
)

// ApplicationState represents the current state of the application
type ApplicationState int

const (
	StateBrowsing ApplicationState = iota
	StateHelp
	StateConfirmDeleteList
)

// Focus identifies the pane receiving navigation keys
type Focus int

const (
	FocusLists Focus = iota
	FocusMovies
)

// Layout proportions
const (
	ListsColumnPercent  = 25
	MoviesColumnPercent = 35
	MinColumnWidth      = 15

	// Vertical layout: single footer line
	ChromeHeight = 1
)

// Launcher opens URLs outside the terminal
type Launcher interface {
	Open(url string) error
}

// CacheInvalidator drops cached movie details
type CacheInvalidator interface {
	Invalidate()
}

// Model is the main Bubble Tea model for the application.
// All engine calls happen inside Update, which makes the update loop the
// single thread that owns collection state.
type Model struct {
	// Application state
	State ApplicationState
	Ready bool

	// Services
	Engine    *collection.Engine
	SearchSvc *catalog.SearchService
	Launcher  Launcher
	Cache     CacheInvalidator
	logger    *slog.Logger

	observer *snapshotObserver

	// UI components
	ListsPane  *components.ListPane
	MoviesPane *components.ListPane
	Summary    components.SummaryPanel
	InputModal components.InputModal
	Omnibar    components.Omnibar
	Spinner    spinner.Model

	// Dimensions
	Width  int
	Height int

	// UI state
	Focus       Focus
	StatusMsg   string
	StatusIsErr bool

	pendingList string // list awaiting delete confirmation
	addTarget   string // list receiving the movie picked in the omnibar
}

// NewModel creates a new application model and subscribes it to the engine
func NewModel(engine *collection.Engine, searchSvc *catalog.SearchService, launcher Launcher, cache CacheInvalidator, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.Default()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle

	obs := &snapshotObserver{snap: engine.Snapshot()}
	engine.Subscribe(obs)

	m := Model{
		State:      StateBrowsing,
		Engine:     engine,
		SearchSvc:  searchSvc,
		Launcher:   launcher,
		Cache:      cache,
		logger:     logger,
		observer:   obs,
		ListsPane:  components.NewListPane("Lists", "No lists yet. Press n to create one."),
		MoviesPane: components.NewListPane("Movies", "No movies. Press a to add one."),
		Summary:    components.NewSummaryPanel(),
		InputModal: components.NewInputModal(),
		Omnibar:    components.NewOmnibar(),
		Spinner:    sp,
	}
	m.ListsPane.SetFocused(true)
	m.syncPanes()
	return m
}

// Init starts the initial resolution pass and the spinner
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.Spinner.Tick,
		ResolvePassCmd(m.Engine.Start()),
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.updateLayout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		m.Summary.SetSpinner(m.Spinner.View())
		return m, cmd

	case PassCompletedMsg:
		published := m.Engine.Apply(msg.Result)
		current := msg.Result.Token == m.observer.snap.Version
		if !published && current && msg.Result.Err != nil {
			cmds = append(cmds, m.setStatus("Failed to resolve movies: "+msg.Result.Err.Error(), true))
		}

	case SearchResultsMsg:
		m.Omnibar.SetResults(msg.Query, msg.Results, msg.Err)

	case OpenedMsg:
		if msg.Err != nil {
			cmds = append(cmds, m.setStatus(msg.Err.Error(), true))
		} else {
			cmds = append(cmds, m.setStatus("Opened "+msg.URL, false))
		}

	case StatusMsg:
		cmds = append(cmds, m.setStatus(msg.Message, msg.IsError))

	case ClearStatusMsg:
		m.StatusMsg = ""
		m.StatusIsErr = false
	}

	m.syncPanes()
	return m, tea.Batch(cmds...)
}

// setStatus shows a status line and schedules its removal
func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.StatusMsg = text
	m.StatusIsErr = isErr
	if isErr {
		return ClearStatusCmd(5 * time.Second)
	}
	return ClearStatusCmd(3 * time.Second)
}

// schedule turns a mutation result into commands: the pass to run, or the
// error to report
func (m *Model) schedule(pass *collection.Pass, err error, success string) tea.Cmd {
	if err != nil {
		m.logger.Warn("mutation rejected", "error", err)
		return m.setStatus(err.Error(), true)
	}
	var cmds []tea.Cmd
	if success != "" {
		cmds = append(cmds, m.setStatus(success, false))
	}
	cmds = append(cmds, ResolvePassCmd(pass))
	return tea.Batch(cmds...)
}

// selectedList returns the list under the lists cursor
func (m Model) selectedList() (string, bool) {
	row, ok := m.ListsPane.Selected()
	if !ok {
		return "", false
	}
	return row.Key, true
}

// selectedMovieID returns the movie under the movies cursor
func (m Model) selectedMovieID() (int, bool) {
	row, ok := m.MoviesPane.Selected()
	if !ok {
		return 0, false
	}
	id, err := strconv.Atoi(row.Key)
	if err != nil {
		return 0, false
	}
	return id, true
}

// syncPanes projects the latest snapshot onto the panes
func (m *Model) syncPanes() {
	snap := m.observer.snap

	listRows := make([]components.Row, 0, len(snap.Collection.Names))
	for _, name := range snap.Collection.Names {
		listRows = append(listRows, components.Row{
			Key:    name,
			Title:  name,
			Detail: strconv.Itoa(len(snap.Collection.Lists[name])),
		})
	}
	m.ListsPane.SetRows(listRows)

	list, _ := m.selectedList()
	stubs := snap.Collection.Lists[list]
	movieRows := make([]components.Row, 0, len(stubs))
	for _, stub := range stubs {
		movieRows = append(movieRows, components.Row{
			Key:    strconv.Itoa(stub.ID),
			Title:  stub.Title,
			Detail: stub.GetDescription(),
		})
	}
	m.MoviesPane.SetRows(movieRows)
	if list != "" {
		m.MoviesPane.SetTitle(fmt.Sprintf("Movies in %s", list))
	} else {
		m.MoviesPane.SetTitle("Movies")
	}

	m.Summary.SetSnapshot(snap)
	m.Summary.SetSpinner(m.Spinner.View())
	m.Summary.SetSelected(nil, nil)
	if m.Focus == FocusMovies {
		if id, ok := m.selectedMovieID(); ok {
			if detail, ok := m.Engine.Detail(id); ok {
				m.Summary.SetSelected(detail, m.Engine.MovieLists(id))
			}
		}
	}
}

// updateLayout sizes every component for the current window
func (m *Model) updateLayout() {
	contentHeight := m.Height - ChromeHeight

	listsWidth := max(m.Width*ListsColumnPercent/100, MinColumnWidth)
	moviesWidth := max(m.Width*MoviesColumnPercent/100, MinColumnWidth)
	summaryWidth := max(m.Width-listsWidth-moviesWidth, MinColumnWidth)

	m.ListsPane.SetSize(listsWidth, contentHeight)
	m.MoviesPane.SetSize(moviesWidth, contentHeight)
	m.Summary.SetSize(summaryWidth, contentHeight)
	m.Omnibar.SetSize(m.Width, m.Height)
}

// setFocus moves navigation focus between the panes
func (m *Model) setFocus(f Focus) {
	m.Focus = f
	m.ListsPane.SetFocused(f == FocusLists)
	m.MoviesPane.SetFocused(f == FocusMovies)
}
