package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/cinelist/internal/collection"
	"github.com/mmcdole/cinelist/internal/domain"
	"github.com/mmcdole/cinelist/internal/tui/styles"
)

// OmnibarEvent is what an omnibar key press asks the app to do
type OmnibarEvent int

const (
	OmnibarNone   OmnibarEvent = iota
	OmnibarSubmit              // run a catalog search for Query()
	OmnibarSelect              // the highlighted result was chosen
	OmnibarClosed
)

const maxOmnibarResults = 10

// Omnibar is the modal used for catalog search and for filtering the collection
type Omnibar struct {
	input      textinput.Model
	filterMode bool
	title      string

	results   []domain.MovieStub
	searched  string // query the current results belong to
	matches   []collection.Match
	cursor    int
	loading   bool
	errText   string
	prevQuery string
	width     int
	height    int
	visible   bool
}

// NewOmnibar creates a new omnibar component
func NewOmnibar() Omnibar {
	ti := textinput.New()
	ti.CharLimit = 100
	ti.Width = 40
	ti.PromptStyle = styles.AccentStyle
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	ti.PlaceholderStyle = styles.DimStyle

	return Omnibar{input: ti}
}

// ShowSearch opens the omnibar in catalog search mode
func (o *Omnibar) ShowSearch(title string) {
	o.reset()
	o.title = title
	o.input.Prompt = "+ "
	o.input.Placeholder = "Search TMDB..."
}

// ShowFilter opens the omnibar in collection filter mode
func (o *Omnibar) ShowFilter() {
	o.reset()
	o.filterMode = true
	o.title = "Filter lists and movies"
	o.input.Prompt = "/ "
	o.input.Placeholder = "Type to filter..."
}

func (o *Omnibar) reset() {
	o.visible = true
	o.filterMode = false
	o.input.SetValue("")
	o.input.Focus()
	o.results = nil
	o.searched = ""
	o.matches = nil
	o.cursor = 0
	o.loading = false
	o.errText = ""
	o.prevQuery = ""
}

// Hide hides the omnibar
func (o *Omnibar) Hide() {
	o.visible = false
	o.filterMode = false
	o.input.Blur()
}

func (o Omnibar) IsVisible() bool    { return o.visible }
func (o Omnibar) IsFilterMode() bool { return o.filterMode }

// Query returns the current input
func (o Omnibar) Query() string {
	return o.input.Value()
}

// QueryChanged reports whether the query changed since the last call
func (o *Omnibar) QueryChanged() bool {
	current := o.input.Value()
	if current != o.prevQuery {
		o.prevQuery = current
		return true
	}
	return false
}

// SetLoading marks a search as in flight
func (o *Omnibar) SetLoading(loading bool) {
	o.loading = loading
	if loading {
		o.errText = ""
	}
}

// SetResults stores catalog results for the given query. Results for a
// query other than the current input are ignored.
func (o *Omnibar) SetResults(query string, results []domain.MovieStub, err error) {
	if strings.TrimSpace(query) != strings.TrimSpace(o.input.Value()) {
		return
	}
	o.loading = false
	o.cursor = 0
	if err != nil {
		o.results = nil
		o.searched = ""
		o.errText = err.Error()
		return
	}
	o.results = results
	o.searched = query
	o.errText = ""
}

// SetMatches stores filter matches
func (o *Omnibar) SetMatches(matches []collection.Match) {
	o.matches = matches
	o.cursor = 0
}

// SelectedResult returns the highlighted catalog result
func (o Omnibar) SelectedResult() (domain.MovieStub, bool) {
	if o.cursor >= len(o.results) {
		return domain.MovieStub{}, false
	}
	return o.results[o.cursor], true
}

// SelectedMatch returns the highlighted filter match
func (o Omnibar) SelectedMatch() (collection.Match, bool) {
	if o.cursor >= len(o.matches) {
		return collection.Match{}, false
	}
	return o.matches[o.cursor], true
}

func (o Omnibar) resultCount() int {
	if o.filterMode {
		return len(o.matches)
	}
	return len(o.results)
}

// SetSize updates the component dimensions
func (o *Omnibar) SetSize(width, height int) {
	o.width = width
	o.height = height
	o.input.Width = max(width/2, 20)
}

// Update handles messages
func (o Omnibar) Update(msg tea.Msg) (Omnibar, tea.Cmd, OmnibarEvent) {
	if !o.visible {
		return o, nil, OmnibarNone
	}

	count := o.resultCount()
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, OmnibarKeys.Close):
			o.Hide()
			return o, nil, OmnibarClosed

		case key.Matches(keyMsg, OmnibarKeys.Accept):
			if o.filterMode {
				if count > 0 {
					return o, nil, OmnibarSelect
				}
				return o, nil, OmnibarNone
			}
			// A fresh query searches; enter on current results picks one
			if count > 0 && o.searched == o.input.Value() {
				return o, nil, OmnibarSelect
			}
			if strings.TrimSpace(o.input.Value()) == "" {
				return o, nil, OmnibarNone
			}
			return o, nil, OmnibarSubmit

		case key.Matches(keyMsg, OmnibarKeys.Next):
			if o.cursor < count-1 {
				o.cursor++
			}
			return o, nil, OmnibarNone

		case key.Matches(keyMsg, OmnibarKeys.Prev):
			if o.cursor > 0 {
				o.cursor--
			}
			return o, nil, OmnibarNone
		}
	}

	var cmd tea.Cmd
	o.input, cmd = o.input.Update(msg)
	return o, cmd, OmnibarNone
}

// View renders the component centered in the available area
func (o Omnibar) View() string {
	if !o.visible {
		return ""
	}

	modalWidth := min(max(o.width*2/3, 40), 80)

	var b strings.Builder
	b.WriteString(styles.ModalTitleStyle.Render(o.title))
	b.WriteString("\n")
	b.WriteString(o.input.View())
	b.WriteString("\n\n")

	switch {
	case o.loading:
		b.WriteString(styles.SpinnerStyle.Render("Searching..."))
	case o.errText != "":
		b.WriteString(styles.ErrorStyle.Render(o.errText))
	case o.filterMode:
		o.renderMatches(&b, modalWidth)
	default:
		o.renderResults(&b, modalWidth)
	}

	content := lipgloss.NewStyle().
		Width(modalWidth - 4).
		Render(b.String())

	modal := styles.ModalStyle.
		Width(modalWidth).
		Render(content)

	return lipgloss.Place(o.width, o.height, lipgloss.Center, lipgloss.Center, modal)
}

func (o Omnibar) renderResults(b *strings.Builder, modalWidth int) {
	if len(o.results) == 0 {
		if o.searched != "" {
			b.WriteString(styles.DimStyle.Render("No results"))
		} else {
			b.WriteString(styles.DimStyle.Render("Press enter to search"))
		}
		return
	}

	shown := min(len(o.results), maxOmnibarResults)
	start := 0
	if o.cursor >= shown {
		start = o.cursor - shown + 1
	}
	for i := start; i < start+shown; i++ {
		stub := o.results[i]
		title := stub.Title
		if year := stub.GetDescription(); year != "" {
			title += " (" + year + ")"
		}
		style := styles.NormalItemStyle
		if i == o.cursor {
			style = styles.SelectedItemStyle
		}
		b.WriteString(style.Render(styles.Truncate(title, modalWidth-10)))
		b.WriteString("\n")
	}
	if len(o.results) > shown {
		b.WriteString(styles.DimStyle.Render(fmt.Sprintf("%d of %d results", o.cursor+1, len(o.results))))
	}
}

func (o Omnibar) renderMatches(b *strings.Builder, modalWidth int) {
	if len(o.matches) == 0 {
		if o.input.Value() != "" {
			b.WriteString(styles.DimStyle.Render("No matches found"))
		}
		return
	}

	shown := min(len(o.matches), maxOmnibarResults)
	start := 0
	if o.cursor >= shown {
		start = o.cursor - shown + 1
	}
	for i := start; i < start+shown; i++ {
		m := o.matches[i]
		var line strings.Builder
		if m.Stub == nil {
			line.WriteString(styles.DimBadgeStyle.Render("LIST"))
			line.WriteString(" ")
			line.WriteString(styles.HighlightMatches(styles.Truncate(m.List, modalWidth-15), m.MatchedIndexes))
		} else {
			line.WriteString(styles.DimBadgeStyle.Render("MOV"))
			line.WriteString(" ")
			line.WriteString(styles.DimStyle.Render(m.List + " > "))
			line.WriteString(styles.HighlightMatches(styles.Truncate(m.Stub.Title, modalWidth-20-len(m.List)), m.MatchedIndexes))
		}
		if i == o.cursor {
			b.WriteString(styles.AccentStyle.Render("> "))
		} else {
			b.WriteString("  ")
		}
		b.WriteString(line.String())
		b.WriteString("\n")
	}
	if len(o.matches) > shown {
		b.WriteString(styles.DimStyle.Render(fmt.Sprintf("... and %d more", len(o.matches)-shown)))
	}
}
