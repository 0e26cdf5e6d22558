package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/cinelist/internal/tui/styles"
)

// Layout constants for list panes
const (
	// Border adds 1 char on each side (left+right for width, top+bottom for height)
	BorderWidth  = 2
	BorderHeight = 2

	// Scroll indicators ("↑ more" and "↓ more") each take 1 line
	ScrollIndicatorLines = 2
)

// Row is one line of a list pane
type Row struct {
	Key    string // stable identity used to keep the cursor across refreshes
	Title  string
	Detail string // right-hand secondary text
}

// ListPane is a scrollable, focusable list of rows
type ListPane struct {
	rows []Row

	// Selection
	cursor     int
	offset     int
	maxVisible int

	// Dimensions
	width   int
	height  int
	focused bool

	title     string
	emptyText string
}

// NewListPane creates an empty pane with a header title
func NewListPane(title, emptyText string) *ListPane {
	return &ListPane{title: title, emptyText: emptyText}
}

// SetRows replaces the rows, keeping the cursor on the same key when it
// is still present
func (p *ListPane) SetRows(rows []Row) {
	var selected string
	if row, ok := p.Selected(); ok {
		selected = row.Key
	}
	p.rows = rows
	if !p.SelectKey(selected) {
		p.clampCursor()
	}
}

// SelectKey moves the cursor to the row with the given key
func (p *ListPane) SelectKey(k string) bool {
	if k == "" {
		return false
	}
	for i, row := range p.rows {
		if row.Key == k {
			p.cursor = i
			p.ensureVisible()
			return true
		}
	}
	return false
}

// Selected returns the row under the cursor
func (p *ListPane) Selected() (Row, bool) {
	if p.cursor < 0 || p.cursor >= len(p.rows) {
		return Row{}, false
	}
	return p.rows[p.cursor], true
}

func (p *ListPane) Len() int          { return len(p.rows) }
func (p *ListPane) SetTitle(t string) { p.title = t }

func (p *ListPane) SetFocused(focused bool) { p.focused = focused }

// SetSize updates the pane dimensions
func (p *ListPane) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.recalcMaxVisible()
	p.ensureVisible()
}

// Update handles navigation keys. Reports whether the key was consumed.
func (p *ListPane) Update(msg tea.Msg) bool {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || len(p.rows) == 0 {
		return false
	}

	half := p.maxVisible / 2
	if half < 1 {
		half = 1
	}

	switch {
	case key.Matches(keyMsg, ListPaneKeys.Up):
		p.cursor--
	case key.Matches(keyMsg, ListPaneKeys.Down):
		p.cursor++
	case key.Matches(keyMsg, ListPaneKeys.First):
		p.cursor = 0
	case key.Matches(keyMsg, ListPaneKeys.Last):
		p.cursor = len(p.rows) - 1
	case key.Matches(keyMsg, ListPaneKeys.HalfUp):
		p.cursor -= half
	case key.Matches(keyMsg, ListPaneKeys.HalfDown):
		p.cursor += half
	case key.Matches(keyMsg, ListPaneKeys.PageUp):
		p.cursor -= p.maxVisible
	case key.Matches(keyMsg, ListPaneKeys.PageDown):
		p.cursor += p.maxVisible
	default:
		return false
	}
	p.clampCursor()
	return true
}

func (p *ListPane) clampCursor() {
	if p.cursor >= len(p.rows) {
		p.cursor = len(p.rows) - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
	p.ensureVisible()
}

func (p *ListPane) recalcMaxVisible() {
	// Interior height minus title line and scroll indicators
	p.maxVisible = p.height - BorderHeight - ScrollIndicatorLines - 1
	if p.maxVisible < 1 {
		p.maxVisible = 1
	}
}

func (p *ListPane) ensureVisible() {
	if p.maxVisible <= 0 {
		return
	}
	if p.cursor < p.offset {
		p.offset = p.cursor
	}
	if p.cursor >= p.offset+p.maxVisible {
		p.offset = p.cursor - p.maxVisible + 1
	}
}

// View renders the pane inside its border
func (p *ListPane) View() string {
	border := styles.InactiveBorder
	if p.focused {
		border = styles.ActiveBorder
	}
	return border.
		Width(p.width - BorderWidth).
		Height(p.height - BorderHeight).
		Render(p.renderContent())
}

func (p *ListPane) renderContent() string {
	itemWidth := p.width - BorderWidth
	if itemWidth < 10 {
		itemWidth = 10
	}

	titleLine := styles.AccentStyle.Render(styles.Truncate(p.title, itemWidth))
	if len(p.rows) == 0 {
		return titleLine + "\n \n" + styles.DimStyle.Render(p.emptyText)
	}

	end := p.offset + p.maxVisible
	if end > len(p.rows) {
		end = len(p.rows)
	}

	lines := make([]string, 0, end-p.offset)
	for i := p.offset; i < end; i++ {
		lines = append(lines, p.renderRow(p.rows[i], i == p.cursor && p.focused, itemWidth))
	}

	// Always reserve space for indicators to prevent layout shifts
	header := " "
	if p.offset > 0 {
		header = styles.DimStyle.Render("↑ more")
	}
	footer := " "
	if end < len(p.rows) {
		footer = styles.DimStyle.Render(fmt.Sprintf("↓ %d more", len(p.rows)-end))
	}

	return titleLine + "\n" + header + "\n" + strings.Join(lines, "\n") + "\n" + footer
}

func (p *ListPane) renderRow(row Row, selected bool, width int) string {
	detail := row.Detail
	detailWidth := lipgloss.Width(detail)
	titleWidth := width - 2 - detailWidth - 1
	if detail == "" {
		titleWidth = width - 2
	}

	parts := []styles.RowPart{{Text: styles.Truncate(row.Title, titleWidth)}}
	if detail != "" {
		gap := titleWidth - lipgloss.Width(parts[0].Text) + 1
		if gap < 1 {
			gap = 1
		}
		dim := styles.DimGray
		parts = append(parts,
			styles.RowPart{Text: strings.Repeat(" ", gap)},
			styles.RowPart{Text: detail, Foreground: &dim},
		)
	}
	return styles.RenderListRow(parts, selected, width)
}
