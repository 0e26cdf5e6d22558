package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/cinelist/internal/collection"
	"github.com/mmcdole/cinelist/internal/domain"
	"github.com/mmcdole/cinelist/internal/tui/styles"
)

// SummaryPanel shows collection statistics, top picks and the selected movie
type SummaryPanel struct {
	snap     collection.Snapshot
	selected *domain.MovieDetail
	inLists  []string
	spinner  string
	width    int
	height   int
}

// NewSummaryPanel creates an empty panel
func NewSummaryPanel() SummaryPanel {
	return SummaryPanel{}
}

// SetSnapshot updates the statistics shown
func (s *SummaryPanel) SetSnapshot(snap collection.Snapshot) {
	s.snap = snap
}

// SetSelected sets the movie shown in the detail section
func (s *SummaryPanel) SetSelected(detail *domain.MovieDetail, inLists []string) {
	s.selected = detail
	s.inLists = inLists
}

// SetSpinner sets the loading indicator frame
func (s *SummaryPanel) SetSpinner(frame string) {
	s.spinner = frame
}

// SetSize updates the component dimensions
func (s *SummaryPanel) SetSize(width, height int) {
	s.width = width
	s.height = height
}

// View renders the panel
func (s SummaryPanel) View() string {
	contentWidth := max(s.width-BorderWidth-1, 10)

	var b strings.Builder
	header := "Summary"
	if s.snap.Loading {
		header += " " + s.spinner + " resolving"
	}
	b.WriteString(styles.AccentStyle.Render(header))
	b.WriteString("\n\n")

	if s.snap.LastError != nil {
		b.WriteString(styles.ErrorStyle.Render(wrap("! "+s.snap.LastError.Error(), contentWidth)))
		b.WriteString("\n")
		b.WriteString(styles.DimStyle.Render("showing last resolved data (r to retry)"))
		b.WriteString("\n\n")
	}

	s.renderStats(&b, contentWidth)
	b.WriteString("\n")
	s.renderTopPicks(&b, contentWidth)

	if s.selected != nil {
		b.WriteString("\n")
		s.renderSelected(&b, contentWidth)
	}

	return styles.InactiveBorder.
		Width(s.width - BorderWidth).
		Height(s.height - BorderHeight).
		Render(b.String())
}

func (s SummaryPanel) renderStats(b *strings.Builder, width int) {
	sum := s.snap.Summary
	field(b, "Movies", fmt.Sprintf("%d", len(s.snap.Details)), width)
	field(b, "Runtime", domain.FormatMinutes(sum.TotalRuntime), width)
	field(b, "Countries", joinOrDash(sum.Countries), width)
	field(b, "Genres", joinOrDash(sum.Genres), width)
	field(b, "Languages", joinOrDash(sum.Languages), width)
}

func (s SummaryPanel) renderTopPicks(b *strings.Builder, width int) {
	b.WriteString(styles.TitleStyle.Render("Top Picks"))
	b.WriteString("\n")

	picks := s.snap.TopPicks
	if picks.MostPopular == nil {
		b.WriteString(styles.DimStyle.Render("Add movies to see top picks"))
		b.WriteString("\n")
		return
	}

	field(b, "Popular", pickLine(picks.MostPopular, fmt.Sprintf("%.1f", picks.MostPopular.Popularity)), width)
	field(b, "Longest", pickLine(picks.MostRuntime, picks.MostRuntime.FormattedRuntime()), width)
	field(b, "Budget", pickLine(picks.MostBudget, formatBudget(picks.MostBudget.Budget)), width)
	field(b, "Oldest", pickLine(picks.Oldest, formatDate(picks.Oldest)), width)
	field(b, "Newest", pickLine(picks.Newest, formatDate(picks.Newest)), width)
}

func (s SummaryPanel) renderSelected(b *strings.Builder, width int) {
	d := s.selected
	b.WriteString(styles.TitleStyle.Render(styles.Truncate(d.Title, width)))
	b.WriteString("\n")
	field(b, "Released", formatDate(d), width)
	field(b, "Runtime", d.FormattedRuntime(), width)
	field(b, "Genres", joinOrDash(d.Genres), width)
	if len(s.inLists) > 0 {
		field(b, "In lists", strings.Join(s.inLists, ", "), width)
	}
}

const labelWidth = 10

func field(b *strings.Builder, label, value string, width int) {
	valueWidth := max(width-labelWidth, 10)
	lines := strings.Split(wrap(value, valueWidth), "\n")
	for i, line := range lines {
		if i == 0 {
			b.WriteString(styles.LabelStyle.Render(styles.Pad(label, labelWidth)))
		} else {
			b.WriteString(strings.Repeat(" ", labelWidth))
		}
		b.WriteString(styles.SubtitleStyle.Render(line))
		b.WriteString("\n")
	}
}

// wrap word-wraps text to width
func wrap(text string, width int) string {
	return lipgloss.NewStyle().Width(width).Render(text)
}

func joinOrDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ", ")
}

func pickLine(d *domain.MovieDetail, metric string) string {
	return d.Title + " (" + metric + ")"
}

func formatDate(d *domain.MovieDetail) string {
	if d.ReleaseDate.IsZero() {
		return "unknown"
	}
	return d.ReleaseDate.Format("Jan 2, 2006")
}

// formatBudget renders a dollar amount with thousands separators
func formatBudget(budget int64) string {
	if budget <= 0 {
		return "unknown"
	}
	s := fmt.Sprintf("%d", budget)
	var out strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteRune(r)
	}
	return "$" + out.String()
}
