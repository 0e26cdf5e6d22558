package components

import "github.com/charmbracelet/bubbles/key"

// ListPaneKeyMap moves the cursor of a lists or movies pane
type ListPaneKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	First    key.Binding
	Last     key.Binding
	HalfUp   key.Binding
	HalfDown key.Binding
	PageUp   key.Binding
	PageDown key.Binding
}

// MoviePaneKeyMap acts on the movie under the cursor of the movies pane
type MoviePaneKeyMap struct {
	Remove key.Binding
	Open   key.Binding
}

// OmnibarKeyMap drives catalog search and collection filtering
type OmnibarKeyMap struct {
	Close  key.Binding
	Accept key.Binding
	Prev   key.Binding
	Next   key.Binding
}

var (
	ListPaneKeys = ListPaneKeyMap{
		Up:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k", "previous row")),
		Down:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j", "next row")),
		First:    key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "first row")),
		Last:     key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "last row")),
		HalfUp:   key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("C-u", "half page up")),
		HalfDown: key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("C-d", "half page down")),
		PageUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("PgUp", "page up")),
		PageDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("PgDn", "page down")),
	}

	// Remove answers with the guarded-deletion warning when the movie is the
	// last one in its list
	MoviePaneKeys = MoviePaneKeyMap{
		Remove: key.NewBinding(key.WithKeys("d", "x"), key.WithHelp("d", "remove")),
		Open:   key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open on TMDB")),
	}

	OmnibarKeys = OmnibarKeyMap{
		Close:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Accept: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "search / add / jump")),
		Prev:   key.NewBinding(key.WithKeys("up", "ctrl+p"), key.WithHelp("↑", "previous result")),
		Next:   key.NewBinding(key.WithKeys("down", "ctrl+n"), key.WithHelp("↓", "next result")),
	}
)
