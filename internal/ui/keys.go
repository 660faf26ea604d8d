package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	NextPage  key.Binding
	PrevPage  key.Binding
	GoToPage  key.Binding
	Bigger    key.Binding
	Smaller   key.Binding
	Sort      key.Binding
	Filter    key.Binding
	FilterRow key.Binding
	Columns   key.Binding
	Pin       key.Binding
	Hide      key.Binding
	MoveLeft  key.Binding
	MoveRight key.Binding
	Narrow    key.Binding
	Widen     key.Binding
	Files     key.Binding
	Open      key.Binding
	Toggle    key.Binding
	SelectAll key.Binding
	ClearAll  key.Binding
	Delete    key.Binding
	SortFiles key.Binding
	Reverse   key.Binding
	Confirm   key.Binding
	Back      key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "right"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("pgdown", "n"),
			key.WithHelp("pgdn/n", "next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("pgup", "p"),
			key.WithHelp("pgup/p", "prev page"),
		),
		GoToPage: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "go to page"),
		),
		Bigger: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "more rows"),
		),
		Smaller: key.NewBinding(
			key.WithKeys("-", "_"),
			key.WithHelp("-", "fewer rows"),
		),
		Sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort"),
		),
		Filter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "filter"),
		),
		FilterRow: key.NewBinding(
			key.WithKeys("F"),
			key.WithHelp("F", "filter row"),
		),
		Columns: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "columns"),
		),
		Pin: key.NewBinding(
			key.WithKeys("P"),
			key.WithHelp("P", "pin"),
		),
		Hide: key.NewBinding(
			key.WithKeys("H"),
			key.WithHelp("H", "hide column"),
		),
		MoveLeft: key.NewBinding(
			key.WithKeys("<", "shift+left"),
			key.WithHelp("<", "move left"),
		),
		MoveRight: key.NewBinding(
			key.WithKeys(">", "shift+right"),
			key.WithHelp(">", "move right"),
		),
		Narrow: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "narrow"),
		),
		Widen: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "widen"),
		),
		Files: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "files"),
		),
		Open: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open file"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "toggle"),
		),
		SelectAll: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "select all"),
		),
		ClearAll: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "clear all"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "remove"),
		),
		SortFiles: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort by"),
		),
		Reverse: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reverse"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp is the one-line help under the grid.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Sort, k.Filter, k.Columns, k.Files, k.NextPage, k.PrevPage, k.Help, k.Quit}
}

// FullHelp lists every grid binding.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.NextPage, k.PrevPage, k.GoToPage, k.Bigger, k.Smaller},
		{k.Sort, k.Filter, k.FilterRow},
		{k.Columns, k.Pin, k.Hide, k.MoveLeft, k.MoveRight, k.Narrow, k.Widen},
		{k.Files, k.Open, k.Help, k.Quit},
	}
}

// panelKeys is the help shown inside the filter editor, column picker and file list.
type panelKeys []key.Binding

func (p panelKeys) ShortHelp() []key.Binding  { return p }
func (p panelKeys) FullHelp() [][]key.Binding { return [][]key.Binding{p} }
