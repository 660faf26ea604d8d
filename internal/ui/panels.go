package ui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/nconklindev/sheetview/internal/types"
	"github.com/nconklindev/sheetview/internal/view"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
)

const listHeight = 15

// window returns the [start, end) slice of n items that keeps cursor visible.
func window(cursor, n, height int) (int, int) {
	if n <= height {
		return 0, n
	}
	start := max(0, min(cursor-height/2, n-height))
	return start, start + height
}

func (m Model) openFilter(column string) (tea.Model, tea.Cmd) {
	m.state = stateFilter
	m.ui.filterColumn = column
	m.ui.optionCursor = 0
	if m.engine.FilterMode(column) == view.ModeSubstring {
		m.textInput.Prompt = "contains: "
		m.textInput.SetValue("")
		if f, ok := m.engine.Filter(column); ok && f.Kind == view.SubstringFilter {
			m.textInput.SetValue(f.Text)
		}
		return m, m.textInput.Focus()
	}
	return m, nil
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	column := m.ui.filterColumn
	if key.Matches(msg, m.keys.Back) || key.Matches(msg, m.keys.Confirm) {
		m.state = stateTable
		m.textInput.Blur()
		return m, nil
	}

	if m.engine.FilterMode(column) == view.ModeSubstring {
		before := m.textInput.Value()
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		if text := m.textInput.Value(); text != before {
			m.engine.SetSubstring(column, text)
			m.ui.cursorRow = 0
		}
		return m, cmd
	}

	options := m.engine.Options(column)
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.ui.optionCursor > 0 {
			m.ui.optionCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.ui.optionCursor < len(options)-1 {
			m.ui.optionCursor++
		}
	case key.Matches(msg, m.keys.Toggle):
		if m.ui.optionCursor < len(options) {
			m.engine.ToggleFilterOption(column, options[m.ui.optionCursor])
			m.ui.cursorRow = 0
		}
	case key.Matches(msg, m.keys.SelectAll):
		m.engine.SelectAllOptions(column)
		m.ui.cursorRow = 0
	case key.Matches(msg, m.keys.ClearAll):
		m.engine.ClearAllOptions(column)
		m.ui.cursorRow = 0
	}
	return m, nil
}

func (m Model) viewFilter() string {
	column := m.ui.filterColumn
	r := m.engine.Render()

	var s strings.Builder
	s.WriteString(TitleStyle.Render("Filter: " + column))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render(fmt.Sprintf("%d distinct values remaining • %s of %s rows",
		r.LiveCounts[column], humanize.Comma(int64(r.FilteredRows)), humanize.Comma(int64(r.TotalRows)))))
	s.WriteString("\n\n")

	if m.engine.FilterMode(column) == view.ModeSubstring {
		s.WriteString(m.textInput.View())
		s.WriteString("\n")
		s.WriteString(HelpStyle.Render(m.help.View(panelKeys{m.keys.Confirm, m.keys.Back})))
		return BoxStyle.Render(s.String())
	}

	options := m.engine.Options(column)
	f, filtered := m.engine.Filter(column)
	start, end := window(m.ui.optionCursor, len(options), listHeight)
	for i := start; i < end; i++ {
		v := options[i]
		selected := !filtered || f.Has(v)

		cursor := " "
		if m.ui.optionCursor == i {
			cursor = ">"
		}
		checked := " "
		if selected {
			checked = "✓"
		}
		line := fmt.Sprintf("%s [%s] %s", cursor, checked, v.Display())

		switch {
		case m.ui.optionCursor == i:
			line = SelectedStyle.Render(line)
		case selected:
			line = CheckedStyle.Render(line)
		default:
			line = UnselectedStyle.Render(line)
		}
		s.WriteString(line)
		s.WriteString("\n")
	}
	if len(options) == 0 {
		s.WriteString(SubtitleStyle.Render("(no values)"))
		s.WriteString("\n")
	}
	s.WriteString(HelpStyle.Render(m.help.View(panelKeys{m.keys.Up, m.keys.Down, m.keys.Toggle, m.keys.SelectAll, m.keys.ClearAll, m.keys.Back})))
	return BoxStyle.Render(s.String())
}

// pickerColumns lists columns for the column picker: pinned columns first,
// then the rest in display order, narrowed by the search text.
func (m Model) pickerColumns() []string {
	order := m.engine.ColumnOrder()
	var pinned, rest []string
	for _, c := range order {
		if m.engine.IsPinned(c) {
			pinned = append(pinned, c)
		} else {
			rest = append(rest, c)
		}
	}
	all := append(pinned, rest...)

	query := strings.TrimSpace(m.textInput.Value())
	if query == "" {
		return all
	}
	fold := cases.Fold()
	needle := fold.String(query)
	return slices.DeleteFunc(all, func(c string) bool {
		return !strings.Contains(fold.String(c), needle)
	})
}

func (m Model) updateColumns(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	columns := m.pickerColumns()
	current := ""
	if m.ui.columnCursor < len(columns) {
		current = columns[m.ui.columnCursor]
	}

	switch msg.String() {
	case "esc", "enter":
		m.state = stateTable
		m.textInput.Blur()
		return m, nil
	case "up":
		if m.ui.columnCursor > 0 {
			m.ui.columnCursor--
		}
		return m, nil
	case "down":
		if m.ui.columnCursor < len(columns)-1 {
			m.ui.columnCursor++
		}
		return m, nil
	case " ":
		if current != "" {
			_ = m.engine.ToggleVisible(current)
		}
		return m, nil
	case "ctrl+p":
		if current != "" {
			m.engine.TogglePinned(current)
		}
		return m, nil
	case "shift+up", "shift+down":
		m.moveInOrder(current, msg.String() == "shift+up")
		return m, nil
	case "ctrl+a":
		m.engine.ShowAll()
		return m, nil
	case "ctrl+x":
		m.engine.HideAll()
		return m, nil
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	m.ui.columnCursor = min(m.ui.columnCursor, max(0, len(m.pickerColumns())-1))
	return m, cmd
}

// moveInOrder swaps a column with its neighbour in the full column order.
func (m *Model) moveInOrder(column string, up bool) {
	order := m.engine.ColumnOrder()
	i := slices.Index(order, column)
	if i < 0 {
		return
	}
	j := i + 1
	if up {
		j = i - 1
	}
	if j < 0 || j >= len(order) {
		return
	}
	m.engine.MoveColumn(column, order[j])
}

var columnPickerHelp = panelKeys{
	key.NewBinding(key.WithKeys("space"), key.WithHelp("space", "show/hide")),
	key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "pin")),
	key.NewBinding(key.WithKeys("shift+up", "shift+down"), key.WithHelp("shift+↑/↓", "move")),
	key.NewBinding(key.WithKeys("ctrl+a"), key.WithHelp("ctrl+a", "show all")),
	key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "hide all")),
	key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
}

func (m Model) viewColumns() string {
	r := m.engine.Render()
	columns := m.pickerColumns()

	var s strings.Builder
	s.WriteString(TitleStyle.Render("Columns"))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render(fmt.Sprintf("%d of %d visible", len(r.Columns), len(m.engine.ColumnOrder()))))
	s.WriteString("\n\n")
	s.WriteString(m.textInput.View())
	s.WriteString("\n\n")

	start, end := window(m.ui.columnCursor, len(columns), listHeight)
	for i := start; i < end; i++ {
		c := columns[i]
		cursor := " "
		if m.ui.columnCursor == i {
			cursor = ">"
		}
		checked := " "
		if m.engine.IsVisible(c) {
			checked = "✓"
		}
		pin := ""
		if m.engine.IsPinned(c) {
			pin = " (pinned)"
		}
		line := fmt.Sprintf("%s [%s] %s%s", cursor, checked, c, pin)
		if n, ok := r.LiveCounts[c]; ok {
			line += SubtitleStyle.Render(fmt.Sprintf("  %d distinct", n))
		}

		switch {
		case m.ui.columnCursor == i:
			line = SelectedStyle.Render(line)
		case m.engine.IsVisible(c):
			line = CheckedStyle.Render(line)
		default:
			line = UnselectedStyle.Render(line)
		}
		s.WriteString(line)
		s.WriteString("\n")
	}
	s.WriteString(HelpStyle.Render(m.help.View(columnPickerHelp)))
	return BoxStyle.Render(s.String())
}

func (m Model) fileList() []*types.Dataset {
	return m.catalog.List(m.ui.fileSort, m.ui.fileDesc)
}

func (m Model) updateFiles(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	files := m.fileList()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Files):
		m.state = stateTable
	case key.Matches(msg, m.keys.Up):
		if m.ui.fileCursor > 0 {
			m.ui.fileCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.ui.fileCursor < len(files)-1 {
			m.ui.fileCursor++
		}
	case key.Matches(msg, m.keys.Toggle):
		if m.ui.fileCursor < len(files) {
			id := files[m.ui.fileCursor].ID
			if m.ui.marked[id] {
				delete(m.ui.marked, id)
			} else {
				m.ui.marked[id] = true
			}
		}
	case key.Matches(msg, m.keys.Confirm):
		if m.ui.fileCursor < len(files) {
			m.catalog.Select(files[m.ui.fileCursor].ID)
			m.syncSelection()
			m.state = stateTable
		}
	case key.Matches(msg, m.keys.Delete):
		ids := make([]types.FileID, 0, len(m.ui.marked))
		for id := range m.ui.marked {
			ids = append(ids, id)
		}
		if len(ids) == 0 && m.ui.fileCursor < len(files) {
			ids = append(ids, files[m.ui.fileCursor].ID)
		}
		m.catalog.Remove(ids...)
		clear(m.ui.marked)
		m.syncSelection()
		m.ui.fileCursor = min(m.ui.fileCursor, max(0, m.catalog.Len()-1))
		if m.catalog.Len() == 0 {
			m.state = stateFilePicker
			return m, m.filepicker.Init()
		}
	case key.Matches(msg, m.keys.SortFiles):
		m.ui.fileSort = (m.ui.fileSort + 1) % 3
	case key.Matches(msg, m.keys.Reverse):
		m.ui.fileDesc = !m.ui.fileDesc
	case key.Matches(msg, m.keys.Open):
		m.state = stateFilePicker
		return m, m.filepicker.Init()
	}
	return m, nil
}

func (m Model) viewFiles() string {
	files := m.fileList()
	selected := m.catalog.Selected()

	rows := make([][]string, 0, len(files))
	for _, ds := range files {
		mark := " "
		if m.ui.marked[ds.ID] {
			mark = "x"
		}
		if ds == selected {
			mark += "●"
		} else {
			mark += " "
		}
		rows = append(rows, []string{
			mark,
			ds.Name,
			humanize.Bytes(uint64(max(ds.Size, 0))),
			humanize.Comma(int64(ds.RowCount())),
			fmt.Sprint(len(ds.Columns)),
		})
	}

	direction := "↑"
	if m.ui.fileDesc {
		direction = "↓"
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(accent)).
		Headers("", "Name", "Size", "Rows", "Columns").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return HeaderStyle.Padding(0, 1)
			}
			if row == m.ui.fileCursor {
				return SelectedStyle.Padding(0, 1)
			}
			return UnselectedStyle.Padding(0, 1)
		})

	var s strings.Builder
	s.WriteString(TitleStyle.Render("Files"))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render(fmt.Sprintf("%d loaded • sorted by %s %s", len(files), m.ui.fileSort, direction)))
	s.WriteString("\n")
	s.WriteString(t.String())
	s.WriteString("\n")
	s.WriteString(HelpStyle.Render(m.help.View(panelKeys{m.keys.Up, m.keys.Down, m.keys.Confirm, m.keys.Toggle, m.keys.Delete, m.keys.SortFiles, m.keys.Reverse, m.keys.Open, m.keys.Back})))
	return s.String()
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("sheetview"))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render("Select a CSV or Excel file to view"))
	s.WriteString("\n\n")
	s.WriteString(m.filepicker.View())
	s.WriteString("\n")
	hint := "Press q to quit"
	if m.catalog.Len() > 0 {
		hint = "esc: back to table • q: quit"
	}
	s.WriteString(HelpStyle.Render(hint))

	return s.String()
}

func (m Model) viewLoading() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("Loading..."))
	s.WriteString("\n\n")
	s.WriteString("Decoding files...")
	s.WriteString("\n\n")
	s.WriteString(m.progress.View())

	return BoxStyle.Render(s.String())
}
