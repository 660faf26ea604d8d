package ui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/nconklindev/sheetview/internal/view"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
)

const resizeStep = 2

func (m Model) updateTable(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.ui.editingPage {
		return m.updatePageInput(msg)
	}

	r := m.engine.Render()
	column := m.currentColumn(r)

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back):
		m.banner = ""
	case key.Matches(msg, m.keys.Help):
		m.ui.showHelp = !m.ui.showHelp
		m.help.ShowAll = m.ui.showHelp

	case key.Matches(msg, m.keys.Up):
		if m.ui.cursorRow > 0 {
			m.ui.cursorRow--
		}
	case key.Matches(msg, m.keys.Down):
		if m.ui.cursorRow < len(r.Rows)-1 {
			m.ui.cursorRow++
		}
	case key.Matches(msg, m.keys.Left):
		if m.ui.cursorCol > 0 {
			m.ui.cursorCol--
		}
	case key.Matches(msg, m.keys.Right):
		if m.ui.cursorCol < len(r.Columns)-1 {
			m.ui.cursorCol++
		}

	case key.Matches(msg, m.keys.NextPage):
		if m.engine.NextPage() {
			m.ui.cursorRow = 0
		}
	case key.Matches(msg, m.keys.PrevPage):
		if m.engine.PrevPage() {
			m.ui.cursorRow = 0
		}
	case key.Matches(msg, m.keys.GoToPage):
		m.ui.editingPage = true
		m.pageInput.SetValue(fmt.Sprint(m.engine.Page()))
		m.pageInput.CursorEnd()
		return m, m.pageInput.Focus()
	case key.Matches(msg, m.keys.Bigger):
		m.stepPageSize(1)
	case key.Matches(msg, m.keys.Smaller):
		m.stepPageSize(-1)

	case key.Matches(msg, m.keys.Sort):
		if column != "" {
			m.engine.ToggleSort(column)
			m.ui.cursorRow = 0
		}
	case key.Matches(msg, m.keys.Filter):
		if column != "" {
			return m.openFilter(column)
		}
	case key.Matches(msg, m.keys.FilterRow):
		m.ui.showFilters = !m.ui.showFilters

	case key.Matches(msg, m.keys.Columns):
		m.state = stateColumns
		m.ui.columnCursor = 0
		m.textInput.Prompt = "search: "
		m.textInput.SetValue("")
		return m, m.textInput.Focus()
	case key.Matches(msg, m.keys.Pin):
		if column != "" {
			m.engine.TogglePinned(column)
		}
	case key.Matches(msg, m.keys.Hide):
		if column != "" && m.engine.ToggleVisible(column) == nil {
			m.ui.cursorCol = min(m.ui.cursorCol, len(r.Columns)-2)
		}
	case key.Matches(msg, m.keys.MoveLeft):
		if m.ui.cursorCol > 0 && m.engine.MoveColumn(column, r.Columns[m.ui.cursorCol-1].Name) {
			m.ui.cursorCol--
		}
	case key.Matches(msg, m.keys.MoveRight):
		if m.ui.cursorCol < len(r.Columns)-1 && m.engine.MoveColumn(column, r.Columns[m.ui.cursorCol+1].Name) {
			m.ui.cursorCol++
		}
	case key.Matches(msg, m.keys.Narrow):
		if column != "" {
			m.engine.ResizeColumn(column, r.Columns[m.ui.cursorCol].Width-resizeStep)
		}
	case key.Matches(msg, m.keys.Widen):
		if column != "" {
			m.engine.ResizeColumn(column, r.Columns[m.ui.cursorCol].Width+resizeStep)
		}

	case key.Matches(msg, m.keys.Files):
		m.state = stateFiles
		m.ui.fileCursor = 0
	case key.Matches(msg, m.keys.Open):
		m.state = stateFilePicker
		return m, m.filepicker.Init()
	}

	m.ui.cursorCol = max(0, m.ui.cursorCol)
	m.ui.cursorRow = max(0, m.ui.cursorRow)
	m.scrollToCursor(m.engine.Render())
	return m, nil
}

func (m Model) updatePageInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		page, err := m.engine.SubmitPageInput(m.pageInput.Value())
		if err != nil {
			// Invalid input reverts to the last valid page without a banner.
			m.pageInput.SetValue(fmt.Sprint(page))
			return m, nil
		}
		m.ui.cursorRow = 0
		m.ui.editingPage = false
		m.pageInput.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Back):
		m.ui.editingPage = false
		m.pageInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.pageInput, cmd = m.pageInput.Update(msg)
	return m, cmd
}

func (m *Model) stepPageSize(dir int) {
	i := slices.Index(view.PageSizes, m.engine.PageSize())
	next := i + dir
	if i < 0 || next < 0 || next >= len(view.PageSizes) {
		return
	}
	if m.engine.SetPageSize(view.PageSizes[next]) == nil {
		m.ui.cursorRow = 0
	}
}

func (m Model) currentColumn(r view.RenderModel) string {
	if m.ui.cursorCol < 0 || m.ui.cursorCol >= len(r.Columns) {
		return ""
	}
	return r.Columns[m.ui.cursorCol].Name
}

// gridColumns picks the columns that fit the terminal, skipping the first
// scroll unpinned columns. Pinned columns are always drawn. The second result
// reports whether the cursor column is among them.
func (m Model) gridColumns(r view.RenderModel, scroll int) ([]view.ColumnView, bool) {
	width := m.width
	if width <= 0 {
		width = r.Layout.TotalWidth
	}

	var out []view.ColumnView
	used, unpinned, cursorShown := 0, 0, false
	for i, c := range r.Columns {
		if !c.Pinned {
			unpinned++
			if unpinned <= scroll {
				continue
			}
		}
		if used+c.Width > width && len(out) > 0 {
			break
		}
		used += c.Width
		out = append(out, c)
		if i == m.ui.cursorCol {
			cursorShown = true
		}
	}
	return out, cursorShown
}

// scrollToCursor adjusts the horizontal scroll as little as possible so the
// cursor column is drawn.
func (m *Model) scrollToCursor(r view.RenderModel) {
	if m.ui.cursorCol >= len(r.Columns) || r.Columns[m.ui.cursorCol].Pinned {
		return
	}
	before := 0
	for _, c := range r.Columns[:m.ui.cursorCol] {
		if !c.Pinned {
			before++
		}
	}
	m.ui.scrollCol = min(m.ui.scrollCol, before)
	for m.ui.scrollCol < before {
		if _, ok := m.gridColumns(r, m.ui.scrollCol); ok {
			return
		}
		m.ui.scrollCol++
	}
}

// fit pads or truncates s to exactly width terminal cells, leaving one
// trailing cell as a column gap.
func fit(s string, width int) string {
	if width <= 1 {
		return strings.Repeat(" ", max(width, 0))
	}
	s = strings.ReplaceAll(s, "\n", " ")
	s = runewidth.Truncate(s, width-1, "…")
	return runewidth.FillRight(s, width)
}

func headerLabel(c view.ColumnView) string {
	label := c.Name
	if c.Sorted {
		if c.SortDirection == view.Descending {
			label += " ▼"
		} else {
			label += " ▲"
		}
	}
	if c.FilterActive {
		label = "*" + label
	}
	return label
}

// filterSummary describes a column's filter for the filter row.
func (m Model) filterSummary(c view.ColumnView, r view.RenderModel) string {
	f, ok := m.engine.Filter(c.Name)
	var s string
	switch {
	case !ok:
		s = "all"
	case f.Kind == view.SubstringFilter:
		s = "~" + f.Text
	case len(f.Values) == 0:
		s = "none"
	default:
		s = fmt.Sprintf("%d/%d", len(f.Values), len(r.Options[c.Name]))
	}
	return fmt.Sprintf("%s (%d)", s, c.Distinct)
}

func (m Model) viewTable() string {
	r := m.engine.Render()
	ds := m.engine.Dataset()
	if ds == nil {
		return SubtitleStyle.Render("No file loaded. Press o to open one.")
	}
	cols, _ := m.gridColumns(r, m.ui.scrollCol)

	var s strings.Builder
	s.WriteString(TitleStyle.Render(ds.Name))
	s.WriteString(" ")
	s.WriteString(SubtitleStyle.Render(fmt.Sprintf("(%s / %s rows)", humanize.Comma(int64(r.FilteredRows)), humanize.Comma(int64(r.TotalRows)))))
	s.WriteString("\n")

	cursorName := m.currentColumn(r)
	for _, c := range cols {
		style := HeaderStyle
		if c.Pinned {
			style = PinnedHeaderStyle
		}
		if c.Name == cursorName {
			style = CursorStyle
		}
		s.WriteString(style.Render(fit(headerLabel(c), c.Width)))
	}
	s.WriteString("\n")

	if m.ui.showFilters {
		for _, c := range cols {
			s.WriteString(FilterRowStyle.Render(fit(m.filterSummary(c, r), c.Width)))
		}
		s.WriteString("\n")
	}

	if len(r.Rows) == 0 {
		s.WriteString(SubtitleStyle.Render("No rows match the current filters."))
		s.WriteString("\n")
	}
	for i, row := range r.Rows {
		style := CellStyle
		if i%2 == 1 {
			style = StripeStyle
		}
		for _, c := range cols {
			text := fit(ds.Cell(row, c.Name).Display(), c.Width)
			if i == m.ui.cursorRow && c.Name == cursorName {
				s.WriteString(CursorStyle.Render(text))
				continue
			}
			if i == m.ui.cursorRow {
				s.WriteString(SelectedStyle.Render(text))
				continue
			}
			s.WriteString(style.Render(text))
		}
		s.WriteString("\n")
	}

	status := fmt.Sprintf("page %d/%d • %d per page • rows %s–%s",
		r.Page, r.TotalPages, r.PageSize,
		humanize.Comma(int64(min(r.FirstRow+1, r.FilteredRows))),
		humanize.Comma(int64(r.FirstRow+len(r.Rows))))
	s.WriteString(StatusStyle.Render(status))
	if m.ui.editingPage {
		s.WriteString("  ")
		s.WriteString(m.pageInput.View())
	}
	s.WriteString("\n")
	s.WriteString(HelpStyle.Render(m.help.View(m.keys)))

	return s.String()
}
