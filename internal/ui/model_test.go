package ui

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/nconklindev/sheetview/internal/catalog"
	"github.com/nconklindev/sheetview/internal/config"
	"github.com/nconklindev/sheetview/internal/converter"
	"github.com/nconklindev/sheetview/internal/types"
	"github.com/nconklindev/sheetview/internal/view"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func testDataset(t *testing.T, name string) *types.Dataset {
	t.Helper()
	rows := make([]types.Row, 120)
	for i := range rows {
		dept := "Ops"
		if i%3 == 0 {
			dept = "Dev"
		}
		rows[i] = types.Row{types.Number(float64(i)), types.String(dept), types.Bool(i%2 == 0)}
	}
	ds, err := types.NewDataset(types.FileInfo{Name: name, ModTime: time.Unix(1, 0)}, []string{"ID", "Dept", "Even"}, rows)
	if err != nil {
		t.Fatalf("NewDataset: %v", err)
	}
	return ds
}

// loadedModel returns a model showing one dataset, as if a batch had just finished.
func loadedModel(t *testing.T, datasets ...*types.Dataset) Model {
	t.Helper()
	m := New(Options{Settings: config.Default()})
	m = press(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m.catalog.Merge(datasets...)
	return press(t, m, batchLoadedMsg{})
}

func TestBatchLoadedShowsTable(t *testing.T) {
	m := loadedModel(t, testDataset(t, "a.csv"))
	if m.state != stateTable {
		t.Fatalf("state = %v; want table", m.state)
	}
	if m.engine.Dataset() == nil || m.engine.Dataset().Name != "a.csv" {
		t.Errorf("engine dataset = %v", m.engine.Dataset())
	}
	if got := m.engine.Config().Layout.Widths["ID"]; got != 40 {
		t.Errorf("column width = %d; want 120 spread over 3 columns", got)
	}
	if !strings.Contains(m.View(), "(120 / 120 rows)") {
		t.Errorf("row counter missing from view:\n%s", m.View())
	}
}

func TestBatchErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		banner string
	}{
		{"Unsupported", catalog.ErrUnsupportedFileType, msgUnsupported},
		{"Decode", &converter.DecodeError{Name: "x.csv", Err: errors.New("bad")}, msgDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(Options{Settings: config.Default()})
			m = press(t, m, batchLoadedMsg{err: tt.err})
			if m.banner != tt.banner {
				t.Errorf("banner = %q; want %q", m.banner, tt.banner)
			}
			if m.state != stateFilePicker {
				t.Errorf("state = %v; want file picker with nothing loaded", m.state)
			}
			if !strings.Contains(m.View(), tt.banner) {
				t.Error("banner not rendered")
			}
		})
	}
}

func TestTableKeys(t *testing.T) {
	m := loadedModel(t, testDataset(t, "a.csv"))

	m = press(t, m, runes("n"), runes("n"))
	if m.engine.Page() != 3 {
		t.Fatalf("page = %d; want 3", m.engine.Page())
	}

	m = press(t, m, runes("s"))
	if s := m.engine.Sort(); s == nil || s.Column != "ID" || s.Direction != view.Ascending {
		t.Errorf("sort = %+v", s)
	}
	if m.engine.Page() != 1 {
		t.Errorf("sorting left page %d", m.engine.Page())
	}

	m = press(t, m, runes("s"))
	if s := m.engine.Sort(); s.Direction != view.Descending {
		t.Errorf("second press = %+v", s)
	}

	m = press(t, m, runes("+"))
	if m.engine.PageSize() != 100 {
		t.Errorf("page size = %d; want 100", m.engine.PageSize())
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyRight}, runes("P"))
	if !m.engine.IsPinned("Dept") {
		t.Error("Dept should be pinned")
	}

	m = press(t, m, runes(">"))
	if got := m.engine.ColumnOrder(); got[2] != "Dept" || m.ui.cursorCol != 2 {
		t.Errorf("order = %v, cursor %d", got, m.ui.cursorCol)
	}

	m = press(t, m, runes("H"))
	if m.engine.IsVisible("Dept") || m.engine.IsPinned("Dept") {
		t.Error("hidden column should be hidden and unpinned")
	}

	m = press(t, m, runes("]"))
	col := m.currentColumn(m.engine.Render())
	if w := m.engine.Config().Layout.Widths[col]; w != 42 {
		t.Errorf("width of %s = %d; want 42", col, w)
	}
}

func TestPageInput(t *testing.T) {
	m := loadedModel(t, testDataset(t, "a.csv"))

	m = press(t, m, runes("g"))
	if !m.ui.editingPage {
		t.Fatal("page input not open")
	}
	m.pageInput.SetValue("9")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.pageInput.Value() != "1" || !m.ui.editingPage || m.banner != "" {
		t.Errorf("invalid page: input %q, editing %v, banner %q", m.pageInput.Value(), m.ui.editingPage, m.banner)
	}

	m.pageInput.SetValue("2")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.engine.Page() != 2 || m.ui.editingPage {
		t.Errorf("page = %d, editing %v", m.engine.Page(), m.ui.editingPage)
	}
}

func TestFilterEditor(t *testing.T) {
	m := loadedModel(t, testDataset(t, "a.csv"))

	m = press(t, m, tea.KeyMsg{Type: tea.KeyRight}, runes("f"))
	if m.state != stateFilter || m.ui.filterColumn != "Dept" {
		t.Fatalf("state %v, column %q", m.state, m.ui.filterColumn)
	}

	// Options are Dev, Ops in first-seen order; deselect Dev.
	m = press(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if got := m.engine.Render().FilteredRows; got != 80 {
		t.Errorf("filtered = %d; want 80 Ops rows", got)
	}
	m = press(t, m, runes("x"))
	if got := m.engine.Render().FilteredRows; got != 0 {
		t.Errorf("clear all kept %d rows", got)
	}
	m = press(t, m, runes("a"))
	if got := m.engine.Render().FilteredRows; got != 120 {
		t.Errorf("select all kept %d rows", got)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.state != stateTable {
		t.Errorf("state = %v; want table", m.state)
	}

	// ID has 120 distinct values, so it gets a substring filter.
	m = press(t, m, tea.KeyMsg{Type: tea.KeyLeft}, runes("f"), runes("11"))
	if got := m.engine.Render().FilteredRows; got != 11 {
		t.Errorf("substring 11 kept %d rows; want 11 and 110-119", got)
	}
}

func TestColumnPicker(t *testing.T) {
	m := loadedModel(t, testDataset(t, "a.csv"))

	m = press(t, m, runes("c"))
	if m.state != stateColumns {
		t.Fatalf("state = %v", m.state)
	}

	m = press(t, m, runes("ev"))
	if cols := m.pickerColumns(); len(cols) != 1 || cols[0] != "Even" {
		t.Fatalf("search results = %v", cols)
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if m.engine.IsVisible("Even") {
		t.Error("Even should be hidden")
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlX})
	if got := m.engine.Config().Layout.Visible; len(got) != 1 || got[0] != "ID" {
		t.Errorf("hide all kept %v", got)
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlA})
	if got := m.engine.Config().Layout.Visible; len(got) != 3 {
		t.Errorf("show all = %v", got)
	}
}

func TestFileList(t *testing.T) {
	a, b := testDataset(t, "a.csv"), testDataset(t, "b.csv")
	m := loadedModel(t, a, b)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.state != stateFiles {
		t.Fatalf("state = %v", m.state)
	}
	if out := m.View(); !strings.Contains(out, "a.csv") || !strings.Contains(out, "b.csv") {
		t.Errorf("file list view:\n%s", out)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyEnter})
	if m.engine.Dataset() != b || m.state != stateTable {
		t.Fatalf("selected %v in state %v", m.engine.Dataset(), m.state)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab}, tea.KeyMsg{Type: tea.KeyDown}, runes("d"))
	if m.catalog.Len() != 1 || m.engine.Dataset() != a {
		t.Errorf("after removing b: %d files, showing %v", m.catalog.Len(), m.engine.Dataset())
	}

	m = press(t, m, runes("d"))
	if m.catalog.Len() != 0 || m.state != stateFilePicker || m.engine.Dataset() != nil {
		t.Errorf("after removing all: %d files, state %v", m.catalog.Len(), m.state)
	}
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "people.csv")
	if err := os.WriteFile(path, []byte("Name,Age\nAlice,30\nBob,41\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	m := New(Options{Settings: config.Default(), Files: []string{path}})
	next, cmd := m.Update(openFilesMsg{path})
	m = next.(Model)
	if m.state != stateLoading || cmd == nil {
		t.Fatalf("state = %v", m.state)
	}

	m = drain(t, m, cmd)
	if m.state != stateTable || m.banner != "" {
		t.Fatalf("state %v, banner %q", m.state, m.banner)
	}
	if ds := m.engine.Dataset(); ds == nil || ds.RowCount() != 2 {
		t.Errorf("dataset = %v", ds)
	}
}

// drain runs cmd and every command it produces, feeding the messages back
// into the model. Progress bar animation frames are dropped.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 100 {
			t.Fatal("commands did not settle")
		}
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil, progress.FrameMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			next, nc := m.Update(msg)
			m = next.(Model)
			queue = append(queue, nc)
		}
	}
	return m
}

func TestHorizontalScroll(t *testing.T) {
	m := New(Options{Settings: config.Default()})
	// Three 12-cell columns in a 30-cell window: two fit at a time.
	m = press(t, m, tea.WindowSizeMsg{Width: 30, Height: 40})
	m.catalog.Merge(testDataset(t, "a.csv"))
	m = press(t, m, batchLoadedMsg{})

	shown := func(m Model) []string {
		cols, _ := m.gridColumns(m.engine.Render(), m.ui.scrollCol)
		var names []string
		for _, c := range cols {
			names = append(names, c.Name)
		}
		return names
	}

	tests := []struct {
		name   string
		key    tea.KeyMsg
		cursor int
		scroll int
		shown  []string
	}{
		{"Right stays in view", tea.KeyMsg{Type: tea.KeyRight}, 1, 0, []string{"ID", "Dept"}},
		{"Right scrolls", tea.KeyMsg{Type: tea.KeyRight}, 2, 1, []string{"Dept", "Even"}},
		{"Left keeps scroll", tea.KeyMsg{Type: tea.KeyLeft}, 1, 1, []string{"Dept", "Even"}},
		{"Left scrolls back", tea.KeyMsg{Type: tea.KeyLeft}, 0, 0, []string{"ID", "Dept"}},
	}

	for _, tt := range tests {
		m = press(t, m, tt.key)
		if m.ui.cursorCol != tt.cursor || m.ui.scrollCol != tt.scroll {
			t.Errorf("%s: cursor %d scroll %d; want %d and %d", tt.name, m.ui.cursorCol, m.ui.scrollCol, tt.cursor, tt.scroll)
		}
		if got := shown(m); !slices.Equal(got, tt.shown) {
			t.Errorf("%s: shown %v; want %v", tt.name, got, tt.shown)
		}
	}
}

func TestSubstringFilterIgnoresCursorKeys(t *testing.T) {
	m := loadedModel(t, testDataset(t, "a.csv"))
	m = press(t, m, runes("-"), runes("-"))
	if m.engine.PageSize() != 10 {
		t.Fatalf("page size = %d; want 10", m.engine.PageSize())
	}

	m = press(t, m, runes("f"), runes("1"), tea.KeyMsg{Type: tea.KeyEsc}, runes("n"))
	if m.engine.Page() != 2 {
		t.Fatalf("page = %d; want 2 of %d", m.engine.Page(), m.engine.TotalPages())
	}

	m = press(t, m, runes("f"))
	if m.textInput.Value() != "1" {
		t.Fatalf("filter input = %q; want the current text", m.textInput.Value())
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyLeft}, tea.KeyMsg{Type: tea.KeyRight}, tea.KeyMsg{Type: tea.KeyHome})
	if m.engine.Page() != 2 {
		t.Errorf("cursor keys in the filter input moved to page %d", m.engine.Page())
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnd}, runes("1"))
	if f, ok := m.engine.Filter("ID"); !ok || f.Text != "11" || m.engine.Page() != 1 {
		t.Errorf("filter %+v, page %d; want 11 on page 1", f, m.engine.Page())
	}
}
