package view

import (
	"github.com/nconklindev/sheetview/internal/types"
)

// revision identifies the inputs a cached stage was computed from. Revisions
// start at 1 once a dataset is set, so the zero value never matches.
type revision struct {
	data, filter, sort uint64
}

// Engine owns the view Config of the current dataset and applies user
// actions to it one at a time. Each pipeline stage is cached by the
// revisions of its inputs, so Render returns exactly what Derive would.
//
// An Engine is not safe for concurrent use.
type Engine struct {
	opts      Options
	pageSize  int
	available int
	resized   bool

	ds  *types.Dataset
	cfg Config
	rev revision

	optionsAt  revision
	options    map[string][]types.Value
	filteredAt revision
	filtered   []types.Row
	counts     map[string]int
	sortedAt   revision
	sorted     []types.Row
}

var _ ColumnController = (*Engine)(nil)

// NewEngine returns an engine with no dataset. pageSize is the page size every
// newly selected dataset starts with.
func NewEngine(opts Options, pageSize int) *Engine {
	if !ValidPageSize(pageSize) {
		pageSize = DefaultPageSize
	}
	e := &Engine{opts: opts.normalized(), pageSize: pageSize}
	e.cfg = NewConfig(nil, nil, pageSize)
	return e
}

// SetDataset switches to ds and resets the view: all columns visible in
// dataset order, nothing pinned, filtered or sorted, page 1, widths spread
// over the available width.
func (e *Engine) SetDataset(ds *types.Dataset) {
	e.ds = ds
	e.resized = false
	e.rev.data++
	e.rev.filter++
	e.rev.sort++

	var columns []string
	if ds != nil {
		columns = ds.Columns
	}
	e.cfg = NewConfig(columns, InitialWidths(columns, e.available, e.opts.MinColumnWidth), e.pageSize)
}

// SetAvailableWidth records the display width. Until a column has been
// resized by hand, widths are spread over the new width.
func (e *Engine) SetAvailableWidth(width int) {
	e.available = width
	if e.ds != nil && !e.resized {
		e.cfg.Layout.Widths = InitialWidths(e.ds.Columns, width, e.opts.MinColumnWidth)
	}
}

func (e *Engine) Dataset() *types.Dataset { return e.ds }

// Config returns a copy of the current view state.
func (e *Engine) Config() Config { return e.cfg.Clone() }

func (e *Engine) known(column string) bool {
	return e.ds != nil && e.ds.HasColumn(column)
}

// Render derives the model for the current dataset and config.
func (e *Engine) Render() RenderModel {
	if e.ds == nil {
		return assemble(nil, e.cfg, e.opts, stages{})
	}
	return assemble(e.ds, e.cfg, e.opts, stages{
		options:  e.columnOptions(),
		filtered: e.filteredRows(),
		counts:   e.liveCounts(),
		sorted:   e.sortedRows(),
	})
}

func (e *Engine) columnOptions() map[string][]types.Value {
	key := revision{data: e.rev.data}
	if e.optionsAt != key {
		e.options = AllDistinctValues(e.ds, e.ds.Rows)
		e.optionsAt = key
	}
	return e.options
}

func (e *Engine) filteredRows() []types.Row {
	key := revision{data: e.rev.data, filter: e.rev.filter}
	if e.filteredAt != key {
		e.filtered = FilterRows(e.ds, e.ds.Rows, e.cfg.Filters)
		e.counts = DistinctCounts(e.ds, e.filtered)
		e.filteredAt = key
	}
	return e.filtered
}

func (e *Engine) liveCounts() map[string]int {
	e.filteredRows()
	return e.counts
}

func (e *Engine) sortedRows() []types.Row {
	filtered := e.filteredRows()
	if e.sortedAt != e.rev {
		e.sorted = SortRows(e.ds, filtered, e.cfg.Sort)
		e.sortedAt = e.rev
	}
	return e.sorted
}

// Options returns the distinct values of column over the whole dataset.
func (e *Engine) Options(column string) []types.Value {
	if !e.known(column) {
		return nil
	}
	return e.columnOptions()[column]
}

// FilterMode reports how column's filter should be presented.
func (e *Engine) FilterMode(column string) FilterMode {
	return ModeFor(len(e.Options(column)), e.opts.TextFilterThreshold)
}

// Filter returns the active filter on column.
func (e *Engine) Filter(column string) (Filter, bool) {
	f, ok := e.cfg.Filters[column]
	if !ok {
		return Filter{}, false
	}
	return f.Clone(), true
}

// SetFilter replaces the filter on column; nil or an empty substring removes
// it. Any change returns to page 1.
func (e *Engine) SetFilter(column string, f *Filter) {
	if !e.known(column) {
		return
	}
	if f == nil || (f.Kind == SubstringFilter && f.Text == "") {
		delete(e.cfg.Filters, column)
	} else {
		e.cfg.Filters[column] = f.Clone()
	}
	e.rev.filter++
	e.cfg.Page.CurrentPage = 1
}

// SetSubstring sets a substring filter on column.
func (e *Engine) SetSubstring(column, text string) {
	f := NewSubstringFilter(text)
	e.SetFilter(column, &f)
}

// ToggleFilterOption flips one value of column's set filter.
func (e *Engine) ToggleFilterOption(column string, value types.Value) {
	if !e.known(column) {
		return
	}
	var current *Filter
	if f, ok := e.cfg.Filters[column]; ok {
		current = &f
	}
	next, keep := ToggleOption(current, e.Options(column), value)
	if !keep {
		e.SetFilter(column, nil)
		return
	}
	e.SetFilter(column, &next)
}

// SelectAllOptions removes column's filter.
func (e *Engine) SelectAllOptions(column string) {
	e.SetFilter(column, nil)
}

// ClearAllOptions installs an empty set filter, which hides every row.
func (e *Engine) ClearAllOptions(column string) {
	f := NewSetFilter()
	e.SetFilter(column, &f)
}

// Sort returns the active sort, or nil for natural order.
func (e *Engine) Sort() *SortConfig {
	if e.cfg.Sort == nil {
		return nil
	}
	s := *e.cfg.Sort
	return &s
}

// ToggleSort applies a header click on column.
func (e *Engine) ToggleSort(column string) {
	if !e.known(column) {
		return
	}
	e.cfg.Sort = NextSort(e.cfg.Sort, column)
	e.rev.sort++
	e.cfg.Page.CurrentPage = 1
}

func (e *Engine) PageSize() int { return e.cfg.Page.PageSize }

// Page returns the current page, clamped to the page count.
func (e *Engine) Page() int {
	return ClampPage(e.cfg.Page.CurrentPage, e.TotalPages())
}

// TotalPages returns the page count for the filtered rows.
func (e *Engine) TotalPages() int {
	if e.ds == nil {
		return 1
	}
	return TotalPages(len(e.filteredRows()), e.cfg.Page.PageSize)
}

// SetPageSize changes the page size and returns to page 1.
func (e *Engine) SetPageSize(n int) error {
	if !ValidPageSize(n) {
		return ErrInvalidPageSize
	}
	e.cfg.Page.PageSize = n
	e.cfg.Page.CurrentPage = 1
	return nil
}

// GotoPage jumps to page n; out-of-range pages are rejected.
func (e *Engine) GotoPage(n int) error {
	if n < 1 || n > e.TotalPages() {
		return ErrInvalidPage
	}
	e.cfg.Page.CurrentPage = n
	return nil
}

// SubmitPageInput parses typed page input. On error the current page is kept
// and returned so the input can be reverted.
func (e *Engine) SubmitPageInput(input string) (int, error) {
	n, err := ParsePage(input, e.TotalPages())
	if err != nil {
		return e.Page(), err
	}
	e.cfg.Page.CurrentPage = n
	return n, nil
}

// NextPage advances one page if there is one.
func (e *Engine) NextPage() bool {
	return e.GotoPage(e.Page()+1) == nil
}

// PrevPage goes back one page if there is one.
func (e *Engine) PrevPage() bool {
	return e.GotoPage(e.Page()-1) == nil
}

// MoveColumn moves from to to's position in the column order.
func (e *Engine) MoveColumn(from, to string) bool {
	if !e.known(from) || !e.known(to) {
		return false
	}
	order, ok := MoveColumn(e.cfg.Layout.Order, from, to)
	if ok {
		e.cfg.Layout.Order = order
	}
	return ok
}

// ResizeColumn sets a column width, clamped to the minimum.
func (e *Engine) ResizeColumn(name string, width int) {
	if !e.known(name) {
		return
	}
	e.cfg.Layout = ResizeColumn(e.cfg.Layout, name, width, e.opts.MinColumnWidth)
	e.resized = true
}

// SetPinned pins or unpins a visible column.
func (e *Engine) SetPinned(name string, pinned bool) {
	if !e.known(name) {
		return
	}
	e.cfg.Layout = SetPinned(e.cfg.Layout, name, pinned)
}

// TogglePinned flips a column's pinned state.
func (e *Engine) TogglePinned(name string) {
	e.SetPinned(name, !e.IsPinned(name))
}

func (e *Engine) IsPinned(name string) bool {
	for _, c := range e.cfg.Layout.Pinned {
		if c == name {
			return true
		}
	}
	return false
}

func (e *Engine) IsVisible(name string) bool {
	for _, c := range e.cfg.Layout.Visible {
		if c == name {
			return true
		}
	}
	return false
}

// ToggleVisible shows or hides a column. Hiding the last visible column is
// rejected with ErrLastVisibleColumn and changes nothing.
func (e *Engine) ToggleVisible(name string) error {
	if !e.known(name) {
		return ErrUnknownColumn
	}
	layout, err := ToggleVisible(e.cfg.Layout, name)
	if err != nil {
		return err
	}
	e.cfg.Layout = layout
	return nil
}

// ShowAll makes every column visible.
func (e *Engine) ShowAll() {
	if e.ds == nil {
		return
	}
	e.cfg.Layout = ShowAll(e.cfg.Layout, e.ds.Columns)
}

// HideAll keeps the pinned visible columns, or the first visible one.
func (e *Engine) HideAll() {
	e.cfg.Layout = HideAll(e.cfg.Layout)
}

// ColumnOrder returns the full column order, hidden columns included.
func (e *Engine) ColumnOrder() []string {
	return append([]string(nil), e.cfg.Layout.Order...)
}
