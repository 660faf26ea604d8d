package view

import (
	"github.com/nconklindev/sheetview/internal/types"
)

// ColumnView is everything the grid header needs for one rendered column.
type ColumnView struct {
	Name   string
	Width  int
	Offset int
	Pinned bool

	Sorted        bool
	SortDirection Direction

	FilterMode   FilterMode
	FilterActive bool
	// Distinct is the live count of distinct values among the filtered rows.
	Distinct int
}

// RenderModel is the fully derived view of a dataset.
type RenderModel struct {
	Columns []ColumnView
	Layout  Resolved
	// Rows is the current page.
	Rows []types.Row
	// FirstRow is the index of Rows[0] within the filtered and sorted sequence.
	FirstRow int

	TotalRows    int
	FilteredRows int
	Page         int
	TotalPages   int
	PageSize     int

	// Options are the distinct values of each column over the whole dataset.
	Options map[string][]types.Value
	// LiveCounts are distinct value counts over the filtered rows.
	LiveCounts map[string]int
}

type stages struct {
	options  map[string][]types.Value
	filtered []types.Row
	counts   map[string]int
	sorted   []types.Row
}

// Derive recomputes every stage from scratch:
// filter, options and live counts, sort, paginate, resolve layout.
func Derive(ds *types.Dataset, cfg Config, opts Options) RenderModel {
	if ds == nil {
		return assemble(nil, cfg, opts.normalized(), stages{})
	}
	filtered := FilterRows(ds, ds.Rows, cfg.Filters)
	st := stages{
		options:  AllDistinctValues(ds, ds.Rows),
		filtered: filtered,
		counts:   DistinctCounts(ds, filtered),
		sorted:   SortRows(ds, filtered, cfg.Sort),
	}
	return assemble(ds, cfg, opts.normalized(), st)
}

func assemble(ds *types.Dataset, cfg Config, opts Options, st stages) RenderModel {
	pageSize := cfg.Page.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	total := TotalPages(len(st.sorted), pageSize)
	page := ClampPage(cfg.Page.CurrentPage, total)

	m := RenderModel{
		Page:         page,
		TotalPages:   total,
		PageSize:     pageSize,
		FilteredRows: len(st.filtered),
		Options:      st.options,
		LiveCounts:   st.counts,
	}
	if ds == nil {
		return m
	}

	m.TotalRows = len(ds.Rows)
	m.Rows = Paginate(st.sorted, pageSize, page)
	m.FirstRow = (page - 1) * pageSize
	m.Layout = Resolve(ds.Columns, cfg.Layout, opts.MinColumnWidth)

	for _, name := range m.Layout.Columns {
		cv := ColumnView{
			Name:       name,
			Width:      m.Layout.Widths[name],
			Offset:     m.Layout.Offsets[name],
			Distinct:   st.counts[name],
			FilterMode: ModeFor(len(st.options[name]), opts.TextFilterThreshold),
		}
		if _, ok := m.Layout.PinnedOffsets[name]; ok {
			cv.Pinned = true
		}
		if cfg.Sort != nil && cfg.Sort.Column == name {
			cv.Sorted = true
			cv.SortDirection = cfg.Sort.Direction
		}
		if f, ok := cfg.Filters[name]; ok {
			cv.FilterActive = IsActive(&f, st.options[name])
		}
		m.Columns = append(m.Columns, cv)
	}
	return m
}
