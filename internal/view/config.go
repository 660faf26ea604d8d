// Package view derives what the grid shows from a Dataset and a view Config:
// filter, distinct options, sort, paginate and column layout, in that order.
package view

import (
	"errors"
	"maps"
)

const (
	DefaultPageSize            = 50
	DefaultMinColumnWidth      = 12
	DefaultTextFilterThreshold = 50
)

// PageSizes are the allowed page sizes.
var PageSizes = []int{10, 20, 50, 100, 150, 300, 500}

var (
	ErrInvalidPage       = errors.New("page number out of range")
	ErrInvalidPageSize   = errors.New("page size not allowed")
	ErrLastVisibleColumn = errors.New("cannot hide the last visible column")
	ErrUnknownColumn     = errors.New("unknown column")
)

// Direction is the sort direction.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// SortConfig is the single active sort key.
type SortConfig struct {
	Column    string    `json:"column" yaml:"column"`
	Direction Direction `json:"direction" yaml:"direction"`
}

// ColumnLayout holds column order, visibility, pinning and widths by column name.
type ColumnLayout struct {
	Order   []string       `json:"order" yaml:"order"`
	Visible []string       `json:"visible" yaml:"visible"`
	Pinned  []string       `json:"pinned" yaml:"pinned"`
	Widths  map[string]int `json:"widths" yaml:"widths"`
}

// Pagination is the page size and the 1-based current page.
type Pagination struct {
	PageSize    int `json:"page_size" yaml:"page_size"`
	CurrentPage int `json:"current_page" yaml:"current_page"`
}

// Config is the user-editable view state for one dataset.
type Config struct {
	Filters map[string]Filter `json:"-" yaml:"-"`
	Sort    *SortConfig       `json:"sort,omitempty" yaml:"sort,omitempty"`
	Layout  ColumnLayout      `json:"layout" yaml:"layout"`
	Page    Pagination        `json:"page" yaml:"page"`
}

// NewConfig returns the state a freshly selected dataset starts in: every
// column visible in dataset order, nothing pinned, filtered or sorted, page 1.
func NewConfig(columns []string, widths map[string]int, pageSize int) Config {
	if !ValidPageSize(pageSize) {
		pageSize = DefaultPageSize
	}
	return Config{
		Filters: map[string]Filter{},
		Layout: ColumnLayout{
			Order:   append([]string(nil), columns...),
			Visible: append([]string(nil), columns...),
			Pinned:  nil,
			Widths:  maps.Clone(widths),
		},
		Page: Pagination{PageSize: pageSize, CurrentPage: 1},
	}
}

// Clone returns a deep copy.
func (c Config) Clone() Config {
	out := Config{
		Filters: make(map[string]Filter, len(c.Filters)),
		Layout:  c.Layout.Clone(),
		Page:    c.Page,
	}
	for k, f := range c.Filters {
		out.Filters[k] = f.Clone()
	}
	if c.Sort != nil {
		s := *c.Sort
		out.Sort = &s
	}
	return out
}

// Clone returns a deep copy.
func (l ColumnLayout) Clone() ColumnLayout {
	return ColumnLayout{
		Order:   append([]string(nil), l.Order...),
		Visible: append([]string(nil), l.Visible...),
		Pinned:  append([]string(nil), l.Pinned...),
		Widths:  maps.Clone(l.Widths),
	}
}

// Options tune derivation.
type Options struct {
	MinColumnWidth      int
	TextFilterThreshold int
}

// DefaultOptions returns the stock minimum column width and filter-mode threshold.
func DefaultOptions() Options {
	return Options{
		MinColumnWidth:      DefaultMinColumnWidth,
		TextFilterThreshold: DefaultTextFilterThreshold,
	}
}

func (o Options) normalized() Options {
	if o.MinColumnWidth <= 0 {
		o.MinColumnWidth = DefaultMinColumnWidth
	}
	if o.TextFilterThreshold <= 0 {
		o.TextFilterThreshold = DefaultTextFilterThreshold
	}
	return o
}

func toSet(list []string) map[string]bool {
	set := make(map[string]bool, len(list))
	for _, v := range list {
		set[v] = true
	}
	return set
}
