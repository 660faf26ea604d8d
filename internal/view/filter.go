package view

import (
	"strings"

	"github.com/nconklindev/sheetview/internal/types"

	"golang.org/x/text/cases"
)

// FilterKind selects the filter variant.
type FilterKind int

const (
	// SetFilter keeps rows whose cell equals one of Values. An empty set keeps nothing.
	SetFilter FilterKind = iota
	// SubstringFilter keeps rows whose displayed cell contains Text, ignoring case.
	SubstringFilter
)

// FilterMode is how a column's filter is presented.
type FilterMode int

const (
	ModeSet FilterMode = iota
	ModeSubstring
)

func (m FilterMode) String() string {
	if m == ModeSubstring {
		return "substring"
	}
	return "set"
}

// ModeFor picks substring mode when a column has more distinct values than threshold.
func ModeFor(distinct, threshold int) FilterMode {
	if distinct > threshold {
		return ModeSubstring
	}
	return ModeSet
}

// Filter constrains one column.
type Filter struct {
	Kind   FilterKind
	Values []types.Value
	Text   string
}

func NewSetFilter(values ...types.Value) Filter {
	return Filter{Kind: SetFilter, Values: append([]types.Value{}, values...)}
}

func NewSubstringFilter(text string) Filter {
	return Filter{Kind: SubstringFilter, Text: text}
}

// Clone returns a copy that shares nothing with f.
func (f Filter) Clone() Filter {
	f.Values = append([]types.Value{}, f.Values...)
	return f
}

// Has reports whether a set filter includes v.
func (f Filter) Has(v types.Value) bool {
	for _, s := range f.Values {
		if s.Equal(v) {
			return true
		}
	}
	return false
}

// Matches reports whether a single cell passes the filter.
func (f Filter) Matches(v types.Value) bool {
	switch f.Kind {
	case SetFilter:
		return f.Has(v)
	case SubstringFilter:
		if f.Text == "" {
			return true
		}
		fold := cases.Fold()
		return strings.Contains(fold.String(v.Display()), fold.String(f.Text))
	}
	return true
}

type predicate struct {
	col    int
	kind   FilterKind
	keys   map[types.ValueKey]struct{}
	needle string
}

// compileFilters resolves column names to positions and drops filters on
// columns the dataset does not have.
func compileFilters(ds *types.Dataset, filters map[string]Filter) []predicate {
	if len(filters) == 0 {
		return nil
	}
	fold := cases.Fold()
	preds := make([]predicate, 0, len(filters))
	for name, f := range filters {
		col, ok := ds.ColumnIndex(name)
		if !ok {
			continue
		}
		p := predicate{col: col, kind: f.Kind}
		switch f.Kind {
		case SetFilter:
			p.keys = make(map[types.ValueKey]struct{}, len(f.Values))
			for _, v := range f.Values {
				p.keys[v.Key()] = struct{}{}
			}
		case SubstringFilter:
			if f.Text == "" {
				continue
			}
			p.needle = fold.String(f.Text)
		}
		preds = append(preds, p)
	}
	return preds
}

// FilterRows keeps the rows that satisfy every filter. With no applicable
// filters the input slice is returned unchanged.
func FilterRows(ds *types.Dataset, rows []types.Row, filters map[string]Filter) []types.Row {
	preds := compileFilters(ds, filters)
	if len(preds) == 0 {
		return rows
	}

	fold := cases.Fold()
	out := make([]types.Row, 0, len(rows))
rowLoop:
	for _, row := range rows {
		for _, p := range preds {
			cell := types.Null()
			if p.col < len(row) {
				cell = row[p.col]
			}
			switch p.kind {
			case SetFilter:
				if _, ok := p.keys[cell.Key()]; !ok {
					continue rowLoop
				}
			case SubstringFilter:
				if !strings.Contains(fold.String(cell.Display()), p.needle) {
					continue rowLoop
				}
			}
		}
		out = append(out, row)
	}
	return out
}

// DistinctValues returns the non-null values of column in first-seen order.
// Unknown columns yield nil.
func DistinctValues(ds *types.Dataset, rows []types.Row, column string) []types.Value {
	col, ok := ds.ColumnIndex(column)
	if !ok {
		return nil
	}
	seen := make(map[types.ValueKey]struct{})
	var out []types.Value
	for _, row := range rows {
		if col >= len(row) || row[col].IsNull() {
			continue
		}
		k := row[col].Key()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, row[col])
	}
	return out
}

// AllDistinctValues computes DistinctValues for every column in one pass.
func AllDistinctValues(ds *types.Dataset, rows []types.Row) map[string][]types.Value {
	seen := make([]map[types.ValueKey]struct{}, len(ds.Columns))
	values := make([][]types.Value, len(ds.Columns))
	for i := range seen {
		seen[i] = make(map[types.ValueKey]struct{})
	}

	for _, row := range rows {
		for i := 0; i < len(ds.Columns) && i < len(row); i++ {
			v := row[i]
			if v.IsNull() {
				continue
			}
			k := v.Key()
			if _, dup := seen[i][k]; dup {
				continue
			}
			seen[i][k] = struct{}{}
			values[i] = append(values[i], v)
		}
	}

	out := make(map[string][]types.Value, len(ds.Columns))
	for i, name := range ds.Columns {
		out[name] = values[i]
	}
	return out
}

// DistinctCounts returns the number of distinct non-null values per column.
func DistinctCounts(ds *types.Dataset, rows []types.Row) map[string]int {
	all := AllDistinctValues(ds, rows)
	counts := make(map[string]int, len(all))
	for name, vals := range all {
		counts[name] = len(vals)
	}
	return counts
}

// allSelected reports whether a set filter includes every option.
func allSelected(f Filter, options []types.Value) bool {
	keys := make(map[types.ValueKey]struct{}, len(f.Values))
	for _, v := range f.Values {
		keys[v.Key()] = struct{}{}
	}
	for _, o := range options {
		if _, ok := keys[o.Key()]; !ok {
			return false
		}
	}
	return true
}

// ToggleOption flips value in a set filter. A missing or substring filter
// counts as every option selected. The second result is false when the
// toggled set covers every option again, meaning the filter should be removed.
func ToggleOption(current *Filter, options []types.Value, value types.Value) (Filter, bool) {
	var selected []types.Value
	if current != nil && current.Kind == SetFilter {
		selected = current.Values
	} else {
		selected = options
	}

	next := make([]types.Value, 0, len(selected)+1)
	found := false
	for _, v := range selected {
		if v.Equal(value) {
			found = true
			continue
		}
		next = append(next, v)
	}
	if !found {
		next = append(next, value)
	}

	f := Filter{Kind: SetFilter, Values: next}
	if allSelected(f, options) {
		return Filter{}, false
	}
	return f, true
}

// IsActive reports whether a filter narrows its column at all.
func IsActive(f *Filter, options []types.Value) bool {
	if f == nil {
		return false
	}
	switch f.Kind {
	case SubstringFilter:
		return f.Text != ""
	case SetFilter:
		return len(f.Values) == 0 || !allSelected(*f, options)
	}
	return false
}
