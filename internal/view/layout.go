package view

import "slices"

// ColumnController is the set of semantic column gestures a front end can
// issue without knowing anything about pointers or pixels.
type ColumnController interface {
	MoveColumn(from, to string) bool
	ResizeColumn(name string, width int)
	SetPinned(name string, pinned bool)
}

// Resolved is the final column arrangement for rendering.
type Resolved struct {
	// Columns are the visible columns in Order sequence.
	Columns  []string
	Pinned   []string
	Unpinned []string
	Widths   map[string]int
	// Offsets is the left edge of every rendered column.
	Offsets map[string]int
	// PinnedOffsets is the left edge of each pinned column: the summed width
	// of every rendered column before it, pinned or not. With [A, B] and only
	// B pinned, B sits at width(A) rather than at 0, so this is not a sum over
	// the preceding pinned columns alone.
	PinnedOffsets map[string]int
	// ResizerPositions are the right edges of all rendered columns but the last.
	ResizerPositions []int
	TotalWidth       int
}

// Resolve combines order, visibility, pinning and widths. Names the dataset
// does not have are ignored; dataset columns missing from Order are appended
// in dataset order. If nothing known is visible, every column is shown.
func Resolve(columns []string, layout ColumnLayout, minWidth int) Resolved {
	known := toSet(columns)
	order := make([]string, 0, len(columns))
	placed := make(map[string]bool, len(columns))
	for _, c := range layout.Order {
		if known[c] && !placed[c] {
			order = append(order, c)
			placed[c] = true
		}
	}
	for _, c := range columns {
		if !placed[c] {
			order = append(order, c)
		}
	}

	visible := make(map[string]bool, len(layout.Visible))
	for _, c := range layout.Visible {
		if known[c] {
			visible[c] = true
		}
	}
	if len(visible) == 0 {
		visible = known
	}
	pinned := toSet(layout.Pinned)

	r := Resolved{
		Widths:        make(map[string]int),
		Offsets:       make(map[string]int),
		PinnedOffsets: make(map[string]int),
	}
	offset := 0
	for _, c := range order {
		if !visible[c] {
			continue
		}
		w := columnWidth(layout.Widths, c, minWidth)
		if len(r.Columns) > 0 {
			r.ResizerPositions = append(r.ResizerPositions, offset)
		}
		r.Columns = append(r.Columns, c)
		r.Widths[c] = w
		r.Offsets[c] = offset
		if pinned[c] {
			r.Pinned = append(r.Pinned, c)
			r.PinnedOffsets[c] = offset
		} else {
			r.Unpinned = append(r.Unpinned, c)
		}
		offset += w
	}
	r.TotalWidth = offset
	return r
}

func columnWidth(widths map[string]int, name string, minWidth int) int {
	if w, ok := widths[name]; ok && w > minWidth {
		return w
	}
	return minWidth
}

// MoveColumn removes from and reinserts it at to's index. It reports false
// and returns order unchanged when either name is missing or they are equal.
func MoveColumn(order []string, from, to string) ([]string, bool) {
	fromIdx := slices.Index(order, from)
	toIdx := slices.Index(order, to)
	if fromIdx < 0 || toIdx < 0 || fromIdx == toIdx {
		return order, false
	}

	next := slices.Clone(order)
	next = slices.Delete(next, fromIdx, fromIdx+1)
	next = slices.Insert(next, toIdx, from)
	return next, true
}

// ToggleVisible shows a hidden column or hides a visible one. Hiding the last
// visible column fails with ErrLastVisibleColumn. A hidden column is unpinned.
func ToggleVisible(l ColumnLayout, column string) (ColumnLayout, error) {
	next := l.Clone()
	if !slices.Contains(l.Visible, column) {
		next.Visible = append(next.Visible, column)
		return next, nil
	}
	if len(l.Visible) <= 1 {
		return l, ErrLastVisibleColumn
	}
	next.Visible = slices.DeleteFunc(next.Visible, func(c string) bool { return c == column })
	next.Pinned = slices.DeleteFunc(next.Pinned, func(c string) bool { return c == column })
	return next, nil
}

// ShowAll makes every column visible.
func ShowAll(l ColumnLayout, columns []string) ColumnLayout {
	next := l.Clone()
	next.Visible = slices.Clone(columns)
	return next
}

// HideAll keeps only the pinned visible columns, or the first visible column
// in display order when none are pinned.
func HideAll(l ColumnLayout) ColumnLayout {
	next := l.Clone()
	visible := toSet(l.Visible)

	var keep []string
	for _, c := range l.Pinned {
		if visible[c] {
			keep = append(keep, c)
		}
	}
	if len(keep) == 0 {
		for _, c := range l.Order {
			if visible[c] {
				keep = []string{c}
				break
			}
		}
	}
	if len(keep) == 0 {
		return next
	}
	next.Visible = keep
	next.Pinned = slices.DeleteFunc(next.Pinned, func(c string) bool { return !slices.Contains(keep, c) })
	return next
}

// SetPinned pins or unpins a column. Hidden columns cannot be pinned.
func SetPinned(l ColumnLayout, column string, pinned bool) ColumnLayout {
	next := l.Clone()
	isPinned := slices.Contains(l.Pinned, column)
	switch {
	case pinned && !isPinned && slices.Contains(l.Visible, column):
		next.Pinned = append(next.Pinned, column)
	case !pinned && isPinned:
		next.Pinned = slices.DeleteFunc(next.Pinned, func(c string) bool { return c == column })
	}
	return next
}

// ResizeColumn sets a column width, floor-clamped to minWidth.
func ResizeColumn(l ColumnLayout, column string, width, minWidth int) ColumnLayout {
	next := l.Clone()
	if next.Widths == nil {
		next.Widths = make(map[string]int)
	}
	next.Widths[column] = max(width, minWidth)
	return next
}

// InitialWidths spreads available evenly over columns. When the columns do
// not fit, every column gets minWidth and the grid overflows horizontally.
func InitialWidths(columns []string, available, minWidth int) map[string]int {
	widths := make(map[string]int, len(columns))
	if len(columns) == 0 {
		return widths
	}

	base := available / len(columns)
	if base < minWidth {
		for _, c := range columns {
			widths[c] = minWidth
		}
		return widths
	}

	extra := available % len(columns)
	for i, c := range columns {
		w := base
		if i < extra {
			w++
		}
		widths[c] = w
	}
	return widths
}
