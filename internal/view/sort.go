package view

import (
	"cmp"
	"slices"

	"github.com/nconklindev/sheetview/internal/types"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// NextSort is the header-click transition: the active column flips between
// ascending and descending, any other column starts ascending.
func NextSort(current *SortConfig, column string) *SortConfig {
	if current != nil && current.Column == column && current.Direction == Ascending {
		return &SortConfig{Column: column, Direction: Descending}
	}
	return &SortConfig{Column: column, Direction: Ascending}
}

// NewCollator returns the collator used for locale-aware string ordering.
// Collators are not safe for concurrent use.
func NewCollator() *collate.Collator {
	return collate.New(language.Und)
}

// Compare orders two cells ascending. Null is lower than everything; same-kind
// values compare natively (strings through the collator); mixed kinds compare
// by their displayed text.
func Compare(a, b types.Value, c *collate.Collator) int {
	switch {
	case a.IsNull() && b.IsNull():
		return 0
	case a.IsNull():
		return -1
	case b.IsNull():
		return 1
	}

	if a.Kind() == b.Kind() {
		switch a.Kind() {
		case types.KindDate:
			return a.Time().Compare(b.Time())
		case types.KindString:
			return c.CompareString(a.Str(), b.Str())
		case types.KindNumber:
			return cmp.Compare(a.Num(), b.Num())
		case types.KindBool:
			return compareBool(a.Boolean(), b.Boolean())
		}
	}
	return c.CompareString(a.Display(), b.Display())
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

// SortRows returns a stably sorted copy of rows. A nil config or a column the
// dataset does not have leaves the input order untouched.
func SortRows(ds *types.Dataset, rows []types.Row, sc *SortConfig) []types.Row {
	if sc == nil {
		return rows
	}
	col, ok := ds.ColumnIndex(sc.Column)
	if !ok {
		return rows
	}

	sorted := slices.Clone(rows)
	c := NewCollator()
	sign := 1
	if sc.Direction == Descending {
		sign = -1
	}

	cell := func(r types.Row) types.Value {
		if col < len(r) {
			return r[col]
		}
		return types.Null()
	}

	slices.SortStableFunc(sorted, func(a, b types.Row) int {
		return sign * Compare(cell(a), cell(b), c)
	})
	return sorted
}
