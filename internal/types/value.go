package types

import (
	"math"
	"strconv"
	"time"
)

// DateLayout is how date cells are rendered in the grid and matched by substring filters.
const DateLayout = "2006-01-02 15:04"

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindDate:
		return "date"
	}
	return "unknown"
}

// Value is a single typed cell. The zero Value is Null.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	t    time.Time
}

// ValueKey is a comparable form of a Value. Two values have the same key
// exactly when Equal reports true.
type ValueKey struct {
	kind Kind
	str  string
	num  float64
	b    bool
	sec  int64
	nsec int
}

func Null() Value { return Value{} }
func String(s string) Value { return Value{kind: KindString, str: s} }
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }
func Date(t time.Time) Value { return Value{kind: KindDate, t: t} }
func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }
func (v Value) Str() string { return v.str }
func (v Value) Num() float64 { return v.num }
func (v Value) Boolean() bool { return v.b }
func (v Value) Time() time.Time { return v.t }

// Display renders the value the way the grid shows it. Null renders as "".
func (v Value) Display() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindString:
		return v.str
	case KindNumber:
		return formatNumber(v.num)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindDate:
		return v.t.Format(DateLayout)
	}
	return ""
}

func (v Value) String() string { return v.Display() }

// Equal compares by kind and value. Dates are equal when they denote the same instant.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindBool:
		return v.b == o.b
	case KindDate:
		return v.t.Equal(o.t)
	}
	return false
}

// Key returns a map key consistent with Equal.
func (v Value) Key() ValueKey {
	switch v.kind {
	case KindString:
		return ValueKey{kind: KindString, str: v.str}
	case KindNumber:
		return ValueKey{kind: KindNumber, num: v.num}
	case KindBool:
		return ValueKey{kind: KindBool, b: v.b}
	case KindDate:
		return ValueKey{kind: KindDate, sec: v.t.Unix(), nsec: v.t.Nanosecond()}
	}
	return ValueKey{}
}

func formatNumber(f float64) string {
	abs := math.Abs(f)
	if abs >= 1e21 || (abs > 0 && abs < 1e-6) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
