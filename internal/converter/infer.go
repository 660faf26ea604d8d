package converter

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/nconklindev/sheetview/internal/types"
)

var plainNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// dateLayouts are tried in order; month-first forms win over day-first ones.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
	"1/2/2006 15:04",
	"1/2/2006",
	"02 Jan 2006 15:04",
	"02 Jan 2006",
	"Jan 2, 2006",
}

// InferValue classifies a text cell as null, number, boolean, date or string.
// Strings keep their original spacing.
func InferValue(s string) types.Value {
	if s == "" {
		return types.Null()
	}

	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return types.String(s)
	}

	if plainNumber.MatchString(trimmed) {
		if n, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return types.Number(n)
		}
	}

	switch strings.ToLower(trimmed) {
	case "true":
		return types.Bool(true)
	case "false":
		return types.Bool(false)
	}

	if t, ok := parseDate(trimmed); ok {
		return types.Date(t)
	}

	return types.String(s)
}

func parseDate(s string) (time.Time, bool) {
	// cheap reject: every layout contains a digit and is at least 8 chars
	if len(s) < 8 || !strings.ContainsAny(s, "0123456789") {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
