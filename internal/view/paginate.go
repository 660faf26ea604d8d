package view

import (
	"slices"
	"strconv"
	"strings"

	"github.com/nconklindev/sheetview/internal/types"
)

// ValidPageSize reports whether n is one of PageSizes.
func ValidPageSize(n int) bool {
	return slices.Contains(PageSizes, n)
}

// TotalPages is ceil(count/pageSize), never less than 1.
func TotalPages(count, pageSize int) int {
	if pageSize <= 0 || count <= 0 {
		return 1
	}
	return (count + pageSize - 1) / pageSize
}

// ClampPage forces page into [1, total].
func ClampPage(page, total int) int {
	if total < 1 {
		total = 1
	}
	return max(1, min(page, total))
}

// Paginate returns rows [(page-1)*pageSize, page*pageSize) clipped to the input.
func Paginate(rows []types.Row, pageSize, page int) []types.Row {
	if pageSize <= 0 || page < 1 {
		return nil
	}
	start := (page - 1) * pageSize
	if start >= len(rows) {
		return nil
	}
	end := min(start+pageSize, len(rows))
	return rows[start:end]
}

// ParsePage validates a typed page number against the page count. Anything
// non-numeric or outside [1, total] is ErrInvalidPage; the caller keeps its
// current page.
func ParsePage(input string, total int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n < 1 || n > max(1, total) {
		return 0, ErrInvalidPage
	}
	return n, nil
}
