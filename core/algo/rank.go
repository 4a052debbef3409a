package algo

import (
	"slices"

	"github.com/huangsam/bootup/schema"
)

// SortByTotal sorts results by total time in descending order.
// Ties keep their first-occurrence order.
func SortByTotal(results []schema.URLResult) {
	slices.SortStableFunc(results, func(a, b schema.URLResult) int {
		switch {
		case a.Total > b.Total:
			return -1
		case a.Total < b.Total:
			return 1
		default:
			return 0
		}
	})
}

// TopResults returns at most limit entries from an already ranked slice.
// A non-positive limit returns every entry.
func TopResults[T any](results []T, limit int) []T {
	if limit > 0 && len(results) > limit {
		return results[:limit]
	}
	return results
}
