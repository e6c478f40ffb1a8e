// Package pagination slices ordered collections into fixed-size pages
// identified by a 1-based page number.
package pagination

import "strconv"

// Page is a bounded-size window into an ordered collection.
type Page[T any] struct {
	Items       []T   `json:"items"`
	Number      int   `json:"number"`
	Size        int   `json:"size"`
	TotalPages  int   `json:"total_pages"`
	TotalItems  int64 `json:"total_items"`
	HasPrevious bool  `json:"has_previous"`
	HasNext     bool  `json:"has_next"`
}

// ParseNumber converts a raw page query parameter into a 1-based page
// number. Missing, malformed, or non-positive input defaults to page 1.
func ParseNumber(raw string) int {
	if raw == "" {
		return 1
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Window computes the query window for the requested page over a
// collection of total items. A page number beyond the last valid page is
// clamped to the last page; out-of-range input never produces an error.
// For an empty collection it returns an empty window on page 1.
func Window(total int64, size, number int) (offset, limit, clamped, totalPages int) {
	if size < 1 {
		size = 1
	}
	totalPages = int((total + int64(size) - 1) / int64(size))
	if totalPages == 0 {
		return 0, size, 1, 0
	}

	clamped = number
	if clamped < 1 {
		clamped = 1
	}
	if clamped > totalPages {
		clamped = totalPages
	}

	offset = (clamped - 1) * size
	return offset, size, clamped, totalPages
}

// Build assembles a Page from the items fetched for the window returned
// by Window, with navigation flags derived from the clamped position.
func Build[T any](items []T, total int64, size, number int) Page[T] {
	_, _, clamped, totalPages := Window(total, size, number)
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:       items,
		Number:      clamped,
		Size:        size,
		TotalPages:  totalPages,
		TotalItems:  total,
		HasPrevious: clamped > 1,
		HasNext:     clamped < totalPages,
	}
}
