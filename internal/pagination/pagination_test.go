package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw      string
		expected int
	}{
		{"", 1},
		{"1", 1},
		{"7", 7},
		{"0", 1},
		{"-3", 1},
		{"abc", 1},
		{"2.5", 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ParseNumber(tt.raw), "raw=%q", tt.raw)
	}
}

func TestWindow_PageCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		total      int64
		size       int
		totalPages int
	}{
		{"empty", 0, 10, 0},
		{"exactly one page", 10, 10, 1},
		{"one over", 11, 10, 2},
		{"thirteen by ten", 13, 10, 2},
		{"thirteen by two", 13, 2, 7},
		{"one item", 1, 10, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, totalPages := Window(tt.total, tt.size, 1)
			assert.Equal(t, tt.totalPages, totalPages)
		})
	}
}

func TestWindow_ClampsBeyondLastPage(t *testing.T) {
	t.Parallel()

	// 13 items, size 10: page 99 clamps to page 2, offset 10.
	offset, limit, clamped, totalPages := Window(13, 10, 99)
	assert.Equal(t, 10, offset)
	assert.Equal(t, 10, limit)
	assert.Equal(t, 2, clamped)
	assert.Equal(t, 2, totalPages)
}

func TestWindow_EmptyCollection(t *testing.T) {
	t.Parallel()

	offset, limit, clamped, totalPages := Window(0, 10, 5)
	assert.Equal(t, 0, offset)
	assert.Equal(t, 10, limit)
	assert.Equal(t, 1, clamped)
	assert.Equal(t, 0, totalPages)
}

func TestWindow_ClampIsIdempotent(t *testing.T) {
	t.Parallel()

	// Requesting the clamped page again yields the same window.
	_, _, clamped, _ := Window(13, 10, 42)
	offset1, _, again, _ := Window(13, 10, clamped)
	assert.Equal(t, clamped, again)
	assert.Equal(t, 10, offset1)
}

func TestBuild_PageBoundaries(t *testing.T) {
	t.Parallel()

	// 13 posts paginated at 10: page 1 carries 10 items, page 2 carries 3.
	items := make([]int, 13)
	for i := range items {
		items[i] = i
	}

	offset, limit, _, _ := Window(13, 10, 1)
	page1 := Build(items[offset:min(offset+limit, 13)], 13, 10, 1)
	assert.Len(t, page1.Items, 10)
	assert.Equal(t, 1, page1.Number)
	assert.False(t, page1.HasPrevious)
	assert.True(t, page1.HasNext)

	offset, limit, _, _ = Window(13, 10, 2)
	page2 := Build(items[offset:min(offset+limit, 13)], 13, 10, 2)
	assert.Len(t, page2.Items, 3)
	assert.Equal(t, 2, page2.Number)
	assert.True(t, page2.HasPrevious)
	assert.False(t, page2.HasNext)
}

func TestBuild_LastPageSize(t *testing.T) {
	t.Parallel()

	// Last page has N mod P items, or P when P divides N.
	tests := []struct {
		total    int
		size     int
		lastSize int
	}{
		{13, 10, 3},
		{20, 10, 10},
		{1, 2, 1},
		{4, 2, 2},
	}

	for _, tt := range tests {
		items := make([]int, tt.total)
		offset, limit, clamped, totalPages := Window(int64(tt.total), tt.size, 1<<20)
		assert.Equal(t, totalPages, clamped)
		end := offset + limit
		if end > tt.total {
			end = tt.total
		}
		page := Build(items[offset:end], int64(tt.total), tt.size, clamped)
		assert.Len(t, page.Items, tt.lastSize, "total=%d size=%d", tt.total, tt.size)
	}
}

func TestBuild_EmptyPageHasNoNavigation(t *testing.T) {
	t.Parallel()

	page := Build([]int(nil), 0, 10, 3)
	assert.Empty(t, page.Items)
	assert.NotNil(t, page.Items)
	assert.Equal(t, 1, page.Number)
	assert.False(t, page.HasPrevious)
	assert.False(t, page.HasNext)
}
