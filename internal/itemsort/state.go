package itemsort

import (
	"fmt"

	"github.com/xbocquet/twcatele/internal/record"
)

// PageSizes are the page sizes offered by the item table.
var PageSizes = []int{5, 10, 15, 25, 50}

// DefaultPageSize is used for a newly selected collection.
const DefaultPageSize = 10

// State is the sort and pagination state of an item table.
type State struct {
	Column    Column
	Direction Direction
	FirstRow  int
	PageSize  int
}

// NewState returns the state of a freshly selected collection.
func NewState() State {
	return State{PageSize: DefaultPageSize}
}

// Click applies a header click: a new column sorts ascending, then the same
// column cycles to descending and back to unsorted. Pagination always
// returns to the first row.
func (s State) Click(col Column) State {
	switch {
	case s.Column != col || s.Direction == Unsorted:
		s.Column = col
		s.Direction = Ascending
	case s.Direction == Ascending:
		s.Direction = Descending
	default:
		s.Column = ""
		s.Direction = Unsorted
	}
	s.FirstRow = 0
	return s
}

// SetPageSize changes the page size, keeping the current page number where
// possible.
func (s State) SetPageSize(size int) (State, error) {
	valid := false
	for _, p := range PageSizes {
		if p == size {
			valid = true
			break
		}
	}
	if !valid {
		return s, fmt.Errorf("invalid page size %d (valid: 5, 10, 15, 25, 50)", size)
	}
	page := s.Page()
	s.PageSize = size
	s.FirstRow = (page - 1) * size
	return s, nil
}

// Page returns the 1-based page number.
func (s State) Page() int {
	if s.PageSize <= 0 {
		return 1
	}
	return s.FirstRow/s.PageSize + 1
}

// GoToPage moves to a 1-based page, clamped to the available pages.
func (s State) GoToPage(page, total int) State {
	pages := PageCount(total, s.PageSize)
	page = max(1, min(page, pages))
	s.FirstRow = (page - 1) * s.PageSize
	return s
}

// PageCount is the number of pages needed for total rows (at least 1).
func PageCount(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}

// Apply sorts items and slices out the current page.
func (s State) Apply(items []record.Record, isTelemetry bool) []record.Record {
	sorted := Sort(items, s.Column, s.Direction, isTelemetry)
	if s.PageSize <= 0 {
		return sorted
	}
	start := min(s.FirstRow, len(sorted))
	end := min(start+s.PageSize, len(sorted))
	return sorted[start:end]
}

// Indicator returns the header arrow for col.
func (s State) Indicator(col Column) string {
	if s.Column != col {
		return "↕"
	}
	switch s.Direction {
	case Ascending:
		return "↑"
	case Descending:
		return "↓"
	}
	return "↕"
}
