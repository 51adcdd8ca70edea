// Package page slices an ordered result into fixed-size pages.
package page

import (
	"fmt"

	"github.com/kailas-cloud/noveldex/internal/domain"
	"github.com/kailas-cloud/noveldex/internal/domain/novel"
)

// DefaultSize is the page size used when none is configured.
const DefaultSize = 50

// Window is one page of an ordered result.
type Window struct {
	records    []novel.Record
	number     int
	size       int
	totalPages int
	total      int
}

// Records returns the records on this page.
func (w Window) Records() []novel.Record { return w.records }

// Number returns the 1-based page number.
func (w Window) Number() int { return w.number }

// Size returns the configured page size.
func (w Window) Size() int { return w.size }

// TotalPages returns the page count, at least 1.
func (w Window) TotalPages() int { return w.totalPages }

// Total returns the length of the whole ordered result.
func (w Window) Total() int { return w.total }

// Count returns ceil(n/size), never less than 1.
func Count(n, size int) int {
	if n <= 0 || size <= 0 {
		return 1
	}
	return (n + size - 1) / size
}

// Clamp pins number into [1, totalPages].
func Clamp(number, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	if number < 1 {
		return 1
	}
	if number > totalPages {
		return totalPages
	}
	return number
}

// Paginate returns page number of records. It does not clamp: callers must pass
// a number in [1, Count(len(records), size)].
func Paginate(records []novel.Record, size, number int) (Window, error) {
	if size <= 0 {
		return Window{}, fmt.Errorf("%w: %d", domain.ErrInvalidPageSize, size)
	}

	total := len(records)
	totalPages := Count(total, size)
	if number < 1 || number > totalPages {
		return Window{}, domain.NewInvalidPage(number, totalPages)
	}

	start := (number - 1) * size
	end := min(start+size, total)

	return Window{
		records:    records[start:end:end],
		number:     number,
		size:       size,
		totalPages: totalPages,
		total:      total,
	}, nil
}
