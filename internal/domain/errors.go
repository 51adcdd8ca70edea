package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDataSource signals that the partition store is unreachable, malformed or a query failed.
	ErrDataSource = errors.New("data source error")
	// ErrInvalidPage signals a page number outside [1, total_pages].
	ErrInvalidPage = errors.New("invalid page")
	// ErrInvalidPageSize signals a non-positive page size.
	ErrInvalidPageSize = errors.New("invalid page size")
	// ErrInvalidQuery signals a malformed browse query.
	ErrInvalidQuery = errors.New("invalid query")
)

// DataSourceError wraps ErrDataSource with the failing operation and partition.
type DataSourceError struct {
	Op        string
	Partition string // empty when the failure is not tied to a single file
	Err       error
}

func (e *DataSourceError) Error() string {
	if e.Partition != "" {
		return fmt.Sprintf("%s: %s %s: %v", ErrDataSource.Error(), e.Op, e.Partition, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", ErrDataSource.Error(), e.Op, e.Err)
}

// Is makes errors.Is(err, ErrDataSource) hold for every DataSourceError.
func (e *DataSourceError) Is(target error) bool { return target == ErrDataSource }

func (e *DataSourceError) Unwrap() error { return e.Err }

// NewDataSourceError creates a data source error for op.
func NewDataSourceError(op string, err error) error {
	return &DataSourceError{Op: op, Err: err}
}

// InvalidPageError wraps ErrInvalidPage with the offending page and the valid range.
type InvalidPageError struct {
	Page       int
	TotalPages int
}

func (e *InvalidPageError) Error() string {
	return fmt.Sprintf("%s: %d not in [1, %d]", ErrInvalidPage.Error(), e.Page, e.TotalPages)
}

func (e *InvalidPageError) Unwrap() error { return ErrInvalidPage }

// NewInvalidPage creates an invalid page error.
func NewInvalidPage(page, totalPages int) error {
	return &InvalidPageError{Page: page, TotalPages: totalPages}
}
