package db

import "errors"

// Sentinel errors for store operations.
var (
	ErrNoPartitions  = errors.New("db: no partitions match pattern")
	ErrColumnMissing = errors.New("db: required column missing")
	ErrClosed        = errors.New("db: store closed")
)

// Op names for error context.
const (
	OpGlob  = "GLOB"
	OpOpen  = "OPEN"
	OpScan  = "SCAN_INDEX"
	OpFetch = "FETCH_DETAILS"
)

// Error wraps an underlying error with the operation name and partition for diagnostics.
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return e.Op + " " + e.Path + ": " + e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }
