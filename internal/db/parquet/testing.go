package parquet

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"github.com/kailas-cloud/noveldex/internal/db"
)

// FixtureRow is one partition row as written by WriteFixture (test-only).
type FixtureRow struct {
	NCode         string  `parquet:"ncode"`
	Title         *string `parquet:"title,optional"`
	Genre         *string `parquet:"genre,optional"`
	GlobalPoint   *int64  `parquet:"global_point,optional"`
	Length        int64   `parquet:"length"`
	GeneralLastup string  `parquet:"general_lastup"`
	Keyword       *string `parquet:"keyword,optional"`
	Story         *string `parquet:"story,optional"`
}

// WriteFixture writes rows to path as a partition with a bloom filter on the id
// column. rowGroupSize > 0 splits the rows into row groups of that size.
func WriteFixture(path string, rowGroupSize int, rows []FixtureRow) error {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("create fixture: %w", err)
	}
	defer func() { _ = f.Close() }()

	w := parquet.NewGenericWriter[FixtureRow](f,
		parquet.BloomFilters(parquet.SplitBlockFilter(10, db.ColID)),
	)

	if rowGroupSize <= 0 {
		rowGroupSize = len(rows)
	}
	for start := 0; start < len(rows); start += rowGroupSize {
		end := min(start+rowGroupSize, len(rows))
		if _, err := w.Write(rows[start:end]); err != nil {
			return fmt.Errorf("write rows: %w", err)
		}
		if err := w.Flush(); err != nil {
			return fmt.Errorf("flush row group: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close writer: %w", err)
	}
	return nil
}

// Ptr returns a pointer to v (test-only).
func Ptr[T any](v T) *T { return &v }
