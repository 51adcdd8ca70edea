package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestDataSourceError(t *testing.T) {
	cause := errors.New("no such file")
	err := NewDataSourceError("load index", cause)

	if !errors.Is(err, ErrDataSource) {
		t.Error("expected errors.Is ErrDataSource")
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to unwrap")
	}
	if !strings.Contains(err.Error(), "load index") {
		t.Errorf("message should name the op: %q", err.Error())
	}

	withPart := &DataSourceError{Op: "scan", Partition: "p0.parquet", Err: cause}
	if !strings.Contains(withPart.Error(), "p0.parquet") {
		t.Errorf("message should name the partition: %q", withPart.Error())
	}
}

func TestInvalidPageError(t *testing.T) {
	err := NewInvalidPage(4, 3)
	if !errors.Is(err, ErrInvalidPage) {
		t.Error("expected errors.Is ErrInvalidPage")
	}
	want := "invalid page: 4 not in [1, 3]"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}
