package index

import (
	"context"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/noveldex/internal/domain/novel"
)

// mockScanner counts ScanIndex calls.
type mockScanner struct {
	records []novel.Record
	err     error
	calls   int
}

func (m *mockScanner) ScanIndex(_ context.Context) ([]novel.Record, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.records, nil
}

func makeRecords(t *testing.T, n int) []novel.Record {
	t.Helper()
	out := make([]novel.Record, n)
	for i := range out {
		score := int64(i)
		r, err := novel.New(novel.Raw{ID: fmt.Sprintf("n%03d", i), Score: &score})
		if err != nil {
			t.Fatalf("new record: %v", err)
		}
		out[i] = r
	}
	return out
}

func newTestCache(t *testing.T, s *mockScanner) *Cache {
	t.Helper()
	return New(s, DefaultTTL, nil, zap.NewNop())
}
