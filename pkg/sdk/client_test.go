package noveldex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	dbParquet "github.com/kailas-cloud/noveldex/internal/db/parquet"
	"github.com/kailas-cloud/noveldex/internal/domain"
	"github.com/kailas-cloud/noveldex/internal/domain/query"
	"github.com/kailas-cloud/noveldex/internal/domain/view"
)

func writePartitions(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	rows := make([]dbParquet.FixtureRow, 12)
	for i := range rows {
		id := fmt.Sprintf("n%04d", i)
		rows[i] = dbParquet.FixtureRow{
			NCode:         id,
			Title:         dbParquet.Ptr("title " + id),
			Genre:         dbParquet.Ptr([]string{"fantasy", "romance", "sf"}[i%3]),
			GlobalPoint:   dbParquet.Ptr(int64(i * 100)),
			Length:        int64(i),
			GeneralLastup: "2022-01-02 03:04:05",
			Story:         dbParquet.Ptr("story of " + id),
		}
	}
	if err := dbParquet.WriteFixture(filepath.Join(dir, "p0.parquet"), 0, rows); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return filepath.Join(dir, "*.parquet")
}

func TestOpen_NoStore(t *testing.T) {
	_, err := Open(context.Background())
	if err == nil {
		t.Fatal("expected error when no partition glob provided")
	}
}

func TestOpen_NoPartitions(t *testing.T) {
	_, err := Open(context.Background(),
		WithStore(filepath.Join(t.TempDir(), "*.parquet")),
		WithReadinessTimeout(50*time.Millisecond),
	)
	if err == nil {
		t.Fatal("expected error for empty glob")
	}
}

func TestClient_BrowseAndGenres(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	c, err := Open(ctx, WithStore(writePartitions(t)), WithPageSize(2), WithPrometheus(reg))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer c.Close()

	p, err := c.Browse(ctx, Query{Genre: "fantasy"})
	if err != nil {
		t.Fatalf("browse: %v", err)
	}
	// fantasy rows are i = 0,3,6,9 with scores i*100, highest first
	if p.Total != 4 || p.TotalPages != 2 || p.Page != 1 {
		t.Fatalf("window: total=%d pages=%d page=%d", p.Total, p.TotalPages, p.Page)
	}
	if p.Novels[0].ID != "n0009" || p.Novels[1].ID != "n0006" {
		t.Errorf("order: got %s, %s", p.Novels[0].ID, p.Novels[1].ID)
	}
	if !p.Novels[0].HasDetail || p.Novels[0].Synopsis != "story of n0009" {
		t.Errorf("synopsis: got %+v", p.Novels[0])
	}

	genres, err := c.Genres(ctx)
	if err != nil {
		t.Fatalf("genres: %v", err)
	}
	if len(genres) != 4 || genres[0] != "all" {
		t.Errorf("genres: got %v", genres)
	}

	if err := c.Ping(ctx); err != nil {
		t.Errorf("ping: %v", err)
	}
	if h := c.Health(ctx); h.Status != "ok" {
		t.Errorf("health: got %+v", h)
	}

	c.Refresh()
	if p, err := c.Browse(ctx, Query{MinScore: 1000}); err != nil || p.Total != 2 {
		t.Errorf("browse after refresh: total=%d err=%v", p.Total, err)
	}
}

func TestClient_BrowseInvalidQuery(t *testing.T) {
	c := &Client{browseSvc: &mockBrowseUC{}}

	_, err := c.Browse(context.Background(), Query{MinScore: -1})
	if !errors.Is(err, ErrInvalidQuery) {
		t.Errorf("got %v, want ErrInvalidQuery", err)
	}
}

func TestClient_BrowseDataSourceError(t *testing.T) {
	c := &Client{browseSvc: &mockBrowseUC{
		browseFn: func(context.Context, query.Query) (view.ResultView, error) {
			return view.ResultView{}, domain.NewDataSourceError("load index", errors.New("gone"))
		},
	}}

	_, err := c.Browse(context.Background(), Query{})
	if !errors.Is(err, ErrDataSource) {
		t.Errorf("got %v, want ErrDataSource", err)
	}
}

func TestClient_BrowseDegradedPage(t *testing.T) {
	detailErr := domain.NewDataSourceError("fetch details", errors.New("gone"))
	var gotPage int
	c := &Client{browseSvc: &mockBrowseUC{
		browseFn: func(_ context.Context, q query.Query) (view.ResultView, error) {
			gotPage = q.Page()
			rows := []view.Row{{ID: "a", Title: "A", Score: 5}}
			return view.New(rows, 1, 1, 1, 50, detailErr), nil
		},
	}}

	p, err := c.Browse(context.Background(), Query{})
	if err != nil {
		t.Fatalf("browse: %v", err)
	}
	if gotPage != 1 {
		t.Errorf("zero page should request page 1, got %d", gotPage)
	}
	if !errors.Is(p.Warning, ErrDataSource) {
		t.Errorf("warning: got %v", p.Warning)
	}
	if p.Novels[0].HasDetail || p.Novels[0].Title != "A" {
		t.Errorf("row: got %+v", p.Novels[0])
	}
}

func TestPage_Empty(t *testing.T) {
	if !(Page{}).Empty() {
		t.Error("zero page should be empty")
	}
	if (Page{Total: 3}).Empty() {
		t.Error("page with matches should not be empty")
	}
}

func TestClientOptions(t *testing.T) {
	cfg := &clientConfig{}

	WithStore("data/*.parquet").apply(cfg)
	if cfg.pattern != "data/*.parquet" {
		t.Errorf("pattern = %q, want data/*.parquet", cfg.pattern)
	}

	WithScanConcurrency(8).apply(cfg)
	if cfg.scanConcurrency != 8 {
		t.Errorf("scanConcurrency = %d, want 8", cfg.scanConcurrency)
	}

	WithPageSize(25).apply(cfg)
	if cfg.pageSize != 25 {
		t.Errorf("pageSize = %d, want 25", cfg.pageSize)
	}

	WithIndexTTL(time.Minute).apply(cfg)
	if cfg.indexTTL != time.Minute {
		t.Errorf("indexTTL = %v, want 1m", cfg.indexTTL)
	}

	WithReadinessTimeout(time.Second).apply(cfg)
	if cfg.readinessTimeout != time.Second {
		t.Errorf("readinessTimeout = %v, want 1s", cfg.readinessTimeout)
	}

	logger := slog.Default()
	WithLogger(logger).apply(cfg)
	if cfg.logger != logger {
		t.Error("expected logger to be set")
	}

	reg := prometheus.NewRegistry()
	WithPrometheus(reg).apply(cfg)
	if cfg.metricsReg != reg {
		t.Error("expected metricsReg to be set")
	}
}

func TestClient_Close_NilStore(t *testing.T) {
	c := &Client{store: nil}
	c.Close()
}

func TestObserver_NilSafe(t *testing.T) {
	var obs *observer
	obs.observe("test", time.Now(), nil)
	obs.observe("test", time.Now(), errors.New("err"))
	obs.warn("test", errors.New("err"))
}

func TestObserver_WithPrometheus(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}

	obs.observe("browse", time.Now().Add(-10*time.Millisecond), nil)
	obs.observe("browse", time.Now(), errors.New("fail"))

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	found := false
	for _, f := range families {
		if f.GetName() == "noveldex_sdk_operations_total" {
			found = true
			if len(f.GetMetric()) != 2 {
				t.Errorf("expected 2 metric samples, got %d", len(f.GetMetric()))
			}
		}
	}
	if !found {
		t.Error("noveldex_sdk_operations_total not found")
	}
}

func TestObserver_ReusesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := newObserver(nil, reg); err != nil {
		t.Fatalf("first observer: %v", err)
	}
	if _, err := newObserver(nil, reg); err != nil {
		t.Fatalf("second observer on same registry: %v", err)
	}
}

func TestObserver_WithLogger(t *testing.T) {
	obs, err := newObserver(slog.Default(), nil)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}
	obs.observe("test.op", time.Now(), nil)
	obs.observe("test.op", time.Now(), errors.New("test error"))
	obs.warn("test.op", errors.New("degraded"))
}

// --- Mocks ---

type mockBrowseUC struct {
	browseFn func(ctx context.Context, q query.Query) (view.ResultView, error)
	genresFn func(ctx context.Context) ([]string, error)
}

func (m *mockBrowseUC) Browse(ctx context.Context, q query.Query) (view.ResultView, error) {
	return m.browseFn(ctx, q)
}

func (m *mockBrowseUC) Genres(ctx context.Context) ([]string, error) {
	return m.genresFn(ctx)
}
