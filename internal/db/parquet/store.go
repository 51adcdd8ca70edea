// Package parquet implements db.Store over a glob of parquet partition files.
//
// Reads go through individual column chunks, so a scan only decodes the
// columns it projects. The synopsis column is opened by FetchDetails alone,
// and only for row groups that contain a requested id.
package parquet

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/noveldex/internal/db"
	"github.com/kailas-cloud/noveldex/internal/domain/novel"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

const defaultConcurrency = 4

// Config holds the partition location and read settings.
type Config struct {
	Pattern         string // glob over partition files, e.g. data/*.parquet
	ScanConcurrency int    // partitions decoded in parallel, default 4
	Logger          *zap.Logger
}

// Store reads novels from parquet partitions.
type Store struct {
	pattern     string
	concurrency int
	logger      *zap.Logger
	closed      atomic.Bool
}

// NewStore validates cfg and creates a Store. Partitions are resolved per call,
// so files added or removed later are picked up on the next scan.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Pattern == "" {
		return nil, fmt.Errorf("pattern is required")
	}
	if _, err := filepath.Match(cfg.Pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", cfg.Pattern, err)
	}
	if cfg.ScanConcurrency <= 0 {
		cfg.ScanConcurrency = defaultConcurrency
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Store{
		pattern:     cfg.Pattern,
		concurrency: cfg.ScanConcurrency,
		logger:      cfg.Logger,
	}, nil
}

// Ping checks that at least one partition matches the pattern.
func (s *Store) Ping(_ context.Context) error {
	if _, err := s.partitions(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close marks the store closed. Later calls fail with db.ErrClosed.
func (s *Store) Close() {
	s.closed.Store(true)
}

// WaitForReady polls Ping until a partition appears or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.Ping(ctx); err == nil {
		return nil
	}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for partitions: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// partitions returns the matching files in lexical order.
func (s *Store) partitions() ([]string, error) {
	if s.closed.Load() {
		return nil, &db.Error{Op: db.OpGlob, Err: db.ErrClosed}
	}
	files, err := filepath.Glob(s.pattern)
	if err != nil {
		return nil, &db.Error{Op: db.OpGlob, Err: err}
	}
	if len(files) == 0 {
		return nil, &db.Error{Op: db.OpGlob, Err: fmt.Errorf("%w: %s", db.ErrNoPartitions, s.pattern)}
	}
	sort.Strings(files)
	return files, nil
}

// ScanIndex reads the narrow columns of every partition. Partitions are decoded
// concurrently and concatenated in file order, so the result order is stable.
func (s *Store) ScanIndex(ctx context.Context) ([]novel.Record, error) {
	files, err := s.partitions()
	if err != nil {
		return nil, err
	}

	parts := make([][]novel.Record, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, path := range files {
		g.Go(func() error {
			recs, skipped, err := scanPartition(gctx, path)
			if err != nil {
				return &db.Error{Op: db.OpScan, Path: path, Err: err}
			}
			if skipped > 0 {
				s.logger.Warn("Skipped rows without id",
					zap.String("partition", filepath.Base(path)),
					zap.Int("rows", skipped),
				)
			}
			parts[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err //nolint:wrapcheck // already a *db.Error
	}

	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]novel.Record, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}

	s.logger.Debug("Scanned index",
		zap.Int("partitions", len(files)),
		zap.Int("records", len(out)),
	)
	return out, nil
}

// FetchDetails returns the synopsis of every id found. Ids present in several
// partitions resolve to the first partition in file order.
func (s *Store) FetchDetails(ctx context.Context, ids []string) (map[string]novel.Detail, error) {
	out := make(map[string]novel.Detail, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	files, err := s.partitions()
	if err != nil {
		return nil, err
	}

	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	parts := make([]map[string]novel.Detail, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, path := range files {
		g.Go(func() error {
			found, err := fetchPartition(gctx, path, want)
			if err != nil {
				return &db.Error{Op: db.OpFetch, Path: path, Err: err}
			}
			parts[i] = found
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err //nolint:wrapcheck // already a *db.Error
	}

	for _, p := range parts {
		for id, d := range p {
			if _, dup := out[id]; !dup {
				out[id] = d
			}
		}
	}
	return out, nil
}
