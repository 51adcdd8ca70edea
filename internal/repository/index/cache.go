// Package index caches the catalog built from a full narrow-column scan.
package index

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/noveldex/internal/domain"
	"github.com/kailas-cloud/noveldex/internal/domain/catalog"
	"github.com/kailas-cloud/noveldex/internal/domain/novel"
	"github.com/kailas-cloud/noveldex/internal/metrics"
)

// DefaultTTL is how long a built catalog is served before a rescan.
const DefaultTTL = time.Hour

// scanner is the consumer interface for the index scan (ISP).
type scanner interface {
	ScanIndex(ctx context.Context) ([]novel.Record, error)
}

type entry struct {
	catalog *catalog.Catalog
	builtAt time.Time
}

// Cache holds the process-wide catalog. Readers load the current entry
// atomically; rebuilds replace it wholesale.
type Cache struct {
	store      scanner
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger

	current atomic.Pointer[entry]
	rebuild sync.Mutex
}

// New creates an index cache. cacheTotal has label "result" ("hit"/"rebuild") and may be nil.
func New(s scanner, ttl time.Duration, cacheTotal *prometheus.CounterVec, logger *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{store: s, ttl: ttl, cacheTotal: cacheTotal, logger: logger}
}

// GetOrRebuild returns the cached catalog while now is inside the TTL window,
// otherwise rescans the store. A failed rebuild returns a *domain.DataSourceError
// and keeps the previous entry in place.
func (c *Cache) GetOrRebuild(ctx context.Context, now time.Time) (*catalog.Catalog, error) {
	if e := c.current.Load(); c.fresh(e, now) {
		c.inc("hit")
		return e.catalog, nil
	}

	c.rebuild.Lock()
	defer c.rebuild.Unlock()

	// Another caller may have rebuilt while we waited.
	if e := c.current.Load(); c.fresh(e, now) {
		c.inc("hit")
		return e.catalog, nil
	}

	c.inc("rebuild")
	start := time.Now()
	records, err := c.store.ScanIndex(ctx)
	metrics.ObserveQuery(metrics.ShapeIndex, time.Since(start).Seconds(), err)
	if err != nil {
		return nil, domain.NewDataSourceError("load index", fmt.Errorf("scan index: %w", err))
	}

	cat := catalog.Build(records)
	c.current.Store(&entry{catalog: cat, builtAt: now})
	metrics.IndexRecords.Set(float64(cat.Len()))

	fields := []zap.Field{
		zap.Int("records", cat.Len()),
		zap.Int("genres", len(cat.Genres())),
		zap.Duration("took", time.Since(start)),
	}
	if cat.Duplicates() > 0 {
		fields = append(fields, zap.Int("duplicates_dropped", cat.Duplicates()))
	}
	c.logger.Info("Index rebuilt", fields...)

	return cat, nil
}

// Loaded reports whether a catalog is cached, regardless of age.
func (c *Cache) Loaded() bool {
	return c.current.Load() != nil
}

// Invalidate drops the cached catalog; the next GetOrRebuild rescans.
func (c *Cache) Invalidate() {
	c.current.Store(nil)
}

func (c *Cache) fresh(e *entry, now time.Time) bool {
	return e != nil && now.Before(e.builtAt.Add(c.ttl))
}

func (c *Cache) inc(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}
