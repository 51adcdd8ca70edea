package noveldex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/noveldex/internal/db"
	dbParquet "github.com/kailas-cloud/noveldex/internal/db/parquet"
	"github.com/kailas-cloud/noveldex/internal/domain/query"
	"github.com/kailas-cloud/noveldex/internal/domain/view"
	detailrepo "github.com/kailas-cloud/noveldex/internal/repository/detail"
	indexrepo "github.com/kailas-cloud/noveldex/internal/repository/index"
	browseuc "github.com/kailas-cloud/noveldex/internal/usecase/browse"
	healthuc "github.com/kailas-cloud/noveldex/internal/usecase/health"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces, replaced by mocks in tests.
type browseUseCase interface {
	Browse(ctx context.Context, q query.Query) (view.ResultView, error)
	Genres(ctx context.Context) ([]string, error)
}

type indexCache interface {
	Invalidate()
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the noveldex SDK entry point.
type Client struct {
	store     db.Store
	browseSvc browseUseCase
	index     indexCache
	healthSvc healthUseCase
	obs       *observer
}

// Open creates a Client over the partitions matched by WithStore and builds
// the index. The provided context bounds the readiness wait and the first scan.
func Open(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{readinessTimeout: defaultReadinessTimeout}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.pattern == "" {
		return nil, errors.New("noveldex: partition glob required (use WithStore)")
	}

	store, err := dbParquet.NewStore(dbParquet.Config{
		Pattern:         cfg.pattern,
		ScanConcurrency: cfg.scanConcurrency,
	})
	if err != nil {
		return nil, fmt.Errorf("noveldex: create store: %w", err)
	}

	if err := store.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("noveldex: store not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}

	c, cache := wireClient(store, cfg, obs)
	if _, err := cache.GetOrRebuild(ctx, time.Now()); err != nil {
		store.Close()
		return nil, fmt.Errorf("noveldex: build index: %w", err)
	}
	return c, nil
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) (*Client, *indexrepo.Cache) {
	cache := indexrepo.New(store, cfg.indexTTL, nil, zap.NewNop())
	browseSvc := browseuc.New(cache, detailrepo.New(store)).WithPageSize(cfg.pageSize)

	return &Client{
		store:     store,
		browseSvc: browseSvc,
		index:     cache,
		healthSvc: healthuc.New(store, cache),
		obs:       obs,
	}, cache
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks that partitions are still reachable.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Health checks the health of all system components.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status: string(report.Status),
		Checks: checks,
	}
}

// Refresh drops the cached index; the next Browse or Genres call rescans.
func (c *Client) Refresh() {
	c.index.Invalidate()
}
