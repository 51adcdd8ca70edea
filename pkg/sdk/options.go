package noveldex

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	pattern          string
	scanConcurrency  int
	readinessTimeout time.Duration

	pageSize int
	indexTTL time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithStore sets the glob matching the parquet partitions. Required.
func WithStore(pattern string) Option {
	return optionFunc(func(c *clientConfig) {
		c.pattern = pattern
	})
}

// WithScanConcurrency bounds how many partitions are decoded in parallel
// while building the index. Default: 4.
func WithScanConcurrency(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.scanConcurrency = n
	})
}

// WithReadinessTimeout sets how long Open waits for the first partition to appear.
// Default: 10s.
func WithReadinessTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.readinessTimeout = d
	})
}

// WithPageSize sets the number of novels per page. Default: 50.
func WithPageSize(size int) Option {
	return optionFunc(func(c *clientConfig) {
		c.pageSize = size
	})
}

// WithIndexTTL sets how long a built index is reused before a rescan.
// Default: 1h.
func WithIndexTTL(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.indexTTL = ttl
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
