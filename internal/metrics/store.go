package metrics

import "github.com/prometheus/client_golang/prometheus"

// Query shapes issued against the partition store.
const (
	ShapeIndex  = "index"
	ShapeDetail = "detail"
)

// Store and index cache Prometheus metrics.
var (
	StoreQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "noveldex",
			Name:      "store_queries_total",
			Help:      "Total number of partition store queries",
		},
		[]string{"shape", "status"},
	)

	StoreQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "noveldex",
			Name:      "store_query_duration_seconds",
			Help:      "Partition store query duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"shape"},
	)

	IndexCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "noveldex",
			Name:      "index_cache_total",
			Help:      "Index cache lookups by outcome",
		},
		[]string{"result"}, // "hit" / "rebuild"
	)

	IndexRecords = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "noveldex",
			Name:      "index_records",
			Help:      "Number of records in the cached index",
		},
	)

	DetailsFetchedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "noveldex",
			Name:      "details_fetched_total",
			Help:      "Total synopses returned by detail fetches",
		},
	)
)

var storeMetricsRegistered bool

// RegisterStoreMetrics registers store and cache metrics. Must be called once from main.
func RegisterStoreMetrics() {
	if storeMetricsRegistered {
		return
	}
	prometheus.MustRegister(StoreQueriesTotal)
	prometheus.MustRegister(StoreQueryDuration)
	prometheus.MustRegister(IndexCacheTotal)
	prometheus.MustRegister(IndexRecords)
	prometheus.MustRegister(DetailsFetchedTotal)
	storeMetricsRegistered = true
}

// ObserveQuery records one store query of shape with its outcome.
func ObserveQuery(shape string, seconds float64, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	StoreQueriesTotal.WithLabelValues(shape, status).Inc()
	StoreQueryDuration.WithLabelValues(shape).Observe(seconds)
}
