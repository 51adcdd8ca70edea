// Package detail fetches synopses for exactly the records on screen.
package detail

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/noveldex/internal/domain"
	"github.com/kailas-cloud/noveldex/internal/domain/novel"
	"github.com/kailas-cloud/noveldex/internal/metrics"
)

// store is the consumer interface for detail reads (ISP).
type store interface {
	FetchDetails(ctx context.Context, ids []string) (map[string]novel.Detail, error)
}

// Fetcher issues one store query per call. Nothing is cached: revisiting a
// page queries again.
type Fetcher struct {
	store store
}

// New creates a detail fetcher.
func New(s store) *Fetcher {
	return &Fetcher{store: s}
}

// Fetch returns the details of ids keyed by id. An empty ids list returns an
// empty map without querying. Keys outside ids are never returned.
func (f *Fetcher) Fetch(ctx context.Context, ids []string) (map[string]novel.Detail, error) {
	if len(ids) == 0 {
		return map[string]novel.Detail{}, nil
	}

	start := time.Now()
	found, err := f.store.FetchDetails(ctx, ids)
	metrics.ObserveQuery(metrics.ShapeDetail, time.Since(start).Seconds(), err)
	if err != nil {
		return nil, domain.NewDataSourceError("fetch details", fmt.Errorf("fetch %d ids: %w", len(ids), err))
	}

	out := make(map[string]novel.Detail, len(ids))
	for _, id := range ids {
		if d, ok := found[id]; ok {
			out[id] = d
		}
	}
	metrics.DetailsFetchedTotal.Add(float64(len(out)))
	return out, nil
}
