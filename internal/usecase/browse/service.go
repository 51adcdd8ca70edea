package browse

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/noveldex/internal/domain/novel"
	"github.com/kailas-cloud/noveldex/internal/domain/page"
	"github.com/kailas-cloud/noveldex/internal/domain/query"
	"github.com/kailas-cloud/noveldex/internal/domain/view"
	logpkg "github.com/kailas-cloud/noveldex/internal/logger"
)

// Service runs the browse pipeline: index → filter → paginate → details → merge.
type Service struct {
	index    IndexSource
	details  DetailSource
	pageSize int
	now      func() time.Time
}

// New creates a browse service with the default page size and the wall clock.
func New(index IndexSource, details DetailSource) *Service {
	return &Service{
		index:    index,
		details:  details,
		pageSize: page.DefaultSize,
		now:      time.Now,
	}
}

// WithPageSize configures the page size. Non-positive values are ignored.
func (s *Service) WithPageSize(size int) *Service {
	if size > 0 {
		s.pageSize = size
	}
	return s
}

// WithClock replaces the clock used for index cache expiry.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// PageSize returns the configured page size.
func (s *Service) PageSize() int { return s.pageSize }

// Browse runs one pipeline pass for q. An index failure is returned as an error.
// A detail failure is not: the view keeps the index fields, carries the failure
// in DetailErr, and the warning is logged.
func (s *Service) Browse(ctx context.Context, q query.Query) (view.ResultView, error) {
	cat, err := s.index.GetOrRebuild(ctx, s.now())
	if err != nil {
		return view.ResultView{}, fmt.Errorf("load index: %w", err)
	}

	matched := cat.Filter(q.Filter())
	number := page.Clamp(q.Page(), page.Count(matched.Len(), s.pageSize))

	w, err := page.Paginate(matched.Records(), s.pageSize, number)
	if err != nil {
		return view.ResultView{}, fmt.Errorf("paginate: %w", err)
	}

	details, detailErr := s.details.Fetch(ctx, novel.IDs(w.Records()))
	if detailErr != nil {
		logpkg.FromContext(ctx).Warn("Details unavailable, rendering page without synopses",
			zap.Int("page", w.Number()),
			zap.Int("records", len(w.Records())),
			zap.Error(detailErr),
		)
		details = nil
	}

	return view.New(
		view.Merge(w.Records(), details),
		w.Total(), w.Number(), w.TotalPages(), w.Size(),
		detailErr,
	), nil
}

// Genres returns the genre selector options with query.GenreAll first.
func (s *Service) Genres(ctx context.Context) ([]string, error) {
	cat, err := s.index.GetOrRebuild(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}
	return append([]string{query.GenreAll}, cat.Genres()...), nil
}
