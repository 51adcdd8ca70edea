package noveldex

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/noveldex/internal/domain/query"
	"github.com/kailas-cloud/noveldex/internal/domain/view"
)

// Browse returns one page of novels matching q, with synopses for that page.
// A failed synopsis fetch is not an error: the page carries Warning instead.
func (c *Client) Browse(ctx context.Context, q Query) (_ Page, err error) {
	start := time.Now()
	defer func() { c.obs.observe("browse", start, err) }()

	f, err := query.NewFilter(q.Genre, q.Keyword, q.MinScore)
	if err != nil {
		return Page{}, fmt.Errorf("browse: %w", err)
	}
	number := q.Page
	if number == 0 {
		number = 1
	}

	v, err := c.browseSvc.Browse(ctx, query.New(f, number))
	if err != nil {
		return Page{}, fmt.Errorf("browse: %w", err)
	}
	if v.Degraded() {
		c.obs.warn("browse", v.DetailErr)
	}
	return fromView(v), nil
}

// Genres returns the genre choices, "all" first.
func (c *Client) Genres(ctx context.Context) (_ []string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("genres", start, err) }()

	genres, err := c.browseSvc.Genres(ctx)
	if err != nil {
		return nil, fmt.Errorf("genres: %w", err)
	}
	return genres, nil
}

func fromView(v view.ResultView) Page {
	novels := make([]Novel, len(v.Rows))
	for i, r := range v.Rows {
		novels[i] = Novel{
			ID:         r.ID,
			Title:      r.Title,
			Genre:      r.Genre,
			Score:      r.Score,
			Length:     r.Length,
			LastUpdate: r.LastUpdate,
			Keywords:   r.Keywords,
			Synopsis:   r.Synopsis,
			HasDetail:  r.HasDetail,
		}
	}
	return Page{
		Novels:     novels,
		Total:      v.Total,
		Page:       v.Page,
		TotalPages: v.TotalPages,
		PageSize:   v.PageSize,
		Warning:    v.DetailErr,
	}
}
