// Package view merges a page of index records with their fetched details.
package view

import (
	"time"

	"github.com/kailas-cloud/noveldex/internal/domain/novel"
)

// Row is one display row: index fields always set, synopsis only when fetched.
type Row struct {
	ID         string
	Title      string
	Genre      string
	Score      int64
	Length     int64
	LastUpdate time.Time
	Keywords   string
	Synopsis   string
	HasDetail  bool
}

// Merge left-joins details onto records by ID, keeping record order.
func Merge(records []novel.Record, details map[string]novel.Detail) []Row {
	rows := make([]Row, len(records))
	for i := range records {
		r := &records[i]
		title, _ := r.Title()
		kw, _ := r.Keywords()
		rows[i] = Row{
			ID:         r.ID(),
			Title:      title,
			Genre:      r.Genre(),
			Score:      r.Score(),
			Length:     r.Length(),
			LastUpdate: r.LastUpdate(),
			Keywords:   kw,
		}
		if d, ok := details[r.ID()]; ok {
			rows[i].Synopsis = d.Synopsis()
			rows[i].HasDetail = true
		}
	}
	return rows
}

// ResultView is the outcome of one browse pipeline run. The zero value is "not queried".
type ResultView struct {
	Rows       []Row
	Total      int
	Page       int
	TotalPages int
	PageSize   int
	// DetailErr is set when synopses could not be fetched; Rows still carry index fields.
	DetailErr error
	queried   bool
}

// New creates a queried ResultView.
func New(rows []Row, total, page, totalPages, pageSize int, detailErr error) ResultView {
	return ResultView{
		Rows:       rows,
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
		PageSize:   pageSize,
		DetailErr:  detailErr,
		queried:    true,
	}
}

// Queried reports whether the view came from a pipeline run.
func (v ResultView) Queried() bool { return v.queried }

// Empty reports whether the query ran and matched nothing.
func (v ResultView) Empty() bool { return v.queried && v.Total == 0 }

// Degraded reports whether the page is missing its details.
func (v ResultView) Degraded() bool { return v.DetailErr != nil }
