// Package catalog is the in-memory index over the corpus and its filter engine.
//
// Records are stable-sorted by score (descending) once, at build time. Every
// filter walks positions in ascending order, so results inherit that order:
// score descending, ties by original index order.
package catalog

import (
	"cmp"
	"slices"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/kailas-cloud/noveldex/internal/domain/novel"
	"github.com/kailas-cloud/noveldex/internal/domain/query"
)

// Catalog is an immutable snapshot of the index.
type Catalog struct {
	records    []novel.Record
	byGenre    map[string]*roaring.Bitmap
	genres     []string
	duplicates int
}

// Build sorts records and indexes genres. Duplicate IDs keep the first occurrence.
func Build(records []novel.Record) *Catalog {
	seen := make(map[string]struct{}, len(records))
	unique := make([]novel.Record, 0, len(records))
	for i := range records {
		id := records[i].ID()
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, records[i])
	}

	slices.SortStableFunc(unique, func(a, b novel.Record) int {
		return cmp.Compare(b.Score(), a.Score())
	})

	byGenre := make(map[string]*roaring.Bitmap)
	for i := range unique {
		g := unique[i].Genre()
		bm, ok := byGenre[g]
		if !ok {
			bm = roaring.New()
			byGenre[g] = bm
		}
		bm.Add(uint32(i)) //nolint:gosec // index size is bounded by memory, far below 2^32
	}
	for _, bm := range byGenre {
		bm.RunOptimize()
	}

	genres := make([]string, 0, len(byGenre))
	for g := range byGenre {
		genres = append(genres, g)
	}
	slices.Sort(genres)

	return &Catalog{
		records:    unique,
		byGenre:    byGenre,
		genres:     genres,
		duplicates: len(records) - len(unique),
	}
}

// Len returns the number of indexed records.
func (c *Catalog) Len() int { return len(c.records) }

// Duplicates returns how many input rows were dropped for a repeated ID.
func (c *Catalog) Duplicates() int { return c.duplicates }

// Genres returns the distinct genres, sorted.
func (c *Catalog) Genres() []string { return slices.Clone(c.genres) }

// Records returns every record in catalog order.
func (c *Catalog) Records() []novel.Record { return slices.Clone(c.records) }

// Filter applies f and returns matching records in catalog order.
func (c *Catalog) Filter(f query.Filter) Result {
	end := len(c.records)
	if minScore := f.MinScore(); minScore > 0 {
		end = sort.Search(len(c.records), func(i int) bool {
			return c.records[i].Score() < minScore
		})
	}

	out := make([]novel.Record, 0)

	if f.HasGenre() {
		bm, ok := c.byGenre[f.Genre()]
		if !ok {
			return Result{records: out, queried: true}
		}
		it := bm.Iterator()
		for it.HasNext() {
			i := int(it.Next())
			if i >= end {
				break
			}
			if f.MatchKeyword(&c.records[i]) {
				out = append(out, c.records[i])
			}
		}
		return Result{records: out, queried: true}
	}

	for i := 0; i < end; i++ {
		if f.MatchKeyword(&c.records[i]) {
			out = append(out, c.records[i])
		}
	}
	return Result{records: out, queried: true}
}

// Result is the ordered output of Filter. The zero value means "not queried".
type Result struct {
	records []novel.Record
	queried bool
}

// Records returns the matching records.
func (r Result) Records() []novel.Record { return r.records }

// Len returns the number of matches.
func (r Result) Len() int { return len(r.records) }

// Queried reports whether the result came from a Filter call.
func (r Result) Queried() bool { return r.queried }

// Empty reports whether a query ran and matched nothing.
func (r Result) Empty() bool { return r.queried && len(r.records) == 0 }
