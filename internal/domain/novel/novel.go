// Package novel holds the two record tiers of the corpus: the narrow index
// record and the synopsis detail fetched per page.
package novel

import (
	"fmt"
	"time"
)

// UnknownGenre replaces a missing genre at ingestion.
const UnknownGenre = "unknown"

// Raw is a record as decoded from storage, before normalization.
// Nil pointers mean the column value was null.
type Raw struct {
	ID         string
	Title      *string
	Genre      *string
	Score      *int64
	Length     *int64
	LastUpdate time.Time
	Keywords   *string
}

// Record is one index entry (immutable value object). It never carries the synopsis.
type Record struct {
	id         string
	title      string
	hasTitle   bool
	genre      string
	score      int64
	length     int64
	lastUpdate time.Time
	keywords   string
	hasKw      bool
}

// New validates and normalizes a raw row.
// Missing genre becomes UnknownGenre; missing or negative score becomes 0.
func New(raw Raw) (Record, error) {
	if raw.ID == "" {
		return Record{}, fmt.Errorf("record ID is required")
	}

	r := Record{
		id:         raw.ID,
		genre:      UnknownGenre,
		lastUpdate: raw.LastUpdate,
	}
	if raw.Title != nil {
		r.title, r.hasTitle = *raw.Title, true
	}
	if raw.Genre != nil && *raw.Genre != "" {
		r.genre = *raw.Genre
	}
	if raw.Score != nil && *raw.Score > 0 {
		r.score = *raw.Score
	}
	if raw.Length != nil {
		r.length = *raw.Length
	}
	if raw.Keywords != nil {
		r.keywords, r.hasKw = *raw.Keywords, true
	}
	return r, nil
}

// ID returns the ncode identifier.
func (r *Record) ID() string { return r.id }

// Title returns the title and whether it was present in storage.
func (r *Record) Title() (string, bool) { return r.title, r.hasTitle }

// Genre returns the normalized genre.
func (r *Record) Genre() string { return r.genre }

// Score returns the popularity score (global points).
func (r *Record) Score() int64 { return r.score }

// Length returns the character count.
func (r *Record) Length() int64 { return r.length }

// LastUpdate returns the last update time, zero when unknown.
func (r *Record) LastUpdate() time.Time { return r.lastUpdate }

// Keywords returns the keyword string and whether it was present in storage.
func (r *Record) Keywords() (string, bool) { return r.keywords, r.hasKw }

// IDs collects the identifiers of records in order.
func IDs(records []Record) []string {
	ids := make([]string, len(records))
	for i := range records {
		ids[i] = records[i].id
	}
	return ids
}

// Detail is the large synopsis field of one record.
type Detail struct {
	id       string
	synopsis string
}

// NewDetail creates a Detail.
func NewDetail(id, synopsis string) Detail {
	return Detail{id: id, synopsis: synopsis}
}

// ID returns the identifier matching Record.ID.
func (d *Detail) ID() string { return d.id }

// Synopsis returns the synopsis text.
func (d *Detail) Synopsis() string { return d.synopsis }
