package noveldex

import "time"

// Query selects a page of novels. Zero fields disable their predicate;
// Page below 1 or past the last page is clamped.
type Query struct {
	Genre    string
	Keyword  string
	MinScore int64
	Page     int
}

// Novel is one browse row.
type Novel struct {
	ID         string
	Title      string
	Genre      string
	Score      int64
	Length     int64
	LastUpdate time.Time
	Keywords   string
	Synopsis   string
	HasDetail  bool // false when the synopsis could not be fetched
}

// Page is the result of one Browse call.
type Page struct {
	Novels     []Novel
	Total      int
	Page       int
	TotalPages int
	PageSize   int
	// Warning is set when synopses could not be fetched; index fields are still present.
	Warning error
}

// Empty reports whether nothing matched the query.
func (p Page) Empty() bool { return p.Total == 0 }

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            // "ok", "degraded"
	Checks map[string]string // component → "ok"/"error"
}
