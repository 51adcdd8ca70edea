package query

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/noveldex/internal/domain"
	"github.com/kailas-cloud/noveldex/internal/domain/novel"
)

// GenreAll disables the genre predicate.
const GenreAll = "all"

// Filter is the predicate set applied to the index. All active predicates combine with AND.
type Filter struct {
	genre    string
	keyword  string
	minScore int64
}

// NewFilter validates and creates a Filter.
// An empty genre is treated as GenreAll; minScore 0 disables the score predicate.
func NewFilter(genre, keyword string, minScore int64) (Filter, error) {
	if minScore < 0 {
		return Filter{}, fmt.Errorf("%w: min_score must be >= 0, got %d", domain.ErrInvalidQuery, minScore)
	}
	if genre == "" {
		genre = GenreAll
	}
	return Filter{genre: genre, keyword: keyword, minScore: minScore}, nil
}

// Genre returns the genre to match, or GenreAll.
func (f Filter) Genre() string {
	if f.genre == "" {
		return GenreAll
	}
	return f.genre
}

// HasGenre reports whether the genre predicate is active.
func (f Filter) HasGenre() bool { return f.genre != "" && f.genre != GenreAll }

// Keyword returns the keyword substring.
func (f Filter) Keyword() string { return f.keyword }

// MinScore returns the minimum popularity score.
func (f Filter) MinScore() int64 { return f.minScore }

// MatchKeyword reports whether r's title or keywords contain the keyword.
// Matching is case-sensitive; absent title/keywords never match.
func (f Filter) MatchKeyword(r *novel.Record) bool {
	if f.keyword == "" {
		return true
	}
	if title, ok := r.Title(); ok && strings.Contains(title, f.keyword) {
		return true
	}
	if kw, ok := r.Keywords(); ok && strings.Contains(kw, f.keyword) {
		return true
	}
	return false
}

// Match evaluates every active predicate against r.
func (f Filter) Match(r *novel.Record) bool {
	if f.minScore > 0 && r.Score() < f.minScore {
		return false
	}
	if f.HasGenre() && r.Genre() != f.genre {
		return false
	}
	return f.MatchKeyword(r)
}

// Query is a browse request: a filter plus the requested page.
type Query struct {
	filter Filter
	page   int
}

// New creates a Query. The page is clamped later against the result size.
func New(f Filter, page int) Query {
	return Query{filter: f, page: page}
}

// Filter returns the predicate set.
func (q Query) Filter() Filter { return q.filter }

// Page returns the requested page number (1-based, unclamped).
func (q Query) Page() int { return q.page }
