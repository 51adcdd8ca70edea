package db

import (
	"context"
	"time"

	"github.com/kailas-cloud/noveldex/internal/domain/novel"
)

// Column names of a corpus partition.
const (
	ColID         = "ncode"
	ColTitle      = "title"
	ColGenre      = "genre"
	ColScore      = "global_point"
	ColLength     = "length"
	ColLastUpdate = "general_lastup"
	ColKeywords   = "keyword"
	ColSynopsis   = "story"
)

// Store is the partition store facade combining all sub-interfaces.
type Store interface {
	Pinger
	IndexScanner
	DetailReader
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks that the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// IndexScanner projects the narrow columns of every partition.
// Implementations must never read ColSynopsis.
type IndexScanner interface {
	ScanIndex(ctx context.Context) ([]novel.Record, error)
}

// DetailReader projects {ColID, ColSynopsis} restricted to ColID IN ids.
type DetailReader interface {
	FetchDetails(ctx context.Context, ids []string) (map[string]novel.Detail, error)
}
