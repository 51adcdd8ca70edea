package browse

import (
	"context"
	"time"

	"github.com/kailas-cloud/noveldex/internal/domain/catalog"
	"github.com/kailas-cloud/noveldex/internal/domain/novel"
)

// IndexSource provides the cached catalog.
type IndexSource interface {
	GetOrRebuild(ctx context.Context, now time.Time) (*catalog.Catalog, error)
}

// DetailSource fetches synopses for the ids on a page.
type DetailSource interface {
	Fetch(ctx context.Context, ids []string) (map[string]novel.Detail, error)
}
