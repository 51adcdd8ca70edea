package health

import "context"

// StorePinger checks that partitions are reachable.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// IndexState reports whether a catalog is cached.
type IndexState interface {
	Loaded() bool
}
