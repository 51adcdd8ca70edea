package noveldex

import "github.com/kailas-cloud/noveldex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrDataSource   = domain.ErrDataSource
	ErrInvalidQuery = domain.ErrInvalidQuery
	ErrInvalidPage  = domain.ErrInvalidPage
)
