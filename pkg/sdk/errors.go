package qou

import "github.com/kailas-cloud/qou/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidQuery     = domain.ErrInvalidQuery
	ErrIndexNotReady    = domain.ErrIndexNotReady
	ErrInvalidProduct   = domain.ErrInvalidProduct
	ErrExtractionFailed = domain.ErrExtractionFailed
)
