package domain

import "errors"

var (
	// ErrInvalidQuery signals a search request that failed validation.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrSearchUnavailable signals a search engine failure.
	ErrSearchUnavailable = errors.New("search engine unavailable")
	// ErrExtractionFailed signals an entity extraction provider failure.
	ErrExtractionFailed = errors.New("entity extraction failed")
	// ErrIndexNotReady signals that the product index does not exist yet.
	ErrIndexNotReady = errors.New("product index not ready")
	// ErrInvalidProduct signals a product document that cannot be indexed.
	ErrInvalidProduct = errors.New("invalid product")
)
