package entity

import "github.com/kailas-cloud/qou/internal/domain"

// Extraction is the outcome of a recognizer call.
// A failed extraction carries the error and no entities.
type Extraction struct {
	entities []domain.RecognizedEntity
	cached   bool
	err      error
}

func succeeded(res domain.ExtractionResult) Extraction {
	return Extraction{entities: res.Entities, cached: res.Cached}
}

func failed(err error) Extraction {
	return Extraction{err: err}
}

// Entities returns the recognized entities; empty on failure.
func (e Extraction) Entities() []domain.RecognizedEntity { return e.entities }

// Cached reports whether the result came from the extraction cache.
func (e Extraction) Cached() bool { return e.cached }

// Failed reports whether the recognizer call failed.
func (e Extraction) Failed() bool { return e.err != nil }

// Err returns the recognizer error, if any.
func (e Extraction) Err() error { return e.err }
