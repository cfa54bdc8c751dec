package domain

import "context"

// EntityExtractor is the shared entity recognition contract between layers.
type EntityExtractor interface {
	Extract(ctx context.Context, text string) (ExtractionResult, error)
}

// HealthChecker verifies provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// RecognizedEntity is a span reported by an entity recognizer.
// Start and End are -1 when the recognizer does not report positions.
type RecognizedEntity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// ExtractionResult carries recognizer output through the decorator chain.
type ExtractionResult struct {
	Entities []RecognizedEntity `json:"entities"`
	Cached   bool               `json:"-"`
}
