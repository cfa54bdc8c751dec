package qou

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/qou/internal/domain"
)

// Extractor recognizes typed entities (BRAND, CATEGORY, ...) in query text.
// Errors are tolerated: the pipeline falls back to its lexicon.
type Extractor interface {
	Extract(ctx context.Context, text string) ([]RecognizedEntity, error)
}

// extractorAdapter wraps a public Extractor to satisfy domain.EntityExtractor.
type extractorAdapter struct {
	inner Extractor
}

func (a *extractorAdapter) Extract(ctx context.Context, text string) (domain.ExtractionResult, error) {
	found, err := a.inner.Extract(ctx, text)
	if err != nil {
		return domain.ExtractionResult{}, fmt.Errorf("extract: %w: %w", domain.ErrExtractionFailed, err)
	}
	out := make([]domain.RecognizedEntity, 0, len(found))
	for _, e := range found {
		out = append(out, domain.RecognizedEntity{Text: e.Text, Label: e.Label, Start: -1, End: -1})
	}
	return domain.ExtractionResult{Entities: out}, nil
}
