package entity

import (
	"context"

	"github.com/kailas-cloud/qou/internal/domain"
)

type mockExtractor struct {
	result domain.ExtractionResult
	err    error
	calls  int
	lastIn string
}

func (m *mockExtractor) Extract(_ context.Context, text string) (domain.ExtractionResult, error) {
	m.calls++
	m.lastIn = text
	return m.result, m.err
}

func recognized(text, label string) domain.RecognizedEntity {
	return domain.RecognizedEntity{Text: text, Label: label, Start: -1, End: -1}
}
