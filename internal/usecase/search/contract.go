package search

import (
	"context"

	"github.com/kailas-cloud/qou/internal/domain/query"
	"github.com/kailas-cloud/qou/internal/domain/search/result"
	"github.com/kailas-cloud/qou/internal/domain/search/structured"
)

// Engine executes structured queries against the product index.
type Engine interface {
	Search(ctx context.Context, q structured.Query, limit, offset int) (result.Response, error)
	SpellCheck(ctx context.Context, spec structured.SpellCheckSpec) ([]result.TermSuggestion, error)
	Explain(q structured.Query) string
}

// Suggester completes query prefixes.
type Suggester interface {
	Autocomplete(ctx context.Context, prefix string, limit int) ([]string, error)
}

// EntityResolver finds typed entities in normalized text. It never fails.
type EntityResolver interface {
	Resolve(ctx context.Context, normalized string) []query.Entity
}

// IntentClassifier labels the purpose of a normalized query.
type IntentClassifier interface {
	Classify(normalized string) query.Intent
}

// QueryBuilder rewrites an understood query into a structured one.
type QueryBuilder interface {
	Build(u query.Understood) structured.Query
}
