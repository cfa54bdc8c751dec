// Package structured holds the rewritten, engine-agnostic search request.
package structured

import "github.com/kailas-cloud/qou/internal/domain/search/clause"

// Aggregation names attached to every query.
const (
	AggByCategory = "by_category"
	AggByBrand    = "by_brand"
)

// DefaultAggregationSize is the bucket count requested per aggregation.
const DefaultAggregationSize = 10

// AggregationSpec requests the top-N values of a keyword field.
type AggregationSpec struct {
	Name  string `json:"name"`
	Field string `json:"field"`
	Size  int    `json:"size"`
}

// SpellCheckSpec requests term-level corrections for Text against Field.
type SpellCheckSpec struct {
	Field string `json:"field"`
	Text  string `json:"text"`
}

// Query is the bool-style request built by the rewriter.
// Filter clauses narrow without scoring; Must clauses are required and
// scored; Should clauses only boost.
type Query struct {
	Must         []clause.Clause   `json:"must"`
	Filter       []clause.Clause   `json:"filter"`
	Should       []clause.Clause   `json:"should"`
	Aggregations []AggregationSpec `json:"aggregations"`
	SpellCheck   SpellCheckSpec    `json:"spell_check"`
}

// IsUnconstrained reports whether the query carries no clause at all.
func (q *Query) IsUnconstrained() bool {
	return len(q.Must) == 0 && len(q.Filter) == 0 && len(q.Should) == 0
}
