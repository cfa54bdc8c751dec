package qou

import (
	"github.com/kailas-cloud/qou/internal/domain/product"
	"github.com/kailas-cloud/qou/internal/domain/query"
	"github.com/kailas-cloud/qou/internal/domain/search/result"
	"github.com/kailas-cloud/qou/internal/domain/search/structured"
)

// Catalog and pipeline types shared with the service.
type (
	Product           = product.Product
	Attribute         = product.Attribute
	GroceryAttributes = product.GroceryAttributes
	Facet             = result.Facet
	FacetValue        = result.FacetValue
	Entity            = query.Entity
	Intent            = query.Intent
	StructuredQuery   = structured.Query
)

// Query is a single search request.
type Query struct {
	Text    string
	UserID  string
	Segment string
	Limit   int // 0 = default (20), clamped to 100
	Offset  int
}

// Results is the answer to a search.
type Results struct {
	Products []Product
	Facets   []Facet
	Total    int
	// Suggestion is the spelling correction offered on zero hits, or "".
	Suggestion string
	// Degraded is set when the engine failed and the results are empty.
	Degraded bool
}

// DidYouMean returns the spelling suggestion, if any.
func (r *Results) DidYouMean() (string, bool) {
	return r.Suggestion, r.Suggestion != ""
}

// Understanding shows how a query was interpreted.
type Understanding struct {
	Normalized  string
	Intent      Intent
	Entities    []Entity
	Query       StructuredQuery
	EngineQuery string
}

// IndexSummary reports the outcome of an Index call.
type IndexSummary struct {
	Indexed int
	Failed  map[string]error // product id -> cause
}

// RecognizedEntity is what an Extractor reports for one span.
type RecognizedEntity struct {
	Text  string
	Label string
}
