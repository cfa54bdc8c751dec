// Package rewrite turns an understood query into an engine-agnostic
// structured query. Entity-derived filters take priority; free text is
// reduced to the residual left after removing entity words and stopwords.
package rewrite

import (
	"strings"

	"github.com/kailas-cloud/qou/internal/domain/product"
	"github.com/kailas-cloud/qou/internal/domain/query"
	"github.com/kailas-cloud/qou/internal/domain/search/clause"
	"github.com/kailas-cloud/qou/internal/domain/search/structured"
)

// DefaultStopwords are dropped from the residual text.
var DefaultStopwords = []string{
	"a", "an", "and", "the", "in", "on", "for", "from", "i", "me",
	"show", "find", "get", "some", "items", "products", "aisle",
}

const (
	organicValue     = "organic"
	searchAidWeight  = 0.5
	organicFlagValue = "true"
)

// Rewriter builds structured queries. Immutable after construction and safe
// for concurrent use.
type Rewriter struct {
	stopwords map[string]struct{}
	aggSize   int
	handlers  map[query.EntityType]handler
}

// Option configures a Rewriter.
type Option func(*Rewriter)

// WithStopwords replaces the default stopword list.
func WithStopwords(words []string) Option {
	return func(r *Rewriter) {
		r.stopwords = wordSet(words)
	}
}

// WithAggregationSize sets the bucket count of the facet aggregations.
func WithAggregationSize(n int) Option {
	return func(r *Rewriter) {
		if n > 0 {
			r.aggSize = n
		}
	}
}

// New creates a rewriter with the default stopwords and aggregation size.
func New(opts ...Option) *Rewriter {
	r := &Rewriter{
		stopwords: wordSet(DefaultStopwords),
		aggSize:   structured.DefaultAggregationSize,
		handlers:  defaultHandlers(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Build rewrites an understood query. The result depends only on the input:
// the same understood query always yields an equal structured query.
func (r *Rewriter) Build(u query.Understood) structured.Query {
	normalized := u.Preprocessed().Normalized()
	entities := u.Entities()

	b := clauses{
		must:   []clause.Clause{},
		filter: []clause.Clause{},
		should: []clause.Clause{},
	}
	for _, e := range entities {
		if e.IsEmpty() {
			continue
		}
		h, ok := r.handlers[e.Type]
		if !ok {
			// Unknown label: no clause, but its words still leave the residual.
			continue
		}
		h(e, &b)
	}

	residual := r.Residual(normalized, entities)
	switch {
	case len(b.must) > 0 && residual != "":
		b.must = append(b.must, residualMatch(residual))
	case len(b.must) == 0:
		b.must = append(b.must, fullTextMatch(normalized))
	}

	return structured.Query{
		Must:   b.must,
		Filter: b.filter,
		Should: b.should,
		Aggregations: []structured.AggregationSpec{
			{Name: structured.AggByCategory, Field: product.FieldCategories, Size: r.aggSize},
			{Name: structured.AggByBrand, Field: product.FieldBrand, Size: r.aggSize},
		},
		SpellCheck: structured.SpellCheckSpec{Field: product.FieldName, Text: normalized},
	}
}

// Residual returns the query words that are neither entity words nor
// stopwords, in their original order, joined by single spaces.
func (r *Rewriter) Residual(normalized string, entities []query.Entity) string {
	entityWords := query.WordSet(entities)
	var kept []string
	for _, tok := range strings.Fields(normalized) {
		if _, ok := entityWords[tok]; ok {
			continue
		}
		if _, ok := r.stopwords[tok]; ok {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

func residualMatch(text string) clause.MultiMatch {
	return clause.MultiMatch{
		Fields: []clause.WeightedField{
			clause.Field(product.FieldName),
			clause.Field(product.FieldDescription),
			clause.Boosted(product.FieldSearchAid, searchAidWeight),
		},
		Text:  text,
		Fuzzy: true,
	}
}

func fullTextMatch(text string) clause.MultiMatch {
	return clause.MultiMatch{
		Fields: []clause.WeightedField{
			clause.Field(product.FieldName),
			clause.Field(product.FieldDescription),
		},
		Text: text,
	}
}

func wordSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			set[w] = struct{}{}
		}
	}
	return set
}
