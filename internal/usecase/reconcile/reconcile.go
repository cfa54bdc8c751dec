// Package reconcile turns raw engine output into caller-facing facets and
// spelling suggestions.
package reconcile

import (
	"strings"

	"github.com/kailas-cloud/qou/internal/domain/query"
	"github.com/kailas-cloud/qou/internal/domain/search/result"
	"github.com/kailas-cloud/qou/internal/domain/search/structured"
)

// Facet display names.
const (
	FacetCategory = "Category"
	FacetBrand    = "Brand"
)

var facetOrder = []struct {
	agg  string
	name string
}{
	{structured.AggByCategory, FacetCategory},
	{structured.AggByBrand, FacetBrand},
}

// ParseFacets maps the category and brand aggregations to facets, in that
// order. An aggregation without buckets yields no facet at all.
func ParseFacets(buckets map[string][]result.Bucket) []result.Facet {
	facets := make([]result.Facet, 0, len(facetOrder))
	for _, f := range facetOrder {
		bs := buckets[f.agg]
		if len(bs) == 0 {
			continue
		}
		values := make([]result.FacetValue, 0, len(bs))
		for _, b := range bs {
			values = append(values, result.FacetValue{Value: b.Key, Count: b.DocCount})
		}
		facets = append(facets, result.Facet{Name: f.name, Values: values})
	}
	return facets
}

// BuildSuggestion rebuilds the query with every term replaced by its top
// spelling alternative, except terms that belong to a recognized entity.
// It reports false when no term changed.
func BuildSuggestion(normalized string, suggestions []result.TermSuggestion, entities []query.Entity) (string, bool) {
	if len(suggestions) == 0 {
		return "", false
	}

	top := make(map[string]string, len(suggestions))
	for _, s := range suggestions {
		term := strings.ToLower(s.Term)
		if _, seen := top[term]; seen {
			continue
		}
		if alt, ok := s.Top(); ok {
			top[term] = strings.ToLower(alt)
		}
	}

	entityWords := query.WordSet(entities)
	terms := strings.Fields(normalized)
	corrected := false
	for i, term := range terms {
		if _, ok := entityWords[strings.ToLower(term)]; ok {
			continue
		}
		alt, ok := top[strings.ToLower(term)]
		if !ok || alt == term {
			continue
		}
		terms[i] = alt
		corrected = true
	}

	if !corrected {
		return "", false
	}
	return strings.TrimSpace(strings.Join(terms, " ")), true
}
