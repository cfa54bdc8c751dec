package result

import "github.com/kailas-cloud/qou/internal/domain/product"

// Bucket is a single terms-aggregation bucket returned by the engine.
type Bucket struct {
	Key      string
	DocCount uint64
}

// TermSuggestion holds ranked spelling alternatives for one query term.
type TermSuggestion struct {
	Term         string
	Alternatives []string
}

// Top returns the best-ranked alternative.
func (t TermSuggestion) Top() (string, bool) {
	if len(t.Alternatives) == 0 || t.Alternatives[0] == "" {
		return "", false
	}
	return t.Alternatives[0], true
}

// Hits is the primary result set of a search.
type Hits struct {
	Total    int
	Products []product.Product
}

// Response is what the engine returns for a structured query.
type Response struct {
	Hits    Hits
	Buckets map[string][]Bucket
}

// FacetValue is a single value of a facet with its document count.
type FacetValue struct {
	Value string `json:"value"`
	Count uint64 `json:"count"`
}

// Facet is a named count breakdown over the result set.
type Facet struct {
	Name   string       `json:"name"`
	Values []FacetValue `json:"values"`
}

// Outcome is the final answer to a search request.
type Outcome struct {
	total      int
	products   []product.Product
	facets     []Facet
	didYouMean string
	degraded   bool
}

// New creates a search outcome. An empty didYouMean means no suggestion.
func New(products []product.Product, facets []Facet, didYouMean string) Outcome {
	if products == nil {
		products = []product.Product{}
	}
	if facets == nil {
		facets = []Facet{}
	}
	return Outcome{products: products, facets: facets, didYouMean: didYouMean}
}

// WithTotal returns a copy of the outcome carrying the engine's total hit count.
func (o Outcome) WithTotal(total int) Outcome {
	o.total = total
	return o
}

// Degraded returns an empty outcome marking an engine failure.
func Degraded() Outcome {
	o := New(nil, nil, "")
	o.degraded = true
	return o
}

// Total returns the number of matching products across all pages.
func (o *Outcome) Total() int { return o.total }

// Products returns the matched products in engine order.
func (o *Outcome) Products() []product.Product { return o.products }

// Facets returns the non-empty facets.
func (o *Outcome) Facets() []Facet { return o.facets }

// DidYouMean returns the spelling suggestion, if any.
func (o *Outcome) DidYouMean() (string, bool) { return o.didYouMean, o.didYouMean != "" }

// IsDegraded reports whether the engine call failed.
func (o *Outcome) IsDegraded() bool { return o.degraded }
