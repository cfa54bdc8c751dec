// Package search executes structured queries against the product index.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/qou/internal/db"
	"github.com/kailas-cloud/qou/internal/domain"
	"github.com/kailas-cloud/qou/internal/domain/product"
	"github.com/kailas-cloud/qou/internal/domain/search/result"
	"github.com/kailas-cloud/qou/internal/domain/search/structured"
	"github.com/kailas-cloud/qou/internal/logger"
	"github.com/kailas-cloud/qou/internal/metrics"
	"github.com/kailas-cloud/qou/internal/repository/productindex"
)

// MaxSuggestions caps autocomplete results.
const MaxSuggestions = 10

const documentField = "$"

// store is the consumer interface for search operations (ISP).
type store interface {
	Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error)
	Aggregate(ctx context.Context, q *db.AggregateQuery) ([]db.GroupCount, error)
	SpellCheck(ctx context.Context, q *db.SpellCheckQuery) ([]db.SpellCheckTerm, error)
	SugGet(ctx context.Context, key, prefix string, limit int, fuzzy bool) ([]string, error)
}

// Config names the index structures the repository reads.
type Config struct {
	Layout        productindex.Layout
	SpellDict     string
	SpellDistance int
	SuggestKey    string
}

// Repo implements usecase/search.Engine and usecase/search.Suggester.
type Repo struct {
	store store
	cfg   Config
}

// New creates a search repository.
func New(s store, cfg Config) *Repo {
	if cfg.SpellDistance <= 0 {
		cfg.SpellDistance = 1
	}
	return &Repo{store: s, cfg: cfg}
}

// Explain returns the engine query string a structured query compiles to.
func (r *Repo) Explain(q structured.Query) string {
	return Compile(q)
}

// Search runs the structured query and its aggregations.
// Aggregation failures drop the affected buckets and never fail the search.
func (r *Repo) Search(ctx context.Context, q structured.Query, limit, offset int) (result.Response, error) {
	compiled := Compile(q)
	logger.FromContext(ctx).Debug("engine query compiled", zap.String("query", compiled))

	start := time.Now()
	sr, err := r.store.Search(ctx, &db.SearchQuery{
		IndexName:    r.cfg.Layout.IndexName,
		Query:        compiled,
		Offset:       offset,
		Limit:        limit,
		ReturnFields: []string{documentField},
	})
	observe("search", start, err)
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return result.Response{}, fmt.Errorf("search %s: %w", r.cfg.Layout.IndexName, domain.ErrIndexNotReady)
		}
		return result.Response{}, fmt.Errorf("search %s: %w: %w", r.cfg.Layout.IndexName, domain.ErrSearchUnavailable, err)
	}

	products := make([]product.Product, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		p, err := decodeProduct(e)
		if err != nil {
			logger.FromContext(ctx).Warn("skipping undecodable product",
				zap.String("key", e.Key), zap.Error(err))
			continue
		}
		products = append(products, p)
	}

	return result.Response{
		Hits:    result.Hits{Total: sr.Total, Products: products},
		Buckets: r.aggregate(ctx, compiled, q.Aggregations),
	}, nil
}

func (r *Repo) aggregate(ctx context.Context, compiled string, specs []structured.AggregationSpec) map[string][]result.Bucket {
	buckets := make(map[string][]result.Bucket, len(specs))
	for _, spec := range specs {
		start := time.Now()
		rows, err := r.store.Aggregate(ctx, &db.AggregateQuery{
			IndexName: r.cfg.Layout.IndexName,
			Query:     compiled,
			GroupBy:   productindex.AggregationAttr(spec.Field),
			Max:       spec.Size,
		})
		observe("aggregate", start, err)
		if err != nil {
			logger.FromContext(ctx).Warn("aggregation failed",
				zap.String("aggregation", spec.Name), zap.Error(err))
			continue
		}

		list := make([]result.Bucket, 0, len(rows))
		for _, row := range rows {
			if row.Count <= 0 {
				continue
			}
			list = append(list, result.Bucket{Key: row.Value, DocCount: uint64(row.Count)})
		}
		buckets[spec.Name] = list
	}
	return buckets
}

// SpellCheck returns ranked alternatives for the misspelled terms of spec.Text.
// Terms are checked against the dictionary of product-name terms.
func (r *Repo) SpellCheck(ctx context.Context, spec structured.SpellCheckSpec) ([]result.TermSuggestion, error) {
	text := escapeText(spec.Text)
	if text == "" {
		return []result.TermSuggestion{}, nil
	}

	q := &db.SpellCheckQuery{
		IndexName: r.cfg.Layout.IndexName,
		Query:     text,
		Distance:  r.cfg.SpellDistance,
	}
	if r.cfg.SpellDict != "" {
		q.IncludeDicts = []string{r.cfg.SpellDict}
	}

	start := time.Now()
	terms, err := r.store.SpellCheck(ctx, q)
	observe("spellcheck", start, err)
	if err != nil {
		return nil, fmt.Errorf("spellcheck %s: %w", r.cfg.Layout.IndexName, err)
	}

	out := make([]result.TermSuggestion, 0, len(terms))
	for _, t := range terms {
		ts := result.TermSuggestion{Term: t.Term, Alternatives: make([]string, 0, len(t.Suggestions))}
		for _, s := range t.Suggestions {
			ts.Alternatives = append(ts.Alternatives, s.Value)
		}
		out = append(out, ts)
	}
	return out, nil
}

// Autocomplete returns up to limit completions for prefix, duplicates removed.
func (r *Repo) Autocomplete(ctx context.Context, prefix string, limit int) ([]string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return []string{}, nil
	}
	if limit <= 0 || limit > MaxSuggestions {
		limit = MaxSuggestions
	}

	start := time.Now()
	raw, err := r.store.SugGet(ctx, r.cfg.SuggestKey, prefix, limit, false)
	observe("suggest", start, err)
	if err != nil {
		return nil, fmt.Errorf("autocomplete %q: %w: %w", prefix, domain.ErrSearchUnavailable, err)
	}

	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		k := strings.ToLower(s)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	return out, nil
}

func decodeProduct(e db.SearchEntry) (product.Product, error) {
	raw, ok := e.Fields[documentField]
	if !ok {
		return product.Product{}, fmt.Errorf("document body missing")
	}
	// JSON.GET style paths may wrap the document in an array.
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "[") {
		var wrapped []product.Product
		if err := json.Unmarshal([]byte(raw), &wrapped); err != nil {
			return product.Product{}, fmt.Errorf("decode document: %w", err)
		}
		if len(wrapped) == 0 {
			return product.Product{}, fmt.Errorf("empty document")
		}
		return wrapped[0], nil
	}
	var p product.Product
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return product.Product{}, fmt.Errorf("decode document: %w", err)
	}
	return p, nil
}

func observe(op string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.EngineOpDuration.WithLabelValues(op, status).Observe(time.Since(start).Seconds())
}
