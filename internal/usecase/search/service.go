// Package search runs the query-understanding pipeline: normalize, resolve
// entities, classify intent, rewrite, execute and reconcile.
package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/qou/internal/domain/query"
	"github.com/kailas-cloud/qou/internal/domain/search/request"
	"github.com/kailas-cloud/qou/internal/domain/search/result"
	"github.com/kailas-cloud/qou/internal/domain/search/structured"
	"github.com/kailas-cloud/qou/internal/logger"
	"github.com/kailas-cloud/qou/internal/metrics"
	"github.com/kailas-cloud/qou/internal/usecase/normalize"
	"github.com/kailas-cloud/qou/internal/usecase/reconcile"
)

// DefaultEngineTimeout bounds a single engine call.
const DefaultEngineTimeout = 3 * time.Second

// MaxSuggestions caps autocomplete results.
const MaxSuggestions = 10

// Service handles product search. Stateless; safe for concurrent use.
type Service struct {
	engine     Engine
	suggester  Suggester
	resolver   EntityResolver
	classifier IntentClassifier
	builder    QueryBuilder
	timeout    time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithEngineTimeout overrides the per-call engine timeout.
func WithEngineTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New creates a search service.
func New(
	engine Engine,
	suggester Suggester,
	resolver EntityResolver,
	classifier IntentClassifier,
	builder QueryBuilder,
	opts ...Option,
) *Service {
	s := &Service{
		engine:     engine,
		suggester:  suggester,
		resolver:   resolver,
		classifier: classifier,
		builder:    builder,
		timeout:    DefaultEngineTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Understanding is the pipeline state just before engine execution.
type Understanding struct {
	Normalized  string
	Intent      query.Intent
	Entities    []query.Entity
	Query       structured.Query
	EngineQuery string
}

// Search runs the full pipeline. Engine failures yield a degraded, empty
// outcome rather than an error.
func (s *Service) Search(ctx context.Context, req *request.Request) result.Outcome {
	u := s.understand(ctx, req)
	log := logger.FromContext(ctx)

	resp, err := s.execute(ctx, u.Query, req.Limit(), req.Offset())
	if err != nil {
		log.Error("search engine failed",
			zap.String("query", u.Normalized),
			zap.Error(err),
		)
		metrics.SearchOutcomesTotal.WithLabelValues("degraded").Inc()
		return result.Degraded()
	}

	facets := reconcile.ParseFacets(resp.Buckets)

	var didYouMean string
	if resp.Hits.Total == 0 {
		metrics.SearchOutcomesTotal.WithLabelValues("zero").Inc()
		didYouMean = s.suggest(ctx, u)
	} else {
		metrics.SearchOutcomesTotal.WithLabelValues("hits").Inc()
	}

	log.Debug("search completed",
		zap.String("query", u.Normalized),
		zap.Int("total", resp.Hits.Total),
		zap.Int("returned", len(resp.Hits.Products)),
		zap.String("did_you_mean", didYouMean),
	)

	return result.New(resp.Hits.Products, facets, didYouMean).WithTotal(resp.Hits.Total)
}

// Understand runs every stage up to, but not including, engine execution.
func (s *Service) Understand(ctx context.Context, req *request.Request) Understanding {
	return s.understand(ctx, req)
}

// Autocomplete returns up to MaxSuggestions completions for a prefix.
func (s *Service) Autocomplete(ctx context.Context, prefix string) ([]string, error) {
	prefix = normalize.Normalize(prefix)
	if prefix == "" {
		return []string{}, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := s.suggester.Autocomplete(callCtx, prefix, MaxSuggestions)
	if err != nil {
		return nil, fmt.Errorf("autocomplete: %w", err)
	}
	return out, nil
}

func (s *Service) understand(ctx context.Context, req *request.Request) Understanding {
	pre := normalize.Preprocess(req)
	normalized := pre.Normalized()

	entities := s.resolver.Resolve(ctx, normalized)
	intent := s.classifier.Classify(normalized)
	metrics.IntentsTotal.WithLabelValues(intent.Name).Inc()

	sq := s.builder.Build(query.NewUnderstood(pre, intent, entities))
	compiled := s.engine.Explain(sq)

	logger.FromContext(ctx).Debug("query understood",
		zap.String("raw", pre.Raw()),
		zap.String("normalized", normalized),
		zap.String("intent", intent.Name),
		zap.Int("entities", len(entities)),
		zap.String("engine_query", compiled),
	)

	return Understanding{
		Normalized:  normalized,
		Intent:      intent,
		Entities:    entities,
		Query:       sq,
		EngineQuery: compiled,
	}
}

func (s *Service) execute(ctx context.Context, q structured.Query, limit, offset int) (result.Response, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.engine.Search(callCtx, q, limit, offset)
	if err != nil {
		return result.Response{}, fmt.Errorf("execute search: %w", err)
	}
	return resp, nil
}

// suggest asks the engine for term corrections. A failure only loses the
// suggestion.
func (s *Service) suggest(ctx context.Context, u Understanding) string {
	if u.Query.SpellCheck.Text == "" {
		return ""
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	terms, err := s.engine.SpellCheck(callCtx, u.Query.SpellCheck)
	if err != nil {
		logger.FromContext(ctx).Warn("spellcheck failed", zap.Error(err))
		return ""
	}

	suggestion, ok := reconcile.BuildSuggestion(u.Normalized, terms, u.Entities)
	if !ok {
		return ""
	}
	metrics.DidYouMeanTotal.Inc()
	return suggestion
}
