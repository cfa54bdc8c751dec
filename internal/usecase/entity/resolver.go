// Package entity resolves typed entities in a normalized query from an
// external recognizer plus a local fallback lexicon.
package entity

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/qou/internal/domain"
	"github.com/kailas-cloud/qou/internal/domain/query"
	"github.com/kailas-cloud/qou/internal/logger"
	"github.com/kailas-cloud/qou/internal/metrics"
	"github.com/kailas-cloud/qou/internal/usecase/normalize"
)

// DefaultTimeout bounds a single recognizer call.
const DefaultTimeout = 2 * time.Second

// Resolver turns recognizer output into entities and fills gaps from the lexicon.
// It never fails: a recognizer error degrades to lexicon-only resolution.
type Resolver struct {
	extractor domain.EntityExtractor
	lexicon   *Lexicon
	required  []query.EntityType
	timeout   time.Duration
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithTimeout overrides the recognizer call timeout.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithRequiredTypes overrides which types get a fallback pass.
// BRAND is always included.
func WithRequiredTypes(types ...query.EntityType) Option {
	return func(r *Resolver) {
		r.required = withBrand(types)
	}
}

// NewResolver creates a resolver. A nil extractor means lexicon-only resolution.
// By default every type the lexicon knows gets a fallback pass.
func NewResolver(extractor domain.EntityExtractor, lexicon *Lexicon, opts ...Option) *Resolver {
	if lexicon == nil {
		lexicon = DefaultLexicon()
	}
	r := &Resolver{
		extractor: extractor,
		lexicon:   lexicon,
		required:  withBrand(lexicon.Types()),
		timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns recognizer entities first, then lexicon entities for every
// required type the recognizer did not produce.
func (r *Resolver) Resolve(ctx context.Context, normalized string) []query.Entity {
	if normalized == "" {
		return []query.Entity{}
	}

	ext := r.extract(ctx, normalized)
	entities := make([]query.Entity, 0, len(ext.Entities()))
	for _, re := range ext.Entities() {
		entities = append(entities, toEntity(re))
	}

	trace := domain.ExtractionTraceFromContext(ctx)
	if ext.Failed() {
		trace.MarkFailed()
	}
	if ext.Cached() {
		trace.MarkCached()
	}

	for _, typ := range r.required {
		if query.HasType(entities, typ) {
			continue
		}
		found := r.lexicon.Match(normalized, typ)
		if len(found) == 0 {
			continue
		}
		metrics.FallbackEntitiesTotal.WithLabelValues(string(typ)).Add(float64(len(found)))
		trace.AddFallback(len(found))
		entities = append(entities, found...)
	}

	logger.FromContext(ctx).Debug("entities resolved",
		zap.String("query", normalized),
		zap.Any("entities", entities),
		zap.Bool("extraction_failed", ext.Failed()),
	)
	return entities
}

func (r *Resolver) extract(ctx context.Context, text string) Extraction {
	if r.extractor == nil {
		metrics.EntityResolutionsTotal.WithLabelValues("skipped").Inc()
		return Extraction{}
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.extractor.Extract(callCtx, text)
	if err != nil {
		metrics.EntityResolutionsTotal.WithLabelValues("failed").Inc()
		logger.FromContext(ctx).Warn("entity extraction failed, using fallback lexicon",
			zap.String("query", text),
			zap.Error(err),
		)
		return failed(err)
	}
	metrics.EntityResolutionsTotal.WithLabelValues("ok").Inc()
	return succeeded(res)
}

func toEntity(re domain.RecognizedEntity) query.Entity {
	e := query.NewEntity(normalize.Normalize(re.Text), query.EntityType(strings.ToUpper(strings.TrimSpace(re.Label))))
	if re.Start >= 0 && re.End > re.Start {
		e.StartOffset = re.Start
		e.EndOffset = re.End
	}
	return e
}

func withBrand(types []query.EntityType) []query.EntityType {
	out := []query.EntityType{query.EntityBrand}
	for _, t := range types {
		if t != query.EntityBrand {
			out = append(out, t)
		}
	}
	return out
}
