package qou

import (
	"context"
	"errors"
	"fmt"
	"time"

	dbRedis "github.com/kailas-cloud/qou/internal/db/redis"
	"github.com/kailas-cloud/qou/internal/domain"
	"github.com/kailas-cloud/qou/internal/domain/batch"
	"github.com/kailas-cloud/qou/internal/domain/product"
	"github.com/kailas-cloud/qou/internal/domain/query"
	"github.com/kailas-cloud/qou/internal/domain/search/request"
	"github.com/kailas-cloud/qou/internal/domain/search/result"
	catalogrepo "github.com/kailas-cloud/qou/internal/repository/catalog"
	"github.com/kailas-cloud/qou/internal/repository/productindex"
	searchrepo "github.com/kailas-cloud/qou/internal/repository/search"
	catalogUC "github.com/kailas-cloud/qou/internal/usecase/catalog"
	"github.com/kailas-cloud/qou/internal/usecase/entity"
	healthuc "github.com/kailas-cloud/qou/internal/usecase/health"
	"github.com/kailas-cloud/qou/internal/usecase/intent"
	"github.com/kailas-cloud/qou/internal/usecase/rewrite"
	searchuc "github.com/kailas-cloud/qou/internal/usecase/search"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultKeyPrefix        = "qou:"
	defaultSpellDistance    = 2
)

// Internal interfaces, replaced in tests.
type searchUseCase interface {
	Search(ctx context.Context, req *request.Request) result.Outcome
	Understand(ctx context.Context, req *request.Request) searchuc.Understanding
	Autocomplete(ctx context.Context, prefix string) ([]string, error)
}

type catalogUseCase interface {
	Bootstrap(ctx context.Context, recreate bool) error
	Load(ctx context.Context, products []product.Product) ([]batch.Result, error)
}

type store interface {
	Ping(ctx context.Context) error
	Close()
}

// Client is the qou SDK entry point.
type Client struct {
	store      store
	searchSvc  searchUseCase
	catalogSvc catalogUseCase
	healthSvc  healthUseCase
	obs        *observer
}

// New creates a Client and connects to Redis.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		keyPrefix:     defaultKeyPrefix,
		spellDistance: defaultSpellDistance,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("qou: database address required (use WithRedis)")
	}

	s, err := dbRedis.NewStore(dbRedis.Config{Addrs: cfg.addrs, Password: cfg.password})
	if err != nil {
		return nil, fmt.Errorf("qou: create redis store: %w", err)
	}

	if err := s.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		s.Close()
		return nil, fmt.Errorf("qou: database not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		s.Close()
		return nil, err
	}
	return wireClient(s, cfg, obs), nil
}

func wireClient(s *dbRedis.Store, cfg *clientConfig, obs *observer) *Client {
	layout := productindex.Layout{
		IndexName: cfg.keyPrefix + "products:idx",
		KeyPrefix: cfg.keyPrefix,
	}
	suggestKey := cfg.keyPrefix + "suggest:names"
	spellDict := cfg.keyPrefix + "dict:names"

	var extractor domain.EntityExtractor
	var nerChecker healthuc.NERChecker
	if cfg.extractor != nil {
		extractor = &extractorAdapter{inner: cfg.extractor}
		if hc, ok := cfg.extractor.(healthuc.NERChecker); ok {
			nerChecker = hc
		}
	}

	rewriterOpts := []rewrite.Option{rewrite.WithAggregationSize(cfg.aggSize)}
	if len(cfg.stopwords) > 0 {
		rewriterOpts = append(rewriterOpts, rewrite.WithStopwords(cfg.stopwords))
	}

	repo := searchrepo.New(s, searchrepo.Config{
		Layout:        layout,
		SpellDict:     spellDict,
		SpellDistance: cfg.spellDistance,
		SuggestKey:    suggestKey,
	})
	searchSvc := searchuc.New(repo, repo,
		entity.NewResolver(extractor, lexicon(cfg.lexicon)),
		intent.NewRuleClassifier(nil),
		rewrite.New(rewriterOpts...),
		searchuc.WithEngineTimeout(cfg.engineTimeout),
	)

	catalogSvc := catalogUC.New(
		catalogrepo.New(s, catalogrepo.Config{Layout: layout, SpellDict: spellDict, SuggestKey: suggestKey}),
		catalogUC.WithBatchSize(cfg.batchSize),
		catalogUC.WithWorkers(cfg.workers),
	)

	return &Client{
		store:      s,
		searchSvc:  searchSvc,
		catalogSvc: catalogSvc,
		healthSvc:  healthuc.New(s, nerChecker),
		obs:        obs,
	}
}

func lexicon(overrides map[string][]string) *entity.Lexicon {
	base := entity.DefaultLexicon()
	if len(overrides) == 0 {
		return base
	}
	entries := make(map[query.EntityType][]string)
	for _, typ := range base.Types() {
		entries[typ] = base.Terms(typ)
	}
	for typ, terms := range overrides {
		entries[query.EntityType(typ)] = terms
	}
	return entity.NewLexicon(entries)
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Search runs the full pipeline. An engine failure is not an error: it
// yields empty Results with Degraded set.
func (c *Client) Search(ctx context.Context, q Query) (res *Results, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	req, err := newRequest(q)
	if err != nil {
		return nil, err
	}
	out := c.searchSvc.Search(ctx, &req)
	suggestion, _ := out.DidYouMean()
	return &Results{
		Products:   out.Products(),
		Facets:     out.Facets(),
		Total:      out.Total(),
		Suggestion: suggestion,
		Degraded:   out.IsDegraded(),
	}, nil
}

// Understand shows how a query would be interpreted without searching.
func (c *Client) Understand(ctx context.Context, q Query) (u *Understanding, err error) {
	start := time.Now()
	defer func() { c.obs.observe("understand", start, err) }()

	req, err := newRequest(q)
	if err != nil {
		return nil, err
	}
	got := c.searchSvc.Understand(ctx, &req)
	return &Understanding{
		Normalized:  got.Normalized,
		Intent:      got.Intent,
		Entities:    got.Entities,
		Query:       got.Query,
		EngineQuery: got.EngineQuery,
	}, nil
}

// Suggest returns up to 10 product names completing prefix.
func (c *Client) Suggest(ctx context.Context, prefix string) (out []string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("suggest", start, err) }()

	out, err = c.searchSvc.Autocomplete(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("suggest: %w", err)
	}
	return out, nil
}

// EnsureIndex creates the product index if missing; recreate drops it first.
func (c *Client) EnsureIndex(ctx context.Context, recreate bool) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ensure_index", start, err) }()

	if err = c.catalogSvc.Bootstrap(ctx, recreate); err != nil {
		return fmt.Errorf("ensure index: %w", err)
	}
	return nil
}

// Index upserts products by product_id. Per-product failures are reported
// in the summary; the error is reserved for failures of the whole call.
func (c *Client) Index(ctx context.Context, products []Product) (summary IndexSummary, err error) {
	start := time.Now()
	defer func() { c.obs.observe("index", start, err) }()

	results, err := c.catalogSvc.Load(ctx, products)
	if err != nil {
		return IndexSummary{}, fmt.Errorf("index: %w", err)
	}
	summary = IndexSummary{Failed: map[string]error{}}
	for _, r := range results {
		if r.Status() == batch.StatusOK {
			summary.Indexed++
			continue
		}
		summary.Failed[r.ID()] = r.Err()
	}
	return summary, nil
}

func newRequest(q Query) (request.Request, error) {
	req, err := request.New(q.Text, query.UserContext{UserID: q.UserID, Segment: q.Segment}, q.Limit, q.Offset)
	if err != nil {
		return request.Request{}, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}
	return req, nil
}
