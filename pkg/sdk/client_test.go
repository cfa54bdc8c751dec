package qou

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/qou/internal/domain"
	"github.com/kailas-cloud/qou/internal/domain/batch"
	"github.com/kailas-cloud/qou/internal/domain/product"
	"github.com/kailas-cloud/qou/internal/domain/query"
	"github.com/kailas-cloud/qou/internal/domain/search/request"
	"github.com/kailas-cloud/qou/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/qou/internal/usecase/health"
	searchuc "github.com/kailas-cloud/qou/internal/usecase/search"
)

func TestNew_NoAddress(t *testing.T) {
	_, err := New(context.Background())
	if err == nil {
		t.Fatal("expected error when no address provided")
	}
}

func TestClientOptions(t *testing.T) {
	cfg := &clientConfig{}
	reg := prometheus.NewRegistry()
	ext := &mockExtractor{}
	for _, o := range []Option{
		WithRedis("localhost:6379", "pw"),
		WithKeyPrefix("shop:"),
		WithSpellcheckDistance(3),
		WithAggregationSize(5),
		WithExtractor(ext),
		WithLexicon(map[string][]string{"BRAND": {"Fage"}}),
		WithStopwords([]string{"the"}),
		WithBatchSize(50),
		WithWorkers(2),
		WithLogger(slog.Default()),
		WithPrometheus(reg),
	} {
		o.apply(cfg)
	}

	if len(cfg.addrs) != 1 || cfg.password != "pw" || cfg.keyPrefix != "shop:" {
		t.Errorf("connection options not applied: %+v", cfg)
	}
	if cfg.spellDistance != 3 || cfg.aggSize != 5 || cfg.batchSize != 50 || cfg.workers != 2 {
		t.Errorf("tuning options not applied: %+v", cfg)
	}
	if cfg.extractor != ext || cfg.lexicon["BRAND"][0] != "Fage" || cfg.stopwords[0] != "the" {
		t.Errorf("understanding options not applied: %+v", cfg)
	}
	if cfg.logger == nil || cfg.metricsReg != reg {
		t.Error("observability options not applied")
	}
}

func TestSearch(t *testing.T) {
	var got request.Request
	c := &Client{searchSvc: &mockSearchUC{
		searchFn: func(_ context.Context, req *request.Request) result.Outcome {
			got = *req
			return result.New([]product.Product{{ProductID: "p1"}}, nil, "").WithTotal(7)
		},
	}}

	res, err := c.Search(context.Background(), Query{Text: "Nike shoes", UserID: "u1", Limit: 5, Offset: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.RawQuery() != "Nike shoes" || got.User().UserID != "u1" || got.Limit() != 5 || got.Offset() != 5 {
		t.Errorf("unexpected request: %+v", got)
	}
	if len(res.Products) != 1 || res.Total != 7 || res.Degraded {
		t.Errorf("unexpected results: %+v", res)
	}
	if _, ok := res.DidYouMean(); ok {
		t.Error("no suggestion expected")
	}
}

func TestSearch_DegradedIsNotAnError(t *testing.T) {
	c := &Client{searchSvc: &mockSearchUC{
		searchFn: func(context.Context, *request.Request) result.Outcome { return result.Degraded() },
	}}
	res, err := c.Search(context.Background(), Query{Text: "milk"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Degraded || len(res.Products) != 0 {
		t.Errorf("unexpected results: %+v", res)
	}
}

func TestSearch_InvalidQuery(t *testing.T) {
	c := &Client{searchSvc: &mockSearchUC{}}
	_, err := c.Search(context.Background(), Query{Text: "milk", Offset: -1})
	if !errors.Is(err, ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery, got %v", err)
	}
}

func TestUnderstand(t *testing.T) {
	c := &Client{searchSvc: &mockSearchUC{
		understandFn: func(_ context.Context, _ *request.Request) searchuc.Understanding {
			return searchuc.Understanding{
				Normalized:  "fage yogurt",
				Intent:      query.NewIntent(query.IntentFindProduct),
				Entities:    []query.Entity{query.NewEntity("fage", query.EntityBrand)},
				EngineQuery: "@brand:{fage}",
			}
		},
	}}
	u, err := c.Understand(context.Background(), Query{Text: "Fage yogurt"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Normalized != "fage yogurt" || len(u.Entities) != 1 || u.EngineQuery != "@brand:{fage}" {
		t.Errorf("unexpected understanding: %+v", u)
	}
}

func TestSuggest_Error(t *testing.T) {
	c := &Client{searchSvc: &mockSearchUC{
		autocompleteFn: func(context.Context, string) ([]string, error) {
			return nil, domain.ErrIndexNotReady
		},
	}}
	if _, err := c.Suggest(context.Background(), "mi"); !errors.Is(err, ErrIndexNotReady) {
		t.Errorf("expected ErrIndexNotReady, got %v", err)
	}
}

func TestIndex(t *testing.T) {
	c := &Client{catalogSvc: &mockCatalogUC{
		loadFn: func(_ context.Context, products []product.Product) ([]batch.Result, error) {
			return []batch.Result{
				batch.NewOK(products[0].ProductID),
				batch.NewError(products[1].ProductID, domain.ErrInvalidProduct),
			}, nil
		},
	}}

	summary, err := c.Index(context.Background(), []Product{{ProductID: "a", Name: "Milk"}, {ProductID: "b"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Indexed != 1 || !errors.Is(summary.Failed["b"], ErrInvalidProduct) {
		t.Errorf("unexpected summary: %+v", summary)
	}
}

func TestEnsureIndex(t *testing.T) {
	var recreate bool
	c := &Client{catalogSvc: &mockCatalogUC{
		bootstrapFn: func(_ context.Context, r bool) error {
			recreate = r
			return nil
		},
	}}
	if err := c.EnsureIndex(context.Background(), true); err != nil || !recreate {
		t.Errorf("unexpected: err=%v recreate=%v", err, recreate)
	}
}

func TestHealth(t *testing.T) {
	c := &Client{healthSvc: &mockHealthUC{report: healthuc.Report{
		Status: healthuc.Degraded,
		Checks: map[string]healthuc.CheckResult{"database": healthuc.CheckOK, "ner": healthuc.CheckError},
	}}}
	h := c.Health(context.Background())
	if h.Status != "degraded" || h.Checks["ner"] != "error" {
		t.Errorf("unexpected health: %+v", h)
	}
}

func TestPingAndClose(t *testing.T) {
	s := &mockStore{pingErr: errors.New("down")}
	c := &Client{store: s}
	if err := c.Ping(context.Background()); err == nil {
		t.Error("expected ping error")
	}
	c.Close()
	if !s.closed {
		t.Error("expected store to be closed")
	}
}

func TestExtractorAdapter(t *testing.T) {
	a := &extractorAdapter{inner: &mockExtractor{
		fn: func(_ context.Context, text string) ([]RecognizedEntity, error) {
			return []RecognizedEntity{{Text: "fage", Label: "BRAND"}}, nil
		},
	}}
	res, err := a.Extract(context.Background(), "fage yogurt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Entities) != 1 || res.Entities[0].Start != -1 {
		t.Errorf("unexpected entities: %+v", res.Entities)
	}

	failing := &extractorAdapter{inner: &mockExtractor{
		fn: func(context.Context, string) ([]RecognizedEntity, error) { return nil, errors.New("boom") },
	}}
	if _, err := failing.Extract(context.Background(), "x"); !errors.Is(err, ErrExtractionFailed) {
		t.Errorf("expected ErrExtractionFailed, got %v", err)
	}
}

func TestObserver_RecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c := &Client{
		obs: obs,
		searchSvc: &mockSearchUC{
			autocompleteFn: func(context.Context, string) ([]string, error) { return []string{"milk"}, nil },
		},
	}
	if _, err := c.Suggest(context.Background(), "mi"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v := testutil.ToFloat64(obs.metrics.operations.WithLabelValues("suggest", "ok")); v != 1 {
		t.Errorf("expected 1 suggest op, got %v", v)
	}

	// Registering twice reuses the existing collectors.
	if _, err := newObserver(nil, reg); err != nil {
		t.Errorf("expected reuse, got %v", err)
	}
}

func TestLexiconOverrides(t *testing.T) {
	lex := lexicon(map[string][]string{"BRAND": {"Fage"}, "COLOR": {"red"}})
	if got := lex.Terms(query.EntityBrand); len(got) != 1 || got[0] != "fage" {
		t.Errorf("brand terms: %v", got)
	}
	if got := lex.Terms(query.EntityDietaryAttribute); len(got) == 0 {
		t.Error("dietary defaults must be kept")
	}
}
