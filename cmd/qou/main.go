package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/qou/internal/config"
	dbRedis "github.com/kailas-cloud/qou/internal/db/redis"
	"github.com/kailas-cloud/qou/internal/domain"
	"github.com/kailas-cloud/qou/internal/domain/query"
	logpkg "github.com/kailas-cloud/qou/internal/logger"
	"github.com/kailas-cloud/qou/internal/metrics"
	catalogrepo "github.com/kailas-cloud/qou/internal/repository/catalog"
	"github.com/kailas-cloud/qou/internal/repository/nercache"
	"github.com/kailas-cloud/qou/internal/repository/productindex"
	searchrepo "github.com/kailas-cloud/qou/internal/repository/search"
	chiTransport "github.com/kailas-cloud/qou/internal/transport/chi"
	nerTransport "github.com/kailas-cloud/qou/internal/transport/ner"
	openaiTransport "github.com/kailas-cloud/qou/internal/transport/openai"
	"github.com/kailas-cloud/qou/internal/usecase/entity"
	healthuc "github.com/kailas-cloud/qou/internal/usecase/health"
	"github.com/kailas-cloud/qou/internal/usecase/intent"
	"github.com/kailas-cloud/qou/internal/usecase/rewrite"
	searchuc "github.com/kailas-cloud/qou/internal/usecase/search"
	"github.com/kailas-cloud/qou/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting qou search API",
		zap.String("version", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("ner_provider", cfg.NER.Provider),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	metrics.RegisterNERMetrics()
	metrics.RegisterSearchMetrics()

	layout := productindex.Layout{IndexName: cfg.Search.IndexName, KeyPrefix: cfg.Search.KeyPrefix}

	// An empty index still serves (zero hits); seeding fills it later.
	created, err := catalogrepo.New(store, catalogrepo.Config{
		Layout:     layout,
		SpellDict:  cfg.Search.SpellDict,
		SuggestKey: cfg.Search.SuggestKey,
	}).EnsureIndex(ctx)
	if err != nil {
		logger.Fatal("Failed to ensure product index", zap.Error(err))
	}
	if created {
		logger.Warn("Created empty product index, run qou-seed to load the catalog",
			zap.String("index", cfg.Search.IndexName))
	}

	extractor := buildExtractor(&cfg, store, logger)

	lexicon := buildLexicon(cfg.Understanding.Lexicon)
	resolver := entity.NewResolver(extractor, lexicon, entity.WithTimeout(cfg.NERTimeout()))
	classifier := intent.NewRuleClassifier(cfg.Understanding.InformationalPrefixes)

	rewriterOpts := []rewrite.Option{rewrite.WithAggregationSize(cfg.Search.AggregationSize)}
	if len(cfg.Understanding.Stopwords) > 0 {
		rewriterOpts = append(rewriterOpts, rewrite.WithStopwords(cfg.Understanding.Stopwords))
	}
	rewriter := rewrite.New(rewriterOpts...)

	repo := searchrepo.New(store, searchrepo.Config{
		Layout:        layout,
		SpellDict:     cfg.Search.SpellDict,
		SpellDistance: cfg.Search.SpellDistance,
		SuggestKey:    cfg.Search.SuggestKey,
	})
	searchSvc := searchuc.New(repo, repo, resolver, classifier, rewriter,
		searchuc.WithEngineTimeout(cfg.SearchTimeout()),
	)

	var nerChecker healthuc.NERChecker
	if hc, ok := extractor.(domain.HealthChecker); ok {
		nerChecker = hc
	}
	healthSvc := healthuc.New(store, nerChecker)

	server := chiTransport.NewServer(searchSvc, healthSvc, logger,
		chiTransport.WithLimits(cfg.Search.DefaultLimit, cfg.Search.MaxLimit),
	)

	r := chi.NewRouter()
	r.Use(chiTransport.JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiTransport.WideEvent(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildExtractor assembles the recognizer chain: provider -> cache.
// Returns nil for provider "none" so the resolver uses the lexicon only.
func buildExtractor(cfg *config.Config, store *dbRedis.Store, logger *zap.Logger) domain.EntityExtractor {
	var base domain.EntityExtractor
	switch cfg.NER.Provider {
	case config.NERProviderHTTP:
		base = nerTransport.NewClient(nerTransport.Config{
			URL:       cfg.NER.URL,
			Timeout:   cfg.NERTimeout(),
			RateLimit: cfg.NER.RateLimit,
			RateBurst: cfg.NER.RateBurst,
		})
	case config.NERProviderOpenAI:
		base = openaiTransport.NewExtractor(&openaiTransport.Config{
			APIKey:  cfg.NER.OpenAI.APIKey,
			BaseURL: cfg.NER.OpenAI.BaseURL,
			Model:   cfg.NER.OpenAI.Model,
			Logger:  logger,
		})
	default:
		return nil
	}

	if ttl := cfg.NERCacheTTL(); ttl > 0 {
		return nercache.New(base, store, cfg.Search.KeyPrefix, ttl, metrics.NERCacheTotal, logger)
	}
	return base
}

// buildLexicon overlays configured terms on the built-in fallback lexicon.
func buildLexicon(configured map[string][]string) *entity.Lexicon {
	if len(configured) == 0 {
		return entity.DefaultLexicon()
	}
	base := entity.DefaultLexicon()
	entries := make(map[query.EntityType][]string, len(configured)+len(base.Types()))
	for _, typ := range base.Types() {
		entries[typ] = base.Terms(typ)
	}
	for typ, terms := range configured {
		entries[query.EntityType(typ)] = terms
	}
	return entity.NewLexicon(entries)
}
