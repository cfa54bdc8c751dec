// Package nercache caches entity extraction results in a key-value store.
package nercache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/qou/internal/db"
	"github.com/kailas-cloud/qou/internal/domain"
)

// store is the consumer interface for the extraction cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedExtractor caches extraction results keyed by the query text.
// Cache failures are logged and never fail an extraction.
type CachedExtractor struct {
	inner      domain.EntityExtractor
	store      store
	keyPrefix  string
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner domain.EntityExtractor,
	s store,
	keyPrefix string,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedExtractor {
	return &CachedExtractor{
		inner:      inner,
		store:      s,
		keyPrefix:  keyPrefix + "ner_cache:",
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Extract returns a cached result or calls the inner extractor.
// Failed extractions are not cached.
func (c *CachedExtractor) Extract(ctx context.Context, text string) (domain.ExtractionResult, error) {
	key := c.cacheKey(text)

	if res, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		res.Cached = true
		return res, nil
	}

	c.incCache("miss")

	res, err := c.inner.Extract(ctx, text)
	if err != nil {
		return domain.ExtractionResult{}, fmt.Errorf("extract entities: %w", err)
	}

	c.putToCache(ctx, key, res)
	return res, nil
}

// HealthCheck delegates to the inner extractor when it supports health checks.
func (c *CachedExtractor) HealthCheck(ctx context.Context) error {
	if hc, ok := c.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}

func (c *CachedExtractor) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedExtractor) cacheKey(text string) string {
	h := sha256.Sum256([]byte(text))
	return c.keyPrefix + hex.EncodeToString(h[:])
}

func (c *CachedExtractor) getFromCache(ctx context.Context, key string) (domain.ExtractionResult, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached entities", zap.String("key", key), zap.Error(err))
		}
		return domain.ExtractionResult{}, false
	}
	if len(data) == 0 {
		return domain.ExtractionResult{}, false
	}

	var res domain.ExtractionResult
	if err := json.Unmarshal(data, &res); err != nil {
		c.logger.Warn("Failed to parse cached entities", zap.String("key", key), zap.Error(err))
		return domain.ExtractionResult{}, false
	}
	return res, true
}

func (c *CachedExtractor) putToCache(ctx context.Context, key string, res domain.ExtractionResult) {
	data, err := json.Marshal(res)
	if err != nil {
		c.logger.Warn("Failed to encode entities for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache entities", zap.String("key", key), zap.Error(err))
	}
}
