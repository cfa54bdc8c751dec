// Package catalog loads product catalogs into the search index.
package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/qou/internal/domain/batch"
	"github.com/kailas-cloud/qou/internal/domain/product"
	"github.com/kailas-cloud/qou/internal/logger"
	"github.com/kailas-cloud/qou/internal/metrics"
)

// Load defaults.
const (
	DefaultBatchSize = 500
	DefaultWorkers   = 4
)

// Service loads products with per-product outcome reporting.
type Service struct {
	repo      Repository
	batchSize int
	workers   int
}

// Option configures a Service.
type Option func(*Service)

// WithBatchSize sets how many products go into one pipelined write.
func WithBatchSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithWorkers sets how many batches are written concurrently.
func WithWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

// New creates a catalog service.
func New(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, batchSize: DefaultBatchSize, workers: DefaultWorkers}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bootstrap makes sure the product index exists. With recreate the index is
// dropped first so its schema is rebuilt over the stored documents.
func (s *Service) Bootstrap(ctx context.Context, recreate bool) error {
	if recreate {
		if err := s.repo.DropIndex(ctx); err != nil {
			return fmt.Errorf("drop index: %w", err)
		}
	}
	created, err := s.repo.EnsureIndex(ctx)
	if err != nil {
		return fmt.Errorf("ensure index: %w", err)
	}
	if created {
		logger.FromContext(ctx).Info("product index created")
	}
	return nil
}

// Load validates and writes products in concurrent batches. Results are
// positional: results[i] belongs to products[i]. Loading the same products
// twice leaves the index unchanged.
func (s *Service) Load(ctx context.Context, products []product.Product) ([]batch.Result, error) {
	results := make([]batch.Result, len(products))

	valid := make([]int, 0, len(products))
	for i := range products {
		if err := products[i].Validate(); err != nil {
			results[i] = batch.NewError(products[i].ProductID, err)
			continue
		}
		valid = append(valid, i)
	}

	pool, err := ants.NewPool(s.workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for start := 0; start < len(valid); start += s.batchSize {
		idx := valid[start:min(start+s.batchSize, len(valid))]

		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			s.writeBatch(ctx, products, idx, results)
		})
		if submitErr != nil {
			wg.Done()
			for _, i := range idx {
				results[i] = batch.NewError(products[i].ProductID, fmt.Errorf("submit batch: %w", submitErr))
			}
		}
	}
	wg.Wait()

	sum := batch.Summarize(results)
	metrics.CatalogProductsTotal.WithLabelValues("ok").Add(float64(sum.OK))
	metrics.CatalogProductsTotal.WithLabelValues("error").Add(float64(sum.Failed))
	logger.FromContext(ctx).Info("catalog loaded",
		zap.Int("products", len(products)),
		zap.Int("ok", sum.OK),
		zap.Int("failed", sum.Failed),
	)
	return results, nil
}

// writeBatch writes the products at idx. Each index is owned by exactly one
// batch, so results can be written without locking.
func (s *Service) writeBatch(ctx context.Context, products []product.Product, idx []int, results []batch.Result) {
	chunk := make([]product.Product, len(idx))
	for j, i := range idx {
		chunk[j] = products[i]
	}

	if err := s.repo.Upsert(ctx, chunk); err != nil {
		logger.FromContext(ctx).Warn("batch write failed", zap.Int("size", len(chunk)), zap.Error(err))
		for _, i := range idx {
			results[i] = batch.NewError(products[i].ProductID, fmt.Errorf("upsert: %w", err))
		}
		return
	}
	for _, i := range idx {
		results[i] = batch.NewOK(products[i].ProductID)
	}
}
