package qou

import (
	"context"

	"github.com/kailas-cloud/qou/internal/domain/batch"
	"github.com/kailas-cloud/qou/internal/domain/product"
	"github.com/kailas-cloud/qou/internal/domain/search/request"
	"github.com/kailas-cloud/qou/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/qou/internal/usecase/health"
	searchuc "github.com/kailas-cloud/qou/internal/usecase/search"
)

// --- searchUseCase mock ---

type mockSearchUC struct {
	searchFn       func(ctx context.Context, req *request.Request) result.Outcome
	understandFn   func(ctx context.Context, req *request.Request) searchuc.Understanding
	autocompleteFn func(ctx context.Context, prefix string) ([]string, error)
}

func (m *mockSearchUC) Search(ctx context.Context, req *request.Request) result.Outcome {
	return m.searchFn(ctx, req)
}

func (m *mockSearchUC) Understand(ctx context.Context, req *request.Request) searchuc.Understanding {
	return m.understandFn(ctx, req)
}

func (m *mockSearchUC) Autocomplete(ctx context.Context, prefix string) ([]string, error) {
	return m.autocompleteFn(ctx, prefix)
}

// --- catalogUseCase mock ---

type mockCatalogUC struct {
	bootstrapFn func(ctx context.Context, recreate bool) error
	loadFn      func(ctx context.Context, products []product.Product) ([]batch.Result, error)
}

func (m *mockCatalogUC) Bootstrap(ctx context.Context, recreate bool) error {
	return m.bootstrapFn(ctx, recreate)
}

func (m *mockCatalogUC) Load(ctx context.Context, products []product.Product) ([]batch.Result, error) {
	return m.loadFn(ctx, products)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(_ context.Context) healthuc.Report { return m.report }

// --- store mock ---

type mockStore struct {
	pingErr error
	closed  bool
}

func (m *mockStore) Ping(_ context.Context) error { return m.pingErr }
func (m *mockStore) Close()                       { m.closed = true }

// --- Extractor mock ---

type mockExtractor struct {
	fn func(ctx context.Context, text string) ([]RecognizedEntity, error)
}

func (m *mockExtractor) Extract(ctx context.Context, text string) ([]RecognizedEntity, error) {
	return m.fn(ctx, text)
}
