package chi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/qou/internal/domain/search/request"
	"github.com/kailas-cloud/qou/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/qou/internal/usecase/health"
	searchuc "github.com/kailas-cloud/qou/internal/usecase/search"
)

type mockSearch struct {
	searchFn       func(ctx context.Context, req *request.Request) result.Outcome
	understandFn   func(ctx context.Context, req *request.Request) searchuc.Understanding
	autocompleteFn func(ctx context.Context, prefix string) ([]string, error)
}

func (m *mockSearch) Search(ctx context.Context, req *request.Request) result.Outcome {
	if m.searchFn != nil {
		return m.searchFn(ctx, req)
	}
	return result.New(nil, nil, "")
}

func (m *mockSearch) Understand(ctx context.Context, req *request.Request) searchuc.Understanding {
	if m.understandFn != nil {
		return m.understandFn(ctx, req)
	}
	return searchuc.Understanding{}
}

func (m *mockSearch) Autocomplete(ctx context.Context, prefix string) ([]string, error) {
	if m.autocompleteFn != nil {
		return m.autocompleteFn(ctx, prefix)
	}
	return []string{}, nil
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(_ context.Context) healthuc.Report { return m.report }

func newTestRouter(search *mockSearch, health *mockHealth) http.Handler {
	if health == nil {
		health = &mockHealth{report: healthuc.Report{Status: healthuc.Healthy}}
	}
	r := chi.NewRouter()
	NewServer(search, health, zap.NewNop()).Routes(r)
	return r
}
