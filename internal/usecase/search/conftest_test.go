package search

import (
	"context"
	"testing"

	"github.com/kailas-cloud/qou/internal/domain/query"
	"github.com/kailas-cloud/qou/internal/domain/search/request"
	"github.com/kailas-cloud/qou/internal/domain/search/result"
	"github.com/kailas-cloud/qou/internal/domain/search/structured"
	"github.com/kailas-cloud/qou/internal/usecase/entity"
	"github.com/kailas-cloud/qou/internal/usecase/intent"
	"github.com/kailas-cloud/qou/internal/usecase/rewrite"
)

// --- Mocks ---

type mockEngine struct {
	searchFn     func(ctx context.Context, q structured.Query, limit, offset int) (result.Response, error)
	spellCheckFn func(ctx context.Context, spec structured.SpellCheckSpec) ([]result.TermSuggestion, error)

	searchCalls     int
	spellCheckCalls int
	lastQuery       structured.Query
}

func (m *mockEngine) Search(ctx context.Context, q structured.Query, limit, offset int) (result.Response, error) {
	m.searchCalls++
	m.lastQuery = q
	if m.searchFn != nil {
		return m.searchFn(ctx, q, limit, offset)
	}
	return result.Response{}, nil
}

func (m *mockEngine) SpellCheck(ctx context.Context, spec structured.SpellCheckSpec) ([]result.TermSuggestion, error) {
	m.spellCheckCalls++
	if m.spellCheckFn != nil {
		return m.spellCheckFn(ctx, spec)
	}
	return nil, nil
}

func (m *mockEngine) Explain(_ structured.Query) string {
	return "compiled"
}

type mockSuggester struct {
	fn func(ctx context.Context, prefix string, limit int) ([]string, error)
}

func (m *mockSuggester) Autocomplete(ctx context.Context, prefix string, limit int) ([]string, error) {
	if m.fn != nil {
		return m.fn(ctx, prefix, limit)
	}
	return []string{}, nil
}

// newTestService wires the real understanding stages around a mock engine.
// The resolver runs lexicon-only.
func newTestService(t *testing.T) (*Service, *mockEngine, *mockSuggester) {
	t.Helper()
	engine := &mockEngine{}
	sugg := &mockSuggester{}
	svc := New(
		engine,
		sugg,
		entity.NewResolver(nil, entity.DefaultLexicon()),
		intent.NewRuleClassifier(nil),
		rewrite.New(),
	)
	return svc, engine, sugg
}

func mustRequest(t *testing.T, raw string, limit, offset int) *request.Request {
	t.Helper()
	req, err := request.New(raw, query.UserContext{UserID: "u-1"}, limit, offset)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return &req
}
