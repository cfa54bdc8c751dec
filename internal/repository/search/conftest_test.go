package search

import (
	"context"
	"testing"

	"github.com/kailas-cloud/qou/internal/db"
	"github.com/kailas-cloud/qou/internal/repository/productindex"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchFn     func(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error)
	aggregateFn  func(ctx context.Context, q *db.AggregateQuery) ([]db.GroupCount, error)
	spellCheckFn func(ctx context.Context, q *db.SpellCheckQuery) ([]db.SpellCheckTerm, error)
	sugGetFn     func(ctx context.Context, key, prefix string, limit int, fuzzy bool) ([]string, error)
}

func (m *mockStore) Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) Aggregate(ctx context.Context, q *db.AggregateQuery) ([]db.GroupCount, error) {
	if m.aggregateFn != nil {
		return m.aggregateFn(ctx, q)
	}
	return nil, nil
}

func (m *mockStore) SpellCheck(ctx context.Context, q *db.SpellCheckQuery) ([]db.SpellCheckTerm, error) {
	if m.spellCheckFn != nil {
		return m.spellCheckFn(ctx, q)
	}
	return nil, nil
}

func (m *mockStore) SugGet(ctx context.Context, key, prefix string, limit int, fuzzy bool) ([]string, error) {
	if m.sugGetFn != nil {
		return m.sugGetFn(ctx, key, prefix, limit, fuzzy)
	}
	return nil, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	repo := New(ms, Config{
		Layout:        productindex.Layout{IndexName: "qou:products:idx", KeyPrefix: "qou:"},
		SpellDict:     "qou:dict:names",
		SpellDistance: 2,
		SuggestKey:    "qou:suggest:names",
	})
	return repo, ms
}
