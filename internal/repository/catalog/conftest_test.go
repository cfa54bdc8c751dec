package catalog

import (
	"context"
	"testing"

	"github.com/kailas-cloud/qou/internal/db"
	"github.com/kailas-cloud/qou/internal/repository/productindex"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	jsonSetMultiFn func(ctx context.Context, items []db.JSONSetItem) error
	createIndexFn  func(ctx context.Context, def *db.IndexDefinition) error
	dropIndexFn    func(ctx context.Context, name string) error
	indexExistsFn  func(ctx context.Context, name string) (bool, error)
	dictAddFn      func(ctx context.Context, dict string, terms ...string) (int, error)
	sugAddFn       func(ctx context.Context, key string, items []db.SuggestionItem) error
}

func (m *mockStore) JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error {
	if m.jsonSetMultiFn != nil {
		return m.jsonSetMultiFn(ctx, items)
	}
	return nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) DropIndex(ctx context.Context, name string) error {
	if m.dropIndexFn != nil {
		return m.dropIndexFn(ctx, name)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return false, nil
}

func (m *mockStore) DictAdd(ctx context.Context, dict string, terms ...string) (int, error) {
	if m.dictAddFn != nil {
		return m.dictAddFn(ctx, dict, terms...)
	}
	return len(terms), nil
}

func (m *mockStore) SugAdd(ctx context.Context, key string, items []db.SuggestionItem) error {
	if m.sugAddFn != nil {
		return m.sugAddFn(ctx, key, items)
	}
	return nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	repo := New(ms, Config{
		Layout:     productindex.Layout{IndexName: "qou:products:idx", KeyPrefix: "qou:"},
		SpellDict:  "qou:dict:names",
		SuggestKey: "qou:suggest:names",
	})
	return repo, ms
}
