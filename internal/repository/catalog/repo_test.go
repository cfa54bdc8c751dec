package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"testing"

	"github.com/kailas-cloud/qou/internal/db"
	"github.com/kailas-cloud/qou/internal/domain/product"
)

// --- EnsureIndex ---

func TestEnsureIndex_Creates(t *testing.T) {
	repo, ms := newTestRepo(t)
	var created *db.IndexDefinition
	ms.createIndexFn = func(_ context.Context, def *db.IndexDefinition) error {
		created = def
		return nil
	}

	ok, err := repo.EnsureIndex(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected created=true")
	}
	if created == nil || created.Name != "qou:products:idx" {
		t.Fatalf("unexpected definition: %+v", created)
	}
	if created.StorageType != db.StorageJSON {
		t.Errorf("expected JSON storage, got %s", created.StorageType)
	}
	if len(created.Prefixes) != 1 || created.Prefixes[0] != "qou:product:" {
		t.Errorf("unexpected prefixes: %v", created.Prefixes)
	}
}

func TestEnsureIndex_Exists(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.indexExistsFn = func(_ context.Context, _ string) (bool, error) { return true, nil }
	ms.createIndexFn = func(_ context.Context, _ *db.IndexDefinition) error {
		t.Error("create must not be called")
		return nil
	}

	ok, err := repo.EnsureIndex(context.Background())
	if err != nil || ok {
		t.Errorf("expected (false, nil), got (%v, %v)", ok, err)
	}
}

func TestEnsureIndex_RaceIsNotAnError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.createIndexFn = func(_ context.Context, _ *db.IndexDefinition) error {
		return &db.Error{Op: db.OpCreateIndex, Err: db.ErrIndexExists}
	}

	ok, err := repo.EnsureIndex(context.Background())
	if err != nil || ok {
		t.Errorf("expected (false, nil), got (%v, %v)", ok, err)
	}
}

func TestEnsureIndex_ExistsError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.indexExistsFn = func(_ context.Context, _ string) (bool, error) {
		return false, context.DeadlineExceeded
	}

	if _, err := repo.EnsureIndex(context.Background()); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected wrapped error, got %v", err)
	}
}

func TestDropIndex_MissingIsNoop(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.dropIndexFn = func(_ context.Context, _ string) error {
		return &db.Error{Op: db.OpDropIndex, Err: db.ErrIndexNotFound}
	}

	if err := repo.DropIndex(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// --- Upsert ---

func TestUpsert_WritesDocumentsAndDictionaries(t *testing.T) {
	repo, ms := newTestRepo(t)
	products := []product.Product{
		{ProductID: "instacart-1", Name: "Organic Bananas", Brand: "Private Label", Categories: []string{"fresh fruits"}},
		{ProductID: "instacart-2", Name: "Philadelphia Cream Cheese 8 oz", Brand: "Philadelphia"},
	}

	var items []db.JSONSetItem
	ms.jsonSetMultiFn = func(_ context.Context, got []db.JSONSetItem) error {
		items = got
		return nil
	}
	var sugKey string
	var sugs []db.SuggestionItem
	ms.sugAddFn = func(_ context.Context, key string, got []db.SuggestionItem) error {
		sugKey, sugs = key, got
		return nil
	}
	var dict string
	var terms []string
	ms.dictAddFn = func(_ context.Context, d string, got ...string) (int, error) {
		dict, terms = d, got
		return len(got), nil
	}

	if err := repo.Upsert(context.Background(), products); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(items) != 2 || items[0].Key != "qou:product:instacart-1" || items[0].Path != "$" {
		t.Fatalf("unexpected items: %+v", items)
	}
	var decoded product.Product
	if err := json.Unmarshal(items[1].Data, &decoded); err != nil {
		t.Fatalf("stored document is not JSON: %v", err)
	}
	if decoded.Brand != "Philadelphia" {
		t.Errorf("unexpected stored brand: %s", decoded.Brand)
	}
	var doc productDoc
	if err := json.Unmarshal(items[0].Data, &doc); err != nil {
		t.Fatalf("stored document is not JSON: %v", err)
	}
	if doc.BrandKey != "private label" {
		t.Errorf("unexpected brand key: %q", doc.BrandKey)
	}

	if sugKey != "qou:suggest:names" || len(sugs) != 2 || sugs[0].Value != "Organic Bananas" {
		t.Errorf("unexpected suggestions: %s %+v", sugKey, sugs)
	}

	if dict != "qou:dict:names" {
		t.Errorf("unexpected dict: %s", dict)
	}
	slices.Sort(terms)
	want := []string{"bananas", "cheese", "cream", "organic", "philadelphia"}
	if !slices.Equal(terms, want) {
		t.Errorf("terms = %v, want %v", terms, want)
	}
}

func TestUpsert_Empty(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.jsonSetMultiFn = func(_ context.Context, _ []db.JSONSetItem) error {
		t.Error("store must not be called")
		return nil
	}
	if err := repo.Upsert(context.Background(), nil); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestUpsert_WriteErrorStopsDictionaryUpdates(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.jsonSetMultiFn = func(_ context.Context, _ []db.JSONSetItem) error {
		return errors.New("pipeline failed")
	}
	ms.sugAddFn = func(_ context.Context, _ string, _ []db.SuggestionItem) error {
		t.Error("suggestions must not be added after a failed write")
		return nil
	}

	err := repo.Upsert(context.Background(), []product.Product{{ProductID: "p1", Name: "Milk"}})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestNameTerms(t *testing.T) {
	got := NameTerms("Ben & Jerry's Chocolate-Chip 16oz Ice")
	want := []string{"ben", "jerry", "chocolate", "chip", "ice"}
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
