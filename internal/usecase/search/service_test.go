package search

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/qou/internal/domain"
	"github.com/kailas-cloud/qou/internal/domain/product"
	"github.com/kailas-cloud/qou/internal/domain/query"
	"github.com/kailas-cloud/qou/internal/domain/search/clause"
	"github.com/kailas-cloud/qou/internal/domain/search/result"
	"github.com/kailas-cloud/qou/internal/domain/search/structured"
)

func nikeResponse() result.Response {
	return result.Response{
		Hits: result.Hits{
			Total: 2,
			Products: []product.Product{
				{ProductID: "p1", Name: "Air Zoom Pegasus", Brand: "Nike", Categories: []string{"Running Shoes"}},
				{ProductID: "p2", Name: "Revolution 6", Brand: "Nike", Categories: []string{"Running Shoes"}},
			},
		},
		Buckets: map[string][]result.Bucket{
			structured.AggByCategory: {{Key: "Running Shoes", DocCount: 2}},
			structured.AggByBrand:    {{Key: "Nike", DocCount: 2}},
		},
	}
}

// --- Search ---

func TestSearch_NikeEndToEnd(t *testing.T) {
	svc, engine, _ := newTestService(t)
	engine.searchFn = func(_ context.Context, _ structured.Query, _, _ int) (result.Response, error) {
		return nikeResponse(), nil
	}

	out := svc.Search(context.Background(), mustRequest(t, "Nike Running Shoes", 0, 0))

	q := engine.lastQuery
	if len(q.Filter) != 1 {
		t.Fatalf("expected 1 filter, got %+v", q.Filter)
	}
	tf, ok := q.Filter[0].(clause.TermFilter)
	if !ok || tf.Field != product.FieldBrand || tf.Value != "nike" {
		t.Errorf("unexpected brand filter: %+v", q.Filter[0])
	}
	if len(q.Must) != 1 {
		t.Fatalf("expected 1 must clause, got %+v", q.Must)
	}
	mm, ok := q.Must[0].(clause.MultiMatch)
	if !ok || mm.Text != "running shoes" || !mm.Fuzzy {
		t.Errorf("unexpected residual clause: %+v", q.Must[0])
	}

	if out.IsDegraded() {
		t.Fatal("unexpected degraded outcome")
	}
	if out.Total() != 2 || len(out.Products()) != 2 {
		t.Errorf("unexpected hits: total=%d products=%d", out.Total(), len(out.Products()))
	}
	facets := out.Facets()
	if len(facets) != 2 || facets[0].Name != "Category" || facets[1].Name != "Brand" {
		t.Errorf("unexpected facets: %+v", facets)
	}
	if _, ok := out.DidYouMean(); ok {
		t.Error("no suggestion expected when there are hits")
	}
	if engine.spellCheckCalls != 0 {
		t.Errorf("spellcheck must not run with hits, ran %d times", engine.spellCheckCalls)
	}
}

func TestSearch_PassesPaging(t *testing.T) {
	svc, engine, _ := newTestService(t)
	engine.searchFn = func(_ context.Context, _ structured.Query, limit, offset int) (result.Response, error) {
		if limit != 5 || offset != 10 {
			t.Errorf("unexpected paging: limit=%d offset=%d", limit, offset)
		}
		return nikeResponse(), nil
	}
	svc.Search(context.Background(), mustRequest(t, "milk", 5, 10))
}

func TestSearch_EngineCallHasDeadline(t *testing.T) {
	svc, engine, _ := newTestService(t)
	engine.searchFn = func(ctx context.Context, _ structured.Query, _, _ int) (result.Response, error) {
		if _, ok := ctx.Deadline(); !ok {
			t.Error("engine call must carry a deadline")
		}
		return result.Response{}, nil
	}
	svc.Search(context.Background(), mustRequest(t, "milk", 0, 0))
}

func TestSearch_EngineFailureIsDegraded(t *testing.T) {
	svc, engine, _ := newTestService(t)
	engine.searchFn = func(_ context.Context, _ structured.Query, _, _ int) (result.Response, error) {
		return result.Response{}, domain.ErrIndexNotReady
	}

	out := svc.Search(context.Background(), mustRequest(t, "nike shoes", 0, 0))
	if !out.IsDegraded() {
		t.Fatal("expected degraded outcome")
	}
	if len(out.Products()) != 0 || len(out.Facets()) != 0 {
		t.Errorf("degraded outcome must be empty: %+v", out)
	}
	if _, ok := out.DidYouMean(); ok {
		t.Error("degraded outcome must carry no suggestion")
	}
	if engine.spellCheckCalls != 0 {
		t.Error("spellcheck must not run after engine failure")
	}
}

func TestSearch_ZeroHitsSuggests(t *testing.T) {
	svc, engine, _ := newTestService(t)
	engine.spellCheckFn = func(_ context.Context, spec structured.SpellCheckSpec) ([]result.TermSuggestion, error) {
		if spec.Text != "orgnic banan" {
			t.Errorf("unexpected spellcheck text: %q", spec.Text)
		}
		return []result.TermSuggestion{
			{Term: "orgnic", Alternatives: []string{"organic"}},
			{Term: "banan", Alternatives: []string{"banana", "bananas"}},
		}, nil
	}

	out := svc.Search(context.Background(), mustRequest(t, "Orgnic Banan", 0, 0))
	got, ok := out.DidYouMean()
	if !ok || got != "organic banana" {
		t.Errorf("expected suggestion 'organic banana', got %q (%v)", got, ok)
	}
	if len(out.Facets()) != 0 {
		t.Errorf("expected no facets, got %+v", out.Facets())
	}
}

func TestSearch_SuggestionKeepsEntityWords(t *testing.T) {
	svc, engine, _ := newTestService(t)
	engine.spellCheckFn = func(_ context.Context, _ structured.SpellCheckSpec) ([]result.TermSuggestion, error) {
		return []result.TermSuggestion{
			{Term: "nike", Alternatives: []string{"nice"}},
			{Term: "runing", Alternatives: []string{"running"}},
		}, nil
	}

	out := svc.Search(context.Background(), mustRequest(t, "nike runing", 0, 0))
	got, ok := out.DidYouMean()
	if !ok || got != "nike running" {
		t.Errorf("expected 'nike running', got %q (%v)", got, ok)
	}
}

func TestSearch_SpellcheckFailureIgnored(t *testing.T) {
	svc, engine, _ := newTestService(t)
	engine.spellCheckFn = func(_ context.Context, _ structured.SpellCheckSpec) ([]result.TermSuggestion, error) {
		return nil, errors.New("timeout")
	}

	out := svc.Search(context.Background(), mustRequest(t, "xyzzy", 0, 0))
	if out.IsDegraded() {
		t.Error("spellcheck failure must not degrade the search")
	}
	if _, ok := out.DidYouMean(); ok {
		t.Error("no suggestion expected")
	}
}

func TestSearch_BlankQueryFallsBack(t *testing.T) {
	svc, engine, _ := newTestService(t)

	out := svc.Search(context.Background(), mustRequest(t, "   ", 0, 0))
	if engine.searchCalls != 1 {
		t.Fatalf("engine should still be called, got %d calls", engine.searchCalls)
	}
	if len(engine.lastQuery.Must) != 1 {
		t.Fatalf("expected fallback clause, got %+v", engine.lastQuery.Must)
	}
	if engine.spellCheckCalls != 0 {
		t.Error("blank text must not be spellchecked")
	}
	if out.IsDegraded() {
		t.Error("unexpected degraded outcome")
	}
}

// --- Understand ---

func TestUnderstand_DoesNotCallEngine(t *testing.T) {
	svc, engine, _ := newTestService(t)

	u := svc.Understand(context.Background(), mustRequest(t, "How to cook Organic Quinoa", 0, 0))
	if engine.searchCalls != 0 {
		t.Error("understand must not execute the search")
	}
	if u.Normalized != "how to cook organic quinoa" {
		t.Errorf("unexpected normalized: %q", u.Normalized)
	}
	if u.Intent.Name != query.IntentInformational {
		t.Errorf("unexpected intent: %+v", u.Intent)
	}
	if !query.HasType(u.Entities, query.EntityDietaryAttribute) {
		t.Errorf("expected dietary entity, got %+v", u.Entities)
	}
	if u.EngineQuery != "compiled" {
		t.Errorf("unexpected engine query: %q", u.EngineQuery)
	}
	if len(u.Query.Aggregations) != 2 {
		t.Errorf("expected 2 aggregations, got %+v", u.Query.Aggregations)
	}
}

// --- Autocomplete ---

func TestAutocomplete_NormalizesPrefix(t *testing.T) {
	svc, _, sugg := newTestService(t)
	sugg.fn = func(_ context.Context, prefix string, limit int) ([]string, error) {
		if prefix != "creme" {
			t.Errorf("unexpected prefix: %q", prefix)
		}
		if limit != MaxSuggestions {
			t.Errorf("unexpected limit: %d", limit)
		}
		return []string{"Creme Fraiche"}, nil
	}

	got, err := svc.Autocomplete(context.Background(), "  Crème ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("unexpected suggestions: %v", got)
	}
}

func TestAutocomplete_BlankPrefix(t *testing.T) {
	svc, _, sugg := newTestService(t)
	sugg.fn = func(_ context.Context, _ string, _ int) ([]string, error) {
		t.Error("suggester must not be called")
		return nil, nil
	}

	got, err := svc.Autocomplete(context.Background(), " !! ")
	if err != nil || len(got) != 0 {
		t.Errorf("expected empty list, got %v, %v", got, err)
	}
}

func TestAutocomplete_Error(t *testing.T) {
	svc, _, sugg := newTestService(t)
	sentinel := errors.New("down")
	sugg.fn = func(_ context.Context, _ string, _ int) ([]string, error) {
		return nil, sentinel
	}

	if _, err := svc.Autocomplete(context.Background(), "mil"); !errors.Is(err, sentinel) {
		t.Errorf("expected wrapped error, got %v", err)
	}
}
