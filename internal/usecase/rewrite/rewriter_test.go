package rewrite

import (
	"reflect"
	"testing"

	"github.com/kailas-cloud/qou/internal/domain/product"
	"github.com/kailas-cloud/qou/internal/domain/query"
	"github.com/kailas-cloud/qou/internal/domain/search/clause"
	"github.com/kailas-cloud/qou/internal/domain/search/structured"
)

func understood(normalized string, entities ...query.Entity) query.Understood {
	p := query.NewPreprocessed(normalized, normalized, query.UserContext{})
	return query.NewUnderstood(p, query.NewIntent(query.IntentFindProduct), entities)
}

func mustMultiMatch(t *testing.T, c clause.Clause) clause.MultiMatch {
	t.Helper()
	mm, ok := c.(clause.MultiMatch)
	if !ok {
		t.Fatalf("expected MultiMatch, got %T", c)
	}
	return mm
}

func TestBuild_OrganicWithoutProductTypeUsesFullText(t *testing.T) {
	q := New().Build(understood("organic avocados",
		query.NewEntity("organic", query.EntityGroceryAttribute),
	))

	if len(q.Filter) != 1 {
		t.Fatalf("expected exactly 1 filter, got %+v", q.Filter)
	}
	want := clause.TermFilter{Field: product.FieldOrganic, Value: "true"}
	if q.Filter[0] != want {
		t.Errorf("filter = %+v, want %+v", q.Filter[0], want)
	}
	if len(q.Must) != 1 {
		t.Fatalf("expected 1 must clause, got %+v", q.Must)
	}
	mm := mustMultiMatch(t, q.Must[0])
	if mm.Text != "organic avocados" {
		t.Errorf("must text = %q, want full normalized text", mm.Text)
	}
	if mm.Fuzzy {
		t.Error("full-text fallback must not be fuzzy")
	}
}

func TestBuild_OrganicWithProductTypeUsesResidual(t *testing.T) {
	q := New().Build(understood("organic avocados",
		query.NewEntity("organic", query.EntityGroceryAttribute),
		query.NewEntity("avocado", query.EntityProductType),
	))

	if len(q.Filter) != 1 || q.Filter[0].(clause.TermFilter).Field != product.FieldOrganic {
		t.Fatalf("expected one organic filter, got %+v", q.Filter)
	}
	if len(q.Must) != 2 {
		t.Fatalf("expected product type + residual must clauses, got %+v", q.Must)
	}
	pt := mustMultiMatch(t, q.Must[0])
	if pt.Text != "avocado" || len(pt.Fields) != 1 || pt.Fields[0].Name != product.FieldName {
		t.Errorf("unexpected product type clause: %+v", pt)
	}
	res := mustMultiMatch(t, q.Must[1])
	if res.Text != "avocados" {
		t.Errorf("residual text = %q, want avocados", res.Text)
	}
	if !res.Fuzzy {
		t.Error("residual clause must be fuzzy")
	}
	wantFields := []clause.WeightedField{
		clause.Field(product.FieldName),
		clause.Field(product.FieldDescription),
		clause.Boosted(product.FieldSearchAid, 0.5),
	}
	if !reflect.DeepEqual(res.Fields, wantFields) {
		t.Errorf("residual fields = %+v, want %+v", res.Fields, wantFields)
	}
}

func TestBuild_ProductTypeWithoutResidual(t *testing.T) {
	q := New().Build(understood("show me avocados",
		query.NewEntity("avocados", query.EntityProductType),
	))

	if len(q.Must) != 1 {
		t.Fatalf("expected only the product type clause, got %+v", q.Must)
	}
}

func TestBuild_BrandFilterExcludedFromResidual(t *testing.T) {
	r := New()
	entities := []query.Entity{query.NewEntity("philadelphia", query.EntityBrand)}
	q := r.Build(understood("show me products from philadelphia", entities...))

	want := clause.TermFilter{Field: product.FieldBrand, Value: "philadelphia", CaseInsensitive: true}
	if len(q.Filter) != 1 || q.Filter[0] != want {
		t.Fatalf("filters = %+v, want [%+v]", q.Filter, want)
	}
	if got := r.Residual("show me products from philadelphia", entities); got != "" {
		t.Errorf("residual = %q, want empty", got)
	}
}

func TestBuild_MultiWordEntityWordsLeaveResidual(t *testing.T) {
	r := New()
	entities := []query.Entity{
		query.NewEntity("newmans own", query.EntityBrand),
		query.NewEntity("salad dressing", query.EntityProductType),
	}
	q := r.Build(understood("find newmans own salad dressing lemon", entities...))

	if len(q.Must) != 2 {
		t.Fatalf("expected 2 must clauses, got %+v", q.Must)
	}
	if got := mustMultiMatch(t, q.Must[1]).Text; got != "lemon" {
		t.Errorf("residual = %q, want lemon", got)
	}
}

func TestBuild_AisleAndCategoryFilterCategories(t *testing.T) {
	q := New().Build(understood("yogurt aisle dairy",
		query.NewEntity("yogurt", query.EntityAisle),
		query.NewEntity("dairy", query.EntityCategory),
	))

	if len(q.Filter) != 2 {
		t.Fatalf("expected 2 filters, got %+v", q.Filter)
	}
	for i, want := range []string{"yogurt", "dairy"} {
		tf := q.Filter[i].(clause.TermFilter)
		if tf.Field != product.FieldCategories || tf.Value != want || !tf.CaseInsensitive {
			t.Errorf("filter[%d] = %+v, want categories=%s", i, tf, want)
		}
	}
}

func TestBuild_DuplicateEntitiesProduceDuplicateFilters(t *testing.T) {
	q := New().Build(understood("fage fage yogurt",
		query.NewEntity("fage", query.EntityBrand),
		query.NewEntity("fage", query.EntityBrand),
	))

	if len(q.Filter) != 2 {
		t.Fatalf("expected duplicated filters, got %+v", q.Filter)
	}
	if q.Filter[0] != q.Filter[1] {
		t.Errorf("duplicate filters differ: %+v vs %+v", q.Filter[0], q.Filter[1])
	}
}

func TestBuild_UnknownAndDepartmentTypesIgnoredButRecognized(t *testing.T) {
	r := New()
	entities := []query.Entity{
		query.NewEntity("weekend", query.EntityType("TIME_OF_WEEK")),
		query.NewEntity("produce", query.EntityDepartment),
		query.NewEntity("kale", query.EntityProductType),
	}
	q := r.Build(understood("weekend produce kale chips", entities...))

	if len(q.Filter) != 0 || len(q.Should) != 0 {
		t.Errorf("unknown types must not produce clauses, got filter=%+v should=%+v", q.Filter, q.Should)
	}
	if len(q.Must) != 2 {
		t.Fatalf("expected product type + residual, got %+v", q.Must)
	}
	if got := mustMultiMatch(t, q.Must[1]).Text; got != "chips" {
		t.Errorf("residual = %q, want chips", got)
	}
}

func TestBuild_EmptyEntityValueIgnored(t *testing.T) {
	q := New().Build(understood("granola",
		query.NewEntity("  ", query.EntityBrand),
	))

	if len(q.Filter) != 0 {
		t.Errorf("empty entity must not produce a filter, got %+v", q.Filter)
	}
}

func TestBuild_NonOrganicDietaryBoosts(t *testing.T) {
	q := New().Build(understood("gluten free bread",
		query.NewEntity("gluten free", query.EntityDietaryAttribute),
	))

	if len(q.Filter) != 0 {
		t.Errorf("non-organic dietary must not filter, got %+v", q.Filter)
	}
	want := clause.TermFilter{Field: product.FieldDietary, Value: "gluten free", CaseInsensitive: true}
	if len(q.Should) != 1 || q.Should[0] != want {
		t.Errorf("should = %+v, want [%+v]", q.Should, want)
	}
}

func TestBuild_ColorBecomesNestedBoost(t *testing.T) {
	q := New().Build(understood("red apples",
		query.NewEntity("red", query.EntityColor),
	))

	if len(q.Should) != 1 {
		t.Fatalf("expected 1 should clause, got %+v", q.Should)
	}
	nm, ok := q.Should[0].(clause.NestedMatch)
	if !ok {
		t.Fatalf("expected NestedMatch, got %T", q.Should[0])
	}
	if nm.Path != product.PathAttributes || len(nm.Clauses) != 2 {
		t.Fatalf("unexpected nested clause: %+v", nm)
	}
	if v := nm.Clauses[1].(clause.TermFilter); v.Field != product.FieldAttrValue || v.Value != "red" {
		t.Errorf("unexpected value clause: %+v", v)
	}
}

func TestBuild_EmptyQueryFallsBackToFullText(t *testing.T) {
	q := New().Build(understood(""))

	if len(q.Must) != 1 {
		t.Fatalf("expected the fallback clause, got %+v", q.Must)
	}
	if mustMultiMatch(t, q.Must[0]).Text != "" {
		t.Error("fallback text must be the empty normalized query")
	}
	if q.SpellCheck.Text != "" {
		t.Errorf("spellcheck text = %q, want empty", q.SpellCheck.Text)
	}
}

func TestBuild_AggregationsAndSpellCheck(t *testing.T) {
	q := New(WithAggregationSize(5)).Build(understood("greek yoghurt"))

	want := []structured.AggregationSpec{
		{Name: structured.AggByCategory, Field: product.FieldCategories, Size: 5},
		{Name: structured.AggByBrand, Field: product.FieldBrand, Size: 5},
	}
	if !reflect.DeepEqual(q.Aggregations, want) {
		t.Errorf("aggregations = %+v, want %+v", q.Aggregations, want)
	}
	if q.SpellCheck.Field != product.FieldName || q.SpellCheck.Text != "greek yoghurt" {
		t.Errorf("unexpected spellcheck: %+v", q.SpellCheck)
	}
}

func TestBuild_Idempotent(t *testing.T) {
	r := New()
	u := understood("i want organic red nike shoes",
		query.NewEntity("nike", query.EntityBrand),
		query.NewEntity("organic", query.EntityDietaryAttribute),
		query.NewEntity("red", query.EntityColor),
		query.NewEntity("shoes", query.EntityProductType),
	)

	first := r.Build(u)
	second := r.Build(u)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Build is not deterministic:\n%+v\n%+v", first, second)
	}
}

func TestBuild_ClauseOrderFollowsEntityOrder(t *testing.T) {
	q := New().Build(understood("dairy fage",
		query.NewEntity("fage", query.EntityBrand),
		query.NewEntity("dairy", query.EntityAisle),
	))

	if q.Filter[0].(clause.TermFilter).Field != product.FieldBrand {
		t.Errorf("first filter must be the brand filter, got %+v", q.Filter[0])
	}
	if q.Filter[1].(clause.TermFilter).Field != product.FieldCategories {
		t.Errorf("second filter must be the category filter, got %+v", q.Filter[1])
	}
}

func TestResidual_CustomStopwords(t *testing.T) {
	r := New(WithStopwords([]string{"Want", "buy"}))

	got := r.Residual("i want to buy some nike shoes", []query.Entity{query.NewEntity("nike", query.EntityBrand)})
	if got != "i to some shoes" {
		t.Errorf("residual = %q, want %q", got, "i to some shoes")
	}
}
