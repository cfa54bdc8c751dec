package rewrite

import (
	"slices"

	"github.com/kailas-cloud/qou/internal/domain/product"
	"github.com/kailas-cloud/qou/internal/domain/query"
	"github.com/kailas-cloud/qou/internal/domain/search/clause"
)

// clauses accumulates clauses in generation order.
type clauses struct {
	must   []clause.Clause
	filter []clause.Clause
	should []clause.Clause
}

type handler func(e query.Entity, b *clauses)

// defaultHandlers is the closed dispatch table. Types missing from it,
// DEPARTMENT included, produce no clause.
func defaultHandlers() map[query.EntityType]handler {
	return map[query.EntityType]handler{
		query.EntityBrand:            brandFilter,
		query.EntityAisle:            categoryFilter,
		query.EntityCategory:         categoryFilter,
		query.EntityDietaryAttribute: dietaryClause,
		query.EntityGroceryAttribute: dietaryClause,
		query.EntityProductType:      productTypeMatch,
		query.EntityColor:            colorBoost,
	}
}

func brandFilter(e query.Entity, b *clauses) {
	b.filter = append(b.filter, clause.TermFilter{
		Field:           product.FieldBrand,
		Value:           e.Value,
		CaseInsensitive: true,
	})
}

func categoryFilter(e query.Entity, b *clauses) {
	b.filter = append(b.filter, clause.TermFilter{
		Field:           product.FieldCategories,
		Value:           e.Value,
		CaseInsensitive: true,
	})
}

// dietaryClause filters on the organic flag when the value says organic and
// only boosts on the dietary tags otherwise.
func dietaryClause(e query.Entity, b *clauses) {
	if slices.Contains(e.Words(), organicValue) {
		b.filter = append(b.filter, clause.TermFilter{
			Field: product.FieldOrganic,
			Value: organicFlagValue,
		})
		return
	}
	b.should = append(b.should, clause.TermFilter{
		Field:           product.FieldDietary,
		Value:           e.Value,
		CaseInsensitive: true,
	})
}

func productTypeMatch(e query.Entity, b *clauses) {
	b.must = append(b.must, clause.MultiMatch{
		Fields: []clause.WeightedField{clause.Field(product.FieldName)},
		Text:   e.Value,
	})
}

func colorBoost(e query.Entity, b *clauses) {
	b.should = append(b.should, clause.NestedMatch{
		Path: product.PathAttributes,
		Clauses: []clause.Clause{
			clause.TermFilter{Field: product.FieldAttrName, Value: "color"},
			clause.TermFilter{Field: product.FieldAttrValue, Value: e.Value, CaseInsensitive: true},
		},
	})
}
