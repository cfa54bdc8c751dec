// Package productindex owns the layout of the product JSON index: key names,
// the FT schema and the mapping from product field names to index attributes.
package productindex

import (
	"strings"

	"github.com/kailas-cloud/qou/internal/db"
	"github.com/kailas-cloud/qou/internal/domain/product"
)

// Index attribute names that differ from the product field names.
const (
	AttrProductID       = "product_id"
	AttrPrimaryCategory = "primary_category"
	AttrOrganic         = "is_organic"
	AttrDietary         = "dietary"
	// AttrBrandName indexes the brand as written, for facets. The brand
	// field itself is indexed from the normalized brand_key.
	AttrBrandName       = "brand_name"
)

// Field weights in the index schema.
const (
	NameWeight      = 2.0
	SearchAidWeight = 0.5
)

// Layout names the keys and index of one product catalog.
type Layout struct {
	IndexName string
	KeyPrefix string
}

// ProductKey returns the JSON document key of a product.
func (l Layout) ProductKey(productID string) string {
	return l.KeyPrefix + "product:" + productID
}

// ProductPrefix returns the key prefix the index covers.
func (l Layout) ProductPrefix() string {
	return l.KeyPrefix + "product:"
}

// Definition returns the FT.CREATE definition of the product index.
func (l Layout) Definition() (*db.IndexDefinition, error) {
	return db.NewIndex(l.IndexName).
		OnJSON().
		Prefix(l.ProductPrefix()).
		Tag("$.product_id", AttrProductID).
		WeightedText("$.name", product.FieldName, NameWeight).
		Text("$.description", product.FieldDescription).
		WeightedText("$.search_aid", product.FieldSearchAid, SearchAidWeight).
		Tag("$.brand_key", product.FieldBrand).
		Tag("$.brand", AttrBrandName).
		Tag("$.categories[*]", product.FieldCategories).
		Tag("$.categories[0]", AttrPrimaryCategory).
		Tag("$.grocery_attributes.is_organic", AttrOrganic).
		Tag("$.grocery_attributes.dietary[*]", AttrDietary).
		Tag("$.attributes[*].name", Attr(product.PathAttributes+"."+product.FieldAttrName)).
		Tag("$.attributes[*].value", Attr(product.PathAttributes+"."+product.FieldAttrValue)).
		Build()
}

var attrOverrides = map[string]string{
	product.FieldOrganic: AttrOrganic,
	product.FieldDietary: AttrDietary,
}

// Attr maps a product field name, possibly dotted, to its index attribute.
func Attr(field string) string {
	if a, ok := attrOverrides[field]; ok {
		return a
	}
	return strings.ReplaceAll(field, ".", "_")
}

// AggregationAttr maps a product field to the attribute used for grouping.
// Products with several categories are grouped by their first one; brands
// are grouped by their display name.
func AggregationAttr(field string) string {
	switch field {
	case product.FieldCategories:
		return AttrPrimaryCategory
	case product.FieldBrand:
		return AttrBrandName
	}
	return Attr(field)
}
