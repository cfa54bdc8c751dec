package query

import "strings"

// EntityType is an open label set. Recognizers may emit labels that are not
// declared here; consumers must treat unknown labels as valid.
type EntityType string

// Known entity labels.
const (
	EntityBrand            EntityType = "BRAND"
	EntityAisle            EntityType = "AISLE"
	EntityCategory         EntityType = "CATEGORY"
	EntityDepartment       EntityType = "DEPARTMENT"
	EntityDietaryAttribute EntityType = "DIETARY_ATTRIBUTE"
	EntityGroceryAttribute EntityType = "GROCERY_ATTRIBUTE"
	EntityColor            EntityType = "ATTRIBUTE_COLOR"
	EntityProductType      EntityType = "PRODUCT_TYPE"
)

// NoOffset marks an entity whose position in the query is unknown.
const NoOffset = -1

// Entity is a typed span of the normalized query.
type Entity struct {
	Value       string     `json:"value"`
	Type        EntityType `json:"type"`
	StartOffset int        `json:"start_offset"`
	EndOffset   int        `json:"end_offset"`
}

// NewEntity creates an entity with unknown offsets.
func NewEntity(value string, typ EntityType) Entity {
	return Entity{Value: value, Type: typ, StartOffset: NoOffset, EndOffset: NoOffset}
}

// IsEmpty reports whether the entity carries no usable value.
func (e Entity) IsEmpty() bool {
	return strings.TrimSpace(e.Value) == ""
}

// Words returns the lowercased whitespace-separated words of the value.
func (e Entity) Words() []string {
	return strings.Fields(strings.ToLower(e.Value))
}

// HasType reports whether any entity in the list carries the given label.
func HasType(entities []Entity, typ EntityType) bool {
	for _, e := range entities {
		if e.Type == typ {
			return true
		}
	}
	return false
}

// WordSet returns the set of lowercased words of all non-empty entity values.
func WordSet(entities []Entity) map[string]struct{} {
	set := make(map[string]struct{})
	for _, e := range entities {
		for _, w := range e.Words() {
			set[w] = struct{}{}
		}
	}
	return set
}
