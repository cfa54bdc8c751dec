package product

// Searchable field names. Dotted names address nested objects; the engine
// adapter maps them onto its own attribute names.
const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldSearchAid   = "search_aid"
	FieldBrand       = "brand"
	FieldCategories  = "categories"
	FieldOrganic     = "grocery_attributes.is_organic"
	FieldDietary     = "grocery_attributes.dietary"

	// PathAttributes is the nested path of Attribute objects.
	PathAttributes = "attributes"
	// FieldAttrName and FieldAttrValue are relative to PathAttributes.
	FieldAttrName  = "name"
	FieldAttrValue = "value"
)
