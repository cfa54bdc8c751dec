// Package product defines the catalog document stored in the search index.
package product

import (
	"fmt"
	"strings"
)

// Attribute is a free-form name/value pair, e.g. color=red.
type Attribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// GroceryAttributes holds grocery-specific flags.
type GroceryAttributes struct {
	Dietary     []string `json:"dietary,omitempty"`
	IsOrganic   bool     `json:"is_organic"`
	StorageType string   `json:"storage_type,omitempty"`
}

// Product is a single catalog document.
type Product struct {
	ProductID         string             `json:"product_id"`
	Name              string             `json:"name"`
	Description       string             `json:"description"`
	Brand             string             `json:"brand"`
	Categories        []string           `json:"categories"`
	Attributes        []Attribute        `json:"attributes,omitempty"`
	GroceryAttributes *GroceryAttributes `json:"grocery_attributes,omitempty"`
	SearchAid         string             `json:"search_aid"`
}

// Validate checks the fields required for indexing.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.ProductID) == "" {
		return fmt.Errorf("product_id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("name is required for product %q", p.ProductID)
	}
	return nil
}

// IsOrganic reports whether the product carries the organic flag.
func (p *Product) IsOrganic() bool {
	return p.GroceryAttributes != nil && p.GroceryAttributes.IsOrganic
}
