package catalog

import (
	"github.com/kailas-cloud/qou/internal/domain/product"
	"github.com/kailas-cloud/qou/internal/usecase/normalize"
)

// productDoc is the stored form of a product. BrandKey is the brand in the
// same normalized form entity values take, so brand filters match it exactly.
type productDoc struct {
	product.Product
	BrandKey string `json:"brand_key,omitempty"`
}

func toDoc(p *product.Product) productDoc {
	return productDoc{Product: *p, BrandKey: BrandKey(p.Brand)}
}

// BrandKey returns the filterable form of a brand name: "Annie's" is
// indexed as "annies".
func BrandKey(brand string) string {
	return normalize.Normalize(brand)
}
