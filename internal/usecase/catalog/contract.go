package catalog

import (
	"context"

	"github.com/kailas-cloud/qou/internal/domain/product"
)

// Repository writes products into the search index.
type Repository interface {
	EnsureIndex(ctx context.Context) (created bool, err error)
	DropIndex(ctx context.Context) error
	Upsert(ctx context.Context, products []product.Product) error
}
