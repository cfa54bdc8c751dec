// Package catalog writes products into the search index and keeps the
// autocomplete and spellcheck dictionaries in step with it.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/kailas-cloud/qou/internal/db"
	"github.com/kailas-cloud/qou/internal/domain/product"
	"github.com/kailas-cloud/qou/internal/repository/productindex"
)

const minDictTermLen = 3

// store is the consumer interface for catalog writes (ISP).
type store interface {
	JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
	DictAdd(ctx context.Context, dict string, terms ...string) (int, error)
	SugAdd(ctx context.Context, key string, items []db.SuggestionItem) error
}

// Config names the index structures the repository writes.
type Config struct {
	Layout     productindex.Layout
	SpellDict  string
	SuggestKey string
}

// Repo implements usecase/catalog.Repository.
type Repo struct {
	store store
	cfg   Config
}

// New creates a catalog repository.
func New(s store, cfg Config) *Repo {
	return &Repo{store: s, cfg: cfg}
}

// EnsureIndex creates the product index unless it exists. Returns true if created.
func (r *Repo) EnsureIndex(ctx context.Context) (bool, error) {
	exists, err := r.store.IndexExists(ctx, r.cfg.Layout.IndexName)
	if err != nil {
		return false, fmt.Errorf("check index %s: %w", r.cfg.Layout.IndexName, err)
	}
	if exists {
		return false, nil
	}

	def, err := r.cfg.Layout.Definition()
	if err != nil {
		return false, fmt.Errorf("build index definition: %w", err)
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		// Lost a race with a concurrent bootstrap.
		if errors.Is(err, db.ErrIndexExists) {
			return false, nil
		}
		return false, fmt.Errorf("create index %s: %w", r.cfg.Layout.IndexName, err)
	}
	return true, nil
}

// DropIndex removes the product index. Documents are kept.
func (r *Repo) DropIndex(ctx context.Context) error {
	if err := r.store.DropIndex(ctx, r.cfg.Layout.IndexName); err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return nil
		}
		return fmt.Errorf("drop index %s: %w", r.cfg.Layout.IndexName, err)
	}
	return nil
}

// Upsert writes products keyed by product id. Writing the same product twice
// leaves the index unchanged.
func (r *Repo) Upsert(ctx context.Context, products []product.Product) error {
	if len(products) == 0 {
		return nil
	}

	items := make([]db.JSONSetItem, 0, len(products))
	suggestions := make([]db.SuggestionItem, 0, len(products))
	terms := make(map[string]struct{})
	for i := range products {
		p := &products[i]
		data, err := json.Marshal(toDoc(p))
		if err != nil {
			return fmt.Errorf("marshal product %s: %w", p.ProductID, err)
		}
		items = append(items, db.JSONSetItem{
			Key:  r.cfg.Layout.ProductKey(p.ProductID),
			Path: "$",
			Data: data,
		})
		suggestions = append(suggestions, db.SuggestionItem{Value: p.Name, Score: 1})
		for _, t := range NameTerms(p.Name) {
			terms[t] = struct{}{}
		}
	}

	if err := r.store.JSONSetMulti(ctx, items); err != nil {
		return fmt.Errorf("write %d products: %w", len(items), err)
	}
	if r.cfg.SuggestKey != "" {
		if err := r.store.SugAdd(ctx, r.cfg.SuggestKey, suggestions); err != nil {
			return fmt.Errorf("add suggestions: %w", err)
		}
	}
	if r.cfg.SpellDict != "" && len(terms) > 0 {
		list := make([]string, 0, len(terms))
		for t := range terms {
			list = append(list, t)
		}
		if _, err := r.store.DictAdd(ctx, r.cfg.SpellDict, list...); err != nil {
			return fmt.Errorf("add dictionary terms: %w", err)
		}
	}
	return nil
}

// NameTerms splits a product name into lowercase dictionary terms.
// Short tokens and tokens containing digits are skipped.
func NameTerms(name string) []string {
	words := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make([]string, 0, len(words))
	for _, w := range words {
		if len([]rune(w)) < minDictTermLen || strings.IndexFunc(w, unicode.IsDigit) >= 0 {
			continue
		}
		out = append(out, w)
	}
	return out
}
