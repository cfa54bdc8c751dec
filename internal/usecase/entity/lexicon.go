package entity

import (
	"sort"
	"strings"

	"github.com/kailas-cloud/qou/internal/domain/query"
	"github.com/kailas-cloud/qou/internal/usecase/normalize"
)

// DefaultBrands is the fallback brand list used when no lexicon is configured.
var DefaultBrands = []string{
	"Fage", "Annie's", "Newman's Own", "General Mills", "Blue Diamond",
	"Bonne Maman", "Philadelphia", "Stacy's", "Kellogg's", "Horizon Organic",
	"YoBaby", "Chobani", "Udi's", "Earth's Best", "Organic Valley",
	"Green & Black's", "Nike",
}

// DefaultDietary is the fallback dietary attribute list.
var DefaultDietary = []string{"organic"}

// Lexicon holds normalized fallback terms per entity type.
// It is immutable after construction and safe for concurrent use.
type Lexicon struct {
	types []query.EntityType
	terms map[query.EntityType][]string
}

// NewLexicon normalizes and deduplicates the given terms.
// Term order within a type is preserved; types are iterated in sorted order.
func NewLexicon(entries map[query.EntityType][]string) *Lexicon {
	l := &Lexicon{terms: make(map[query.EntityType][]string, len(entries))}
	for typ, raw := range entries {
		seen := make(map[string]struct{}, len(raw))
		var terms []string
		for _, t := range raw {
			n := normalize.Normalize(t)
			if n == "" {
				continue
			}
			if _, dup := seen[n]; dup {
				continue
			}
			seen[n] = struct{}{}
			terms = append(terms, n)
		}
		if len(terms) == 0 {
			continue
		}
		l.terms[typ] = terms
		l.types = append(l.types, typ)
	}
	sort.Slice(l.types, func(i, j int) bool { return l.types[i] < l.types[j] })
	return l
}

// DefaultLexicon returns the built-in brand and dietary lexicon.
func DefaultLexicon() *Lexicon {
	return NewLexicon(map[query.EntityType][]string{
		query.EntityBrand:            DefaultBrands,
		query.EntityDietaryAttribute: DefaultDietary,
	})
}

// Types returns the entity types the lexicon has terms for.
func (l *Lexicon) Types() []query.EntityType {
	return l.types
}

// Terms returns the normalized terms for a type.
func (l *Lexicon) Terms(typ query.EntityType) []string {
	return l.terms[typ]
}

// Match returns an entity for every term of typ contained in text.
// Offsets point at the first occurrence.
func (l *Lexicon) Match(text string, typ query.EntityType) []query.Entity {
	if l == nil || text == "" {
		return nil
	}
	var out []query.Entity
	for _, term := range l.terms[typ] {
		pos := strings.Index(text, term)
		if pos < 0 {
			continue
		}
		out = append(out, query.Entity{
			Value:       term,
			Type:        typ,
			StartOffset: pos,
			EndOffset:   pos + len(term),
		})
	}
	return out
}
