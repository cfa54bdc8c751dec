// Package clause defines the engine-agnostic query clauses produced by the
// query rewriter. The set of variants is closed: only the engine adapter
// translates them into wire syntax.
package clause

import "encoding/json"

// Kind identifies a clause variant.
type Kind string

// Clause kinds.
const (
	KindTerm       Kind = "term"
	KindMultiMatch Kind = "multi_match"
	KindNested     Kind = "nested"
)

// Clause is one of TermFilter, MultiMatch or NestedMatch.
type Clause interface {
	Kind() Kind
	isClause()
}

// TermFilter is an exact-value constraint on a keyword field.
type TermFilter struct {
	Field           string
	Value           string
	CaseInsensitive bool
}

// Kind implements Clause.
func (TermFilter) Kind() Kind { return KindTerm }
func (TermFilter) isClause()  {}

// MarshalJSON tags the clause with its kind.
func (t TermFilter) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type            Kind   `json:"type"`
		Field           string `json:"field"`
		Value           string `json:"value"`
		CaseInsensitive bool   `json:"case_insensitive,omitempty"`
	}{KindTerm, t.Field, t.Value, t.CaseInsensitive})
}

// WeightedField is a text field with a relevance weight (1.0 is neutral).
type WeightedField struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// Field returns a neutral-weight field.
func Field(name string) WeightedField {
	return WeightedField{Name: name, Weight: 1}
}

// Boosted returns a field with an explicit weight.
func Boosted(name string, weight float64) WeightedField {
	return WeightedField{Name: name, Weight: weight}
}

// MultiMatch is a best-fields text match over several weighted fields.
type MultiMatch struct {
	Fields []WeightedField
	Text   string
	Fuzzy  bool
}

// Kind implements Clause.
func (MultiMatch) Kind() Kind { return KindMultiMatch }
func (MultiMatch) isClause()  {}

// MarshalJSON tags the clause with its kind.
func (m MultiMatch) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type   Kind            `json:"type"`
		Fields []WeightedField `json:"fields"`
		Text   string          `json:"text"`
		Fuzzy  bool            `json:"fuzzy,omitempty"`
	}{KindMultiMatch, m.Fields, m.Text, m.Fuzzy})
}

// NestedMatch applies sub-clauses to the objects under a nested path.
// Sub-clause field names are relative to the path.
type NestedMatch struct {
	Path    string
	Clauses []Clause
}

// Kind implements Clause.
func (NestedMatch) Kind() Kind { return KindNested }
func (NestedMatch) isClause()  {}

// MarshalJSON tags the clause with its kind.
func (n NestedMatch) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    Kind     `json:"type"`
		Path    string   `json:"path"`
		Clauses []Clause `json:"clauses"`
	}{KindNested, n.Path, n.Clauses})
}
