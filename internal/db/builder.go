package db

import (
	"strconv"
	"strings"
)

// IndexBuilder is a fluent builder for FT index definitions.
type IndexBuilder struct {
	def IndexDefinition
}

// NewIndex starts building an FT index definition.
func NewIndex(name string) *IndexBuilder {
	return &IndexBuilder{
		def: IndexDefinition{
			Name:        name,
			StorageType: StorageHash,
		},
	}
}

// OnJSON sets the index storage type to JSON.
func (b *IndexBuilder) OnJSON() *IndexBuilder {
	b.def.StorageType = StorageJSON
	return b
}

// OnHash sets the index storage type to HASH.
func (b *IndexBuilder) OnHash() *IndexBuilder {
	b.def.StorageType = StorageHash
	return b
}

// Prefix adds key prefixes to the index.
func (b *IndexBuilder) Prefix(prefixes ...string) *IndexBuilder {
	b.def.Prefixes = append(b.def.Prefixes, prefixes...)
	return b
}

// Numeric adds a NUMERIC field to the index.
func (b *IndexBuilder) Numeric(path, alias string) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{
		Name:  path,
		Alias: alias,
		Type:  IndexFieldNumeric,
	})
	return b
}

// Tag adds a case-insensitive TAG field to the index.
func (b *IndexBuilder) Tag(path, alias string) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{
		Name:  path,
		Alias: alias,
		Type:  IndexFieldTag,
	})
	return b
}

// TagWithOpts adds a TAG field with custom separator and case sensitivity.
func (b *IndexBuilder) TagWithOpts(path, alias, separator string, caseSensitive bool) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{
		Name:             path,
		Alias:            alias,
		Type:             IndexFieldTag,
		TagSeparator:     separator,
		TagCaseSensitive: caseSensitive,
	})
	return b
}

// Text adds a TEXT field to the index.
func (b *IndexBuilder) Text(path, alias string) *IndexBuilder {
	return b.WeightedText(path, alias, 0)
}

// WeightedText adds a TEXT field with a relevance weight.
func (b *IndexBuilder) WeightedText(path, alias string, weight float64) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{
		Name:       path,
		Alias:      alias,
		Type:       IndexFieldText,
		TextWeight: weight,
	})
	return b
}

// Build validates and returns the index definition.
func (b *IndexBuilder) Build() (*IndexDefinition, error) {
	if err := b.def.Validate(); err != nil {
		return nil, err
	}
	return &b.def, nil
}

// MustBuild calls Build and panics on error.
func (b *IndexBuilder) MustBuild() *IndexDefinition {
	def, err := b.Build()
	if err != nil {
		panic(err)
	}
	return def
}

// String returns a debug representation resembling the FT.CREATE command.
func (idx *IndexDefinition) String() string {
	parts := []string{"FT.CREATE", idx.Name}
	if idx.StorageType != "" {
		parts = append(parts, "ON", string(idx.StorageType))
	}
	if len(idx.Prefixes) > 0 {
		parts = append(parts, "PREFIX")
		parts = append(parts, idx.Prefixes...)
	}
	parts = append(parts, "SCHEMA")
	for i := range idx.Fields {
		f := &idx.Fields[i]
		parts = append(parts, f.Name)
		if f.Alias != "" {
			parts = append(parts, "AS", f.Alias)
		}
		switch f.Type {
		case IndexFieldTag:
			parts = append(parts, "TAG")
		case IndexFieldNumeric:
			parts = append(parts, "NUMERIC")
		case IndexFieldText:
			parts = append(parts, "TEXT")
			if f.TextWeight > 0 {
				parts = append(parts, "WEIGHT", strconv.FormatFloat(f.TextWeight, 'g', -1, 64))
			}
		}
	}
	return strings.Join(parts, " ")
}
