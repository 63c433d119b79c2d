package db

import (
	"strconv"
	"strings"
)

// IndexBuilder is a fluent builder for FT index definitions.
type IndexBuilder struct {
	def IndexDefinition
}

// NewIndex starts building an FT index definition over hashes.
func NewIndex(name string) *IndexBuilder {
	return &IndexBuilder{def: IndexDefinition{Name: name}}
}

// Prefix adds key prefixes to the index.
func (b *IndexBuilder) Prefix(prefixes ...string) *IndexBuilder {
	b.def.Prefixes = append(b.def.Prefixes, prefixes...)
	return b
}

// Tag adds case-sensitive TAG fields. File names contain commas, so the
// separator is "|".
func (b *IndexBuilder) Tag(names ...string) *IndexBuilder {
	for _, name := range names {
		b.def.Fields = append(b.def.Fields, IndexField{
			Name:             name,
			Type:             IndexFieldTag,
			TagSeparator:     "|",
			TagCaseSensitive: true,
		})
	}
	return b
}

// VectorHNSW adds a FLOAT32 VECTOR field with the HNSW algorithm.
func (b *IndexBuilder) VectorHNSW(name string, dim int, distance DistanceMetric, m, efConstruct int) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{
		Name:              name,
		Type:              IndexFieldVector,
		VectorAlgo:        VectorHNSW,
		VectorDim:         dim,
		VectorDistance:    distance,
		VectorM:           m,
		VectorEFConstruct: efConstruct,
	})
	return b
}

// VectorFlat adds a FLOAT32 VECTOR field with the FLAT algorithm.
func (b *IndexBuilder) VectorFlat(name string, dim int, distance DistanceMetric) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{
		Name:           name,
		Type:           IndexFieldVector,
		VectorAlgo:     VectorFlat,
		VectorDim:      dim,
		VectorDistance: distance,
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
	parts := []string{"FT.CREATE", idx.Name, "ON", "HASH"}
	if len(idx.Prefixes) > 0 {
		parts = append(parts, "PREFIX", strconv.Itoa(len(idx.Prefixes)))
		parts = append(parts, idx.Prefixes...)
	}
	parts = append(parts, "SCHEMA")
	for i := range idx.Fields {
		f := &idx.Fields[i]
		parts = append(parts, f.Name)
		switch f.Type {
		case IndexFieldTag:
			parts = append(parts, "TAG")
		case IndexFieldVector:
			parts = append(parts, "VECTOR", string(f.VectorAlgo), "DIM", strconv.Itoa(f.VectorDim))
		}
	}
	return strings.Join(parts, " ")
}
