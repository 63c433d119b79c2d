package db

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// DistanceMetric used by FT.SEARCH vector similarity queries.
type DistanceMetric string

const (
	// DistanceL2 is Euclidean distance.
	DistanceL2 DistanceMetric = "L2"
	// DistanceIP is inner product distance.
	DistanceIP DistanceMetric = "IP"
	// DistanceCosine is cosine distance.
	DistanceCosine DistanceMetric = "COSINE"
)

// VectorAlgorithm selects the indexing algorithm for vector fields in FT.CREATE.
type VectorAlgorithm string

const (
	// VectorHNSW uses the HNSW algorithm.
	VectorHNSW VectorAlgorithm = "HNSW"
	// VectorFlat uses the FLAT (brute-force) algorithm.
	VectorFlat VectorAlgorithm = "FLAT"
)

// ParseDistance maps a config value ("cosine", "l2", "ip") to a DistanceMetric.
func ParseDistance(s string) (DistanceMetric, error) {
	switch DistanceMetric(strings.ToUpper(s)) {
	case DistanceCosine, "":
		return DistanceCosine, nil
	case DistanceL2:
		return DistanceL2, nil
	case DistanceIP:
		return DistanceIP, nil
	}
	return "", fmt.Errorf("unknown distance metric %q", s)
}

// ParseAlgorithm maps a config value ("hnsw", "flat") to a VectorAlgorithm.
func ParseAlgorithm(s string) (VectorAlgorithm, error) {
	switch VectorAlgorithm(strings.ToUpper(s)) {
	case VectorHNSW, "":
		return VectorHNSW, nil
	case VectorFlat:
		return VectorFlat, nil
	}
	return "", fmt.Errorf("unknown vector algorithm %q", s)
}

// IndexFieldType enumerates supported FT index field types.
type IndexFieldType int

const (
	// IndexFieldTag is a tag field.
	IndexFieldTag IndexFieldType = iota
	// IndexFieldVector is a vector field.
	IndexFieldVector
)

// IndexField describes a single field in an FT index schema.
type IndexField struct {
	Name string
	Type IndexFieldType

	// TAG options
	TagSeparator     string
	TagCaseSensitive bool

	// VECTOR options
	VectorAlgo        VectorAlgorithm
	VectorDim         int
	VectorDistance    DistanceMetric
	VectorM           int // HNSW M (default 16)
	VectorEFConstruct int // HNSW EF_CONSTRUCTION (default 200)
}

// IndexDefinition is a complete FT index definition used by FT.CREATE ON HASH.
type IndexDefinition struct {
	Name     string
	Prefixes []string
	Fields   []IndexField
}

// Validate checks that the index definition is well-formed.
func (idx *IndexDefinition) Validate() error {
	if idx.Name == "" {
		return errors.New("index name is required")
	}
	if !IsValidIdentifier(idx.Name) {
		return errors.New("index name contains invalid characters")
	}
	if len(idx.Fields) == 0 {
		return errors.New("at least one field is required")
	}

	seen := make(map[string]bool)
	vectors := 0
	for i := range idx.Fields {
		f := &idx.Fields[i]
		if f.Name == "" {
			return errors.New("field name is required at index " + strconv.Itoa(i))
		}
		if seen[f.Name] {
			return errors.New("duplicate field name: " + f.Name)
		}
		seen[f.Name] = true

		if f.Type == IndexFieldVector {
			if f.VectorDim <= 0 {
				return errors.New("vector field requires positive DIM")
			}
			vectors++
		}
	}
	if vectors > 1 {
		return errors.New("at most one vector field is supported")
	}

	return nil
}

// VectorField returns the vector field of the definition, if any.
func (idx *IndexDefinition) VectorField() (IndexField, bool) {
	for _, f := range idx.Fields {
		if f.Type == IndexFieldVector {
			return f, true
		}
	}
	return IndexField{}, false
}

// IsValidIdentifier returns true if s matches [a-zA-Z0-9_:-]+.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		isSpecial := r == '_' || r == ':' || r == '-'
		if !isAlpha && !isDigit && !isSpecial {
			return false
		}
	}
	return true
}
