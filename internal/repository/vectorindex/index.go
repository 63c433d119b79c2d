package vectorindex

import (
	"fmt"

	"github.com/kailas-cloud/ragchat/internal/db"
)

// HNSWConfig HNSW index parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// buildIndex creates the FT definition: TAG fields for filterable metadata
// plus one FLOAT32 vector field.
func buildIndex(cfg Config) (*db.IndexDefinition, error) {
	distance, err := db.ParseDistance(cfg.Distance)
	if err != nil {
		return nil, err
	}
	algo, err := db.ParseAlgorithm(cfg.Algorithm)
	if err != nil {
		return nil, err
	}

	b := db.NewIndex(cfg.indexName()).
		Prefix(cfg.keyPrefix()).
		Tag(fieldSource, fieldCategory, fieldTitle)

	switch algo {
	case db.VectorFlat:
		b = b.VectorFlat(fieldVector, cfg.Dimensions, distance)
	default:
		b = b.VectorHNSW(fieldVector, cfg.Dimensions, distance, cfg.HNSW.M, cfg.HNSW.EFConstruct)
	}

	def, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("index %s: %w", cfg.indexName(), err)
	}
	return def, nil
}
