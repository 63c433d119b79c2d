package domain

// KeyPrefix is the default prefix for every key the service writes to the store.
const KeyPrefix = "ragchat:"

// VectorConfig holds internal vectorization settings.
type VectorConfig struct {
	Model              string
	Dimensions         int
	DistanceMetric     string
	Algorithm          string
	MetadataContentCap int
}

// DefaultVectorConfig returns the defaults tuned for all-MiniLM-L6-v2 (384 dims, cosine).
func DefaultVectorConfig() VectorConfig {
	return VectorConfig{
		Model:              "all-MiniLM-L6-v2",
		Dimensions:         384,
		DistanceMetric:     "cosine",
		Algorithm:          "hnsw",
		MetadataContentCap: 2000,
	}
}

// RetrievalConfig holds retrieval tuning.
type RetrievalConfig struct {
	TopK                int
	SimilarityThreshold float64
}

// DefaultRetrievalConfig returns top-5 with a 0.3 cosine cut-off.
func DefaultRetrievalConfig() RetrievalConfig {
	return RetrievalConfig{TopK: 5, SimilarityThreshold: 0.3}
}
