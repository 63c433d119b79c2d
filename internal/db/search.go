package db

import "github.com/kailas-cloud/ragchat/internal/domain/filter"

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	Filters      filter.Expression
	Vector       []float32
	K            int
	ReturnFields []string
}

// ListQuery selects documents by metadata filter only, without a vector.
// An empty filter selects everything. KeyPrefix is used by stores that
// cannot answer filter-only queries and have to scan keys instead.
type ListQuery struct {
	IndexName    string
	KeyPrefix    string
	Filters      filter.Expression
	Offset       int
	Limit        int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
// Score is cosine similarity (1 - distance) for KNN queries and 0 otherwise.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}

// IndexInfo is the subset of FT.INFO the application reads.
type IndexInfo struct {
	Name    string
	NumDocs int
}
