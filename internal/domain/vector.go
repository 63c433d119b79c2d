package domain

import "unicode/utf8"

// Metadata is what the vector index keeps next to each embedding.
type Metadata struct {
	Content  string
	Title    string
	Source   string
	Category string
}

// Fields returns metadata as a flat map, keyed the way filters address it.
func (m Metadata) Fields() map[string]string {
	return map[string]string{
		"content":  m.Content,
		"title":    m.Title,
		"source":   m.Source,
		"category": m.Category,
	}
}

// IndexedVector is a single entry of the vector index.
type IndexedVector struct {
	ID        string
	Embedding []float32
	Metadata  Metadata
}

// NewIndexedVector builds an index entry from a chunk, truncating content to contentCap runes.
func NewIndexedVector(c Chunk, embedding []float32, contentCap int) IndexedVector {
	return IndexedVector{
		ID:        c.ID,
		Embedding: embedding,
		Metadata: Metadata{
			Content:  TruncateRunes(c.Content, contentCap),
			Title:    c.Title,
			Source:   c.Source,
			Category: c.Category,
		},
	}
}

// SearchResult is a single retrieval hit. Score is cosine similarity in [-1, 1].
type SearchResult struct {
	ID       string  `json:"id"`
	Score    float64 `json:"score"`
	Content  string  `json:"content"`
	Title    string  `json:"title"`
	Source   string  `json:"source"`
	Category string  `json:"category"`
}

// IndexStats summarises the vector index.
type IndexStats struct {
	Count     int     `json:"total_vector_count"`
	Dimension int     `json:"dimension"`
	Fullness  float64 `json:"index_fullness"`
}

// TruncateRunes cuts s to at most n runes. n <= 0 disables truncation.
func TruncateRunes(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
