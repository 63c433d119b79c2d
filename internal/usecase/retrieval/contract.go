package retrieval

import (
	"context"

	"github.com/kailas-cloud/ragchat/internal/domain"
	"github.com/kailas-cloud/ragchat/internal/domain/filter"
)

// VectorSearcher runs nearest-neighbour queries against the vector index.
type VectorSearcher interface {
	Query(ctx context.Context, vector []float32, topK int, filters filter.Expression) ([]domain.SearchResult, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
