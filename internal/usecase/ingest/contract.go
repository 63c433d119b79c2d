package ingest

import (
	"context"

	"github.com/kailas-cloud/ragchat/internal/domain"
	"github.com/kailas-cloud/ragchat/internal/domain/filter"
)

// VectorStore is the write side of the vector index.
type VectorStore interface {
	Upsert(ctx context.Context, vectors []domain.IndexedVector) error
	Delete(ctx context.Context, id string) error
	DeleteByMetadata(ctx context.Context, filters filter.Expression) (int, error)
	Find(ctx context.Context, filters filter.Expression, limit int) ([]domain.SearchResult, error)
	Stats(ctx context.Context) (domain.IndexStats, error)
}

// Chunker splits a document into index-sized chunks.
type Chunker interface {
	Chunks(doc domain.Document) []domain.Chunk
}
