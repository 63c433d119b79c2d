package ragchat

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/ragchat/internal/domain"
)

// Embedder converts text to vector embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// BatchEmbedder vectorizes multiple texts in a single call.
// Optional: if the provided Embedder also implements BatchEmbedder,
// ingestion uses it instead of one call per chunk.
type BatchEmbedder interface {
	BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error)
}

// HealthChecker is implemented by embedders that can report their own health.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token counts.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// BatchEmbeddingResult carries multiple embedding vectors and aggregate token usage.
type BatchEmbeddingResult struct {
	Embeddings   [][]float32
	PromptTokens int
	TotalTokens  int
}

// embedderAdapter exposes a public Embedder as a domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("%w: %w", domain.ErrEmbeddingProviderError, err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

func (a *embedderAdapter) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	be, ok := a.inner.(BatchEmbedder)
	if !ok {
		return domain.BatchFallback(ctx, a, texts)
	}
	r, err := be.BatchEmbed(ctx, texts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("%w: %w", domain.ErrEmbeddingProviderError, err)
	}
	if len(r.Embeddings) != len(texts) {
		return domain.BatchEmbeddingResult{}, fmt.Errorf(
			"%w: got %d embeddings for %d texts", domain.ErrEmbeddingProviderError, len(r.Embeddings), len(texts))
	}
	return domain.BatchEmbeddingResult{
		Embeddings:   r.Embeddings,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

func (a *embedderAdapter) HealthCheck(ctx context.Context) error {
	if hc, ok := a.inner.(HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}
