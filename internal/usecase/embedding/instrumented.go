package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ragchat/internal/domain"
	"github.com/kailas-cloud/ragchat/internal/metrics"
)

// DefaultMaxAPIBatchSize: максимальный размер батча для одного вызова inner.
const DefaultMaxAPIBatchSize = 64

// InstrumentedEmbedder wraps an Embedder with request metrics, logging and
// sub-batching. It is backend-agnostic: the same decorator sits above the
// local and the remote provider.
type InstrumentedEmbedder struct {
	inner    domain.Embedder
	provider string
	model    string
	maxBatch int
	logger   *zap.Logger
}

// NewInstrumentedEmbedder wraps an embedder with observability.
func NewInstrumentedEmbedder(
	inner domain.Embedder, provider, model string, logger *zap.Logger,
) *InstrumentedEmbedder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstrumentedEmbedder{
		inner:    inner,
		provider: provider,
		model:    model,
		maxBatch: DefaultMaxAPIBatchSize,
		logger:   logger,
	}
}

// Embed delegates to the inner embedder and records the outcome.
func (p *InstrumentedEmbedder) Embed(
	ctx context.Context, text string,
) (domain.EmbeddingResult, error) {
	start := time.Now()

	result, err := p.inner.Embed(ctx, text)

	duration := time.Since(start)

	if err != nil {
		p.recordError(err)
		p.logger.Error("Embedding request failed",
			zap.String("provider", p.provider),
			zap.String("model", p.model),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}

	p.recordSuccess(duration, result.PromptTokens, result.TotalTokens)

	p.logger.Debug("Embedding request completed",
		zap.String("provider", p.provider),
		zap.String("model", p.model),
		zap.Duration("duration", duration),
		zap.Int("dimensions", len(result.Embedding)),
		zap.Int("total_tokens", result.TotalTokens),
	)

	return result, nil
}

// BatchEmbed разбивает тексты на sub-batches и делегирует inner.
func (p *InstrumentedEmbedder) BatchEmbed(
	ctx context.Context, texts []string,
) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}

	start := time.Now()

	result, err := p.embedChunked(ctx, texts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, err
	}

	p.logger.Debug("Batch embedding completed",
		zap.String("provider", p.provider),
		zap.String("model", p.model),
		zap.Duration("duration", time.Since(start)),
		zap.Int("batch_size", len(texts)),
		zap.Int("total_tokens", result.TotalTokens),
	)

	return result, nil
}

// HealthCheck delegates to the inner embedder when it supports health checks.
func (p *InstrumentedEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := p.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}

func (p *InstrumentedEmbedder) embedChunked(
	ctx context.Context, texts []string,
) (domain.BatchEmbeddingResult, error) {
	all := make([][]float32, 0, len(texts))
	var totalPrompt, totalTokens int

	for offset := 0; offset < len(texts); offset += p.maxBatch {
		end := min(offset+p.maxBatch, len(texts))
		chunk := texts[offset:end]

		start := time.Now()
		chunkResult, err := domain.EmbedAll(ctx, p.inner, chunk)
		duration := time.Since(start)
		if err != nil {
			p.recordError(err)
			p.logger.Error("Batch embedding request failed",
				zap.String("provider", p.provider),
				zap.String("model", p.model),
				zap.Int("chunk_offset", offset),
				zap.Int("chunk_size", len(chunk)),
				zap.Error(err),
			)
			return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed [%d:%d]: %w", offset, end, err)
		}
		p.recordSuccess(duration, chunkResult.PromptTokens, chunkResult.TotalTokens)

		all = append(all, chunkResult.Embeddings...)
		totalPrompt += chunkResult.PromptTokens
		totalTokens += chunkResult.TotalTokens
	}

	return domain.BatchEmbeddingResult{
		Embeddings:   all,
		PromptTokens: totalPrompt,
		TotalTokens:  totalTokens,
	}, nil
}

func (p *InstrumentedEmbedder) recordSuccess(duration time.Duration, promptTokens, totalTokens int) {
	metrics.EmbeddingRequestsTotal.WithLabelValues(p.provider, p.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(p.provider, p.model).Observe(duration.Seconds())
	if totalTokens > 0 {
		metrics.EmbeddingTokensTotal.WithLabelValues(p.provider, p.model, "prompt").Add(float64(promptTokens))
		metrics.EmbeddingTokensTotal.WithLabelValues(p.provider, p.model, "total").Add(float64(totalTokens))
	}
}

func (p *InstrumentedEmbedder) recordError(err error) {
	metrics.EmbeddingRequestsTotal.WithLabelValues(p.provider, p.model, "error").Inc()
	metrics.EmbeddingErrorsTotal.WithLabelValues(p.provider, p.model, errorType(err)).Inc()
}

func errorType(err error) string {
	switch {
	case errors.Is(err, domain.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, domain.ErrVectorDimMismatch):
		return "dimension_mismatch"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "api_error"
	}
}
