package retrieval

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ragchat/internal/domain"
	"github.com/kailas-cloud/ragchat/internal/domain/filter"
	"github.com/kailas-cloud/ragchat/internal/metrics"
)

// Service finds the chunks most similar to a query.
type Service struct {
	index  VectorSearcher
	embed  Embedder
	cfg    domain.RetrievalConfig
	logger *zap.Logger
}

// New creates a retrieval service. A non-positive TopK falls back to the default.
func New(index VectorSearcher, embed Embedder, cfg domain.RetrievalConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TopK <= 0 {
		cfg.TopK = domain.DefaultRetrievalConfig().TopK
	}
	return &Service{index: index, embed: embed, cfg: cfg, logger: logger}
}

// Retrieve returns up to topK results scoring at least the similarity threshold,
// best first. Failures are logged and yield an empty result.
func (s *Service) Retrieve(ctx context.Context, query string, topK int) []domain.SearchResult {
	if topK <= 0 {
		topK = s.cfg.TopK
	}

	emb, err := s.embed.Embed(ctx, query)
	if err != nil {
		s.fail("Failed to embed query", err)
		return []domain.SearchResult{}
	}
	domain.UsageFromContext(ctx).AddTokens(emb.TotalTokens)

	hits, err := s.index.Query(ctx, emb.Embedding, topK, filter.Expression{})
	if err != nil {
		s.fail("Failed to query vector index", err)
		return []domain.SearchResult{}
	}

	kept := make([]domain.SearchResult, 0, len(hits))
	for _, h := range hits {
		if h.Score < s.cfg.SimilarityThreshold {
			continue
		}
		kept = append(kept, h)
	}
	if dropped := len(hits) - len(kept); dropped > 0 {
		metrics.RetrievalDroppedTotal.Add(float64(dropped))
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Score > kept[j].Score })

	metrics.RetrievalRequestsTotal.WithLabelValues("success").Inc()
	metrics.RetrievalResults.Observe(float64(len(kept)))
	s.logger.Debug("Retrieved documents",
		zap.Int("hits", len(hits)),
		zap.Int("kept", len(kept)),
		zap.Float64("threshold", s.cfg.SimilarityThreshold),
	)
	return kept
}

func (s *Service) fail(msg string, err error) {
	metrics.RetrievalRequestsTotal.WithLabelValues("error").Inc()
	s.logger.Error(msg, zap.Error(err))
}
