package chat

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ragchat/internal/answer"
	"github.com/kailas-cloud/ragchat/internal/bilingual"
	"github.com/kailas-cloud/ragchat/internal/domain"
	"github.com/kailas-cloud/ragchat/internal/logger"
	"github.com/kailas-cloud/ragchat/internal/metrics"
)

// Service answers a single chat turn. Stateless and safe for concurrent use.
type Service struct {
	retriever Retriever
	answerer  Answerer
	topK      int
	logger    *zap.Logger
}

// New creates a chat service. topK <= 0 leaves the choice to the retriever.
func New(retriever Retriever, answerer Answerer, topK int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{retriever: retriever, answerer: answerer, topK: topK, logger: logger}
}

// Chat retrieves with the preprocessed query and answers the original one.
func (s *Service) Chat(ctx context.Context, query string) domain.ChatResponse {
	docs := s.retriever.Retrieve(ctx, bilingual.Preprocess(query), s.topK)
	if docs == nil {
		docs = []domain.SearchResult{}
	}

	text, route := s.answerer.Answer(query, answer.BuildContext(docs))
	metrics.AnswerRouteTotal.WithLabelValues(string(route)).Inc()
	logger.FromContext(ctx, s.logger).Debug("Answered query", zap.String("route", string(route)), zap.Int("documents", len(docs)))

	return domain.ChatResponse{
		Response:          text,
		RelevantDocuments: docs,
		ContextUsed:       len(docs) > 0,
		Query:             query,
	}
}
