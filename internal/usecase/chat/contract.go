package chat

import (
	"context"

	"github.com/kailas-cloud/ragchat/internal/answer"
	"github.com/kailas-cloud/ragchat/internal/domain"
)

// Retriever finds the chunks relevant to a query. It never fails: problems
// surface as an empty result.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) []domain.SearchResult
}

// Answerer builds the reply text from a query and its rendered context.
type Answerer interface {
	Answer(query, context string) (string, answer.Route)
}
