package ragchat

import (
	"github.com/kailas-cloud/ragchat/internal/domain"
	dombatch "github.com/kailas-cloud/ragchat/internal/domain/batch"
	"github.com/kailas-cloud/ragchat/internal/knowledge"
)

// Document is a plain-text record to ingest. Only Content is required.
type Document = domain.Document

// SearchResult is a retrieved chunk with its cosine similarity.
type SearchResult = domain.SearchResult

// ChatResponse is the answer to one question.
type ChatResponse = domain.ChatResponse

// Stats summarises the vector index.
type Stats = domain.IndexStats

// ItemStatus is the outcome for a single document of an AddDocuments call.
type ItemStatus string

// Item status values.
const (
	ItemOK    ItemStatus = "ok"
	ItemError ItemStatus = "error"
)

// ItemResult is the outcome for one document. ID is the document ID, or its
// position in the batch when the document has none.
type ItemResult struct {
	ID     string
	Status ItemStatus
	Chunks int
	Err    error
}

// IngestReport summarises an AddDocuments call.
type IngestReport struct {
	Documents       int
	Chunks          int
	Written         int
	Failed          int
	EmbeddingTokens int // zero for the local embedder and for cache hits
	Results         []ItemResult
}

// SampleDocuments returns the built-in sample knowledge base.
func SampleDocuments() []Document {
	return knowledge.SampleDocuments()
}

func toItemResults(rs []dombatch.Result) []ItemResult {
	out := make([]ItemResult, len(rs))
	for i, r := range rs {
		out[i] = ItemResult{ID: r.ID(), Status: ItemStatus(r.Status()), Chunks: r.Chunks(), Err: r.Err()}
	}
	return out
}
