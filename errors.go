package ragchat

import "github.com/kailas-cloud/ragchat/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound               = domain.ErrNotFound
	ErrInvalidDocument        = domain.ErrInvalidDocument
	ErrVectorDimMismatch      = domain.ErrVectorDimMismatch
	ErrRateLimited            = domain.ErrRateLimited
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrIndexUnavailable       = domain.ErrIndexUnavailable
	ErrBatchTooLarge          = domain.ErrBatchTooLarge
	ErrBatchFailed            = domain.ErrBatchFailed
)

// BatchError lists the documents that caused AddDocuments to reject a batch.
// Use errors.As() to inspect it.
type BatchError = domain.BatchError
