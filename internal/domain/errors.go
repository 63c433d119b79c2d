package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidDocument signals a document rejected at the ingestion boundary.
	ErrInvalidDocument = errors.New("invalid document")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrIndexUnavailable signals that the vector index could not be reached.
	ErrIndexUnavailable = errors.New("vector index unavailable")
	// ErrBatchTooLarge signals an ingestion batch above the configured limit.
	ErrBatchTooLarge = errors.New("batch too large")
	// ErrBatchFailed signals that an ingestion batch was rejected as a whole.
	ErrBatchFailed = errors.New("batch failed")
)

// ItemError is a single failed document inside a rejected batch.
type ItemError struct {
	Index int
	ID    string
	Err   error
}

// BatchError reports every document that caused an ingestion batch to be rejected.
// Nothing from the batch was written when this error is returned.
type BatchError struct {
	Failed []ItemError
	Total  int
}

func (e *BatchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d of %d documents failed", ErrBatchFailed.Error(), len(e.Failed), e.Total)
	for i, f := range e.Failed {
		if i == 3 {
			fmt.Fprintf(&b, "; and %d more", len(e.Failed)-i)
			break
		}
		fmt.Fprintf(&b, "; [%d] %s", f.Index, f.Err)
	}
	return b.String()
}

func (e *BatchError) Unwrap() error { return ErrBatchFailed }

// NewBatchError creates a batch rejection error.
func NewBatchError(total int, failed []ItemError) error {
	return &BatchError{Failed: failed, Total: total}
}
