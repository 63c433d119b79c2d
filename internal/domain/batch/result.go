// Package batch holds per-document outcomes of an ingestion batch.
package batch

// ItemStatus is the outcome for a single document.
type ItemStatus string

// Item status values.
const (
	StatusOK    ItemStatus = "ok"
	StatusError ItemStatus = "error"
)

// Result is the ingestion outcome of one document. ID is the document ID,
// or its batch position when the document has none.
type Result struct {
	id     string
	status ItemStatus
	chunks int
	err    error
}

// NewOK records a document written as chunks index entries.
func NewOK(id string, chunks int) Result {
	return Result{id: id, status: StatusOK, chunks: chunks}
}

// NewError records a document that was not written.
func NewError(id string, err error) Result { return Result{id: id, status: StatusError, err: err} }

// ID returns the document key.
func (r Result) ID() string { return r.id }

// Status returns the outcome.
func (r Result) Status() ItemStatus { return r.status }

// Chunks returns how many chunks were written. Zero for failures.
func (r Result) Chunks() int { return r.chunks }

// Err returns the failure cause, if any.
func (r Result) Err() error { return r.err }

// Count splits results into written and failed documents.
func Count(results []Result) (ok, failed int) {
	for _, r := range results {
		if r.status == StatusOK {
			ok++
		} else {
			failed++
		}
	}
	return ok, failed
}
