package domain

import (
	"context"
	"sync/atomic"
)

type embeddingUsageKey struct{}

// EmbeddingUsage collects token usage for one chat or ingest call.
// The caller puts a pointer into the context, services add to it after embedding.
// Safe for concurrent use: ingestion embeds chunk groups in parallel.
type EmbeddingUsage struct {
	tokens atomic.Int64
	calls  atomic.Int64
}

// NewContextWithUsage returns a context with an embedded usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *EmbeddingUsage) {
	u := &EmbeddingUsage{}
	return context.WithValue(ctx, embeddingUsageKey{}, u), u
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *EmbeddingUsage {
	u, _ := ctx.Value(embeddingUsageKey{}).(*EmbeddingUsage)
	return u
}

// AddTokens records one embedding call and the tokens it consumed (0 on a cache hit).
func (u *EmbeddingUsage) AddTokens(n int) {
	if u == nil {
		return
	}
	u.tokens.Add(int64(n))
	u.calls.Add(1)
}

// TotalTokens returns the tokens recorded so far.
func (u *EmbeddingUsage) TotalTokens() int {
	if u == nil {
		return 0
	}
	return int(u.tokens.Load())
}

// Calls returns how many embedding calls were recorded.
func (u *EmbeddingUsage) Calls() int {
	if u == nil {
		return 0
	}
	return int(u.calls.Load())
}
