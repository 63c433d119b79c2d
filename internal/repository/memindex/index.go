// Package memindex is an in-process vector index using brute-force cosine similarity.
package memindex

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"
	"sync"

	"github.com/kailas-cloud/ragchat/internal/domain"
	"github.com/kailas-cloud/ragchat/internal/domain/filter"
)

type entry struct {
	vector []float32
	norm   float64
	meta   domain.Metadata
}

// Index keeps every vector in memory. Reads share an RLock; each Upsert
// takes the write lock once, so a batch becomes visible all at once.
type Index struct {
	mu        sync.RWMutex
	dimension int
	capacity  int
	entries   map[string]*entry
	order     []string // insertion order, breaks score ties
}

// New creates an empty index for vectors of the given dimension.
// capacity is only used to report fullness; 0 means unbounded.
func New(dimension, capacity int) *Index {
	return &Index{
		dimension: dimension,
		capacity:  capacity,
		entries:   make(map[string]*entry),
	}
}

// EnsureIndex is a no-op kept for parity with the Redis-backed index.
func (x *Index) EnsureIndex(_ context.Context) error { return nil }

// Ping always succeeds.
func (x *Index) Ping(_ context.Context) error { return nil }

// Upsert validates the whole batch first and writes nothing if any vector is invalid.
func (x *Index) Upsert(_ context.Context, vectors []domain.IndexedVector) error {
	if len(vectors) == 0 {
		return nil
	}

	prepared := make(map[string]*entry, len(vectors))
	ids := make([]string, 0, len(vectors))
	for i := range vectors {
		v := &vectors[i]
		if v.ID == "" {
			return fmt.Errorf("vector %d: id is required: %w", i, domain.ErrInvalidDocument)
		}
		if err := domain.CheckDimensions(v.Embedding, x.dimension); err != nil {
			return fmt.Errorf("vector %s: %w", v.ID, err)
		}
		if _, dup := prepared[v.ID]; !dup {
			ids = append(ids, v.ID)
		}
		prepared[v.ID] = &entry{
			vector: slices.Clone(v.Embedding),
			norm:   l2(v.Embedding),
			meta:   v.Metadata,
		}
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	for _, id := range ids {
		if _, exists := x.entries[id]; !exists {
			x.order = append(x.order, id)
		}
		x.entries[id] = prepared[id]
	}
	return nil
}

// Query returns the topK entries by descending cosine similarity.
func (x *Index) Query(
	_ context.Context, vector []float32, topK int, filters filter.Expression,
) ([]domain.SearchResult, error) {
	if err := domain.CheckDimensions(vector, x.dimension); err != nil {
		return nil, fmt.Errorf("query vector: %w", err)
	}
	if topK <= 0 {
		return nil, nil
	}
	qnorm := l2(vector)

	x.mu.RLock()
	results := make([]domain.SearchResult, 0, len(x.order))
	for _, id := range x.order {
		e := x.entries[id]
		if !filters.IsEmpty() && !filters.Matches(e.meta.Fields()) {
			continue
		}
		results = append(results, toResult(id, e, cosine(vector, qnorm, e)))
	}
	x.mu.RUnlock()

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Delete removes a vector. Missing IDs are ignored.
func (x *Index) Delete(_ context.Context, id string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.remove(map[string]struct{}{id: {}})
	return nil
}

// DeleteByMetadata removes every vector matching the filter.
func (x *Index) DeleteByMetadata(_ context.Context, filters filter.Expression) (int, error) {
	if filters.IsEmpty() {
		return 0, errors.New("delete by metadata requires a non-empty filter")
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	doomed := make(map[string]struct{})
	for id, e := range x.entries {
		if filters.Matches(e.meta.Fields()) {
			doomed[id] = struct{}{}
		}
	}
	return x.remove(doomed), nil
}

// Find lists vectors matching the filter in insertion order.
func (x *Index) Find(_ context.Context, filters filter.Expression, limit int) ([]domain.SearchResult, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	var out []domain.SearchResult
	for _, id := range x.order {
		if limit > 0 && len(out) == limit {
			break
		}
		e := x.entries[id]
		if filters.IsEmpty() || filters.Matches(e.meta.Fields()) {
			out = append(out, toResult(id, e, 0))
		}
	}
	return out, nil
}

// Stats reports the number of stored vectors.
func (x *Index) Stats(_ context.Context) (domain.IndexStats, error) {
	x.mu.RLock()
	n := len(x.entries)
	x.mu.RUnlock()

	stats := domain.IndexStats{Count: n, Dimension: x.dimension}
	if x.capacity > 0 {
		stats.Fullness = float64(n) / float64(x.capacity)
	}
	return stats, nil
}

// remove deletes ids and compacts the order slice. Caller holds the write lock.
func (x *Index) remove(ids map[string]struct{}) int {
	removed := 0
	for id := range ids {
		if _, ok := x.entries[id]; ok {
			delete(x.entries, id)
			removed++
		}
	}
	if removed == 0 {
		return 0
	}
	x.order = slices.DeleteFunc(x.order, func(id string) bool {
		_, gone := ids[id]
		return gone
	})
	return removed
}

func toResult(id string, e *entry, score float64) domain.SearchResult {
	return domain.SearchResult{
		ID:       id,
		Score:    score,
		Content:  e.meta.Content,
		Title:    e.meta.Title,
		Source:   e.meta.Source,
		Category: e.meta.Category,
	}
}

// cosine returns 0 when either vector has zero length.
func cosine(q []float32, qnorm float64, e *entry) float64 {
	if qnorm == 0 || e.norm == 0 {
		return 0
	}
	var dot float64
	for i := range q {
		dot += float64(q[i]) * float64(e.vector[i])
	}
	return dot / (qnorm * e.norm)
}

func l2(v []float32) float64 {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	return math.Sqrt(sum)
}
