package vectorindex

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/kailas-cloud/ragchat/internal/db"
	"github.com/kailas-cloud/ragchat/internal/domain"
	"github.com/kailas-cloud/ragchat/internal/domain/filter"
)

// listPageSize bounds a single FT.SEARCH page when listing by metadata.
const listPageSize = 500

// store is the consumer interface for the vector index (ISP).
type store interface {
	Ping(ctx context.Context) error
	HSetAtomic(ctx context.Context, items []db.HashSetItem) error
	Del(ctx context.Context, keys ...string) (int, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexInfo(ctx context.Context, name string) (*db.IndexInfo, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchList(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error)
}

// Config describes where and how vectors are stored.
type Config struct {
	StoragePrefix string // e.g. "ragchat:"
	Name          string // e.g. "knowledge"
	Dimensions    int
	Distance      string
	Algorithm     string
	HNSW          HNSWConfig
	Capacity      int // 0 = unbounded; used only for fullness
}

func (c Config) keyPrefix() string { return c.StoragePrefix + c.Name + ":" }
func (c Config) indexName() string { return c.StoragePrefix + c.Name + ":idx" }

// Repo is a vector index over Redis-protocol hashes with an FT index.
type Repo struct {
	store store
	cfg   Config
}

// New creates a vector index repository.
func New(s store, cfg Config) *Repo {
	return &Repo{store: s, cfg: cfg}
}

// EnsureIndex creates the FT index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	def, err := buildIndex(r.cfg)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index %s: %w: %w", def.Name, domain.ErrIndexUnavailable, err)
	}
	return nil
}

// Ping checks the backing store.
func (r *Repo) Ping(ctx context.Context) error {
	if err := r.store.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}
	return nil
}

// Upsert writes all vectors in one MULTI/EXEC transaction.
func (r *Repo) Upsert(ctx context.Context, vectors []domain.IndexedVector) error {
	if len(vectors) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, len(vectors))
	for i := range vectors {
		v := &vectors[i]
		if v.ID == "" {
			return fmt.Errorf("vector %d: id is required: %w", i, domain.ErrInvalidDocument)
		}
		if err := domain.CheckDimensions(v.Embedding, r.cfg.Dimensions); err != nil {
			return fmt.Errorf("vector %s: %w", v.ID, err)
		}
		items[i] = db.HashSetItem{Key: r.cfg.keyPrefix() + v.ID, Fields: buildHashFields(v)}
	}

	if err := r.store.HSetAtomic(ctx, items); err != nil {
		return fmt.Errorf("upsert %d vectors: %w: %w", len(items), domain.ErrIndexUnavailable, err)
	}
	return nil
}

// Query returns the topK nearest neighbours ordered by descending similarity.
func (r *Repo) Query(
	ctx context.Context, vector []float32, topK int, filters filter.Expression,
) ([]domain.SearchResult, error) {
	if err := domain.CheckDimensions(vector, r.cfg.Dimensions); err != nil {
		return nil, fmt.Errorf("query vector: %w", err)
	}
	if topK <= 0 {
		return nil, nil
	}

	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.cfg.indexName(),
		Filters:      filters,
		Vector:       vector,
		K:            topK,
		ReturnFields: append(append([]string(nil), returnFields...), "__vector_score"),
	})
	if err != nil {
		return nil, fmt.Errorf("search knn %s: %w: %w", r.cfg.Name, domain.ErrIndexUnavailable, err)
	}

	results := r.toResults(sr)
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Delete removes a vector by ID. Deleting a missing ID is not an error.
func (r *Repo) Delete(ctx context.Context, id string) error {
	if _, err := r.store.Del(ctx, r.cfg.keyPrefix()+id); err != nil {
		return fmt.Errorf("delete %s: %w: %w", id, domain.ErrIndexUnavailable, err)
	}
	return nil
}

// DeleteByMetadata removes every vector matching the filter and reports how many were removed.
func (r *Repo) DeleteByMetadata(ctx context.Context, filters filter.Expression) (int, error) {
	if filters.IsEmpty() {
		return 0, errors.New("delete by metadata requires a non-empty filter")
	}

	keys, err := r.matchingKeys(ctx, filters)
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}

	n, err := r.store.Del(ctx, keys...)
	if err != nil {
		return 0, fmt.Errorf("delete %d vectors: %w: %w", len(keys), domain.ErrIndexUnavailable, err)
	}
	return n, nil
}

// Find lists vectors matching the filter, without similarity scores.
func (r *Repo) Find(ctx context.Context, filters filter.Expression, limit int) ([]domain.SearchResult, error) {
	if limit <= 0 {
		limit = listPageSize
	}
	sr, err := r.store.SearchList(ctx, r.listQuery(filters, 0, limit))
	if err != nil {
		return nil, fmt.Errorf("find %s: %w: %w", r.cfg.Name, domain.ErrIndexUnavailable, err)
	}
	return r.toResults(sr), nil
}

// Stats reports the vector count from FT.INFO.
func (r *Repo) Stats(ctx context.Context) (domain.IndexStats, error) {
	info, err := r.store.IndexInfo(ctx, r.cfg.indexName())
	if err != nil {
		return domain.IndexStats{}, fmt.Errorf("index info %s: %w: %w", r.cfg.Name, domain.ErrIndexUnavailable, err)
	}

	stats := domain.IndexStats{Count: info.NumDocs, Dimension: r.cfg.Dimensions}
	if r.cfg.Capacity > 0 {
		stats.Fullness = float64(info.NumDocs) / float64(r.cfg.Capacity)
	}
	return stats, nil
}

// matchingKeys pages through every hit; deletion happens after listing so
// offsets stay stable.
func (r *Repo) matchingKeys(ctx context.Context, filters filter.Expression) ([]string, error) {
	var keys []string
	for offset := 0; ; offset += listPageSize {
		q := r.listQuery(filters, offset, listPageSize)
		q.ReturnFields = []string{fieldSource}
		sr, err := r.store.SearchList(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w: %w", r.cfg.Name, domain.ErrIndexUnavailable, err)
		}
		for _, e := range sr.Entries {
			keys = append(keys, e.Key)
		}
		if len(sr.Entries) < listPageSize {
			return keys, nil
		}
	}
}

func (r *Repo) listQuery(filters filter.Expression, offset, limit int) *db.ListQuery {
	return &db.ListQuery{
		IndexName:    r.cfg.indexName(),
		KeyPrefix:    r.cfg.keyPrefix(),
		Filters:      filters,
		Offset:       offset,
		Limit:        limit,
		ReturnFields: returnFields,
	}
}

func (r *Repo) toResults(sr *db.SearchResult) []domain.SearchResult {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}
	out := make([]domain.SearchResult, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		out = append(out, parseEntry(e, r.cfg.keyPrefix()))
	}
	return out
}
