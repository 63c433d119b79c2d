package vectorindex

import (
	"context"
	"testing"

	"github.com/kailas-cloud/ragchat/internal/db"
	"github.com/kailas-cloud/ragchat/internal/domain"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	pingErr      error
	hsetAtomicFn func(ctx context.Context, items []db.HashSetItem) error
	delFn        func(ctx context.Context, keys ...string) (int, error)
	createFn     func(ctx context.Context, def *db.IndexDefinition) error
	infoFn       func(ctx context.Context, name string) (*db.IndexInfo, error)
	knnFn        func(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	listFn       func(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error)
}

func (m *mockStore) Ping(_ context.Context) error { return m.pingErr }

func (m *mockStore) HSetAtomic(ctx context.Context, items []db.HashSetItem) error {
	if m.hsetAtomicFn != nil {
		return m.hsetAtomicFn(ctx, items)
	}
	return nil
}

func (m *mockStore) Del(ctx context.Context, keys ...string) (int, error) {
	if m.delFn != nil {
		return m.delFn(ctx, keys...)
	}
	return len(keys), nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createFn != nil {
		return m.createFn(ctx, def)
	}
	return nil
}

func (m *mockStore) IndexInfo(ctx context.Context, name string) (*db.IndexInfo, error) {
	if m.infoFn != nil {
		return m.infoFn(ctx, name)
	}
	return &db.IndexInfo{Name: name}, nil
}

func (m *mockStore) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if m.knnFn != nil {
		return m.knnFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SearchList(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error) {
	if m.listFn != nil {
		return m.listFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func testConfig() Config {
	return Config{
		StoragePrefix: "ragchat:",
		Name:          "knowledge",
		Dimensions:    3,
		Distance:      "cosine",
		Algorithm:     "hnsw",
		HNSW:          HNSWConfig{M: 16, EFConstruct: 200},
	}
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, testConfig()), ms
}

func testVector(id string, emb ...float32) domain.IndexedVector {
	return domain.IndexedVector{
		ID:        id,
		Embedding: emb,
		Metadata: domain.Metadata{
			Content:  "Kathmandu is the capital of Nepal.",
			Title:    "Nepal",
			Source:   "nepal.docx",
			Category: "country",
		},
	}
}
