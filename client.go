package ragchat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ragchat/internal/answer"
	"github.com/kailas-cloud/ragchat/internal/chunker"
	"github.com/kailas-cloud/ragchat/internal/db"
	dbRedis "github.com/kailas-cloud/ragchat/internal/db/redis"
	"github.com/kailas-cloud/ragchat/internal/domain"
	dombatch "github.com/kailas-cloud/ragchat/internal/domain/batch"
	"github.com/kailas-cloud/ragchat/internal/domain/filter"
	"github.com/kailas-cloud/ragchat/internal/localembed"
	logpkg "github.com/kailas-cloud/ragchat/internal/logger"
	"github.com/kailas-cloud/ragchat/internal/metrics"
	"github.com/kailas-cloud/ragchat/internal/repository/embcache"
	"github.com/kailas-cloud/ragchat/internal/repository/memindex"
	"github.com/kailas-cloud/ragchat/internal/repository/vectorindex"
	openaiemb "github.com/kailas-cloud/ragchat/internal/transport/openai"
	chatuc "github.com/kailas-cloud/ragchat/internal/usecase/chat"
	embeddinguc "github.com/kailas-cloud/ragchat/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/ragchat/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/ragchat/internal/usecase/ingest"
	retrievaluc "github.com/kailas-cloud/ragchat/internal/usecase/retrieval"
)

const defaultReadinessTimeout = 10 * time.Second

// Внутренние интерфейсы для подмены в тестах.
type vectorIndex interface {
	EnsureIndex(ctx context.Context) error
	Ping(ctx context.Context) error
	Upsert(ctx context.Context, vectors []domain.IndexedVector) error
	Query(ctx context.Context, vector []float32, topK int, filters filter.Expression) ([]domain.SearchResult, error)
	Delete(ctx context.Context, id string) error
	DeleteByMetadata(ctx context.Context, filters filter.Expression) (int, error)
	Find(ctx context.Context, filters filter.Expression, limit int) ([]domain.SearchResult, error)
	Stats(ctx context.Context) (domain.IndexStats, error)
}

type chatUseCase interface {
	Chat(ctx context.Context, query string) domain.ChatResponse
}

type ingestUseCase interface {
	Add(ctx context.Context, docs []domain.Document) (ingestuc.Report, error)
	DeleteByID(ctx context.Context, id string) error
	DeleteBySource(ctx context.Context, source string) (int, error)
	FindBySource(ctx context.Context, source string, limit int) ([]domain.SearchResult, error)
	Stats(ctx context.Context) (domain.IndexStats, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the ragchat entry point. It is safe for concurrent use.
type Client struct {
	store     db.Store // nil for the in-memory index
	chatSvc   chatUseCase
	ingestSvc ingestUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client. With Redis or Valkey it waits for the server and
// creates the vector index if needed; ctx bounds both.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		driver:           driverMemory,
		vectorDimensions: domain.DefaultVectorConfig().Dimensions,
	}
	for _, o := range opts {
		o.apply(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}
	if cfg.keyPrefix == "" {
		cfg.keyPrefix = domain.KeyPrefix
	}
	if cfg.vectorDimensions <= 0 {
		return nil, fmt.Errorf("vector dimensions must be positive, got %d", cfg.vectorDimensions)
	}
	if cfg.embedder != nil && cfg.openAIModel != "" {
		return nil, errors.New("WithEmbedder and WithOpenAI are mutually exclusive")
	}

	if cfg.metricsReg != nil {
		if err := metrics.Register(cfg.metricsReg); err != nil {
			return nil, err
		}
	}
	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, fmt.Errorf("init observer: %w", err)
	}

	store, index, err := createIndex(ctx, cfg)
	if err != nil {
		return nil, err
	}

	c, err := wireClient(cfg, store, index)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, err
	}
	c.obs = obs
	return c, nil
}

func createIndex(ctx context.Context, cfg *clientConfig) (db.Store, vectorIndex, error) {
	if cfg.driver == driverMemory {
		return nil, memindex.New(cfg.vectorDimensions, cfg.capacity), nil
	}

	flavor := dbRedis.FlavorRedis
	if cfg.driver == driverValkey {
		flavor = dbRedis.FlavorValkey
	}
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
		Flavor:   flavor,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create %s store: %w", cfg.driver, err)
	}

	timeout := cfg.readinessTimeout
	if timeout <= 0 {
		timeout = defaultReadinessTimeout
	}
	if err := store.WaitForReady(ctx, timeout); err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("%s not ready: %w: %w", cfg.driver, domain.ErrIndexUnavailable, err)
	}

	index := vectorindex.New(store, vectorindex.Config{
		StoragePrefix: cfg.keyPrefix,
		Name:          orDefault(cfg.indexName, "knowledge"),
		Dimensions:    cfg.vectorDimensions,
		Distance:      domain.DefaultVectorConfig().DistanceMetric,
		Algorithm:     domain.DefaultVectorConfig().Algorithm,
		HNSW: vectorindex.HNSWConfig{
			M:           positiveOr(cfg.hnswM, 16),
			EFConstruct: positiveOr(cfg.hnswEFConstruct, 200),
		},
		Capacity: cfg.capacity,
	})
	if err := index.EnsureIndex(ctx); err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("ensure index: %w", err)
	}
	return store, index, nil
}

func wireClient(cfg *clientConfig, store db.Store, index vectorIndex) (*Client, error) {
	logger := cfg.logger

	embedder, err := buildEmbedder(cfg, store)
	if err != nil {
		return nil, err
	}

	mode, err := chunker.ParseMode(cfg.chunkMode)
	if err != nil {
		return nil, err
	}
	contentCap := positiveOr(cfg.contentCap, domain.DefaultVectorConfig().MetadataContentCap)
	maxSize := cfg.chunkMax
	if maxSize <= 0 {
		maxSize = chunker.DefaultMaxWords
		if mode == chunker.ModeBytes {
			maxSize = contentCap
		}
	}
	if mode == chunker.ModeBytes && maxSize > contentCap {
		return nil, fmt.Errorf("chunk size of %d bytes exceeds the content cap of %d runes", maxSize, contentCap)
	}
	overlap := chunker.DefaultOverlap
	if cfg.chunkOverlap != nil {
		overlap = *cfg.chunkOverlap
	}
	chunks, err := chunker.New(mode, maxSize, overlap, chunker.WithContentCap(contentCap))
	if err != nil {
		return nil, fmt.Errorf("chunker: %w", err)
	}

	retrievalCfg := domain.DefaultRetrievalConfig()
	if cfg.topK > 0 {
		retrievalCfg.TopK = cfg.topK
	}
	if cfg.threshold != nil {
		retrievalCfg.SimilarityThreshold = *cfg.threshold
	}

	ingestSvc := ingestuc.New(index, chunks,
		domain.NewInstructionEmbedder(embedder, cfg.docInstr),
		ingestuc.Config{MaxBatchSize: cfg.maxBatchSize, Concurrency: cfg.concurrency, ContentCap: contentCap},
		logpkg.Named(logger, "ingest"))
	retrievalSvc := retrievaluc.New(index,
		domain.NewInstructionEmbedder(embedder, cfg.queryInstr),
		retrievalCfg, logpkg.Named(logger, "retrieval"))
	chatSvc := chatuc.New(retrievalSvc, answer.New(nil), retrievalCfg.TopK, logpkg.Named(logger, "chat"))
	healthSvc := healthuc.New(index, embedder, logpkg.Named(logger, "health"))

	return &Client{
		store:     store,
		chatSvc:   chatSvc,
		ingestSvc: ingestSvc,
		healthSvc: healthSvc,
	}, nil
}

// buildEmbedder assembles backend -> cache -> instrumentation.
func buildEmbedder(cfg *clientConfig, store db.Store) (*embeddinguc.InstrumentedEmbedder, error) {
	var (
		backend  domain.Embedder
		provider string
		model    string
	)
	switch {
	case cfg.embedder != nil:
		backend, provider, model = &embedderAdapter{inner: cfg.embedder}, "custom", "custom"
	case cfg.openAIModel != "":
		backend = openaiemb.NewEmbedder(&openaiemb.Config{
			APIKey:     cfg.openAIKey,
			BaseURL:    cfg.openAIBaseURL,
			Model:      cfg.openAIModel,
			Dimensions: cfg.vectorDimensions,
			Logger:     logpkg.Named(cfg.logger, "openai"),
		})
		provider, model = "openai", cfg.openAIModel
	default:
		local, err := localembed.New(cfg.vectorDimensions)
		if err != nil {
			return nil, fmt.Errorf("local embedder: %w", err)
		}
		backend, provider, model = local, "local", localembed.ModelName
	}

	cacheOn := store != nil && (cfg.cache == nil || *cfg.cache)
	if cacheOn {
		backend = embcache.New(backend, store,
			embcache.KeyPrefix(cfg.keyPrefix, model, cfg.vectorDimensions),
			metrics.EmbeddingCacheTotal, logpkg.Named(cfg.logger, "embcache"))
	}

	return embeddinguc.NewInstrumentedEmbedder(backend, provider, model, logpkg.Named(cfg.logger, "embedding")), nil
}

// Chat answers one question. It never fails: retrieval problems degrade to
// an answer without context.
func (c *Client) Chat(ctx context.Context, query string) ChatResponse {
	start := time.Now()
	ctx, usage := domain.NewContextWithUsage(ctx)
	resp := c.chatSvc.Chat(ctx, query)
	c.obs.observe("chat", start, nil)
	c.obs.usage("chat", usage)
	return resp
}

// AddDocuments chunks, embeds and indexes docs as one batch. Either every
// document is written or none is; on rejection the error is a *BatchError
// or wraps ErrBatchTooLarge.
func (c *Client) AddDocuments(ctx context.Context, docs []Document) (report IngestReport, err error) {
	defer func(start time.Time) { c.obs.observe("add_documents", start, err) }(time.Now())

	ctx, usage := domain.NewContextWithUsage(ctx)
	r, err := c.ingestSvc.Add(ctx, docs)
	report = IngestReport{Documents: r.Documents, Chunks: r.Chunks, Results: toItemResults(r.Results)}
	report.Written, report.Failed = dombatch.Count(r.Results)
	report.EmbeddingTokens = usage.TotalTokens()
	c.obs.usage("add_documents", usage)
	if err != nil {
		return report, fmt.Errorf("add documents: %w", err)
	}
	return report, nil
}

// DeleteDocument removes one chunk by ID. Deleting a missing ID is not an error.
func (c *Client) DeleteDocument(ctx context.Context, id string) (err error) {
	defer func(start time.Time) { c.obs.observe("delete_document", start, err) }(time.Now())
	return c.ingestSvc.DeleteByID(ctx, id)
}

// DeleteBySource removes every chunk ingested from source and returns how many were removed.
func (c *Client) DeleteBySource(ctx context.Context, source string) (n int, err error) {
	defer func(start time.Time) { c.obs.observe("delete_by_source", start, err) }(time.Now())
	return c.ingestSvc.DeleteBySource(ctx, source)
}

// FindBySource lists up to limit chunks ingested from source.
func (c *Client) FindBySource(ctx context.Context, source string, limit int) (res []SearchResult, err error) {
	defer func(start time.Time) { c.obs.observe("find_by_source", start, err) }(time.Now())
	return c.ingestSvc.FindBySource(ctx, source, limit)
}

// Stats reports the index size.
func (c *Client) Stats(ctx context.Context) (stats Stats, err error) {
	defer func(start time.Time) { c.obs.observe("stats", start, err) }(time.Now())
	return c.ingestSvc.Stats(ctx)
}

// Close releases the store connection. The in-memory index needs no cleanup.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func positiveOr(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
