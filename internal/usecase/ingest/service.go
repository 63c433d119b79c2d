package ingest

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/ragchat/internal/domain"
	dombatch "github.com/kailas-cloud/ragchat/internal/domain/batch"
	"github.com/kailas-cloud/ragchat/internal/domain/filter"
	"github.com/kailas-cloud/ragchat/internal/metrics"
)

// Defaults for Config.
const (
	DefaultMaxBatchSize = 200
	DefaultConcurrency  = 4
)

// Config tunes ingestion.
type Config struct {
	MaxBatchSize int
	Concurrency  int // parallel embedding calls, one document each
	ContentCap   int // runes of chunk content kept as metadata
}

// Report summarises an ingestion call.
type Report struct {
	Documents int
	Chunks    int
	Results   []dombatch.Result
}

// Service ingests documents into the vector index.
type Service struct {
	index   VectorStore
	chunker Chunker
	embed   domain.Embedder
	cfg     Config
	logger  *zap.Logger
}

// New creates an ingestion service. Zero config fields get defaults.
func New(index VectorStore, chunker Chunker, embed domain.Embedder, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = DefaultMaxBatchSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.ContentCap <= 0 {
		cfg.ContentCap = domain.DefaultVectorConfig().MetadataContentCap
	}
	return &Service{index: index, chunker: chunker, embed: embed, cfg: cfg, logger: logger}
}

// Add validates, chunks, embeds and stores docs. The batch is all-or-nothing:
// on any failure nothing is written and the error is a *domain.BatchError
// (or wraps ErrBatchTooLarge). The report carries per-document results either way.
func (s *Service) Add(ctx context.Context, docs []domain.Document) (Report, error) {
	report := Report{Documents: len(docs), Results: make([]dombatch.Result, len(docs))}
	if len(docs) == 0 {
		return report, nil
	}

	if len(docs) > s.cfg.MaxBatchSize {
		err := fmt.Errorf("%d documents, max %d: %w", len(docs), s.cfg.MaxBatchSize, domain.ErrBatchTooLarge)
		for i := range docs {
			report.Results[i] = dombatch.NewError(docKey(i, &docs[i]), err)
		}
		s.count("error", len(docs))
		return report, err
	}

	var invalid []domain.ItemError
	for i := range docs {
		if err := docs[i].Validate(); err != nil {
			invalid = append(invalid, domain.ItemError{Index: i, ID: docKey(i, &docs[i]), Err: err})
		}
	}
	if len(invalid) > 0 {
		return s.reject(report, docs, invalid)
	}

	chunks := make([][]domain.Chunk, len(docs))
	for i := range docs {
		chunks[i] = s.chunker.Chunks(docs[i])
	}

	vectors, failed := s.embedAll(ctx, chunks)
	if len(failed) > 0 {
		for j := range failed {
			failed[j].ID = docKey(failed[j].Index, &docs[failed[j].Index])
		}
		return s.reject(report, docs, failed)
	}

	if err := s.index.Upsert(ctx, vectors); err != nil {
		for i := range docs {
			report.Results[i] = dombatch.NewError(docKey(i, &docs[i]), fmt.Errorf("upsert: %w", err))
		}
		s.count("error", len(docs))
		s.logger.Error("Failed to store ingestion batch", zap.Int("documents", len(docs)), zap.Error(err))
		return report, fmt.Errorf("upsert %d vectors: %w", len(vectors), err)
	}

	for i := range docs {
		report.Results[i] = dombatch.NewOK(docKey(i, &docs[i]), len(chunks[i]))
	}
	report.Chunks = len(vectors)
	s.count("ok", len(docs))
	metrics.IngestChunksTotal.Add(float64(len(vectors)))
	s.logger.Info("Ingested documents", zap.Int("documents", len(docs)), zap.Int("chunks", len(vectors)))
	return report, nil
}

// embedAll embeds each document's chunks in its own goroutine. The first
// failure cancels the rest; every failed document is reported.
func (s *Service) embedAll(ctx context.Context, chunks [][]domain.Chunk) ([]domain.IndexedVector, []domain.ItemError) {
	embeddings := make([][][]float32, len(chunks))
	errs := make([]error, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i := range chunks {
		if len(chunks[i]) == 0 {
			continue
		}
		g.Go(func() error {
			texts := make([]string, len(chunks[i]))
			for j, c := range chunks[i] {
				texts[j] = c.Content
			}
			res, err := domain.EmbedAll(gctx, s.embed, texts)
			if err != nil {
				errs[i] = fmt.Errorf("embed %d chunks: %w", len(texts), err)
				return errs[i]
			}
			domain.UsageFromContext(ctx).AddTokens(res.TotalTokens)
			embeddings[i] = res.Embeddings
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		var failed []domain.ItemError
		for i, e := range errs {
			if e != nil {
				failed = append(failed, domain.ItemError{Index: i, Err: e})
			}
		}
		return nil, failed
	}

	var vectors []domain.IndexedVector
	for i := range chunks {
		for j, c := range chunks[i] {
			vectors = append(vectors, domain.NewIndexedVector(c, embeddings[i][j], s.cfg.ContentCap))
		}
	}
	return vectors, nil
}

// reject fills results for a batch that is refused as a whole.
func (s *Service) reject(report Report, docs []domain.Document, failed []domain.ItemError) (Report, error) {
	byIndex := make(map[int]error, len(failed))
	for _, f := range failed {
		byIndex[f.Index] = f.Err
	}
	for i := range docs {
		err, ok := byIndex[i]
		if !ok {
			err = fmt.Errorf("not written: %w", domain.ErrBatchFailed)
		}
		report.Results[i] = dombatch.NewError(docKey(i, &docs[i]), err)
	}
	s.count("error", len(docs))
	s.logger.Info("Rejected ingestion batch", zap.Int("documents", len(docs)), zap.Int("failed", len(failed)))
	return report, domain.NewBatchError(len(docs), failed)
}

// DeleteByID removes a single chunk. Missing IDs are not an error.
func (s *Service) DeleteByID(ctx context.Context, id string) error {
	if err := s.index.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	return nil
}

// DeleteBySource removes every chunk ingested from source.
func (s *Service) DeleteBySource(ctx context.Context, source string) (int, error) {
	f, err := filter.BySource(source)
	if err != nil {
		return 0, fmt.Errorf("source filter: %w", err)
	}
	n, err := s.index.DeleteByMetadata(ctx, f)
	if err != nil {
		return 0, fmt.Errorf("delete by source: %w", err)
	}
	s.logger.Info("Deleted chunks by source", zap.String("source", source), zap.Int("deleted", n))
	return n, nil
}

// FindBySource lists chunks ingested from source.
func (s *Service) FindBySource(ctx context.Context, source string, limit int) ([]domain.SearchResult, error) {
	f, err := filter.BySource(source)
	if err != nil {
		return nil, fmt.Errorf("source filter: %w", err)
	}
	res, err := s.index.Find(ctx, f, limit)
	if err != nil {
		return nil, fmt.Errorf("find by source: %w", err)
	}
	return res, nil
}

// Stats reports the vector index size.
func (s *Service) Stats(ctx context.Context) (domain.IndexStats, error) {
	st, err := s.index.Stats(ctx)
	if err != nil {
		return domain.IndexStats{}, fmt.Errorf("index stats: %w", err)
	}
	return st, nil
}

func (s *Service) count(status string, n int) {
	metrics.IngestDocumentsTotal.WithLabelValues(status).Add(float64(n))
}

func docKey(i int, d *domain.Document) string {
	if d.ID != "" {
		return d.ID
	}
	return strconv.Itoa(i)
}
