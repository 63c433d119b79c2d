package main

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragchat"
	"github.com/kailas-cloud/ragchat/internal/config"
	"github.com/kailas-cloud/ragchat/internal/knowledge"
	logpkg "github.com/kailas-cloud/ragchat/internal/logger"
	"github.com/kailas-cloud/ragchat/internal/version"
)

// maxQueryBytes bounds a single stdin line.
const maxQueryBytes = 64 * 1024

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting "+version.String(),
		zap.String("env", env),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("embedding_provider", cfg.Embedding.Provider),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := ragchat.New(ctx, clientOptions(&cfg, logger)...)
	if err != nil {
		logger.Fatal("Failed to create client", zap.Error(err))
	}
	defer client.Close()

	health := client.Health(ctx)
	if health.Status != "ok" {
		logger.Warn("Starting degraded", zap.Any("checks", health.Checks))
	}

	if err := seed(ctx, client, &cfg, logger); err != nil {
		logger.Fatal("Failed to seed knowledge base", zap.Error(err))
	}

	if err := serve(ctx, client, logger); err != nil {
		logger.Fatal("Failed to read queries", zap.Error(err))
	}
	logger.Info("Stopped")
}

// clientOptions translates the file configuration into client options.
func clientOptions(cfg *config.Config, logger *zap.Logger) []ragchat.Option {
	opts := []ragchat.Option{
		ragchat.WithLogger(logger),
		ragchat.WithPrometheus(prometheus.DefaultRegisterer),
		ragchat.WithVectorDimensions(cfg.Index.Dimensions),
		ragchat.WithIndex(cfg.Index.Name, cfg.Index.Capacity),
		ragchat.WithHNSW(cfg.Index.HNSWM, cfg.Index.HNSWEFConstruct),
		ragchat.WithKeyPrefix(cfg.Storage.KeyPrefix),
		ragchat.WithRetrieval(cfg.Retrieval.TopK, cfg.Retrieval.Threshold()),
		ragchat.WithChunking(cfg.Chunking.Mode, cfg.Chunking.MaxSize, cfg.Chunking.OverlapOrDefault()),
		ragchat.WithMaxBatchSize(cfg.Ingest.MaxBatchSize),
		ragchat.WithIngestTuning(cfg.Embedding.Concurrency, cfg.Index.MetadataContentCap),
		ragchat.WithInstructions(cfg.Embedding.DocumentInstruction, cfg.Embedding.QueryInstruction),
		ragchat.WithEmbeddingCache(cfg.CacheEnabled()),
		ragchat.WithReadinessTimeout(time.Duration(cfg.Database.ReadinessTimeout) * time.Second),
	}

	switch cfg.Database.Driver {
	case config.DriverRedis:
		opts = append(opts, ragchat.WithRedis(cfg.Database.Addrs[0], cfg.Database.Password))
	case config.DriverValkey:
		opts = append(opts, ragchat.WithValkey(cfg.Database.Addrs[0], cfg.Database.Password))
	default:
		opts = append(opts, ragchat.WithMemory())
	}

	if cfg.Embedding.Provider == config.ProviderOpenAI {
		opts = append(opts, ragchat.WithOpenAI(cfg.Embedding.BaseURL, cfg.Embedding.APIKey, cfg.Embedding.Model))
	}
	return opts
}

// seed loads the configured documents, or the built-in samples into an
// empty index when no seed file is configured.
func seed(ctx context.Context, client *ragchat.Client, cfg *config.Config, logger *zap.Logger) error {
	var docs []ragchat.Document
	if path := cfg.Knowledge.SeedPath; path != "" {
		loaded, err := knowledge.Load(path)
		if err != nil {
			return err
		}
		docs = loaded
	} else {
		stats, err := client.Stats(ctx)
		if err != nil {
			return err
		}
		if stats.Count > 0 {
			logger.Info("Knowledge base already populated", zap.Int("vectors", stats.Count))
			return nil
		}
		docs = ragchat.SampleDocuments()
	}

	chunks := 0
	for start := 0; start < len(docs); start += cfg.Ingest.MaxBatchSize {
		end := min(start+cfg.Ingest.MaxBatchSize, len(docs))
		report, err := client.AddDocuments(ctx, docs[start:end])
		if err != nil {
			return err
		}
		chunks += report.Chunks
	}
	logger.Info("Knowledge base seeded", zap.Int("documents", len(docs)), zap.Int("chunks", chunks))
	return nil
}

// serve answers one query per stdin line with one JSON response per stdout line.
func serve(ctx context.Context, client *ragchat.Client, logger *zap.Logger) error {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 4096), maxQueryBytes)
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)

	for line := 1; scanner.Scan(); line++ {
		if ctx.Err() != nil {
			return nil
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		qctx := logpkg.ContextWithLogger(ctx, logger.With(zap.Int("line", line)))
		if err := enc.Encode(client.Chat(qctx, query)); err != nil {
			return err
		}
	}
	return scanner.Err()
}
