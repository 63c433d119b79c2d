package ragchat

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

const (
	driverMemory = "memory"
	driverRedis  = "redis"
	driverValkey = "valkey"
)

type clientConfig struct {
	driver           string
	addrs            []string
	password         string
	readinessTimeout time.Duration

	embedder      Embedder
	openAIBaseURL string
	openAIKey     string
	openAIModel   string
	docInstr      string
	queryInstr    string
	cache         *bool

	vectorDimensions int
	indexName        string
	capacity         int
	hnswM            int
	hnswEFConstruct  int

	topK      int
	threshold *float64

	chunkMode    string
	chunkMax     int
	chunkOverlap *int

	maxBatchSize int
	concurrency  int
	contentCap   int
	keyPrefix    string

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithMemory keeps the vector index in process memory. This is the default.
func WithMemory() Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverMemory
		c.addrs = nil
		c.password = ""
	})
}

// WithRedis stores vectors in Redis 8+ with the query engine.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverRedis
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithValkey stores vectors in Valkey with valkey-search.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverValkey
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithReadinessTimeout bounds how long New waits for Redis or Valkey. Default: 10s.
func WithReadinessTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.readinessTimeout = d
	})
}

// WithEmbedder sets a custom embedding provider.
// Its vectors must have the length set by WithVectorDimensions.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithOpenAI embeds through an OpenAI-compatible API. An empty baseURL
// means the public OpenAI endpoint.
func WithOpenAI(baseURL, apiKey, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.openAIBaseURL = baseURL
		c.openAIKey = apiKey
		c.openAIModel = model
	})
}

// WithInstructions prepends fixed instructions to document and query texts
// before embedding. Needed by instruction-tuned embedding models.
func WithInstructions(document, query string) Option {
	return optionFunc(func(c *clientConfig) {
		c.docInstr = document
		c.queryInstr = query
	})
}

// WithEmbeddingCache toggles the embedding cache. It is only available with
// Redis or Valkey, where it is on by default.
func WithEmbeddingCache(enabled bool) Option {
	return optionFunc(func(c *clientConfig) {
		c.cache = &enabled
	})
}

// WithVectorDimensions sets the embedding dimension. Default: 384.
func WithVectorDimensions(dim int) Option {
	return optionFunc(func(c *clientConfig) {
		c.vectorDimensions = dim
	})
}

// WithIndex names the vector index and sets the capacity used to report
// fullness. Zero capacity means unbounded.
func WithIndex(name string, capacity int) Option {
	return optionFunc(func(c *clientConfig) {
		c.indexName = name
		c.capacity = capacity
	})
}

// WithHNSW configures HNSW index parameters (M and EF construction).
// Defaults: M=16, EFConstruct=200.
func WithHNSW(m, efConstruct int) Option {
	return optionFunc(func(c *clientConfig) {
		c.hnswM = m
		c.hnswEFConstruct = efConstruct
	})
}

// WithRetrieval sets how many chunks are retrieved per question and the
// minimum cosine similarity a chunk needs. Defaults: 5 and 0.3.
func WithRetrieval(topK int, threshold float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.topK = topK
		c.threshold = &threshold
	})
}

// WithChunking sets the chunking mode ("words", "window" or "bytes"), the
// maximum chunk size and the overlap. Defaults: words, 500, 100.
func WithChunking(mode string, maxSize, overlap int) Option {
	return optionFunc(func(c *clientConfig) {
		c.chunkMode = mode
		c.chunkMax = maxSize
		c.chunkOverlap = &overlap
	})
}

// WithMaxBatchSize caps the number of documents per AddDocuments call.
// Default: 200.
func WithMaxBatchSize(size int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxBatchSize = size
	})
}

// WithIngestTuning sets how many documents are embedded in parallel and
// how many runes of chunk content the index keeps. Defaults: 4 and 2000.
func WithIngestTuning(concurrency, contentCap int) Option {
	return optionFunc(func(c *clientConfig) {
		c.concurrency = concurrency
		c.contentCap = contentCap
	})
}

// WithKeyPrefix sets the prefix of every key written to Redis or Valkey.
// Default: "ragchat:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithLogger sets the logger. Default: no logging.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers the service and client metrics with reg.
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
