package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Database drivers.
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverValkey = "valkey"
)

// Embedding providers.
const (
	ProviderLocal  = "local"
	ProviderOpenAI = "openai"
)

// Config holds the ragchat configuration.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Database  DatabaseConfig  `yaml:"database"`
	Storage   StorageConfig   `yaml:"storage"`
	Index     IndexConfig     `yaml:"index"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Knowledge KnowledgeConfig `yaml:"knowledge"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// DatabaseConfig holds vector store connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // memory, redis, valkey (default: memory)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// IndexConfig holds vector index settings.
type IndexConfig struct {
	Name               string `yaml:"name"`
	Dimensions         int    `yaml:"dimensions"`
	HNSWM              int    `yaml:"hnsw_m"`
	HNSWEFConstruct    int    `yaml:"hnsw_ef_construction"`
	Capacity           int    `yaml:"capacity"` // 0 = unbounded
	MetadataContentCap int    `yaml:"metadata_content_cap"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider            string `yaml:"provider"` // local, openai (default: local)
	APIKey              string `yaml:"api_key"`
	BaseURL             string `yaml:"base_url"`
	Model               string `yaml:"model"`
	DocumentInstruction string `yaml:"document_instruction"`
	QueryInstruction    string `yaml:"query_instruction"`
	Cache               *bool  `yaml:"cache"` // nil = on unless the driver is memory
	Concurrency         int    `yaml:"concurrency"`
}

// CacheEnabled reports whether embeddings are cached in the key-value store.
func (c *Config) CacheEnabled() bool {
	if c.Embedding.Cache != nil {
		return *c.Embedding.Cache && c.Database.Driver != DriverMemory
	}
	return c.Database.Driver != DriverMemory
}

// RetrievalConfig holds retrieval tuning.
type RetrievalConfig struct {
	TopK                int      `yaml:"top_k"`
	SimilarityThreshold *float64 `yaml:"similarity_threshold"` // nil = 0.3
}

// Threshold returns the configured similarity cut-off.
func (r RetrievalConfig) Threshold() float64 {
	if r.SimilarityThreshold == nil {
		return defaultThreshold
	}
	return *r.SimilarityThreshold
}

// ChunkingConfig holds chunker settings.
type ChunkingConfig struct {
	Mode    string `yaml:"mode"` // words, window, bytes (default: words)
	MaxSize int    `yaml:"max_size"`
	Overlap *int   `yaml:"overlap"` // nil = 100
}

// OverlapOrDefault returns the configured overlap.
func (c ChunkingConfig) OverlapOrDefault() int {
	if c.Overlap == nil {
		return defaultOverlap
	}
	return *c.Overlap
}

// IngestConfig holds ingestion limits.
type IngestConfig struct {
	MaxBatchSize int `yaml:"max_batch_size"`
}

// KnowledgeConfig points at optional seed documents.
type KnowledgeConfig struct {
	SeedPath string `yaml:"seed_path"`
}

const (
	defaultThreshold = 0.3
	defaultOverlap   = 100
)

// Load reads configuration from a YAML file by environment name (local, dev, prod).
// A .env file in the working directory is loaded first; it never overrides
// variables already set.
func Load(env string) (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse expands env variables, decodes YAML, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = DriverMemory
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "ragchat:"
	}
	if c.Index.Name == "" {
		c.Index.Name = "knowledge"
	}
	if c.Index.Dimensions == 0 {
		c.Index.Dimensions = 384
	}
	if c.Index.HNSWM <= 0 {
		c.Index.HNSWM = 16
	}
	if c.Index.HNSWEFConstruct <= 0 {
		c.Index.HNSWEFConstruct = 200
	}
	if c.Index.MetadataContentCap <= 0 {
		c.Index.MetadataContentCap = 2000
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = ProviderLocal
	}
	if c.Embedding.Concurrency <= 0 {
		c.Embedding.Concurrency = 4
	}
	if c.Retrieval.TopK <= 0 {
		c.Retrieval.TopK = 5
	}
	if c.Chunking.Mode == "" {
		c.Chunking.Mode = "words"
	}
	if c.Chunking.MaxSize <= 0 {
		if c.Chunking.Mode == "bytes" {
			c.Chunking.MaxSize = c.Index.MetadataContentCap
		} else {
			c.Chunking.MaxSize = 500
		}
	}
	if c.Ingest.MaxBatchSize <= 0 {
		c.Ingest.MaxBatchSize = 200
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverMemory:
	case DriverRedis, DriverValkey:
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required for driver %q", c.Database.Driver)
		}
	default:
		return fmt.Errorf("database.driver must be memory, redis or valkey, got %q", c.Database.Driver)
	}
	if c.Index.Dimensions <= 0 {
		return fmt.Errorf("index.dimensions must be positive, got %d", c.Index.Dimensions)
	}
	switch c.Embedding.Provider {
	case ProviderLocal:
	case ProviderOpenAI:
		if c.Embedding.Model == "" {
			return fmt.Errorf("embedding.model is required for provider %q", ProviderOpenAI)
		}
	default:
		return fmt.Errorf("embedding.provider must be local or openai, got %q", c.Embedding.Provider)
	}
	if t := c.Retrieval.Threshold(); t < -1 || t > 1 {
		return fmt.Errorf("retrieval.similarity_threshold must be within [-1, 1], got %v", t)
	}
	switch c.Chunking.Mode {
	case "words", "window", "bytes":
	default:
		return fmt.Errorf("chunking.mode must be words, window or bytes, got %q", c.Chunking.Mode)
	}
	overlap := c.Chunking.OverlapOrDefault()
	if overlap < 0 {
		return fmt.Errorf("chunking.overlap must not be negative, got %d", overlap)
	}
	if c.Chunking.Mode != "bytes" && overlap >= c.Chunking.MaxSize {
		return fmt.Errorf("chunking.overlap (%d) must be smaller than max_size (%d) in %s mode",
			overlap, c.Chunking.MaxSize, c.Chunking.Mode)
	}
	// UTF-8 bytes never undercount runes, so a byte limit within the cap always fits.
	if c.Chunking.Mode == "bytes" && c.Chunking.MaxSize > c.Index.MetadataContentCap {
		return fmt.Errorf("chunking.max_size (%d bytes) must not exceed index.metadata_content_cap (%d)",
			c.Chunking.MaxSize, c.Index.MetadataContentCap)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
