package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{}
	cfg.ApplyDefaults()
	return cfg
}

func ptr[T any](v T) *T { return &v }

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.Database.Driver != DriverMemory {
		t.Errorf("expected driver=memory, got %q", cfg.Database.Driver)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Storage.KeyPrefix != "ragchat:" {
		t.Errorf("expected KeyPrefix='ragchat:', got %q", cfg.Storage.KeyPrefix)
	}
	if cfg.Index.Name != "knowledge" || cfg.Index.Dimensions != 384 {
		t.Errorf("unexpected index defaults: %+v", cfg.Index)
	}
	if cfg.Index.HNSWM != 16 || cfg.Index.HNSWEFConstruct != 200 {
		t.Errorf("unexpected HNSW defaults: %+v", cfg.Index)
	}
	if cfg.Index.MetadataContentCap != 2000 {
		t.Errorf("expected MetadataContentCap=2000, got %d", cfg.Index.MetadataContentCap)
	}
	if cfg.Embedding.Provider != ProviderLocal || cfg.Embedding.Concurrency != 4 {
		t.Errorf("unexpected embedding defaults: %+v", cfg.Embedding)
	}
	if cfg.Retrieval.TopK != 5 || cfg.Retrieval.Threshold() != 0.3 {
		t.Errorf("unexpected retrieval defaults: top_k=%d threshold=%v", cfg.Retrieval.TopK, cfg.Retrieval.Threshold())
	}
	if cfg.Chunking.Mode != "words" || cfg.Chunking.MaxSize != 500 || cfg.Chunking.OverlapOrDefault() != 100 {
		t.Errorf("unexpected chunking defaults: %+v", cfg.Chunking)
	}
	if cfg.Ingest.MaxBatchSize != 200 {
		t.Errorf("expected MaxBatchSize=200, got %d", cfg.Ingest.MaxBatchSize)
	}
}

func TestApplyDefaults_BytesMode(t *testing.T) {
	cfg := Config{Chunking: ChunkingConfig{Mode: "bytes"}}
	cfg.ApplyDefaults()
	if cfg.Chunking.MaxSize != 2000 {
		t.Errorf("expected the content cap of 2000 bytes, got %d", cfg.Chunking.MaxSize)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("bytes defaults must validate: %v", err)
	}

	cfg = Config{Index: IndexConfig{MetadataContentCap: 800}, Chunking: ChunkingConfig{Mode: "bytes"}}
	cfg.ApplyDefaults()
	if cfg.Chunking.MaxSize != 800 {
		t.Errorf("expected max_size to follow the content cap, got %d", cfg.Chunking.MaxSize)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		Database:  DatabaseConfig{Driver: DriverRedis, ReadinessTimeout: 15},
		Storage:   StorageConfig{KeyPrefix: "custom:"},
		Index:     IndexConfig{Dimensions: 768, HNSWM: 32},
		Retrieval: RetrievalConfig{TopK: 3, SimilarityThreshold: ptr(0.0)},
		Chunking:  ChunkingConfig{Overlap: ptr(0)},
	}
	cfg.ApplyDefaults()

	if cfg.Database.Driver != DriverRedis || cfg.Database.ReadinessTimeout != 15 {
		t.Errorf("database overridden: %+v", cfg.Database)
	}
	if cfg.Storage.KeyPrefix != "custom:" {
		t.Errorf("expected KeyPrefix='custom:', got %q", cfg.Storage.KeyPrefix)
	}
	if cfg.Index.Dimensions != 768 || cfg.Index.HNSWM != 32 {
		t.Errorf("index overridden: %+v", cfg.Index)
	}
	if cfg.Retrieval.TopK != 3 || cfg.Retrieval.Threshold() != 0 {
		t.Errorf("retrieval overridden: %+v", cfg.Retrieval)
	}
	if cfg.Chunking.OverlapOrDefault() != 0 {
		t.Errorf("explicit zero overlap must survive, got %d", cfg.Chunking.OverlapOrDefault())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mongo" }, "database.driver"},
		{"redis without addrs", func(c *Config) { c.Database.Driver = DriverRedis }, "database.addrs"},
		{"valkey with addrs", func(c *Config) {
			c.Database.Driver = DriverValkey
			c.Database.Addrs = []string{"localhost:6379"}
		}, ""},
		{"negative dimensions", func(c *Config) { c.Index.Dimensions = -1 }, "index.dimensions"},
		{"unknown provider", func(c *Config) { c.Embedding.Provider = "cohere" }, "embedding.provider"},
		{"openai without model", func(c *Config) { c.Embedding.Provider = ProviderOpenAI }, "embedding.model"},
		{"openai with model", func(c *Config) {
			c.Embedding.Provider = ProviderOpenAI
			c.Embedding.Model = "all-MiniLM-L6-v2"
		}, ""},
		{"threshold too high", func(c *Config) { c.Retrieval.SimilarityThreshold = ptr(1.5) }, "similarity_threshold"},
		{"threshold negative ok", func(c *Config) { c.Retrieval.SimilarityThreshold = ptr(-1.0) }, ""},
		{"bad chunk mode", func(c *Config) { c.Chunking.Mode = "sentences" }, "chunking.mode"},
		{"negative overlap", func(c *Config) { c.Chunking.Overlap = ptr(-1) }, "chunking.overlap"},
		{"window overlap too large", func(c *Config) {
			c.Chunking.Mode = "window"
			c.Chunking.Overlap = ptr(500)
		}, "window mode"},
		{"words overlap above max", func(c *Config) { c.Chunking.Overlap = ptr(800) }, "words mode"},
		{"words overlap equals max", func(c *Config) { c.Chunking.Overlap = ptr(500) }, "words mode"},
		{"bytes overlap ignored", func(c *Config) {
			c.Chunking.Mode = "bytes"
			c.Chunking.MaxSize = 1000
			c.Chunking.Overlap = ptr(5000)
		}, ""},
		{"bytes above content cap", func(c *Config) {
			c.Chunking.Mode = "bytes"
			c.Chunking.MaxSize = 5000
		}, "metadata_content_cap"},
		{"bytes at content cap", func(c *Config) {
			c.Chunking.Mode = "bytes"
			c.Chunking.MaxSize = 2000
		}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCacheEnabled(t *testing.T) {
	tests := []struct {
		driver string
		cache  *bool
		want   bool
	}{
		{DriverMemory, nil, false},
		{DriverMemory, ptr(true), false},
		{DriverRedis, nil, true},
		{DriverRedis, ptr(false), false},
		{DriverValkey, ptr(true), true},
	}
	for _, tt := range tests {
		cfg := Config{Database: DatabaseConfig{Driver: tt.driver}, Embedding: EmbeddingConfig{Cache: tt.cache}}
		if got := cfg.CacheEnabled(); got != tt.want {
			t.Errorf("driver=%s cache=%v: expected %v, got %v", tt.driver, tt.cache, tt.want, got)
		}
	}
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("RAGCHAT_TEST_ADDR", "cache:6380")
	data := []byte(`
database:
  driver: redis
  addrs: ["${RAGCHAT_TEST_ADDR}"]
  password: "${RAGCHAT_TEST_UNSET:-secret}"
embedding:
  provider: openai
  model: all-MiniLM-L6-v2
  api_key: "${RAGCHAT_TEST_UNSET}"
retrieval:
  similarity_threshold: 0.5
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Database.Addrs) != 1 || cfg.Database.Addrs[0] != "cache:6380" {
		t.Errorf("addr not expanded: %v", cfg.Database.Addrs)
	}
	if cfg.Database.Password != "secret" {
		t.Errorf("default not applied: %q", cfg.Database.Password)
	}
	if cfg.Embedding.APIKey != "" {
		t.Errorf("unset variable should expand to empty, got %q", cfg.Embedding.APIKey)
	}
	if cfg.Retrieval.Threshold() != 0.5 {
		t.Errorf("expected threshold 0.5, got %v", cfg.Retrieval.Threshold())
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("database:\n  driver: sqlite\n")); err == nil {
		t.Fatal("expected validation error")
	}
	if _, err := Parse([]byte("database: [")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.yaml")
	if err := os.WriteFile(path, []byte("index:\n  dimensions: 64\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Index.Dimensions != 64 {
		t.Errorf("expected 64 dimensions, got %d", cfg.Index.Dimensions)
	}
}

func TestLoad_ShippedConfigs(t *testing.T) {
	for _, env := range []string{"local", "prod"} {
		t.Run(env, func(t *testing.T) {
			t.Setenv("REDIS_ADDR", "localhost:6379")
			if _, err := LoadFile(findConfigPath(env)); err != nil {
				t.Fatalf("config/%s.yaml: %v", env, err)
			}
		})
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if GetEnv() != "local" {
		t.Errorf("expected local, got %q", GetEnv())
	}
	t.Setenv("ENV", "prod")
	if GetEnv() != "prod" {
		t.Errorf("expected prod, got %q", GetEnv())
	}
}
