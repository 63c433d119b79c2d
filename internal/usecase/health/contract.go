package health

import "context"

// IndexPinger is satisfied by both the in-memory index and the Redis/Valkey index.
type IndexPinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker reports whether the embedding backend can serve requests.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}
