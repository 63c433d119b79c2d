package health

import (
	"context"

	"go.uber.org/zap"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates at least one failing component.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Component names in Report.Checks.
const (
	ComponentIndex     = "vector_index"
	ComponentEmbedding = "embedding"
)

// Report aggregates health check results.
type Report struct {
	Status Status                 `json:"status"`
	Checks map[string]CheckResult `json:"checks"`
}

// Service coordinates health checks.
type Service struct {
	index     IndexPinger
	embedding EmbeddingChecker
	logger    *zap.Logger
}

// New creates a Service. embedding can be nil.
func New(index IndexPinger, embedding EmbeddingChecker, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{index: index, embedding: embedding, logger: logger}
}

// Check pings the vector index and the embedding provider.
func (s *Service) Check(ctx context.Context) Report {
	checks := map[string]CheckResult{ComponentIndex: s.run(ComponentIndex, s.index.Ping(ctx))}
	if s.embedding != nil {
		checks[ComponentEmbedding] = s.run(ComponentEmbedding, s.embedding.HealthCheck(ctx))
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	return Report{Status: status, Checks: checks}
}

func (s *Service) run(component string, err error) CheckResult {
	if err != nil {
		s.logger.Warn("Health check failed", zap.String("component", component), zap.Error(err))
		return CheckError
	}
	return CheckOK
}
