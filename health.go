package ragchat

import (
	"context"
	"time"
)

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            `json:"status"` // "ok" or "degraded"
	Checks map[string]string `json:"checks"` // component → "ok"/"error"
}

// Health checks the vector index and the embedding provider.
func (c *Client) Health(ctx context.Context) HealthStatus {
	start := time.Now()
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	c.obs.observe("health", start, nil)
	return HealthStatus{
		Status: string(report.Status),
		Checks: checks,
	}
}
