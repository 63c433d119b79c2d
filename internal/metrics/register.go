package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Register adds every ragchat collector to reg. Calling it again with the
// same registerer is a no-op. A nil reg means prometheus.DefaultRegisterer.
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	collectors := append(embeddingCollectors(), ragCollectors()...)
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return fmt.Errorf("register metrics: %w", err)
		}
	}
	return nil
}
