package database

import "time"

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// Health describes the outcome of a connectivity probe.  Latency is the
// round trip in milliseconds and is only set for healthy probes.
type Health struct {
	Status  string `json:"status"`
	Latency int64  `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Healthy reports whether the probe succeeded.
func (h Health) Healthy() bool { return h.Status == StatusHealthy }

// probe times fn and folds any error into an unhealthy descriptor.
func probe(fn func() error) Health {
	start := time.Now()
	if err := fn(); err != nil {
		return Health{Status: StatusUnhealthy, Error: err.Error()}
	}
	return Health{Status: StatusHealthy, Latency: time.Since(start).Milliseconds()}
}
