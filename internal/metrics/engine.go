package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Engine holds search engine call metrics.
type Engine struct {
	Operations *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
	Cache      *prometheus.CounterVec
}

// NewEngine creates engine metrics and registers them on reg.
// Collectors already registered on reg are reused, so several clients may share one registry.
func NewEngine(reg prometheus.Registerer) (*Engine, error) {
	m := &Engine{
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "esb",
			Subsystem: "engine",
			Name:      "operations_total",
			Help:      "Total search engine operations by type and status.",
		}, []string{"operation", "status"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "esb",
			Subsystem: "engine",
			Name:      "operation_duration_seconds",
			Help:      "Search engine operation duration in seconds.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"operation"}),
		Cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "esb",
			Name:      "response_cache_total",
			Help:      "Response cache hits and misses",
		}, []string{"result"}), // "hit" / "miss"
	}
	if err := registerOrReuse(reg, &m.Operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.Duration); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.Cache); err != nil {
		return nil, err
	}
	return m, nil
}

// Observe records one engine operation. Safe on a nil receiver.
func (m *Engine) Observe(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.Operations.WithLabelValues(op, status).Inc()
	m.Duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// CacheResult records a response cache lookup. Safe on a nil receiver.
func (m *Engine) CacheResult(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.Cache.WithLabelValues("hit").Inc()
		return
	}
	m.Cache.WithLabelValues("miss").Inc()
}

// registerOrReuse registers a collector or reuses an existing one.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("esb: metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("esb: register metric: %w", err)
	}
	return nil
}
