package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options control monitoring module configuration.
type Options struct {
	// Gatherer serves /metrics. Defaults to the process-wide Prometheus registry, where the
	// application metrics and the Go and process collectors are registered.
	Gatherer prometheus.Gatherer
	// Version is reported by the health endpoints.
	Version string
}

// Module bundles the Prometheus exposition handler with the health probes.
type Module struct {
	gatherer prometheus.Gatherer
	health   *HealthManager
	version  string
	started  time.Time
}

// NewModule constructs a monitoring module.
func NewModule(opts Options) *Module {
	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Module{
		gatherer: gatherer,
		health:   NewHealthManager(),
		version:  opts.Version,
		started:  time.Now(),
	}
}

// Handler returns an http.Handler serving Prometheus metrics for this module.
func (m *Module) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Health exposes the health manager responsible for liveness and readiness probes.
func (m *Module) Health() *HealthManager {
	if m == nil {
		return nil
	}
	return m.health
}

// Version reports the application version given at construction.
func (m *Module) Version() string {
	if m == nil {
		return ""
	}
	return m.version
}

// Uptime reports how long the module has been running.
func (m *Module) Uptime() time.Duration {
	if m == nil {
		return 0
	}
	return time.Since(m.started)
}
