package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the custodian's counters on a private registry, so
// tests can build as many instances as they need.
type Metrics struct {
	registry *prometheus.Registry

	Deposits    *prometheus.CounterVec
	Operations  *prometheus.CounterVec
	Withdrawals *prometheus.CounterVec
	Failures    *prometheus.CounterVec
}

// New creates a metric set backed by its own registry
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		Deposits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "custodia_deposits_total",
			Help: "Accepted deposits by path (receive or fallback).",
		}, []string{"path"}),
		Operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "custodia_operations_total",
			Help: "Dispatched named operations.",
		}, []string{"operation"}),
		Withdrawals: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "custodia_withdrawals_total",
			Help: "Completed withdrawals by asset kind.",
		}, []string{"asset"}),
		Failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "custodia_failures_total",
			Help: "Failed calls by reason.",
		}, []string{"reason"}),
	}
}

// Handler exposes the registry in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
