package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"valgate/internal/core/preprocessing"
)

// metrics is a per-server prometheus registry
type metrics struct {
	registry *prometheus.Registry
	outcomes *prometheus.CounterVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "valgate",
			Name:      "preprocessing_total",
			Help:      "Number of preprocessing runs by profile and outcome",
		}, []string{"profile", "outcome"}),
	}
	m.registry.MustRegister(m.outcomes)
	return m
}

func (m *metrics) observe(profile string, outcome preprocessing.Outcome) {
	m.outcomes.WithLabelValues(profile, outcome.String()).Inc()
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
