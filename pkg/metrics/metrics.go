// Package metrics exposes wizard counters on a private prometheus registry.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "formwizard"

// Metrics records catalog lookups, submission steps and HTTP requests.
type Metrics struct {
	registry *prometheus.Registry

	CatalogHits   prometheus.Counter
	CatalogMisses prometheus.Counter
	CatalogErrors prometheus.Counter
	SubmitSteps   *prometheus.CounterVec
	Requests      *prometheus.CounterVec
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		CatalogHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_cache_hits_total",
			Help:      "Option lists served from the local cache",
		}),
		CatalogMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_cache_misses_total",
			Help:      "Option lists fetched from the backend",
		}),
		CatalogErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_fetch_errors_total",
			Help:      "Option list fetches that failed",
		}),
		SubmitSteps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submit_steps_total",
			Help:      "Submission calls by step and outcome",
		}, []string{"step", "outcome"}),
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Backend requests by method and status code",
		}, []string{"method", "status"}),
	}
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) CatalogHit()   { m.CatalogHits.Inc() }
func (m *Metrics) CatalogMiss()  { m.CatalogMisses.Inc() }
func (m *Metrics) CatalogError() { m.CatalogErrors.Inc() }

// ObserveStep counts one submission step outcome.
func (m *Metrics) ObserveStep(step, outcome string) {
	m.SubmitSteps.WithLabelValues(step, outcome).Inc()
}

// ObserveRequest counts one backend request. Status 0 marks a transport
// failure.
func (m *Metrics) ObserveRequest(method string, status int) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.Requests.WithLabelValues(method, label).Inc()
}
