// Package metrics exposes feed counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "feed"

// Like operation results.
const (
	ResultOK       = "ok"
	ResultNotFound = "not_found"
	ResultError    = "error"
)

type Metrics struct {
	LikeOps         *prometheus.CounterVec
	MessagesCreated prometheus.Counter
	WSClients       prometheus.Gauge

	gatherer prometheus.Gatherer
}

// New registers the feed collectors on a fresh registry together with the
// Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		LikeOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "like_operations_total",
			Help:      "Like and unlike calls by outcome.",
		}, []string{"op", "result"}),
		MessagesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_created_total",
			Help:      "Messages posted to the feed.",
		}),
		WSClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_clients",
			Help:      "Connected feed websocket clients.",
		}),
		gatherer: reg,
	}
	reg.MustRegister(m.LikeOps, m.MessagesCreated, m.WSClients)
	return m
}

// ObserveLike records the outcome of a like or unlike call.
func (m *Metrics) ObserveLike(op, result string) {
	m.LikeOps.WithLabelValues(op, result).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
