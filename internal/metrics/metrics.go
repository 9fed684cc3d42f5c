// Package metrics exposes socket traffic counters in Prometheus format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the server's collectors. All methods are safe on a nil
// receiver so components can run without metrics in tests.
type Metrics struct {
	registry *prometheus.Registry

	messages   *prometheus.CounterVec
	responses  *prometheus.CounterVec
	dropped    prometheus.Counter
	connsLive  prometheus.Gauge
	connsTotal prometheus.Counter
}

// New creates and registers the collectors under namespace.
func New(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prometheus.BuildFQName(namespace, "socket", "messages_total"),
			Help: "Inbound socket messages by tag.",
		}, []string{"tag"}),
		responses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prometheus.BuildFQName(namespace, "socket", "responses_total"),
			Help: "Outbound envelopes by message type.",
		}, []string{"message"}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prometheus.BuildFQName(namespace, "socket", "responses_dropped_total"),
			Help: "Envelopes dropped because the connection was closed or congested.",
		}),
		connsLive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: prometheus.BuildFQName(namespace, "socket", "connections_live_count"),
			Help: "Currently open socket connections.",
		}),
		connsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prometheus.BuildFQName(namespace, "socket", "connections_total"),
			Help: "Socket connections accepted since start.",
		}),
	}

	m.registry.MustRegister(
		m.messages,
		m.responses,
		m.dropped,
		m.connsLive,
		m.connsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) MessageReceived(tag string) {
	if m == nil {
		return
	}
	m.messages.WithLabelValues(tag).Inc()
}

func (m *Metrics) ResponseSent(msg string) {
	if m == nil {
		return
	}
	m.responses.WithLabelValues(msg).Inc()
}

func (m *Metrics) ResponseDropped() {
	if m == nil {
		return
	}
	m.dropped.Inc()
}

func (m *Metrics) ConnectionOpened() {
	if m == nil {
		return
	}
	m.connsLive.Inc()
	m.connsTotal.Inc()
}

func (m *Metrics) ConnectionClosed() {
	if m == nil {
		return
	}
	m.connsLive.Dec()
}
