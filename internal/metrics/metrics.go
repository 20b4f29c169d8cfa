// Package metrics provides Prometheus metrics for the bot.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the bot.
type Metrics struct {
	CommandsTotal    *prometheus.CounterVec
	DispatchDuration *prometheus.HistogramVec
	EventsIgnored    prometheus.Counter
	HandlerErrors    *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates and registers all metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		CommandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bot_commands_total",
				Help: "Dispatched commands by name and outcome.",
			},
			[]string{"command", "status"},
		),
		DispatchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bot_dispatch_duration_seconds",
				Help:    "Command dispatch duration by command name.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"command"},
		),
		EventsIgnored: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "bot_events_ignored_total",
				Help: "Inbound events dropped by the dispatch filter.",
			},
		),
		HandlerErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bot_handler_errors_total",
				Help: "Handler faults caught at the dispatch boundary.",
			},
			[]string{"command"},
		),
		registry: reg,
	}

	reg.MustRegister(m.CommandsTotal)
	reg.MustRegister(m.DispatchDuration)
	reg.MustRegister(m.EventsIgnored)
	reg.MustRegister(m.HandlerErrors)

	return m
}

// RegisterStorageFlushes exposes the store's flush counter.
func (m *Metrics) RegisterStorageFlushes(count func() float64) {
	m.registry.MustRegister(prometheus.NewCounterFunc(
		prometheus.CounterOpts{
			Name: "bot_storage_flushes_total",
			Help: "Completed writes of the bot store document.",
		},
		count,
	))
}

// Handler returns an http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordCommand increments the command counter.
func (m *Metrics) RecordCommand(command, status string) {
	if m == nil {
		return
	}
	m.CommandsTotal.WithLabelValues(command, status).Inc()
}

// RecordIgnored counts a filtered inbound event.
func (m *Metrics) RecordIgnored() {
	if m == nil {
		return
	}
	m.EventsIgnored.Inc()
}

// RecordHandlerError counts a handler fault.
func (m *Metrics) RecordHandlerError(command string) {
	if m == nil {
		return
	}
	m.HandlerErrors.WithLabelValues(command).Inc()
}

// ObserveDispatch records dispatch duration.
func (m *Metrics) ObserveDispatch(command string, seconds float64) {
	if m == nil {
		return
	}
	m.DispatchDuration.WithLabelValues(command).Observe(seconds)
}
