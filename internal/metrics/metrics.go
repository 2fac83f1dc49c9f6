// Package metrics holds Prometheus instruments used across the
// configuration layer.  All collectors register with the global
// registry, so importing this package in main.go is enough to expose
// them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ActiveSources = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "config_active_sources",
			Help: "Number of configuration sources currently polling.",
		})

	SourcePollTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "config_source_poll_total",
			Help: "Cumulative number of successful source poll cycles.",
		}, []string{"source"})

	SourcePollErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "config_source_poll_errors_total",
			Help: "Cumulative number of failed source poll cycles.",
		}, []string{"source"})

	FieldReadTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "config_field_read_total",
			Help: "Cumulative number of typed field reads.",
		})

	ValidationFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "config_validation_failures_total",
			Help: "Cumulative number of reads rejected by validation or allowed-value checks.",
		})
)

func init() {
	prometheus.MustRegister(
		ActiveSources,
		SourcePollTotal,
		SourcePollErrorsTotal,
		FieldReadTotal,
		ValidationFailuresTotal,
	)
}
