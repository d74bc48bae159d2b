package compiler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics instruments compilations.
type Metrics struct {
	Compilations *prometheus.CounterVec
	Diagnostics  *prometheus.CounterVec
	Duration     *prometheus.HistogramVec
	Instances    *prometheus.GaugeVec
}

// NewMetrics registers the compiler metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Compilations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pipegen",
				Subsystem: "compiler",
				Name:      "compilations_total",
				Help:      "Total number of schema compilations by result",
			},
			[]string{"result"},
		),

		Diagnostics: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pipegen",
				Subsystem: "compiler",
				Name:      "diagnostics_total",
				Help:      "Total number of diagnostics reported, by code and severity",
			},
			[]string{"code", "severity"},
		),

		Duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "pipegen",
				Subsystem: "compiler",
				Name:      "phase_duration_seconds",
				Help:      "Time spent in each compiler phase",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"phase"},
		),

		Instances: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "pipegen",
				Subsystem: "compiler",
				Name:      "instances",
				Help:      "Number of stage instances in the last successful plan of a schema",
			},
			[]string{"schema"},
		),
	}
}
