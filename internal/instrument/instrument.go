// Package instrument holds the Prometheus collectors for ingestion and queries.
package instrument

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values.
const (
	OutcomeOK          = "ok"
	OutcomeUnavailable = "unavailable"
)

// Metrics are the pipeline and query collectors.
type Metrics struct {
	Ingestions   *prometheus.CounterVec
	Transactions prometheus.Counter
	Dropped      *prometheus.CounterVec
	Queries      *prometheus.CounterVec
	Duration     *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Ingestions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pesalens",
			Name:      "ingestions_total",
			Help:      "Statement ingestions by outcome (ok or failure reason).",
		}, []string{"outcome"}),
		Transactions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pesalens",
			Name:      "ingested_transactions_total",
			Help:      "Transactions persisted by successful ingestions.",
		}),
		Dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pesalens",
			Name:      "dropped_rows_total",
			Help:      "Rows discarded during ingestion, by cause.",
		}, []string{"cause"}),
		Queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pesalens",
			Name:      "queries_total",
			Help:      "Query runs by name and outcome.",
		}, []string{"query", "outcome"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pesalens",
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
	}
	if reg != nil {
		reg.MustRegister(m.Ingestions, m.Transactions, m.Dropped, m.Queries, m.Duration)
	}
	return m
}

// Nop returns unregistered collectors, for callers that do not export metrics.
func Nop() *Metrics { return New(nil) }
