// Package metrics exposes run counters over a private prometheus registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg *prometheus.Registry

	Runs              prometheus.Counter
	RunFailures       prometheus.Counter
	RowsProcessed     prometheus.Counter
	RowsUnassigned    prometheus.Counter
	BarcodesRewritten prometheus.Counter
	RunDuration       prometheus.Histogram
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	runs := prometheus.NewCounter(prometheus.CounterOpts{Name: "promo_runs_total"})
	failures := prometheus.NewCounter(prometheus.CounterOpts{Name: "promo_run_failures_total"})
	rows := prometheus.NewCounter(prometheus.CounterOpts{Name: "promo_rows_processed_total"})
	unassigned := prometheus.NewCounter(prometheus.CounterOpts{Name: "promo_rows_unassigned_total"})
	rewritten := prometheus.NewCounter(prometheus.CounterOpts{Name: "promo_barcodes_rewritten_total"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "promo_run_duration_seconds",
		Buckets: prometheus.DefBuckets,
	})

	r.MustRegister(runs, failures, rows, unassigned, rewritten, duration)
	return &Registry{
		reg:               r,
		Runs:              runs,
		RunFailures:       failures,
		RowsProcessed:     rows,
		RowsUnassigned:    unassigned,
		BarcodesRewritten: rewritten,
		RunDuration:       duration,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
