package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	dvolComputed *prometheus.CounterVec
	dvolRejected *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	lastDvol     *prometheus.GaugeVec
	lastFVov     *prometheus.GaugeVec
	latency      *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		dvolComputed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "volpull_dvol_computed_total",
				Help: "Total number of hourly DVOL values computed",
			},
			[]string{"asset", "quality"},
		),
		dvolRejected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "volpull_dvol_rejected_total",
				Help: "Total number of snapshot hours rejected by quality thresholds",
			},
			[]string{"asset", "reason"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "volpull_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastDvol: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "volpull_last_dvol",
				Help: "Last computed DVOL level per asset",
			},
			[]string{"asset"},
		),
		lastFVov: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "volpull_last_f_vov",
				Help: "Last computed VoV scaling factor per asset",
			},
			[]string{"asset"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "volpull_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordDvolComputed records a successful hourly DVOL computation.
func (r *Recorder) RecordDvolComputed(asset, quality string) {
	r.dvolComputed.WithLabelValues(asset, quality).Inc()
}

// RecordDvolRejected records a snapshot hour that failed quality thresholds.
func (r *Recorder) RecordDvolRejected(asset, reason string) {
	r.dvolRejected.WithLabelValues(asset, reason).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordDvol records the latest DVOL level for an asset.
func (r *Recorder) RecordDvol(asset string, dvol float64) {
	r.lastDvol.WithLabelValues(asset).Set(dvol)
}

// RecordFVov records the latest VoV scaling factor for an asset.
func (r *Recorder) RecordFVov(asset string, f float64) {
	r.lastFVov.WithLabelValues(asset).Set(f)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
