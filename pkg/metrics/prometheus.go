package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	predictions *prometheus.CounterVec
	riskScore   prometheus.Histogram
	errorsTotal *prometheus.CounterVec
	cache       *prometheus.CounterVec
	latency     *prometheus.HistogramVec
}

// New registers the recorder's collectors on reg; nil means the default
// registry.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		predictions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loanpredictor_predictions_total",
				Help: "Scored applications by risk category, outcome and source",
			},
			[]string{"category", "eligible", "source"},
		),
		riskScore: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "loanpredictor_risk_score",
				Help:    "Distribution of computed risk scores",
				Buckets: prometheus.LinearBuckets(0, 10, 11),
			},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loanpredictor_errors_total",
				Help: "Errors by kind",
			},
			[]string{"kind"},
		),
		cache: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loanpredictor_cache_requests_total",
				Help: "Assessment cache lookups by result",
			},
			[]string{"result"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "loanpredictor_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"operation"},
		),
	}
}

// RecordPrediction counts one scored application.
func (r *Recorder) RecordPrediction(category string, eligible bool, source string) {
	r.predictions.WithLabelValues(category, strconv.FormatBool(eligible), source).Inc()
}

// RecordRiskScore observes a risk score.
func (r *Recorder) RecordRiskScore(score float64) {
	r.riskScore.Observe(score)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordCacheResult counts a cache hit or miss.
func (r *Recorder) RecordCacheResult(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cache.WithLabelValues(result).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
