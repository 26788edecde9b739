package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
)

// MetricsObserver exports run events as Prometheus metrics. It is an
// ordinary RunObserver; attach it with WithObserver (composing with
// others via MultiObserver) and register it once per Registerer.
type MetricsObserver struct {
	runs     *prometheus.CounterVec
	errors   *prometheus.CounterVec
	memoHits *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetricsObserver creates and registers the observer's collectors.
func NewMetricsObserver(reg prometheus.Registerer) (*MetricsObserver, error) {
	o := &MetricsObserver{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "morphline",
			Name:      "runs_total",
			Help:      "Completed pipeline runs, by pipeline and outcome.",
		}, []string{"pipeline", "outcome"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "morphline",
			Name:      "morph_errors_total",
			Help:      "Errors raised by morphs, by pipeline and morph.",
		}, []string{"pipeline", "morph"}),
		memoHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "morphline",
			Name:      "memo_hits_total",
			Help:      "Memoization cache hits, by pipeline and morph.",
		}, []string{"pipeline", "morph"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "morphline",
			Name:      "morph_duration_seconds",
			Help:      "Morph execution time, by pipeline and morph.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
		}, []string{"pipeline", "morph"}),
	}
	for _, c := range []prometheus.Collector{o.runs, o.errors, o.memoHits, o.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (o *MetricsObserver) OnEvent(e RunEvent) {
	switch e.Type {
	case EventRunComplete:
		o.runs.WithLabelValues(e.Pipeline, "ok").Inc()
	case EventRunError:
		o.runs.WithLabelValues(e.Pipeline, "error").Inc()
		if e.Morph != "" {
			o.errors.WithLabelValues(e.Pipeline, e.Morph).Inc()
		}
	case EventMemoHit:
		o.memoHits.WithLabelValues(e.Pipeline, e.Morph).Inc()
	case EventMorphDone:
		o.duration.WithLabelValues(e.Pipeline, e.Morph).Observe(e.Elapsed.Seconds())
	}
}
