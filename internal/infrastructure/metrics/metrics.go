package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iho/cipherledger/internal/domain"
)

const namespace = "cipherledger"

// Metrics holds the pipeline Prometheus metrics. It implements
// usecase.Recorder.
type Metrics struct {
	// Pipeline metrics
	TransfersEncoded      prometheus.Counter
	TransfersMaterialized prometheus.Counter
	MaterializeDuration   prometheus.Histogram
	PipelineErrors        *prometheus.CounterVec

	// Cache metrics
	CacheLookups *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits prometheus.Counter
}

// New creates the metrics and registers them with reg. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		TransfersEncoded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfers_encoded_total",
			Help:      "Total number of transfer intents encoded into field-encrypted legs",
		}),
		TransfersMaterialized: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfers_materialized_total",
			Help:      "Total number of transfers persisted as two ledger entries",
		}),
		MaterializeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "materialize_duration_seconds",
			Help:      "Duration of decrypt, seal and persist for one transfer",
			Buckets:   prometheus.DefBuckets,
		}),
		PipelineErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pipeline_errors_total",
				Help:      "Total number of pipeline failures by stage and error kind",
			},
			[]string{"stage", "kind"},
		),
		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "entry_cache_lookups_total",
				Help:      "Entry cache lookups by result",
			},
			[]string{"result"},
		),
		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_hits_total",
			Help:      "Requests rejected by the intake rate limiter",
		}),
	}
}

// TransferEncoded records an encoded transfer.
func (m *Metrics) TransferEncoded() {
	m.TransfersEncoded.Inc()
}

// TransferMaterialized records a persisted transfer.
func (m *Metrics) TransferMaterialized(duration time.Duration) {
	m.TransfersMaterialized.Inc()
	m.MaterializeDuration.Observe(duration.Seconds())
}

// PipelineFailed records a failure at stage.
func (m *Metrics) PipelineFailed(stage string, kind domain.Kind) {
	m.PipelineErrors.WithLabelValues(stage, string(kind)).Inc()
}

// CacheHit records an entry cache hit.
func (m *Metrics) CacheHit() {
	m.CacheLookups.WithLabelValues("hit").Inc()
}

// CacheMiss records an entry cache miss.
func (m *Metrics) CacheMiss() {
	m.CacheLookups.WithLabelValues("miss").Inc()
}

// RateLimited records a rejected request.
func (m *Metrics) RateLimited() {
	m.RateLimitHits.Inc()
}
