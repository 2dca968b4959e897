package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/iho/cipherledger/internal/domain"
)

func TestNewRegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()

	m := New(registry)
	m.TransferEncoded()

	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	if len(metricFamilies) == 0 {
		t.Fatalf("expected registered metrics, got none")
	}
}

func TestRecorder(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.TransferEncoded()
	m.TransferEncoded()
	m.TransferMaterialized(25 * time.Millisecond)
	m.PipelineFailed("materialize", domain.KindConflict)
	m.PipelineFailed("materialize", domain.KindConflict)
	m.PipelineFailed("relay", domain.KindRelay)

	if got := testutil.ToFloat64(m.TransfersEncoded); got != 2 {
		t.Fatalf("transfers encoded = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.TransfersMaterialized); got != 1 {
		t.Fatalf("transfers materialized = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.PipelineErrors.WithLabelValues("materialize", "CONFLICT")); got != 2 {
		t.Fatalf("conflict errors = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.PipelineErrors.WithLabelValues("relay", "RELAY")); got != 1 {
		t.Fatalf("relay errors = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.MaterializeDuration); got != 1 {
		t.Fatalf("duration series = %d, want 1", got)
	}
}

func TestCacheAndRateLimitCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.CacheHit()
	m.CacheMiss()
	m.CacheMiss()
	m.RateLimited()

	if got := testutil.ToFloat64(m.CacheLookups.WithLabelValues("miss")); got != 2 {
		t.Fatalf("cache misses = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.RateLimitHits); got != 1 {
		t.Fatalf("rate limit hits = %v, want 1", got)
	}
}
