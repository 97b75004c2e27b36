package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Collector) float64 {
	t.Helper()

	ch := make(chan prometheus.Metric, 1)
	c.Collect(ch)
	close(ch)

	var total float64
	for m := range ch {
		metric := &dto.Metric{}
		require.NoError(t, m.Write(metric))
		total += metric.GetCounter().GetValue()
	}
	return total
}

func TestNewHistoryMetrics_ReRegistrationReturnsExisting(t *testing.T) {
	reg := prometheus.NewRegistry()

	first := NewHistoryMetricsWithRegisterer(reg)
	second := NewHistoryMetricsWithRegisterer(reg)

	first.RecordPublishFailure()
	second.RecordPublishFailure()

	require.Equal(t, 2.0, counterValue(t, first.publishFailures))
}

func TestRecordOperation(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHistoryMetricsWithRegisterer(reg)

	m.RecordOperation("append", OutcomeOK)
	m.RecordOperation("append", OutcomeOK)
	m.RecordOperation("append", OutcomeInvalid)

	metric := &dto.Metric{}
	require.NoError(t, m.operations.WithLabelValues("append", OutcomeOK).Write(metric))
	require.Equal(t, 2.0, metric.GetCounter().GetValue())

	metric = &dto.Metric{}
	require.NoError(t, m.operations.WithLabelValues("append", OutcomeInvalid).Write(metric))
	require.Equal(t, 1.0, metric.GetCounter().GetValue())
}

func TestObserveAndGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHistoryMetricsWithRegisterer(reg)

	m.ObserveStorage("list", 3*time.Millisecond)
	m.ObserveRequest("/api/health", "GET", 200, time.Millisecond)
	m.SetHistorySize(7)

	families, err := reg.Gather()
	require.NoError(t, err)

	byName := map[string]*dto.MetricFamily{}
	for _, f := range families {
		byName[f.GetName()] = f
	}

	require.Contains(t, byName, "store_history_storage_duration_seconds")
	require.Equal(t, uint64(1), byName["store_history_storage_duration_seconds"].GetMetric()[0].GetHistogram().GetSampleCount())

	require.Contains(t, byName, "store_http_request_duration_seconds")
	labels := byName["store_http_request_duration_seconds"].GetMetric()[0].GetLabel()
	values := map[string]string{}
	for _, l := range labels {
		values[l.GetName()] = l.GetValue()
	}
	require.Equal(t, "200", values["status"])

	require.Equal(t, 7.0, byName["store_history_records"].GetMetric()[0].GetGauge().GetValue())
}

func TestNilMetricsAreNoop(t *testing.T) {
	var m *HistoryMetrics
	require.NotPanics(t, func() {
		m.RecordOperation("append", OutcomeOK)
		m.ObserveStorage("append", time.Millisecond)
		m.RecordPublishFailure()
		m.ObserveRequest("/", "GET", 200, time.Millisecond)
		m.SetHistorySize(1)
	})
}
