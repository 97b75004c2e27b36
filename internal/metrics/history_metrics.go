// Package metrics описывает Prometheus-метрики сервиса истории покупок.
package metrics

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Исходы операций для лейбла outcome.
const (
	OutcomeOK       = "ok"
	OutcomeInvalid  = "invalid"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// HistoryMetrics содержит метрики операций журнала истории и HTTP-слоя.
type HistoryMetrics struct {
	operations      *prometheus.CounterVec
	storageDuration *prometheus.HistogramVec
	publishFailures prometheus.Counter
	requestDuration *prometheus.HistogramVec
	historySize     prometheus.Gauge
}

// NewHistoryMetrics регистрирует метрики в глобальном реестре.
func NewHistoryMetrics() *HistoryMetrics {
	return NewHistoryMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewHistoryMetricsWithRegisterer регистрирует метрики в заданном реестре.
// Повторная регистрация возвращает уже существующие коллекторы.
func NewHistoryMetricsWithRegisterer(registerer prometheus.Registerer) *HistoryMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &HistoryMetrics{
		operations: register(registerer, "store_history_operations_total", prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "store_history_operations_total",
			Help: "Shopping history operations by kind and outcome",
		}, []string{"operation", "outcome"})),
		storageDuration: register(registerer, "store_history_storage_duration_seconds", prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "store_history_storage_duration_seconds",
			Help:    "Duration of history repository calls in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"})),
		publishFailures: register(registerer, "store_history_publish_failures_total", prometheus.NewCounter(prometheus.CounterOpts{
			Name: "store_history_publish_failures_total",
			Help: "History events that could not be published to Kafka",
		})),
		requestDuration: register(registerer, "store_http_request_duration_seconds", prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "store_http_request_duration_seconds",
			Help:    "HTTP request duration by route, method and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"})),
		historySize: register(registerer, "store_history_records", prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "store_history_records",
			Help: "Number of records observed in the history journal on the last full read",
		})),
	}
}

func register[T prometheus.Collector](registerer prometheus.Registerer, name string, collector T) T {
	err := registerer.Register(collector)
	if err == nil {
		return collector
	}

	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		existing, ok := already.ExistingCollector.(T)
		if !ok {
			panic(fmt.Sprintf("collector %q already registered with unexpected type", name))
		}
		return existing
	}
	panic(fmt.Sprintf("register collector %q: %v", name, err))
}

// RecordOperation считает операцию журнала с исходом.
func (m *HistoryMetrics) RecordOperation(operation, outcome string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, outcome).Inc()
}

// ObserveStorage записывает длительность обращения к репозиторию.
func (m *HistoryMetrics) ObserveStorage(operation string, duration time.Duration) {
	if m == nil {
		return
	}
	m.storageDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordPublishFailure считает неотправленное событие.
func (m *HistoryMetrics) RecordPublishFailure() {
	if m == nil {
		return
	}
	m.publishFailures.Inc()
}

// ObserveRequest записывает длительность HTTP-запроса.
func (m *HistoryMetrics) ObserveRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(duration.Seconds())
}

// SetHistorySize выставляет число записей в журнале.
func (m *HistoryMetrics) SetHistorySize(n int) {
	if m == nil {
		return
	}
	m.historySize.Set(float64(n))
}
