package core

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/reverie-ai/reverie/pkg/metrics"
)

type Metrics struct {
	apiResponseTime        *prometheus.HistogramVec
	apiErrorCounter        *prometheus.CounterVec
	reflectResponseTime    *prometheus.HistogramVec
	reflectFallbackCounter *prometheus.CounterVec
	archiveFailureCounter  *prometheus.CounterVec
	partitionGauge         *prometheus.GaugeVec
	captureSessionGauge    *prometheus.GaugeVec
}

func NewMetrics(ns, system string) *Metrics {
	// setup metric
	metrics.SetupMetricsManager(ns, system, prometheus.DefaultRegisterer.(*prometheus.Registry))

	m := &Metrics{
		apiResponseTime:        metrics.NewHistogramVec("api_response_time", []string{"api"}),
		apiErrorCounter:        metrics.NewCounterVec("api_error", []string{"method", "api", "status"}),
		reflectResponseTime:    metrics.NewHistogramVec("reflect_response_time", []string{"driver"}),
		reflectFallbackCounter: metrics.NewCounterVec("reflect_fallback", []string{"op"}),
		archiveFailureCounter:  metrics.NewCounterVec("archive_failure", []string{"op"}),
		partitionGauge:         metrics.NewGaugeVec("journal_partitions", nil),
		captureSessionGauge:    metrics.NewGaugeVec("capture_sessions", nil),
	}

	return m
}

func (m *Metrics) ApiResponseTimer(api string) *prometheus.Timer {
	return prometheus.NewTimer(m.apiResponseTime.WithLabelValues(api))
}

func (m *Metrics) ApiErrorInc(method, api string, status int) {
	m.apiErrorCounter.WithLabelValues(method, api, strconv.Itoa(status)).Inc()
}

func (m *Metrics) ReflectResponseTimer(driver string) *prometheus.Timer {
	return prometheus.NewTimer(m.reflectResponseTime.WithLabelValues(driver))
}

func (m *Metrics) ReflectFallbackInc(op string) {
	m.reflectFallbackCounter.WithLabelValues(op).Inc()
}

func (m *Metrics) ArchiveFailureInc(op string) {
	m.archiveFailureCounter.WithLabelValues(op).Inc()
}

func (m *Metrics) SetPartitionCount(n int) {
	m.partitionGauge.WithLabelValues().Set(float64(n))
}

func (m *Metrics) SetCaptureSessionCount(n int) {
	m.captureSessionGauge.WithLabelValues().Set(float64(n))
}
