/*
Copyright 2026 Altaira Labs.

SPDX-License-Identifier: Apache-2.0

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package metrics holds the gateway's Prometheus instrumentation: facade
// request counts/latency, adapter call counts/latency, and catalog sync job
// gauges.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// GatewayMetrics holds every Prometheus metric the gateway exports.
type GatewayMetrics struct {
	// Facade request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Adapter call metrics
	AdapterCallsTotal   *prometheus.CounterVec
	AdapterCallDuration *prometheus.HistogramVec

	// Catalog sync job metrics
	SyncJobsActive  *prometheus.GaugeVec
	SyncJobDuration *prometheus.HistogramVec
}

// Config configures the gateway metrics.
type Config struct {
	Namespace string
	// RequestDurationBuckets for facade request latency. Defaults to
	// DefaultRequestDurationBuckets when nil.
	RequestDurationBuckets []float64
	// AdapterDurationBuckets for upstream ad-server call latency. Defaults
	// to DefaultAdapterDurationBuckets when nil.
	AdapterDurationBuckets []float64
	// SyncJobDurationBuckets for catalog sync job duration. Defaults to
	// DefaultSyncJobDurationBuckets when nil.
	SyncJobDurationBuckets []float64
	// Registerer collectors register against. Defaults to
	// prometheus.DefaultRegisterer; tests pass a fresh prometheus.NewRegistry()
	// to avoid colliding with metrics registered by other tests.
	Registerer prometheus.Registerer
}

// DefaultRequestDurationBuckets covers typical facade request latencies.
var DefaultRequestDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

// DefaultAdapterDurationBuckets covers upstream ad-server RPCs, which run
// slower and more variably than the facade's own request handling.
var DefaultAdapterDurationBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

// DefaultSyncJobDurationBuckets covers catalog/delivery sync jobs, which can
// run from seconds to several minutes depending on tenant catalog size.
var DefaultSyncJobDurationBuckets = []float64{1, 5, 15, 30, 60, 120, 300, 600}

// New creates and registers every gateway Prometheus metric.
func New(cfg Config) *GatewayMetrics {
	requestBuckets := cfg.RequestDurationBuckets
	if requestBuckets == nil {
		requestBuckets = DefaultRequestDurationBuckets
	}
	adapterBuckets := cfg.AdapterDurationBuckets
	if adapterBuckets == nil {
		adapterBuckets = DefaultAdapterDurationBuckets
	}
	syncBuckets := cfg.SyncJobDurationBuckets
	if syncBuckets == nil {
		syncBuckets = DefaultSyncJobDurationBuckets
	}

	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "adcp_gateway"
	}

	reg := cfg.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &GatewayMetrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of facade requests",
		}, []string{"protocol", "method", "status"}),

		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Facade request duration in seconds",
			Buckets:   requestBuckets,
		}, []string{"protocol", "method"}),

		AdapterCallsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "adapter_calls_total",
			Help:      "Total number of upstream ad-server adapter calls",
		}, []string{"adapter", "operation", "status"}),

		AdapterCallDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "adapter_call_duration_seconds",
			Help:      "Upstream ad-server adapter call duration in seconds",
			Buckets:   adapterBuckets,
		}, []string{"adapter", "operation"}),

		SyncJobsActive: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sync_jobs_active",
			Help:      "Number of currently running catalog/delivery sync jobs",
		}, []string{"adapter"}),

		SyncJobDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_job_duration_seconds",
			Help:      "Catalog/delivery sync job duration in seconds",
			Buckets:   syncBuckets,
		}, []string{"adapter", "status"}),
	}
}

// RequestMetrics describes one completed facade request.
type RequestMetrics struct {
	Protocol        string
	Method          string
	DurationSeconds float64
	Success         bool
}

// RecordRequest records one completed facade request.
func (m *GatewayMetrics) RecordRequest(rm RequestMetrics) {
	status := statusOf(rm.Success)
	m.RequestsTotal.WithLabelValues(rm.Protocol, rm.Method, status).Inc()
	m.RequestDuration.WithLabelValues(rm.Protocol, rm.Method).Observe(rm.DurationSeconds)
}

// AdapterCallMetrics describes one completed upstream adapter call.
type AdapterCallMetrics struct {
	Adapter         string
	Operation       string
	DurationSeconds float64
	Success         bool
}

// RecordAdapterCall records one completed upstream adapter call.
func (m *GatewayMetrics) RecordAdapterCall(acm AdapterCallMetrics) {
	status := statusOf(acm.Success)
	m.AdapterCallsTotal.WithLabelValues(acm.Adapter, acm.Operation, status).Inc()
	m.AdapterCallDuration.WithLabelValues(acm.Adapter, acm.Operation).Observe(acm.DurationSeconds)
}

// RecordSyncJobStart marks a catalog/delivery sync job as started.
func (m *GatewayMetrics) RecordSyncJobStart(adapter string) {
	m.SyncJobsActive.WithLabelValues(adapter).Inc()
}

// SyncJobMetrics describes one completed sync job.
type SyncJobMetrics struct {
	Adapter         string
	DurationSeconds float64
	Success         bool
}

// RecordSyncJobEnd marks a catalog/delivery sync job as finished.
func (m *GatewayMetrics) RecordSyncJobEnd(sjm SyncJobMetrics) {
	m.SyncJobsActive.WithLabelValues(sjm.Adapter).Dec()
	m.SyncJobDuration.WithLabelValues(sjm.Adapter, statusOf(sjm.Success)).Observe(sjm.DurationSeconds)
}

func statusOf(success bool) string {
	if success {
		return StatusSuccess
	}
	return StatusError
}

// Recorder is the interface for recording gateway metrics, allowing a no-op
// implementation when metrics collection is disabled.
type Recorder interface {
	RecordRequest(rm RequestMetrics)
	RecordAdapterCall(acm AdapterCallMetrics)
	RecordSyncJobStart(adapter string)
	RecordSyncJobEnd(sjm SyncJobMetrics)
}

// NoOpRecorder discards every recorded metric.
type NoOpRecorder struct{}

func (NoOpRecorder) RecordRequest(RequestMetrics)         {}
func (NoOpRecorder) RecordAdapterCall(AdapterCallMetrics) {}
func (NoOpRecorder) RecordSyncJobStart(string)            {}
func (NoOpRecorder) RecordSyncJobEnd(SyncJobMetrics)      {}

var _ Recorder = (*GatewayMetrics)(nil)
var _ Recorder = NoOpRecorder{}
