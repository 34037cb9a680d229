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

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestMetrics(t *testing.T) *GatewayMetrics {
	t.Helper()
	return New(Config{Namespace: "test", Registerer: prometheus.NewRegistry()})
}

func TestNew_InitializesEveryMetric(t *testing.T) {
	m := newTestMetrics(t)

	if m.RequestsTotal == nil || m.RequestDuration == nil {
		t.Fatal("request metrics not initialized")
	}
	if m.AdapterCallsTotal == nil || m.AdapterCallDuration == nil {
		t.Fatal("adapter metrics not initialized")
	}
	if m.SyncJobsActive == nil || m.SyncJobDuration == nil {
		t.Fatal("sync job metrics not initialized")
	}
}

func TestRecordRequest_IncrementsCounterAndObservesDuration(t *testing.T) {
	m := newTestMetrics(t)

	m.RecordRequest(RequestMetrics{Protocol: "mcp", Method: "create_media_buy", DurationSeconds: 0.2, Success: true})
	m.RecordRequest(RequestMetrics{Protocol: "mcp", Method: "create_media_buy", DurationSeconds: 0.1, Success: false})

	if got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("mcp", "create_media_buy", StatusSuccess)); got != 1 {
		t.Errorf("success count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("mcp", "create_media_buy", StatusError)); got != 1 {
		t.Errorf("error count = %v, want 1", got)
	}
}

func TestRecordAdapterCall_LabelsByAdapterAndOperation(t *testing.T) {
	m := newTestMetrics(t)

	m.RecordAdapterCall(AdapterCallMetrics{Adapter: "google_ad_manager", Operation: "create_media_buy", DurationSeconds: 1.5, Success: true})

	if got := testutil.ToFloat64(m.AdapterCallsTotal.WithLabelValues("google_ad_manager", "create_media_buy", StatusSuccess)); got != 1 {
		t.Errorf("adapter call count = %v, want 1", got)
	}
}

func TestRecordSyncJobStartAndEnd_TracksActiveGauge(t *testing.T) {
	m := newTestMetrics(t)

	m.RecordSyncJobStart("google_ad_manager")
	if got := testutil.ToFloat64(m.SyncJobsActive.WithLabelValues("google_ad_manager")); got != 1 {
		t.Errorf("active gauge = %v, want 1 after start", got)
	}

	m.RecordSyncJobEnd(SyncJobMetrics{Adapter: "google_ad_manager", DurationSeconds: 12.5, Success: true})
	if got := testutil.ToFloat64(m.SyncJobsActive.WithLabelValues("google_ad_manager")); got != 0 {
		t.Errorf("active gauge = %v, want 0 after end", got)
	}
}

func TestNoOpRecorder_DoesNotPanic(t *testing.T) {
	var r Recorder = NoOpRecorder{}
	r.RecordRequest(RequestMetrics{Protocol: "a2a", Method: "get_signals", Success: true})
	r.RecordAdapterCall(AdapterCallMetrics{Adapter: "mock", Operation: "create_media_buy", Success: true})
	r.RecordSyncJobStart("mock")
	r.RecordSyncJobEnd(SyncJobMetrics{Adapter: "mock", Success: true})
}
