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

package tracing

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// newTestProvider creates a Provider backed by an in-memory span exporter so
// that tests can inspect the attributes that are actually recorded on spans.
func newTestProvider(t *testing.T) (*Provider, *tracetest.InMemoryExporter) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
	)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	return &Provider{
		tp:     tp,
		tracer: tp.Tracer(TracerName),
	}, exporter
}

// findAttr looks up an attribute by key in a span's attribute set.
func findAttr(span tracetest.SpanStub, key string) (attribute.Value, bool) {
	for _, a := range span.Attributes {
		if string(a.Key) == key {
			return a.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{Enabled: false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider == nil {
		t.Fatal("expected non-nil provider")
	}
	if provider.Tracer() == nil {
		t.Fatal("expected non-nil tracer")
	}
}

func TestNewProvider_Defaults(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{Enabled: false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := provider.Shutdown(context.Background()); err != nil {
		t.Fatalf("unexpected error on shutdown: %v", err)
	}
}

func TestProvider_StartExecutorSpan(t *testing.T) {
	provider, exporter := newTestProvider(t)

	_, span := provider.StartExecutorSpan(context.Background(), "create_media_buy", "acme")
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}

	s := spans[0]
	if s.Name != "executor.create_media_buy" {
		t.Errorf("expected span name 'executor.create_media_buy', got %q", s.Name)
	}
	if s.SpanKind != trace.SpanKindServer {
		t.Errorf("expected SpanKindServer, got %v", s.SpanKind)
	}

	op, ok := findAttr(s, "adcp.operation")
	if !ok || op.AsString() != "create_media_buy" {
		t.Errorf("expected adcp.operation='create_media_buy', got %v (ok=%v)", op, ok)
	}
	tenant, ok := findAttr(s, "adcp.tenant_id")
	if !ok || tenant.AsString() != "acme" {
		t.Errorf("expected adcp.tenant_id='acme', got %v (ok=%v)", tenant, ok)
	}
}

func TestProvider_StartAdapterSpan(t *testing.T) {
	provider, exporter := newTestProvider(t)

	_, span := provider.StartAdapterSpan(context.Background(), "google_ad_manager", "submit_creatives")
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}

	s := spans[0]
	if s.Name != "adapter.google_ad_manager.submit_creatives" {
		t.Errorf("expected span name 'adapter.google_ad_manager.submit_creatives', got %q", s.Name)
	}
	if s.SpanKind != trace.SpanKindClient {
		t.Errorf("expected SpanKindClient, got %v", s.SpanKind)
	}

	adapterAttr, ok := findAttr(s, "adcp.adapter")
	if !ok || adapterAttr.AsString() != "google_ad_manager" {
		t.Errorf("expected adcp.adapter='google_ad_manager', got %v (ok=%v)", adapterAttr, ok)
	}
}

func TestRecordError(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{Enabled: false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, span := provider.StartExecutorSpan(context.Background(), "create_media_buy", "acme")
	defer span.End()

	RecordError(span, nil)
	RecordError(span, errors.New("test error"))
}

func TestSetSuccess(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{Enabled: false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, span := provider.StartExecutorSpan(context.Background(), "create_media_buy", "acme")
	defer span.End()

	SetSuccess(span)
}

func TestProvider_TracerProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{Enabled: false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.TracerProvider() == nil {
		t.Fatal("expected non-nil TracerProvider")
	}
}

func TestProvider_TracerProvider_NilTP(t *testing.T) {
	p := &Provider{tracer: nil}
	if p.TracerProvider() == nil {
		t.Fatal("expected non-nil TracerProvider from global fallback")
	}
}

func TestProvider_TracerProvider_WithTP(t *testing.T) {
	sdkTP := sdktrace.NewTracerProvider()
	defer func() { _ = sdkTP.Shutdown(context.Background()) }()

	p := &Provider{tp: sdkTP, tracer: sdkTP.Tracer(TracerName)}
	tp := p.TracerProvider()
	if tp != sdkTP {
		t.Fatal("expected TracerProvider to return the configured provider")
	}
}

func TestProvider_Shutdown_WithTP(t *testing.T) {
	sdkTP := sdktrace.NewTracerProvider()
	p := &Provider{tp: sdkTP, tracer: sdkTP.Tracer(TracerName)}

	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewProvider_Enabled(t *testing.T) {
	cfg := Config{
		Enabled:        true,
		Endpoint:       "127.0.0.1:0",
		ServiceName:    "test-service",
		ServiceVersion: "1.0.0",
		Environment:    "test",
		SampleRate:     1.0,
		Insecure:       true,
	}

	provider, err := NewProvider(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = provider.Shutdown(context.Background()) }()

	if provider.tp == nil {
		t.Fatal("expected non-nil TracerProvider when enabled")
	}
	if provider.Tracer() == nil {
		t.Fatal("expected non-nil tracer")
	}
}

func TestConfig_SampleRates(t *testing.T) {
	tests := []struct {
		name       string
		sampleRate float64
	}{
		{"always sample", 1.0},
		{"never sample", 0.0},
		{"ratio sample", 0.5},
		{"high ratio", 0.99},
		{"low ratio", 0.01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{
				Enabled:    true,
				Endpoint:   "127.0.0.1:0",
				SampleRate: tt.sampleRate,
				Insecure:   true,
			}

			provider, err := NewProvider(context.Background(), cfg)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			defer func() { _ = provider.Shutdown(context.Background()) }()
			if provider.tp == nil {
				t.Fatal("expected non-nil TracerProvider")
			}
		})
	}
}
