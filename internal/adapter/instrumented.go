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

package adapter

import (
	"context"
	"fmt"
	"time"

	"github.com/adcontextprotocol/gateway/internal/creative"
	"github.com/adcontextprotocol/gateway/internal/model"
	"github.com/adcontextprotocol/gateway/internal/tracing"
	"github.com/adcontextprotocol/gateway/pkg/metrics"
)

// instrumented wraps an Adapter, recording a call count and latency
// observation for every upstream RPC it makes, and, when a tracer is
// configured, a span per RPC.
type instrumented struct {
	Adapter
	metrics metrics.Recorder
	tracer  *tracing.Provider
}

// Instrument wraps adapter so every RPC-making method records its duration
// and success/failure against recorder, labeled by adapter.Name(). It starts
// no spans; InstrumentWithTracing adds those.
func Instrument(a Adapter, recorder metrics.Recorder) Adapter {
	return &instrumented{Adapter: a, metrics: recorder}
}

// InstrumentWithTracing is Instrument plus OpenTelemetry spans per RPC.
func InstrumentWithTracing(a Adapter, recorder metrics.Recorder, tracer *tracing.Provider) Adapter {
	return &instrumented{Adapter: a, metrics: recorder, tracer: tracer}
}

func (i *instrumented) startSpan(ctx context.Context, operation string) (context.Context, func()) {
	if i.tracer == nil {
		return ctx, func() {}
	}
	ctx, span := i.tracer.StartAdapterSpan(ctx, i.Adapter.Name(), operation)
	return ctx, span.End
}

func (i *instrumented) record(operation string, start time.Time, err error) {
	i.metrics.RecordAdapterCall(metrics.AdapterCallMetrics{
		Adapter:         i.Adapter.Name(),
		Operation:       operation,
		DurationSeconds: time.Since(start).Seconds(),
		Success:         err == nil,
	})
}

func (i *instrumented) CreateMediaBuy(ctx context.Context, req CreateMediaBuyRequest) (CreateMediaBuyResult, error) {
	ctx, end := i.startSpan(ctx, "create_media_buy")
	defer end()
	start := time.Now()
	res, err := i.Adapter.CreateMediaBuy(ctx, req)
	i.record("create_media_buy", start, err)
	return res, err
}

func (i *instrumented) UpdateMediaBuy(ctx context.Context, req UpdateMediaBuyRequest) error {
	ctx, end := i.startSpan(ctx, "update_media_buy")
	defer end()
	start := time.Now()
	err := i.Adapter.UpdateMediaBuy(ctx, req)
	i.record("update_media_buy", start, err)
	return err
}

func (i *instrumented) GetMediaBuyStatus(ctx context.Context, mediaBuy *model.MediaBuy) (model.MediaBuyStatus, error) {
	ctx, end := i.startSpan(ctx, "get_media_buy_status")
	defer end()
	start := time.Now()
	status, err := i.Adapter.GetMediaBuyStatus(ctx, mediaBuy)
	i.record("get_media_buy_status", start, err)
	return status, err
}

func (i *instrumented) GetDelivery(ctx context.Context, mediaBuy *model.MediaBuy, packages []*model.Package) ([]DeliveryReport, error) {
	ctx, end := i.startSpan(ctx, "get_delivery")
	defer end()
	start := time.Now()
	reports, err := i.Adapter.GetDelivery(ctx, mediaBuy, packages)
	i.record("get_delivery", start, err)
	return reports, err
}

func (i *instrumented) SubmitCreatives(ctx context.Context, mediaBuy *model.MediaBuy, packages []*model.Package, creatives []*model.Creative, lookup creative.PlaceholderLookup) ([]CreativeSubmissionResult, error) {
	ctx, end := i.startSpan(ctx, "submit_creatives")
	defer end()
	start := time.Now()
	results, err := i.Adapter.SubmitCreatives(ctx, mediaBuy, packages, creatives, lookup)
	i.record("submit_creatives", start, err)
	return results, err
}

func (i *instrumented) GetCreativeStatus(ctx context.Context, c *model.Creative) (model.CreativeStatus, string, error) {
	ctx, end := i.startSpan(ctx, "get_creative_status")
	defer end()
	start := time.Now()
	status, reason, err := i.Adapter.GetCreativeStatus(ctx, c)
	i.record("get_creative_status", start, err)
	return status, reason, err
}

// GetAdvertisers, DiscoverAdUnits, and SyncInventory forward to the wrapped
// adapter's InventorySync implementation when it has one; instrumented
// itself must implement InventorySync so callers can type-assert the
// instrumented wrapper returned by Registry.For the same way they would the
// concrete adapter.
func (i *instrumented) GetAdvertisers(ctx context.Context) ([]Advertiser, error) {
	inv, ok := i.Adapter.(InventorySync)
	if !ok {
		return nil, fmt.Errorf("adapter %q does not support inventory discovery", i.Adapter.Name())
	}
	ctx, end := i.startSpan(ctx, "get_advertisers")
	defer end()
	start := time.Now()
	out, err := inv.GetAdvertisers(ctx)
	i.record("get_advertisers", start, err)
	return out, err
}

func (i *instrumented) DiscoverAdUnits(ctx context.Context, parentID string, maxDepth int) ([]AdUnit, error) {
	inv, ok := i.Adapter.(InventorySync)
	if !ok {
		return nil, fmt.Errorf("adapter %q does not support inventory discovery", i.Adapter.Name())
	}
	ctx, end := i.startSpan(ctx, "discover_ad_units")
	defer end()
	start := time.Now()
	out, err := inv.DiscoverAdUnits(ctx, parentID, maxDepth)
	i.record("discover_ad_units", start, err)
	return out, err
}

func (i *instrumented) SyncInventory(ctx context.Context, syncType model.SyncType) (InventorySyncResult, error) {
	inv, ok := i.Adapter.(InventorySync)
	if !ok {
		return InventorySyncResult{}, fmt.Errorf("adapter %q does not support inventory sync", i.Adapter.Name())
	}
	ctx, end := i.startSpan(ctx, "sync_inventory")
	defer end()
	start := time.Now()
	out, err := inv.SyncInventory(ctx, syncType)
	i.record("sync_inventory", start, err)
	return out, err
}

var _ Adapter = (*instrumented)(nil)
var _ InventorySync = (*instrumented)(nil)
