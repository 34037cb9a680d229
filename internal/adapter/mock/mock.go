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

// Package mock implements a deterministic, in-memory Adapter used as the
// fallback ad server for tenants without a configured adapter, and for
// tests and sandbox demos. Grounded on MockAdServerAdapter's
// always-succeeds, synthetic-ID behavior.
package mock

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/go-logr/logr"

	"github.com/adcontextprotocol/gateway/internal/adapter"
	"github.com/adcontextprotocol/gateway/internal/creative"
	"github.com/adcontextprotocol/gateway/internal/model"
	"github.com/adcontextprotocol/gateway/internal/targeting"
)

// passthroughTranslator is a no-op targeting translator: the mock adapter accepts any
// targeting overlay without validation, since it has no upstream
// representation to fail against.
type passthroughTranslator struct{}

func (passthroughTranslator) Validate(model.Targeting) []string { return nil }
func (passthroughTranslator) Build(t model.Targeting) (map[string]any, error) {
	return map[string]any{"targeting": t}, nil
}

// Adapter is a mock sales-platform adapter generating synthetic IDs and
// immediately-approved creatives/orders.
type Adapter struct {
	logger  logr.Logger
	counter atomic.Int64
}

var _ adapter.Adapter = (*Adapter)(nil)

// New constructs a mock Adapter.
func New(logger logr.Logger) *Adapter {
	return &Adapter{logger: logger.WithName("mock-adapter")}
}

func (a *Adapter) Name() string { return "mock" }

func (a *Adapter) nextID(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, a.counter.Add(1))
}

func (a *Adapter) CreateMediaBuy(ctx context.Context, req adapter.CreateMediaBuyRequest) (adapter.CreateMediaBuyResult, error) {
	result := adapter.CreateMediaBuyResult{
		AdapterOrderID:  a.nextID("mock_order"),
		PackageOrderIDs: make(map[string]string, len(req.Packages)),
	}
	for _, pkg := range req.Packages {
		result.PackageOrderIDs[pkg.PackageID] = a.nextID("mock_lineitem")
	}
	a.logger.Info("created mock order", "order_id", result.AdapterOrderID, "packages", len(req.Packages))
	return result, nil
}

func (a *Adapter) UpdateMediaBuy(ctx context.Context, req adapter.UpdateMediaBuyRequest) error {
	a.logger.Info("updated mock media buy", "media_buy_id", req.MediaBuy.MediaBuyID, "action", req.Action)
	return nil
}

func (a *Adapter) GetMediaBuyStatus(ctx context.Context, mediaBuy *model.MediaBuy) (model.MediaBuyStatus, error) {
	return model.MediaBuyActive, nil
}

func (a *Adapter) GetDelivery(ctx context.Context, mediaBuy *model.MediaBuy, packages []*model.Package) ([]adapter.DeliveryReport, error) {
	reports := make([]adapter.DeliveryReport, 0, len(packages))
	for _, pkg := range packages {
		reports = append(reports, adapter.DeliveryReport{
			PackageID:            pkg.PackageID,
			Spend:                pkg.DeliveryMetrics.Spend,
			ImpressionsDelivered: pkg.DeliveryMetrics.ImpressionsDelivered,
		})
	}
	return reports, nil
}

func (a *Adapter) SubmitCreatives(ctx context.Context, mediaBuy *model.MediaBuy, packages []*model.Package, creatives []*model.Creative, lookup creative.PlaceholderLookup) ([]adapter.CreativeSubmissionResult, error) {
	outcomes := creative.ValidateBatch(creatives, lookup)
	results := make([]adapter.CreativeSubmissionResult, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Failed {
			results = append(results, adapter.CreativeSubmissionResult{
				CreativeID: o.CreativeID,
				Status:     model.CreativeFailed,
				Reason:     o.Reason,
			})
			continue
		}
		results = append(results, adapter.CreativeSubmissionResult{
			CreativeID:        o.CreativeID,
			AdapterCreativeID: a.nextID("mock_creative"),
			Status:            model.CreativeApproved,
		})
	}
	return results, nil
}

func (a *Adapter) GetCreativeStatus(ctx context.Context, c *model.Creative) (model.CreativeStatus, string, error) {
	return model.CreativeApproved, "", nil
}

func (a *Adapter) TargetingTranslator() targeting.Translator {
	return passthroughTranslator{}
}
