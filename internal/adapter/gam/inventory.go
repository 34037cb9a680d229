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

package gam

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/adcontextprotocol/gateway/internal/adapter"
	"github.com/adcontextprotocol/gateway/internal/model"
)

// InventoryManager discovers ad units/advertisers and drives inventory/order
// sync, grounded on GoogleAdManager's discover_ad_units/get_advertisers/
// sync_all_inventory delegation chain.
type InventoryManager struct {
	client *Client
	dryRun bool
	logger logr.Logger
}

func NewInventoryManager(client *Client, dryRun bool, logger logr.Logger) *InventoryManager {
	return &InventoryManager{client: client, dryRun: dryRun, logger: logger.WithName("gam-inventory")}
}

type advertiserRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type advertisersResponse struct {
	Results []advertiserRecord `json:"results"`
}

// GetAdvertisers lists companies eligible for order assignment.
func (m *InventoryManager) GetAdvertisers(ctx context.Context) ([]adapter.Advertiser, error) {
	if m.dryRun {
		m.logger.Info("dry run: would call CompanyService.getCompaniesByStatement(type='ADVERTISER')")
		return []adapter.Advertiser{
			{AdvertiserID: "123456789", Name: "Test Advertiser 1", Type: "ADVERTISER"},
			{AdvertiserID: "987654321", Name: "Test Advertiser 2", Type: "ADVERTISER"},
		}, nil
	}
	var resp advertisersResponse
	if err := m.client.Call(ctx, "companies", "list", map[string]string{"type": "ADVERTISER"}, &resp); err != nil {
		return nil, fmt.Errorf("gam: get advertisers: %w", err)
	}
	out := make([]adapter.Advertiser, 0, len(resp.Results))
	for _, r := range resp.Results {
		out = append(out, adapter.Advertiser{AdvertiserID: r.ID, Name: r.Name, Type: r.Type})
	}
	return out, nil
}

type adUnitRecord struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	ParentID string   `json:"parentId"`
	Sizes    []string `json:"sizes"`
	Status   string   `json:"status"`
}

type adUnitsResponse struct {
	Results []adUnitRecord `json:"results"`
}

// DiscoverAdUnits walks the ad unit tree starting at parentID (network root
// if empty) up to maxDepth levels.
func (m *InventoryManager) DiscoverAdUnits(ctx context.Context, parentID string, maxDepth int) ([]adapter.AdUnit, error) {
	if maxDepth <= 0 {
		maxDepth = 10
	}
	req := map[string]any{"parentId": parentID, "maxDepth": maxDepth}
	if m.dryRun {
		m.logger.Info("dry run: would call InventoryService.getAdUnitsByStatement", "parent_id", parentID, "max_depth", maxDepth)
		return nil, nil
	}
	var resp adUnitsResponse
	if err := m.client.Call(ctx, "adunits", "list", req, &resp); err != nil {
		return nil, fmt.Errorf("gam: discover ad units: %w", err)
	}
	out := make([]adapter.AdUnit, 0, len(resp.Results))
	for _, r := range resp.Results {
		out = append(out, adapter.AdUnit{AdUnitID: r.ID, Name: r.Name, ParentID: r.ParentID, Sizes: r.Sizes, Status: r.Status})
	}
	return out, nil
}

type syncInventoryResponse struct {
	AdUnits               int `json:"adUnits"`
	CustomTargetingKeys   int `json:"customTargetingKeys"`
	CustomTargetingValues int `json:"customTargetingValues"`
	Orders                int `json:"orders"`
}

// SyncInventory performs one sync run. model.SyncOrders only refreshes order
// counts; model.SyncInventory only refreshes ad units/custom targeting;
// model.SyncFull does both.
func (m *InventoryManager) SyncInventory(ctx context.Context, syncType model.SyncType) (adapter.InventorySyncResult, error) {
	if m.dryRun {
		m.logger.Info("dry run: would sync GAM inventory", "sync_type", syncType)
		return adapter.InventorySyncResult{AdUnits: 3, CustomTargetingKeys: 1, CustomTargetingValues: 2, Orders: 1}, nil
	}

	var result adapter.InventorySyncResult
	if syncType == model.SyncInventory || syncType == model.SyncFull {
		var resp syncInventoryResponse
		if err := m.client.Call(ctx, "inventory", "sync", map[string]string{"scope": "ad_units"}, &resp); err != nil {
			return result, fmt.Errorf("gam: sync inventory: %w", err)
		}
		result.AdUnits = resp.AdUnits
		result.CustomTargetingKeys = resp.CustomTargetingKeys
		result.CustomTargetingValues = resp.CustomTargetingValues
	}
	if syncType == model.SyncOrders || syncType == model.SyncFull {
		var resp syncInventoryResponse
		if err := m.client.Call(ctx, "inventory", "sync", map[string]string{"scope": "orders"}, &resp); err != nil {
			return result, fmt.Errorf("gam: sync orders: %w", err)
		}
		result.Orders = resp.Orders
	}
	return result, nil
}
