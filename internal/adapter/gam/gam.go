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
	"github.com/adcontextprotocol/gateway/internal/apierr"
	"github.com/adcontextprotocol/gateway/internal/creative"
	"github.com/adcontextprotocol/gateway/internal/model"
	"github.com/adcontextprotocol/gateway/internal/targeting"
	gamtargeting "github.com/adcontextprotocol/gateway/internal/targeting/gam"
)

// Adapter implements adapter.Adapter against Google Ad Manager.
var _ adapter.Adapter = (*Adapter)(nil)

type Adapter struct {
	client     *Client
	orders     *OrdersManager
	creatives  *CreativesManager
	targeting  *gamtargeting.Manager
	inventory  *InventoryManager
	logger     logr.Logger

	// lineItemsByPackage maps package IDs to upstream line item IDs and is
	// populated as media buys are created/loaded; creative submission uses
	// it to associate creatives with the right upstream line item.
	lineItemsByPackage map[string]string
}

var _ adapter.InventorySync = (*Adapter)(nil)

// Config is everything needed to stand up a GAM Adapter for one tenant.
type Config struct {
	Auth         AuthConfig
	NetworkCode  string
	AdvertiserID string
	TraffickerID string
	DryRun       bool
}

// New constructs a GAM Adapter.
func New(cfg Config, logger logr.Logger) *Adapter {
	client := NewClient(cfg.Auth, cfg.NetworkCode, cfg.DryRun, logger)
	geo := gamtargeting.LoadDefaultGeoMappings()
	return &Adapter{
		client:             client,
		orders:             NewOrdersManager(client, cfg.AdvertiserID, cfg.TraffickerID, cfg.DryRun, logger),
		creatives:          NewCreativesManager(client, cfg.AdvertiserID, cfg.DryRun, logger),
		targeting:          gamtargeting.NewManager(geo, logger),
		inventory:          NewInventoryManager(client, cfg.DryRun, logger),
		logger:             logger.WithName("gam-adapter"),
		lineItemsByPackage: make(map[string]string),
	}
}

func (a *Adapter) Name() string { return "google_ad_manager" }

func (a *Adapter) CreateMediaBuy(ctx context.Context, req adapter.CreateMediaBuyRequest) (adapter.CreateMediaBuyResult, error) {
	orderID, err := a.orders.CreateOrder(ctx, req.MediaBuy.OrderName, req.MediaBuy.Budget, req.MediaBuy.StartDate, req.MediaBuy.EndDate, "")
	if err != nil {
		return adapter.CreateMediaBuyResult{}, fmt.Errorf("gam: create media buy: %w", err)
	}

	result := adapter.CreateMediaBuyResult{AdapterOrderID: orderID, PackageOrderIDs: make(map[string]string, len(req.Packages))}
	for i, pkg := range req.Packages {
		lineItemID := fmt.Sprintf("%s_li_%d", orderID, i+1)
		result.PackageOrderIDs[pkg.PackageID] = lineItemID
		a.lineItemsByPackage[pkg.PackageID] = lineItemID
	}
	return result, nil
}

// UpdateMediaBuy dispatches one update_media_buy action. activate_order
// consults CheckOrderHasGuaranteedItems first and refuses to auto-activate
// an order that still has guaranteed-delivery line items; approve_order's
// admin check is the caller's (Executor's) responsibility, not the
// adapter's.
func (a *Adapter) UpdateMediaBuy(ctx context.Context, req adapter.UpdateMediaBuyRequest) error {
	switch req.Action {
	case adapter.ActionUpdatePackageBudget:
		return a.updatePackageBudget(ctx, req.Package)
	case adapter.ActionActivateOrder:
		return a.activateOrder(ctx, req.MediaBuy)
	case adapter.ActionSubmitForApproval:
		if !a.orders.SubmitForApproval(ctx, req.MediaBuy.AdapterOrderID) {
			return apierr.Wrap(apierr.Upstream, "submit for approval", fmt.Errorf("gam: submit for approval failed"))
		}
		return nil
	case adapter.ActionApproveOrder:
		if !a.orders.ApproveOrder(ctx, req.MediaBuy.AdapterOrderID) {
			return apierr.Wrap(apierr.Upstream, "approve order", fmt.Errorf("gam: approve failed"))
		}
		return nil
	case adapter.ActionArchiveOrder:
		if !a.orders.ArchiveOrder(ctx, req.MediaBuy.AdapterOrderID) {
			return apierr.Wrap(apierr.Upstream, "archive order", fmt.Errorf("gam: archive failed"))
		}
		return nil
	default:
		return apierr.New(apierr.UnsupportedAction, fmt.Sprintf("gam adapter does not support action %q", req.Action))
	}
}

func (a *Adapter) updatePackageBudget(ctx context.Context, pkg *model.Package) error {
	lineItemID, ok := a.lineItemsByPackage[pkg.PackageID]
	if !ok {
		return fmt.Errorf("gam: no known line item for package %q", pkg.PackageID)
	}
	lineItemReq := map[string]any{"lineItemId": lineItemID, "budget": pkg.Budget, "impressions": pkg.Impressions}
	if err := a.client.Call(ctx, "lineitems", "update", lineItemReq, nil); err != nil {
		return fmt.Errorf("gam: update package %q: %w", pkg.PackageID, err)
	}
	return nil
}

// activateOrder refuses to auto-activate an order with any guaranteed
// line items, per §4.6's activate_order guard.
func (a *Adapter) activateOrder(ctx context.Context, mediaBuy *model.MediaBuy) error {
	hasGuaranteed, types, err := a.orders.CheckOrderHasGuaranteedItems(ctx, mediaBuy.AdapterOrderID)
	if err != nil {
		return apierr.Wrap(apierr.Upstream, "check order line items", err)
	}
	if hasGuaranteed {
		return apierr.New(apierr.CannotActivateGuaranteed, fmt.Sprintf("order has guaranteed line items: %v", types)).
			WithDetails(map[string]any{"line_item_types": types})
	}
	if !a.orders.ActivateOrder(ctx, mediaBuy.AdapterOrderID) {
		return apierr.Wrap(apierr.Upstream, "activate order", fmt.Errorf("gam: activate failed"))
	}
	return nil
}

func (a *Adapter) GetMediaBuyStatus(ctx context.Context, mediaBuy *model.MediaBuy) (model.MediaBuyStatus, error) {
	status := a.orders.GetOrderStatus(ctx, mediaBuy.AdapterOrderID)
	return mapOrderStatus(status), nil
}

func mapOrderStatus(gamStatus string) model.MediaBuyStatus {
	switch gamStatus {
	case "APPROVED", "DELIVERING":
		return model.MediaBuyActive
	case "PAUSED":
		return model.MediaBuyPaused
	case "COMPLETED":
		return model.MediaBuyCompleted
	case "DRAFT", "PENDING_APPROVAL":
		return model.MediaBuyPendingApproval
	case "NOT_FOUND", "ERROR":
		return model.MediaBuyFailed
	default:
		return model.MediaBuyPendingConfirmation
	}
}

func (a *Adapter) GetDelivery(ctx context.Context, mediaBuy *model.MediaBuy, packages []*model.Package) ([]adapter.DeliveryReport, error) {
	reports := make([]adapter.DeliveryReport, 0, len(packages))
	for _, pkg := range packages {
		var resp struct {
			Spend       float64 `json:"spend"`
			Impressions int64   `json:"impressionsDelivered"`
		}
		lineItemID, ok := a.lineItemsByPackage[pkg.PackageID]
		if !ok {
			reports = append(reports, adapter.DeliveryReport{PackageID: pkg.PackageID})
			continue
		}
		if err := a.client.Call(ctx, "lineitems", "delivery", map[string]string{"lineItemId": lineItemID}, &resp); err != nil {
			a.logger.Info("delivery lookup failed", "package_id", pkg.PackageID, "error", err.Error())
			reports = append(reports, adapter.DeliveryReport{PackageID: pkg.PackageID})
			continue
		}
		reports = append(reports, adapter.DeliveryReport{PackageID: pkg.PackageID, Spend: resp.Spend, ImpressionsDelivered: resp.Impressions})
	}
	return reports, nil
}

func (a *Adapter) SubmitCreatives(ctx context.Context, mediaBuy *model.MediaBuy, packages []*model.Package, creatives []*model.Creative, lookup creative.PlaceholderLookup) ([]adapter.CreativeSubmissionResult, error) {
	productIDByPackage := make(map[string]string, len(packages))
	for _, pkg := range packages {
		productIDByPackage[pkg.PackageID] = pkg.ProductID
	}

	batch := a.creatives.SubmitBatch(ctx, a.lineItemsByPackage, productIDByPackage, creatives, lookup)
	results := make([]adapter.CreativeSubmissionResult, 0, len(batch))
	for _, r := range batch {
		if r.Failed {
			results = append(results, adapter.CreativeSubmissionResult{CreativeID: r.CreativeID, Status: model.CreativeFailed, Reason: r.Reason})
			continue
		}
		results = append(results, adapter.CreativeSubmissionResult{
			CreativeID:        r.CreativeID,
			AdapterCreativeID: r.AdapterCreativeID,
			Status:            model.CreativePendingReview,
		})
	}
	return results, nil
}

func (a *Adapter) GetCreativeStatus(ctx context.Context, c *model.Creative) (model.CreativeStatus, string, error) {
	var resp struct {
		Status string `json:"status"`
		Reason string `json:"rejectionReason"`
	}
	if err := a.client.Call(ctx, "creatives", "get", map[string]string{"id": c.AdapterCreativeID}, &resp); err != nil {
		return "", "", fmt.Errorf("gam: get creative status: %w", err)
	}
	switch resp.Status {
	case "APPROVED":
		return model.CreativeApproved, "", nil
	case "REJECTED":
		return model.CreativeRejected, resp.Reason, nil
	default:
		return model.CreativePendingReview, "", nil
	}
}

func (a *Adapter) TargetingTranslator() targeting.Translator {
	return a.targeting
}

func (a *Adapter) GetAdvertisers(ctx context.Context) ([]adapter.Advertiser, error) {
	return a.inventory.GetAdvertisers(ctx)
}

func (a *Adapter) DiscoverAdUnits(ctx context.Context, parentID string, maxDepth int) ([]adapter.AdUnit, error) {
	return a.inventory.DiscoverAdUnits(ctx, parentID, maxDepth)
}

func (a *Adapter) SyncInventory(ctx context.Context, syncType model.SyncType) (adapter.InventorySyncResult, error) {
	return a.inventory.SyncInventory(ctx, syncType)
}
