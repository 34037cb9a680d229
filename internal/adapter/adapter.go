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

// Package adapter defines the sales-platform capability contract (C8) that
// every upstream ad server integration implements: order/line-item
// creation, creative submission, status polling, and delivery reporting.
// Concrete adapters (mock, gam, and stubs for kevel/triton) are selected
// per tenant by ad_server name, mirroring TaskExecutor.get_adapter.
package adapter

import (
	"context"

	"github.com/adcontextprotocol/gateway/internal/creative"
	"github.com/adcontextprotocol/gateway/internal/model"
	"github.com/adcontextprotocol/gateway/internal/targeting"
)

// GuaranteedLineItemTypes are line item types with a delivery commitment.
var GuaranteedLineItemTypes = map[string]bool{"STANDARD": true, "SPONSORSHIP": true}

// NonGuaranteedLineItemTypes are best-effort line item types.
var NonGuaranteedLineItemTypes = map[string]bool{
	"NETWORK": true, "HOUSE": true, "PRICE_PRIORITY": true, "BULK": true,
}

// MediaBuyAction identifies one update_media_buy action.
type MediaBuyAction string

const (
	ActionUpdatePackageBudget MediaBuyAction = "update_package_budget"
	ActionActivateOrder       MediaBuyAction = "activate_order"
	ActionSubmitForApproval   MediaBuyAction = "submit_for_approval"
	ActionApproveOrder        MediaBuyAction = "approve_order"
	ActionArchiveOrder        MediaBuyAction = "archive_order"
	ActionPausePackage        MediaBuyAction = "pause_package"
	ActionResumePackage       MediaBuyAction = "resume_package"
	ActionPauseMediaBuy       MediaBuyAction = "pause_media_buy"
	ActionResumeMediaBuy      MediaBuyAction = "resume_media_buy"
)

// KnownMediaBuyActions are actions a caller may dispatch to an adapter's
// UpdateMediaBuy; any other action string is unsupported_action.
var KnownMediaBuyActions = map[MediaBuyAction]bool{
	ActionUpdatePackageBudget: true,
	ActionActivateOrder:       true,
	ActionSubmitForApproval:   true,
	ActionApproveOrder:        true,
	ActionArchiveOrder:        true,
}

// NotImplementedActions are recognized but not yet built; a caller must
// report not_implemented rather than dispatching these to an adapter.
var NotImplementedActions = map[MediaBuyAction]bool{
	ActionPausePackage:   true,
	ActionResumePackage:  true,
	ActionPauseMediaBuy:  true,
	ActionResumeMediaBuy: true,
}

// CreateMediaBuyRequest carries everything an adapter needs to place an
// order with its packages upstream.
type CreateMediaBuyRequest struct {
	MediaBuy *model.MediaBuy
	Packages []*model.Package
	Tenant   *model.Tenant
	Principal *model.Principal
}

// CreateMediaBuyResult is what an adapter reports back after placing an order.
type CreateMediaBuyResult struct {
	AdapterOrderID string
	PackageOrderIDs map[string]string // package_id -> adapter line item ID
}

// UpdateMediaBuyRequest carries one update_media_buy action dispatch.
// Package is set only for actions scoped to a single package
// (update_package_budget); the rest operate on the whole order.
type UpdateMediaBuyRequest struct {
	MediaBuy *model.MediaBuy
	Package  *model.Package
	Action   MediaBuyAction
}

// CreativeSubmissionResult is the outcome of submitting one creative
// upstream: its upstream ID when created, its status, and a failure reason.
type CreativeSubmissionResult struct {
	CreativeID        string
	AdapterCreativeID string
	Status            model.CreativeStatus
	Reason            string
}

// DeliveryReport is per-package spend/impression delivery.
type DeliveryReport struct {
	PackageID            string
	Spend                float64
	ImpressionsDelivered int64
}

// Adapter is the capability contract every sales-platform integration
// implements.
type Adapter interface {
	// Name identifies the adapter for logging/config lookup (e.g. "mock",
	// "google_ad_manager").
	Name() string

	// CreateMediaBuy places an order and its line items upstream.
	CreateMediaBuy(ctx context.Context, req CreateMediaBuyRequest) (CreateMediaBuyResult, error)

	// UpdateMediaBuy dispatches one update_media_buy action (budget change,
	// order activation, submission/approval, archival) against an existing
	// order. Business-rule failures (cannot_auto_activate_guaranteed,
	// unsupported_action, permission_denied) are returned as *apierr.Error;
	// anything else is an upstream RPC failure.
	UpdateMediaBuy(ctx context.Context, req UpdateMediaBuyRequest) error

	// GetMediaBuyStatus polls the order's current upstream status.
	GetMediaBuyStatus(ctx context.Context, mediaBuy *model.MediaBuy) (model.MediaBuyStatus, error)

	// GetDelivery reports spend/delivery for each package in the media buy.
	GetDelivery(ctx context.Context, mediaBuy *model.MediaBuy, packages []*model.Package) ([]DeliveryReport, error)

	// SubmitCreatives validates, builds, and submits a creative batch,
	// associating each successfully submitted creative with its assigned
	// packages. Failures are reported per-creative; one failure never stops
	// the rest of the batch.
	SubmitCreatives(ctx context.Context, mediaBuy *model.MediaBuy, packages []*model.Package, creatives []*model.Creative, lookup creative.PlaceholderLookup) ([]CreativeSubmissionResult, error)

	// GetCreativeStatus polls a single creative's upstream review status.
	GetCreativeStatus(ctx context.Context, c *model.Creative) (model.CreativeStatus, string, error)

	// TargetingTranslator exposes the adapter's targeting.Translator, so
	// callers (e.g. get_targeting_capabilities) can validate a targeting
	// overlay without needing to know the concrete adapter type.
	TargetingTranslator() targeting.Translator
}

// Advertiser is a GAM company eligible for order assignment.
type Advertiser struct {
	AdvertiserID string
	Name         string
	Type         string
}

// AdUnit is one node of the ad server's placement hierarchy.
type AdUnit struct {
	AdUnitID string
	Name     string
	ParentID string
	Sizes    []string
	Status   string
}

// InventorySyncResult is one sync run's outcome, persisted onto the
// corresponding model.SyncJob.Summary.
type InventorySyncResult struct {
	AdUnits               int
	CustomTargetingKeys   int
	CustomTargetingValues int
	Orders                int
}

// InventorySync is an optional capability for §4.8 inventory discovery and
// sync: adapters with real ad-server inventory access (gam) implement it;
// adapters.For's result is type-asserted to this interface, so adapters
// without it (mock, kevel, triton) simply report inventory operations as
// unsupported rather than being forced to fake them.
type InventorySync interface {
	// GetAdvertisers lists companies eligible for order assignment.
	GetAdvertisers(ctx context.Context) ([]Advertiser, error)

	// DiscoverAdUnits walks the ad unit hierarchy starting at parentID (root
	// if empty) up to maxDepth levels.
	DiscoverAdUnits(ctx context.Context, parentID string, maxDepth int) ([]AdUnit, error)

	// SyncInventory refreshes ad units and custom targeting (syncType ==
	// model.SyncInventory), orders (model.SyncOrders), or both (model.SyncFull).
	SyncInventory(ctx context.Context, syncType model.SyncType) (InventorySyncResult, error)
}

// Factory constructs an Adapter for a tenant's configured ad_server.
type Factory func(tenant *model.Tenant, principal *model.Principal) (Adapter, error)
