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

package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/adcontextprotocol/gateway/internal/adapter"
	"github.com/adcontextprotocol/gateway/internal/apierr"
	"github.com/adcontextprotocol/gateway/internal/model"
	"github.com/adcontextprotocol/gateway/internal/policyengine"
	"github.com/adcontextprotocol/gateway/internal/storage"
)

// CreateMediaBuyRequest is the normalized create_media_buy input.
type CreateMediaBuyRequest struct {
	ProductIDs       []string
	TotalBudget      float64
	FlightStartDate  time.Time
	FlightEndDate    time.Time
	TargetingOverlay model.Targeting
	PromotedOffering string
}

// CreateMediaBuy runs the policy check, determines initial status from
// product delivery types and tenant review settings, persists atomically,
// then calls the adapter for the portion of activation it controls.
func (e *Executor) CreateMediaBuy(ctx context.Context, req CreateMediaBuyRequest) TaskResult {
	ctx, span := e.startSpan(ctx, "create_media_buy")
	defer span.End()

	tenant, principalID, authErr := e.requirePrincipal(ctx)
	if authErr != nil {
		return failed(authErr)
	}

	var policyResult policyengine.Result
	if req.PromotedOffering != "" {
		result, err := e.policy.Check(req.PromotedOffering, tenant.PolicySettings)
		if err != nil {
			e.audit(ctx, tenant, principalID, "create_media_buy", false, nil, err.Error())
			return failed(apierr.Wrap(apierr.Validation, "policy check failed", err))
		}
		policyResult = result
		if result.Status == policyengine.Rejected {
			e.audit(ctx, tenant, principalID, "create_media_buy", false, map[string]any{"policy": result.Details}, "policy rejected")
			return failed(apierr.New(apierr.PolicyRejected, "promoted offering rejected by policy").WithDetails(result.Details))
		}
	}

	products := make([]*model.Product, 0, len(req.ProductIDs))
	for _, productID := range req.ProductIDs {
		product, err := e.store.Products.Get(ctx, tenant.TenantID, productID)
		if err != nil {
			e.audit(ctx, tenant, principalID, "create_media_buy", false, nil, err.Error())
			return failed(apierr.Wrap(apierr.NotFound, fmt.Sprintf("product %q not found", productID), err))
		}
		products = append(products, product)
	}

	mediaBuyID := "mb_" + uuid.NewString()
	mediaBuy := &model.MediaBuy{
		MediaBuyID:       mediaBuyID,
		TenantID:         tenant.TenantID,
		PrincipalID:      principalID,
		Budget:           req.TotalBudget,
		StartDate:        req.FlightStartDate,
		EndDate:          req.FlightEndDate,
		PromotedOffering: req.PromotedOffering,
		RawRequest: map[string]any{
			"product_ids":       req.ProductIDs,
			"total_budget":      req.TotalBudget,
			"flight_start_date": req.FlightStartDate,
			"flight_end_date":   req.FlightEndDate,
		},
		CreatedAt: e.now(),
		UpdatedAt: e.now(),
	}

	packages := make([]*model.Package, 0, len(products))
	perPackageBudget := req.TotalBudget
	if len(products) > 0 {
		perPackageBudget = req.TotalBudget / float64(len(products))
	}
	for _, product := range products {
		packages = append(packages, &model.Package{
			PackageID:    "pkg_" + uuid.NewString(),
			MediaBuyID:   mediaBuyID,
			TenantID:     tenant.TenantID,
			ProductID:    product.ProductID,
			Budget:       perPackageBudget,
			FormatIDs:    product.Formats,
			DeliveryType: product.DeliveryType,
		})
	}

	mediaBuy.Status = determineInitialStatus(tenant, products, policyResult)

	if err := e.store.MediaBuys.CreateWithPackages(ctx, mediaBuy, packages); err != nil {
		e.audit(ctx, tenant, principalID, "create_media_buy", false, nil, err.Error())
		return failed(apierr.Wrap(apierr.Upstream, "persist media buy", err))
	}

	if mediaBuy.Status == model.MediaBuyPendingApproval {
		task := &model.Task{
			TaskID:      "task_" + uuid.NewString(),
			TenantID:    tenant.TenantID,
			MediaBuyID:  mediaBuyID,
			TaskType:    model.TaskApproveMediaBuy,
			Status:      model.TaskPending,
			CreatedAt:   e.now(),
			CreatedBy:   principalID,
			Description: "Media buy requires human approval before activation",
		}
		if err := e.store.Tasks.Create(ctx, task); err != nil {
			e.logger.Error(err, "failed to create approve_media_buy task", "media_buy_id", mediaBuyID)
		}
	} else if mediaBuy.Status == model.MediaBuyPendingConfirmation {
		task := &model.Task{
			TaskID:      "task_" + uuid.NewString(),
			TenantID:    tenant.TenantID,
			MediaBuyID:  mediaBuyID,
			TaskType:    model.TaskActivateGAMOrder,
			Status:      model.TaskPending,
			CreatedAt:   e.now(),
			CreatedBy:   principalID,
			Description: "Non-guaranteed order requires confirmation before activation",
		}
		if err := e.store.Tasks.Create(ctx, task); err != nil {
			e.logger.Error(err, "failed to create activate_gam_order task", "media_buy_id", mediaBuyID)
		}
	}

	adapterOrderID, adapterErr := e.createUpstream(ctx, tenant, principalID, mediaBuy, packages)
	if adapterErr != nil {
		e.logger.Error(adapterErr, "adapter create_media_buy failed", "media_buy_id", mediaBuyID)
	} else {
		mediaBuy.AdapterOrderID = adapterOrderID
		if err := e.store.MediaBuys.Update(ctx, mediaBuy); err != nil {
			e.logger.Error(err, "failed to persist adapter order id", "media_buy_id", mediaBuyID)
		}
	}

	e.audit(ctx, tenant, principalID, "create_media_buy", true, map[string]any{"media_buy_id": mediaBuyID, "status": string(mediaBuy.Status)}, "")
	e.notify(ctx, tenant, "media_buy_created", map[string]any{"media_buy_id": mediaBuyID, "status": string(mediaBuy.Status)})

	data := map[string]any{
		"media_buy_id": mediaBuyID,
		"status":       string(mediaBuy.Status),
	}
	if req.PromotedOffering != "" {
		data["policy_compliance"] = map[string]any{"status": string(policyResult.Status), "details": policyResult.Details}
	}
	return completed("", data)
}

// determineInitialStatus implements the status-determination cascade:
// policy review / tenant review requirement wins outright; otherwise
// guaranteed products defer to the ad server's own approval path; otherwise
// a non-guaranteed product requiring confirmation creates a task; otherwise
// automatic non-guaranteed products activate immediately; manual falls back
// to pending_activation.
func determineInitialStatus(tenant *model.Tenant, products []*model.Product, policyResult policyengine.Result) model.MediaBuyStatus {
	if policyResult.Status == policyengine.ReviewRequired || tenant.HumanReviewRequired {
		return model.MediaBuyPendingApproval
	}

	hasGuaranteed := false
	hasConfirmationRequired := false
	hasAutomatic := false
	for _, p := range products {
		if p.DeliveryType == model.DeliveryGuaranteed {
			hasGuaranteed = true
			continue
		}
		switch p.NonGuaranteedAutomation {
		case model.AutomationConfirmationRequired:
			hasConfirmationRequired = true
		case model.AutomationAutomatic:
			hasAutomatic = true
		}
	}

	// Mixed-type rule: an automatic non-guaranteed product activates the
	// buy even alongside guaranteed packages, which still follow the ad
	// server's own approval path independently.
	if hasGuaranteed {
		if hasAutomatic {
			return model.MediaBuyActive
		}
		return model.MediaBuyPendingActivation
	}
	if hasConfirmationRequired {
		return model.MediaBuyPendingConfirmation
	}
	if hasAutomatic {
		return model.MediaBuyActive
	}
	return model.MediaBuyPendingActivation
}

func (e *Executor) createUpstream(ctx context.Context, tenant *model.Tenant, principalID string, mediaBuy *model.MediaBuy, packages []*model.Package) (string, error) {
	principal, err := e.store.Principals.Get(ctx, tenant.TenantID, principalID)
	if err != nil {
		return "", err
	}
	ad, err := e.adapters.For(tenant, principal)
	if err != nil {
		return "", err
	}
	result, err := ad.CreateMediaBuy(ctx, adapter.CreateMediaBuyRequest{MediaBuy: mediaBuy, Packages: packages, Tenant: tenant, Principal: principal})
	if err != nil {
		return "", err
	}
	return result.AdapterOrderID, nil
}

// verifyOwnership loads a media buy scoped to the caller's tenant and
// confirms it isn't another principal's buy, per every operation's
// "verify ownership" precondition.
func (e *Executor) verifyOwnership(ctx context.Context, tenantID, principalID, mediaBuyID string) (*model.MediaBuy, *apierr.Error) {
	mediaBuy, err := e.store.MediaBuys.Get(ctx, tenantID, mediaBuyID)
	if err != nil {
		if err == storage.ErrNotFound {
			return nil, apierr.New(apierr.NotFound, fmt.Sprintf("media buy %q not found", mediaBuyID))
		}
		return nil, apierr.Wrap(apierr.Upstream, "load media buy", err)
	}
	if mediaBuy.PrincipalID != principalID {
		return nil, apierr.New(apierr.Unauthorized, "media buy belongs to a different principal")
	}
	return mediaBuy, nil
}

// GetMediaBuyStatus returns the persisted status/budget/flight window —
// never the ad server's live status.
func (e *Executor) GetMediaBuyStatus(ctx context.Context, mediaBuyID string) TaskResult {
	ctx, span := e.startSpan(ctx, "get_media_buy_status")
	defer span.End()

	tenant, principalID, authErr := e.requirePrincipal(ctx)
	if authErr != nil {
		return failed(authErr)
	}
	mediaBuy, err := e.verifyOwnership(ctx, tenant.TenantID, principalID, mediaBuyID)
	if err != nil {
		return failed(err)
	}
	return completed("", map[string]any{
		"status":            string(mediaBuy.Status),
		"budget":            mediaBuy.Budget,
		"flight_start_date": mediaBuy.StartDate,
		"flight_end_date":   mediaBuy.EndDate,
	})
}

// UpdateMediaBuyRequest is update_media_buy's normalized input. Action
// drives the §4.6 adapter action-dispatch contract
// (update_package_budget/activate_order/submit_for_approval/approve_order/
// archive_order, plus not-yet-implemented pause/resume actions); when it is
// empty, the request instead falls back to the direct targeting_overlay/
// flight-date field update that predates that contract.
type UpdateMediaBuyRequest struct {
	Action           string
	TargetingOverlay *model.Targeting
	FlightStartDate  *time.Time
	FlightEndDate    *time.Time
	PackageID        string
	NewBudget        *float64
}

// UpdateMediaBuy supports targeting_overlay, flight-date, and (via an
// explicit adapter action) package-budget and order-lifecycle updates;
// every other field or action is rejected outright rather than silently
// ignored.
func (e *Executor) UpdateMediaBuy(ctx context.Context, mediaBuyID string, req UpdateMediaBuyRequest) TaskResult {
	ctx, span := e.startSpan(ctx, "update_media_buy")
	defer span.End()

	tenant, principalID, authErr := e.requirePrincipal(ctx)
	if authErr != nil {
		return failed(authErr)
	}
	mediaBuy, err := e.verifyOwnership(ctx, tenant.TenantID, principalID, mediaBuyID)
	if err != nil {
		return failed(err)
	}

	if req.Action != "" {
		return e.dispatchMediaBuyAction(ctx, tenant, principalID, mediaBuy, req)
	}

	updated := false
	if req.TargetingOverlay != nil {
		if mediaBuy.RawRequest == nil {
			mediaBuy.RawRequest = map[string]any{}
		}
		mediaBuy.RawRequest["targeting_overlay"] = *req.TargetingOverlay
		updated = true
	}
	if req.FlightStartDate != nil {
		mediaBuy.StartDate = *req.FlightStartDate
		updated = true
	}
	if req.FlightEndDate != nil {
		mediaBuy.EndDate = *req.FlightEndDate
		updated = true
	}
	if !updated {
		return failed(apierr.New(apierr.Validation, "no supported update fields were provided"))
	}

	mediaBuy.UpdatedAt = e.now()
	if err := e.store.MediaBuys.Update(ctx, mediaBuy); err != nil {
		return failed(apierr.Wrap(apierr.Upstream, "persist media buy update", err))
	}
	e.audit(ctx, tenant, principalID, "update_media_buy", true, nil, "")
	return completed("", map[string]any{"media_buy_id": mediaBuyID, "status": string(mediaBuy.Status)})
}

// dispatchMediaBuyAction implements the §4.6 action set: validates the
// action is recognized (not_implemented for the pause/resume stubs,
// unsupported_action for anything else), enforces the approve_order
// admin-only guard, and routes update_package_budget's
// budget-below-delivery check before handing off to the adapter. Any
// *apierr.Error the adapter itself returns (e.g.
// cannot_auto_activate_guaranteed) is forwarded as-is rather than
// flattened to a generic upstream failure.
func (e *Executor) dispatchMediaBuyAction(ctx context.Context, tenant *model.Tenant, principalID string, mediaBuy *model.MediaBuy, req UpdateMediaBuyRequest) TaskResult {
	action := adapter.MediaBuyAction(req.Action)

	if adapter.NotImplementedActions[action] {
		return failed(apierr.New(apierr.NotImplemented, fmt.Sprintf("%s is not yet implemented", req.Action)))
	}
	if !adapter.KnownMediaBuyActions[action] {
		return failed(apierr.New(apierr.UnsupportedAction, fmt.Sprintf("update_media_buy action %q is not supported", req.Action)))
	}

	principal, err := e.store.Principals.Get(ctx, tenant.TenantID, principalID)
	if err != nil {
		return failed(apierr.Wrap(apierr.Upstream, "load principal", err))
	}

	if action == adapter.ActionApproveOrder && !principal.IsAdmin && !principal.HasPlatformFlag("gam_admin") && !principal.HasPlatformFlag("is_admin") {
		e.audit(ctx, tenant, principalID, "update_media_buy", false, map[string]any{"action": req.Action}, "permission_denied")
		return failed(apierr.New(apierr.PermissionDenied, "approve_order requires an admin principal"))
	}

	ad, err := e.adapters.For(tenant, principal)
	if err != nil {
		return failed(apierr.Wrap(apierr.Upstream, "resolve adapter", err))
	}

	adapterReq := adapter.UpdateMediaBuyRequest{MediaBuy: mediaBuy, Action: action}
	data := map[string]any{"media_buy_id": mediaBuy.MediaBuyID, "action": req.Action}

	if action == adapter.ActionUpdatePackageBudget {
		if req.PackageID == "" || req.NewBudget == nil {
			return failed(apierr.New(apierr.Validation, "package_id and new_budget are required for update_package_budget"))
		}
		pkg, err := e.store.MediaBuys.GetPackage(ctx, tenant.TenantID, mediaBuy.MediaBuyID, req.PackageID)
		if err != nil {
			return failed(apierr.Wrap(apierr.NotFound, "package not found", err))
		}
		if *req.NewBudget < pkg.DeliveryMetrics.Spend {
			e.audit(ctx, tenant, principalID, "update_media_buy", false, map[string]any{
				"requested_budget": *req.NewBudget, "current_spend": pkg.DeliveryMetrics.Spend,
			}, "budget_below_delivery")
			return failed(apierr.New(apierr.BudgetBelowDelivery, "new budget is below already-delivered spend").WithDetails(map[string]any{
				"requested_budget": *req.NewBudget,
				"current_spend":    pkg.DeliveryMetrics.Spend,
			}))
		}
		pkg.Budget = *req.NewBudget
		if err := e.store.MediaBuys.UpdatePackage(ctx, pkg); err != nil {
			return failed(apierr.Wrap(apierr.Upstream, "persist package budget", err))
		}
		adapterReq.Package = pkg
		data["package_id"] = req.PackageID
		data["budget"] = *req.NewBudget
	}

	if err := ad.UpdateMediaBuy(ctx, adapterReq); err != nil {
		if apiErr, ok := apierr.As(err); ok {
			e.audit(ctx, tenant, principalID, "update_media_buy", false, data, apiErr.Message)
			return failed(apiErr)
		}
		e.audit(ctx, tenant, principalID, "update_media_buy", false, data, err.Error())
		return failed(apierr.Wrap(apierr.Upstream, fmt.Sprintf("adapter action %q failed", req.Action), err))
	}

	e.audit(ctx, tenant, principalID, "update_media_buy", true, data, "")
	return completed("", data)
}

// deliveryWindowStatus derives {scheduled, active, completed} from flight
// dates relative to "today" (e.now()).
func deliveryWindowStatus(mediaBuy *model.MediaBuy, today time.Time) string {
	switch {
	case today.Before(mediaBuy.StartDate):
		return "scheduled"
	case today.After(mediaBuy.EndDate):
		return "completed"
	default:
		return "active"
	}
}

// GetMediaBuyDelivery aggregates persisted spend/impression metrics across
// a media buy's packages and derives its delivery-window status.
func (e *Executor) GetMediaBuyDelivery(ctx context.Context, mediaBuyID string) TaskResult {
	ctx, span := e.startSpan(ctx, "get_media_buy_delivery")
	defer span.End()

	tenant, principalID, authErr := e.requirePrincipal(ctx)
	if authErr != nil {
		return failed(authErr)
	}
	mediaBuy, err := e.verifyOwnership(ctx, tenant.TenantID, principalID, mediaBuyID)
	if err != nil {
		return failed(err)
	}
	packages, storeErr := e.store.MediaBuys.ListPackages(ctx, tenant.TenantID, mediaBuyID)
	if storeErr != nil {
		return failed(apierr.Wrap(apierr.Upstream, "list packages", storeErr))
	}

	var totalSpend float64
	var totalImpressions int64
	for _, pkg := range packages {
		totalSpend += pkg.DeliveryMetrics.Spend
		totalImpressions += pkg.DeliveryMetrics.ImpressionsDelivered
	}

	// Clicks are not tracked in DeliveryMetrics today (no adapter in this
	// corpus reports them), so ctr is always 0 until that's added.
	var cpm, ctr float64
	var clicks int64
	if totalImpressions > 0 {
		cpm = totalSpend / float64(totalImpressions) * 1000
		ctr = float64(clicks) / float64(totalImpressions)
	}

	return completed("", map[string]any{
		"status":      deliveryWindowStatus(mediaBuy, e.now()),
		"spend":       totalSpend,
		"impressions": totalImpressions,
		"clicks":      clicks,
		"ctr":         ctr,
		"cpm":         cpm,
	})
}
