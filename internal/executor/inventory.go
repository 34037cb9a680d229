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
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/adcontextprotocol/gateway/internal/adapter"
	"github.com/adcontextprotocol/gateway/internal/apierr"
	"github.com/adcontextprotocol/gateway/internal/model"
	"github.com/adcontextprotocol/gateway/internal/storage"
)

// defaultSyncMaxAge is needs_sync's default staleness threshold (§4.8).
const defaultSyncMaxAge = 24 * time.Hour

// resolveInventoryAdapter loads the caller's adapter and reports whether it
// supports §4.8 inventory discovery/sync.
func (e *Executor) resolveInventoryAdapter(ctx context.Context, tenant *model.Tenant, principalID string) (adapter.InventorySync, *apierr.Error) {
	principal, err := e.store.Principals.Get(ctx, tenant.TenantID, principalID)
	if err != nil {
		return nil, apierr.Wrap(apierr.Upstream, "load principal", err)
	}
	ad, err := e.adapters.For(tenant, principal)
	if err != nil {
		return nil, apierr.Wrap(apierr.Upstream, "resolve adapter", err)
	}
	inv, ok := ad.(adapter.InventorySync)
	if !ok {
		return nil, apierr.New(apierr.Unsupported, fmt.Sprintf("%s does not support inventory discovery", ad.Name()))
	}
	return inv, nil
}

// GetAdvertisers lists companies eligible for order assignment.
func (e *Executor) GetAdvertisers(ctx context.Context) TaskResult {
	ctx, span := e.startSpan(ctx, "get_advertisers")
	defer span.End()

	tenant, principalID, authErr := e.requirePrincipal(ctx)
	if authErr != nil {
		return failed(authErr)
	}
	inv, invErr := e.resolveInventoryAdapter(ctx, tenant, principalID)
	if invErr != nil {
		return failed(invErr)
	}
	advertisers, err := inv.GetAdvertisers(ctx)
	if err != nil {
		return failed(apierr.Wrap(apierr.Upstream, "get advertisers", err))
	}
	out := make([]map[string]any, 0, len(advertisers))
	for _, a := range advertisers {
		out = append(out, map[string]any{"id": a.AdvertiserID, "name": a.Name, "type": a.Type})
	}
	return completed("", map[string]any{"advertisers": out})
}

// DiscoverAdUnits walks the ad unit hierarchy starting at parentID.
func (e *Executor) DiscoverAdUnits(ctx context.Context, parentID string, maxDepth int) TaskResult {
	ctx, span := e.startSpan(ctx, "discover_ad_units")
	defer span.End()

	tenant, principalID, authErr := e.requirePrincipal(ctx)
	if authErr != nil {
		return failed(authErr)
	}
	inv, invErr := e.resolveInventoryAdapter(ctx, tenant, principalID)
	if invErr != nil {
		return failed(invErr)
	}
	units, err := inv.DiscoverAdUnits(ctx, parentID, maxDepth)
	if err != nil {
		return failed(apierr.Wrap(apierr.Upstream, "discover ad units", err))
	}
	out := make([]map[string]any, 0, len(units))
	for _, u := range units {
		out = append(out, map[string]any{
			"id": u.AdUnitID, "name": u.Name, "parent_id": u.ParentID, "sizes": u.Sizes, "status": u.Status,
		})
	}
	return completed("", map[string]any{"ad_units": out})
}

// TriggerSync implements sync_inventory/sync_orders/sync_full: at most one
// running job per (tenant, sync_type), enforced by SyncJobRepository.TryStart;
// a duplicate trigger reports apierr.Conflict rather than queuing. force
// skips the staleness short-circuit and always starts a new run.
func (e *Executor) TriggerSync(ctx context.Context, syncType model.SyncType, force bool) TaskResult {
	ctx, span := e.startSpan(ctx, "sync_"+string(syncType))
	defer span.End()

	tenant, principalID, authErr := e.requirePrincipal(ctx)
	if authErr != nil {
		return failed(authErr)
	}

	if !force {
		latest, err := e.store.SyncJobs.Latest(ctx, tenant.TenantID, syncType)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return failed(apierr.Wrap(apierr.Upstream, "load latest sync job", err))
		}
		if latest != nil && !latest.Stale(e.now(), defaultSyncMaxAge) {
			return completed(fmt.Sprintf("%s sync is already up to date", syncType), map[string]any{
				"sync_id": latest.SyncID, "status": string(latest.Status), "summary": latest.Summary,
			})
		}
	}

	inv, invErr := e.resolveInventoryAdapter(ctx, tenant, principalID)
	if invErr != nil {
		return failed(invErr)
	}

	job := &model.SyncJob{
		SyncID:    uuid.NewString(),
		TenantID:  tenant.TenantID,
		SyncType:  syncType,
		Status:    model.SyncRunning,
		StartedAt: e.now(),
	}
	started, err := e.store.SyncJobs.TryStart(ctx, job)
	if err != nil {
		return failed(apierr.Wrap(apierr.Upstream, "start sync job", err))
	}
	if !started {
		return failed(apierr.New(apierr.Conflict, fmt.Sprintf("a %s sync is already in progress", syncType)))
	}

	result, syncErr := inv.SyncInventory(ctx, syncType)
	completedAt := e.now()
	job.CompletedAt = &completedAt
	job.Summary = map[string]any{
		"ad_units":                result.AdUnits,
		"custom_targeting_keys":   result.CustomTargetingKeys,
		"custom_targeting_values": result.CustomTargetingValues,
		"orders":                  result.Orders,
	}
	if syncErr != nil {
		job.Status = model.SyncFailed
		job.ErrorMessage = syncErr.Error()
	} else {
		job.Status = model.SyncCompleted
	}
	if err := e.store.SyncJobs.Finish(ctx, job); err != nil {
		e.logger.Error(err, "failed to persist sync job completion", "sync_id", job.SyncID)
	}

	auditErrMsg := ""
	if syncErr != nil {
		auditErrMsg = syncErr.Error()
	}
	e.audit(ctx, tenant, principalID, "sync_"+string(syncType), syncErr == nil, job.Summary, auditErrMsg)

	if syncErr != nil {
		return failed(apierr.Wrap(apierr.Upstream, fmt.Sprintf("%s sync failed", syncType), syncErr))
	}
	return completed(fmt.Sprintf("%s sync completed", syncType), map[string]any{
		"sync_id": job.SyncID, "status": string(job.Status), "summary": job.Summary,
	})
}

// GetSyncStatus reports one sync job's current state.
func (e *Executor) GetSyncStatus(ctx context.Context, syncID string) TaskResult {
	ctx, span := e.startSpan(ctx, "get_sync_status")
	defer span.End()

	tenant, _, authErr := e.requirePrincipal(ctx)
	if authErr != nil {
		return failed(authErr)
	}
	job, err := e.store.SyncJobs.GetByID(ctx, tenant.TenantID, syncID)
	if errors.Is(err, storage.ErrNotFound) {
		return failed(apierr.New(apierr.NotFound, "sync job not found"))
	}
	if err != nil {
		return failed(apierr.Wrap(apierr.Upstream, "load sync job", err))
	}
	return completed("", syncJobData(job))
}

// GetSyncHistory lists past sync runs, most recent first.
func (e *Executor) GetSyncHistory(ctx context.Context, limit, offset int, statusFilter model.SyncStatus) TaskResult {
	ctx, span := e.startSpan(ctx, "get_sync_history")
	defer span.End()

	tenant, _, authErr := e.requirePrincipal(ctx)
	if authErr != nil {
		return failed(authErr)
	}
	jobs, err := e.store.SyncJobs.History(ctx, tenant.TenantID, limit, offset, statusFilter)
	if err != nil {
		return failed(apierr.Wrap(apierr.Upstream, "load sync history", err))
	}
	out := make([]map[string]any, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, syncJobData(j))
	}
	return completed("", map[string]any{"jobs": out})
}

// NeedsSync reports whether syncType needs a new sync: true when there is no
// run yet, when the most recent run did not complete successfully, or when it
// completed more than maxAgeHours (default 24) ago.
func (e *Executor) NeedsSync(ctx context.Context, syncType model.SyncType, maxAgeHours int) TaskResult {
	ctx, span := e.startSpan(ctx, "needs_sync")
	defer span.End()

	tenant, _, authErr := e.requirePrincipal(ctx)
	if authErr != nil {
		return failed(authErr)
	}
	if maxAgeHours <= 0 {
		maxAgeHours = 24
	}
	latest, err := e.store.SyncJobs.Latest(ctx, tenant.TenantID, syncType)
	if errors.Is(err, storage.ErrNotFound) {
		return completed("", map[string]any{"needs_sync": true})
	}
	if err != nil {
		return failed(apierr.Wrap(apierr.Upstream, "load latest sync job", err))
	}
	needsSync := latest.Status != model.SyncCompleted || latest.Stale(e.now(), time.Duration(maxAgeHours)*time.Hour)
	return completed("", map[string]any{"needs_sync": needsSync, "sync_id": latest.SyncID})
}

func syncJobData(j *model.SyncJob) map[string]any {
	data := map[string]any{
		"sync_id":    j.SyncID,
		"sync_type":  string(j.SyncType),
		"status":     string(j.Status),
		"started_at": j.StartedAt,
		"summary":    j.Summary,
	}
	if j.CompletedAt != nil {
		data["completed_at"] = *j.CompletedAt
	}
	if j.ErrorMessage != "" {
		data["error_message"] = j.ErrorMessage
	}
	return data
}
