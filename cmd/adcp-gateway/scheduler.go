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

package main

import (
	"context"

	"github.com/go-logr/logr"
	"github.com/robfig/cron/v3"

	"github.com/adcontextprotocol/gateway/internal/executor"
	"github.com/adcontextprotocol/gateway/internal/model"
	"github.com/adcontextprotocol/gateway/internal/reqcontext"
	"github.com/adcontextprotocol/gateway/internal/storage"
)

// gamSyncSchedule sweeps every Google Ad Manager tenant once an hour. force
// is left false so a tenant whose inventory is already fresh is a no-op.
const gamSyncSchedule = "@hourly"

// startGAMSyncScheduler wires the recurring inventory/order sync sweep: once
// per gamSyncSchedule, every active google_ad_manager tenant gets a
// sync_full, run as that tenant's synthetic admin principal. Each tenant's
// failure is logged and does not stop the rest of the sweep.
func startGAMSyncScheduler(ctx context.Context, tenants storage.TenantRepository, exec *executor.Executor, log logr.Logger) *cron.Cron {
	c := cron.New()
	_, err := c.AddFunc(gamSyncSchedule, func() {
		syncAllGAMTenants(ctx, tenants, exec, log)
	})
	if err != nil {
		log.Error(err, "failed to schedule gam sync sweep")
		return c
	}
	c.Start()
	return c
}

func syncAllGAMTenants(ctx context.Context, tenants storage.TenantRepository, exec *executor.Executor, log logr.Logger) {
	list, err := tenants.ListByAdServer(ctx, "google_ad_manager")
	if err != nil {
		log.Error(err, "failed to list gam tenants for sync sweep")
		return
	}
	if len(list) == 0 {
		return
	}
	log.Info("starting gam sync sweep", "tenants", len(list))
	for _, t := range list {
		tenantCtx := reqcontext.WithProtocol(ctx, "cron")
		tenantCtx = reqcontext.WithTenant(tenantCtx, t)
		tenantCtx = reqcontext.WithPrincipalID(tenantCtx, t.TenantID+"_admin")

		tr := exec.TriggerSync(tenantCtx, model.SyncFull, false)
		if tr.Status == executor.StatusFailed {
			log.Error(tr.Error, "gam sync failed for tenant", "tenant_id", t.TenantID)
			continue
		}
		log.V(1).Info("gam sync complete for tenant", "tenant_id", t.TenantID, "status", tr.Status)
	}
}
