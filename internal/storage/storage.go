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

// Package storage defines narrow per-entity repository interfaces (C1) and a
// Registry that assembles the warm (source-of-truth) store with an optional
// hot cache, mirroring the tiered hot/warm provider pattern the rest of the
// stack already uses for conversation state.
package storage

import (
	"context"
	"errors"

	"github.com/adcontextprotocol/gateway/internal/model"
)

// ErrProviderNotConfigured is returned when a requested storage tier has not been set.
var ErrProviderNotConfigured = errors.New("storage provider not configured")

// ErrNotFound is returned by a repository when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// TenantRepository persists Tenant records.
type TenantRepository interface {
	Get(ctx context.Context, tenantID string) (*model.Tenant, error)
	GetBySubdomain(ctx context.Context, subdomain string) (*model.Tenant, error)
	GetByVirtualHost(ctx context.Context, host string) (*model.Tenant, error)
	Upsert(ctx context.Context, t *model.Tenant) error
	// ListByAdServer returns every active tenant configured for adServer, for
	// the scheduled inventory sync sweep.
	ListByAdServer(ctx context.Context, adServer string) ([]*model.Tenant, error)
}

// PrincipalRepository persists Principal records, always scoped by tenant_id.
type PrincipalRepository interface {
	Get(ctx context.Context, tenantID, principalID string) (*model.Principal, error)
	GetByAccessToken(ctx context.Context, tenantID, token string) (*model.Principal, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*model.Principal, error)
	Upsert(ctx context.Context, p *model.Principal) error
}

// ProductRepository persists Product records.
type ProductRepository interface {
	Get(ctx context.Context, tenantID, productID string) (*model.Product, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*model.Product, error)
	Upsert(ctx context.Context, p *model.Product) error
}

// MediaBuyRepository persists MediaBuy and Package records. CreateWithPackages
// wraps the media buy and its initial packages in one short transaction (§4.1).
type MediaBuyRepository interface {
	Get(ctx context.Context, tenantID, mediaBuyID string) (*model.MediaBuy, error)
	CreateWithPackages(ctx context.Context, mb *model.MediaBuy, pkgs []*model.Package) error
	Update(ctx context.Context, mb *model.MediaBuy) error
	ListPackages(ctx context.Context, tenantID, mediaBuyID string) ([]*model.Package, error)
	GetPackage(ctx context.Context, tenantID, mediaBuyID, packageID string) (*model.Package, error)
	UpdatePackage(ctx context.Context, pkg *model.Package) error
}

// CreativeRepository persists Creative records. Creative status is persisted
// here (not in-memory only) so it survives restarts and stays consistent
// with the audit trail.
type CreativeRepository interface {
	Get(ctx context.Context, tenantID, creativeID string) (*model.Creative, error)
	UpsertBatch(ctx context.Context, creatives []*model.Creative) error
}

// TaskRepository persists Task records.
type TaskRepository interface {
	Get(ctx context.Context, tenantID, taskID string) (*model.Task, error)
	Create(ctx context.Context, t *model.Task) error
	Update(ctx context.Context, t *model.Task) error
	ListByMediaBuy(ctx context.Context, tenantID, mediaBuyID string) ([]*model.Task, error)
}

// ContextRepository persists conversation Context and Message records — the
// warm tier behind the Context Manager (C5); HotCache, when configured, is a
// write-through cache in front of it.
type ContextRepository interface {
	GetOrCreate(ctx context.Context, contextID, tenantID, principalID, protocol string) (*model.ConvoContext, error)
	Get(ctx context.Context, contextID string) (*model.ConvoContext, error)
	SaveState(ctx context.Context, contextID string, state map[string]any) error
	AppendMessage(ctx context.Context, contextID string, msg model.Message) error
	ListMessages(ctx context.Context, contextID string, limit, offset int) ([]model.Message, error)
	ClearMessages(ctx context.Context, contextID string) error
}

// AuditRepository appends AuditRecord rows; append-only, never updated or deleted.
type AuditRepository interface {
	Append(ctx context.Context, rec *model.AuditRecord) error
}

// SyncJobRepository persists inventory-sync bookkeeping (§4.8 supplement 3).
// TryStart enforces "at most one running job per (tenant, sync_type)" via a
// conditional insert rather than an application-level lock.
type SyncJobRepository interface {
	TryStart(ctx context.Context, job *model.SyncJob) (bool, error)
	Finish(ctx context.Context, job *model.SyncJob) error
	Latest(ctx context.Context, tenantID string, syncType model.SyncType) (*model.SyncJob, error)
	GetByID(ctx context.Context, tenantID, syncID string) (*model.SyncJob, error)
	History(ctx context.Context, tenantID string, limit, offset int, statusFilter model.SyncStatus) ([]*model.SyncJob, error)
}

// AdminConfigRepository persists the process-wide superadmin bootstrap state
// (§6.7): a single API key, generated once, that gates the admin facade.
type AdminConfigRepository interface {
	Get(ctx context.Context, key string) (string, error)
	CreateIfAbsent(ctx context.Context, key, value string) (bool, error)
}

// HotCache is the optional write-through cache in front of ContextRepository,
// used to union freshly-written state that the warm store may not yet reflect
// (§9 design note: conversation-context re-architecture).
type HotCache interface {
	GetState(ctx context.Context, contextID string) (map[string]any, bool, error)
	SetState(ctx context.Context, contextID string, state map[string]any) error
	Close() error
}

// Registry assembles the configured storage tiers. Warm is required; Hot is
// optional and, when unset, every HotCache() call returns ErrProviderNotConfigured
// so callers fall back to the warm store transparently.
type Registry struct {
	Tenants     TenantRepository
	Principals  PrincipalRepository
	Products    ProductRepository
	MediaBuys   MediaBuyRepository
	Creatives   CreativeRepository
	Tasks       TaskRepository
	Contexts    ContextRepository
	Audit       AuditRepository
	SyncJobs    SyncJobRepository
	AdminConfig AdminConfigRepository

	hot HotCache
}

// NewRegistry assembles a Registry from the warm-store repositories.
func NewRegistry(
	tenants TenantRepository,
	principals PrincipalRepository,
	products ProductRepository,
	mediaBuys MediaBuyRepository,
	creatives CreativeRepository,
	tasks TaskRepository,
	contexts ContextRepository,
	audit AuditRepository,
	syncJobs SyncJobRepository,
	adminConfig AdminConfigRepository,
) *Registry {
	return &Registry{
		Tenants:     tenants,
		Principals:  principals,
		Products:    products,
		MediaBuys:   mediaBuys,
		Creatives:   creatives,
		Tasks:       tasks,
		Contexts:    contexts,
		Audit:       audit,
		SyncJobs:    syncJobs,
		AdminConfig: adminConfig,
	}
}

// SetHotCache registers the optional hot cache tier.
func (r *Registry) SetHotCache(c HotCache) { r.hot = c }

// HotCache returns the configured hot cache, or ErrProviderNotConfigured if none was set.
func (r *Registry) HotCache() (HotCache, error) {
	if r.hot == nil {
		return nil, ErrProviderNotConfigured
	}
	return r.hot, nil
}

// Close closes the hot cache if one is configured.
func (r *Registry) Close() error {
	if r.hot != nil {
		return r.hot.Close()
	}
	return nil
}
