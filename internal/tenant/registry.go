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

// Package tenant implements tenant and principal resolution (C2): mapping an
// inbound request's headers and host to a Tenant and an authenticated
// Principal, with multi-domain routing precedence.
package tenant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-logr/logr"

	"github.com/adcontextprotocol/gateway/internal/apierr"
	"github.com/adcontextprotocol/gateway/internal/model"
	"github.com/adcontextprotocol/gateway/internal/storage"
)

// DefaultTenantID is used when no header or host hint resolves a tenant.
const DefaultTenantID = "default"

// hostsWithNoSubdomain are host values that never carry a meaningful subdomain.
var hostsWithNoSubdomain = map[string]bool{"localhost": true, "127": true, "0": true}

// Registry resolves tenants and authenticates principals against them.
type Registry struct {
	tenants    storage.TenantRepository
	principals storage.PrincipalRepository
	logger     logr.Logger
}

// New constructs a Registry.
func New(tenants storage.TenantRepository, principals storage.PrincipalRepository, logger logr.Logger) *Registry {
	return &Registry{tenants: tenants, principals: principals, logger: logger.WithName("tenant")}
}

// ResolveHint determines the tenant_id to use for an inbound request, given
// an explicit tenant header (may be empty) and the request's Host header.
// Precedence: explicit header > exact virtual_host match > subdomain > "default",
// mirroring the source's domain_routing / a2a_facade._authenticate_request.
func (r *Registry) ResolveHint(ctx context.Context, explicitTenant, host string) string {
	if explicitTenant != "" {
		return explicitTenant
	}
	if host != "" {
		if t, err := r.tenants.GetByVirtualHost(ctx, host); err == nil {
			return t.TenantID
		}
		if sub := subdomainOf(host); sub != "" {
			return sub
		}
	}
	return DefaultTenantID
}

func subdomainOf(host string) string {
	h, _, found := strings.Cut(host, ":")
	if !found {
		h = host
	}
	idx := strings.Index(h, ".")
	if idx < 0 {
		return ""
	}
	sub := h[:idx]
	if hostsWithNoSubdomain[sub] {
		return ""
	}
	return sub
}

// LoadTenant loads the active tenant for tenantID, translating ErrNotFound
// and inactive tenants into the appropriate apierr.Kind.
func (r *Registry) LoadTenant(ctx context.Context, tenantID string) (*model.Tenant, error) {
	t, err := r.tenants.Get(ctx, tenantID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apierr.Newf(apierr.NotFound, "tenant %q not found", tenantID)
	}
	if err != nil {
		return nil, fmt.Errorf("load tenant: %w", err)
	}
	if !t.IsActive {
		return nil, apierr.Newf(apierr.TenantInactive, "tenant %q is not active", tenantID)
	}
	return t, nil
}

// Authenticate resolves the principal for a bearer token within tenantID.
// It first checks registered principal access tokens, then falls back to the
// tenant's admin_token, returning the synthetic "{tenant_id}_admin" principal
// id — mirroring task_executor.py's authenticate().
func (r *Registry) Authenticate(ctx context.Context, tenant *model.Tenant, token string) (*model.Principal, error) {
	if token == "" {
		return nil, apierr.New(apierr.NotAuthenticated, "missing auth token")
	}

	p, err := r.principals.GetByAccessToken(ctx, tenant.TenantID, token)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("lookup principal by token: %w", err)
	}

	if tenant.AdminToken != "" && token == tenant.AdminToken {
		return &model.Principal{
			TenantID:    tenant.TenantID,
			PrincipalID: tenant.TenantID + "_admin",
			Name:        tenant.Name + " (admin)",
			AccessToken: tenant.AdminToken,
			IsAdmin:     true,
		}, nil
	}

	return nil, apierr.New(apierr.NotAuthenticated, "invalid auth token")
}
