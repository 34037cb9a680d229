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

package tenant

import (
	"context"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adcontextprotocol/gateway/internal/apierr"
	"github.com/adcontextprotocol/gateway/internal/model"
	"github.com/adcontextprotocol/gateway/internal/storage"
)

type fakeTenants struct {
	byID        map[string]*model.Tenant
	bySubdomain map[string]*model.Tenant
	byHost      map[string]*model.Tenant
}

func newFakeTenants() *fakeTenants {
	return &fakeTenants{
		byID:        make(map[string]*model.Tenant),
		bySubdomain: make(map[string]*model.Tenant),
		byHost:      make(map[string]*model.Tenant),
	}
}

func (f *fakeTenants) Get(_ context.Context, id string) (*model.Tenant, error) {
	if t, ok := f.byID[id]; ok {
		return t, nil
	}
	return nil, storage.ErrNotFound
}

func (f *fakeTenants) GetBySubdomain(_ context.Context, sub string) (*model.Tenant, error) {
	if t, ok := f.bySubdomain[sub]; ok {
		return t, nil
	}
	return nil, storage.ErrNotFound
}

func (f *fakeTenants) GetByVirtualHost(_ context.Context, host string) (*model.Tenant, error) {
	if t, ok := f.byHost[host]; ok {
		return t, nil
	}
	return nil, storage.ErrNotFound
}

func (f *fakeTenants) ListByAdServer(_ context.Context, adServer string) ([]*model.Tenant, error) {
	var out []*model.Tenant
	for _, t := range f.byID {
		if t.AdServer == adServer && t.IsActive {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTenants) Upsert(_ context.Context, t *model.Tenant) error {
	f.byID[t.TenantID] = t
	f.bySubdomain[t.Subdomain] = t
	if t.VirtualHost != "" {
		f.byHost[t.VirtualHost] = t
	}
	return nil
}

type fakePrincipals struct {
	byToken map[string]*model.Principal
}

func newFakePrincipals() *fakePrincipals {
	return &fakePrincipals{byToken: make(map[string]*model.Principal)}
}

func (f *fakePrincipals) Get(_ context.Context, _, _ string) (*model.Principal, error) {
	return nil, storage.ErrNotFound
}

func (f *fakePrincipals) GetByAccessToken(_ context.Context, tenantID, token string) (*model.Principal, error) {
	if p, ok := f.byToken[tenantID+":"+token]; ok {
		return p, nil
	}
	return nil, storage.ErrNotFound
}

func (f *fakePrincipals) ListByTenant(_ context.Context, _ string) ([]*model.Principal, error) {
	return nil, nil
}

func (f *fakePrincipals) Upsert(_ context.Context, p *model.Principal) error {
	f.byToken[p.TenantID+":"+p.AccessToken] = p
	return nil
}

func TestRegistry_ResolveHint(t *testing.T) {
	tenants := newFakeTenants()
	tenants.byHost["ads.example.com"] = &model.Tenant{TenantID: "tenant_vhost"}
	r := New(tenants, newFakePrincipals(), logr.Discard())

	assert.Equal(t, "explicit", r.ResolveHint(context.Background(), "explicit", "acme.example.com"))
	assert.Equal(t, "tenant_vhost", r.ResolveHint(context.Background(), "", "ads.example.com"))
	assert.Equal(t, "acme", r.ResolveHint(context.Background(), "", "acme.gateway.example.com:8080"))
	assert.Equal(t, DefaultTenantID, r.ResolveHint(context.Background(), "", "localhost:8080"))
	assert.Equal(t, DefaultTenantID, r.ResolveHint(context.Background(), "", ""))
}

func TestRegistry_LoadTenant(t *testing.T) {
	tenants := newFakeTenants()
	tenants.byID["active"] = &model.Tenant{TenantID: "active", IsActive: true}
	tenants.byID["inactive"] = &model.Tenant{TenantID: "inactive", IsActive: false}
	r := New(tenants, newFakePrincipals(), logr.Discard())

	got, err := r.LoadTenant(context.Background(), "active")
	require.NoError(t, err)
	assert.Equal(t, "active", got.TenantID)

	_, err = r.LoadTenant(context.Background(), "inactive")
	assert.True(t, apierr.Is(err, apierr.TenantInactive))

	_, err = r.LoadTenant(context.Background(), "missing")
	assert.True(t, apierr.Is(err, apierr.NotFound))
}

func TestRegistry_Authenticate(t *testing.T) {
	tenants := newFakeTenants()
	principals := newFakePrincipals()
	tn := &model.Tenant{TenantID: "acme", IsActive: true, AdminToken: "sk-admin-token", Name: "Acme"}
	principals.byToken["acme:sk-principal-token"] = &model.Principal{TenantID: "acme", PrincipalID: "principal_1"}
	r := New(tenants, principals, logr.Discard())

	p, err := r.Authenticate(context.Background(), tn, "sk-principal-token")
	require.NoError(t, err)
	assert.Equal(t, "principal_1", p.PrincipalID)

	admin, err := r.Authenticate(context.Background(), tn, "sk-admin-token")
	require.NoError(t, err)
	assert.Equal(t, "acme_admin", admin.PrincipalID)
	assert.True(t, admin.IsAdmin)

	_, err = r.Authenticate(context.Background(), tn, "")
	assert.True(t, apierr.Is(err, apierr.NotAuthenticated))

	_, err = r.Authenticate(context.Background(), tn, "sk-wrong")
	assert.True(t, apierr.Is(err, apierr.NotAuthenticated))
}
