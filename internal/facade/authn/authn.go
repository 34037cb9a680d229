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

// Package authn resolves an inbound HTTP request to a tenant and an
// authenticated principal, shared by every facade (MCP, A2A) so the
// header/host precedence and error shape stay identical across protocols.
package authn

import (
	"context"
	"net/http"

	"github.com/adcontextprotocol/gateway/internal/apierr"
	"github.com/adcontextprotocol/gateway/internal/model"
	"github.com/adcontextprotocol/gateway/internal/reqcontext"
	"github.com/adcontextprotocol/gateway/internal/tenant"
)

// Authenticate resolves tenant + principal from r's headers/host and
// returns a context carrying both plus the request's protocol, ready to
// pass straight into an Executor method.
func Authenticate(ctx context.Context, registry *tenant.Registry, r *http.Request, protocol reqcontext.Protocol) (context.Context, error) {
	tenantHint := registry.ResolveHint(ctx, r.Header.Get(reqcontext.HeaderTenant), r.Host)
	t, err := registry.LoadTenant(ctx, tenantHint)
	if err != nil {
		return ctx, err
	}

	token := r.Header.Get(reqcontext.HeaderAuth)
	principal, err := registry.Authenticate(ctx, t, token)
	if err != nil {
		return ctx, err
	}

	ctx = reqcontext.WithTenant(ctx, t)
	ctx = reqcontext.WithPrincipalID(ctx, principal.PrincipalID)
	ctx = reqcontext.WithProtocol(ctx, protocol)
	return ctx, nil
}

// StatusFor maps an apierr.Kind (or a generic error) to the HTTP status a
// facade should use when it cannot even reach the executor (auth/tenant
// resolution failures); executor-level failures are instead carried inside
// a TaskResult/JSON-RPC error per protocol.
func StatusFor(err error) int {
	kind, ok := apierr.KindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch kind {
	case apierr.NotAuthenticated:
		return http.StatusUnauthorized
	case apierr.TenantInactive, apierr.PermissionDenied:
		return http.StatusForbidden
	case apierr.NotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

// PrincipalFromRequest is a convenience used by handlers that only need the
// authenticated Tenant back (admin-style endpoints operate on the tenant
// directly rather than through the Executor).
func PrincipalFromRequest(ctx context.Context) (*model.Tenant, string) {
	return reqcontext.Tenant(ctx), reqcontext.PrincipalID(ctx)
}
