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

// Package reqcontext carries the per-request ambient state — the resolved
// tenant, principal, and wire protocol — explicitly through context.Context.
// There is no process-wide mutable "current tenant" handle: every downstream
// layer reads these values from the context it was handed, and every
// repository call takes tenant_id explicitly rather than relying on this
// package as an implicit filter.
package reqcontext

import (
	"context"

	"github.com/adcontextprotocol/gateway/internal/model"
)

// contextKey is unexported so values can only be set/read through this
// package's helpers, never collide with keys from other packages.
type contextKey string

const (
	contextKeyTenant    contextKey = "tenant"
	contextKeyPrincipal contextKey = "principal_id"
	contextKeyProtocol  contextKey = "protocol"
	contextKeyRequestID contextKey = "request_id"
)

// Header names propagated by the wire protocols (§6.1).
const (
	HeaderAuth   = "x-adcp-auth"
	HeaderTenant = "x-adcp-tenant"
)

// Protocol identifies which facade is handling the current request.
type Protocol string

const (
	ProtocolMCP Protocol = "mcp"
	ProtocolA2A Protocol = "a2a"
)

// WithTenant returns a context carrying the resolved tenant record.
func WithTenant(ctx context.Context, t *model.Tenant) context.Context {
	return context.WithValue(ctx, contextKeyTenant, t)
}

// Tenant returns the tenant set by WithTenant, or nil if none is set.
func Tenant(ctx context.Context) *model.Tenant {
	t, _ := ctx.Value(contextKeyTenant).(*model.Tenant)
	return t
}

// WithPrincipalID returns a context carrying the authenticated principal ID.
func WithPrincipalID(ctx context.Context, principalID string) context.Context {
	return context.WithValue(ctx, contextKeyPrincipal, principalID)
}

// PrincipalID returns the principal ID set by WithPrincipalID, or "" if none is set.
func PrincipalID(ctx context.Context) string {
	id, _ := ctx.Value(contextKeyPrincipal).(string)
	return id
}

// WithProtocol returns a context carrying which facade is handling the call.
func WithProtocol(ctx context.Context, p Protocol) context.Context {
	return context.WithValue(ctx, contextKeyProtocol, p)
}

// ProtocolOf returns the protocol set by WithProtocol, or "" if none is set.
func ProtocolOf(ctx context.Context) Protocol {
	p, _ := ctx.Value(contextKeyProtocol).(Protocol)
	return p
}

// WithRequestID returns a context carrying a correlation ID for logging.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID, id)
}

// RequestID returns the request ID set by WithRequestID, or "" if none is set.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(contextKeyRequestID).(string)
	return id
}

// TenantID is a convenience accessor returning "" when no tenant is set,
// rather than requiring every call site to nil-check Tenant(ctx).
func TenantID(ctx context.Context) string {
	if t := Tenant(ctx); t != nil {
		return t.TenantID
	}
	return ""
}

// IsTenantAdmin reports whether the current principal is the synthetic
// "{tenant_id}_admin" principal created by the registry for tenant admin
// tokens. This grants full privilege within the current tenant only — it
// must never be treated as a cross-tenant superadmin (§9 design note).
func IsTenantAdmin(ctx context.Context) bool {
	tid := TenantID(ctx)
	return tid != "" && PrincipalID(ctx) == tid+"_admin"
}
