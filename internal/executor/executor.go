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

// Package executor implements the protocol-agnostic Task Executor (C9): one
// method per sales operation, each returning a uniform TaskResult, each
// following the same seven-step contract (authenticate, resolve context,
// persist inbound best-effort, execute, persist outbound best-effort, audit,
// notify). The MCP and A2A facades call these methods directly; no
// business logic lives in a facade. The admin facade provisions tenants
// against storage.Registry and does not go through the executor.
package executor

import (
	"context"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"go.opentelemetry.io/otel/trace"

	"github.com/adcontextprotocol/gateway/internal/adapter"
	"github.com/adcontextprotocol/gateway/internal/apierr"
	"github.com/adcontextprotocol/gateway/internal/catalog"
	"github.com/adcontextprotocol/gateway/internal/convo"
	"github.com/adcontextprotocol/gateway/internal/media"
	"github.com/adcontextprotocol/gateway/internal/model"
	"github.com/adcontextprotocol/gateway/internal/policyengine"
	"github.com/adcontextprotocol/gateway/internal/reqcontext"
	"github.com/adcontextprotocol/gateway/internal/storage"
	"github.com/adcontextprotocol/gateway/internal/tracing"
)

// Status is the uniform TaskResult status.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// TaskResult is the uniform return type for every Task Executor operation.
type TaskResult struct {
	Status  Status
	Message string
	Data    map[string]any
	Error   *apierr.Error
	TaskID  string
}

func completed(message string, data map[string]any) TaskResult {
	return TaskResult{Status: StatusCompleted, Message: message, Data: data}
}

func failed(err *apierr.Error) TaskResult {
	return TaskResult{Status: StatusFailed, Error: err, Message: err.Message}
}

func pending(taskID, message string, data map[string]any) TaskResult {
	return TaskResult{Status: StatusPending, TaskID: taskID, Message: message, Data: data}
}

// Notifier fires best-effort notifications; failures never fail the calling
// operation (step 7 of the general contract).
type Notifier interface {
	Notify(ctx context.Context, tenant *model.Tenant, event string, details map[string]any)
	// NotifyAudit mirrors an AuditRecord to a tenant's dedicated audit
	// channel, independent of Notify's operational-event routing.
	NotifyAudit(ctx context.Context, tenant *model.Tenant, event string, details map[string]any)
}

// Executor wires together every component the Task Executor's operations
// depend on.
type Executor struct {
	store    *storage.Registry
	policy   *policyengine.Engine
	catalogs catalog.Provider
	convo    *convo.Manager
	adapters *adapter.Registry
	notifier Notifier
	logger   logr.Logger
	now      func() time.Time
	tracer   *tracing.Provider
	media    media.Storage
}

// New constructs an Executor. now defaults to time.Now when nil, letting
// tests inject a fixed clock for delivery-window calculations. tracer may be
// nil, in which case operations run unspanned. mediaStorage may be nil, in
// which case get_creative_upload_url and confirm_creative_upload report
// apierr.Unsupported, and a creative whose media_url is an adcp:// storage
// reference is marked failed with a "media storage is not configured" reason.
func New(store *storage.Registry, policy *policyengine.Engine, catalogs catalog.Provider, convoMgr *convo.Manager, adapters *adapter.Registry, notifier Notifier, logger logr.Logger, now func() time.Time, tracer *tracing.Provider, mediaStorage media.Storage) *Executor {
	if now == nil {
		now = time.Now
	}
	return &Executor{
		store:    store,
		policy:   policy,
		catalogs: catalogs,
		convo:    convoMgr,
		adapters: adapters,
		notifier: notifier,
		logger:   logger.WithName("executor"),
		now:      now,
		tracer:   tracer,
		media:    mediaStorage,
	}
}

// startSpan begins a span for one Task Executor operation, tagged with the
// tenant already attached to ctx (if any). Safe to call before
// requirePrincipal since it never fails the operation; returns a no-op span
// when no tracer is configured.
func (e *Executor) startSpan(ctx context.Context, operation string) (context.Context, trace.Span) {
	if e.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	tenantID := ""
	if tenant := reqcontext.Tenant(ctx); tenant != nil {
		tenantID = tenant.TenantID
	}
	return e.tracer.StartExecutorSpan(ctx, operation, tenantID)
}

// requirePrincipal implements step 1 of the general contract: every
// operation requires a resolved principal.
func (e *Executor) requirePrincipal(ctx context.Context) (*model.Tenant, string, *apierr.Error) {
	tenant := reqcontext.Tenant(ctx)
	principalID := reqcontext.PrincipalID(ctx)
	if tenant == nil || principalID == "" {
		return nil, "", apierr.New(apierr.NotAuthenticated, "no authenticated principal")
	}
	return tenant, principalID, nil
}

// audit appends an AuditRecord best-effort — a failure to write the audit
// log must never fail the operation it is describing (step 6) — and mirrors
// it to the tenant's audit webhook, when configured, through the same
// best-effort Notifier used for operational events.
func (e *Executor) audit(ctx context.Context, tenant *model.Tenant, principalID, operation string, success bool, details map[string]any, errMsg string) {
	rec := &model.AuditRecord{
		Timestamp:   e.now(),
		TenantID:    tenant.TenantID,
		PrincipalID: principalID,
		Operation:   operation,
		Success:     success,
		Details:     details,
		Error:       errMsg,
	}
	if err := e.store.Audit.Append(ctx, rec); err != nil {
		e.logger.Error(err, "failed to append audit record", "operation", operation)
	}
	if e.notifier != nil {
		auditDetails := map[string]any{"principal_id": principalID, "success": success}
		for k, v := range details {
			auditDetails[k] = v
		}
		if errMsg != "" {
			auditDetails["error"] = errMsg
		}
		e.notifier.NotifyAudit(ctx, tenant, operation, auditDetails)
	}
}

// notify fires a best-effort notification (step 7); never blocks the caller
// on failure, and is a no-op when no Notifier is configured.
func (e *Executor) notify(ctx context.Context, tenant *model.Tenant, event string, details map[string]any) {
	if e.notifier == nil {
		return
	}
	e.notifier.Notify(ctx, tenant, event, details)
}

// resolveContextID implements step 2 for conversational operations: it
// reuses the provided contextID when non-empty, otherwise creates a new one
// scoped to (tenant, principal, protocol).
func (e *Executor) resolveContextID(ctx context.Context, contextID, tenantID, principalID string) (string, error) {
	protocol := string(reqcontext.ProtocolOf(ctx))
	convoCtx, err := e.convo.Resolve(ctx, contextID, tenantID, principalID, protocol)
	if err != nil {
		return "", err
	}
	return convoCtx.ContextID, nil
}

// persistBestEffort implements steps 3/5: conversation persistence is
// never allowed to fail the calling operation. Returns the persisted
// message so callers needing its id (message/send's response) don't have
// to regenerate one.
func (e *Executor) persistBestEffort(ctx context.Context, contextID string, role model.MessageRole, content string) model.Message {
	msg := model.Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: e.now(),
	}
	if contextID == "" {
		return msg
	}
	e.convo.AppendMessage(ctx, contextID, msg)
	return msg
}
