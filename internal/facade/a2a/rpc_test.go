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

package a2a

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adcontextprotocol/gateway/internal/adapter"
	"github.com/adcontextprotocol/gateway/internal/adapter/mock"
	"github.com/adcontextprotocol/gateway/internal/catalog"
	"github.com/adcontextprotocol/gateway/internal/convo"
	"github.com/adcontextprotocol/gateway/internal/executor"
	"github.com/adcontextprotocol/gateway/internal/model"
	"github.com/adcontextprotocol/gateway/internal/policyengine"
	"github.com/adcontextprotocol/gateway/internal/reqcontext"
	"github.com/adcontextprotocol/gateway/internal/storage"
	"github.com/adcontextprotocol/gateway/internal/tenant"
)

type fakeProducts struct{ byTenant map[string][]*model.Product }

func (f *fakeProducts) Get(context.Context, string, string) (*model.Product, error) {
	return nil, storage.ErrNotFound
}
func (f *fakeProducts) ListByTenant(_ context.Context, tenantID string) ([]*model.Product, error) {
	return f.byTenant[tenantID], nil
}
func (f *fakeProducts) Upsert(_ context.Context, p *model.Product) error {
	f.byTenant[p.TenantID] = append(f.byTenant[p.TenantID], p)
	return nil
}

type fakeContexts struct {
	byID     map[string]*model.ConvoContext
	messages map[string][]model.Message
}

func newFakeContexts() *fakeContexts {
	return &fakeContexts{byID: make(map[string]*model.ConvoContext), messages: make(map[string][]model.Message)}
}
func (f *fakeContexts) GetOrCreate(_ context.Context, contextID, tenantID, principalID, protocol string) (*model.ConvoContext, error) {
	if c, ok := f.byID[contextID]; ok {
		return c, nil
	}
	c := &model.ConvoContext{ContextID: contextID, TenantID: tenantID, PrincipalID: principalID, Protocol: protocol}
	f.byID[contextID] = c
	return c, nil
}
func (f *fakeContexts) Get(_ context.Context, contextID string) (*model.ConvoContext, error) {
	return f.byID[contextID], nil
}
func (f *fakeContexts) SaveState(context.Context, string, map[string]any) error { return nil }
func (f *fakeContexts) AppendMessage(_ context.Context, contextID string, msg model.Message) error {
	f.messages[contextID] = append(f.messages[contextID], msg)
	return nil
}
func (f *fakeContexts) ListMessages(_ context.Context, contextID string, _, _ int) ([]model.Message, error) {
	return f.messages[contextID], nil
}
func (f *fakeContexts) ClearMessages(_ context.Context, contextID string) error {
	f.messages[contextID] = nil
	return nil
}

type fakeAudit struct{}

func (f *fakeAudit) Append(context.Context, *model.AuditRecord) error { return nil }

type fakeTenants struct{ byID map[string]*model.Tenant }

func (f *fakeTenants) Get(_ context.Context, id string) (*model.Tenant, error) {
	if t, ok := f.byID[id]; ok {
		return t, nil
	}
	return nil, storage.ErrNotFound
}
func (f *fakeTenants) GetBySubdomain(context.Context, string) (*model.Tenant, error) {
	return nil, storage.ErrNotFound
}
func (f *fakeTenants) GetByVirtualHost(context.Context, string) (*model.Tenant, error) {
	return nil, storage.ErrNotFound
}
func (f *fakeTenants) ListByAdServer(context.Context, string) ([]*model.Tenant, error) {
	return nil, nil
}
func (f *fakeTenants) Upsert(_ context.Context, t *model.Tenant) error {
	f.byID[t.TenantID] = t
	return nil
}

type fakePrincipals struct{ byToken map[string]*model.Principal }

func (f *fakePrincipals) Get(context.Context, string, string) (*model.Principal, error) {
	return nil, storage.ErrNotFound
}
func (f *fakePrincipals) GetByAccessToken(_ context.Context, tenantID, token string) (*model.Principal, error) {
	if p, ok := f.byToken[tenantID+":"+token]; ok {
		return p, nil
	}
	return nil, storage.ErrNotFound
}
func (f *fakePrincipals) ListByTenant(context.Context, string) ([]*model.Principal, error) {
	return nil, nil
}
func (f *fakePrincipals) Upsert(_ context.Context, p *model.Principal) error {
	f.byToken[p.TenantID+":"+p.AccessToken] = p
	return nil
}

func newTestServer() *Server {
	products := &fakeProducts{byTenant: map[string][]*model.Product{}}
	contexts := newFakeContexts()
	store := storage.NewRegistry(nil, nil, products, nil, nil, nil, contexts, &fakeAudit{}, nil, nil)
	convoMgr := convo.New(contexts, nil, logr.Discard())

	adapters := adapter.NewRegistry(logr.Discard())
	adapters.Register("mock", func(*model.Tenant, *model.Principal) (adapter.Adapter, error) {
		return mock.New(logr.Discard()), nil
	})

	exec := executor.New(store, policyengine.New(), catalog.NewDatabase(products), convoMgr, adapters, nil, logr.Discard(), func() time.Time {
		return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	}, nil, nil)

	tenants := &fakeTenants{byID: map[string]*model.Tenant{
		"acme": {TenantID: "acme", IsActive: true},
	}}
	principals := &fakePrincipals{byToken: map[string]*model.Principal{
		"acme:sk-good": {TenantID: "acme", PrincipalID: "principal_1"},
	}}
	registry := tenant.New(tenants, principals, logr.Discard())

	return New(exec, registry, logr.Discard(), []string{"https://buyer.example.com"})
}

func rpcCall(t *testing.T, s *Server, method string, params map[string]any, tokenHeader bool) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
		"id":      1,
	})
	req := httptest.NewRequest(http.MethodPost, "/rpc", bytes.NewReader(body))
	req.Header.Set(reqcontext.HeaderTenant, "acme")
	if tokenHeader {
		req.Header.Set(reqcontext.HeaderAuth, "sk-good")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleRPC_GetSignalsReturnsTask(t *testing.T) {
	s := newTestServer()
	rec := rpcCall(t, s, "get_signals", map[string]any{"type": "geographic"}, true)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp rpcResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Nil(t, resp.Error)

	result := resp.Result.(map[string]any)
	assert.Equal(t, "task", result["kind"])
	status := result["status"].(map[string]any)
	assert.Equal(t, "completed", status["state"])
}

func TestHandleRPC_MissingAuthReturnsJSONRPCError(t *testing.T) {
	s := newTestServer()
	rec := rpcCall(t, s, "get_signals", nil, false)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp rpcResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, rpcErrAuth, resp.Error.Code)
}

func TestHandleRPC_UnknownMethodReturnsMethodNotFound(t *testing.T) {
	s := newTestServer()
	rec := rpcCall(t, s, "not_a_real_method", nil, true)

	var resp rpcResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Contains(t, resp.Error.Message, "not_a_real_method")
}

func TestHandleRPC_MessageSendReturnsMessageNotTask(t *testing.T) {
	s := newTestServer()
	rec := rpcCall(t, s, "message/send", map[string]any{"content": "hello there"}, true)

	var resp rpcResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Nil(t, resp.Error)
	result := resp.Result.(map[string]any)
	assert.Equal(t, "message", result["kind"])
	assert.NotEmpty(t, result["contextId"])
}

func TestHandleRPC_InvalidJSONRPCVersionRejected(t *testing.T) {
	s := newTestServer()
	body, _ := json.Marshal(map[string]any{"jsonrpc": "1.0", "method": "get_signals", "id": 1})
	req := httptest.NewRequest(http.MethodPost, "/rpc", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var resp rpcResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, rpcErrInvalidRequest, resp.Error.Code)
}

func TestHandleAgentCard_ReturnsWellKnownDocument(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/.well-known/agent-card.json", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var card agentCard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &card))
	assert.NotEmpty(t, card.Name)
	assert.NotEmpty(t, card.Skills)
}

func TestWithCORS_EchoesAllowedOriginOnly(t *testing.T) {
	s := newTestServer()

	allowed := httptest.NewRequest(http.MethodOptions, "/rpc", nil)
	allowed.Header.Set("Origin", "https://buyer.example.com")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, allowed)
	assert.Equal(t, "https://buyer.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	disallowed := httptest.NewRequest(http.MethodOptions, "/rpc", nil)
	disallowed.Header.Set("Origin", "https://evil.example.com")
	rec2 := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec2, disallowed)
	assert.Empty(t, rec2.Header().Get("Access-Control-Allow-Origin"))
}
