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
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adcontextprotocol/gateway/internal/adapter"
	"github.com/adcontextprotocol/gateway/internal/adapter/mock"
	"github.com/adcontextprotocol/gateway/internal/catalog"
	"github.com/adcontextprotocol/gateway/internal/convo"
	"github.com/adcontextprotocol/gateway/internal/model"
	"github.com/adcontextprotocol/gateway/internal/policyengine"
	"github.com/adcontextprotocol/gateway/internal/reqcontext"
	"github.com/adcontextprotocol/gateway/internal/storage"
)

type fakeProducts struct {
	byTenant map[string][]*model.Product
}

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
	c, ok := f.byID[contextID]
	if !ok {
		return nil, errors.New("not found")
	}
	return c, nil
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

type fakeAudit struct {
	records []*model.AuditRecord
}

func (f *fakeAudit) Append(_ context.Context, rec *model.AuditRecord) error {
	f.records = append(f.records, rec)
	return nil
}

type fakeNotifier struct {
	notified []string
	audited  []string
}

func (f *fakeNotifier) Notify(_ context.Context, _ *model.Tenant, event string, _ map[string]any) {
	f.notified = append(f.notified, event)
}
func (f *fakeNotifier) NotifyAudit(_ context.Context, _ *model.Tenant, event string, _ map[string]any) {
	f.audited = append(f.audited, event)
}

type testFixture struct {
	exec     *Executor
	products *fakeProducts
	contexts *fakeContexts
	audit    *fakeAudit
	notifier *fakeNotifier
}

func newFixture(t *testing.T) *testFixture {
	t.Helper()
	products := &fakeProducts{byTenant: map[string][]*model.Product{}}
	contexts := newFakeContexts()
	audit := &fakeAudit{}
	notifier := &fakeNotifier{}

	store := storage.NewRegistry(nil, nil, products, nil, nil, nil, contexts, audit, nil, nil)
	convoMgr := convo.New(contexts, nil, logr.Discard())

	adapters := adapter.NewRegistry(logr.Discard())
	adapters.Register("mock", func(*model.Tenant, *model.Principal) (adapter.Adapter, error) {
		return mock.New(logr.Discard()), nil
	})

	exec := New(store, policyengine.New(), catalog.NewDatabase(products), convoMgr, adapters, notifier, logr.Discard(), func() time.Time {
		return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	}, nil, nil)

	return &testFixture{exec: exec, products: products, contexts: contexts, audit: audit, notifier: notifier}
}

func authedContext(tenantID, principalID string) context.Context {
	ctx := reqcontext.WithTenant(context.Background(), &model.Tenant{TenantID: tenantID, IsActive: true})
	ctx = reqcontext.WithPrincipalID(ctx, principalID)
	ctx = reqcontext.WithProtocol(ctx, reqcontext.ProtocolA2A)
	return ctx
}

func TestGetSignals_FiltersByTypeAndQuery(t *testing.T) {
	f := newFixture(t)
	result := f.exec.GetSignals(authedContext("acme", "principal_1"), "", "audience")
	require.Equal(t, StatusCompleted, result.Status)
	signals := result.Data["signals"].([]Signal)
	for _, s := range signals {
		assert.Equal(t, "audience", s.Type)
	}

	result = f.exec.GetSignals(authedContext("acme", "principal_1"), "metro", "")
	signals = result.Data["signals"].([]Signal)
	require.Len(t, signals, 1)
	assert.Equal(t, "sig_us_metro", signals[0].SignalID)
}

func TestGetSignals_RequiresAuthenticatedPrincipal(t *testing.T) {
	f := newFixture(t)
	result := f.exec.GetSignals(context.Background(), "", "")
	assert.Equal(t, StatusFailed, result.Status)
	require.NotNil(t, result.Error)
}

func TestSendMessage_RoutesByKeywordIntent(t *testing.T) {
	f := newFixture(t)
	ctx := authedContext("acme", "principal_1")

	reply, result := f.exec.SendMessage(ctx, "", "what's the status of my media buy?")
	require.Equal(t, StatusCompleted, result.Status)
	assert.Contains(t, reply.Text, "media buy ID")
	assert.NotEmpty(t, reply.ContextID)
}

func TestSendMessage_PersistsBothSidesOfTheConversation(t *testing.T) {
	f := newFixture(t)
	ctx := authedContext("acme", "principal_1")

	reply, _ := f.exec.SendMessage(ctx, "", "hello there")
	messages := f.contexts.messages[reply.ContextID]
	require.Len(t, messages, 2)
	assert.Equal(t, model.RoleUser, messages[0].Role)
	assert.Equal(t, model.RoleAgent, messages[1].Role)
}

func TestSendMessage_ReusesProvidedContextID(t *testing.T) {
	f := newFixture(t)
	ctx := authedContext("acme", "principal_1")

	first, _ := f.exec.SendMessage(ctx, "ctx_existing", "hello")
	second, _ := f.exec.SendMessage(ctx, "ctx_existing", "again")
	assert.Equal(t, first.ContextID, second.ContextID)
	assert.Len(t, f.contexts.messages["ctx_existing"], 4)
}

func TestListMessages_DefaultsLimitWhenNonPositive(t *testing.T) {
	f := newFixture(t)
	ctx := authedContext("acme", "principal_1")
	f.contexts.messages["ctx_1"] = []model.Message{{ID: "msg_1", Content: "hi"}}

	result := f.exec.ListMessages(ctx, "ctx_1", 0, 0)
	require.Equal(t, StatusCompleted, result.Status)
	messages := result.Data["messages"].([]model.Message)
	assert.Len(t, messages, 1)
}

func TestClearContext_ResetsMessageLog(t *testing.T) {
	f := newFixture(t)
	ctx := authedContext("acme", "principal_1")
	f.contexts.messages["ctx_1"] = []model.Message{{ID: "msg_1", Content: "hi"}}

	result := f.exec.ClearContext(ctx, "ctx_1")
	require.Equal(t, StatusCompleted, result.Status)
	assert.Empty(t, f.contexts.messages["ctx_1"])
}

func TestAudit_RecordsEveryOperationOutcome(t *testing.T) {
	f := newFixture(t)
	ctx := authedContext("acme", "principal_1")

	f.exec.GetSignals(ctx, "", "")
	require.Len(t, f.audit.records, 1)
	assert.Equal(t, "get_signals", f.audit.records[0].Operation)
	assert.True(t, f.audit.records[0].Success)
	assert.Len(t, f.notifier.audited, 1)
}
