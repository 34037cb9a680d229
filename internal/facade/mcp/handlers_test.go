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

package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/go-logr/logr"
	gosdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adcontextprotocol/gateway/internal/adapter"
	"github.com/adcontextprotocol/gateway/internal/adapter/mock"
	"github.com/adcontextprotocol/gateway/internal/apierr"
	"github.com/adcontextprotocol/gateway/internal/catalog"
	"github.com/adcontextprotocol/gateway/internal/convo"
	"github.com/adcontextprotocol/gateway/internal/executor"
	"github.com/adcontextprotocol/gateway/internal/model"
	"github.com/adcontextprotocol/gateway/internal/policyengine"
	"github.com/adcontextprotocol/gateway/internal/reqcontext"
	"github.com/adcontextprotocol/gateway/internal/storage"
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
	return New(exec, nil, logr.Discard())
}

func authedContext() context.Context {
	ctx := reqcontext.WithTenant(context.Background(), &model.Tenant{TenantID: "acme", IsActive: true})
	ctx = reqcontext.WithPrincipalID(ctx, "principal_1")
	return reqcontext.WithProtocol(ctx, reqcontext.ProtocolMCP)
}

func TestGetSignals_ReturnsFilteredOutput(t *testing.T) {
	s := newTestServer()
	errResult, out, err := s.GetSignals(authedContext(), nil, GetSignalsInput{Type: "geographic"})
	require.NoError(t, err)
	assert.Nil(t, errResult)
	require.Len(t, out.Signals, 1)
	assert.Equal(t, "sig_us_metro", out.Signals[0].SignalID)
}

func TestGetSignals_UnauthenticatedReturnsToolError(t *testing.T) {
	s := newTestServer()
	errResult, out, err := s.GetSignals(context.Background(), nil, GetSignalsInput{})
	require.NoError(t, err)
	require.NotNil(t, errResult)
	assert.True(t, errResult.IsError)
	assert.Empty(t, out.Signals)
}

func TestMessageSend_ReturnsReplyAndContextID(t *testing.T) {
	s := newTestServer()
	errResult, out, err := s.MessageSend(authedContext(), nil, MessageSendInput{Content: "show me products"})
	require.NoError(t, err)
	assert.Nil(t, errResult)
	assert.NotEmpty(t, out.ContextID)
	assert.Equal(t, "agent", out.Role)
}

func TestMessageList_RoundTripsThroughContextClear(t *testing.T) {
	s := newTestServer()
	ctx := authedContext()
	sendResult, sendOut, err := s.MessageSend(ctx, nil, MessageSendInput{Content: "hello"})
	require.NoError(t, err)
	require.Nil(t, sendResult)

	_, listOut, err := s.MessageList(ctx, nil, MessageListInput{ContextID: sendOut.ContextID})
	require.NoError(t, err)
	assert.Len(t, listOut.Messages, 2)

	_, clearOut, err := s.ContextClear(ctx, nil, ContextClearInput{ContextID: sendOut.ContextID})
	require.NoError(t, err)
	assert.Equal(t, sendOut.ContextID, clearOut.ContextID)

	_, listOut, err = s.MessageList(ctx, nil, MessageListInput{ContextID: sendOut.ContextID})
	require.NoError(t, err)
	assert.Empty(t, listOut.Messages)
}

func TestDecodeUpdateRequest_MapsPresentFieldsOnly(t *testing.T) {
	req := decodeUpdateRequest(map[string]any{
		"new_budget":        float64(5000),
		"flight_start_date": "2026-07-01",
	})
	require.NotNil(t, req.NewBudget)
	assert.Equal(t, 5000.0, *req.NewBudget)
	require.NotNil(t, req.FlightStartDate)
	assert.Nil(t, req.FlightEndDate)
	assert.Nil(t, req.TargetingOverlay)
}

func TestDecodeUpdateRequest_NilUpdatesReturnsZeroValue(t *testing.T) {
	req := decodeUpdateRequest(nil)
	assert.Nil(t, req.NewBudget)
	assert.Nil(t, req.TargetingOverlay)
}

func TestToolError_FallsBackToTaskResultMessage(t *testing.T) {
	result := toolError(executor.TaskResult{Status: executor.StatusFailed, Message: "boom"})
	require.True(t, result.IsError)
	text, ok := result.Content[0].(*gosdk.TextContent)
	require.True(t, ok)
	assert.Equal(t, "boom", text.Text)
}

func TestToolError_PrefersUnderlyingAPIError(t *testing.T) {
	result := toolError(executor.TaskResult{
		Status:  executor.StatusFailed,
		Message: "generic wrapper message",
		Error:   apierr.New(apierr.Validation, "specific validation failure"),
	})
	text, ok := result.Content[0].(*gosdk.TextContent)
	require.True(t, ok)
	assert.Equal(t, "specific validation failure", text.Text)
}
