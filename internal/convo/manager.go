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

// Package convo implements the conversation Context Manager (C5): a stable
// context_id per (tenant, principal, protocol), an ordered message log, and
// a free-form state map. Persisted context is the source of truth; the
// optional hot cache is a write-through layer holding messages not yet
// confirmed durable, unioned back in on read.
package convo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/adcontextprotocol/gateway/internal/model"
	"github.com/adcontextprotocol/gateway/internal/storage"
)

const pendingMessagesKey = "pending_messages"

// Manager resolves conversation contexts and manages their message logs.
type Manager struct {
	contexts storage.ContextRepository
	hot      storage.HotCache // may be nil; every use falls back to warm store
	logger   logr.Logger
}

// New constructs a Manager. hot may be nil.
func New(contexts storage.ContextRepository, hot storage.HotCache, logger logr.Logger) *Manager {
	return &Manager{contexts: contexts, hot: hot, logger: logger.WithName("convo")}
}

// Resolve returns the context for contextID, creating it (and generating a
// fresh id, if contextID is empty) scoped to (tenantID, principalID, protocol).
func (m *Manager) Resolve(ctx context.Context, contextID, tenantID, principalID, protocol string) (*model.ConvoContext, error) {
	if contextID == "" {
		contextID = uuid.NewString()
	}
	c, err := m.contexts.GetOrCreate(ctx, contextID, tenantID, principalID, protocol)
	if err != nil {
		return nil, fmt.Errorf("resolve context: %w", err)
	}
	return c, nil
}

// AppendMessage persists one message to the log. Persistence is best-effort:
// a storage failure is logged and the message is instead staged in the hot
// cache, never surfaced to the caller as an error.
func (m *Manager) AppendMessage(ctx context.Context, contextID string, msg model.Message) {
	if err := m.contexts.AppendMessage(ctx, contextID, msg); err != nil {
		m.logger.Error(err, "append message to warm store failed, staging in hot cache", "context_id", contextID)
		m.stagePending(ctx, contextID, msg)
		return
	}
	m.unstagePending(ctx, contextID, msg.ID)
}

// ListMessages returns the persisted message log unioned with any messages
// still staged in the hot cache (not yet confirmed durable).
func (m *Manager) ListMessages(ctx context.Context, contextID string, limit, offset int) ([]model.Message, error) {
	persisted, err := m.contexts.ListMessages(ctx, contextID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	pending := m.readPending(ctx, contextID)
	if len(pending) == 0 {
		return persisted, nil
	}

	seen := make(map[string]struct{}, len(persisted))
	for _, msg := range persisted {
		seen[msg.ID] = struct{}{}
	}
	out := persisted
	for _, msg := range pending {
		if _, ok := seen[msg.ID]; ok {
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}

// ClearContext resets the message log to empty, preserving context_id.
func (m *Manager) ClearContext(ctx context.Context, contextID string) error {
	if err := m.contexts.ClearMessages(ctx, contextID); err != nil {
		return fmt.Errorf("clear context: %w", err)
	}
	if m.hot != nil {
		if err := m.hot.SetState(ctx, contextID, map[string]any{}); err != nil {
			m.logger.Error(err, "clear hot cache state failed", "context_id", contextID)
		}
	}
	return nil
}

func (m *Manager) stagePending(ctx context.Context, contextID string, msg model.Message) {
	if m.hot == nil {
		return
	}
	state, _, err := m.hot.GetState(ctx, contextID)
	if err != nil {
		m.logger.Error(err, "read hot cache state failed", "context_id", contextID)
		return
	}
	pending := decodePending(state)
	pending = append(pending, msg)
	if err := m.hot.SetState(ctx, contextID, encodePending(pending)); err != nil {
		m.logger.Error(err, "write hot cache state failed", "context_id", contextID)
	}
}

func (m *Manager) unstagePending(ctx context.Context, contextID, messageID string) {
	if m.hot == nil {
		return
	}
	state, found, err := m.hot.GetState(ctx, contextID)
	if err != nil || !found {
		return
	}
	pending := decodePending(state)
	if len(pending) == 0 {
		return
	}
	kept := pending[:0]
	for _, msg := range pending {
		if msg.ID != messageID {
			kept = append(kept, msg)
		}
	}
	if err := m.hot.SetState(ctx, contextID, encodePending(kept)); err != nil {
		m.logger.Error(err, "write hot cache state failed", "context_id", contextID)
	}
}

func (m *Manager) readPending(ctx context.Context, contextID string) []model.Message {
	if m.hot == nil {
		return nil
	}
	state, found, err := m.hot.GetState(ctx, contextID)
	if err != nil {
		m.logger.Error(err, "read hot cache state failed", "context_id", contextID)
		return nil
	}
	if !found {
		return nil
	}
	return decodePending(state)
}

func encodePending(pending []model.Message) map[string]any {
	raw, err := json.Marshal(pending)
	if err != nil {
		return map[string]any{}
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return map[string]any{}
	}
	return map[string]any{pendingMessagesKey: generic}
}

func decodePending(state map[string]any) []model.Message {
	raw, ok := state[pendingMessagesKey]
	if !ok {
		return nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil
	}
	var pending []model.Message
	if err := json.Unmarshal(data, &pending); err != nil {
		return nil
	}
	return pending
}
