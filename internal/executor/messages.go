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
	"strings"

	"github.com/adcontextprotocol/gateway/internal/apierr"
	"github.com/adcontextprotocol/gateway/internal/model"
)

// AgentMessage is the wire-neutral shape of an agent reply to message/send;
// facades render it into their own protocol's Message object.
type AgentMessage struct {
	MessageID string
	Role      string
	Text      string
	Data      map[string]any
	ContextID string
	Timestamp int64
}

var inventoryKeywords = []string{"product", "inventory", "sport", "video", "display", "audio"}
var campaignKeywords = []string{"campaign", "media buy", "media_buy", "buy", "flight"}
var statusKeywords = []string{"status", "delivery", "deliver", "spend", "impression"}

func containsAny(haystack string, needles []string) bool {
	haystack = strings.ToLower(haystack)
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

// SendMessage persists the buyer's message, routes it by simple keyword
// intent, persists the agent's reply, and returns it. This never returns a
// Task — message/send is the one operation whose A2A response is a Message.
func (e *Executor) SendMessage(ctx context.Context, contextID, content string) (AgentMessage, TaskResult) {
	ctx, span := e.startSpan(ctx, "send_message")
	defer span.End()

	tenant, principalID, authErr := e.requirePrincipal(ctx)
	if authErr != nil {
		return AgentMessage{}, failed(authErr)
	}

	resolvedContextID, err := e.resolveContextID(ctx, contextID, tenant.TenantID, principalID)
	if err != nil {
		return AgentMessage{}, failed(apierr.Wrap(apierr.Upstream, "resolve context", err))
	}

	e.persistBestEffort(ctx, resolvedContextID, model.RoleUser, content)

	var replyText string
	var data map[string]any
	switch {
	case containsAny(content, inventoryKeywords):
		result := e.GetProducts(ctx, GetProductsRequest{Brief: content})
		if result.Status == StatusCompleted {
			data = result.Data
			if msg, ok := data["clarification_needed"]; ok && msg == true {
				replyText = result.Message
			} else {
				replyText = "Here's what I found in the catalog matching that."
			}
		} else {
			replyText = "I couldn't look up the catalog right now: " + result.Message
		}
	case containsAny(content, statusKeywords):
		replyText = "Which media buy ID would you like the status or delivery metrics for?"
	case containsAny(content, campaignKeywords):
		replyText = "To set up a media buy I'll need: the product IDs, total budget, flight start/end dates, and (optionally) a targeting overlay and promoted offering."
	default:
		replyText = "I can help discover ad products, create and manage media buys, submit creatives, and report on delivery. What would you like to do?"
	}

	reply := e.persistBestEffort(ctx, resolvedContextID, model.RoleAgent, replyText)

	e.audit(ctx, tenant, principalID, "message/send", true, map[string]any{"context_id": resolvedContextID}, "")
	return AgentMessage{
		MessageID: reply.ID,
		Role:      "agent",
		Text:      replyText,
		Data:      data,
		ContextID: resolvedContextID,
		Timestamp: reply.Timestamp.Unix(),
	}, completed("", nil)
}

// ListMessages returns the persisted-plus-pending message log for a context.
func (e *Executor) ListMessages(ctx context.Context, contextID string, limit, offset int) TaskResult {
	ctx, span := e.startSpan(ctx, "list_messages")
	defer span.End()

	tenant, principalID, authErr := e.requirePrincipal(ctx)
	if authErr != nil {
		return failed(authErr)
	}
	if limit <= 0 {
		limit = 50
	}

	messages, err := e.convo.ListMessages(ctx, contextID, limit, offset)
	if err != nil {
		return failed(apierr.Wrap(apierr.Upstream, "list messages", err))
	}

	e.audit(ctx, tenant, principalID, "message/list", true, map[string]any{"context_id": contextID, "count": len(messages)}, "")
	return completed("", map[string]any{"context_id": contextID, "messages": messages})
}

// ClearContext resets a context's message log, preserving the context id.
func (e *Executor) ClearContext(ctx context.Context, contextID string) TaskResult {
	ctx, span := e.startSpan(ctx, "clear_context")
	defer span.End()

	tenant, principalID, authErr := e.requirePrincipal(ctx)
	if authErr != nil {
		return failed(authErr)
	}

	if err := e.convo.ClearContext(ctx, contextID); err != nil {
		e.audit(ctx, tenant, principalID, "context/clear", false, nil, err.Error())
		return failed(apierr.Wrap(apierr.Upstream, "clear context", err))
	}

	e.audit(ctx, tenant, principalID, "context/clear", true, map[string]any{"context_id": contextID}, "")
	return completed("", map[string]any{"context_id": contextID})
}
