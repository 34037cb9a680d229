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
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/adcontextprotocol/gateway/internal/executor"
	"github.com/adcontextprotocol/gateway/internal/facade/authn"
	"github.com/adcontextprotocol/gateway/internal/facade/wire"
	"github.com/adcontextprotocol/gateway/internal/model"
	"github.com/adcontextprotocol/gateway/internal/reqcontext"
)

const jsonRPCVersion = "2.0"

const (
	rpcErrInvalidRequest = -32600
	rpcErrAuth           = -32000
	rpcErrInternal       = -32603
)

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	ID      any             `json:"id"`
}

type rpcResponse struct {
	JSONRPC string    `json:"jsonrpc"`
	Result  any       `json:"result,omitempty"`
	Error   *rpcError `json:"error,omitempty"`
	ID      any       `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, nil, rpcErrInvalidRequest, "Invalid request")
		return
	}
	if req.JSONRPC != jsonRPCVersion || req.Method == "" {
		s.writeError(w, req.ID, rpcErrInvalidRequest, "Invalid request")
		return
	}

	ctx, err := authn.Authenticate(r.Context(), s.tenants, r, reqcontext.ProtocolA2A)
	if err != nil {
		s.writeError(w, req.ID, rpcErrAuth, "Authentication required")
		return
	}

	var params map[string]any
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			s.writeError(w, req.ID, rpcErrInvalidRequest, "Invalid request")
			return
		}
	}

	result, rpcErr := s.dispatch(ctx, req.Method, params)
	if rpcErr != nil {
		s.writeError(w, req.ID, rpcErr.Code, rpcErr.Message)
		return
	}

	s.writeJSON(w, rpcResponse{JSONRPC: jsonRPCVersion, Result: result, ID: req.ID})
}

// dispatch routes one A2A method to its Task Executor operation and renders
// the result into the method's A2A response shape (a Message for
// message/send, a Task for everything else).
func (s *Server) dispatch(ctx context.Context, method string, params map[string]any) (any, *rpcError) {
	switch method {
	case "get_products":
		req := executor.GetProductsRequest{
			Brief:             wire.String(params, "brief"),
			PromotedOffering:  wire.Stringify(params["promoted_offering"]),
			Countries:         wire.StringSlice(params, "countries"),
			Formats:           wire.StringSlice(params, "formats"),
			TargetingFeatures: wire.StringSlice(params, "targeting_features"),
		}
		return renderTask(s.executor.GetProducts(ctx, req)), nil

	case "get_signals":
		return renderTask(s.executor.GetSignals(ctx, wire.String(params, "query"), wire.String(params, "type"))), nil

	case "message/send":
		content := messageContent(params)
		contextID := messageContextID(params)
		reply, tr := s.executor.SendMessage(ctx, contextID, content)
		if tr.Status == executor.StatusFailed {
			return nil, taskErrorAsRPC(tr)
		}
		return renderMessage(reply), nil

	case "message/list":
		return renderTask(s.executor.ListMessages(ctx, wire.String(params, "context_id"), wire.Int(params, "limit", 50), wire.Int(params, "offset", 0))), nil

	case "context/clear":
		return renderTask(s.executor.ClearContext(ctx, wire.String(params, "context_id"))), nil

	case "create_media_buy":
		startDate, _ := wire.ParseDate(wire.String(params, "flight_start_date"))
		endDate, _ := wire.ParseDate(wire.String(params, "flight_end_date"))
		req := executor.CreateMediaBuyRequest{
			ProductIDs:       wire.StringSlice(params, "product_ids"),
			TotalBudget:      wire.Float64(params, "total_budget"),
			FlightStartDate:  startDate,
			FlightEndDate:    endDate,
			TargetingOverlay: wire.DecodeTargeting(wire.Map(params, "targeting_overlay")),
			PromotedOffering: wire.Stringify(params["promoted_offering"]),
		}
		return renderTask(s.executor.CreateMediaBuy(ctx, req)), nil

	case "submit_creatives":
		raw, _ := params["creatives"].([]any)
		creatives := make([]*model.Creative, 0, len(raw))
		for _, c := range raw {
			if m, ok := c.(map[string]any); ok {
				creatives = append(creatives, wire.DecodeCreative(m))
			}
		}
		return renderTask(s.executor.SubmitCreatives(ctx, wire.String(params, "media_buy_id"), creatives)), nil

	case "get_media_buy_status":
		return renderTask(s.executor.GetMediaBuyStatus(ctx, wire.String(params, "media_buy_id"))), nil

	case "update_media_buy":
		return renderTask(s.executor.UpdateMediaBuy(ctx, wire.String(params, "media_buy_id"), decodeUpdateRequest(wire.Map(params, "updates")))), nil

	case "get_creative_status":
		return renderTask(s.executor.GetCreativeStatus(ctx, wire.String(params, "creative_id"))), nil

	case "get_media_buy_delivery":
		return renderTask(s.executor.GetMediaBuyDelivery(ctx, wire.String(params, "media_buy_id"))), nil

	case "get_targeting_capabilities":
		return renderTask(s.executor.GetTargetingCapabilities(ctx, wire.StringSlice(params, "channels"))), nil

	case "create_human_task":
		taskType := model.TaskType(wire.String(params, "task_type"))
		return renderTask(s.executor.CreateHumanTask(ctx, taskType, wire.String(params, "media_buy_id"), wire.String(params, "description"), wire.Map(params, "metadata"))), nil

	case "verify_task":
		return renderTask(s.executor.VerifyTask(ctx, wire.String(params, "task_id"))), nil

	case "get_advertisers":
		return renderTask(s.executor.GetAdvertisers(ctx)), nil

	case "discover_ad_units":
		return renderTask(s.executor.DiscoverAdUnits(ctx, wire.String(params, "parent"), wire.Int(params, "max_depth", 10))), nil

	case "sync_inventory":
		return renderTask(s.executor.TriggerSync(ctx, model.SyncInventory, wire.Bool(params, "force"))), nil

	case "sync_orders":
		return renderTask(s.executor.TriggerSync(ctx, model.SyncOrders, wire.Bool(params, "force"))), nil

	case "sync_full":
		return renderTask(s.executor.TriggerSync(ctx, model.SyncFull, wire.Bool(params, "force"))), nil

	case "get_sync_status":
		return renderTask(s.executor.GetSyncStatus(ctx, wire.String(params, "sync_id"))), nil

	case "get_sync_history":
		return renderTask(s.executor.GetSyncHistory(ctx, wire.Int(params, "limit", 10), wire.Int(params, "offset", 0), model.SyncStatus(wire.String(params, "status_filter")))), nil

	case "needs_sync":
		return renderTask(s.executor.NeedsSync(ctx, model.SyncType(wire.String(params, "sync_type")), wire.Int(params, "max_age_hours", 24))), nil

	case "get_creative_upload_url":
		return renderTask(s.executor.GetCreativeUploadURL(ctx, wire.String(params, "filename"), wire.String(params, "mime_type"), int64(wire.Float64(params, "size_bytes")))), nil

	case "confirm_creative_upload":
		return renderTask(s.executor.ConfirmCreativeUpload(ctx, wire.String(params, "upload_id"))), nil

	default:
		return nil, &rpcError{Code: rpcErrInternal, Message: fmt.Sprintf("Method not found: %s", method)}
	}
}

// decodeUpdateRequest maps update_media_buy's nested "updates" object onto
// the Executor's typed request, leaving every unset field nil/zero so
// UpdateMediaBuy can tell "not requested" from "cleared".
func decodeUpdateRequest(updates map[string]any) executor.UpdateMediaBuyRequest {
	var req executor.UpdateMediaBuyRequest
	if updates == nil {
		return req
	}
	req.Action = wire.String(updates, "action")
	if t := wire.Map(updates, "targeting_overlay"); t != nil {
		decoded := wire.DecodeTargeting(t)
		req.TargetingOverlay = &decoded
	}
	if s := wire.String(updates, "flight_start_date"); s != "" {
		if d, err := wire.ParseDate(s); err == nil {
			req.FlightStartDate = &d
		}
	}
	if s := wire.String(updates, "flight_end_date"); s != "" {
		if d, err := wire.ParseDate(s); err == nil {
			req.FlightEndDate = &d
		}
	}
	req.PackageID = wire.String(updates, "package_id")
	if _, ok := updates["new_budget"]; ok {
		v := wire.Float64(updates, "new_budget")
		req.NewBudget = &v
	}
	return req
}

// messageContent extracts the text of an inbound message/send call, which
// arrives either as a flat {content} or a nested {message:{parts:[...]}}.
func messageContent(params map[string]any) string {
	if content := wire.String(params, "content"); content != "" {
		return content
	}
	msg := wire.Map(params, "message")
	for _, p := range asSlice(msg["parts"]) {
		part, ok := p.(map[string]any)
		if !ok {
			continue
		}
		if wire.String(part, "kind") == "text" || part["text"] != nil {
			if text := wire.String(part, "text"); text != "" {
				return text
			}
		}
	}
	return ""
}

// messageContextID prefers the top-level context_id, falling back to the
// nested message's contextId.
func messageContextID(params map[string]any) string {
	if id := wire.String(params, "context_id"); id != "" {
		return id
	}
	msg := wire.Map(params, "message")
	return wire.String(msg, "contextId")
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

// renderTask builds the A2A Task object (§6.2) for every operation except
// message/send.
func renderTask(tr executor.TaskResult) map[string]any {
	status := map[string]any{"state": string(tr.Status)}
	if tr.Message != "" {
		status["message"] = tr.Message
	}
	if tr.Status == executor.StatusFailed && tr.Error != nil {
		status["error"] = tr.Error.Message
	}

	task := map[string]any{
		"kind":    "task",
		"id":      tr.TaskID,
		"status":  status,
		"artifact": tr.Data,
		"history": []any{},
	}
	if tr.Data != nil {
		if pc, ok := tr.Data["policy_compliance"]; ok && pc != nil {
			task["policy_compliance"] = pc
		}
		if cn, ok := tr.Data["clarification_needed"]; ok && cn == true {
			task["clarification_needed"] = true
		}
	}
	return task
}

// renderMessage builds the A2A Message object message/send returns.
func renderMessage(msg executor.AgentMessage) map[string]any {
	parts := []map[string]any{{"kind": "text", "text": msg.Text}}
	if msg.Data != nil {
		parts = append(parts, map[string]any{"kind": "data", "data": msg.Data})
	}
	return map[string]any{
		"kind":      "message",
		"messageId": msg.MessageID,
		"role":      msg.Role,
		"parts":     parts,
		"contextId": msg.ContextID,
	}
}

// taskErrorAsRPC surfaces a failed TaskResult (from SendMessage's auth/
// context-resolution path) as a JSON-RPC error rather than a Message.
func taskErrorAsRPC(tr executor.TaskResult) *rpcError {
	msg := tr.Message
	if msg == "" {
		msg = "internal error"
	}
	return &rpcError{Code: rpcErrInternal, Message: msg}
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error(err, "failed to encode rpc response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, id any, code int, message string) {
	s.writeJSON(w, rpcResponse{JSONRPC: jsonRPCVersion, Error: &rpcError{Code: code, Message: message}, ID: id})
}
