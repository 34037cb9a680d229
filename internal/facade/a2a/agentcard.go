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
	"encoding/json"
	"net/http"
	"strings"
)

type agentCard struct {
	Name                             string          `json:"name"`
	Version                          string          `json:"version"`
	Description                      string          `json:"description"`
	ProtocolVersion                  string          `json:"protocolVersion"`
	URL                              string          `json:"url"`
	RPCEndpoints                     []rpcEndpoint   `json:"rpcEndpoints"`
	Capabilities                     capabilities    `json:"capabilities"`
	Skills                           []skill         `json:"skills"`
	DefaultInputModes                []string        `json:"defaultInputModes"`
	DefaultOutputModes               []string        `json:"defaultOutputModes"`
	SupportsAuthenticatedExtendedCard bool           `json:"supportsAuthenticatedExtendedCard"`
	SecuritySchemes                  securitySchemes `json:"securitySchemes"`
	Security                         []map[string][]string `json:"security"`
}

type rpcEndpoint struct {
	URL       string   `json:"url"`
	Transport string   `json:"transport"`
	Methods   []string `json:"methods"`
}

type capabilities struct {
	Extensions             any `json:"extensions"`
	PushNotifications      any `json:"pushNotifications"`
	StateTransitionHistory any `json:"stateTransitionHistory"`
	Streaming              any `json:"streaming"`
}

type securitySchemes struct {
	Bearer bearerScheme `json:"bearer"`
}

type bearerScheme struct {
	Type        string `json:"type"`
	Scheme      string `json:"scheme"`
	Description string `json:"description"`
}

type skill struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Tags        []string       `json:"tags"`
	InputSchema map[string]any `json:"inputSchema"`
}

// skills lists every executor operation (§6.4); IDs must match the
// executor method dispatch table in rpc.go exactly.
var skills = []skill{
	{
		ID: "get_products", Name: "get_products",
		Description: "Get available advertising products",
		Tags:        []string{"advertising", "products", "discovery"},
		InputSchema: objectSchema(map[string]any{
			"brief":              map[string]any{"type": "string", "description": "Natural language description"},
			"countries":          arraySchema("string"),
			"formats":            arraySchema("string"),
			"targeting_features": map[string]any{"type": "object"},
			"promoted_offering":  map[string]any{"type": "object"},
		}, nil),
	},
	{
		ID: "get_signals", Name: "get_signals",
		Description: "Discover available targeting signals",
		Tags:        []string{"targeting", "signals", "discovery"},
		InputSchema: objectSchema(map[string]any{
			"query":    map[string]any{"type": "string"},
			"type":     map[string]any{"type": "string", "enum": []string{"audience", "contextual", "geographic"}},
			"category": map[string]any{"type": "string"},
		}, nil),
	},
	{
		ID: "message/send", Name: "message/send",
		Description: "Send a message in the conversation",
		Tags:        []string{"messaging", "conversation"},
		InputSchema: objectSchema(map[string]any{
			"content":    map[string]any{"type": "string", "description": "Message content"},
			"context_id": map[string]any{"type": "string", "description": "Conversation context ID"},
			"metadata":   map[string]any{"type": "object", "description": "Optional metadata"},
		}, []string{"content"}),
	},
	{
		ID: "message/list", Name: "message/list",
		Description: "Get conversation messages",
		Tags:        []string{"messaging", "conversation"},
		InputSchema: objectSchema(map[string]any{
			"context_id": map[string]any{"type": "string"},
			"limit":      map[string]any{"type": "integer", "default": 50},
			"offset":     map[string]any{"type": "integer", "default": 0},
		}, nil),
	},
	{
		ID: "context/clear", Name: "context/clear",
		Description: "Clear conversation context",
		Tags:        []string{"context", "conversation"},
		InputSchema: objectSchema(map[string]any{
			"context_id": map[string]any{"type": "string"},
		}, []string{"context_id"}),
	},
	{
		ID: "create_media_buy", Name: "create_media_buy",
		Description: "Create a new media buy campaign",
		Tags:        []string{"campaign", "creation", "media-buy"},
		InputSchema: objectSchema(map[string]any{
			"product_ids":       arraySchema("string"),
			"total_budget":      map[string]any{"type": "number"},
			"flight_start_date": map[string]any{"type": "string", "format": "date"},
			"flight_end_date":   map[string]any{"type": "string", "format": "date"},
			"targeting_overlay": map[string]any{"type": "object"},
			"promoted_offering": map[string]any{"type": "object"},
		}, []string{"product_ids", "total_budget", "flight_start_date", "flight_end_date"}),
	},
	{
		ID: "submit_creatives", Name: "submit_creatives",
		Description: "Submit creatives for a media buy",
		Tags:        []string{"creative", "assets", "submission"},
		InputSchema: objectSchema(map[string]any{
			"media_buy_id": map[string]any{"type": "string"},
			"creatives":    map[string]any{"type": "array"},
		}, []string{"media_buy_id", "creatives"}),
	},
	{
		ID: "get_media_buy_status", Name: "get_media_buy_status",
		Description: "Get status of a media buy",
		Tags:        []string{"monitoring", "status", "media-buy"},
		InputSchema: objectSchema(map[string]any{
			"media_buy_id": map[string]any{"type": "string"},
		}, []string{"media_buy_id"}),
	},
	{
		ID: "update_media_buy", Name: "update_media_buy",
		Description: "Update a media buy",
		Tags:        []string{"campaign", "update", "media-buy"},
		InputSchema: objectSchema(map[string]any{
			"media_buy_id": map[string]any{"type": "string"},
			"updates":      map[string]any{"type": "object"},
		}, []string{"media_buy_id", "updates"}),
	},
	{
		ID: "get_creative_status", Name: "get_creative_status",
		Description: "Get status of a creative",
		Tags:        []string{"creative", "status", "monitoring"},
		InputSchema: objectSchema(map[string]any{
			"creative_id": map[string]any{"type": "string"},
		}, []string{"creative_id"}),
	},
	{
		ID: "get_media_buy_delivery", Name: "get_media_buy_delivery",
		Description: "Get delivery metrics for a media buy",
		Tags:        []string{"monitoring", "metrics", "analytics"},
		InputSchema: objectSchema(map[string]any{
			"media_buy_id": map[string]any{"type": "string"},
			"start_date":   map[string]any{"type": "string", "format": "date"},
			"end_date":     map[string]any{"type": "string", "format": "date"},
		}, []string{"media_buy_id"}),
	},
	{
		ID: "get_targeting_capabilities", Name: "get_targeting_capabilities",
		Description: "Get available targeting dimensions",
		Tags:        []string{"targeting", "capabilities", "discovery"},
		InputSchema: objectSchema(map[string]any{
			"channels": arraySchema("string"),
		}, nil),
	},
	{
		ID: "create_human_task", Name: "create_human_task",
		Description: "Create a task requiring human intervention",
		Tags:        []string{"human-in-the-loop", "task", "approval"},
		InputSchema: objectSchema(map[string]any{
			"task_type":   map[string]any{"type": "string"},
			"description": map[string]any{"type": "string"},
			"metadata":    map[string]any{"type": "object"},
		}, []string{"task_type", "description"}),
	},
	{
		ID: "verify_task", Name: "verify_task",
		Description: "Verify if a task was completed correctly",
		Tags:        []string{"verification", "task", "human-in-the-loop"},
		InputSchema: objectSchema(map[string]any{
			"task_id": map[string]any{"type": "string"},
		}, []string{"task_id"}),
	},
	{
		ID: "get_advertisers", Name: "get_advertisers",
		Description: "List advertisers eligible for order assignment",
		Tags:        []string{"inventory", "discovery"},
		InputSchema: objectSchema(map[string]any{}, nil),
	},
	{
		ID: "discover_ad_units", Name: "discover_ad_units",
		Description: "Discover ad units in the ad server's placement hierarchy",
		Tags:        []string{"inventory", "discovery"},
		InputSchema: objectSchema(map[string]any{
			"parent":    map[string]any{"type": "string"},
			"max_depth": map[string]any{"type": "integer", "default": 10},
		}, nil),
	},
	{
		ID: "sync_inventory", Name: "sync_inventory",
		Description: "Synchronize ad units and custom targeting from the ad server",
		Tags:        []string{"inventory", "sync"},
		InputSchema: objectSchema(map[string]any{
			"force": map[string]any{"type": "boolean", "default": false},
		}, nil),
	},
	{
		ID: "sync_orders", Name: "sync_orders",
		Description: "Synchronize orders from the ad server",
		Tags:        []string{"inventory", "sync"},
		InputSchema: objectSchema(map[string]any{
			"force": map[string]any{"type": "boolean", "default": false},
		}, nil),
	},
	{
		ID: "sync_full", Name: "sync_full",
		Description: "Perform a full inventory and orders sync",
		Tags:        []string{"inventory", "sync"},
		InputSchema: objectSchema(map[string]any{
			"force": map[string]any{"type": "boolean", "default": false},
		}, nil),
	},
	{
		ID: "get_sync_status", Name: "get_sync_status",
		Description: "Get the status of a sync job",
		Tags:        []string{"inventory", "sync", "monitoring"},
		InputSchema: objectSchema(map[string]any{
			"sync_id": map[string]any{"type": "string"},
		}, []string{"sync_id"}),
	},
	{
		ID: "get_sync_history", Name: "get_sync_history",
		Description: "List past sync job runs",
		Tags:        []string{"inventory", "sync", "monitoring"},
		InputSchema: objectSchema(map[string]any{
			"limit":         map[string]any{"type": "integer", "default": 10},
			"offset":        map[string]any{"type": "integer", "default": 0},
			"status_filter": map[string]any{"type": "string", "enum": []string{"running", "completed", "failed"}},
		}, nil),
	},
	{
		ID: "needs_sync", Name: "needs_sync",
		Description: "Check whether a sync type is stale enough to warrant a new run",
		Tags:        []string{"inventory", "sync"},
		InputSchema: objectSchema(map[string]any{
			"sync_type":     map[string]any{"type": "string", "enum": []string{"inventory", "orders", "full"}},
			"max_age_hours": map[string]any{"type": "integer", "default": 24},
		}, []string{"sync_type"}),
	},
	{
		ID: "get_creative_upload_url", Name: "get_creative_upload_url",
		Description: "Get upload credentials for a hosted-asset creative",
		Tags:        []string{"creative", "media"},
		InputSchema: objectSchema(map[string]any{
			"filename":   map[string]any{"type": "string"},
			"mime_type":  map[string]any{"type": "string"},
			"size_bytes": map[string]any{"type": "integer"},
		}, []string{"filename", "mime_type"}),
	},
	{
		ID: "confirm_creative_upload", Name: "confirm_creative_upload",
		Description: "Confirm a direct-upload creative asset finished uploading",
		Tags:        []string{"creative", "media"},
		InputSchema: objectSchema(map[string]any{
			"upload_id": map[string]any{"type": "string"},
		}, []string{"upload_id"}),
	},
}

func objectSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{"type": "object", "properties": properties}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func arraySchema(itemType string) map[string]any {
	return map[string]any{"type": "array", "items": map[string]any{"type": itemType}}
}

func (s *Server) handleAgentCard(w http.ResponseWriter, r *http.Request) {
	root := rootURL(r)
	card := agentCard{
		Name:             "ADCP Sales Agent",
		Version:          "2.4",
		Description:      "Advertising Context Protocol (AdCP) sales agent for managing programmatic advertising",
		ProtocolVersion:  "0.3.0",
		URL:              root + "/rpc",
		RPCEndpoints:     []rpcEndpoint{{URL: root + "/rpc", Transport: "http", Methods: []string{"POST"}}},
		Capabilities:     capabilities{},
		Skills:           skills,
		DefaultInputModes:  []string{"text"},
		DefaultOutputModes: []string{"text"},
		SupportsAuthenticatedExtendedCard: false,
		SecuritySchemes: securitySchemes{Bearer: bearerScheme{
			Type:        "http",
			Scheme:      "bearer",
			Description: "Use x-adcp-auth header with your access token",
		}},
		Security: []map[string][]string{{"bearer": {}}},
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(card); err != nil {
		s.logger.Error(err, "failed to encode agent card")
	}
}

// rootURL reconstructs the request's scheme+host, mirroring the source's
// str(request.url).replace(request.url.path, "").
func rootURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
