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

// Package mcp implements the typed-tool MCP facade (C10): one tool per
// executor operation, each handler extracting the principal from the
// request's headers, calling the Task Executor, and converting its
// TaskResult into the tool's typed output or the protocol's tool-error.
// No business logic lives here.
package mcp

import (
	"net/http"

	gosdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/go-logr/logr"

	"github.com/adcontextprotocol/gateway/internal/executor"
	"github.com/adcontextprotocol/gateway/internal/facade/authn"
	"github.com/adcontextprotocol/gateway/internal/reqcontext"
	"github.com/adcontextprotocol/gateway/internal/tenant"
)

// Server is the MCP protocol facade over the Task Executor.
type Server struct {
	executor  *executor.Executor
	tenants   *tenant.Registry
	logger    logr.Logger
	mcpServer *gosdk.Server
}

// New constructs an MCP Server and registers every tool.
func New(exec *executor.Executor, tenants *tenant.Registry, logger logr.Logger) *Server {
	s := &Server{
		executor: exec,
		tenants:  tenants,
		logger:   logger.WithName("mcp-facade"),
	}
	s.mcpServer = gosdk.NewServer(&gosdk.Implementation{
		Name:    "adcp-gateway",
		Version: "2.4",
	}, nil)
	s.registerTools()
	return s
}

// Handler returns the http.Handler serving the MCP streamable-HTTP
// transport, wrapped in authentication middleware so every tool call's
// context already carries the resolved tenant/principal.
func (s *Server) Handler() http.Handler {
	mcpHandler := gosdk.NewStreamableHTTPHandler(func(*http.Request) *gosdk.Server {
		return s.mcpServer
	}, nil)
	return s.withAuth(mcpHandler)
}

// withAuth resolves tenant/principal from the request's headers before the
// transport builds the tool-call context, so every handler below can assume
// an authenticated context.Context without re-deriving it per call.
func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, err := authn.Authenticate(r.Context(), s.tenants, r, reqcontext.ProtocolMCP)
		if err != nil {
			http.Error(w, "Authentication required", authn.StatusFor(err))
			return
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) registerTools() {
	gosdk.AddTool(s.mcpServer, &gosdk.Tool{
		Name:        "get_products",
		Description: "Get available advertising products",
	}, s.GetProducts)
	gosdk.AddTool(s.mcpServer, &gosdk.Tool{
		Name:        "get_signals",
		Description: "Discover available targeting signals",
	}, s.GetSignals)
	gosdk.AddTool(s.mcpServer, &gosdk.Tool{
		Name:        "message_send",
		Description: "Send a message in the conversation",
	}, s.MessageSend)
	gosdk.AddTool(s.mcpServer, &gosdk.Tool{
		Name:        "message_list",
		Description: "Get conversation messages",
	}, s.MessageList)
	gosdk.AddTool(s.mcpServer, &gosdk.Tool{
		Name:        "context_clear",
		Description: "Clear conversation context",
	}, s.ContextClear)
	gosdk.AddTool(s.mcpServer, &gosdk.Tool{
		Name:        "create_media_buy",
		Description: "Create a new media buy campaign",
	}, s.CreateMediaBuy)
	gosdk.AddTool(s.mcpServer, &gosdk.Tool{
		Name:        "submit_creatives",
		Description: "Submit creatives for a media buy",
	}, s.SubmitCreatives)
	gosdk.AddTool(s.mcpServer, &gosdk.Tool{
		Name:        "get_media_buy_status",
		Description: "Get status of a media buy",
	}, s.GetMediaBuyStatus)
	gosdk.AddTool(s.mcpServer, &gosdk.Tool{
		Name:        "update_media_buy",
		Description: "Update a media buy",
	}, s.UpdateMediaBuy)
	gosdk.AddTool(s.mcpServer, &gosdk.Tool{
		Name:        "get_creative_status",
		Description: "Get status of a creative",
	}, s.GetCreativeStatus)
	gosdk.AddTool(s.mcpServer, &gosdk.Tool{
		Name:        "get_media_buy_delivery",
		Description: "Get delivery metrics for a media buy",
	}, s.GetMediaBuyDelivery)
	gosdk.AddTool(s.mcpServer, &gosdk.Tool{
		Name:        "get_targeting_capabilities",
		Description: "Get available targeting dimensions",
	}, s.GetTargetingCapabilities)
	gosdk.AddTool(s.mcpServer, &gosdk.Tool{
		Name:        "create_human_task",
		Description: "Create a task requiring human intervention",
	}, s.CreateHumanTask)
	gosdk.AddTool(s.mcpServer, &gosdk.Tool{
		Name:        "verify_task",
		Description: "Verify if a task was completed correctly",
	}, s.VerifyTask)
	gosdk.AddTool(s.mcpServer, &gosdk.Tool{
		Name:        "get_advertisers",
		Description: "List advertisers eligible for order assignment",
	}, s.GetAdvertisers)
	gosdk.AddTool(s.mcpServer, &gosdk.Tool{
		Name:        "discover_ad_units",
		Description: "Walk the ad server's ad unit hierarchy",
	}, s.DiscoverAdUnits)
	gosdk.AddTool(s.mcpServer, &gosdk.Tool{
		Name:        "sync_inventory",
		Description: "Trigger an ad unit and custom targeting sync",
	}, s.SyncInventory)
	gosdk.AddTool(s.mcpServer, &gosdk.Tool{
		Name:        "sync_orders",
		Description: "Trigger an order sync",
	}, s.SyncOrders)
	gosdk.AddTool(s.mcpServer, &gosdk.Tool{
		Name:        "sync_full",
		Description: "Trigger a full inventory and order sync",
	}, s.SyncFull)
	gosdk.AddTool(s.mcpServer, &gosdk.Tool{
		Name:        "get_sync_status",
		Description: "Get the status of a sync job",
	}, s.GetSyncStatus)
	gosdk.AddTool(s.mcpServer, &gosdk.Tool{
		Name:        "get_sync_history",
		Description: "List past sync jobs",
	}, s.GetSyncHistory)
	gosdk.AddTool(s.mcpServer, &gosdk.Tool{
		Name:        "needs_sync",
		Description: "Check whether a sync type is stale enough to re-run",
	}, s.NeedsSync)
	gosdk.AddTool(s.mcpServer, &gosdk.Tool{
		Name:        "get_creative_upload_url",
		Description: "Get upload credentials for a hosted-asset creative",
	}, s.GetCreativeUploadURL)
	gosdk.AddTool(s.mcpServer, &gosdk.Tool{
		Name:        "confirm_creative_upload",
		Description: "Confirm a direct-upload creative asset finished uploading",
	}, s.ConfirmCreativeUpload)
}

// toolError surfaces a failed TaskResult as the protocol's tool-error,
// carrying TaskResult.Error if set or else .Message, per §6.3.
func toolError(tr executor.TaskResult) *gosdk.CallToolResult {
	msg := tr.Message
	if tr.Error != nil {
		msg = tr.Error.Message
	}
	if msg == "" {
		msg = "operation failed"
	}
	return &gosdk.CallToolResult{
		IsError: true,
		Content: []gosdk.Content{&gosdk.TextContent{Text: msg}},
	}
}
