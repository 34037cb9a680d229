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

	gosdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/adcontextprotocol/gateway/internal/executor"
	"github.com/adcontextprotocol/gateway/internal/facade/wire"
	"github.com/adcontextprotocol/gateway/internal/model"
)

func (s *Server) GetProducts(ctx context.Context, _ *gosdk.CallToolRequest, input GetProductsInput) (*gosdk.CallToolResult, GetProductsOutput, error) {
	tr := s.executor.GetProducts(ctx, executor.GetProductsRequest{
		Brief:             input.Brief,
		PromotedOffering:  wire.Stringify(input.PromotedOffering),
		Countries:         input.Countries,
		Formats:           input.Formats,
		TargetingFeatures: input.TargetingFeatures,
	})
	if tr.Status == executor.StatusFailed {
		return toolError(tr), GetProductsOutput{}, nil
	}
	out := GetProductsOutput{Message: tr.Message}
	if products, ok := tr.Data["products"].([]*model.Product); ok {
		out.Products = products
	}
	if pc, ok := tr.Data["policy_compliance"].(map[string]any); ok {
		out.PolicyCompliance = pc
	}
	if cn, ok := tr.Data["clarification_needed"].(bool); ok {
		out.ClarificationNeeded = cn
	}
	return nil, out, nil
}

func (s *Server) GetSignals(ctx context.Context, _ *gosdk.CallToolRequest, input GetSignalsInput) (*gosdk.CallToolResult, GetSignalsOutput, error) {
	tr := s.executor.GetSignals(ctx, input.Query, input.Type)
	if tr.Status == executor.StatusFailed {
		return toolError(tr), GetSignalsOutput{}, nil
	}
	out := GetSignalsOutput{}
	if signals, ok := tr.Data["signals"].([]executor.Signal); ok {
		out.Signals = signals
	}
	return nil, out, nil
}

func (s *Server) MessageSend(ctx context.Context, _ *gosdk.CallToolRequest, input MessageSendInput) (*gosdk.CallToolResult, MessageSendOutput, error) {
	reply, tr := s.executor.SendMessage(ctx, input.ContextID, input.Content)
	if tr.Status == executor.StatusFailed {
		return toolError(tr), MessageSendOutput{}, nil
	}
	return nil, MessageSendOutput{
		MessageID: reply.MessageID,
		Role:      reply.Role,
		Text:      reply.Text,
		ContextID: reply.ContextID,
		Data:      reply.Data,
	}, nil
}

func (s *Server) MessageList(ctx context.Context, _ *gosdk.CallToolRequest, input MessageListInput) (*gosdk.CallToolResult, MessageListOutput, error) {
	tr := s.executor.ListMessages(ctx, input.ContextID, input.Limit, input.Offset)
	if tr.Status == executor.StatusFailed {
		return toolError(tr), MessageListOutput{}, nil
	}
	out := MessageListOutput{ContextID: wire.String(tr.Data, "context_id")}
	if messages, ok := tr.Data["messages"].([]model.Message); ok {
		out.Messages = messages
	}
	return nil, out, nil
}

func (s *Server) ContextClear(ctx context.Context, _ *gosdk.CallToolRequest, input ContextClearInput) (*gosdk.CallToolResult, ContextClearOutput, error) {
	tr := s.executor.ClearContext(ctx, input.ContextID)
	if tr.Status == executor.StatusFailed {
		return toolError(tr), ContextClearOutput{}, nil
	}
	return nil, ContextClearOutput{ContextID: wire.String(tr.Data, "context_id")}, nil
}

func (s *Server) CreateMediaBuy(ctx context.Context, _ *gosdk.CallToolRequest, input CreateMediaBuyInput) (*gosdk.CallToolResult, CreateMediaBuyOutput, error) {
	start, _ := wire.ParseDate(input.FlightStartDate)
	end, _ := wire.ParseDate(input.FlightEndDate)
	tr := s.executor.CreateMediaBuy(ctx, executor.CreateMediaBuyRequest{
		ProductIDs:       input.ProductIDs,
		TotalBudget:      input.TotalBudget,
		FlightStartDate:  start,
		FlightEndDate:    end,
		TargetingOverlay: input.TargetingOverlay,
		PromotedOffering: wire.Stringify(input.PromotedOffering),
	})
	if tr.Status == executor.StatusFailed {
		return toolError(tr), CreateMediaBuyOutput{}, nil
	}
	out := CreateMediaBuyOutput{
		MediaBuyID: wire.String(tr.Data, "media_buy_id"),
		Status:     wire.String(tr.Data, "status"),
	}
	if pc, ok := tr.Data["policy_compliance"].(map[string]any); ok {
		out.PolicyCompliance = pc
	}
	return nil, out, nil
}

func (s *Server) SubmitCreatives(ctx context.Context, _ *gosdk.CallToolRequest, input SubmitCreativesInput) (*gosdk.CallToolResult, SubmitCreativesOutput, error) {
	tr := s.executor.SubmitCreatives(ctx, input.MediaBuyID, input.Creatives)
	if tr.Status == executor.StatusFailed {
		return toolError(tr), SubmitCreativesOutput{}, nil
	}
	return nil, SubmitCreativesOutput{CreativeIDs: wire.StringSlice(tr.Data, "creative_ids")}, nil
}

func (s *Server) GetMediaBuyStatus(ctx context.Context, _ *gosdk.CallToolRequest, input GetMediaBuyStatusInput) (*gosdk.CallToolResult, GetMediaBuyStatusOutput, error) {
	tr := s.executor.GetMediaBuyStatus(ctx, input.MediaBuyID)
	if tr.Status == executor.StatusFailed {
		return toolError(tr), GetMediaBuyStatusOutput{}, nil
	}
	return nil, GetMediaBuyStatusOutput{
		Status:          wire.String(tr.Data, "status"),
		Budget:          wire.Float64(tr.Data, "budget"),
		FlightStartDate: wire.DateString(tr.Data, "flight_start_date"),
		FlightEndDate:   wire.DateString(tr.Data, "flight_end_date"),
	}, nil
}

func (s *Server) UpdateMediaBuy(ctx context.Context, _ *gosdk.CallToolRequest, input UpdateMediaBuyInput) (*gosdk.CallToolResult, UpdateMediaBuyOutput, error) {
	req := decodeUpdateRequest(input.Updates)
	tr := s.executor.UpdateMediaBuy(ctx, input.MediaBuyID, req)
	if tr.Status == executor.StatusFailed {
		return toolError(tr), UpdateMediaBuyOutput{}, nil
	}
	return nil, UpdateMediaBuyOutput{
		MediaBuyID: wire.String(tr.Data, "media_buy_id"),
		Action:     wire.String(tr.Data, "action"),
		PackageID:  wire.String(tr.Data, "package_id"),
		Budget:     wire.Float64(tr.Data, "budget"),
		Status:     wire.String(tr.Data, "status"),
	}, nil
}

func (s *Server) GetCreativeStatus(ctx context.Context, _ *gosdk.CallToolRequest, input GetCreativeStatusInput) (*gosdk.CallToolResult, GetCreativeStatusOutput, error) {
	tr := s.executor.GetCreativeStatus(ctx, input.CreativeID)
	if tr.Status == executor.StatusFailed {
		return toolError(tr), GetCreativeStatusOutput{}, nil
	}
	return nil, GetCreativeStatusOutput{
		Status:         wire.String(tr.Data, "status"),
		ReviewFeedback: wire.String(tr.Data, "review_feedback"),
	}, nil
}

func (s *Server) GetMediaBuyDelivery(ctx context.Context, _ *gosdk.CallToolRequest, input GetMediaBuyDeliveryInput) (*gosdk.CallToolResult, GetMediaBuyDeliveryOutput, error) {
	tr := s.executor.GetMediaBuyDelivery(ctx, input.MediaBuyID)
	if tr.Status == executor.StatusFailed {
		return toolError(tr), GetMediaBuyDeliveryOutput{}, nil
	}
	return nil, GetMediaBuyDeliveryOutput{
		Status:      wire.String(tr.Data, "status"),
		Spend:       wire.Float64(tr.Data, "spend"),
		Impressions: int64(wire.Float64(tr.Data, "impressions")),
		Clicks:      int64(wire.Float64(tr.Data, "clicks")),
		CTR:         wire.Float64(tr.Data, "ctr"),
		CPM:         wire.Float64(tr.Data, "cpm"),
	}, nil
}

func (s *Server) GetTargetingCapabilities(ctx context.Context, _ *gosdk.CallToolRequest, input GetTargetingCapabilitiesInput) (*gosdk.CallToolResult, GetTargetingCapabilitiesOutput, error) {
	tr := s.executor.GetTargetingCapabilities(ctx, input.Channels)
	if tr.Status == executor.StatusFailed {
		return toolError(tr), GetTargetingCapabilitiesOutput{}, nil
	}
	out := GetTargetingCapabilitiesOutput{Channels: wire.AsJSONMap(tr.Data["channels"])}
	return nil, out, nil
}

func (s *Server) CreateHumanTask(ctx context.Context, _ *gosdk.CallToolRequest, input CreateHumanTaskInput) (*gosdk.CallToolResult, CreateHumanTaskOutput, error) {
	tr := s.executor.CreateHumanTask(ctx, model.TaskType(input.TaskType), input.MediaBuyID, input.Description, input.Metadata)
	if tr.Status == executor.StatusFailed {
		return toolError(tr), CreateHumanTaskOutput{}, nil
	}
	return nil, CreateHumanTaskOutput{
		TaskID: wire.String(tr.Data, "task_id"),
		Status: wire.String(tr.Data, "status"),
	}, nil
}

func (s *Server) VerifyTask(ctx context.Context, _ *gosdk.CallToolRequest, input VerifyTaskInput) (*gosdk.CallToolResult, VerifyTaskOutput, error) {
	tr := s.executor.VerifyTask(ctx, input.TaskID)
	if tr.Status == executor.StatusFailed {
		return toolError(tr), VerifyTaskOutput{}, nil
	}
	return nil, VerifyTaskOutput{
		TaskID:    wire.String(tr.Data, "task_id"),
		Status:    wire.String(tr.Data, "status"),
		Completed: tr.Data["completed"] == true,
	}, nil
}

func (s *Server) GetAdvertisers(ctx context.Context, _ *gosdk.CallToolRequest, _ GetAdvertisersInput) (*gosdk.CallToolResult, GetAdvertisersOutput, error) {
	tr := s.executor.GetAdvertisers(ctx)
	if tr.Status == executor.StatusFailed {
		return toolError(tr), GetAdvertisersOutput{}, nil
	}
	out := GetAdvertisersOutput{}
	if advertisers, ok := tr.Data["advertisers"].([]map[string]any); ok {
		out.Advertisers = advertisers
	}
	return nil, out, nil
}

func (s *Server) DiscoverAdUnits(ctx context.Context, _ *gosdk.CallToolRequest, input DiscoverAdUnitsInput) (*gosdk.CallToolResult, DiscoverAdUnitsOutput, error) {
	tr := s.executor.DiscoverAdUnits(ctx, input.Parent, input.MaxDepth)
	if tr.Status == executor.StatusFailed {
		return toolError(tr), DiscoverAdUnitsOutput{}, nil
	}
	out := DiscoverAdUnitsOutput{}
	if units, ok := tr.Data["ad_units"].([]map[string]any); ok {
		out.AdUnits = units
	}
	return nil, out, nil
}

func (s *Server) SyncInventory(ctx context.Context, _ *gosdk.CallToolRequest, input SyncInventoryInput) (*gosdk.CallToolResult, SyncInventoryOutput, error) {
	return s.runSync(ctx, model.SyncInventory, input.Force)
}

func (s *Server) SyncOrders(ctx context.Context, _ *gosdk.CallToolRequest, input SyncInventoryInput) (*gosdk.CallToolResult, SyncInventoryOutput, error) {
	return s.runSync(ctx, model.SyncOrders, input.Force)
}

func (s *Server) SyncFull(ctx context.Context, _ *gosdk.CallToolRequest, input SyncInventoryInput) (*gosdk.CallToolResult, SyncInventoryOutput, error) {
	return s.runSync(ctx, model.SyncFull, input.Force)
}

func (s *Server) runSync(ctx context.Context, syncType model.SyncType, force bool) (*gosdk.CallToolResult, SyncInventoryOutput, error) {
	tr := s.executor.TriggerSync(ctx, syncType, force)
	if tr.Status == executor.StatusFailed {
		return toolError(tr), SyncInventoryOutput{}, nil
	}
	return nil, SyncInventoryOutput{
		SyncID:  wire.String(tr.Data, "sync_id"),
		Status:  wire.String(tr.Data, "status"),
		Summary: wire.AsJSONMap(tr.Data["summary"]),
	}, nil
}

func (s *Server) GetSyncStatus(ctx context.Context, _ *gosdk.CallToolRequest, input GetSyncStatusInput) (*gosdk.CallToolResult, GetSyncStatusOutput, error) {
	tr := s.executor.GetSyncStatus(ctx, input.SyncID)
	if tr.Status == executor.StatusFailed {
		return toolError(tr), GetSyncStatusOutput{}, nil
	}
	return nil, GetSyncStatusOutput{
		SyncID:       wire.String(tr.Data, "sync_id"),
		SyncType:     wire.String(tr.Data, "sync_type"),
		Status:       wire.String(tr.Data, "status"),
		Summary:      wire.AsJSONMap(tr.Data["summary"]),
		ErrorMessage: wire.String(tr.Data, "error_message"),
	}, nil
}

func (s *Server) GetSyncHistory(ctx context.Context, _ *gosdk.CallToolRequest, input GetSyncHistoryInput) (*gosdk.CallToolResult, GetSyncHistoryOutput, error) {
	tr := s.executor.GetSyncHistory(ctx, input.Limit, input.Offset, model.SyncStatus(input.StatusFilter))
	if tr.Status == executor.StatusFailed {
		return toolError(tr), GetSyncHistoryOutput{}, nil
	}
	out := GetSyncHistoryOutput{}
	if jobs, ok := tr.Data["jobs"].([]map[string]any); ok {
		out.Jobs = jobs
	}
	return nil, out, nil
}

func (s *Server) NeedsSync(ctx context.Context, _ *gosdk.CallToolRequest, input NeedsSyncInput) (*gosdk.CallToolResult, NeedsSyncOutput, error) {
	tr := s.executor.NeedsSync(ctx, model.SyncType(input.SyncType), input.MaxAgeHours)
	if tr.Status == executor.StatusFailed {
		return toolError(tr), NeedsSyncOutput{}, nil
	}
	return nil, NeedsSyncOutput{
		NeedsSync: tr.Data["needs_sync"] == true,
		SyncID:    wire.String(tr.Data, "sync_id"),
	}, nil
}

func (s *Server) GetCreativeUploadURL(ctx context.Context, _ *gosdk.CallToolRequest, input GetCreativeUploadURLInput) (*gosdk.CallToolResult, GetCreativeUploadURLOutput, error) {
	tr := s.executor.GetCreativeUploadURL(ctx, input.Filename, input.MIMEType, input.SizeBytes)
	if tr.Status == executor.StatusFailed {
		return toolError(tr), GetCreativeUploadURLOutput{}, nil
	}
	out := GetCreativeUploadURLOutput{
		UploadID:   wire.String(tr.Data, "upload_id"),
		URL:        wire.String(tr.Data, "url"),
		StorageRef: wire.String(tr.Data, "storage_ref"),
		Method:     wire.String(tr.Data, "method"),
	}
	if headers, ok := tr.Data["headers"].(map[string]string); ok {
		out.Headers = headers
	}
	return nil, out, nil
}

func (s *Server) ConfirmCreativeUpload(ctx context.Context, _ *gosdk.CallToolRequest, input ConfirmCreativeUploadInput) (*gosdk.CallToolResult, ConfirmCreativeUploadOutput, error) {
	tr := s.executor.ConfirmCreativeUpload(ctx, input.UploadID)
	if tr.Status == executor.StatusFailed {
		return toolError(tr), ConfirmCreativeUploadOutput{}, nil
	}
	return nil, ConfirmCreativeUploadOutput{
		UploadID:   wire.String(tr.Data, "upload_id"),
		Confirmed:  tr.Data["confirmed"] == true,
		StorageRef: wire.String(tr.Data, "storage_ref"),
		SizeBytes:  int64(wire.Float64(tr.Data, "size_bytes")),
	}, nil
}

// decodeUpdateRequest maps update_media_buy's "updates" object onto the
// Executor's typed request, matching the A2A facade's equivalent decode so
// both protocols resolve "which fields did the caller actually set" the
// same way.
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
	if sd := wire.String(updates, "flight_start_date"); sd != "" {
		if d, err := wire.ParseDate(sd); err == nil {
			req.FlightStartDate = &d
		}
	}
	if ed := wire.String(updates, "flight_end_date"); ed != "" {
		if d, err := wire.ParseDate(ed); err == nil {
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
