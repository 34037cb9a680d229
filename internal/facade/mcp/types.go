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
	"github.com/adcontextprotocol/gateway/internal/executor"
	"github.com/adcontextprotocol/gateway/internal/model"
)

// Typed request/response pairs, one per tool, mirroring the A2A facade's
// skills (§6.4) field for field so both protocols expose the same shape.

type GetProductsInput struct {
	Brief             string   `json:"brief,omitempty"`
	Countries         []string `json:"countries,omitempty"`
	Formats           []string `json:"formats,omitempty"`
	TargetingFeatures []string `json:"targeting_features,omitempty"`
	PromotedOffering  any      `json:"promoted_offering,omitempty"`
}

type GetProductsOutput struct {
	Products            []*model.Product `json:"products"`
	PolicyCompliance    map[string]any   `json:"policy_compliance,omitempty"`
	ClarificationNeeded bool             `json:"clarification_needed,omitempty"`
	Message             string           `json:"message,omitempty"`
}

type GetSignalsInput struct {
	Query string `json:"query,omitempty"`
	Type  string `json:"type,omitempty"`
}

type GetSignalsOutput struct {
	Signals []executor.Signal `json:"signals"`
}

type MessageSendInput struct {
	Content   string         `json:"content"`
	ContextID string         `json:"context_id,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type MessageSendOutput struct {
	MessageID string         `json:"message_id"`
	Role      string         `json:"role"`
	Text      string         `json:"text"`
	ContextID string         `json:"context_id"`
	Data      map[string]any `json:"data,omitempty"`
}

type MessageListInput struct {
	ContextID string `json:"context_id,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	Offset    int    `json:"offset,omitempty"`
}

type MessageListOutput struct {
	ContextID string          `json:"context_id"`
	Messages  []model.Message `json:"messages"`
}

type ContextClearInput struct {
	ContextID string `json:"context_id"`
}

type ContextClearOutput struct {
	ContextID string `json:"context_id"`
}

type CreateMediaBuyInput struct {
	ProductIDs       []string        `json:"product_ids"`
	TotalBudget      float64         `json:"total_budget"`
	FlightStartDate  string          `json:"flight_start_date"`
	FlightEndDate    string          `json:"flight_end_date"`
	TargetingOverlay model.Targeting `json:"targeting_overlay,omitempty"`
	PromotedOffering any             `json:"promoted_offering,omitempty"`
}

type CreateMediaBuyOutput struct {
	MediaBuyID       string         `json:"media_buy_id"`
	Status           string         `json:"status"`
	PolicyCompliance map[string]any `json:"policy_compliance,omitempty"`
}

type SubmitCreativesInput struct {
	MediaBuyID string            `json:"media_buy_id"`
	Creatives  []*model.Creative `json:"creatives"`
}

type SubmitCreativesOutput struct {
	CreativeIDs []string `json:"creative_ids"`
}

type GetMediaBuyStatusInput struct {
	MediaBuyID string `json:"media_buy_id"`
}

type GetMediaBuyStatusOutput struct {
	Status          string  `json:"status"`
	Budget          float64 `json:"budget"`
	FlightStartDate string  `json:"flight_start_date"`
	FlightEndDate   string  `json:"flight_end_date"`
}

type UpdateMediaBuyInput struct {
	MediaBuyID string         `json:"media_buy_id"`
	Updates    map[string]any `json:"updates"`
}

type UpdateMediaBuyOutput struct {
	MediaBuyID string  `json:"media_buy_id,omitempty"`
	Action     string  `json:"action,omitempty"`
	PackageID  string  `json:"package_id,omitempty"`
	Budget     float64 `json:"budget,omitempty"`
	Status     string  `json:"status,omitempty"`
}

type GetCreativeStatusInput struct {
	CreativeID string `json:"creative_id"`
}

type GetCreativeStatusOutput struct {
	Status         string `json:"status"`
	ReviewFeedback string `json:"review_feedback,omitempty"`
}

type GetMediaBuyDeliveryInput struct {
	MediaBuyID string `json:"media_buy_id"`
}

type GetMediaBuyDeliveryOutput struct {
	Status      string  `json:"status"`
	Spend       float64 `json:"spend"`
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	CTR         float64 `json:"ctr"`
	CPM         float64 `json:"cpm"`
}

type GetTargetingCapabilitiesInput struct {
	Channels []string `json:"channels,omitempty"`
}

type GetTargetingCapabilitiesOutput struct {
	Channels map[string]any `json:"channels"`
}

type CreateHumanTaskInput struct {
	TaskType    string         `json:"task_type"`
	MediaBuyID  string         `json:"media_buy_id,omitempty"`
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

type CreateHumanTaskOutput struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

type VerifyTaskInput struct {
	TaskID string `json:"task_id"`
}

type VerifyTaskOutput struct {
	TaskID    string `json:"task_id"`
	Status    string `json:"status"`
	Completed bool   `json:"completed"`
}

type GetAdvertisersInput struct{}

type GetAdvertisersOutput struct {
	Advertisers []map[string]any `json:"advertisers"`
}

type DiscoverAdUnitsInput struct {
	Parent   string `json:"parent,omitempty"`
	MaxDepth int    `json:"max_depth,omitempty"`
}

type DiscoverAdUnitsOutput struct {
	AdUnits []map[string]any `json:"ad_units"`
}

type SyncInventoryInput struct {
	Force bool `json:"force,omitempty"`
}

type SyncInventoryOutput struct {
	SyncID  string         `json:"sync_id"`
	Status  string         `json:"status"`
	Summary map[string]any `json:"summary,omitempty"`
}

type GetSyncStatusInput struct {
	SyncID string `json:"sync_id"`
}

type GetSyncStatusOutput struct {
	SyncID       string         `json:"sync_id"`
	SyncType     string         `json:"sync_type"`
	Status       string         `json:"status"`
	Summary      map[string]any `json:"summary,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
}

type GetSyncHistoryInput struct {
	Limit        int    `json:"limit,omitempty"`
	Offset       int    `json:"offset,omitempty"`
	StatusFilter string `json:"status_filter,omitempty"`
}

type GetSyncHistoryOutput struct {
	Jobs []map[string]any `json:"jobs"`
}

type NeedsSyncInput struct {
	SyncType    string `json:"sync_type"`
	MaxAgeHours int    `json:"max_age_hours,omitempty"`
}

type NeedsSyncOutput struct {
	NeedsSync bool   `json:"needs_sync"`
	SyncID    string `json:"sync_id,omitempty"`
}

type GetCreativeUploadURLInput struct {
	Filename  string `json:"filename"`
	MIMEType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes,omitempty"`
}

type GetCreativeUploadURLOutput struct {
	UploadID   string            `json:"upload_id"`
	URL        string            `json:"url"`
	StorageRef string            `json:"storage_ref"`
	Method     string            `json:"method"`
	Headers    map[string]string `json:"headers,omitempty"`
}

type ConfirmCreativeUploadInput struct {
	UploadID string `json:"upload_id"`
}

type ConfirmCreativeUploadOutput struct {
	UploadID   string `json:"upload_id"`
	Confirmed  bool   `json:"confirmed"`
	StorageRef string `json:"storage_ref,omitempty"`
	SizeBytes  int64  `json:"size_bytes,omitempty"`
}
