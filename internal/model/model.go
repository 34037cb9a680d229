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

// Package model defines the gateway's core data-model entities (§3).
package model

import "time"

// Tenant is a publisher boundary — the top-level scope for all data and configuration.
type Tenant struct {
	TenantID    string `json:"tenant_id"`
	Name        string `json:"name"`
	Subdomain   string `json:"subdomain"`
	VirtualHost string `json:"virtual_host,omitempty"` // optional custom domain
	IsActive    bool   `json:"is_active"`

	AdServer             string                     `json:"ad_server"`
	MaxDailyBudget       float64                    `json:"max_daily_budget"`
	AutoApproveFormats   []string                   `json:"auto_approve_formats"`
	HumanReviewRequired  bool                       `json:"human_review_required"`
	AuthorizedEmails     []string                   `json:"authorized_emails"`
	AuthorizedDomains    []string                   `json:"authorized_domains"`
	SlackWebhookURL      string                     `json:"slack_webhook_url,omitempty"`
	SlackAuditWebhookURL string                     `json:"slack_audit_webhook_url,omitempty"`
	HITLWebhookURL       string                     `json:"hitl_webhook_url,omitempty"`
	AdminToken           string                     `json:"-"`
	PolicySettings       PolicySettings             `json:"policy_settings"`
	AdapterConfig        map[string]map[string]any  `json:"adapter_config,omitempty"` // keyed by ad_server name
	EnableAEESignals     bool                       `json:"enable_aee_signals"`
}

// PolicySettings configures the policy engine (C3) for a tenant.
type PolicySettings struct {
	ProhibitedAdvertisers []string `json:"prohibited_advertisers,omitempty"`
	ProhibitedCategories  []string `json:"prohibited_categories,omitempty"`
	ProhibitedTactics     []string `json:"prohibited_tactics,omitempty"`
}

// Principal is an agent authenticated into a tenant, acting on behalf of one advertiser.
type Principal struct {
	TenantID         string            `json:"tenant_id"`
	PrincipalID      string            `json:"principal_id"`
	Name             string            `json:"name"`
	AccessToken      string            `json:"-"`
	PlatformMappings map[string]string `json:"platform_mappings,omitempty"` // e.g. "gam_advertiser_id" -> "123456"
	IsAdmin          bool              `json:"is_admin,omitempty"`
}

// HasPlatformFlag reports whether the principal's platform mappings carry a
// truthy value for key (used for gam_admin / is_admin permission checks).
func (p *Principal) HasPlatformFlag(key string) bool {
	if p == nil {
		return false
	}
	v, ok := p.PlatformMappings[key]
	return ok && (v == "true" || v == "1")
}

// DeliveryType distinguishes guaranteed from non-guaranteed inventory.
type DeliveryType string

const (
	DeliveryGuaranteed    DeliveryType = "guaranteed"
	DeliveryNonGuaranteed DeliveryType = "non_guaranteed"
)

// NonGuaranteedAutomation controls how a non-guaranteed product's media buys activate.
type NonGuaranteedAutomation string

const (
	AutomationAutomatic            NonGuaranteedAutomation = "automatic"
	AutomationConfirmationRequired NonGuaranteedAutomation = "confirmation_required"
	AutomationManual               NonGuaranteedAutomation = "manual"
)

// PriceGuidance describes non-fixed pricing bounds.
type PriceGuidance struct {
	Floor float64 `json:"floor"`
	P50   float64 `json:"p50"`
	P75   float64 `json:"p75"`
	P90   float64 `json:"p90"`
}

// Product is a sellable inventory package.
type Product struct {
	TenantID                string                   `json:"-"`
	ProductID               string                   `json:"product_id"`
	Name                    string                   `json:"name"`
	Description             string                   `json:"description,omitempty"`
	Formats                 []string                 `json:"formats"`
	TargetingTemplate       Targeting                `json:"targeting_template"`
	DeliveryType            DeliveryType             `json:"delivery_type"`
	IsFixedPrice            bool                     `json:"is_fixed_price"`
	CPM                     float64                  `json:"cpm,omitempty"`
	PriceGuidance           *PriceGuidance           `json:"price_guidance,omitempty"`
	ImplementationConfig    map[string]any           `json:"implementation_config,omitempty"`
	NonGuaranteedAutomation NonGuaranteedAutomation  `json:"non_guaranteed_automation,omitempty"`
	Countries               []string                 `json:"countries,omitempty"`
}

// MediaBuyStatus enumerates the lifecycle states of a MediaBuy.
type MediaBuyStatus string

const (
	MediaBuyPendingApproval    MediaBuyStatus = "pending_approval"
	MediaBuyPendingActivation  MediaBuyStatus = "pending_activation"
	MediaBuyPendingConfirmation MediaBuyStatus = "pending_confirmation"
	MediaBuyActive             MediaBuyStatus = "active"
	MediaBuyPaused             MediaBuyStatus = "paused"
	MediaBuyCompleted          MediaBuyStatus = "completed"
	MediaBuyFailed             MediaBuyStatus = "failed"
	MediaBuyArchived           MediaBuyStatus = "archived"
)

// MediaBuy is a campaign booked by a principal.
type MediaBuy struct {
	MediaBuyID       string         `json:"media_buy_id"`
	TenantID         string         `json:"-"`
	PrincipalID      string         `json:"principal_id"`
	OrderName        string         `json:"order_name,omitempty"`
	AdvertiserName   string         `json:"advertiser_name,omitempty"`
	Budget           float64        `json:"budget"`
	StartDate        time.Time      `json:"start_date"`
	EndDate          time.Time      `json:"end_date"`
	Status           MediaBuyStatus `json:"status"`
	RawRequest       map[string]any `json:"raw_request,omitempty"`
	AdapterOrderID   string         `json:"adapter_order_id,omitempty"`
	PromotedOffering string         `json:"promoted_offering,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// DeliveryMetrics aggregates spend/delivery for a package.
type DeliveryMetrics struct {
	Spend                float64 `json:"spend"`
	ImpressionsDelivered int64   `json:"impressions_delivered"`
}

// Package is a line-item within a media buy, bound to exactly one product.
type Package struct {
	PackageID       string          `json:"package_id"`
	MediaBuyID      string          `json:"media_buy_id"`
	TenantID        string          `json:"-"`
	ProductID       string          `json:"product_id"`
	Impressions     int64           `json:"impressions,omitempty"`
	CPM             float64         `json:"cpm,omitempty"`
	DeliveryType    DeliveryType    `json:"delivery_type"`
	FormatIDs       []string        `json:"format_ids"`
	Budget          float64         `json:"budget"`
	DeliveryMetrics DeliveryMetrics `json:"delivery_metrics"`
}

// CreativeStatus enumerates the lifecycle states of a Creative.
type CreativeStatus string

const (
	CreativePendingReview CreativeStatus = "pending_review"
	CreativeApproved      CreativeStatus = "approved"
	CreativeRejected      CreativeStatus = "rejected"
	CreativeFailed        CreativeStatus = "failed"
)

// TrackingEvents holds impression/click pixel URLs for a creative.
type TrackingEvents struct {
	Impression []string `json:"impression,omitempty"`
	Click      []string `json:"click,omitempty"`
}

// Creative is an ad asset submitted against one or more packages.
type Creative struct {
	CreativeID         string         `json:"creative_id"`
	TenantID           string         `json:"-"`
	PrincipalID        string         `json:"principal_id"`
	Name               string         `json:"name"`
	Format             string         `json:"format"`
	SnippetType        string         `json:"snippet_type,omitempty"` // "vast_xml", "vast_url", "" for non-snippet
	Snippet            string         `json:"snippet,omitempty"`
	TemplateVariables  map[string]any `json:"template_variables,omitempty"`
	MediaURL           string         `json:"media_url,omitempty"`
	MediaData          string         `json:"media_data,omitempty"`
	ClickURL           string         `json:"click_url,omitempty"`
	DurationSeconds    *int           `json:"duration,omitempty"`
	Tracking           TrackingEvents `json:"tracking_events"`
	PackageAssignments []string       `json:"package_assignments,omitempty"`
	AdapterCreativeID  string         `json:"adapter_creative_id,omitempty"`
	Status             CreativeStatus `json:"status"`
	ReviewFeedback     string         `json:"review_feedback,omitempty"`
	Width              int            `json:"width,omitempty"`
	Height             int            `json:"height,omitempty"`
}

// TaskType enumerates the known human-task types.
type TaskType string

const (
	TaskApproveMediaBuy  TaskType = "approve_media_buy"
	TaskApproveCreative  TaskType = "approve_creative"
	TaskActivateGAMOrder TaskType = "activate_gam_order"
)

// TaskStatus enumerates the lifecycle states of a Task.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskFailed     TaskStatus = "failed"
)

// Task is a work item requiring human decision.
type Task struct {
	TaskID      string         `json:"task_id"`
	TenantID    string         `json:"-"`
	MediaBuyID  string         `json:"media_buy_id,omitempty"` // optional
	TaskType    TaskType       `json:"task_type"`
	Status      TaskStatus     `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	Description string         `json:"description,omitempty"`
	CreatedBy   string         `json:"created_by,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
}

// Overdue reports whether a pending task has sat for more than 3 days.
func (t *Task) Overdue(now time.Time) bool {
	return t.Status == TaskPending && now.Sub(t.CreatedAt) > 3*24*time.Hour
}

// MessageRole identifies the speaker of a conversation message.
type MessageRole string

const (
	RoleUser  MessageRole = "user"
	RoleAgent MessageRole = "agent"
)

// Message is one turn of a Context's conversation log.
type Message struct {
	ID        string         `json:"message_id"`
	Role      MessageRole    `json:"role"`
	Content   string         `json:"content"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// ConvoContext is a conversation handle, stable across calls by context_id.
type ConvoContext struct {
	ContextID   string         `json:"context_id"`
	TenantID    string         `json:"-"`
	PrincipalID string         `json:"principal_id"`
	Protocol    string         `json:"protocol"`
	State       map[string]any `json:"state,omitempty"`
	Messages    []Message      `json:"messages,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// AuditRecord is an append-only log entry.
type AuditRecord struct {
	Timestamp   time.Time      `json:"timestamp"`
	TenantID    string         `json:"tenant_id"`
	PrincipalID string         `json:"principal_id"`
	Operation   string         `json:"operation"`
	Success     bool           `json:"success"`
	Details     map[string]any `json:"details,omitempty"`
	Error       string         `json:"error,omitempty"`
}

// SyncType enumerates the inventory-sync job kinds (§4.8).
type SyncType string

const (
	SyncInventory SyncType = "inventory"
	SyncOrders    SyncType = "orders"
	SyncFull      SyncType = "full"
)

// SyncStatus enumerates the lifecycle of a sync job.
type SyncStatus string

const (
	SyncRunning   SyncStatus = "running"
	SyncCompleted SyncStatus = "completed"
	SyncFailed    SyncStatus = "failed"
)

// SyncJob tracks one inventory/orders sync run against the ad server (§4.8, supplement 3).
type SyncJob struct {
	SyncID       string         `json:"sync_id"`
	TenantID     string         `json:"-"`
	SyncType     SyncType       `json:"sync_type"`
	Status       SyncStatus     `json:"status"`
	StartedAt    time.Time      `json:"started_at"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
	Summary      map[string]any `json:"summary,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
}

// Stale reports whether a completed sync job is older than maxAge.
func (j *SyncJob) Stale(now time.Time, maxAge time.Duration) bool {
	if j.CompletedAt == nil {
		return true
	}
	return now.Sub(*j.CompletedAt) > maxAge
}
