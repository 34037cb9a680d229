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

package admin

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/adcontextprotocol/gateway/internal/model"
	"github.com/adcontextprotocol/gateway/internal/storage"
)

// createTenantRequest mirrors create_tenant's request body, with the same
// defaults the original admin API applies when a field is omitted.
type createTenantRequest struct {
	Name                  string              `json:"name"`
	Subdomain             string              `json:"subdomain"`
	AdServer              string              `json:"ad_server"`
	IsActive              *bool               `json:"is_active"`
	MaxDailyBudget        *float64            `json:"max_daily_budget"`
	EnableAEESignals      *bool               `json:"enable_aee_signals"`
	AuthorizedEmails      []string            `json:"authorized_emails"`
	AuthorizedDomains     []string            `json:"authorized_domains"`
	SlackWebhookURL       string              `json:"slack_webhook_url"`
	SlackAuditWebhookURL  string              `json:"slack_audit_webhook_url"`
	HITLWebhookURL        string              `json:"hitl_webhook_url"`
	AutoApproveFormats    []string            `json:"auto_approve_formats"`
	HumanReviewRequired   *bool               `json:"human_review_required"`
	PolicySettings        model.PolicySettings `json:"policy_settings"`
	CreateDefaultPrincipal *bool              `json:"create_default_principal"`
}

// handleCreateTenant provisions a tenant and, unless explicitly declined, a
// default principal scoped to it, returning both freshly minted tokens once.
func (s *Server) handleCreateTenant(w http.ResponseWriter, r *http.Request) {
	var req createTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Subdomain == "" || req.AdServer == "" {
		http.Error(w, "name, subdomain, and ad_server are required", http.StatusBadRequest)
		return
	}

	if _, err := s.store.Tenants.GetBySubdomain(r.Context(), req.Subdomain); err == nil {
		http.Error(w, "subdomain already exists", http.StatusConflict)
		return
	} else if !errors.Is(err, storage.ErrNotFound) {
		http.Error(w, "failed to check subdomain", http.StatusInternalServerError)
		return
	}

	tenantID := fmt.Sprintf("tenant_%s", mustShortID())
	adminToken, err := generateToken(24)
	if err != nil {
		http.Error(w, "failed to generate admin token", http.StatusInternalServerError)
		return
	}

	t := &model.Tenant{
		TenantID:             tenantID,
		Name:                 req.Name,
		Subdomain:            req.Subdomain,
		IsActive:             boolOr(req.IsActive, true),
		AdServer:             req.AdServer,
		MaxDailyBudget:       floatOr(req.MaxDailyBudget, 10000),
		AutoApproveFormats:   defaultStrings(req.AutoApproveFormats, []string{"display_300x250"}),
		HumanReviewRequired:  boolOr(req.HumanReviewRequired, true),
		AuthorizedEmails:     req.AuthorizedEmails,
		AuthorizedDomains:    req.AuthorizedDomains,
		SlackWebhookURL:      req.SlackWebhookURL,
		SlackAuditWebhookURL: req.SlackAuditWebhookURL,
		HITLWebhookURL:       req.HITLWebhookURL,
		AdminToken:           adminToken,
		PolicySettings:       req.PolicySettings,
		EnableAEESignals:     boolOr(req.EnableAEESignals, true),
	}
	if err := s.store.Tenants.Upsert(r.Context(), t); err != nil {
		s.logger.Error(err, "create tenant", "tenant_id", tenantID)
		http.Error(w, "failed to create tenant", http.StatusInternalServerError)
		return
	}

	result := map[string]any{
		"tenant_id":   tenantID,
		"name":        t.Name,
		"subdomain":   t.Subdomain,
		"admin_token": adminToken,
	}

	if boolOr(req.CreateDefaultPrincipal, true) {
		principalID := fmt.Sprintf("principal_%s", mustShortID())
		principalToken, err := generateToken(24)
		if err != nil {
			http.Error(w, "failed to generate principal token", http.StatusInternalServerError)
			return
		}
		p := &model.Principal{
			TenantID:    tenantID,
			PrincipalID: principalID,
			Name:        t.Name + " Default Principal",
			AccessToken: principalToken,
		}
		if err := s.store.Principals.Upsert(r.Context(), p); err != nil {
			s.logger.Error(err, "create default principal", "tenant_id", tenantID)
			http.Error(w, "failed to create default principal", http.StatusInternalServerError)
			return
		}
		result["default_principal_id"] = principalID
		result["default_principal_token"] = principalToken
	}

	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleGetTenant(w http.ResponseWriter, r *http.Request) {
	t, err := s.store.Tenants.Get(r.Context(), r.PathValue("tenant_id"))
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, "tenant not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "failed to load tenant", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// handleUpdateTenant applies a partial update: only fields present in the
// request body overwrite the stored tenant, the rest are left untouched.
func (s *Server) handleUpdateTenant(w http.ResponseWriter, r *http.Request) {
	tenantID := r.PathValue("tenant_id")
	t, err := s.store.Tenants.Get(r.Context(), tenantID)
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, "tenant not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "failed to load tenant", http.StatusInternalServerError)
		return
	}

	var req createTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name != "" {
		t.Name = req.Name
	}
	if req.AdServer != "" {
		t.AdServer = req.AdServer
	}
	if req.IsActive != nil {
		t.IsActive = *req.IsActive
	}
	if req.MaxDailyBudget != nil {
		t.MaxDailyBudget = *req.MaxDailyBudget
	}
	if req.EnableAEESignals != nil {
		t.EnableAEESignals = *req.EnableAEESignals
	}
	if req.AuthorizedEmails != nil {
		t.AuthorizedEmails = req.AuthorizedEmails
	}
	if req.AuthorizedDomains != nil {
		t.AuthorizedDomains = req.AuthorizedDomains
	}
	if req.SlackWebhookURL != "" {
		t.SlackWebhookURL = req.SlackWebhookURL
	}
	if req.SlackAuditWebhookURL != "" {
		t.SlackAuditWebhookURL = req.SlackAuditWebhookURL
	}
	if req.HITLWebhookURL != "" {
		t.HITLWebhookURL = req.HITLWebhookURL
	}
	if req.AutoApproveFormats != nil {
		t.AutoApproveFormats = req.AutoApproveFormats
	}
	if req.HumanReviewRequired != nil {
		t.HumanReviewRequired = *req.HumanReviewRequired
	}

	if err := s.store.Tenants.Upsert(r.Context(), t); err != nil {
		s.logger.Error(err, "update tenant", "tenant_id", tenantID)
		http.Error(w, "failed to update tenant", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

type createPrincipalRequest struct {
	Name             string            `json:"name"`
	PlatformMappings map[string]string `json:"platform_mappings"`
}

// handleCreatePrincipal provisions one additional principal under an
// existing tenant, returning its access token once.
func (s *Server) handleCreatePrincipal(w http.ResponseWriter, r *http.Request) {
	tenantID := r.PathValue("tenant_id")
	if _, err := s.store.Tenants.Get(r.Context(), tenantID); errors.Is(err, storage.ErrNotFound) {
		http.Error(w, "tenant not found", http.StatusNotFound)
		return
	} else if err != nil {
		http.Error(w, "failed to load tenant", http.StatusInternalServerError)
		return
	}

	var req createPrincipalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	token, err := generateToken(24)
	if err != nil {
		http.Error(w, "failed to generate access token", http.StatusInternalServerError)
		return
	}
	p := &model.Principal{
		TenantID:         tenantID,
		PrincipalID:      fmt.Sprintf("principal_%s", mustShortID()),
		Name:             req.Name,
		AccessToken:      token,
		PlatformMappings: req.PlatformMappings,
	}
	if err := s.store.Principals.Upsert(r.Context(), p); err != nil {
		s.logger.Error(err, "create principal", "tenant_id", tenantID)
		http.Error(w, "failed to create principal", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"principal_id": p.PrincipalID,
		"access_token": token,
	})
}

// handleListPrincipals lists principals for a tenant without their access
// tokens — those are only ever disclosed at creation time.
func (s *Server) handleListPrincipals(w http.ResponseWriter, r *http.Request) {
	tenantID := r.PathValue("tenant_id")
	principals, err := s.store.Principals.ListByTenant(r.Context(), tenantID)
	if err != nil {
		http.Error(w, "failed to list principals", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, principals)
}

func boolOr(v *bool, def bool) bool {
	if v != nil {
		return *v
	}
	return def
}

func floatOr(v *float64, def float64) float64 {
	if v != nil {
		return *v
	}
	return def
}

func defaultStrings(v, def []string) []string {
	if v != nil {
		return v
	}
	return def
}

func mustShortID() string {
	id, err := generateToken(6)
	if err != nil {
		return "fallback"
	}
	// strip the "sk-" prefix and trim to a short, URL-friendly suffix.
	return id[3:11]
}
