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

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/adcontextprotocol/gateway/internal/model"
	"github.com/adcontextprotocol/gateway/internal/pgutil"
	"github.com/adcontextprotocol/gateway/internal/storage"
	"github.com/jackc/pgx/v5"
)

func scanTenant(row pgx.Row) (*model.Tenant, error) {
	var t model.Tenant
	var adapterConfig, authorizedEmails, authorizedDomains, autoApprove []byte
	var prohibitedAdv, prohibitedCat, prohibitedTac []byte
	var virtualHost *string

	err := row.Scan(
		&t.TenantID, &t.Name, &t.Subdomain, &virtualHost, &t.IsActive,
		&t.AdServer, &t.MaxDailyBudget, &autoApprove, &t.HumanReviewRequired,
		&authorizedEmails, &authorizedDomains, &t.SlackWebhookURL,
		&t.SlackAuditWebhookURL, &t.HITLWebhookURL, &t.AdminToken,
		&prohibitedAdv, &prohibitedCat, &prohibitedTac,
		&adapterConfig, &t.EnableAEESignals,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan tenant: %w", err)
	}
	t.VirtualHost = pgutil.DerefString(virtualHost)
	_ = unmarshalJSONB(autoApprove, &t.AutoApproveFormats)
	_ = unmarshalJSONB(authorizedEmails, &t.AuthorizedEmails)
	_ = unmarshalJSONB(authorizedDomains, &t.AuthorizedDomains)
	_ = unmarshalJSONB(prohibitedAdv, &t.PolicySettings.ProhibitedAdvertisers)
	_ = unmarshalJSONB(prohibitedCat, &t.PolicySettings.ProhibitedCategories)
	_ = unmarshalJSONB(prohibitedTac, &t.PolicySettings.ProhibitedTactics)
	_ = unmarshalJSONB(adapterConfig, &t.AdapterConfig)
	return &t, nil
}

const tenantColumns = `tenant_id, name, subdomain, virtual_host, is_active,
	ad_server, max_daily_budget, auto_approve_formats, human_review_required,
	authorized_emails, authorized_domains, slack_webhook_url,
	slack_audit_webhook_url, hitl_webhook_url, admin_token,
	prohibited_advertisers, prohibited_categories, prohibited_tactics,
	adapter_config, enable_aee_signals`

func (p *Provider) GetTenant(ctx context.Context, tenantID string) (*model.Tenant, error) {
	row := p.pool.QueryRow(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE tenant_id = $1`, tenantID)
	return scanTenant(row)
}

func (p *Provider) GetTenantBySubdomain(ctx context.Context, subdomain string) (*model.Tenant, error) {
	row := p.pool.QueryRow(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE subdomain = $1 AND is_active`, subdomain)
	return scanTenant(row)
}

func (p *Provider) GetTenantByVirtualHost(ctx context.Context, host string) (*model.Tenant, error) {
	row := p.pool.QueryRow(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE virtual_host = $1 AND is_active`, host)
	return scanTenant(row)
}

// ListTenantsByAdServer returns every active tenant configured for adServer,
// grounded on sync_all_tenants.py's "find all GAM tenants to sync" query.
func (p *Provider) ListTenantsByAdServer(ctx context.Context, adServer string) ([]*model.Tenant, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE ad_server = $1 AND is_active`, adServer)
	if err != nil {
		return nil, fmt.Errorf("list tenants by ad server: %w", err)
	}
	defer rows.Close()

	var out []*model.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (p *Provider) UpsertTenant(ctx context.Context, t *model.Tenant) error {
	autoApprove, err := marshalJSONB(t.AutoApproveFormats)
	if err != nil {
		return err
	}
	emails, err := marshalJSONB(t.AuthorizedEmails)
	if err != nil {
		return err
	}
	domains, err := marshalJSONB(t.AuthorizedDomains)
	if err != nil {
		return err
	}
	prohibitedAdv, err := marshalJSONB(t.PolicySettings.ProhibitedAdvertisers)
	if err != nil {
		return err
	}
	prohibitedCat, err := marshalJSONB(t.PolicySettings.ProhibitedCategories)
	if err != nil {
		return err
	}
	prohibitedTac, err := marshalJSONB(t.PolicySettings.ProhibitedTactics)
	if err != nil {
		return err
	}
	adapterConfig, err := marshalJSONB(t.AdapterConfig)
	if err != nil {
		return err
	}

	_, err = p.pool.Exec(ctx, `
		INSERT INTO tenants (`+tenantColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
		ON CONFLICT (tenant_id) DO UPDATE SET
			name = EXCLUDED.name, subdomain = EXCLUDED.subdomain, virtual_host = EXCLUDED.virtual_host,
			is_active = EXCLUDED.is_active, ad_server = EXCLUDED.ad_server,
			max_daily_budget = EXCLUDED.max_daily_budget, auto_approve_formats = EXCLUDED.auto_approve_formats,
			human_review_required = EXCLUDED.human_review_required, authorized_emails = EXCLUDED.authorized_emails,
			authorized_domains = EXCLUDED.authorized_domains, slack_webhook_url = EXCLUDED.slack_webhook_url,
			slack_audit_webhook_url = EXCLUDED.slack_audit_webhook_url, hitl_webhook_url = EXCLUDED.hitl_webhook_url,
			admin_token = EXCLUDED.admin_token, prohibited_advertisers = EXCLUDED.prohibited_advertisers,
			prohibited_categories = EXCLUDED.prohibited_categories, prohibited_tactics = EXCLUDED.prohibited_tactics,
			adapter_config = EXCLUDED.adapter_config, enable_aee_signals = EXCLUDED.enable_aee_signals
	`,
		t.TenantID, t.Name, t.Subdomain, pgutil.NullString(t.VirtualHost), t.IsActive,
		t.AdServer, t.MaxDailyBudget, autoApprove, t.HumanReviewRequired,
		emails, domains, t.SlackWebhookURL, t.SlackAuditWebhookURL, t.HITLWebhookURL, t.AdminToken,
		prohibitedAdv, prohibitedCat, prohibitedTac, adapterConfig, t.EnableAEESignals,
	)
	if err != nil {
		return fmt.Errorf("upsert tenant: %w", err)
	}
	return nil
}

// tenantRepo adapts Provider to storage.TenantRepository.
type tenantRepo struct{ p *Provider }

// AsTenantRepository returns a storage.TenantRepository backed by this Provider.
func (p *Provider) AsTenantRepository() storage.TenantRepository { return tenantRepo{p} }

func (r tenantRepo) Get(ctx context.Context, tenantID string) (*model.Tenant, error) {
	return r.p.GetTenant(ctx, tenantID)
}
func (r tenantRepo) GetBySubdomain(ctx context.Context, subdomain string) (*model.Tenant, error) {
	return r.p.GetTenantBySubdomain(ctx, subdomain)
}
func (r tenantRepo) GetByVirtualHost(ctx context.Context, host string) (*model.Tenant, error) {
	return r.p.GetTenantByVirtualHost(ctx, host)
}
func (r tenantRepo) Upsert(ctx context.Context, t *model.Tenant) error {
	return r.p.UpsertTenant(ctx, t)
}
func (r tenantRepo) ListByAdServer(ctx context.Context, adServer string) ([]*model.Tenant, error) {
	return r.p.ListTenantsByAdServer(ctx, adServer)
}
