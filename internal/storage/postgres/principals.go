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
	"github.com/adcontextprotocol/gateway/internal/storage"
	"github.com/jackc/pgx/v5"
)

const principalColumns = `tenant_id, principal_id, name, access_token, platform_mappings, is_admin`

func scanPrincipal(row pgx.Row) (*model.Principal, error) {
	var pr model.Principal
	var mappings []byte
	err := row.Scan(&pr.TenantID, &pr.PrincipalID, &pr.Name, &pr.AccessToken, &mappings, &pr.IsAdmin)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan principal: %w", err)
	}
	_ = unmarshalJSONB(mappings, &pr.PlatformMappings)
	return &pr, nil
}

func (p *Provider) GetPrincipal(ctx context.Context, tenantID, principalID string) (*model.Principal, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT `+principalColumns+` FROM principals WHERE tenant_id = $1 AND principal_id = $2`,
		tenantID, principalID)
	return scanPrincipal(row)
}

func (p *Provider) GetPrincipalByAccessToken(ctx context.Context, tenantID, token string) (*model.Principal, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT `+principalColumns+` FROM principals WHERE tenant_id = $1 AND access_token = $2`,
		tenantID, token)
	return scanPrincipal(row)
}

func (p *Provider) ListPrincipalsByTenant(ctx context.Context, tenantID string) ([]*model.Principal, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+principalColumns+` FROM principals WHERE tenant_id = $1`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list principals: %w", err)
	}
	defer rows.Close()
	var out []*model.Principal
	for rows.Next() {
		pr, err := scanPrincipal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, pr)
	}
	return out, rows.Err()
}

func (p *Provider) UpsertPrincipal(ctx context.Context, pr *model.Principal) error {
	mappings, err := marshalJSONB(pr.PlatformMappings)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, `
		INSERT INTO principals (`+principalColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (tenant_id, principal_id) DO UPDATE SET
			name = EXCLUDED.name, access_token = EXCLUDED.access_token,
			platform_mappings = EXCLUDED.platform_mappings, is_admin = EXCLUDED.is_admin
	`, pr.TenantID, pr.PrincipalID, pr.Name, pr.AccessToken, mappings, pr.IsAdmin)
	if err != nil {
		return fmt.Errorf("upsert principal: %w", err)
	}
	return nil
}

// principalRepo adapts Provider's method set to storage.PrincipalRepository,
// exposing GetPrincipal, GetPrincipalByAccessToken, ListPrincipalsByTenant
// and UpsertPrincipal under the interface's Get/GetByAccessToken/ListByTenant/
// Upsert names (those short names are shared across entities on the same
// Provider).
type principalRepo struct{ p *Provider }

func (p *Provider) AsPrincipalRepository() storage.PrincipalRepository { return principalRepo{p} }

func (r principalRepo) Get(ctx context.Context, tenantID, principalID string) (*model.Principal, error) {
	return r.p.GetPrincipal(ctx, tenantID, principalID)
}
func (r principalRepo) GetByAccessToken(ctx context.Context, tenantID, token string) (*model.Principal, error) {
	return r.p.GetPrincipalByAccessToken(ctx, tenantID, token)
}
func (r principalRepo) ListByTenant(ctx context.Context, tenantID string) ([]*model.Principal, error) {
	return r.p.ListPrincipalsByTenant(ctx, tenantID)
}
func (r principalRepo) Upsert(ctx context.Context, pr *model.Principal) error {
	return r.p.UpsertPrincipal(ctx, pr)
}
