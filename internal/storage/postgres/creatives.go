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

const creativeColumns = `creative_id, tenant_id, principal_id, name, format, snippet_type,
	snippet, template_variables, media_url, media_data, click_url, duration_seconds,
	tracking, package_assignments, adapter_creative_id, status, review_feedback, width, height`

func scanCreative(row pgx.Row) (*model.Creative, error) {
	var c model.Creative
	var templateVars, tracking, pkgAssignments []byte
	err := row.Scan(
		&c.CreativeID, &c.TenantID, &c.PrincipalID, &c.Name, &c.Format, &c.SnippetType,
		&c.Snippet, &templateVars, &c.MediaURL, &c.MediaData, &c.ClickURL, &c.DurationSeconds,
		&tracking, &pkgAssignments, &c.AdapterCreativeID, &c.Status, &c.ReviewFeedback,
		&c.Width, &c.Height,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan creative: %w", err)
	}
	_ = unmarshalJSONB(templateVars, &c.TemplateVariables)
	_ = unmarshalJSONB(tracking, &c.Tracking)
	_ = unmarshalJSONB(pkgAssignments, &c.PackageAssignments)
	return &c, nil
}

func (p *Provider) GetCreative(ctx context.Context, tenantID, creativeID string) (*model.Creative, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT `+creativeColumns+` FROM creatives WHERE tenant_id = $1 AND creative_id = $2`,
		tenantID, creativeID)
	return scanCreative(row)
}

// UpsertCreativeBatch writes every creative in one transaction, grounding the
// "submit a batch of creatives at once" flow in a single round trip.
func (p *Provider) UpsertCreativeBatch(ctx context.Context, creatives []*model.Creative) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, c := range creatives {
		templateVars, err := marshalJSONB(c.TemplateVariables)
		if err != nil {
			return err
		}
		tracking, err := marshalJSONB(c.Tracking)
		if err != nil {
			return err
		}
		pkgAssignments, err := marshalJSONB(c.PackageAssignments)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO creatives (`+creativeColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
			ON CONFLICT (tenant_id, creative_id) DO UPDATE SET
				name = EXCLUDED.name, format = EXCLUDED.format, snippet_type = EXCLUDED.snippet_type,
				snippet = EXCLUDED.snippet, template_variables = EXCLUDED.template_variables,
				media_url = EXCLUDED.media_url, media_data = EXCLUDED.media_data, click_url = EXCLUDED.click_url,
				duration_seconds = EXCLUDED.duration_seconds, tracking = EXCLUDED.tracking,
				package_assignments = EXCLUDED.package_assignments, adapter_creative_id = EXCLUDED.adapter_creative_id,
				status = EXCLUDED.status, review_feedback = EXCLUDED.review_feedback,
				width = EXCLUDED.width, height = EXCLUDED.height
		`, c.CreativeID, c.TenantID, c.PrincipalID, c.Name, c.Format, c.SnippetType,
			c.Snippet, templateVars, c.MediaURL, c.MediaData, c.ClickURL, c.DurationSeconds,
			tracking, pkgAssignments, c.AdapterCreativeID, c.Status, c.ReviewFeedback,
			c.Width, c.Height)
		if err != nil {
			return fmt.Errorf("upsert creative %s: %w", c.CreativeID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

type creativeRepo struct{ p *Provider }

// AsCreativeRepository returns a storage.CreativeRepository backed by this Provider.
func (p *Provider) AsCreativeRepository() storage.CreativeRepository { return creativeRepo{p} }

func (r creativeRepo) Get(ctx context.Context, tenantID, creativeID string) (*model.Creative, error) {
	return r.p.GetCreative(ctx, tenantID, creativeID)
}
func (r creativeRepo) UpsertBatch(ctx context.Context, creatives []*model.Creative) error {
	return r.p.UpsertCreativeBatch(ctx, creatives)
}
