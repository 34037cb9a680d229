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

const productColumns = `tenant_id, product_id, name, description, formats, targeting_template,
	delivery_type, is_fixed_price, cpm, price_guidance, implementation_config,
	non_guaranteed_automation, countries`

func scanProduct(row pgx.Row) (*model.Product, error) {
	var pr model.Product
	var formats, targetingTemplate, priceGuidance, implConfig, countries []byte
	err := row.Scan(
		&pr.TenantID, &pr.ProductID, &pr.Name, &pr.Description, &formats, &targetingTemplate,
		&pr.DeliveryType, &pr.IsFixedPrice, &pr.CPM, &priceGuidance, &implConfig,
		&pr.NonGuaranteedAutomation, &countries,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan product: %w", err)
	}
	_ = unmarshalJSONB(formats, &pr.Formats)
	_ = unmarshalJSONB(targetingTemplate, &pr.TargetingTemplate)
	_ = unmarshalJSONB(implConfig, &pr.ImplementationConfig)
	_ = unmarshalJSONB(countries, &pr.Countries)
	if len(priceGuidance) > 0 && string(priceGuidance) != "null" {
		var pg model.PriceGuidance
		if err := unmarshalJSONB(priceGuidance, &pg); err == nil {
			pr.PriceGuidance = &pg
		}
	}
	return &pr, nil
}

func (p *Provider) GetProduct(ctx context.Context, tenantID, productID string) (*model.Product, error) {
	row := p.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE tenant_id = $1 AND product_id = $2`, tenantID, productID)
	return scanProduct(row)
}

func (p *Provider) ListProductsByTenant(ctx context.Context, tenantID string) ([]*model.Product, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+productColumns+` FROM products WHERE tenant_id = $1`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var out []*model.Product
	for rows.Next() {
		pr, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, pr)
	}
	return out, rows.Err()
}

func (p *Provider) UpsertProduct(ctx context.Context, pr *model.Product) error {
	formats, err := marshalJSONB(pr.Formats)
	if err != nil {
		return err
	}
	targetingTemplate, err := marshalJSONB(pr.TargetingTemplate)
	if err != nil {
		return err
	}
	implConfig, err := marshalJSONB(pr.ImplementationConfig)
	if err != nil {
		return err
	}
	countries, err := marshalJSONB(pr.Countries)
	if err != nil {
		return err
	}
	priceGuidance, err := marshalJSONB(pr.PriceGuidance)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (tenant_id, product_id) DO UPDATE SET
			name = EXCLUDED.name, description = EXCLUDED.description, formats = EXCLUDED.formats,
			targeting_template = EXCLUDED.targeting_template, delivery_type = EXCLUDED.delivery_type,
			is_fixed_price = EXCLUDED.is_fixed_price, cpm = EXCLUDED.cpm,
			price_guidance = EXCLUDED.price_guidance, implementation_config = EXCLUDED.implementation_config,
			non_guaranteed_automation = EXCLUDED.non_guaranteed_automation, countries = EXCLUDED.countries
	`, pr.TenantID, pr.ProductID, pr.Name, pr.Description, formats, targetingTemplate,
		pr.DeliveryType, pr.IsFixedPrice, pr.CPM, priceGuidance, implConfig,
		pr.NonGuaranteedAutomation, countries)
	if err != nil {
		return fmt.Errorf("upsert product: %w", err)
	}
	return nil
}

type productRepo struct{ p *Provider }

// AsProductRepository returns a storage.ProductRepository backed by this Provider.
func (p *Provider) AsProductRepository() storage.ProductRepository { return productRepo{p} }

func (r productRepo) Get(ctx context.Context, tenantID, productID string) (*model.Product, error) {
	return r.p.GetProduct(ctx, tenantID, productID)
}
func (r productRepo) ListByTenant(ctx context.Context, tenantID string) ([]*model.Product, error) {
	return r.p.ListProductsByTenant(ctx, tenantID)
}
func (r productRepo) Upsert(ctx context.Context, pr *model.Product) error {
	return r.p.UpsertProduct(ctx, pr)
}
