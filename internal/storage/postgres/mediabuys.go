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

const mediaBuyColumns = `media_buy_id, tenant_id, principal_id, order_name, advertiser_name,
	budget, start_date, end_date, status, raw_request, adapter_order_id,
	promoted_offering, created_at, updated_at`

func scanMediaBuy(row pgx.Row) (*model.MediaBuy, error) {
	var mb model.MediaBuy
	var rawRequest []byte
	err := row.Scan(
		&mb.MediaBuyID, &mb.TenantID, &mb.PrincipalID, &mb.OrderName, &mb.AdvertiserName,
		&mb.Budget, &mb.StartDate, &mb.EndDate, &mb.Status, &rawRequest, &mb.AdapterOrderID,
		&mb.PromotedOffering, &mb.CreatedAt, &mb.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan media buy: %w", err)
	}
	_ = unmarshalJSONB(rawRequest, &mb.RawRequest)
	return &mb, nil
}

const packageColumns = `package_id, media_buy_id, tenant_id, product_id, impressions,
	cpm, delivery_type, format_ids, budget, delivery_spend, delivery_impressions`

func scanPackage(row pgx.Row) (*model.Package, error) {
	var pkg model.Package
	var formatIDs []byte
	err := row.Scan(
		&pkg.PackageID, &pkg.MediaBuyID, &pkg.TenantID, &pkg.ProductID, &pkg.Impressions,
		&pkg.CPM, &pkg.DeliveryType, &formatIDs, &pkg.Budget,
		&pkg.DeliveryMetrics.Spend, &pkg.DeliveryMetrics.ImpressionsDelivered,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan package: %w", err)
	}
	_ = unmarshalJSONB(formatIDs, &pkg.FormatIDs)
	return &pkg, nil
}

func (p *Provider) GetMediaBuy(ctx context.Context, tenantID, mediaBuyID string) (*model.MediaBuy, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT `+mediaBuyColumns+` FROM media_buys WHERE tenant_id = $1 AND media_buy_id = $2`,
		tenantID, mediaBuyID)
	return scanMediaBuy(row)
}

// CreateMediaBuyWithPackages inserts a media buy and its initial packages in
// one transaction so a media buy is never observed without its packages.
func (p *Provider) CreateMediaBuyWithPackages(ctx context.Context, mb *model.MediaBuy, pkgs []*model.Package) error {
	rawRequest, err := marshalJSONB(mb.RawRequest)
	if err != nil {
		return err
	}
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO media_buys (`+mediaBuyColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`, mb.MediaBuyID, mb.TenantID, mb.PrincipalID, mb.OrderName, mb.AdvertiserName,
		mb.Budget, mb.StartDate, mb.EndDate, mb.Status, rawRequest, mb.AdapterOrderID,
		mb.PromotedOffering, mb.CreatedAt, mb.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert media buy: %w", err)
	}

	for _, pkg := range pkgs {
		formatIDs, err := marshalJSONB(pkg.FormatIDs)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO packages (`+packageColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		`, pkg.PackageID, pkg.MediaBuyID, pkg.TenantID, pkg.ProductID, pkg.Impressions,
			pkg.CPM, pkg.DeliveryType, formatIDs, pkg.Budget,
			pkg.DeliveryMetrics.Spend, pkg.DeliveryMetrics.ImpressionsDelivered)
		if err != nil {
			return fmt.Errorf("insert package %s: %w", pkg.PackageID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (p *Provider) UpdateMediaBuy(ctx context.Context, mb *model.MediaBuy) error {
	rawRequest, err := marshalJSONB(mb.RawRequest)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, `
		UPDATE media_buys SET
			order_name = $3, advertiser_name = $4, budget = $5, start_date = $6, end_date = $7,
			status = $8, raw_request = $9, adapter_order_id = $10, promoted_offering = $11, updated_at = $12
		WHERE tenant_id = $1 AND media_buy_id = $2
	`, mb.TenantID, mb.MediaBuyID, mb.OrderName, mb.AdvertiserName, mb.Budget, mb.StartDate, mb.EndDate,
		mb.Status, rawRequest, mb.AdapterOrderID, mb.PromotedOffering, mb.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update media buy: %w", err)
	}
	return nil
}

func (p *Provider) ListPackagesByMediaBuy(ctx context.Context, tenantID, mediaBuyID string) ([]*model.Package, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+packageColumns+` FROM packages WHERE tenant_id = $1 AND media_buy_id = $2`,
		tenantID, mediaBuyID)
	if err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}
	defer rows.Close()
	var out []*model.Package
	for rows.Next() {
		pkg, err := scanPackage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, pkg)
	}
	return out, rows.Err()
}

func (p *Provider) GetPackageByID(ctx context.Context, tenantID, mediaBuyID, packageID string) (*model.Package, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT `+packageColumns+` FROM packages WHERE tenant_id = $1 AND media_buy_id = $2 AND package_id = $3`,
		tenantID, mediaBuyID, packageID)
	return scanPackage(row)
}

func (p *Provider) UpdatePackageRow(ctx context.Context, pkg *model.Package) error {
	formatIDs, err := marshalJSONB(pkg.FormatIDs)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, `
		UPDATE packages SET
			impressions = $4, cpm = $5, delivery_type = $6, format_ids = $7, budget = $8,
			delivery_spend = $9, delivery_impressions = $10
		WHERE tenant_id = $1 AND media_buy_id = $2 AND package_id = $3
	`, pkg.TenantID, pkg.MediaBuyID, pkg.PackageID, pkg.Impressions, pkg.CPM, pkg.DeliveryType,
		formatIDs, pkg.Budget, pkg.DeliveryMetrics.Spend, pkg.DeliveryMetrics.ImpressionsDelivered)
	if err != nil {
		return fmt.Errorf("update package: %w", err)
	}
	return nil
}

type mediaBuyRepo struct{ p *Provider }

// AsMediaBuyRepository returns a storage.MediaBuyRepository backed by this Provider.
func (p *Provider) AsMediaBuyRepository() storage.MediaBuyRepository { return mediaBuyRepo{p} }

func (r mediaBuyRepo) Get(ctx context.Context, tenantID, mediaBuyID string) (*model.MediaBuy, error) {
	return r.p.GetMediaBuy(ctx, tenantID, mediaBuyID)
}
func (r mediaBuyRepo) CreateWithPackages(ctx context.Context, mb *model.MediaBuy, pkgs []*model.Package) error {
	return r.p.CreateMediaBuyWithPackages(ctx, mb, pkgs)
}
func (r mediaBuyRepo) Update(ctx context.Context, mb *model.MediaBuy) error {
	return r.p.UpdateMediaBuy(ctx, mb)
}
func (r mediaBuyRepo) ListPackages(ctx context.Context, tenantID, mediaBuyID string) ([]*model.Package, error) {
	return r.p.ListPackagesByMediaBuy(ctx, tenantID, mediaBuyID)
}
func (r mediaBuyRepo) GetPackage(ctx context.Context, tenantID, mediaBuyID, packageID string) (*model.Package, error) {
	return r.p.GetPackageByID(ctx, tenantID, mediaBuyID, packageID)
}
func (r mediaBuyRepo) UpdatePackage(ctx context.Context, pkg *model.Package) error {
	return r.p.UpdatePackageRow(ctx, pkg)
}
