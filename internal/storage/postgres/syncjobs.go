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
	"github.com/jackc/pgx/v5/pgconn"
)

const syncJobColumns = `sync_id, tenant_id, sync_type, status, started_at, completed_at,
	summary, error_message`

func scanSyncJob(row pgx.Row) (*model.SyncJob, error) {
	var j model.SyncJob
	var summary []byte
	err := row.Scan(&j.SyncID, &j.TenantID, &j.SyncType, &j.Status, &j.StartedAt,
		&j.CompletedAt, &summary, &j.ErrorMessage)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan sync job: %w", err)
	}
	_ = unmarshalJSONB(summary, &j.Summary)
	return &j, nil
}

// TryStartSyncJob inserts a running sync job, relying on a partial unique
// index (tenant_id, sync_type) WHERE status = 'running' to enforce that at
// most one job of a given type runs per tenant at a time. A unique-violation
// means a job is already running; that is reported as (false, nil) rather
// than an error, since it is an expected outcome, not a failure.
func (p *Provider) TryStartSyncJob(ctx context.Context, job *model.SyncJob) (bool, error) {
	summary, err := marshalJSONB(job.Summary)
	if err != nil {
		return false, err
	}
	_, err = p.pool.Exec(ctx, `
		INSERT INTO sync_jobs (`+syncJobColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, job.SyncID, job.TenantID, job.SyncType, job.Status, job.StartedAt,
		job.CompletedAt, summary, job.ErrorMessage)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return false, nil
		}
		return false, fmt.Errorf("start sync job: %w", err)
	}
	return true, nil
}

func (p *Provider) FinishSyncJob(ctx context.Context, job *model.SyncJob) error {
	summary, err := marshalJSONB(job.Summary)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, `
		UPDATE sync_jobs SET status = $3, completed_at = $4, summary = $5, error_message = $6
		WHERE tenant_id = $1 AND sync_id = $2
	`, job.TenantID, job.SyncID, job.Status, job.CompletedAt, summary, job.ErrorMessage)
	if err != nil {
		return fmt.Errorf("finish sync job: %w", err)
	}
	return nil
}

func (p *Provider) LatestSyncJob(ctx context.Context, tenantID string, syncType model.SyncType) (*model.SyncJob, error) {
	row := p.pool.QueryRow(ctx, `
		SELECT `+syncJobColumns+` FROM sync_jobs
		WHERE tenant_id = $1 AND sync_type = $2
		ORDER BY started_at DESC LIMIT 1
	`, tenantID, syncType)
	return scanSyncJob(row)
}

func (p *Provider) GetSyncJob(ctx context.Context, tenantID, syncID string) (*model.SyncJob, error) {
	row := p.pool.QueryRow(ctx, `
		SELECT `+syncJobColumns+` FROM sync_jobs WHERE tenant_id = $1 AND sync_id = $2
	`, tenantID, syncID)
	return scanSyncJob(row)
}

func (p *Provider) SyncJobHistory(ctx context.Context, tenantID string, limit, offset int, statusFilter model.SyncStatus) ([]*model.SyncJob, error) {
	var qb pgutil.QueryBuilder
	qb.Add("tenant_id = $?", tenantID)
	if statusFilter != "" {
		qb.Add("status = $?", statusFilter)
	}
	query := `SELECT ` + syncJobColumns + ` FROM sync_jobs WHERE 1=1` + qb.Where() + ` ORDER BY started_at DESC`
	query = qb.AppendPagination(query, limit, offset)

	rows, err := p.pool.Query(ctx, query, qb.Args()...)
	if err != nil {
		return nil, fmt.Errorf("sync job history: %w", err)
	}
	defer rows.Close()
	var out []*model.SyncJob
	for rows.Next() {
		j, err := scanSyncJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

type syncJobRepo struct{ p *Provider }

// AsSyncJobRepository returns a storage.SyncJobRepository backed by this Provider.
func (p *Provider) AsSyncJobRepository() storage.SyncJobRepository { return syncJobRepo{p} }

func (r syncJobRepo) TryStart(ctx context.Context, job *model.SyncJob) (bool, error) {
	return r.p.TryStartSyncJob(ctx, job)
}
func (r syncJobRepo) Finish(ctx context.Context, job *model.SyncJob) error {
	return r.p.FinishSyncJob(ctx, job)
}
func (r syncJobRepo) Latest(ctx context.Context, tenantID string, syncType model.SyncType) (*model.SyncJob, error) {
	return r.p.LatestSyncJob(ctx, tenantID, syncType)
}
func (r syncJobRepo) GetByID(ctx context.Context, tenantID, syncID string) (*model.SyncJob, error) {
	return r.p.GetSyncJob(ctx, tenantID, syncID)
}
func (r syncJobRepo) History(ctx context.Context, tenantID string, limit, offset int, statusFilter model.SyncStatus) ([]*model.SyncJob, error) {
	return r.p.SyncJobHistory(ctx, tenantID, limit, offset, statusFilter)
}
