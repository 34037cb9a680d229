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

const taskColumns = `task_id, tenant_id, media_buy_id, task_type, status, created_at,
	description, created_by, details`

func scanTask(row pgx.Row) (*model.Task, error) {
	var t model.Task
	var mediaBuyID *string
	var details []byte
	err := row.Scan(
		&t.TaskID, &t.TenantID, &mediaBuyID, &t.TaskType, &t.Status, &t.CreatedAt,
		&t.Description, &t.CreatedBy, &details,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan task: %w", err)
	}
	t.MediaBuyID = pgutil.DerefString(mediaBuyID)
	_ = unmarshalJSONB(details, &t.Details)
	return &t, nil
}

func (p *Provider) GetTask(ctx context.Context, tenantID, taskID string) (*model.Task, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE tenant_id = $1 AND task_id = $2`,
		tenantID, taskID)
	return scanTask(row)
}

func (p *Provider) CreateTask(ctx context.Context, t *model.Task) error {
	details, err := marshalJSONB(t.Details)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, t.TaskID, t.TenantID, pgutil.NullString(t.MediaBuyID), t.TaskType, t.Status, t.CreatedAt,
		t.Description, t.CreatedBy, details)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (p *Provider) UpdateTask(ctx context.Context, t *model.Task) error {
	details, err := marshalJSONB(t.Details)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, `
		UPDATE tasks SET status = $3, description = $4, details = $5
		WHERE tenant_id = $1 AND task_id = $2
	`, t.TenantID, t.TaskID, t.Status, t.Description, details)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

func (p *Provider) ListTasksByMediaBuy(ctx context.Context, tenantID, mediaBuyID string) ([]*model.Task, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE tenant_id = $1 AND media_buy_id = $2`,
		tenantID, mediaBuyID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()
	var out []*model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

type taskRepo struct{ p *Provider }

// AsTaskRepository returns a storage.TaskRepository backed by this Provider.
func (p *Provider) AsTaskRepository() storage.TaskRepository { return taskRepo{p} }

func (r taskRepo) Get(ctx context.Context, tenantID, taskID string) (*model.Task, error) {
	return r.p.GetTask(ctx, tenantID, taskID)
}
func (r taskRepo) Create(ctx context.Context, t *model.Task) error {
	return r.p.CreateTask(ctx, t)
}
func (r taskRepo) Update(ctx context.Context, t *model.Task) error {
	return r.p.UpdateTask(ctx, t)
}
func (r taskRepo) ListByMediaBuy(ctx context.Context, tenantID, mediaBuyID string) ([]*model.Task, error) {
	return r.p.ListTasksByMediaBuy(ctx, tenantID, mediaBuyID)
}
