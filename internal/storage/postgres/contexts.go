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

const contextColumns = `context_id, tenant_id, principal_id, protocol, state, created_at, updated_at`

func scanConvoContext(row pgx.Row) (*model.ConvoContext, error) {
	var c model.ConvoContext
	var state []byte
	err := row.Scan(&c.ContextID, &c.TenantID, &c.PrincipalID, &c.Protocol, &state, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan context: %w", err)
	}
	_ = unmarshalJSONB(state, &c.State)
	return &c, nil
}

// GetOrCreateContext fetches an existing conversation context or creates one
// scoped to (tenantID, principalID, protocol) when contextID is unseen.
func (p *Provider) GetOrCreateContext(ctx context.Context, contextID, tenantID, principalID, protocol string) (*model.ConvoContext, error) {
	existing, err := p.GetContext(ctx, contextID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	state, err := marshalJSONB(map[string]any{})
	if err != nil {
		return nil, err
	}
	row := p.pool.QueryRow(ctx, `
		INSERT INTO contexts (`+contextColumns+`)
		VALUES ($1,$2,$3,$4,$5, now(), now())
		ON CONFLICT (context_id) DO UPDATE SET context_id = EXCLUDED.context_id
		RETURNING `+contextColumns+`
	`, contextID, tenantID, principalID, protocol, state)
	return scanConvoContext(row)
}

func (p *Provider) GetContext(ctx context.Context, contextID string) (*model.ConvoContext, error) {
	row := p.pool.QueryRow(ctx, `SELECT `+contextColumns+` FROM contexts WHERE context_id = $1`, contextID)
	c, err := scanConvoContext(row)
	if err != nil {
		return nil, err
	}
	msgs, err := p.ListContextMessages(ctx, contextID, 0, 0)
	if err != nil {
		return nil, err
	}
	c.Messages = msgs
	return c, nil
}

func (p *Provider) SaveContextState(ctx context.Context, contextID string, state map[string]any) error {
	raw, err := marshalJSONB(state)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, `UPDATE contexts SET state = $2, updated_at = now() WHERE context_id = $1`, contextID, raw)
	if err != nil {
		return fmt.Errorf("save context state: %w", err)
	}
	return nil
}

func (p *Provider) AppendContextMessage(ctx context.Context, contextID string, msg model.Message) error {
	metadata, err := marshalJSONB(msg.Metadata)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, `
		INSERT INTO context_messages (id, context_id, role, content, timestamp, metadata)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, msg.ID, contextID, msg.Role, msg.Content, msg.Timestamp, metadata)
	if err != nil {
		return fmt.Errorf("append context message: %w", err)
	}
	_, err = p.pool.Exec(ctx, `UPDATE contexts SET updated_at = now() WHERE context_id = $1`, contextID)
	if err != nil {
		return fmt.Errorf("touch context: %w", err)
	}
	return nil
}

func (p *Provider) ListContextMessages(ctx context.Context, contextID string, limit, offset int) ([]model.Message, error) {
	var qb pgutil.QueryBuilder
	qb.Add("context_id = $?", contextID)
	query := qb.AppendPagination(
		`SELECT id, role, content, timestamp, metadata FROM context_messages WHERE 1=1`+qb.Where()+` ORDER BY timestamp ASC`,
		limit, offset,
	)
	rows, err := p.pool.Query(ctx, query, qb.Args()...)
	if err != nil {
		return nil, fmt.Errorf("list context messages: %w", err)
	}
	defer rows.Close()
	var out []model.Message
	for rows.Next() {
		var m model.Message
		var metadata []byte
		if err := rows.Scan(&m.ID, &m.Role, &m.Content, &m.Timestamp, &metadata); err != nil {
			return nil, fmt.Errorf("scan context message: %w", err)
		}
		_ = unmarshalJSONB(metadata, &m.Metadata)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (p *Provider) ClearContextMessages(ctx context.Context, contextID string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM context_messages WHERE context_id = $1`, contextID)
	if err != nil {
		return fmt.Errorf("clear context messages: %w", err)
	}
	_, err = p.pool.Exec(ctx, `UPDATE contexts SET updated_at = now() WHERE context_id = $1`, contextID)
	if err != nil {
		return fmt.Errorf("touch context: %w", err)
	}
	return nil
}

type contextRepo struct{ p *Provider }

// AsContextRepository returns a storage.ContextRepository backed by this Provider.
func (p *Provider) AsContextRepository() storage.ContextRepository { return contextRepo{p} }

func (r contextRepo) GetOrCreate(ctx context.Context, contextID, tenantID, principalID, protocol string) (*model.ConvoContext, error) {
	return r.p.GetOrCreateContext(ctx, contextID, tenantID, principalID, protocol)
}
func (r contextRepo) Get(ctx context.Context, contextID string) (*model.ConvoContext, error) {
	return r.p.GetContext(ctx, contextID)
}
func (r contextRepo) SaveState(ctx context.Context, contextID string, state map[string]any) error {
	return r.p.SaveContextState(ctx, contextID, state)
}
func (r contextRepo) AppendMessage(ctx context.Context, contextID string, msg model.Message) error {
	return r.p.AppendContextMessage(ctx, contextID, msg)
}
func (r contextRepo) ListMessages(ctx context.Context, contextID string, limit, offset int) ([]model.Message, error) {
	return r.p.ListContextMessages(ctx, contextID, limit, offset)
}
func (r contextRepo) ClearMessages(ctx context.Context, contextID string) error {
	return r.p.ClearContextMessages(ctx, contextID)
}
