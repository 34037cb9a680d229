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

	"github.com/adcontextprotocol/gateway/internal/storage"
	"github.com/jackc/pgx/v5"
)

// GetAdminConfig reads one config_key/value pair.
func (p *Provider) GetAdminConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := p.pool.QueryRow(ctx, `SELECT config_value FROM admin_config WHERE config_key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get admin config %q: %w", key, err)
	}
	return value, nil
}

// CreateAdminConfigIfAbsent inserts key/value, reporting false (no error) if
// the key was already set, so the bootstrap endpoint can only ever mint the
// superadmin key once.
func (p *Provider) CreateAdminConfigIfAbsent(ctx context.Context, key, value string) (bool, error) {
	tag, err := p.pool.Exec(ctx, `
		INSERT INTO admin_config (config_key, config_value)
		VALUES ($1, $2)
		ON CONFLICT (config_key) DO NOTHING
	`, key, value)
	if err != nil {
		return false, fmt.Errorf("create admin config %q: %w", key, err)
	}
	return tag.RowsAffected() == 1, nil
}

type adminConfigRepo struct{ p *Provider }

// AsAdminConfigRepository returns a storage.AdminConfigRepository backed by this Provider.
func (p *Provider) AsAdminConfigRepository() storage.AdminConfigRepository { return adminConfigRepo{p} }

func (r adminConfigRepo) Get(ctx context.Context, key string) (string, error) {
	return r.p.GetAdminConfig(ctx, key)
}

func (r adminConfigRepo) CreateIfAbsent(ctx context.Context, key, value string) (bool, error) {
	return r.p.CreateAdminConfigIfAbsent(ctx, key, value)
}
