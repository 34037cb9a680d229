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

// Package postgres implements the gateway's warm (source-of-truth) storage
// tier on top of pgx/v5.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Provider wraps a pgxpool.Pool and backs every repository interface in
// package storage through its As*Repository adapters. All queries take tenant_id explicitly — there is no
// ambient tenant filter baked into the Provider itself.
type Provider struct {
	pool     *pgxpool.Pool
	ownsPool bool
}

// Config configures a new Provider.
type Config struct {
	ConnString string
	MaxConns   int32
	MinConns   int32
}

// New creates a Provider that owns (and will Close) its own pool.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.ConnString)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Provider{pool: pool, ownsPool: true}, nil
}

// NewFromPool wraps an existing pool (e.g. one shared with other callers or
// provided by testcontainers) without taking ownership of its lifecycle.
func NewFromPool(pool *pgxpool.Pool) *Provider {
	return &Provider{pool: pool}
}

// Pool exposes the underlying pool for callers that need it directly (e.g. the migrator).
func (p *Provider) Pool() *pgxpool.Pool { return p.pool }

// Ping verifies connectivity, used by the health server.
func (p *Provider) Ping(ctx context.Context) error { return p.pool.Ping(ctx) }

// Close closes the pool if this Provider created it.
func (p *Provider) Close() error {
	if p.ownsPool && p.pool != nil {
		p.pool.Close()
	}
	return nil
}

func marshalJSONB(v any) ([]byte, error) {
	if v == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(v)
}

func unmarshalJSONB[T any](raw []byte, dst *T) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}
