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

package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/adcontextprotocol/gateway/internal/storage"
)

// Compile-time interface check.
var _ storage.HotCache = (*Provider)(nil)

// Provider implements storage.HotCache using Redis. It holds only the
// write-through conversation-context state, never the persisted message log
// or any entity — the warm postgres store remains the source of truth.
type Provider struct {
	client     goredis.UniversalClient
	keyPrefix  string
	ttl        time.Duration
	ownsClient bool
}

// New creates a Provider that owns the underlying Redis client. The client is
// created from cfg and verified with a PING. Close will shut down the client.
func New(cfg Config) (*Provider, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("redis: at least one address is required")
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = defaultTTL
	}

	opts := &goredis.UniversalOptions{
		Addrs:    cfg.Addrs,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}

	client := goredis.NewUniversalClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: failed to connect: %w", err)
	}

	return &Provider{client: client, keyPrefix: prefix, ttl: ttl, ownsClient: true}, nil
}

// NewFromClient wraps an existing UniversalClient. Close is a no-op because
// the caller retains ownership of the client — used when the caller shares
// one Redis connection across multiple concerns.
func NewFromClient(client goredis.UniversalClient, cfg Config) *Provider {
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = defaultTTL
	}
	return &Provider{client: client, keyPrefix: prefix, ttl: ttl}
}

func (p *Provider) stateKey(contextID string) string {
	return p.keyPrefix + contextID
}

// GetState returns the cached state for contextID. The bool is false when no
// entry exists — the caller should fall back to the warm store, not treat
// this as an error.
func (p *Provider) GetState(ctx context.Context, contextID string) (map[string]any, bool, error) {
	data, err := p.client.Get(ctx, p.stateKey(contextID)).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis: get context state: %w", err)
	}
	var state map[string]any
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, false, fmt.Errorf("redis: unmarshal context state: %w", err)
	}
	return state, true, nil
}

// SetState writes the context state with the provider's configured TTL,
// refreshing the expiry on every write.
func (p *Provider) SetState(ctx context.Context, contextID string, state map[string]any) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("redis: marshal context state: %w", err)
	}
	if err := p.client.Set(ctx, p.stateKey(contextID), data, p.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set context state: %w", err)
	}
	return nil
}

// Ping verifies connectivity, used by the health server.
func (p *Provider) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func (p *Provider) Close() error {
	if p.ownsClient {
		return p.client.Close()
	}
	return nil
}
