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

// Package redis implements the optional hot cache tier (storage.HotCache) in
// front of the conversation-context warm store, using go-redis/v9.
package redis

import "time"

const (
	defaultKeyPrefix = "adcp:ctx:"
	defaultTTL       = 30 * time.Minute
)

// Config holds connection and behaviour settings for the hot cache provider.
type Config struct {
	// Addrs lists Redis server addresses. A single address creates a standalone
	// client; multiple addresses create a cluster client.
	Addrs []string
	// Password is used for Redis AUTH.
	Password string
	// DB selects the database number. Ignored in cluster mode.
	DB int
	// KeyPrefix is prepended to every key written by the provider. Default: "adcp:ctx:".
	KeyPrefix string
	// TTL bounds how long a cached context state survives without being
	// refreshed. Default: 30 minutes.
	TTL time.Duration
	// PoolSize overrides the go-redis default connection pool size.
	PoolSize int
}

// DefaultConfig returns a Config with sensible defaults. Callers must still
// set at least one address in Addrs.
func DefaultConfig() Config {
	return Config{
		KeyPrefix: defaultKeyPrefix,
		TTL:       defaultTTL,
	}
}
