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

// Package catalog implements product discovery (C4). Provider is pluggable;
// Database is the default provider, reading products from storage and
// filtering by exact format intersection and country-list overlap.
package catalog

import (
	"context"
	"fmt"

	"github.com/adcontextprotocol/gateway/internal/model"
	"github.com/adcontextprotocol/gateway/internal/storage"
)

// Filters narrows the product list returned by a Provider.
type Filters struct {
	Countries         []string
	Formats           []string
	TargetingFeatures []string
	PromotedOffering  string
}

// Provider returns products matching a brief and filters. brief is advisory —
// the default Database provider ignores it; an AI-ranking provider could use
// it to re-rank or re-narrow results.
type Provider interface {
	GetProducts(ctx context.Context, tenantID, principalID string, brief string, filters Filters) ([]*model.Product, error)
}

// Database is the default Provider, backed by storage.ProductRepository.
type Database struct {
	products storage.ProductRepository
}

// NewDatabase constructs the default database-backed catalog provider.
func NewDatabase(products storage.ProductRepository) *Database {
	return &Database{products: products}
}

// GetProducts lists the tenant's products, keeping only those whose formats
// intersect filters.Formats (when given) and whose countries overlap
// filters.Countries (when given). brief and TargetingFeatures are accepted
// for interface parity but not used by this provider.
func (d *Database) GetProducts(ctx context.Context, tenantID, _ string, _ string, filters Filters) ([]*model.Product, error) {
	all, err := d.products.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	var out []*model.Product
	for _, p := range all {
		if len(filters.Formats) > 0 && !intersects(p.Formats, filters.Formats) {
			continue
		}
		if len(filters.Countries) > 0 && len(p.Countries) > 0 && !intersects(p.Countries, filters.Countries) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func intersects(a, b []string) bool {
	set := make(map[string]struct{}, len(a))
	for _, v := range a {
		set[v] = struct{}{}
	}
	for _, v := range b {
		if _, ok := set[v]; ok {
			return true
		}
	}
	return false
}
