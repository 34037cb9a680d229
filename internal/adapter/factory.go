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

package adapter

import (
	"fmt"

	"github.com/go-logr/logr"

	"github.com/adcontextprotocol/gateway/internal/model"
)

// Registry dispatches a tenant's configured ad_server to its Adapter
// constructor, grounded on TaskExecutor.get_adapter's if/elif chain.
type Registry struct {
	factories map[string]Factory
	logger    logr.Logger
}

// NewRegistry constructs an empty Registry; callers register each
// supported ad_server's Factory (mock, google_ad_manager, kevel,
// triton_digital).
func NewRegistry(logger logr.Logger) *Registry {
	return &Registry{factories: make(map[string]Factory), logger: logger.WithName("adapter-registry")}
}

// Register binds an ad_server name to its Factory.
func (r *Registry) Register(adServer string, factory Factory) {
	r.factories[adServer] = factory
}

// For resolves the Adapter for a tenant, defaulting to "mock" when the
// tenant has no ad_server configured or the configured one isn't
// registered, matching the source's `tenant.get('ad_server', 'mock')`
// fallback.
func (r *Registry) For(tenant *model.Tenant, principal *model.Principal) (Adapter, error) {
	adServer := tenant.AdServer
	if adServer == "" {
		adServer = "mock"
	}
	factory, ok := r.factories[adServer]
	if !ok {
		r.logger.Info("ad_server not registered, falling back to mock", "tenant_id", tenant.TenantID, "ad_server", adServer)
		factory, ok = r.factories["mock"]
		if !ok {
			return nil, fmt.Errorf("adapter registry: no factory registered for %q and no mock fallback", adServer)
		}
	}
	return factory(tenant, principal)
}
