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

// Package admin implements the cross-tenant superadmin facade (§6.7): a
// one-time bootstrap endpoint that mints the superadmin API key, and
// tenant/principal provisioning endpoints gated on that key. Unlike the A2A
// and MCP facades, this surface is never tenant-scoped — it operates above
// tenant.Registry, directly against storage.Registry.
package admin

import (
	"net/http"

	"github.com/go-logr/logr"

	"github.com/adcontextprotocol/gateway/internal/storage"
)

// headerSuperadminKey carries the bootstrap-minted key on every admin call
// after initialization.
const headerSuperadminKey = "X-Superadmin-Api-Key"

// adminConfigKey is the single row name under which the superadmin key is
// stored (storage.AdminConfigRepository is a flat key/value store so other
// process-wide bootstrap flags can share it later).
const adminConfigKey = "superadmin_api_key"

// Server is the superadmin provisioning facade.
type Server struct {
	store  *storage.Registry
	logger logr.Logger
}

// New constructs an admin Server.
func New(store *storage.Registry, logger logr.Logger) *Server {
	return &Server{store: store, logger: logger.WithName("admin-facade")}
}

// Handler returns the http.Handler serving the bootstrap and provisioning
// routes. Every route but the bootstrap itself requires the superadmin key.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /init-api-key", s.handleInitAPIKey)

	mux.Handle("POST /tenants", s.requireSuperadminKey(http.HandlerFunc(s.handleCreateTenant)))
	mux.Handle("GET /tenants/{tenant_id}", s.requireSuperadminKey(http.HandlerFunc(s.handleGetTenant)))
	mux.Handle("PUT /tenants/{tenant_id}", s.requireSuperadminKey(http.HandlerFunc(s.handleUpdateTenant)))
	mux.Handle("POST /tenants/{tenant_id}/principals", s.requireSuperadminKey(http.HandlerFunc(s.handleCreatePrincipal)))
	mux.Handle("GET /tenants/{tenant_id}/principals", s.requireSuperadminKey(http.HandlerFunc(s.handleListPrincipals)))

	return mux
}

// requireSuperadminKey compares the request's key header against the key
// stored by the bootstrap endpoint, mirroring require_superadmin_api_key's
// "unset means nothing can authenticate yet" behavior.
func (s *Server) requireSuperadminKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		want, err := s.store.AdminConfig.Get(r.Context(), adminConfigKey)
		if err != nil || want == "" {
			http.Error(w, "superadmin API key not initialized", http.StatusServiceUnavailable)
			return
		}
		got := r.Header.Get(headerSuperadminKey)
		if got == "" || got != want {
			http.Error(w, "invalid or missing superadmin API key", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
