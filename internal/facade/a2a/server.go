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

// Package a2a implements the JSON-RPC 2.0 "A2A" facade (C10): a single
// /rpc endpoint plus an Agent Card, dispatching every skill to the
// protocol-agnostic Task Executor and rendering its TaskResult back as an
// A2A Task (or, for message/send, an A2A Message).
package a2a

import (
	"net/http"

	"github.com/go-logr/logr"

	"github.com/adcontextprotocol/gateway/internal/executor"
	"github.com/adcontextprotocol/gateway/internal/reqcontext"
	"github.com/adcontextprotocol/gateway/internal/tenant"
)

// Server is the A2A protocol facade over the Task Executor.
type Server struct {
	executor       *executor.Executor
	tenants        *tenant.Registry
	logger         logr.Logger
	allowedOrigins []string
}

// New constructs an A2A Server. allowedOrigins is the CORS allow-list; an
// empty list allows no browser-based cross-origin callers.
func New(exec *executor.Executor, tenants *tenant.Registry, logger logr.Logger, allowedOrigins []string) *Server {
	return &Server{
		executor:       exec,
		tenants:        tenants,
		logger:         logger.WithName("a2a-facade"),
		allowedOrigins: allowedOrigins,
	}
}

// Handler returns the http.Handler serving the Agent Card and JSON-RPC routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /.well-known/agent-card.json", s.handleAgentCard)
	mux.HandleFunc("GET /{$}", s.handleAgentCard)
	mux.HandleFunc("POST /{$}", s.handleRPC)
	mux.HandleFunc("POST /rpc", s.handleRPC)
	return s.withCORS(mux)
}

// withCORS applies CORS headers against an explicit origin allow-list so
// Access-Control-Allow-Origin can echo a specific origin (required for
// allow-credentials) instead of "*".
func (s *Server) withCORS(next http.Handler) http.Handler {
	allowed := make(map[string]bool, len(s.allowedOrigins))
	for _, o := range s.allowedOrigins {
		allowed[o] = true
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (allowed["*"] || allowed[origin]) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+reqcontext.HeaderAuth+", "+reqcontext.HeaderTenant)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
