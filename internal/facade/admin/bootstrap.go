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

package admin

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"

	"github.com/adcontextprotocol/gateway/internal/httputil"
)

// generateToken returns a URL-safe random token of n random bytes, "sk-"
// prefixed so it reads the same as the rest of this stack's API keys.
func generateToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "sk-" + base64.RawURLEncoding.EncodeToString(b), nil
}

// handleInitAPIKey mints the superadmin key exactly once. A repeat call
// never returns the key again — the stored value can only be rotated by an
// operator replacing the admin_config row directly.
func (s *Server) handleInitAPIKey(w http.ResponseWriter, r *http.Request) {
	key, err := generateToken(32)
	if err != nil {
		http.Error(w, "failed to generate API key", http.StatusInternalServerError)
		return
	}

	created, err := s.store.AdminConfig.CreateIfAbsent(r.Context(), adminConfigKey, key)
	if err != nil {
		s.logger.Error(err, "init superadmin API key")
		http.Error(w, "failed to initialize API key", http.StatusInternalServerError)
		return
	}
	if !created {
		http.Error(w, "superadmin API key already initialized", http.StatusConflict)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"api_key": key,
		"warning": "store this key now; it cannot be retrieved again",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	_ = httputil.WriteJSON(w, status, v)
}
