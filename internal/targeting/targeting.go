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

// Package targeting defines the adapter-agnostic targeting translation
// contract (C6). Concrete translators (package gam, and any future adapter)
// turn a normalized model.Targeting into their own wire shape, failing
// loudly — never silently dropping a dimension they cannot represent.
package targeting

import "github.com/adcontextprotocol/gateway/internal/model"

// Translator turns a normalized targeting overlay into an adapter-specific
// representation.
type Translator interface {
	// Validate reports unsupported dimensions without raising; used for
	// advisory capability checks (get_targeting_capabilities).
	Validate(t model.Targeting) []string

	// Build translates t into the adapter's native targeting shape. It
	// returns an error — never a partial, silently-truncated result — for
	// any dimension the adapter cannot represent.
	Build(t model.Targeting) (map[string]any, error)
}
