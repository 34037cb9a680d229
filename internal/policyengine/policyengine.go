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

// Package policyengine implements the policy check (C3): deciding whether a
// promoted offering is ALLOWED, REVIEW_REQUIRED, or REJECTED against a
// tenant's configured prohibited-advertiser/category/tactic rules.
package policyengine

import (
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"

	"github.com/adcontextprotocol/gateway/internal/model"
)

// Status is the outcome of a policy check.
type Status string

const (
	Allowed        Status = "ALLOWED"
	ReviewRequired Status = "REVIEW_REQUIRED"
	Rejected       Status = "REJECTED"
)

// Result carries the check's verdict and supporting detail.
type Result struct {
	Status  Status
	Details map[string]any
}

// Engine evaluates a tenant's PolicySettings against a promoted offering.
type Engine struct{}

// New constructs an Engine. It holds no state — every check is pure given
// its inputs, so one Engine is safely shared across tenants and goroutines.
func New() *Engine { return &Engine{} }

// Check runs case-insensitive substring matching for
// prohibited_advertisers/prohibited_categories (REJECTED — fatal to the
// calling operation), and CEL boolean-expression pattern matching for
// prohibited_tactics (REVIEW_REQUIRED — forces pending_approval regardless
// of the tenant's human_review_required setting).
func (e *Engine) Check(promotedOfferingText string, settings model.PolicySettings) (Result, error) {
	lower := strings.ToLower(promotedOfferingText)

	for _, advertiser := range settings.ProhibitedAdvertisers {
		if advertiser == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(advertiser)) {
			return Result{
				Status: Rejected,
				Details: map[string]any{
					"reason":     "prohibited_advertiser",
					"advertiser": advertiser,
				},
			}, nil
		}
	}

	for _, category := range settings.ProhibitedCategories {
		if category == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(category)) {
			return Result{
				Status: Rejected,
				Details: map[string]any{
					"reason":   "prohibited_category",
					"category": category,
				},
			}, nil
		}
	}

	for _, tactic := range settings.ProhibitedTactics {
		if tactic == "" {
			continue
		}
		matched, err := e.evalTacticPattern(tactic, lower)
		if err != nil {
			return Result{}, fmt.Errorf("evaluate tactic pattern %q: %w", tactic, err)
		}
		if matched {
			return Result{
				Status: ReviewRequired,
				Details: map[string]any{
					"reason": "prohibited_tactic",
					"tactic": tactic,
				},
			}, nil
		}
	}

	return Result{Status: Allowed}, nil
}

// evalTacticPattern treats tactic as a CEL boolean expression over the
// variable `text` (the lowercased promoted offering). A tactic that is not
// valid CEL is treated as a plain substring, so tenants can configure either
// simple keywords or richer expressions (e.g. `text.contains("urgency") &&
// text.contains("limited time")`) in the same list.
func (e *Engine) evalTacticPattern(tactic, text string) (bool, error) {
	env, err := cel.NewEnv(cel.Variable("text", cel.StringType))
	if err != nil {
		return false, fmt.Errorf("build cel env: %w", err)
	}

	ast, issues := env.Compile(tactic)
	if issues != nil && issues.Err() != nil {
		// Not valid CEL — fall back to substring matching on the literal tactic text.
		return strings.Contains(text, strings.ToLower(tactic)), nil
	}

	program, err := env.Program(ast)
	if err != nil {
		return false, fmt.Errorf("build cel program: %w", err)
	}

	out, _, err := program.Eval(map[string]any{"text": text})
	if err != nil {
		return false, fmt.Errorf("eval cel program: %w", err)
	}

	matched, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("tactic expression %q did not evaluate to bool", tactic)
	}
	return matched, nil
}
