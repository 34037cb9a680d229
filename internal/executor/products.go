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

package executor

import (
	"context"
	"strings"

	"github.com/adcontextprotocol/gateway/internal/apierr"
	"github.com/adcontextprotocol/gateway/internal/catalog"
)

// GetProductsRequest carries the optional filters get_products accepts.
type GetProductsRequest struct {
	Brief             string
	PromotedOffering  string
	Countries         []string
	Formats           []string
	TargetingFeatures []string
}

// GetProducts runs policy on promoted_offering (when given) and returns the
// matching catalog. An empty result sets clarification_needed so the caller
// knows to ask the buyer for more detail, rather than treating zero results
// as an error.
func (e *Executor) GetProducts(ctx context.Context, req GetProductsRequest) TaskResult {
	ctx, span := e.startSpan(ctx, "get_products")
	defer span.End()

	tenant, principalID, authErr := e.requirePrincipal(ctx)
	if authErr != nil {
		return failed(authErr)
	}

	data := map[string]any{}
	if req.PromotedOffering != "" {
		result, err := e.policy.Check(req.PromotedOffering, tenant.PolicySettings)
		if err != nil {
			e.audit(ctx, tenant, principalID, "get_products", false, nil, err.Error())
			return failed(apierr.Wrap(apierr.Validation, "policy check failed", err))
		}
		data["policy_compliance"] = map[string]any{"status": string(result.Status), "details": result.Details}
	}

	products, err := e.catalogs.GetProducts(ctx, tenant.TenantID, principalID, req.Brief, catalog.Filters{
		Countries:         req.Countries,
		Formats:           req.Formats,
		TargetingFeatures: req.TargetingFeatures,
		PromotedOffering:  req.PromotedOffering,
	})
	if err != nil {
		e.audit(ctx, tenant, principalID, "get_products", false, nil, err.Error())
		return failed(apierr.Wrap(apierr.Upstream, "list products", err))
	}

	data["products"] = products
	message := ""
	if len(products) == 0 {
		data["clarification_needed"] = true
		message = "No matching products found; could you share more detail about the audience, formats, or budget you have in mind?"
	}

	e.audit(ctx, tenant, principalID, "get_products", true, map[string]any{"count": len(products)}, "")
	return completed(message, data)
}

// Signal is one discoverable targeting signal (audience, contextual, or geographic).
type Signal struct {
	SignalID    string `json:"signal_id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// staticSignals is the fixed signal catalog this gateway exposes: a small,
// static signal set rather than a live third-party data provider integration.
var staticSignals = []Signal{
	{SignalID: "sig_sports_fans", Name: "Sports Fans", Type: "audience", Description: "Users with demonstrated affinity for sports content"},
	{SignalID: "sig_auto_intenders", Name: "Auto Intenders", Type: "audience", Description: "Users showing in-market signals for vehicle purchases"},
	{SignalID: "sig_news_content", Name: "News Content", Type: "contextual", Description: "Pages classified as news/current events"},
	{SignalID: "sig_video_content", Name: "Video Content", Type: "contextual", Description: "Pages and placements featuring video content"},
	{SignalID: "sig_us_metro", Name: "US Metro Areas", Type: "geographic", Description: "Targeting by US designated market area"},
}

// GetSignals returns the signal catalog, optionally filtered by exact type
// and substring query.
func (e *Executor) GetSignals(ctx context.Context, query, sigType string) TaskResult {
	ctx, span := e.startSpan(ctx, "get_signals")
	defer span.End()

	tenant, principalID, authErr := e.requirePrincipal(ctx)
	if authErr != nil {
		return failed(authErr)
	}

	var matched []Signal
	for _, s := range staticSignals {
		if sigType != "" && s.Type != sigType {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(s.Name), strings.ToLower(query)) {
			continue
		}
		matched = append(matched, s)
	}

	e.audit(ctx, tenant, principalID, "get_signals", true, map[string]any{"count": len(matched)}, "")
	return completed("", map[string]any{"signals": matched})
}
