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

package gam

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/adcontextprotocol/gateway/internal/creative"
	"github.com/adcontextprotocol/gateway/internal/model"
)

// CreativesManager submits classified/validated creatives to GAM and
// associates them with their assigned line items, grounded on
// GAMCreativesManager.add_creative_assets / _associate_creative_with_line_items.
type CreativesManager struct {
	client       *Client
	advertiserID string
	dryRun       bool
	logger       logr.Logger
	syntheticSeq int
}

// NewCreativesManager constructs a CreativesManager for one advertiser.
func NewCreativesManager(client *Client, advertiserID string, dryRun bool, logger logr.Logger) *CreativesManager {
	return &CreativesManager{client: client, advertiserID: advertiserID, dryRun: dryRun, logger: logger.WithName("gam-creatives")}
}

type createCreativeRequest struct {
	Kind         string         `json:"kind"`
	Name         string         `json:"name"`
	AdvertiserID string         `json:"advertiserId"`
	Fields       map[string]any `json:"fields"`
}

type createCreativeResponse struct {
	ID string `json:"id"`
}

// SubmitBatch validates, builds, and submits every creative independently;
// a failure on one never blocks the rest. Successfully submitted creatives
// are associated with the line item that lineItemsByPackage maps each
// assigned package to; productIDByPackage is not consulted.
func (m *CreativesManager) SubmitBatch(ctx context.Context, lineItemsByPackage map[string]string, productIDByPackage map[string]string, creatives []*model.Creative, lookup creative.PlaceholderLookup) []BatchResult {
	outcomes := creative.ValidateBatch(creatives, lookup)
	results := make([]BatchResult, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Failed {
			results = append(results, BatchResult{CreativeID: o.CreativeID, Failed: true, Reason: o.Reason})
			continue
		}
		adapterID, err := m.submitOne(ctx, o)
		if err != nil {
			results = append(results, BatchResult{CreativeID: o.CreativeID, Failed: true, Reason: err.Error()})
			continue
		}
		associated := m.associate(ctx, adapterID, findCreativePackages(creatives, o.CreativeID), lineItemsByPackage)
		results = append(results, BatchResult{CreativeID: o.CreativeID, AdapterCreativeID: adapterID, Associated: associated})
	}
	return results
}

// BatchResult is one creative's outcome from SubmitBatch.
type BatchResult struct {
	CreativeID        string
	AdapterCreativeID string
	Associated        []string
	Failed            bool
	Reason            string
}

func findCreativePackages(creatives []*model.Creative, creativeID string) []string {
	for _, c := range creatives {
		if c.CreativeID == creativeID {
			return c.PackageAssignments
		}
	}
	return nil
}

func (m *CreativesManager) submitOne(ctx context.Context, o creative.Outcome) (string, error) {
	req := createCreativeRequest{
		Kind:         string(o.Kind),
		Name:         o.CreativeID,
		AdvertiserID: m.advertiserID,
		Fields:       o.Payload.Fields,
	}
	if m.dryRun {
		m.syntheticSeq++
		m.logger.Info("dry run: would create GAM creative", "creative_id", o.CreativeID, "kind", o.Kind)
		return fmt.Sprintf("dry_run_creative_%d", m.syntheticSeq), nil
	}
	var resp createCreativeResponse
	if err := m.client.Call(ctx, "creatives", "create", req, &resp); err != nil {
		return "", fmt.Errorf("create creative %s: %w", o.CreativeID, err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("create creative %s: no id returned", o.CreativeID)
	}
	return resp.ID, nil
}

// associate creates a Line Item Creative Association for each package the
// creative is assigned to, skipping (and logging) packages with no known
// upstream line item.
func (m *CreativesManager) associate(ctx context.Context, adapterCreativeID string, packageIDs []string, lineItemsByPackage map[string]string) []string {
	var associated []string
	for _, pkgID := range packageIDs {
		lineItemID, ok := lineItemsByPackage[pkgID]
		if !ok {
			m.logger.Info("no known line item for package, skipping association", "package_id", pkgID)
			continue
		}
		if m.dryRun {
			associated = append(associated, pkgID)
			continue
		}
		req := map[string]string{"creativeId": adapterCreativeID, "lineItemId": lineItemID}
		if err := m.client.Call(ctx, "lica", "create", req, nil); err != nil {
			m.logger.Info("creative-line item association failed", "package_id", pkgID, "error", err.Error())
			continue
		}
		associated = append(associated, pkgID)
	}
	return associated
}
