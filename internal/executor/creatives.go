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
	"fmt"
	"strings"

	"github.com/adcontextprotocol/gateway/internal/apierr"
	"github.com/adcontextprotocol/gateway/internal/creative"
	"github.com/adcontextprotocol/gateway/internal/media"
	"github.com/adcontextprotocol/gateway/internal/model"
	"github.com/adcontextprotocol/gateway/internal/storage"
)

// SubmitCreatives classifies and validates each creative, auto-approves it
// when its format is in the tenant's auto_approve_formats list, and
// persists all of them in one batch. Only approved creatives are later
// uploaded to the adapter — this operation itself never calls upstream.
func (e *Executor) SubmitCreatives(ctx context.Context, mediaBuyID string, creatives []*model.Creative) TaskResult {
	ctx, span := e.startSpan(ctx, "submit_creatives")
	defer span.End()

	tenant, principalID, authErr := e.requirePrincipal(ctx)
	if authErr != nil {
		return failed(authErr)
	}
	mediaBuy, err := e.verifyOwnership(ctx, tenant.TenantID, principalID, mediaBuyID)
	if err != nil {
		return failed(err)
	}

	packages, storeErr := e.store.MediaBuys.ListPackages(ctx, tenant.TenantID, mediaBuyID)
	if storeErr != nil {
		return failed(apierr.Wrap(apierr.Upstream, "list packages", storeErr))
	}
	products := make(map[string]*model.Product, len(packages))
	for _, pkg := range packages {
		product, err := e.store.Products.Get(ctx, tenant.TenantID, pkg.ProductID)
		if err != nil {
			continue
		}
		products[pkg.ProductID] = product
	}
	lookup := newPlaceholderLookup(packages, products)

	autoApprove := make(map[string]bool, len(tenant.AutoApproveFormats))
	for _, f := range tenant.AutoApproveFormats {
		autoApprove[f] = true
	}

	creativeIDs := make([]string, 0, len(creatives))
	for _, c := range creatives {
		c.TenantID = tenant.TenantID
		c.PrincipalID = principalID

		if resolveErr := e.resolveHostedMediaURL(ctx, c); resolveErr != "" {
			c.Status = model.CreativeFailed
			c.ReviewFeedback = resolveErr
			creativeIDs = append(creativeIDs, c.CreativeID)
			continue
		}

		kind, classifyErr := creative.Classify(c)
		if classifyErr != nil {
			c.Status = model.CreativeFailed
			c.ReviewFeedback = classifyErr.Error()
			creativeIDs = append(creativeIDs, c.CreativeID)
			continue
		}
		if reason := creative.Validate(c, kind, lookup); reason != "" {
			c.Status = model.CreativeFailed
			c.ReviewFeedback = reason
			creativeIDs = append(creativeIDs, c.CreativeID)
			continue
		}
		if autoApprove[c.Format] {
			c.Status = model.CreativeApproved
		} else {
			c.Status = model.CreativePendingReview
		}
		creativeIDs = append(creativeIDs, c.CreativeID)
	}

	if err := e.store.Creatives.UpsertBatch(ctx, creatives); err != nil {
		e.audit(ctx, tenant, principalID, "submit_creatives", false, nil, err.Error())
		return failed(apierr.Wrap(apierr.Upstream, "persist creatives", err))
	}

	if needsReview(creatives) {
		task := &model.Task{
			TaskID:      "task_" + mediaBuyID + "_creatives",
			TenantID:    tenant.TenantID,
			MediaBuyID:  mediaBuyID,
			TaskType:    model.TaskApproveCreative,
			Status:      model.TaskPending,
			CreatedAt:   e.now(),
			CreatedBy:   principalID,
			Description: "One or more submitted creatives require manual review",
		}
		if err := e.store.Tasks.Create(ctx, task); err != nil {
			e.logger.Error(err, "failed to create approve_creative task", "media_buy_id", mediaBuyID)
		}
	}

	_ = mediaBuy // ownership already verified; media buy itself isn't mutated here
	e.audit(ctx, tenant, principalID, "submit_creatives", true, map[string]any{"count": len(creatives)}, "")
	return completed("", map[string]any{"creative_ids": creativeIDs})
}

// resolveHostedMediaURL swaps a hosted-asset creative's adcp:// storage
// reference (obtained from get_creative_upload_url + confirm_creative_upload)
// for the http(s) URL the ad server's adapter and the classifier can both
// consume. Creatives whose media_url isn't a storage reference pass through
// unchanged. Returns a non-empty review_feedback string on failure.
func (e *Executor) resolveHostedMediaURL(ctx context.Context, c *model.Creative) string {
	if c.MediaURL == "" || !strings.HasPrefix(c.MediaURL, media.StorageRefPrefix) {
		return ""
	}
	if e.media == nil {
		return "media storage is not configured"
	}
	url, err := e.media.GetDownloadURL(ctx, c.MediaURL)
	if err != nil {
		return fmt.Sprintf("resolve media storage reference: %v", err)
	}
	c.MediaURL = url
	return ""
}

func needsReview(creatives []*model.Creative) bool {
	for _, c := range creatives {
		if c.Status == model.CreativePendingReview {
			return true
		}
	}
	return false
}

// GetCreativeStatus returns a creative's persisted status/feedback.
func (e *Executor) GetCreativeStatus(ctx context.Context, creativeID string) TaskResult {
	ctx, span := e.startSpan(ctx, "get_creative_status")
	defer span.End()

	tenant, principalID, authErr := e.requirePrincipal(ctx)
	if authErr != nil {
		return failed(authErr)
	}
	c, err := e.store.Creatives.Get(ctx, tenant.TenantID, creativeID)
	if err != nil {
		if err == storage.ErrNotFound {
			return failed(apierr.New(apierr.NotFound, fmt.Sprintf("creative %q not found", creativeID)))
		}
		return failed(apierr.Wrap(apierr.Upstream, "load creative", err))
	}
	if c.PrincipalID != principalID {
		return failed(apierr.New(apierr.Unauthorized, "creative belongs to a different principal"))
	}
	return completed("", map[string]any{
		"status":          string(c.Status),
		"review_feedback": c.ReviewFeedback,
	})
}
