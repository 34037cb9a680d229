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

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/adcontextprotocol/gateway/internal/model"
)

// humanTaskEvents are routed to a tenant's HITL webhook (if configured) in
// addition to its general Slack webhook, since operators watching for
// approvals may subscribe to a narrower channel than general Slack noise.
var humanTaskEvents = map[string]bool{
	"human_task_created": true,
	"media_buy_created":  true,
	"creative_pending":   true,
}

// Notify posts event to every webhook URL the tenant has configured for it.
// Each delivery is independent: a failure on one URL never blocks another,
// and no failure is ever returned to the caller (step 7 of the calling
// operation's contract).
func (n *Notifier) Notify(ctx context.Context, tenant *model.Tenant, event string, details map[string]any) {
	payload := buildPayload(event, details, time.Now())

	if tenant.SlackWebhookURL != "" {
		n.deliver(ctx, tenant.SlackWebhookURL, payload)
	}
	if humanTaskEvents[event] && tenant.HITLWebhookURL != "" {
		n.deliver(ctx, tenant.HITLWebhookURL, payload)
	}
}

// NotifyAudit posts an audit-trail event to the tenant's dedicated audit
// Slack channel, when one is configured, independent of Notify's general
// event routing.
func (n *Notifier) NotifyAudit(ctx context.Context, tenant *model.Tenant, event string, details map[string]any) {
	if tenant.SlackAuditWebhookURL == "" {
		return
	}
	n.deliver(ctx, tenant.SlackAuditWebhookURL, buildPayload(event, details, time.Now()))
}

func (n *Notifier) deliver(ctx context.Context, url string, payload slackPayload) {
	body, err := json.Marshal(payload)
	if err != nil {
		n.logger.Error(err, "marshal webhook payload failed", "url", url)
		return
	}

	cb := n.breakerFor(url)
	_, err = cb.Execute(func() (struct{}, error) {
		return struct{}{}, n.post(ctx, url, body)
	})
	if err != nil {
		n.logger.Error(err, "webhook delivery failed", "url", url)
	}
}

func (n *Notifier) post(ctx context.Context, url string, body []byte) error {
	reqCtx, cancel := context.WithTimeout(ctx, webhookTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("POST %s returned status %d", url, resp.StatusCode)
	}
	return nil
}
