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
	"fmt"
	"sort"
	"strings"
	"time"
)

// slackPayload is the Slack incoming-webhook envelope: text is the
// notification-fallback string, blocks carries the rich Block Kit layout.
type slackPayload struct {
	Text   string  `json:"text"`
	Blocks []block `json:"blocks,omitempty"`
}

type block struct {
	Type     string    `json:"type"`
	Text     *textObj  `json:"text,omitempty"`
	Fields   []textObj `json:"fields,omitempty"`
	Elements []element `json:"elements,omitempty"`
}

type textObj struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type element struct {
	Type  string   `json:"type"`
	Text  *textObj `json:"text,omitempty"`
	URL   string   `json:"url,omitempty"`
	Style string   `json:"style,omitempty"`
}

// highlightFields mirrors the budget/date/targeting keys the original
// notifier calls out explicitly rather than dumping every detail key.
var highlightFields = []string{
	"budget", "total_budget", "requested_budget", "current_spend",
	"flight_start_date", "flight_end_date", "targeting_overlay",
}

// buildPayload renders one event+details pair into a Slack Block Kit
// message: a header naming the event, a two-column field section for the
// details map, and a context footer with the firing time.
func buildPayload(event string, details map[string]any, firedAt time.Time) slackPayload {
	title := titleCase(strings.ReplaceAll(strings.ReplaceAll(event, "_", " "), "/", " "))

	blocks := []block{
		{Type: "header", Text: &textObj{Type: "plain_text", Text: title}},
	}

	if fields := detailFields(details); len(fields) > 0 {
		blocks = append(blocks, block{Type: "section", Fields: fields})
	}

	blocks = append(blocks, block{
		Type: "context",
		Elements: []element{{
			Type: "mrkdwn",
			Text: &textObj{Type: "mrkdwn", Text: fmt.Sprintf("Fired at %s", firedAt.UTC().Format("2006-01-02 15:04:05 UTC"))},
		}},
	})

	return slackPayload{
		Text:   fmt.Sprintf("%s: %s", title, summarize(details)),
		Blocks: blocks,
	}
}

func detailFields(details map[string]any) []textObj {
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]textObj, 0, len(keys))
	for _, k := range keys {
		if !isHighlighted(k) {
			continue
		}
		label := titleCase(strings.ReplaceAll(k, "_", " "))
		fields = append(fields, textObj{Type: "mrkdwn", Text: fmt.Sprintf("*%s:*\n%v", label, details[k])})
	}
	return fields
}

func isHighlighted(key string) bool {
	for _, h := range highlightFields {
		if h == key {
			return true
		}
	}
	return false
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func summarize(details map[string]any) string {
	if id, ok := details["media_buy_id"]; ok {
		return fmt.Sprintf("media buy %v", id)
	}
	if id, ok := details["task_id"]; ok {
		return fmt.Sprintf("task %v", id)
	}
	if id, ok := details["creative_id"]; ok {
		return fmt.Sprintf("creative %v", id)
	}
	return "see details"
}
