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

package creative

import (
	"fmt"

	"github.com/adcontextprotocol/gateway/internal/model"
)

// Payload is the adapter-agnostic shape submitted to an upstream sales
// adapter (adapter.Adapter.SubmitCreatives). Kind tells the adapter which
// constructor produced it, so it can pick the matching wire representation
// without re-deriving the classification.
type Payload struct {
	Kind   Kind
	Fields map[string]any
}

// Build classifies c and produces its upstream Payload, one constructor per
// Kind rather than a single function branching on ad-hoc type checks.
func Build(c *model.Creative) (Payload, error) {
	kind, err := Classify(c)
	if err != nil {
		return Payload{}, err
	}
	switch kind {
	case KindVAST:
		return buildVAST(c), nil
	case KindThirdPartyTag:
		return buildThirdPartyTag(c), nil
	case KindNative:
		return buildNative(c), nil
	case KindHTML5:
		return buildHTML5(c), nil
	case KindHostedImage:
		return buildHostedImage(c), nil
	case KindHostedVideo:
		return buildHostedVideo(c), nil
	default:
		return Payload{}, fmt.Errorf("creative %q: no builder for kind %q", c.CreativeID, kind)
	}
}

func buildVAST(c *model.Creative) Payload {
	fields := map[string]any{
		"snippet_type": c.SnippetType,
		"snippet":      c.Snippet,
		"tracking":     c.Tracking,
	}
	return Payload{Kind: KindVAST, Fields: fields}
}

func buildThirdPartyTag(c *model.Creative) Payload {
	return Payload{Kind: KindThirdPartyTag, Fields: map[string]any{
		"snippet_type": c.SnippetType,
		"snippet":      c.Snippet,
	}}
}

func buildNative(c *model.Creative) Payload {
	return Payload{Kind: KindNative, Fields: map[string]any{
		"template_variables": c.TemplateVariables,
		"click_url":          c.ClickURL,
	}}
}

func buildHTML5(c *model.Creative) Payload {
	return Payload{Kind: KindHTML5, Fields: map[string]any{
		"media_url": c.MediaURL,
		"width":     c.Width,
		"height":    c.Height,
	}}
}

func buildHostedImage(c *model.Creative) Payload {
	return Payload{Kind: KindHostedImage, Fields: map[string]any{
		"media_url": c.MediaURL,
		"width":     c.Width,
		"height":    c.Height,
		"click_url": c.ClickURL,
	}}
}

func buildHostedVideo(c *model.Creative) Payload {
	fields := map[string]any{
		"media_url": c.MediaURL,
		"width":     c.Width,
		"height":    c.Height,
	}
	if c.DurationSeconds != nil {
		fields["duration_ms"] = *c.DurationSeconds * 1000
	}
	return Payload{Kind: KindHostedVideo, Fields: fields}
}

// AssociationName builds the line item name used to match a
// creative-to-package association after upstream creation: the base line
// item name followed by " - <productID>".
func AssociationName(baseLineItemName, productID string) string {
	return fmt.Sprintf("%s - %s", baseLineItemName, productID)
}
