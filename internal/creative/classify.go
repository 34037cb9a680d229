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

// Package creative implements creative classification, validation, and
// placeholder matching. Classification is a pure function returning a
// tagged Kind rather than an isinstance/hasattr cascade.
package creative

import (
	"fmt"
	"strings"

	"github.com/adcontextprotocol/gateway/internal/model"
)

// Kind is the classified creative variant.
type Kind string

const (
	KindVAST          Kind = "vast"
	KindThirdPartyTag Kind = "third_party_tag"
	KindNative        Kind = "native"
	KindHTML5         Kind = "html5"
	KindHostedImage   Kind = "hosted_image"
	KindHostedVideo   Kind = "hosted_video"
)

var html5Extensions = map[string]bool{".html": true, ".htm": true, ".html5": true, ".zip": true}

var videoExtensions = map[string]bool{".mp4": true, ".mov": true, ".webm": true, ".m4v": true}

var imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}

// Classify determines a creative's Kind using first-match-wins rules:
// VAST snippet types, then third-party tag, then
// native (template variables), then media URL/data (HTML5 vs. hosted
// image/video by extension or format string), then a legacy URL-only
// fallback.
func Classify(c *model.Creative) (Kind, error) {
	switch c.SnippetType {
	case "vast_xml", "vast_url":
		return KindVAST, nil
	}
	if c.SnippetType != "" {
		return KindThirdPartyTag, nil
	}
	if len(c.TemplateVariables) > 0 {
		return KindNative, nil
	}

	media := c.MediaURL
	if media == "" {
		media = c.MediaData
	}
	if media != "" {
		ext := extOf(c.MediaURL)
		format := strings.ToLower(c.Format)
		if html5Extensions[ext] || strings.Contains(format, "html5") || strings.Contains(format, "rich_media") {
			return KindHTML5, nil
		}
		switch {
		case videoExtensions[ext] || strings.Contains(format, "video"):
			if c.DurationSeconds == nil {
				return "", fmt.Errorf("hosted video creative %q requires a duration", c.CreativeID)
			}
			return KindHostedVideo, nil
		case imageExtensions[ext] || strings.Contains(format, "image") || strings.Contains(format, "display"):
			return KindHostedImage, nil
		default:
			// Unknown extension/format on a media creative: treat as image,
			// the more common case, per the source's mime-type fallback.
			return KindHostedImage, nil
		}
	}

	// Legacy fallback: URL-only classification by content sniffing.
	snippet := strings.TrimSpace(c.Snippet)
	lower := strings.ToLower(snippet)
	switch {
	case strings.HasPrefix(lower, "<!doctype html") || strings.HasPrefix(lower, "<html"):
		return KindHTML5, nil
	case strings.Contains(lower, "<vast") || strings.HasSuffix(lower, ".xml"):
		return KindVAST, nil
	}

	return "", fmt.Errorf("creative %q does not match any known classification", c.CreativeID)
}

func extOf(url string) string {
	idx := strings.LastIndex(url, ".")
	if idx < 0 {
		return ""
	}
	ext := url[idx:]
	if q := strings.IndexAny(ext, "?#"); q >= 0 {
		ext = ext[:q]
	}
	return strings.ToLower(ext)
}
