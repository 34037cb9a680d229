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
	"testing"

	"github.com/adcontextprotocol/gateway/internal/model"
)

func intPtr(v int) *int { return &v }

func TestClassifyVAST(t *testing.T) {
	c := &model.Creative{CreativeID: "cr_1", SnippetType: "vast_xml", Snippet: "<VAST/>"}
	kind, err := Classify(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kind != KindVAST {
		t.Fatalf("expected KindVAST, got %s", kind)
	}
}

func TestClassifyThirdPartyTag(t *testing.T) {
	c := &model.Creative{CreativeID: "cr_2", SnippetType: "javascript", Snippet: "<script></script>"}
	kind, err := Classify(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kind != KindThirdPartyTag {
		t.Fatalf("expected KindThirdPartyTag, got %s", kind)
	}
}

func TestClassifyNative(t *testing.T) {
	c := &model.Creative{CreativeID: "cr_3", TemplateVariables: map[string]any{"headline": "Buy now"}}
	kind, err := Classify(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kind != KindNative {
		t.Fatalf("expected KindNative, got %s", kind)
	}
}

func TestClassifyHTML5ByExtension(t *testing.T) {
	c := &model.Creative{CreativeID: "cr_4", MediaURL: "https://cdn.example.com/ad.zip"}
	kind, err := Classify(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kind != KindHTML5 {
		t.Fatalf("expected KindHTML5, got %s", kind)
	}
}

func TestClassifyHostedVideoRequiresDuration(t *testing.T) {
	c := &model.Creative{CreativeID: "cr_5", MediaURL: "https://cdn.example.com/ad.mp4"}
	if _, err := Classify(c); err == nil {
		t.Fatal("expected error for video creative missing duration")
	}

	c.DurationSeconds = intPtr(15)
	kind, err := Classify(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kind != KindHostedVideo {
		t.Fatalf("expected KindHostedVideo, got %s", kind)
	}
}

func TestClassifyHostedImage(t *testing.T) {
	c := &model.Creative{CreativeID: "cr_6", MediaURL: "https://cdn.example.com/ad.png"}
	kind, err := Classify(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kind != KindHostedImage {
		t.Fatalf("expected KindHostedImage, got %s", kind)
	}
}

func TestClassifyUnclassifiable(t *testing.T) {
	c := &model.Creative{CreativeID: "cr_7"}
	if _, err := Classify(c); err == nil {
		t.Fatal("expected error for creative with no classifiable fields")
	}
}

type fakeLookup struct {
	byPackage map[string][]Placeholder
	byProduct map[string][]Placeholder
}

func (f fakeLookup) PlaceholdersForPackage(id string) ([]Placeholder, bool) {
	phs, ok := f.byPackage[id]
	return phs, ok
}

func (f fakeLookup) PlaceholdersForProduct(id string) ([]Placeholder, bool) {
	phs, ok := f.byProduct[id]
	return phs, ok
}

func TestValidatePlaceholderDirectMatch(t *testing.T) {
	lookup := fakeLookup{byPackage: map[string][]Placeholder{
		"pkg_1": {{Width: 300, Height: 250}},
	}}
	c := &model.Creative{CreativeID: "cr_8", MediaURL: "https://cdn.example.com/ad.png", Width: 300, Height: 250, ClickURL: "https://example.com", PackageAssignments: []string{"pkg_1"}}
	if reason := Validate(c, KindHostedImage, lookup); reason != "" {
		t.Fatalf("expected valid creative, got reason: %s", reason)
	}
}

func TestValidatePlaceholderWildcard(t *testing.T) {
	lookup := fakeLookup{byPackage: map[string][]Placeholder{
		"pkg_1": {{Width: 1, Height: 1}},
	}}
	c := &model.Creative{CreativeID: "cr_9", TemplateVariables: map[string]any{"headline": "x"}, Width: 320, Height: 50, PackageAssignments: []string{"pkg_1"}}
	if reason := Validate(c, KindNative, lookup); reason != "" {
		t.Fatalf("expected wildcard placeholder to match, got reason: %s", reason)
	}
}

func TestValidatePlaceholderProductFallback(t *testing.T) {
	lookup := fakeLookup{byProduct: map[string][]Placeholder{
		"prod_abc123": {{Width: 728, Height: 90}},
	}}
	c := &model.Creative{CreativeID: "cr_10", MediaURL: "https://cdn.example.com/ad.png", Width: 728, Height: 90, ClickURL: "https://example.com", PackageAssignments: []string{"pkg_prod_abc123_leaderboard"}}
	if reason := Validate(c, KindHostedImage, lookup); reason != "" {
		t.Fatalf("expected product-fallback placeholder to match, got reason: %s", reason)
	}
}

func TestValidatePlaceholderNoMatch(t *testing.T) {
	lookup := fakeLookup{byPackage: map[string][]Placeholder{
		"pkg_1": {{Width: 300, Height: 250}},
	}}
	c := &model.Creative{CreativeID: "cr_11", MediaURL: "https://cdn.example.com/ad.png", Width: 320, Height: 50, ClickURL: "https://example.com", PackageAssignments: []string{"pkg_1"}}
	if reason := Validate(c, KindHostedImage, lookup); reason == "" {
		t.Fatal("expected placeholder mismatch to fail validation")
	}
}

func TestValidateHostedImageRequiresClickURL(t *testing.T) {
	lookup := fakeLookup{byPackage: map[string][]Placeholder{"pkg_1": {{Width: 1, Height: 1}}}}
	c := &model.Creative{CreativeID: "cr_12", MediaURL: "https://cdn.example.com/ad.png", Width: 300, Height: 250, PackageAssignments: []string{"pkg_1"}}
	if reason := Validate(c, KindHostedImage, lookup); reason == "" {
		t.Fatal("expected missing click_url to fail validation")
	}
}

func TestValidateBatchContinuesOnFailure(t *testing.T) {
	lookup := fakeLookup{byPackage: map[string][]Placeholder{"pkg_1": {{Width: 1, Height: 1}}}}
	creatives := []*model.Creative{
		{CreativeID: "cr_ok", MediaURL: "https://cdn.example.com/ad.png", Width: 300, Height: 250, ClickURL: "https://example.com", PackageAssignments: []string{"pkg_1"}},
		{CreativeID: "cr_bad"},
		{CreativeID: "cr_ok2", SnippetType: "vast_xml", Snippet: "<VAST/>", Width: 640, Height: 360},
	}
	outcomes := ValidateBatch(creatives, lookup)
	if len(outcomes) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(outcomes))
	}
	if outcomes[0].Failed {
		t.Fatalf("expected cr_ok to pass, got reason: %s", outcomes[0].Reason)
	}
	if !outcomes[1].Failed {
		t.Fatal("expected cr_bad to fail")
	}
	if outcomes[2].Failed {
		t.Fatalf("expected cr_ok2 to pass, got reason: %s", outcomes[2].Reason)
	}
}
