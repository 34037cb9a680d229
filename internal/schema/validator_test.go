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

package schema

import (
	"strings"
	"testing"

	"github.com/go-logr/logr"
)

func TestTargetingCustomValidator_Valid(t *testing.T) {
	v := NewTargetingCustomValidator(logr.Discard())

	got := v.Validate(map[string]any{
		"section": "sports",
		"age_min": float64(18),
		"vip":     true,
		"segment": []any{"a", "b"},
	})
	if got != nil {
		t.Fatalf("expected no violations, got %v", got)
	}
}

func TestTargetingCustomValidator_EmptyIsValid(t *testing.T) {
	v := NewTargetingCustomValidator(logr.Discard())
	if got := v.Validate(nil); got != nil {
		t.Fatalf("expected nil map to be valid, got %v", got)
	}
	if got := v.Validate(map[string]any{}); got != nil {
		t.Fatalf("expected empty map to be valid, got %v", got)
	}
}

func TestTargetingCustomValidator_RejectsNestedObject(t *testing.T) {
	v := NewTargetingCustomValidator(logr.Discard())

	got := v.Validate(map[string]any{
		"section": map[string]any{"nested": "not allowed"},
	})
	if len(got) == 0 {
		t.Fatal("expected a violation for a nested object value")
	}
}

func TestTargetingCustomValidator_RejectsBadKeyName(t *testing.T) {
	v := NewTargetingCustomValidator(logr.Discard())

	got := v.Validate(map[string]any{
		"bad key!": "value",
	})
	if len(got) == 0 {
		t.Fatal("expected a violation for a key containing a space/punctuation")
	}
}

func TestCreativeTemplateValidator_Valid(t *testing.T) {
	v := NewCreativeTemplateValidator(logr.Discard())

	got := v.Validate(map[string]any{
		"headline":       "Big Summer Sale",
		"body":           "Everything must go.",
		"cta_text":       "Shop Now",
		"main_image_url": "https://cdn.example.com/img.png",
		"rating":         float64(4),
	})
	if got != nil {
		t.Fatalf("expected no violations, got %v", got)
	}
}

func TestCreativeTemplateValidator_RejectsOutOfRangeRating(t *testing.T) {
	v := NewCreativeTemplateValidator(logr.Discard())

	got := v.Validate(map[string]any{"rating": float64(9)})
	if len(got) == 0 {
		t.Fatal("expected a violation for rating above the schema maximum")
	}
}

func TestCreativeTemplateValidator_RejectsNonStringExtension(t *testing.T) {
	v := NewCreativeTemplateValidator(logr.Discard())

	got := v.Validate(map[string]any{"custom_slot": float64(42)})
	if len(got) == 0 {
		t.Fatal("expected a violation for a non-string additional property")
	}
}

func TestValidateAsString_JoinsViolationsAndIsEmptyWhenValid(t *testing.T) {
	v := NewCreativeTemplateValidator(logr.Discard())

	if reason := v.ValidateAsString(map[string]any{"headline": "ok"}); reason != "" {
		t.Fatalf("expected empty reason for valid data, got %q", reason)
	}

	reason := v.ValidateAsString(map[string]any{"rating": float64(-1)})
	if reason == "" {
		t.Fatal("expected a non-empty reason for invalid data")
	}
	if !strings.Contains(reason, "creative_template_variables") {
		t.Fatalf("expected reason to name the schema, got %q", reason)
	}
}
