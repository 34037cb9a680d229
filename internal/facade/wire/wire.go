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

// Package wire holds request/response shaping shared by both protocol
// facades: generic-map field extraction (A2A's JSON-RPC params), targeting
// overlay decoding, and date parsing. Neither facade owns the other's
// parsing logic, so both call into this package instead of drifting apart.
package wire

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/adcontextprotocol/gateway/internal/model"
)

// Stringify normalizes a promoted_offering value that may arrive as a plain
// string or as a structured object into the free-text the policy engine
// checks.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(b)
	}
}

// ParseDate accepts a bare date ("2006-01-02") or a full RFC3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// DecodeTargeting builds a model.Targeting from a generic JSON object
// (already decoded into map[string]any by either facade).
func DecodeTargeting(m map[string]any) model.Targeting {
	var t model.Targeting
	t.GeoCountryAnyOf = StringSlice(m, "geo_country_any_of")
	t.GeoCountryNoneOf = StringSlice(m, "geo_country_none_of")
	t.GeoRegionAnyOf = StringSlice(m, "geo_region_any_of")
	t.GeoRegionNoneOf = StringSlice(m, "geo_region_none_of")
	t.GeoMetroAnyOf = StringSlice(m, "geo_metro_any_of")
	t.GeoMetroNoneOf = StringSlice(m, "geo_metro_none_of")
	t.GeoCityAnyOf = StringSlice(m, "geo_city_any_of")
	t.GeoCityNoneOf = StringSlice(m, "geo_city_none_of")
	t.GeoZipAnyOf = StringSlice(m, "geo_zip_any_of")
	t.GeoZipNoneOf = StringSlice(m, "geo_zip_none_of")
	t.DeviceTypeAnyOf = StringSlice(m, "device_type_any_of")
	t.OSAnyOf = StringSlice(m, "os_any_of")
	t.BrowserAnyOf = StringSlice(m, "browser_any_of")
	t.ContentCatAnyOf = StringSlice(m, "content_cat_any_of")
	t.KeywordsAnyOf = StringSlice(m, "keywords_any_of")
	t.AudiencesAnyOf = StringSlice(m, "audiences_any_of")
	t.Signals = StringSlice(m, "signals")
	t.MediaTypeAnyOf = StringSlice(m, "media_type_any_of")
	if kv, ok := m["key_value_pairs"].(map[string]any); ok {
		t.KeyValuePairs = make(map[string]string, len(kv))
		for k, v := range kv {
			if s, ok := v.(string); ok {
				t.KeyValuePairs[k] = s
			}
		}
	}
	if custom, ok := m["custom"].(map[string]any); ok {
		t.Custom = make(map[string]map[string]any, len(custom))
		for adapterName, v := range custom {
			if inner, ok := v.(map[string]any); ok {
				t.Custom[adapterName] = inner
			}
		}
	}
	return t
}

// String extracts a string field, defaulting to "".
func String(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

// Float64 extracts a numeric field, defaulting to 0. Accepts the concrete
// numeric types TaskResult.Data actually carries (decoded JSON params give
// float64; executor-internal results may carry int/int64 directly).
func Float64(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

// Int extracts an integer field, defaulting to def when absent or not numeric.
func Int(m map[string]any, key string, def int) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return def
}

// Bool extracts a boolean field, defaulting to false when absent.
func Bool(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}

// StringSlice extracts a []string field from a []any of strings.
func StringSlice(m map[string]any, key string) []string {
	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// DateString extracts a date field that may already be a time.Time (as
// executor TaskResult.Data often carries persisted model fields directly)
// or a pre-formatted string.
func DateString(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case time.Time:
		return v.Format("2006-01-02")
	case string:
		return v
	}
	return ""
}

// AsJSONMap round-trips an arbitrary tagged value (including unexported
// executor-internal types TaskResult.Data may carry directly) through JSON
// into a generic map, for facades that can't name the concrete type.
func AsJSONMap(v any) map[string]any {
	if v == nil {
		return nil
	}
	if m, ok := v.(map[string]any); ok {
		return m
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil
	}
	return m
}

// Map extracts a nested object field.
func Map(m map[string]any, key string) map[string]any {
	if v, ok := m[key].(map[string]any); ok {
		return v
	}
	return nil
}

// DecodeCreative builds a model.Creative from one element of submit_creatives'
// creatives array, decoded as a generic JSON object.
func DecodeCreative(m map[string]any) *model.Creative {
	c := &model.Creative{
		CreativeID:         String(m, "creative_id"),
		Name:               String(m, "name"),
		Format:             String(m, "format"),
		SnippetType:        String(m, "snippet_type"),
		Snippet:            String(m, "snippet"),
		MediaURL:           String(m, "media_url"),
		MediaData:          String(m, "media_data"),
		ClickURL:           String(m, "click_url"),
		PackageAssignments: StringSlice(m, "package_assignments"),
		TemplateVariables:  Map(m, "template_variables"),
		Width:              Int(m, "width", 0),
		Height:             Int(m, "height", 0),
	}
	if d, ok := m["duration"].(float64); ok {
		secs := int(d)
		c.DurationSeconds = &secs
	}
	if tracking := Map(m, "tracking_events"); tracking != nil {
		c.Tracking = model.TrackingEvents{
			Impression: StringSlice(tracking, "impression"),
			Click:      StringSlice(tracking, "click"),
		}
	}
	return c
}
