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

package wire

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStringify(t *testing.T) {
	assert.Equal(t, "", Stringify(nil))
	assert.Equal(t, "running shoes", Stringify("running shoes"))
	assert.JSONEq(t, `{"category":"shoes"}`, Stringify(map[string]any{"category": "shoes"}))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-03-01")
	assert.NoError(t, err)
	assert.Equal(t, 2026, d.Year())
	assert.Equal(t, time.March, d.Month())

	d, err = ParseDate("2026-03-01T00:00:00Z")
	assert.NoError(t, err)
	assert.Equal(t, 2026, d.Year())

	_, err = ParseDate("")
	assert.Error(t, err)

	_, err = ParseDate("not-a-date")
	assert.Error(t, err)
}

func TestFloat64(t *testing.T) {
	m := map[string]any{"a": float64(1.5), "b": int(2), "c": int64(3), "d": "nope"}
	assert.Equal(t, 1.5, Float64(m, "a"))
	assert.Equal(t, float64(2), Float64(m, "b"))
	assert.Equal(t, float64(3), Float64(m, "c"))
	assert.Equal(t, float64(0), Float64(m, "d"))
	assert.Equal(t, float64(0), Float64(m, "missing"))
}

func TestStringSlice(t *testing.T) {
	m := map[string]any{"xs": []any{"US", "CA", 5}}
	assert.Equal(t, []string{"US", "CA"}, StringSlice(m, "xs"))
	assert.Nil(t, StringSlice(m, "missing"))
}

func TestDateString(t *testing.T) {
	m := map[string]any{
		"from_time": time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC),
		"from_str":  "2026-06-16",
	}
	assert.Equal(t, "2026-06-15", DateString(m, "from_time"))
	assert.Equal(t, "2026-06-16", DateString(m, "from_str"))
	assert.Equal(t, "", DateString(m, "missing"))
}

func TestAsJSONMap(t *testing.T) {
	type inner struct {
		Name string `json:"name"`
	}
	assert.Nil(t, AsJSONMap(nil))

	already := map[string]any{"name": "display"}
	assert.Equal(t, already, AsJSONMap(already))

	got := AsJSONMap(inner{Name: "display"})
	assert.Equal(t, map[string]any{"name": "display"}, got)

	assert.Nil(t, AsJSONMap(func() {}))
}

func TestDecodeTargeting(t *testing.T) {
	m := map[string]any{
		"geo_country_any_of": []any{"US", "CA"},
		"key_value_pairs":    map[string]any{"section": "sports"},
		"custom":             map[string]any{"gam": map[string]any{"custom_key": "1"}},
	}
	tg := DecodeTargeting(m)
	assert.Equal(t, []string{"US", "CA"}, tg.GeoCountryAnyOf)
	assert.Equal(t, "sports", tg.KeyValuePairs["section"])
	assert.Equal(t, map[string]any{"custom_key": "1"}, tg.Custom["gam"])
}

func TestDecodeCreative(t *testing.T) {
	m := map[string]any{
		"creative_id": "cr_1",
		"name":        "Banner",
		"format":      "display_300x250",
		"width":       float64(300),
		"height":      float64(250),
		"duration":    float64(15),
		"tracking_events": map[string]any{
			"impression": []any{"https://track.example/imp"},
		},
	}
	c := DecodeCreative(m)
	assert.Equal(t, "cr_1", c.CreativeID)
	assert.Equal(t, 300, c.Width)
	assert.Equal(t, 250, c.Height)
	if assert.NotNil(t, c.DurationSeconds) {
		assert.Equal(t, 15, *c.DurationSeconds)
	}
	assert.Equal(t, []string{"https://track.example/imp"}, c.Tracking.Impression)
}
