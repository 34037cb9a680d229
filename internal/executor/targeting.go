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

import "context"

// overlayDimensions lists the AdCP targeting keys one channel supports.
// City and zip are declared here even though the GAM translator fails
// loudly when they're actually used (internal/targeting/gam.Manager) —
// buyers need to see the key exists before they learn it's unsupported
// by a given adapter.
type overlayDimensions struct {
	Dimensions []string `json:"overlay_dimensions"`
}

// channelCapabilities is the static channel -> overlay_dimensions map this
// gateway advertises. Every channel shares the same targeting vocabulary
// today; adapters differ only in which dimensions they honor, which is
// reported separately via a Translator.Validate call, not duplicated here.
var channelCapabilities = map[string]overlayDimensions{
	"display": {Dimensions: []string{
		"geo_country_any_of", "geo_country_none_of",
		"geo_region_any_of", "geo_region_none_of",
		"geo_metro_any_of", "geo_metro_none_of",
		"geo_city_any_of", "geo_city_none_of",
		"geo_zip_any_of", "geo_zip_none_of",
		"media_type_any_of", "key_value_pairs", "custom",
	}},
	"video": {Dimensions: []string{
		"geo_country_any_of", "geo_country_none_of",
		"geo_region_any_of", "geo_region_none_of",
		"geo_metro_any_of", "geo_metro_none_of",
		"media_type_any_of", "key_value_pairs", "custom",
	}},
	"audio": {Dimensions: []string{
		"geo_country_any_of", "geo_country_none_of",
		"geo_region_any_of", "geo_region_none_of",
		"media_type_any_of", "key_value_pairs", "custom",
	}},
	"native": {Dimensions: []string{
		"geo_country_any_of", "geo_country_none_of",
		"geo_region_any_of", "geo_region_none_of",
		"geo_metro_any_of", "geo_metro_none_of",
		"media_type_any_of", "key_value_pairs", "custom",
	}},
}

// GetTargetingCapabilities returns the advertised overlay dimensions,
// optionally restricted to the requested channels.
func (e *Executor) GetTargetingCapabilities(ctx context.Context, channels []string) TaskResult {
	ctx, span := e.startSpan(ctx, "get_targeting_capabilities")
	defer span.End()

	if _, _, authErr := e.requirePrincipal(ctx); authErr != nil {
		return failed(authErr)
	}

	if len(channels) == 0 {
		return completed("", map[string]any{"channels": channelCapabilities})
	}

	result := make(map[string]overlayDimensions, len(channels))
	for _, ch := range channels {
		if caps, ok := channelCapabilities[ch]; ok {
			result[ch] = caps
		}
	}
	return completed("", map[string]any{"channels": result})
}
