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

package model

// Targeting is the normalized AdCP targeting overlay (§4.6, §6.5). Adapter
// translators turn this into their own targeting shape, failing loudly on
// any dimension they cannot represent rather than silently dropping it.
type Targeting struct {
	GeoCountryAnyOf  []string `json:"geo_country_any_of,omitempty"`
	GeoCountryNoneOf []string `json:"geo_country_none_of,omitempty"`
	GeoRegionAnyOf   []string `json:"geo_region_any_of,omitempty"`
	GeoRegionNoneOf  []string `json:"geo_region_none_of,omitempty"`
	GeoMetroAnyOf    []string `json:"geo_metro_any_of,omitempty"`
	GeoMetroNoneOf   []string `json:"geo_metro_none_of,omitempty"`
	GeoCityAnyOf     []string `json:"geo_city_any_of,omitempty"`
	GeoCityNoneOf    []string `json:"geo_city_none_of,omitempty"`
	GeoZipAnyOf      []string `json:"geo_zip_any_of,omitempty"`
	GeoZipNoneOf     []string `json:"geo_zip_none_of,omitempty"`

	DeviceTypeAnyOf []string `json:"device_type_any_of,omitempty"`
	OSAnyOf         []string `json:"os_any_of,omitempty"`
	BrowserAnyOf    []string `json:"browser_any_of,omitempty"`

	ContentCatAnyOf []string `json:"content_cat_any_of,omitempty"`
	KeywordsAnyOf   []string `json:"keywords_any_of,omitempty"`

	AudiencesAnyOf []string `json:"audiences_any_of,omitempty"`
	Signals        []string `json:"signals,omitempty"`

	KeyValuePairs  map[string]string `json:"key_value_pairs,omitempty"`
	MediaTypeAnyOf []string          `json:"media_type_any_of,omitempty"`

	// Custom carries platform-specific overrides, keyed by adapter name
	// (e.g. custom["gam"]["key_values"]).
	Custom map[string]map[string]any `json:"custom,omitempty"`
}

// IsEmpty reports whether no targeting dimension has been populated.
func (t *Targeting) IsEmpty() bool {
	if t == nil {
		return true
	}
	return len(t.GeoCountryAnyOf) == 0 && len(t.GeoCountryNoneOf) == 0 &&
		len(t.GeoRegionAnyOf) == 0 && len(t.GeoRegionNoneOf) == 0 &&
		len(t.GeoMetroAnyOf) == 0 && len(t.GeoMetroNoneOf) == 0 &&
		len(t.GeoCityAnyOf) == 0 && len(t.GeoCityNoneOf) == 0 &&
		len(t.GeoZipAnyOf) == 0 && len(t.GeoZipNoneOf) == 0 &&
		len(t.DeviceTypeAnyOf) == 0 && len(t.OSAnyOf) == 0 && len(t.BrowserAnyOf) == 0 &&
		len(t.ContentCatAnyOf) == 0 && len(t.KeywordsAnyOf) == 0 &&
		len(t.AudiencesAnyOf) == 0 && len(t.Signals) == 0 &&
		len(t.KeyValuePairs) == 0 && len(t.MediaTypeAnyOf) == 0 &&
		len(t.Custom) == 0
}
