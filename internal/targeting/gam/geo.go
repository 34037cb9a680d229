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

// Package gam implements the targeting.Translator contract for Google Ad
// Manager, grounded on the source adapter's GAMTargetingManager: supported
// geo dimensions are mapped to GAM location IDs via a static mapping file;
// every other dimension GAM cannot represent fails loudly rather than being
// silently dropped.
package gam

import (
	"embed"
	"encoding/json"
	"fmt"
)

//go:embed geo_mappings.json
var geoMappingsFS embed.FS

// GeoMappings holds the static country/region/metro -> GAM location ID tables.
type GeoMappings struct {
	Countries map[string]string            `json:"countries"`
	Regions   map[string]map[string]string `json:"regions"` // country -> region code -> id
	Metros    map[string]map[string]string `json:"metros"`  // country -> metro code -> id (currently only "US" populated)
}

// LoadDefaultGeoMappings loads the mapping table embedded in this binary.
// A missing or malformed file yields empty maps — geo targeting then simply
// warns and skips unmapped codes rather than failing the whole build, mirroring
// the source's tolerant _load_geo_mappings.
func LoadDefaultGeoMappings() GeoMappings {
	data, err := geoMappingsFS.ReadFile("geo_mappings.json")
	if err != nil {
		return GeoMappings{}
	}
	mappings, err := ParseGeoMappings(data)
	if err != nil {
		return GeoMappings{}
	}
	return mappings
}

// ParseGeoMappings decodes a geo mappings JSON document, e.g. one loaded
// from a tenant-specific override file.
func ParseGeoMappings(data []byte) (GeoMappings, error) {
	var m GeoMappings
	if err := json.Unmarshal(data, &m); err != nil {
		return GeoMappings{}, fmt.Errorf("parse geo mappings: %w", err)
	}
	return m, nil
}

// lookupRegionID searches every country's region table, matching the
// source's "no country context yet" behavior.
func (g GeoMappings) lookupRegionID(regionCode string) (string, bool) {
	for _, regions := range g.Regions {
		if id, ok := regions[regionCode]; ok {
			return id, true
		}
	}
	return "", false
}

// lookupMetroID searches the US metro table (the only populated table today).
func (g GeoMappings) lookupMetroID(metroCode string) (string, bool) {
	metros, ok := g.Metros["US"]
	if !ok {
		return "", false
	}
	id, ok := metros[metroCode]
	return id, ok
}
