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

package gam

import (
	"fmt"
	"strings"

	"github.com/go-logr/logr"

	"github.com/adcontextprotocol/gateway/internal/model"
	"github.com/adcontextprotocol/gateway/internal/schema"
	"github.com/adcontextprotocol/gateway/internal/targeting"
)

// customTargetingSchema validates the t.Custom["gam"]["key_values"] map that
// Build merges into customTargeting; built once, the embedded schema never
// changes at runtime.
var customTargetingSchema = schema.NewTargetingCustomValidator(logr.Discard())

// DeviceTypeMap lists GAM's standard device category IDs, stable across networks.
var DeviceTypeMap = map[string]int{
	"mobile":  30000,
	"desktop": 30001,
	"tablet":  30002,
	"ctv":     30003,
	"dooh":    30004,
}

// SupportedMediaTypes are the only media types GAM's environmentType can represent.
var SupportedMediaTypes = map[string]bool{"video": true, "display": true, "native": true}

// mediaTypeEnvironment maps a single AdCP media type to a GAM line item environmentType.
var mediaTypeEnvironment = map[string]string{
	"video":   "VIDEO_PLAYER",
	"display": "BROWSER",
	"native":  "BROWSER",
}

// Manager implements targeting.Translator for Google Ad Manager.
type Manager struct {
	geo    GeoMappings
	logger logr.Logger
}

var _ targeting.Translator = (*Manager)(nil)

// NewManager constructs a Manager with the given geo mapping table.
func NewManager(geo GeoMappings, logger logr.Logger) *Manager {
	return &Manager{geo: geo, logger: logger.WithName("gam-targeting")}
}

// Validate reports unsupported dimensions without raising — used for
// get_targeting_capabilities advisory output.
func (m *Manager) Validate(t model.Targeting) []string {
	var unsupported []string

	for _, device := range t.DeviceTypeAnyOf {
		if _, ok := DeviceTypeMap[device]; !ok {
			unsupported = append(unsupported, fmt.Sprintf("device type %q not supported", device))
		}
	}
	for _, media := range t.MediaTypeAnyOf {
		if !SupportedMediaTypes[media] {
			unsupported = append(unsupported, fmt.Sprintf("media type %q not supported", media))
		}
	}
	if len(t.GeoCityAnyOf) > 0 || len(t.GeoCityNoneOf) > 0 {
		unsupported = append(unsupported, "city targeting requires GAM geo service integration (not implemented)")
	}
	if len(t.GeoZipAnyOf) > 0 || len(t.GeoZipNoneOf) > 0 {
		unsupported = append(unsupported, "postal code targeting requires GAM geo service integration (not implemented)")
	}
	kv, _ := t.Custom["gam"]["key_values"].(map[string]any)
	unsupported = append(unsupported, customTargetingSchema.Validate(kv)...)
	return unsupported
}

// Build translates t into GAM's targeting JSON shape, failing loudly (never
// silently dropping) on any dimension GAM cannot represent. Grounded on
// GAMTargetingManager.build_targeting.
func (m *Manager) Build(t model.Targeting) (map[string]any, error) {
	if t.IsEmpty() {
		return map[string]any{}, nil
	}

	gamTargeting := map[string]any{}
	geoTargeting := map[string]any{}

	if len(t.GeoCountryAnyOf) > 0 || len(t.GeoRegionAnyOf) > 0 || len(t.GeoMetroAnyOf) > 0 {
		var locations []map[string]string
		for _, country := range t.GeoCountryAnyOf {
			if id, ok := m.geo.Countries[country]; ok {
				locations = append(locations, map[string]string{"id": id})
			} else {
				m.logger.Info("country code not in GAM mapping, skipping", "country", country)
			}
		}
		for _, region := range t.GeoRegionAnyOf {
			if id, ok := m.geo.lookupRegionID(region); ok {
				locations = append(locations, map[string]string{"id": id})
			} else {
				m.logger.Info("region code not in GAM mapping, skipping", "region", region)
			}
		}
		for _, metro := range t.GeoMetroAnyOf {
			if id, ok := m.geo.lookupMetroID(metro); ok {
				locations = append(locations, map[string]string{"id": id})
			} else {
				m.logger.Info("metro code not in GAM mapping, skipping", "metro", metro)
			}
		}
		geoTargeting["targetedLocations"] = locations
	}

	if len(t.GeoCityAnyOf) > 0 {
		return nil, fmt.Errorf(
			"city targeting requested but not supported; cannot fulfill buyer contract for cities: %s; use geo_metro_any_of instead",
			strings.Join(t.GeoCityAnyOf, ", "))
	}
	if len(t.GeoZipAnyOf) > 0 {
		return nil, fmt.Errorf(
			"postal code targeting requested but not supported; cannot fulfill buyer contract for postal codes: %s; use geo_metro_any_of instead",
			strings.Join(t.GeoZipAnyOf, ", "))
	}

	if len(t.GeoCountryNoneOf) > 0 || len(t.GeoRegionNoneOf) > 0 || len(t.GeoMetroNoneOf) > 0 {
		var excluded []map[string]string
		for _, country := range t.GeoCountryNoneOf {
			if id, ok := m.geo.Countries[country]; ok {
				excluded = append(excluded, map[string]string{"id": id})
			}
		}
		for _, region := range t.GeoRegionNoneOf {
			if id, ok := m.geo.lookupRegionID(region); ok {
				excluded = append(excluded, map[string]string{"id": id})
			}
		}
		for _, metro := range t.GeoMetroNoneOf {
			if id, ok := m.geo.lookupMetroID(metro); ok {
				excluded = append(excluded, map[string]string{"id": id})
			}
		}
		geoTargeting["excludedLocations"] = excluded
	}

	if len(t.GeoCityNoneOf) > 0 {
		return nil, fmt.Errorf(
			"city exclusion requested but not supported; cannot fulfill buyer contract for excluded cities: %s",
			strings.Join(t.GeoCityNoneOf, ", "))
	}
	if len(t.GeoZipNoneOf) > 0 {
		return nil, fmt.Errorf(
			"postal code exclusion requested but not supported; cannot fulfill buyer contract for excluded postal codes: %s",
			strings.Join(t.GeoZipNoneOf, ", "))
	}

	if len(geoTargeting) > 0 {
		gamTargeting["geoTargeting"] = geoTargeting
	}

	if len(t.DeviceTypeAnyOf) > 0 {
		return nil, fmt.Errorf(
			"device targeting requested but not supported; cannot fulfill buyer contract for device types: %s",
			strings.Join(t.DeviceTypeAnyOf, ", "))
	}
	if len(t.OSAnyOf) > 0 {
		return nil, fmt.Errorf(
			"OS targeting requested but not supported; cannot fulfill buyer contract for OS types: %s",
			strings.Join(t.OSAnyOf, ", "))
	}
	if len(t.BrowserAnyOf) > 0 {
		return nil, fmt.Errorf(
			"browser targeting requested but not supported; cannot fulfill buyer contract for browsers: %s",
			strings.Join(t.BrowserAnyOf, ", "))
	}
	if len(t.ContentCatAnyOf) > 0 {
		return nil, fmt.Errorf(
			"content category targeting requested but not supported; cannot fulfill buyer contract for categories: %s",
			strings.Join(t.ContentCatAnyOf, ", "))
	}
	if len(t.KeywordsAnyOf) > 0 {
		return nil, fmt.Errorf(
			"keyword targeting requested but not supported; cannot fulfill buyer contract for keywords: %s",
			strings.Join(t.KeywordsAnyOf, ", "))
	}

	customTargeting := map[string]any{}
	if gamCustom, ok := t.Custom["gam"]; ok {
		if kv, ok := gamCustom["key_values"].(map[string]any); ok {
			for k, v := range kv {
				customTargeting[k] = v
			}
		}
	}
	if len(t.KeyValuePairs) > 0 {
		m.logger.Info("adding AEE signals to GAM key-value targeting")
		for k, v := range t.KeyValuePairs {
			customTargeting[k] = v
		}
	}
	if len(customTargeting) > 0 {
		gamTargeting["customTargeting"] = customTargeting
	}

	if len(t.AudiencesAnyOf) > 0 || len(t.Signals) > 0 {
		audiences := append(append([]string{}, t.AudiencesAnyOf...), t.Signals...)
		return nil, fmt.Errorf(
			"audience/signal targeting requested but GAM audience segment mapping not configured; "+
				"cannot fulfill buyer contract for: %s; configure audience segment ID mappings in tenant adapter config",
			strings.Join(audiences, ", "))
	}

	if len(t.MediaTypeAnyOf) > 0 {
		if len(t.MediaTypeAnyOf) > 1 {
			return nil, fmt.Errorf(
				"multiple media types requested but GAM supports only one environmentType per line item; "+
					"requested: %s; create separate packages for each media type",
				strings.Join(t.MediaTypeAnyOf, ", "))
		}
		mediaType := t.MediaTypeAnyOf[0]
		env, ok := mediaTypeEnvironment[mediaType]
		if !ok {
			return nil, fmt.Errorf("media type %q is not supported in GAM", mediaType)
		}
		gamTargeting["_media_type_environment"] = env
	}

	return gamTargeting, nil
}

// AddInventoryTargeting layers ad-unit/placement inventory targeting onto an
// already-built targeting map.
func (m *Manager) AddInventoryTargeting(gamTargeting map[string]any, adUnitIDs, placementIDs []string, includeDescendants bool) map[string]any {
	inventory := map[string]any{}
	if len(adUnitIDs) > 0 {
		units := make([]map[string]any, 0, len(adUnitIDs))
		for _, id := range adUnitIDs {
			units = append(units, map[string]any{"adUnitId": id, "includeDescendants": includeDescendants})
		}
		inventory["targetedAdUnits"] = units
	}
	if len(placementIDs) > 0 {
		placements := make([]map[string]any, 0, len(placementIDs))
		for _, id := range placementIDs {
			placements = append(placements, map[string]any{"placementId": id})
		}
		inventory["targetedPlacements"] = placements
	}
	if len(inventory) > 0 {
		gamTargeting["inventoryTargeting"] = inventory
	}
	return gamTargeting
}

// AddCustomTargeting merges additional custom targeting key-values.
func (m *Manager) AddCustomTargeting(gamTargeting map[string]any, customKeys map[string]any) map[string]any {
	if len(customKeys) == 0 {
		return gamTargeting
	}
	existing, ok := gamTargeting["customTargeting"].(map[string]any)
	if !ok {
		existing = map[string]any{}
	}
	for k, v := range customKeys {
		existing[k] = v
	}
	gamTargeting["customTargeting"] = existing
	return gamTargeting
}
