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

// Package schema validates the free-form JSON payloads that cross into the
// gateway from buyers — adapter-specific custom targeting blocks and native
// creative template variables — against embedded JSON Schemas. Both are
// map[string]any by the time they reach a translator or classifier, so
// unlike the rest of the request body they get no compile-time shape
// checking; this package is what stands in for it.
package schema

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-logr/logr"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed targeting_custom.schema.json
var targetingCustomSchema string

//go:embed creative_template_variables.schema.json
var creativeTemplateSchema string

// PayloadValidator checks a decoded JSON object against one embedded schema.
type PayloadValidator struct {
	log    logr.Logger
	name   string
	loader gojsonschema.JSONLoader
}

func newValidator(log logr.Logger, name, schemaJSON string) *PayloadValidator {
	return &PayloadValidator{
		log:    log.WithName("schema-validator").WithValues("schema", name),
		name:   name,
		loader: gojsonschema.NewStringLoader(schemaJSON),
	}
}

// NewTargetingCustomValidator validates an adapter's custom targeting block
// (model.Targeting.Custom["<adapter>"]) against the shape GAM's
// customTargeting (and other adapters' equivalents) accept: a flat object of
// string keys to string, number, boolean, or string-array values.
func NewTargetingCustomValidator(log logr.Logger) *PayloadValidator {
	return newValidator(log, "targeting_custom", targetingCustomSchema)
}

// NewCreativeTemplateValidator validates a native creative's
// template_variables object against the published AdCP native template
// variable shape.
func NewCreativeTemplateValidator(log logr.Logger) *PayloadValidator {
	return newValidator(log, "creative_template_variables", creativeTemplateSchema)
}

// Validate returns a human-readable violation description for every schema
// failure, or nil when data conforms. A nil/empty map is always considered
// valid — callers decide separately whether the field was required at all.
func (v *PayloadValidator) Validate(data map[string]any) []string {
	if len(data) == 0 {
		return nil
	}

	encoded, err := json.Marshal(data)
	if err != nil {
		v.log.Error(err, "failed to marshal payload for schema validation")
		return []string{fmt.Sprintf("%s: payload could not be encoded for validation: %s", v.name, err)}
	}

	result, err := gojsonschema.Validate(v.loader, gojsonschema.NewBytesLoader(encoded))
	if err != nil {
		v.log.Error(err, "schema validation failed to run")
		return []string{fmt.Sprintf("%s: schema validation error: %s", v.name, err)}
	}
	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		violations = append(violations, fmt.Sprintf("%s: %s", v.name, desc.String()))
	}
	return violations
}

// ValidateAsString is a convenience for callers that only ever report a
// single combined failure reason (e.g. a batch validator returning one
// "reason" string per item) rather than a list of violations.
func (v *PayloadValidator) ValidateAsString(data map[string]any) string {
	violations := v.Validate(data)
	if len(violations) == 0 {
		return ""
	}
	return strings.Join(violations, "; ")
}
