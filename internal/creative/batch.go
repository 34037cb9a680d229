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

import "github.com/adcontextprotocol/gateway/internal/model"

// Outcome is one creative's result from a ValidateBatch pass.
type Outcome struct {
	CreativeID string
	Kind       Kind
	Payload    Payload
	Failed     bool
	Reason     string
}

// ValidateBatch classifies and validates every creative in the batch
// independently: a failure on one creative never stops the others from
// being classified, validated, and built.
func ValidateBatch(creatives []*model.Creative, lookup PlaceholderLookup) []Outcome {
	outcomes := make([]Outcome, 0, len(creatives))
	for _, c := range creatives {
		kind, err := Classify(c)
		if err != nil {
			outcomes = append(outcomes, Outcome{CreativeID: c.CreativeID, Failed: true, Reason: err.Error()})
			continue
		}
		if reason := Validate(c, kind, lookup); reason != "" {
			outcomes = append(outcomes, Outcome{CreativeID: c.CreativeID, Kind: kind, Failed: true, Reason: reason})
			continue
		}
		payload, err := Build(c)
		if err != nil {
			outcomes = append(outcomes, Outcome{CreativeID: c.CreativeID, Kind: kind, Failed: true, Reason: err.Error()})
			continue
		}
		outcomes = append(outcomes, Outcome{CreativeID: c.CreativeID, Kind: kind, Payload: payload})
	}
	return outcomes
}
