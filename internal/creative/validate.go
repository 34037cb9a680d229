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
	"fmt"
	"regexp"
	"strings"

	"github.com/go-logr/logr"

	"github.com/adcontextprotocol/gateway/internal/model"
	"github.com/adcontextprotocol/gateway/internal/schema"
)

// templateVariablesSchema validates KindNative creatives' TemplateVariables.
// Built once; the embedded schema never changes at runtime.
var templateVariablesSchema = schema.NewCreativeTemplateValidator(logr.Discard())

// Placeholder is one creativePlaceholder slot a package/line item exposes.
// A 1x1 placeholder is a wildcard accepting any creative size.
type Placeholder struct {
	Width  int
	Height int
}

func (p Placeholder) isWildcard() bool { return p.Width == 1 && p.Height == 1 }

func (p Placeholder) matches(width, height int) bool {
	return p.isWildcard() || (p.Width == width && p.Height == height)
}

// PlaceholderLookup resolves the creativePlaceholder slots a package (or,
// via the pkg_<prod_XXXXXX>_ fallback, a product) exposes.
type PlaceholderLookup interface {
	PlaceholdersForPackage(packageID string) ([]Placeholder, bool)
	PlaceholdersForProduct(productID string) ([]Placeholder, bool)
}

var productIDInPackageName = regexp.MustCompile(`(prod_[A-Za-z0-9]+)`)

// productIDFromPackageID extracts a product ID from a package naming
// convention of the form pkg_<prod_XXXXXX>_..., tolerating line-item
// naming conventions that embed the product ID this way.
func productIDFromPackageID(packageID string) (string, bool) {
	m := productIDInPackageName.FindStringSubmatch(packageID)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// matchesPlaceholder reports whether packageID exposes a placeholder
// matching (width, height), first by direct package lookup, then, when the
// package isn't found directly, by parsing a product ID out of its name.
func matchesPlaceholder(lookup PlaceholderLookup, packageID string, width, height int) bool {
	if phs, ok := lookup.PlaceholdersForPackage(packageID); ok {
		return anyMatches(phs, width, height)
	}
	if productID, ok := productIDFromPackageID(packageID); ok {
		if phs, ok := lookup.PlaceholdersForProduct(productID); ok {
			return anyMatches(phs, width, height)
		}
	}
	return false
}

func anyMatches(phs []Placeholder, width, height int) bool {
	for _, ph := range phs {
		if ph.matches(width, height) {
			return true
		}
	}
	return false
}

// Validate runs the full type-agnostic, placeholder-match, and
// click-through checks for a creative against its classified Kind and the
// packages it is assigned to. It returns the first failure reason, or ""
// when the creative is valid. A failing creative is never submitted
// upstream; callers continue validating the rest of a batch independently.
func Validate(c *model.Creative, kind Kind, lookup PlaceholderLookup) string {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Sprintf("creative %q is missing a valid width/height", c.CreativeID)
	}

	for _, pkgID := range c.PackageAssignments {
		if !matchesPlaceholder(lookup, pkgID, c.Width, c.Height) {
			return fmt.Sprintf(
				"creative %q (%dx%d) has no matching creativePlaceholder on package %q",
				c.CreativeID, c.Width, c.Height, pkgID)
		}
	}

	if kind == KindHostedImage {
		if reason := validateClickThroughURL(c); reason != "" {
			return reason
		}
	}

	if kind == KindNative {
		if reason := templateVariablesSchema.ValidateAsString(c.TemplateVariables); reason != "" {
			return fmt.Sprintf("creative %q has invalid template_variables: %s", c.CreativeID, reason)
		}
	}

	return ""
}

// validateClickThroughURL enforces that hosted image creatives carry an
// http(s) click-through URL; inline binary data is rejected outright.
func validateClickThroughURL(c *model.Creative) string {
	clickURL := strings.TrimSpace(c.ClickURL)
	if clickURL == "" {
		return fmt.Sprintf("creative %q is a hosted image and requires a click_url", c.CreativeID)
	}
	lower := strings.ToLower(clickURL)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return fmt.Sprintf("creative %q click_url must be http(s), got %q", c.CreativeID, clickURL)
	}
	return ""
}
