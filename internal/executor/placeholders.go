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

import (
	"regexp"
	"strconv"

	"github.com/adcontextprotocol/gateway/internal/creative"
	"github.com/adcontextprotocol/gateway/internal/model"
)

var formatSizeRe = regexp.MustCompile(`(\d+)x(\d+)`)

// formatPlaceholders derives the creativePlaceholder slots a product's
// formats imply: a "WxH" token in a format string (e.g. "display_300x250")
// yields that exact size; a format with no parseable size (native, audio,
// video) yields a 1x1 wildcard, since those formats have no single
// meaningful pixel size to match against.
func formatPlaceholders(formats []string) []creative.Placeholder {
	placeholders := make([]creative.Placeholder, 0, len(formats))
	for _, f := range formats {
		m := formatSizeRe.FindStringSubmatch(f)
		if m == nil {
			placeholders = append(placeholders, creative.Placeholder{Width: 1, Height: 1})
			continue
		}
		w, _ := strconv.Atoi(m[1])
		h, _ := strconv.Atoi(m[2])
		placeholders = append(placeholders, creative.Placeholder{Width: w, Height: h})
	}
	return placeholders
}

// mediaBuyPlaceholderLookup implements creative.PlaceholderLookup over one
// media buy's packages and their products.
type mediaBuyPlaceholderLookup struct {
	byPackage map[string][]creative.Placeholder
	byProduct map[string][]creative.Placeholder
}

func newPlaceholderLookup(packages []*model.Package, products map[string]*model.Product) mediaBuyPlaceholderLookup {
	lookup := mediaBuyPlaceholderLookup{
		byPackage: make(map[string][]creative.Placeholder, len(packages)),
		byProduct: make(map[string][]creative.Placeholder, len(products)),
	}
	for _, pkg := range packages {
		product, ok := products[pkg.ProductID]
		if !ok {
			continue
		}
		placeholders := formatPlaceholders(product.Formats)
		lookup.byPackage[pkg.PackageID] = placeholders
		lookup.byProduct[pkg.ProductID] = placeholders
	}
	return lookup
}

func (l mediaBuyPlaceholderLookup) PlaceholdersForPackage(packageID string) ([]creative.Placeholder, bool) {
	phs, ok := l.byPackage[packageID]
	return phs, ok
}

func (l mediaBuyPlaceholderLookup) PlaceholdersForProduct(productID string) ([]creative.Placeholder, bool) {
	phs, ok := l.byProduct[productID]
	return phs, ok
}
