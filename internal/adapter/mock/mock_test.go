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

package mock

import (
	"context"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adcontextprotocol/gateway/internal/adapter"
	"github.com/adcontextprotocol/gateway/internal/creative"
	"github.com/adcontextprotocol/gateway/internal/model"
)

type fakeLookup struct {
	placeholders map[string][]creative.Placeholder
}

func (f fakeLookup) PlaceholdersForPackage(packageID string) ([]creative.Placeholder, bool) {
	phs, ok := f.placeholders[packageID]
	return phs, ok
}

func (f fakeLookup) PlaceholdersForProduct(string) ([]creative.Placeholder, bool) { return nil, false }

func TestName(t *testing.T) {
	a := New(logr.Discard())
	assert.Equal(t, "mock", a.Name())
}

func TestCreateMediaBuy_GeneratesSyntheticIDsPerPackage(t *testing.T) {
	a := New(logr.Discard())
	req := adapter.CreateMediaBuyRequest{
		MediaBuy: &model.MediaBuy{MediaBuyID: "mb_1"},
		Packages: []*model.Package{{PackageID: "pkg_1"}, {PackageID: "pkg_2"}},
	}

	result, err := a.CreateMediaBuy(context.Background(), req)
	require.NoError(t, err)
	assert.Contains(t, result.AdapterOrderID, "mock_order_")
	assert.Len(t, result.PackageOrderIDs, 2)
	assert.Contains(t, result.PackageOrderIDs["pkg_1"], "mock_lineitem_")
	assert.NotEqual(t, result.PackageOrderIDs["pkg_1"], result.PackageOrderIDs["pkg_2"])
}

func TestCreateMediaBuy_IDsAreUniqueAcrossCalls(t *testing.T) {
	a := New(logr.Discard())
	req := adapter.CreateMediaBuyRequest{MediaBuy: &model.MediaBuy{MediaBuyID: "mb_1"}, Packages: []*model.Package{{PackageID: "pkg_1"}}}

	first, err := a.CreateMediaBuy(context.Background(), req)
	require.NoError(t, err)
	second, err := a.CreateMediaBuy(context.Background(), req)
	require.NoError(t, err)
	assert.NotEqual(t, first.AdapterOrderID, second.AdapterOrderID)
}

func TestGetMediaBuyStatus_AlwaysActive(t *testing.T) {
	a := New(logr.Discard())
	status, err := a.GetMediaBuyStatus(context.Background(), &model.MediaBuy{MediaBuyID: "mb_1"})
	require.NoError(t, err)
	assert.Equal(t, model.MediaBuyActive, status)
}

func TestGetDelivery_ReportsPerPackageMetrics(t *testing.T) {
	a := New(logr.Discard())
	packages := []*model.Package{
		{PackageID: "pkg_1", DeliveryMetrics: model.DeliveryMetrics{Spend: 100, ImpressionsDelivered: 1000}},
	}
	reports, err := a.GetDelivery(context.Background(), &model.MediaBuy{MediaBuyID: "mb_1"}, packages)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "pkg_1", reports[0].PackageID)
	assert.Equal(t, 100.0, reports[0].Spend)
	assert.Equal(t, int64(1000), reports[0].ImpressionsDelivered)
}

func TestSubmitCreatives_ApprovesValidAndFailsInvalid(t *testing.T) {
	a := New(logr.Discard())
	lookup := fakeLookup{placeholders: map[string][]creative.Placeholder{
		"pkg_1": {{Width: 300, Height: 250}},
	}}
	creatives := []*model.Creative{
		{CreativeID: "cr_ok", MediaURL: "https://cdn.example.com/ad.png", Width: 300, Height: 250, ClickURL: "https://example.com", PackageAssignments: []string{"pkg_1"}},
		{CreativeID: "cr_bad"},
	}

	results, err := a.SubmitCreatives(context.Background(), &model.MediaBuy{MediaBuyID: "mb_1"}, nil, creatives, lookup)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "cr_ok", results[0].CreativeID)
	assert.Equal(t, model.CreativeApproved, results[0].Status)
	assert.Contains(t, results[0].AdapterCreativeID, "mock_creative_")

	assert.Equal(t, "cr_bad", results[1].CreativeID)
	assert.Equal(t, model.CreativeFailed, results[1].Status)
	assert.NotEmpty(t, results[1].Reason)
}

func TestGetCreativeStatus_AlwaysApproved(t *testing.T) {
	a := New(logr.Discard())
	status, feedback, err := a.GetCreativeStatus(context.Background(), &model.Creative{CreativeID: "cr_1"})
	require.NoError(t, err)
	assert.Equal(t, model.CreativeApproved, status)
	assert.Empty(t, feedback)
}

func TestTargetingTranslator_AcceptsAnyOverlay(t *testing.T) {
	a := New(logr.Discard())
	translator := a.TargetingTranslator()
	assert.Empty(t, translator.Validate(model.Targeting{}))

	built, err := translator.Build(model.Targeting{GeoCountryAnyOf: []string{"US"}})
	require.NoError(t, err)
	assert.NotNil(t, built["targeting"])
}
