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

// Package kevel is a placeholder Adapter registration for the "kevel"
// ad_server, dispatched the same way google_ad_manager is. No Kevel
// integration source was available to ground a real implementation
// against, so every mutating operation reports an explicit error rather
// than silently behaving like the mock adapter.
package kevel

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/adcontextprotocol/gateway/internal/adapter"
	"github.com/adcontextprotocol/gateway/internal/creative"
	"github.com/adcontextprotocol/gateway/internal/model"
	"github.com/adcontextprotocol/gateway/internal/targeting"
)

// Adapter is an unimplemented placeholder for Kevel integration.
type Adapter struct {
	logger logr.Logger
}

var _ adapter.Adapter = (*Adapter)(nil)

// New constructs the placeholder Adapter.
func New(logger logr.Logger) *Adapter {
	return &Adapter{logger: logger.WithName("kevel-adapter")}
}

func (a *Adapter) Name() string { return "kevel" }

var errNotImplemented = fmt.Errorf("kevel adapter is not implemented")

func (a *Adapter) CreateMediaBuy(ctx context.Context, req adapter.CreateMediaBuyRequest) (adapter.CreateMediaBuyResult, error) {
	return adapter.CreateMediaBuyResult{}, errNotImplemented
}

func (a *Adapter) UpdateMediaBuy(ctx context.Context, req adapter.UpdateMediaBuyRequest) error {
	return errNotImplemented
}

func (a *Adapter) GetMediaBuyStatus(ctx context.Context, mediaBuy *model.MediaBuy) (model.MediaBuyStatus, error) {
	return "", errNotImplemented
}

func (a *Adapter) GetDelivery(ctx context.Context, mediaBuy *model.MediaBuy, packages []*model.Package) ([]adapter.DeliveryReport, error) {
	return nil, errNotImplemented
}

func (a *Adapter) SubmitCreatives(ctx context.Context, mediaBuy *model.MediaBuy, packages []*model.Package, creatives []*model.Creative, lookup creative.PlaceholderLookup) ([]adapter.CreativeSubmissionResult, error) {
	return nil, errNotImplemented
}

func (a *Adapter) GetCreativeStatus(ctx context.Context, c *model.Creative) (model.CreativeStatus, string, error) {
	return "", "", errNotImplemented
}

func (a *Adapter) TargetingTranslator() targeting.Translator {
	return nil
}
