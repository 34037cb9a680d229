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
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/adcontextprotocol/gateway/internal/adapter"
)

// OrdersManager handles GAM order lifecycle calls, grounded on
// GAMOrdersManager.
type OrdersManager struct {
	client        *Client
	advertiserID  string
	traffickerID  string
	dryRun        bool
	logger        logr.Logger
	syntheticSeq  int
}

// NewOrdersManager constructs an OrdersManager bound to one advertiser/trafficker pair.
func NewOrdersManager(client *Client, advertiserID, traffickerID string, dryRun bool, logger logr.Logger) *OrdersManager {
	return &OrdersManager{client: client, advertiserID: advertiserID, traffickerID: traffickerID, dryRun: dryRun, logger: logger.WithName("gam-orders")}
}

type createOrderRequest struct {
	Name           string  `json:"name"`
	AdvertiserID   string  `json:"advertiserId"`
	TraffickerID   string  `json:"traffickerId"`
	TotalBudgetUSD float64 `json:"totalBudgetUsd"`
	StartTime      string  `json:"startDateTime"`
	EndTime        string  `json:"endDateTime"`
	PONumber       string  `json:"poNumber,omitempty"`
}

type createOrderResponse struct {
	ID string `json:"id"`
}

// CreateOrder creates a new GAM order, returning its upstream order ID.
func (m *OrdersManager) CreateOrder(ctx context.Context, orderName string, totalBudget float64, start, end time.Time, poNumber string) (string, error) {
	req := createOrderRequest{
		Name:           orderName,
		AdvertiserID:   m.advertiserID,
		TraffickerID:   m.traffickerID,
		TotalBudgetUSD: totalBudget,
		StartTime:      start.Format(time.RFC3339),
		EndTime:        end.Format(time.RFC3339),
		PONumber:       poNumber,
	}

	if m.dryRun {
		m.syntheticSeq++
		m.logger.Info("dry run: would create GAM order", "name", orderName, "budget", totalBudget, "start", start, "end", end)
		return fmt.Sprintf("dry_run_order_%d", m.syntheticSeq), nil
	}

	var resp createOrderResponse
	if err := m.client.Call(ctx, "orders", "create", req, &resp); err != nil {
		return "", fmt.Errorf("create order: %w", err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("create order: no order id returned")
	}
	m.logger.Info("created gam order", "order_id", resp.ID)
	return resp.ID, nil
}

type orderStatusResponse struct {
	Status string `json:"status"`
}

// GetOrderStatus polls an order's current upstream status.
func (m *OrdersManager) GetOrderStatus(ctx context.Context, orderID string) string {
	if m.dryRun {
		return "DRAFT"
	}
	var resp orderStatusResponse
	if err := m.client.Call(ctx, "orders", "get", map[string]string{"id": orderID}, &resp); err != nil {
		m.logger.Info("get order status failed", "order_id", orderID, "error", err.Error())
		return "ERROR"
	}
	if resp.Status == "" {
		return "NOT_FOUND"
	}
	return resp.Status
}

// ArchiveOrder archives an order for cleanup purposes.
func (m *OrdersManager) ArchiveOrder(ctx context.Context, orderID string) bool {
	m.logger.Info("archiving gam order", "order_id", orderID)
	if m.dryRun {
		return true
	}
	if err := m.client.Call(ctx, "orders", "archive", map[string]string{"id": orderID}, nil); err != nil {
		m.logger.Info("archive order failed", "order_id", orderID, "error", err.Error())
		return false
	}
	return true
}

// ActivateOrder resumes an order and activates its line items. Callers must
// check CheckOrderHasGuaranteedItems first — GAM itself doesn't reject
// activating a guaranteed order, but this design requires ad-server approval
// for those instead.
func (m *OrdersManager) ActivateOrder(ctx context.Context, orderID string) bool {
	m.logger.Info("activating gam order", "order_id", orderID)
	if m.dryRun {
		return true
	}
	if err := m.client.Call(ctx, "orders", "activate", map[string]string{"id": orderID}, nil); err != nil {
		m.logger.Info("activate order failed", "order_id", orderID, "error", err.Error())
		return false
	}
	return true
}

// SubmitForApproval moves a draft order into GAM's approval workflow.
func (m *OrdersManager) SubmitForApproval(ctx context.Context, orderID string) bool {
	m.logger.Info("submitting gam order for approval", "order_id", orderID)
	if m.dryRun {
		return true
	}
	if err := m.client.Call(ctx, "orders", "submitForApproval", map[string]string{"id": orderID}, nil); err != nil {
		m.logger.Info("submit for approval failed", "order_id", orderID, "error", err.Error())
		return false
	}
	return true
}

// ApproveOrder approves a pending order. Callers are responsible for
// checking the caller has admin privilege before calling this.
func (m *OrdersManager) ApproveOrder(ctx context.Context, orderID string) bool {
	m.logger.Info("approving gam order", "order_id", orderID)
	if m.dryRun {
		return true
	}
	if err := m.client.Call(ctx, "orders", "approve", map[string]string{"id": orderID}, nil); err != nil {
		m.logger.Info("approve order failed", "order_id", orderID, "error", err.Error())
		return false
	}
	return true
}

type lineItem struct {
	ID   string `json:"id"`
	Type string `json:"lineItemType"`
}

type lineItemsResponse struct {
	Results []lineItem `json:"results"`
}

// GetOrderLineItems returns the line items belonging to an order.
func (m *OrdersManager) GetOrderLineItems(ctx context.Context, orderID string) ([]lineItem, error) {
	if m.dryRun {
		return nil, nil
	}
	var resp lineItemsResponse
	if err := m.client.Call(ctx, "lineitems", "list", map[string]string{"orderId": orderID}, &resp); err != nil {
		return nil, fmt.Errorf("get order line items: %w", err)
	}
	return resp.Results, nil
}

// CheckOrderHasGuaranteedItems reports whether the order contains any
// guaranteed-delivery line items and which types.
func (m *OrdersManager) CheckOrderHasGuaranteedItems(ctx context.Context, orderID string) (bool, []string, error) {
	items, err := m.GetOrderLineItems(ctx, orderID)
	if err != nil {
		return false, nil, err
	}
	var guaranteedTypes []string
	for _, item := range items {
		if adapter.GuaranteedLineItemTypes[item.Type] {
			guaranteedTypes = append(guaranteedTypes, item.Type)
		}
	}
	return len(guaranteedTypes) > 0, guaranteedTypes, nil
}
