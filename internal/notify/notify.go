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

// Package notify implements the side-channel Notifier (C11): best-effort
// Slack Block Kit webhook delivery for human-task, creative-review, and
// audit events. A notification failure is always logged and never
// propagated to the calling executor operation.
package notify

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/sony/gobreaker/v2"
)

const (
	webhookTimeout = 10 * time.Second
	breakerTimeout = 30 * time.Second
)

// Notifier posts event notifications to a tenant's configured webhook URLs,
// each guarded by its own circuit breaker so a single unreachable endpoint
// can't pile up latency across every event this process fires.
type Notifier struct {
	httpClient *http.Client
	logger     logr.Logger

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[struct{}]
}

// New constructs a Notifier. httpClient defaults to one with webhookTimeout
// when nil.
func New(httpClient *http.Client, logger logr.Logger) *Notifier {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: webhookTimeout}
	}
	return &Notifier{
		httpClient: httpClient,
		logger:     logger.WithName("notify"),
		breakers:   make(map[string]*gobreaker.CircuitBreaker[struct{}]),
	}
}

func (n *Notifier) breakerFor(url string) *gobreaker.CircuitBreaker[struct{}] {
	n.mu.Lock()
	defer n.mu.Unlock()
	if cb, ok := n.breakers[url]; ok {
		return cb
	}
	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        url,
		Timeout:     breakerTimeout,
		MaxRequests: 1,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			n.logger.Info("webhook circuit breaker state change", "url", name, "from", from.String(), "to", to.String())
		},
	})
	n.breakers[url] = cb
	return cb
}
