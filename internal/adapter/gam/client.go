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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-logr/logr"
	"golang.org/x/oauth2"
)

// defaultBaseURL is GAM's REST API host; network code and API version are
// path components of every request.
const defaultBaseURL = "https://admanager.googleapis.com"

const apiVersion = "v202411"

// Client wraps authenticated access to one GAM network. It is initialized
// lazily on first use, mirroring GAMClientManager's lazy _init_client.
type Client struct {
	auth        AuthConfig
	networkCode string
	baseURL     string
	dryRun      bool
	logger      logr.Logger

	httpClient *http.Client
}

// NewClient constructs a Client for the given network. The underlying
// oauth2 HTTP client is built lazily the first time a request is made.
func NewClient(auth AuthConfig, networkCode string, dryRun bool, logger logr.Logger) *Client {
	return &Client{
		auth:        auth,
		networkCode: networkCode,
		baseURL:     defaultBaseURL,
		dryRun:      dryRun,
		logger:      logger.WithName("gam-client"),
	}
}

func (c *Client) ensureHTTPClient(ctx context.Context) (*http.Client, error) {
	if c.httpClient != nil {
		return c.httpClient, nil
	}
	if c.networkCode == "" {
		return nil, fmt.Errorf("gam client: network code is required")
	}
	ts, err := c.auth.TokenSource(ctx)
	if err != nil {
		return nil, fmt.Errorf("gam client: %w", err)
	}
	c.httpClient = oauth2.NewClient(ctx, ts)
	c.logger.Info("gam client initialized", "network_code", c.networkCode, "auth_method", c.auth.Method())
	return c.httpClient, nil
}

// Call invokes a GAM service method (e.g. service="orders", action="create")
// with the given JSON-encodable body, decoding the response into out. In
// dry-run mode, no network call is made; callers are responsible for
// synthesizing a representative response.
func (c *Client) Call(ctx context.Context, service, action string, body any, out any) error {
	if c.dryRun {
		c.logger.Info("dry run: skipping GAM API call", "service", service, "action", action)
		return nil
	}
	client, err := c.ensureHTTPClient(ctx)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("gam client: encode request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/networks/%s/%s:%s", c.baseURL, apiVersion, c.networkCode, service, action)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("gam client: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("gam client: %s.%s: %w", service, action, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("gam client: %s.%s: unexpected status %d", service, action, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// IsConnected performs a lightweight connectivity check against the network.
func (c *Client) IsConnected(ctx context.Context) bool {
	if c.dryRun {
		return true
	}
	var out map[string]any
	if err := c.Call(ctx, "networks", "get", nil, &out); err != nil {
		c.logger.Info("gam connectivity check failed", "error", err.Error())
		return false
	}
	return true
}

// Reset drops the cached HTTP client, forcing re-authentication on next use.
func (c *Client) Reset() {
	c.httpClient = nil
}
