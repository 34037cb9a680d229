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

// Package gam implements the Adapter contract (C8) against Google Ad
// Manager, grounded on GAMAuthManager/GAMClientManager/GAMOrdersManager/
// GAMCreativesManager in the source adapter.
package gam

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
)

// authScopes is the OAuth scope GAM's API requires.
var authScopes = []string{"https://www.googleapis.com/auth/dfp"}

// AuthConfig carries GAM credentials. RefreshToken is the preferred,
// modern path; ServiceAccountKeyFile is accepted for parity with legacy
// tenant configuration but is not implemented by this adapter (no
// production tenant in this corpus uses it), matching auth.py's
// preference order.
type AuthConfig struct {
	ClientID              string
	ClientSecret          string
	RefreshToken          string
	ServiceAccountKeyFile string
	TokenURL              string // defaults to Google's endpoint when empty
}

// Method reports which authentication method is configured.
func (c AuthConfig) Method() string {
	switch {
	case c.RefreshToken != "":
		return "oauth"
	case c.ServiceAccountKeyFile != "":
		return "service_account"
	default:
		return "none"
	}
}

// TokenSource builds an oauth2.TokenSource from the configured refresh
// token. Service-account key file auth is not supported; tenants must
// configure a refresh token.
func (c AuthConfig) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	if c.RefreshToken == "" {
		if c.ServiceAccountKeyFile != "" {
			return nil, fmt.Errorf("gam adapter: service_account_key_file auth is not supported, configure a refresh_token instead")
		}
		return nil, fmt.Errorf("gam config requires refresh_token")
	}
	conf := &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Scopes:       authScopes,
		Endpoint: oauth2.Endpoint{
			TokenURL: c.tokenURL(),
		},
	}
	token := &oauth2.Token{RefreshToken: c.RefreshToken}
	return conf.TokenSource(ctx, token), nil
}

func (c AuthConfig) tokenURL() string {
	if c.TokenURL != "" {
		return c.TokenURL
	}
	return "https://oauth2.googleapis.com/token"
}

// ConfigFromMap builds an AuthConfig from a tenant's adapter_config["google_ad_manager"] map.
func ConfigFromMap(cfg map[string]any) AuthConfig {
	str := func(key string) string {
		v, _ := cfg[key].(string)
		return v
	}
	return AuthConfig{
		ClientID:              str("client_id"),
		ClientSecret:          str("client_secret"),
		RefreshToken:          str("refresh_token"),
		ServiceAccountKeyFile: str("service_account_key_file"),
	}
}
