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

// Package apierr defines the gateway's internal error-kind taxonomy and a
// typed error that carries one of those kinds plus a human-readable message.
// Facades translate a Kind into the wire shape appropriate to their protocol;
// business failures always return a *Error through a normal Go error return,
// never a panic.
package apierr

import (
	"errors"
	"fmt"
)

// Kind classifies why an operation failed.
type Kind string

const (
	// NotAuthenticated means the caller's token could not be resolved to a principal.
	NotAuthenticated Kind = "NOT_AUTHENTICATED"
	// TenantInactive means the resolved tenant is soft-deactivated.
	TenantInactive Kind = "TENANT_INACTIVE"
	// Unauthorized means the principal does not own the referenced entity.
	Unauthorized Kind = "UNAUTHORIZED"
	// NotFound means the referenced entity does not exist.
	NotFound Kind = "NOT_FOUND"
	// Validation means a schema or semantic check failed.
	Validation Kind = "VALIDATION"
	// PolicyRejected means the policy engine returned REJECTED.
	PolicyRejected Kind = "POLICY_REJECTED"
	// Unsupported means a targeting dimension (or other buyer-visible capability)
	// cannot be represented upstream. Always fatal to the calling operation.
	Unsupported Kind = "UNSUPPORTED"
	// BudgetBelowDelivery means a budget update would go below already-delivered spend.
	BudgetBelowDelivery Kind = "BUDGET_BELOW_DELIVERY"
	// UnsupportedAction means an update_media_buy action the adapter does not recognize.
	UnsupportedAction Kind = "UNSUPPORTED_ACTION"
	// NotImplemented means a recognized but not-yet-built adapter action.
	NotImplemented Kind = "NOT_IMPLEMENTED"
	// CannotActivateGuaranteed means activate_order was requested on an
	// order that still has guaranteed-delivery line items.
	CannotActivateGuaranteed Kind = "CANNOT_AUTO_ACTIVATE_GUARANTEED"
	// Upstream means the ad-server RPC itself failed.
	Upstream Kind = "UPSTREAM"
	// PermissionDenied means the action requires admin privilege the caller lacks.
	PermissionDenied Kind = "PERMISSION_DENIED"
	// Conflict means a uniqueness or exclusivity constraint was violated (e.g. a
	// sync job already running for this tenant/sync_type).
	Conflict Kind = "CONFLICT"
)

// Error is the typed error every component returns for expected business
// failures. Programmer/contract violations use plain errors or panics, never
// this type.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]any
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates an *Error of the given kind with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an *Error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an *Error of the given kind wrapping cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// WithDetails attaches a structured detail map (e.g. {"requested_budget":..,
// "current_spend":..}) used by facades to render S2-style structured errors.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// KindOf extracts the Kind from err if it is (or wraps) an *Error, and
// reports whether one was found.
func KindOf(err error) (Kind, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind, true
	}
	return "", false
}

// Is reports whether err is (or wraps) an *Error of the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// As extracts *Error from err if it is (or wraps) one, so a caller can
// forward an adapter's structured business error instead of flattening it
// to a generic Upstream failure.
func As(err error) (*Error, bool) {
	var apiErr *Error
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}
