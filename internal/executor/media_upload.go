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
	"context"

	"github.com/adcontextprotocol/gateway/internal/apierr"
	"github.com/adcontextprotocol/gateway/internal/media"
)

// GetCreativeUploadURL issues upload credentials (C7) for a hosted image or
// video creative asset: a presigned PUT for direct-upload backends (S3), or
// a proxy endpoint the client PUTs the bytes to for disk-backed storage. The
// returned storage_ref is later passed as a creative's media_url.
func (e *Executor) GetCreativeUploadURL(ctx context.Context, filename, mimeType string, sizeBytes int64) TaskResult {
	ctx, span := e.startSpan(ctx, "get_creative_upload_url")
	defer span.End()

	tenant, _, authErr := e.requirePrincipal(ctx)
	if authErr != nil {
		return failed(authErr)
	}
	if e.media == nil {
		return failed(apierr.New(apierr.Unsupported, "hosted creative media storage is not configured"))
	}
	creds, err := e.media.GetUploadURL(ctx, media.UploadRequest{
		TenantID:  tenant.TenantID,
		Filename:  filename,
		MIMEType:  mimeType,
		SizeBytes: sizeBytes,
	})
	if err != nil {
		return failed(apierr.Wrap(apierr.Upstream, "get upload url", err))
	}
	return completed("", map[string]any{
		"upload_id":   creds.UploadID,
		"url":         creds.URL,
		"storage_ref": creds.StorageRef,
		"method":      creds.Method,
		"headers":     creds.Headers,
		"expires_at":  creds.ExpiresAt,
	})
}

// ConfirmCreativeUpload finalizes a direct upload (S3) once the client has
// PUT the asset to the presigned URL get_creative_upload_url returned.
// Proxy-backed storage (local disk) finalizes on the media HTTP server's PUT
// handler instead, so this is a no-op success for those backends.
func (e *Executor) ConfirmCreativeUpload(ctx context.Context, uploadID string) TaskResult {
	ctx, span := e.startSpan(ctx, "confirm_creative_upload")
	defer span.End()

	_, _, authErr := e.requirePrincipal(ctx)
	if authErr != nil {
		return failed(authErr)
	}
	if e.media == nil {
		return failed(apierr.New(apierr.Unsupported, "hosted creative media storage is not configured"))
	}
	direct, ok := e.media.(media.DirectUploadStorage)
	if !ok {
		return completed("", map[string]any{"upload_id": uploadID, "confirmed": true})
	}
	info, err := direct.ConfirmUpload(ctx, uploadID)
	if err != nil {
		return failed(apierr.Wrap(apierr.Upstream, "confirm upload", err))
	}
	return completed("", map[string]any{
		"upload_id":   uploadID,
		"confirmed":   true,
		"storage_ref": info.StorageRef,
		"size_bytes":  info.SizeBytes,
	})
}
