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

package postgres

import (
	"context"
	"fmt"

	"github.com/adcontextprotocol/gateway/internal/model"
	"github.com/adcontextprotocol/gateway/internal/storage"
)

// AppendAuditRecord writes one append-only audit row. Never updated, never deleted.
func (p *Provider) AppendAuditRecord(ctx context.Context, rec *model.AuditRecord) error {
	details, err := marshalJSONB(rec.Details)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, `
		INSERT INTO audit_records (timestamp, tenant_id, principal_id, operation, success, details, error)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, rec.Timestamp, rec.TenantID, rec.PrincipalID, rec.Operation, rec.Success, details, rec.Error)
	if err != nil {
		return fmt.Errorf("append audit record: %w", err)
	}
	return nil
}

type auditRepo struct{ p *Provider }

// AsAuditRepository returns a storage.AuditRepository backed by this Provider.
func (p *Provider) AsAuditRepository() storage.AuditRepository { return auditRepo{p} }

func (r auditRepo) Append(ctx context.Context, rec *model.AuditRecord) error {
	return r.p.AppendAuditRecord(ctx, rec)
}
