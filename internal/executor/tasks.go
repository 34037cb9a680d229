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
	"fmt"

	"github.com/adcontextprotocol/gateway/internal/apierr"
	"github.com/adcontextprotocol/gateway/internal/model"
	"github.com/adcontextprotocol/gateway/internal/storage"
	"github.com/google/uuid"
)

// CreateHumanTask opens a Task requiring manual operator decision, outside
// the automatic approve_media_buy/approve_creative/activate_gam_order
// flows create_media_buy and submit_creatives raise themselves.
func (e *Executor) CreateHumanTask(ctx context.Context, taskType model.TaskType, mediaBuyID, description string, details map[string]any) TaskResult {
	ctx, span := e.startSpan(ctx, "create_human_task")
	defer span.End()

	tenant, principalID, authErr := e.requirePrincipal(ctx)
	if authErr != nil {
		return failed(authErr)
	}

	task := &model.Task{
		TaskID:      "task_" + uuid.NewString(),
		TenantID:    tenant.TenantID,
		MediaBuyID:  mediaBuyID,
		TaskType:    taskType,
		Status:      model.TaskPending,
		CreatedAt:   e.now(),
		CreatedBy:   principalID,
		Description: description,
		Details:     details,
	}
	if err := e.store.Tasks.Create(ctx, task); err != nil {
		e.audit(ctx, tenant, principalID, "create_human_task", false, nil, err.Error())
		return failed(apierr.Wrap(apierr.Upstream, "create task", err))
	}

	e.notify(ctx, tenant, "human_task_created", map[string]any{"task_id": task.TaskID, "task_type": string(taskType)})
	e.audit(ctx, tenant, principalID, "create_human_task", true, map[string]any{"task_id": task.TaskID}, "")
	return pending(task.TaskID, "", map[string]any{"task_id": task.TaskID, "status": string(task.Status)})
}

// VerifyTask reports whether a task has reached the completed state.
func (e *Executor) VerifyTask(ctx context.Context, taskID string) TaskResult {
	ctx, span := e.startSpan(ctx, "verify_task")
	defer span.End()

	tenant, principalID, authErr := e.requirePrincipal(ctx)
	if authErr != nil {
		return failed(authErr)
	}

	task, err := e.store.Tasks.Get(ctx, tenant.TenantID, taskID)
	if err != nil {
		if err == storage.ErrNotFound {
			return failed(apierr.New(apierr.NotFound, fmt.Sprintf("task %q not found", taskID)))
		}
		return failed(apierr.Wrap(apierr.Upstream, "load task", err))
	}

	e.audit(ctx, tenant, principalID, "verify_task", true, map[string]any{"task_id": taskID, "status": string(task.Status)}, "")
	return completed("", map[string]any{
		"task_id":   task.TaskID,
		"status":    string(task.Status),
		"completed": task.Status == model.TaskCompleted,
	})
}
