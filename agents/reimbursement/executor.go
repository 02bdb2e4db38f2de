// Copyright 2025 The A2A Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package reimbursement

import (
	"context"
	"fmt"
	"strings"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/a2aproject/a2a-go/a2asrv"
	"github.com/a2aproject/a2a-go/a2asrv/eventqueue"
)

// Executor adapts [Agent] results to A2A task events. Pending forms travel
// back to the user as a data part on a final input-required status; form
// answers arrive as data parts on the next message and are replayed to the
// model as text.
type Executor struct {
	agent *Agent
}

var _ a2asrv.AgentExecutor = (*Executor)(nil)

// NewExecutor creates an executor backed by agent.
func NewExecutor(agent *Agent) *Executor {
	return &Executor{agent: agent}
}

// Execute runs one reimbursement turn for the incoming message.
func (e *Executor) Execute(ctx context.Context, reqCtx *a2asrv.RequestContext, q eventqueue.Queue) error {
	if reqCtx.StoredTask == nil {
		if err := q.Write(ctx, a2a.NewStatusUpdateEvent(reqCtx, a2a.TaskStateSubmitted, nil)); err != nil {
			return fmt.Errorf("failed to write submitted state: %w", err)
		}
	}
	progress := a2a.NewMessageForTask(a2a.MessageRoleAgent, reqCtx, a2a.TextPart{Text: "Processing the reimbursement request..."})
	if err := q.Write(ctx, a2a.NewStatusUpdateEvent(reqCtx, a2a.TaskStateWorking, progress)); err != nil {
		return fmt.Errorf("failed to write working state: %w", err)
	}

	result, err := e.agent.Process(ctx, queryText(reqCtx.Message))
	if err != nil {
		msg := a2a.NewMessageForTask(a2a.MessageRoleAgent, reqCtx, a2a.TextPart{Text: "Processing failed: " + err.Error()})
		failed := a2a.NewStatusUpdateEvent(reqCtx, a2a.TaskStateFailed, msg)
		failed.Final = true
		if err := q.Write(ctx, failed); err != nil {
			return fmt.Errorf("failed to write failed state: %w", err)
		}
		return nil
	}

	if result.State == a2a.TaskStateInputRequired {
		parts := []a2a.Part{a2a.DataPart{Data: result.Data}}
		if result.Text != "" {
			parts = append([]a2a.Part{a2a.TextPart{Text: result.Text}}, parts...)
		}
		msg := a2a.NewMessageForTask(a2a.MessageRoleAgent, reqCtx, parts...)
		ev := a2a.NewStatusUpdateEvent(reqCtx, a2a.TaskStateInputRequired, msg)
		ev.Final = true
		if err := q.Write(ctx, ev); err != nil {
			return fmt.Errorf("failed to write input-required state: %w", err)
		}
		return nil
	}

	parts := []a2a.Part{a2a.TextPart{Text: result.Text}}
	if result.Data != nil {
		parts = append(parts, a2a.DataPart{Data: result.Data})
	}
	artifact := a2a.NewArtifactEvent(reqCtx, parts...)
	artifact.Artifact.Name = "reimbursement_result"
	artifact.Artifact.Description = "Outcome of the reimbursement request."
	artifact.LastChunk = true
	if err := q.Write(ctx, artifact); err != nil {
		return fmt.Errorf("failed to write reimbursement_result artifact: %w", err)
	}
	completed := a2a.NewStatusUpdateEvent(reqCtx, a2a.TaskStateCompleted, nil)
	completed.Final = true
	if err := q.Write(ctx, completed); err != nil {
		return fmt.Errorf("failed to write completed state: %w", err)
	}
	return nil
}

// Cancel marks the stored task as canceled if it is still running.
func (e *Executor) Cancel(ctx context.Context, reqCtx *a2asrv.RequestContext, q eventqueue.Queue) error {
	task := reqCtx.StoredTask
	if task == nil {
		return a2a.ErrTaskNotFound
	}
	switch task.Status.State {
	case a2a.TaskStateCanceled, a2a.TaskStateCompleted, a2a.TaskStateFailed:
		return a2a.ErrTaskNotCancelable
	}
	canceled := a2a.NewStatusUpdateEvent(reqCtx, a2a.TaskStateCanceled, nil)
	canceled.Final = true
	if err := q.Write(ctx, canceled); err != nil {
		return fmt.Errorf("failed to write canceled state: %w", err)
	}
	return nil
}

// queryText flattens the message for the model. Data parts, typically the
// filled-out request form coming back, are rendered as key: value lines.
func queryText(msg *a2a.Message) string {
	if msg == nil {
		return ""
	}
	var sections []string
	for _, part := range msg.Parts {
		switch p := part.(type) {
		case a2a.TextPart:
			sections = append(sections, p.Text)
		case a2a.DataPart:
			var sb strings.Builder
			sb.WriteString("Form data:")
			for key, value := range p.Data {
				fmt.Fprintf(&sb, "\n%s: %v", key, value)
			}
			sections = append(sections, sb.String())
		}
	}
	return strings.Join(sections, "\n")
}
