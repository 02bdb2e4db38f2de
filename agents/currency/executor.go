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

package currency

import (
	"context"
	"fmt"
	"strings"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/a2aproject/a2a-go/a2asrv"
	"github.com/a2aproject/a2a-go/a2asrv/eventqueue"
)

// Executor adapts [Agent] updates to A2A task events.
type Executor struct {
	agent *Agent
}

var _ a2asrv.AgentExecutor = (*Executor)(nil)

// NewExecutor creates an executor backed by agent.
func NewExecutor(agent *Agent) *Executor {
	return &Executor{agent: agent}
}

// Execute answers the incoming question and writes the resulting events
// to q. A successful conversion ends with a conversion_result artifact and a
// final completed status; questions needing more input end with a final
// input-required status carrying the model's follow-up question.
func (e *Executor) Execute(ctx context.Context, reqCtx *a2asrv.RequestContext, q eventqueue.Queue) error {
	if reqCtx.StoredTask == nil {
		if err := q.Write(ctx, a2a.NewStatusUpdateEvent(reqCtx, a2a.TaskStateSubmitted, nil)); err != nil {
			return fmt.Errorf("failed to write submitted state: %w", err)
		}
	}

	for update, err := range e.agent.Stream(ctx, userText(reqCtx.Message)) {
		if err != nil {
			return e.writeFailure(ctx, reqCtx, q, err)
		}
		switch update.State {
		case a2a.TaskStateCompleted:
			result := a2a.NewArtifactEvent(reqCtx, a2a.TextPart{Text: update.Content})
			result.Artifact.Name = "conversion_result"
			result.Artifact.Description = "Result of the currency conversion request."
			result.LastChunk = true
			if err := q.Write(ctx, result); err != nil {
				return fmt.Errorf("failed to write conversion_result artifact: %w", err)
			}
			completed := a2a.NewStatusUpdateEvent(reqCtx, a2a.TaskStateCompleted, nil)
			completed.Final = true
			if err := q.Write(ctx, completed); err != nil {
				return fmt.Errorf("failed to write completed state: %w", err)
			}
			return nil
		case a2a.TaskStateInputRequired, a2a.TaskStateFailed:
			msg := a2a.NewMessageForTask(a2a.MessageRoleAgent, reqCtx, a2a.TextPart{Text: update.Content})
			ev := a2a.NewStatusUpdateEvent(reqCtx, update.State, msg)
			ev.Final = true
			if err := q.Write(ctx, ev); err != nil {
				return fmt.Errorf("failed to write %s state: %w", update.State, err)
			}
			return nil
		default:
			msg := a2a.NewMessageForTask(a2a.MessageRoleAgent, reqCtx, a2a.TextPart{Text: update.Content})
			if err := q.Write(ctx, a2a.NewStatusUpdateEvent(reqCtx, a2a.TaskStateWorking, msg)); err != nil {
				return fmt.Errorf("failed to write working state: %w", err)
			}
		}
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

func (e *Executor) writeFailure(ctx context.Context, reqCtx *a2asrv.RequestContext, q eventqueue.Queue, cause error) error {
	msg := a2a.NewMessageForTask(a2a.MessageRoleAgent, reqCtx, a2a.TextPart{Text: "Processing failed: " + cause.Error()})
	failed := a2a.NewStatusUpdateEvent(reqCtx, a2a.TaskStateFailed, msg)
	failed.Final = true
	if err := q.Write(ctx, failed); err != nil {
		return fmt.Errorf("failed to write failed state: %w", err)
	}
	return nil
}

func userText(msg *a2a.Message) string {
	if msg == nil {
		return ""
	}
	var texts []string
	for _, part := range msg.Parts {
		if text, ok := part.(a2a.TextPart); ok {
			texts = append(texts, text.Text)
		}
	}
	return strings.Join(texts, "\n")
}
