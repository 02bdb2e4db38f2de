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

package mcptool

import (
	"context"
	"fmt"
	"strings"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/a2aproject/a2a-go/a2asrv"
	"github.com/a2aproject/a2a-go/a2asrv/eventqueue"
)

type artifactSpec struct {
	name        string
	description string
}

var (
	toolCatalogArtifact = artifactSpec{name: "tool_catalog", description: "Tools exposed by the MCP server."}
	toolResultArtifact  = artifactSpec{name: "tool_result", description: "Result of the MCP tool invocation."}
)

// Executor adapts [Agent] results to A2A task events. Listing queries produce
// a catalog artifact with the tool descriptors as a data part; invocation
// queries produce a text artifact with the tool output.
type Executor struct {
	agent *Agent
}

var _ a2asrv.AgentExecutor = (*Executor)(nil)

// NewExecutor creates an executor backed by agent.
func NewExecutor(agent *Agent) *Executor {
	return &Executor{agent: agent}
}

// Execute runs one tool bridge turn for the incoming message.
func (e *Executor) Execute(ctx context.Context, reqCtx *a2asrv.RequestContext, q eventqueue.Queue) error {
	if reqCtx.StoredTask == nil {
		if err := q.Write(ctx, a2a.NewStatusUpdateEvent(reqCtx, a2a.TaskStateSubmitted, nil)); err != nil {
			return fmt.Errorf("failed to write submitted state: %w", err)
		}
	}
	progress := a2a.NewMessageForTask(a2a.MessageRoleAgent, reqCtx, a2a.TextPart{Text: "Consulting the tool server..."})
	if err := q.Write(ctx, a2a.NewStatusUpdateEvent(reqCtx, a2a.TaskStateWorking, progress)); err != nil {
		return fmt.Errorf("failed to write working state: %w", err)
	}

	result, err := e.agent.Process(ctx, queryText(reqCtx.Message))
	if err != nil {
		return e.writeFinalStatus(ctx, reqCtx, q, a2a.TaskStateFailed, "Processing failed: "+err.Error())
	}

	switch result.State {
	case a2a.TaskStateInputRequired:
		return e.writeFinalStatus(ctx, reqCtx, q, a2a.TaskStateInputRequired, result.Text)
	case a2a.TaskStateFailed:
		return e.writeFinalStatus(ctx, reqCtx, q, a2a.TaskStateFailed, result.Text)
	}

	spec := toolResultArtifact
	parts := []a2a.Part{a2a.TextPart{Text: result.Text}}
	if result.Data != nil {
		spec = toolCatalogArtifact
		parts = append(parts, a2a.DataPart{Data: result.Data})
	}
	artifact := a2a.NewArtifactEvent(reqCtx, parts...)
	artifact.Artifact.Name = spec.name
	artifact.Artifact.Description = spec.description
	artifact.LastChunk = true
	if err := q.Write(ctx, artifact); err != nil {
		return fmt.Errorf("failed to write %s artifact: %w", spec.name, err)
	}
	completed := a2a.NewStatusUpdateEvent(reqCtx, a2a.TaskStateCompleted, nil)
	completed.Final = true
	if err := q.Write(ctx, completed); err != nil {
		return fmt.Errorf("failed to write completed state: %w", err)
	}
	return nil
}

func (e *Executor) writeFinalStatus(ctx context.Context, reqCtx *a2asrv.RequestContext, q eventqueue.Queue, state a2a.TaskState, text string) error {
	msg := a2a.NewMessageForTask(a2a.MessageRoleAgent, reqCtx, a2a.TextPart{Text: text})
	ev := a2a.NewStatusUpdateEvent(reqCtx, state, msg)
	ev.Final = true
	if err := q.Write(ctx, ev); err != nil {
		return fmt.Errorf("failed to write %s state: %w", state, err)
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

func queryText(msg *a2a.Message) string {
	if msg == nil {
		return ""
	}
	var texts []string
	for _, part := range msg.Parts {
		if p, ok := part.(a2a.TextPart); ok {
			texts = append(texts, p.Text)
		}
	}
	return strings.Join(texts, "\n")
}
