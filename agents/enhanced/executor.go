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

package enhanced

import (
	"context"
	"encoding/base64"
	"fmt"
	"iter"
	"strings"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/a2aproject/a2a-go/a2asrv"
	"github.com/a2aproject/a2a-go/a2asrv/eventqueue"
)

// artifactSpec names the artifact a scenario produces as its final result.
type artifactSpec struct {
	name        string
	description string
}

var (
	finalResultArtifact = artifactSpec{
		name:        "final_result",
		description: "Final result of the request.",
	}
	inputFileArtifact = artifactSpec{
		name:        "input_file",
		description: "Input file content for processing.",
	}
	fileAnalysisArtifact = artifactSpec{
		name:        "file_analysis_result",
		description: "Analysis result of the input file.",
	}
	inputFormArtifact = artifactSpec{
		name:        "input_form_data",
		description: "Input form data for processing.",
	}
	formResultArtifact = artifactSpec{
		name:        "form_processing_result",
		description: "Result of form data processing.",
	}
)

// Executor adapts [Agent] updates to A2A task events. Incoming messages are
// dispatched on part kind: inline files run the file analysis flow, data
// parts run the form processing flow and everything else is treated as a
// text query.
type Executor struct {
	agent *Agent
}

var _ a2asrv.AgentExecutor = (*Executor)(nil)

// NewExecutor creates an executor backed by agent.
func NewExecutor(agent *Agent) *Executor {
	return &Executor{agent: agent}
}

// Execute runs the scenario selected by the incoming message and writes the
// resulting events to q.
func (e *Executor) Execute(ctx context.Context, reqCtx *a2asrv.RequestContext, q eventqueue.Queue) error {
	if reqCtx.StoredTask == nil {
		if err := q.Write(ctx, a2a.NewStatusUpdateEvent(reqCtx, a2a.TaskStateSubmitted, nil)); err != nil {
			return fmt.Errorf("failed to write submitted state: %w", err)
		}
	}

	query, fileContent, formData, err := splitMessage(reqCtx.Message)
	if err != nil {
		return err
	}

	switch {
	case fileContent != "":
		return e.executeFile(ctx, reqCtx, q, fileContent, query)
	case formData != nil:
		return e.executeData(ctx, reqCtx, q, formData, query)
	default:
		return e.relay(ctx, reqCtx, q, e.agent.Stream(ctx, query), finalResultArtifact)
	}
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

func (e *Executor) executeFile(ctx context.Context, reqCtx *a2asrv.RequestContext, q eventqueue.Queue, fileContent, query string) error {
	ack := fmt.Sprintf("Received file content (%d characters). Processing...", len(fileContent))
	if err := writeProgress(ctx, q, reqCtx, ack); err != nil {
		return err
	}
	echo := a2a.NewArtifactEvent(reqCtx, a2a.TextPart{Text: fileContent})
	echo.Artifact.Name = inputFileArtifact.name
	echo.Artifact.Description = inputFileArtifact.description
	if err := q.Write(ctx, echo); err != nil {
		return fmt.Errorf("failed to write %s artifact: %w", inputFileArtifact.name, err)
	}
	return e.relay(ctx, reqCtx, q, e.agent.ProcessFile(ctx, fileContent, query), fileAnalysisArtifact)
}

func (e *Executor) executeData(ctx context.Context, reqCtx *a2asrv.RequestContext, q eventqueue.Queue, formData map[string]any, query string) error {
	if err := writeProgress(ctx, q, reqCtx, "Received structured data. Processing form..."); err != nil {
		return err
	}
	echo := a2a.NewArtifactEvent(reqCtx, a2a.DataPart{Data: formData})
	echo.Artifact.Name = inputFormArtifact.name
	echo.Artifact.Description = inputFormArtifact.description
	if err := q.Write(ctx, echo); err != nil {
		return fmt.Errorf("failed to write %s artifact: %w", inputFormArtifact.name, err)
	}
	return e.relay(ctx, reqCtx, q, e.agent.ProcessData(ctx, formData, query), formResultArtifact)
}

// relay translates agent updates into task events. Working updates become
// progress status events, a completed update becomes the final artifact
// followed by a final completed status, and input-required, failed and
// canceled updates become final status events carrying the agent message.
func (e *Executor) relay(ctx context.Context, reqCtx *a2asrv.RequestContext, q eventqueue.Queue, updates iter.Seq2[Update, error], final artifactSpec) error {
	for update, err := range updates {
		if err != nil {
			return writeFailure(ctx, q, reqCtx, err)
		}
		switch update.State {
		case a2a.TaskStateCompleted:
			result := a2a.NewArtifactEvent(reqCtx, a2a.TextPart{Text: update.Content})
			result.Artifact.Name = final.name
			result.Artifact.Description = final.description
			result.LastChunk = true
			if err := q.Write(ctx, result); err != nil {
				return fmt.Errorf("failed to write %s artifact: %w", final.name, err)
			}
			completed := a2a.NewStatusUpdateEvent(reqCtx, a2a.TaskStateCompleted, nil)
			completed.Final = true
			if err := q.Write(ctx, completed); err != nil {
				return fmt.Errorf("failed to write completed state: %w", err)
			}
			return nil
		case a2a.TaskStateInputRequired, a2a.TaskStateFailed, a2a.TaskStateCanceled:
			msg := a2a.NewMessageForTask(a2a.MessageRoleAgent, reqCtx, a2a.TextPart{Text: update.Content})
			ev := a2a.NewStatusUpdateEvent(reqCtx, update.State, msg)
			ev.Final = true
			if err := q.Write(ctx, ev); err != nil {
				return fmt.Errorf("failed to write %s state: %w", update.State, err)
			}
			return nil
		default:
			if err := writeProgress(ctx, q, reqCtx, update.Content); err != nil {
				return err
			}
		}
	}
	return nil
}

// splitMessage extracts the text query, inline file content and form data
// from the message parts. Only inline file bytes trigger the file flow; URI
// files fall through to the text flow.
func splitMessage(msg *a2a.Message) (query, fileContent string, formData map[string]any, err error) {
	if msg == nil {
		return "", "", nil, nil
	}
	var texts []string
	for _, part := range msg.Parts {
		switch p := part.(type) {
		case a2a.TextPart:
			texts = append(texts, p.Text)
		case a2a.DataPart:
			formData = p.Data
		case a2a.FilePart:
			bytesFile, ok := p.File.(a2a.FileBytes)
			if !ok {
				continue
			}
			decoded, decodeErr := base64.StdEncoding.DecodeString(bytesFile.Bytes)
			if decodeErr != nil {
				return "", "", nil, fmt.Errorf("%w: file content is not valid base64", a2a.ErrInvalidRequest)
			}
			fileContent = string(decoded)
		}
	}
	return strings.Join(texts, "\n"), fileContent, formData, nil
}

func writeProgress(ctx context.Context, q eventqueue.Queue, reqCtx *a2asrv.RequestContext, content string) error {
	msg := a2a.NewMessageForTask(a2a.MessageRoleAgent, reqCtx, a2a.TextPart{Text: content})
	if err := q.Write(ctx, a2a.NewStatusUpdateEvent(reqCtx, a2a.TaskStateWorking, msg)); err != nil {
		return fmt.Errorf("failed to write working state: %w", err)
	}
	return nil
}

// writeFailure reports a scenario error to the client as a final failed
// status instead of surfacing it as a request error.
func writeFailure(ctx context.Context, q eventqueue.Queue, reqCtx *a2asrv.RequestContext, cause error) error {
	msg := a2a.NewMessageForTask(a2a.MessageRoleAgent, reqCtx, a2a.TextPart{Text: "Processing failed: " + cause.Error()})
	failed := a2a.NewStatusUpdateEvent(reqCtx, a2a.TaskStateFailed, msg)
	failed.Final = true
	if err := q.Write(ctx, failed); err != nil {
		return fmt.Errorf("failed to write failed state: %w", err)
	}
	return nil
}
