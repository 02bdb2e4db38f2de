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

package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/a2aproject/a2a-go/a2aclient"
	"github.com/a2aproject/a2a-go/a2asrv"
	"github.com/a2aproject/a2a-go/a2asrv/eventqueue"
)

const (
	relayPollInterval = 2 * time.Second
	relayPollBudget   = 30 * time.Second
)

// relayExecutor forwards every incoming question to another A2A agent and
// relays the answer back. It sends without blocking, then polls tasks/get
// until the remote task reaches a terminal state.
type relayExecutor struct {
	remote *a2aclient.Client
	logger *log.Logger
}

var _ a2asrv.AgentExecutor = (*relayExecutor)(nil)

func newRelayExecutor(remote *a2aclient.Client, logger *log.Logger) *relayExecutor {
	return &relayExecutor{remote: remote, logger: logger}
}

func (e *relayExecutor) Execute(ctx context.Context, reqCtx *a2asrv.RequestContext, q eventqueue.Queue) error {
	if reqCtx.StoredTask == nil {
		if err := q.Write(ctx, a2a.NewStatusUpdateEvent(reqCtx, a2a.TaskStateSubmitted, nil)); err != nil {
			return fmt.Errorf("failed to write submitted state: %w", err)
		}
	}

	question := messageText(reqCtx.Message)
	e.logger.Printf("Forwarding question: %s", question)
	if err := e.writeWorking(ctx, reqCtx, q, "Forwarding the question to the currency agent..."); err != nil {
		return err
	}

	answer, err := e.ask(ctx, question)
	if err != nil {
		e.logger.Printf("Relay failed: %v", err)
		msg := a2a.NewMessageForTask(a2a.MessageRoleAgent, reqCtx, a2a.TextPart{Text: "Relay failed: " + err.Error()})
		failed := a2a.NewStatusUpdateEvent(reqCtx, a2a.TaskStateFailed, msg)
		failed.Final = true
		if err := q.Write(ctx, failed); err != nil {
			return fmt.Errorf("failed to write failed state: %w", err)
		}
		return nil
	}
	e.logger.Printf("Received answer: %s", answer)

	result := a2a.NewArtifactEvent(reqCtx, a2a.TextPart{Text: answer})
	result.Artifact.Name = "relayed_answer"
	result.Artifact.Description = "Answer relayed from the currency agent."
	result.LastChunk = true
	if err := q.Write(ctx, result); err != nil {
		return fmt.Errorf("failed to write relayed_answer artifact: %w", err)
	}
	completed := a2a.NewStatusUpdateEvent(reqCtx, a2a.TaskStateCompleted, nil)
	completed.Final = true
	if err := q.Write(ctx, completed); err != nil {
		return fmt.Errorf("failed to write completed state: %w", err)
	}
	return nil
}

// Cancel marks the stored task as canceled if it is still running.
func (e *relayExecutor) Cancel(ctx context.Context, reqCtx *a2asrv.RequestContext, q eventqueue.Queue) error {
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

// ask sends the question to the remote agent and polls for the result.
func (e *relayExecutor) ask(ctx context.Context, question string) (string, error) {
	msg := a2a.NewMessage(a2a.MessageRoleUser, a2a.TextPart{Text: question})
	result, err := e.remote.SendMessage(ctx, &a2a.MessageSendParams{Message: msg})
	if err != nil {
		return "", fmt.Errorf("message/send to remote agent failed: %w", err)
	}
	task, ok := result.(*a2a.Task)
	if !ok {
		return "", fmt.Errorf("expected a task from the remote agent, got %T", result)
	}

	deadline := time.Now().Add(relayPollBudget)
	for !isTerminal(task.Status.State) {
		if time.Now().After(deadline) {
			return "", fmt.Errorf("remote task %s still %s after %s", task.ID, task.Status.State, relayPollBudget)
		}
		select {
		case <-time.After(relayPollInterval):
		case <-ctx.Done():
			return "", ctx.Err()
		}
		task, err = e.remote.GetTask(ctx, &a2a.TaskQueryParams{ID: task.ID})
		if err != nil {
			return "", fmt.Errorf("tasks/get for remote task failed: %w", err)
		}
		e.logger.Printf("Remote task %s is %s", task.ID, task.Status.State)
	}

	if task.Status.State != a2a.TaskStateCompleted {
		return "", fmt.Errorf("remote task %s ended in state %s: %s",
			task.ID, task.Status.State, messageText(task.Status.Message))
	}
	answer := artifactText(task)
	if answer == "" {
		return "", fmt.Errorf("remote task %s completed without a text artifact", task.ID)
	}
	return answer, nil
}

func (e *relayExecutor) writeWorking(ctx context.Context, reqCtx *a2asrv.RequestContext, q eventqueue.Queue, text string) error {
	msg := a2a.NewMessageForTask(a2a.MessageRoleAgent, reqCtx, a2a.TextPart{Text: text})
	if err := q.Write(ctx, a2a.NewStatusUpdateEvent(reqCtx, a2a.TaskStateWorking, msg)); err != nil {
		return fmt.Errorf("failed to write working state: %w", err)
	}
	return nil
}

func isTerminal(state a2a.TaskState) bool {
	switch state {
	case a2a.TaskStateCompleted, a2a.TaskStateFailed, a2a.TaskStateCanceled, a2a.TaskStateInputRequired:
		return true
	default:
		return false
	}
}

func messageText(msg *a2a.Message) string {
	if msg == nil {
		return ""
	}
	var texts []string
	for _, part := range msg.Parts {
		if tp, ok := part.(a2a.TextPart); ok {
			texts = append(texts, tp.Text)
		}
	}
	return strings.Join(texts, "\n")
}

// artifactText concatenates the text parts of all task artifacts.
func artifactText(task *a2a.Task) string {
	var texts []string
	for _, artifact := range task.Artifacts {
		for _, part := range artifact.Parts {
			if tp, ok := part.(a2a.TextPart); ok {
				texts = append(texts, tp.Text)
			}
		}
	}
	return strings.Join(texts, "\n")
}
