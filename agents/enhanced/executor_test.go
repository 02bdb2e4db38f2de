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
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/a2aproject/a2a-go/a2asrv"
	"github.com/a2aproject/a2a-go/a2asrv/eventqueue"
	"github.com/google/go-cmp/cmp"
)

func newTestExecutor(llm LLM) *Executor {
	return NewExecutor(newTestAgent(llm))
}

func newExecutorContext(parts ...a2a.Part) *a2asrv.RequestContext {
	return &a2asrv.RequestContext{
		TaskID:    a2a.NewTaskID(),
		ContextID: "ctx-exec",
		Message:   a2a.NewMessage(a2a.MessageRoleUser, parts...),
	}
}

// drainUntilFinal reads queued events up to and including the final status
// update. Every successful scenario terminates with one.
func drainUntilFinal(t *testing.T, q eventqueue.Queue) []a2a.Event {
	t.Helper()
	var events []a2a.Event
	for {
		ev, _, err := q.Read(t.Context())
		if err != nil {
			t.Fatalf("Read() failed: %v", err)
		}
		events = append(events, ev)
		if status, ok := ev.(*a2a.TaskStatusUpdateEvent); ok && status.Final {
			return events
		}
	}
}

// eventSummary renders events as compact strings for sequence comparison.
func eventSummary(events []a2a.Event) []string {
	var out []string
	for _, ev := range events {
		switch e := ev.(type) {
		case *a2a.TaskStatusUpdateEvent:
			out = append(out, fmt.Sprintf("status:%s final=%t", e.Status.State, e.Final))
		case *a2a.TaskArtifactUpdateEvent:
			out = append(out, fmt.Sprintf("artifact:%s last=%t", e.Artifact.Name, e.LastChunk))
		default:
			out = append(out, fmt.Sprintf("%T", ev))
		}
	}
	return out
}

func statusText(t *testing.T, ev a2a.Event) string {
	t.Helper()
	status, ok := ev.(*a2a.TaskStatusUpdateEvent)
	if !ok {
		t.Fatalf("event is %T, want *a2a.TaskStatusUpdateEvent", ev)
	}
	if status.Status.Message == nil {
		return ""
	}
	return messageText(status.Status.Message)
}

func artifactText(t *testing.T, ev a2a.Event) string {
	t.Helper()
	artifact, ok := ev.(*a2a.TaskArtifactUpdateEvent)
	if !ok {
		t.Fatalf("event is %T, want *a2a.TaskArtifactUpdateEvent", ev)
	}
	var sb strings.Builder
	for _, part := range artifact.Artifact.Parts {
		if text, ok := part.(a2a.TextPart); ok {
			sb.WriteString(text.Text)
		}
	}
	return sb.String()
}

func messageText(msg *a2a.Message) string {
	var sb strings.Builder
	for _, part := range msg.Parts {
		if text, ok := part.(a2a.TextPart); ok {
			sb.WriteString(text.Text)
		}
	}
	return sb.String()
}

func TestExecutorExecute_TextFlow(t *testing.T) {
	executor := newTestExecutor(&fakeLLM{chunks: []string{"answer"}})
	reqCtx := newExecutorContext(a2a.TextPart{Text: "hello there"})
	q := eventqueue.NewInMemoryQueue(64)

	if err := executor.Execute(t.Context(), reqCtx, q); err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	events := drainUntilFinal(t, q)

	want := []string{
		"status:submitted final=false",
		"status:working final=false",
		"status:working final=false",
		"artifact:final_result last=true",
		"status:completed final=true",
	}
	if diff := cmp.Diff(want, eventSummary(events)); diff != "" {
		t.Errorf("event sequence mismatch (-want +got):\n%s", diff)
	}
	if got := statusText(t, events[1]); got != "Starting to process: hello there" {
		t.Errorf("first progress text = %q, want start message", got)
	}
	if got := artifactText(t, events[3]); got != "Final response: answer" {
		t.Errorf("artifact text = %q, want %q", got, "Final response: answer")
	}
	artifact := events[3].(*a2a.TaskArtifactUpdateEvent)
	if artifact.Artifact.Description != "Final result of the request." {
		t.Errorf("artifact description = %q, want %q", artifact.Artifact.Description, "Final result of the request.")
	}
}

func TestExecutorExecute_SkipsSubmittedForStoredTask(t *testing.T) {
	executor := newTestExecutor(&fakeLLM{chunks: []string{"answer"}})
	reqCtx := newExecutorContext(a2a.TextPart{Text: "hello again"})
	reqCtx.StoredTask = &a2a.Task{
		ID:        reqCtx.TaskID,
		ContextID: reqCtx.ContextID,
		Status:    a2a.TaskStatus{State: a2a.TaskStateInputRequired},
	}
	q := eventqueue.NewInMemoryQueue(64)

	if err := executor.Execute(t.Context(), reqCtx, q); err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	events := drainUntilFinal(t, q)

	first, ok := events[0].(*a2a.TaskStatusUpdateEvent)
	if !ok {
		t.Fatalf("first event is %T, want *a2a.TaskStatusUpdateEvent", events[0])
	}
	if first.Status.State != a2a.TaskStateWorking {
		t.Errorf("first event state = %v, want %v", first.Status.State, a2a.TaskStateWorking)
	}
}

func TestExecutorExecute_FileFlow(t *testing.T) {
	llm := &fakeLLM{chunks: []string{"insight"}}
	executor := newTestExecutor(llm)
	content := "real uploaded content"
	reqCtx := newExecutorContext(
		a2a.FilePart{File: a2a.FileBytes{
			FileMeta: a2a.FileMeta{Name: "demo.txt", MimeType: "text/plain"},
			Bytes:    base64.StdEncoding.EncodeToString([]byte(content)),
		}},
		a2a.TextPart{Text: "Please analyze this file content."},
	)
	q := eventqueue.NewInMemoryQueue(64)

	if err := executor.Execute(t.Context(), reqCtx, q); err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	events := drainUntilFinal(t, q)

	want := []string{
		"status:submitted final=false",
		"status:working final=false",
		"artifact:input_file last=false",
		"status:working final=false",
		"status:working final=false",
		"artifact:file_analysis_result last=true",
		"status:completed final=true",
	}
	if diff := cmp.Diff(want, eventSummary(events)); diff != "" {
		t.Errorf("event sequence mismatch (-want +got):\n%s", diff)
	}
	wantAck := fmt.Sprintf("Received file content (%d characters). Processing...", len(content))
	if got := statusText(t, events[1]); got != wantAck {
		t.Errorf("ack text = %q, want %q", got, wantAck)
	}
	if got := artifactText(t, events[2]); got != content {
		t.Errorf("echoed file content = %q, want %q", got, content)
	}
	if got := artifactText(t, events[5]); got != "File analysis complete: insight" {
		t.Errorf("analysis artifact text = %q, want %q", got, "File analysis complete: insight")
	}
	if len(llm.prompts) != 1 || !strings.Contains(llm.prompts[0], content) {
		t.Errorf("prompts = %q, want one prompt carrying the uploaded content", llm.prompts)
	}
}

func TestExecutorExecute_DataFlow(t *testing.T) {
	executor := newTestExecutor(&fakeLLM{chunks: []string{"ok"}})
	form := map[string]any{"name": "John Doe", "email": "john@example.com"}
	reqCtx := newExecutorContext(
		a2a.DataPart{Data: form},
		a2a.TextPart{Text: "Please process this form data"},
	)
	q := eventqueue.NewInMemoryQueue(64)

	if err := executor.Execute(t.Context(), reqCtx, q); err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	events := drainUntilFinal(t, q)

	want := []string{
		"status:submitted final=false",
		"status:working final=false",
		"artifact:input_form_data last=false",
		"status:working final=false",
		"status:working final=false",
		"artifact:form_processing_result last=true",
		"status:completed final=true",
	}
	if diff := cmp.Diff(want, eventSummary(events)); diff != "" {
		t.Errorf("event sequence mismatch (-want +got):\n%s", diff)
	}
	if got := statusText(t, events[1]); got != "Received structured data. Processing form..." {
		t.Errorf("ack text = %q, want data ack", got)
	}
	echo := events[2].(*a2a.TaskArtifactUpdateEvent)
	if len(echo.Artifact.Parts) != 1 {
		t.Fatalf("echo artifact has %d parts, want 1", len(echo.Artifact.Parts))
	}
	data, ok := echo.Artifact.Parts[0].(a2a.DataPart)
	if !ok {
		t.Fatalf("echo part is %T, want a2a.DataPart", echo.Artifact.Parts[0])
	}
	if diff := cmp.Diff(form, data.Data); diff != "" {
		t.Errorf("echoed form mismatch (-want +got):\n%s", diff)
	}
}

func TestExecutorExecute_InputRequired(t *testing.T) {
	executor := newTestExecutor(&fakeLLM{})
	reqCtx := newExecutorContext(a2a.TextPart{Text: "I require details"})
	q := eventqueue.NewInMemoryQueue(64)

	if err := executor.Execute(t.Context(), reqCtx, q); err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	events := drainUntilFinal(t, q)

	last := events[len(events)-1].(*a2a.TaskStatusUpdateEvent)
	if last.Status.State != a2a.TaskStateInputRequired {
		t.Errorf("final state = %v, want %v", last.Status.State, a2a.TaskStateInputRequired)
	}
	if !last.Final {
		t.Error("input-required status is not final")
	}
	if got := statusText(t, last); !strings.Contains(got, "I need additional information") {
		t.Errorf("final message %q does not carry the input request", got)
	}
}

func TestExecutorExecute_InvalidBase64File(t *testing.T) {
	executor := newTestExecutor(&fakeLLM{})
	reqCtx := newExecutorContext(a2a.FilePart{File: a2a.FileBytes{Bytes: "!!!not-base64!!!"}})
	q := eventqueue.NewInMemoryQueue(64)

	err := executor.Execute(t.Context(), reqCtx, q)
	if !errors.Is(err, a2a.ErrInvalidRequest) {
		t.Errorf("Execute() error = %v, want %v", err, a2a.ErrInvalidRequest)
	}
}

func TestExecutorExecute_AgentFailure(t *testing.T) {
	executor := newTestExecutor(&fakeLLM{err: errors.New("model unavailable")})
	reqCtx := newExecutorContext(a2a.TextPart{Text: "hello"})
	q := eventqueue.NewInMemoryQueue(64)

	if err := executor.Execute(t.Context(), reqCtx, q); err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	events := drainUntilFinal(t, q)

	last := events[len(events)-1].(*a2a.TaskStatusUpdateEvent)
	if last.Status.State != a2a.TaskStateFailed {
		t.Errorf("final state = %v, want %v", last.Status.State, a2a.TaskStateFailed)
	}
	if got := statusText(t, last); got != "Processing failed: model unavailable" {
		t.Errorf("failure text = %q, want wrapped model error", got)
	}
}

func TestExecutorExecute_EmptyMessage(t *testing.T) {
	executor := newTestExecutor(&fakeLLM{chunks: []string{"ok"}})
	reqCtx := newExecutorContext()
	q := eventqueue.NewInMemoryQueue(64)

	if err := executor.Execute(t.Context(), reqCtx, q); err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	events := drainUntilFinal(t, q)

	last := events[len(events)-1].(*a2a.TaskStatusUpdateEvent)
	if last.Status.State != a2a.TaskStateCompleted {
		t.Errorf("final state = %v, want %v", last.Status.State, a2a.TaskStateCompleted)
	}
}

func TestExecutorCancel(t *testing.T) {
	tests := []struct {
		name    string
		task    *a2a.Task
		wantErr error
	}{
		{
			name:    "missing task",
			task:    nil,
			wantErr: a2a.ErrTaskNotFound,
		},
		{
			name:    "completed task",
			task:    &a2a.Task{ID: "t1", Status: a2a.TaskStatus{State: a2a.TaskStateCompleted}},
			wantErr: a2a.ErrTaskNotCancelable,
		},
		{
			name:    "failed task",
			task:    &a2a.Task{ID: "t2", Status: a2a.TaskStatus{State: a2a.TaskStateFailed}},
			wantErr: a2a.ErrTaskNotCancelable,
		},
		{
			name:    "already canceled task",
			task:    &a2a.Task{ID: "t3", Status: a2a.TaskStatus{State: a2a.TaskStateCanceled}},
			wantErr: a2a.ErrTaskNotCancelable,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			executor := newTestExecutor(&fakeLLM{})
			reqCtx := newExecutorContext(a2a.TextPart{Text: "cancel"})
			reqCtx.StoredTask = tc.task
			q := eventqueue.NewInMemoryQueue(64)

			if err := executor.Cancel(t.Context(), reqCtx, q); !errors.Is(err, tc.wantErr) {
				t.Errorf("Cancel() error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestExecutorCancel_RunningTask(t *testing.T) {
	executor := newTestExecutor(&fakeLLM{})
	reqCtx := newExecutorContext(a2a.TextPart{Text: "cancel"})
	reqCtx.StoredTask = &a2a.Task{
		ID:        reqCtx.TaskID,
		ContextID: reqCtx.ContextID,
		Status:    a2a.TaskStatus{State: a2a.TaskStateWorking},
	}
	q := eventqueue.NewInMemoryQueue(64)

	if err := executor.Cancel(t.Context(), reqCtx, q); err != nil {
		t.Fatalf("Cancel() failed: %v", err)
	}
	events := drainUntilFinal(t, q)

	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	status := events[0].(*a2a.TaskStatusUpdateEvent)
	if status.Status.State != a2a.TaskStateCanceled {
		t.Errorf("state = %v, want %v", status.Status.State, a2a.TaskStateCanceled)
	}
	if !status.Final {
		t.Error("canceled status is not final")
	}
}
