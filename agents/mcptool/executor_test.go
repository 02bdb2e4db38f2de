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
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/MegaGrindStone/go-mcp"
	"github.com/a2aproject/a2a-go/a2a"
	"github.com/a2aproject/a2a-go/a2asrv"
	"github.com/a2aproject/a2a-go/a2asrv/eventqueue"
	"github.com/google/go-cmp/cmp"
)

func newExecutorContext(parts ...a2a.Part) *a2asrv.RequestContext {
	return &a2asrv.RequestContext{
		TaskID:    a2a.NewTaskID(),
		ContextID: "ctx-mcptool",
		Message:   a2a.NewMessage(a2a.MessageRoleUser, parts...),
	}
}

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

func finalStatusText(t *testing.T, events []a2a.Event) string {
	t.Helper()
	final, ok := events[len(events)-1].(*a2a.TaskStatusUpdateEvent)
	if !ok {
		t.Fatalf("last event is %T, want status update", events[len(events)-1])
	}
	if final.Status.Message == nil {
		t.Fatal("final status has no message")
	}
	var texts []string
	for _, part := range final.Status.Message.Parts {
		if p, ok := part.(a2a.TextPart); ok {
			texts = append(texts, p.Text)
		}
	}
	return strings.Join(texts, "\n")
}

func TestExecutorExecute_ListToolsFlow(t *testing.T) {
	client := &fakeToolClient{listResult: toolList}
	executor := NewExecutor(New(client))
	reqCtx := newExecutorContext(a2a.TextPart{Text: "list tools"})
	q := eventqueue.NewInMemoryQueue(16)

	if err := executor.Execute(t.Context(), reqCtx, q); err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	events := drainUntilFinal(t, q)

	want := []string{
		"status:submitted final=false",
		"status:working final=false",
		"artifact:tool_catalog last=true",
		"status:completed final=true",
	}
	if diff := cmp.Diff(want, eventSummary(events)); diff != "" {
		t.Errorf("event sequence mismatch (-want +got):\n%s", diff)
	}

	artifact := events[2].(*a2a.TaskArtifactUpdateEvent)
	if artifact.Artifact.Description != toolCatalogArtifact.description {
		t.Errorf("artifact description = %q, want %q", artifact.Artifact.Description, toolCatalogArtifact.description)
	}
	var data map[string]any
	for _, part := range artifact.Artifact.Parts {
		if p, ok := part.(a2a.DataPart); ok {
			data = p.Data
		}
	}
	if data == nil {
		t.Fatal("tool_catalog artifact carries no data part")
	}
	descriptors, ok := data["tools"].([]any)
	if !ok || len(descriptors) != 2 {
		t.Errorf("catalog data = %v, want two tool descriptors", data)
	}
}

func TestExecutorExecute_CallFlow(t *testing.T) {
	client := &fakeToolClient{callResult: textToolResult("Echo: hello")}
	executor := NewExecutor(New(client))
	reqCtx := newExecutorContext(a2a.TextPart{Text: `call echo {"message": "hello"}`})
	q := eventqueue.NewInMemoryQueue(16)

	if err := executor.Execute(t.Context(), reqCtx, q); err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	events := drainUntilFinal(t, q)

	want := []string{
		"status:submitted final=false",
		"status:working final=false",
		"artifact:tool_result last=true",
		"status:completed final=true",
	}
	if diff := cmp.Diff(want, eventSummary(events)); diff != "" {
		t.Errorf("event sequence mismatch (-want +got):\n%s", diff)
	}

	artifact := events[2].(*a2a.TaskArtifactUpdateEvent)
	if len(artifact.Artifact.Parts) != 1 {
		t.Fatalf("artifact has %d parts, want 1", len(artifact.Artifact.Parts))
	}
	if text := artifact.Artifact.Parts[0].(a2a.TextPart).Text; text != "Echo: hello" {
		t.Errorf("artifact text = %q, want the tool output", text)
	}
}

func TestExecutorExecute_SkipsSubmittedForStoredTask(t *testing.T) {
	client := &fakeToolClient{callResult: textToolResult("Echo: again")}
	executor := NewExecutor(New(client))
	reqCtx := newExecutorContext(a2a.TextPart{Text: "call echo {}"})
	reqCtx.StoredTask = &a2a.Task{
		ID:     reqCtx.TaskID,
		Status: a2a.TaskStatus{State: a2a.TaskStateInputRequired},
	}
	q := eventqueue.NewInMemoryQueue(16)

	if err := executor.Execute(t.Context(), reqCtx, q); err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	events := drainUntilFinal(t, q)

	if summary := eventSummary(events); summary[0] != "status:working final=false" {
		t.Errorf("first event = %s, want the working status", summary[0])
	}
}

func TestExecutorExecute_UnknownToolFails(t *testing.T) {
	client := &fakeToolClient{callErr: errors.New("tool not found: missing")}
	executor := NewExecutor(New(client))
	reqCtx := newExecutorContext(a2a.TextPart{Text: "call missing {}"})
	q := eventqueue.NewInMemoryQueue(16)

	if err := executor.Execute(t.Context(), reqCtx, q); err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	events := drainUntilFinal(t, q)

	want := []string{
		"status:submitted final=false",
		"status:working final=false",
		"status:failed final=true",
	}
	if diff := cmp.Diff(want, eventSummary(events)); diff != "" {
		t.Errorf("event sequence mismatch (-want +got):\n%s", diff)
	}
	if text := finalStatusText(t, events); !strings.Contains(text, "Processing failed: ") || !strings.Contains(text, "tool not found: missing") {
		t.Errorf("failed status text = %q, want the wrapped tool error", text)
	}
}

func TestExecutorExecute_ToolErrorResultFails(t *testing.T) {
	client := &fakeToolClient{callResult: mcp.CallToolResult{
		Content: []mcp.Content{{Type: mcp.ContentTypeText, Text: "tool blew up"}},
		IsError: true,
	}}
	executor := NewExecutor(New(client))
	reqCtx := newExecutorContext(a2a.TextPart{Text: "call echo {}"})
	q := eventqueue.NewInMemoryQueue(16)

	if err := executor.Execute(t.Context(), reqCtx, q); err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	events := drainUntilFinal(t, q)

	if text := finalStatusText(t, events); text != "tool blew up" {
		t.Errorf("failed status text = %q, want the tool error content", text)
	}
	final := events[len(events)-1].(*a2a.TaskStatusUpdateEvent)
	if final.Status.State != a2a.TaskStateFailed {
		t.Errorf("final state = %s, want %s", final.Status.State, a2a.TaskStateFailed)
	}
}

func TestExecutorExecute_UsageForUnrecognizedQuery(t *testing.T) {
	client := &fakeToolClient{}
	executor := NewExecutor(New(client))
	reqCtx := newExecutorContext(a2a.TextPart{Text: "What can you do?"})
	q := eventqueue.NewInMemoryQueue(16)

	if err := executor.Execute(t.Context(), reqCtx, q); err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	events := drainUntilFinal(t, q)

	final := events[len(events)-1].(*a2a.TaskStatusUpdateEvent)
	if final.Status.State != a2a.TaskStateInputRequired {
		t.Errorf("final state = %s, want %s", final.Status.State, a2a.TaskStateInputRequired)
	}
	if text := finalStatusText(t, events); text != UsageText {
		t.Errorf("input-required text = %q, want the usage text", text)
	}
}

func TestExecutorExecute_MalformedArgumentsFail(t *testing.T) {
	client := &fakeToolClient{}
	executor := NewExecutor(New(client))
	reqCtx := newExecutorContext(a2a.TextPart{Text: "call echo not-json"})
	q := eventqueue.NewInMemoryQueue(16)

	if err := executor.Execute(t.Context(), reqCtx, q); err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	events := drainUntilFinal(t, q)

	final := events[len(events)-1].(*a2a.TaskStatusUpdateEvent)
	if final.Status.State != a2a.TaskStateFailed {
		t.Errorf("final state = %s, want %s", final.Status.State, a2a.TaskStateFailed)
	}
	if client.gotCall != nil {
		t.Error("CallTool was invoked despite malformed arguments")
	}
}

func TestExecutorCancel(t *testing.T) {
	tests := []struct {
		name    string
		task    *a2a.Task
		wantErr error
	}{
		{name: "missing task", task: nil, wantErr: a2a.ErrTaskNotFound},
		{
			name:    "completed task",
			task:    &a2a.Task{Status: a2a.TaskStatus{State: a2a.TaskStateCompleted}},
			wantErr: a2a.ErrTaskNotCancelable,
		},
		{
			name:    "failed task",
			task:    &a2a.Task{Status: a2a.TaskStatus{State: a2a.TaskStateFailed}},
			wantErr: a2a.ErrTaskNotCancelable,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			executor := NewExecutor(New(&fakeToolClient{}))
			reqCtx := newExecutorContext()
			reqCtx.StoredTask = tt.task
			q := eventqueue.NewInMemoryQueue(16)

			if err := executor.Cancel(t.Context(), reqCtx, q); !errors.Is(err, tt.wantErr) {
				t.Errorf("Cancel() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestExecutorCancel_RunningTask(t *testing.T) {
	executor := NewExecutor(New(&fakeToolClient{}))
	reqCtx := newExecutorContext()
	reqCtx.StoredTask = &a2a.Task{
		ID:     reqCtx.TaskID,
		Status: a2a.TaskStatus{State: a2a.TaskStateWorking},
	}
	q := eventqueue.NewInMemoryQueue(16)

	if err := executor.Cancel(t.Context(), reqCtx, q); err != nil {
		t.Fatalf("Cancel() failed: %v", err)
	}
	events := drainUntilFinal(t, q)

	want := []string{"status:canceled final=true"}
	if diff := cmp.Diff(want, eventSummary(events)); diff != "" {
		t.Errorf("event sequence mismatch (-want +got):\n%s", diff)
	}
}
