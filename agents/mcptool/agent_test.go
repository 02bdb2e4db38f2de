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
	"errors"
	"testing"

	"github.com/MegaGrindStone/go-mcp"
	"github.com/a2aproject/a2a-go/a2a"
	"github.com/google/go-cmp/cmp"
)

type fakeToolClient struct {
	listResult mcp.ListToolsResult
	listErr    error
	callResult mcp.CallToolResult
	callErr    error

	gotCall *mcp.CallToolParams
}

func (f *fakeToolClient) ListTools(context.Context, mcp.ListToolsParams) (mcp.ListToolsResult, error) {
	return f.listResult, f.listErr
}

func (f *fakeToolClient) CallTool(_ context.Context, params mcp.CallToolParams) (mcp.CallToolResult, error) {
	f.gotCall = &params
	return f.callResult, f.callErr
}

func textToolResult(text string) mcp.CallToolResult {
	return mcp.CallToolResult{Content: []mcp.Content{{Type: mcp.ContentTypeText, Text: text}}}
}

func TestAgentProcess_ListTools(t *testing.T) {
	client := &fakeToolClient{listResult: mcp.ListToolsResult{Tools: []mcp.Tool{
		{Name: "echo", Description: "Echoes back the provided message."},
		{Name: "word_count", Description: "Counts the words in the provided text."},
	}}}

	got, err := New(client).Process(t.Context(), "Please list tools")
	if err != nil {
		t.Fatalf("Process() failed: %v", err)
	}

	want := Result{
		State: a2a.TaskStateCompleted,
		Text:  "Available tools: echo, word_count",
		Data: map[string]any{"tools": []any{
			map[string]any{"name": "echo", "description": "Echoes back the provided message."},
			map[string]any{"name": "word_count", "description": "Counts the words in the provided text."},
		}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Process() result mismatch (-want +got):\n%s", diff)
	}
}

func TestAgentProcess_ListToolsError(t *testing.T) {
	listErr := errors.New("transport broken")
	client := &fakeToolClient{listErr: listErr}

	if _, err := New(client).Process(t.Context(), "list tools"); !errors.Is(err, listErr) {
		t.Fatalf("Process() error = %v, want wrapped %v", err, listErr)
	}
}

func TestAgentProcess_CallTool(t *testing.T) {
	client := &fakeToolClient{callResult: textToolResult("Echo: hi")}

	got, err := New(client).Process(t.Context(), `call echo {"message": "hi there"}`)
	if err != nil {
		t.Fatalf("Process() failed: %v", err)
	}

	if client.gotCall == nil {
		t.Fatal("CallTool was not invoked")
	}
	if client.gotCall.Name != "echo" {
		t.Errorf("tool name = %q, want echo", client.gotCall.Name)
	}
	if string(client.gotCall.Arguments) != `{"message": "hi there"}` {
		t.Errorf("tool arguments = %s, want the raw JSON object", client.gotCall.Arguments)
	}
	want := Result{State: a2a.TaskStateCompleted, Text: "Echo: hi"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Process() result mismatch (-want +got):\n%s", diff)
	}
}

func TestAgentProcess_CallToolDefaultsEmptyArguments(t *testing.T) {
	client := &fakeToolClient{callResult: textToolResult("Word count: 0")}

	if _, err := New(client).Process(t.Context(), "call word_count"); err != nil {
		t.Fatalf("Process() failed: %v", err)
	}
	if client.gotCall == nil {
		t.Fatal("CallTool was not invoked")
	}
	if string(client.gotCall.Arguments) != "{}" {
		t.Errorf("tool arguments = %s, want {}", client.gotCall.Arguments)
	}
}

func TestAgentProcess_CallToolInvalidArguments(t *testing.T) {
	client := &fakeToolClient{}

	_, err := New(client).Process(t.Context(), "call echo not-json")
	if !errors.Is(err, a2a.ErrInvalidRequest) {
		t.Fatalf("Process() error = %v, want %v", err, a2a.ErrInvalidRequest)
	}
	if client.gotCall != nil {
		t.Error("CallTool was invoked despite malformed arguments")
	}
}

func TestAgentProcess_CallToolError(t *testing.T) {
	callErr := errors.New("tool not found: missing")
	client := &fakeToolClient{callErr: callErr}

	if _, err := New(client).Process(t.Context(), "call missing {}"); !errors.Is(err, callErr) {
		t.Fatalf("Process() error = %v, want wrapped %v", err, callErr)
	}
}

func TestAgentProcess_CallToolIsError(t *testing.T) {
	client := &fakeToolClient{callResult: mcp.CallToolResult{
		Content: []mcp.Content{{Type: mcp.ContentTypeText, Text: "tool blew up"}},
		IsError: true,
	}}

	got, err := New(client).Process(t.Context(), "call echo {}")
	if err != nil {
		t.Fatalf("Process() failed: %v", err)
	}
	want := Result{State: a2a.TaskStateFailed, Text: "tool blew up"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Process() result mismatch (-want +got):\n%s", diff)
	}
}

func TestAgentProcess_FiltersNonTextContent(t *testing.T) {
	client := &fakeToolClient{callResult: mcp.CallToolResult{Content: []mcp.Content{
		{Type: mcp.ContentTypeText, Text: "first"},
		{Type: mcp.ContentTypeImage, Data: "aGk=", MimeType: "image/png"},
		{Type: mcp.ContentTypeText, Text: "second"},
	}}}

	got, err := New(client).Process(t.Context(), "call echo {}")
	if err != nil {
		t.Fatalf("Process() failed: %v", err)
	}
	if got.Text != "first\nsecond" {
		t.Errorf("Process() text = %q, want the text contents joined", got.Text)
	}
}

func TestAgentProcess_Usage(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{name: "free-form question", query: "What can you do?"},
		{name: "bare call keyword", query: "call"},
		{name: "empty query", query: "  "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeToolClient{}
			got, err := New(client).Process(t.Context(), tt.query)
			if err != nil {
				t.Fatalf("Process() failed: %v", err)
			}
			want := Result{State: a2a.TaskStateInputRequired, Text: UsageText}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("Process() result mismatch (-want +got):\n%s", diff)
			}
			if client.gotCall != nil {
				t.Error("CallTool was invoked for a usage query")
			}
		})
	}
}
