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
	"encoding/json"
	"testing"

	"github.com/MegaGrindStone/go-mcp"
	"github.com/google/go-cmp/cmp"
)

func TestToolboxListTools(t *testing.T) {
	res, err := Toolbox{}.ListTools(t.Context(), mcp.ListToolsParams{}, nil, nil)
	if err != nil {
		t.Fatalf("ListTools() failed: %v", err)
	}

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
		if tool.Description == "" {
			t.Errorf("tool %s has no description", tool.Name)
		}
		if !json.Valid(tool.InputSchema) {
			t.Errorf("tool %s input schema is not valid JSON", tool.Name)
		}
	}
	if diff := cmp.Diff([]string{"echo", "word_count"}, names); diff != "" {
		t.Errorf("tool names mismatch (-want +got):\n%s", diff)
	}
}

func TestToolboxCallTool(t *testing.T) {
	tests := []struct {
		name   string
		params mcp.CallToolParams
		want   string
	}{
		{
			name:   "echo",
			params: mcp.CallToolParams{Name: "echo", Arguments: json.RawMessage(`{"message": "hello"}`)},
			want:   "Echo: hello",
		},
		{
			name:   "word count",
			params: mcp.CallToolParams{Name: "word_count", Arguments: json.RawMessage(`{"text": "one two  three"}`)},
			want:   "Word count: 3",
		},
		{
			name:   "word count of empty text",
			params: mcp.CallToolParams{Name: "word_count", Arguments: json.RawMessage(`{}`)},
			want:   "Word count: 0",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Toolbox{}.CallTool(t.Context(), tt.params, nil, nil)
			if err != nil {
				t.Fatalf("CallTool() failed: %v", err)
			}
			want := mcp.CallToolResult{Content: []mcp.Content{{Type: mcp.ContentTypeText, Text: tt.want}}}
			if diff := cmp.Diff(want, res); diff != "" {
				t.Errorf("CallTool() result mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestToolboxCallToolErrors(t *testing.T) {
	tests := []struct {
		name   string
		params mcp.CallToolParams
	}{
		{
			name:   "unknown tool",
			params: mcp.CallToolParams{Name: "missing", Arguments: json.RawMessage(`{}`)},
		},
		{
			name:   "malformed arguments",
			params: mcp.CallToolParams{Name: "echo", Arguments: json.RawMessage(`"not an object"`)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := (Toolbox{}).CallTool(t.Context(), tt.params, nil, nil); err == nil {
				t.Fatal("CallTool() succeeded, want error")
			}
		})
	}
}

func TestDialInProcess(t *testing.T) {
	conn, err := DialInProcess(t.Context())
	if err != nil {
		t.Fatalf("DialInProcess() failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	list, err := conn.ListTools(t.Context(), mcp.ListToolsParams{})
	if err != nil {
		t.Fatalf("ListTools() failed: %v", err)
	}
	if len(list.Tools) != 2 {
		t.Fatalf("got %d tools, want 2", len(list.Tools))
	}

	res, err := conn.CallTool(t.Context(), mcp.CallToolParams{
		Name:      "echo",
		Arguments: json.RawMessage(`{"message": "over the wire"}`),
	})
	if err != nil {
		t.Fatalf("CallTool() failed: %v", err)
	}
	if len(res.Content) != 1 || res.Content[0].Text != "Echo: over the wire" {
		t.Errorf("CallTool() result = %+v, want a single 'Echo: over the wire' text content", res)
	}

	if _, err := conn.CallTool(t.Context(), mcp.CallToolParams{
		Name:      "missing",
		Arguments: json.RawMessage(`{}`),
	}); err == nil {
		t.Fatal("CallTool() with unknown tool succeeded, want error")
	}
}
