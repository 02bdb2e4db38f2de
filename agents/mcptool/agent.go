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
	"encoding/json"
	"fmt"
	"strings"

	"github.com/MegaGrindStone/go-mcp"
	"github.com/a2aproject/a2a-go/a2a"
)

// ToolClient is the subset of the MCP client surface the agent relies on.
// *Conn satisfies it.
type ToolClient interface {
	ListTools(ctx context.Context, params mcp.ListToolsParams) (mcp.ListToolsResult, error)
	CallTool(ctx context.Context, params mcp.CallToolParams) (mcp.CallToolResult, error)
}

// Result is the outcome of one processed query. Data carries the tool
// descriptors for listing queries and is nil otherwise.
type Result struct {
	State a2a.TaskState
	Text  string
	Data  map[string]any
}

// UsageText is returned for queries the agent cannot map to a tool operation.
const UsageText = "Try 'list tools' to see the available tools, or 'call <tool> <json-arguments>' to invoke one."

const callPrefix = "call "

// Agent relays user queries to an MCP tool server.
type Agent struct {
	tools ToolClient
}

// New creates an agent backed by the given tool session.
func New(tools ToolClient) *Agent {
	return &Agent{tools: tools}
}

// Process answers a single user query against the tool server.
func (a *Agent) Process(ctx context.Context, query string) (Result, error) {
	trimmed := strings.TrimSpace(query)
	switch {
	case strings.Contains(strings.ToLower(trimmed), "list tools"):
		return a.listTools(ctx)
	case len(trimmed) > len(callPrefix) && strings.EqualFold(trimmed[:len(callPrefix)], callPrefix):
		return a.callTool(ctx, trimmed[len(callPrefix):])
	default:
		return Result{State: a2a.TaskStateInputRequired, Text: UsageText}, nil
	}
}

func (a *Agent) listTools(ctx context.Context) (Result, error) {
	res, err := a.tools.ListTools(ctx, mcp.ListToolsParams{})
	if err != nil {
		return Result{}, fmt.Errorf("failed to list tools: %w", err)
	}

	names := make([]string, 0, len(res.Tools))
	descriptors := make([]any, 0, len(res.Tools))
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
		descriptors = append(descriptors, map[string]any{
			"name":        tool.Name,
			"description": tool.Description,
		})
	}

	return Result{
		State: a2a.TaskStateCompleted,
		Text:  "Available tools: " + strings.Join(names, ", "),
		Data:  map[string]any{"tools": descriptors},
	}, nil
}

func (a *Agent) callTool(ctx context.Context, rest string) (Result, error) {
	name, rawArgs, _ := strings.Cut(strings.TrimSpace(rest), " ")
	if name == "" {
		return Result{State: a2a.TaskStateInputRequired, Text: UsageText}, nil
	}
	rawArgs = strings.TrimSpace(rawArgs)
	if rawArgs == "" {
		rawArgs = "{}"
	}
	if !json.Valid([]byte(rawArgs)) {
		return Result{}, fmt.Errorf("%w: tool arguments are not valid JSON", a2a.ErrInvalidRequest)
	}

	res, err := a.tools.CallTool(ctx, mcp.CallToolParams{Name: name, Arguments: json.RawMessage(rawArgs)})
	if err != nil {
		return Result{}, fmt.Errorf("failed to call tool %q: %w", name, err)
	}

	var texts []string
	for _, content := range res.Content {
		if content.Type == mcp.ContentTypeText {
			texts = append(texts, content.Text)
		}
	}
	state := a2a.TaskStateCompleted
	if res.IsError {
		state = a2a.TaskStateFailed
	}
	return Result{State: state, Text: strings.Join(texts, "\n")}, nil
}
