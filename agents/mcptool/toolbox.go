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

// Package mcptool bridges A2A requests to tools hosted on a Model Context
// Protocol server. The agent understands "list tools" and
// "call <tool> <json-arguments>" queries and relays them over an MCP client
// session.
package mcptool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/MegaGrindStone/go-mcp"
)

// EchoArgs is the argument struct for the echo tool.
type EchoArgs struct {
	Message string `json:"message"`
}

// WordCountArgs is the argument struct for the word_count tool.
type WordCountArgs struct {
	Text string `json:"text"`
}

var echoSchema = []byte(`
  {
    "type": "object",
    "properties": {
      "message": {
        "type": "string"
      }
    },
    "required": ["message"]
  }
`)

var wordCountSchema = []byte(`
  {
    "type": "object",
    "properties": {
      "text": {
        "type": "string"
      }
    },
    "required": ["text"]
  }
`)

var toolList = mcp.ListToolsResult{
	Tools: []mcp.Tool{
		{
			Name:        "echo",
			Description: "Echoes back the provided message.",
			InputSchema: echoSchema,
		},
		{
			Name:        "word_count",
			Description: "Counts the words in the provided text.",
			InputSchema: wordCountSchema,
		},
	},
}

// Toolbox implements the mcp.ToolServer interface with the demo tools the
// agent exposes over A2A.
type Toolbox struct{}

// ListTools implements mcp.ToolServer interface.
func (Toolbox) ListTools(
	context.Context,
	mcp.ListToolsParams,
	mcp.ProgressReporter,
	mcp.RequestClientFunc,
) (mcp.ListToolsResult, error) {
	return toolList, nil
}

// CallTool implements mcp.ToolServer interface.
func (Toolbox) CallTool(
	_ context.Context,
	params mcp.CallToolParams,
	_ mcp.ProgressReporter,
	_ mcp.RequestClientFunc,
) (mcp.CallToolResult, error) {
	switch params.Name {
	case "echo":
		return echo(params)
	case "word_count":
		return wordCount(params)
	default:
		return mcp.CallToolResult{}, fmt.Errorf("tool not found: %s", params.Name)
	}
}

func echo(params mcp.CallToolParams) (mcp.CallToolResult, error) {
	var args EchoArgs
	if err := json.Unmarshal(params.Arguments, &args); err != nil {
		return mcp.CallToolResult{}, err
	}

	return textResult(fmt.Sprintf("Echo: %s", args.Message)), nil
}

func wordCount(params mcp.CallToolParams) (mcp.CallToolResult, error) {
	var args WordCountArgs
	if err := json.Unmarshal(params.Arguments, &args); err != nil {
		return mcp.CallToolResult{}, err
	}

	return textResult(fmt.Sprintf("Word count: %d", len(strings.Fields(args.Text)))), nil
}

func textResult(text string) mcp.CallToolResult {
	return mcp.CallToolResult{
		Content: []mcp.Content{
			{
				Type: mcp.ContentTypeText,
				Text: text,
			},
		},
		IsError: false,
	}
}
