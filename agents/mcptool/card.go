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

import "github.com/a2aproject/a2a-go/a2a"

// BuildAgentCard describes the MCP tool agent served at url.
func BuildAgentCard(url string) *a2a.AgentCard {
	return &a2a.AgentCard{
		Name:               "MCP Tool Agent",
		Description:        "Bridges A2A requests to tools hosted on an in-process Model Context Protocol server.",
		URL:                url,
		Version:            "1.0.0",
		PreferredTransport: a2a.TransportProtocolJSONRPC,
		Capabilities: a2a.AgentCapabilities{
			Streaming: true,
		},
		DefaultInputModes:  []string{"text"},
		DefaultOutputModes: []string{"text", "data"},
		Skills: []a2a.AgentSkill{
			{
				ID:          "list_tools",
				Name:        "List MCP Tools",
				Description: "Lists the tools exposed by the bridged MCP server.",
				Tags:        []string{"mcp", "tools"},
				Examples:    []string{"list tools"},
			},
			{
				ID:          "call_tool",
				Name:        "Call MCP Tool",
				Description: "Invokes a named MCP tool with JSON arguments and returns its text output.",
				Tags:        []string{"mcp", "tools"},
				Examples: []string{
					`call echo {"message": "hello"}`,
					`call word_count {"text": "one two three"}`,
				},
			},
		},
	}
}
