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

import "github.com/a2aproject/a2a-go/a2a"

// BuildAgentCard describes the agent served at url, advertising one skill
// per demonstration scenario.
func BuildAgentCard(url string) *a2a.AgentCard {
	return &a2a.AgentCard{
		Name:               "Enhanced A2A Protocol Agent",
		Description:        "A comprehensive A2A protocol demonstration agent that showcases all communication types, task states, content types, and protocol features including streaming, push notifications, error handling, and more.",
		URL:                url,
		Version:            "2.0.0",
		PreferredTransport: a2a.TransportProtocolJSONRPC,
		Capabilities: a2a.AgentCapabilities{
			Streaming:              true,
			PushNotifications:      true,
			StateTransitionHistory: true,
		},
		DefaultInputModes:  []string{"text", "file", "data"},
		DefaultOutputModes: []string{"text", "file", "data"},
		Skills: []a2a.AgentSkill{
			{
				ID:          "text_processing",
				Name:        "Text Processing",
				Description: "Process and respond to text-based queries with comprehensive A2A protocol support.",
				Tags:        []string{"text", "A2A", "protocol"},
				Examples: []string{
					"What is A2A protocol?",
					"Explain the benefits of agent communication.",
				},
			},
			{
				ID:          "file_analysis",
				Name:        "File Analysis",
				Description: "Analyze uploaded files and provide insights with file handling capabilities.",
				Tags:        []string{"file", "analysis", "upload"},
				Examples: []string{
					"Analyze this document",
					"Process this file content",
				},
			},
			{
				ID:          "form_processing",
				Name:        "Form Processing",
				Description: "Process structured data and forms with DataPart support.",
				Tags:        []string{"form", "data", "structured"},
				Examples: []string{
					"Process this form data",
					"Handle structured input",
				},
			},
			{
				ID:          "error_demonstration",
				Name:        "Error Demonstration",
				Description: "Demonstrate various error scenarios and handling.",
				Tags:        []string{"error", "handling", "demo"},
				Examples: []string{
					"Demonstrate an error",
					"Show error handling",
				},
			},
			{
				ID:          "long_running_tasks",
				Name:        "Long Running Tasks",
				Description: "Demonstrate long-running tasks with progress updates.",
				Tags:        []string{"long-running", "progress", "streaming"},
				Examples: []string{
					"Run a long task",
					"Show progress updates",
				},
			},
			{
				ID:          "input_requirements",
				Name:        "Input Requirements",
				Description: "Demonstrate input-required states and user interaction.",
				Tags:        []string{"input", "interaction", "user"},
				Examples: []string{
					"Request additional input",
					"Ask for more information",
				},
			},
			{
				ID:          "task_cancellation",
				Name:        "Task Cancellation",
				Description: "Demonstrate task cancellation capabilities.",
				Tags:        []string{"cancel", "termination", "control"},
				Examples: []string{
					"Cancel this task",
					"Stop processing",
				},
			},
		},
	}
}
