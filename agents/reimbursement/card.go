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

package reimbursement

import "github.com/a2aproject/a2a-go/a2a"

// BuildAgentCard describes the reimbursement agent served at url.
func BuildAgentCard(url string) *a2a.AgentCard {
	return &a2a.AgentCard{
		Name:               "Reimbursement Agent",
		Description:        "This agent handles the reimbursement process for the employees given the amount and purpose of the reimbursement.",
		URL:                url,
		Version:            "1.0.0",
		PreferredTransport: a2a.TransportProtocolJSONRPC,
		Capabilities: a2a.AgentCapabilities{
			Streaming: true,
		},
		DefaultInputModes:  []string{"text", "text/plain"},
		DefaultOutputModes: []string{"text", "text/plain"},
		Skills: []a2a.AgentSkill{
			{
				ID:          "process_reimbursement",
				Name:        "Process Reimbursement Tool",
				Description: "Helps with the reimbursement process for users given the amount and purpose of the reimbursement.",
				Tags:        []string{"reimbursement"},
				Examples:    []string{"Can you reimburse me $20 for my lunch with the clients?"},
			},
		},
	}
}
