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

// Package reimbursement implements an expense reimbursement agent. The model
// collects the transaction date, amount and purpose through a request_form
// function call and approves complete requests through a reimburse call; the
// tool activity decides whether a turn completes the task or asks the user to
// fill in the form.
package reimbursement

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/google/generative-ai-go/genai"

	"github.com/a2aproject/a2a-samples-go/internal/llmclient"
)

// Form field placeholders shown to the user for values they still owe.
const (
	PlaceholderDate    = "<transaction date>"
	PlaceholderAmount  = "<transaction dollar amount>"
	PlaceholderPurpose = "<business justification/purpose of the transaction>"
)

// Instruction drives the request_form / reimburse tool protocol.
const Instruction = "You are an agent who handles the reimbursement process for employees. " +
	"When you receive a reimbursement request, first create a request form by calling the " +
	"request_form tool, filling in every value the user already provided and leaving the " +
	"rest at their placeholder defaults. The form has three fields: 'date' is the date of " +
	"the transaction, 'amount' is the dollar amount of the transaction and 'purpose' is the " +
	"business justification for the transaction. After creating the form, ask the user to " +
	"provide the missing fields. Once the user has supplied a valid date, amount and " +
	"purpose, call the reimburse tool with the form's request_id to approve the request and " +
	"confirm the outcome to the user. If the user asks about anything other than " +
	"reimbursements, politely state that you can only help with reimbursement requests."

// LLM runs a function-calling exchange and returns the model's final answer.
type LLM interface {
	GenerateWithTools(ctx context.Context, system, prompt string, tools []llmclient.Tool) (string, error)
}

// Result is the outcome of one reimbursement turn. State is
// a2a.TaskStateInputRequired when the user still owes form fields, in which
// case Data carries the pending form; on completion Data carries the approval
// payload if the request was reimbursed this turn.
type Result struct {
	State a2a.TaskState
	Text  string
	Data  map[string]any
}

// Agent processes reimbursement requests.
type Agent struct {
	llm          LLM
	newRequestID func() string
}

// Option configures an [Agent].
type Option func(*Agent)

// WithRequestIDProvider overrides how form request ids are generated.
func WithRequestIDProvider(f func() string) Option {
	return func(a *Agent) {
		a.newRequestID = f
	}
}

// New creates the agent. The llm must be non-nil.
func New(llm LLM, opts ...Option) *Agent {
	a := &Agent{
		llm:          llm,
		newRequestID: randomRequestID,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Process runs one reimbursement turn for query.
func (a *Agent) Process(ctx context.Context, query string) (Result, error) {
	state := &turnState{}
	text, err := a.llm.GenerateWithTools(ctx, Instruction, query, a.tools(state))
	if err != nil {
		return Result{}, err
	}
	if state.approval != nil {
		return Result{State: a2a.TaskStateCompleted, Text: text, Data: state.approval}, nil
	}
	if state.form != nil {
		return Result{State: a2a.TaskStateInputRequired, Text: text, Data: state.form}, nil
	}
	return Result{State: a2a.TaskStateCompleted, Text: text}, nil
}

// turnState records the tool activity of a single Process call.
type turnState struct {
	form     map[string]any
	approval map[string]any
}

func (a *Agent) tools(state *turnState) []llmclient.Tool {
	return []llmclient.Tool{
		{
			Declaration: &genai.FunctionDeclaration{
				Name: "request_form",
				Description: "Create a reimbursement request form recording the transaction date, " +
					"amount and purpose. Omitted fields keep a placeholder the user must fill in.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"date": {
							Type:        genai.TypeString,
							Description: "The date of the transaction.",
						},
						"amount": {
							Type:        genai.TypeString,
							Description: "The dollar amount of the transaction.",
						},
						"purpose": {
							Type:        genai.TypeString,
							Description: "The business justification for the transaction.",
						},
					},
				},
			},
			Call: func(ctx context.Context, args map[string]any) (map[string]any, error) {
				form := map[string]any{
					"request_id": a.newRequestID(),
					"date":       fieldOrPlaceholder(args, "date", PlaceholderDate),
					"amount":     fieldOrPlaceholder(args, "amount", PlaceholderAmount),
					"purpose":    fieldOrPlaceholder(args, "purpose", PlaceholderPurpose),
				}
				state.form = form
				return form, nil
			},
		},
		{
			Declaration: &genai.FunctionDeclaration{
				Name:        "reimburse",
				Description: "Approve the reimbursement request identified by request_id.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"request_id": {
							Type:        genai.TypeString,
							Description: "The id of the reimbursement request form.",
						},
					},
					Required: []string{"request_id"},
				},
			},
			Call: func(ctx context.Context, args map[string]any) (map[string]any, error) {
				requestID, _ := args["request_id"].(string)
				approval := map[string]any{
					"request_id": requestID,
					"status":     "approved",
				}
				state.approval = approval
				return approval, nil
			},
		},
	}
}

func fieldOrPlaceholder(args map[string]any, key, placeholder string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return placeholder
}

func randomRequestID() string {
	return fmt.Sprintf("request_id_%d", rand.IntN(9000000)+1000000)
}
