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

import (
	"context"
	"errors"
	"testing"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/google/go-cmp/cmp"

	"github.com/a2aproject/a2a-samples-go/internal/llmclient"
)

// fakeLLM delegates the reply to invoke, which may exercise the offered
// tools the way the model would.
type fakeLLM struct {
	system string
	prompt string
	invoke func(ctx context.Context, tools []llmclient.Tool) (string, error)
}

func (f *fakeLLM) GenerateWithTools(ctx context.Context, system, prompt string, tools []llmclient.Tool) (string, error) {
	f.system, f.prompt = system, prompt
	return f.invoke(ctx, tools)
}

func toolByName(t *testing.T, tools []llmclient.Tool, name string) llmclient.Tool {
	t.Helper()
	for _, tool := range tools {
		if tool.Declaration.Name == name {
			return tool
		}
	}
	t.Fatalf("no tool named %q", name)
	return llmclient.Tool{}
}

func newTestAgent(llm LLM) *Agent {
	return New(llm, WithRequestIDProvider(func() string { return "request_id_1234567" }))
}

func TestProcess_FormRequestNeedsInput(t *testing.T) {
	llm := &fakeLLM{invoke: func(ctx context.Context, tools []llmclient.Tool) (string, error) {
		form, err := toolByName(t, tools, "request_form").Call(ctx, map[string]any{"amount": "$20"})
		if err != nil {
			return "", err
		}
		if form["amount"] != "$20" {
			t.Errorf("form amount = %v, want $20", form["amount"])
		}
		return "Please provide the transaction date and purpose.", nil
	}}
	agent := newTestAgent(llm)

	got, err := agent.Process(t.Context(), "Can you reimburse me $20?")
	if err != nil {
		t.Fatalf("Process() failed: %v", err)
	}

	want := Result{
		State: a2a.TaskStateInputRequired,
		Text:  "Please provide the transaction date and purpose.",
		Data: map[string]any{
			"request_id": "request_id_1234567",
			"date":       PlaceholderDate,
			"amount":     "$20",
			"purpose":    PlaceholderPurpose,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Process() mismatch (-want +got):\n%s", diff)
	}
}

func TestProcess_EmptyFormUsesPlaceholders(t *testing.T) {
	llm := &fakeLLM{invoke: func(ctx context.Context, tools []llmclient.Tool) (string, error) {
		if _, err := toolByName(t, tools, "request_form").Call(ctx, map[string]any{}); err != nil {
			return "", err
		}
		return "Please fill in the form.", nil
	}}
	agent := newTestAgent(llm)

	got, err := agent.Process(t.Context(), "I need a reimbursement")
	if err != nil {
		t.Fatalf("Process() failed: %v", err)
	}

	wantForm := map[string]any{
		"request_id": "request_id_1234567",
		"date":       PlaceholderDate,
		"amount":     PlaceholderAmount,
		"purpose":    PlaceholderPurpose,
	}
	if diff := cmp.Diff(wantForm, got.Data); diff != "" {
		t.Errorf("form mismatch (-want +got):\n%s", diff)
	}
}

func TestProcess_CompleteRequestApproved(t *testing.T) {
	llm := &fakeLLM{invoke: func(ctx context.Context, tools []llmclient.Tool) (string, error) {
		form, err := toolByName(t, tools, "request_form").Call(ctx, map[string]any{
			"date":    "2025-12-01",
			"amount":  "$20",
			"purpose": "Lunch with clients",
		})
		if err != nil {
			return "", err
		}
		approval, err := toolByName(t, tools, "reimburse").Call(ctx, map[string]any{
			"request_id": form["request_id"],
		})
		if err != nil {
			return "", err
		}
		if approval["status"] != "approved" {
			t.Errorf("approval status = %v, want approved", approval["status"])
		}
		return "Your reimbursement has been approved.", nil
	}}
	agent := newTestAgent(llm)

	got, err := agent.Process(t.Context(), "Reimburse $20 for lunch with clients on 2025-12-01")
	if err != nil {
		t.Fatalf("Process() failed: %v", err)
	}

	want := Result{
		State: a2a.TaskStateCompleted,
		Text:  "Your reimbursement has been approved.",
		Data: map[string]any{
			"request_id": "request_id_1234567",
			"status":     "approved",
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Process() mismatch (-want +got):\n%s", diff)
	}
}

func TestProcess_NonReimbursementQuery(t *testing.T) {
	llm := &fakeLLM{invoke: func(context.Context, []llmclient.Tool) (string, error) {
		return "I can only help with reimbursement requests.", nil
	}}
	agent := newTestAgent(llm)

	got, err := agent.Process(t.Context(), "What's the weather like?")
	if err != nil {
		t.Fatalf("Process() failed: %v", err)
	}

	if got.State != a2a.TaskStateCompleted {
		t.Errorf("state = %v, want %v", got.State, a2a.TaskStateCompleted)
	}
	if got.Data != nil {
		t.Errorf("data = %v, want nil for a plain answer", got.Data)
	}
}

func TestProcess_LLMError(t *testing.T) {
	llmErr := errors.New("model unavailable")
	llm := &fakeLLM{invoke: func(context.Context, []llmclient.Tool) (string, error) {
		return "", llmErr
	}}
	agent := newTestAgent(llm)

	if _, err := agent.Process(t.Context(), "Reimburse me"); !errors.Is(err, llmErr) {
		t.Errorf("Process() error = %v, want %v", err, llmErr)
	}
}

func TestRandomRequestIDShape(t *testing.T) {
	agent := New(&fakeLLM{})
	for range 20 {
		id := agent.newRequestID()
		if len(id) != len("request_id_")+7 {
			t.Fatalf("request id %q does not have a 7 digit suffix", id)
		}
	}
}
