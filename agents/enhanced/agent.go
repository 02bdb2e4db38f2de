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

// Package enhanced implements a demonstration agent that exercises the full
// A2A protocol surface: every task state, every content part kind, artifact
// generation, streaming progress updates and cancellation. Queries are
// routed by keyword to scenario-specific flows so a client can trigger each
// protocol feature on demand.
package enhanced

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/a2aproject/a2a-go/a2a"
)

// SimulatedFileContent is used when a query asks for the file scenario
// without attaching a real file.
const SimulatedFileContent = "This is a sample file content for demonstration purposes."

// fallbackResponse replaces model output when no LLM is configured, keeping
// every scenario runnable without credentials.
const fallbackResponse = "Language model access is not configured, so this is a canned demo response. Set GOOGLE_API_KEY to enable generated answers."

var progressSteps = []string{
	"Initializing task...",
	"Gathering information...",
	"Processing data...",
	"Analyzing results...",
	"Generating report...",
	"Finalizing output...",
}

// LLM produces streamed model output for a prompt.
type LLM interface {
	GenerateStream(ctx context.Context, system, prompt string) iter.Seq2[string, error]
}

// Update is one chunk of agent output. The state tells the executor how to
// translate the chunk into protocol events: working updates become progress
// status events, completed updates become the final artifact, and the other
// states terminate the task.
type Update struct {
	State   a2a.TaskState
	Content string
}

// Agent routes queries to protocol demonstration scenarios.
type Agent struct {
	llm           LLM
	stepDelay     time.Duration
	progressDelay time.Duration
}

// Option configures an [Agent].
type Option func(*Agent)

// WithStepDelay overrides the pause between scenario steps.
func WithStepDelay(d time.Duration) Option {
	return func(a *Agent) {
		a.stepDelay = d
	}
}

// WithProgressDelay overrides the pause between long-running task steps.
func WithProgressDelay(d time.Duration) Option {
	return func(a *Agent) {
		a.progressDelay = d
	}
}

// New creates the agent. A nil llm is allowed: scenarios then substitute a
// canned response for model output.
func New(llm LLM, opts ...Option) *Agent {
	a := &Agent{
		llm:           llm,
		stepDelay:     500 * time.Millisecond,
		progressDelay: time.Second,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Stream routes the query to a scenario by keyword and yields its updates.
// Iteration stops at the first error.
func (a *Agent) Stream(ctx context.Context, query string) iter.Seq2[Update, error] {
	q := strings.ToLower(query)
	switch {
	case strings.Contains(q, "error") || strings.Contains(q, "fail"):
		return a.errorScenario(ctx, query)
	case strings.Contains(q, "cancel") || strings.Contains(q, "stop"):
		return a.cancellationScenario(ctx, query)
	case strings.Contains(q, "input") || strings.Contains(q, "require"):
		return a.inputRequiredScenario(ctx, query)
	case strings.Contains(q, "long") || strings.Contains(q, "progress"):
		return a.longRunningScenario(ctx, query)
	case strings.Contains(q, "file"):
		return a.ProcessFile(ctx, SimulatedFileContent, query)
	case strings.Contains(q, "form") || strings.Contains(q, "data"):
		return a.ProcessData(ctx, demoFormData(), query)
	default:
		return a.textScenario(ctx, query)
	}
}

// ProcessFile analyzes file content and yields progress plus the final
// analysis.
func (a *Agent) ProcessFile(ctx context.Context, fileContent, query string) iter.Seq2[Update, error] {
	return func(yield func(Update, error) bool) {
		if !yield(working("Analyzing file content..."), nil) {
			return
		}
		if !a.pause(ctx, a.stepDelay, yield) {
			return
		}
		prompt := fmt.Sprintf(
			"Please analyze this file content and provide insights:\n\nFile content:\n%s\n\nUser request: %s",
			fileContent, query,
		)
		response, ok := a.relayModelOutput(ctx, prompt, yield)
		if !ok {
			return
		}
		yield(Update{State: a2a.TaskStateCompleted, Content: "File analysis complete: " + response}, nil)
	}
}

// ProcessData processes structured form data and yields progress plus the
// final result.
func (a *Agent) ProcessData(ctx context.Context, data map[string]any, query string) iter.Seq2[Update, error] {
	return func(yield func(Update, error) bool) {
		if !yield(working("Processing form data..."), nil) {
			return
		}
		if !a.pause(ctx, a.stepDelay, yield) {
			return
		}
		encoded, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			yield(Update{}, fmt.Errorf("failed to encode form data: %w", err))
			return
		}
		prompt := fmt.Sprintf(
			"Please process this form data: Form data received:\n%s\n\nUser request: %s",
			encoded, query,
		)
		response, ok := a.relayModelOutput(ctx, prompt, yield)
		if !ok {
			return
		}
		yield(Update{State: a2a.TaskStateCompleted, Content: "Form processing complete: " + response}, nil)
	}
}

func (a *Agent) textScenario(ctx context.Context, query string) iter.Seq2[Update, error] {
	return func(yield func(Update, error) bool) {
		if !yield(working("Starting to process: "+query), nil) {
			return
		}
		if !a.pause(ctx, a.stepDelay, yield) {
			return
		}
		response, ok := a.relayModelOutput(ctx, "Please provide a helpful response to: "+query, yield)
		if !ok {
			return
		}
		yield(Update{State: a2a.TaskStateCompleted, Content: "Final response: " + response}, nil)
	}
}

func (a *Agent) longRunningScenario(ctx context.Context, query string) iter.Seq2[Update, error] {
	return func(yield func(Update, error) bool) {
		for i, step := range progressSteps {
			if !yield(working(fmt.Sprintf("Step %d/%d: %s", i+1, len(progressSteps), step)), nil) {
				return
			}
			if !a.pause(ctx, a.progressDelay, yield) {
				return
			}
		}
		response, ok := a.relayModelOutput(ctx, "Please provide a comprehensive response to: "+query, yield)
		if !ok {
			return
		}
		yield(Update{State: a2a.TaskStateCompleted, Content: "Long-running task completed: " + response}, nil)
	}
}

func (a *Agent) inputRequiredScenario(ctx context.Context, query string) iter.Seq2[Update, error] {
	return func(yield func(Update, error) bool) {
		if !yield(working("Processing your request: "+query), nil) {
			return
		}
		if !a.pause(ctx, a.stepDelay, yield) {
			return
		}
		yield(Update{
			State:   a2a.TaskStateInputRequired,
			Content: "I need additional information to complete this task. Please provide: 1) Your preferred timezone, 2) Your budget range, 3) Any specific requirements.",
		}, nil)
	}
}

func (a *Agent) errorScenario(ctx context.Context, query string) iter.Seq2[Update, error] {
	return func(yield func(Update, error) bool) {
		if !yield(working("Starting to process: "+query), nil) {
			return
		}
		if !a.pause(ctx, a.stepDelay, yield) {
			return
		}
		yield(Update{
			State:   a2a.TaskStateFailed,
			Content: "Encountered an error while processing the request. The requested service is temporarily unavailable.",
		}, nil)
	}
}

func (a *Agent) cancellationScenario(ctx context.Context, query string) iter.Seq2[Update, error] {
	return func(yield func(Update, error) bool) {
		if !yield(working("Starting to process: "+query), nil) {
			return
		}
		if !a.pause(ctx, a.stepDelay, yield) {
			return
		}
		if !yield(working("Task is being processed..."), nil) {
			return
		}
		if !a.pause(ctx, a.stepDelay, yield) {
			return
		}
		yield(Update{State: a2a.TaskStateCanceled, Content: "Task has been cancelled by the user."}, nil)
	}
}

// relayModelOutput streams model chunks as working updates and returns the
// accumulated response. A false result means iteration should stop.
func (a *Agent) relayModelOutput(ctx context.Context, prompt string, yield func(Update, error) bool) (string, bool) {
	var response strings.Builder
	for chunk, err := range a.generate(ctx, prompt) {
		if err != nil {
			yield(Update{}, err)
			return "", false
		}
		response.WriteString(chunk)
		if !yield(working(chunk), nil) {
			return "", false
		}
	}
	return response.String(), true
}

func (a *Agent) generate(ctx context.Context, prompt string) iter.Seq2[string, error] {
	if a.llm == nil {
		return func(yield func(string, error) bool) {
			yield(fallbackResponse, nil)
		}
	}
	return a.llm.GenerateStream(ctx, "", prompt)
}

// pause sleeps for d respecting cancellation. A false result means the
// context was canceled and its error yielded.
func (a *Agent) pause(ctx context.Context, d time.Duration, yield func(Update, error) bool) bool {
	if d <= 0 {
		return true
	}
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		yield(Update{}, ctx.Err())
		return false
	}
}

func working(content string) Update {
	return Update{State: a2a.TaskStateWorking, Content: content}
}

func demoFormData() map[string]any {
	return map[string]any{
		"name":        "Demo User",
		"email":       "demo@example.com",
		"preferences": []any{"option1", "option2"},
	}
}
