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

// Package llmclient wraps the Google Gemini SDK behind the small surface the
// demo agents need: one-shot generation, incremental streaming and a
// function-calling loop for tool-using agents.
package llmclient

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// DefaultModel is the Gemini model the demos use unless overridden.
const DefaultModel = "gemini-2.5-flash-lite"

// maxToolTurns bounds the function-calling loop so a misbehaving model
// cannot keep a request alive indefinitely.
const maxToolTurns = 8

// Config carries the Gemini connection settings.
type Config struct {
	// APIKey authenticates against the Generative Language API. Required.
	APIKey string
	// Model selects the Gemini model, DefaultModel when empty.
	Model string
}

// Tool pairs a Gemini function declaration with the Go function that
// fulfills calls to it.
type Tool struct {
	Declaration *genai.FunctionDeclaration
	Call        func(ctx context.Context, args map[string]any) (map[string]any, error)
}

// Client is a thin wrapper over the Gemini SDK client.
type Client struct {
	genai *genai.Client
	model string
}

// New creates a Gemini-backed client. It fails when no API key is provided.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("llmclient: API key is required")
	}
	gc, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("llmclient: failed to create Gemini client: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &Client{genai: gc, model: model}, nil
}

// Close releases the underlying SDK client.
func (c *Client) Close() error {
	return c.genai.Close()
}

// Generate performs a single blocking completion. The system instruction may
// be empty.
func (c *Client) Generate(ctx context.Context, system, prompt string) (string, error) {
	model := c.generativeModel(system, nil)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("llmclient: generate failed: %w", err)
	}
	return responseText(resp)
}

// GenerateStream yields response text chunks as the model produces them.
// Iteration stops at the first error.
func (c *Client) GenerateStream(ctx context.Context, system, prompt string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		model := c.generativeModel(system, nil)
		stream := model.GenerateContentStream(ctx, genai.Text(prompt))
		for {
			resp, err := stream.Next()
			if errors.Is(err, iterator.Done) {
				return
			}
			if err != nil {
				yield("", fmt.Errorf("llmclient: stream failed: %w", err))
				return
			}
			chunk, err := responseText(resp)
			if err != nil {
				yield("", err)
				return
			}
			if chunk == "" {
				continue
			}
			if !yield(chunk, nil) {
				return
			}
		}
	}
}

// GenerateWithTools runs the Gemini function-calling loop: function calls
// requested by the model are dispatched to the matching Tool and their
// results fed back until the model answers with text.
func (c *Client) GenerateWithTools(ctx context.Context, system, prompt string, tools []Tool) (string, error) {
	byName := make(map[string]Tool, len(tools))
	decls := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		byName[t.Declaration.Name] = t
		decls = append(decls, t.Declaration)
	}

	model := c.generativeModel(system, decls)
	session := model.StartChat()

	resp, err := session.SendMessage(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("llmclient: send failed: %w", err)
	}
	for turn := 0; turn < maxToolTurns; turn++ {
		calls := functionCalls(resp)
		if len(calls) == 0 {
			return responseText(resp)
		}
		replies := make([]genai.Part, 0, len(calls))
		for _, call := range calls {
			tool, ok := byName[call.Name]
			if !ok {
				return "", fmt.Errorf("llmclient: model requested unknown tool %q", call.Name)
			}
			result, err := tool.Call(ctx, call.Args)
			if err != nil {
				// Surface tool failures to the model so it can explain them.
				result = map[string]any{"error": err.Error()}
			}
			replies = append(replies, genai.FunctionResponse{Name: call.Name, Response: result})
		}
		if resp, err = session.SendMessage(ctx, replies...); err != nil {
			return "", fmt.Errorf("llmclient: tool response failed: %w", err)
		}
	}
	return "", fmt.Errorf("llmclient: no final answer after %d tool turns", maxToolTurns)
}

func (c *Client) generativeModel(system string, decls []*genai.FunctionDeclaration) *genai.GenerativeModel {
	model := c.genai.GenerativeModel(c.model)
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}
	if len(decls) > 0 {
		model.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}
	return model
}

func functionCalls(resp *genai.GenerateContentResponse) []genai.FunctionCall {
	var calls []genai.FunctionCall
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if call, ok := part.(genai.FunctionCall); ok {
				calls = append(calls, call)
			}
		}
	}
	return calls
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", errors.New("llmclient: empty response")
	}
	var text string
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				text += string(t)
			}
		}
	}
	if text == "" && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
		return "", fmt.Errorf("llmclient: prompt blocked: %s", resp.PromptFeedback.BlockReason.String())
	}
	return text, nil
}
