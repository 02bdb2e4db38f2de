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

// Package currency implements a currency conversion agent. The model is
// restricted to exchange rate questions and answers them through a
// get_exchange_rate function call backed by the Frankfurter API.
package currency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"net/url"
	"strings"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/google/generative-ai-go/genai"

	"github.com/a2aproject/a2a-samples-go/internal/llmclient"
)

// DefaultBaseURL is the exchange rate API queried by the agent's tool.
const DefaultBaseURL = "https://api.frankfurter.app"

// SystemInstruction keeps the model on currency topics.
const SystemInstruction = "You are a specialized assistant for currency conversions. " +
	"Your sole purpose is to use the 'get_exchange_rate' tool to answer questions about currency exchange rates. " +
	"If the user asks about anything other than currency conversion or exchange rates, " +
	"politely state that you cannot help with that topic and can only assist with currency-related queries. " +
	"Do not attempt to answer unrelated questions or use tools for other purposes."

// FormatInstruction asks the model to report the outcome of the request as a
// marker prefix on its final answer, which [parseAnswer] maps to a task state.
const FormatInstruction = "Begin your final answer with exactly one of the markers 'COMPLETED:', " +
	"'INPUT_REQUIRED:' or 'ERROR:'. Use INPUT_REQUIRED when the user must provide more information " +
	"to complete the request, ERROR when an error prevented processing the request, and COMPLETED " +
	"when the request is complete."

const (
	markerCompleted     = "COMPLETED:"
	markerInputRequired = "INPUT_REQUIRED:"
	markerError         = "ERROR:"
)

// LLM runs a function-calling exchange and returns the model's final answer.
type LLM interface {
	GenerateWithTools(ctx context.Context, system, prompt string, tools []llmclient.Tool) (string, error)
}

// Update is one chunk of agent output.
type Update struct {
	State   a2a.TaskState
	Content string
}

// Agent answers exchange rate questions.
type Agent struct {
	llm        LLM
	httpClient *http.Client
	baseURL    string
}

// Option configures an [Agent].
type Option func(*Agent)

// WithHTTPClient overrides the HTTP client used for exchange rate lookups.
func WithHTTPClient(c *http.Client) Option {
	return func(a *Agent) {
		a.httpClient = c
	}
}

// WithBaseURL overrides the exchange rate API endpoint.
func WithBaseURL(u string) Option {
	return func(a *Agent) {
		a.baseURL = u
	}
}

// New creates the agent. The llm must be non-nil for [Agent.Stream];
// [Agent.ExchangeRate] works without it.
func New(llm LLM, opts ...Option) *Agent {
	a := &Agent{
		llm:        llm,
		httpClient: http.DefaultClient,
		baseURL:    DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Stream answers the query, yielding progress updates followed by a terminal
// update carrying the model's answer.
func (a *Agent) Stream(ctx context.Context, query string) iter.Seq2[Update, error] {
	return func(yield func(Update, error) bool) {
		if a.llm == nil {
			yield(Update{}, errors.New("no language model configured"))
			return
		}
		if !yield(Update{State: a2a.TaskStateWorking, Content: "Looking up the exchange rates..."}, nil) {
			return
		}
		system := SystemInstruction + " " + FormatInstruction
		answer, err := a.llm.GenerateWithTools(ctx, system, query, []llmclient.Tool{a.exchangeRateTool()})
		if err != nil {
			yield(Update{}, err)
			return
		}
		if !yield(Update{State: a2a.TaskStateWorking, Content: "Processing the exchange rates.."}, nil) {
			return
		}
		yield(parseAnswer(answer), nil)
	}
}

// ExchangeRate fetches conversion rates from currencyFrom to currencyTo on
// date, "latest" (or empty) meaning the most recent quotes. The decoded API
// response is returned as-is so the model sees the full payload.
func (a *Agent) ExchangeRate(ctx context.Context, currencyFrom, currencyTo, date string) (map[string]any, error) {
	if date == "" {
		date = "latest"
	}
	query := url.Values{}
	query.Set("from", currencyFrom)
	query.Set("to", currencyTo)
	endpoint := fmt.Sprintf("%s/%s?%s", a.baseURL, url.PathEscape(date), query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate request: %w", err)
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("API request failed: unexpected status %d", resp.StatusCode)
	}

	var data map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, errors.New("invalid JSON response from API")
	}
	if _, ok := data["rates"]; !ok {
		return nil, errors.New("invalid API response format")
	}
	return data, nil
}

func (a *Agent) exchangeRateTool() llmclient.Tool {
	return llmclient.Tool{
		Declaration: &genai.FunctionDeclaration{
			Name:        "get_exchange_rate",
			Description: "Get current exchange rate between two currencies.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"currency_from": {
						Type:        genai.TypeString,
						Description: "The currency to convert from (e.g., 'USD')",
					},
					"currency_to": {
						Type:        genai.TypeString,
						Description: "The currency to convert to (e.g., 'EUR')",
					},
					"currency_date": {
						Type:        genai.TypeString,
						Description: "The date for the exchange rate or 'latest'",
					},
				},
				Required: []string{"currency_from", "currency_to"},
			},
		},
		Call: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			from, _ := args["currency_from"].(string)
			to, _ := args["currency_to"].(string)
			date, _ := args["currency_date"].(string)
			return a.ExchangeRate(ctx, from, to, date)
		},
	}
}

// parseAnswer maps the marker prefix requested by [FormatInstruction] to a
// task state. Answers without a marker are treated as complete.
func parseAnswer(answer string) Update {
	trimmed := strings.TrimSpace(answer)
	if rest, ok := strings.CutPrefix(trimmed, markerInputRequired); ok {
		return Update{State: a2a.TaskStateInputRequired, Content: strings.TrimSpace(rest)}
	}
	if rest, ok := strings.CutPrefix(trimmed, markerError); ok {
		return Update{State: a2a.TaskStateFailed, Content: strings.TrimSpace(rest)}
	}
	rest, _ := strings.CutPrefix(trimmed, markerCompleted)
	return Update{State: a2a.TaskStateCompleted, Content: strings.TrimSpace(rest)}
}
