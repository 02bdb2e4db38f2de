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

// The conversation demo runs two A2A servers in one process and lets them
// talk to each other: a passive currency-conversion agent and an active
// relay agent that forwards questions to it and polls for the answers. A
// driver then holds a short conversation through the relay.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/a2aproject/a2a-go/a2aclient"
	"github.com/a2aproject/a2a-go/a2aclient/agentcard"
	"github.com/a2aproject/a2a-go/a2asrv"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/a2aproject/a2a-samples-go/agents/currency"
	"github.com/a2aproject/a2a-samples-go/internal/demoenv"
	"github.com/a2aproject/a2a-samples-go/internal/llmclient"
)

var (
	currencyPort = flag.Int("currency-port", 8000, "Port of the passive currency server.")
	relayPort    = flag.Int("relay-port", 8001, "Port of the active relay server.")
	rounds       = flag.Int("rounds", 3, "Number of conversation rounds to drive.")
)

var questions = []string{
	"How much is 100 USD in EUR?",
	"And how much is that amount of euros in Japanese yen?",
	"Finally, what is 1 Swiss franc worth in Canadian dollars today?",
}

func main() {
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := demoenv.Load(".env"); err != nil {
		log.Fatalf("Failed to load .env: %v", err)
	}
	apiKey, err := demoenv.RequireAPIKey()
	if err != nil {
		log.Fatalf("%v", err)
	}

	llm, err := llmclient.New(ctx, llmclient.Config{APIKey: apiKey})
	if err != nil {
		log.Fatalf("Failed to create Gemini client: %v", err)
	}
	defer llm.Close()

	server1Log := log.New(os.Stdout, "[server1] ", log.LstdFlags)
	server2Log := log.New(os.Stdout, "[server2] ", log.LstdFlags)
	demoLog := log.New(os.Stdout, "[demo] ", log.LstdFlags)

	currencyURL := fmt.Sprintf("http://localhost:%d", *currencyPort)
	relayURL := fmt.Sprintf("http://localhost:%d", *relayPort)

	// The passive side answers currency questions.
	currencyExec := currency.NewExecutor(currency.New(llm))
	currencyServer := newAgentServer(ctx, *currencyPort,
		currency.BuildAgentCard(currencyURL+"/invoke"), currencyExec)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return serve(groupCtx, currencyServer, server1Log)
	})

	if err := probe(ctx, currencyURL); err != nil {
		log.Fatalf("Currency server never became ready: %v", err)
	}
	server1Log.Printf("Currency agent ready on %s", currencyURL)

	// The active side relays questions to the passive one. The gRPC dial
	// option covers cards that prefer the gRPC transport.
	remote, err := dialAgent(ctx, currencyURL)
	if err != nil {
		log.Fatalf("Failed to connect to the currency server: %v", err)
	}
	relayExec := newRelayExecutor(remote, server2Log)
	relayServer := newAgentServer(ctx, *relayPort, relayCard(relayURL+"/invoke"), relayExec)
	group.Go(func() error {
		return serve(groupCtx, relayServer, server2Log)
	})

	if err := probe(ctx, relayURL); err != nil {
		log.Fatalf("Relay server never became ready: %v", err)
	}
	server2Log.Printf("Relay agent ready on %s", relayURL)

	if err := converse(ctx, relayURL, demoLog); err != nil {
		log.Fatalf("Conversation failed: %v", err)
	}

	stop()
	if err := group.Wait(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
	demoLog.Println("Conversation demo finished.")
}

// converse drives the conversation rounds against the relay server. Each
// answer is woven into the next question.
func converse(ctx context.Context, relayURL string, logger *log.Logger) error {
	card, err := agentcard.DefaultResolver.Resolve(ctx, relayURL)
	if err != nil {
		return fmt.Errorf("failed to resolve relay card: %w", err)
	}
	client, err := a2aclient.NewFromCard(ctx, card)
	if err != nil {
		return fmt.Errorf("failed to create relay client: %w", err)
	}

	var lastAnswer string
	for i := 0; i < *rounds && i < len(questions); i++ {
		question := questions[i]
		if lastAnswer != "" {
			question = fmt.Sprintf("Earlier you told me: %q. %s", lastAnswer, question)
		}
		logger.Printf("Round %d question: %s", i+1, questions[i])

		msg := a2a.NewMessage(a2a.MessageRoleUser, a2a.TextPart{Text: question})
		result, err := client.SendMessage(ctx, &a2a.MessageSendParams{Message: msg})
		if err != nil {
			return fmt.Errorf("round %d failed: %w", i+1, err)
		}
		task, ok := result.(*a2a.Task)
		if !ok {
			return fmt.Errorf("round %d: expected a task result, got %T", i+1, result)
		}
		if task.Status.State != a2a.TaskStateCompleted {
			return fmt.Errorf("round %d: task %s ended in state %s: %s",
				i+1, task.ID, task.Status.State, messageText(task.Status.Message))
		}
		lastAnswer = artifactText(task)
		logger.Printf("Round %d answer: %s", i+1, lastAnswer)
	}
	return nil
}

func dialAgent(ctx context.Context, baseURL string) (*a2aclient.Client, error) {
	card, err := agentcard.DefaultResolver.Resolve(ctx, baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve agent card: %w", err)
	}
	return a2aclient.NewFromCard(ctx, card,
		a2aclient.WithConfig(a2aclient.Config{Polling: true}),
		a2aclient.WithGRPCTransport(grpc.WithTransportCredentials(insecure.NewCredentials())),
	)
}

func relayCard(url string) *a2a.AgentCard {
	return &a2a.AgentCard{
		Name:               "Currency Relay Agent",
		Description:        "Forwards currency questions to the currency agent and relays the answers.",
		URL:                url,
		Version:            "1.0.0",
		PreferredTransport: a2a.TransportProtocolJSONRPC,
		Capabilities:       a2a.AgentCapabilities{Streaming: true},
		DefaultInputModes:  []string{"text"},
		DefaultOutputModes: []string{"text"},
		Skills: []a2a.AgentSkill{{
			ID:          "relay_conversation",
			Name:        "Relay Conversation",
			Description: "Sends questions to another A2A agent and returns its answers.",
			Tags:        []string{"relay", "conversation"},
			Examples:    []string{"How much is 100 USD in EUR?"},
		}},
	}
}

func newAgentServer(ctx context.Context, port int, card *a2a.AgentCard, executor a2asrv.AgentExecutor) *http.Server {
	handler := a2asrv.NewHandler(executor)
	mux := http.NewServeMux()
	mux.Handle("/invoke", a2asrv.NewJSONRPCHandler(handler))
	mux.Handle(a2asrv.WellKnownAgentCardPath, a2asrv.NewStaticAgentCardHandler(card))
	return &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}
}

// serve runs the server until ctx is canceled, then shuts it down.
func serve(ctx context.Context, server *http.Server, logger *log.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Printf("Listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown of %s failed: %w", server.Addr, err)
	}
	logger.Printf("Stopped %s", server.Addr)
	return <-errCh
}

// probe waits for the well-known agent card endpoint to answer.
func probe(ctx context.Context, baseURL string) error {
	url := baseURL + a2asrv.WellKnownAgentCardPath
	var lastErr error
	for attempt := 0; attempt < 20; attempt++ {
		select {
		case <-time.After(250 * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			return nil
		}
		lastErr = fmt.Errorf("unexpected status %s from %s", resp.Status, url)
	}
	return lastErr
}
