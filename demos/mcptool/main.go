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

// The mcptool demo bridges A2A and MCP: it serves an A2A agent whose tools
// come from an in-process MCP server, then runs a scripted client against it
// that lists the tools, calls them and triggers a failure.
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

	"github.com/a2aproject/a2a-samples-go/agents/mcptool"
)

var port = flag.Int("port", 10003, "Port the A2A server listens on.")

var script = []string{
	"list tools",
	`call echo {"message": "hello from A2A"}`,
	`call word_count {"text": "the quick brown fox jumps over the lazy dog"}`,
	`call missing_tool {}`,
}

func main() {
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := mcptool.DialInProcess(ctx)
	if err != nil {
		log.Fatalf("Failed to start the MCP toolbox: %v", err)
	}
	defer conn.Close()

	baseURL := fmt.Sprintf("http://localhost:%d", *port)
	executor := mcptool.NewExecutor(mcptool.New(conn))
	requestHandler := a2asrv.NewHandler(executor)

	mux := http.NewServeMux()
	mux.Handle("/invoke", a2asrv.NewJSONRPCHandler(requestHandler))
	mux.Handle(a2asrv.WellKnownAgentCardPath, a2asrv.NewStaticAgentCardHandler(mcptool.BuildAgentCard(baseURL+"/invoke")))

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", *port),
		Handler: mux,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}
	go func() {
		log.Printf("Starting MCP bridge server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	if err := runScript(ctx, baseURL); err != nil {
		log.Fatalf("Scripted client failed: %v", err)
	}

	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("MCP bridge demo finished.")
}

func runScript(ctx context.Context, baseURL string) error {
	card, err := resolveWithRetry(ctx, baseURL)
	if err != nil {
		return fmt.Errorf("failed to resolve agent card: %w", err)
	}
	client, err := a2aclient.NewFromCard(ctx, card)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	fmt.Printf("Connected to %q. %s\n", card.Name, mcptool.UsageText)
	for _, query := range script {
		fmt.Printf("\n> %s\n", query)
		msg := a2a.NewMessage(a2a.MessageRoleUser, a2a.TextPart{Text: query})
		result, err := client.SendMessage(ctx, &a2a.MessageSendParams{Message: msg})
		if err != nil {
			return fmt.Errorf("message/send for %q failed: %w", query, err)
		}
		task, ok := result.(*a2a.Task)
		if !ok {
			return fmt.Errorf("expected a task result, got %T", result)
		}
		fmt.Printf("state: %s\n", task.Status.State)
		if task.Status.Message != nil {
			for _, part := range task.Status.Message.Parts {
				if tp, ok := part.(a2a.TextPart); ok {
					fmt.Printf("agent: %s\n", tp.Text)
				}
			}
		}
		for _, artifact := range task.Artifacts {
			for _, part := range artifact.Parts {
				if tp, ok := part.(a2a.TextPart); ok {
					fmt.Printf("%s: %s\n", artifact.Name, tp.Text)
				}
			}
		}
	}
	return nil
}

// resolveWithRetry polls the card endpoint until the server is up.
func resolveWithRetry(ctx context.Context, baseURL string) (*a2a.AgentCard, error) {
	var lastErr error
	for attempt := 0; attempt < 20; attempt++ {
		select {
		case <-time.After(250 * time.Millisecond):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		card, err := agentcard.DefaultResolver.Resolve(ctx, baseURL)
		if err == nil {
			return card, nil
		}
		lastErr = err
	}
	return nil, lastErr
}
