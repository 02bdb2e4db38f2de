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

// The reimbursement demo serves the expense reimbursement agent. Unlike the
// other demos it refuses to start without a GOOGLE_API_KEY: the form-filling
// flow only makes sense with a live model.
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

	"github.com/a2aproject/a2a-go/a2asrv"

	"github.com/a2aproject/a2a-samples-go/agents/reimbursement"
	"github.com/a2aproject/a2a-samples-go/internal/demoenv"
	"github.com/a2aproject/a2a-samples-go/internal/llmclient"
)

var (
	host = flag.String("host", "localhost", "Host the A2A server listens on.")
	port = flag.Int("port", 10002, "Port the A2A server listens on.")
)

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

	executor := reimbursement.NewExecutor(reimbursement.New(llm))
	requestHandler := a2asrv.NewHandler(executor)

	agentCard := reimbursement.BuildAgentCard(fmt.Sprintf("http://%s:%d/invoke", *host, *port))

	mux := http.NewServeMux()
	mux.Handle("/invoke", a2asrv.NewJSONRPCHandler(requestHandler))
	mux.Handle(a2asrv.WellKnownAgentCardPath, a2asrv.NewStaticAgentCardHandler(agentCard))

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", *host, *port),
		Handler: mux,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		log.Printf("Starting reimbursement agent server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-ctx.Done()
	stop()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server stopped gracefully")
}
