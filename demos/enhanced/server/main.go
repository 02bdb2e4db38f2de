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

// The enhanced demo server hosts the Enhanced A2A Protocol Agent, which
// exercises every protocol surface: streaming, all task states, file and
// data parts, artifacts and push notifications. Tasks can be kept in memory
// or persisted to a JSON file or a SQLite database.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/a2aproject/a2a-go/a2asrv"

	"github.com/a2aproject/a2a-samples-go/agents/enhanced"
	"github.com/a2aproject/a2a-samples-go/internal/demoenv"
	"github.com/a2aproject/a2a-samples-go/internal/llmclient"
	"github.com/a2aproject/a2a-samples-go/taskstore/jsonfile"
	"github.com/a2aproject/a2a-samples-go/taskstore/memstore"
	"github.com/a2aproject/a2a-samples-go/taskstore/sqlitestore"
)

var (
	host      = flag.String("host", "localhost", "Host the A2A server listens on.")
	port      = flag.Int("port", 9999, "Port the A2A server listens on.")
	storeKind = flag.String("store", "memory", "Task store backend: memory, json or sqlite.")
	storePath = flag.String("store-path", "", "Path of the json or sqlite store file.")
)

func main() {
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := demoenv.Load(".env"); err != nil {
		log.Fatalf("Failed to load .env: %v", err)
	}

	var llm enhanced.LLM
	if key := demoenv.APIKey(); key == "" {
		log.Println("GOOGLE_API_KEY is not set: the agent will answer with canned responses")
	} else {
		client, err := llmclient.New(ctx, llmclient.Config{APIKey: key})
		if err != nil {
			log.Fatalf("Failed to create Gemini client: %v", err)
		}
		defer client.Close()
		llm = client
	}

	store, closeStore, err := newTaskStore(*storeKind, *storePath)
	if err != nil {
		log.Fatalf("Failed to open task store: %v", err)
	}
	defer closeStore()
	log.Printf("Using %s task store", *storeKind)

	executor := enhanced.NewExecutor(enhanced.New(llm))
	requestHandler := a2asrv.NewHandler(executor,
		a2asrv.WithTaskStore(store),
		a2asrv.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, nil))),
	)

	agentCard := enhanced.BuildAgentCard(fmt.Sprintf("http://%s:%d/invoke", *host, *port))

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
		log.Printf("Starting enhanced demo server on %s", server.Addr)
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

// newTaskStore opens the store selected by kind. The returned func releases
// resources held by the store.
func newTaskStore(kind, path string) (a2asrv.TaskStore, func(), error) {
	switch kind {
	case "memory":
		return memstore.NewStore(), func() {}, nil
	case "json":
		if path == "" {
			path = "demo_tasks.json"
		}
		store, err := jsonfile.NewStore(path)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	case "sqlite":
		if path == "" {
			path = "demo_tasks.db"
		}
		store, err := sqlitestore.NewStore(path)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				log.Printf("Failed to close task store: %v", err)
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store kind %q (want memory, json or sqlite)", kind)
	}
}
