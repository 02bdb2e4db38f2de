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

// The pushnotify demo runs a webhook receiver for A2A push notifications.
// Point the enhanced client's push scenario at it, then watch deliveries
// arrive: every accepted event is logged with its kind and task ID.
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

	"github.com/a2aproject/a2a-samples-go/pushreceiver"
)

var (
	port  = flag.Int("port", 9997, "Port the webhook receiver listens on.")
	token = flag.String("token", "demo-token-123", "Expected X-A2A-Notification-Token value, empty to accept all.")
)

func main() {
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	receiver := pushreceiver.New(*token,
		pushreceiver.WithLogger(slog.New(slog.NewTextHandler(os.Stdout, nil))))

	mux := http.NewServeMux()
	mux.Handle("/notify", receiver)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", *port),
		Handler: mux,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		log.Printf("Push notification receiver listening on %s/notify", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	notifications := receiver.Notifications()
	log.Printf("Received %d push notification(s) in total", len(notifications))
}
