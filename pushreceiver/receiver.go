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

// Package pushreceiver implements the webhook side of A2A push
// notifications: an http.Handler that accepts the POST requests an A2A
// server sends for tasks with a registered push notification config,
// validates the notification token and keeps the received events for
// inspection.
package pushreceiver

import (
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/a2aproject/a2a-go/a2a"
)

// TokenHeader is the header an A2A server uses to echo the token registered
// in the push notification config.
const TokenHeader = "X-A2A-Notification-Token"

const defaultMaxHistory = 100

// Notification is a single received push delivery.
type Notification struct {
	Event      a2a.Event
	ReceivedAt time.Time
}

// Receiver is an http.Handler accepting A2A push notification webhooks.
type Receiver struct {
	token      string
	maxHistory int
	logger     *slog.Logger

	mu       sync.Mutex
	received []Notification
}

// Option configures a [Receiver].
type Option func(*Receiver)

// WithMaxHistory bounds how many notifications are retained, oldest dropped
// first.
func WithMaxHistory(n int) Option {
	return func(r *Receiver) {
		r.maxHistory = n
	}
}

// WithLogger sets a custom [slog.Logger]. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Receiver) {
		r.logger = logger
	}
}

// New creates a Receiver. When token is non-empty, requests must carry it in
// the X-A2A-Notification-Token header.
func New(token string, opts ...Option) *Receiver {
	r := &Receiver{
		token:      token,
		maxHistory: defaultMaxHistory,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Receiver) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if r.token != "" && req.Header.Get(TokenHeader) != r.token {
		r.logger.Warn("push notification rejected: bad token", "remote", req.RemoteAddr)
		http.Error(w, "invalid notification token", http.StatusUnauthorized)
		return
	}

	body, err := io.ReadAll(req.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	event, err := a2a.UnmarshalEventJSON(body)
	if err != nil {
		r.logger.Warn("push notification rejected: undecodable event", "err", err)
		http.Error(w, "invalid event payload", http.StatusBadRequest)
		return
	}

	r.mu.Lock()
	r.received = append(r.received, Notification{Event: event, ReceivedAt: time.Now()})
	if len(r.received) > r.maxHistory {
		r.received = r.received[len(r.received)-r.maxHistory:]
	}
	r.mu.Unlock()

	r.logger.Info("push notification received", "event", describeEvent(event))
	w.WriteHeader(http.StatusOK)
}

// Notifications returns a copy of the retained notifications in arrival
// order.
func (r *Receiver) Notifications() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.received))
	copy(out, r.received)
	return out
}

func describeEvent(event a2a.Event) string {
	switch e := event.(type) {
	case *a2a.TaskStatusUpdateEvent:
		return "status-update " + string(e.Status.State)
	case *a2a.TaskArtifactUpdateEvent:
		return "artifact-update"
	case *a2a.Task:
		return "task " + string(e.Status.State)
	case *a2a.Message:
		return "message"
	default:
		return "unknown"
	}
}
