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

// The enhanced demo client drives every A2A protocol surface against the
// enhanced demo server: agent-card discovery, blocking and streaming
// messages, file and structured-data parts, task queries, cancellation,
// push notification configs and protocol error handling.
package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/a2aproject/a2a-go/a2aclient"
	"github.com/a2aproject/a2a-go/a2aclient/agentcard"
	"github.com/google/uuid"
)

var (
	serverURL = flag.String("server", "http://localhost:9999", "Base URL of the enhanced demo server.")
	demo      = flag.String("demo", "all", "Scenario to run: all, card, send, stream, file, data, query, cancel, push or errors.")
	pushURL   = flag.String("push-url", "http://localhost:9997/notify", "Webhook URL registered for push notifications.")
)

// pushToken is echoed back by the server in the X-A2A-Notification-Token
// header of every delivery.
const pushToken = "demo-token-123"

type scenario struct {
	name string
	run  func(ctx context.Context, d *demoState) error
}

// demoState carries what scenarios share: the resolved card, the client and
// the ID of the last task a scenario produced, so query and push can operate
// on a real task.
type demoState struct {
	card       *a2a.AgentCard
	client     *a2aclient.Client
	lastTaskID a2a.TaskID
}

var scenarios = []scenario{
	{"card", runCard},
	{"send", runSend},
	{"stream", runStream},
	{"file", runFile},
	{"data", runData},
	{"query", runQuery},
	{"cancel", runCancel},
	{"push", runPush},
	{"errors", runErrors},
}

func main() {
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	card, err := agentcard.DefaultResolver.Resolve(ctx, *serverURL)
	if err != nil {
		log.Fatalf("Failed to resolve agent card from %s: %v", *serverURL, err)
	}
	client, err := a2aclient.NewFromCard(ctx, card)
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}

	state := &demoState{card: card, client: client}
	failures := 0
	for _, s := range scenarios {
		if *demo != "all" && *demo != s.name {
			continue
		}
		banner(s.name)
		if err := s.run(ctx, state); err != nil {
			failures++
			fmt.Printf("FAILED: %v\n", err)
		}
	}

	if failures > 0 {
		log.Fatalf("%d scenario(s) failed", failures)
	}
	fmt.Println()
	fmt.Println("All scenarios completed successfully.")
}

func banner(name string) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Demo: %s\n", name)
	fmt.Println(strings.Repeat("=", 60))
}

func runCard(ctx context.Context, d *demoState) error {
	fmt.Printf("Agent:   %s (version %s)\n", d.card.Name, d.card.Version)
	fmt.Printf("URL:     %s\n", d.card.URL)
	fmt.Printf("Streaming: %v, Push: %v, History: %v\n",
		d.card.Capabilities.Streaming,
		d.card.Capabilities.PushNotifications,
		d.card.Capabilities.StateTransitionHistory)
	fmt.Printf("Skills (%d):\n", len(d.card.Skills))
	for _, skill := range d.card.Skills {
		fmt.Printf("  - %s: %s\n", skill.ID, skill.Name)
	}
	return nil
}

func runSend(ctx context.Context, d *demoState) error {
	fmt.Println("Sending a blocking message...")
	msg := a2a.NewMessage(a2a.MessageRoleUser, a2a.TextPart{Text: "What is the A2A protocol?"})
	result, err := d.client.SendMessage(ctx, &a2a.MessageSendParams{Message: msg})
	if err != nil {
		return fmt.Errorf("message/send failed: %w", err)
	}
	task, ok := result.(*a2a.Task)
	if !ok {
		return fmt.Errorf("expected a task result, got %T", result)
	}
	d.lastTaskID = task.ID
	fmt.Printf("Task ID:      %s\n", task.ID)
	fmt.Printf("Final state:  %s\n", task.Status.State)
	fmt.Printf("History size: %d\n", len(task.History))
	printArtifacts(task)
	return nil
}

func runStream(ctx context.Context, d *demoState) error {
	fmt.Println("Streaming a long-running task with progress updates...")
	msg := a2a.NewMessage(a2a.MessageRoleUser, a2a.TextPart{Text: "Run a long task with progress updates"})
	for event, err := range d.client.SendStreamingMessage(ctx, &a2a.MessageSendParams{Message: msg}) {
		if err != nil {
			return fmt.Errorf("stream error: %w", err)
		}
		switch e := event.(type) {
		case *a2a.TaskStatusUpdateEvent:
			d.lastTaskID = e.TaskID
			fmt.Printf("[status] %s (final=%v)%s\n", e.Status.State, e.Final, statusText(e.Status.Message))
		case *a2a.TaskArtifactUpdateEvent:
			fmt.Printf("[artifact] %s (%d part(s))\n", e.Artifact.Name, len(e.Artifact.Parts))
		case *a2a.Task:
			d.lastTaskID = e.ID
			fmt.Printf("[task] %s state=%s\n", e.ID, e.Status.State)
		}
	}
	return nil
}

func runFile(ctx context.Context, d *demoState) error {
	fmt.Println("Sending a message with an attached file...")
	content := "sample file content"
	msg := a2a.NewMessage(a2a.MessageRoleUser,
		a2a.TextPart{Text: "Please analyze this file"},
		a2a.FilePart{File: a2a.FileBytes{
			FileMeta: a2a.FileMeta{Name: "sample.txt", MimeType: "text/plain"},
			Bytes:    base64.StdEncoding.EncodeToString([]byte(content)),
		}},
	)
	result, err := d.client.SendMessage(ctx, &a2a.MessageSendParams{Message: msg})
	if err != nil {
		return fmt.Errorf("file upload failed: %w", err)
	}
	task, ok := result.(*a2a.Task)
	if !ok {
		return fmt.Errorf("expected a task result, got %T", result)
	}
	d.lastTaskID = task.ID
	fmt.Printf("Task %s finished in state %s\n", task.ID, task.Status.State)
	printArtifacts(task)
	return nil
}

func runData(ctx context.Context, d *demoState) error {
	fmt.Println("Sending a message with structured form data...")
	form := map[string]any{
		"name":      "John Doe",
		"email":     "john.doe@example.com",
		"age":       30,
		"subscribe": true,
	}
	msg := a2a.NewMessage(a2a.MessageRoleUser,
		a2a.TextPart{Text: "Please process this form data"},
		a2a.DataPart{Data: form},
	)
	result, err := d.client.SendMessage(ctx, &a2a.MessageSendParams{Message: msg})
	if err != nil {
		return fmt.Errorf("form submission failed: %w", err)
	}
	task, ok := result.(*a2a.Task)
	if !ok {
		return fmt.Errorf("expected a task result, got %T", result)
	}
	d.lastTaskID = task.ID
	fmt.Printf("Task %s finished in state %s\n", task.ID, task.Status.State)
	printArtifacts(task)
	return nil
}

func runQuery(ctx context.Context, d *demoState) error {
	if d.lastTaskID == "" {
		if err := runSend(ctx, d); err != nil {
			return err
		}
	}
	fmt.Printf("Querying task %s with history...\n", d.lastTaskID)
	historyLength := 10
	task, err := d.client.GetTask(ctx, &a2a.TaskQueryParams{
		ID:            d.lastTaskID,
		HistoryLength: &historyLength,
	})
	if err != nil {
		return fmt.Errorf("tasks/get failed: %w", err)
	}
	fmt.Printf("State:   %s\n", task.Status.State)
	fmt.Printf("History: %d message(s)\n", len(task.History))
	for i, m := range task.History {
		fmt.Printf("  %d. [%s] %s\n", i+1, m.Role, firstText(m))
	}
	return nil
}

func runCancel(ctx context.Context, d *demoState) error {
	fmt.Println("Starting a long-running task without blocking...")
	// A polling client returns the task as soon as it is submitted instead
	// of waiting for a terminal state, leaving something to cancel.
	polling, err := a2aclient.NewFromCard(ctx, d.card,
		a2aclient.WithConfig(a2aclient.Config{Polling: true}))
	if err != nil {
		return fmt.Errorf("failed to create polling client: %w", err)
	}
	msg := a2a.NewMessage(a2a.MessageRoleUser, a2a.TextPart{Text: "Run a long task, I may cancel it"})
	result, err := polling.SendMessage(ctx, &a2a.MessageSendParams{Message: msg})
	if err != nil {
		return fmt.Errorf("message/send failed: %w", err)
	}
	task, ok := result.(*a2a.Task)
	if !ok {
		return fmt.Errorf("expected a task result, got %T", result)
	}
	fmt.Printf("Task %s started in state %s, canceling...\n", task.ID, task.Status.State)

	canceled, err := d.client.CancelTask(ctx, &a2a.TaskIDParams{ID: task.ID})
	if err != nil {
		return fmt.Errorf("tasks/cancel failed: %w", err)
	}
	fmt.Printf("Task %s is now %s\n", canceled.ID, canceled.Status.State)
	return nil
}

func runPush(ctx context.Context, d *demoState) error {
	if d.lastTaskID == "" {
		if err := runSend(ctx, d); err != nil {
			return err
		}
	}
	fmt.Printf("Registering push notification config for task %s...\n", d.lastTaskID)
	set, err := d.client.SetTaskPushConfig(ctx, &a2a.TaskPushConfig{
		TaskID: d.lastTaskID,
		Config: a2a.PushConfig{
			ID:    uuid.NewString(),
			URL:   *pushURL,
			Token: pushToken,
		},
	})
	if err != nil {
		return fmt.Errorf("pushNotificationConfig/set failed: %w", err)
	}
	fmt.Printf("Registered config %s -> %s\n", set.Config.ID, set.Config.URL)

	got, err := d.client.GetTaskPushConfig(ctx, &a2a.GetTaskPushConfigParams{
		TaskID:   d.lastTaskID,
		ConfigID: set.Config.ID,
	})
	if err != nil {
		return fmt.Errorf("pushNotificationConfig/get failed: %w", err)
	}
	fmt.Printf("Fetched config: url=%s token=%s\n", got.Config.URL, got.Config.Token)

	configs, err := d.client.ListTaskPushConfig(ctx, &a2a.ListTaskPushConfigParams{TaskID: d.lastTaskID})
	if err != nil {
		return fmt.Errorf("pushNotificationConfig/list failed: %w", err)
	}
	fmt.Printf("Task has %d push config(s)\n", len(configs))
	return nil
}

func runErrors(ctx context.Context, d *demoState) error {
	fmt.Println("Requesting a task that does not exist...")
	_, err := d.client.GetTask(ctx, &a2a.TaskQueryParams{ID: "invalid-task-id"})
	switch {
	case err == nil:
		return errors.New("tasks/get with an invalid ID unexpectedly succeeded")
	case errors.Is(err, a2a.ErrTaskNotFound):
		fmt.Printf("Got expected error: %v\n", err)
	default:
		return fmt.Errorf("expected %v, got: %w", a2a.ErrTaskNotFound, err)
	}

	fmt.Println("Sending a message with no parts...")
	_, err = d.client.SendMessage(ctx, &a2a.MessageSendParams{
		Message: a2a.NewMessage(a2a.MessageRoleUser),
	})
	switch {
	case err == nil:
		return errors.New("message/send with no parts unexpectedly succeeded")
	case errors.Is(err, a2a.ErrInvalidRequest):
		fmt.Printf("Got expected error: %v\n", err)
	default:
		return fmt.Errorf("expected %v, got: %w", a2a.ErrInvalidRequest, err)
	}
	return nil
}

func printArtifacts(task *a2a.Task) {
	if len(task.Artifacts) == 0 {
		fmt.Println("Artifacts:    none")
		return
	}
	fmt.Printf("Artifacts (%d):\n", len(task.Artifacts))
	for _, artifact := range task.Artifacts {
		fmt.Printf("  - %s: %s\n", artifact.Name, artifactPreview(artifact))
	}
}

// artifactPreview renders the first part of an artifact as a short single
// line.
func artifactPreview(artifact *a2a.Artifact) string {
	if len(artifact.Parts) == 0 {
		return "(empty)"
	}
	var text string
	switch p := artifact.Parts[0].(type) {
	case a2a.TextPart:
		text = p.Text
	case a2a.DataPart:
		encoded, err := json.Marshal(p.Data)
		if err != nil {
			return "(undecodable data part)"
		}
		text = string(encoded)
	default:
		return fmt.Sprintf("(%T)", p)
	}
	text = strings.ReplaceAll(text, "\n", " ")
	if len(text) > 100 {
		text = text[:100] + "..."
	}
	return text
}

func statusText(msg *a2a.Message) string {
	if msg == nil {
		return ""
	}
	return " - " + firstText(msg)
}

func firstText(msg *a2a.Message) string {
	for _, part := range msg.Parts {
		if tp, ok := part.(a2a.TextPart); ok {
			return tp.Text
		}
	}
	return "(no text)"
}
