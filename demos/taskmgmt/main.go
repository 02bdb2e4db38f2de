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

// The taskmgmt demo walks through the task store implementations: saving
// tasks in different states, fetching and listing them, deleting, clearing
// and, for the file-backed stores, surviving a close and reopen.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/a2aproject/a2a-go/a2a"

	"github.com/a2aproject/a2a-samples-go/taskstore/jsonfile"
	"github.com/a2aproject/a2a-samples-go/taskstore/memstore"
	"github.com/a2aproject/a2a-samples-go/taskstore/sqlitestore"
)

var storeKind = flag.String("store", "all", "Store to demonstrate: memory, json, sqlite or all.")

// demoStore is the surface shared by all store implementations. Save, Get
// and List match a2asrv.TaskStore; the rest is the management surface this
// demo exercises.
type demoStore interface {
	Save(ctx context.Context, task *a2a.Task) error
	Get(ctx context.Context, id a2a.TaskID) (*a2a.Task, error)
	List(ctx context.Context, req *a2a.ListTasksRequest) (*a2a.ListTasksResponse, error)
	Delete(ctx context.Context, id a2a.TaskID) error
	TaskIDs(ctx context.Context) ([]a2a.TaskID, error)
	Clear(ctx context.Context) error
}

func main() {
	flag.Parse()
	ctx := context.Background()

	dir, err := os.MkdirTemp("", "a2a-taskmgmt-")
	if err != nil {
		log.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	run := func(kind string) {
		section("Task management with the " + kind + " store")
		if err := demonstrate(ctx, kind, dir); err != nil {
			log.Fatalf("%s store demo failed: %v", kind, err)
		}
	}

	switch *storeKind {
	case "all":
		for _, kind := range []string{"memory", "json", "sqlite"} {
			run(kind)
		}
	case "memory", "json", "sqlite":
		run(*storeKind)
	default:
		log.Fatalf("Unknown store kind %q (want memory, json, sqlite or all)", *storeKind)
	}

	fmt.Println()
	fmt.Println("Task management demo finished.")
}

func demonstrate(ctx context.Context, kind, dir string) error {
	store, reopen, err := openStore(kind, dir)
	if err != nil {
		return err
	}

	fmt.Println("Saving three tasks in different states...")
	tasks := []*a2a.Task{
		newTask("ctx-demo-1", a2a.TaskStateSubmitted, "Summarize the quarterly report"),
		newTask("ctx-demo-1", a2a.TaskStateWorking, "Translate the summary to French"),
		newTask("ctx-demo-2", a2a.TaskStateCompleted, "Collect exchange rates"),
	}
	for _, task := range tasks {
		if err := store.Save(ctx, task); err != nil {
			return fmt.Errorf("save %s: %w", task.ID, err)
		}
		fmt.Printf("  saved %s (%s)\n", task.ID, task.Status.State)
	}

	fmt.Println("Fetching one task back...")
	got, err := store.Get(ctx, tasks[0].ID)
	if err != nil {
		return fmt.Errorf("get %s: %w", tasks[0].ID, err)
	}
	fmt.Printf("  %s: state=%s context=%s\n", got.ID, got.Status.State, got.ContextID)

	fmt.Println("Listing all tasks...")
	all, err := store.List(ctx, &a2a.ListTasksRequest{})
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	for _, task := range all.Tasks {
		fmt.Printf("  %s (%s, context %s)\n", task.ID, task.Status.State, task.ContextID)
	}

	fmt.Println("Listing tasks in context ctx-demo-1...")
	filtered, err := store.List(ctx, &a2a.ListTasksRequest{ContextID: "ctx-demo-1"})
	if err != nil {
		return fmt.Errorf("filtered list: %w", err)
	}
	fmt.Printf("  %d of %d tasks match\n", len(filtered.Tasks), len(all.Tasks))

	fmt.Printf("Deleting task %s...\n", tasks[2].ID)
	if err := store.Delete(ctx, tasks[2].ID); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	ids, err := store.TaskIDs(ctx)
	if err != nil {
		return fmt.Errorf("task ids: %w", err)
	}
	fmt.Printf("  %d task(s) remain\n", len(ids))

	if reopen != nil {
		fmt.Println("Reopening the store to show persistence...")
		store, err = reopen()
		if err != nil {
			return fmt.Errorf("reopen: %w", err)
		}
		ids, err = store.TaskIDs(ctx)
		if err != nil {
			return fmt.Errorf("task ids after reopen: %w", err)
		}
		fmt.Printf("  %d task(s) survived the reopen\n", len(ids))
	}

	fmt.Println("Clearing the store...")
	if err := store.Clear(ctx); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	ids, err = store.TaskIDs(ctx)
	if err != nil {
		return fmt.Errorf("task ids after clear: %w", err)
	}
	fmt.Printf("  %d task(s) remain\n", len(ids))
	return nil
}

// openStore builds the store for kind. The reopen func is nil for stores
// without persistence.
func openStore(kind, dir string) (demoStore, func() (demoStore, error), error) {
	switch kind {
	case "memory":
		return memstore.NewStore(), nil, nil
	case "json":
		path := filepath.Join(dir, "tasks.json")
		store, err := jsonfile.NewStore(path)
		if err != nil {
			return nil, nil, err
		}
		return store, func() (demoStore, error) {
			return jsonfile.NewStore(path)
		}, nil
	case "sqlite":
		path := filepath.Join(dir, "tasks.db")
		store, err := sqlitestore.NewStore(path)
		if err != nil {
			return nil, nil, err
		}
		return store, func() (demoStore, error) {
			if err := store.Close(); err != nil {
				return nil, err
			}
			return sqlitestore.NewStore(path)
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store kind %q", kind)
	}
}

func newTask(contextID string, state a2a.TaskState, request string) *a2a.Task {
	return &a2a.Task{
		ID:        a2a.NewTaskID(),
		ContextID: contextID,
		Status:    a2a.TaskStatus{State: state},
		History: []*a2a.Message{
			a2a.NewMessage(a2a.MessageRoleUser, a2a.TextPart{Text: request}),
		},
	}
}

func section(title string) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println(title)
	fmt.Println(strings.Repeat("=", 60))
}
