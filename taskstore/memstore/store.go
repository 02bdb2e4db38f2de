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

// Package memstore provides an in-memory task store with the same surface as
// the persistent stores in this repository: the Save/Get/List interface a
// server consumes via a2asrv.WithTaskStore plus the Delete, TaskIDs and Clear
// operations the task management demo uses.
package memstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/a2aproject/a2a-go/a2a"
)

type record struct {
	task      *a2a.Task
	createdAt time.Time
	updatedAt time.Time
}

// Store keeps deep-copied tasks in memory. Safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	tasks map[a2a.TaskID]*record
	now   func() time.Time
}

// Option configures a [Store].
type Option func(*Store)

// WithTimeProvider overrides the clock used for creation and update
// timestamps.
func WithTimeProvider(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		tasks: make(map[a2a.TaskID]*record),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save stores a copy of the task, overwriting any previous version. The
// creation time of an existing task is preserved.
func (s *Store) Save(ctx context.Context, task *a2a.Task) error {
	if task == nil {
		return errors.New("memstore: task must not be nil")
	}
	copied, err := copyTask(task)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	rec := &record{task: copied, createdAt: now, updatedAt: now}
	if prev, ok := s.tasks[task.ID]; ok {
		rec.createdAt = prev.createdAt
	}
	s.tasks[task.ID] = rec
	return nil
}

// Get returns a copy of the task with the given ID, or [a2a.ErrTaskNotFound].
func (s *Store) Get(ctx context.Context, taskID a2a.TaskID) (*a2a.Task, error) {
	s.mu.RLock()
	rec, ok := s.tasks[taskID]
	s.mu.RUnlock()

	if !ok {
		return nil, a2a.ErrTaskNotFound
	}
	return copyTask(rec.task)
}

// List returns tasks matching the request filters, ordered by last update
// time.
func (s *Store) List(ctx context.Context, req *a2a.ListTasksRequest) (*a2a.ListTasksResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*record
	for _, rec := range s.tasks {
		if req.ContextID != "" && rec.task.ContextID != req.ContextID {
			continue
		}
		if req.Status != a2a.TaskStateUnspecified && rec.task.Status.State != req.Status {
			continue
		}
		if req.LastUpdatedAfter != nil && rec.updatedAt.Before(*req.LastUpdatedAfter) {
			continue
		}
		matched = append(matched, rec)
	}
	// Most recently updated first.
	slices.SortFunc(matched, func(a, b *record) int {
		return b.updatedAt.Compare(a.updatedAt)
	})

	var tasks []*a2a.Task
	for _, rec := range matched {
		task, err := copyTask(rec.task)
		if err != nil {
			return nil, err
		}
		if req.HistoryLength > 0 && len(task.History) > req.HistoryLength {
			task.History = task.History[:req.HistoryLength]
		}
		if !req.IncludeArtifacts {
			task.Artifacts = nil
		}
		tasks = append(tasks, task)
	}
	return &a2a.ListTasksResponse{Tasks: tasks}, nil
}

// Delete removes the task with the given ID, returning [a2a.ErrTaskNotFound]
// when it is not stored.
func (s *Store) Delete(ctx context.Context, taskID a2a.TaskID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[taskID]; !ok {
		return a2a.ErrTaskNotFound
	}
	delete(s.tasks, taskID)
	return nil
}

// TaskIDs returns the IDs of all stored tasks in lexical order.
func (s *Store) TaskIDs(ctx context.Context) ([]a2a.TaskID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]a2a.TaskID, 0, len(s.tasks))
	for id := range s.tasks {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

// Clear removes every stored task.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = make(map[a2a.TaskID]*record)
	return nil
}

// copyTask deep-copies through a JSON round-trip, the same representation the
// persistent stores use.
func copyTask(task *a2a.Task) (*a2a.Task, error) {
	data, err := json.Marshal(task)
	if err != nil {
		return nil, fmt.Errorf("memstore: failed to copy task: %w", err)
	}
	var out a2a.Task
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("memstore: failed to copy task: %w", err)
	}
	return &out, nil
}
