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

// Package jsonfile provides a task store persisted to a single JSON file.
// It implements the same Save/Get/List surface as the SDK's in-memory store
// so it can be plugged into a server with a2asrv.WithTaskStore, and adds the
// file-management operations the task management demo uses: Delete, TaskIDs
// and Clear.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/a2aproject/a2a-go/a2a"
)

type record struct {
	Task      *a2a.Task `json:"task"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type fileLayout struct {
	Tasks map[a2a.TaskID]*record `json:"tasks"`
}

// Store persists tasks in a pretty-printed JSON file. Writes go through a
// temporary file and an atomic rename so a crash never leaves the file
// half-written. Safe for concurrent use by a single process.
type Store struct {
	mu   sync.RWMutex
	path string
	now  func() time.Time
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

// NewStore opens a store backed by the file at path, creating an empty one
// when the file does not exist yet.
func NewStore(path string, opts ...Option) (*Store, error) {
	s := &Store{path: path, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("jsonfile: failed to create %s: %w", dir, err)
		}
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := s.write(&fileLayout{Tasks: map[a2a.TaskID]*record{}}); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, fmt.Errorf("jsonfile: failed to stat %s: %w", path, err)
	}
	return s, nil
}

// Save stores the task, overwriting any previous version. The creation time
// of an existing task is preserved.
func (s *Store) Save(ctx context.Context, task *a2a.Task) error {
	if task == nil {
		return errors.New("jsonfile: task must not be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	layout, err := s.read()
	if err != nil {
		return err
	}
	now := s.now().UTC()
	rec := &record{Task: task, CreatedAt: now, UpdatedAt: now}
	if prev, ok := layout.Tasks[task.ID]; ok {
		rec.CreatedAt = prev.CreatedAt
	}
	layout.Tasks[task.ID] = rec
	return s.write(layout)
}

// Get returns the task with the given ID, or [a2a.ErrTaskNotFound].
func (s *Store) Get(ctx context.Context, taskID a2a.TaskID) (*a2a.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	layout, err := s.read()
	if err != nil {
		return nil, err
	}
	rec, ok := layout.Tasks[taskID]
	if !ok {
		return nil, a2a.ErrTaskNotFound
	}
	return rec.Task, nil
}

// List returns tasks matching the request filters, ordered by last update
// time.
func (s *Store) List(ctx context.Context, req *a2a.ListTasksRequest) (*a2a.ListTasksResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	layout, err := s.read()
	if err != nil {
		return nil, err
	}

	var matched []*record
	for _, rec := range layout.Tasks {
		if req.ContextID != "" && rec.Task.ContextID != req.ContextID {
			continue
		}
		if req.Status != a2a.TaskStateUnspecified && rec.Task.Status.State != req.Status {
			continue
		}
		if req.LastUpdatedAfter != nil && rec.UpdatedAt.Before(*req.LastUpdatedAfter) {
			continue
		}
		matched = append(matched, rec)
	}
	// Most recently updated first.
	slices.SortFunc(matched, func(a, b *record) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})

	var tasks []*a2a.Task
	for _, rec := range matched {
		task := rec.Task
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

	layout, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := layout.Tasks[taskID]; !ok {
		return a2a.ErrTaskNotFound
	}
	delete(layout.Tasks, taskID)
	return s.write(layout)
}

// TaskIDs returns the IDs of all stored tasks in lexical order.
func (s *Store) TaskIDs(ctx context.Context) ([]a2a.TaskID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	layout, err := s.read()
	if err != nil {
		return nil, err
	}
	ids := make([]a2a.TaskID, 0, len(layout.Tasks))
	for id := range layout.Tasks {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

// Clear removes every stored task.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(&fileLayout{Tasks: map[a2a.TaskID]*record{}})
}

func (s *Store) read() (*fileLayout, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return &fileLayout{Tasks: map[a2a.TaskID]*record{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("jsonfile: failed to read %s: %w", s.path, err)
	}
	layout := &fileLayout{}
	if err := json.Unmarshal(data, layout); err != nil {
		return nil, fmt.Errorf("jsonfile: failed to parse %s: %w", s.path, err)
	}
	if layout.Tasks == nil {
		layout.Tasks = map[a2a.TaskID]*record{}
	}
	return layout, nil
}

func (s *Store) write(layout *fileLayout) error {
	data, err := json.MarshalIndent(layout, "", "  ")
	if err != nil {
		return fmt.Errorf("jsonfile: failed to encode tasks: %w", err)
	}
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("jsonfile: failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("jsonfile: failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("jsonfile: failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("jsonfile: failed to replace %s: %w", s.path, err)
	}
	return nil
}
