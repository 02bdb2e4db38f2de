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

// Package sqlitestore provides a task store backed by a SQLite database. It
// uses a pure-Go driver, so the demos stay cgo-free, and implements the same
// Save/Get/List surface as the SDK's in-memory store plus Delete, TaskIDs
// and Clear for the task management demo.
package sqlitestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// taskRecord is the database row for a stored task. The full task is kept as
// serialized JSON; the id, context_id and state columns are extracted for
// querying.
type taskRecord struct {
	ID        string `gorm:"primaryKey"`
	ContextID string `gorm:"index"`
	State     string
	TaskJSON  []byte
	CreatedAt time.Time
	UpdatedAt time.Time `gorm:"index"`
}

func (taskRecord) TableName() string { return "tasks" }

// Store persists tasks in a SQLite database.
type Store struct {
	db *gorm.DB
}

// NewStore opens the SQLite database at path, creating the schema when
// needed. Use ":memory:" for an ephemeral store.
func NewStore(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: failed to open %s: %w", path, err)
	}
	if err := db.AutoMigrate(&taskRecord{}); err != nil {
		return nil, fmt.Errorf("sqlitestore: failed to migrate schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("sqlitestore: failed to access connection: %w", err)
	}
	return sqlDB.Close()
}

// Save stores the task, overwriting any previous version.
func (s *Store) Save(ctx context.Context, task *a2a.Task) error {
	if task == nil {
		return errors.New("sqlitestore: task must not be nil")
	}
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("sqlitestore: failed to encode task %s: %w", task.ID, err)
	}
	rec := &taskRecord{
		ID:        string(task.ID),
		ContextID: task.ContextID,
		State:     string(task.Status.State),
		TaskJSON:  data,
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"context_id", "state", "task_json", "updated_at"}),
	}).Create(rec).Error
	if err != nil {
		return fmt.Errorf("sqlitestore: failed to save task %s: %w", task.ID, err)
	}
	return nil
}

// Get returns the task with the given ID, or [a2a.ErrTaskNotFound].
func (s *Store) Get(ctx context.Context, taskID a2a.TaskID) (*a2a.Task, error) {
	var rec taskRecord
	err := s.db.WithContext(ctx).Where("id = ?", string(taskID)).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, a2a.ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: failed to load task %s: %w", taskID, err)
	}
	return decodeTask(&rec)
}

// List returns tasks matching the request filters, most recently updated
// first.
func (s *Store) List(ctx context.Context, req *a2a.ListTasksRequest) (*a2a.ListTasksResponse, error) {
	q := s.db.WithContext(ctx).Model(&taskRecord{})
	if req.ContextID != "" {
		q = q.Where("context_id = ?", req.ContextID)
	}
	if req.Status != a2a.TaskStateUnspecified {
		q = q.Where("state = ?", string(req.Status))
	}
	if req.LastUpdatedAfter != nil {
		q = q.Where("updated_at >= ?", *req.LastUpdatedAfter)
	}

	var recs []taskRecord
	if err := q.Order("updated_at DESC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("sqlitestore: failed to list tasks: %w", err)
	}

	tasks := make([]*a2a.Task, 0, len(recs))
	for i := range recs {
		task, err := decodeTask(&recs[i])
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
	if len(tasks) == 0 {
		tasks = nil
	}
	return &a2a.ListTasksResponse{Tasks: tasks}, nil
}

// Delete removes the task with the given ID, returning [a2a.ErrTaskNotFound]
// when it is not stored.
func (s *Store) Delete(ctx context.Context, taskID a2a.TaskID) error {
	result := s.db.WithContext(ctx).Where("id = ?", string(taskID)).Delete(&taskRecord{})
	if result.Error != nil {
		return fmt.Errorf("sqlitestore: failed to delete task %s: %w", taskID, result.Error)
	}
	if result.RowsAffected == 0 {
		return a2a.ErrTaskNotFound
	}
	return nil
}

// TaskIDs returns the IDs of all stored tasks in lexical order.
func (s *Store) TaskIDs(ctx context.Context) ([]a2a.TaskID, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&taskRecord{}).Order("id").Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: failed to list task IDs: %w", err)
	}
	taskIDs := make([]a2a.TaskID, len(ids))
	for i, id := range ids {
		taskIDs[i] = a2a.TaskID(id)
	}
	return taskIDs, nil
}

// Clear removes every stored task.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Where("1 = 1").Delete(&taskRecord{}).Error; err != nil {
		return fmt.Errorf("sqlitestore: failed to clear tasks: %w", err)
	}
	return nil
}

func decodeTask(rec *taskRecord) (*a2a.Task, error) {
	task := &a2a.Task{}
	if err := json.Unmarshal(rec.TaskJSON, task); err != nil {
		return nil, fmt.Errorf("sqlitestore: failed to decode task %s: %w", rec.ID, err)
	}
	return task, nil
}
