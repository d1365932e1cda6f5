// Package storage persists the task collection as a single JSON array on
// disk. Every mutation serializes the whole collection and overwrites the
// file, so the persisted document and the in-memory list are identical after
// each operation.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"agenda/internal/task"
)

// ErrValidation marks a rejected mutation: the input was invalid and nothing
// changed, in memory or on disk.
var ErrValidation = errors.New("validation failed")

type Store struct {
	path  string
	tasks []task.Task
}

// Open loads the persisted collection at path. A missing file yields an
// empty store; an unreadable or malformed file is an error.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("store path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, err
	}

	s := &Store{path: path}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read task file: %w", err)
	}
	if len(data) == 0 {
		return s, nil
	}
	if err := validate(data); err != nil {
		return nil, fmt.Errorf("task file %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &s.tasks); err != nil {
		return nil, fmt.Errorf("parse task file: %w", err)
	}
	return s, nil
}

// Tasks returns a snapshot of the collection in insertion order.
func (s *Store) Tasks() []task.Task {
	out := make([]task.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Add validates, appends, and persists a new task. The returned task carries
// the generated id. Title and start are required; the category is stored as
// given.
func (s *Store) Add(title string, start time.Time, category string) (task.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return task.Task{}, fmt.Errorf("%w: title is empty", ErrValidation)
	}
	if start.IsZero() {
		return task.Task{}, fmt.Errorf("%w: due date is empty", ErrValidation)
	}

	t := task.Task{
		ID:       task.NewID(time.Now(), s.has),
		Title:    title,
		Start:    start,
		End:      start,
		Category: strings.TrimSpace(category),
	}
	s.tasks = append(s.tasks, t)
	if err := s.persist(); err != nil {
		return t, err
	}
	return t, nil
}

// Remove deletes the task with the given id. An absent id is a no-op.
func (s *Store) Remove(id string) error {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return s.persist()
		}
	}
	return nil
}

// SetCompleted updates the completed flag. An absent id is a no-op.
func (s *Store) SetCompleted(id string, completed bool) error {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i].Completed = completed
			return s.persist()
		}
	}
	return nil
}

// Get returns the task with the given id, if present.
func (s *Store) Get(id string) (task.Task, bool) {
	for _, t := range s.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return task.Task{}, false
}

func (s *Store) has(id string) bool {
	_, ok := s.Get(id)
	return ok
}

// persist rewrites the whole collection. A failed write leaves the in-memory
// list ahead of the file; the next successful write catches it up.
func (s *Store) persist() error {
	out := s.tasks
	if out == nil {
		out = []task.Task{}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal task file: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write task file: %w", err)
	}
	return nil
}
