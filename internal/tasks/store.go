package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dohr-michael/tasktrack/internal/events"
	"github.com/dohr-michael/tasktrack/internal/storage/flatfile"
)

// Publisher receives task lifecycle events once a change is on disk.
// PublishAsync may block until the event is accepted.
type Publisher interface {
	PublishAsync(ctx context.Context, event events.Event) error
}

type options struct {
	atomicWrite bool
	publisher   Publisher
	source      events.EventSource
}

// Option configures a Store.
type Option func(*options)

// WithAtomicWrite makes saves go through a temp file + rename.
func WithAtomicWrite(enabled bool) Option {
	return func(o *options) { o.atomicWrite = enabled }
}

// WithPublisher sets where task.created / task.completed events go.
func WithPublisher(p Publisher) Option {
	return func(o *options) { o.publisher = p }
}

// WithSource sets the source recorded on published events. Defaults to events.SourceStore.
func WithSource(source events.EventSource) Option {
	return func(o *options) { o.source = source }
}

// Store is the in-memory task list plus the next id, mirrored to a single file.
// Every mutation rewrites the whole file before returning.
type Store struct {
	mu        sync.Mutex
	file      *flatfile.File
	publisher Publisher
	source    events.EventSource
	tasks     []Task
	nextID    int
}

// Open locks the task file at path and loads it.
// A missing, empty or corrupt file yields an empty store.
func Open(path string, opts ...Option) (*Store, error) {
	o := options{source: events.SourceStore}
	for _, opt := range opts {
		opt(&o)
	}

	file := flatfile.New(path, o.atomicWrite)
	if err := file.TryLock(); err != nil {
		return nil, err
	}

	s := &Store{
		file:      file,
		publisher: o.publisher,
		source:    o.source,
	}
	if err := s.load(); err != nil {
		_ = file.Unlock()
		return nil, err
	}
	return s, nil
}

// Close releases the task file lock.
func (s *Store) Close() error {
	return s.file.Unlock()
}

// Path returns the task file path.
func (s *Store) Path() string { return s.file.Path() }

// Create appends a new open task and persists the store.
func (s *Store) Create(title string, priority Priority) (Task, error) {
	if !priority.Valid() {
		return Task{}, ErrInvalidPriority
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := Task{
		ID:       s.nextID,
		Title:    title,
		Priority: priority,
	}
	s.tasks = append(s.tasks, t)
	s.nextID++

	if err := s.save(); err != nil {
		s.tasks = s.tasks[:len(s.tasks)-1]
		s.nextID--
		return Task{}, fmt.Errorf("persist new task: %w", err)
	}

	s.publish(events.TaskCreatedPayload{ID: t.ID, Title: t.Title, Priority: string(t.Priority)})
	return t, nil
}

// List returns all tasks in creation order.
func (s *Store) List() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Complete marks the task with the given id as done and persists the store.
// Completing an already completed task succeeds.
func (s *Store) Complete(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tasks {
		if s.tasks[i].ID != id {
			continue
		}

		wasDone := s.tasks[i].IsDone
		s.tasks[i].IsDone = true
		if err := s.save(); err != nil {
			s.tasks[i].IsDone = wasDone
			return fmt.Errorf("persist task %d: %w", id, err)
		}

		s.publish(events.TaskCompletedPayload{ID: id})
		return nil
	}
	return fmt.Errorf("task %d: %w", id, ErrNotFound)
}

// NextID returns the id the next created task will get.
func (s *Store) NextID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextID
}

func (s *Store) publish(p events.EventPayload) {
	if s.publisher == nil {
		return
	}
	event := events.NewTypedEvent(s.source, p)
	if err := s.publisher.PublishAsync(context.Background(), event); err != nil {
		slog.Warn("publish task event", "type", event.Type, "error", err)
	}
}

// load must be called with mu held or before the store is shared.
func (s *Store) load() error {
	s.tasks = []Task{}
	s.nextID = 1

	data, err := s.file.Read()
	if err != nil {
		return err
	}
	if len(data) == 0 {
		slog.Debug("task file absent, starting empty", "path", s.file.Path())
		return nil
	}

	snap, err := decodeSnapshot(data)
	if err != nil {
		slog.Warn("task file unreadable, starting empty", "path", s.file.Path(), "error", err)
		return nil
	}

	s.tasks = snap.Tasks
	s.nextID = snap.NextID
	slog.Debug("tasks loaded", "path", s.file.Path(), "count", len(s.tasks), "next_id", s.nextID)
	return nil
}

// save must be called with mu held.
func (s *Store) save() error {
	data, err := encodeSnapshot(snapshot{Tasks: s.tasks, NextID: s.nextID})
	if err != nil {
		return err
	}
	if err := s.file.Write(data); err != nil {
		return err
	}
	slog.Debug("tasks saved", "path", s.file.Path(), "count", len(s.tasks))
	return nil
}
