// Package storage holds on-disk persistence helpers that sit beside the task file.
package storage

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/dohr-michael/tasktrack/internal/events"
)

// EventLogger appends bus events to a JSONL journal file.
type EventLogger struct {
	mu          sync.Mutex
	path        string
	unsubscribe func()
}

// NewEventLogger creates an EventLogger that subscribes to all bus events
// and appends them as JSONL to path.
func NewEventLogger(path string, bus *events.Bus) *EventLogger {
	el := &EventLogger{path: path}
	el.unsubscribe = bus.Subscribe(el.handleEvent)
	return el
}

// Path returns the journal file path.
func (el *EventLogger) Path() string { return el.path }

// Close unsubscribes the logger from the event bus.
func (el *EventLogger) Close() {
	if el.unsubscribe != nil {
		el.unsubscribe()
	}
}

func (el *EventLogger) handleEvent(e events.Event) {
	if err := el.writeEvent(e); err != nil {
		slog.Warn("journal write failed", "path", el.path, "event", e.Type, "error", err)
	}
}

func (el *EventLogger) writeEvent(e events.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	el.mu.Lock()
	defer el.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(el.path), 0755); err != nil {
		return err
	}

	f, err := os.OpenFile(el.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(data)
	return err
}
