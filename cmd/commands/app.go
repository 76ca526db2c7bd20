package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/dohr-michael/tasktrack/internal/config"
	"github.com/dohr-michael/tasktrack/internal/events"
	"github.com/dohr-michael/tasktrack/internal/storage"
	"github.com/dohr-michael/tasktrack/internal/tasks"
)

// app wires the task store to the event bus and the optional journal.
type app struct {
	store   *tasks.Store
	bus     *events.Bus
	journal *storage.EventLogger
}

// source tags the events this process publishes.
func openApp(cfg *config.Config, source events.EventSource) (*app, error) {
	bus := events.NewBus(cfg.Events.BufferSize)

	var journal *storage.EventLogger
	if cfg.Events.Journal != "" {
		journal = storage.NewEventLogger(cfg.Events.Journal, bus)
	}

	store, err := tasks.Open(cfg.Store.Path,
		tasks.WithAtomicWrite(cfg.Store.AtomicWrite),
		tasks.WithPublisher(bus),
		tasks.WithSource(source),
	)
	if err != nil {
		bus.Close()
		if journal != nil {
			journal.Close()
		}
		if errors.Is(err, tasks.ErrLocked) {
			return nil, fmt.Errorf("task file %s is in use by another tasktrack process: %w", cfg.Store.Path, err)
		}
		return nil, fmt.Errorf("open task file: %w", err)
	}

	slog.Debug("task store ready", "path", store.Path(), "journal", cfg.Events.Journal)
	return &app{store: store, bus: bus, journal: journal}, nil
}

// Close flushes pending events to the journal and releases the task file.
func (a *app) Close() {
	a.bus.Close()
	if a.journal != nil {
		a.journal.Close()
	}
	if err := a.store.Close(); err != nil {
		slog.Warn("release task file", "path", a.store.Path(), "error", err)
	}
}
