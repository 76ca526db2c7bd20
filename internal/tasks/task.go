// Package tasks provides the persistent task list behind the HTTP API.
package tasks

import (
	"errors"
	"fmt"

	"github.com/dohr-michael/tasktrack/internal/storage/flatfile"
)

var (
	ErrInvalidPriority = errors.New("priority must be one of 'low', 'normal', 'high'")
	ErrNotFound        = errors.New("task not found")
	ErrLocked          = flatfile.ErrLocked
)

// Priority represents the urgency label of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the three known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh:
		return true
	}
	return false
}

// ParsePriority converts s into a Priority.
func ParsePriority(s string) (Priority, error) {
	p := Priority(s)
	if !p.Valid() {
		return "", fmt.Errorf("%q: %w", s, ErrInvalidPriority)
	}
	return p, nil
}

// Task is a unit of work. Field order is the wire order.
type Task struct {
	ID       int      `json:"id"`
	Title    string   `json:"title"`
	Priority Priority `json:"priority"`
	IsDone   bool     `json:"isDone"`
}
