package events

import (
	"encoding/json"
)

// EventPayload is the interface all typed payloads implement.
type EventPayload interface {
	EventType() EventType
}

type TaskCreatedPayload struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Priority string `json:"priority"`
}

func (TaskCreatedPayload) EventType() EventType { return EventTaskCreated }

type TaskCompletedPayload struct {
	ID int `json:"id"`
}

func (TaskCompletedPayload) EventType() EventType { return EventTaskCompleted }

// NewTypedEvent builds an event whose type and payload come from a typed payload.
func NewTypedEvent(source EventSource, payload EventPayload) Event {
	return NewEvent(payload.EventType(), source, toMap(payload))
}

func toMap(v any) map[string]any {
	var result map[string]any
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil
	}
	return result
}
