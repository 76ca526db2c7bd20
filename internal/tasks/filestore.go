package tasks

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

// snapshot is the on-disk form of the store: {"tasks": [...], "next_id": n}.
type snapshot struct {
	Tasks  []Task `json:"tasks"`
	NextID int    `json:"next_id"`
}

// decodeSnapshot parses a task file. Any structural mismatch is an error;
// callers map every error to the empty store.
func decodeSnapshot(data []byte) (snapshot, error) {
	var raw struct {
		Tasks  *[]Task `json:"tasks"`
		NextID *int    `json:"next_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return snapshot{}, fmt.Errorf("parse task file: %w", err)
	}
	if raw.Tasks == nil {
		return snapshot{}, errors.New("task file has no tasks field")
	}
	if raw.NextID == nil {
		return snapshot{}, errors.New("task file has no next_id field")
	}

	snap := snapshot{Tasks: *raw.Tasks, NextID: *raw.NextID}
	maxID := 0
	for _, t := range snap.Tasks {
		maxID = max(maxID, t.ID)
	}
	if snap.NextID <= maxID {
		slog.Warn("task file next_id behind existing ids, advancing", "next_id", snap.NextID, "max_id", maxID)
		snap.NextID = maxID + 1
	}
	if snap.NextID < 1 {
		snap.NextID = 1
	}
	return snap, nil
}

func encodeSnapshot(snap snapshot) ([]byte, error) {
	if snap.Tasks == nil {
		snap.Tasks = []Task{}
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("marshal tasks: %w", err)
	}
	return data, nil
}
