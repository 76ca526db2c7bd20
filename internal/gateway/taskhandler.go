package gateway

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dohr-michael/tasktrack/internal/tasks"
)

const maxBodyBytes = 1 << 20

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.store.List())
}

// handleCreateTask validates in order: non-empty body, JSON object,
// title and priority present, priority accepted by the store.
// The first failing check decides the response.
func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "unreadable request body", http.StatusBadRequest)
		return
	}
	if len(body) == 0 {
		http.Error(w, "empty request body", http.StatusBadRequest)
		return
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		http.Error(w, "request body must be a JSON object", http.StatusBadRequest)
		return
	}

	rawTitle, hasTitle := fields["title"]
	rawPriority, hasPriority := fields["priority"]
	if !hasTitle || !hasPriority {
		http.Error(w, "title and priority are required", http.StatusBadRequest)
		return
	}

	var title string
	if err := json.Unmarshal(rawTitle, &title); err != nil {
		http.Error(w, "title must be a string", http.StatusBadRequest)
		return
	}
	// A non-string priority stays empty and is rejected by the store below.
	var priority string
	_ = json.Unmarshal(rawPriority, &priority)

	task, err := s.store.Create(title, tasks.Priority(priority))
	if err != nil {
		if errors.Is(err, tasks.ErrInvalidPriority) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		slog.Error("create task", "error", err)
		http.Error(w, "failed to save task", http.StatusInternalServerError)
		return
	}

	writeJSON(w, task)
}

func (s *Server) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		// An integer too large for any stored id names no task.
		if errors.Is(err, strconv.ErrRange) {
			http.Error(w, "task not found", http.StatusNotFound)
			return
		}
		http.Error(w, "invalid task id", http.StatusBadRequest)
		return
	}

	if err := s.store.Complete(id); err != nil {
		if errors.Is(err, tasks.ErrNotFound) {
			http.Error(w, "task not found", http.StatusNotFound)
			return
		}
		slog.Error("complete task", "id", id, "error", err)
		http.Error(w, "failed to save task", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "not found", http.StatusNotFound)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("write response", "error", err)
	}
}
