package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dohr-michael/tasktrack/internal/tasks"
)

// TaskStore is the task list the HTTP API operates on.
type TaskStore interface {
	Create(title string, priority tasks.Priority) (tasks.Task, error)
	List() []tasks.Task
	Complete(id int) error
}

// Server is the tasktrack HTTP server.
type Server struct {
	httpServer *http.Server
	store      TaskStore
	host       string
	port       int
}

// NewServer creates a new server exposing store over HTTP.
// No access log is emitted.
func NewServer(store TaskStore, host string, port int) *Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	s := &Server{
		store: store,
		host:  host,
		port:  port,
	}

	// Everything outside the routing table is a 404, wrong methods included.
	r.NotFound(handleNotFound)
	r.MethodNotAllowed(handleNotFound)

	// API: tasks
	r.Get("/tasks", s.handleListTasks)
	r.Post("/tasks", s.handleCreateTask)
	r.Post("/tasks/{id}/complete", s.handleCompleteTask)

	s.httpServer = &http.Server{
		Addr:     net.JoinHostPort(host, fmt.Sprint(port)),
		Handler:  r,
		ErrorLog: slog.NewLogLogger(slog.Default().Handler(), slog.LevelDebug),
	}

	return s
}

// Handler returns the HTTP handler serving the API.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Listen binds the configured host and port.
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", s.httpServer.Addr, err)
	}
	return ln, nil
}

// Serve accepts connections on ln until the server is stopped.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
