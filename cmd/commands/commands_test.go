package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dohr-michael/tasktrack/internal/tasks"
)

type env struct {
	dir      string
	taskFile string
	config   string
}

func newEnv(t *testing.T) env {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("TASKTRACK_PATH", dir)
	return env{
		dir:      dir,
		taskFile: filepath.Join(dir, "tasks.txt"),
		config:   filepath.Join(dir, "config.jsonc"),
	}
}

func (e env) run(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var buf bytes.Buffer
	root.Writer = &buf
	full := append([]string{"tasktrack", "--config", e.config, "--file", e.taskFile}, args...)
	err := root.Run(ctx, full)
	return buf.String(), err
}

func TestTasksAddListDone(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	out, err := e.run(t, ctx, "tasks", "add", "--priority", "high", "Buy", "milk")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !strings.Contains(out, "Created task 1 (high): Buy milk") {
		t.Errorf("add output = %q", out)
	}

	if _, err := e.run(t, ctx, "tasks", "done", "1"); err != nil {
		t.Fatalf("done: %v", err)
	}

	out, err = e.run(t, ctx, "tasks", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var list []tasks.Task
	if err := json.Unmarshal([]byte(out), &list); err != nil {
		t.Fatalf("list output is not JSON: %v\n%s", err, out)
	}
	if len(list) != 1 || list[0].Title != "Buy milk" || !list[0].IsDone {
		t.Errorf("list = %+v", list)
	}
}

func TestTasksListTable(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	out, err := e.run(t, ctx, "tasks", "list", "--format", "table")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "No tasks found." {
		t.Errorf("empty table output = %q", out)
	}

	if _, err := e.run(t, ctx, "tasks", "add", "-p", "low", "Walk dog"); err != nil {
		t.Fatal(err)
	}
	out, err = e.run(t, ctx, "tasks", "list", "--format", "table")
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %q", out)
	}
	if fields := strings.Fields(lines[1]); len(fields) < 4 || fields[0] != "1" || fields[1] != "low" || fields[2] != "no" {
		t.Errorf("row = %q", lines[1])
	}
}

func TestTasksErrors(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	if _, err := e.run(t, ctx, "tasks", "add", "--priority", "urgent", "X"); !errors.Is(err, tasks.ErrInvalidPriority) {
		t.Errorf("add urgent: error = %v, want ErrInvalidPriority", err)
	}
	if _, err := e.run(t, ctx, "tasks", "add"); err == nil {
		t.Error("add without title: expected error")
	}
	if _, err := e.run(t, ctx, "tasks", "done", "abc"); err == nil {
		t.Error("done abc: expected error")
	}
	if _, err := e.run(t, ctx, "tasks", "done", "999"); !errors.Is(err, tasks.ErrNotFound) {
		t.Errorf("done 999: error = %v, want ErrNotFound", err)
	}
	if _, err := e.run(t, ctx, "tasks", "list", "--format", "xml"); err == nil {
		t.Error("list --format xml: expected error")
	}
}

func TestTasksFileInUse(t *testing.T) {
	e := newEnv(t)

	held, err := tasks.Open(e.taskFile)
	if err != nil {
		t.Fatal(err)
	}
	defer held.Close()

	_, err = e.run(t, context.Background(), "tasks", "add", "X")
	if !errors.Is(err, tasks.ErrLocked) {
		t.Fatalf("error = %v, want ErrLocked", err)
	}
}

func TestJournalFromConfig(t *testing.T) {
	e := newEnv(t)
	journal := filepath.Join(e.dir, "journal.jsonl")
	cfg := `{
	// journal every mutation
	"events": {"journal": "` + journal + `"}
}`
	if err := os.WriteFile(e.config, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if _, err := e.run(t, ctx, "tasks", "add", "X"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.run(t, ctx, "tasks", "done", "1"); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(journal)
	if err != nil {
		t.Fatalf("read journal: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("journal lines = %d, want 2:\n%s", len(lines), data)
	}
	if !strings.Contains(lines[0], `"task.created"`) || !strings.Contains(lines[1], `"task.completed"`) {
		t.Errorf("journal = %s", data)
	}
	for _, line := range lines {
		if !strings.Contains(line, `"source":"cli"`) {
			t.Errorf("journal line without cli source: %s", line)
		}
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	e := newEnv(t)

	// The startup line is not subject to the log level.
	if err := os.WriteFile(e.config, []byte(`{"log": {"level": "error"}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := e.run(t, ctx, "serve", "--host", "127.0.0.1", "--port", "0")
	if err != nil {
		t.Fatalf("serve: %v", err)
	}
	if !strings.HasPrefix(out, "tasktrack listening on http://127.0.0.1:") {
		t.Errorf("startup output = %q", out)
	}

	// The task file lock is released once serve returns.
	if _, err := e.run(t, context.Background(), "tasks", "add", "after serve"); err != nil {
		t.Fatalf("add after serve: %v", err)
	}
}
