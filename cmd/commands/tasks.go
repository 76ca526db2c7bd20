package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/dohr-michael/tasktrack/internal/events"
	"github.com/dohr-michael/tasktrack/internal/tasks"
)

// NewTasksCommand returns the tasks subcommand.
func NewTasksCommand() *cli.Command {
	return &cli.Command{
		Name:  "tasks",
		Usage: "Read and change the task file directly (the server must not be running)",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List all tasks",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "format",
						Usage: "auto, table or json (auto: table on a terminal, json otherwise)",
						Value: "auto",
					},
				},
				Action: runTasksList,
			},
			{
				Name:      "add",
				Usage:     "Create a task",
				ArgsUsage: "<title>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "priority",
						Aliases: []string{"p"},
						Usage:   "low, normal or high",
						Value:   string(tasks.PriorityNormal),
					},
				},
				Action: runTasksAdd,
			},
			{
				Name:      "done",
				Usage:     "Mark a task as done",
				ArgsUsage: "<task_id>",
				Action:    runTasksDone,
			},
		},
		DefaultCommand: "list",
	}
}

func runTasksList(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	a, err := openApp(cfg, events.SourceCLI)
	if err != nil {
		return err
	}
	defer a.Close()

	w := cmd.Root().Writer
	list := a.store.List()

	format := cmd.String("format")
	if format == "auto" {
		format = "json"
		if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			format = "table"
		}
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	case "table":
		return writeTaskTable(w, list)
	default:
		return fmt.Errorf("unknown format %q (want auto, table or json)", format)
	}
}

func writeTaskTable(w io.Writer, list []tasks.Task) error {
	if len(list) == 0 {
		fmt.Fprintln(w, "No tasks found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPRIORITY\tDONE\tTITLE")
	for _, t := range list {
		done := "no"
		if t.IsDone {
			done = "yes"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", t.ID, t.Priority, done, displayTitle(t.Title))
	}
	return tw.Flush()
}

// displayTitle keeps a task on one table row.
func displayTitle(title string) string {
	title = strings.NewReplacer("\r", " ", "\n", " ", "\t", " ").Replace(title)
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

func runTasksAdd(_ context.Context, cmd *cli.Command) error {
	title := strings.Join(cmd.Args().Slice(), " ")
	if title == "" {
		return fmt.Errorf("usage: tasktrack tasks add [--priority low|normal|high] <title>")
	}
	priority, err := tasks.ParsePriority(cmd.String("priority"))
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	a, err := openApp(cfg, events.SourceCLI)
	if err != nil {
		return err
	}
	defer a.Close()

	t, err := a.store.Create(title, priority)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}

	fmt.Fprintf(cmd.Root().Writer, "Created task %d (%s): %s\n", t.ID, t.Priority, displayTitle(t.Title))
	return nil
}

func runTasksDone(_ context.Context, cmd *cli.Command) error {
	arg := cmd.Args().First()
	if arg == "" {
		return fmt.Errorf("usage: tasktrack tasks done <task_id>")
	}
	id, err := strconv.Atoi(arg)
	if err != nil {
		return fmt.Errorf("invalid task id %q", arg)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	a, err := openApp(cfg, events.SourceCLI)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.store.Complete(id); err != nil {
		return fmt.Errorf("complete task: %w", err)
	}

	fmt.Fprintf(cmd.Root().Writer, "Completed task %d\n", id)
	return nil
}
