package commands

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/kpi/internal/core/api"
	"github.com/hay-kot/kpi/internal/kpi"
	"github.com/hay-kot/kpi/internal/printer"
	"github.com/hay-kot/kpi/pkg/iojson"
)

type TasksCmd struct {
	flags *Flags
	app   *kpi.App

	// flags
	jsonOutput bool
	userID     int
	date       string
	today      bool
	input      iojson.FileReader[api.TaskCreate]
}

// NewTasksCmd creates a new tasks command
func NewTasksCmd(flags *Flags, app *kpi.App) *TasksCmd {
	return &TasksCmd{flags: flags, app: app}
}

// Register adds the tasks command to the application
func (cmd *TasksCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "tasks",
		Usage: "Work with logged tasks",
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Usage:     "List tasks",
				UsageText: "kpi tasks ls [--user ID] [--date YYYY-MM-DD | --today] [--json]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "output as JSON lines",
						Destination: &cmd.jsonOutput,
					},
					&cli.IntFlag{
						Name:        "user",
						Usage:       "only tasks of this user id",
						Destination: &cmd.userID,
					},
					&cli.StringFlag{
						Name:        "date",
						Usage:       "only tasks logged on this date",
						Destination: &cmd.date,
					},
					&cli.BoolFlag{
						Name:        "today",
						Usage:       "only tasks logged today",
						Destination: &cmd.today,
					},
				},
				Action: cmd.flags.requireApp(cmd.runList),
			},
			{
				Name:      "add",
				Usage:     "Log a task from JSON",
				UsageText: "kpi tasks add [-f task.json]",
				Description: `Reads a task as JSON from the file or stdin, for example:

  {"user_id": 1, "project_id": 2, "description": "Review", "hours": 1.5, "date": "2025-06-02"}`,
				Flags:  []cli.Flag{cmd.input.Flag()},
				Action: cmd.flags.requireApp(cmd.runAdd),
			},
			{
				Name:      "rm",
				Usage:     "Delete a task",
				UsageText: "kpi tasks rm <id>",
				Action:    cmd.flags.requireApp(cmd.runRemove),
			},
		},
	})

	return app
}

func (cmd *TasksCmd) runList(ctx context.Context, c *cli.Command) error {
	date := cmd.date
	if cmd.today {
		date = api.Day(time.Now())
	}
	if date != "" && cmd.userID != 0 {
		return fmt.Errorf("--user cannot be combined with --date or --today")
	}

	var (
		tasks []api.Task
		err   error
	)
	switch {
	case cmd.userID != 0:
		tasks, err = cmd.app.API.Tasks.ListByUser(ctx, cmd.userID)
	case date != "":
		tasks, err = cmd.app.API.Tasks.ListByDate(ctx, date)
	default:
		tasks, err = cmd.app.API.Tasks.List(ctx)
	}
	if err != nil {
		return err
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		for _, t := range tasks {
			if err := iojson.WriteLine(out, t); err != nil {
				return fmt.Errorf("encode task: %w", err)
			}
		}
		return nil
	}

	if len(tasks) == 0 {
		fmt.Fprintln(c.Root().ErrWriter, "No tasks found")
		return nil
	}

	var total float64
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tDATE\tUSER\tPROJECT\tMODULE\tHOURS\tDESCRIPTION")
	for _, t := range tasks {
		total += t.Hours
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%.2f\t%s\n",
			t.ID, t.Date, t.UserName, t.ProjectName, t.ModuleType, t.Hours, t.Description)
	}
	_, _ = fmt.Fprintf(w, "\t\t\t\t\t%.2f\t\n", total)
	return w.Flush()
}

func (cmd *TasksCmd) runAdd(ctx context.Context, c *cli.Command) error {
	in, err := cmd.input.Read()
	if err != nil {
		return err
	}

	task, err := cmd.app.API.Tasks.Create(ctx, in)
	if err != nil {
		return err
	}

	printer.New(c.Root().Writer, c.Root().ErrWriter).Successf("Logged task %d: %.2fh on %s", task.ID, task.Hours, task.Date)
	return nil
}

func (cmd *TasksCmd) runRemove(ctx context.Context, c *cli.Command) error {
	id, err := strconv.Atoi(c.Args().First())
	if err != nil || id <= 0 {
		return fmt.Errorf("task id must be a positive number, got %q", c.Args().First())
	}

	if err := cmd.app.API.Tasks.Delete(ctx, id); err != nil {
		return err
	}

	printer.New(c.Root().Writer, c.Root().ErrWriter).Successf("Deleted task %d", id)
	return nil
}
