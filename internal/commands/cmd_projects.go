package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/kpi/internal/core/api"
	"github.com/hay-kot/kpi/internal/kpi"
	"github.com/hay-kot/kpi/pkg/iojson"
)

type ProjectsCmd struct {
	flags *Flags
	app   *kpi.App

	// flags
	jsonOutput bool
	module     string
}

// NewProjectsCmd creates a new projects command
func NewProjectsCmd(flags *Flags, app *kpi.App) *ProjectsCmd {
	return &ProjectsCmd{flags: flags, app: app}
}

// Register adds the projects command to the application
func (cmd *ProjectsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "projects",
		Usage: "Work with projects",
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Usage:     "List projects",
				UsageText: "kpi projects ls [--module proiecte|evom|operational] [--json]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "output as JSON lines",
						Destination: &cmd.jsonOutput,
					},
					&cli.StringFlag{
						Name:        "module",
						Aliases:     []string{"m"},
						Usage:       "only projects of this module type",
						Destination: &cmd.module,
					},
				},
				Action: cmd.flags.requireApp(cmd.runList),
			},
		},
	})

	return app
}

func (cmd *ProjectsCmd) runList(ctx context.Context, c *cli.Command) error {
	var (
		projects []api.Project
		err      error
	)
	if cmd.module != "" {
		projects, err = cmd.app.API.Projects.ListByModule(ctx, api.ModuleType(cmd.module))
	} else {
		projects, err = cmd.app.API.Projects.List(ctx)
	}
	if err != nil {
		return err
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		for _, p := range projects {
			if err := iojson.WriteLine(out, p); err != nil {
				return fmt.Errorf("encode project: %w", err)
			}
		}
		return nil
	}

	if len(projects) == 0 {
		fmt.Fprintln(c.Root().ErrWriter, "No projects found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tMODULE\tSTATUS\tHOURS")
	for _, p := range projects {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.2f\n", p.ID, p.Name, p.ModuleType, p.Status, p.TotalHours)
	}
	return w.Flush()
}
