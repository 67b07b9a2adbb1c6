package commands

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/kpi/internal/core/api"
	"github.com/hay-kot/kpi/internal/core/styles"
	"github.com/hay-kot/kpi/internal/kpi"
	"github.com/hay-kot/kpi/pkg/iojson"
)

type DashboardCmd struct {
	flags *Flags
	app   *kpi.App

	// flags
	jsonOutput bool
	date       string
}

// NewDashboardCmd creates a new dashboard command
func NewDashboardCmd(flags *Flags, app *kpi.App) *DashboardCmd {
	return &DashboardCmd{flags: flags, app: app}
}

// Register adds the dashboard command to the application
func (cmd *DashboardCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "dashboard",
		Usage:     "Show headline statistics",
		UsageText: "kpi dashboard [--date YYYY-MM-DD] [--json]",
		Description: `Loads users, projects, tasks, and the overview in parallel and prints a
summary with hours per module. --date adds the per-user breakdown for that day.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &cmd.jsonOutput,
			},
			&cli.StringFlag{
				Name:        "date",
				Usage:       "include the daily breakdown for this date",
				Destination: &cmd.date,
			},
		},
		Action: cmd.flags.requireApp(cmd.run),
	})

	return app
}

type dashboardReport struct {
	Overview      api.Overview               `json:"overview"`
	Users         int                        `json:"users"`
	Projects      int                        `json:"projects"`
	Tasks         int                        `json:"tasks"`
	HoursByModule map[api.ModuleType]float64 `json:"hours_by_module"`
	Daily         *api.DailyStats            `json:"daily,omitempty"`
}

func (cmd *DashboardCmd) run(ctx context.Context, c *cli.Command) error {
	d, err := cmd.app.API.Dashboard(ctx)
	if err != nil {
		return err
	}

	report := dashboardReport{
		Overview:      d.Overview,
		Users:         len(d.Users),
		Projects:      len(d.Projects),
		Tasks:         len(d.Tasks),
		HoursByModule: api.HoursByModule(d.Tasks),
	}

	if cmd.date != "" {
		daily, err := cmd.app.API.Stats.Daily(ctx, cmd.date)
		if err != nil {
			return err
		}
		report.Daily = &daily
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		return iojson.Write(out, report)
	}
	return writeDashboard(out, report)
}

func writeDashboard(out io.Writer, r dashboardReport) error {
	_, _ = fmt.Fprintln(out, styles.CommandHeaderStyle.Render("Overview"))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Users\t%d\n", r.Overview.TotalUsers)
	_, _ = fmt.Fprintf(w, "Active projects\t%d\n", r.Overview.ActiveProjects)
	_, _ = fmt.Fprintf(w, "Tasks\t%d\n", r.Overview.TotalTasks)
	_, _ = fmt.Fprintf(w, "Total hours\t%.2f\n", r.Overview.TotalHours)
	_, _ = fmt.Fprintf(w, "Average per user\t%.2f\n", r.Overview.AverageHoursPerUser)
	if r.Overview.TopUser.Name != "" {
		_, _ = fmt.Fprintf(w, "Top user\t%s (%.2fh)\n", r.Overview.TopUser.Name, r.Overview.TopUser.Hours)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, styles.CommandHeaderStyle.Render("Hours by module"))
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, m := range api.ModuleTypes {
		_, _ = fmt.Fprintf(w, "%s\t%.2f\n", m, r.HoursByModule[m])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if r.Daily == nil {
		return nil
	}

	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, styles.CommandHeaderStyle.Render("Daily "+r.Daily.Date))
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, u := range r.Daily.UserStats {
		hours := "-"
		if u.DailyHours != nil {
			hours = fmt.Sprintf("%.2f", *u.DailyHours)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\n", u.Name, hours)
	}
	_, _ = fmt.Fprintf(w, "Total\t%.2f\n", r.Daily.TotalHours)
	return w.Flush()
}
