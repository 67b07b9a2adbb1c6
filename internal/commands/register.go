package commands

import (
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/kpi/internal/kpi"
)

// Register adds every non-interactive subcommand to root. The TUI command is
// registered separately because it also serves as the root action.
func Register(root *cli.Command, flags *Flags, app *kpi.App) *cli.Command {
	root = NewNotifyCmd(flags, app).Register(root)
	root = NewThemeCmd(flags, app).Register(root)
	root = NewWhoamiCmd(flags, app).Register(root)
	root = NewTasksCmd(flags, app).Register(root)
	root = NewProjectsCmd(flags, app).Register(root)
	root = NewDashboardCmd(flags, app).Register(root)
	root = NewExportCmd(flags, app).Register(root)
	root = NewConfigValidateCmd(flags).Register(root)
	return root
}
