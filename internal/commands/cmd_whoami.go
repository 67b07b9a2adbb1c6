package commands

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/kpi/internal/kpi"
	"github.com/hay-kot/kpi/pkg/iojson"
)

type WhoamiCmd struct {
	flags *Flags
	app   *kpi.App

	// flags
	jsonOutput bool
	logout     bool
}

// NewWhoamiCmd creates a new whoami command
func NewWhoamiCmd(flags *Flags, app *kpi.App) *WhoamiCmd {
	return &WhoamiCmd{flags: flags, app: app}
}

// Register adds the whoami command to the application
func (cmd *WhoamiCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "whoami",
		Usage:     "Show the signed-in user",
		UsageText: "kpi whoami [--json] [--logout]",
		Description: `Resolves the current user through the configured identity provider.
The result is cached for identity.cache_ttl. --logout ends the remote session
and drops the cached user.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &cmd.jsonOutput,
			},
			&cli.BoolFlag{
				Name:        "logout",
				Usage:       "sign out instead",
				Destination: &cmd.logout,
			},
		},
		Action: cmd.flags.requireApp(cmd.run),
	})

	return app
}

func (cmd *WhoamiCmd) run(ctx context.Context, c *cli.Command) error {
	out := c.Root().Writer

	if cmd.logout {
		if err := cmd.app.Auth.Logout(ctx); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(out, "Signed out")
		return nil
	}

	user, err := cmd.app.Auth.Login(ctx)
	if err != nil {
		return err
	}

	if cmd.jsonOutput {
		return iojson.Write(out, user)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Name\t%s\n", user.Name())
	_, _ = fmt.Fprintf(w, "Username\t%s\n", user.Username)
	_, _ = fmt.Fprintf(w, "Email\t%s\n", user.Email)
	_, _ = fmt.Fprintf(w, "Department\t%s\n", user.Department)
	_, _ = fmt.Fprintf(w, "Domain\t%s\n", user.Domain)
	_, _ = fmt.Fprintf(w, "Groups\t%s\n", strings.Join(user.Groups, ", "))
	return w.Flush()
}
