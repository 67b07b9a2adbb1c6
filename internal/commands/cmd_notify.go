package commands

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/kpi/internal/core/notify"
	"github.com/hay-kot/kpi/internal/kpi"
	"github.com/hay-kot/kpi/internal/printer"
	"github.com/hay-kot/kpi/pkg/iojson"
)

type NotifyCmd struct {
	flags *Flags
	app   *kpi.App

	// flags
	kind       string
	duration   time.Duration
	sticky     bool
	wait       bool
	jsonOutput bool
}

// NewNotifyCmd creates a new notify command
func NewNotifyCmd(flags *Flags, app *kpi.App) *NotifyCmd {
	return &NotifyCmd{flags: flags, app: app}
}

// Register adds the notify command to the application
func (cmd *NotifyCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "notify",
		Usage:     "Raise a notification",
		UsageText: "kpi notify [options] <title> [message]",
		Description: `Adds a notification and prints it.

Without --duration the configured default applies. --sticky, or an explicit
--duration 0s, keeps the notification until it is dismissed. --wait blocks
until it expires.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "kind",
				Aliases:     []string{"k"},
				Usage:       "success, error, warning, or info",
				Value:       string(notify.KindInfo),
				Destination: &cmd.kind,
			},
			&cli.DurationFlag{
				Name:        "duration",
				Aliases:     []string{"d"},
				Usage:       "time before the notification expires (0s never expires)",
				Destination: &cmd.duration,
			},
			&cli.BoolFlag{
				Name:        "sticky",
				Usage:       "never expire",
				Destination: &cmd.sticky,
			},
			&cli.BoolFlag{
				Name:        "wait",
				Usage:       "block until the notification expires",
				Destination: &cmd.wait,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print the notification as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.flags.requireApp(cmd.run),
	})

	return app
}

func (cmd *NotifyCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() < 1 {
		return fmt.Errorf("title is required")
	}

	kind := notify.Kind(cmd.kind)
	if !kind.Valid() {
		return fmt.Errorf("invalid kind %q (want success, error, warning, or info)", cmd.kind)
	}
	if cmd.duration < 0 {
		return fmt.Errorf("duration must not be negative, use --sticky instead")
	}

	spec := notify.Spec{
		Kind:    kind,
		Title:   c.Args().Get(0),
		Message: c.Args().Get(1),
	}
	switch {
	case cmd.sticky:
		spec.Duration = notify.For(notify.Persistent)
	case c.IsSet("duration"):
		spec.Duration = notify.For(cmd.duration)
	}
	if cmd.wait && spec.Duration != nil && *spec.Duration <= 0 {
		return fmt.Errorf("--wait needs a notification that expires (drop --sticky or use a positive --duration)")
	}

	gone := make(chan struct{})
	var id string
	var unsub notify.Unsubscribe
	if cmd.wait {
		ready := make(chan struct{})
		unsub = cmd.app.Notifications.Subscribe(func(snap []notify.Notification) {
			select {
			case <-ready:
			default:
				return
			}
			if !slices.ContainsFunc(snap, func(n notify.Notification) bool { return n.ID == id }) {
				select {
				case <-gone:
				default:
					close(gone)
				}
			}
		})
		defer unsub()

		id = cmd.app.Notifications.Add(spec)
		close(ready)
	} else {
		id = cmd.app.Notifications.Add(spec)
	}

	n, ok := find(cmd.app.Notifications.Snapshot(), id)
	if !ok {
		return fmt.Errorf("notification %s expired before it could be shown", id)
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		if err := iojson.WriteLine(out, n); err != nil {
			return err
		}
	} else {
		printer.New(out, c.Root().ErrWriter).Notification(n)
	}

	if !cmd.wait {
		return nil
	}

	select {
	case <-gone:
		if !cmd.jsonOutput {
			printer.New(out, c.Root().ErrWriter).Printf("expired after %s", n.Duration)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func find(snap []notify.Notification, id string) (notify.Notification, bool) {
	i := slices.IndexFunc(snap, func(n notify.Notification) bool { return n.ID == id })
	if i < 0 {
		return notify.Notification{}, false
	}
	return snap[i], true
}
