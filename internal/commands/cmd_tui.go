package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/kpi/internal/core/config"
	"github.com/hay-kot/kpi/internal/core/logging"
	"github.com/hay-kot/kpi/internal/core/notify"
	"github.com/hay-kot/kpi/internal/kpi"
	"github.com/hay-kot/kpi/internal/tui"
	"github.com/hay-kot/kpi/pkg/iojson"
	"github.com/hay-kot/kpi/pkg/profiler"
)

type TuiCmd struct {
	flags *Flags
	app   *kpi.App

	// flags
	noWatch      bool
	profilerPort int
}

// NewTuiCmd creates a new tui command
func NewTuiCmd(flags *Flags, app *kpi.App) *TuiCmd {
	return &TuiCmd{
		flags: flags,
		app:   app,
	}
}

// Flags returns the TUI-specific flags for registration on the root command
func (cmd *TuiCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "no-watch",
			Usage:       "do not reload the config file when it changes",
			Sources:     cli.EnvVars("KPI_NO_WATCH"),
			Destination: &cmd.noWatch,
		},
		&cli.IntFlag{
			Name:        "profiler-port",
			Usage:       "serve pprof and a notification snapshot on localhost at this port (0 disables)",
			Sources:     cli.EnvVars("KPI_PROFILER_PORT"),
			Destination: &cmd.profilerPort,
		},
	}
}

// Register adds the tui command to the application
func (cmd *TuiCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "tui",
		Usage:       "Open the notification center",
		UsageText:   "kpi tui [--no-watch] [--profiler-port N]",
		Description: "Signs in, then shows live notifications as dismissible banners. This is also what 'kpi' runs with no command.",
		Flags:       cmd.Flags(),
		Action:      cmd.flags.requireApp(cmd.run),
	})
	return app
}

// Run executes the TUI. Exported for use as default command.
func (cmd *TuiCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.flags.requireApp(cmd.run)(ctx, c)
}

func (cmd *TuiCmd) run(ctx context.Context, _ *cli.Command) error {
	if cmd.profilerPort > 0 {
		profServer := profiler.New(fmt.Sprintf("127.0.0.1:%d", cmd.profilerPort), log.Logger)
		profServer.Handle("/debug/notifications", notificationsHandler(cmd.app.Notifications))
		if err := profServer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start profiler: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := profServer.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("failed to shutdown profiler server")
			}
		}()
	}

	ctx, cancel := context.WithCancel(ctx)

	m := tui.New(tui.Options{
		Bus:        cmd.app.Notifications,
		Themes:     cmd.app.Themes,
		Auth:       cmd.app.Auth.Store(),
		MaxVisible: cmd.app.Config.Notifications.MaxVisible,
		Log:        logging.Component(log.Logger, "tui"),
	})
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	var wg conc.WaitGroup
	defer wg.Wait()
	defer cancel()

	wg.Go(func() {
		if _, err := cmd.app.Auth.Login(ctx); err != nil {
			log.Debug().Err(err).Msg("tui login failed")
		}
	})

	if !cmd.noWatch {
		w, err := config.NewWatcher(
			cmd.flags.ConfigPath,
			cmd.flags.DataDir,
			reloadHandler(cmd.app, p.Send),
			func(err error) { cmd.app.Notifications.Error("Configuration not reloaded", err.Error()) },
			log.Logger,
		)
		if err != nil {
			log.Warn().Err(err).Str("path", cmd.flags.ConfigPath).Msg("config watcher disabled")
		} else {
			defer func() { _ = w.Close() }()
			wg.Go(func() { w.Run(ctx) })
		}
	}

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

// notificationsHandler serves the live notification list as JSON.
func notificationsHandler(bus *notify.Bus) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := iojson.Write(w, bus.Snapshot()); err != nil {
			log.Warn().Err(err).Msg("write notification snapshot")
		}
	})
}

// reloadHandler applies a reloaded config to app and forwards the parts the
// TUI renders. The theme is only switched when the configured name changed,
// so a selection made in the TUI survives unrelated edits.
func reloadHandler(app *kpi.App, send func(tea.Msg)) func(*config.Config) {
	var mu sync.Mutex
	prev := app.Config.Theme

	return func(cfg *config.Config) {
		app.Reload(cfg)

		mu.Lock()
		changed := cfg.Theme != prev
		prev = cfg.Theme
		mu.Unlock()

		send(tui.SetMaxVisibleMsg{N: cfg.Notifications.MaxVisible})
		if changed {
			send(tui.SetThemeMsg{Name: cfg.Theme})
		}
	}
}
