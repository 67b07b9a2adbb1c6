package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/kpi/internal/commands"
	"github.com/hay-kot/kpi/internal/core/config"
	"github.com/hay-kot/kpi/internal/core/logging"
	"github.com/hay-kot/kpi/internal/core/styles"
	"github.com/hay-kot/kpi/internal/data/db"
	"github.com/hay-kot/kpi/internal/data/stores"
	"github.com/hay-kot/kpi/internal/kpi"
	"github.com/hay-kot/kpi/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	// When installed via `go install module@version`, ldflags aren't set
	// so version remains "dev". Fall back to runtime/debug.BuildInfo which
	// Go populates automatically with the module version and VCS metadata.
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

// openDatabase opens the database, moving a corrupt file aside once and
// starting fresh.
func openDatabase(cfg *config.Config) (*db.DB, error) {
	opts := db.DefaultOpenOptions()
	opts.MaxOpenConns = cfg.Database.MaxOpenConns
	opts.MaxIdleConns = cfg.Database.MaxIdleConns
	opts.BusyTimeout = cfg.Database.BusyTimeout

	database, err := db.Open(cfg.DataDir, opts)
	if err == nil || !stores.IsCorruptionError(err) {
		return database, err
	}

	backup, recErr := stores.RecoverFromCorruption(cfg.DataDir, time.Now())
	if recErr != nil {
		return nil, errors.Join(err, recErr)
	}
	log.Warn().Err(err).Str("path", cfg.DatabaseFile()).Str("backup", backup).Msg("database was corrupt, moved it aside")
	return db.Open(cfg.DataDir, opts)
}

func main() {
	ctx := context.Background()

	var (
		logCloser func()
		kpiApp    = &kpi.App{}
		started   bool
		database  *db.DB
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "kpi",
		Usage:     "Track KPI hours from the terminal",
		UsageText: "kpi [global options] command [command options]",
		Description: `kpi is the terminal client for the KPI time-tracking backend.

It signs you in through the corporate security service, shows live
notifications, and lists tasks, projects, and statistics.

Run 'kpi' with no arguments to open the notification center.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("KPI_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/kpi.log)",
				Sources:     cli.EnvVars("KPI_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("KPI_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("KPI_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			if err := os.MkdirAll(flags.DataDir, 0o755); err != nil {
				return ctx, fmt.Errorf("create data dir: %w", err)
			}

			// Always log to a file; use explicit path or default to <datadir>/kpi.log
			logFile := flags.LogFile
			if logFile == "" {
				logFile = filepath.Join(flags.DataDir, "kpi.log")
			}

			logger, closer, err := logutils.New(flags.LogLevel, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger.Hook(logging.ContextHook{})
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				// Commands that need the app report this; config validate
				// prints it.
				log.Error().Err(err).Str("path", flags.ConfigPath).Msg("config load failed")
				flags.ConfigErr = fmt.Errorf("load config: %w", err)
				return ctx, nil
			}
			flags.Config = cfg

			for _, w := range cfg.Warnings() {
				log.Warn().Str("item", w.Item).Msg(w.Message)
			}

			database, err = openDatabase(cfg)
			if err != nil {
				return ctx, fmt.Errorf("open database: %w", err)
			}

			// Populate the pre-allocated App struct (commands already hold a pointer to it)
			*kpiApp = *kpi.NewApp(cfg, database, log.Logger)
			kpiApp.Start(ctx)
			started = true

			styles.SetTheme(kpiApp.Themes.Current())

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if started {
				kpiApp.Close()
			}

			// Close database connection
			if database != nil {
				if err := database.Close(); err != nil {
					log.Error().Err(err).Msg("failed to close database")
					return err
				}
			}

			// Close log file
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	tuiCmd := commands.NewTuiCmd(flags, kpiApp)

	app = tuiCmd.Register(app)
	app = commands.Register(app, flags, kpiApp)

	// Register TUI flags on root command
	app.Flags = append(app.Flags, tuiCmd.Flags()...)

	// Set TUI as default action when no subcommand is provided
	app.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'kpi --help' for usage", c.Args().First())
		}
		return tuiCmd.Run(ctx, c)
	}

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
