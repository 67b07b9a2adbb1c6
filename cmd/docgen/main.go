// Command docgen writes the kpi CLI reference to docs/cli-reference.md, or
// to the path given as the first argument.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	docs "github.com/urfave/cli-docs/v3"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/kpi/internal/commands"
	"github.com/hay-kot/kpi/internal/kpi"
)

func main() {
	flags := &commands.Flags{}
	app := &kpi.App{}

	root := &cli.Command{
		Name:      "kpi",
		Usage:     "Track KPI hours from the terminal",
		UsageText: "kpi [global options] command [command options]",
		Description: `kpi is the terminal client for the KPI time-tracking backend.

Run 'kpi' with no arguments to open the notification center.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error, fatal, panic)",
				Sources: cli.EnvVars("KPI_LOG_LEVEL"),
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "log-file",
				Usage:   "path to log file (defaults to <data-dir>/kpi.log)",
				Sources: cli.EnvVars("KPI_LOG_FILE"),
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config file",
				Sources: cli.EnvVars("KPI_CONFIG"),
				Value:   "~/.config/kpi/config.yaml",
			},
			&cli.StringFlag{
				Name:    "data-dir",
				Usage:   "path to data directory",
				Sources: cli.EnvVars("KPI_DATA_DIR"),
				Value:   "~/.local/share/kpi",
			},
		},
	}

	tuiCmd := commands.NewTuiCmd(flags, app)
	root.Flags = append(root.Flags, tuiCmd.Flags()...)
	root = tuiCmd.Register(root)
	root = commands.Register(root, flags, app)

	md, err := docs.ToMarkdown(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error generating docs: %v\n", err)
		os.Exit(1)
	}

	outPath := filepath.Join("docs", "cli-reference.md")
	if len(os.Args) > 1 {
		outPath = os.Args[1]
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "error creating %s: %v\n", filepath.Dir(outPath), err)
		os.Exit(1)
	}
	if err := os.WriteFile(outPath, []byte(md), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "error writing %s: %v\n", outPath, err)
		os.Exit(1)
	}

	fmt.Printf("Generated %s\n", outPath)
}
