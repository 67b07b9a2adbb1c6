package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/kpi/internal/kpi"
	"github.com/hay-kot/kpi/internal/printer"
	"github.com/hay-kot/kpi/pkg/iojson"
)

type ExportCmd struct {
	flags *Flags
	app   *kpi.App

	// flags
	format string
	output string
}

// NewExportCmd creates a new export command
func NewExportCmd(flags *Flags, app *kpi.App) *ExportCmd {
	return &ExportCmd{flags: flags, app: app}
}

// Register adds the export command to the application
func (cmd *ExportCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "export",
		Usage:     "Download all data",
		UsageText: "kpi export [--format json|xml|excel] [-o file]",
		Description: `Downloads users, projects, and tasks from the backend. JSON and XML go
to stdout unless -o is given; excel requires -o.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Value:       "json",
				Usage:       "json, xml, or excel",
				Destination: &cmd.format,
			},
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "write to this file",
				Destination: &cmd.output,
			},
		},
		Action: cmd.flags.requireApp(cmd.run),
	})

	return app
}

func (cmd *ExportCmd) run(ctx context.Context, c *cli.Command) error {
	var (
		data []byte
		err  error
	)

	switch cmd.format {
	case "json":
		export, err := cmd.app.API.Export.JSON(ctx)
		if err != nil {
			return err
		}
		if cmd.output == "" {
			return iojson.Write(c.Root().Writer, export)
		}
		f, err := os.Create(cmd.output)
		if err != nil {
			return fmt.Errorf("create %s: %w", cmd.output, err)
		}
		defer func() { _ = f.Close() }()
		if err := iojson.Write(f, export); err != nil {
			return err
		}
		return f.Close()
	case "xml":
		data, err = cmd.app.API.Export.XML(ctx)
	case "excel":
		if cmd.output == "" {
			return fmt.Errorf("excel export needs --output")
		}
		data, err = cmd.app.API.Export.Excel(ctx)
	default:
		return fmt.Errorf("unknown format %q (want json, xml, or excel)", cmd.format)
	}
	if err != nil {
		return err
	}

	if cmd.output == "" {
		_, err := c.Root().Writer.Write(data)
		return err
	}
	if err := os.WriteFile(cmd.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", cmd.output, err)
	}

	printer.New(c.Root().ErrWriter, c.Root().ErrWriter).Successf("Wrote %d bytes to %s", len(data), cmd.output)
	return nil
}
