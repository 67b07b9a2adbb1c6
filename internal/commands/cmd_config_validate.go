package commands

import (
	"context"
	"errors"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/kpi/internal/core/config"
	"github.com/hay-kot/kpi/internal/printer"
	"github.com/hay-kot/kpi/pkg/iojson"
)

type ConfigValidateCmd struct {
	flags  *Flags
	format string
}

// NewConfigValidateCmd creates a new config validate command.
func NewConfigValidateCmd(flags *Flags) *ConfigValidateCmd {
	return &ConfigValidateCmd{flags: flags}
}

// Register adds the config validate command to the application.
func (cmd *ConfigValidateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "kpi config validate [options]",
				Description: "Validates the configuration file, checking URLs, the theme name, the identity mode, and numeric limits.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.run,
			},
		},
	})

	return app
}

// ValidationError is one invalid field.
type ValidationError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

type validationResult struct {
	Path     string                     `json:"path"`
	Valid    bool                       `json:"valid"`
	Errors   []ValidationError          `json:"errors,omitempty"`
	Warnings []config.ValidationWarning `json:"warnings,omitempty"`
}

func (cmd *ConfigValidateCmd) result() validationResult {
	res := validationResult{Path: cmd.flags.ConfigPath}

	if err := cmd.flags.ConfigErr; err != nil {
		var fieldErrs criterio.FieldErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				res.Errors = append(res.Errors, ValidationError{Field: fe.Field, Message: fe.Err.Error()})
			}
		} else {
			res.Errors = append(res.Errors, ValidationError{Message: err.Error()})
		}
		return res
	}

	if cmd.flags.Config != nil {
		res.Warnings = cmd.flags.Config.Warnings()
	}
	res.Valid = true
	return res
}

func (cmd *ConfigValidateCmd) run(ctx context.Context, c *cli.Command) error {
	res := cmd.result()

	if cmd.format == "json" {
		if err := iojson.Write(c.Root().Writer, res); err != nil {
			return err
		}
		if !res.Valid {
			return cli.Exit("", 1)
		}
		return nil
	}

	p := printer.New(c.Root().Writer, c.Root().ErrWriter)

	for _, warn := range res.Warnings {
		p.Warnf("%s: %s", warn.Category, warn.Message)
		if warn.Item != "" {
			p.Printf("  Item: %s", warn.Item)
		}
	}

	for _, e := range res.Errors {
		if e.Field != "" {
			p.Errorf("%s: %s", e.Field, e.Message)
			continue
		}
		p.Errorf("%s", e.Message)
	}

	p.Printf("")
	if res.Valid {
		p.Successf("Configuration is valid")
		return nil
	}

	p.Errorf("%d error(s) found in %s", len(res.Errors), res.Path)
	return cli.Exit("", 1)
}
