package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/hay-kot/kpi/internal/core/styles"
	"github.com/hay-kot/kpi/internal/core/theme"
	"github.com/hay-kot/kpi/internal/kpi"
	"github.com/hay-kot/kpi/internal/printer"
	"github.com/hay-kot/kpi/pkg/iojson"
)

type ThemeCmd struct {
	flags *Flags
	app   *kpi.App

	// flags
	jsonOutput bool
}

// NewThemeCmd creates a new theme command
func NewThemeCmd(flags *Flags, app *kpi.App) *ThemeCmd {
	return &ThemeCmd{flags: flags, app: app}
}

// Register adds the theme command to the application
func (cmd *ThemeCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "theme",
		Usage: "List, inspect, and select themes",
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Usage:     "List themes",
				UsageText: "kpi theme ls [pattern]",
				Description: `Lists the available themes. The optional pattern is a glob matched
against theme names, for example 'modern-*' or '{blue,green}'.`,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "output as JSON lines",
						Destination: &cmd.jsonOutput,
					},
				},
				Action: cmd.flags.requireApp(cmd.runList),
			},
			{
				Name:          "set",
				Usage:         "Select a theme",
				UsageText:     "kpi theme set <name>",
				ShellComplete: ThemeNameCompleter(),
				Action:        cmd.flags.requireApp(cmd.runSet),
			},
			{
				Name:          "show",
				Usage:         "Show the variables of a theme",
				UsageText:     "kpi theme show [name]",
				ShellComplete: ThemeNameCompleter(),
				Action:        cmd.flags.requireApp(cmd.runShow),
			},
			{
				Name:          "css",
				Usage:         "Print a theme as a CSS rule",
				UsageText:     "kpi theme css [name]",
				ShellComplete: ThemeNameCompleter(),
				Action:        cmd.flags.requireApp(cmd.runCSS),
			},
			{
				Name:      "pick",
				Usage:     "Choose a theme interactively",
				UsageText: "kpi theme pick",
				Action:    cmd.flags.requireApp(cmd.runPick),
			},
		},
	})

	return app
}

type themeInfo struct {
	Name    string `json:"name"`
	Label   string `json:"label"`
	Current bool   `json:"current"`
}

func (cmd *ThemeCmd) runList(_ context.Context, c *cli.Command) error {
	pattern := c.Args().First()
	themes, err := filterThemes(pattern)
	if err != nil {
		return err
	}

	current := cmd.app.Themes.Current().Name
	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, t := range themes {
			info := themeInfo{Name: t.Name, Label: t.Label, Current: t.Name == current}
			if err := iojson.WriteLine(out, info); err != nil {
				return fmt.Errorf("encode theme: %w", err)
			}
		}
		return nil
	}

	if len(themes) == 0 {
		fmt.Fprintf(c.Root().ErrWriter, "No themes match %q\n", pattern)
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, " \tNAME\tLABEL")
	for _, t := range themes {
		marker := " "
		if t.Name == current {
			marker = "*"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", marker, t.Name, t.Label)
	}
	return w.Flush()
}

// filterThemes returns the themes whose name matches pattern. An empty
// pattern matches everything.
func filterThemes(pattern string) ([]theme.Config, error) {
	all := theme.All()
	if pattern == "" {
		return all, nil
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q", pattern)
	}

	var matched []theme.Config
	for _, t := range all {
		if ok, _ := doublestar.Match(pattern, t.Name); ok {
			matched = append(matched, t)
		}
	}
	return matched, nil
}

func (cmd *ThemeCmd) runSet(ctx context.Context, c *cli.Command) error {
	name := c.Args().First()
	if name == "" {
		return fmt.Errorf("theme name is required (one of: %s)", strings.Join(theme.Names(), ", "))
	}
	return cmd.apply(ctx, c, name)
}

func (cmd *ThemeCmd) apply(ctx context.Context, c *cli.Command, name string) error {
	if err := cmd.app.Themes.Set(ctx, name); err != nil {
		if errors.Is(err, theme.ErrUnknownTheme) {
			return fmt.Errorf("%w (one of: %s)", err, strings.Join(theme.Names(), ", "))
		}
		return err
	}

	styles.SetTheme(cmd.app.Themes.Current())
	printer.New(c.Root().Writer, c.Root().ErrWriter).Successf("Theme set to %s", cmd.app.Themes.Current().Label)
	return nil
}

// resolveTheme returns the named theme, or the current one when name is empty.
func (cmd *ThemeCmd) resolveTheme(name string) (theme.Config, error) {
	if name == "" {
		return cmd.app.Themes.Current(), nil
	}
	cfg, ok := theme.Get(name)
	if !ok {
		return theme.Config{}, fmt.Errorf("%w: %q", theme.ErrUnknownTheme, name)
	}
	return cfg, nil
}

func (cmd *ThemeCmd) runShow(_ context.Context, c *cli.Command) error {
	cfg, err := cmd.resolveTheme(c.Args().First())
	if err != nil {
		return err
	}

	md := themeMarkdown(cfg)
	out := c.Root().Writer

	if f, ok := out.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		_, err := io.WriteString(out, md)
		return err
	}

	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStyles(styles.GlamourStyle()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		_, err = io.WriteString(out, md)
		return err
	}

	rendered, err := renderer.Render(md)
	if err != nil {
		_, err = io.WriteString(out, md)
		return err
	}
	_, err = io.WriteString(out, rendered)
	return err
}

// themeMarkdown documents cfg as a markdown table of its style variables.
func themeMarkdown(cfg theme.Config) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", cfg.Label)
	fmt.Fprintf(&b, "Name `%s`, class `%s`.\n\n", cfg.Name, theme.ClassName(cfg.Name))
	b.WriteString("| Variable | Value |\n|---|---|\n")
	for _, v := range theme.Variables(cfg) {
		fmt.Fprintf(&b, "| `%s` | `%s` |\n", v.Name, strings.ReplaceAll(v.Value, "|", "\\|"))
	}
	return b.String()
}

func (cmd *ThemeCmd) runCSS(_ context.Context, c *cli.Command) error {
	cfg, err := cmd.resolveTheme(c.Args().First())
	if err != nil {
		return err
	}
	return theme.WriteCSS(c.Root().Writer, cfg.Name)
}

func (cmd *ThemeCmd) runPick(ctx context.Context, c *cli.Command) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("theme pick needs a terminal; use 'kpi theme set <name>' instead")
	}

	selected := cmd.app.Themes.Current().Name
	options := make([]huh.Option[string], 0, len(theme.Names()))
	for _, t := range theme.All() {
		options = append(options, huh.NewOption(t.Label, t.Name))
	}

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Theme").
				Description("Applied to the TUI and saved for next time").
				Options(options...).
				Value(&selected),
		),
	).WithTheme(styles.FormTheme()).Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		return fmt.Errorf("theme picker: %w", err)
	}

	return cmd.apply(ctx, c, selected)
}
