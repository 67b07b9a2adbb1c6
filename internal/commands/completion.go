package commands

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/kpi/internal/core/theme"
)

// ThemeNameCompleter completes theme names for `kpi theme` subcommands.
// A partial last argument narrows the list by prefix; flags fall back to the
// default completion.
func ThemeNameCompleter() cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		args := cmd.Args().Slice()
		partial := ""
		if len(args) > 0 {
			partial = args[len(args)-1]
		}
		if strings.HasPrefix(partial, "-") {
			cli.DefaultCompleteWithFlags(ctx, cmd)
			return
		}

		w := cmd.Root().Writer
		for _, name := range completeThemes(partial, args) {
			_, _ = fmt.Fprintln(w, name)
		}
	}
}

// completeThemes lists theme names starting with partial. An exact match is
// still offered so the shell can finish the word.
func completeThemes(partial string, typed []string) []string {
	var out []string
	for _, name := range theme.Names() {
		if !strings.HasPrefix(name, partial) {
			continue
		}
		if name != partial && slices.Contains(typed, name) {
			continue
		}
		out = append(out, name)
	}
	return out
}
