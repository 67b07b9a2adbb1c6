// Package printer writes status lines for CLI commands using the active
// theme's colors.
package printer

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/kpi/internal/core/notify"
	"github.com/hay-kot/kpi/internal/core/styles"
)

type ctxKey struct{}

// Printer writes prefixed, colored lines to a writer.
type Printer struct {
	out io.Writer
	err io.Writer
}

// New creates a Printer. Errors go to errOut, everything else to out.
func New(out, errOut io.Writer) *Printer {
	return &Printer{out: out, err: errOut}
}

// NewContext returns ctx carrying p.
func NewContext(ctx context.Context, p *Printer) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// Ctx returns the Printer stored in ctx, or one writing to stdout and stderr.
func Ctx(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok {
		return p
	}
	return New(os.Stdout, os.Stderr)
}

func (p *Printer) line(w io.Writer, kind notify.Kind, format string, args ...any) {
	icon := lipgloss.NewStyle().Foreground(styles.KindColor(kind)).Render(styles.KindIcon(kind))
	_, _ = fmt.Fprintf(w, "%s %s\n", icon, fmt.Sprintf(format, args...))
}

func (p *Printer) Successf(format string, args ...any) {
	p.line(p.out, notify.KindSuccess, format, args...)
}

func (p *Printer) Infof(format string, args ...any) {
	p.line(p.out, notify.KindInfo, format, args...)
}

func (p *Printer) Warnf(format string, args ...any) {
	p.line(p.err, notify.KindWarning, format, args...)
}

func (p *Printer) Errorf(format string, args ...any) {
	p.line(p.err, notify.KindError, format, args...)
}

// Printf writes an unprefixed line.
func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format+"\n", args...)
}

// Notification writes n the way the TUI titles it: icon, title, message.
func (p *Printer) Notification(n notify.Notification) {
	if n.Message == "" {
		p.line(p.out, n.Kind, "%s", styles.ToastTitleStyle.Render(n.Title))
		return
	}
	p.line(p.out, n.Kind, "%s %s", styles.ToastTitleStyle.Render(n.Title), styles.ToastDimStyle.Render(n.Message))
}
