// Package styles provides shared lipgloss styles for CLI and TUI components,
// derived from the active theme.
package styles

import (
	glamouransi "github.com/charmbracelet/glamour/ansi"
	glamourstyles "github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/hay-kot/kpi/internal/core/notify"
	"github.com/hay-kot/kpi/internal/core/theme"
)

// Palette is the terminal subset of a theme. Values are hex strings.
type Palette struct {
	Name       string
	Primary    string
	Secondary  string
	Accent     string
	Foreground string
	Muted      string
	Background string
	Surface    string
	Border     string
	Success    string
	Warning    string
	Error      string
}

// fallback colors for themes that omit a semantic key
var fallback = Palette{
	Primary:    "#3b82f6",
	Secondary:  "#64748b",
	Accent:     "#06b6d4",
	Foreground: "#1e293b",
	Muted:      "#64748b",
	Background: "#ffffff",
	Surface:    "#f8fafc",
	Border:     "#e2e8f0",
	Success:    "#10b981",
	Warning:    "#f59e0b",
	Error:      "#ef4444",
}

// PaletteFrom extracts the terminal palette from a theme.
func PaletteFrom(cfg theme.Config) Palette {
	pick := func(key, def string) string {
		if v, ok := cfg.Color(key); ok {
			if _, err := colorful.Hex(v); err == nil {
				return v
			}
		}
		return def
	}

	return Palette{
		Name:       cfg.Name,
		Primary:    pick("primary", fallback.Primary),
		Secondary:  pick("secondary", fallback.Secondary),
		Accent:     pick("accent", fallback.Accent),
		Foreground: pick("text", fallback.Foreground),
		Muted:      pick("textSecondary", fallback.Muted),
		Background: pick("background", fallback.Background),
		Surface:    pick("surface", fallback.Surface),
		Border:     pick("border", fallback.Border),
		Success:    pick("success", fallback.Success),
		Warning:    pick("warning", fallback.Warning),
		Error:      pick("error", fallback.Error),
	}
}

// IsDark reports whether the palette background is dark.
func (p Palette) IsDark() bool {
	c, err := colorful.Hex(p.Background)
	if err != nil {
		return false
	}
	l, _, _ := c.Lab()
	return l < 0.5
}

// CurrentPalette holds the active palette.
var CurrentPalette Palette

// Exported colors of the active palette.
var (
	ColorPrimary    lipgloss.Color
	ColorSecondary  lipgloss.Color
	ColorAccent     lipgloss.Color
	ColorForeground lipgloss.Color
	ColorMuted      lipgloss.Color
	ColorBackground lipgloss.Color
	ColorSurface    lipgloss.Color
	ColorBorder     lipgloss.Color
	ColorSuccess    lipgloss.Color
	ColorWarning    lipgloss.Color
	ColorError      lipgloss.Color
)

// Style exports.
var (
	// CLI styles.
	CommandHeaderStyle lipgloss.Style
	CommandStyle       lipgloss.Style
	DividerStyle       lipgloss.Style
	KeyStyle           lipgloss.Style
	ValueStyle         lipgloss.Style

	// TUI shared styles.
	TitleStyle       lipgloss.Style
	HelpStyle        lipgloss.Style
	StatusStyle      lipgloss.Style
	EmptyStateStyle  lipgloss.Style
	ToastTitleStyle  lipgloss.Style
	ToastBodyStyle   lipgloss.Style
	ToastDimStyle    lipgloss.Style
	toastStyleByKind map[notify.Kind]lipgloss.Style
)

// SetTheme sets the active palette from a theme and rebuilds all global styles.
func SetTheme(cfg theme.Config) {
	SetPalette(PaletteFrom(cfg))
}

// SetPalette sets the active palette and rebuilds all global styles. It must
// be called from the goroutine that renders.
func SetPalette(p Palette) {
	CurrentPalette = p

	ColorPrimary = lipgloss.Color(p.Primary)
	ColorSecondary = lipgloss.Color(p.Secondary)
	ColorAccent = lipgloss.Color(p.Accent)
	ColorForeground = lipgloss.Color(p.Foreground)
	ColorMuted = lipgloss.Color(p.Muted)
	ColorBackground = lipgloss.Color(p.Background)
	ColorSurface = lipgloss.Color(p.Surface)
	ColorBorder = lipgloss.Color(p.Border)
	ColorSuccess = lipgloss.Color(p.Success)
	ColorWarning = lipgloss.Color(p.Warning)
	ColorError = lipgloss.Color(p.Error)

	CommandHeaderStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)
	CommandStyle = lipgloss.NewStyle().
		Foreground(ColorForeground)
	DividerStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)
	KeyStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)
	ValueStyle = lipgloss.NewStyle().
		Foreground(ColorForeground)

	TitleStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)
	HelpStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)
	StatusStyle = lipgloss.NewStyle().
		Foreground(ColorSecondary)
	EmptyStateStyle = lipgloss.NewStyle().
		Foreground(ColorMuted).
		Italic(true)

	ToastTitleStyle = lipgloss.NewStyle().
		Foreground(ColorForeground).
		Bold(true)
	ToastBodyStyle = lipgloss.NewStyle().
		Foreground(ColorForeground)
	ToastDimStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)

	toastStyleByKind = map[notify.Kind]lipgloss.Style{
		notify.KindSuccess: toastBase(ColorSuccess),
		notify.KindError:   toastBase(ColorError),
		notify.KindWarning: toastBase(ColorWarning),
		notify.KindInfo:    toastBase(ColorAccent),
	}
}

func toastBase(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(c).
		Background(ColorSurface).
		Padding(0, 1)
}

// ToastStyle returns the banner style for a notification kind.
func ToastStyle(kind notify.Kind) lipgloss.Style {
	if s, ok := toastStyleByKind[kind]; ok {
		return s
	}
	return toastStyleByKind[notify.KindInfo]
}

// KindColor returns the accent color for a notification kind.
func KindColor(kind notify.Kind) lipgloss.Color {
	switch kind {
	case notify.KindSuccess:
		return ColorSuccess
	case notify.KindError:
		return ColorError
	case notify.KindWarning:
		return ColorWarning
	default:
		return ColorAccent
	}
}

// nolint:gochecknoinits // bootstrap default theme before any style is accessed.
func init() {
	cfg, _ := theme.Get(theme.Default)
	SetTheme(cfg)
}

func strPtr(s string) *string { return &s }

// GlamourStyle returns a Glamour style config derived from the active theme.
func GlamourStyle() glamouransi.StyleConfig {
	p := CurrentPalette

	cfg := glamourstyles.LightStyleConfig
	if p.IsDark() {
		cfg = glamourstyles.DarkStyleConfig
	}

	fg := strPtr(p.Foreground)
	primary := strPtr(p.Primary)
	secondary := strPtr(p.Secondary)
	muted := strPtr(p.Muted)

	cfg.Document.Color = fg
	cfg.Paragraph.Color = fg

	cfg.Heading.Color = primary
	cfg.H1.Color = strPtr(p.Background)
	cfg.H1.BackgroundColor = primary
	cfg.H2.Color = primary
	cfg.H3.Color = primary

	cfg.BlockQuote.Color = muted
	cfg.HorizontalRule.Color = muted

	cfg.Link.Color = secondary
	cfg.LinkText.Color = secondary

	cfg.Code.Color = strPtr(p.Accent)
	cfg.Table.Color = fg

	return cfg
}
