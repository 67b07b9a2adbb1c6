package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/hay-kot/kpi/internal/core/notify"
	"github.com/hay-kot/kpi/internal/core/theme"
)

func TestPaletteFrom(t *testing.T) {
	cfg, _ := theme.Get("dark")
	p := PaletteFrom(cfg)

	assert.Equal(t, "dark", p.Name)
	assert.Equal(t, "#60a5fa", p.Primary)
	assert.Equal(t, "#f8fafc", p.Foreground)
	assert.Equal(t, "#0f172a", p.Background)
	assert.True(t, p.IsDark())

	light, _ := theme.Get("light")
	assert.False(t, PaletteFrom(light).IsDark())
}

func TestPaletteFrom_FallsBackOnMissingOrOpaque(t *testing.T) {
	cfg := theme.Config{
		Name: "sparse",
		Colors: theme.Tokens{
			{Key: "primary", Value: "rgba(0, 0, 0, 0.5)"},
		},
	}
	p := PaletteFrom(cfg)
	assert.Equal(t, fallback.Primary, p.Primary)
	assert.Equal(t, fallback.Error, p.Error)
}

func TestSetTheme_RebuildsToastStyles(t *testing.T) {
	t.Cleanup(func() {
		cfg, _ := theme.Get(theme.Default)
		SetTheme(cfg)
	})

	cfg, _ := theme.Get("green")
	SetTheme(cfg)

	assert.Equal(t, "green", CurrentPalette.Name)
	errColor, _ := cfg.Color("error")
	assert.Equal(t, lipgloss.Color(errColor), KindColor(notify.KindError))
	assert.Equal(t, lipgloss.Color(errColor), ToastStyle(notify.KindError).GetBorderLeftForeground())

	// unknown kinds render as info
	assert.Equal(t, ToastStyle(notify.KindInfo).GetBorderLeftForeground(),
		ToastStyle(notify.Kind("bogus")).GetBorderLeftForeground())
}

func TestKindIcon(t *testing.T) {
	assert.Equal(t, IconSuccess, KindIcon(notify.KindSuccess))
	assert.Equal(t, IconError, KindIcon(notify.KindError))
	assert.Equal(t, IconWarning, KindIcon(notify.KindWarning))
	assert.Equal(t, IconInfo, KindIcon(notify.KindInfo))
	assert.Equal(t, IconInfo, KindIcon(""))
}

func TestGlamourStyle_UsesPalette(t *testing.T) {
	cfg := GlamourStyle()
	if assert.NotNil(t, cfg.Heading.Color) {
		assert.Equal(t, CurrentPalette.Primary, *cfg.Heading.Color)
	}
}

func TestFormTheme_UsesPalette(t *testing.T) {
	ft := FormTheme()
	assert.Equal(t, ColorPrimary, ft.Focused.Title.GetForeground())
	assert.Equal(t, ColorAccent, ft.Focused.SelectSelector.GetForeground())
	assert.Equal(t, ft.Focused.Title.GetForeground(), ft.Group.Title.GetForeground())
}
