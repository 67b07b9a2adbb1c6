package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/kpi/internal/core/styles"
)

func (m *Model) View() string {
	width := min(max(m.width-4, 24), bannerWidth)

	sections := []string{
		m.renderHeader(),
		renderStack(m.stack, m.clock.Now(), width),
		styles.HelpStyle.Render(m.help.View(m.keys)),
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(strings.Join(sections, "\n\n"))
}

func (m *Model) renderHeader() string {
	parts := []string{styles.TitleStyle.Render(styles.IconBell + " kpi")}

	if m.auth != nil {
		st := m.auth.State()
		switch {
		case st.Loading:
			parts = append(parts, styles.StatusStyle.Render(styles.IconUser+" signing in…"))
		case st.Authenticated():
			parts = append(parts, styles.StatusStyle.Render(styles.IconUser+" "+st.User.Name()))
		default:
			parts = append(parts, styles.StatusStyle.Render(styles.IconUser+" signed out"))
		}
	}

	if m.themes != nil {
		parts = append(parts, styles.StatusStyle.Render(styles.IconPalette+" "+m.themes.Current().Label))
	}

	return strings.Join(parts, styles.DividerStyle.Render("  •  "))
}
