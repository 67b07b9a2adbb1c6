package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/kpi/internal/core/notify"
	"github.com/hay-kot/kpi/internal/core/styles"
)

// renderBanner draws one notification. The selected banner gets a marker.
func renderBanner(n notify.Notification, now time.Time, width int, selected bool) string {
	title := styles.KindIcon(n.Kind) + " " + styles.ToastTitleStyle.Render(n.Title)

	var meta string
	if left, ok := remaining(n, now); ok {
		meta = styles.ToastDimStyle.Render(formatRemaining(left))
	} else {
		meta = styles.ToastDimStyle.Render("sticky")
	}

	inner := width - 4 // border + padding
	gap := max(inner-lipgloss.Width(title)-lipgloss.Width(meta), 1)
	lines := []string{title + strings.Repeat(" ", gap) + meta}

	if n.Message != "" {
		lines = append(lines, styles.ToastBodyStyle.Width(inner).Render(n.Message))
	}

	style := styles.ToastStyle(n.Kind).Width(width)
	if selected {
		style = style.BorderForeground(styles.ColorPrimary)
	}
	return style.Render(strings.Join(lines, "\n"))
}

// renderStack draws the visible banners oldest first with a hidden-count line
// on top when some are cut off.
func renderStack(s *BannerStack, now time.Time, width int) string {
	visible, hidden := s.Visible()
	if len(visible) == 0 {
		return styles.EmptyStateStyle.Render("No notifications")
	}

	selected, _ := s.Selected()

	parts := make([]string, 0, len(visible)+1)
	if hidden > 0 {
		parts = append(parts, styles.ToastDimStyle.Render(fmt.Sprintf("+%d older", hidden)))
	}
	for _, n := range visible {
		parts = append(parts, renderBanner(n, now, width, n.ID == selected.ID))
	}
	return strings.Join(parts, "\n")
}

func formatRemaining(d time.Duration) string {
	if d >= time.Second {
		return fmt.Sprintf("%ds", int((d + time.Second - 1) / time.Second))
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
