package tui

import (
	"time"

	"github.com/hay-kot/kpi/internal/core/notify"
)

const (
	defaultMaxBanners  = 5
	bannerTickInterval = 250 * time.Millisecond
	bannerWidth        = 56
)

// BannerStack is the view-side copy of the live notifications plus a cursor.
// The bus owns the lifecycle; the stack only decides what is visible.
type BannerStack struct {
	items      []notify.Notification
	maxVisible int
	cursor     int // index into items; -1 when empty
}

// NewBannerStack creates a stack that shows at most maxVisible banners.
func NewBannerStack(maxVisible int) *BannerStack {
	if maxVisible <= 0 {
		maxVisible = defaultMaxBanners
	}
	return &BannerStack{maxVisible: maxVisible, cursor: -1}
}

// Replace installs a new snapshot. The cursor stays on the same notification
// when it is still live and otherwise moves to the newest one.
func (s *BannerStack) Replace(snap []notify.Notification) {
	selected := ""
	if n, ok := s.Selected(); ok {
		selected = n.ID
	}

	s.items = snap
	s.cursor = len(snap) - 1
	for i, n := range snap {
		if n.ID == selected {
			s.cursor = i
			break
		}
	}
	s.clampCursor()
}

// Visible returns the newest maxVisible notifications, oldest first, and how
// many older ones are hidden.
func (s *BannerStack) Visible() ([]notify.Notification, int) {
	hidden := max(len(s.items)-s.maxVisible, 0)
	return s.items[hidden:], hidden
}

// Selected returns the notification under the cursor.
func (s *BannerStack) Selected() (notify.Notification, bool) {
	if s.cursor < 0 || s.cursor >= len(s.items) {
		return notify.Notification{}, false
	}
	return s.items[s.cursor], true
}

// Up moves the cursor to the previous (older) visible notification.
func (s *BannerStack) Up() {
	_, hidden := s.Visible()
	if s.cursor > hidden {
		s.cursor--
	}
}

// Down moves the cursor to the next (newer) notification.
func (s *BannerStack) Down() {
	if s.cursor < len(s.items)-1 {
		s.cursor++
	}
}

// Len returns the number of live notifications.
func (s *BannerStack) Len() int {
	return len(s.items)
}

// HasExpiring reports whether any visible notification has a countdown.
func (s *BannerStack) HasExpiring() bool {
	visible, _ := s.Visible()
	for _, n := range visible {
		if !n.Persistent() {
			return true
		}
	}
	return false
}

// SetMaxVisible changes how many banners are shown.
func (s *BannerStack) SetMaxVisible(n int) {
	if n > 0 {
		s.maxVisible = n
		s.clampCursor()
	}
}

func (s *BannerStack) clampCursor() {
	if len(s.items) == 0 {
		s.cursor = -1
		return
	}
	_, hidden := s.Visible()
	s.cursor = min(max(s.cursor, hidden), len(s.items)-1)
}

// remaining returns how long until n expires, or false when it never does.
func remaining(n notify.Notification, now time.Time) (time.Duration, bool) {
	if n.Persistent() {
		return 0, false
	}
	return max(n.CreatedAt.Add(n.Duration).Sub(now), 0), true
}
