// Package tui implements the Bubble Tea TUI for kpi.
package tui

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/hay-kot/kpi/internal/core/auth"
	"github.com/hay-kot/kpi/internal/core/notify"
	"github.com/hay-kot/kpi/internal/core/styles"
	"github.com/hay-kot/kpi/internal/core/theme"
)

type bannerTickMsg time.Time

// SetThemeMsg asks the model to switch theme. It is sent from outside the
// program, for example when the config file changes.
type SetThemeMsg struct {
	Name string
}

// SetMaxVisibleMsg changes how many banners are shown at once.
type SetMaxVisibleMsg struct {
	N int
}

// Options configures a Model. Bus is required.
type Options struct {
	Bus        *notify.Bus
	Themes     *theme.Manager
	Auth       *auth.Store
	Clock      clock.Clock
	MaxVisible int
	Log        zerolog.Logger
}

// Model renders the live notifications as dismissible banners.
type Model struct {
	bus    *notify.Bus
	themes *theme.Manager
	auth   *auth.Store
	clock  clock.Clock
	log    zerolog.Logger

	buffer  *SnapshotBuffer
	stack   *BannerStack
	unsub   notify.Unsubscribe
	ticking bool
	demoSeq int

	keys   keyMap
	help   help.Model
	width  int
	height int
}

// New creates the model and renders the bus's current state.
func New(opts Options) *Model {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}

	m := &Model{
		bus:    opts.Bus,
		themes: opts.Themes,
		auth:   opts.Auth,
		clock:  opts.Clock,
		log:    opts.Log,
		buffer: NewSnapshotBuffer(),
		stack:  NewBannerStack(opts.MaxVisible),
		keys:   defaultKeyMap(),
		help:   help.New(),
		width:  bannerWidth + 4,
	}
	m.stack.Replace(m.bus.Snapshot())
	return m
}

// Init subscribes to the bus. The subscription lives until the model quits.
func (m *Model) Init() tea.Cmd {
	if m.unsub == nil {
		m.unsub = m.bus.Subscribe(m.buffer.Push)
	}
	return tea.Batch(m.buffer.WaitForSignal(), m.ensureTick())
}

// Close drops the bus subscription. It is safe to call more than once.
func (m *Model) Close() {
	if m.unsub != nil {
		m.unsub()
	}
	m.buffer.Close()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case snapshotReadyMsg:
		if snap, ok := m.buffer.Drain(); ok {
			m.stack.Replace(snap)
		}
		return m, tea.Batch(m.buffer.WaitForSignal(), m.ensureTick())

	case bannerTickMsg:
		m.ticking = false
		return m, m.ensureTick()

	case SetThemeMsg:
		m.setTheme(msg.Name)
		return m, nil

	case SetMaxVisibleMsg:
		m.stack.SetMaxVisible(msg.N)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Close()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.stack.Up()
	case key.Matches(msg, m.keys.Down):
		m.stack.Down()
	case key.Matches(msg, m.keys.Dismiss):
		if n, ok := m.stack.Selected(); ok {
			m.bus.Remove(n.ID)
		}
	case key.Matches(msg, m.keys.Clear):
		m.bus.Clear()
	case key.Matches(msg, m.keys.Info):
		m.demo(notify.KindInfo, false)
	case key.Matches(msg, m.keys.Success):
		m.demo(notify.KindSuccess, false)
	case key.Matches(msg, m.keys.Warning):
		m.demo(notify.KindWarning, false)
	case key.Matches(msg, m.keys.Error):
		m.demo(notify.KindError, false)
	case key.Matches(msg, m.keys.Persistent):
		m.demo(notify.KindInfo, true)
	case key.Matches(msg, m.keys.Theme):
		m.nextTheme()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m *Model) demo(kind notify.Kind, sticky bool) {
	m.demoSeq++
	title := fmt.Sprintf("Sample %s #%d", kind, m.demoSeq)
	msg := "Added from the keyboard"
	spec := notify.Spec{Kind: kind, Title: title, Message: msg}
	if sticky {
		spec.Message = "Stays until dismissed"
		spec.Duration = notify.For(notify.Persistent)
	}
	m.bus.Add(spec)
}

func (m *Model) nextTheme() {
	if m.themes == nil {
		return
	}
	names := theme.Names()
	i := slices.Index(names, m.themes.Current().Name)
	m.setTheme(names[(i+1)%len(names)])
}

// setTheme runs on the Bubble Tea goroutine, which is the only goroutine
// that reads the global styles.
func (m *Model) setTheme(name string) {
	if m.themes == nil || name == m.themes.Current().Name {
		return
	}

	err := m.themes.Set(context.Background(), name)
	if err != nil {
		m.log.Warn().Err(err).Str("theme", name).Msg("theme change failed")
		m.bus.Error("Theme not saved", err.Error())
	}
	styles.SetTheme(m.themes.Current())
}

// ensureTick schedules a countdown refresh while any banner is expiring.
func (m *Model) ensureTick() tea.Cmd {
	if m.ticking || !m.stack.HasExpiring() {
		return nil
	}
	m.ticking = true
	return tea.Tick(bannerTickInterval, func(t time.Time) tea.Msg {
		return bannerTickMsg(t)
	})
}
