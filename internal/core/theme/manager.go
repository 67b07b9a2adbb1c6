package theme

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/hay-kot/kpi/internal/core/kv"
)

// ErrUnknownTheme is returned when a theme name is not in the table.
var ErrUnknownTheme = errors.New("unknown theme")

// Listener is called after a theme has been applied.
type Listener func(Config)

// Manager owns the selected theme: it applies it to a Sink, persists the
// selection, and notifies listeners.
type Manager struct {
	store kv.KV
	sink  Sink
	log   zerolog.Logger

	mu        sync.Mutex
	fallback  string
	current   Config
	listeners map[uint64]Listener
	nextID    uint64
}

// NewManager creates a Manager. A nil store disables persistence.
func NewManager(store kv.KV, sink Sink, log zerolog.Logger) *Manager {
	if sink == nil {
		sink = NewMemorySink()
	}
	cfg, _ := Get(Default)
	return &Manager{
		store:     store,
		sink:      sink,
		log:       log,
		fallback:  Default,
		current:   cfg,
		listeners: make(map[uint64]Listener),
	}
}

// WithFallback sets the theme Init uses when nothing valid is stored. Unknown
// names are ignored.
func (m *Manager) WithFallback(name string) *Manager {
	if Exists(name) {
		m.mu.Lock()
		m.fallback = name
		m.mu.Unlock()
	}
	return m
}

// Current returns the active theme.
func (m *Manager) Current() Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Init restores the persisted theme and applies it. A missing, unreadable, or
// unknown stored name falls back to the fallback theme (Default unless
// WithFallback changed it). Listeners are not notified.
func (m *Manager) Init(ctx context.Context) Config {
	m.mu.Lock()
	name := m.fallback
	m.mu.Unlock()

	if m.store != nil {
		var stored string
		err := m.store.Get(ctx, StorageKey, &stored)
		switch {
		case err == nil && Exists(stored):
			name = stored
		case err == nil:
			m.log.Warn().Str("theme", stored).Str("fallback", name).Msg("stored theme is unknown, using fallback")
		case !kv.IsNotFound(err):
			m.log.Warn().Err(err).Str("fallback", name).Msg("failed to read stored theme, using fallback")
		}
	}

	cfg, _ := Get(name)
	m.mu.Lock()
	m.current = cfg
	m.mu.Unlock()

	Apply(m.sink, cfg)
	m.log.Debug().Str("theme", name).Msg("theme restored")
	return cfg
}

// Set applies the named theme, persists the selection, and notifies
// listeners. Unknown names return ErrUnknownTheme and change nothing. A
// persistence failure is returned after the theme has been applied.
func (m *Manager) Set(ctx context.Context, name string) error {
	cfg, ok := Get(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}

	m.mu.Lock()
	m.current = cfg
	listeners := make([]Listener, 0, len(m.listeners))
	for _, fn := range m.listeners {
		listeners = append(listeners, fn)
	}
	m.mu.Unlock()

	Apply(m.sink, cfg)

	var persistErr error
	if m.store != nil {
		if err := m.store.Set(ctx, StorageKey, name); err != nil {
			persistErr = fmt.Errorf("persist theme %q: %w", name, err)
		}
	}

	for _, fn := range listeners {
		fn(cfg)
	}

	m.log.Debug().Str("theme", name).Msg("theme applied")
	return persistErr
}

// Subscribe registers fn to be called after every Set. The returned function
// removes the registration.
func (m *Manager) Subscribe(fn Listener) func() {
	m.mu.Lock()
	m.nextID++
	id := m.nextID
	m.listeners[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}
