package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hay-kot/kpi/internal/core/notify"
)

// snapshotReadyMsg tells the model a new snapshot is waiting in the buffer.
type snapshotReadyMsg struct{}

// SnapshotBuffer hands bus snapshots from the bus goroutine to the Bubble Tea
// loop. Only the newest snapshot is kept since each one is the full state.
type SnapshotBuffer struct {
	mu      sync.Mutex
	latest  []notify.Notification
	pending bool
	signal  chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewSnapshotBuffer constructs an empty buffer.
func NewSnapshotBuffer() *SnapshotBuffer {
	return &SnapshotBuffer{
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Push replaces the pending snapshot and emits a non-blocking drain signal.
// It has the notify.Subscriber signature.
func (b *SnapshotBuffer) Push(snap []notify.Notification) {
	b.mu.Lock()
	b.latest = snap
	b.pending = true
	b.mu.Unlock()

	select {
	case b.signal <- struct{}{}:
	default:
	}
}

// Drain returns the pending snapshot, if any, and clears it.
func (b *SnapshotBuffer) Drain() ([]notify.Notification, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.pending {
		return nil, false
	}
	snap := b.latest
	b.latest = nil
	b.pending = false
	return snap, true
}

// WaitForSignal blocks until a snapshot is ready or the buffer is closed.
func (b *SnapshotBuffer) WaitForSignal() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-b.signal:
			return snapshotReadyMsg{}
		case <-b.done:
			return nil
		}
	}
}

// Close releases any pending WaitForSignal command.
func (b *SnapshotBuffer) Close() {
	b.once.Do(func() { close(b.done) })
}
