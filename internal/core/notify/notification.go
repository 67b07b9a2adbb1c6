// Package notify implements the notification lifecycle engine: an in-process
// bus that owns the set of live user notifications, expires them on a timer,
// and fans out ordered snapshots to subscribers whenever the set changes.
package notify

import (
	"time"
)

// Kind represents the severity of a notification. It is informational only
// and never changes how the bus treats a notification.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindWarning Kind = "warning"
	KindInfo    Kind = "info"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindSuccess, KindError, KindWarning, KindInfo:
		return true
	}
	return false
}

func (k Kind) orInfo() Kind {
	if k.Valid() {
		return k
	}
	return KindInfo
}

const (
	// DefaultDuration is used when a Spec leaves Duration nil.
	DefaultDuration = 5 * time.Second

	// Persistent disables auto-expiry. Zero and any negative duration behave
	// the same.
	Persistent time.Duration = -1
)

// Notification is a single user-visible message. Values handed to subscribers
// are copies; mutating them has no effect on the bus.
type Notification struct {
	ID      string `json:"id"`
	Kind    Kind   `json:"kind"`
	Title   string `json:"title"`
	Message string `json:"message,omitempty"`

	// Duration is the resolved auto-expiry delay. Zero means the notification
	// stays until it is removed or the bus is cleared.
	Duration  time.Duration `json:"duration"`
	CreatedAt time.Time     `json:"created_at"`
}

// Persistent reports whether the notification is exempt from auto-expiry.
func (n Notification) Persistent() bool {
	return n.Duration <= 0
}

// Spec describes a notification to add.
type Spec struct {
	Kind    Kind
	Title   string
	Message string

	// Duration controls auto-expiry. Nil selects the bus default; zero or a
	// negative value (see Persistent) disables expiry.
	Duration *time.Duration
}

// For returns d as a Spec duration.
func For(d time.Duration) *time.Duration {
	return &d
}

// Subscriber receives the full ordered snapshot of live notifications after
// every change.
type Subscriber func([]Notification)

// Unsubscribe deregisters a Subscriber. Calling it more than once is a no-op.
type Unsubscribe func()
