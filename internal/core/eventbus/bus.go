package eventbus

import (
	"context"
	"sync"
)

// Event names a kind of application event.
type Event string

const (
	// Keep list sorted A-Z
	EventAPIRequestFailed Event = "api.request-failed"
	EventAuthChanged      Event = "auth.changed"
	EventConfigReloaded   Event = "config.reloaded"
	EventIdentityFailed   Event = "identity.failed"
	EventThemeApplied     Event = "theme.applied"
)

type envelope struct {
	event   Event
	payload any
}

// EventBus is an asynchronous typed event bus. Publishing never blocks: when
// the buffer is full the event is dropped and the OnDrop hooks fire.
// Subscribers run one at a time on the goroutine that called Start.
type EventBus struct {
	ch chan envelope

	mu   sync.RWMutex
	subs map[Event][]func(any)

	hooks hooks
}

// New creates a bus with a buffer of size events.
func New(size int) *EventBus {
	if size < 1 {
		size = 1
	}
	return &EventBus{
		ch:   make(chan envelope, size),
		subs: make(map[Event][]func(any)),
	}
}

// Start dispatches queued events until ctx is cancelled.
func (bus *EventBus) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-bus.ch:
			bus.dispatch(env)
		}
	}
}

func (bus *EventBus) subscribe(event Event, fn func(any)) {
	bus.mu.Lock()
	bus.subs[event] = append(bus.subs[event], fn)
	bus.mu.Unlock()

	bus.runOnSubscribe(event)
}

func (bus *EventBus) dispatch(env envelope) {
	bus.mu.RLock()
	subs := make([]func(any), len(bus.subs[env.event]))
	copy(subs, bus.subs[env.event])
	bus.mu.RUnlock()

	for _, fn := range subs {
		bus.call(env, fn)
	}
}

func (bus *EventBus) call(env envelope, fn func(any)) {
	defer func() {
		if r := recover(); r != nil {
			bus.runOnPanic(env.event, env.payload, r)
		}
	}()
	fn(env.payload)
}
