package notify

import (
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/metric"

	"github.com/hay-kot/kpi/pkg/randid"
)

// Option configures a Bus.
type Option func(*Bus)

// WithClock sets the clock used for timestamps and expiry timers.
func WithClock(c clock.Clock) Option {
	return func(b *Bus) { b.clock = c }
}

// WithLogger sets the logger used for lifecycle debug output and subscriber panics.
func WithLogger(l zerolog.Logger) Option {
	return func(b *Bus) { b.log = l }
}

// WithMeter sets the meter used to create the bus instruments.
func WithMeter(m metric.Meter) Option {
	return func(b *Bus) { b.meter = m }
}

// WithDefaultDuration overrides the expiry applied when a Spec leaves Duration nil.
// Non-positive values are ignored.
func WithDefaultDuration(d time.Duration) Option {
	return func(b *Bus) {
		if d > 0 {
			b.defaultDuration = d
		}
	}
}

type subscription struct {
	id uint64
	fn Subscriber
}

// expiry is the registration of a pending auto-expiry timer. A firing timer
// only acts if its registration is still the current one for the id.
type expiry struct {
	timer *clock.Timer
}

// Bus is the single authority for notification existence, ordering, and
// expiry. It is safe for concurrent use; subscribers are invoked one at a
// time, in the order changes were made, and never while the bus lock is held,
// so a subscriber may call back into the bus.
type Bus struct {
	clock           clock.Clock
	log             zerolog.Logger
	meter           metric.Meter
	metrics         *busMetrics
	defaultDuration time.Duration

	mu       sync.Mutex
	seq      uint64
	live     []Notification
	timers   map[string]*expiry
	subs     []subscription
	nextSub  uint64
	queue    [][]Notification
	draining bool
}

// NewBus creates an empty notification bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		clock:           clock.New(),
		log:             zerolog.Nop(),
		defaultDuration: DefaultDuration,
		timers:          make(map[string]*expiry),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.metrics = newBusMetrics(b.meter)
	return b
}

// Add appends a notification, queues the new snapshot for subscribers, and
// schedules auto-expiry when the resolved duration is positive. It returns the
// assigned id so the caller can remove the notification early.
//
// Delivery normally completes before Add returns. When another goroutine, such
// as an expiry timer, is already delivering, that goroutine delivers this
// snapshot too and Add may return first. Subscribers still see every snapshot
// in order.
func (b *Bus) Add(spec Spec) string {
	kind := spec.Kind.orInfo()
	duration := b.resolve(spec.Duration)

	b.mu.Lock()
	b.seq++
	id := strconv.FormatUint(b.seq, 36) + "-" + randid.Generate(6)

	b.live = append(b.live, Notification{
		ID:        id,
		Kind:      kind,
		Title:     spec.Title,
		Message:   spec.Message,
		Duration:  duration,
		CreatedAt: b.clock.Now(),
	})

	if duration > 0 {
		e := &expiry{}
		b.timers[id] = e
		e.timer = b.clock.AfterFunc(duration, func() { b.expire(id, e) })
	}

	b.enqueueLocked()
	b.mu.Unlock()

	b.metrics.recordAdd(kind)
	b.log.Debug().
		Str("id", id).
		Str("kind", string(kind)).
		Dur("duration", duration).
		Msg("notification added")

	b.drain()
	return id
}

// Remove deletes the notification with the given id. Unknown or already
// removed ids are ignored and produce no snapshot.
func (b *Bus) Remove(id string) {
	b.mu.Lock()
	if e, ok := b.timers[id]; ok {
		e.timer.Stop()
		delete(b.timers, id)
	}
	removed := b.removeLocked(id)
	if removed {
		b.enqueueLocked()
	}
	b.mu.Unlock()

	if !removed {
		return
	}

	b.metrics.recordRemove(reasonDismissed, 1)
	b.log.Debug().Str("id", id).Msg("notification removed")
	b.drain()
}

// Clear removes every live notification, cancels all pending expiries, and
// always notifies subscribers with an empty snapshot.
func (b *Bus) Clear() {
	b.mu.Lock()
	for id, e := range b.timers {
		e.timer.Stop()
		delete(b.timers, id)
	}
	n := len(b.live)
	b.live = nil
	b.enqueueLocked()
	b.mu.Unlock()

	b.metrics.recordRemove(reasonCleared, n)
	b.log.Debug().Int("count", n).Msg("notifications cleared")
	b.drain()
}

// Subscribe registers fn to receive a snapshot after every change. The
// current state is not delivered on registration.
func (b *Bus) Subscribe(fn Subscriber) Unsubscribe {
	if fn == nil {
		return func() {}
	}

	b.mu.Lock()
	b.nextSub++
	id := b.nextSub
	b.subs = append(b.subs, subscription{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			b.subs = slices.DeleteFunc(b.subs, func(s subscription) bool {
				return s.id == id
			})
		})
	}
}

// Snapshot returns a copy of the live notifications, oldest first.
func (b *Bus) Snapshot() []Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked()
}

// Len returns the number of live notifications.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.live)
}

// Success adds a success notification. An optional duration overrides the
// default; zero or negative never expires.
func (b *Bus) Success(title, message string, duration ...time.Duration) string {
	return b.add(KindSuccess, title, message, duration)
}

// Error adds an error notification. An optional duration overrides the
// default; zero or negative never expires.
func (b *Bus) Error(title, message string, duration ...time.Duration) string {
	return b.add(KindError, title, message, duration)
}

// Warning adds a warning notification. An optional duration overrides the
// default; zero or negative never expires.
func (b *Bus) Warning(title, message string, duration ...time.Duration) string {
	return b.add(KindWarning, title, message, duration)
}

// Info adds an info notification. An optional duration overrides the
// default; zero or negative never expires.
func (b *Bus) Info(title, message string, duration ...time.Duration) string {
	return b.add(KindInfo, title, message, duration)
}

func (b *Bus) add(kind Kind, title, message string, duration []time.Duration) string {
	spec := Spec{Kind: kind, Title: title, Message: message}
	if len(duration) > 0 {
		spec.Duration = For(duration[0])
	}
	return b.Add(spec)
}

// resolve maps a requested duration to the stored one, where 0 means the
// notification never expires.
func (b *Bus) resolve(d *time.Duration) time.Duration {
	switch {
	case d == nil:
		return b.defaultDuration
	case *d <= 0:
		return 0
	default:
		return *d
	}
}

// expire is the timer callback for id. It is a no-op when the registration
// was cancelled or replaced before the timer fired.
func (b *Bus) expire(id string, e *expiry) {
	b.mu.Lock()
	if b.timers[id] != e {
		b.mu.Unlock()
		return
	}
	delete(b.timers, id)
	removed := b.removeLocked(id)
	if removed {
		b.enqueueLocked()
	}
	b.mu.Unlock()

	if !removed {
		return
	}

	b.metrics.recordRemove(reasonExpired, 1)
	b.log.Debug().Str("id", id).Msg("notification expired")
	b.drain()
}

func (b *Bus) removeLocked(id string) bool {
	idx := slices.IndexFunc(b.live, func(n Notification) bool { return n.ID == id })
	if idx < 0 {
		return false
	}
	b.live = slices.Delete(b.live, idx, idx+1)
	return true
}

func (b *Bus) snapshotLocked() []Notification {
	out := make([]Notification, len(b.live))
	copy(out, b.live)
	return out
}

func (b *Bus) enqueueLocked() {
	b.queue = append(b.queue, b.snapshotLocked())
}

// drain delivers queued snapshots in FIFO order. Only one goroutine drains at
// a time; callers arriving while a drain is in progress leave their snapshot
// for the active drainer.
func (b *Bus) drain() {
	b.mu.Lock()
	if b.draining {
		b.mu.Unlock()
		return
	}
	b.draining = true

	for len(b.queue) > 0 {
		snap := b.queue[0]
		b.queue[0] = nil
		b.queue = b.queue[1:]
		subs := slices.Clone(b.subs)
		b.mu.Unlock()

		for _, s := range subs {
			b.deliver(s, snap)
		}

		b.mu.Lock()
	}

	b.draining = false
	b.queue = nil
	b.mu.Unlock()
}

func (b *Bus) deliver(s subscription, snap []Notification) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().
				Uint64("subscriber", s.id).
				Str("panic", fmt.Sprint(r)).
				Msg("notification subscriber panicked")
		}
	}()

	out := make([]Notification, len(snap))
	copy(out, snap)
	s.fn(out)
}
