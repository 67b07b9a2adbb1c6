package eventbus_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/kpi/internal/core/eventbus"
	"github.com/hay-kot/kpi/internal/core/eventbus/testbus"
	"github.com/hay-kot/kpi/internal/core/identity"
)

func TestEventBus_DeliversTypedPayload(t *testing.T) {
	tb := testbus.New(t)

	tb.PublishThemeApplied(eventbus.ThemeAppliedPayload{Name: "dark", Label: "Dark"})
	tb.AssertPublished(t, eventbus.EventThemeApplied)

	p, ok := tb.Last(eventbus.EventThemeApplied)
	require.True(t, ok)
	assert.Equal(t, eventbus.ThemeAppliedPayload{Name: "dark", Label: "Dark"}, p)
}

func TestEventBus_PreservesOrder(t *testing.T) {
	bus := eventbus.New(16)

	var (
		mu  sync.Mutex
		got []string
	)
	bus.SubscribeAPIRequestFailed(func(p eventbus.APIRequestFailedPayload) {
		mu.Lock()
		got = append(got, p.Operation)
		mu.Unlock()
	})

	for _, op := range []string{"a", "b", "c"} {
		bus.PublishAPIRequestFailed(eventbus.APIRequestFailedPayload{Operation: op})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go bus.Start(ctx)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 3
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestEventBus_DropsWhenBufferFull(t *testing.T) {
	bus := eventbus.New(1)

	var dropped atomic.Int32
	bus.OnDrop(func(eventbus.Event, any) { dropped.Add(1) })

	var published atomic.Int32
	bus.OnPublish(func(eventbus.Event, any) { published.Add(1) })

	// Not started: the first event fills the buffer.
	bus.PublishIdentityFailed(eventbus.IdentityFailedPayload{})
	bus.PublishIdentityFailed(eventbus.IdentityFailedPayload{})

	assert.Equal(t, int32(1), published.Load())
	assert.Equal(t, int32(1), dropped.Load())
}

func TestEventBus_SubscriberPanicIsRecovered(t *testing.T) {
	tb := testbus.New(t)

	var recovered atomic.Value
	tb.OnPanic(func(_ eventbus.Event, _ any, r any) { recovered.Store(r) })
	tb.SubscribeAuthChanged(func(eventbus.AuthChangedPayload) { panic("boom") })

	tb.PublishAuthChanged(eventbus.AuthChangedPayload{})
	tb.PublishIdentityFailed(eventbus.IdentityFailedPayload{Err: errors.New("after")})

	tb.AssertPublished(t, eventbus.EventIdentityFailed)
	assert.Equal(t, "boom", recovered.Load())
}

func TestEventBus_OnSubscribe(t *testing.T) {
	bus := eventbus.New(1)

	var events []eventbus.Event
	bus.OnSubscribe(func(e eventbus.Event) { events = append(events, e) })
	bus.SubscribeAuthChanged(func(eventbus.AuthChangedPayload) {})

	assert.Equal(t, []eventbus.Event{eventbus.EventAuthChanged}, events)
}

func TestEventBus_StopsOnCancel(t *testing.T) {
	bus := eventbus.New(4)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		bus.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return after cancel")
	}
}

func TestTestbus_ResetAndCount(t *testing.T) {
	tb := testbus.New(t)

	u := identity.DefaultMockUser
	tb.PublishAuthChanged(eventbus.AuthChangedPayload{User: &u})
	tb.AssertPublished(t, eventbus.EventAuthChanged)
	assert.Equal(t, 1, tb.Count(eventbus.EventAuthChanged))

	tb.Reset()
	assert.Empty(t, tb.Events())
	tb.AssertNotPublished(t, eventbus.EventAuthChanged, 20*time.Millisecond)
}
