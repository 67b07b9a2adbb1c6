// Package kpi wires the client runtime together: notifications, events,
// theme, identity, and the backend API.
package kpi

import (
	"context"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/hay-kot/kpi/internal/core/api"
	"github.com/hay-kot/kpi/internal/core/auth"
	"github.com/hay-kot/kpi/internal/core/config"
	"github.com/hay-kot/kpi/internal/core/eventbus"
	"github.com/hay-kot/kpi/internal/core/identity"
	"github.com/hay-kot/kpi/internal/core/logging"
	"github.com/hay-kot/kpi/internal/core/notify"
	"github.com/hay-kot/kpi/internal/core/theme"
	"github.com/hay-kot/kpi/internal/data/db"
	"github.com/hay-kot/kpi/internal/data/stores"
	"github.com/hay-kot/kpi/internal/kpi/sweep"
	"github.com/hay-kot/kpi/pkg/httpclient"
)

// eventBufferSize bounds queued events before publishers start dropping.
const eventBufferSize = 64

// App is the central entry point for all kpi operations.
// Commands and TUI consume App instead of cherry-picking raw dependencies.
type App struct {
	Config        *config.Config
	DB            *db.DB
	KV            *stores.KVStore
	Notifications *notify.Bus
	Events        *eventbus.EventBus
	Themes        *theme.Manager
	Identity      identity.Provider
	Auth          *auth.Authenticator
	API           *api.Client

	clock clock.Clock
	log   zerolog.Logger
	life  *lifecycle
}

// lifecycle is held by pointer so an App can be copied into a
// pre-allocated value before Start.
type lifecycle struct {
	mu     sync.Mutex
	cancel context.CancelFunc
	wg     conc.WaitGroup
}

// Option customizes NewApp.
type Option func(*options)

type options struct {
	clock    clock.Clock
	meter    metric.Meter
	identity identity.Provider
	sink     theme.Sink
}

// WithClock sets the clock used for notification expiry and KV sweeps.
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithMeter sets the meter the notification bus records to.
func WithMeter(m metric.Meter) Option {
	return func(o *options) { o.meter = m }
}

// WithIdentity replaces the provider selected by identity.mode. The
// replacement is still wrapped by the KV cache.
func WithIdentity(p identity.Provider) Option {
	return func(o *options) { o.identity = p }
}

// WithThemeSink sets where theme variables are applied.
func WithThemeSink(s theme.Sink) Option {
	return func(o *options) { o.sink = s }
}

// NewApp constructs an App from a validated config and an open database.
// Background work does not begin until Start.
func NewApp(cfg *config.Config, database *db.DB, log zerolog.Logger, opts ...Option) *App {
	o := options{
		clock: clock.New(),
		meter: otel.Meter("github.com/hay-kot/kpi"),
	}
	for _, opt := range opts {
		opt(&o)
	}

	kvStore := stores.NewKVStore(database).WithClock(o.clock)
	events := eventbus.New(eventBufferSize)

	notifications := notify.NewBus(
		notify.WithClock(o.clock),
		notify.WithLogger(logging.Component(log, "notify")),
		notify.WithMeter(o.meter),
		notify.WithDefaultDuration(cfg.Notifications.DefaultDuration),
	)

	themes := theme.NewManager(kvStore, o.sink, logging.Component(log, "theme")).
		WithFallback(cfg.Theme)
	themes.Subscribe(func(c theme.Config) {
		events.PublishThemeApplied(eventbus.ThemeAppliedPayload{Name: c.Name, Label: c.Label})
	})

	provider := o.identity
	if provider == nil {
		provider = newIdentityProvider(cfg, log)
	}
	provider = identity.NewCachedProvider(provider, kvStore, cfg.Identity.CacheTTL, logging.Component(log, "identity"))

	authn := auth.NewAuthenticator(provider, auth.NewStore(), events, logging.Component(log, "auth"))

	client := api.New(
		httpclient.New(cfg.APIURL),
		api.ReportToBus(events),
		logging.Component(log, "api"),
	)

	router := eventbus.NewNotificationRouter(events, notifications, eventbus.RouterOptions{
		ErrorBurst:    cfg.Notifications.ErrorBurst,
		ErrorInterval: cfg.Notifications.ErrorInterval,
	}, logging.Component(log, "router"))
	router.Register()
	eventbus.RegisterDebugLogger(events, logging.Component(log, "eventbus"))

	return &App{
		Config:        cfg,
		DB:            database,
		KV:            kvStore,
		Notifications: notifications,
		Events:        events,
		Themes:        themes,
		Identity:      provider,
		Auth:          authn,
		API:           client,
		clock:         o.clock,
		log:           log,
		life:          &lifecycle{},
	}
}

func newIdentityProvider(cfg *config.Config, log zerolog.Logger) identity.Provider {
	if cfg.Identity.Mode == config.IdentityMock {
		log.Warn().Msg("identity mode is mock, the security service will not be called")
		return identity.NewMockProvider(identity.DefaultMockUser)
	}
	return identity.NewKerberosProvider(
		httpclient.New(cfg.SecurityURL),
		logging.Component(log, "kerberos"),
		identity.DefaultKerberosOptions(),
	)
}

// Start restores the persisted theme and runs event dispatch and the KV
// sweeper until ctx is cancelled or Close is called. Calling Start twice is a
// no-op.
func (a *App) Start(ctx context.Context) {
	l := a.life
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		return
	}

	a.Themes.Init(ctx)

	interval := a.Config.Database.SweepInterval
	ctx, l.cancel = context.WithCancel(ctx)
	l.wg.Go(func() { a.Events.Start(ctx) })
	l.wg.Go(func() {
		sweep.Start(ctx, a.KV, interval, a.clock, logging.Component(a.log, "sweep"))
	})
}

// Close stops background work and drops pending notification timers. The
// database is owned by the caller.
func (a *App) Close() {
	l := a.life
	l.mu.Lock()
	cancel := l.cancel
	l.mu.Unlock()

	if cancel != nil {
		cancel()
		l.wg.Wait()
	}
	a.Notifications.Clear()
}

// Reload applies a reloaded config and announces it. Only settings that can
// change at runtime are applied: the fallback theme and visible banner count
// are read by the TUI from the published config.
func (a *App) Reload(cfg *config.Config) {
	a.life.mu.Lock()
	a.Config = cfg
	a.life.mu.Unlock()

	a.Themes.WithFallback(cfg.Theme)
	a.Events.PublishConfigReloaded(eventbus.ConfigReloadedPayload{Config: cfg})
}
