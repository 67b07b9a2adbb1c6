package eventbus

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/hay-kot/kpi/internal/core/notify"
)

// RouterOptions tunes the NotificationRouter.
type RouterOptions struct {
	// ErrorBurst and ErrorInterval bound how many request-failed banners can
	// appear: ErrorBurst at once, then one per ErrorInterval.
	ErrorBurst    int
	ErrorInterval time.Duration

	// ThemeDuration is how long the theme-changed banner stays up.
	ThemeDuration time.Duration
}

// DefaultRouterOptions returns the options used when none are configured.
func DefaultRouterOptions() RouterOptions {
	return RouterOptions{
		ErrorBurst:    3,
		ErrorInterval: 2 * time.Second,
		ThemeDuration: 2 * time.Second,
	}
}

// NotificationRouter maps application events to user-facing notifications.
type NotificationRouter struct {
	bus           *EventBus
	notifications *notify.Bus
	limiter       *rate.Limiter
	themeDuration time.Duration
	log           zerolog.Logger
}

// NewNotificationRouter constructs a router for event-to-notification mappings.
func NewNotificationRouter(bus *EventBus, notifications *notify.Bus, opts RouterOptions, log zerolog.Logger) *NotificationRouter {
	defaults := DefaultRouterOptions()
	if opts.ErrorBurst <= 0 {
		opts.ErrorBurst = defaults.ErrorBurst
	}
	if opts.ErrorInterval <= 0 {
		opts.ErrorInterval = defaults.ErrorInterval
	}
	if opts.ThemeDuration == 0 {
		opts.ThemeDuration = defaults.ThemeDuration
	}

	return &NotificationRouter{
		bus:           bus,
		notifications: notifications,
		limiter:       rate.NewLimiter(rate.Every(opts.ErrorInterval), opts.ErrorBurst),
		themeDuration: opts.ThemeDuration,
		log:           log,
	}
}

// Register subscribes all supported event mappings.
func (r *NotificationRouter) Register() {
	if r == nil || r.bus == nil || r.notifications == nil {
		return
	}

	r.bus.SubscribeAPIRequestFailed(func(p APIRequestFailedPayload) {
		if !r.limiter.Allow() {
			r.log.Warn().Err(p.Err).Str("operation", p.Operation).Msg("request failure notification suppressed")
			return
		}
		r.notifications.Error("Request failed", fmt.Sprintf("%s: %v", p.Operation, p.Err))
	})

	r.bus.SubscribeIdentityFailed(func(p IdentityFailedPayload) {
		msg := "Could not determine the current user"
		if p.Err != nil {
			msg = p.Err.Error()
		}
		r.notifications.Error("Authentication failed", msg)
	})

	r.bus.SubscribeAuthChanged(func(p AuthChangedPayload) {
		if p.User == nil {
			r.notifications.Info("Signed out", "")
			return
		}
		r.notifications.Success("Signed in", "Welcome, "+p.User.Name())
	})

	r.bus.SubscribeThemeApplied(func(p ThemeAppliedPayload) {
		label := p.Label
		if label == "" {
			label = p.Name
		}
		r.notifications.Info("Theme changed", label, r.themeDuration)
	})

	r.bus.SubscribeConfigReloaded(func(p ConfigReloadedPayload) {
		if p.Config == nil {
			return
		}
		r.notifications.Info("Configuration reloaded", "")
	})
}
