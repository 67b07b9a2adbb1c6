// Package eventbus provides a typed publish/subscribe event bus for
// cross-component communication within kpi.
package eventbus

import (
	"github.com/hay-kot/kpi/internal/core/config"
	"github.com/hay-kot/kpi/internal/core/identity"
)

// APIRequestFailedPayload is emitted when a REST call fails.
type APIRequestFailedPayload struct {
	Operation string
	Err       error
}

// AuthChangedPayload is emitted after login or logout. User is nil after
// logout.
type AuthChangedPayload struct {
	User *identity.User
}

// ConfigReloadedPayload is emitted when configuration is reloaded.
type ConfigReloadedPayload struct {
	Config *config.Config
}

// IdentityFailedPayload is emitted when the current user cannot be resolved.
type IdentityFailedPayload struct {
	Err error
}

// ThemeAppliedPayload is emitted after a theme change is applied.
type ThemeAppliedPayload struct {
	Name  string
	Label string
}

func (bus *EventBus) PublishAPIRequestFailed(p APIRequestFailedPayload) {
	bus.send(EventAPIRequestFailed, p)
}

func (bus *EventBus) SubscribeAPIRequestFailed(fn func(APIRequestFailedPayload)) {
	bus.subscribe(EventAPIRequestFailed, func(v any) { fn(v.(APIRequestFailedPayload)) })
}

func (bus *EventBus) PublishAuthChanged(p AuthChangedPayload) {
	bus.send(EventAuthChanged, p)
}

func (bus *EventBus) SubscribeAuthChanged(fn func(AuthChangedPayload)) {
	bus.subscribe(EventAuthChanged, func(v any) { fn(v.(AuthChangedPayload)) })
}

func (bus *EventBus) PublishConfigReloaded(p ConfigReloadedPayload) {
	bus.send(EventConfigReloaded, p)
}

func (bus *EventBus) SubscribeConfigReloaded(fn func(ConfigReloadedPayload)) {
	bus.subscribe(EventConfigReloaded, func(v any) { fn(v.(ConfigReloadedPayload)) })
}

func (bus *EventBus) PublishIdentityFailed(p IdentityFailedPayload) {
	bus.send(EventIdentityFailed, p)
}

func (bus *EventBus) SubscribeIdentityFailed(fn func(IdentityFailedPayload)) {
	bus.subscribe(EventIdentityFailed, func(v any) { fn(v.(IdentityFailedPayload)) })
}

func (bus *EventBus) PublishThemeApplied(p ThemeAppliedPayload) {
	bus.send(EventThemeApplied, p)
}

func (bus *EventBus) SubscribeThemeApplied(fn func(ThemeAppliedPayload)) {
	bus.subscribe(EventThemeApplied, func(v any) { fn(v.(ThemeAppliedPayload)) })
}
