package auth

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hay-kot/kpi/internal/core/eventbus"
	"github.com/hay-kot/kpi/internal/core/identity"
)

// Authenticator signs the user in and out through an identity provider and
// announces the result on the event bus.
type Authenticator struct {
	provider identity.Provider
	store    *Store
	bus      *eventbus.EventBus
	log      zerolog.Logger
}

// NewAuthenticator creates an Authenticator. bus may be nil.
func NewAuthenticator(provider identity.Provider, store *Store, bus *eventbus.EventBus, log zerolog.Logger) *Authenticator {
	return &Authenticator{provider: provider, store: store, bus: bus, log: log}
}

// Store returns the state store the authenticator writes to.
func (a *Authenticator) Store() *Store {
	return a.store
}

// Login resolves the current user and stores it. On failure the store is
// cleared and identity.failed is published.
func (a *Authenticator) Login(ctx context.Context) (identity.User, error) {
	a.store.SetLoading(true)

	user, err := a.provider.CurrentUser(ctx)
	if err != nil {
		a.store.Clear()
		a.log.Warn().Err(err).Msg("login failed")
		if a.bus != nil {
			a.bus.PublishIdentityFailed(eventbus.IdentityFailedPayload{Err: err})
		}
		return identity.User{}, fmt.Errorf("login: %w", err)
	}

	a.store.Set(user)
	a.log.Info().Str("user", user.Username).Str("domain", user.Domain).Msg("signed in")
	if a.bus != nil {
		u := user
		a.bus.PublishAuthChanged(eventbus.AuthChangedPayload{User: &u})
	}
	return user, nil
}

// Logout ends the remote session and clears local state. Local state is
// cleared even when the provider fails.
func (a *Authenticator) Logout(ctx context.Context) error {
	err := a.provider.Logout(ctx)
	if err != nil {
		a.log.Warn().Err(err).Msg("provider logout failed")
	}

	a.store.Clear()
	if a.bus != nil {
		a.bus.PublishAuthChanged(eventbus.AuthChangedPayload{})
	}

	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}
