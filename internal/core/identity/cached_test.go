package identity_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/kpi/internal/core/identity"
	"github.com/hay-kot/kpi/internal/data/db"
	"github.com/hay-kot/kpi/internal/data/stores"
)

type countingProvider struct {
	*identity.MockProvider
	calls int
}

func (c *countingProvider) CurrentUser(ctx context.Context) (identity.User, error) {
	c.calls++
	return c.MockProvider.CurrentUser(ctx)
}

func newCacheStore(t *testing.T) (*stores.KVStore, *clock.Mock) {
	t.Helper()
	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	mock := clock.NewMock()
	mock.Set(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	return stores.NewKVStore(database).WithClock(mock), mock
}

func TestCachedProvider_ServesFromCacheUntilExpiry(t *testing.T) {
	ctx := context.Background()
	store, mock := newCacheStore(t)
	next := &countingProvider{MockProvider: identity.NewMockProvider(identity.DefaultMockUser)}

	p := identity.NewCachedProvider(next, store, 10*time.Minute, zerolog.Nop())

	for range 3 {
		u, err := p.CurrentUser(ctx)
		require.NoError(t, err)
		assert.Equal(t, identity.DefaultMockUser, u)
	}
	assert.Equal(t, 1, next.calls)

	has, err := store.Has(ctx, "identity:user")
	require.NoError(t, err)
	assert.True(t, has)

	mock.Add(10 * time.Minute)
	_, err = p.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestCachedProvider_ErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	store, _ := newCacheStore(t)
	mockProvider := identity.NewMockProvider(identity.DefaultMockUser)
	next := &countingProvider{MockProvider: mockProvider}
	p := identity.NewCachedProvider(next, store, time.Hour, zerolog.Nop())

	mockProvider.Fail(identity.ErrUnavailable)
	_, err := p.CurrentUser(ctx)
	require.ErrorIs(t, err, identity.ErrUnavailable)

	mockProvider.Fail(nil)
	_, err = p.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestCachedProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	store, _ := newCacheStore(t)
	next := &countingProvider{MockProvider: identity.NewMockProvider(identity.DefaultMockUser)}
	p := identity.NewCachedProvider(next, store, 0, zerolog.Nop())

	_, _ = p.CurrentUser(ctx)
	_, _ = p.CurrentUser(ctx)
	assert.Equal(t, 2, next.calls)

	keys, err := store.ListKeys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestCachedProvider_LogoutDropsCache(t *testing.T) {
	ctx := context.Background()
	store, _ := newCacheStore(t)
	mockProvider := identity.NewMockProvider(identity.DefaultMockUser)
	next := &countingProvider{MockProvider: mockProvider}
	p := identity.NewCachedProvider(next, store, time.Hour, zerolog.Nop())

	_, err := p.CurrentUser(ctx)
	require.NoError(t, err)

	require.NoError(t, p.Logout(ctx))
	assert.Equal(t, 1, mockProvider.Logouts())

	has, err := store.Has(ctx, "identity:user")
	require.NoError(t, err)
	assert.False(t, has)

	mockProvider.Fail(errors.New("signed out"))
	_, err = p.CurrentUser(ctx)
	assert.Error(t, err)
}
