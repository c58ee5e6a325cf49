// apiclient/session_test.go
package apiclient

import (
	"context"
	"errors"
	"testing"

	"github.com/deploymenttheory/go-api-session-client/cookiestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSetCredentials(t *testing.T) {
	store := cookiestore.NewMemoryStore()
	client := newMockedClient(t, new(mockRequester), store, func(c *ClientConfig) { c.CookiePath = "/app" })

	require.NoError(t, client.SetCredentials(Credentials{AccessToken: Value("a1"), RefreshToken: Value("r1")}))
	for _, entry := range store.Entries() {
		assert.Equal(t, "/app", entry.Path, entry.Name)
	}

	// Keep leaves the refresh token alone.
	require.NoError(t, client.SetCredentials(Credentials{AccessToken: Value("a2")}))
	accessToken, refreshToken, ok := client.Credentials()
	require.True(t, ok)
	assert.Equal(t, "a2", accessToken)
	assert.Equal(t, "r1", refreshToken)

	// Clear removes memory and cookie.
	require.NoError(t, client.SetCredentials(Credentials{AccessToken: Clear()}))
	assert.False(t, client.Ready())
	_, found := cookieValue(t, store, CookieAccessToken)
	assert.False(t, found)
	value, found := cookieValue(t, store, CookieRefreshToken)
	assert.True(t, found)
	assert.Equal(t, "r1", value)
}

// failingStore fails writes for the named cookies.
type failingStore struct {
	*cookiestore.MemoryStore
	fail map[string]bool
}

var errStoreUnavailable = errors.New("store unavailable")

func (s *failingStore) Set(name, value string, opts cookiestore.Options) error {
	if s.fail[name] {
		return errStoreUnavailable
	}
	return s.MemoryStore.Set(name, value, opts)
}

func (s *failingStore) Remove(name string) error {
	if s.fail[name] {
		return errStoreUnavailable
	}
	return s.MemoryStore.Remove(name)
}

func TestSetCredentials_StoreFailureKeepsMemory(t *testing.T) {
	store := &failingStore{MemoryStore: cookiestore.NewMemoryStore(), fail: map[string]bool{CookieRefreshToken: true}}
	client := newMockedClient(t, new(mockRequester), store, func(c *ClientConfig) {
		c.AccessToken = "a1"
		c.RefreshToken = "r1"
	})

	err := client.SetCredentials(Credentials{AccessToken: Value("a2"), RefreshToken: Value("r2")})
	assert.ErrorIs(t, err, errStoreUnavailable)

	accessToken, refreshToken, ok := client.Credentials()
	require.True(t, ok)
	assert.Equal(t, "a2", accessToken, "the access cookie was written")
	assert.Equal(t, "r1", refreshToken, "the refresh token matches the unchanged cookie")

	err = client.SetCredentials(Credentials{RefreshToken: Clear()})
	assert.ErrorIs(t, err, errStoreUnavailable)
	_, refreshToken, _ = client.Credentials()
	assert.Equal(t, "r1", refreshToken)
}

func TestSetCredentials_EmptyValueIsStored(t *testing.T) {
	store := cookiestore.NewMemoryStore()
	client := newMockedClient(t, new(mockRequester), store, nil)

	require.NoError(t, client.SetCredentials(Credentials{AccessToken: Value("")}))
	assert.True(t, client.Ready())
	value, found := cookieValue(t, store, CookieAccessToken)
	assert.True(t, found)
	assert.Empty(t, value)
}

func TestResetCredentials(t *testing.T) {
	store := cookiestore.NewMemoryStore()
	client := newMockedClient(t, new(mockRequester), store, func(c *ClientConfig) {
		c.AccessToken = "a1"
		c.RefreshToken = "r1"
	})

	require.NoError(t, client.ResetCredentials())
	assert.False(t, client.Ready())
	_, refreshToken, _ := client.Credentials()
	assert.Empty(t, refreshToken)
	assert.Empty(t, store.Entries())
}

func TestRollbackSession(t *testing.T) {
	t.Run("restores saved tokens and deletes rollback cookies", func(t *testing.T) {
		store := cookiestore.NewMemoryStore()
		require.NoError(t, store.Set(CookieRollbackAccessToken, "admin-access", cookiestore.Options{}))
		require.NoError(t, store.Set(CookieRollbackRefreshToken, "admin-refresh", cookiestore.Options{}))
		client := newMockedClient(t, new(mockRequester), store, func(c *ClientConfig) {
			c.AccessToken = "user-access"
			c.RefreshToken = "user-refresh"
		})

		require.NoError(t, client.RollbackSession())

		accessToken, refreshToken, ok := client.Credentials()
		require.True(t, ok)
		assert.Equal(t, "admin-access", accessToken)
		assert.Equal(t, "admin-refresh", refreshToken)
		_, found := cookieValue(t, store, CookieRollbackAccessToken)
		assert.False(t, found)
		_, found = cookieValue(t, store, CookieRollbackRefreshToken)
		assert.False(t, found)
	})

	t.Run("missing rollback cookie keeps the token", func(t *testing.T) {
		store := cookiestore.NewMemoryStore()
		require.NoError(t, store.Set(CookieRollbackAccessToken, "admin-access", cookiestore.Options{}))
		client := newMockedClient(t, new(mockRequester), store, func(c *ClientConfig) {
			c.AccessToken = "user-access"
			c.RefreshToken = "user-refresh"
		})

		require.NoError(t, client.RollbackSession())

		accessToken, refreshToken, _ := client.Credentials()
		assert.Equal(t, "admin-access", accessToken)
		assert.Equal(t, "user-refresh", refreshToken)
	})
}

func TestSwitchSessionAndRollback(t *testing.T) {
	store := cookiestore.NewMemoryStore()
	client := newMockedClient(t, new(mockRequester), store, func(c *ClientConfig) {
		c.AccessToken = "admin-access"
		c.RefreshToken = "admin-refresh"
	})

	require.NoError(t, client.SwitchSession(Credentials{AccessToken: Value("user-access"), RefreshToken: Clear()}))

	accessToken, refreshToken, ok := client.Credentials()
	require.True(t, ok)
	assert.Equal(t, "user-access", accessToken)
	assert.Empty(t, refreshToken)
	saved, found := cookieValue(t, store, CookieRollbackAccessToken)
	require.True(t, found)
	assert.Equal(t, "admin-access", saved)

	require.NoError(t, client.RollbackSession())
	accessToken, refreshToken, ok = client.Credentials()
	require.True(t, ok)
	assert.Equal(t, "admin-access", accessToken)
	assert.Equal(t, "admin-refresh", refreshToken)
}

func TestSwitchSession_WithoutRefreshTokenRemovesRollbackCookie(t *testing.T) {
	store := cookiestore.NewMemoryStore()
	require.NoError(t, store.Set(CookieRollbackRefreshToken, "old", cookiestore.Options{}))
	client := newMockedClient(t, new(mockRequester), store, func(c *ClientConfig) { c.AccessToken = "a1" })

	require.NoError(t, client.SwitchSession(Credentials{AccessToken: Value("a2")}))

	_, found := cookieValue(t, store, CookieRollbackRefreshToken)
	assert.False(t, found)
}

func TestClearSession(t *testing.T) {
	t.Run("without rollback session", func(t *testing.T) {
		store := cookiestore.NewMemoryStore()
		client := newMockedClient(t, new(mockRequester), store, func(c *ClientConfig) {
			c.AccessToken = "a1"
			c.RefreshToken = "r1"
		})

		require.NoError(t, client.ClearSession())
		assert.False(t, client.Ready())
		assert.Empty(t, store.Entries())
	})

	t.Run("restores rollback session", func(t *testing.T) {
		store := cookiestore.NewMemoryStore()
		client := newMockedClient(t, new(mockRequester), store, func(c *ClientConfig) {
			c.AccessToken = "admin-access"
			c.RefreshToken = "admin-refresh"
		})
		require.NoError(t, client.SwitchSession(Credentials{AccessToken: Value("user-access"), RefreshToken: Value("user-refresh")}))

		require.NoError(t, client.ClearSession())

		accessToken, refreshToken, ok := client.Credentials()
		require.True(t, ok)
		assert.Equal(t, "admin-access", accessToken)
		assert.Equal(t, "admin-refresh", refreshToken)
		_, found := cookieValue(t, store, CookieRollbackAccessToken)
		assert.False(t, found)
	})

	t.Run("empty rollback cookie is ignored", func(t *testing.T) {
		store := cookiestore.NewMemoryStore()
		require.NoError(t, store.Set(CookieRollbackAccessToken, "", cookiestore.Options{}))
		client := newMockedClient(t, new(mockRequester), store, func(c *ClientConfig) { c.AccessToken = "a1" })

		require.NoError(t, client.ClearSession())
		assert.False(t, client.Ready())
	})
}

func TestSignOut(t *testing.T) {
	t.Run("notifies the server and clears the session", func(t *testing.T) {
		api := newFakeAPI(t)
		api.seed("access-0", "refresh-0")
		store := cookiestore.NewMemoryStore()
		client := newTestClient(t, api, store, func(c *ClientConfig) {
			c.AccessToken = "access-0"
			c.RefreshToken = "refresh-0"
		})

		require.NoError(t, client.SignOut(context.Background()))
		assert.Equal(t, []string{"bearer access-0"}, api.authHeadersFor("/sign_out"))
		assert.False(t, client.Ready())
		assert.Empty(t, store.Entries())
	})

	t.Run("expired session is not an error", func(t *testing.T) {
		api := newFakeAPI(t)
		api.seed("", "refresh-0")
		client := newTestClient(t, api, nil, func(c *ClientConfig) {
			c.AccessToken = "expired"
			c.RefreshToken = "refresh-0"
		})

		require.NoError(t, client.SignOut(context.Background()))
		assert.EqualValues(t, 1, api.signOutCalls.Load())
		assert.EqualValues(t, 0, api.refreshCalls.Load())
		assert.False(t, client.Ready())
	})

	t.Run("no request without a session", func(t *testing.T) {
		api := newFakeAPI(t)
		client := newTestClient(t, api, nil, nil)

		require.NoError(t, client.SignOut(context.Background()))
		assert.EqualValues(t, 0, api.signOutCalls.Load())
	})

	t.Run("server failure is reported after clearing", func(t *testing.T) {
		serverErr := errors.New("boom")
		requester := new(mockRequester)
		requester.On("Request", mock.Anything, mock.Anything).Return(nil, serverErr).Once()
		client := newMockedClient(t, requester, nil, func(c *ClientConfig) { c.AccessToken = "a1" })

		err := client.SignOut(context.Background())
		assert.ErrorIs(t, err, serverErr)
		assert.False(t, client.Ready())
	})
}
