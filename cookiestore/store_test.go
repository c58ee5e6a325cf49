// cookiestore/store_test.go
package cookiestore

import (
	"context"
	"net/http"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore checks the behaviour every Store must share.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()

	_, err := store.Get("access_token")
	assert.ErrorIs(t, err, ErrCookieNotFound)

	require.NoError(t, store.Set("access_token", "abc", Options{Path: "/"}))
	value, err := store.Get("access_token")
	require.NoError(t, err)
	assert.Equal(t, "abc", value)

	require.NoError(t, store.Set("access_token", "def", Options{}))
	value, err = store.Get("access_token")
	require.NoError(t, err)
	assert.Equal(t, "def", value)

	require.NoError(t, store.Set("refresh_token", "r1", Options{Path: "/"}))
	require.NoError(t, store.Remove("access_token"))

	_, err = store.Get("access_token")
	assert.ErrorIs(t, err, ErrCookieNotFound)
	value, err = store.Get("refresh_token")
	require.NoError(t, err)
	assert.Equal(t, "r1", value)

	assert.NoError(t, store.Remove("never_set"))
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	exerciseStore(t, store)

	assert.Equal(t, []Entry{{Name: "refresh_token", Value: "r1", Path: "/"}}, store.Entries())
}

func TestJarStore(t *testing.T) {
	store, err := NewJarStore("http://api.example.com/v1")
	require.NoError(t, err)

	exerciseStore(t, store)
}

func TestJarStoreSharesJar(t *testing.T) {
	store, err := NewJarStore("https://api.example.com")
	require.NoError(t, err)

	require.NoError(t, store.Set("access_token", "abc", Options{Path: "/"}))

	req, err := http.NewRequest(http.MethodGet, "https://api.example.com/users", nil)
	require.NoError(t, err)
	cookies := store.Jar().Cookies(req.URL)
	require.Len(t, cookies, 1)
	assert.Equal(t, "access_token", cookies[0].Name)
}

func TestJarStoreCustomPath(t *testing.T) {
	store, err := NewJarStore("https://api.example.com")
	require.NoError(t, err)

	require.NoError(t, store.Set("access_token", "abc", Options{Path: "/api"}))
	value, err := store.Get("access_token")
	require.NoError(t, err)
	assert.Equal(t, "abc", value)
}

func TestNewJarStoreRejectsRelativeURL(t *testing.T) {
	_, err := NewJarStore("/relative")
	assert.Error(t, err)
}

func TestFileStore(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "nested", "cookies.json"))
	require.NoError(t, err)

	exerciseStore(t, store)
}

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")

	first, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, first.Set("access_token", "persisted", Options{Path: "/"}))

	second, err := NewFileStore(path)
	require.NoError(t, err)
	value, err := second.Get("access_token")
	require.NoError(t, err)
	assert.Equal(t, "persisted", value)
}

func TestFileStoreWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var changes atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- store.Watch(ctx, func() { changes.Add(1) })
	}()

	other, err := NewFileStore(path)
	require.NoError(t, err)

	// The watcher registers asynchronously; keep writing until a change is seen.
	assert.Eventually(t, func() bool {
		_ = other.Set("access_token", "from-other-process", Options{Path: "/"})
		return changes.Load() > 0
	}, 5*time.Second, 150*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "cookies.db"))
	require.NoError(t, err)
	defer store.Close()

	exerciseStore(t, store)
}

func TestSQLiteStorePersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.db")

	first, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, first.Set("refresh_token", "persisted", Options{Path: "/"}))
	require.NoError(t, first.Close())

	second, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer second.Close()

	value, err := second.Get("refresh_token")
	require.NoError(t, err)
	assert.Equal(t, "persisted", value)
}
