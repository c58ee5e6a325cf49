// cookiestore/store.go

/* Package cookiestore persists named cookie values for the session client. The client keeps its
access, refresh and rollback tokens here so a session survives process restarts. Backends are an
in-memory map, a net/http cookie jar that can be shared with the transport, a JSON file and a
SQLite database. */
package cookiestore

import "errors"

// DefaultPath is the cookie path used when Options.Path is empty.
const DefaultPath = "/"

// ErrCookieNotFound is returned by Get when no cookie with the given name is stored.
var ErrCookieNotFound = errors.New("cookie not found")

// Options carries the attributes written alongside a cookie value.
type Options struct {
	Path string
}

// Store is the cookie storage used by the session client.
type Store interface {
	// Get returns the stored value or ErrCookieNotFound.
	Get(name string) (string, error)
	// Set stores value under name, replacing any previous value.
	Set(name, value string, opts Options) error
	// Remove deletes the cookie. Removing a missing cookie is not an error.
	Remove(name string) error
}

func pathOrDefault(path string) string {
	if path == "" {
		return DefaultPath
	}
	return path
}
