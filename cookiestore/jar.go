// cookiestore/jar.go
package cookiestore

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"

	"golang.org/x/net/publicsuffix"
)

// JarStore stores cookies in a net/http cookie jar scoped to the API origin. The same jar can be
// handed to the HTTP transport so cookies set by the server and by the session client are shared.
type JarStore struct {
	jar    http.CookieJar
	origin *url.URL

	mu    sync.Mutex
	paths map[string]string
}

// NewJarStore creates a JarStore for the given API base URL.
func NewJarStore(baseURL string) (*JarStore, error) {
	origin, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("cookiestore: invalid base URL %q: %w", baseURL, err)
	}
	if origin.Scheme == "" || origin.Host == "" {
		return nil, fmt.Errorf("cookiestore: base URL %q must be absolute", baseURL)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("cookiestore: creating cookie jar: %w", err)
	}

	return &JarStore{
		jar:    jar,
		origin: &url.URL{Scheme: origin.Scheme, Host: origin.Host},
		paths:  make(map[string]string),
	}, nil
}

// Jar returns the underlying cookie jar.
func (s *JarStore) Jar() http.CookieJar {
	return s.jar
}

func (s *JarStore) urlFor(path string) *url.URL {
	u := *s.origin
	u.Path = path
	return &u
}

func (s *JarStore) Get(name string) (string, error) {
	s.mu.Lock()
	path, ok := s.paths[name]
	s.mu.Unlock()
	if !ok {
		path = DefaultPath
	}

	for _, cookie := range s.jar.Cookies(s.urlFor(path)) {
		if cookie.Name == name {
			return cookie.Value, nil
		}
	}
	return "", ErrCookieNotFound
}

func (s *JarStore) Set(name, value string, opts Options) error {
	path := pathOrDefault(opts.Path)

	s.mu.Lock()
	s.paths[name] = path
	s.mu.Unlock()

	s.jar.SetCookies(s.urlFor(path), []*http.Cookie{{Name: name, Value: value, Path: path}})
	return nil
}

func (s *JarStore) Remove(name string) error {
	s.mu.Lock()
	path, ok := s.paths[name]
	delete(s.paths, name)
	s.mu.Unlock()
	if !ok {
		path = DefaultPath
	}

	s.jar.SetCookies(s.urlFor(path), []*http.Cookie{{Name: name, Path: path, MaxAge: -1}})
	return nil
}
