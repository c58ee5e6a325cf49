// apiclient/fakeapi_test.go
package apiclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/deploymenttheory/go-api-session-client/cookiestore"
	"github.com/deploymenttheory/go-api-session-client/logger"
	"github.com/stretchr/testify/require"
)

// fakeAPI is an OAuth-protected API. Every issued access token stays valid until revoked.
type fakeAPI struct {
	server *httptest.Server

	mu            sync.Mutex
	password      string
	validAccess   map[string]bool
	validRefresh  map[string]bool
	rotateRefresh bool
	issued        int
	grants        []map[string]any
	authHeaders   map[string][]string
	bodies        map[string][]string
	allHeaders    []http.Header

	refreshDelay time.Duration
	refreshCalls atomic.Int32
	signOutCalls atomic.Int32
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()

	api := &fakeAPI{
		password:     "secret",
		validAccess:  map[string]bool{},
		validRefresh: map[string]bool{},
		authHeaders:  map[string][]string{},
		bodies:       map[string][]string{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth/token", api.handleToken)
	mux.HandleFunc("POST /sign_out", api.handleSignOut)
	mux.HandleFunc("/public", func(w http.ResponseWriter, r *http.Request) {
		api.record(r)
		writeJSON(w, http.StatusOK, map[string]any{"public": true})
	})
	mux.HandleFunc("/api/always401", func(w http.ResponseWriter, r *http.Request) {
		api.record(r)
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "not allowed"})
	})
	mux.HandleFunc("/api/missing", func(w http.ResponseWriter, r *http.Request) {
		api.record(r)
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "not found"})
	})
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		api.record(r)
		if !api.authorized(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "invalid token"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"path": r.URL.Path, "method": r.Method, "query": r.URL.RawQuery})
	})

	api.server = httptest.NewServer(mux)
	t.Cleanup(api.server.Close)
	return api
}

func (a *fakeAPI) URL() string {
	return a.server.URL
}

// seed registers a valid token pair.
func (a *fakeAPI) seed(accessToken, refreshToken string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if accessToken != "" {
		a.validAccess[accessToken] = true
	}
	if refreshToken != "" {
		a.validRefresh[refreshToken] = true
	}
}

func (a *fakeAPI) revokeAccess(accessToken string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	delete(a.validAccess, accessToken)
}

func (a *fakeAPI) record(r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	a.mu.Lock()
	defer a.mu.Unlock()

	a.bodies[r.URL.Path] = append(a.bodies[r.URL.Path], string(body))
	a.authHeaders[r.URL.Path] = append(a.authHeaders[r.URL.Path], r.Header.Get("Authorization"))
	a.allHeaders = append(a.allHeaders, r.Header.Clone())
}

func (a *fakeAPI) hits(path string) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return len(a.authHeaders[path])
}

func (a *fakeAPI) authHeadersFor(path string) []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	return append([]string(nil), a.authHeaders[path]...)
}

func (a *fakeAPI) bodiesFor(path string) []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	return append([]string(nil), a.bodies[path]...)
}

func (a *fakeAPI) lastHeaders() http.Header {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.allHeaders) == 0 {
		return nil
	}
	return a.allHeaders[len(a.allHeaders)-1]
}

func (a *fakeAPI) grantBodies() []map[string]any {
	a.mu.Lock()
	defer a.mu.Unlock()

	return append([]map[string]any(nil), a.grants...)
}

func (a *fakeAPI) authorized(r *http.Request) bool {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "bearer ")
	if !ok {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.validAccess[token]
}

// issueLocked creates and registers a new token pair.
func (a *fakeAPI) issueLocked() (string, string) {
	a.issued++
	accessToken := fmt.Sprintf("access-%d", a.issued)
	refreshToken := fmt.Sprintf("refresh-%d", a.issued)
	a.validAccess[accessToken] = true
	a.validRefresh[refreshToken] = true
	return accessToken, refreshToken
}

func (a *fakeAPI) handleToken(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid_request"})
		return
	}

	a.mu.Lock()
	a.grants = append(a.grants, body)
	a.mu.Unlock()

	switch body["grant_type"] {
	case GrantTypePassword:
		a.mu.Lock()
		defer a.mu.Unlock()
		if body["password"] != a.password {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "invalid_grant", "error_description": "wrong email or password"})
			return
		}
		accessToken, refreshToken := a.issueLocked()
		writeJSON(w, http.StatusOK, map[string]any{"access_token": accessToken, "refresh_token": refreshToken, "token_type": "Bearer", "expires_in": 7200})

	case GrantTypeRefreshToken:
		a.refreshCalls.Add(1)
		time.Sleep(a.refreshDelay)

		a.mu.Lock()
		defer a.mu.Unlock()
		presented, _ := body["refresh_token"].(string)
		if !a.validRefresh[presented] {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "invalid_grant"})
			return
		}
		if a.rotateRefresh {
			delete(a.validRefresh, presented)
		}
		accessToken, refreshToken := a.issueLocked()
		writeJSON(w, http.StatusOK, map[string]any{"access_token": accessToken, "refresh_token": refreshToken, "token_type": "Bearer"})

	default:
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "unsupported_grant_type"})
	}
}

func (a *fakeAPI) handleSignOut(w http.ResponseWriter, r *http.Request) {
	a.record(r)
	a.signOutCalls.Add(1)
	if !a.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "invalid token"})
		return
	}
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "bearer ")
	a.revokeAccess(token)
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// newTestClient builds a client against api with a nop logger.
func newTestClient(t *testing.T, api *fakeAPI, store cookiestore.Store, mutate func(*ClientConfig), opts ...Option) *Client {
	t.Helper()

	config := ClientConfig{APIURL: api.URL()}
	if mutate != nil {
		mutate(&config)
	}
	opts = append([]Option{WithLogger(logger.NewNopLogger())}, opts...)

	client, err := BuildClient(config, store, opts...)
	require.NoError(t, err)
	return client
}

func cookieValue(t *testing.T, store cookiestore.Store, name string) (string, bool) {
	t.Helper()

	value, err := store.Get(name)
	if err == cookiestore.ErrCookieNotFound {
		return "", false
	}
	require.NoError(t, err)
	return value, true
}
