// apiclient/credentials.go
package apiclient

import (
	"errors"
	"fmt"

	"github.com/deploymenttheory/go-api-session-client/cookiestore"
	"go.uber.org/zap"
)

// Cookie names used to persist the session.
const (
	CookieAccessToken          = "access_token"
	CookieRefreshToken         = "refresh_token"
	CookieRollbackAccessToken  = "rollback_access_token"
	CookieRollbackRefreshToken = "rollback_refresh_token"
)

// Credentials is a credential update applied by SetCredentials.
type Credentials struct {
	AccessToken  Token `json:"access_token"`
	RefreshToken Token `json:"refresh_token"`
}

// State is the authentication state of a session.
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticated
)

func (s State) String() string {
	if s == StateAuthenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// SetCredentials applies creds to memory and cookie storage. A Clear token removes its cookie
// and a Keep token leaves both untouched.
func (c *Client) SetCredentials(creds Credentials) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.setCredentialsLocked(creds)
}

func (c *Client) setCredentialsLocked(creds Credentials) error {
	if err := c.applyToken(&c.accessToken, CookieAccessToken, creds.AccessToken); err != nil {
		return err
	}
	if err := c.applyToken(&c.refreshToken, CookieRefreshToken, creds.RefreshToken); err != nil {
		return err
	}

	c.logger.Debug("Credentials updated",
		zap.Stringer("access_token", creds.AccessToken),
		zap.Stringer("refresh_token", creds.RefreshToken),
	)
	return nil
}

// applyToken writes the cookie first so memory only changes once storage agrees.
func (c *Client) applyToken(field **string, cookieName string, token Token) error {
	switch {
	case token.IsKeep():
		return nil
	case token.IsClear():
		if err := c.store.Remove(cookieName); err != nil {
			return c.storeError("remove", cookieName, err)
		}
		*field = nil
	default:
		value, _ := token.Get()
		if err := c.store.Set(cookieName, value, cookiestore.Options{Path: c.cookiePath}); err != nil {
			return c.storeError("set", cookieName, err)
		}
		*field = &value
	}
	return nil
}

// ResetCredentials clears both tokens.
func (c *Client) ResetCredentials() error {
	return c.SetCredentials(Credentials{AccessToken: Clear(), RefreshToken: Clear()})
}

// Ready reports whether an access token is present.
func (c *Client) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.accessToken != nil
}

// State reports the authentication state of the session.
func (c *Client) State() State {
	if c.Ready() {
		return StateAuthenticated
	}
	return StateUnauthenticated
}

// Credentials returns a snapshot of the current tokens. ok is false when no access token is present.
func (c *Client) Credentials() (accessToken, refreshToken string, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.refreshToken != nil {
		refreshToken = *c.refreshToken
	}
	if c.accessToken == nil {
		return "", refreshToken, false
	}
	return *c.accessToken, refreshToken, true
}

func (c *Client) currentAccessToken() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.accessToken == nil {
		return "", false
	}
	return *c.accessToken, true
}

func (c *Client) currentRefreshToken() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.refreshToken == nil {
		return "", false
	}
	return *c.refreshToken, true
}

// cookieToken reads a cookie as a Token. A missing cookie is Keep.
func (c *Client) cookieToken(name string) (Token, error) {
	value, err := c.store.Get(name)
	if errors.Is(err, cookiestore.ErrCookieNotFound) {
		return Keep(), nil
	}
	if err != nil {
		return Keep(), c.storeError("get", name, err)
	}
	return Value(value), nil
}

func (c *Client) storeError(op, name string, err error) error {
	c.logger.Error("Cookie store operation failed", zap.String("operation", op), zap.String("cookie", name), zap.Error(err))
	return fmt.Errorf("cookie store %s %q: %w", op, name, err)
}
