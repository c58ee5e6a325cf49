// apiclient/session.go
package apiclient

import (
	"context"
	"errors"
	"net/http"

	"github.com/deploymenttheory/go-api-session-client/cookiestore"
	"github.com/deploymenttheory/go-api-session-client/response"
	"go.uber.org/zap"
)

// RollbackSession restores the tokens saved in the rollback cookies and deletes those cookies.
// A missing rollback cookie leaves the matching token untouched.
func (c *Client) RollbackSession() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	accessToken, err := c.cookieToken(CookieRollbackAccessToken)
	if err != nil {
		return err
	}
	refreshToken, err := c.cookieToken(CookieRollbackRefreshToken)
	if err != nil {
		return err
	}

	if err := c.setCredentialsLocked(Credentials{AccessToken: accessToken, RefreshToken: refreshToken}); err != nil {
		return err
	}

	for _, name := range []string{CookieRollbackAccessToken, CookieRollbackRefreshToken} {
		if err := c.store.Remove(name); err != nil {
			return c.storeError("remove", name, err)
		}
	}

	c.logger.Info("Session rolled back", zap.Bool("authenticated", c.accessToken != nil))
	return nil
}

// SwitchSession saves the current tokens into the rollback cookies and applies creds,
// so a later RollbackSession returns to the current session.
func (c *Client) SwitchSession(creds Credentials) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	saved := map[string]Token{
		CookieRollbackAccessToken:  tokenFromPointer(c.accessToken),
		CookieRollbackRefreshToken: tokenFromPointer(c.refreshToken),
	}
	for name, token := range saved {
		if value, ok := token.Get(); ok {
			if err := c.store.Set(name, value, cookiestore.Options{Path: c.cookiePath}); err != nil {
				return c.storeError("set", name, err)
			}
			continue
		}
		if err := c.store.Remove(name); err != nil {
			return c.storeError("remove", name, err)
		}
	}

	if err := c.setCredentialsLocked(creds); err != nil {
		return err
	}
	c.logger.Info("Session switched", zap.Bool("authenticated", c.accessToken != nil))
	return nil
}

// ClearSession resets the credentials and, when a rollback session is saved, restores it.
func (c *Client) ClearSession() error {
	if err := c.ResetCredentials(); err != nil {
		return err
	}

	value, err := c.store.Get(CookieRollbackAccessToken)
	switch {
	case errors.Is(err, cookiestore.ErrCookieNotFound):
		return nil
	case err != nil:
		return c.storeError("get", CookieRollbackAccessToken, err)
	case value == "":
		return nil
	}
	return c.RollbackSession()
}

// SignOut notifies the sign-out endpoint and clears the session whatever the outcome.
// A 401 from the endpoint means the session was already gone and is not reported.
func (c *Client) SignOut(ctx context.Context) error {
	var signOutErr error
	if c.Ready() {
		_, err := c.Send(ctx, Request{
			Method:                http.MethodPost,
			Endpoint:              c.paths.SignOutPath,
			Authentication:        Bool(true),
			RefreshAuthentication: Bool(false),
		})
		if err != nil && !response.IsStatus(err, http.StatusUnauthorized) {
			signOutErr = err
		}
	}

	if err := c.ClearSession(); err != nil {
		return errors.Join(signOutErr, err)
	}
	c.logger.Info("Signed out")
	return signOutErr
}
