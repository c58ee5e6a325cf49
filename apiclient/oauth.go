// apiclient/oauth.go
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/deploymenttheory/go-api-session-client/response"
	"go.uber.org/zap"
)

// Grant types sent to the token endpoint.
const (
	GrantTypePassword     = "password"
	GrantTypeRefreshToken = "refresh_token"
)

// OAuthResponse represents the token endpoint response. Absent token fields leave the current
// token untouched and null fields clear it.
type OAuthResponse struct {
	AccessToken  Token  `json:"access_token"`
	RefreshToken Token  `json:"refresh_token"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
	Scope        string `json:"scope,omitempty"`
	CreatedAt    int64  `json:"created_at,omitempty"`
}

type passwordGrant struct {
	GrantType string `json:"grant_type"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type refreshGrant struct {
	GrantType    string `json:"grant_type"`
	RefreshToken string `json:"refresh_token"`
}

// RequestOauthToken exchanges email and password for tokens. A 401 yields ErrWrongCredentials and
// leaves the current tokens untouched.
func (c *Client) RequestOauthToken(ctx context.Context, email, password string) error {
	return c.exchangeToken(ctx, GrantTypePassword, passwordGrant{
		GrantType: GrantTypePassword,
		Email:     email,
		Password:  password,
	})
}

// RefreshOauthToken exchanges the stored refresh token for new tokens. Without a refresh token it
// returns ErrUnauthenticated and makes no request.
func (c *Client) RefreshOauthToken(ctx context.Context) error {
	refreshToken, ok := c.currentRefreshToken()
	if !ok {
		c.logger.LogAuthTokenEvent("token_grant", GrantTypeRefreshToken, "missing_refresh_token", ErrUnauthenticated)
		c.metrics.observeRefresh(outcomeError)
		return ErrUnauthenticated
	}

	err := c.exchangeToken(ctx, GrantTypeRefreshToken, refreshGrant{
		GrantType:    GrantTypeRefreshToken,
		RefreshToken: refreshToken,
	})
	c.metrics.observeRefresh(grantOutcome(err))
	return err
}

func (c *Client) exchangeToken(ctx context.Context, grantType string, body any) error {
	resp, err := c.requester.Post(ctx, c.paths.OAuthTokenPath, body, c.requestConfig())
	if err != nil {
		if response.IsStatus(err, http.StatusUnauthorized) {
			c.logger.LogAuthTokenEvent("token_grant", grantType, "rejected", err)
			c.metrics.observeTokenGrant(grantType, outcomeRejected)
			return authError(ErrWrongCredentials, err)
		}
		c.logger.LogAuthTokenEvent("token_grant", grantType, "error", err)
		c.metrics.observeTokenGrant(grantType, outcomeError)
		return err
	}

	var oauthResp OAuthResponse
	if err := json.Unmarshal(resp.Body, &oauthResp); err != nil {
		c.logger.Error("Failed to decode OAuth response", zap.String("grant_type", grantType), zap.Error(err))
		c.metrics.observeTokenGrant(grantType, outcomeError)
		return fmt.Errorf("failed to decode OAuth response: %w", err)
	}

	if err := c.SetCredentials(Credentials{
		AccessToken:  oauthResp.AccessToken,
		RefreshToken: oauthResp.RefreshToken,
	}); err != nil {
		c.metrics.observeTokenGrant(grantType, outcomeError)
		return err
	}

	c.logger.LogAuthTokenEvent("token_grant", grantType, "success", nil)
	c.logger.Debug("OAuth token response",
		zap.String("token_type", oauthResp.TokenType),
		zap.Int64("expires_in", oauthResp.ExpiresIn),
		zap.String("scope", oauthResp.Scope),
	)
	c.metrics.observeTokenGrant(grantType, outcomeSuccess)
	return nil
}
