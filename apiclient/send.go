// apiclient/send.go
package apiclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/deploymenttheory/go-api-session-client/headers"
	"github.com/deploymenttheory/go-api-session-client/httpclient"
	"github.com/deploymenttheory/go-api-session-client/response"
	"github.com/deploymenttheory/go-api-session-client/status"
	"go.uber.org/zap"
)

// Request describes a call made through Send.
type Request struct {
	Method   string // defaults to GET
	Endpoint string
	// Payload is the request body. Body-carrying methods send {} when it is nil.
	Payload any
	Params  map[string]any
	Headers map[string]string
	// Authentication attaches the bearer token. Defaults to whether an access token is present.
	Authentication *bool
	// RefreshAuthentication refreshes the token and retries once on 401. Defaults to true.
	RefreshAuthentication *bool
	// Out receives the decoded response body when set.
	Out any
}

// Bool returns a pointer to b, for Request fields.
func Bool(b bool) *bool {
	return &b
}

// Send performs the request. On a 401 with refresh enabled it refreshes the access token once and
// retries once without refresh. When the refresh or the retry fails the result is ErrUnauthenticated
// wrapping the original 401. Every other error is returned unchanged.
func (c *Client) Send(ctx context.Context, req Request) (*httpclient.Response, error) {
	// A reader is drained by the first attempt, so buffer it for the retry.
	if reader, ok := req.Payload.(io.Reader); ok {
		payload, err := io.ReadAll(reader)
		if err != nil {
			c.logger.Error("Failed to read request payload", zap.String("endpoint", req.Endpoint), zap.Error(err))
			return nil, fmt.Errorf("reading request payload: %w", err)
		}
		req.Payload = payload
	}

	resp, usedToken, err := c.do(ctx, req)
	if err == nil {
		c.metrics.observeRequest(req.Method, outcomeSuccess)
		return resp, c.decodeOut(resp, req.Out)
	}
	if !status.IsUnauthorized(response.StatusCode(err)) || !refreshEnabled(req) {
		c.metrics.observeRequest(req.Method, requestOutcome(err))
		return nil, err
	}
	c.metrics.observeRequest(req.Method, outcomeUnauthorized)

	log := c.logger.With(zap.String("method", methodOf(req)), zap.String("endpoint", req.Endpoint))
	log.Debug("Received 401, refreshing access token")

	if refreshErr := c.refreshAfterUnauthorized(ctx, usedToken); refreshErr != nil {
		log.Warn("Token refresh failed, session is unauthenticated", zap.Error(refreshErr))
		return nil, authError(ErrUnauthenticated, err)
	}

	retry := req
	retry.RefreshAuthentication = Bool(false)
	c.metrics.observeRetry()

	resp, _, retryErr := c.do(ctx, retry)
	if retryErr != nil {
		c.metrics.observeRequest(req.Method, requestOutcome(retryErr))
		log.Warn("Retry after token refresh failed", zap.Error(retryErr))
		return nil, authError(ErrUnauthenticated, err)
	}
	c.metrics.observeRequest(req.Method, outcomeSuccess)
	return resp, c.decodeOut(resp, req.Out)
}

// do sends req once and returns the access token it was sent with.
func (c *Client) do(ctx context.Context, req Request) (*httpclient.Response, *string, error) {
	method := methodOf(req)

	requestHeaders := headers.Merge(req.Headers, c.headers)

	accessToken, hasToken := c.currentAccessToken()
	authenticate := hasToken
	if req.Authentication != nil {
		authenticate = *req.Authentication
	}
	var usedToken *string
	if authenticate {
		requestHeaders["Authorization"] = headers.AuthorizationValue(accessToken)
		usedToken = &accessToken
	}

	var data any
	if httpclient.AllowsRequestBody(method) {
		data = req.Payload
		if data == nil {
			data = map[string]any{}
		}
	}

	config := c.requestConfig()
	config.Method = method
	config.URL = req.Endpoint
	config.Headers = requestHeaders
	config.Params = req.Params
	config.Data = data

	resp, err := c.requester.Request(ctx, config)
	return resp, usedToken, err
}

// refreshAfterUnauthorized refreshes the access token after a 401. With deduplication on, concurrent
// callers share one refresh, and a caller whose token was already replaced skips the refresh.
func (c *Client) refreshAfterUnauthorized(ctx context.Context, usedToken *string) error {
	if c.disableRefreshDeduplication {
		return c.refreshOrReset(ctx)
	}

	if current, ok := c.currentAccessToken(); ok && usedToken != nil && current != *usedToken {
		c.metrics.observeRefresh(outcomeSkipped)
		return nil
	}

	// The shared refresh must outlive the caller that started it.
	result := c.refreshGroup.DoChan("refresh", func() (any, error) {
		return nil, c.refreshOrReset(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case r := <-result:
		return r.Err
	}
}

// refreshOrReset refreshes the token and resets the credentials when the grant is rejected.
func (c *Client) refreshOrReset(ctx context.Context) error {
	err := c.RefreshOauthToken(ctx)
	if errors.Is(err, ErrWrongCredentials) {
		if resetErr := c.ResetCredentials(); resetErr != nil {
			return errors.Join(err, resetErr)
		}
	}
	return err
}

func (c *Client) decodeOut(resp *httpclient.Response, out any) error {
	if out == nil || resp == nil {
		return nil
	}
	return resp.Decode(out)
}

func (c *Client) requestConfig() httpclient.RequestConfig {
	return httpclient.RequestConfig{
		BaseURL:          c.baseURL,
		ParamsSerializer: httpclient.SerializeParams,
		ResponseType:     httpclient.ResponseTypeJSON,
	}
}

func methodOf(req Request) string {
	if req.Method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(req.Method)
}

func refreshEnabled(req Request) bool {
	return req.RefreshAuthentication == nil || *req.RefreshAuthentication
}
