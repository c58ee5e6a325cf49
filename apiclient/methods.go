// apiclient/methods.go
package apiclient

import (
	"context"
	"net/http"

	"github.com/deploymenttheory/go-api-session-client/httpclient"
)

// RequestOption adjusts a Request built by the convenience methods.
type RequestOption func(*Request)

// WithAuthentication forces the bearer token on or off.
func WithAuthentication(enabled bool) RequestOption {
	return func(r *Request) { r.Authentication = Bool(enabled) }
}

// WithRefreshAuthentication enables or disables the refresh-and-retry on 401.
func WithRefreshAuthentication(enabled bool) RequestOption {
	return func(r *Request) { r.RefreshAuthentication = Bool(enabled) }
}

// WithHeaders adds per-request headers. Client default headers take precedence.
func WithHeaders(h map[string]string) RequestOption {
	return func(r *Request) { r.Headers = h }
}

// WithParams sets the query params.
func WithParams(params map[string]any) RequestOption {
	return func(r *Request) { r.Params = params }
}

func (c *Client) sendWith(ctx context.Context, req Request, opts []RequestOption) (*httpclient.Response, error) {
	for _, opt := range opts {
		opt(&req)
	}
	return c.Send(ctx, req)
}

// Get sends a GET with params. The body is decoded into out when out is not nil.
func (c *Client) Get(ctx context.Context, endpoint string, params map[string]any, out any, opts ...RequestOption) (*httpclient.Response, error) {
	return c.sendWith(ctx, Request{Method: http.MethodGet, Endpoint: endpoint, Params: params, Out: out}, opts)
}

// Post sends payload with POST.
func (c *Client) Post(ctx context.Context, endpoint string, payload any, out any, opts ...RequestOption) (*httpclient.Response, error) {
	return c.sendWith(ctx, Request{Method: http.MethodPost, Endpoint: endpoint, Payload: payload, Out: out}, opts)
}

// Put sends payload with PUT.
func (c *Client) Put(ctx context.Context, endpoint string, payload any, out any, opts ...RequestOption) (*httpclient.Response, error) {
	return c.sendWith(ctx, Request{Method: http.MethodPut, Endpoint: endpoint, Payload: payload, Out: out}, opts)
}

// Patch sends payload with PATCH.
func (c *Client) Patch(ctx context.Context, endpoint string, payload any, out any, opts ...RequestOption) (*httpclient.Response, error) {
	return c.sendWith(ctx, Request{Method: http.MethodPatch, Endpoint: endpoint, Payload: payload, Out: out}, opts)
}

// Delete sends payload with DELETE.
func (c *Client) Delete(ctx context.Context, endpoint string, payload any, out any, opts ...RequestOption) (*httpclient.Response, error) {
	return c.sendWith(ctx, Request{Method: http.MethodDelete, Endpoint: endpoint, Payload: payload, Out: out}, opts)
}
