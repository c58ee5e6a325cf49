// httpclient/client.go
/* Package httpclient is the transport used by the session client. It resolves request URLs against
a base URL, serializes params and bodies, logs each exchange with a request ID, decodes successful
responses and turns every non-2xx status into a *response.APIError. */
package httpclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/deploymenttheory/go-api-session-client/logger"
	"github.com/deploymenttheory/go-api-session-client/proxy"
	"github.com/deploymenttheory/go-api-session-client/redirecthandler"
	"go.uber.org/zap"
)

// Requester is the transport contract the session client depends on.
type Requester interface {
	Request(ctx context.Context, config RequestConfig) (*Response, error)
	Post(ctx context.Context, path string, body any, config RequestConfig) (*Response, error)
}

// Client is the default Requester.
type Client struct {
	config   Config
	executor Executor
	redirect *redirecthandler.RedirectHandler
	Logger   logger.Logger
}

var _ Requester = (*Client)(nil)

// NewClient builds a Client from config.
func NewClient(config Config, log logger.Logger) (*Client, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	SetDefaultValuesConfig(&config)
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	client := &Client{
		config:   config,
		executor: config.Executor,
		Logger:   log,
	}

	if client.executor == nil {
		httpClient := &http.Client{
			Timeout: config.Timeout,
			Jar:     config.Jar,
		}

		if err := proxy.Configure(httpClient, config.Proxy, log); err != nil {
			return nil, fmt.Errorf("failed to set up proxy: %w", err)
		}

		redirect, err := redirecthandler.SetupRedirectHandler(httpClient, config.FollowRedirects, config.MaxRedirects, log)
		if err != nil {
			return nil, fmt.Errorf("failed to set up redirect handler: %w", err)
		}
		client.redirect = redirect
		client.executor = &ProdExecutor{Client: httpClient}
	}

	log.Debug("New HTTP transport initialized",
		zap.String("Base URL", config.BaseURL),
		zap.Duration("Timeout", config.Timeout),
		zap.Bool("Follow Redirects", config.FollowRedirects),
		zap.Int("Max Redirects", config.MaxRedirects),
		zap.Bool("Cookie Jar Enabled", config.Jar != nil),
		zap.Bool("Proxy Enabled", config.Proxy.URL != ""),
		zap.Bool("Hide Sensitive Data In Logs", config.HideSensitiveData),
	)

	return client, nil
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// Post sends body to path with the POST method. Other fields of config still apply.
func (c *Client) Post(ctx context.Context, path string, body any, config RequestConfig) (*Response, error) {
	config.Method = http.MethodPost
	config.URL = path
	config.Data = body
	return c.Request(ctx, config)
}
