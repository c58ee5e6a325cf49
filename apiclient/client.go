// apiclient/client.go
/* Package apiclient is a session-owning API client. It attaches bearer tokens to requests, mirrors
the tokens into cookie storage, exchanges credentials at the OAuth token endpoint and refreshes the
access token once when a request fails with 401. */
package apiclient

import (
	"fmt"
	"sync"

	"github.com/deploymenttheory/go-api-session-client/cookiestore"
	"github.com/deploymenttheory/go-api-session-client/httpclient"
	"github.com/deploymenttheory/go-api-session-client/logger"
	"github.com/deploymenttheory/go-api-session-client/proxy"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Client holds one session. It is safe for concurrent use.
type Client struct {
	requester                   httpclient.Requester
	store                       cookiestore.Store
	logger                      logger.Logger
	metrics                     *Metrics
	baseURL                     string
	headers                     map[string]string
	paths                       Paths
	cookiePath                  string
	disableRefreshDeduplication bool
	refreshGroup                singleflight.Group

	mu           sync.RWMutex
	accessToken  *string
	refreshToken *string
}

type buildOptions struct {
	requester  httpclient.Requester
	logger     logger.Logger
	registerer prometheus.Registerer
}

// Option customises BuildClient.
type Option func(*buildOptions)

// WithRequester replaces the default HTTP transport.
func WithRequester(requester httpclient.Requester) Option {
	return func(o *buildOptions) { o.requester = requester }
}

// WithLogger replaces the logger built from the configuration.
func WithLogger(log logger.Logger) Option {
	return func(o *buildOptions) { o.logger = log }
}

// WithMetrics registers the client's Prometheus collectors with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *buildOptions) { o.registerer = reg }
}

// BuildClient creates a session client. Tokens come from the configuration when set and from the
// cookie store otherwise. A nil store keeps cookies in memory.
func BuildClient(config ClientConfig, store cookiestore.Store, opts ...Option) (*Client, error) {
	SetDefaultValuesClientConfig(&config)
	if err := validateClientConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	var options buildOptions
	for _, opt := range opts {
		opt(&options)
	}

	log := options.logger
	if log == nil {
		parsedLogLevel := logger.ParseLogLevelFromString(config.LogLevel)
		log = logger.BuildLogger(parsedLogLevel, config.LogOutputFormat, config.LogConsoleSeparator, config.HideSensitiveData)
	}

	if store == nil {
		store = cookiestore.NewMemoryStore()
	}

	requester := options.requester
	if requester == nil {
		transportConfig := httpclient.Config{
			BaseURL:           config.APIURL,
			Timeout:           config.CustomTimeout,
			FollowRedirects:   config.FollowRedirects,
			MaxRedirects:      config.MaxRedirects,
			HideSensitiveData: config.HideSensitiveData,
			Proxy: proxy.Config{
				URL:      config.ProxyURL,
				Username: config.ProxyUsername,
				Password: config.ProxyPassword,
			},
		}
		if jarStore, ok := store.(*cookiestore.JarStore); ok {
			transportConfig.Jar = jarStore.Jar()
		}
		transport, err := httpclient.NewClient(transportConfig, log)
		if err != nil {
			return nil, err
		}
		requester = transport
	}

	var metrics *Metrics
	if options.registerer != nil {
		m, err := NewMetrics(options.registerer)
		if err != nil {
			return nil, err
		}
		metrics = m
	}

	client := &Client{
		requester:                   requester,
		store:                       store,
		logger:                      log,
		metrics:                     metrics,
		baseURL:                     config.APIURL,
		headers:                     copyHeaders(config.Headers),
		paths:                       config.Paths,
		cookiePath:                  config.CookiePath,
		disableRefreshDeduplication: config.DisableRefreshDeduplication,
	}

	var err error
	if client.accessToken, err = client.initialToken(config.AccessToken, CookieAccessToken); err != nil {
		return nil, err
	}
	if client.refreshToken, err = client.initialToken(config.RefreshToken, CookieRefreshToken); err != nil {
		return nil, err
	}

	log.Debug("New session client initialized",
		zap.String("API URL", config.APIURL),
		zap.String("OAuth Token Path", config.Paths.OAuthTokenPath),
		zap.String("Sign Out Path", config.Paths.SignOutPath),
		zap.String("Cookie Path", config.CookiePath),
		zap.Bool("Refresh Deduplication", !config.DisableRefreshDeduplication),
		zap.Bool("Authenticated", client.accessToken != nil),
	)
	return client, nil
}

// initialToken prefers an explicit token, then the cookie. Empty values count as absent.
func (c *Client) initialToken(explicit, cookieName string) (*string, error) {
	if explicit != "" {
		return &explicit, nil
	}
	token, err := c.cookieToken(cookieName)
	if err != nil {
		return nil, err
	}
	if value, ok := token.Get(); ok && value != "" {
		return &value, nil
	}
	return nil, nil
}

// Logger returns the client's logger.
func (c *Client) Logger() logger.Logger {
	return c.logger
}

// Paths returns the configured endpoints.
func (c *Client) Paths() Paths {
	return c.paths
}

func copyHeaders(h map[string]string) map[string]string {
	out := make(map[string]string, len(h))
	for name, value := range h {
		out[name] = value
	}
	return out
}
