// proxy.go

// Package proxy routes the transport through an HTTP proxy.
package proxy

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/deploymenttheory/go-api-session-client/logger"
	"go.uber.org/zap"
)

// Config describes the proxy. An empty URL disables proxying.
type Config struct {
	URL      string
	Username string
	Password string
}

// Configure installs a transport on httpClient that sends every request through the proxy.
// Credentials are sent as Proxy-Authorization, both for plain requests and CONNECT tunnels.
func Configure(httpClient *http.Client, config Config, log logger.Logger) error {
	if config.URL == "" {
		return nil
	}

	proxyURL, err := url.Parse(config.URL)
	if err != nil {
		log.Error("Failed to parse proxy URL", zap.Error(err))
		return fmt.Errorf("parsing proxy URL: %w", err)
	}
	if proxyURL.Scheme == "" || proxyURL.Host == "" {
		return fmt.Errorf("proxy URL %q must include a scheme and host", config.URL)
	}

	if config.Username != "" {
		proxyURL.User = url.UserPassword(config.Username, config.Password)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = http.ProxyURL(proxyURL)
	httpClient.Transport = transport

	log.Info("Proxy configured", zap.String("ProxyURL", proxyURL.Redacted()), zap.Bool("Authenticated", proxyURL.User != nil))
	return nil
}
