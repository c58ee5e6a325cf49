// httpclient/config.go
package httpclient

import (
	"errors"
	"net/http"
	"time"

	"github.com/deploymenttheory/go-api-session-client/proxy"
	"github.com/deploymenttheory/go-api-session-client/version"
)

const (
	DefaultTimeout      = 30 * time.Second
	DefaultMaxRedirects = 5
	DefaultAccept       = "application/json, text/plain, */*"
)

// Config configures a Client.
type Config struct {
	BaseURL           string
	Timeout           time.Duration
	FollowRedirects   bool
	MaxRedirects      int
	HideSensitiveData bool
	UserAgent         string

	// Proxy routes the default executor through an HTTP proxy when Proxy.URL is set.
	Proxy proxy.Config

	// Jar is shared with the underlying http.Client when set, typically cookiestore.JarStore.Jar().
	Jar http.CookieJar

	// Executor replaces the default net/http executor. Redirect, timeout and jar settings only
	// apply to the default executor.
	Executor Executor
}

// SetDefaultValuesConfig fills unset fields with their defaults.
func SetDefaultValuesConfig(config *Config) {
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.FollowRedirects && config.MaxRedirects <= 0 {
		config.MaxRedirects = DefaultMaxRedirects
	}
	if config.UserAgent == "" {
		config.UserAgent = version.GetUserAgentHeader()
	}
}

func validateConfig(config Config) error {
	if config.Timeout < 0 {
		return errors.New("timeout cannot be negative")
	}
	if config.MaxRedirects < 0 {
		return errors.New("max redirects cannot be negative")
	}
	return nil
}
