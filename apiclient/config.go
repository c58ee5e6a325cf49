// apiclient/config.go
// Description: configuration for the session client, loaded from a file or APICLIENT_* environment variables.
package apiclient

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/deploymenttheory/go-api-session-client/cookiestore"
	"github.com/deploymenttheory/go-api-session-client/logger"
	"github.com/spf13/viper"
)

const (
	DefaultOAuthTokenPath      = "oauth/token"
	DefaultSignOutPath         = "sign_out"
	DefaultLogLevelString      = "LogLevelInfo"
	DefaultLogOutputFormat     = logger.LogOutputConsole
	DefaultLogConsoleSeparator = "\t"
	DefaultCustomTimeout       = 30 * time.Second
	DefaultMaxRedirects        = 5
	DefaultCookiePath          = cookiestore.DefaultPath

	// EnvPrefix prefixes every environment variable read by LoadConfigFromEnv.
	EnvPrefix = "APICLIENT"
)

// Paths are the token and sign-out endpoints, relative to the API URL.
type Paths struct {
	OAuthTokenPath string `json:"oauth_token_path" mapstructure:"oauth_token_path"`
	SignOutPath    string `json:"sign_out_path" mapstructure:"sign_out_path"`
}

// ClientConfig configures BuildClient.
type ClientConfig struct {
	APIURL string `json:"api_url" mapstructure:"api_url"`

	// Initial tokens. When empty the tokens are read from the cookie store.
	AccessToken  string `json:"access_token,omitempty" mapstructure:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty" mapstructure:"refresh_token"`

	// Headers are sent with every request and win over per-request headers.
	Headers map[string]string `json:"headers,omitempty" mapstructure:"headers"`
	// Paths are merged over the defaults field by field.
	Paths Paths `json:"paths" mapstructure:"paths"`

	// Log
	LogLevel            string `json:"log_level" mapstructure:"log_level"`
	LogOutputFormat     string `json:"log_output_format" mapstructure:"log_output_format"` // "json" or "console"
	LogConsoleSeparator string `json:"log_console_separator" mapstructure:"log_console_separator"`
	HideSensitiveData   bool   `json:"hide_sensitive_data" mapstructure:"hide_sensitive_data"`

	// Transport
	CustomTimeout   time.Duration `json:"custom_timeout" mapstructure:"custom_timeout"`
	FollowRedirects bool          `json:"follow_redirects" mapstructure:"follow_redirects"`
	MaxRedirects    int           `json:"max_redirects" mapstructure:"max_redirects"`
	ProxyURL        string        `json:"proxy_url,omitempty" mapstructure:"proxy_url"`
	ProxyUsername   string        `json:"proxy_username,omitempty" mapstructure:"proxy_username"`
	ProxyPassword   string        `json:"proxy_password,omitempty" mapstructure:"proxy_password"`

	// Session
	CookiePath                  string `json:"cookie_path" mapstructure:"cookie_path"`
	DisableRefreshDeduplication bool   `json:"disable_refresh_deduplication" mapstructure:"disable_refresh_deduplication"`
}

// LoadConfigFromFile loads configuration from a JSON, YAML or TOML file and applies defaults.
func LoadConfigFromFile(path string) (*ClientConfig, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to read the configuration file: %s, error: %w", path, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read the configuration file: %s, error: %w", path, err)
	}

	var config ClientConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal the configuration file: %s, error: %w", path, err)
	}

	SetDefaultValuesClientConfig(&config)
	return &config, nil
}

// LoadConfigFromEnv overlays APICLIENT_* environment variables onto config. Unset variables keep
// the existing values. A nil config starts empty.
func LoadConfigFromEnv(config *ClientConfig) (*ClientConfig, error) {
	if config == nil {
		config = &ClientConfig{}
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setString := func(key string, target *string) {
		if v.IsSet(key) {
			*target = v.GetString(key)
		}
	}
	setBool := func(key string, target *bool) {
		if v.IsSet(key) {
			*target = v.GetBool(key)
		}
	}

	setString("api_url", &config.APIURL)
	setString("access_token", &config.AccessToken)
	setString("refresh_token", &config.RefreshToken)
	setString("oauth_token_path", &config.Paths.OAuthTokenPath)
	setString("sign_out_path", &config.Paths.SignOutPath)
	setString("log_level", &config.LogLevel)
	setString("log_output_format", &config.LogOutputFormat)
	setString("log_console_separator", &config.LogConsoleSeparator)
	setBool("hide_sensitive_data", &config.HideSensitiveData)
	setBool("follow_redirects", &config.FollowRedirects)
	setString("proxy_url", &config.ProxyURL)
	setString("proxy_username", &config.ProxyUsername)
	setString("proxy_password", &config.ProxyPassword)
	setString("cookie_path", &config.CookiePath)
	setBool("disable_refresh_deduplication", &config.DisableRefreshDeduplication)

	if v.IsSet("custom_timeout") {
		timeout, err := time.ParseDuration(v.GetString("custom_timeout"))
		if err != nil {
			return nil, fmt.Errorf("invalid %s_CUSTOM_TIMEOUT: %w", EnvPrefix, err)
		}
		config.CustomTimeout = timeout
	}
	if v.IsSet("max_redirects") {
		config.MaxRedirects = v.GetInt("max_redirects")
	}

	SetDefaultValuesClientConfig(config)
	return config, nil
}

// SetDefaultValuesClientConfig fills unset fields with their defaults.
func SetDefaultValuesClientConfig(config *ClientConfig) {
	if config.Paths.OAuthTokenPath == "" {
		config.Paths.OAuthTokenPath = DefaultOAuthTokenPath
	}
	if config.Paths.SignOutPath == "" {
		config.Paths.SignOutPath = DefaultSignOutPath
	}
	if config.LogLevel == "" {
		config.LogLevel = DefaultLogLevelString
	}
	if config.LogOutputFormat == "" {
		config.LogOutputFormat = DefaultLogOutputFormat
	}
	if config.LogConsoleSeparator == "" {
		config.LogConsoleSeparator = DefaultLogConsoleSeparator
	}
	if config.CustomTimeout == 0 {
		config.CustomTimeout = DefaultCustomTimeout
	}
	if config.FollowRedirects && config.MaxRedirects == 0 {
		config.MaxRedirects = DefaultMaxRedirects
	}
	if config.CookiePath == "" {
		config.CookiePath = DefaultCookiePath
	}
}

func validateClientConfig(config ClientConfig) error {
	if config.APIURL == "" {
		return errors.New("api url is required")
	}
	parsed, err := url.Parse(config.APIURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("api url %q must be an absolute URL", config.APIURL)
	}

	if logger.ParseLogLevelFromString(config.LogLevel) == logger.LogLevelNone {
		return fmt.Errorf("unknown log level %q", config.LogLevel)
	}
	switch config.LogOutputFormat {
	case logger.LogOutputJSON, logger.LogOutputConsole:
	default:
		return fmt.Errorf("unknown log output format %q, use %q or %q", config.LogOutputFormat, logger.LogOutputJSON, logger.LogOutputConsole)
	}

	if config.CustomTimeout < 0 {
		return errors.New("timeout cannot be less than 0 seconds")
	}
	if config.FollowRedirects && config.MaxRedirects < 1 {
		return errors.New("max redirects cannot be less than 1 when following redirects")
	}
	if !strings.HasPrefix(config.CookiePath, "/") {
		return fmt.Errorf("cookie path %q must start with /", config.CookiePath)
	}
	return nil
}
