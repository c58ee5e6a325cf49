// apiclient/config_test.go
package apiclient

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetDefaultValuesClientConfig(t *testing.T) {
	config := ClientConfig{APIURL: "https://api.example.com", Paths: Paths{SignOutPath: "logout"}, FollowRedirects: true}
	SetDefaultValuesClientConfig(&config)

	assert.Equal(t, DefaultOAuthTokenPath, config.Paths.OAuthTokenPath)
	assert.Equal(t, "logout", config.Paths.SignOutPath, "partial path overrides are merged")
	assert.Equal(t, DefaultLogLevelString, config.LogLevel)
	assert.Equal(t, DefaultLogOutputFormat, config.LogOutputFormat)
	assert.Equal(t, DefaultCustomTimeout, config.CustomTimeout)
	assert.Equal(t, DefaultMaxRedirects, config.MaxRedirects)
	assert.Equal(t, "/", config.CookiePath)
	assert.NoError(t, validateClientConfig(config))
}

func TestValidateClientConfig(t *testing.T) {
	valid := ClientConfig{APIURL: "https://api.example.com"}
	SetDefaultValuesClientConfig(&valid)

	tests := []struct {
		name   string
		mutate func(*ClientConfig)
	}{
		{"missing api url", func(c *ClientConfig) { c.APIURL = "" }},
		{"relative api url", func(c *ClientConfig) { c.APIURL = "api/v1" }},
		{"unknown log level", func(c *ClientConfig) { c.LogLevel = "verbose" }},
		{"unknown log format", func(c *ClientConfig) { c.LogOutputFormat = "xml" }},
		{"negative timeout", func(c *ClientConfig) { c.CustomTimeout = -time.Second }},
		{"redirects without limit", func(c *ClientConfig) { c.FollowRedirects = true; c.MaxRedirects = 0 }},
		{"relative cookie path", func(c *ClientConfig) { c.CookiePath = "app" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := valid
			tt.mutate(&config)
			assert.Error(t, validateClientConfig(config))
		})
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(path, []byte(`{
			"api_url": "https://api.example.com/v1",
			"headers": {"x-tenant": "acme"},
			"paths": {"oauth_token_path": "auth/token"},
			"log_level": "LogLevelDebug",
			"custom_timeout": "10s",
			"disable_refresh_deduplication": true
		}`), 0o600))

		config, err := LoadConfigFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, "https://api.example.com/v1", config.APIURL)
		assert.Equal(t, "acme", config.Headers["x-tenant"])
		assert.Equal(t, "auth/token", config.Paths.OAuthTokenPath)
		assert.Equal(t, DefaultSignOutPath, config.Paths.SignOutPath)
		assert.Equal(t, "LogLevelDebug", config.LogLevel)
		assert.Equal(t, 10*time.Second, config.CustomTimeout)
		assert.True(t, config.DisableRefreshDeduplication)
	})

	t.Run("yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("api_url: https://api.example.com\ncookie_path: /app\nlog_output_format: json\n"), 0o600))

		config, err := LoadConfigFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, "https://api.example.com", config.APIURL)
		assert.Equal(t, "/app", config.CookiePath)
		assert.Equal(t, "json", config.LogOutputFormat)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfigFromFile(filepath.Join(t.TempDir(), "nope.json"))
		assert.Error(t, err)
	})
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("APICLIENT_API_URL", "https://env.example.com")
	t.Setenv("APICLIENT_SIGN_OUT_PATH", "logout")
	t.Setenv("APICLIENT_CUSTOM_TIMEOUT", "5s")
	t.Setenv("APICLIENT_HIDE_SENSITIVE_DATA", "true")

	config, err := LoadConfigFromEnv(&ClientConfig{APIURL: "https://file.example.com", LogLevel: "LogLevelWarn"})
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com", config.APIURL)
	assert.Equal(t, "logout", config.Paths.SignOutPath)
	assert.Equal(t, DefaultOAuthTokenPath, config.Paths.OAuthTokenPath)
	assert.Equal(t, "LogLevelWarn", config.LogLevel, "unset variables keep existing values")
	assert.Equal(t, 5*time.Second, config.CustomTimeout)
	assert.True(t, config.HideSensitiveData)
}

func TestLoadConfigFromEnv_InvalidTimeout(t *testing.T) {
	t.Setenv("APICLIENT_CUSTOM_TIMEOUT", "soon")

	_, err := LoadConfigFromEnv(nil)
	assert.Error(t, err)
}
