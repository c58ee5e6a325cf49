// proxy_test.go
package proxy

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/deploymenttheory/go-api-session-client/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigure_NoURLLeavesTransport(t *testing.T) {
	client := &http.Client{}
	require.NoError(t, Configure(client, Config{}, logger.NewNopLogger()))
	assert.Nil(t, client.Transport)
}

func TestConfigure_InvalidURL(t *testing.T) {
	client := &http.Client{}
	assert.Error(t, Configure(client, Config{URL: "not a proxy"}, logger.NewNopLogger()))
	assert.Error(t, Configure(client, Config{URL: "://bad"}, logger.NewNopLogger()))
}

func TestConfigure_RoutesThroughProxyWithCredentials(t *testing.T) {
	var gotURL, gotAuth string
	proxyServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.String()
		gotAuth = r.Header.Get("Proxy-Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer proxyServer.Close()

	client := &http.Client{}
	require.NoError(t, Configure(client, Config{URL: proxyServer.URL, Username: "user", Password: "pass"}, logger.NewNopLogger()))

	resp, err := client.Get("http://api.example.invalid/items")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "http://api.example.invalid/items", gotURL)
	assert.Equal(t, "Basic "+base64.StdEncoding.EncodeToString([]byte("user:pass")), gotAuth)
}
