// headers/headers.go
package headers

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/deploymenttheory/go-api-session-client/headers/redact"
	"github.com/deploymenttheory/go-api-session-client/logger"
	"go.uber.org/zap"
)

// BearerScheme is the authorization scheme prefix. The token endpoint issues
// lowercase "bearer" tokens and servers accept the scheme case-insensitively.
const BearerScheme = "bearer"

// AuthorizationValue formats a bearer Authorization header value.
func AuthorizationValue(token string) string {
	return BearerScheme + " " + token
}

// SetAuthorization sets the Authorization header for the request.
func SetAuthorization(req *http.Request, token string) {
	req.Header.Set("Authorization", AuthorizationValue(token))
}

// SetContentType sets the Content-Type header for the request.
func SetContentType(req *http.Request, contentType string) {
	req.Header.Set("Content-Type", contentType)
}

// SetAccept sets the Accept header for the request.
func SetAccept(req *http.Request, acceptHeader string) {
	req.Header.Set("Accept", acceptHeader)
}

// SetUserAgent sets the User-Agent header for the request.
func SetUserAgent(req *http.Request, userAgent string) {
	req.Header.Set("User-Agent", userAgent)
}

// ApplyHeaders copies every non-empty header in values onto the request.
func ApplyHeaders(req *http.Request, values map[string]string) {
	for name, value := range values {
		if value != "" {
			req.Header.Set(name, value)
		}
	}
}

// Merge returns a new map holding the request headers overlaid with the
// defaults. Defaults win on conflicting names. Names are canonicalized.
func Merge(requestHeaders, defaults map[string]string) map[string]string {
	merged := make(map[string]string, len(requestHeaders)+len(defaults))
	for name, value := range requestHeaders {
		merged[http.CanonicalHeaderKey(name)] = value
	}
	for name, value := range defaults {
		merged[http.CanonicalHeaderKey(name)] = value
	}
	return merged
}

// Redacted returns a copy of h with sensitive header values replaced when hideSensitiveData is set.
func Redacted(h http.Header, hideSensitiveData bool) map[string][]string {
	out := make(map[string][]string, len(h))
	for name, values := range h {
		redacted := make([]string, len(values))
		for i, value := range values {
			redacted[i] = redact.RedactSensitiveHeaderData(hideSensitiveData, name, value)
		}
		out[name] = redacted
	}
	return out
}

// LogHeaders prints all the current headers in the http.Request using the logger.
func LogHeaders(req *http.Request, log logger.Logger, hideSensitiveData bool) {
	if log.GetLogLevel() <= logger.LogLevelDebug {
		log.Debug("HTTP Request Headers", zap.String("Headers", HeadersToString(Redacted(req.Header, hideSensitiveData))))
	}
}

// HeadersToString converts headers to a string for logging,
// with each header on a new line, sorted by name.
func HeadersToString(headers map[string][]string) string {
	var headerStrings []string
	for name, values := range headers {
		headerStrings = append(headerStrings, fmt.Sprintf("%s: %s", name, strings.Join(values, ", ")))
	}
	sort.Strings(headerStrings)
	return strings.Join(headerStrings, "\n")
}

// CheckDeprecationHeader checks the response headers for the Deprecation header and logs a warning if present.
func CheckDeprecationHeader(resp *http.Response, log logger.Logger) {
	deprecationHeader := resp.Header.Get("Deprecation")
	if deprecationHeader != "" {
		endpoint := ""
		if resp.Request != nil {
			endpoint = resp.Request.URL.String()
		}
		log.Warn("API endpoint is deprecated",
			zap.String("Date", deprecationHeader),
			zap.String("Endpoint", endpoint),
		)
	}
}
