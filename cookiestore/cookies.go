// cookiestore/cookies.go
package cookiestore

import (
	"net/http"
	"strings"

	"github.com/deploymenttheory/go-api-session-client/headers/redact"
)

// RedactSensitiveCookies returns copies of the cookies with token values replaced.
func RedactSensitiveCookies(cookies []*http.Cookie) []*http.Cookie {
	redacted := make([]*http.Cookie, 0, len(cookies))
	for _, cookie := range cookies {
		c := *cookie
		if redact.IsSensitiveKey(c.Name) {
			c.Value = redact.RedactedValue
		}
		redacted = append(redacted, &c)
	}
	return redacted
}

// CookiesFromHeader converts the Set-Cookie headers of a response to []*http.Cookie.
func CookiesFromHeader(header http.Header) []*http.Cookie {
	cookies := []*http.Cookie{}
	for _, cookieHeader := range header["Set-Cookie"] {
		if cookie := ParseCookieHeader(cookieHeader); cookie != nil {
			cookies = append(cookies, cookie)
		}
	}
	return cookies
}

// ParseCookieHeader parses the name and value of a single Set-Cookie header.
func ParseCookieHeader(header string) *http.Cookie {
	headerParts := strings.Split(header, ";")
	cookieParts := strings.SplitN(headerParts[0], "=", 2)
	if len(cookieParts) == 2 && strings.TrimSpace(cookieParts[0]) != "" {
		return &http.Cookie{Name: strings.TrimSpace(cookieParts[0]), Value: strings.TrimSpace(cookieParts[1])}
	}
	return nil
}
