// redirecthandler/redirecthandler.go
package redirecthandler

import (
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/deploymenttheory/go-api-session-client/logger"
	"github.com/deploymenttheory/go-api-session-client/status"
	"go.uber.org/zap"
)

// RedirectHandler contains configurations for handling HTTP redirects.
type RedirectHandler struct {
	Logger             logger.Logger
	MaxRedirects       int               // Maximum allowed redirects to prevent infinite loops.
	SensitiveHeaders   []string          // Headers to be removed on cross-host redirects.
	PermanentRedirects map[string]string // Cache for permanent redirects
	PermRedirectsMutex sync.RWMutex
}

// NewRedirectHandler creates a new instance of RedirectHandler.
func NewRedirectHandler(log logger.Logger, maxRedirects int) *RedirectHandler {
	return &RedirectHandler{
		Logger:             log,
		MaxRedirects:       maxRedirects,
		SensitiveHeaders:   []string{"Authorization", "Cookie"},
		PermanentRedirects: make(map[string]string),
	}
}

// WithRedirectHandling applies the redirect handling policy to an http.Client.
func (r *RedirectHandler) WithRedirectHandling(client *http.Client) {
	client.CheckRedirect = r.checkRedirect
}

// checkRedirect implements the redirect handling logic. req is the next request to send and
// via holds the requests already made, oldest first.
func (r *RedirectHandler) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) == 0 {
		return nil
	}
	original := via[0]

	// A redirected POST or PATCH would silently drop its payload.
	if original.Method == http.MethodPost || original.Method == http.MethodPatch {
		r.Logger.Warn("Redirect attempted on non-idempotent method, not following", zap.String("method", original.Method))
		return http.ErrUseLastResponse
	}

	if len(via) >= r.MaxRedirects {
		r.Logger.Warn("Maximum redirects reached", zap.Int("maxRedirects", r.MaxRedirects))
		return &MaxRedirectsError{MaxRedirects: r.MaxRedirects}
	}

	if hasLoop(req.URL, via) {
		r.Logger.Error("Redirect loop detected", zap.String("url", req.URL.String()))
		return &RedirectLoopError{URL: req.URL.String()}
	}

	if req.URL.Host != original.URL.Host {
		r.secureRequest(req)
	}

	previous := via[len(via)-1]
	if req.Response != nil && status.IsPermanentRedirect(req.Response.StatusCode) {
		r.cachePermanentRedirect(previous.URL.String(), req.URL.String())
	}

	r.Logger.Info("Redirecting request",
		zap.String("originalURL", previous.URL.String()),
		zap.String("newURL", req.URL.String()),
		zap.Int("redirectCount", len(via)),
	)
	return nil
}

// secureRequest removes sensitive headers from a request bound for a different host.
func (r *RedirectHandler) secureRequest(req *http.Request) {
	for _, header := range r.SensitiveHeaders {
		if req.Header.Get(header) != "" {
			req.Header.Del(header)
			r.Logger.Debug("Removed sensitive header on cross-host redirect", zap.String("header", header))
		}
	}
}

// ResolvePermanentRedirect returns the cached permanent redirect target for GET and HEAD requests.
func (r *RedirectHandler) ResolvePermanentRedirect(method string, rawURL string) (string, bool) {
	if method != http.MethodGet && method != http.MethodHead {
		return "", false
	}
	target, ok := r.checkPermanentRedirect(rawURL)
	if ok {
		r.Logger.Debug("Using cached permanent redirect", zap.String("originalURL", rawURL), zap.String("redirectURL", target))
	}
	return target, ok
}

// RedirectLoopError represents an error when a redirect loop is detected.
type RedirectLoopError struct {
	URL string
}

func (e *RedirectLoopError) Error() string {
	return fmt.Sprintf("redirect loop detected at %s", e.URL)
}

// MaxRedirectsError represents an error when the maximum number of redirects is reached.
type MaxRedirectsError struct {
	MaxRedirects int
}

func (e *MaxRedirectsError) Error() string {
	return fmt.Sprintf("maximum redirects reached: %d", e.MaxRedirects)
}

// cachePermanentRedirect caches the permanent redirect location.
func (r *RedirectHandler) cachePermanentRedirect(originalURL, redirectURL string) {
	r.PermRedirectsMutex.Lock()
	defer r.PermRedirectsMutex.Unlock()

	r.PermanentRedirects[originalURL] = redirectURL
}

// checkPermanentRedirect checks if there's a cached redirect for the given URL.
func (r *RedirectHandler) checkPermanentRedirect(originalURL string) (string, bool) {
	r.PermRedirectsMutex.RLock()
	defer r.PermRedirectsMutex.RUnlock()

	target, exists := r.PermanentRedirects[originalURL]
	return target, exists
}

// hasLoop reports whether next was already visited.
func hasLoop(next *url.URL, via []*http.Request) bool {
	for _, visited := range via {
		if visited.URL.String() == next.String() {
			return true
		}
	}
	return false
}

// SetupRedirectHandler configures the HTTP client for redirect handling based on the client configuration.
// With followRedirects off the client returns the 3xx response itself.
func SetupRedirectHandler(client *http.Client, followRedirects bool, maxRedirects int, log logger.Logger) (*RedirectHandler, error) {
	if !followRedirects {
		client.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
		return nil, nil
	}

	if maxRedirects < 1 {
		log.Error("Invalid maxRedirects value", zap.Int("maxRedirects", maxRedirects))
		return nil, fmt.Errorf("invalid maxRedirects value: %d", maxRedirects)
	}

	redirectHandler := NewRedirectHandler(log, maxRedirects)
	redirectHandler.WithRedirectHandling(client)
	log.Debug("Redirect handling enabled", zap.Int("MaxRedirects", maxRedirects))
	return redirectHandler, nil
}
