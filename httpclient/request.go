// httpclient/request.go
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/deploymenttheory/go-api-session-client/cookiestore"
	"github.com/deploymenttheory/go-api-session-client/headers"
	"github.com/deploymenttheory/go-api-session-client/response"
	"github.com/deploymenttheory/go-api-session-client/status"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ResponseType selects how a successful body is exposed in Response.Data.
type ResponseType string

const (
	// ResponseTypeJSON decodes JSON bodies into Data and falls back to a string for other content.
	ResponseTypeJSON ResponseType = "json"
	// ResponseTypeText exposes the body as a string.
	ResponseTypeText ResponseType = "text"
	// ResponseTypeRaw leaves Data nil; the bytes are in Response.Body.
	ResponseTypeRaw ResponseType = "raw"
)

// RequestConfig describes a single call.
type RequestConfig struct {
	Method           string
	URL              string
	BaseURL          string // overrides the client base URL when set
	Headers          map[string]string
	Params           map[string]any
	Data             any
	ParamsSerializer ParamsSerializer
	ResponseType     ResponseType
}

// Request sends the call described by config. A non-2xx status yields a *response.APIError and a nil Response.
func (c *Client) Request(ctx context.Context, config RequestConfig) (*Response, error) {
	log := c.Logger

	method := strings.ToUpper(config.Method)
	if method == "" {
		method = http.MethodGet
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = c.config.BaseURL
	}

	serializer := config.ParamsSerializer
	if serializer == nil {
		serializer = SerializeParams
	}

	requestURL, err := buildURL(baseURL, config.URL, serializer(config.Params))
	if err != nil {
		return nil, log.Error("Failed to build request URL", zap.String("url", config.URL), zap.Error(err))
	}

	if c.redirect != nil {
		if target, ok := c.redirect.ResolvePermanentRedirect(method, requestURL); ok {
			requestURL = target
		}
	}

	body, contentType, err := encodeBody(config.Data)
	if err != nil {
		log.Error("Failed to encode request body", zap.String("method", method), zap.String("url", requestURL), zap.Error(err))
		return nil, fmt.Errorf("encoding request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		log.Error("Failed to create HTTP request", zap.String("method", method), zap.String("url", requestURL), zap.Error(err))
		return nil, fmt.Errorf("creating request: %w", err)
	}

	headers.SetAccept(req, DefaultAccept)
	headers.SetUserAgent(req, c.config.UserAgent)
	if contentType != "" {
		headers.SetContentType(req, contentType)
	}
	headers.ApplyHeaders(req, config.Headers)

	requestID := uuid.New().String()
	log.LogRequestStart("http_request", requestID, method, requestURL, headers.Redacted(req.Header, c.config.HideSensitiveData))
	headers.LogHeaders(req, log, c.config.HideSensitiveData)

	startTime := time.Now()
	resp, err := c.executor.Do(req)
	duration := time.Since(startTime)
	if err != nil {
		log.Error("Failed to send request", zap.String("request_id", requestID), zap.String("method", method), zap.String("url", requestURL), zap.Error(err))
		return nil, fmt.Errorf("%s %s: %w", method, requestURL, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("Failed to read response body", zap.String("request_id", requestID), zap.Error(err))
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if resp.Request == nil {
		resp.Request = req
	}

	log.LogRequestEnd("http_request", requestID, method, requestURL, resp.StatusCode, duration)
	headers.CheckDeprecationHeader(resp, log)
	c.logResponseCookies(resp.Header)

	if !status.IsSuccess(resp.StatusCode) {
		resp.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		return nil, response.HandleAPIErrorResponse(resp, log)
	}

	result := &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		Body:       bodyBytes,
		RequestID:  requestID,
		Duration:   duration,
		logger:     log,
	}
	result.Data = decodeData(config.ResponseType, resp.Header.Get("Content-Type"), bodyBytes)
	return result, nil
}

func (c *Client) logResponseCookies(header http.Header) {
	cookies := cookiestore.CookiesFromHeader(header)
	if len(cookies) == 0 {
		return
	}
	if c.config.HideSensitiveData {
		cookies = cookiestore.RedactSensitiveCookies(cookies)
	}
	names := make([]string, 0, len(cookies))
	for _, cookie := range cookies {
		names = append(names, cookie.Name+"="+cookie.Value)
	}
	c.Logger.Debug("Received cookies", zap.Strings("cookies", names))
}

// buildURL joins base and path unless path is absolute, then appends the query.
func buildURL(base, path, query string) (string, error) {
	full := path
	parsed, err := url.Parse(path)
	if err != nil {
		return "", err
	}
	if !parsed.IsAbs() && base != "" {
		full = base
		if path != "" {
			full = strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
		}
	}
	if full == "" {
		return "", fmt.Errorf("no URL and no base URL")
	}

	if query != "" {
		separator := "?"
		if strings.Contains(full, "?") {
			separator = "&"
		}
		full += separator + query
	}

	if _, err := url.Parse(full); err != nil {
		return "", err
	}
	return full, nil
}

// encodeBody returns the request body reader and its default Content-Type.
func encodeBody(data any) (io.Reader, string, error) {
	switch d := data.(type) {
	case nil:
		return nil, "", nil
	case []byte:
		return bytes.NewReader(d), "", nil
	case string:
		return strings.NewReader(d), "text/plain; charset=utf-8", nil
	case url.Values:
		return strings.NewReader(d.Encode()), "application/x-www-form-urlencoded", nil
	case io.Reader:
		return d, "", nil
	default:
		encoded, err := json.Marshal(d)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(encoded), "application/json", nil
	}
}
