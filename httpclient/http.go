// httpclient/http.go
package httpclient

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"sync"
)

// Executor sends a prepared request. ProdExecutor wraps *http.Client; MockExecutor serves canned responses.
type Executor interface {
	Do(req *http.Request) (*http.Response, error)
}

// Production

type ProdExecutor struct {
	*http.Client
}

// Mocking

// MockExecutor returns LockedResponseCode with ResponseBody for every request and records what it received.
type MockExecutor struct {
	LockedResponseCode int
	ResponseBody       string
	ResponseHeaders    http.Header

	mu       sync.Mutex
	requests []*http.Request
	bodies   []string
}

func (m *MockExecutor) Do(req *http.Request) (*http.Response, error) {
	statusString := http.StatusText(m.LockedResponseCode)
	if statusString == "" {
		return nil, fmt.Errorf("unknown response code requested: %d", m.LockedResponseCode)
	}

	var body string
	if req != nil && req.Body != nil {
		data, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		body = string(data)
	}

	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.bodies = append(m.bodies, body)
	m.mu.Unlock()

	header := make(http.Header)
	for name, values := range m.ResponseHeaders {
		header[name] = append([]string(nil), values...)
	}

	return &http.Response{
		StatusCode: m.LockedResponseCode,
		Status:     fmt.Sprintf("%d %s", m.LockedResponseCode, statusString),
		Body:       io.NopCloser(bytes.NewBufferString(m.ResponseBody)),
		Header:     header,
		Request:    req,
	}, nil
}

// Requests returns the requests received so far.
func (m *MockExecutor) Requests() []*http.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*http.Request(nil), m.requests...)
}

// RequestBodies returns the bodies of the requests received so far.
func (m *MockExecutor) RequestBodies() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.bodies...)
}
