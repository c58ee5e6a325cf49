// httpclient/response.go
package httpclient

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/deploymenttheory/go-api-session-client/logger"
	"github.com/deploymenttheory/go-api-session-client/response"
)

// Response is a successful (2xx) response with its body fully read.
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
	// Data holds the body shaped by the request's ResponseType.
	Data      any
	RequestID string
	Duration  time.Duration

	logger logger.Logger
}

// Decode unmarshals the body into out according to the Content-Type. JSON, XML, text and
// binary bodies are supported; an empty body leaves out untouched.
func (r *Response) Decode(out any) error {
	log := r.logger
	if log == nil {
		log = logger.NewNopLogger()
	}
	resp := &http.Response{
		StatusCode: r.StatusCode,
		Header:     r.Header,
		Body:       io.NopCloser(bytes.NewReader(r.Body)),
	}
	return response.HandleAPISuccessResponse(resp, out, log)
}

func decodeData(responseType ResponseType, contentType string, body []byte) any {
	switch responseType {
	case ResponseTypeRaw:
		return nil
	case ResponseTypeText:
		return string(body)
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	mimeType, _ := response.ParseContentTypeHeader(contentType)
	if mimeType == "application/json" || strings.HasSuffix(mimeType, "+json") {
		var data any
		if err := json.Unmarshal(body, &data); err == nil {
			return data
		}
	}
	return string(body)
}
