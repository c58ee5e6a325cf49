// response/error.go
// Package response decodes successful API responses and turns failed ones into APIError values.
package response

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/deploymenttheory/go-api-session-client/logger"
	"github.com/deploymenttheory/go-api-session-client/status"
	"golang.org/x/net/html"
)

// APIError represents an api error response.
type APIError struct {
	StatusCode  int      `json:"status_code"` // HTTP status code
	Method      string   `json:"method"`      // HTTP method used for the request
	URL         string   `json:"url"`         // The URL of the HTTP request
	Errors      []Errors `json:"errors,omitempty"`
	Message     string   `json:"message"`           // Summary of the error
	Details     []string `json:"details,omitempty"` // Detailed error messages, if any
	RawResponse string   `json:"raw_response"`      // Raw response body for debugging
}

// Errors represents individual error details within an API error response.
type Errors struct {
	Code        string  `json:"code,omitempty"`
	Field       string  `json:"field,omitempty"`
	Description string  `json:"description,omitempty"`
	ID          *string `json:"id,omitempty"`
}

// Error returns a string representation of the APIError, making it compatible with the error interface.
func (e *APIError) Error() string {
	message := e.Message
	if message == "" {
		message = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("API Error: StatusCode=%d, Method=%s, URL=%s, Message=%s", e.StatusCode, e.Method, e.URL, message)
}

// StatusCode returns the HTTP status carried by err, or 0 when err does not wrap an APIError.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsStatus reports whether err wraps an APIError with the given status code.
func IsStatus(err error, statusCode int) bool {
	return StatusCode(err) == statusCode
}

// HandleAPIErrorResponse handles the HTTP error response from an API and logs the error.
func HandleAPIErrorResponse(resp *http.Response, log logger.Logger) *APIError {
	apiError := &APIError{
		StatusCode: resp.StatusCode,
		Message:    "API Error Response",
	}
	if resp.Request != nil {
		apiError.Method = resp.Request.Method
		apiError.URL = resp.Request.URL.String()
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		apiError.RawResponse = "Failed to read response body"
		log.LogError("api_error_response", apiError.Method, apiError.URL, apiError.StatusCode, status.TranslateStatusCode(resp), err, apiError.RawResponse)
		return apiError
	}

	mimeType, _ := parseHeader(resp.Header.Get("Content-Type"))
	switch {
	case len(bytes.TrimSpace(bodyBytes)) == 0:
		apiError.Message = http.StatusText(resp.StatusCode)
	case isJSONMediaType(mimeType):
		parseJSONResponse(bodyBytes, apiError)
	case mimeType == "application/xml", mimeType == "text/xml":
		parseXMLResponse(bodyBytes, apiError)
	case mimeType == "text/html":
		parseHTMLResponse(bodyBytes, apiError)
	case mimeType == "text/plain":
		parseTextResponse(bodyBytes, apiError)
	default:
		apiError.RawResponse = string(bodyBytes)
		apiError.Message = "Unknown content type error"
	}

	log.LogError("api_error_response", apiError.Method, apiError.URL, apiError.StatusCode, status.TranslateStatusCode(resp), apiError, apiError.RawResponse)
	return apiError
}

// parseJSONResponse attempts to parse the JSON error response and update the APIError structure.
// Bodies shaped as {"error": "..."} or {"error_description": "..."} are also understood.
func parseJSONResponse(bodyBytes []byte, apiError *APIError) {
	apiError.RawResponse = string(bodyBytes)

	var body struct {
		Message          string   `json:"message"`
		Errors           []Errors `json:"errors"`
		Details          []string `json:"details"`
		Error            any      `json:"error"`
		ErrorDescription string   `json:"error_description"`
	}
	if err := json.Unmarshal(bodyBytes, &body); err != nil {
		apiError.Message = "Failed to parse JSON error response"
		return
	}

	apiError.Errors = body.Errors
	apiError.Details = body.Details
	switch {
	case body.Message != "":
		apiError.Message = body.Message
	case body.ErrorDescription != "":
		apiError.Message = body.ErrorDescription
	default:
		if s, ok := body.Error.(string); ok && s != "" {
			apiError.Message = s
		} else {
			apiError.Message = "An unknown error occurred"
		}
	}
}

// parseXMLResponse dynamically parses XML error responses and accumulates potential error messages.
func parseXMLResponse(bodyBytes []byte, apiError *APIError) {
	apiError.RawResponse = string(bodyBytes)

	doc, err := xmlquery.Parse(bytes.NewReader(bodyBytes))
	if err != nil {
		return
	}

	var messages []string
	var traverse func(*xmlquery.Node)
	traverse = func(n *xmlquery.Node) {
		if n.Type == xmlquery.TextNode && strings.TrimSpace(n.Data) != "" {
			messages = append(messages, strings.TrimSpace(n.Data))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}

	traverse(doc)

	if len(messages) > 0 {
		apiError.Message = strings.Join(messages, "; ")
	} else {
		apiError.Message = "Failed to extract error details from XML response"
	}
}

// parseTextResponse updates the APIError structure based on a plain text error response.
func parseTextResponse(bodyBytes []byte, apiError *APIError) {
	bodyText := string(bodyBytes)
	apiError.RawResponse = bodyText
	apiError.Message = strings.TrimSpace(bodyText)
}

// parseHTMLResponse extracts meaningful information from an HTML error response,
// concatenating all text within <p> tags and links found within them.
func parseHTMLResponse(bodyBytes []byte, apiError *APIError) {
	apiError.RawResponse = string(bodyBytes)

	doc, err := html.Parse(bytes.NewReader(bodyBytes))
	if err != nil {
		return
	}

	var messages []string
	var parse func(*html.Node)
	parse = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "p" {
			var pContent strings.Builder
			var traverseChildren func(*html.Node)
			traverseChildren = func(c *html.Node) {
				if c.Type == html.TextNode {
					pContent.WriteString(strings.TrimSpace(c.Data) + " ")
				} else if c.Type == html.ElementNode && c.Data == "a" {
					for _, attr := range c.Attr {
						if attr.Key == "href" {
							pContent.WriteString("[Link: " + attr.Val + "] ")
							break
						}
					}
				}
				for child := c.FirstChild; child != nil; child = child.NextSibling {
					traverseChildren(child)
				}
			}
			for child := n.FirstChild; child != nil; child = child.NextSibling {
				traverseChildren(child)
			}
			if finalContent := strings.TrimSpace(pContent.String()); finalContent != "" {
				messages = append(messages, finalContent)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}

	parse(doc)

	if len(messages) > 0 {
		apiError.Message = strings.Join(messages, "; ")
	} else {
		apiError.Message = "HTML Error: See 'Raw' field for details."
	}
}
