// response/success.go
/* Responsible for handling successful API responses. It reads the response body, logs the raw response details,
and unmarshals the response based on the content type (JSON or XML). */
package response

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/deploymenttheory/go-api-session-client/logger"
	"go.uber.org/zap"
)

// ErrUnexpectedMIMEType is returned when a success body cannot be decoded into the requested output.
var ErrUnexpectedMIMEType = errors.New("unexpected MIME type")

// HandleAPISuccessResponse reads the response body, logs the raw response details, and unmarshals the response based on the content type.
// A nil out or an empty body is a no-op.
func HandleAPISuccessResponse(resp *http.Response, out any, log logger.Logger) error {
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return log.Error("Failed to read response body", zap.Error(err))
	}

	log.Debug("Raw HTTP Response", zap.Int("Status Code", resp.StatusCode), zap.Int("Body Length", len(bodyBytes)))

	if out == nil || resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(bodyBytes)) == 0 {
		return nil
	}

	bodyReader := bytes.NewReader(bodyBytes)
	contentType := resp.Header.Get("Content-Type")
	contentDisposition := resp.Header.Get("Content-Disposition")

	mimeType, _ := parseHeader(contentType)

	switch {
	case isJSONMediaType(mimeType):
		return handlerUnmarshalJSON(bodyReader, out, log, contentType)
	case mimeType == "application/xml", mimeType == "text/xml":
		return handlerUnmarshalXML(bodyReader, out, log, contentType)
	case isBinaryData(contentType, contentDisposition):
		return handleBinaryData(bodyReader, log, out, contentDisposition)
	case strings.HasPrefix(mimeType, "text/"):
		return handleText(bodyBytes, out, contentType)
	}

	err = fmt.Errorf("%w: %s", ErrUnexpectedMIMEType, contentType)
	log.Error("Unmarshal error", zap.String("content type", contentType), zap.Error(err))
	return err
}

// handlerUnmarshalJSON unmarshals JSON content from an io.Reader into the provided output structure.
func handlerUnmarshalJSON(reader io.Reader, out any, log logger.Logger, mimeType string) error {
	if err := json.NewDecoder(reader).Decode(out); err != nil {
		return log.Error("JSON Unmarshal error", zap.Error(err))
	}
	log.Debug("Successfully unmarshalled JSON response", zap.String("content type", mimeType))
	return nil
}

// handlerUnmarshalXML unmarshals XML content from an io.Reader into the provided output structure.
func handlerUnmarshalXML(reader io.Reader, out any, log logger.Logger, mimeType string) error {
	if err := xml.NewDecoder(reader).Decode(out); err != nil {
		return log.Error("XML Unmarshal error", zap.Error(err))
	}
	log.Debug("Successfully unmarshalled XML response", zap.String("content type", mimeType))
	return nil
}

// handleText stores a text body into *string or *[]byte.
func handleText(body []byte, out any, contentType string) error {
	switch out := out.(type) {
	case *string:
		*out = string(body)
	case *[]byte:
		*out = body
	default:
		return fmt.Errorf("%w: %s cannot be decoded into %T", ErrUnexpectedMIMEType, contentType, out)
	}
	return nil
}

// isBinaryData checks if the MIME type or Content-Disposition indicates binary data.
func isBinaryData(contentType, contentDisposition string) bool {
	dispositionType, _ := ParseContentDisposition(contentDisposition)
	return strings.Contains(contentType, "application/octet-stream") || dispositionType == "attachment"
}

// handleBinaryData reads binary data from an io.Reader and stores it in *[]byte or streams it to an io.Writer.
func handleBinaryData(reader io.Reader, log logger.Logger, out any, contentDisposition string) error {
	switch out := out.(type) {
	case *[]byte:
		data, err := io.ReadAll(reader)
		if err != nil {
			return log.Error("Failed to read binary data", zap.Error(err))
		}
		*out = data

	case io.Writer:
		if _, err := io.Copy(out, reader); err != nil {
			return log.Error("Failed to stream binary data to io.Writer", zap.Error(err))
		}

	default:
		return errors.New("output parameter is not suitable for binary data (*[]byte or io.Writer)")
	}

	if contentDisposition != "" {
		_, params := ParseContentDisposition(contentDisposition)
		if filename, ok := params["filename"]; ok {
			log.Debug("Extracted filename from Content-Disposition", zap.String("filename", filename))
		}
	}

	return nil
}
