package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// RequestFailedError is returned for any non-2xx response. Client errors and
// server errors are reported the same way.
type RequestFailedError struct {
	Method     string
	Path       string
	StatusCode int
	StatusText string
}

func (e *RequestFailedError) Error() string {
	return fmt.Sprintf("request failed: %s %s: %d %s", e.Method, e.Path, e.StatusCode, e.StatusText)
}

func newRequestFailed(method, path string, resp *http.Response) *RequestFailedError {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return &RequestFailedError{
		Method:     method,
		Path:       path,
		StatusCode: resp.StatusCode,
		StatusText: text,
	}
}

func IsRequestFailed(err error) bool {
	var rf *RequestFailedError
	return errors.As(err, &rf)
}

// UserMessage is the text shown to an operator when fetching resource fails.
// Transport, status, and decode failures all read the same.
func UserMessage(resource string, err error) string {
	if err == nil {
		return ""
	}
	return "Failed to fetch " + resource
}
