package client

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

var (
	// ErrUnauthenticated is returned for protected calls made without a token,
	// and wrapped by *HTTPError when the API rejects the token.
	ErrUnauthenticated = errors.New("client: not authenticated")
	// ErrInvalidCredentials is returned by Login when the API answers 401.
	ErrInvalidCredentials = errors.New("client: invalid email or password")
	// ErrEmailTaken is returned by Register when the API answers 409.
	ErrEmailTaken = errors.New("client: email already registered")
)

// ValidationError carries the per-field messages of a 400 response.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed: " + e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// UploadError reports a failed image upload.
type UploadError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *UploadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("image upload failed: %v", e.Err)
	}
	return fmt.Sprintf("image upload failed (%d): %s", e.StatusCode, e.Message)
}

func (e *UploadError) Unwrap() error { return e.Err }

// StorageError reports a server-side failure (5xx).
type StorageError struct {
	StatusCode int
	Message    string
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}

// NetworkError wraps a transport failure; no HTTP response was received.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError is any other non-2xx response.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Message)
}

func (e *HTTPError) Unwrap() error {
	if e.StatusCode == 401 {
		return ErrUnauthenticated
	}
	return nil
}

// responseError converts a resty outcome into one of the typed errors above.
// It returns nil for 2xx responses.
func responseError(op string, resp *resty.Response, err error) error {
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	if !resp.IsError() {
		return nil
	}

	body := resp.Body()
	status := resp.StatusCode()
	message := gjson.GetBytes(body, "message").String()
	if message == "" {
		message = strings.TrimSpace(string(body))
	}

	if errs := gjson.GetBytes(body, "errors"); status == 400 && errs.IsObject() {
		fields := map[string]string{}
		errs.ForEach(func(key, value gjson.Result) bool {
			fields[key.String()] = value.String()
			return true
		})
		return &ValidationError{Message: message, Fields: fields}
	}
	if status >= 500 {
		return &StorageError{StatusCode: status, Message: message}
	}
	return &HTTPError{StatusCode: status, Message: message}
}
