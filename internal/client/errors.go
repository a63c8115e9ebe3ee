package client

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCredentials is returned by SignIn before any request is made.
	ErrEmptyCredentials = errors.New("用户名或密码不能为空。")
	// ErrInvalidEndpoint is returned for endpoint URLs that cannot be resolved.
	ErrInvalidEndpoint = errors.New("invalid endpoint url")
)

// TransportError is an unrecoverable request failure: a network error, a
// non-2xx status or a body that is not the expected JSON.
type TransportError struct {
	Method string
	URL    string
	Status int    // 0 when no response was received
	Body   string // raw response body
	Err    error
}

func (e *TransportError) Error() string {
	switch {
	case e.Err != nil && e.Status != 0:
		return fmt.Sprintf("%s %s: status %d: %v", e.Method, e.URL, e.Status, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
	default:
		return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.Status)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ResponseBody returns the raw body of the failed response.
func (e *TransportError) ResponseBody() string {
	return e.Body
}

// RejectedError is a well-formed reply with success set to false.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	return "server rejected request: " + e.Message
}
