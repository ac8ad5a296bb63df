// Package transport performs the network half of a request: it turns a
// [Call] into an HTTP exchange and reports the raw outcome.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync/atomic"

	"github.com/adamwoolhether/httpchain/client/header"
	"github.com/adamwoolhether/httpchain/client/method"
)

// maxErrBodySize caps the amount of response body read when
// building an error for an unexpected status code. This prevents
// unbounded memory usage when a large response arrives with a
// wrong status.
const maxErrBodySize = 4 << 10 // 4KB

var (
	// ErrUnexpectedStatusCode is the sentinel error wrapped by [StatusError].
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	// ErrAuthFailure is joined with [ErrUnexpectedStatusCode] when the server
	// responds with 401 Unauthorized or 403 Forbidden.
	ErrAuthFailure = errors.New("auth failure")
	// ErrMissingURL is returned when a Call carries no URL.
	ErrMissingURL = errors.New("request url is missing")
)

// Call is everything needed to issue one request.
type Call struct {
	URL    *url.URL
	Method method.Descriptor
	Header header.Header

	// Modify, when set, is applied to the fully built request right before it is sent.
	Modify func(*http.Request)
}

// Result is the raw outcome of a Call. A nil Err means a 2xx response.
type Result struct {
	Body []byte
	Err  error
}

// Transport issues calls. completion must be invoked exactly once per call,
// including when the returned Task is cancelled.
type Transport interface {
	MakeRequest(ctx context.Context, call Call, completion func(Result)) *Task
}

// Task is the handle of an in-flight call.
type Task struct {
	cancel    context.CancelFunc
	cancelled atomic.Bool
}

// NewTask wraps cancel. A nil cancel is allowed.
func NewTask(cancel context.CancelFunc) *Task {
	return &Task{cancel: cancel}
}

// Cancel aborts the call. The completion still runs, carrying the cancellation error.
func (t *Task) Cancel() {
	if t == nil {
		return
	}

	t.cancelled.Store(true)
	if t.cancel != nil {
		t.cancel()
	}
}

// Cancelled reports whether Cancel was called.
func (t *Task) Cancelled() bool {
	return t != nil && t.cancelled.Load()
}

// StatusError is returned when the response status is outside 200-299.
type StatusError struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Err        error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%v: %d, body: %s", e.Err, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// IsSuccessful reports whether code is a 2xx status.
func IsSuccessful(code int) bool {
	return code >= 200 && code <= 299
}

func statusError(resp *http.Response, body []byte) *StatusError {
	err := ErrUnexpectedStatusCode
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		err = fmt.Errorf("%w: %w", ErrAuthFailure, ErrUnexpectedStatusCode)
	}

	return &StatusError{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       body,
		Err:        err,
	}
}
