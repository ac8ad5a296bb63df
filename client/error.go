package client

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidParameters marks a query, body or multipart value that could not be validated or encoded.
	ErrInvalidParameters = errors.New("invalid parameters")
	// ErrInvalidResponse marks a successful response whose body could not be decoded.
	ErrInvalidResponse = errors.New("invalid response")
	// ErrInternal marks a request that could not be executed at all.
	ErrInternal = errors.New("internal error")
	// ErrRequestFailed marks a transport failure no registered error decoder recognised.
	ErrRequestFailed = errors.New("request failed")
	// ErrRequestReused is returned by Start when the request already ran.
	ErrRequestReused = errors.New("request already started")
	// ErrClientClosed marks a request started after its Client was closed.
	ErrClientClosed = errors.New("client closed")
)

var (
	errEmptyBody   = errors.New("empty response body")
	errNoTransport = errors.New("no transport configured")
	errNoDecoder   = errors.New("no decoder configured")
	errNullBody    = errors.New("null response body")
)

// Error pairs one of the package sentinels with the error that caused it.
// Both are reachable through [errors.Is] and [errors.As].
type Error struct {
	Err   error
	Cause error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Err.Error()
	}

	return fmt.Sprintf("%v: %v", e.Err, e.Cause)
}

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}

	return []error{e.Err, e.Cause}
}

// MultiError is reported when more than one configuration error was
// collected by a [RequestBuilder].
type MultiError struct {
	Errs []error
}

func (e *MultiError) Error() string {
	msgs := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		msgs[i] = err.Error()
	}

	return fmt.Sprintf("%d errors: %s", len(e.Errs), strings.Join(msgs, "; "))
}

func (e *MultiError) Unwrap() []error {
	return e.Errs
}

// aggregate folds the collected configuration errors into the single
// error delivered to the caller. It returns nil when errs is empty.
func aggregate(errs []error) error {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return &MultiError{Errs: append([]error(nil), errs...)}
	}
}
