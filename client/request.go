package client

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"slices"
	"sync"

	"github.com/adamwoolhether/httpchain/client/dispatch"
	"github.com/adamwoolhether/httpchain/client/errparser"
	"github.com/adamwoolhether/httpchain/client/header"
	"github.com/adamwoolhether/httpchain/client/method"
	"github.com/adamwoolhether/httpchain/client/transport"
)

// Result is the outcome of a [Request]: a value on success, an error otherwise.
type Result[T any] struct {
	Value T
	Err   error
}

// Get returns the value and error of the outcome.
func (r Result[T]) Get() (T, error) {
	return r.Value, r.Err
}

type state int

const (
	idle state = iota
	executing
	completed
)

// Request is a finalized, single-use request. Handlers registered with
// OnSuccess, OnFailure and OnCompletion run on the client's scheduler
// once the outcome is known, each exactly once.
//
// A Request holds no reference to the [Client] that built it.
type Request[T any] struct {
	call   transport.Call
	errs   []error
	decode func([]byte) (T, error)

	network   transport.Transport
	parser    *errparser.Parser
	scheduler dispatch.Scheduler
	inflight  *inflight
	logger    *slog.Logger

	mu           sync.Mutex
	state        state
	task         *transport.Task
	cancelled    bool
	release      func()
	onSuccess    []func(T)
	onFailure    []func(error)
	onCompletion []func(Result[T])
	result       Result[T]
	done         chan struct{}
}

func newRequest[T any](b *RequestBuilder, decode func([]byte) (T, error)) *Request[T] {
	return &Request[T]{
		call:      b.call(),
		errs:      slices.Clone(b.errs),
		decode:    decode,
		network:   b.env.network,
		parser:    b.env.parser,
		scheduler: b.env.scheduler,
		inflight:  b.env.inflight,
		logger:    b.env.logger,
		done:      make(chan struct{}),
	}
}

// OnSuccess registers fn to receive the decoded value.
func (r *Request[T]) OnSuccess(fn func(T)) *Request[T] {
	if fn == nil {
		return r
	}

	r.register(func() { r.onSuccess = append(r.onSuccess, fn) }, func(res Result[T]) {
		if res.Err == nil {
			fn(res.Value)
		}
	})
	return r
}

// OnFailure registers fn to receive the failure.
func (r *Request[T]) OnFailure(fn func(error)) *Request[T] {
	if fn == nil {
		return r
	}

	r.register(func() { r.onFailure = append(r.onFailure, fn) }, func(res Result[T]) {
		if res.Err != nil {
			fn(res.Err)
		}
	})
	return r
}

// OnCompletion registers fn to receive the outcome, whatever it is.
func (r *Request[T]) OnCompletion(fn func(Result[T])) *Request[T] {
	if fn == nil {
		return r
	}

	r.register(func() { r.onCompletion = append(r.onCompletion, fn) }, fn)
	return r
}

// register stores a handler, or schedules it straight away when the outcome
// is already known.
func (r *Request[T]) register(store func(), late func(Result[T])) {
	r.mu.Lock()
	if r.state != completed {
		store()
		r.mu.Unlock()
		return
	}
	res := r.result
	r.mu.Unlock()

	r.perform(func() { late(res) })
}

// Start executes the request. It returns [ErrRequestReused] when called more
// than once; every other failure is delivered to the handlers.
//
// When configuration errors were recorded, the transport is never called and
// they are delivered as the failure: a single error as is, several as a
// [*MultiError]. A request whose Client is closed fails with
// [ErrClientClosed], and one cancelled before Start fails without calling the
// transport.
func (r *Request[T]) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.state != idle {
		r.mu.Unlock()
		return ErrRequestReused
	}
	r.state = executing
	cancelled := r.cancelled
	r.mu.Unlock()

	if r.inflight != nil {
		if !r.inflight.begin() {
			r.deliver(Result[T]{Err: &Error{Err: ErrClientClosed}})
			return nil
		}

		r.mu.Lock()
		r.release = r.inflight.end
		r.mu.Unlock()
	}

	if cancelled {
		r.deliver(Result[T]{Err: &Error{Err: ErrRequestFailed, Cause: context.Canceled}})
		return nil
	}

	if err := aggregate(r.errs); err != nil {
		r.deliver(Result[T]{Err: err})
		return nil
	}

	if r.network == nil {
		r.deliver(Result[T]{Err: &Error{Err: ErrInternal, Cause: errNoTransport}})
		return nil
	}

	task := r.network.MakeRequest(ctx, r.call, r.complete)

	r.mu.Lock()
	r.task = task
	cancelled = r.cancelled
	r.mu.Unlock()

	if cancelled {
		task.Cancel()
	}

	return nil
}

// Wait blocks until the outcome is known and returns it. Handlers run on the
// scheduler and may still be in flight when Wait returns.
func (r *Request[T]) Wait() (T, error) {
	<-r.done

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.result.Get()
}

// Done is closed once the outcome is known.
func (r *Request[T]) Done() <-chan struct{} {
	return r.done
}

// Cancel aborts the transport call. The cancellation is delivered to the
// failure handlers like any other transport error. Cancelling before Start
// makes Start fail the request straight away.
func (r *Request[T]) Cancel() {
	r.mu.Lock()
	r.cancelled = true
	task := r.task
	r.mu.Unlock()

	task.Cancel()
}

// URL returns a copy of the request URL, without the encoded query.
func (r *Request[T]) URL() *url.URL {
	return cloneURL(r.call.URL)
}

// Method returns the finalized method descriptor.
func (r *Request[T]) Method() method.Descriptor {
	return r.call.Method
}

// Header returns a copy of the request header.
func (r *Request[T]) Header() header.Header {
	return r.call.Header.Clone()
}

func (r *Request[T]) complete(res transport.Result) {
	if res.Err != nil {
		r.deliver(Result[T]{Err: r.failure(res.Err)})
		return
	}

	v, err := r.decode(res.Body)
	if err != nil {
		r.deliver(Result[T]{Err: err})
		return
	}

	r.deliver(Result[T]{Value: v})
}

// failure asks the error parser to recognise err and falls back to
// wrapping it in [ErrRequestFailed].
func (r *Request[T]) failure(err error) error {
	resp := errparser.Response{Err: err}

	var statusErr *transport.StatusError
	if errors.As(err, &statusErr) {
		resp.StatusCode = statusErr.StatusCode
		resp.Header = statusErr.Header
		resp.Body = statusErr.Body
	}

	if r.parser != nil {
		if decoded := r.parser.Parse(resp); decoded != nil {
			return decoded
		}
	}

	return &Error{Err: ErrRequestFailed, Cause: err}
}

// deliver records res, releases Wait, and hands the registered handlers to
// the scheduler.
func (r *Request[T]) deliver(res Result[T]) {
	r.mu.Lock()
	if r.state == completed {
		r.mu.Unlock()
		return
	}
	r.state = completed
	r.result = res
	success, failure, completion := r.onSuccess, r.onFailure, r.onCompletion
	r.onSuccess, r.onFailure, r.onCompletion = nil, nil, nil
	release := r.release
	r.release = nil
	r.mu.Unlock()

	if release == nil {
		release = func() {}
	}

	close(r.done)

	if r.logger != nil {
		r.logger.Debug("request completed",
			"method", r.call.Method.Verb(),
			"url", r.call.URL.String(),
			"error", res.Err,
		)
	}

	if len(success)+len(failure)+len(completion) == 0 {
		release()
		return
	}

	r.perform(func() {
		defer release()

		if res.Err == nil {
			for _, fn := range success {
				fn(res.Value)
			}
		} else {
			for _, fn := range failure {
				fn(res.Err)
			}
		}

		for _, fn := range completion {
			fn(res)
		}
	})
}

// submitter is a Scheduler that reports refused work, like [dispatch.Loop].
type submitter interface {
	Submit(target dispatch.Target, mode dispatch.Mode, action func()) error
}

// perform hands action to the scheduler. Work a closed loop refuses runs on
// its own goroutine instead, so handlers still see the outcome.
func (r *Request[T]) perform(action func()) {
	switch s := r.scheduler.(type) {
	case nil:
		go action()
	case submitter:
		if err := s.Submit(dispatch.Main, dispatch.Async, action); err != nil {
			if r.logger != nil {
				r.logger.Debug("delivering outside the scheduler", "error", err)
			}
			go action()
		}
	default:
		s.Perform(dispatch.Main, dispatch.Async, action)
	}
}
