package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/httpchain/client/encoding"
)

const tracerName = "github.com/adamwoolhether/httpchain/client/transport"

// HTTP is the default [Transport], backed by an [http.Client].
// It sets a default *http.Client and *http.Transport, which
// can be customized via optional funcs.
type HTTP struct {
	c          *http.Client
	logger     *slog.Logger
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
}

// NewHTTP builds an HTTP transport. The round tripper chain, from the
// outside in, is throttle, metrics, then the base transport.
func NewHTTP(optFns ...Option) (*HTTP, error) {
	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying transport option: %w", err)
		}
	}

	t := &HTTP{
		c:      &http.Client{},
		logger: slog.Default(),
	}

	if opts.client != nil {
		c := *opts.client
		t.c = &c
	}

	if opts.logger != nil {
		t.logger = opts.logger
	}

	if opts.timeout != nil {
		t.c.Timeout = *opts.timeout
	}

	if opts.noFollowRedirects {
		t.c.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	var rt http.RoundTripper
	switch {
	case opts.rt != nil:
		rt = opts.rt
	case t.c.Transport != nil:
		rt = t.c.Transport
	default:
		rt = http.DefaultTransport
	}
	if opts.registerer != nil {
		instrumented, err := instrument(opts.registerer, rt)
		if err != nil {
			return nil, fmt.Errorf("configuring metrics: %w", err)
		}
		rt = instrumented
	}
	if opts.throttle != nil {
		throttled, err := newThrottle(opts.throttle.rps, opts.throttle.burst, func() *slog.Logger { return t.logger }, rt)
		if err != nil {
			return nil, fmt.Errorf("configuring throttle: %w", err)
		}
		rt = throttled
	}
	t.c.Transport = rt

	tp := opts.tracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	t.tracer = tp.Tracer(tracerName)

	t.propagator = opts.propagator
	if t.propagator == nil {
		t.propagator = otel.GetTextMapPropagator()
	}

	return t, nil
}

// MakeRequest issues call on its own goroutine and hands the outcome to
// completion. Cancelling the returned Task aborts the exchange.
func (t *HTTP) MakeRequest(ctx context.Context, call Call, completion func(Result)) *Task {
	ctx, cancel := context.WithCancel(ctx)
	task := NewTask(cancel)

	go func() {
		defer cancel()
		completion(t.do(ctx, call))
	}()

	return task
}

func (t *HTTP) do(ctx context.Context, call Call) Result {
	req, err := t.request(ctx, call)
	if err != nil {
		return Result{Err: err}
	}

	ctx, span := t.tracer.Start(ctx, "http "+req.Method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.full", req.URL.String()),
		),
	)
	defer span.End()

	req = req.WithContext(ctx)
	t.propagator.Inject(ctx, propagation.HeaderCarrier(req.Header))

	if call.Modify != nil {
		call.Modify(req)
	}

	body, err := t.exec(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Result{Err: err}
	}

	return Result{Body: body}
}

// request builds the outgoing *http.Request from call. Query pairs are
// appended to any query already present on the URL, in order.
func (t *HTTP) request(ctx context.Context, call Call) (*http.Request, error) {
	if call.URL == nil {
		return nil, ErrMissingURL
	}

	u := *call.URL
	if pairs := call.Method.Query(); len(pairs) > 0 {
		u.RawQuery = appendQuery(u.RawQuery, pairs)
	}

	var body io.Reader
	if b := call.Method.Body(); b != nil {
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, call.Method.Verb(), u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("instantiating request: %w", err)
	}

	call.Header.Apply(req.Header)

	return req, nil
}

// exec runs the request and returns the full body of a 2xx response.
func (t *HTTP) exec(req *http.Request) ([]byte, error) {
	resp, err := t.c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("exec http do: %w", err)
	}

	defer func() {
		if _, err := io.Copy(io.Discard, resp.Body); err != nil {
			t.logger.Error("failed to discard unused body", "error", err)
		}
		if err := resp.Body.Close(); err != nil {
			t.logger.Error("failed to close response body", "error", err)
		}
	}()

	if !IsSuccessful(resp.StatusCode) {
		b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrBodySize))
		if err != nil {
			b = []byte("unable to read body")
		}

		return nil, statusError(resp, b)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}

	return b, nil
}

func appendQuery(raw string, pairs []encoding.Pair) string {
	var sb strings.Builder
	sb.WriteString(raw)
	for _, p := range pairs {
		if sb.Len() > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(p.Name))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(p.Value))
	}

	return sb.String()
}
