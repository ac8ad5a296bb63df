package client

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/adamwoolhether/httpchain/client/config"
	"github.com/adamwoolhether/httpchain/client/dispatch"
	"github.com/adamwoolhether/httpchain/client/encoding"
	"github.com/adamwoolhether/httpchain/client/errparser"
	"github.com/adamwoolhether/httpchain/client/header"
	"github.com/adamwoolhether/httpchain/client/method"
	"github.com/adamwoolhether/httpchain/client/transport"
)

// Endpoint is a target on the API, resolved against the client's base URL.
type Endpoint interface {
	EndpointValue() string
}

// Path is the simplest [Endpoint]: a literal path segment.
type Path string

func (p Path) EndpointValue() string { return string(p) }

// Client creates request builders against a single base URL.
// It owns the default header and the collaborators every request shares.
type Client struct {
	baseURL *url.URL

	mu     sync.RWMutex
	header header.Header

	env    env
	loop   *dispatch.Loop
	logger *slog.Logger
}

// env is the set of collaborators threaded from a Client through its
// builders into every Request.
type env struct {
	network          transport.Transport
	encoder          encoding.BodyEncoder
	decoder          encoding.Decoder
	queryEncoder     encoding.QueryEncoder
	multipartEncoder encoding.MultipartEncoder
	parser           *errparser.Parser
	scheduler        dispatch.Scheduler
	inflight         *inflight
	logger           *slog.Logger
}

// inflight counts the started requests of a Client whose handlers have not
// run yet. Requests keep a pointer to it, never to the Client.
type inflight struct {
	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// begin admits a request. It reports false once the Client is closed.
func (f *inflight) begin() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return false
	}
	f.wg.Add(1)

	return true
}

func (f *inflight) end() {
	f.wg.Done()
}

// close refuses new requests and waits for the admitted ones.
func (f *inflight) close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()

	f.wg.Wait()
}

// Build creates a Client for baseURL, which must be absolute.
func Build(baseURL string, optFns ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}

	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying client option: %w", err)
		}
	}

	c := &Client{
		baseURL: u,
		logger:  slog.Default(),
	}

	if opts.logger != nil {
		c.logger = opts.logger
	}

	if opts.header != nil {
		c.header = opts.header.Clone()
	}
	if opts.userAgent != "" {
		c.header.Set(header.UserAgent, opts.userAgent)
	}

	c.env = env{
		encoder:          encoding.JSON{},
		decoder:          encoding.JSON{},
		queryEncoder:     encoding.Query{},
		multipartEncoder: encoding.Multipart{},
		parser:           errparser.New(),
		inflight:         &inflight{},
		logger:           c.logger,
	}
	if opts.encoder != nil {
		c.env.encoder = opts.encoder
	}
	if opts.decoder != nil {
		c.env.decoder = opts.decoder
	}
	if opts.queryEncoder != nil {
		c.env.queryEncoder = opts.queryEncoder
	}
	if opts.multipartEncoder != nil {
		c.env.multipartEncoder = opts.multipartEncoder
	}
	if opts.parser != nil {
		c.env.parser = opts.parser
	}

	switch {
	case opts.network != nil && len(opts.transportOpts) > 0:
		return nil, errors.New("transport options cannot be combined with a custom network")
	case opts.network != nil:
		c.env.network = opts.network
	default:
		tOpts := append([]transport.Option{transport.WithLogger(c.logger)}, opts.transportOpts...)
		network, err := transport.NewHTTP(tOpts...)
		if err != nil {
			return nil, fmt.Errorf("configuring transport: %w", err)
		}
		c.env.network = network
	}

	if opts.scheduler != nil {
		c.env.scheduler = opts.scheduler
	} else {
		c.loop = dispatch.NewLoop(c.logger)
		c.env.scheduler = c.loop
	}

	return c, nil
}

// FromConfig builds a Client from cfg. optFns are applied after the
// options derived from cfg, so they take precedence.
func FromConfig(cfg *config.Config, optFns ...Option) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config must not be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	opts := []Option{WithTimeout(cfg.Timeout)}
	if cfg.UserAgent != "" {
		opts = append(opts, WithUserAgent(cfg.UserAgent))
	}
	if cfg.NoFollowRedirects {
		opts = append(opts, WithNoFollowRedirects())
	}
	if cfg.Throttle.Enabled() {
		opts = append(opts, WithThrottle(cfg.Throttle.RPS, cfg.Throttle.BurstOrRPS()))
	}

	return Build(cfg.BaseURL, append(opts, optFns...)...)
}

// Get starts a GET request to endpoint.
func (c *Client) Get(endpoint Endpoint) *RequestBuilder {
	return c.builder(method.GET(), endpoint)
}

// Post starts a POST request to endpoint.
func (c *Client) Post(endpoint Endpoint) *RequestBuilder {
	return c.builder(method.POST(nil), endpoint)
}

// Put starts a PUT request to endpoint.
func (c *Client) Put(endpoint Endpoint) *RequestBuilder {
	return c.builder(method.PUT(nil), endpoint)
}

// Patch starts a PATCH request to endpoint.
func (c *Client) Patch(endpoint Endpoint) *RequestBuilder {
	return c.builder(method.PATCH(nil), endpoint)
}

// Delete starts a DELETE request to endpoint.
func (c *Client) Delete(endpoint Endpoint) *RequestBuilder {
	return c.builder(method.DELETE(), endpoint)
}

// Head starts a HEAD request to endpoint.
func (c *Client) Head(endpoint Endpoint) *RequestBuilder {
	return c.builder(method.HEAD(), endpoint)
}

func (c *Client) builder(desc method.Descriptor, endpoint Endpoint) *RequestBuilder {
	u := c.baseURL
	if endpoint != nil {
		if p := endpoint.EndpointValue(); p != "" {
			u = u.JoinPath(p)
		}
	}

	return &RequestBuilder{
		url:    cloneURL(u),
		method: desc,
		header: c.Header(),
		env:    c.env,
	}
}

// URL returns a copy of the base URL.
func (c *Client) URL() *url.URL {
	return cloneURL(c.baseURL)
}

// Header returns a copy of the default header.
func (c *Client) Header() header.Header {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.header.Clone()
}

// SetHeader replaces the default header. Builders created earlier keep their copy.
func (c *Client) SetHeader(h header.Header) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.header = h.Clone()
}

// SetInHeader sets key in the default header. An empty value removes it.
func (c *Client) SetInHeader(value string, key header.Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.header.Set(key, value)
}

// ErrorParser returns the parser shared by every request of this Client.
func (c *Client) ErrorParser() *errparser.Parser {
	return c.env.parser
}

// Close stops the Client from starting new requests, which then fail with
// [ErrClientClosed]. It waits for the requests already started to complete
// and for their handlers to run, then stops the delivery loop owned by the
// Client. Close must not be called from a handler.
//
// Close is optional: a Client dropped without it holds no goroutine.
func (c *Client) Close() error {
	c.env.inflight.close()

	if c.loop == nil {
		return nil
	}

	if err := c.loop.Close(); err != nil {
		return fmt.Errorf("closing dispatch loop: %w", err)
	}

	return nil
}

func cloneURL(u *url.URL) *url.URL {
	cpy := *u
	if u.User != nil {
		user := *u.User
		cpy.User = &user
	}

	return &cpy
}
