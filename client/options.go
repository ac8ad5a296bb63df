package client

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/adamwoolhether/httpchain/client/dispatch"
	"github.com/adamwoolhether/httpchain/client/encoding"
	"github.com/adamwoolhether/httpchain/client/errparser"
	"github.com/adamwoolhether/httpchain/client/header"
	"github.com/adamwoolhether/httpchain/client/transport"
)

// Option is a functional option for configuring a [Client] via [Build].
type Option func(*options) error

type options struct {
	header           *header.Header
	userAgent        string
	encoder          encoding.BodyEncoder
	decoder          encoding.Decoder
	queryEncoder     encoding.QueryEncoder
	multipartEncoder encoding.MultipartEncoder
	parser           *errparser.Parser
	scheduler        dispatch.Scheduler
	network          transport.Transport
	transportOpts    []transport.Option
	logger           *slog.Logger
}

// WithHeader sets the default header copied into every request.
func WithHeader(h header.Header) Option {
	return func(o *options) error {
		cpy := h.Clone()
		o.header = &cpy
		return nil
	}
}

// WithUserAgent adds a persistent User-Agent entry to the default header.
func WithUserAgent(value string) Option {
	return func(o *options) error {
		o.userAgent = value
		return nil
	}
}

// WithEncoder sets the encoder used by [RequestBuilder.Body].
func WithEncoder(e encoding.BodyEncoder) Option {
	return func(o *options) error {
		if e == nil {
			return errors.New("encoder must not be nil")
		}
		o.encoder = e
		return nil
	}
}

// WithDecoder sets the decoder used for successful response bodies.
func WithDecoder(d encoding.Decoder) Option {
	return func(o *options) error {
		if d == nil {
			return errors.New("decoder must not be nil")
		}
		o.decoder = d
		return nil
	}
}

// WithCodec sets both the body encoder and the response decoder.
func WithCodec(c encoding.Codec) Option {
	return func(o *options) error {
		if c == nil {
			return errors.New("codec must not be nil")
		}
		o.encoder = c
		o.decoder = c
		return nil
	}
}

// WithQueryEncoder sets the encoder used by [RequestBuilder.Query].
func WithQueryEncoder(e encoding.QueryEncoder) Option {
	return func(o *options) error {
		if e == nil {
			return errors.New("query encoder must not be nil")
		}
		o.queryEncoder = e
		return nil
	}
}

// WithMultipartEncoder sets the encoder used by [RequestBuilder.Multipart].
func WithMultipartEncoder(e encoding.MultipartEncoder) Option {
	return func(o *options) error {
		if e == nil {
			return errors.New("multipart encoder must not be nil")
		}
		o.multipartEncoder = e
		return nil
	}
}

// WithErrorParser shares p with the [Client] instead of giving it a fresh one.
func WithErrorParser(p *errparser.Parser) Option {
	return func(o *options) error {
		if p == nil {
			return errors.New("error parser must not be nil")
		}
		o.parser = p
		return nil
	}
}

// WithScheduler delivers outcomes through s instead of a [dispatch.Loop]
// owned by the [Client].
func WithScheduler(s dispatch.Scheduler) Option {
	return func(o *options) error {
		if s == nil {
			return errors.New("scheduler must not be nil")
		}
		o.scheduler = s
		return nil
	}
}

// WithNetwork replaces the default [transport.HTTP]. It cannot be combined
// with options that configure the default transport.
func WithNetwork(t transport.Transport) Option {
	return func(o *options) error {
		if t == nil {
			return errors.New("network must not be nil")
		}
		o.network = t
		return nil
	}
}

// WithTransportOptions forwards opts to the default [transport.HTTP].
func WithTransportOptions(opts ...transport.Option) Option {
	return func(o *options) error {
		o.transportOpts = append(o.transportOpts, opts...)
		return nil
	}
}

// WithLogger injects a custom [slog.Logger] into the [Client].
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}

// WithClient replaces the default [http.Client] used by the default transport.
func WithClient(hc *http.Client) Option {
	return WithTransportOptions(transport.WithClient(hc))
}

// WithTransport sets a custom [http.RoundTripper] as the base transport.
func WithTransport(rt http.RoundTripper) Option {
	return WithTransportOptions(transport.WithRoundTripper(rt))
}

// WithTimeout sets the overall request timeout on the underlying [http.Client].
func WithTimeout(d time.Duration) Option {
	return WithTransportOptions(transport.WithTimeout(d))
}

// WithThrottle enables token-bucket rate limiting with the given requests per second and burst capacity.
func WithThrottle(rps, burst int) Option {
	return WithTransportOptions(transport.WithThrottle(rps, burst))
}

// WithNoFollowRedirects prevents the [Client] from following HTTP redirects.
func WithNoFollowRedirects() Option {
	return WithTransportOptions(transport.WithNoFollowRedirects())
}
