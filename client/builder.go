package client

import (
	"bytes"
	"net/http"
	"net/url"
	"slices"

	"github.com/adamwoolhether/httpchain/client/encoding"
	"github.com/adamwoolhether/httpchain/client/errparser"
	"github.com/adamwoolhether/httpchain/client/header"
	"github.com/adamwoolhether/httpchain/client/method"
	"github.com/adamwoolhether/httpchain/client/transport"
	"github.com/adamwoolhether/httpchain/client/validate"
)

// RequestBuilder collects the configuration of a single request.
//
// Every configuration method returns the builder itself. Encoding and
// validation failures are recorded rather than returned and surface as the
// request's failure once it is started. A builder is consumed by one of
// [RequestBuilder.DecodeVoid], [Decode] or [DecodeOptional] and must not be
// used afterwards.
type RequestBuilder struct {
	url    *url.URL
	method method.Descriptor
	header header.Header
	query  []encoding.Pair
	body   []byte
	errs   []error
	modify func(*http.Request)
	env    env
}

// Query encodes v into the query string. It is ignored unless the method accepts a query.
func (b *RequestBuilder) Query(v any) *RequestBuilder {
	if !b.method.IsQueryAvailable() {
		return b
	}

	if err := validate.Check(v); err != nil {
		return b.fail(err)
	}

	pairs, err := b.env.queryEncoder.EncodeQuery(v)
	if err != nil {
		return b.fail(err)
	}

	b.query = pairs
	b.header.Set(header.ContentType, encoding.ContentTypeForm)

	return b
}

// Body encodes v as the request body. It is ignored unless the method accepts a body.
func (b *RequestBuilder) Body(v any) *RequestBuilder {
	if !b.method.IsBodyAvailable() {
		return b
	}

	if err := validate.Check(v); err != nil {
		return b.fail(err)
	}

	data, err := b.env.encoder.Encode(v)
	if err != nil {
		return b.fail(err)
	}

	b.body = data
	b.header.Set(header.ContentType, encoding.ContentTypeJSON)

	return b
}

// Multipart encodes v as a multipart/form-data body separated by boundary.
// An empty boundary is replaced by a freshly generated one.
// It is ignored unless the method accepts a multipart body.
func (b *RequestBuilder) Multipart(v any, boundary string) *RequestBuilder {
	if !b.method.IsMultipartAvailable() {
		return b
	}

	if err := validate.Check(v); err != nil {
		return b.fail(err)
	}

	if boundary == "" {
		boundary = encoding.NewBoundary()
	}

	data, err := b.env.multipartEncoder.EncodeMultipart(v, boundary)
	if err != nil {
		return b.fail(err)
	}

	b.body = data
	b.header.Set(header.ContentType, encoding.MultipartContentType(boundary))

	return b
}

// SetInHeader sets key for this request only. An empty value removes it.
func (b *RequestBuilder) SetInHeader(value string, key header.Key) *RequestBuilder {
	b.header.Set(key, value)
	return b
}

// FailureDecode registers d with the client's error parser. The
// registration outlives this request and applies to every request of the client.
func (b *RequestBuilder) FailureDecode(d errparser.Decoder) *RequestBuilder {
	if b.env.parser != nil {
		b.env.parser.Register(d)
	}

	return b
}

// CustomRequestModification sets fn to run on the fully built *http.Request
// right before it is sent. Only the last fn set is kept; nil clears it.
func (b *RequestBuilder) CustomRequestModification(fn func(*http.Request)) *RequestBuilder {
	b.modify = fn
	return b
}

// Errors returns the configuration errors recorded so far.
func (b *RequestBuilder) Errors() []error {
	return slices.Clone(b.errs)
}

// DecodeVoid finalizes the builder into a request that ignores the
// response body.
func (b *RequestBuilder) DecodeVoid() *Request[struct{}] {
	return newRequest(b, func([]byte) (struct{}, error) {
		return struct{}{}, nil
	})
}

// Decode finalizes b into a request whose response body must decode into T.
// An empty or null body is an [ErrInvalidResponse] failure.
func Decode[T any](b *RequestBuilder) *Request[T] {
	dec := b.env.decoder
	return newRequest(b, func(data []byte) (T, error) {
		var v T
		if isEmpty(data) {
			return v, &Error{Err: ErrInvalidResponse, Cause: errEmptyBody}
		}
		if isNull(data) {
			return v, &Error{Err: ErrInvalidResponse, Cause: errNullBody}
		}
		if dec == nil {
			return v, &Error{Err: ErrInternal, Cause: errNoDecoder}
		}
		if err := dec.Decode(data, &v); err != nil {
			return v, &Error{Err: ErrInvalidResponse, Cause: err}
		}
		return v, nil
	})
}

// DecodeOptional finalizes b into a request that tries to decode the
// response body into T. An empty, null or undecodable body succeeds with nil.
func DecodeOptional[T any](b *RequestBuilder) *Request[*T] {
	dec := b.env.decoder
	logger := b.env.logger
	return newRequest(b, func(data []byte) (*T, error) {
		if isEmpty(data) || isNull(data) || dec == nil {
			return nil, nil
		}

		v := new(T)
		if err := dec.Decode(data, v); err != nil {
			if logger != nil {
				logger.Debug("optional response body not decoded", "error", err)
			}
			return nil, nil
		}
		return v, nil
	})
}

// call assembles the transport call from the builder state.
func (b *RequestBuilder) call() transport.Call {
	desc := b.method
	if b.query != nil {
		desc = desc.WithQuery(b.query)
	}
	if b.body != nil {
		desc = desc.WithBody(b.body)
	}

	return transport.Call{
		URL:    cloneURL(b.url),
		Method: desc,
		Header: b.header.Clone(),
		Modify: b.modify,
	}
}

func (b *RequestBuilder) fail(err error) *RequestBuilder {
	b.errs = append(b.errs, &Error{Err: ErrInvalidParameters, Cause: err})
	return b
}

func isEmpty(data []byte) bool {
	return len(bytes.TrimSpace(data)) == 0
}

func isNull(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}
