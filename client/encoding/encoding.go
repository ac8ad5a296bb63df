// Package encoding defines the content encoders used by a request builder
// and ships the default query, JSON and multipart implementations.
package encoding

import (
	"errors"

	"github.com/google/uuid"
)

// Content-Type values set by the builder for each encoding.
const (
	ContentTypeForm = "application/x-www-form-urlencoded"
	ContentTypeJSON = "application/json"
)

var (
	// ErrUnsupportedType is returned when the top level value cannot be encoded at all.
	ErrUnsupportedType = errors.New("unsupported type")
	// ErrUnsupportedValue is returned when a field holds a kind the encoder cannot represent.
	ErrUnsupportedValue = errors.New("unsupported value")
)

// Pair is a single query name/value.
type Pair struct {
	Name  string
	Value string
}

// QueryEncoder turns a value into ordered query pairs.
type QueryEncoder interface {
	EncodeQuery(v any) ([]Pair, error)
}

// BodyEncoder serializes a request body.
type BodyEncoder interface {
	Encode(v any) ([]byte, error)
}

// Decoder deserializes a response body into v, which must be a pointer.
type Decoder interface {
	Decode(data []byte, v any) error
}

// Codec both encodes bodies and decodes responses.
type Codec interface {
	BodyEncoder
	Decoder
}

// MultipartEncoder writes v as a multipart/form-data payload delimited by boundary.
type MultipartEncoder interface {
	EncodeMultipart(v any, boundary string) ([]byte, error)
}

// MultipartContentType returns the Content-Type for a multipart payload using boundary.
func MultipartContentType(boundary string) string {
	return "multipart/form-data; charset=utf-8; boundary=" + boundary
}

// NewBoundary returns a boundary that is unique per call.
func NewBoundary() string {
	return "Boundary--" + uuid.NewString()
}
