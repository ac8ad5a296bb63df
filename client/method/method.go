// Package method describes the HTTP verbs a request builder can be
// bound to, along with the payload each verb is allowed to carry.
package method

import (
	"bytes"
	"net/http"
	"slices"

	"github.com/adamwoolhether/httpchain/client/encoding"
)

// Kind is one of the supported HTTP verbs.
type Kind int

const (
	Get Kind = iota + 1
	Post
	Put
	Patch
	Delete
	Head
)

// String returns the HTTP verb.
func (k Kind) String() string {
	switch k {
	case Get:
		return http.MethodGet
	case Post:
		return http.MethodPost
	case Put:
		return http.MethodPut
	case Patch:
		return http.MethodPatch
	case Delete:
		return http.MethodDelete
	case Head:
		return http.MethodHead
	default:
		return "UNKNOWN"
	}
}

// Descriptor is a verb plus the payload it carries: query pairs for GET,
// an optional body for POST, PUT and PATCH, nothing for DELETE and HEAD.
// Descriptors are values; the With methods return modified copies.
type Descriptor struct {
	kind  Kind
	query []encoding.Pair
	body  []byte
}

// GET returns a GET descriptor with the given query.
func GET(query ...encoding.Pair) Descriptor {
	return Descriptor{kind: Get, query: slices.Clone(query)}
}

// POST returns a POST descriptor. body may be nil.
func POST(body []byte) Descriptor {
	return Descriptor{kind: Post, body: bytes.Clone(body)}
}

// PUT returns a PUT descriptor. body may be nil.
func PUT(body []byte) Descriptor {
	return Descriptor{kind: Put, body: bytes.Clone(body)}
}

// PATCH returns a PATCH descriptor. body may be nil.
func PATCH(body []byte) Descriptor {
	return Descriptor{kind: Patch, body: bytes.Clone(body)}
}

// DELETE returns a DELETE descriptor.
func DELETE() Descriptor {
	return Descriptor{kind: Delete}
}

// HEAD returns a HEAD descriptor.
func HEAD() Descriptor {
	return Descriptor{kind: Head}
}

// Kind returns the verb.
func (d Descriptor) Kind() Kind { return d.kind }

// Verb returns the HTTP method string.
func (d Descriptor) Verb() string { return d.kind.String() }

// IsQueryAvailable reports whether the verb accepts query parameters.
func (d Descriptor) IsQueryAvailable() bool {
	return d.kind == Get
}

// IsBodyAvailable reports whether the verb accepts a body.
func (d Descriptor) IsBodyAvailable() bool {
	switch d.kind {
	case Post, Put, Patch:
		return true
	default:
		return false
	}
}

// IsMultipartAvailable reports whether the verb accepts a multipart body.
func (d Descriptor) IsMultipartAvailable() bool {
	return d.IsBodyAvailable()
}

// Query returns a copy of the query pairs.
func (d Descriptor) Query() []encoding.Pair {
	return slices.Clone(d.query)
}

// Body returns a copy of the body.
func (d Descriptor) Body() []byte {
	return bytes.Clone(d.body)
}

// WithQuery returns d carrying query. d is returned unchanged when the
// verb does not accept a query.
func (d Descriptor) WithQuery(query []encoding.Pair) Descriptor {
	if !d.IsQueryAvailable() {
		return d
	}

	d.query = slices.Clone(query)
	return d
}

// WithBody returns d carrying body. d is returned unchanged when the
// verb does not accept a body.
func (d Descriptor) WithBody(body []byte) Descriptor {
	if !d.IsBodyAvailable() {
		return d
	}

	d.body = bytes.Clone(body)
	return d
}

// Equal reports whether d and other have the same verb and payload.
func (d Descriptor) Equal(other Descriptor) bool {
	return d.kind == other.kind &&
		slices.Equal(d.query, other.query) &&
		bytes.Equal(d.body, other.body)
}
