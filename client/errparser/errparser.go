// Package errparser turns failed responses into caller defined error types.
//
// Decoders are registered on a [Parser] and tried in registration order
// against every failure; the first one that recognises the response wins.
package errparser

import (
	"bytes"
	"encoding/json"
	"net/http"
	"slices"
	"sync"
)

// Response is the raw material of a failed request.
// StatusCode is zero when no response was received.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Err        error
}

// Decoder builds an error from r. It returns nil when r does not match.
type Decoder func(r Response) error

// Decodable is implemented by error types able to recognise a failed response.
type Decodable interface {
	error
	DecodeFailure(r Response) bool
}

// Type returns a Decoder that tries to populate a new *E from the response.
func Type[E any, PE interface {
	*E
	Decodable
}]() Decoder {
	return func(r Response) error {
		e := PE(new(E))
		if !e.DecodeFailure(r) {
			return nil
		}
		return e
	}
}

// JSON returns a Decoder that strictly unmarshals the response body into a new *E.
// Bodies that are empty or carry fields unknown to E do not match.
func JSON[E any, PE interface {
	*E
	error
}]() Decoder {
	return func(r Response) error {
		if len(bytes.TrimSpace(r.Body)) == 0 {
			return nil
		}

		e := PE(new(E))
		d := json.NewDecoder(bytes.NewReader(r.Body))
		d.DisallowUnknownFields()
		if err := d.Decode(e); err != nil {
			return nil
		}
		return e
	}
}

// Parser is an append-only, ordered registry of decoders.
// It is safe for concurrent use.
type Parser struct {
	mu       sync.RWMutex
	decoders []Decoder
}

// New returns an empty Parser.
func New() *Parser {
	return &Parser{}
}

// Register appends d. Registering the same decoder twice is allowed; both are tried.
func (p *Parser) Register(d Decoder) {
	if d == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.decoders = append(p.decoders, d)
}

// Parse returns the error built by the first matching decoder,
// or nil when none match.
func (p *Parser) Parse(r Response) error {
	p.mu.RLock()
	decoders := slices.Clone(p.decoders)
	p.mu.RUnlock()

	for _, d := range decoders {
		if err := d(r); err != nil {
			return err
		}
	}

	return nil
}

// Len returns the number of registered decoders.
func (p *Parser) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.decoders)
}

// Clone returns an independent Parser holding the same decoders.
func (p *Parser) Clone() *Parser {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return &Parser{decoders: slices.Clone(p.decoders)}
}
