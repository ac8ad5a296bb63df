// Package header provides the ordered, single-valued header map
// shared by a [client.Client] and copied into every request it builds.
package header

import (
	"maps"
	"net/http"
	"net/textproto"
	"slices"
)

// Key identifies a header field. Keys are canonicalized, so
// "content-type" and "Content-Type" address the same entry.
type Key string

// Well-known header keys.
const (
	ContentType    Key = "Content-Type"
	Authorization  Key = "Authorization"
	Accept         Key = "Accept"
	AcceptLanguage Key = "Accept-Language"
	AcceptEncoding Key = "Accept-Encoding"
	UserAgent      Key = "User-Agent"
	CacheControl   Key = "Cache-Control"
)

// Custom returns a Key for an arbitrary header name.
func Custom(name string) Key {
	return Key(textproto.CanonicalMIMEHeaderKey(name))
}

func (k Key) normalized() Key {
	return Key(textproto.CanonicalMIMEHeaderKey(string(k)))
}

// String returns the canonical header name.
func (k Key) String() string {
	return string(k.normalized())
}

// Header holds at most one value per key and remembers insertion order.
// The zero value is an empty Header ready for use.
//
// Header shares storage when assigned; use Clone for an independent copy.
type Header struct {
	keys   []Key
	values map[Key]string
}

// New builds a Header from raw name/value pairs. Empty values are skipped.
// Map iteration has no order, so keys are inserted sorted.
func New(raw map[string]string) Header {
	var h Header
	for _, name := range slices.Sorted(maps.Keys(raw)) {
		h.Set(Custom(name), raw[name])
	}

	return h
}

// Get returns the value stored for key, if any.
func (h Header) Get(key Key) (string, bool) {
	v, ok := h.values[key.normalized()]
	return v, ok
}

// Set stores value under key, replacing any existing value.
// An empty value removes the key.
func (h *Header) Set(key Key, value string) {
	if value == "" {
		h.Remove(key)
		return
	}

	key = key.normalized()
	if h.values == nil {
		h.values = make(map[Key]string)
	}

	if _, ok := h.values[key]; !ok {
		h.keys = append(h.keys, key)
	}
	h.values[key] = value
}

// Remove deletes key and reports whether it was present.
func (h *Header) Remove(key Key) bool {
	key = key.normalized()
	if _, ok := h.values[key]; !ok {
		return false
	}

	delete(h.values, key)
	h.keys = slices.DeleteFunc(h.keys, func(k Key) bool { return k == key })

	return true
}

// Len returns the number of entries.
func (h Header) Len() int {
	return len(h.keys)
}

// Keys returns the keys in insertion order.
func (h Header) Keys() []Key {
	return slices.Clone(h.keys)
}

// Raw returns the entries as a plain map.
func (h Header) Raw() map[string]string {
	raw := make(map[string]string, len(h.keys))
	for _, k := range h.keys {
		raw[string(k)] = h.values[k]
	}

	return raw
}

// Clone returns an independent copy of h.
func (h Header) Clone() Header {
	return Header{
		keys:   slices.Clone(h.keys),
		values: maps.Clone(h.values),
	}
}

// Equal reports whether h and other hold the same entries, ignoring order.
func (h Header) Equal(other Header) bool {
	return maps.Equal(h.values, other.values)
}

// Apply writes every entry into dst, replacing existing values.
func (h Header) Apply(dst http.Header) {
	for _, k := range h.keys {
		dst.Set(string(k), h.values[k])
	}
}
