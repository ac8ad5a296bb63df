package header

import (
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestHeader_Set(t *testing.T) {
	testCases := []struct {
		name  string
		start map[string]string
		key   Key
		value string
		exp   map[string]string
	}{
		{
			name:  "new key",
			start: map[string]string{"First": "value1"},
			key:   Custom("second"),
			value: "value2",
			exp:   map[string]string{"First": "value1", "Second": "value2"},
		},
		{
			name:  "existing key",
			start: map[string]string{"First": "value1"},
			key:   Custom("first"),
			value: "value2",
			exp:   map[string]string{"First": "value2"},
		},
		{
			name:  "empty value removes",
			start: map[string]string{"First": "value1"},
			key:   Custom("first"),
			value: "",
			exp:   map[string]string{},
		},
		{
			name:  "well-known key",
			start: nil,
			key:   ContentType,
			value: "application/json",
			exp:   map[string]string{"Content-Type": "application/json"},
		},
		{
			name:  "case insensitive",
			start: map[string]string{"Content-Type": "text/plain"},
			key:   Custom("content-type"),
			value: "application/json",
			exp:   map[string]string{"Content-Type": "application/json"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := New(tc.start)
			h.Set(tc.key, tc.value)

			if diff := cmp.Diff(tc.exp, h.Raw()); diff != "" {
				t.Errorf("unexpected header (-want +got):\n%s", diff)
			}
		})
	}
}

func TestHeader_Remove(t *testing.T) {
	h := New(map[string]string{"First": "value1"})

	if existed := h.Remove(Custom("second")); existed {
		t.Error("exp removing a missing key to report false")
	}
	if diff := cmp.Diff(map[string]string{"First": "value1"}, h.Raw()); diff != "" {
		t.Errorf("header changed after removing missing key (-want +got):\n%s", diff)
	}

	if existed := h.Remove(Custom("first")); !existed {
		t.Error("exp removing an existing key to report true")
	}
	if h.Len() != 0 {
		t.Errorf("exp empty header, got %v", h.Raw())
	}
}

func TestHeader_CloneIsIndependent(t *testing.T) {
	shared := New(map[string]string{"First": "value1"})

	cpy := shared.Clone()
	cpy.Set(Authorization, "Bearer token")
	cpy.Set(Custom("first"), "")

	if diff := cmp.Diff(map[string]string{"First": "value1"}, shared.Raw()); diff != "" {
		t.Errorf("original mutated through clone (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]string{"Authorization": "Bearer token"}, cpy.Raw()); diff != "" {
		t.Errorf("unexpected clone (-want +got):\n%s", diff)
	}
}

func TestHeader_Equal(t *testing.T) {
	var a, b Header
	a.Set(Accept, "application/json")
	a.Set(UserAgent, "test/1.0")
	b.Set(UserAgent, "test/1.0")
	b.Set(Accept, "application/json")

	if !a.Equal(b) {
		t.Error("exp headers with same entries in different order to be equal")
	}

	b.Set(Accept, "text/plain")
	if a.Equal(b) {
		t.Error("exp headers with different values to differ")
	}

	if !(Header{}).Equal(New(nil)) {
		t.Error("exp empty headers to be equal")
	}
}

func TestHeader_KeysKeepInsertionOrder(t *testing.T) {
	var h Header
	h.Set(UserAgent, "a")
	h.Set(Accept, "b")
	h.Set(Custom("x-trace"), "c")
	h.Set(UserAgent, "d")

	exp := []Key{UserAgent, Accept, "X-Trace"}
	if diff := cmp.Diff(exp, h.Keys()); diff != "" {
		t.Errorf("unexpected key order (-want +got):\n%s", diff)
	}
}

func TestHeader_Apply(t *testing.T) {
	var h Header
	h.Set(ContentType, "application/json")
	h.Set(Custom("x-request-id"), "abc123")

	dst := http.Header{"Content-Type": {"text/plain"}}
	h.Apply(dst)

	if got := dst.Get("Content-Type"); got != "application/json" {
		t.Errorf("exp Content-Type %q, got %q", "application/json", got)
	}
	if got := dst.Get("X-Request-Id"); got != "abc123" {
		t.Errorf("exp X-Request-Id %q, got %q", "abc123", got)
	}
}
