package encoding

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestQuery_EncodeQuery(t *testing.T) {
	type arrays struct {
		ID       int   `json:"id"`
		IntArray []int `json:"intArray"`
	}
	type tagged struct {
		Name    string  `query:"name" json:"ignored"`
		Page    *int    `json:"page,omitempty"`
		Limit   int     `json:"limit,omitempty"`
		Secret  string  `json:"-"`
		Ratio   float64 `json:"ratio"`
		Enabled bool
		hidden  string
	}
	type stamped struct {
		At time.Time `json:"at"`
	}
	type Paging struct {
		Limit  int `query:"limit"`
		Offset int `query:"offset,omitempty"`
	}
	type filter struct {
		Paging
		Name string `query:"name"`
	}
	type filterRef struct {
		*Paging
		Name string `query:"name"`
	}
	type filterNamed struct {
		Paging `query:"paging"`
	}
	type raw struct {
		Data []byte `query:"raw"`
	}

	page := 2

	testCases := []struct {
		name   string
		in     any
		exp    []Pair
		expErr error
	}{
		{
			name: "string value",
			in:   map[string]string{"value": "name"},
			exp:  []Pair{{"value", "name"}},
		},
		{
			name: "int value",
			in:   map[string]int{"value": 123},
			exp:  []Pair{{"value", "123"}},
		},
		{
			name: "bool value",
			in:   map[string]bool{"value": true},
			exp:  []Pair{{"value", "true"}},
		},
		{
			name: "array values keep order",
			in:   arrays{ID: 1, IntArray: []int{1, 5, 2}},
			exp: []Pair{
				{"id", "1"},
				{"intArray[]", "1"},
				{"intArray[]", "5"},
				{"intArray[]", "2"},
			},
		},
		{
			name: "pointer to struct",
			in:   &arrays{ID: 7},
			exp:  []Pair{{"id", "7"}},
		},
		{
			name: "tags and omitempty",
			in:   tagged{Name: "bob", Page: &page, Secret: "x", Ratio: 0.5, hidden: "y"},
			exp: []Pair{
				{"name", "bob"},
				{"page", "2"},
				{"ratio", "0.5"},
				{"Enabled", "false"},
			},
		},
		{
			name: "nil pointer skipped",
			in:   tagged{Name: "bob"},
			exp: []Pair{
				{"name", "bob"},
				{"ratio", "0"},
				{"Enabled", "false"},
			},
		},
		{
			name: "map keys sorted",
			in:   map[string]any{"b": "2", "a": 1, "c": []string{"x", "y"}},
			exp: []Pair{
				{"a", "1"},
				{"b", "2"},
				{"c[]", "x"},
				{"c[]", "y"},
			},
		},
		{
			name: "text marshaler",
			in:   stamped{At: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
			exp:  []Pair{{"at", "2024-01-02T03:04:05Z"}},
		},
		{
			name: "embedded struct promoted",
			in:   filter{Paging: Paging{Limit: 5}, Name: "x"},
			exp:  []Pair{{"limit", "5"}, {"name", "x"}},
		},
		{
			name: "embedded pointer promoted",
			in:   filterRef{Paging: &Paging{Limit: 5, Offset: 10}, Name: "x"},
			exp:  []Pair{{"limit", "5"}, {"offset", "10"}, {"name", "x"}},
		},
		{
			name: "nil embedded pointer skipped",
			in:   filterRef{Name: "x"},
			exp:  []Pair{{"name", "x"}},
		},
		{
			name:   "tagged embedded struct stays a field",
			in:     filterNamed{},
			expErr: ErrUnsupportedValue,
		},
		{
			name: "byte slice as one value",
			in:   raw{Data: []byte("ab")},
			exp:  []Pair{{"raw", "ab"}},
		},
		{
			name:   "nested struct",
			in:     map[string]any{"inner": struct{ A int }{A: 1}},
			expErr: ErrUnsupportedValue,
		},
		{
			name:   "top level scalar",
			in:     "value",
			expErr: ErrUnsupportedType,
		},
		{
			name:   "map keyed by int",
			in:     map[int]string{1: "a"},
			expErr: ErrUnsupportedType,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Query{}.EncodeQuery(tc.in)
			if tc.expErr != nil {
				if !errors.Is(err, tc.expErr) {
					t.Fatalf("exp err %v; got: %v", tc.expErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("exp nil err, got: %v", err)
			}

			if diff := cmp.Diff(tc.exp, got); diff != "" {
				t.Errorf("unexpected pairs (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNewBoundary_Unique(t *testing.T) {
	a, b := NewBoundary(), NewBoundary()
	if a == b {
		t.Errorf("exp unique boundaries, got %q twice", a)
	}

	if got := MultipartContentType("xyz"); got != "multipart/form-data; charset=utf-8; boundary=xyz" {
		t.Errorf("unexpected content type %q", got)
	}
}
