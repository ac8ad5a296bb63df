package errparser

import (
	"errors"
	"net/http"
	"sync"
	"testing"
)

type notFoundError struct {
	path string
}

func (e *notFoundError) Error() string { return "not found: " + e.path }

func (e *notFoundError) DecodeFailure(r Response) bool {
	if r.StatusCode != http.StatusNotFound {
		return false
	}
	e.path = string(r.Body)
	return true
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *apiError) Error() string { return e.Message }

func TestParser_Parse(t *testing.T) {
	testCases := []struct {
		name     string
		decoders []Decoder
		resp     Response
		check    func(t *testing.T, err error)
	}{
		{
			name: "no decoders",
			resp: Response{StatusCode: http.StatusNotFound},
			check: func(t *testing.T, err error) {
				if err != nil {
					t.Errorf("exp nil, got %v", err)
				}
			},
		},
		{
			name:     "type decoder matches",
			decoders: []Decoder{Type[notFoundError]()},
			resp:     Response{StatusCode: http.StatusNotFound, Body: []byte("/users/1")},
			check: func(t *testing.T, err error) {
				var nf *notFoundError
				if !errors.As(err, &nf) {
					t.Fatalf("exp *notFoundError, got %v", err)
				}
				if nf.path != "/users/1" {
					t.Errorf("exp path %q, got %q", "/users/1", nf.path)
				}
			},
		},
		{
			name:     "type decoder skips other statuses",
			decoders: []Decoder{Type[notFoundError]()},
			resp:     Response{StatusCode: http.StatusBadRequest},
			check: func(t *testing.T, err error) {
				if err != nil {
					t.Errorf("exp nil, got %v", err)
				}
			},
		},
		{
			name:     "registration order wins",
			decoders: []Decoder{JSON[apiError](), Type[notFoundError]()},
			resp:     Response{StatusCode: http.StatusNotFound, Body: []byte(`{"code":404,"message":"missing"}`)},
			check: func(t *testing.T, err error) {
				var ae *apiError
				if !errors.As(err, &ae) {
					t.Fatalf("exp *apiError, got %v", err)
				}
				if ae.Code != 404 || ae.Message != "missing" {
					t.Errorf("unexpected api error %+v", ae)
				}
			},
		},
		{
			name:     "json decoder rejects unknown fields",
			decoders: []Decoder{JSON[apiError](), Type[notFoundError]()},
			resp:     Response{StatusCode: http.StatusNotFound, Body: []byte(`{"other":true}`)},
			check: func(t *testing.T, err error) {
				var nf *notFoundError
				if !errors.As(err, &nf) {
					t.Fatalf("exp fallthrough to *notFoundError, got %v", err)
				}
			},
		},
		{
			name:     "json decoder rejects empty body",
			decoders: []Decoder{JSON[apiError]()},
			resp:     Response{StatusCode: http.StatusInternalServerError},
			check: func(t *testing.T, err error) {
				if err != nil {
					t.Errorf("exp nil, got %v", err)
				}
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := New()
			for _, d := range tc.decoders {
				p.Register(d)
			}

			tc.check(t, p.Parse(tc.resp))
		})
	}
}

func TestParser_DuplicatesAreTried(t *testing.T) {
	var calls int
	d := func(Response) error {
		calls++
		return nil
	}

	p := New()
	p.Register(d)
	p.Register(d)
	p.Register(nil)

	if p.Len() != 2 {
		t.Fatalf("exp 2 decoders, got %d", p.Len())
	}

	_ = p.Parse(Response{})
	if calls != 2 {
		t.Errorf("exp each duplicate tried, got %d calls", calls)
	}
}

func TestParser_CloneIsIndependent(t *testing.T) {
	p := New()
	p.Register(Type[notFoundError]())

	cpy := p.Clone()
	cpy.Register(JSON[apiError]())

	if p.Len() != 1 || cpy.Len() != 2 {
		t.Errorf("exp 1 and 2 decoders, got %d and %d", p.Len(), cpy.Len())
	}
}

func TestParser_ConcurrentRegister(t *testing.T) {
	p := New()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Register(Type[notFoundError]())
			_ = p.Parse(Response{StatusCode: http.StatusNotFound})
		}()
	}
	wg.Wait()

	if p.Len() != 50 {
		t.Errorf("exp 50 decoders, got %d", p.Len())
	}
}
