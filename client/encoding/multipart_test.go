package encoding

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type part struct {
	Name        string
	Filename    string
	ContentType string
	Body        string
}

func readParts(t *testing.T, payload []byte, boundary string) []part {
	t.Helper()

	r := multipart.NewReader(bytes.NewReader(payload), boundary)

	var parts []part
	for {
		p, err := r.NextPart()
		if errors.Is(err, io.EOF) {
			return parts
		}
		if err != nil {
			t.Fatalf("reading part: %v", err)
		}

		b, err := io.ReadAll(p)
		if err != nil {
			t.Fatalf("reading part body: %v", err)
		}

		parts = append(parts, part{
			Name:        p.FormName(),
			Filename:    p.FileName(),
			ContentType: p.Header.Get("Content-Type"),
			Body:        string(b),
		})
	}
}

func TestMultipart_EncodeMultipart(t *testing.T) {
	type upload struct {
		Title  string   `form:"title"`
		Count  int      `json:"count"`
		Tags   []string `form:"tags"`
		Skip   string   `form:"-"`
		Note   *string  `form:"note"`
		Avatar File     `form:"avatar"`
		Raw    *File    `form:"raw"`
	}

	const boundary = "Boundary--test"
	in := upload{
		Title: "hello",
		Count: 3,
		Tags:  []string{"a", "b"},
		Skip:  "nope",
		Avatar: File{
			Filename:    "avatar.txt",
			ContentType: "text/plain",
			Data:        []byte("avatar data"),
		},
		Raw: &File{Data: []byte("%PDF-1.4\n")},
	}

	payload, err := Multipart{}.EncodeMultipart(in, boundary)
	if err != nil {
		t.Fatalf("exp nil err, got: %v", err)
	}

	exp := []part{
		{Name: "title", Body: "hello"},
		{Name: "count", Body: "3"},
		{Name: "tags", Body: "a"},
		{Name: "tags", Body: "b"},
		{Name: "avatar", Filename: "avatar.txt", ContentType: "text/plain", Body: "avatar data"},
		{Name: "raw", Filename: "raw", ContentType: "application/pdf", Body: "%PDF-1.4\n"},
	}

	if diff := cmp.Diff(exp, readParts(t, payload, boundary)); diff != "" {
		t.Errorf("unexpected parts (-want +got):\n%s", diff)
	}
}

func TestMultipart_EmbeddedFields(t *testing.T) {
	type Meta struct {
		Author string `form:"author"`
		Year   int    `form:"year,omitempty"`
	}
	type document struct {
		Meta
		File
		Title string `form:"title"`
	}

	const boundary = "Boundary--embedded"
	in := document{
		Meta:  Meta{Author: "ada"},
		File:  File{Filename: "notes.txt", ContentType: "text/plain", Data: []byte("notes")},
		Title: "draft",
	}

	payload, err := Multipart{}.EncodeMultipart(in, boundary)
	if err != nil {
		t.Fatalf("exp nil err, got: %v", err)
	}

	exp := []part{
		{Name: "author", Body: "ada"},
		{Name: "File", Filename: "notes.txt", ContentType: "text/plain", Body: "notes"},
		{Name: "title", Body: "draft"},
	}

	if diff := cmp.Diff(exp, readParts(t, payload, boundary)); diff != "" {
		t.Errorf("unexpected parts (-want +got):\n%s", diff)
	}
}

func TestMultipart_Errors(t *testing.T) {
	type nested struct {
		Inner struct{ A int } `form:"inner"`
	}
	type plain struct {
		A string
	}

	testCases := []struct {
		name     string
		in       any
		boundary string
		expErr   error
	}{
		{
			name:     "unsupported field",
			in:       nested{},
			boundary: "Boundary--x",
			expErr:   ErrUnsupportedValue,
		},
		{
			name:     "not a struct",
			in:       []string{"a"},
			boundary: "Boundary--x",
			expErr:   ErrUnsupportedType,
		},
		{
			name:     "invalid boundary",
			in:       plain{A: "a"},
			boundary: "bad boundary\n",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Multipart{}.EncodeMultipart(tc.in, tc.boundary)
			if err == nil {
				t.Fatal("exp error, got nil")
			}

			if tc.expErr != nil && !errors.Is(err, tc.expErr) {
				t.Errorf("exp err %v; got: %v", tc.expErr, err)
			}
		})
	}
}
