package encoding

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"reflect"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// File is a file part of a multipart payload.
// An empty ContentType is detected from Data.
type File struct {
	Filename    string
	ContentType string
	Data        []byte
}

var fileType = reflect.TypeFor[File]()

// Multipart encodes structs as multipart/form-data.
//
// Parts follow field declaration order. The part name comes from the
// `form` tag, then the `json` tag, then the field name. Scalars become
// form fields, slices of scalars repeat the field and File values become
// file parts. Fields of untagged embedded structs are promoted.
type Multipart struct{}

// EncodeMultipart implements [MultipartEncoder].
func (Multipart) EncodeMultipart(v any, boundary string) ([]byte, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, fmt.Errorf("multipart from nil: %w", ErrUnsupportedType)
		}
		rv = rv.Elem()
	}

	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("multipart from %s: %w", rv.Kind(), ErrUnsupportedType)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.SetBoundary(boundary); err != nil {
		return nil, fmt.Errorf("setting boundary: %w", err)
	}

	err := walkFields(rv, "form", func(name string, fv reflect.Value) error {
		return writePart(w, name, fv)
	})
	if err != nil {
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart writer: %w", err)
	}

	return buf.Bytes(), nil
}

func writePart(w *multipart.Writer, name string, fv reflect.Value) error {
	for fv.Kind() == reflect.Pointer || fv.Kind() == reflect.Interface {
		if fv.IsNil() {
			return nil
		}
		fv = fv.Elem()
	}

	if fv.Type() == fileType {
		return writeFile(w, name, fv.Interface().(File))
	}

	if fv.Kind() == reflect.Slice && fv.Type().Elem().Kind() == reflect.Uint8 {
		if err := w.WriteField(name, string(fv.Bytes())); err != nil {
			return fmt.Errorf("writing field %q: %w", name, err)
		}
		return nil
	}

	if fv.Kind() == reflect.Slice || fv.Kind() == reflect.Array {
		for i := range fv.Len() {
			if err := writePart(w, name, fv.Index(i)); err != nil {
				return fmt.Errorf("part %q[%d]: %w", name, i, err)
			}
		}
		return nil
	}

	s, err := scalarString(fv)
	if err != nil {
		return fmt.Errorf("part %q: %w", name, err)
	}

	if err := w.WriteField(name, s); err != nil {
		return fmt.Errorf("writing field %q: %w", name, err)
	}

	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeFile(w *multipart.Writer, name string, f File) error {
	contentType := f.ContentType
	if contentType == "" {
		contentType = mimetype.Detect(f.Data).String()
	}

	filename := f.Filename
	if filename == "" {
		filename = name
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(name), quoteEscaper.Replace(filename)))
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("creating file part %q: %w", name, err)
	}

	if _, err := part.Write(f.Data); err != nil {
		return fmt.Errorf("writing file part %q: %w", name, err)
	}

	return nil
}
