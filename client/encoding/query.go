package encoding

import (
	"encoding"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// Query encodes structs and string keyed maps into query pairs.
//
// Struct fields are emitted in declaration order. The name comes from the
// `query` tag, then the `json` tag, then the field name; "-" skips a field
// and "omitempty" skips zero values. Nil pointers are skipped. Slices and
// arrays produce one pair per element under "name[]", except []byte which is
// sent as a single string. Fields of an untagged embedded struct are promoted
// into the parent, as encoding/json does.
type Query struct{}

// EncodeQuery implements [QueryEncoder].
func (Query) EncodeQuery(v any) ([]Pair, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Struct:
		return encodeQueryStruct(rv)
	case reflect.Map:
		return encodeQueryMap(rv)
	default:
		return nil, fmt.Errorf("query from %s: %w", rv.Kind(), ErrUnsupportedType)
	}
}

func encodeQueryStruct(rv reflect.Value) ([]Pair, error) {
	var pairs []Pair

	err := walkFields(rv, "query", func(name string, fv reflect.Value) error {
		var err error
		pairs, err = appendQueryValue(pairs, name, fv)
		return err
	})
	if err != nil {
		return nil, err
	}

	return pairs, nil
}

func encodeQueryMap(rv reflect.Value) ([]Pair, error) {
	if rv.Type().Key().Kind() != reflect.String {
		return nil, fmt.Errorf("query map keyed by %s: %w", rv.Type().Key().Kind(), ErrUnsupportedType)
	}

	values := make(map[string]reflect.Value, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		values[iter.Key().String()] = iter.Value()
	}

	var pairs []Pair
	for _, name := range slices.Sorted(maps.Keys(values)) {
		var err error
		pairs, err = appendQueryValue(pairs, name, values[name])
		if err != nil {
			return nil, err
		}
	}

	return pairs, nil
}

func appendQueryValue(pairs []Pair, name string, fv reflect.Value) ([]Pair, error) {
	for fv.Kind() == reflect.Pointer || fv.Kind() == reflect.Interface {
		if fv.IsNil() {
			return pairs, nil
		}
		fv = fv.Elem()
	}

	if s, ok, err := textValue(fv); ok {
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		return append(pairs, Pair{Name: name, Value: s}), nil
	}

	if fv.Kind() == reflect.Slice && fv.Type().Elem().Kind() == reflect.Uint8 {
		return append(pairs, Pair{Name: name, Value: string(fv.Bytes())}), nil
	}

	switch fv.Kind() {
	case reflect.Slice, reflect.Array:
		key := name + "[]"
	elements:
		for i := range fv.Len() {
			elem := fv.Index(i)
			for elem.Kind() == reflect.Pointer || elem.Kind() == reflect.Interface {
				if elem.IsNil() {
					continue elements
				}
				elem = elem.Elem()
			}

			s, err := scalarString(elem)
			if err != nil {
				return nil, fmt.Errorf("field %q[%d]: %w", name, i, err)
			}
			pairs = append(pairs, Pair{Name: key, Value: s})
		}
		return pairs, nil
	default:
		s, err := scalarString(fv)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		return append(pairs, Pair{Name: name, Value: s}), nil
	}
}

// scalarString renders a scalar using its natural text form.
func scalarString(v reflect.Value) (string, error) {
	if s, ok, err := textValue(v); ok {
		return s, err
	}

	switch v.Kind() {
	case reflect.String:
		return v.String(), nil
	case reflect.Bool:
		return strconv.FormatBool(v.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(v.Uint(), 10), nil
	case reflect.Float32:
		return strconv.FormatFloat(v.Float(), 'f', -1, 32), nil
	case reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("%s: %w", v.Kind(), ErrUnsupportedValue)
	}
}

// textValue handles types that know how to print themselves.
// ok is false when v is neither a TextMarshaler nor a Stringer.
func textValue(v reflect.Value) (s string, ok bool, err error) {
	if !v.IsValid() || !v.CanInterface() {
		return "", false, nil
	}

	switch t := v.Interface().(type) {
	case encoding.TextMarshaler:
		b, err := t.MarshalText()
		return string(b), true, err
	case fmt.Stringer:
		return t.String(), true, nil
	}

	if v.CanAddr() {
		if t, ok := v.Addr().Interface().(encoding.TextMarshaler); ok {
			b, err := t.MarshalText()
			return string(b), true, err
		}
	}

	return "", false, nil
}

// walkFields calls fn with the encoded name and value of every field of rv,
// in declaration order. Exported fields skipped by their tag or by omitempty
// are left out. Untagged embedded structs are walked in place.
func walkFields(rv reflect.Value, tag string, fn func(name string, fv reflect.Value) error) error {
	rt := rv.Type()
	for i := range rt.NumField() {
		sf := rt.Field(i)
		fv := rv.Field(i)

		if sf.Anonymous && !hasTagName(sf, tag) {
			if inner, ok := embeddedStruct(sf, fv); ok {
				if !inner.IsValid() {
					continue
				}
				if err := walkFields(inner, tag, fn); err != nil {
					return err
				}
				continue
			}
		}

		if !sf.IsExported() {
			continue
		}

		name, omitEmpty, skip := fieldName(sf, tag)
		if skip {
			continue
		}

		if omitEmpty && fv.IsZero() {
			continue
		}

		if err := fn(name, fv); err != nil {
			return err
		}
	}

	return nil
}

var (
	textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()
	stringerType      = reflect.TypeFor[fmt.Stringer]()
)

// embeddedStruct reports whether the embedded field fv should be flattened.
// The returned value is invalid for a nil embedded pointer.
func embeddedStruct(sf reflect.StructField, fv reflect.Value) (reflect.Value, bool) {
	ft := sf.Type
	if ft.Kind() == reflect.Pointer {
		if !sf.IsExported() {
			return reflect.Value{}, false
		}
		ft = ft.Elem()
	}

	if ft.Kind() != reflect.Struct || ft == fileType {
		return reflect.Value{}, false
	}

	for _, t := range []reflect.Type{ft, reflect.PointerTo(ft)} {
		if t.Implements(textMarshalerType) || t.Implements(stringerType) {
			return reflect.Value{}, false
		}
	}

	if fv.Kind() == reflect.Pointer {
		if fv.IsNil() {
			return reflect.Value{}, true
		}
		fv = fv.Elem()
	}

	return fv, true
}

// hasTagName reports whether sf is given a name by tag or json.
func hasTagName(sf reflect.StructField, tag string) bool {
	for _, key := range []string{tag, "json"} {
		if raw, ok := sf.Tag.Lookup(key); ok && strings.Split(raw, ",")[0] != "" {
			return true
		}
	}

	return false
}

// fieldName resolves the encoded name of sf, checking tag first and json second.
func fieldName(sf reflect.StructField, tag string) (name string, omitEmpty, skip bool) {
	for _, key := range []string{tag, "json"} {
		raw, ok := sf.Tag.Lookup(key)
		if !ok {
			continue
		}

		parts := strings.Split(raw, ",")
		if parts[0] == "-" && len(parts) == 1 {
			return "", false, true
		}

		name = parts[0]
		omitEmpty = slices.Contains(parts[1:], "omitempty")
		break
	}

	if name == "" {
		name = sf.Name
	}

	return name, omitEmpty, false
}
