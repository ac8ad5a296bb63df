package encoding

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/bytedance/sonic"
)

// JSON is the default body codec, backed by encoding/json.
type JSON struct {
	// UseNumber decodes numbers into json.Number instead of float64.
	UseNumber bool
}

// Encode implements [BodyEncoder].
func (JSON) Encode(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding json: %w", err)
	}

	return b, nil
}

// Decode implements [Decoder].
func (j JSON) Decode(data []byte, v any) error {
	d := json.NewDecoder(bytes.NewReader(data))
	if j.UseNumber {
		d.UseNumber()
	}

	if err := d.Decode(v); err != nil {
		return fmt.Errorf("decoding json: %w", err)
	}

	return nil
}

// Sonic is a body codec backed by bytedance/sonic using its
// encoding/json compatible configuration.
type Sonic struct {
	api sonic.API
}

// NewSonic returns a Sonic codec. useNumber mirrors [JSON.UseNumber].
func NewSonic(useNumber bool) Sonic {
	cfg := sonic.Config{
		EscapeHTML:       true,
		SortMapKeys:      true,
		CompactMarshaler: true,
		CopyString:       true,
		ValidateString:   true,
		UseNumber:        useNumber,
	}

	return Sonic{api: cfg.Froze()}
}

// Encode implements [BodyEncoder].
func (s Sonic) Encode(v any) ([]byte, error) {
	b, err := s.frozen().Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding json: %w", err)
	}

	return b, nil
}

// Decode implements [Decoder].
func (s Sonic) Decode(data []byte, v any) error {
	if err := s.frozen().Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding json: %w", err)
	}

	return nil
}

func (s Sonic) frozen() sonic.API {
	if s.api == nil {
		return sonic.ConfigStd
	}

	return s.api
}
