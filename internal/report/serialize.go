package report

import (
	"fmt"
	"math"
	"strconv"

	"github.com/go-tangra/go-tangra-hwreport/internal/codec"
)

// EncodingError reports a report value that has no place in the
// serialized form. Path locates it, e.g. "gpuDevices[0].extra.handle".
type EncodingError struct {
	Path string
	Type string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("cannot encode %s at %s", e.Type, e.Path)
}

// Serialize encodes r in format ("json", "yaml" or "cbor"). Mapping keys
// are ordered at every level, so equal reports encode to identical bytes.
// Values other than text, integers, finite floats, booleans, null, mappings
// and sequences fail with *EncodingError before anything is encoded.
func Serialize(r *Report, format string) ([]byte, error) {
	c, err := codec.Get(format)
	if err != nil {
		return nil, err
	}
	if err := Validate(r); err != nil {
		return nil, err
	}
	data, err := c.Marshal(r.fields)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", c.Name(), err)
	}
	return data, nil
}

// Validate checks that every value in r can be serialized.
func Validate(r *Report) error {
	for _, k := range r.Keys() {
		if err := validate(k, r.fields[k]); err != nil {
			return err
		}
	}
	return nil
}

func validate(path string, v any) error {
	switch t := v.(type) {
	case nil, string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return nil
	case float32:
		return validateFloat(path, float64(t))
	case float64:
		return validateFloat(path, t)
	case map[string]any:
		for _, k := range sortedKeys(t) {
			if err := validate(path+"."+k, t[k]); err != nil {
				return err
			}
		}
		return nil
	case []any:
		for i, e := range t {
			if err := validate(path+"["+strconv.Itoa(i)+"]", e); err != nil {
				return err
			}
		}
		return nil
	}
	return &EncodingError{Path: path, Type: fmt.Sprintf("%T", v)}
}

func validateFloat(path string, f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return &EncodingError{Path: path, Type: "non-finite float"}
	}
	return nil
}
