package normalize

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cast"

	"github.com/go-tangra/go-tangra-hwreport/internal/hardware"
)

// unit selects the suffix table used when a numeric field arrives as text.
type unit uint8

const (
	unitNone unit = iota
	unitBytes
	unitHertz
	unitTransfers
	unitBitrate
)

type suffix struct {
	text  string
	scale float64
}

// Longest suffixes first so "mb/s" is not read as "b/s".
var unitSuffixes = map[unit][]suffix{
	unitHertz: {
		{"ghz", 1e9},
		{"mhz", 1e6},
		{"khz", 1e3},
		{"hz", 1},
	},
	unitTransfers: {
		{"gt/s", 1e3},
		{"mt/s", 1},
		{"mhz", 1},
	},
	unitBitrate: {
		{"gbit/s", 1e9},
		{"mbit/s", 1e6},
		{"kbit/s", 1e3},
		{"gbps", 1e9},
		{"mbps", 1e6},
		{"kbps", 1e3},
		{"gb/s", 1e9},
		{"mb/s", 1e6},
		{"kb/s", 1e3},
		{"bit/s", 1},
		{"bps", 1},
		{"b/s", 1},
	},
}

var (
	errAbsent   = errors.New("absent")
	errNegative = errors.New("negative value")
	errOverflow = errors.New("value out of range")
	errSyntax   = errors.New("not a number")
)

// numberState is the outcome of a numeric coercion.
type numberState uint8

const (
	numberAbsent numberState = iota
	numberOK
	numberInvalid
)

// toFloat coerces v into a non-negative float in canonical units. Bare
// numbers are multiplied by scale; text with a recognised unit suffix uses
// the suffix instead.
func toFloat(v any, scale float64, u unit) (float64, numberState) {
	f, err := rawFloat(v, scale, u)
	switch {
	case errors.Is(err, errAbsent):
		return 0, numberAbsent
	case err != nil:
		return 0, numberInvalid
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, numberInvalid
	}
	if f < 0 {
		return 0, numberInvalid
	}
	return f, numberOK
}

// toUint coerces v into a non-negative integer in canonical units. Integer
// inputs with an integral scale stay exact; everything else goes through
// toFloat and is rounded.
func toUint(v any, scale float64, u unit) (uint64, numberState) {
	if n, ok, err := exactUint(v, scale); ok {
		if err != nil {
			return 0, numberInvalid
		}
		return n, numberOK
	}
	f, state := toFloat(v, scale, u)
	if state != numberOK {
		return 0, state
	}
	f = math.Round(f)
	if f >= math.MaxUint64 {
		return 0, numberInvalid
	}
	return uint64(f), numberOK
}

// exactUint handles the common case of a native integer with an integral
// scale without a float round trip. ok is false when v is not a native
// integer.
func exactUint(v any, scale float64) (uint64, bool, error) {
	if scale != math.Trunc(scale) || scale < 1 || scale > math.MaxUint32 {
		return 0, false, nil
	}
	var n uint64
	switch t := v.(type) {
	case int, int8, int16, int32, int64:
		i := cast.ToInt64(t)
		if i < 0 {
			return 0, true, errNegative
		}
		n = uint64(i)
	case uint, uint8, uint16, uint32, uint64:
		n = cast.ToUint64(t)
	default:
		return 0, false, nil
	}
	m := uint64(scale)
	if n != 0 && n > math.MaxUint64/m {
		return 0, true, errOverflow
	}
	return n * m, true, nil
}

func rawFloat(v any, scale float64, u unit) (float64, error) {
	switch t := v.(type) {
	case nil:
		return 0, errAbsent
	case hardware.FixedPoint:
		return t.Float64() * scale, nil
	case *hardware.FixedPoint:
		if t == nil {
			return 0, errAbsent
		}
		return t.Float64() * scale, nil
	case json.Number:
		return parseUnitText(string(t), scale, u)
	case string:
		return parseUnitText(t, scale, u)
	case []byte:
		return parseUnitText(string(t), scale, u)
	case bool:
		return 0, errSyntax
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, errSyntax
	}
	return f * scale, nil
}

// parseUnitText parses "3.2 GHz", "16GiB", "1000Mb/s", "0x10" or a bare
// number.
func parseUnitText(s string, scale float64, u unit) (float64, error) {
	s = cleanText(s)
	if s == "" || isPlaceholder(s) {
		return 0, errAbsent
	}
	lower := strings.ToLower(strings.ReplaceAll(s, " ", ""))
	if strings.HasPrefix(lower, "-") {
		return 0, errNegative
	}
	if strings.HasPrefix(lower, "0x") {
		n, err := strconv.ParseUint(lower[2:], 16, 64)
		if err != nil {
			return 0, errSyntax
		}
		return float64(n) * scale, nil
	}
	if f, err := strconv.ParseFloat(lower, 64); err == nil {
		return f * scale, nil
	} else if errors.Is(err, strconv.ErrRange) {
		return 0, errOverflow
	}

	if u == unitBytes {
		n, err := humanize.ParseBytes(s)
		if err != nil {
			if strings.Contains(err.Error(), "too large") {
				return 0, errOverflow
			}
			return 0, errSyntax
		}
		return float64(n), nil
	}
	for _, sfx := range unitSuffixes[u] {
		if !strings.HasSuffix(lower, sfx.text) {
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSuffix(lower, sfx.text), 64)
		if err != nil {
			return 0, errSyntax
		}
		return f * sfx.scale, nil
	}
	return 0, errSyntax
}

// toBool accepts native booleans, numbers and the usual textual forms.
func toBool(v any) (bool, numberState) {
	if s, ok := v.(string); ok {
		s = strings.ToLower(cleanText(s))
		switch s {
		case "":
			return false, numberAbsent
		case "yes", "y", "on":
			return true, numberOK
		case "no", "n", "off":
			return false, numberOK
		}
		v = s
	}
	if v == nil {
		return false, numberAbsent
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return false, numberInvalid
	}
	return b, numberOK
}

func castString(v any) (string, error) {
	return cast.ToStringE(v)
}
