package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// placeholders are firmware filler strings that mean "not reported".
var placeholders = map[string]struct{}{
	"to be filled by o.e.m.":  {},
	"to be filled by oem":     {},
	"default string":          {},
	"not specified":           {},
	"not available":           {},
	"not applicable":          {},
	"n/a":                     {},
	"na":                      {},
	"none":                    {},
	"null":                    {},
	"unknown":                 {},
	"undefined":               {},
	"system product name":     {},
	"system manufacturer":     {},
	"system serial number":    {},
	"system version":          {},
	"base board product name": {},
	"o.e.m.":                  {},
	"oem":                     {},
	"0123456789":              {},
	"123456789":               {},
	"00000000":                {},
	"0000000000000000":        {},
	"xxxxxxxxxxxxxxxx":        {},
}

// cleanText repairs invalid UTF-8, turns every kind of whitespace into a
// plain space, drops NUL and other non-printable runes, and trims the result.
func cleanText(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToValidUTF8(s, "")
	t := transform.Chain(
		runes.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return ' '
			}
			return r
		}),
		runes.Remove(runes.Predicate(func(r rune) bool {
			return !unicode.IsPrint(r)
		})),
	)
	out, _, err := transform.String(t, s)
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(out)
}

// isPlaceholder reports whether a cleaned string is firmware filler.
func isPlaceholder(s string) bool {
	lower := strings.ToLower(s)
	if _, ok := placeholders[lower]; ok {
		return true
	}
	key := strings.Trim(lower, " .!-")
	if key == "" {
		return true
	}
	_, ok := placeholders[key]
	return ok
}

// rawText renders a raw value as cleaned text. Numbers keep their decimal
// form; values that cannot be rendered report ok=false.
func rawText(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", true
	case string:
		return cleanText(t), true
	case []byte:
		return cleanText(string(t)), true
	case *string:
		if t == nil {
			return "", true
		}
		return cleanText(*t), true
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		s, err := castString(t)
		if err != nil {
			return "", false
		}
		return s, true
	case interface{ String() string }:
		return cleanText(t.String()), true
	}
	return "", false
}

// fold reduces a raw key to its lookup form: lower-case letters and digits.
func fold(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
