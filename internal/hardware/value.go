package hardware

import (
	"fmt"
	"math"
	"strconv"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindText
	KindUint
	KindFloat
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	}
	return "invalid"
}

// Value is a canonical device field value. The zero Value is invalid and
// never stored in a Device.
type Value struct {
	kind  Kind
	text  string
	num   uint64
	float float64
	flag  bool
}

// Text returns a text value.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Uint returns an unsigned integer value.
func Uint(n uint64) Value { return Value{kind: KindUint, num: n} }

// Float returns a floating point value.
func Float(f float64) Value { return Value{kind: KindFloat, float: f} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, flag: b} }

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// Valid reports whether v was built by one of the constructors.
func (v Value) Valid() bool { return v.kind != KindInvalid }

// AsText returns the text, or "" for other kinds.
func (v Value) AsText() string { return v.text }

// AsUint returns the integer, or 0 for other kinds.
func (v Value) AsUint() uint64 { return v.num }

// AsFloat returns the float, or 0 for other kinds.
func (v Value) AsFloat() float64 { return v.float }

// AsBool returns the boolean, or false for other kinds.
func (v Value) AsBool() bool { return v.flag }

// Unknown reports whether v carries the sentinel for "not reported" of its
// kind. Booleans are never unknown once set.
func (v Value) Unknown() bool {
	switch v.kind {
	case KindText:
		return v.text == ""
	case KindUint:
		return v.num == 0
	case KindFloat:
		return v.float == 0 || math.IsNaN(v.float)
	case KindBool:
		return false
	}
	return true
}

// Interface returns the value as a plain Go scalar for serialization.
func (v Value) Interface() any {
	switch v.kind {
	case KindText:
		return v.text
	case KindUint:
		return v.num
	case KindFloat:
		return v.float
	case KindBool:
		return v.flag
	}
	return nil
}

func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindUint:
		return strconv.FormatUint(v.num, 10)
	case KindFloat:
		return strconv.FormatFloat(v.float, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.flag)
	}
	return fmt.Sprintf("<%s>", v.kind)
}
