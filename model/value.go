package model

import (
	"fmt"
	"math"
	"strconv"
)

// Value is a tagged scalar over the supported Kind set.
//
// Numeric payloads are held as raw bits; the zero Value is invalid.
// Values are immutable and safe to copy.
type Value struct {
	kind Kind
	bits uint64
	str  string
}

// IntValue creates a signed integer value of the given kind.
func IntValue(kind Kind, v int64) Value {
	if !kind.IsSigned() {
		panic(fmt.Sprintf("model: IntValue with non-signed kind %s", kind))
	}
	return Value{kind: kind, bits: uint64(v)}
}

// UintValue creates an unsigned integer value of the given kind.
func UintValue(kind Kind, v uint64) Value {
	if !kind.IsUnsigned() {
		panic(fmt.Sprintf("model: UintValue with non-unsigned kind %s", kind))
	}
	return Value{kind: kind, bits: v}
}

// FloatValue creates a floating point value of the given kind.
func FloatValue(kind Kind, v float64) Value {
	switch kind {
	case Float32:
		return Value{kind: kind, bits: uint64(math.Float32bits(float32(v)))}
	case Float64:
		return Value{kind: kind, bits: math.Float64bits(v)}
	}
	panic(fmt.Sprintf("model: FloatValue with non-float kind %s", kind))
}

// BoolValue creates a Bool value.
func BoolValue(v bool) Value {
	var bits uint64
	if v {
		bits = 1
	}
	return Value{kind: Bool, bits: bits}
}

// StringValue creates a String value.
func StringValue(v string) Value {
	return Value{kind: String, str: v}
}

// FromAny converts a plain Go value into a Value, inferring the kind.
// Supported inputs are the Go types matching the Kind set plus int and uint.
func FromAny(v any) (Value, error) {
	switch x := v.(type) {
	case Value:
		return x, nil
	case int8:
		return IntValue(Int8, int64(x)), nil
	case int16:
		return IntValue(Int16, int64(x)), nil
	case int32:
		return IntValue(Int32, int64(x)), nil
	case int64:
		return IntValue(Int64, x), nil
	case int:
		return IntValue(Int64, int64(x)), nil
	case uint8:
		return UintValue(UInt8, uint64(x)), nil
	case uint16:
		return UintValue(UInt16, uint64(x)), nil
	case uint32:
		return UintValue(UInt32, uint64(x)), nil
	case uint64:
		return UintValue(UInt64, x), nil
	case uint:
		return UintValue(UInt64, uint64(x)), nil
	case float32:
		return FloatValue(Float32, float64(x)), nil
	case float64:
		return FloatValue(Float64, x), nil
	case bool:
		return BoolValue(x), nil
	case string:
		return StringValue(x), nil
	}
	return Value{}, fmt.Errorf("model: unsupported scalar type %T", v)
}

// Zero returns the default value of a kind: numeric zero, false, or "".
func Zero(kind Kind) Value {
	switch {
	case kind.IsSigned():
		return IntValue(kind, 0)
	case kind.IsUnsigned():
		return UintValue(kind, 0)
	case kind.IsFloat():
		return FloatValue(kind, 0)
	case kind == Bool:
		return BoolValue(false)
	case kind == String:
		return StringValue("")
	}
	panic(fmt.Sprintf("model: Zero of invalid kind %s", kind))
}

// Kind returns the value's element kind.
func (v Value) Kind() Kind { return v.kind }

// IsValid reports whether the value carries a kind.
func (v Value) IsValid() bool { return v.kind != KindInvalid }

// IsDefault reports whether the value equals the default of its kind
// (numeric zero, false, empty string). Default values are the ones a
// sparse representation omits.
func (v Value) IsDefault() bool {
	if v.kind == String {
		return v.str == ""
	}
	return v.bits == 0
}

// Int returns the value as a signed integer.
// Valid for signed integer and Bool kinds.
func (v Value) Int() int64 {
	switch {
	case v.kind.IsSigned():
		switch v.kind {
		case Int8:
			return int64(int8(v.bits))
		case Int16:
			return int64(int16(v.bits))
		case Int32:
			return int64(int32(v.bits))
		default:
			return int64(v.bits)
		}
	case v.kind == Bool:
		return int64(v.bits)
	}
	panic(fmt.Sprintf("model: Int of %s value", v.kind))
}

// Uint returns the value as an unsigned integer.
func (v Value) Uint() uint64 {
	if !v.kind.IsUnsigned() && v.kind != Bool {
		panic(fmt.Sprintf("model: Uint of %s value", v.kind))
	}
	return v.bits
}

// Float returns the value as a float64. Valid for float kinds.
func (v Value) Float() float64 {
	switch v.kind {
	case Float32:
		return float64(math.Float32frombits(uint32(v.bits)))
	case Float64:
		return math.Float64frombits(v.bits)
	}
	panic(fmt.Sprintf("model: Float of %s value", v.kind))
}

// Bool returns the value as a bool.
func (v Value) Bool() bool {
	if v.kind != Bool {
		panic(fmt.Sprintf("model: Bool of %s value", v.kind))
	}
	return v.bits != 0
}

// Str returns the value as a string. Valid for String kind only.
func (v Value) Str() string {
	if v.kind != String {
		panic(fmt.Sprintf("model: Str of %s value", v.kind))
	}
	return v.str
}

// AsFloat returns a numeric or Bool value widened to float64.
func (v Value) AsFloat() (float64, error) {
	switch {
	case v.kind.IsSigned():
		return float64(v.Int()), nil
	case v.kind.IsUnsigned():
		return float64(v.bits), nil
	case v.kind.IsFloat():
		return v.Float(), nil
	case v.kind == Bool:
		return float64(v.bits), nil
	}
	return 0, fmt.Errorf("model: %s value is not numeric", v.kind)
}

// Convert returns the value converted to a different kind.
// String converts only to String; numeric and Bool kinds interconvert
// through float64 widening.
func (v Value) Convert(kind Kind) (Value, error) {
	if kind == v.kind {
		return v, nil
	}
	if v.kind == String || kind == String {
		return Value{}, fmt.Errorf("model: cannot convert %s value to %s", v.kind, kind)
	}
	f, err := v.AsFloat()
	if err != nil {
		return Value{}, err
	}
	switch {
	case kind.IsSigned():
		return IntValue(kind, int64(f)), nil
	case kind.IsUnsigned():
		return UintValue(kind, uint64(f)), nil
	case kind.IsFloat():
		return FloatValue(kind, f), nil
	case kind == Bool:
		return BoolValue(f != 0), nil
	}
	return Value{}, fmt.Errorf("model: cannot convert to kind %s", kind)
}

// String renders the value for error messages and logs.
func (v Value) String() string {
	switch {
	case v.kind == KindInvalid:
		return "<invalid>"
	case v.kind == String:
		return strconv.Quote(v.str)
	case v.kind == Bool:
		return strconv.FormatBool(v.bits != 0)
	case v.kind.IsSigned():
		return strconv.FormatInt(v.Int(), 10)
	case v.kind.IsUnsigned():
		return strconv.FormatUint(v.bits, 10)
	default:
		return strconv.FormatFloat(v.Float(), 'g', -1, 64)
	}
}
