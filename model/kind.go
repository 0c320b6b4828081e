package model

import "fmt"

// Kind identifies an element type of scalars, vectors and matrices.
//
// The set is closed: every supported combination of element type and
// storage form is enumerated explicitly rather than dispatched through
// open-ended reflection.
type Kind uint8

const (
	KindInvalid Kind = iota
	Int8
	Int16
	Int32
	Int64
	UInt8
	UInt16
	UInt32
	UInt64
	Float32
	Float64
	Bool
	String
)

var kindNames = map[Kind]string{
	Int8:    "Int8",
	Int16:   "Int16",
	Int32:   "Int32",
	Int64:   "Int64",
	UInt8:   "UInt8",
	UInt16:  "UInt16",
	UInt32:  "UInt32",
	UInt64:  "UInt64",
	Float32: "Float32",
	Float64: "Float64",
	Bool:    "Bool",
	String:  "String",
}

var kindSizes = map[Kind]int{
	Int8:    1,
	Int16:   2,
	Int32:   4,
	Int64:   8,
	UInt8:   1,
	UInt16:  2,
	UInt32:  4,
	UInt64:  8,
	Float32: 4,
	Float64: 8,
	Bool:    1,
	String:  0,
}

// String returns the stable on-disk name of the kind ("Int64", "Bool", ...).
// These names appear in JSON sidecar files and must not change.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Size returns the fixed element width in bytes, or 0 for String.
func (k Kind) Size() int {
	return kindSizes[k]
}

// IsFixed reports whether elements of this kind have a fixed byte width.
// Only fixed-width kinds may back pre-allocated (possibly memory-mapped)
// buffers.
func (k Kind) IsFixed() bool {
	return k != KindInvalid && k != String
}

// IsNumeric reports whether the kind is an integer or float type.
func (k Kind) IsNumeric() bool {
	switch k {
	case Int8, Int16, Int32, Int64, UInt8, UInt16, UInt32, UInt64, Float32, Float64:
		return true
	}
	return false
}

// IsSigned reports whether the kind is a signed integer type.
func (k Kind) IsSigned() bool {
	switch k {
	case Int8, Int16, Int32, Int64:
		return true
	}
	return false
}

// IsUnsigned reports whether the kind is an unsigned integer type.
func (k Kind) IsUnsigned() bool {
	switch k {
	case UInt8, UInt16, UInt32, UInt64:
		return true
	}
	return false
}

// IsFloat reports whether the kind is a floating point type.
func (k Kind) IsFloat() bool {
	return k == Float32 || k == Float64
}

// IsIndex reports whether the kind may be used for sparse index buffers.
func (k Kind) IsIndex() bool {
	switch k {
	case Int32, Int64, UInt32, UInt64:
		return true
	}
	return false
}

// ParseKind maps an on-disk type name back to its Kind.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return KindInvalid, fmt.Errorf("model: unsupported element type name: %q", name)
}
