package array

import (
	"fmt"
	"unsafe"

	"github.com/tanaylab/dafgo/model"
)

// Fixed is the set of Go element types with a fixed byte width.
type Fixed interface {
	~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64 | ~bool
}

// Data is a typed element buffer. It is implemented by Slice[T] for
// fixed-width kinds and by Strings for String.
//
// Buffers may alias memory-mapped files; callers must treat buffers
// obtained from a read path as read-only.
type Data interface {
	Kind() model.Kind
	Len() int
	// Value returns the element at i boxed as a scalar.
	Value(i int) model.Value
	// SetValue stores v at i. v must already have the buffer's kind.
	SetValue(i int, v model.Value)
	// Slice returns a view of the elements in [i, j).
	Slice(i, j int) Data
}

// Slice is a Data over a Go slice of a fixed-width element type.
type Slice[T Fixed] struct {
	kind model.Kind
	v    []T
}

// Of wraps a Go slice as Data, inferring the kind from T.
func Of[T Fixed](v []T) Slice[T] {
	return Slice[T]{kind: kindOf[T](), v: v}
}

// Values returns the underlying Go slice.
func (s Slice[T]) Values() []T { return s.v }

func (s Slice[T]) Kind() model.Kind { return s.kind }

func (s Slice[T]) Len() int { return len(s.v) }

func (s Slice[T]) Slice(i, j int) Data { return Slice[T]{kind: s.kind, v: s.v[i:j]} }

func (s Slice[T]) Value(i int) model.Value {
	v, err := model.FromAny(s.v[i])
	if err != nil {
		panic(err)
	}
	return v
}

func (s Slice[T]) SetValue(i int, v model.Value) {
	s.v[i] = fromValue[T](v)
}

// Strings is a Data over a string slice.
type Strings []string

func (s Strings) Kind() model.Kind { return model.String }

func (s Strings) Len() int { return len(s) }

func (s Strings) Slice(i, j int) Data { return s[i:j] }

func (s Strings) Value(i int) model.Value { return model.StringValue(s[i]) }

func (s Strings) SetValue(i int, v model.Value) { s[i] = v.Str() }

func kindOf[T Fixed]() model.Kind {
	var zero T
	switch any(zero).(type) {
	case int8:
		return model.Int8
	case int16:
		return model.Int16
	case int32:
		return model.Int32
	case int64:
		return model.Int64
	case uint8:
		return model.UInt8
	case uint16:
		return model.UInt16
	case uint32:
		return model.UInt32
	case uint64:
		return model.UInt64
	case float32:
		return model.Float32
	case float64:
		return model.Float64
	case bool:
		return model.Bool
	}
	panic(fmt.Sprintf("array: unsupported element type %T", zero))
}

func fromValue[T Fixed](v model.Value) T {
	var out any
	switch any(*new(T)).(type) {
	case int8:
		out = int8(v.Int())
	case int16:
		out = int16(v.Int())
	case int32:
		out = int32(v.Int())
	case int64:
		out = v.Int()
	case uint8:
		out = uint8(v.Uint())
	case uint16:
		out = uint16(v.Uint())
	case uint32:
		out = uint32(v.Uint())
	case uint64:
		out = v.Uint()
	case float32:
		out = float32(v.Float())
	case float64:
		out = v.Float()
	case bool:
		out = v.Bool()
	}
	return out.(T)
}

// Make allocates a zeroed Data buffer of the given kind and length.
func Make(kind model.Kind, n int) (Data, error) {
	switch kind {
	case model.Int8:
		return Of(make([]int8, n)), nil
	case model.Int16:
		return Of(make([]int16, n)), nil
	case model.Int32:
		return Of(make([]int32, n)), nil
	case model.Int64:
		return Of(make([]int64, n)), nil
	case model.UInt8:
		return Of(make([]uint8, n)), nil
	case model.UInt16:
		return Of(make([]uint16, n)), nil
	case model.UInt32:
		return Of(make([]uint32, n)), nil
	case model.UInt64:
		return Of(make([]uint64, n)), nil
	case model.Float32:
		return Of(make([]float32, n)), nil
	case model.Float64:
		return Of(make([]float64, n)), nil
	case model.Bool:
		return Of(make([]bool, n)), nil
	case model.String:
		return make(Strings, n), nil
	}
	return nil, fmt.Errorf("array: cannot allocate buffer of kind %s", kind)
}

// Fill sets every element of d to v (converted to d's kind).
func Fill(d Data, v model.Value) error {
	cv, err := v.Convert(d.Kind())
	if err != nil {
		return err
	}
	for i := 0; i < d.Len(); i++ {
		d.SetValue(i, cv)
	}
	return nil
}

// Convert copies src into dst element-wise, converting kinds.
// Lengths must match.
func Convert(dst, src Data) error {
	if dst.Len() != src.Len() {
		return fmt.Errorf("array: convert length mismatch: %d vs %d", dst.Len(), src.Len())
	}
	if dst.Kind() == src.Kind() {
		Copy(dst, src)
		return nil
	}
	kind := dst.Kind()
	for i := 0; i < src.Len(); i++ {
		v, err := src.Value(i).Convert(kind)
		if err != nil {
			return err
		}
		dst.SetValue(i, v)
	}
	return nil
}

// Copy copies src into dst. Kinds and lengths must match.
func Copy(dst, src Data) {
	if dst.Kind() != src.Kind() || dst.Len() != src.Len() {
		panic(fmt.Sprintf("array: copy of %s[%d] into %s[%d]",
			src.Kind(), src.Len(), dst.Kind(), dst.Len()))
	}
	switch d := dst.(type) {
	case Strings:
		copy(d, src.(Strings))
	default:
		copy(AsBytes(dst), AsBytes(src))
	}
}

// AsBytes returns the raw little-endian byte view of a fixed-width
// buffer. The returned slice aliases the buffer's memory.
func AsBytes(d Data) []byte {
	switch s := d.(type) {
	case Slice[int8]:
		return castBytes(s.v)
	case Slice[int16]:
		return castBytes(s.v)
	case Slice[int32]:
		return castBytes(s.v)
	case Slice[int64]:
		return castBytes(s.v)
	case Slice[uint8]:
		return castBytes(s.v)
	case Slice[uint16]:
		return castBytes(s.v)
	case Slice[uint32]:
		return castBytes(s.v)
	case Slice[uint64]:
		return castBytes(s.v)
	case Slice[float32]:
		return castBytes(s.v)
	case Slice[float64]:
		return castBytes(s.v)
	case Slice[bool]:
		return castBytes(s.v)
	}
	panic(fmt.Sprintf("array: no byte view for kind %s", d.Kind()))
}

// FromBytes casts a raw little-endian payload into a typed buffer of
// the given kind. The buffer aliases b, which may be a memory-mapped
// region. The payload length must be a multiple of the element size.
func FromBytes(kind model.Kind, b []byte) (Data, error) {
	size := kind.Size()
	if size == 0 {
		return nil, fmt.Errorf("array: no byte view for kind %s", kind)
	}
	if len(b)%size != 0 {
		return nil, fmt.Errorf("array: payload of %d bytes is not a whole number of %s elements", len(b), kind)
	}
	n := len(b) / size
	switch kind {
	case model.Int8:
		return Of(castSlice[int8](b, n)), nil
	case model.Int16:
		return Of(castSlice[int16](b, n)), nil
	case model.Int32:
		return Of(castSlice[int32](b, n)), nil
	case model.Int64:
		return Of(castSlice[int64](b, n)), nil
	case model.UInt8:
		return Of(castSlice[uint8](b, n)), nil
	case model.UInt16:
		return Of(castSlice[uint16](b, n)), nil
	case model.UInt32:
		return Of(castSlice[uint32](b, n)), nil
	case model.UInt64:
		return Of(castSlice[uint64](b, n)), nil
	case model.Float32:
		return Of(castSlice[float32](b, n)), nil
	case model.Float64:
		return Of(castSlice[float64](b, n)), nil
	case model.Bool:
		return Of(castSlice[bool](b, n)), nil
	}
	return nil, fmt.Errorf("array: no byte view for kind %s", kind)
}

func castBytes[T Fixed](v []T) []byte {
	if len(v) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*int(unsafe.Sizeof(zero)))
}

func castSlice[T Fixed](b []byte, n int) []T {
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&b[0])), n)
}
