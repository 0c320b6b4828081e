package array

import (
	"fmt"

	"github.com/tanaylab/dafgo/model"
)

// IndexElem is the set of Go types allowed for sparse index buffers.
type IndexElem interface {
	~int32 | ~int64 | ~uint32 | ~uint64
}

// Ints is an index buffer used for sparse vector indices and for the
// column-boundary and row-index arrays of compressed-sparse-column
// matrices. Indices are zero-based.
type Ints interface {
	Kind() model.Kind
	Len() int
	Index(i int) int
	SetIndex(i int, v int)
}

// IndexSlice is an Ints over a Go slice of an index element type.
type IndexSlice[T IndexElem] struct {
	kind model.Kind
	v    []T
}

// IndicesOf wraps a Go slice as an index buffer.
func IndicesOf[T IndexElem](v []T) IndexSlice[T] {
	var zero T
	var kind model.Kind
	switch any(zero).(type) {
	case int32:
		kind = model.Int32
	case int64:
		kind = model.Int64
	case uint32:
		kind = model.UInt32
	case uint64:
		kind = model.UInt64
	default:
		panic(fmt.Sprintf("array: unsupported index type %T", zero))
	}
	return IndexSlice[T]{kind: kind, v: v}
}

// Values returns the underlying Go slice.
func (s IndexSlice[T]) Values() []T { return s.v }

func (s IndexSlice[T]) Kind() model.Kind { return s.kind }

func (s IndexSlice[T]) Len() int { return len(s.v) }

func (s IndexSlice[T]) Index(i int) int { return int(s.v[i]) }

func (s IndexSlice[T]) SetIndex(i int, v int) { s.v[i] = T(v) }

// MakeInts allocates a zeroed index buffer of the given kind and length.
func MakeInts(kind model.Kind, n int) (Ints, error) {
	switch kind {
	case model.Int32:
		return IndicesOf(make([]int32, n)), nil
	case model.Int64:
		return IndicesOf(make([]int64, n)), nil
	case model.UInt32:
		return IndicesOf(make([]uint32, n)), nil
	case model.UInt64:
		return IndicesOf(make([]uint64, n)), nil
	}
	return nil, fmt.Errorf("array: kind %s cannot index a sparse array", kind)
}

// IntsAsBytes returns the raw little-endian byte view of an index buffer.
func IntsAsBytes(ix Ints) []byte {
	switch s := ix.(type) {
	case IndexSlice[int32]:
		return castBytes(s.v)
	case IndexSlice[int64]:
		return castBytes(s.v)
	case IndexSlice[uint32]:
		return castBytes(s.v)
	case IndexSlice[uint64]:
		return castBytes(s.v)
	}
	panic(fmt.Sprintf("array: no byte view for index kind %s", ix.Kind()))
}

// IntsFromBytes casts a raw little-endian payload into an index buffer.
func IntsFromBytes(kind model.Kind, b []byte) (Ints, error) {
	size := kind.Size()
	if !kind.IsIndex() {
		return nil, fmt.Errorf("array: kind %s cannot index a sparse array", kind)
	}
	if len(b)%size != 0 {
		return nil, fmt.Errorf("array: payload of %d bytes is not a whole number of %s elements", len(b), kind)
	}
	n := len(b) / size
	switch kind {
	case model.Int32:
		return IndicesOf(castSlice[int32](b, n)), nil
	case model.Int64:
		return IndicesOf(castSlice[int64](b, n)), nil
	case model.UInt32:
		return IndicesOf(castSlice[uint32](b, n)), nil
	case model.UInt64:
		return IndicesOf(castSlice[uint64](b, n)), nil
	}
	return nil, fmt.Errorf("array: kind %s cannot index a sparse array", kind)
}

// CopyInts copies src into dst element-wise, converting index kinds if
// they differ. Lengths must match.
func CopyInts(dst, src Ints) error {
	if dst.Len() != src.Len() {
		return fmt.Errorf("array: index copy length mismatch: %d vs %d", dst.Len(), src.Len())
	}
	for i := 0; i < src.Len(); i++ {
		dst.SetIndex(i, src.Index(i))
	}
	return nil
}
