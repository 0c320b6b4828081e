package array

import (
	"fmt"

	"github.com/tanaylab/dafgo/model"
)

// Form distinguishes the storage form of a vector or matrix.
type Form uint8

const (
	FormDense Form = iota
	FormSparse
)

// String returns the on-disk form name.
func (f Form) String() string {
	if f == FormSparse {
		return "sparse"
	}
	return "dense"
}

// ParseForm maps an on-disk form name back to its Form.
func ParseForm(name string) (Form, error) {
	switch name {
	case "dense":
		return FormDense, nil
	case "sparse":
		return FormSparse, nil
	}
	return FormDense, fmt.Errorf("array: unsupported storage form: %q", name)
}

// Vector is a 1D property array keyed by a single axis.
//
// Dense: Values holds Size elements, Indices is nil.
// Sparse: Indices holds the sorted zero-based positions of the stored
// (non-default) elements and Values holds their values; all other
// positions hold the kind's default.
type Vector struct {
	Size    int
	Values  Data
	Indices Ints
}

// DenseVector wraps a full-length buffer as a dense vector.
func DenseVector(values Data) *Vector {
	return &Vector{Size: values.Len(), Values: values}
}

// SparseVector wraps index and value buffers as a sparse vector of
// logical length size.
func SparseVector(size int, indices Ints, values Data) *Vector {
	return &Vector{Size: size, Values: values, Indices: indices}
}

// Kind returns the element kind.
func (v *Vector) Kind() model.Kind { return v.Values.Kind() }

// Form returns the vector's storage form.
func (v *Vector) Form() Form {
	if v.Indices != nil {
		return FormSparse
	}
	return FormDense
}

// NNZ returns the number of stored elements of a sparse vector.
func (v *Vector) NNZ() int {
	if v.Indices == nil {
		return v.Size
	}
	return v.Indices.Len()
}

// Validate checks the internal consistency of the vector.
func (v *Vector) Validate() error {
	if v.Values == nil {
		return fmt.Errorf("array: vector with nil values")
	}
	if v.Indices == nil {
		if v.Values.Len() != v.Size {
			return fmt.Errorf("array: dense vector of %d values for size %d", v.Values.Len(), v.Size)
		}
		return nil
	}
	if v.Indices.Len() != v.Values.Len() {
		return fmt.Errorf("array: sparse vector with %d indices for %d values", v.Indices.Len(), v.Values.Len())
	}
	prev := -1
	for i := 0; i < v.Indices.Len(); i++ {
		ix := v.Indices.Index(i)
		if ix <= prev || ix >= v.Size {
			return fmt.Errorf("array: sparse vector index %d out of order or out of range [0, %d)", ix, v.Size)
		}
		prev = ix
	}
	return nil
}

// Value returns the logical element at position i, materializing the
// default for unstored sparse positions.
func (v *Vector) Value(i int) model.Value {
	if v.Indices == nil {
		return v.Values.Value(i)
	}
	// Binary search over the sorted index buffer.
	lo, hi := 0, v.Indices.Len()
	for lo < hi {
		mid := (lo + hi) / 2
		switch ix := v.Indices.Index(mid); {
		case ix == i:
			return v.Values.Value(mid)
		case ix < i:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return model.Zero(v.Kind())
}

// Dense returns the vector materialized as a dense buffer. For dense
// vectors the returned buffer aliases the vector's memory.
func (v *Vector) Dense() (Data, error) {
	if v.Indices == nil {
		return v.Values, nil
	}
	out, err := Make(v.Kind(), v.Size)
	if err != nil {
		return nil, err
	}
	for i := 0; i < v.Indices.Len(); i++ {
		out.SetValue(v.Indices.Index(i), v.Values.Value(i))
	}
	return out, nil
}
