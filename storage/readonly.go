package storage

import (
	"github.com/tanaylab/dafgo/array"
	"github.com/tanaylab/dafgo/model"
)

// ReadOnly is a read-only view of a dataset. It exposes no mutating
// methods at the type level, so read-only access is enforced by the
// compiler rather than by runtime checks.
type ReadOnly struct {
	d *Dataset
}

var _ Reader = (*ReadOnly)(nil)

// Name returns the dataset's display name.
func (r *ReadOnly) Name() string { return r.d.Name() }

// HasScalar reports whether a scalar exists.
func (r *ReadOnly) HasScalar(name string) bool { return r.d.HasScalar(name) }

// ScalarNames returns the sorted names of all scalars.
func (r *ReadOnly) ScalarNames() []string { return r.d.ScalarNames() }

// GetScalar returns a scalar's value.
func (r *ReadOnly) GetScalar(name string) (model.Value, error) { return r.d.GetScalar(name) }

// HasAxis reports whether an axis exists.
func (r *ReadOnly) HasAxis(axis string) bool { return r.d.HasAxis(axis) }

// AxisNames returns the sorted names of all axes.
func (r *ReadOnly) AxisNames() []string { return r.d.AxisNames() }

// GetAxis returns an axis's entry names in order.
func (r *ReadOnly) GetAxis(axis string) ([]string, error) { return r.d.GetAxis(axis) }

// AxisLength returns the number of entries of an axis.
func (r *ReadOnly) AxisLength(axis string) (int, error) { return r.d.AxisLength(axis) }

// HasVector reports whether a vector exists.
func (r *ReadOnly) HasVector(axis, name string) (bool, error) { return r.d.HasVector(axis, name) }

// VectorNames returns the sorted property names of an axis's vectors.
func (r *ReadOnly) VectorNames(axis string) ([]string, error) { return r.d.VectorNames(axis) }

// GetVector returns a vector.
func (r *ReadOnly) GetVector(axis, name string) (*array.Vector, error) {
	return r.d.GetVector(axis, name)
}

// HasMatrix reports whether a matrix is stored under this exact axis
// order.
func (r *ReadOnly) HasMatrix(rowsAxis, columnsAxis, name string) (bool, error) {
	return r.d.HasMatrix(rowsAxis, columnsAxis, name)
}

// MatrixNames returns the sorted property names of the matrices
// stored under this exact axis order.
func (r *ReadOnly) MatrixNames(rowsAxis, columnsAxis string) ([]string, error) {
	return r.d.MatrixNames(rowsAxis, columnsAxis)
}

// GetMatrix returns a matrix stored under this exact axis order.
func (r *ReadOnly) GetMatrix(rowsAxis, columnsAxis, name string) (*array.Matrix, error) {
	return r.d.GetMatrix(rowsAxis, columnsAxis, name)
}
