// Package storage defines the contract every dafgo backend satisfies:
// the Reader/Writer capability surface over scalars, axes, vectors and
// matrices, the two-phase pre-allocate/fill protocol, and the locking
// and dependency-cache discipline shared by all backends.
//
// Backends implement the low-level Format interface; Wrap layers the
// public Dataset API (validation, locking, caching) on top.
package storage

import (
	"github.com/tanaylab/dafgo/array"
	"github.com/tanaylab/dafgo/model"
)

// ReservedName is the per-axis vector name that holds the axis's own
// entry names. It is always readable and never writable.
const ReservedName = "name"

// Reader is the read-side capability of a dataset.
//
// Implementations are safe for concurrent use; any number of readers
// may run in parallel.
type Reader interface {
	// Name returns the dataset's display name.
	Name() string

	// HasScalar reports whether a scalar exists.
	HasScalar(name string) bool
	// ScalarNames returns the sorted names of all scalars.
	ScalarNames() []string
	// GetScalar returns a scalar's value.
	GetScalar(name string) (model.Value, error)

	// HasAxis reports whether an axis exists.
	HasAxis(axis string) bool
	// AxisNames returns the sorted names of all axes.
	AxisNames() []string
	// GetAxis returns an axis's entry names in order.
	GetAxis(axis string) ([]string, error)
	// AxisLength returns the number of entries of an axis.
	AxisLength(axis string) (int, error)

	// HasVector reports whether a vector exists. The reserved name is
	// always present for an existing axis.
	HasVector(axis, name string) (bool, error)
	// VectorNames returns the sorted property names of an axis's
	// vectors, excluding the reserved name.
	VectorNames(axis string) ([]string, error)
	// GetVector returns a vector. Asking for the reserved name
	// returns the axis's entry names as a dense string vector.
	GetVector(axis, name string) (*array.Vector, error)

	// HasMatrix reports whether a matrix is stored under this exact
	// axis order.
	HasMatrix(rowsAxis, columnsAxis, name string) (bool, error)
	// MatrixNames returns the sorted property names of the matrices
	// stored under this exact axis order.
	MatrixNames(rowsAxis, columnsAxis string) ([]string, error)
	// GetMatrix returns a matrix stored under this exact axis order.
	GetMatrix(rowsAxis, columnsAxis, name string) (*array.Matrix, error)
}

// Writer is the full capability of a mutable dataset.
//
// Every mutation takes explicit flags: overwrite for set operations
// (default-reject) and mustExist for deletions.
type Writer interface {
	Reader

	// SetScalar creates or (with overwrite) replaces a scalar.
	SetScalar(name string, value model.Value, overwrite bool) error
	// DeleteScalar removes a scalar.
	DeleteScalar(name string, mustExist bool) error

	// AddAxis creates an axis from its entry names, which must be
	// unique. Axes are immutable once created.
	AddAxis(axis string, entries []string) error
	// DeleteAxis removes an axis and cascades to every vector and
	// matrix keyed by it.
	DeleteAxis(axis string, mustExist bool) error

	// SetVector creates or replaces a vector, length-checked against
	// its axis.
	SetVector(axis, name string, vector *array.Vector, overwrite bool) error
	// SetVectorFill materializes a vector uniformly filled with a
	// scalar; a default fill yields an empty sparse vector.
	SetVectorFill(axis, name string, fill model.Value, overwrite bool) error
	// DeleteVector removes a vector.
	DeleteVector(axis, name string, mustExist bool) error

	// SetMatrix creates or replaces a matrix, shape-checked against
	// its axes.
	SetMatrix(rowsAxis, columnsAxis, name string, matrix *array.Matrix, overwrite bool) error
	// SetMatrixFill materializes a matrix uniformly filled with a
	// scalar; a default fill yields an empty sparse matrix.
	SetMatrixFill(rowsAxis, columnsAxis, name string, fill model.Value, overwrite bool) error
	// DeleteMatrix removes a matrix (this exact axis order only).
	DeleteMatrix(rowsAxis, columnsAxis, name string, mustExist bool) error

	// CreateDenseVector pre-allocates an uninitialized dense vector
	// buffer (possibly memory-mapped) and passes it to fill. The
	// vector becomes present only if fill returns nil.
	CreateDenseVector(axis, name string, kind model.Kind, overwrite bool, fill func(array.Data) error) error
	// CreateSparseVector pre-allocates uninitialized index and value
	// buffers for a sparse vector with nnz stored elements.
	CreateSparseVector(axis, name string, kind model.Kind, nnz int, indKind model.Kind, overwrite bool,
		fill func(indices array.Ints, values array.Data) error) error
	// CreateDenseMatrix pre-allocates an uninitialized column-major
	// dense matrix buffer.
	CreateDenseMatrix(rowsAxis, columnsAxis, name string, kind model.Kind, overwrite bool,
		fill func(array.Data) error) error
	// CreateSparseMatrix pre-allocates uninitialized
	// compressed-sparse-column buffers with nnz stored elements.
	CreateSparseMatrix(rowsAxis, columnsAxis, name string, kind model.Kind, nnz int, indKind model.Kind,
		overwrite bool, fill func(colptr, rowval array.Ints, values array.Data) error) error

	// RelayoutMatrix derives and stores the flipped-layout copy of a
	// stored matrix under the flipped axis order, and returns it.
	// Square matrices are refused.
	RelayoutMatrix(rowsAxis, columnsAxis, name string) (*array.Matrix, error)
}
