package storage

import (
	"github.com/tanaylab/dafgo/array"
	"github.com/tanaylab/dafgo/internal/locker"
	"github.com/tanaylab/dafgo/model"
)

// Commit finalizes (ok == true) or abandons (ok == false) buffers
// handed out by a Begin* primitive. An abandoned property is absent,
// as if the Begin* call never happened.
type Commit func(ok bool) error

// Format is the primitive operation set a concrete backend implements.
//
// Format methods perform no validation and no locking: the Dataset
// wrapper validates arguments and acquires the lock at the public API
// boundary, and primitives assert the required lock through the base.
// Presence preconditions (axis exists, vector exists, ...) are
// guaranteed by the wrapper before a primitive runs.
type Format interface {
	// Base returns the shared state (name, lock) of the backend.
	Base() *FormatBase

	HasScalar(name string) bool
	ScalarNames() []string
	Scalar(name string) (model.Value, error)
	PutScalar(name string, value model.Value) error
	DropScalar(name string) error

	HasAxis(axis string) bool
	AxisNames() []string
	AxisEntries(axis string) ([]string, error)
	AxisLen(axis string) (int, error)
	PutAxis(axis string, entries []string) error
	DropAxis(axis string) error

	HasVector(axis, name string) bool
	VectorNames(axis string) []string
	Vector(axis, name string) (*array.Vector, error)
	PutVector(axis, name string, vector *array.Vector) error
	DropVector(axis, name string) error

	HasMatrix(rowsAxis, columnsAxis, name string) bool
	MatrixNames(rowsAxis, columnsAxis string) []string
	Matrix(rowsAxis, columnsAxis, name string) (*array.Matrix, error)
	PutMatrix(rowsAxis, columnsAxis, name string, matrix *array.Matrix) error
	DropMatrix(rowsAxis, columnsAxis, name string) error

	// BeginDenseVector returns an uninitialized buffer of size
	// elements for the caller to fill. Fixed-width kinds only.
	BeginDenseVector(axis, name string, kind model.Kind, size int) (array.Data, Commit, error)
	// BeginSparseVector returns uninitialized index and value buffers
	// for nnz stored elements.
	BeginSparseVector(axis, name string, kind model.Kind, size, nnz int, indKind model.Kind) (array.Ints, array.Data, Commit, error)
	// BeginDenseMatrix returns an uninitialized column-major buffer
	// of rows*cols elements.
	BeginDenseMatrix(rowsAxis, columnsAxis, name string, kind model.Kind, rows, cols int) (array.Data, Commit, error)
	// BeginSparseMatrix returns uninitialized compressed-sparse-column
	// buffers for nnz stored elements.
	BeginSparseMatrix(rowsAxis, columnsAxis, name string, kind model.Kind, rows, cols, nnz int, indKind model.Kind) (colptr, rowval array.Ints, values array.Data, commit Commit, err error)
}

// FormatBase carries the state shared by every backend: the dataset's
// display name and its read/write lock. Backends embed it.
type FormatBase struct {
	name   string
	mapped bool
	lock   locker.RW
}

// NewFormatBase creates the shared backend state. mapped declares
// whether the backend serves arrays from memory-mapped files; the
// cache uses it to classify entries for EmptyCache.
func NewFormatBase(name string, mapped bool) FormatBase {
	return FormatBase{name: name, mapped: mapped}
}

// Name returns the dataset's display name.
func (b *FormatBase) Name() string { return b.name }

// Mapped reports whether the backend serves arrays from memory-mapped
// files.
func (b *FormatBase) Mapped() bool { return b.mapped }

// Lock returns the dataset's read/write lock.
func (b *FormatBase) Lock() *locker.RW { return &b.lock }

// AssertRead panics unless the dataset lock is held. Backend read
// primitives call this as a guard against callers bypassing Wrap.
func (b *FormatBase) AssertRead(what string) { b.lock.AssertRead(what) }

// AssertWrite panics unless the dataset lock is held exclusively.
func (b *FormatBase) AssertWrite(what string) { b.lock.AssertWrite(what) }
