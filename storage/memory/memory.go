// Package memory implements the in-memory dataset backend. Properties
// are stored by reference; callers that mutate an array after storing
// or fetching it see the change reflected in the dataset. Use it for
// scratch datasets and as the target of copies from disk.
package memory

import (
	"github.com/tanaylab/dafgo/array"
	"github.com/tanaylab/dafgo/model"
	"github.com/tanaylab/dafgo/storage"
)

type axisPair struct {
	rows string
	cols string
}

// Memory is the in-memory backend. It implements storage.Format; wrap
// it with storage.Wrap for the public API.
type Memory struct {
	base     storage.FormatBase
	scalars  map[string]model.Value
	axes     map[string][]string
	vectors  map[string]map[string]*array.Vector
	matrices map[axisPair]map[string]*array.Matrix
}

// New creates an empty in-memory dataset backend.
func New(name string) *Memory {
	return &Memory{
		base:     storage.NewFormatBase(name, false),
		scalars:  make(map[string]model.Value),
		axes:     make(map[string][]string),
		vectors:  make(map[string]map[string]*array.Vector),
		matrices: make(map[axisPair]map[string]*array.Matrix),
	}
}

var _ storage.Format = (*Memory)(nil)

// Base returns the shared backend state.
func (m *Memory) Base() *storage.FormatBase { return &m.base }

func (m *Memory) HasScalar(name string) bool {
	m.base.AssertRead("HasScalar")
	_, ok := m.scalars[name]
	return ok
}

func (m *Memory) ScalarNames() []string {
	m.base.AssertRead("ScalarNames")
	names := make([]string, 0, len(m.scalars))
	for name := range m.scalars {
		names = append(names, name)
	}
	return names
}

func (m *Memory) Scalar(name string) (model.Value, error) {
	m.base.AssertRead("Scalar")
	return m.scalars[name], nil
}

func (m *Memory) PutScalar(name string, value model.Value) error {
	m.base.AssertWrite("PutScalar")
	m.scalars[name] = value
	return nil
}

func (m *Memory) DropScalar(name string) error {
	m.base.AssertWrite("DropScalar")
	delete(m.scalars, name)
	return nil
}

func (m *Memory) HasAxis(axis string) bool {
	m.base.AssertRead("HasAxis")
	_, ok := m.axes[axis]
	return ok
}

func (m *Memory) AxisNames() []string {
	m.base.AssertRead("AxisNames")
	names := make([]string, 0, len(m.axes))
	for name := range m.axes {
		names = append(names, name)
	}
	return names
}

func (m *Memory) AxisEntries(axis string) ([]string, error) {
	m.base.AssertRead("AxisEntries")
	return m.axes[axis], nil
}

func (m *Memory) AxisLen(axis string) (int, error) {
	m.base.AssertRead("AxisLen")
	return len(m.axes[axis]), nil
}

func (m *Memory) PutAxis(axis string, entries []string) error {
	m.base.AssertWrite("PutAxis")
	m.axes[axis] = entries
	m.vectors[axis] = make(map[string]*array.Vector)
	return nil
}

func (m *Memory) DropAxis(axis string) error {
	m.base.AssertWrite("DropAxis")
	delete(m.axes, axis)
	delete(m.vectors, axis)
	for pair := range m.matrices {
		if pair.rows == axis || pair.cols == axis {
			delete(m.matrices, pair)
		}
	}
	return nil
}

func (m *Memory) HasVector(axis, name string) bool {
	m.base.AssertRead("HasVector")
	_, ok := m.vectors[axis][name]
	return ok
}

func (m *Memory) VectorNames(axis string) []string {
	m.base.AssertRead("VectorNames")
	names := make([]string, 0, len(m.vectors[axis]))
	for name := range m.vectors[axis] {
		names = append(names, name)
	}
	return names
}

func (m *Memory) Vector(axis, name string) (*array.Vector, error) {
	m.base.AssertRead("Vector")
	return m.vectors[axis][name], nil
}

func (m *Memory) PutVector(axis, name string, vector *array.Vector) error {
	m.base.AssertWrite("PutVector")
	m.vectors[axis][name] = vector
	return nil
}

func (m *Memory) DropVector(axis, name string) error {
	m.base.AssertWrite("DropVector")
	delete(m.vectors[axis], name)
	return nil
}

func (m *Memory) HasMatrix(rowsAxis, columnsAxis, name string) bool {
	m.base.AssertRead("HasMatrix")
	_, ok := m.matrices[axisPair{rowsAxis, columnsAxis}][name]
	return ok
}

func (m *Memory) MatrixNames(rowsAxis, columnsAxis string) []string {
	m.base.AssertRead("MatrixNames")
	stored := m.matrices[axisPair{rowsAxis, columnsAxis}]
	names := make([]string, 0, len(stored))
	for name := range stored {
		names = append(names, name)
	}
	return names
}

func (m *Memory) Matrix(rowsAxis, columnsAxis, name string) (*array.Matrix, error) {
	m.base.AssertRead("Matrix")
	return m.matrices[axisPair{rowsAxis, columnsAxis}][name], nil
}

func (m *Memory) PutMatrix(rowsAxis, columnsAxis, name string, matrix *array.Matrix) error {
	m.base.AssertWrite("PutMatrix")
	pair := axisPair{rowsAxis, columnsAxis}
	stored, ok := m.matrices[pair]
	if !ok {
		stored = make(map[string]*array.Matrix)
		m.matrices[pair] = stored
	}
	stored[name] = matrix
	return nil
}

func (m *Memory) DropMatrix(rowsAxis, columnsAxis, name string) error {
	m.base.AssertWrite("DropMatrix")
	delete(m.matrices[axisPair{rowsAxis, columnsAxis}], name)
	return nil
}

func (m *Memory) BeginDenseVector(axis, name string, kind model.Kind, size int) (array.Data, storage.Commit, error) {
	m.base.AssertWrite("BeginDenseVector")
	values, err := array.Make(kind, size)
	if err != nil {
		return nil, nil, err
	}
	commit := func(ok bool) error {
		if !ok {
			return nil
		}
		return m.PutVector(axis, name, array.DenseVector(values))
	}
	return values, commit, nil
}

func (m *Memory) BeginSparseVector(axis, name string, kind model.Kind, size, nnz int, indKind model.Kind) (array.Ints, array.Data, storage.Commit, error) {
	m.base.AssertWrite("BeginSparseVector")
	indices, err := array.MakeInts(indKind, nnz)
	if err != nil {
		return nil, nil, nil, err
	}
	values, err := array.Make(kind, nnz)
	if err != nil {
		return nil, nil, nil, err
	}
	commit := func(ok bool) error {
		if !ok {
			return nil
		}
		vector := array.SparseVector(size, indices, values)
		if err := vector.Validate(); err != nil {
			return err
		}
		return m.PutVector(axis, name, vector)
	}
	return indices, values, commit, nil
}

func (m *Memory) BeginDenseMatrix(rowsAxis, columnsAxis, name string, kind model.Kind, rows, cols int) (array.Data, storage.Commit, error) {
	m.base.AssertWrite("BeginDenseMatrix")
	values, err := array.Make(kind, rows*cols)
	if err != nil {
		return nil, nil, err
	}
	commit := func(ok bool) error {
		if !ok {
			return nil
		}
		return m.PutMatrix(rowsAxis, columnsAxis, name, array.DenseMatrix(rows, cols, array.MajorColumns, values))
	}
	return values, commit, nil
}

func (m *Memory) BeginSparseMatrix(rowsAxis, columnsAxis, name string, kind model.Kind, rows, cols, nnz int, indKind model.Kind) (array.Ints, array.Ints, array.Data, storage.Commit, error) {
	m.base.AssertWrite("BeginSparseMatrix")
	colptr, err := array.MakeInts(indKind, cols+1)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	rowval, err := array.MakeInts(indKind, nnz)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	values, err := array.Make(kind, nnz)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	commit := func(ok bool) error {
		if !ok {
			return nil
		}
		matrix := array.SparseMatrix(rows, cols, colptr, rowval, values)
		if err := matrix.Validate(); err != nil {
			return err
		}
		return m.PutMatrix(rowsAxis, columnsAxis, name, matrix)
	}
	return colptr, rowval, values, commit, nil
}
