package array

import (
	"fmt"

	"github.com/tanaylab/dafgo/model"
)

// Major identifies the major axis of a 2D array: the axis along which
// its elements are contiguous and efficiently iterable.
type Major uint8

const (
	MajorNone Major = iota
	MajorRows
	MajorColumns
)

// String returns a human readable name for the major axis.
func (m Major) String() string {
	switch m {
	case MajorRows:
		return "rows"
	case MajorColumns:
		return "columns"
	}
	return "none"
}

// Flip returns the opposite major axis.
func (m Major) Flip() Major {
	switch m {
	case MajorRows:
		return MajorColumns
	case MajorColumns:
		return MajorRows
	}
	return MajorNone
}

// Matrix is a 2D property array keyed by an ordered pair of axes.
//
// Dense: Values holds Rows*Cols elements contiguous along the declared
// Major axis; Colptr and Rowval are nil.
//
// Sparse: compressed-sparse-column. Colptr holds Cols+1 zero-based
// column boundaries, Rowval the row index of each stored element and
// Values their values. Sparse matrices are always column-major.
type Matrix struct {
	Rows, Cols int
	Major      Major
	Values     Data
	Colptr     Ints
	Rowval     Ints
}

// DenseMatrix wraps a full buffer as a dense matrix with the given
// major axis. len(values) must equal rows*cols.
func DenseMatrix(rows, cols int, major Major, values Data) *Matrix {
	return &Matrix{Rows: rows, Cols: cols, Major: major, Values: values}
}

// SparseMatrix wraps compressed-sparse-column buffers as a matrix.
func SparseMatrix(rows, cols int, colptr, rowval Ints, values Data) *Matrix {
	return &Matrix{Rows: rows, Cols: cols, Major: MajorColumns, Colptr: colptr, Rowval: rowval, Values: values}
}

// Kind returns the element kind.
func (m *Matrix) Kind() model.Kind { return m.Values.Kind() }

// Form returns the matrix's storage form.
func (m *Matrix) Form() Form {
	if m.Colptr != nil {
		return FormSparse
	}
	return FormDense
}

// NNZ returns the number of stored elements of a sparse matrix.
func (m *Matrix) NNZ() int {
	if m.Colptr == nil {
		return m.Rows * m.Cols
	}
	return m.Rowval.Len()
}

// MajorAxis returns the matrix's major axis; sparse matrices are
// column-major by convention. A validated matrix never reports
// MajorNone.
func (m *Matrix) MajorAxis() Major {
	if m.Colptr != nil {
		return MajorColumns
	}
	return m.Major
}

// Validate checks the internal consistency of the matrix. A matrix
// with no detectable major axis is rejected here.
func (m *Matrix) Validate() error {
	if m.Values == nil {
		return fmt.Errorf("array: matrix with nil values")
	}
	if m.Rows < 0 || m.Cols < 0 {
		return fmt.Errorf("array: matrix with negative shape %dx%d", m.Rows, m.Cols)
	}
	if m.Colptr == nil {
		if m.Major != MajorRows && m.Major != MajorColumns {
			return fmt.Errorf("array: dense matrix with no major axis")
		}
		if m.Values.Len() != m.Rows*m.Cols {
			return fmt.Errorf("array: dense matrix of %d values for shape %dx%d", m.Values.Len(), m.Rows, m.Cols)
		}
		return nil
	}
	if m.Major != MajorColumns {
		return fmt.Errorf("array: sparse matrix must be column-major")
	}
	if m.Colptr.Len() != m.Cols+1 {
		return fmt.Errorf("array: sparse matrix with %d column boundaries for %d columns", m.Colptr.Len(), m.Cols)
	}
	nnz := m.Values.Len()
	if m.Rowval == nil || m.Rowval.Len() != nnz {
		return fmt.Errorf("array: sparse matrix with mismatched row indices and values")
	}
	if m.Colptr.Index(0) != 0 || m.Colptr.Index(m.Cols) != nnz {
		return fmt.Errorf("array: sparse matrix boundaries do not span [0, %d]", nnz)
	}
	for c := 0; c < m.Cols; c++ {
		lo, hi := m.Colptr.Index(c), m.Colptr.Index(c+1)
		if lo > hi {
			return fmt.Errorf("array: sparse matrix with decreasing boundary at column %d", c)
		}
		prev := -1
		for i := lo; i < hi; i++ {
			r := m.Rowval.Index(i)
			if r <= prev || r >= m.Rows {
				return fmt.Errorf("array: sparse matrix row index %d out of order or out of range [0, %d)", r, m.Rows)
			}
			prev = r
		}
	}
	return nil
}

// At returns the logical element at (row, col), materializing the
// default for unstored sparse positions.
func (m *Matrix) At(row, col int) model.Value {
	if m.Colptr == nil {
		if m.Major == MajorColumns {
			return m.Values.Value(col*m.Rows + row)
		}
		return m.Values.Value(row*m.Cols + col)
	}
	lo, hi := m.Colptr.Index(col), m.Colptr.Index(col+1)
	for lo < hi {
		mid := (lo + hi) / 2
		switch r := m.Rowval.Index(mid); {
		case r == row:
			return m.Values.Value(mid)
		case r < row:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return model.Zero(m.Kind())
}

// Transpose returns a zero-copy logical transpose of a dense matrix:
// the same values with rows and columns swapped and the major axis
// flipped. Sparse matrices cannot be transposed as a view; use the
// layout package's Relayout instead.
func (m *Matrix) Transpose() (*Matrix, error) {
	if m.Colptr != nil {
		return nil, fmt.Errorf("array: cannot transpose a compressed-sparse-column matrix as a view")
	}
	return &Matrix{
		Rows:   m.Cols,
		Cols:   m.Rows,
		Major:  m.Major.Flip(),
		Values: m.Values,
	}, nil
}

// Column returns a view of one column of a column-major dense matrix.
func (m *Matrix) Column(col int) (Data, error) {
	if m.Form() != FormDense || m.Major != MajorColumns {
		return nil, fmt.Errorf("array: column view requires a dense column-major matrix")
	}
	return m.Values.Slice(col*m.Rows, (col+1)*m.Rows), nil
}
