// Package layout implements the matrix layout engine: major axis
// inspection and relayout (producing the same logical matrix
// re-indexed under the flipped axis order, so that its memory layout
// is efficient along the opposite axis) for dense and
// compressed-sparse-column representations.
package layout

import (
	"fmt"

	"github.com/tanaylab/dafgo/array"
	"github.com/tanaylab/dafgo/model"
)

// transposeBlock is the edge of the square tile used by the blocked
// dense transpose. The tile fits the cache on both the read and the
// write side, so neither buffer is streamed against its long stride.
const transposeBlock = 64

// MajorAxis returns the major axis of a matrix representation.
// Compressed-sparse-column matrices are always column-major; an
// invalid dense representation reports MajorNone.
func MajorAxis(m *array.Matrix) array.Major {
	if m == nil || m.Values == nil {
		return array.MajorNone
	}
	if m.Form() == array.FormSparse {
		return array.MajorColumns
	}
	if m.Values.Len() != m.Rows*m.Cols {
		return array.MajorNone
	}
	return m.Major
}

// Relayout produces the transposed representation of a matrix in a
// freshly allocated buffer: the result has the flipped shape and
// result.At(c, r) == m.At(r, c). Storing it under the flipped axis
// order yields the same logical property with the opposite effective
// major axis.
//
// Dense input yields a dense output via a cache-blocked transpose.
// Sparse input yields a sparse output whose compressed structure is
// recomputed for the flipped orientation.
func Relayout(m *array.Matrix) (*array.Matrix, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if m.Form() == array.FormSparse {
		nnz := m.NNZ()
		colptr, err := array.MakeInts(m.Colptr.Kind(), m.Rows+1)
		if err != nil {
			return nil, err
		}
		rowval, err := array.MakeInts(m.Rowval.Kind(), nnz)
		if err != nil {
			return nil, err
		}
		values, err := array.Make(m.Kind(), nnz)
		if err != nil {
			return nil, err
		}
		out := array.SparseMatrix(m.Cols, m.Rows, colptr, rowval, values)
		scatterTransposed(out, m)
		return out, nil
	}
	values, err := array.Make(m.Kind(), m.Rows*m.Cols)
	if err != nil {
		return nil, err
	}
	out := array.DenseMatrix(m.Cols, m.Rows, m.Major, values)
	transposeInto(out, m)
	return out, nil
}

// RelayoutInto fills a caller-provided dense destination with the
// transposed representation of a dense source. The destination buffer
// may be memory-mapped; it must have the flipped shape and the
// source's kind.
func RelayoutInto(dst, src *array.Matrix) error {
	if err := src.Validate(); err != nil {
		return err
	}
	if src.Form() != array.FormDense || dst.Form() != array.FormDense {
		return fmt.Errorf("layout: RelayoutInto requires dense matrices")
	}
	if err := dst.Validate(); err != nil {
		return err
	}
	if dst.Rows != src.Cols || dst.Cols != src.Rows {
		return fmt.Errorf("layout: destination shape %dx%d is not transposed from source %dx%d",
			dst.Rows, dst.Cols, src.Rows, src.Cols)
	}
	if dst.Kind() != src.Kind() {
		return fmt.Errorf("layout: destination kind %s does not match source %s", dst.Kind(), src.Kind())
	}
	transposeInto(dst, src)
	return nil
}

// RelayoutSparseInto fills caller-provided compressed-sparse-column
// buffers with the transposed representation of a sparse source:
// dst.Rows == src.Cols and dst.Cols == src.Rows, with the same number
// of stored elements.
func RelayoutSparseInto(dst, src *array.Matrix) error {
	if err := src.Validate(); err != nil {
		return err
	}
	if src.Form() != array.FormSparse || dst.Form() != array.FormSparse {
		return fmt.Errorf("layout: RelayoutSparseInto requires compressed-sparse-column matrices")
	}
	if dst.Rows != src.Cols || dst.Cols != src.Rows {
		return fmt.Errorf("layout: destination shape %dx%d is not transposed from source %dx%d",
			dst.Rows, dst.Cols, src.Rows, src.Cols)
	}
	if dst.Values.Len() != src.Values.Len() {
		return fmt.Errorf("layout: destination holds %d stored elements, source %d",
			dst.Values.Len(), src.Values.Len())
	}
	scatterTransposed(dst, src)
	return nil
}

// transposeInto writes dst(c, r) = src(r, c) tile by tile. Walking
// both buffers in square tiles keeps the working set of each side
// cache-resident regardless of either major axis.
func transposeInto(dst, src *array.Matrix) {
	rows, cols := src.Rows, src.Cols
	for rb := 0; rb < rows; rb += transposeBlock {
		rEnd := min(rb+transposeBlock, rows)
		for cb := 0; cb < cols; cb += transposeBlock {
			cEnd := min(cb+transposeBlock, cols)
			for r := rb; r < rEnd; r++ {
				for c := cb; c < cEnd; c++ {
					dst.Values.SetValue(denseOffset(dst, c, r), src.Values.Value(denseOffset(src, r, c)))
				}
			}
		}
	}
}

func denseOffset(m *array.Matrix, row, col int) int {
	if m.Major == array.MajorColumns {
		return col*m.Rows + row
	}
	return row*m.Cols + col
}

// scatterTransposed recomputes a compressed-sparse-column structure
// for the transposed orientation: count occurrences of each source
// row, prefix-sum the counts into boundaries, then scatter the stored
// elements into place.
func scatterTransposed(dst, src *array.Matrix) {
	nnz := src.NNZ()

	// Count stored elements per source row (destination column).
	counts := make([]int, dst.Cols+1)
	for i := 0; i < nnz; i++ {
		counts[src.Rowval.Index(i)+1]++
	}
	for c := 0; c < dst.Cols; c++ {
		counts[c+1] += counts[c]
	}
	for c := 0; c <= dst.Cols; c++ {
		dst.Colptr.SetIndex(c, counts[c])
	}

	// Scatter column by column; within one source column the row
	// indices ascend, so each destination column fills in ascending
	// destination-row order and stays sorted.
	next := counts[:dst.Cols]
	for c := 0; c < src.Cols; c++ {
		lo, hi := src.Colptr.Index(c), src.Colptr.Index(c+1)
		for i := lo; i < hi; i++ {
			r := src.Rowval.Index(i)
			pos := next[r]
			next[r]++
			dst.Rowval.SetIndex(pos, c)
			dst.Values.SetValue(pos, src.Values.Value(i))
		}
	}
}

// AllTrue reports whether every stored value of a sparse Bool payload
// is true. Backends may omit the value file on disk for such payloads.
func AllTrue(values array.Data) bool {
	if values.Kind() != model.Bool {
		return false
	}
	for i := 0; i < values.Len(); i++ {
		if !values.Value(i).Bool() {
			return false
		}
	}
	return true
}
