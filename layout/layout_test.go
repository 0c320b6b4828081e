package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanaylab/dafgo/array"
	"github.com/tanaylab/dafgo/model"
)

func TestRelayout_Dense(t *testing.T) {
	// gene x cell [[1,2,3],[4,5,6]], column-major.
	m := array.DenseMatrix(2, 3, array.MajorColumns, array.Of([]int64{1, 4, 2, 5, 3, 6}))

	flipped, err := Relayout(m)
	require.NoError(t, err)
	require.Equal(t, 3, flipped.Rows)
	require.Equal(t, 2, flipped.Cols)
	require.NoError(t, flipped.Validate())

	// cell x gene [[1,4],[2,5],[3,6]].
	for row := 0; row < m.Rows; row++ {
		for col := 0; col < m.Cols; col++ {
			assert.Equal(t, m.At(row, col), flipped.At(col, row))
		}
	}
}

func TestRelayout_DenseLarge(t *testing.T) {
	// Bigger than one transpose block in each dimension.
	rows, cols := 70, 130
	values := make([]int64, rows*cols)
	for i := range values {
		values[i] = int64(i)
	}
	m := array.DenseMatrix(rows, cols, array.MajorColumns, array.Of(values))

	flipped, err := Relayout(m)
	require.NoError(t, err)
	for row := 0; row < rows; row += 13 {
		for col := 0; col < cols; col += 17 {
			assert.Equal(t, m.At(row, col), flipped.At(col, row))
		}
	}
}

func TestRelayout_RoundTrip(t *testing.T) {
	m := array.DenseMatrix(2, 3, array.MajorColumns, array.Of([]float64{1, 4, 2, 5, 3, 6}))
	once, err := Relayout(m)
	require.NoError(t, err)
	twice, err := Relayout(once)
	require.NoError(t, err)

	require.Equal(t, m.Rows, twice.Rows)
	require.Equal(t, m.Cols, twice.Cols)
	for row := 0; row < m.Rows; row++ {
		for col := 0; col < m.Cols; col++ {
			assert.Equal(t, m.At(row, col), twice.At(row, col))
		}
	}
}

func TestRelayout_Sparse(t *testing.T) {
	// 3x2 CSC with entries (0,0)=1, (2,0)=2, (1,1)=3.
	m := array.SparseMatrix(3, 2,
		array.IndicesOf([]int64{0, 2, 3}),
		array.IndicesOf([]int64{0, 2, 1}),
		array.Of([]float32{1, 2, 3}))
	require.NoError(t, m.Validate())

	flipped, err := Relayout(m)
	require.NoError(t, err)
	require.Equal(t, 2, flipped.Rows)
	require.Equal(t, 3, flipped.Cols)
	require.NoError(t, flipped.Validate())
	require.Equal(t, m.NNZ(), flipped.NNZ())

	for row := 0; row < m.Rows; row++ {
		for col := 0; col < m.Cols; col++ {
			assert.Equal(t, m.At(row, col), flipped.At(col, row))
		}
	}
}

func TestMajorAxis(t *testing.T) {
	dense := array.DenseMatrix(2, 2, array.MajorRows, array.Of(make([]int64, 4)))
	assert.Equal(t, array.MajorRows, MajorAxis(dense))

	sparse := array.SparseMatrix(2, 2,
		array.IndicesOf([]int64{0, 0, 0}),
		array.IndicesOf([]int64{}),
		array.Of([]int64{}))
	assert.Equal(t, array.MajorColumns, MajorAxis(sparse))
}

func TestAllTrue(t *testing.T) {
	assert.True(t, AllTrue(array.Of([]bool{true, true})))
	assert.False(t, AllTrue(array.Of([]bool{true, false})))
	assert.False(t, AllTrue(array.Of([]int64{1})))
}

func TestCheckEfficientAccess(t *testing.T) {
	m := array.DenseMatrix(2, 3, array.MajorColumns, array.Of(make([]int64, 6)))

	prev := SetAccessPolicy(AccessError)
	defer SetAccessPolicy(prev)

	require.NoError(t, CheckEfficientAccess(m, array.MajorColumns, nil))
	require.Error(t, CheckEfficientAccess(m, array.MajorRows, nil))

	SetAccessPolicy(AccessIgnore)
	require.NoError(t, CheckEfficientAccess(m, array.MajorRows, nil))
}

func TestRelayoutInto(t *testing.T) {
	src := array.DenseMatrix(2, 3, array.MajorColumns, array.Of([]int64{1, 4, 2, 5, 3, 6}))
	buf, err := array.Make(model.Int64, 6)
	require.NoError(t, err)
	dst := array.DenseMatrix(3, 2, array.MajorColumns, buf)

	require.NoError(t, RelayoutInto(dst, src))
	for row := 0; row < src.Rows; row++ {
		for col := 0; col < src.Cols; col++ {
			assert.Equal(t, src.At(row, col), dst.At(col, row))
		}
	}
}
